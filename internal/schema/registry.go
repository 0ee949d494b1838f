// Package schema declares the versioned table layout of the store and drives
// additive-only migration at open time.
//
// Each schema version is a full snapshot of every table (indexes and
// sensitive-field sets), not a diff. The registry validates the invariants the
// encrypted store depends on: versions only grow, shipped indexes are never
// removed or narrowed, and no sensitive field ever appears in an index.
// Ciphertext is non-orderable and non-matchable, so indexing it would silently
// break every query that touches it.
package schema

import (
	"fmt"
	"slices"

	"github.com/allisson/finstore/internal/errors"
)

// Schema and migration failures. Both are fatal: the store refuses to open.
var (
	// ErrSchemaVersion indicates the on-disk schema version is newer than the
	// highest version this build declares.
	ErrSchemaVersion = errors.New("on-disk schema version is newer than this build supports")

	// ErrMigration indicates a migration could not be applied cleanly.
	ErrMigration = errors.New("schema migration failed")
)

// Index describes a single (possibly compound) index on a table.
type Index struct {
	Name    string
	Columns []string
}

// TableSchema is the full declared layout of one table at one version.
type TableSchema struct {
	Name string
	// Indexes lists every index the table carries at this version.
	Indexes []Index
	// SensitiveFields lists the columns stored encrypted at rest. Disjoint
	// from every indexed column by invariant.
	SensitiveFields []string
}

// Version is a full snapshot of all tables at a schema version number.
type Version struct {
	Number uint
	Tables []TableSchema
}

// Record is a table row that exposes its sensitive fields to the encryption
// codec. FieldRef returns a pointer to the named field so the codec can
// transform values in place on a copy of the record.
type Record interface {
	TableName() string
	FieldRef(name string) (*string, bool)
}

// Registry holds the declared schema versions.
type Registry struct {
	versions []Version
	tables   map[string]TableSchema
}

// NewRegistry creates a registry from declared versions and validates it.
func NewRegistry(versions []Version) (*Registry, error) {
	r := &Registry{versions: versions}
	if err := r.validate(); err != nil {
		return nil, err
	}

	r.tables = make(map[string]TableSchema)
	for _, table := range versions[len(versions)-1].Tables {
		r.tables[table.Name] = table
	}
	return r, nil
}

// Latest returns the highest declared version number.
func (r *Registry) Latest() uint {
	return r.versions[len(r.versions)-1].Number
}

// Table returns the latest snapshot of the named table.
func (r *Registry) Table(name string) (TableSchema, bool) {
	table, ok := r.tables[name]
	return table, ok
}

// SensitiveFields returns the sensitive-field set of the named table at the
// latest version. Unknown tables have no sensitive fields.
func (r *Registry) SensitiveFields(table string) []string {
	return r.tables[table].SensitiveFields
}

// TableNames returns every table name at the latest version.
func (r *Registry) TableNames() []string {
	names := make([]string, 0, len(r.tables))
	for _, version := range r.versions[len(r.versions)-1].Tables {
		names = append(names, version.Name)
	}
	return names
}

// validate enforces the registry invariants.
func (r *Registry) validate() error {
	if len(r.versions) == 0 {
		return errors.New("registry requires at least one version")
	}

	var previous *Version
	for i := range r.versions {
		version := &r.versions[i]

		if previous != nil && version.Number <= previous.Number {
			return fmt.Errorf("version %d does not increase over %d", version.Number, previous.Number)
		}

		for _, table := range version.Tables {
			if err := validateTable(table); err != nil {
				return fmt.Errorf("version %d: %w", version.Number, err)
			}
		}

		if previous != nil {
			if err := validateSuperset(*previous, *version); err != nil {
				return err
			}
		}
		previous = version
	}
	return nil
}

// validateTable checks that no sensitive field participates in an index.
func validateTable(table TableSchema) error {
	for _, index := range table.Indexes {
		for _, column := range index.Columns {
			if slices.Contains(table.SensitiveFields, column) {
				return fmt.Errorf(
					"table %s: sensitive field %q appears in index %s",
					table.Name, column, index.Name,
				)
			}
		}
	}
	return nil
}

// validateSuperset checks that next retains every table and index of prev.
func validateSuperset(prev, next Version) error {
	nextTables := make(map[string]TableSchema, len(next.Tables))
	for _, table := range next.Tables {
		nextTables[table.Name] = table
	}

	for _, prevTable := range prev.Tables {
		nextTable, ok := nextTables[prevTable.Name]
		if !ok {
			return fmt.Errorf(
				"version %d removes table %s declared in version %d",
				next.Number, prevTable.Name, prev.Number,
			)
		}

		for _, prevIndex := range prevTable.Indexes {
			found := false
			for _, nextIndex := range nextTable.Indexes {
				if nextIndex.Name == prevIndex.Name {
					if !slices.Equal(nextIndex.Columns, prevIndex.Columns) {
						return fmt.Errorf(
							"version %d narrows index %s on table %s",
							next.Number, prevIndex.Name, prevTable.Name,
						)
					}
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf(
					"version %d removes index %s on table %s",
					next.Number, prevIndex.Name, prevTable.Name,
				)
			}
		}
	}
	return nil
}
