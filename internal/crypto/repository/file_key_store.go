// Package repository implements persistence for wrapped-key records.
//
// The keystore is deliberately a separate artifact from the table engine: a
// plain local JSON file of named entries, so key material can be backed up or
// destroyed independently of row data.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
)

// FileKeyStore persists wrapped-key entries in a local JSON file.
//
// Writes are atomic (temp file + rename) so a crash mid-write can never leave
// a truncated keystore behind. The file only ever holds wrapped/exported
// material and public KDF parameters.
type FileKeyStore struct {
	path string
	mu   sync.Mutex
}

// NewFileKeyStore creates a key store backed by the file at path.
// The file is created lazily on first Put.
func NewFileKeyStore(path string) *FileKeyStore {
	return &FileKeyStore{path: path}
}

// Get returns the entry with the given name, reporting whether it exists.
func (f *FileKeyStore) Get(name string) (*cryptoDomain.KeyEntry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return nil, false, err
	}

	entry, ok := entries[name]
	if !ok {
		return nil, false, nil
	}
	return entry, true, nil
}

// Put stores or replaces the entry under its name.
func (f *FileKeyStore) Put(entry *cryptoDomain.KeyEntry) error {
	if entry == nil || entry.Name == "" {
		return errors.New("key entry requires a name")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}

	entries[entry.Name] = entry
	return f.save(entries)
}

// Delete removes the entry with the given name. Missing entries are not an error.
func (f *FileKeyStore) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := entries[name]; !ok {
		return nil
	}
	delete(entries, name)
	return f.save(entries)
}

// load reads all entries from disk. A missing file is an empty store.
func (f *FileKeyStore) load() (map[string]*cryptoDomain.KeyEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*cryptoDomain.KeyEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	var entries map[string]*cryptoDomain.KeyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse keystore: %w", err)
	}
	if entries == nil {
		entries = map[string]*cryptoDomain.KeyEntry{}
	}
	return entries, nil
}

// save writes all entries atomically.
func (f *FileKeyStore) save(entries map[string]*cryptoDomain.KeyEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode keystore: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".keystore-*")
	if err != nil {
		return fmt.Errorf("failed to create temp keystore: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write keystore: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close keystore: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace keystore: %w", err)
	}
	return nil
}
