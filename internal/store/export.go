package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
	apperrors "github.com/allisson/finstore/internal/errors"
	financeDomain "github.com/allisson/finstore/internal/finance/domain"
	"github.com/allisson/finstore/internal/schema"
)

// exportKDF names the key derivation recorded in export envelopes.
const exportKDF = "pbkdf2-sha256"

// exportEnvelope is the outer structure of an exported state blob. Everything
// needed to re-derive the key travels with the blob except the password.
type exportEnvelope struct {
	Version    int    `json:"version"`
	KDF        string `json:"kdf"`
	Iterations int    `json:"iterations"`
	Salt       []byte `json:"salt"`
	Algorithm  string `json:"algorithm"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// stateSnapshot is the decrypted whole-state payload inside an export blob.
type stateSnapshot struct {
	SchemaVersion    uint                            `json:"schema_version"`
	ExportedAt       time.Time                       `json:"exported_at"`
	Transactions     []*financeDomain.Transaction    `json:"transactions"`
	Goals            []*financeDomain.Goal           `json:"goals"`
	Bills            []*financeDomain.Bill           `json:"bills"`
	Budgets          []*financeDomain.Budget         `json:"budgets"`
	RecurringEntries []*financeDomain.RecurringEntry `json:"recurring_entries"`
	Debts            []*financeDomain.Debt           `json:"debts"`
	Notifications    []*financeDomain.Notification   `json:"notifications"`
}

// ExportState serializes the entire decrypted state and seals it under a key
// derived from the password. The blob is self-describing: salt, KDF
// parameters, and algorithm travel in the envelope so another device can
// import it with nothing but the password.
//
// The password is reconciled with the persisted check record before anything
// is sealed: the first export establishes it, later sessions must present the
// same password (ErrDecryptAuth on a mismatch), and attempts count against
// the unlock throttle. The password mode is independent from the device key;
// exporting never touches the wrapped device key and the blob stays
// importable after a device key rotation.
func (s *Store) ExportState(ctx context.Context, password string) (_ []byte, err error) {
	defer func(start time.Time) {
		s.observe(ctx, "state", "export", start, err)
	}(time.Now())

	sess, err := s.session()
	if err != nil {
		return nil, err
	}

	if _, err = sess.keyManager.EnsurePasswordKey(ctx, password); err != nil {
		return nil, err
	}

	snapshot, err := s.collectSnapshot(ctx, sess)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to serialize state snapshot")
	}

	salt, err := cryptoDomain.NewSalt()
	if err != nil {
		return nil, err
	}
	key, err := sess.keyManager.DeriveKeyFromPassword(ctx, password, salt, 0)
	if err != nil {
		return nil, err
	}
	defer key.Clear()

	cipher, err := sess.aeadManager.CreateCipher(key.Bytes(), cryptoDomain.AESGCM)
	if err != nil {
		return nil, err
	}
	ciphertext, nonce, err := cipher.Encrypt(payload, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to seal state snapshot")
	}

	blob, err := json.Marshal(exportEnvelope{
		Version:    1,
		KDF:        exportKDF,
		Iterations: sess.keyManager.Iterations(),
		Salt:       salt,
		Algorithm:  string(cryptoDomain.AESGCM),
		Nonce:      nonce,
		Ciphertext: ciphertext,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to serialize export envelope")
	}

	s.logger.Info("state exported",
		slog.Int("transactions", len(snapshot.Transactions)),
		slog.Int("goals", len(snapshot.Goals)),
		slog.Int("bills", len(snapshot.Bills)),
	)
	return blob, nil
}

// collectSnapshot reads and decrypts every table. The collectors run on an
// errgroup; each writes a distinct snapshot field, so no locking is needed.
//
// Decryption is strict here: a field that cannot be authenticated fails the
// whole export instead of being exported as the unreadable sentinel, which an
// import would re-encrypt as if it were real data.
func (s *Store) collectSnapshot(ctx context.Context, sess *session) (*stateSnapshot, error) {
	version, err := schema.CurrentVersion(sess.db)
	if err != nil {
		return nil, err
	}

	snapshot := &stateSnapshot{
		SchemaVersion: version,
		ExportedAt:    time.Now().UTC(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := sess.transactions.List(ctx, financeDomain.TransactionFilter{})
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := sess.codec.DecryptRecordStrict(row); err != nil {
				return err
			}
		}
		snapshot.Transactions = rows
		return nil
	})
	g.Go(func() error {
		rows, err := sess.goals.List(ctx, financeDomain.GoalFilter{})
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := sess.codec.DecryptRecordStrict(row); err != nil {
				return err
			}
		}
		snapshot.Goals = rows
		return nil
	})
	g.Go(func() error {
		rows, err := sess.bills.List(ctx, financeDomain.BillFilter{})
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := sess.codec.DecryptRecordStrict(row); err != nil {
				return err
			}
		}
		snapshot.Bills = rows
		return nil
	})
	g.Go(func() error {
		rows, err := sess.budgets.List(ctx, financeDomain.BudgetFilter{})
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := sess.codec.DecryptRecordStrict(row); err != nil {
				return err
			}
		}
		snapshot.Budgets = rows
		return nil
	})
	g.Go(func() error {
		rows, err := sess.recurringEntries.List(ctx, financeDomain.RecurringEntryFilter{})
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := sess.codec.DecryptRecordStrict(row); err != nil {
				return err
			}
		}
		snapshot.RecurringEntries = rows
		return nil
	})
	g.Go(func() error {
		rows, err := sess.debts.List(ctx, financeDomain.DebtFilter{})
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := sess.codec.DecryptRecordStrict(row); err != nil {
				return err
			}
		}
		snapshot.Debts = rows
		return nil
	})
	g.Go(func() error {
		rows, err := sess.notifications.List(ctx, financeDomain.NotificationFilter{})
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := sess.codec.DecryptRecordStrict(row); err != nil {
				return err
			}
		}
		snapshot.Notifications = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// ImportState replaces the entire store contents with the state from an
// exported blob. The key is re-derived from the password using the KDF
// parameters recorded in the envelope; a wrong password fails authentication
// and returns ErrDecryptAuth without touching existing data.
//
// The replacement runs in one transaction: either the whole imported state
// lands, or nothing changes.
func (s *Store) ImportState(ctx context.Context, password string, blob []byte) (err error) {
	defer func(start time.Time) {
		s.observe(ctx, "state", "import", start, err)
	}(time.Now())

	sess, err := s.session()
	if err != nil {
		return err
	}

	var envelope exportEnvelope
	if err = json.Unmarshal(blob, &envelope); err != nil {
		return fmt.Errorf("%w: malformed export blob", apperrors.ErrInvalidInput)
	}
	if envelope.KDF != exportKDF {
		return fmt.Errorf("%w: unsupported kdf %q", apperrors.ErrInvalidInput, envelope.KDF)
	}

	key, err := sess.keyManager.DeriveKeyFromPassword(ctx, password, envelope.Salt, envelope.Iterations)
	if err != nil {
		return err
	}
	defer key.Clear()

	cipher, err := sess.aeadManager.CreateCipher(key.Bytes(), cryptoDomain.Algorithm(envelope.Algorithm))
	if err != nil {
		return err
	}
	payload, err := cipher.Decrypt(envelope.Ciphertext, envelope.Nonce, nil)
	if err != nil {
		return cryptoDomain.ErrDecryptAuth
	}

	var snapshot stateSnapshot
	if err = json.Unmarshal(payload, &snapshot); err != nil {
		return fmt.Errorf("%w: malformed state snapshot", apperrors.ErrInvalidInput)
	}
	if snapshot.SchemaVersion > sess.registry.Latest() {
		return fmt.Errorf(
			"%w: blob schema version %d, highest known version %d",
			schema.ErrSchemaVersion, snapshot.SchemaVersion, sess.registry.Latest(),
		)
	}

	err = sess.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.clearAllTables(ctx, sess); err != nil {
			return err
		}
		return s.insertSnapshot(ctx, sess, &snapshot)
	})
	if err != nil {
		return err
	}

	s.logger.Info("state imported",
		slog.Int("transactions", len(snapshot.Transactions)),
		slog.Int("goals", len(snapshot.Goals)),
		slog.Int("bills", len(snapshot.Bills)),
	)
	return nil
}

// clearAllTables empties every finance table inside the current transaction.
func (s *Store) clearAllTables(ctx context.Context, sess *session) error {
	if _, err := sess.transactions.DeleteWhere(ctx, financeDomain.TransactionFilter{}); err != nil {
		return err
	}
	if _, err := sess.goals.DeleteWhere(ctx, financeDomain.GoalFilter{}); err != nil {
		return err
	}
	if _, err := sess.bills.DeleteWhere(ctx, financeDomain.BillFilter{}); err != nil {
		return err
	}
	if _, err := sess.budgets.DeleteWhere(ctx, financeDomain.BudgetFilter{}); err != nil {
		return err
	}
	if _, err := sess.recurringEntries.DeleteWhere(ctx, financeDomain.RecurringEntryFilter{}); err != nil {
		return err
	}
	if _, err := sess.debts.DeleteWhere(ctx, financeDomain.DebtFilter{}); err != nil {
		return err
	}
	if _, err := sess.notifications.DeleteWhere(ctx, financeDomain.NotificationFilter{}); err != nil {
		return err
	}
	return nil
}

// insertSnapshot writes every snapshot row, re-encrypting sensitive fields
// under this device's key.
func (s *Store) insertSnapshot(ctx context.Context, sess *session, snapshot *stateSnapshot) error {
	for _, row := range snapshot.Transactions {
		stored := *row
		if err := sess.codec.EncryptRecord(&stored); err != nil {
			return err
		}
		if err := sess.transactions.Create(ctx, &stored); err != nil {
			return err
		}
	}
	for _, row := range snapshot.Goals {
		stored := *row
		if err := sess.codec.EncryptRecord(&stored); err != nil {
			return err
		}
		if err := sess.goals.Create(ctx, &stored); err != nil {
			return err
		}
	}
	for _, row := range snapshot.Bills {
		stored := *row
		if err := sess.codec.EncryptRecord(&stored); err != nil {
			return err
		}
		if err := sess.bills.Create(ctx, &stored); err != nil {
			return err
		}
	}
	for _, row := range snapshot.Budgets {
		stored := *row
		if err := sess.codec.EncryptRecord(&stored); err != nil {
			return err
		}
		if err := sess.budgets.Create(ctx, &stored); err != nil {
			return err
		}
	}
	for _, row := range snapshot.RecurringEntries {
		stored := *row
		if err := sess.codec.EncryptRecord(&stored); err != nil {
			return err
		}
		if err := sess.recurringEntries.Create(ctx, &stored); err != nil {
			return err
		}
	}
	for _, row := range snapshot.Debts {
		stored := *row
		if err := sess.codec.EncryptRecord(&stored); err != nil {
			return err
		}
		if err := sess.debts.Create(ctx, &stored); err != nil {
			return err
		}
	}
	for _, row := range snapshot.Notifications {
		stored := *row
		if err := sess.codec.EncryptRecord(&stored); err != nil {
			return err
		}
		if err := sess.notifications.Create(ctx, &stored); err != nil {
			return err
		}
	}
	return nil
}
