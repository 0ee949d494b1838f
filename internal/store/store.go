// Package store exposes the encrypted personal-finance data store.
//
// A Store owns one SQLite database file and one wrapped-key artifact. Open
// connects, migrates the schema, and unwraps the device key; after that the
// typed accessors (Transactions, Goals, ...) serve reads and writes with
// sensitive fields transparently encrypted at rest. Close tears the session
// down and drops cached key material.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
	cryptoRepository "github.com/allisson/finstore/internal/crypto/repository"
	cryptoService "github.com/allisson/finstore/internal/crypto/service"
	"github.com/allisson/finstore/internal/database"
	apperrors "github.com/allisson/finstore/internal/errors"
	"github.com/allisson/finstore/internal/fieldcipher"
	financeRepository "github.com/allisson/finstore/internal/finance/repository"
	"github.com/allisson/finstore/internal/metrics"
	"github.com/allisson/finstore/internal/schema"
)

// ErrStoreClosed is returned by every operation on a store that is not open,
// including an Open interrupted by a concurrent Close.
var ErrStoreClosed = fmt.Errorf("%w: store is closed", apperrors.ErrUnavailable)

// Config holds store configuration.
type Config struct {
	// DatabasePath is the SQLite database file.
	DatabasePath string
	// KeystorePath is the wrapped-key artifact, separate from the database.
	KeystorePath string
	// BusyTimeout is the SQLite busy timeout.
	BusyTimeout time.Duration
	// KeeperURI selects the gocloud.dev keeper wrapping the device key.
	KeeperURI string
	// Algorithm selects the field cipher. Empty selects AES-256-GCM.
	Algorithm cryptoDomain.Algorithm
	// KDFIterations is the PBKDF2 iteration count for password-derived keys.
	KDFIterations int
	// UnlockMaxAttempts caps password unlock attempts per UnlockWindow.
	UnlockMaxAttempts int
	// UnlockWindow is the sliding window for unlock throttling.
	UnlockWindow time.Duration
}

type state int

const (
	stateClosed state = iota
	stateOpening
	stateOpen
)

// session bundles everything built during a successful Open. It is replaced
// wholesale on reopen so operations never see a half-built store.
type session struct {
	db          *sql.DB
	registry    *schema.Registry
	codec       *fieldcipher.Codec
	txManager   database.TxManager
	keeper      cryptoService.Keeper
	keyManager  cryptoService.KeyManager
	aeadManager cryptoService.AEADManager

	transactions     TransactionRepository
	goals            GoalRepository
	bills            BillRepository
	budgets          BudgetRepository
	recurringEntries RecurringEntryRepository
	debts            DebtRepository
	notifications    NotificationRepository
}

func (s *session) close() {
	if s.keyManager != nil {
		s.keyManager.Clear()
	}
	if s.keeper != nil {
		_ = s.keeper.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Store is the root object of the encrypted data store.
type Store struct {
	cfg     Config
	logger  *slog.Logger
	metrics metrics.StoreMetrics

	mu             sync.Mutex
	state          state
	closeRequested bool
	sess           *session
}

// New creates a Store. The store starts closed; call Open before use.
// A nil storeMetrics disables instrumentation.
func New(cfg Config, logger *slog.Logger, storeMetrics metrics.StoreMetrics) *Store {
	if storeMetrics == nil {
		storeMetrics = metrics.NewNoOpStoreMetrics()
	}
	return &Store{
		cfg:     cfg,
		logger:  logger,
		metrics: storeMetrics,
	}
}

// Open connects to the database, validates and migrates the schema, and
// unwraps the device key. It must complete before any accessor is usable.
//
// Opening an already open store returns ErrConflict. A Close issued while
// Open is still running wins: the session is torn down and Open returns
// ErrStoreClosed.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateClosed {
		s.mu.Unlock()
		return fmt.Errorf("%w: store is already open", apperrors.ErrConflict)
	}
	s.state = stateOpening
	s.closeRequested = false
	s.mu.Unlock()

	sess, err := s.buildSession(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = stateClosed
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeRequested {
		sess.close()
		s.state = stateClosed
		return ErrStoreClosed
	}
	s.sess = sess
	s.state = stateOpen

	s.logger.Info("store opened",
		slog.String("database", s.cfg.DatabasePath),
		slog.Uint64("schema_version", uint64(sess.registry.Latest())),
	)
	return nil
}

// buildSession performs the open sequence outside the store lock.
func (s *Store) buildSession(ctx context.Context) (*session, error) {
	registry, err := schema.NewRegistry(schema.Versions())
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(database.Config{
		Path:        s.cfg.DatabasePath,
		BusyTimeout: s.cfg.BusyTimeout,
	})
	if err != nil {
		return nil, err
	}

	if err := schema.Migrate(db, registry, s.logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	keeper, err := cryptoService.NewKeeperService().OpenKeeper(ctx, s.cfg.KeeperURI)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	keystore := cryptoRepository.NewFileKeyStore(s.cfg.KeystorePath)
	aeadManager := cryptoService.NewAEADManager()
	keyManager := cryptoService.NewKeyManager(keystore, keeper, aeadManager, cryptoService.KeyManagerConfig{
		KDFIterations:     s.cfg.KDFIterations,
		UnlockMaxAttempts: s.cfg.UnlockMaxAttempts,
		UnlockWindow:      s.cfg.UnlockWindow,
	})

	deviceKey, err := keyManager.GetOrCreateKey(ctx)
	if err != nil {
		_ = keeper.Close()
		_ = db.Close()
		return nil, err
	}

	algorithm := s.cfg.Algorithm
	if algorithm == "" {
		algorithm = cryptoDomain.AESGCM
	}
	cipher, err := aeadManager.CreateCipher(deviceKey.Bytes(), algorithm)
	if err != nil {
		keyManager.Clear()
		_ = keeper.Close()
		_ = db.Close()
		return nil, err
	}

	return &session{
		db:               db,
		registry:         registry,
		codec:            fieldcipher.NewCodec(cipher, registry, s.logger, s.metrics),
		txManager:        database.NewTxManager(db),
		keeper:           keeper,
		keyManager:       keyManager,
		aeadManager:      aeadManager,
		transactions:     financeRepository.NewSQLiteTransactionRepository(db),
		goals:            financeRepository.NewSQLiteGoalRepository(db),
		bills:            financeRepository.NewSQLiteBillRepository(db),
		budgets:          financeRepository.NewSQLiteBudgetRepository(db),
		recurringEntries: financeRepository.NewSQLiteRecurringEntryRepository(db),
		debts:            financeRepository.NewSQLiteDebtRepository(db),
		notifications:    financeRepository.NewSQLiteNotificationRepository(db),
	}, nil
}

// Close tears down the session and drops cached key material. Closing a
// closed store is a no-op. Closing a store that is still opening marks the
// open as doomed; the Open call performs the teardown and reports
// ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateClosed:
		return nil
	case stateOpening:
		s.closeRequested = true
		return nil
	}

	s.sess.close()
	s.sess = nil
	s.state = stateClosed
	s.logger.Info("store closed")
	return nil
}

// session returns the active session, or ErrStoreClosed.
func (s *Store) session() (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateOpen {
		return nil, ErrStoreClosed
	}
	return s.sess, nil
}

// observe records one accessor operation in the metrics backend.
func (s *Store) observe(ctx context.Context, table, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, table, operation, status)
	s.metrics.RecordDuration(ctx, table, operation, time.Since(start), status)
}

// EncryptFields encrypts the named fields of a record in place using the
// device key. Most callers never need this; the accessors encrypt on write
// already. It exists for callers staging records outside the store.
func (s *Store) EncryptFields(record schema.Record, fields []string) error {
	sess, err := s.session()
	if err != nil {
		return err
	}
	return sess.codec.EncryptFields(record, fields)
}

// DecryptFields decrypts the named fields of a record in place. Unreadable
// fields are replaced with the fieldcipher.Unreadable sentinel.
func (s *Store) DecryptFields(record schema.Record, fields []string) error {
	sess, err := s.session()
	if err != nil {
		return err
	}
	sess.codec.DecryptFields(record, fields)
	return nil
}

// SchemaVersion reports the schema version of the open store.
func (s *Store) SchemaVersion() (uint, error) {
	sess, err := s.session()
	if err != nil {
		return 0, err
	}
	return schema.CurrentVersion(sess.db)
}
