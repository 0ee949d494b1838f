package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/time/rate"

	cryptoDomain "github.com/allisson/finstore/internal/crypto/domain"
)

// passwordCheckToken is the known plaintext sealed under the password-derived
// key. Successfully opening it proves the password produced the right key.
const passwordCheckToken = "finstore-password-check-v1"

// KeyManagerService implements the KeyManager interface.
//
// Two independent key modes are managed, each cached at most once per session:
//
//   - Device mode: a randomly generated 256-bit key, persisted only in wrapped
//     form (wrapped by the configured keeper) and used for field-level
//     encryption of table rows.
//   - Password mode: a PBKDF2-derived key used only for whole-state-blob
//     encryption. A persisted check record (salt + AEAD check value) verifies
//     a presented password without storing any password hash.
//
// The modes have distinct lifecycles and are never merged: losing the password
// does not affect row data, and rotating the device key does not invalidate
// exported blobs.
type KeyManagerService struct {
	keystore    KeyStore
	keeper      Keeper
	aeadManager AEADManager
	iterations  int
	limiter     *rate.Limiter

	mu          sync.Mutex
	deviceKey   *cryptoDomain.EncryptionKey
	passwordKey *cryptoDomain.EncryptionKey
}

// KeyManagerConfig holds key manager tuning parameters.
type KeyManagerConfig struct {
	// KDFIterations is the PBKDF2 iteration count. Zero selects the default of 100000.
	KDFIterations int
	// UnlockMaxAttempts caps password verification attempts per UnlockWindow.
	// Zero disables throttling.
	UnlockMaxAttempts int
	// UnlockWindow is the sliding window for unlock attempt throttling.
	UnlockWindow time.Duration
}

// NewKeyManager creates a new KeyManagerService.
func NewKeyManager(
	keystore KeyStore,
	keeper Keeper,
	aeadManager AEADManager,
	cfg KeyManagerConfig,
) *KeyManagerService {
	iterations := cfg.KDFIterations
	if iterations <= 0 {
		iterations = 100000
	}

	var limiter *rate.Limiter
	if cfg.UnlockMaxAttempts > 0 && cfg.UnlockWindow > 0 {
		limiter = rate.NewLimiter(
			rate.Every(cfg.UnlockWindow/time.Duration(cfg.UnlockMaxAttempts)),
			cfg.UnlockMaxAttempts,
		)
	}

	return &KeyManagerService{
		keystore:    keystore,
		keeper:      keeper,
		aeadManager: aeadManager,
		iterations:  iterations,
		limiter:     limiter,
	}
}

// GetOrCreateKey returns the device key.
//
// A previously persisted wrapped key is unwrapped through the keeper and
// cached for the session. If no key exists yet, a fresh one is generated,
// wrapped, persisted, and cached. Corrupt or unparseable stored material
// yields ErrKeyLoad; data already encrypted under the lost key is
// unrecoverable by design.
func (km *KeyManagerService) GetOrCreateKey(ctx context.Context) (*cryptoDomain.EncryptionKey, error) {
	km.mu.Lock()
	defer km.mu.Unlock()

	if km.deviceKey != nil {
		return km.deviceKey, nil
	}

	entry, found, err := km.keystore.Get(cryptoDomain.KeyNameDevice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyLoad, err)
	}

	if found {
		material, err := km.keeper.Decrypt(ctx, entry.Wrapped)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyLoad, err)
		}
		key, err := cryptoDomain.NewEncryptionKey(material)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyLoad, err)
		}
		km.deviceKey = key
		return key, nil
	}

	key, err := cryptoDomain.GenerateEncryptionKey()
	if err != nil {
		return nil, err
	}

	wrapped, err := km.keeper.Encrypt(ctx, key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to wrap device key: %w", err)
	}

	if err := km.keystore.Put(&cryptoDomain.KeyEntry{
		Name:      cryptoDomain.KeyNameDevice,
		Wrapped:   wrapped,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("failed to persist wrapped device key: %w", err)
	}

	km.deviceKey = key
	return key, nil
}

// DeriveKeyFromPassword deterministically derives a 256-bit key from a
// password and salt using PBKDF2-SHA256. Iterations <= 0 selects the
// configured count; an explicit count lets import honor the parameters an
// export blob was sealed with.
//
// Derivation is the only CPU-heavy operation in the store, so it runs in its
// own goroutine and honors context cancellation; callers never block other
// operations while waiting on it.
func (km *KeyManagerService) DeriveKeyFromPassword(
	ctx context.Context,
	password string,
	salt []byte,
	iterations int,
) (*cryptoDomain.EncryptionKey, error) {
	if iterations <= 0 {
		iterations = km.iterations
	}

	result := make(chan []byte, 1)
	go func() {
		result <- pbkdf2.Key([]byte(password), salt, iterations, cryptoDomain.KeySize, sha256.New)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case material := <-result:
		return cryptoDomain.NewEncryptionKey(material)
	}
}

// Iterations reports the effective PBKDF2 iteration count used when a caller
// does not supply one. It is the configured count after defaulting, so
// callers recording KDF parameters always see the count a key was actually
// derived with.
func (km *KeyManagerService) Iterations() int {
	return km.iterations
}

// EnsurePasswordKey derives the password key and reconciles it with the
// persisted check record.
//
// On first use a salt is generated and a check value sealed under the derived
// key is persisted. On later calls the stored check value is opened with the
// freshly derived key: a wrong password fails the AEAD authentication and
// yields ErrDecryptAuth, never a garbled key. Attempts are throttled when the
// manager was configured with an unlock window.
func (km *KeyManagerService) EnsurePasswordKey(
	ctx context.Context,
	password string,
) (*cryptoDomain.EncryptionKey, error) {
	km.mu.Lock()
	if km.passwordKey != nil {
		key := km.passwordKey
		km.mu.Unlock()
		return key, nil
	}
	km.mu.Unlock()

	if km.limiter != nil && !km.limiter.Allow() {
		return nil, cryptoDomain.ErrTooManyUnlockAttempts
	}

	entry, found, err := km.keystore.Get(cryptoDomain.KeyNamePasswordCheck)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrKeyLoad, err)
	}

	if !found {
		return km.createPasswordKey(ctx, password)
	}
	return km.verifyPasswordKey(ctx, password, entry)
}

// createPasswordKey sets up the password mode on first use.
func (km *KeyManagerService) createPasswordKey(
	ctx context.Context,
	password string,
) (*cryptoDomain.EncryptionKey, error) {
	salt, err := cryptoDomain.NewSalt()
	if err != nil {
		return nil, err
	}

	key, err := km.DeriveKeyFromPassword(ctx, password, salt, 0)
	if err != nil {
		return nil, err
	}

	cipher, err := km.aeadManager.CreateCipher(key.Bytes(), cryptoDomain.AESGCM)
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := cipher.Encrypt([]byte(passwordCheckToken), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to seal password check: %w", err)
	}

	if err := km.keystore.Put(&cryptoDomain.KeyEntry{
		Name:      cryptoDomain.KeyNamePasswordCheck,
		Salt:      salt,
		Check:     cryptoDomain.EncryptedField(nonce, ciphertext).Encode(),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("failed to persist password check: %w", err)
	}

	km.mu.Lock()
	km.passwordKey = key
	km.mu.Unlock()
	return key, nil
}

// verifyPasswordKey checks a presented password against the stored check record.
func (km *KeyManagerService) verifyPasswordKey(
	ctx context.Context,
	password string,
	entry *cryptoDomain.KeyEntry,
) (*cryptoDomain.EncryptionKey, error) {
	check, err := cryptoDomain.ParseFieldValue(entry.Check)
	if err != nil || !check.IsEncrypted() {
		return nil, fmt.Errorf("%w: password check record", cryptoDomain.ErrKeyLoad)
	}

	key, err := km.DeriveKeyFromPassword(ctx, password, entry.Salt, 0)
	if err != nil {
		return nil, err
	}

	cipher, err := km.aeadManager.CreateCipher(key.Bytes(), cryptoDomain.AESGCM)
	if err != nil {
		return nil, err
	}

	enc := check.Encrypted()
	token, err := cipher.Decrypt(enc.Ciphertext, enc.Nonce, nil)
	if err != nil {
		key.Clear()
		return nil, cryptoDomain.ErrDecryptAuth
	}
	if subtle.ConstantTimeCompare(token, []byte(passwordCheckToken)) != 1 {
		key.Clear()
		return nil, cryptoDomain.ErrDecryptAuth
	}

	km.mu.Lock()
	km.passwordKey = key
	km.mu.Unlock()
	return key, nil
}

// Clear zeroes and drops both cached keys. Call on sign-out; the next
// operation will load or derive keys again.
func (km *KeyManagerService) Clear() {
	km.mu.Lock()
	defer km.mu.Unlock()

	if km.deviceKey != nil {
		km.deviceKey.Clear()
		km.deviceKey = nil
	}
	if km.passwordKey != nil {
		km.passwordKey.Clear()
		km.passwordKey = nil
	}
}
