package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register keeper drivers. localsecrets serves the local single-device
	// case (base64key://); hashivault is available for users who run a vault.
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperService opens secrets keepers used to wrap the device key.
type KeeperService interface {
	// OpenKeeper opens a keeper for the given URI.
	// Returns an error if the URI is invalid or the provider is unreachable.
	OpenKeeper(ctx context.Context, keeperURI string) (Keeper, error)
}

// keeperService implements KeeperService using gocloud.dev/secrets.
type keeperService struct{}

// NewKeeperService creates a new keeper service instance.
func NewKeeperService() KeeperService {
	return &keeperService{}
}

// OpenKeeper opens a keeper for the given URI.
// Supported schemes: base64key://, hashivault://.
func (k *keeperService) OpenKeeper(ctx context.Context, keeperURI string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keeperURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open keeper: %w", err)
	}
	return keeper, nil
}

// NewBase64KeeperURI generates a fresh 32-byte wrapping key and returns it as
// a localsecrets keeper URI. The URI is the wrapping secret: it belongs in the
// environment or a secret manager, never in the data directory.
func NewBase64KeeperURI() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate keeper key: %w", err)
	}
	return "base64key://" + base64.URLEncoding.EncodeToString(key), nil
}
