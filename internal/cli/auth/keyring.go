package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/branchd-dev/storefront/internal/session"
)

const (
	service = "storefront-cli"
)

// secrets is the subset of go-keyring used by KeyringStore
type secrets interface {
	Get(service, user string) (string, error)
	Set(service, user, password string) error
	Delete(service, user string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, user string) (string, error) { return keyring.Get(service, user) }
func (osKeyring) Set(service, user, password string) error { return keyring.Set(service, user, password) }
func (osKeyring) Delete(service, user string) error { return keyring.Delete(service, user) }

// KeyringStore persists a session in the OS keychain/credential manager, one
// keyring item per session key and backend profile.
type KeyringStore struct {
	profile string
	ring    secrets
}

// NewKeyringStore returns a keyring-backed session persistence for a backend profile
func NewKeyringStore(profile string) *KeyringStore {
	return &KeyringStore{profile: profile, ring: osKeyring{}}
}

// getKeyringKey returns a unique keyring key per session key and profile
func (k *KeyringStore) getKeyringKey(name string) string {
	return fmt.Sprintf("%s-%s", name, k.profile)
}

func (k *KeyringStore) get(name string) (string, error) {
	value, err := k.ring.Get(service, k.getKeyringKey(name))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load %s: %w", name, err)
	}
	return value, nil
}

func (k *KeyringStore) delete(name string) error {
	if err := k.ring.Delete(service, k.getKeyringKey(name)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// Read retrieves both session keys. Missing items are reported as empty values.
func (k *KeyringStore) Read(_ context.Context) (session.Snapshot, error) {
	user, err := k.get(session.KeyUser)
	if err != nil {
		return session.Snapshot{}, err
	}
	token, err := k.get(session.KeyToken)
	if err != nil {
		return session.Snapshot{}, err
	}
	return session.Snapshot{User: user, Token: token}, nil
}

// Write stores both keys. The keyring has no transactions, so a failed token write
// restores the previous user item.
func (k *KeyringStore) Write(_ context.Context, snap session.Snapshot) error {
	previousUser, err := k.get(session.KeyUser)
	if err != nil {
		return err
	}

	if err := k.ring.Set(service, k.getKeyringKey(session.KeyUser), snap.User); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	if err := k.ring.Set(service, k.getKeyringKey(session.KeyToken), snap.Token); err != nil {
		if previousUser != "" {
			_ = k.ring.Set(service, k.getKeyringKey(session.KeyUser), previousUser)
		} else {
			_ = k.delete(session.KeyUser)
		}
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Clear removes both keys. Deleting absent items is not an error. When the user
// item cannot be removed the token item is put back, so the keyring still holds
// the session that memory holds.
func (k *KeyringStore) Clear(_ context.Context) error {
	token, err := k.get(session.KeyToken)
	if err != nil {
		return err
	}
	if err := k.delete(session.KeyToken); err != nil {
		return err
	}
	if err := k.delete(session.KeyUser); err != nil {
		if token != "" {
			_ = k.ring.Set(service, k.getKeyringKey(session.KeyToken), token)
		}
		return err
	}
	return nil
}
