package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringSource resolves passwords from the operating system keyring.
// Entries are stored under a service name with the username as the key, so a
// deployment can keep the password out of the environment entirely.
type KeyringSource struct {
	service string
}

// NewKeyringSource returns a source reading from the named keyring service.
func NewKeyringSource(service string) *KeyringSource {
	return &KeyringSource{service: service}
}

// Lookup fetches the password stored for username.
func (s *KeyringSource) Lookup(_ context.Context, username string) (Credential, error) {
	if s == nil || username == "" {
		return Credential{}, ErrUnknownUser
	}

	secret, err := keyring.Get(s.service, username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credential{}, ErrUnknownUser
		}
		return Credential{}, fmt.Errorf("keyring lookup: %w", err)
	}

	return Credential{Username: username, Password: secret}, nil
}

// Store writes a credential into the keyring. Intended for setup tooling.
func (s *KeyringSource) Store(cred Credential) error {
	if err := keyring.Set(s.service, cred.Username, cred.Password); err != nil {
		return fmt.Errorf("keyring store: %w", err)
	}
	return nil
}

// Delete removes a stored credential. Missing entries are not an error.
func (s *KeyringSource) Delete(username string) error {
	err := keyring.Delete(s.service, username)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
