package config

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service under which client secrets live.
const KeyringService = "trovi"

// StoreSecret saves a client secret in the OS keyring, keyed by client id.
func StoreSecret(clientID, secret string) error {
	if clientID == "" {
		return fmt.Errorf("%w: oidc_client_id", ErrMissingField)
	}
	if err := keyring.Set(KeyringService, clientID, secret); err != nil {
		return fmt.Errorf("failed to store secret in keyring: %w", err)
	}
	return nil
}

// LoadSecret returns the stored secret for clientID, or "" when none exists.
func LoadSecret(clientID string) (string, error) {
	secret, err := keyring.Get(KeyringService, clientID)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read secret from keyring: %w", err)
	}
	return secret, nil
}

// DeleteSecret removes the stored secret for clientID. Missing secrets are not an error.
func DeleteSecret(clientID string) error {
	err := keyring.Delete(KeyringService, clientID)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete secret from keyring: %w", err)
	}
	return nil
}

// ResolveSecret fills ClientSecret from the keyring when no other source set it.
func (p *Profile) ResolveSecret() error {
	if p.ClientSecret != "" || p.ClientID == "" {
		return nil
	}
	secret, err := LoadSecret(p.ClientID)
	if err != nil {
		return err
	}
	p.ClientSecret = secret
	return nil
}
