package keychain

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "climabot"

// Get retrieves a secret from the system keychain.
func Get(account string) (string, error) {
	return keyring.Get(serviceName, account)
}

// Set stores a secret in the system keychain.
func Set(account, value string) error {
	return keyring.Set(serviceName, account, value)
}

// Lookup is Get with "not stored" reported as an empty value instead of an
// error.
func Lookup(account string) (string, error) {
	v, err := Get(account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}
