package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const keychainService = "vectorboard-figma"

// security(1) exits with errSecItemNotFound when no item matches.
const exitItemNotFound = 44

// KeychainStore keeps secrets, in practice the Figma access token, as
// generic passwords in the macOS login keychain.
type KeychainStore struct {
	service string
	// run executes security(1) and returns its combined output.
	run func(args ...string) ([]byte, error)
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{service: keychainService, run: runSecurity}
}

func runSecurity(args ...string) ([]byte, error) {
	return exec.Command("security", args...).CombinedOutput()
}

// notFound reports whether err is security(1) saying the item is missing.
func notFound(err error) bool {
	var exit interface{ ExitCode() int }
	return errors.As(err, &exit) && exit.ExitCode() == exitItemNotFound
}

func keychainError(op, key string, out []byte, err error) error {
	if msg := strings.TrimSpace(string(out)); msg != "" {
		return fmt.Errorf("keychain %s %s: %s: %w", op, key, msg, err)
	}
	return fmt.Errorf("keychain %s %s: %w", op, key, err)
}

// Set stores value under key, replacing a previous token.
func (k *KeychainStore) Set(key string, value []byte) error {
	out, err := k.run("add-generic-password",
		"-a", key,
		"-s", k.service,
		"-w", string(value),
		"-U",
	)
	if err != nil {
		return keychainError("set", key, out, err)
	}
	return nil
}

// Get returns the token stored under key, or nil when there is none.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	out, err := k.run("find-generic-password",
		"-a", key,
		"-s", k.service,
		"-w",
	)
	switch {
	case notFound(err):
		return nil, nil
	case err != nil:
		return nil, keychainError("get", key, out, err)
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

// Delete removes the token under key. A missing item is not an error.
func (k *KeychainStore) Delete(key string) error {
	out, err := k.run("delete-generic-password",
		"-a", key,
		"-s", k.service,
	)
	if err != nil && !notFound(err) {
		return keychainError("delete", key, out, err)
	}
	return nil
}
