package secret

import (
	"os"
	"strings"
	"sync"
)

// FigmaTokenKey is the key the Figma personal access token is stored under.
const FigmaTokenKey = "figma-token"

// SecretStore provides a pluggable interface for storing sensitive data
// such as the Figma access token. The desktop app uses the macOS Keychain;
// the CLI and tests use the environment or memory.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	// Delete removes the secret for the given key.
	Delete(key string) error
}

// MemoryStore keeps secrets in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	secrets map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: map[string][]byte{}}
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.secrets[key], nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, key)
	return nil
}

// EnvStore reads secrets from environment variables, falling back to
// another store. Keys map to upper-case variable names with dashes as
// underscores, so "figma-token" is read from FIGMA_TOKEN. Writes go to
// the fallback.
type EnvStore struct {
	Fallback SecretStore
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

func (e EnvStore) Get(key string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(envName(key))); v != "" {
		return []byte(v), nil
	}
	if e.Fallback == nil {
		return nil, nil
	}
	return e.Fallback.Get(key)
}

func (e EnvStore) Set(key string, value []byte) error {
	if e.Fallback == nil {
		return nil
	}
	return e.Fallback.Set(key, value)
}

func (e EnvStore) Delete(key string) error {
	if e.Fallback == nil {
		return nil
	}
	return e.Fallback.Delete(key)
}
