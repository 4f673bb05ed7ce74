package secret_test

import (
	"testing"

	"vectorboard/internal/secret"
)

func TestMemoryStore(t *testing.T) {
	s := secret.NewMemoryStore()
	if v, err := s.Get("k"); v != nil || err != nil {
		t.Fatalf("expected empty value, got %q %v", v, err)
	}
	value := []byte("abc")
	if err := s.Set("k", value); err != nil {
		t.Fatal(err)
	}
	value[0] = 'x'
	if v, _ := s.Get("k"); string(v) != "abc" {
		t.Errorf("expected stored copy, got %q", v)
	}
	s.Delete("k")
	if v, _ := s.Get("k"); v != nil {
		t.Errorf("expected deleted, got %q", v)
	}
}

func TestEnvStore(t *testing.T) {
	mem := secret.NewMemoryStore()
	s := secret.EnvStore{Fallback: mem}

	t.Setenv("FIGMA_TOKEN", "")
	if err := s.Set(secret.FigmaTokenKey, []byte("stored")); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Get(secret.FigmaTokenKey); string(v) != "stored" {
		t.Errorf("expected fallback value, got %q", v)
	}

	t.Setenv("FIGMA_TOKEN", " from-env ")
	if v, _ := s.Get(secret.FigmaTokenKey); string(v) != "from-env" {
		t.Errorf("expected env value, got %q", v)
	}

	if v, _ := (secret.EnvStore{}).Get("other-key"); v != nil {
		t.Errorf("expected nil without fallback, got %q", v)
	}
}
