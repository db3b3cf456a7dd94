package credentials

import (
	"errors"
	"testing"
)

func TestEnvFetcher(t *testing.T) {
	t.Run("both set", func(t *testing.T) {
		t.Setenv(EnvAccess, "ak")
		t.Setenv(EnvSecret, "sk")

		c, err := NewEnvFetcher().GetConsumer()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if c.Key != "ak" || c.Secret != "sk" {
			t.Errorf("Unexpected consumer %v", c)
		}
	})

	t.Run("secret missing", func(t *testing.T) {
		t.Setenv(EnvAccess, "ak")
		t.Setenv(EnvSecret, "")

		_, err := NewEnvFetcher().GetConsumer()
		if !errors.Is(err, ErrMissing) {
			t.Errorf("Expected ErrMissing, got %v", err)
		}
	})
}
