package credentials

import (
	"fmt"
	"os"
)

const (
	EnvAccess = "OPENPATHS_ACCESS"
	EnvSecret = "OPENPATHS_SECRET"
)

// EnvFetcher retrieves credentials from environment variables
type EnvFetcher struct{}

// NewEnvFetcher creates a new environment-based credentials fetcher
func NewEnvFetcher() *EnvFetcher {
	return &EnvFetcher{}
}

// GetConsumer reads OPENPATHS_ACCESS and OPENPATHS_SECRET
func (e *EnvFetcher) GetConsumer() (Consumer, error) {
	c := Consumer{Key: os.Getenv(EnvAccess), Secret: os.Getenv(EnvSecret)}
	if err := c.Validate(); err != nil {
		return Consumer{}, fmt.Errorf("%w: set %s and %s", err, EnvAccess, EnvSecret)
	}
	return c, nil
}
