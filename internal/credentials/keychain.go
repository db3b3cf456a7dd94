package credentials

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// KeychainService is the macOS keychain item holding the consumer pair as
// {"access": "...", "secret": "..."}.
const KeychainService = "weasel-openpaths"

type keychainCredentials struct {
	Access string `json:"access"`
	Secret string `json:"secret"`
}

// KeychainFetcher retrieves credentials from macOS keychain with caching
type KeychainFetcher struct {
	mu          sync.RWMutex
	cached      Consumer
	lastRefresh time.Time
	cacheTTL    time.Duration
	logger      *zerolog.Logger

	// read returns the raw keychain item; replaced in tests.
	read func() ([]byte, error)
}

// NewKeychainFetcher creates a new keychain-based credentials fetcher
func NewKeychainFetcher(logger *zerolog.Logger) *KeychainFetcher {
	return &KeychainFetcher{
		cacheTTL: 5 * time.Minute, // Cache credentials for 5 minutes
		logger:   logger,
		read:     readKeychain,
	}
}

// GetConsumer retrieves credentials from cache or keychain
func (k *KeychainFetcher) GetConsumer() (Consumer, error) {
	k.mu.RLock()
	if k.cached.Validate() == nil && time.Since(k.lastRefresh) < k.cacheTTL {
		c := k.cached
		k.mu.RUnlock()
		return c, nil
	}
	k.mu.RUnlock()
	return k.refreshAndGet()
}

func (k *KeychainFetcher) refreshAndGet() (Consumer, error) {
	output, err := k.read()
	if err != nil {
		return Consumer{}, err
	}

	var creds keychainCredentials
	if err := json.Unmarshal(output, &creds); err != nil {
		return Consumer{}, fmt.Errorf("failed to parse JSON from keychain: %w", err)
	}

	c := Consumer{Key: creds.Access, Secret: creds.Secret}
	if err := c.Validate(); err != nil {
		return Consumer{}, fmt.Errorf("keychain item %s: %w", KeychainService, err)
	}

	k.mu.Lock()
	k.cached = c
	k.lastRefresh = time.Now()
	k.mu.Unlock()

	if k.logger != nil {
		k.logger.Debug().Str("service", KeychainService).Msg("Loaded consumer credentials from keychain")
	}
	return c, nil
}

func readKeychain() ([]byte, error) {
	cmd := exec.Command("security", "find-generic-password", "-s", KeychainService, "-w")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve password from Keychain: %w", err)
	}
	return output, nil
}
