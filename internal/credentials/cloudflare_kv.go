//go:build js && wasm

package credentials

import (
	"fmt"

	"github.com/dvcrn/weasel/internal/config"
	"github.com/syumai/workers/cloudflare/kv"
)

const (
	// KVNamespace is the binding name configured in wrangler.toml.
	KVNamespace = "weasel_kv"
	// KVSettingsKey holds the settings document as JSON.
	KVSettingsKey = "settings"
)

// CloudflareKVFetcher retrieves settings from Cloudflare KV
type CloudflareKVFetcher struct {
	kvStore *kv.Namespace
}

// NewCloudflareKVFetcher creates a new Cloudflare KV-based credentials fetcher
func NewCloudflareKVFetcher() (*CloudflareKVFetcher, error) {
	kvStore, err := kv.NewNamespace(KVNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize KV namespace: %w", err)
	}
	return &CloudflareKVFetcher{kvStore: kvStore}, nil
}

// GetSettings reads and validates the settings document stored in KV.
func (c *CloudflareKVFetcher) GetSettings() (*config.Settings, error) {
	raw, err := c.kvStore.GetString(KVSettingsKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings from KV: %w", err)
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: no settings found in KV", config.ErrConfig)
	}
	return config.Parse([]byte(raw))
}

// GetConsumer returns the consumer pair from the KV settings document.
func (c *CloudflareKVFetcher) GetConsumer() (Consumer, error) {
	s, err := c.GetSettings()
	if err != nil {
		return Consumer{}, err
	}
	return Consumer{Key: s.Keys.Access, Secret: s.Keys.Secret}, nil
}
