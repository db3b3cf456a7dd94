package credentials

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeychainFetcher(t *testing.T) {
	fetcher := NewKeychainFetcher(nil)

	if fetcher.cacheTTL != 5*time.Minute {
		t.Errorf("Expected cacheTTL to be 5 minutes, got %v", fetcher.cacheTTL)
	}
	if fetcher.read == nil {
		t.Error("Expected keychain reader to be set")
	}
}

func TestKeychainFetcherCachesConsumer(t *testing.T) {
	calls := 0
	fetcher := NewKeychainFetcher(nil)
	fetcher.read = func() ([]byte, error) {
		calls++
		return []byte(`{"access": "ak", "secret": "sk"}`), nil
	}

	for i := 0; i < 3; i++ {
		c, err := fetcher.GetConsumer()
		require.NoError(t, err)
		assert.Equal(t, Consumer{Key: "ak", Secret: "sk"}, c)
	}
	assert.Equal(t, 1, calls)

	fetcher.lastRefresh = time.Now().Add(-time.Hour)
	_, err := fetcher.GetConsumer()
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestKeychainFetcherErrors(t *testing.T) {
	fetcher := NewKeychainFetcher(nil)

	fetcher.read = func() ([]byte, error) { return nil, errors.New("no item") }
	_, err := fetcher.GetConsumer()
	assert.EqualError(t, err, "no item")

	fetcher.read = func() ([]byte, error) { return []byte(`not json`), nil }
	_, err = fetcher.GetConsumer()
	assert.ErrorContains(t, err, "failed to parse JSON from keychain")

	fetcher.read = func() ([]byte, error) { return []byte(`{"access": "ak"}`), nil }
	_, err = fetcher.GetConsumer()
	assert.ErrorIs(t, err, ErrMissing)
}

func TestConsumerStringRedactsSecret(t *testing.T) {
	c := Consumer{Key: "ak", Secret: "super-secret"}
	assert.NotContains(t, c.String(), "super-secret")
	assert.Contains(t, c.String(), "ak")
}

func TestStaticFetcher(t *testing.T) {
	c, err := NewStaticFetcher("ak", "sk").GetConsumer()
	require.NoError(t, err)
	assert.Equal(t, "ak", c.Key)

	_, err = NewStaticFetcher("", "sk").GetConsumer()
	assert.ErrorIs(t, err, ErrMissing)
}
