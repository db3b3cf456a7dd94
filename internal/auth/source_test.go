package auth

import (
	"testing"

	"github.com/dvcrn/weasel/internal/credentials"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSource(policy Policy) *HeaderSource {
	signer := NewSigner(credentials.NewStaticFetcher("ck", "cs"), "GET", "https://openpaths.cc/api/1")
	return NewHeaderSource(signer, policy, zerolog.Nop())
}

func TestHeaderSourceSignsLazily(t *testing.T) {
	s := newSource(Policy{})
	assert.Equal(t, 0, s.Signings())

	h, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Signings())
	assert.Equal(t, 1, h.UseCount)
}

func TestHeaderSourceFailurePolicyKeepsHeader(t *testing.T) {
	s := newSource(Policy{RefreshOn: RefreshOnFailure, MaxAge: 2})

	first, err := s.Current()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		h, err := s.Current()
		require.NoError(t, err)
		assert.Equal(t, first.Value, h.Value)
	}
	assert.Equal(t, 1, s.Signings())
}

func TestHeaderSourceRequestCountPolicy(t *testing.T) {
	s := newSource(Policy{RefreshOn: RefreshOnRequestCount, MaxAge: 3})

	var values []string
	var counts []int
	for i := 0; i < 7; i++ {
		h, err := s.Current()
		require.NoError(t, err)
		values = append(values, h.Value)
		counts = append(counts, h.UseCount)
	}

	assert.Equal(t, []int{1, 2, 3, 1, 2, 3, 1}, counts)
	assert.Equal(t, 3, s.Signings())
	assert.Equal(t, values[0], values[2])
	assert.NotEqual(t, values[2], values[3])
}

func TestHeaderSourceInvalidateAndRenew(t *testing.T) {
	s := newSource(Policy{})

	first, err := s.Current()
	require.NoError(t, err)

	s.Invalidate()
	second, err := s.Current()
	require.NoError(t, err)
	assert.NotEqual(t, first.Value, second.Value)
	assert.Equal(t, 2, s.Signings())

	require.NoError(t, s.Renew())
	third, err := s.Current()
	require.NoError(t, err)
	assert.NotEqual(t, second.Value, third.Value)
	assert.Equal(t, 1, third.UseCount)
	assert.Equal(t, 3, s.Signings())
}

func TestHeaderSourceDefaults(t *testing.T) {
	s := newSource(Policy{})
	assert.Equal(t, RefreshOnFailure, s.Policy().RefreshOn)
	assert.Equal(t, DefaultMaxAge, s.Policy().MaxAge)
}

func TestParseRefreshOn(t *testing.T) {
	got, err := ParseRefreshOn("request_count")
	require.NoError(t, err)
	assert.Equal(t, RefreshOnRequestCount, got)

	got, err = ParseRefreshOn("")
	require.NoError(t, err)
	assert.Equal(t, RefreshOnFailure, got)

	_, err = ParseRefreshOn("sometimes")
	assert.Error(t, err)
}
