package auth

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// RefreshOn selects when a header is re-signed outside of failures.
type RefreshOn string

const (
	// RefreshOnFailure keeps a header until a request with it fails.
	RefreshOnFailure RefreshOn = "failure"
	// RefreshOnRequestCount also re-signs once a header has been used more
	// than MaxAge times.
	RefreshOnRequestCount RefreshOn = "request_count"

	// DefaultMaxAge is the request count after which a header is re-signed.
	DefaultMaxAge = 50
)

// ParseRefreshOn maps a flag value to a RefreshOn.
func ParseRefreshOn(s string) (RefreshOn, error) {
	switch RefreshOn(s) {
	case RefreshOnFailure, RefreshOnRequestCount:
		return RefreshOn(s), nil
	case "":
		return RefreshOnFailure, nil
	}
	return "", fmt.Errorf("unknown header refresh policy %q (want %s or %s)", s, RefreshOnFailure, RefreshOnRequestCount)
}

// Policy configures a HeaderSource.
type Policy struct {
	RefreshOn RefreshOn
	MaxAge    int
}

// HeaderSource owns the current signed header. Headers are signed lazily on
// first use and replaced, never edited, when the policy or a failure says so.
type HeaderSource struct {
	signer *Signer
	policy Policy
	logger zerolog.Logger

	mu       sync.Mutex
	current  *Header
	signings int
}

// NewHeaderSource creates a source. A non-positive MaxAge uses DefaultMaxAge.
func NewHeaderSource(signer *Signer, policy Policy, logger zerolog.Logger) *HeaderSource {
	if policy.RefreshOn == "" {
		policy.RefreshOn = RefreshOnFailure
	}
	if policy.MaxAge <= 0 {
		policy.MaxAge = DefaultMaxAge
	}
	return &HeaderSource{
		signer: signer,
		policy: policy,
		logger: logger,
	}
}

// Current returns the header to attach to the next request and counts the use.
func (s *HeaderSource) Current() (Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.policy.RefreshOn == RefreshOnRequestCount && s.current.UseCount >= s.policy.MaxAge {
		s.logger.Debug().
			Int("use_count", s.current.UseCount).
			Int("max_age", s.policy.MaxAge).
			Msg("Auth header reached max age, re-signing")
		s.current = nil
	}

	if s.current == nil {
		if err := s.signLocked(); err != nil {
			return Header{}, err
		}
	}

	next := *s.current
	next.UseCount++
	s.current = &next
	return next, nil
}

// Invalidate drops the current header so the next Current call re-signs.
func (s *HeaderSource) Invalidate() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Renew signs a replacement header immediately.
func (s *HeaderSource) Renew() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signLocked()
}

// Signings returns how many headers have been signed so far.
func (s *HeaderSource) Signings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signings
}

// Policy returns the effective policy.
func (s *HeaderSource) Policy() Policy {
	return s.policy
}

func (s *HeaderSource) signLocked() error {
	h, err := s.signer.Sign()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign auth header")
		return err
	}
	s.current = &h
	s.signings++
	s.logger.Debug().Int("signings", s.signings).Msg("Signed new auth header")
	return nil
}
