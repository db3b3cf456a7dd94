package auth

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/dvcrn/weasel/internal/credentials"
	"github.com/google/uuid"
)

const (
	oauthVersion         = "1.0"
	oauthSignatureMethod = "HMAC-SHA1"
)

// ErrSign marks a failure to produce a signed header, including missing
// consumer credentials.
var ErrSign = errors.New("failed to sign request")

// Signer builds two-legged OAuth1 Authorization headers for one method and
// base URL. The signature covers only the oauth_* parameters, so a header
// can be reused across requests with different query strings.
type Signer struct {
	creds  credentials.Fetcher
	method string
	url    string

	now   func() time.Time
	nonce func() string
}

func NewSigner(creds credentials.Fetcher, method, url string) *Signer {
	return &Signer{
		creds:  creds,
		method: strings.ToUpper(method),
		url:    url,
		now:    time.Now,
		nonce:  newNonce,
	}
}

// Sign creates a header with a fresh nonce and timestamp.
func (s *Signer) Sign() (Header, error) {
	consumer, err := s.creds.GetConsumer()
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrSign, err)
	}

	issued := s.now()
	params := map[string]string{
		"oauth_consumer_key":     consumer.Key,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": oauthSignatureMethod,
		"oauth_timestamp":        strconv.FormatInt(issued.Unix(), 10),
		"oauth_version":          oauthVersion,
	}

	signer := &oauth1.HMACSigner{ConsumerSecret: consumer.Secret}
	signature, err := signer.Sign("", s.baseString(params))
	if err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrSign, err)
	}
	params["oauth_signature"] = signature

	return Header{Value: headerValue(params), IssuedAt: issued}, nil
}

// baseString is METHOD&url&params with each part percent encoded.
func (s *Signer) baseString(params map[string]string) string {
	return strings.Join([]string{
		oauth1.PercentEncode(s.method),
		oauth1.PercentEncode(s.url),
		oauth1.PercentEncode(normalize(params)),
	}, "&")
}

func normalize(params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, oauth1.PercentEncode(k)+"="+oauth1.PercentEncode(v))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

func headerValue(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, oauth1.PercentEncode(k), oauth1.PercentEncode(params[k])))
	}
	return "OAuth " + strings.Join(parts, ", ")
}

func newNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
