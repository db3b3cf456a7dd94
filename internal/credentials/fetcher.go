package credentials

import (
	"errors"
	"fmt"
)

// ErrMissing is returned when a fetcher finds no usable consumer key pair.
var ErrMissing = errors.New("missing consumer credentials")

// Consumer is the OAuth1 consumer key pair used to sign upstream requests.
type Consumer struct {
	Key    string
	Secret string
}

// String never prints the secret.
func (c Consumer) String() string {
	return fmt.Sprintf("Consumer{Key: %q, Secret: [redacted]}", c.Key)
}

// Validate reports ErrMissing when either half of the pair is empty.
func (c Consumer) Validate() error {
	if c.Key == "" || c.Secret == "" {
		return ErrMissing
	}
	return nil
}

// Fetcher defines the interface for retrieving consumer credentials
type Fetcher interface {
	GetConsumer() (Consumer, error)
}

// StaticFetcher returns a fixed pair, typically taken from loaded settings.
type StaticFetcher struct {
	consumer Consumer
}

func NewStaticFetcher(key, secret string) *StaticFetcher {
	return &StaticFetcher{consumer: Consumer{Key: key, Secret: secret}}
}

func (s *StaticFetcher) GetConsumer() (Consumer, error) {
	if err := s.consumer.Validate(); err != nil {
		return Consumer{}, err
	}
	return s.consumer, nil
}
