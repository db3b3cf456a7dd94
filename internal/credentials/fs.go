package credentials

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dvcrn/weasel/internal/config"
)

type fsSettings struct {
	Keys struct {
		Access string `json:"access"`
		Secret string `json:"secret"`
	} `json:"keys"`
	Locations []fsLocation `json:"locations"`
}

type fsLocation struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// FSFetcher reads the consumer pair from a settings file on every call, so
// edits to the file are picked up without a restart.
type FSFetcher struct {
	Path string
}

func NewFSFetcher(path string) *FSFetcher {
	return &FSFetcher{Path: path}
}

func (f *FSFetcher) GetConsumer() (Consumer, error) {
	s, err := config.Load(f.Path)
	if err != nil {
		return Consumer{}, err
	}
	return Consumer{Key: s.Keys.Access, Secret: s.Keys.Secret}, nil
}

// InitSettings writes a starter settings file holding c. The parent directory
// is created with 0700 and the file with 0600 since it contains the secret.
func InitSettings(path string, c Consumer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := EnsureParentDir(path); err != nil {
		return err
	}

	var s fsSettings
	s.Keys.Access = c.Key
	s.Keys.Secret = c.Secret
	s.Locations = []fsLocation{}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}
