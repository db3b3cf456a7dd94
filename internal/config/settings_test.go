package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadFlatKeys(t *testing.T) {
	path := writeSettings(t, "settings.json", `{
		"keys": {"access": "ak", "secret": "sk"},
		"locations": [
			{"name": "HOME", "lat": 51.5, "lon": -0.12},
			{"name": "WORK", "lat": 51, "lon": 0}
		]
	}`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ak", s.Keys.Access)
	assert.Equal(t, "sk", s.Keys.Secret)
	assert.False(t, s.HasSpark())

	locs := s.KnownLocations()
	require.Len(t, locs, 2)
	assert.Equal(t, "HOME", locs[0].Name)
	assert.Equal(t, 51.5, locs[0].Lat)
	assert.Equal(t, "WORK", locs[1].Name)
	assert.Equal(t, 51.0, locs[1].Lat)
}

func TestLoadNestedOpenPathsKeysAndSpark(t *testing.T) {
	path := writeSettings(t, "settings", `{
		"keys": {
			"openpaths": {"access": "ak", "secret": "sk"},
			"spark": {"username": "me@example.com", "password": "pw"}
		}
	}`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ak", s.Keys.Access)
	assert.Equal(t, "sk", s.Keys.Secret)
	require.True(t, s.HasSpark())
	assert.Equal(t, "me@example.com", s.Keys.Spark.Username)
	assert.Empty(t, s.KnownLocations())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParseValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing keys", `{}`, "Settings.Keys.Access"},
		{"missing secret", `{"keys": {"access": "ak"}}`, "Settings.Keys.Secret"},
		{"bad latitude", `{"keys": {"access": "a", "secret": "s"}, "locations": [{"name": "X", "lat": 91, "lon": 0}]}`, "Lat"},
		{"unnamed location", `{"keys": {"access": "a", "secret": "s"}, "locations": [{"lat": 1, "lon": 1}]}`, "Name"},
		{"half spark", `{"keys": {"access": "a", "secret": "s", "spark": {"username": "u"}}}`, "Password"},
		{"not json", `{"keys":`, "failed to parse settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseEnvironmentOverride(t *testing.T) {
	t.Setenv("WEASEL_KEYS_ACCESS", "from-env")
	t.Setenv("WEASEL_KEYS_SECRET", "secret-env")

	s, err := Parse([]byte(`{"keys": {"access": "from-file"}}`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Keys.Access)
	assert.Equal(t, "secret-env", s.Keys.Secret)
}
