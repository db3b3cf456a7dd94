package config

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dvcrn/weasel/internal/geo"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. WEASEL_KEYS_ACCESS.
const EnvPrefix = "WEASEL"

// ErrConfig marks missing or invalid settings.
var ErrConfig = errors.New("invalid configuration")

// Settings is the application settings file.
type Settings struct {
	Keys      Keys              `mapstructure:"keys"`
	Locations []LocationSetting `mapstructure:"locations" validate:"dive"`
}

// Keys holds the upstream consumer credentials and optional device login.
// The OpenPaths block is the older nested layout and is folded into
// Access/Secret when those are empty.
type Keys struct {
	Access    string        `mapstructure:"access" validate:"required"`
	Secret    string        `mapstructure:"secret" validate:"required"`
	OpenPaths *ConsumerKeys `mapstructure:"openpaths"`
	Spark     *SparkKeys    `mapstructure:"spark"`
}

type ConsumerKeys struct {
	Access string `mapstructure:"access"`
	Secret string `mapstructure:"secret"`
}

type SparkKeys struct {
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
}

type LocationSetting struct {
	Name string  `mapstructure:"name" validate:"required"`
	Lat  float64 `mapstructure:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `mapstructure:"lon" validate:"gte=-180,lte=180"`
}

// Load reads and validates the settings file at path. Files without an
// extension are read as JSON.
func Load(path string) (*Settings, error) {
	v := newViper()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: failed to read settings %s: %v", ErrConfig, path, err)
	}
	return decode(v)
}

// Parse validates settings given as a JSON document.
func Parse(data []byte) (*Settings, error) {
	v := newViper()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: failed to parse settings: %v", ErrConfig, err)
	}
	return decode(v)
}

// KnownLocations returns the configured locations in file order.
func (s *Settings) KnownLocations() []geo.Location {
	locs := make([]geo.Location, 0, len(s.Locations))
	for _, l := range s.Locations {
		locs = append(locs, geo.NewLocation(l.Name, l.Lat, l.Lon))
	}
	return locs
}

// HasSpark reports whether device credentials are configured.
func (s *Settings) HasSpark() bool {
	return s.Keys.Spark != nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Bound explicitly so the keys can come from the environment alone.
	_ = v.BindEnv("keys.access")
	_ = v.BindEnv("keys.secret")
	return v
}

func decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if s.Keys.OpenPaths != nil {
		if s.Keys.Access == "" {
			s.Keys.Access = s.Keys.OpenPaths.Access
		}
		if s.Keys.Secret == "" {
			s.Keys.Secret = s.Keys.OpenPaths.Secret
		}
	}
	if err := validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

var validate = func() func(s *Settings) error {
	vd := validator.New()
	return func(s *Settings) error {
		err := vd.Struct(s)
		if err == nil {
			return nil
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrConfig, strings.Join(msgs, "; "))
	}
}()
