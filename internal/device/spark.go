package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	// SparkBaseURL is the device cloud API.
	SparkBaseURL = "https://api.spark.io"
	// DefaultFunction is the device function that receives the label.
	DefaultFunction = "location"

	sparkClientID = "spark"
	// tokenEarlyExpiry renews the bearer token this long before it expires.
	tokenEarlyExpiry = 30 * time.Second
)

// ErrDevice marks notifier misconfiguration and token failures.
var ErrDevice = errors.New("device notifier error")

type SparkConfig struct {
	Username string
	Password string
	DeviceID string
	Function string
	BaseURL  string
}

// SparkNotifier calls a function on a cloud-connected device with the label
// as its argument.
type SparkNotifier struct {
	cfg    SparkConfig
	client *http.Client
	logger zerolog.Logger
}

// NewSparkNotifier creates a notifier. The bearer token is obtained with a
// password grant on first use and renewed shortly before it expires.
func NewSparkNotifier(ctx context.Context, cfg SparkConfig, logger zerolog.Logger) (*SparkNotifier, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrDevice)
	}
	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("%w: device id is required", ErrDevice)
	}
	if cfg.Function == "" {
		cfg.Function = DefaultFunction
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = SparkBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	oc := &oauth2.Config{
		ClientID:     sparkClientID,
		ClientSecret: sparkClientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cfg.BaseURL + "/oauth/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
	src := &passwordTokenSource{ctx: ctx, cfg: oc, username: cfg.Username, password: cfg.Password, logger: logger}
	ts := oauth2.ReuseTokenSourceWithExpiry(nil, src, tokenEarlyExpiry)

	return &SparkNotifier{
		cfg:    cfg,
		client: oauth2.NewClient(ctx, ts),
		logger: logger,
	}, nil
}

// NotifyLocation reports true only when the device API answers 200.
func (s *SparkNotifier) NotifyLocation(ctx context.Context, label string) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/devices/%s/%s", s.cfg.BaseURL, url.PathEscape(s.cfg.DeviceID), url.PathEscape(s.cfg.Function))
	form := url.Values{"args": {label}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to notify device: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Info().
		Str("device", s.cfg.DeviceID).
		Str("label", label).
		Int("status", resp.StatusCode).
		Msg("Notified device")

	return resp.StatusCode == http.StatusOK, nil
}

type passwordTokenSource struct {
	ctx      context.Context
	cfg      *oauth2.Config
	username string
	password string
	logger   zerolog.Logger
}

func (p *passwordTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.cfg.PasswordCredentialsToken(p.ctx, p.username, p.password)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to obtain device token")
		return nil, fmt.Errorf("%w: %v", ErrDevice, err)
	}
	p.logger.Debug().Time("expiry", tok.Expiry).Msg("Obtained device token")
	return tok, nil
}
