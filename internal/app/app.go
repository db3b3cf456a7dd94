package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dvcrn/weasel/internal/auth"
	"github.com/dvcrn/weasel/internal/cache"
	"github.com/dvcrn/weasel/internal/config"
	"github.com/dvcrn/weasel/internal/credentials"
	"github.com/dvcrn/weasel/internal/device"
	"github.com/dvcrn/weasel/internal/events"
	"github.com/dvcrn/weasel/internal/logger"
	"github.com/dvcrn/weasel/internal/openpaths"
	"github.com/dvcrn/weasel/internal/server"
	"github.com/dvcrn/weasel/internal/tracker"
	"github.com/rs/zerolog"
)

// Options configures a Service.
type Options struct {
	Settings *config.Settings
	// Credentials supplies the consumer pair. Nil uses the keys in Settings.
	Credentials credentials.Fetcher

	BaseURL     string
	HTTPClient  openpaths.HTTPClient
	Header      auth.Policy
	MaxAttempts int
	Cache       cache.Config

	Proximity      float64
	DeviceID       string
	DeviceFunction string
	SparkBaseURL   string

	AdminKey string
}

// Service owns the polling cache and everything hanging off it.
type Service struct {
	logger   zerolog.Logger
	headers  *auth.HeaderSource
	client   *openpaths.Client
	cache    *cache.LastPointCache
	bus      events.Bus
	tracker  *tracker.Tracker
	notifier device.Notifier
	server   *server.Server
}

func New(ctx context.Context, opts Options, log zerolog.Logger) (*Service, error) {
	if opts.Settings == nil {
		return nil, fmt.Errorf("%w: settings are required", config.ErrConfig)
	}
	creds := opts.Credentials
	if creds == nil {
		creds = credentials.NewStaticFetcher(opts.Settings.Keys.Access, opts.Settings.Keys.Secret)
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = openpaths.BaseURL
	}

	s := &Service{logger: log}
	s.bus = events.New(logger.Component(log, "events"))

	signer := auth.NewSigner(creds, http.MethodGet, baseURL)
	s.headers = auth.NewHeaderSource(signer, opts.Header, logger.Component(log, "auth"))

	clientOpts := []openpaths.Option{
		openpaths.WithBaseURL(baseURL),
		openpaths.WithLogger(logger.Component(log, "openpaths")),
	}
	if opts.MaxAttempts > 0 {
		clientOpts = append(clientOpts, openpaths.WithMaxAttempts(opts.MaxAttempts))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, openpaths.WithHTTPClient(opts.HTTPClient))
	}
	s.client = openpaths.NewClient(s.headers, clientOpts...)
	s.cache = cache.New(s.client, opts.Cache, logger.Component(log, "cache"), s.bus)

	notifier, err := newNotifier(ctx, opts, log)
	if err != nil {
		return nil, err
	}
	s.notifier = notifier

	serverOpts := []server.Option{
		server.WithRefresher(s.cache),
		server.WithEvents(s.bus),
		server.WithAdminKey(opts.AdminKey),
	}
	if known := opts.Settings.KnownLocations(); len(known) > 0 {
		s.tracker = tracker.New(known, opts.Proximity, s.notifier, s.bus, logger.Component(log, "tracker"))
		serverOpts = append(serverOpts, server.WithLabels(s.tracker))
	}

	srv, err := server.New(logger.Component(log, "server"), s.cache, serverOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}
	s.server = srv

	return s, nil
}

func newNotifier(ctx context.Context, opts Options, log zerolog.Logger) (device.Notifier, error) {
	l := logger.Component(log, "device")
	if !opts.Settings.HasSpark() {
		return device.NoopNotifier{Logger: l}, nil
	}
	if opts.DeviceID == "" {
		log.Warn().Msg("Spark keys configured but no device id given, device notifications disabled")
		return device.NoopNotifier{Logger: l}, nil
	}
	return device.NewSparkNotifier(ctx, device.SparkConfig{
		Username: opts.Settings.Keys.Spark.Username,
		Password: opts.Settings.Keys.Spark.Password,
		DeviceID: opts.DeviceID,
		Function: opts.DeviceFunction,
		BaseURL:  opts.SparkBaseURL,
	}, l)
}

// Start subscribes the tracker and launches the refresh policy.
func (s *Service) Start(ctx context.Context) error {
	if s.tracker != nil {
		if err := s.tracker.Start(ctx); err != nil {
			return fmt.Errorf("failed to start tracker: %w", err)
		}
	}
	s.cache.Start(ctx)
	return nil
}

// ValidateCredentials signs a header up front so bad credentials show at
// startup rather than on the first poll.
func (s *Service) ValidateCredentials() error {
	return s.headers.Renew()
}

// RefreshNow fetches the latest point in the caller's goroutine.
func (s *Service) RefreshNow(ctx context.Context) error {
	return s.cache.RefreshNow(ctx)
}

func (s *Service) Cache() *cache.LastPointCache {
	return s.cache
}

func (s *Service) Handler() http.Handler {
	return s.server
}

// Close stops the refresh task and waits for pending notifications.
func (s *Service) Close() error {
	s.cache.Close()

	var errs []error
	if s.tracker != nil {
		errs = append(errs, s.tracker.Close())
	}
	errs = append(errs, s.server.Close())
	s.bus.WaitAsync()
	return errors.Join(errs...)
}
