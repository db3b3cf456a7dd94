package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dvcrn/weasel/internal/app"
	"github.com/dvcrn/weasel/internal/auth"
	"github.com/dvcrn/weasel/internal/cache"
	"github.com/dvcrn/weasel/internal/config"
	"github.com/dvcrn/weasel/internal/credentials"
	"github.com/dvcrn/weasel/internal/logger"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func main() {
	a := &cli.App{
		Name:  "weasel",
		Usage: "serve your most recent OpenPaths location over HTTP",
		Flags: []cli.Flag{
			settingsFlag,
			logLevelFlag,
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "poll OpenPaths and serve the last point",
				Action: serve,
				Flags: []cli.Flag{
					hostFlag,
					portFlag,
					credentialsFlag,
					refreshPolicyFlag,
					refreshIntervalFlag,
					headerRefreshFlag,
					headerMaxAgeFlag,
					maxAttemptsFlag,
					proximityFlag,
					deviceFlag,
					deviceFunctionFlag,
					adminKeyFlag,
					shutdownTimeoutFlag,
				},
			},
			{
				Name:   "init",
				Usage:  "write a starter settings file",
				Action: initSettings,
				Flags: []cli.Flag{
					accessFlag,
					secretFlag,
					forceFlag,
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := a.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) zerolog.Logger {
	return logger.WithLevel(logger.New(), c.String(logLevelFlag.Name))
}

func serve(c *cli.Context) error {
	log := newLogger(c)

	settingsPath := credentials.ResolveSettingsPath(c.String(settingsFlag.Name))
	settings, err := config.Load(settingsPath)
	if err != nil {
		return err
	}
	log.Info().Str("path", settingsPath).Int("locations", len(settings.Locations)).Msg("📄 Loaded settings")

	creds, err := credentialsFetcher(c.String(credentialsFlag.Name), settingsPath, log)
	if err != nil {
		return err
	}

	policy, err := cache.ParsePolicy(c.String(refreshPolicyFlag.Name))
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrConfig, err)
	}
	refreshOn, err := auth.ParseRefreshOn(c.String(headerRefreshFlag.Name))
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrConfig, err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(ctx, app.Options{
		Settings:       settings,
		Credentials:    creds,
		Header:         auth.Policy{RefreshOn: refreshOn, MaxAge: c.Int(headerMaxAgeFlag.Name)},
		MaxAttempts:    c.Int(maxAttemptsFlag.Name),
		Cache:          cache.Config{Policy: policy, Interval: c.Duration(refreshIntervalFlag.Name)},
		Proximity:      c.Float64(proximityFlag.Name),
		DeviceID:       c.String(deviceFlag.Name),
		DeviceFunction: c.String(deviceFunctionFlag.Name),
		AdminKey:       c.String(adminKeyFlag.Name),
	}, log)
	if err != nil {
		return err
	}

	validateCredentialsAtStartup(svc, log)

	if err := svc.Start(ctx); err != nil {
		return err
	}

	addr := net.JoinHostPort(c.String(hostFlag.Name), strconv.Itoa(c.Int(portFlag.Name)))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("refresh_policy", string(policy)).
			Str("header_refresh", string(refreshOn)).
			Msg("🚀 Starting server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = svc.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration(shutdownTimeoutFlag.Name))
	defer cancel()

	// Streams are hijacked connections, so close them before Shutdown waits.
	closeErr := svc.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		return err
	}
	return closeErr
}

func credentialsFetcher(source, settingsPath string, log zerolog.Logger) (credentials.Fetcher, error) {
	switch source {
	case credsSettings:
		log.Info().Str("path", settingsPath).Msg("📄 Using settings file credentials")
		return credentials.NewFSFetcher(settingsPath), nil
	case credsEnv:
		log.Info().Msg("📝 Using environment credentials")
		return credentials.NewEnvFetcher(), nil
	case credsKeychain:
		l := logger.Component(log, "keychain")
		log.Info().Str("service", credentials.KeychainService).Msg("🔑 Using keychain credentials")
		return credentials.NewKeychainFetcher(&l), nil
	}
	return nil, fmt.Errorf("%w: unknown credentials source %q", config.ErrConfig, source)
}

func validateCredentialsAtStartup(svc *app.Service, log zerolog.Logger) {
	if err := svc.ValidateCredentials(); err != nil {
		log.Error().Err(err).Msg("⚠️  Failed to validate credentials at startup")
		return
	}
	log.Info().Msg("✅ Credentials loaded successfully")
}

func initSettings(c *cli.Context) error {
	log := newLogger(c)

	path := c.String(settingsFlag.Name)
	if path == "" {
		path = credentials.DefaultSettingsPath()
	}
	if credentials.FileExists(path) && !c.Bool(forceFlag.Name) {
		return fmt.Errorf("%s already exists, pass --force to overwrite", path)
	}

	consumer := credentials.Consumer{Key: c.String(accessFlag.Name), Secret: c.String(secretFlag.Name)}
	if err := credentials.InitSettings(path, consumer); err != nil {
		return err
	}
	log.Info().Str("path", path).Str("access", logger.Preview(consumer.Key)).Msg("✅ Wrote settings")
	return nil
}
