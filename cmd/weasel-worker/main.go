//go:build js && wasm

package main

import (
	"context"
	"net/http"
	"sync"

	"github.com/dvcrn/weasel/internal/app"
	"github.com/dvcrn/weasel/internal/cache"
	"github.com/dvcrn/weasel/internal/credentials"
	"github.com/dvcrn/weasel/internal/logger"
	"github.com/rs/zerolog"
	"github.com/syumai/workers"
)

// lazyService builds the service inside the first request, since Workers
// only allow KV and fetch calls while handling one.
type lazyService struct {
	logger zerolog.Logger

	mu  sync.Mutex
	svc *app.Service
}

func (l *lazyService) get(ctx context.Context) (*app.Service, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.svc != nil {
		return l.svc, nil
	}

	l.logger.Info().Msg("📦 Using Cloudflare KV settings")
	kvFetcher, err := credentials.NewCloudflareKVFetcher()
	if err != nil {
		return nil, err
	}
	settings, err := kvFetcher.GetSettings()
	if err != nil {
		return nil, err
	}

	// No background tasks in a worker: the point is fetched on demand and
	// refreshed through the admin endpoint.
	svc, err := app.New(ctx, app.Options{
		Settings:    settings,
		Credentials: kvFetcher,
		Cache:       cache.Config{Policy: cache.PolicyManual},
	}, l.logger)
	if err != nil {
		return nil, err
	}
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	l.svc = svc
	return svc, nil
}

func (l *lazyService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	svc, err := l.get(r.Context())
	if err != nil {
		l.logger.Error().Err(err).Msg("Failed to initialise service")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if _, ok := svc.Cache().Get(); !ok {
		if err := svc.RefreshNow(r.Context()); err != nil {
			l.logger.Error().Err(err).Msg("Initial refresh failed")
		}
	}
	svc.Handler().ServeHTTP(w, r)
}

func main() {
	workers.Serve(&lazyService{logger: logger.New()})
}
