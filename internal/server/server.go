package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dvcrn/weasel/internal/events"
	"github.com/dvcrn/weasel/internal/openpaths"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RootMessage is served at /.
const RootMessage = "There is nothing here. Sorry and all that."

// PointReader returns the cached point without blocking on the network.
type PointReader interface {
	Get() (openpaths.Point, bool)
}

// Refresher triggers an immediate upstream fetch.
type Refresher interface {
	RefreshNow(ctx context.Context) error
}

// LabelReader returns the currently resolved location label.
type LabelReader interface {
	Label() string
}

type Server struct {
	points    PointReader
	refresher Refresher
	labels    LabelReader
	bus       events.Subscriber
	adminKey  string

	router chi.Router
	logger zerolog.Logger

	hub     *hub
	onPoint func(events.PointUpdated)
	closeMu sync.Once
}

type Option func(*Server)

// WithRefresher enables POST /admin/refresh.
func WithRefresher(r Refresher) Option {
	return func(s *Server) { s.refresher = r }
}

// WithLabels enables GET /location.
func WithLabels(l LabelReader) Option {
	return func(s *Server) { s.labels = l }
}

// WithEvents enables GET /stream, fed by point updates on bus.
func WithEvents(bus events.Subscriber) Option {
	return func(s *Server) { s.bus = bus }
}

// WithAdminKey sets the key admin endpoints require.
func WithAdminKey(key string) Option {
	return func(s *Server) { s.adminKey = key }
}

func New(logger zerolog.Logger, points PointReader, opts ...Option) (*Server, error) {
	s := &Server{
		points: points,
		logger: logger,
		hub:    newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.bus != nil {
		s.onPoint = s.hub.broadcast
		if err := s.bus.Subscribe(events.TopicPointUpdated, s.onPoint); err != nil {
			return nil, err
		}
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Get("/", s.rootHandler)
	r.Get("/lat", s.latHandler)
	r.Get("/lon", s.lonHandler)
	r.Get("/time", s.timeHandler)
	r.Get("/point", s.pointHandler)
	r.Get("/health", s.healthHandler)
	if s.labels != nil {
		r.Get("/location", s.locationHandler)
	}
	if s.bus != nil {
		r.Get("/stream", s.streamHandler)
	}
	if s.refresher != nil {
		r.Post("/admin/refresh", s.adminMiddleware(s.refreshHandler))
	}
	r.NotFound(s.notFoundHandler)

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close detaches the server from the event bus and ends open streams.
func (s *Server) Close() error {
	var err error
	s.closeMu.Do(func() {
		if s.bus != nil {
			err = s.bus.Unsubscribe(events.TopicPointUpdated, s.onPoint)
		}
		s.hub.close()
	})
	return err
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		s.logger.Debug().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("Incoming request")
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Finished request")
	})
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn().
		Str("method", r.Method).
		Str("uri", r.RequestURI).
		Str("remote_addr", r.RemoteAddr).
		Str("user_agent", r.UserAgent()).
		Msg("Unhandled route")
	http.NotFound(w, r)
}
