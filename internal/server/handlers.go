package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dvcrn/weasel/internal/cache"
	"github.com/dvcrn/weasel/internal/openpaths"
)

const (
	notAvailable = "location not yet available"
	timeLayout   = "2006-01-02T15:04:05"
)

type pointResponse struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	T    int64   `json:"t"`
	Time string  `json:"time"`
}

func newPointResponse(p openpaths.Point) pointResponse {
	return pointResponse{Lat: p.Lat, Lon: p.Lon, T: p.T, Time: formatTime(p.T)}
}

// formatFloat renders v the shortest way that round-trips, keeping a
// trailing ".0" on whole numbers.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// formatTime renders t as local wall-clock time without a zone offset.
func formatTime(t int64) string {
	return time.Unix(t, 0).Local().Format(timeLayout)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// snapshot reads the cache once. It writes 503 and returns false when
// nothing has been fetched yet.
func (s *Server) snapshot(w http.ResponseWriter) (openpaths.Point, bool) {
	p, ok := s.points.Get()
	if !ok {
		w.Header().Set("Retry-After", "30")
		writeText(w, http.StatusServiceUnavailable, notAvailable)
	}
	return p, ok
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, RootMessage)
}

func (s *Server) latHandler(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.snapshot(w); ok {
		writeText(w, http.StatusOK, formatFloat(p.Lat))
	}
}

func (s *Server) lonHandler(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.snapshot(w); ok {
		writeText(w, http.StatusOK, formatFloat(p.Lon))
	}
}

func (s *Server) timeHandler(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.snapshot(w); ok {
		writeText(w, http.StatusOK, formatTime(p.T))
	}
}

func (s *Server) pointHandler(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.snapshot(w); ok {
		s.writeJSON(w, http.StatusOK, newPointResponse(p))
	}
}

func (s *Server) locationHandler(w http.ResponseWriter, r *http.Request) {
	label := s.labels.Label()
	if label == "" {
		writeText(w, http.StatusServiceUnavailable, notAvailable)
		return
	}
	writeText(w, http.StatusOK, label)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	_, ok := s.points.Get()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"has_point": ok,
	})
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	err := s.refresher.RefreshNow(r.Context())
	switch {
	case err == nil:
		p, _ := s.points.Get()
		s.writeJSON(w, http.StatusOK, newPointResponse(p))
	case errors.Is(err, cache.ErrRefreshInProgress):
		writeText(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Msg("Manual refresh failed")
		writeText(w, http.StatusBadGateway, "refresh failed")
	}
}
