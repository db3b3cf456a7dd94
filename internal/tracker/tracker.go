package tracker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dvcrn/weasel/internal/device"
	"github.com/dvcrn/weasel/internal/events"
	"github.com/dvcrn/weasel/internal/geo"
	"github.com/dvcrn/weasel/internal/openpaths"
	"github.com/rs/zerolog"
)

const (
	// DefaultProximity is how close, in metres, a point must be to a known
	// location to take its name.
	DefaultProximity = 500.0

	notifyTimeout = 30 * time.Second
)

// Tracker resolves each new point to a named location and notifies the
// device when the name changes.
type Tracker struct {
	known     []geo.Location
	proximity float64
	notifier  device.Notifier
	bus       events.Bus
	logger    zerolog.Logger

	ctx     context.Context
	label   atomic.Value
	handler func(events.PointUpdated)
}

// New creates a tracker. A non-positive proximity uses DefaultProximity.
func New(known []geo.Location, proximity float64, notifier device.Notifier, bus events.Bus, logger zerolog.Logger) *Tracker {
	if proximity <= 0 {
		proximity = DefaultProximity
	}
	if notifier == nil {
		notifier = device.NoopNotifier{Logger: logger}
	}
	t := &Tracker{
		known:     known,
		proximity: proximity,
		notifier:  notifier,
		bus:       bus,
		logger:    logger,
		ctx:       context.Background(),
	}
	t.handler = t.onPoint
	return t
}

// Start subscribes to point updates. ctx bounds device notifications.
func (t *Tracker) Start(ctx context.Context) error {
	t.ctx = ctx
	return t.bus.SubscribeAsync(events.TopicPointUpdated, t.handler)
}

func (t *Tracker) Close() error {
	return t.bus.Unsubscribe(events.TopicPointUpdated, t.handler)
}

// Label returns the last resolved label, or "" before the first point.
func (t *Tracker) Label() string {
	l, _ := t.label.Load().(string)
	return l
}

// Resolve names the known location p is near, or geo.Travelling.
func (t *Tracker) Resolve(p openpaths.Point) string {
	return geo.Resolve(p.Location(), t.known, t.proximity)
}

func (t *Tracker) onPoint(e events.PointUpdated) {
	label := t.Resolve(e.Point)
	previous, _ := t.label.Swap(label).(string)
	if previous == label {
		return
	}

	t.logger.Info().
		Str("label", label).
		Str("previous", previous).
		Msg("Location changed")
	t.bus.Publish(events.TopicLocationResolved, events.LocationResolved{Label: label, Previous: previous})

	ctx, cancel := context.WithTimeout(t.ctx, notifyTimeout)
	defer cancel()
	ok, err := t.notifier.NotifyLocation(ctx, label)
	switch {
	case err != nil:
		t.logger.Error().Err(err).Str("label", label).Msg("Failed to notify device")
	case !ok:
		t.logger.Warn().Str("label", label).Msg("Device rejected location")
	}
}
