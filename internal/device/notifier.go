package device

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier pushes the current location label to a remote device.
type Notifier interface {
	NotifyLocation(ctx context.Context, label string) (bool, error)
}

// NoopNotifier accepts every label without sending it anywhere.
type NoopNotifier struct {
	Logger zerolog.Logger
}

func (n NoopNotifier) NotifyLocation(_ context.Context, label string) (bool, error) {
	n.Logger.Debug().Str("label", label).Msg("No device configured, dropping location")
	return true, nil
}
