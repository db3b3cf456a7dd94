package events

import (
	eventbus "github.com/mysteriumnetwork/EventBus"
	"github.com/rs/zerolog"
)

// Bus allows subscribing and publishing data by topic
type Bus interface {
	Publisher
	Subscriber
	// WaitAsync blocks until all async handlers have returned.
	WaitAsync()
}

// Publisher publishes events
type Publisher interface {
	Publish(topic string, data interface{})
}

// Subscriber subscribes to events. Handlers are funcs taking the topic's
// event type.
type Subscriber interface {
	Subscribe(topic string, fn interface{}) error
	SubscribeAsync(topic string, fn interface{}) error
	Unsubscribe(topic string, fn interface{}) error
}

type bus struct {
	bus    eventbus.Bus
	logger zerolog.Logger
}

// New returns an in-process Bus.
func New(logger zerolog.Logger) Bus {
	return &bus{
		bus:    eventbus.New(),
		logger: logger,
	}
}

func (b *bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync runs fn on its own goroutine, one event at a time.
func (b *bus) SubscribeAsync(topic string, fn interface{}) error {
	return b.bus.SubscribeAsync(topic, fn, true)
}

func (b *bus) Unsubscribe(topic string, fn interface{}) error {
	return b.bus.Unsubscribe(topic, fn)
}

func (b *bus) Publish(topic string, data interface{}) {
	b.logger.Debug().Str("topic", topic).Interface("event", data).Msg("Published event")
	b.bus.Publish(topic, data)
}

func (b *bus) WaitAsync() {
	b.bus.WaitAsync()
}
