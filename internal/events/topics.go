package events

import "github.com/dvcrn/weasel/internal/openpaths"

const (
	// TopicPointUpdated is published with a PointUpdated after every
	// successful cache refresh.
	TopicPointUpdated = "point_updated"
	// TopicLocationResolved is published with a LocationResolved when the
	// resolved label changes.
	TopicLocationResolved = "location_resolved"
)

type PointUpdated struct {
	Point openpaths.Point
}

type LocationResolved struct {
	Label    string
	Previous string
}
