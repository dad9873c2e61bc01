package simulation

import (
	"github.com/ukydev/emergency-priority/internal/geo"
	"github.com/ukydev/emergency-priority/internal/models"
)

// FollowZoom is the zoom level used while the map follows the vehicle.
const FollowZoom = 14

// Narrator speaks instructions aloud. Calls must not block.
type Narrator interface {
	Speak(text string)
	Cancel()
}

// MapViewport moves the external map camera. Calls must not block.
type MapViewport interface {
	FitBounds(southWest, northEast geo.Point)
	PanTo(p geo.Point)
	SetZoom(level int)
}

// Publisher receives a fresh snapshot after every state change. Implementations
// must not call back into the Controller.
type Publisher interface {
	Publish(s models.Snapshot)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(s models.Snapshot)

func (f PublisherFunc) Publish(s models.Snapshot) { f(s) }
