package events

import (
	platformevents "github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/events"
	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/logger"
)

// InMemoryBus is a type alias to the platform InMemoryBus
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
