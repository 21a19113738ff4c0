package mod

import (
	"github.com/PancyStudios/PancyGuardGo/pkg/mqtt"
	"github.com/PancyStudios/PancyGuardGo/pkg/warns"
)

var (
	service *warns.Service
	events  mqtt.EventPublisher
)

// SetService wires the moderation service used by the /mod commands and the
// text commands. ev may be nil.
func SetService(s *warns.Service, ev mqtt.EventPublisher) {
	service = s
	events = ev
}

// Service returns the moderation service, or nil before SetService
func Service() *warns.Service {
	return service
}

// Events returns the audit event publisher, or nil
func Events() mqtt.EventPublisher {
	return events
}
