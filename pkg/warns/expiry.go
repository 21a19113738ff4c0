package warns

import (
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// ExpiryPolicy decides whether a warning still counts.
//
// A dated warning is active while now < date+TTL; a zero TTL means warnings
// never expire. Undated (legacy) warnings follow UndatedActive.
type ExpiryPolicy struct {
	TTL           time.Duration
	UndatedActive bool
}

// IsActive reports whether w is active at now
func (p ExpiryPolicy) IsActive(w models.Warning, now time.Time) bool {
	if !w.HasDate() {
		return p.UndatedActive
	}
	if p.TTL <= 0 {
		return true
	}
	return now.Before(w.Date.Add(p.TTL))
}

// Active returns the active subset of warns, keeping insertion order
func (p ExpiryPolicy) Active(warns []models.Warning, now time.Time) []models.Warning {
	active := make([]models.Warning, 0, len(warns))
	for _, w := range warns {
		if p.IsActive(w, now) {
			active = append(active, w)
		}
	}
	return active
}
