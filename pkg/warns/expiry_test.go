package warns

import (
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestExpiryBoundaryIsMonotonic(t *testing.T) {
	policy := ExpiryPolicy{TTL: 72 * time.Hour}
	w := models.Warning{Date: ts("2024-01-01T10:00:00Z")}
	boundary := w.Date.Add(policy.TTL)

	for _, offset := range []time.Duration{-72 * time.Hour, -time.Hour, -time.Millisecond, -time.Nanosecond} {
		assert.True(t, policy.IsActive(w, boundary.Add(offset)), "active %v before the boundary", -offset)
	}
	for _, offset := range []time.Duration{0, time.Nanosecond, time.Hour, 365 * 24 * time.Hour} {
		assert.False(t, policy.IsActive(w, boundary.Add(offset)), "expired %v after the boundary", offset)
	}
}

func TestExpiryZeroTTLNeverExpires(t *testing.T) {
	policy := ExpiryPolicy{}
	w := models.Warning{Date: ts("2001-01-01T00:00:00Z")}

	assert.True(t, policy.IsActive(w, time.Now()))
}

func TestExpiryUndatedFollowsPolicy(t *testing.T) {
	legacy := models.Warning{Reason: "sin fecha"}
	now := time.Now()

	assert.True(t, ExpiryPolicy{TTL: time.Hour, UndatedActive: true}.IsActive(legacy, now))
	assert.False(t, ExpiryPolicy{TTL: time.Hour, UndatedActive: false}.IsActive(legacy, now))
	assert.False(t, ExpiryPolicy{UndatedActive: false}.IsActive(legacy, now))
}

func TestActiveKeepsOrderAndSkipsExpired(t *testing.T) {
	policy := ExpiryPolicy{TTL: 7 * 24 * time.Hour, UndatedActive: true}
	now := *ts("2024-01-10T00:00:00Z")
	warns := []models.Warning{
		{ID: "old", Date: ts("2023-12-01T00:00:00Z")},
		{ID: "a", Date: ts("2024-01-05T08:30:00Z")},
		{ID: "legacy"},
		{ID: "b", Date: ts("2024-01-09T00:00:00Z")},
	}

	active := policy.Active(warns, now)

	ids := make([]string, 0, len(active))
	for _, w := range active {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"a", "legacy", "b"}, ids)
	assert.Len(t, warns, 4)
}
