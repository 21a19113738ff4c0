package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestWithoutWarningRemovesExactlyOne(t *testing.T) {
	warns := []Warning{
		{ID: "a", Reason: "spam", Date: at("2024-01-01T10:00:00Z")},
		{ID: "b", Reason: "flood", Date: at("2024-01-02T10:00:00Z")},
		{ID: "c", Reason: "spam", Date: at("2024-01-03T10:00:00Z")},
	}

	out, ok := WithoutWarning(warns, warns[1])

	assert.True(t, ok)
	assert.Equal(t, []Warning{warns[0], warns[2]}, out)
	assert.Len(t, warns, 3, "input slice must not be modified")
	assert.Equal(t, "b", warns[1].ID)
}

func TestWithoutWarningLegacyDuplicates(t *testing.T) {
	dup := Warning{Reason: "antiguo"}
	warns := []Warning{dup, {Reason: "otro"}, dup}

	out, ok := WithoutWarning(warns, dup)

	assert.True(t, ok)
	assert.Equal(t, []Warning{{Reason: "otro"}, dup}, out)
}

func TestWithoutWarningNoMatch(t *testing.T) {
	warns := []Warning{{ID: "a"}}

	out, ok := WithoutWarning(warns, Warning{ID: "z"})

	assert.False(t, ok)
	assert.Equal(t, warns, out)
}

func TestSame(t *testing.T) {
	d := at("2024-01-01T10:00:00Z")

	assert.True(t, Warning{ID: "x", Reason: "a"}.Same(Warning{ID: "x", Reason: "b"}))
	assert.False(t, Warning{ID: "x"}.Same(Warning{ID: "y"}))
	assert.True(t, Warning{Reason: "a", Date: d}.Same(Warning{Reason: "a", Date: at("2024-01-01T10:00:00Z")}))
	assert.False(t, Warning{Reason: "a", Date: d}.Same(Warning{Reason: "a"}))
	assert.False(t, Warning{ID: "x", Reason: "a"}.Same(Warning{Reason: "a"}))
}

func TestUserIsBanned(t *testing.T) {
	assert.True(t, (&User{Status: StatusBanned}).IsBanned())
	assert.False(t, (&User{Status: StatusNormal}).IsBanned())
}
