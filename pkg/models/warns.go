package models

import "time"

// UserStatus is the moderation status of a user across all groups
type UserStatus string

const (
	StatusNormal UserStatus = "normal"
	StatusBanned UserStatus = "banned"
)

// Warning representa una advertencia individual.
// Date is nil on legacy entries created before warnings were timestamped.
type Warning struct {
	ID        string     `bson:"id,omitempty" json:"id,omitempty"`
	Reason    string     `bson:"reason,omitempty" json:"reason,omitempty"`
	Moderator string     `bson:"moderator,omitempty" json:"moderator,omitempty"`
	Date      *time.Time `bson:"date,omitempty" json:"date,omitempty"`
}

// HasDate reports whether the warning carries a usable timestamp
func (w Warning) HasDate() bool {
	return w.Date != nil && !w.Date.IsZero()
}

// User representa el documento de la colección "users".
// Warns is ordered oldest first.
type User struct {
	ID       string     `bson:"id" json:"id"`
	Username string     `bson:"username,omitempty" json:"username,omitempty"`
	Status   UserStatus `bson:"status" json:"status"`
	Warns    []Warning  `bson:"warns" json:"warns"`
}

// IsBanned returns true if the user is currently banned from the groups
func (u *User) IsBanned() bool {
	return u.Status == StatusBanned
}

// Same reports whether o refers to the same stored warning as w.
// IDs decide when both are set; legacy entries compare by content.
func (w Warning) Same(o Warning) bool {
	if w.ID != "" && o.ID != "" {
		return w.ID == o.ID
	}
	if w.ID != o.ID || w.Reason != o.Reason || w.Moderator != o.Moderator || w.HasDate() != o.HasDate() {
		return false
	}
	return !w.HasDate() || w.Date.Equal(*o.Date)
}

// WithoutWarning returns a copy of warns with the first warning matching
// target removed. The second result is false when nothing matched.
func WithoutWarning(warns []Warning, target Warning) ([]Warning, bool) {
	for i, w := range warns {
		if w.Same(target) {
			out := make([]Warning, 0, len(warns)-1)
			out = append(out, warns[:i]...)
			return append(out, warns[i+1:]...), true
		}
	}
	return warns, false
}
