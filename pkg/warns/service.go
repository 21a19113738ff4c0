// Package warns implements warning issuance and reversal ("unwarn").
//
// The Service loads a user's warnings, filters the active ones through an
// ExpiryPolicy, selects the one to revoke, reverses an automatic ban across
// every registered group and tells the user about it.
package warns

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/metrics"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/google/uuid"
)

// UnbanNotice is sent to a user whose ban was reversed by an unwarn
const UnbanNotice = "♻️ Fuiste desbaneado de todos los /grupos!"

// UserStore persists moderation records. GetUser returns (nil, nil) for
// unknown users. Each write is atomic per user.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	// RemoveWarning deletes exactly one warning from the user's record and,
	// when the user is banned, sets the status back to normal.
	RemoveWarning(ctx context.Context, user *models.User, warning models.Warning) (*models.User, error)
	// AddWarning appends a warning and stores status, creating the user if needed
	AddWarning(ctx context.Context, user *models.User, warning models.Warning, status models.UserStatus) (*models.User, error)
}

// GroupStore lists the groups the bot moderates
type GroupStore interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
}

// Unbanner lifts a ban in one group
type Unbanner interface {
	UnbanMember(ctx context.Context, groupID, userID string) error
}

// Banner bans a member in one group
type Banner interface {
	BanMember(ctx context.Context, groupID, userID, reason string) error
}

// DirectMessenger sends a private message to a user
type DirectMessenger interface {
	SendDirectMessage(ctx context.Context, userID, text string) error
}

// Transport is everything the service needs from the chat platform
type Transport interface {
	Unbanner
	Banner
	DirectMessenger
}

// Options configures a Service
type Options struct {
	// Threshold is the number of active warnings that triggers a ban
	Threshold int
	Expiry    ExpiryPolicy
}

// Service runs warn and unwarn operations. Operations on the same user are
// serialized through Locks.
type Service struct {
	Users       UserStore
	Broadcaster *Broadcaster
	Notifier    *Notifier
	Threshold   int
	Expiry      ExpiryPolicy
	Now         func() time.Time
	Locks       UserLocks
}

// NewService wires a Service over the given stores and transport
func NewService(users UserStore, groups GroupStore, transport Transport, opts Options) *Service {
	return &Service{
		Users: users,
		Broadcaster: &Broadcaster{
			Groups:   groups,
			Unbanner: transport,
			Banner:   transport,
		},
		Notifier:  NewNotifier(transport),
		Threshold: opts.Threshold,
		Expiry:    opts.Expiry,
		Now:       time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// UnwarnRequest is a resolved unwarn invocation. Actor has already been
// authorized by the caller.
type UnwarnRequest struct {
	Targets       []string
	Disambiguator string
	Actor         string
}

// UnwarnResult describes a completed unwarn
type UnwarnResult struct {
	User *models.User
	// NoOp is set when the user had no active warnings; nothing was changed
	NoOp    bool
	Removed models.Warning
	// ActiveCount is the number of active warnings before the removal
	ActiveCount int
	Threshold   int
	WasBanned   bool
	Unbans      []GroupOutcome
}

// Label is the removed warning's reason, or an identifier when it has none
func (r *UnwarnResult) Label() string {
	return WarningLabel(r.Removed)
}

// WarningLabel returns the reason of w or, failing that, its date or id
func WarningLabel(w models.Warning) string {
	switch {
	case w.Reason != "":
		return w.Reason
	case w.HasDate():
		return CanonicalDate(*w.Date)
	case w.ID != "":
		return w.ID
	default:
		return "advertencia sin fecha"
	}
}

// Unwarn revokes one active warning from the single target user.
//
// When the user is banned the ban is reversed in every group before the
// warning is selected, so the unban happens even if selection then fails.
func (s *Service) Unwarn(ctx context.Context, req UnwarnRequest) (*UnwarnResult, error) {
	if len(req.Targets) != 1 {
		metrics.Unwarns.WithLabelValues("bad_target").Inc()
		return nil, &InputError{Targets: len(req.Targets)}
	}
	userID := req.Targets[0]

	unlock := s.Locks.Lock(userID)
	defer unlock()

	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		metrics.Unwarns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("loading user %s: %w", userID, err)
	}
	if user == nil {
		metrics.Unwarns.WithLabelValues("unknown_user").Inc()
		return nil, &NotFoundError{Subject: userID, Err: ErrUserUnknown}
	}

	active := s.Expiry.Active(user.Warns, s.now())
	result := &UnwarnResult{
		User:        user,
		ActiveCount: len(active),
		Threshold:   s.Threshold,
		WasBanned:   user.IsBanned(),
	}

	if len(active) == 0 {
		result.NoOp = true
		metrics.Unwarns.WithLabelValues("noop").Inc()
		return result, nil
	}

	if result.WasBanned {
		result.Unbans = s.Broadcaster.ReverseBan(ctx, user.ID)
		if failed := Failed(result.Unbans); failed > 0 {
			logger.Debug(fmt.Sprintf("%d/%d desbaneos fallaron para %s", failed, len(result.Unbans), user.ID), "Unwarn")
		}
	}

	warning, err := Select(active, req.Disambiguator)
	if err != nil {
		metrics.Unwarns.WithLabelValues(outcomeOf(err)).Inc()
		return nil, err
	}

	updated, err := s.Users.RemoveWarning(ctx, user, warning)
	if err != nil {
		metrics.Unwarns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("removing warning from %s: %w", user.ID, err)
	}
	if updated != nil {
		result.User = updated
	}
	result.Removed = warning

	if result.WasBanned {
		s.Notifier.Submit(user.ID, UnbanNotice)
	}

	metrics.Unwarns.WithLabelValues("removed").Inc()
	logger.Info(fmt.Sprintf("%s retiró una advertencia de %s (%d/%d): %s",
		req.Actor, user.ID, result.ActiveCount, s.Threshold, result.Label()), "Unwarn")

	return result, nil
}

func outcomeOf(err error) string {
	switch err.(type) {
	case *ValidationError:
		return "invalid_date"
	case *NotFoundError:
		return "not_found"
	default:
		return "error"
	}
}

// WarnRequest issues a warning to Target
type WarnRequest struct {
	Target   string
	Username string
	Reason   string
	Actor    string
}

// WarnResult describes an issued warning
type WarnResult struct {
	User        *models.User
	Warning     models.Warning
	ActiveCount int
	Threshold   int
	// Banned is set when this warning reached the threshold and banned the user
	Banned bool
	Bans   []GroupOutcome
}

// Warn records a warning and bans the user in every group once the number of
// active warnings reaches the threshold.
func (s *Service) Warn(ctx context.Context, req WarnRequest) (*WarnResult, error) {
	if req.Target == "" {
		return nil, &InputError{Targets: 0}
	}

	unlock := s.Locks.Lock(req.Target)
	defer unlock()

	user, err := s.Users.GetUser(ctx, req.Target)
	if err != nil {
		return nil, fmt.Errorf("loading user %s: %w", req.Target, err)
	}
	if user == nil {
		user = &models.User{ID: req.Target, Username: req.Username, Status: models.StatusNormal}
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	warning := models.Warning{
		ID:        uuid.NewString(),
		Reason:    req.Reason,
		Moderator: req.Actor,
		Date:      &now,
	}

	active := len(s.Expiry.Active(user.Warns, now)) + 1
	status := user.Status
	if status == "" {
		status = models.StatusNormal
	}
	ban := s.Threshold > 0 && active >= s.Threshold && !user.IsBanned()
	if ban {
		status = models.StatusBanned
	}

	updated, err := s.Users.AddWarning(ctx, user, warning, status)
	if err != nil {
		return nil, fmt.Errorf("adding warning to %s: %w", user.ID, err)
	}
	metrics.WarnsIssued.Inc()

	result := &WarnResult{
		User:        updated,
		Warning:     warning,
		ActiveCount: active,
		Threshold:   s.Threshold,
		Banned:      ban,
	}
	if result.User == nil {
		result.User = user
	}

	if ban {
		result.Bans = s.Broadcaster.ApplyBan(ctx, user.ID, fmt.Sprintf("Alcanzó %d advertencias", s.Threshold))
		logger.Warn(fmt.Sprintf("%s baneado de %d grupos por advertencias", user.ID, len(result.Bans)-Failed(result.Bans)), "Warn")
	}

	return result, nil
}

// ActiveWarnings returns the user and their currently active warnings
func (s *Service) ActiveWarnings(ctx context.Context, userID string) (*models.User, []models.Warning, error) {
	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading user %s: %w", userID, err)
	}
	if user == nil {
		return nil, nil, &NotFoundError{Subject: userID, Err: ErrUserUnknown}
	}
	return user, s.Expiry.Active(user.Warns, s.now()), nil
}
