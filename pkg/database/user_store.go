package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// UsersCollection holds one document per moderated user
const UsersCollection = "users"

var (
	ErrUserStoreNotInitialized = errors.New("user store not initialized")
	ErrWarningNotStored        = errors.New("la advertencia no existe en el registro del usuario")
)

// UserStore persists users and their warnings on top of a DataManager
type UserStore struct {
	dm *DataManager[models.User]
}

// NewUserStore creates a UserStore over the "users" collection
func NewUserStore(db *Database, opts ...DataManagerOptions) *UserStore {
	return &UserStore{dm: NewDataManager[models.User](UsersCollection, db, opts...)}
}

func userQuery(id string) bson.M {
	return bson.M{"id": id}
}

// GetUser returns the stored user, or (nil, nil) when there is no record
func (s *UserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	if s == nil || s.dm == nil {
		return nil, ErrUserStoreNotInitialized
	}
	return s.dm.Get(ctx, userQuery(id))
}

// RemoveWarning deletes exactly one stored warning equal to warning. A banned
// user is set back to normal in the same write.
func (s *UserStore) RemoveWarning(ctx context.Context, user *models.User, warning models.Warning) (*models.User, error) {
	if s == nil || s.dm == nil {
		return nil, ErrUserStoreNotInitialized
	}

	current, err := s.dm.Get(ctx, userQuery(user.ID))
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%s: %w", user.ID, ErrWarningNotStored)
	}

	warns, ok := models.WithoutWarning(current.Warns, warning)
	if !ok {
		return nil, fmt.Errorf("%s: %w", user.ID, ErrWarningNotStored)
	}

	status := current.Status
	if current.IsBanned() {
		status = models.StatusNormal
	}

	updated, err := s.dm.Set(ctx, userQuery(user.ID), bson.M{
		"warns":  warns,
		"status": status,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// queued while offline
		current.Warns = warns
		current.Status = status
		return current, nil
	}
	return updated, nil
}

// AddWarning appends warning to the user's record and stores status,
// creating the document when the user is new
func (s *UserStore) AddWarning(ctx context.Context, user *models.User, warning models.Warning, status models.UserStatus) (*models.User, error) {
	if s == nil || s.dm == nil {
		return nil, ErrUserStoreNotInitialized
	}

	set := bson.M{"status": status}
	if user.Username != "" {
		set["username"] = user.Username
	}

	updated, err := s.dm.Update(ctx, userQuery(user.ID), bson.M{
		"$push": bson.M{"warns": warning},
		"$set":  set,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		queued := *user
		queued.Warns = append(append([]models.Warning(nil), user.Warns...), warning)
		queued.Status = status
		return &queued, nil
	}
	return updated, nil
}

// ClearWarnings removes every warning of a user and resets the status
func (s *UserStore) ClearWarnings(ctx context.Context, id string) error {
	if s == nil || s.dm == nil {
		return ErrUserStoreNotInitialized
	}
	_, err := s.dm.Set(ctx, userQuery(id), bson.M{
		"warns":  []models.Warning{},
		"status": models.StatusNormal,
	})
	return err
}
