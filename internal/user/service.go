// Package user implements the profile operations around the authentication
// core: fetching, updating, listing, and deleting user records.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/userbase/backend/internal/cache"
	"github.com/userbase/backend/internal/db"
	apperrors "github.com/userbase/backend/internal/errors"
	"github.com/userbase/backend/internal/result"
)

const profileCacheTTL = 5 * time.Minute

// Store is the persistence capability this service consumes; satisfied by
// *db.UserRepository.
type Store interface {
	GetByID(ctx context.Context, id int64) (*db.User, error)
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	Update(ctx context.Context, user *db.User) error
	List(ctx context.Context) ([]*db.User, error)
	Delete(ctx context.Context, id int64) error
}

// CacheMetrics records profile cache effectiveness.
type CacheMetrics interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// UpdateRequest carries the updatable profile fields. Empty fields are left
// unchanged.
type UpdateRequest struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// Service provides user profile business logic.
type Service struct {
	store   Store
	cache   *cache.Cache
	metrics CacheMetrics
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// WithCache attaches a profile cache.
func (s *Service) WithCache(c *cache.Cache, m CacheMetrics) *Service {
	s.cache = c
	s.metrics = m
	return s
}

// GetProfile returns the user for a path-supplied id string. The id must be
// a positive number.
func (s *Service) GetProfile(ctx context.Context, idString string) result.Result[*db.User] {
	id, err := strconv.ParseInt(idString, 10, 64)
	if err != nil || id <= 0 {
		return result.Fail[*db.User](apperrors.BadRequest("userId must be a positive number"))
	}

	if cached, ok := s.cachedProfile(ctx, id); ok {
		return result.Ok(cached)
	}

	user, aerr := s.findUser(ctx, id)
	if aerr != nil {
		return result.Fail[*db.User](aerr)
	}

	sanitized := sanitize(user)
	s.cacheProfile(ctx, sanitized)
	return result.Ok(sanitized)
}

// UpdateProfile applies the non-empty fields of req to the caller's own
// record. Callers can only update themselves.
func (s *Service) UpdateProfile(ctx context.Context, req *UpdateRequest, callerID int64) result.Result[*db.User] {
	if req == nil {
		return result.Fail[*db.User](apperrors.BadRequest("User data is required"))
	}
	if req.ID <= 0 {
		return result.Fail[*db.User](apperrors.BadRequest("Valid user ID is required"))
	}
	if req.ID != callerID {
		return result.Fail[*db.User](apperrors.AccessDenied())
	}

	user, aerr := s.findUser(ctx, req.ID)
	if aerr != nil {
		return result.Fail[*db.User](aerr)
	}

	if strings.TrimSpace(req.FirstName) != "" {
		user.FirstName = req.FirstName
	}
	if strings.TrimSpace(req.LastName) != "" {
		user.LastName = req.LastName
	}
	if strings.TrimSpace(req.PhoneNumber) != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if strings.TrimSpace(req.Address) != "" {
		user.Address = req.Address
	}
	user.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, user); err != nil {
		return result.Fail[*db.User](apperrors.InternalError(err.Error()).WithCause(err))
	}

	s.invalidateProfile(ctx, user.ID)
	return result.Ok(sanitize(user))
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) result.Result[[]*db.User] {
	users, err := s.store.List(ctx)
	if err != nil {
		return result.Fail[[]*db.User](apperrors.InternalError(err.Error()).WithCause(err))
	}
	if len(users) == 0 {
		return result.Fail[[]*db.User](apperrors.NotFound("Users"))
	}

	sanitized := make([]*db.User, len(users))
	for i, u := range users {
		sanitized[i] = sanitize(u)
	}
	return result.Ok(sanitized)
}

// DeleteUser removes the caller's own account.
func (s *Service) DeleteUser(ctx context.Context, userID, callerID int64) result.Result[struct{}] {
	if userID != callerID {
		return result.Fail[struct{}](apperrors.AccessDenied())
	}

	if _, aerr := s.findUser(ctx, userID); aerr != nil {
		return result.Fail[struct{}](aerr)
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return result.Fail[struct{}](apperrors.NotFound("User"))
		}
		return result.Fail[struct{}](apperrors.InternalError(err.Error()).WithCause(err))
	}

	s.invalidateProfile(ctx, userID)
	return result.Ok(struct{}{})
}

// GetByEmail looks up a user by exact email.
func (s *Service) GetByEmail(ctx context.Context, email string) result.Result[*db.User] {
	if strings.TrimSpace(email) == "" {
		return result.Fail[*db.User](apperrors.FieldRequired("Email"))
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return result.Fail[*db.User](apperrors.NotFound("User"))
		}
		return result.Fail[*db.User](apperrors.InternalError(err.Error()).WithCause(err))
	}
	return result.Ok(sanitize(user))
}

func (s *Service) findUser(ctx context.Context, id int64) (*db.User, *apperrors.AppError) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, apperrors.NotFound("User")
		}
		return nil, apperrors.InternalError(err.Error()).WithCause(err)
	}
	return user, nil
}

func (s *Service) cachedProfile(ctx context.Context, id int64) (*db.User, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, ok := s.cache.Get(ctx, profileKey(id))
	if !ok {
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
		return nil, false
	}

	user := &db.User{}
	if err := json.Unmarshal([]byte(raw), user); err != nil {
		s.cache.Delete(ctx, profileKey(id))
		return nil, false
	}

	if s.metrics != nil {
		s.metrics.RecordCacheHit()
	}
	return user, true
}

func (s *Service) cacheProfile(ctx context.Context, user *db.User) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	s.cache.Set(ctx, profileKey(user.ID), string(data), profileCacheTTL)
}

func (s *Service) invalidateProfile(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.Delete(ctx, profileKey(id))
	}
}

func profileKey(id int64) string {
	return fmt.Sprintf("user:profile:%d", id)
}

// sanitize returns a copy of user with credential material cleared.
func sanitize(user *db.User) *db.User {
	clean := *user
	clean.PasswordHash = ""
	clean.RefreshToken = ""
	return &clean
}
