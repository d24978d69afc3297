package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/userbase/backend/internal/db"
	apperrors "github.com/userbase/backend/internal/errors"
	"github.com/userbase/backend/internal/password"
	"github.com/userbase/backend/internal/result"
	"github.com/userbase/backend/internal/token"
)

const (
	AccessTokenExpiry  = 15 * time.Minute
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// UserStore is the persistence capability the service consumes. It is
// satisfied by *db.UserRepository.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*db.User, error)
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	Create(ctx context.Context, user *db.User) error
	SetRefreshToken(ctx context.Context, id int64, token string) error
}

// Observer receives auth operation outcomes for metrics. Implementations
// must be safe for concurrent use.
type Observer interface {
	ObserveAuth(operation, outcome string)
}

// AuthResponse is the payload returned by sign-up and sign-in.
type AuthResponse struct {
	User         *db.User `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// Config carries the service knobs.
type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// RequireOwner makes logout reject callers whose authenticated identity
	// differs from the target user.
	RequireOwner bool
}

// Service orchestrates sign-up, sign-in, refresh, and logout against the
// user store, the password hasher, and the token codec. It holds no mutable
// state of its own; the stored refresh token is the only cross-request state
// and lives on the user record.
type Service struct {
	store    UserStore
	hasher   password.Hasher
	codec    *token.Codec
	observer Observer
	cfg      Config
}

func NewService(store UserStore, hasher password.Hasher, codec *token.Codec, cfg Config) *Service {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = AccessTokenExpiry
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = RefreshTokenExpiry
	}
	return &Service{
		store:  store,
		hasher: hasher,
		codec:  codec,
		cfg:    cfg,
	}
}

// WithObserver attaches a metrics observer.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// Codec exposes the token codec for the request gate.
func (s *Service) Codec() *token.Codec {
	return s.codec
}

// SignUp validates the request, persists a new user, and issues the initial
// token pair. The freshly issued refresh token is written back onto the user
// record before the response is returned.
func (s *Service) SignUp(ctx context.Context, firstName, lastName, email, plain string) result.Result[*AuthResponse] {
	emailTaken := func(candidate string) bool {
		_, err := s.store.GetByEmail(ctx, candidate)
		return err == nil
	}
	if verr := ValidateSignUp(firstName, lastName, email, plain, emailTaken); verr != nil {
		return fail[*AuthResponse](s, "sign_up", verr)
	}

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return fail[*AuthResponse](s, "sign_up", apperrors.InternalError(err.Error()).WithCause(err))
	}

	now := time.Now()
	user := &db.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrEmailExists) {
			return fail[*AuthResponse](s, "sign_up", apperrors.DuplicateEmail())
		}
		return fail[*AuthResponse](s, "sign_up", apperrors.InternalError(err.Error()).WithCause(err))
	}

	resp, aerr := s.issueTokens(ctx, user)
	if aerr != nil {
		return fail[*AuthResponse](s, "sign_up", aerr)
	}

	s.observe("sign_up", "success")
	return result.Ok(resp)
}

// SignIn verifies the credentials and rotates the stored refresh token. A
// missing user and a wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, plain string) result.Result[*AuthResponse] {
	if verr := ValidateSignIn(email, plain); verr != nil {
		return fail[*AuthResponse](s, "sign_in", verr)
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return fail[*AuthResponse](s, "sign_in", apperrors.InvalidCredentials())
		}
		return fail[*AuthResponse](s, "sign_in", apperrors.InternalError(err.Error()).WithCause(err))
	}

	if !s.hasher.Verify(plain, user.PasswordHash) {
		return fail[*AuthResponse](s, "sign_in", apperrors.InvalidCredentials())
	}

	resp, aerr := s.issueTokens(ctx, user)
	if aerr != nil {
		return fail[*AuthResponse](s, "sign_in", aerr)
	}

	s.observe("sign_in", "success")
	return result.Ok(resp)
}

// Refresh exchanges a valid refresh token for a new access token. The
// presented token must verify, name the same user as the request path, and
// exactly equal the stored copy. The refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, userID int64, presented string) result.Result[string] {
	if presented == "" {
		return fail[string](s, "refresh", apperrors.MissingHeader("Refresh Token"))
	}

	claims, verr := s.codec.Verify(presented)
	if verr != nil {
		return fail[string](s, "refresh", verr)
	}

	if claims.UserID != userID {
		return fail[string](s, "refresh", apperrors.Forbidden("Token does not belong to provided user"))
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return fail[string](s, "refresh", apperrors.RefreshTokenMismatch())
		}
		return fail[string](s, "refresh", apperrors.InternalError(err.Error()).WithCause(err))
	}
	if user.RefreshToken == "" ||
		subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(presented)) != 1 {
		return fail[string](s, "refresh", apperrors.RefreshTokenMismatch())
	}

	access, err := s.codec.Issue(userID, s.cfg.AccessTTL)
	if err != nil {
		return fail[string](s, "refresh", apperrors.InternalError(err.Error()).WithCause(err))
	}

	s.observe("refresh", "success")
	return result.Ok(access)
}

// Logout clears the stored refresh token. Already-issued access tokens stay
// valid until natural expiry; only the refresh credential is invalidated.
// When RequireOwner is set the authenticated caller must be the target user.
func (s *Service) Logout(ctx context.Context, callerID, userID int64) result.Result[struct{}] {
	if s.cfg.RequireOwner && callerID != userID {
		return fail[struct{}](s, "logout", apperrors.AccessDenied())
	}

	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return fail[struct{}](s, "logout", apperrors.NotFound("User"))
		}
		return fail[struct{}](s, "logout", apperrors.InternalError(err.Error()).WithCause(err))
	}

	if user.RefreshToken == "" {
		return fail[struct{}](s, "logout", apperrors.BadRequest("User already logged out"))
	}

	if err := s.store.SetRefreshToken(ctx, userID, ""); err != nil {
		return fail[struct{}](s, "logout", apperrors.InternalError(err.Error()).WithCause(err))
	}

	s.observe("logout", "success")
	return result.Ok(struct{}{})
}

func (s *Service) issueTokens(ctx context.Context, user *db.User) (*AuthResponse, *apperrors.AppError) {
	access, err := s.codec.Issue(user.ID, s.cfg.AccessTTL)
	if err != nil {
		return nil, apperrors.InternalError(err.Error()).WithCause(err)
	}
	refresh, err := s.codec.Issue(user.ID, s.cfg.RefreshTTL)
	if err != nil {
		return nil, apperrors.InternalError(err.Error()).WithCause(err)
	}

	if err := s.store.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, apperrors.InternalError(err.Error()).WithCause(err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	sanitized.RefreshToken = ""

	return &AuthResponse{
		User:         &sanitized,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func fail[T any](s *Service, operation string, err *apperrors.AppError) result.Result[T] {
	s.observe(operation, "failure")
	return result.Fail[T](err)
}

func (s *Service) observe(operation, outcome string) {
	if s.observer != nil {
		s.observer.ObserveAuth(operation, outcome)
	}
}
