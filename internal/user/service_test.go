package user

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/userbase/backend/internal/cache"
	"github.com/userbase/backend/internal/db"
	apperrors "github.com/userbase/backend/internal/errors"
)

type fakeStore struct {
	users map[int64]*db.User
}

func newFakeStore(users ...*db.User) *fakeStore {
	s := &fakeStore{users: make(map[int64]*db.User)}
	for _, u := range users {
		copy := *u
		s.users[u.ID] = &copy
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*db.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	copy := *u
	return &copy, nil
}

func (s *fakeStore) GetByEmail(_ context.Context, email string) (*db.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (s *fakeStore) Update(_ context.Context, user *db.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return db.ErrUserNotFound
	}
	copy := *user
	s.users[user.ID] = &copy
	return nil
}

func (s *fakeStore) List(_ context.Context) ([]*db.User, error) {
	out := make([]*db.User, 0, len(s.users))
	for _, u := range s.users {
		copy := *u
		out = append(out, &copy)
	}
	return out, nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return db.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

type countingMetrics struct {
	hits, misses int
}

func (m *countingMetrics) RecordCacheHit()  { m.hits++ }
func (m *countingMetrics) RecordCacheMiss() { m.misses++ }

func testUser() *db.User {
	return &db.User{
		ID:           1,
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		PasswordHash: "bcrypt-hash",
		RefreshToken: "stored-refresh",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestGetProfile(t *testing.T) {
	svc := NewService(newFakeStore(testUser()))

	res := svc.GetProfile(context.Background(), "1")
	if res.IsErr() {
		t.Fatalf("GetProfile: %v", res.Err())
	}
	got := res.Value()
	if got.Email != "jane@example.com" {
		t.Errorf("email = %q", got.Email)
	}
	if got.PasswordHash != "" || got.RefreshToken != "" {
		t.Error("credential material leaked on profile response")
	}
}

func TestGetProfile_IDValidation(t *testing.T) {
	svc := NewService(newFakeStore(testUser()))

	tests := []struct {
		name     string
		id       string
		wantCode string
	}{
		{"non-numeric", "abc", apperrors.CodeBadRequest},
		{"zero", "0", apperrors.CodeBadRequest},
		{"negative", "-3", apperrors.CodeBadRequest},
		{"unknown user", "42", apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.GetProfile(context.Background(), tt.id)
			if res.IsOK() || res.Err().Code != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, res.Err())
			}
		})
	}
}

func TestGetProfile_CacheRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	profileCache := cache.NewWithClient(client)
	metrics := &countingMetrics{}

	store := newFakeStore(testUser())
	svc := NewService(store).WithCache(profileCache, metrics)

	// First fetch misses the cache and populates it.
	if res := svc.GetProfile(context.Background(), "1"); res.IsErr() {
		t.Fatalf("GetProfile: %v", res.Err())
	}
	if metrics.misses != 1 || metrics.hits != 0 {
		t.Fatalf("after first fetch: hits=%d misses=%d", metrics.hits, metrics.misses)
	}

	// Second fetch is served from cache, even after the store row changes.
	store.users[1].FirstName = "Renamed"
	res := svc.GetProfile(context.Background(), "1")
	if res.IsErr() {
		t.Fatalf("GetProfile: %v", res.Err())
	}
	if res.Value().FirstName != "Jane" {
		t.Errorf("expected cached profile, got firstName = %q", res.Value().FirstName)
	}
	if metrics.hits != 1 {
		t.Errorf("hits = %d, want 1", metrics.hits)
	}
}

func TestUpdateProfile(t *testing.T) {
	store := newFakeStore(testUser())
	svc := NewService(store)

	res := svc.UpdateProfile(context.Background(), &UpdateRequest{
		ID:          1,
		FirstName:   "Janet",
		PhoneNumber: "555-0100",
	}, 1)
	if res.IsErr() {
		t.Fatalf("UpdateProfile: %v", res.Err())
	}

	got := res.Value()
	if got.FirstName != "Janet" || got.PhoneNumber != "555-0100" {
		t.Errorf("updated fields not applied: %+v", got)
	}
	// Blank fields are left untouched.
	if got.LastName != "Doe" {
		t.Errorf("lastName = %q, want unchanged", got.LastName)
	}
	if store.users[1].FirstName != "Janet" {
		t.Error("update not persisted")
	}
}

func TestUpdateProfile_Validation(t *testing.T) {
	svc := NewService(newFakeStore(testUser()))

	tests := []struct {
		name     string
		req      *UpdateRequest
		callerID int64
		wantCode string
	}{
		{"nil request", nil, 1, apperrors.CodeBadRequest},
		{"missing id", &UpdateRequest{FirstName: "X"}, 1, apperrors.CodeBadRequest},
		{"other user's record", &UpdateRequest{ID: 1, FirstName: "X"}, 2, apperrors.CodeAccessDenied},
		{"unknown user", &UpdateRequest{ID: 9, FirstName: "X"}, 9, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.UpdateProfile(context.Background(), tt.req, tt.callerID)
			if res.IsOK() || res.Err().Code != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, res.Err())
			}
		})
	}
}

func TestUpdateProfile_InvalidatesCache(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	store := newFakeStore(testUser())
	svc := NewService(store).WithCache(cache.NewWithClient(client), nil)

	if res := svc.GetProfile(context.Background(), "1"); res.IsErr() {
		t.Fatalf("GetProfile: %v", res.Err())
	}
	if !srv.Exists("user:profile:1") {
		t.Fatal("profile was not cached")
	}

	res := svc.UpdateProfile(context.Background(), &UpdateRequest{ID: 1, Address: "1 Main St"}, 1)
	if res.IsErr() {
		t.Fatalf("UpdateProfile: %v", res.Err())
	}
	if srv.Exists("user:profile:1") {
		t.Error("stale profile left in cache after update")
	}
}

func TestListUsers(t *testing.T) {
	second := testUser()
	second.ID = 2
	second.Email = "john@example.com"
	svc := NewService(newFakeStore(testUser(), second))

	res := svc.ListUsers(context.Background())
	if res.IsErr() {
		t.Fatalf("ListUsers: %v", res.Err())
	}
	if len(res.Value()) != 2 {
		t.Fatalf("len = %d, want 2", len(res.Value()))
	}
	for _, u := range res.Value() {
		if u.PasswordHash != "" || u.RefreshToken != "" {
			t.Error("credential material leaked in listing")
		}
	}
}

func TestListUsers_Empty(t *testing.T) {
	svc := NewService(newFakeStore())

	res := svc.ListUsers(context.Background())
	if res.IsOK() || res.Err().Code != apperrors.CodeNotFound {
		t.Fatalf("expected %s, got %v", apperrors.CodeNotFound, res.Err())
	}
}

func TestDeleteUser(t *testing.T) {
	store := newFakeStore(testUser())
	svc := NewService(store)

	if res := svc.DeleteUser(context.Background(), 1, 2); res.IsOK() || res.Err().Code != apperrors.CodeAccessDenied {
		t.Fatalf("expected %s for foreign delete, got %v", apperrors.CodeAccessDenied, res.Err())
	}

	if res := svc.DeleteUser(context.Background(), 1, 1); res.IsErr() {
		t.Fatalf("DeleteUser: %v", res.Err())
	}
	if _, ok := store.users[1]; ok {
		t.Error("user still present after delete")
	}

	if res := svc.DeleteUser(context.Background(), 1, 1); res.IsOK() || res.Err().Code != apperrors.CodeNotFound {
		t.Fatalf("expected %s on repeat delete, got %v", apperrors.CodeNotFound, res.Err())
	}
}

func TestGetByEmail(t *testing.T) {
	svc := NewService(newFakeStore(testUser()))

	res := svc.GetByEmail(context.Background(), "jane@example.com")
	if res.IsErr() {
		t.Fatalf("GetByEmail: %v", res.Err())
	}
	if res.Value().ID != 1 {
		t.Errorf("id = %d", res.Value().ID)
	}

	if res := svc.GetByEmail(context.Background(), "  "); res.IsOK() || res.Err().Code != apperrors.CodeFieldRequired {
		t.Fatalf("expected %s for blank email, got %v", apperrors.CodeFieldRequired, res.Err())
	}
	if res := svc.GetByEmail(context.Background(), "nobody@example.com"); res.IsOK() || res.Err().Code != apperrors.CodeNotFound {
		t.Fatalf("expected %s, got %v", apperrors.CodeNotFound, res.Err())
	}
}
