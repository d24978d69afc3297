package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/userbase/backend/internal/response"
	"github.com/userbase/backend/internal/token"
)

func gateCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec([]byte("gate-test-secret"))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec
}

func TestGate_PublicPrefixBypassesAuth(t *testing.T) {
	codec := gateCodec(t)
	called := false
	handler := Gate(codec, []string{"/auth/sign-in", "/health"})(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			called = true
			if _, ok := UserIDFromContext(r.Context()); ok {
				t.Error("public request should not carry a user identity")
			}
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler was not reached")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestGate_ProtectedPathRejections(t *testing.T) {
	codec := gateCodec(t)
	expired, err := codec.Issue(7, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"bare token without scheme", "not-a-bearer-token", http.StatusUnauthorized},
		{"garbage bearer token", "Bearer nonsense", http.StatusUnauthorized},
		{"expired bearer token", "Bearer " + expired, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Gate(codec, []string{"/health"})(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					t.Error("handler should not be reached")
				}))

			req := httptest.NewRequest(http.MethodGet, "/user/profile/7", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var env response.Envelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("response is not an envelope: %v", err)
			}
			if env.Status != response.StatusFailed {
				t.Errorf("envelope status = %q", env.Status)
			}
		})
	}
}

func TestGate_ValidTokenInjectsIdentity(t *testing.T) {
	codec := gateCodec(t)
	access, err := codec.Issue(42, time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	handler := Gate(codec, nil)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				t.Fatal("user identity missing from context")
			}
			if userID != 42 {
				t.Errorf("userID = %d, want 42", userID)
			}
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/user/profile/42", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestGate_PrefixMatchingIsCaseSensitive(t *testing.T) {
	codec := gateCodec(t)
	handler := Gate(codec, []string{"/health"})(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		}))

	req := httptest.NewRequest(http.MethodGet, "/Health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
