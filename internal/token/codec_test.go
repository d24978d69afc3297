package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/userbase/backend/internal/errors"
)

var testSecret = []byte("test-secret-for-codec")

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(testSecret)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return codec
}

func TestNewCodec_EmptySecret(t *testing.T) {
	if _, err := NewCodec(nil); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	for _, userID := range []int64{1, 42, 987654321} {
		tok, err := codec.Issue(userID, 15*time.Minute)
		if err != nil {
			t.Fatalf("Issue(%d): %v", userID, err)
		}

		if parts := strings.Split(tok, "."); len(parts) != 3 {
			t.Fatalf("expected 3 token segments, got %d", len(parts))
		}

		claims, verr := codec.Verify(tok)
		if verr != nil {
			t.Fatalf("Verify(%d): %v", userID, verr)
		}
		if claims.UserID != userID {
			t.Errorf("round trip user id = %d, want %d", claims.UserID, userID)
		}
		if claims.ExpiresAt.Before(claims.IssuedAt) {
			t.Error("expiry precedes issued-at")
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	codec := newTestCodec(t)

	tok, err := codec.Issue(1, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, verr := codec.Verify(tok)
	if verr == nil {
		t.Fatal("expected error for expired token")
	}
	if verr.Code != apperrors.CodeTokenExpired {
		t.Errorf("code = %s, want %s", verr.Code, apperrors.CodeTokenExpired)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	codec := newTestCodec(t)

	tok, err := codec.Issue(7, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, verr := codec.Verify(tampered)
	if verr == nil {
		t.Fatal("expected error for tampered signature")
	}
	if verr.Code != apperrors.CodeInvalidToken {
		t.Errorf("code = %s, want %s", verr.Code, apperrors.CodeInvalidToken)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewCodec([]byte("a-different-secret"))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	tok, err := other.Issue(7, 15*time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, verr := codec.Verify(tok); verr == nil || verr.Code != apperrors.CodeInvalidToken {
		t.Errorf("expected %s for token signed with another secret, got %v", apperrors.CodeInvalidToken, verr)
	}
}

func TestVerify_Malformed(t *testing.T) {
	codec := newTestCodec(t)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, verr := codec.Verify(tok); verr == nil || verr.Code != apperrors.CodeInvalidToken {
			t.Errorf("Verify(%q): expected %s, got %v", tok, apperrors.CodeInvalidToken, verr)
		}
	}
}

func TestVerify_NonNumericSubject(t *testing.T) {
	codec := newTestCodec(t)

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "not-a-number",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, verr := codec.Verify(tok); verr == nil || verr.Code != apperrors.CodeInvalidToken {
		t.Errorf("expected %s for non-numeric subject, got %v", apperrors.CodeInvalidToken, verr)
	}
}

func TestVerify_RejectsNonHMACAlgorithm(t *testing.T) {
	codec := newTestCodec(t)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, verr := codec.Verify(tok); verr == nil || verr.Code != apperrors.CodeInvalidToken {
		t.Errorf("expected %s for alg=none token, got %v", apperrors.CodeInvalidToken, verr)
	}
}
