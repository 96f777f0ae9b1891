package token

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Now()
	svc := NewService("secret", 0, WithClock(fixedClock(now)))

	tok, expires, err := svc.Issue("user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if got := expires.Sub(now); got != DefaultTTL {
		t.Errorf("expected 7 day expiry, got %v", got)
	}
	sub, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "user-42" {
		t.Errorf("expected subject user-42, got %s", sub)
	}
}

func TestVerifyExpired(t *testing.T) {
	issued := time.Now().Add(-8 * 24 * time.Hour)
	svc := NewService("secret", DefaultTTL, WithClock(fixedClock(issued)))
	tok, _, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := NewService("secret", DefaultTTL)
	_, err = later.Verify(tok)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token should also be an invalid token, got %v", err)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	svc := NewService("secret", time.Hour)
	tok, _, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(tok, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","exp":9999999999}`))
	tampered := strings.Join(parts, ".")

	other := NewService("another-secret", time.Hour)
	noneAlg := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	unsigned, err := noneAlg.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := map[string]struct {
		svc *Service
		tok string
	}{
		"wrong secret": {other, tok},
		"tampered":     {svc, tampered},
		"malformed":    {svc, "not.a.jwt"},
		"empty":        {svc, ""},
		"alg none":     {svc, unsigned},
		"no subject":   {svc, noSubject},
		"no expiry":    {svc, noExpiry},
	}
	for name, tc := range cases {
		if _, err := tc.svc.Verify(tc.tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	if _, _, err := NewService("secret", time.Hour).Issue(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}
