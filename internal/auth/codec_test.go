package auth

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/shop-backend/internal/errs"
)

func testSecret() string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x5a}, 64))
}

func newTestCodec(t *testing.T, accessTTL time.Duration) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret(), "shop-test", accessTTL, 0)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodecRejectsShortSecret(t *testing.T) {
	short := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x01}, 32))
	if _, err := NewCodec(short, "shop-test", 0, 0); err == nil {
		t.Fatal("expected error for a 32 byte secret")
	}
	if _, err := NewCodec("!!!not-base64!!!", "shop-test", 0, 0); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	c := newTestCodec(t, time.Hour)

	token, err := c.CreateAccess(42, "buyer@example.com", "USER")
	if err != nil {
		t.Fatalf("CreateAccess: %v", err)
	}
	ok, err := c.Validate(token)
	if err != nil || !ok {
		t.Fatalf("Validate = (%v, %v), want (true, nil)", ok, err)
	}

	claims, err := c.ParseClaims(token)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if claims.Email != "buyer@example.com" || claims.MemberID != 42 {
		t.Errorf("claims identity = %q/%d", claims.Email, claims.MemberID)
	}
	if claims.Role != "USER" || claims.Type != TokenAccess {
		t.Errorf("claims role/type = %q/%q", claims.Role, claims.Type)
	}
}

func TestRefreshTokenCarriesNoRole(t *testing.T) {
	c := newTestCodec(t, time.Hour)
	token, err := c.CreateRefresh(7, "buyer@example.com")
	if err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}
	claims, err := c.ParseClaims(token)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}
	if claims.Role != "" {
		t.Errorf("refresh token role = %q, want empty", claims.Role)
	}
	if claims.Type != TokenRefresh {
		t.Errorf("type = %q, want REFRESH", claims.Type)
	}
}

func TestValidateExpiredVersusMalformed(t *testing.T) {
	c := newTestCodec(t, -time.Minute)

	expired, err := c.CreateAccess(1, "a@b.com", "USER")
	if err != nil {
		t.Fatalf("CreateAccess: %v", err)
	}
	ok, err := c.Validate(expired)
	if ok {
		t.Fatal("expired token validated")
	}
	if !errors.Is(err, errs.ExpiredToken) {
		t.Fatalf("expired token error = %v, want EXPIRED_TOKEN", err)
	}

	for _, bad := range []string{"", "garbage", "a.b.c"} {
		ok, err := c.Validate(bad)
		if ok || err != nil {
			t.Errorf("Validate(%q) = (%v, %v), want (false, nil)", bad, ok, err)
		}
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	c := newTestCodec(t, time.Hour)
	other, err := NewCodec(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x77}, 64)), "shop-test", time.Hour, 0)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	token, err := other.CreateAccess(1, "a@b.com", "USER")
	if err != nil {
		t.Fatalf("CreateAccess: %v", err)
	}
	if ok, err := c.Validate(token); ok || err != nil {
		t.Fatalf("foreign-signed token = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestRemainingOnExpiredToken(t *testing.T) {
	c := newTestCodec(t, -time.Minute)
	token, err := c.CreateAccess(1, "a@b.com", "USER")
	if err != nil {
		t.Fatalf("CreateAccess: %v", err)
	}
	remaining, err := c.Remaining(token)
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if remaining > 0 {
		t.Errorf("remaining = %v, want <= 0", remaining)
	}
}

func TestResolveFromHeader(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
		{"bearer abc", "", false},
	}
	for _, tc := range cases {
		token, ok := ResolveFromHeader(tc.header)
		if token != tc.token || ok != tc.ok {
			t.Errorf("ResolveFromHeader(%q) = (%q, %v), want (%q, %v)",
				tc.header, token, ok, tc.token, tc.ok)
		}
	}
}
