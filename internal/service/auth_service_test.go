package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/shop-backend/internal/auth"
	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
	"github.com/iliyamo/shop-backend/internal/repository/memstore"
	"github.com/iliyamo/shop-backend/internal/service"
	"github.com/iliyamo/shop-backend/internal/utils"
)

func newAuthFixture(t *testing.T) (*service.AuthService, *memstore.Store, *auth.MemoryTokenCache, *auth.Codec) {
	t.Helper()
	secret := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 64))
	codec, err := auth.NewCodec(secret, "shop-test", time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	store := memstore.New()
	cache := auth.NewMemoryTokenCache()
	return service.NewAuthService(store.Members(), cache, codec), store, cache, codec
}

func seedMember(t *testing.T, store *memstore.Store, email, password string) *model.Member {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	m := &model.Member{
		Email:        email,
		PasswordHash: hash,
		Name:         "Test Member",
		Role:         model.RoleUser,
		Status:       model.MemberActive,
	}
	if err := store.Members().Create(context.Background(), m); err != nil {
		t.Fatalf("Create member: %v", err)
	}
	return m
}

func TestLoginIssuesPairAndStoresRefresh(t *testing.T) {
	svc, store, cache, codec := newAuthFixture(t)
	m := seedMember(t, store, "buyer@example.com", "secret1234")
	ctx := context.Background()

	pair, err := svc.Login(ctx, "buyer@example.com", "secret1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.TokenType != "Bearer" || pair.AccessTokenExpiresIn != time.Hour.Milliseconds() {
		t.Errorf("pair meta = %+v", pair)
	}
	if ok, err := codec.Validate(pair.AccessToken); !ok || err != nil {
		t.Errorf("access token invalid: (%v, %v)", ok, err)
	}
	stored, found, err := cache.GetRefresh(ctx, "buyer@example.com")
	if err != nil || !found || stored != pair.RefreshToken {
		t.Errorf("stored refresh = (%q, %v, %v)", stored, found, err)
	}

	got, err := store.Members().GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.LastLoginAt == nil {
		t.Error("lastLoginAt not recorded")
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	svc, store, _, _ := newAuthFixture(t)
	seedMember(t, store, "buyer@example.com", "secret1234")

	if _, err := svc.Login(context.Background(), "  Buyer@Example.COM ", "secret1234"); err != nil {
		t.Fatalf("Login with unnormalized email: %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, store, _, _ := newAuthFixture(t)
	m := seedMember(t, store, "buyer@example.com", "secret1234")
	ctx := context.Background()

	if _, err := svc.Login(ctx, "nobody@example.com", "secret1234"); !errors.Is(err, errs.MemberNotFound) {
		t.Errorf("unknown email error = %v", err)
	}
	if _, err := svc.Login(ctx, "buyer@example.com", "wrongpass1"); !errors.Is(err, errs.InvalidPassword) {
		t.Errorf("bad password error = %v", err)
	}

	store.Members().SetStatus(m.ID, model.MemberDormant)
	if _, err := svc.Login(ctx, "buyer@example.com", "secret1234"); !errors.Is(err, errs.InactiveMember) {
		t.Errorf("dormant member error = %v", err)
	}
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	svc, store, cache, _ := newAuthFixture(t)
	seedMember(t, store, "buyer@example.com", "secret1234")
	ctx := context.Background()

	pair1, err := svc.Login(ctx, "buyer@example.com", "secret1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// iat has second granularity; wait so the rotated token differs.
	time.Sleep(1100 * time.Millisecond)

	pair2, err := svc.Refresh(ctx, pair1.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair2.RefreshToken == pair1.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	stored, found, _ := cache.GetRefresh(ctx, "buyer@example.com")
	if !found || stored != pair2.RefreshToken {
		t.Errorf("stored refresh after rotation = (%q, %v)", stored, found)
	}

	// replaying the superseded token must fail
	if _, err := svc.Refresh(ctx, pair1.RefreshToken); !errors.Is(err, errs.InvalidRefreshToken) {
		t.Errorf("replay error = %v, want INVALID_REFRESH_TOKEN", err)
	}
}

func TestRefreshRejectsUnknownAndBlankTokens(t *testing.T) {
	svc, store, _, codec := newAuthFixture(t)
	m := seedMember(t, store, "buyer@example.com", "secret1234")
	ctx := context.Background()

	if _, err := svc.Refresh(ctx, ""); !errors.Is(err, errs.InvalidRefreshToken) {
		t.Errorf("blank token error = %v", err)
	}
	if _, err := svc.Refresh(ctx, "not-a-token"); !errors.Is(err, errs.InvalidRefreshToken) {
		t.Errorf("malformed token error = %v", err)
	}

	// valid signature but nothing stored server-side
	orphan, err := codec.CreateRefresh(m.ID, m.Email)
	if err != nil {
		t.Fatalf("CreateRefresh: %v", err)
	}
	if _, err := svc.Refresh(ctx, orphan); !errors.Is(err, errs.InvalidRefreshToken) {
		t.Errorf("orphan token error = %v", err)
	}
}

func TestLogoutBlacklistsAndIsIdempotent(t *testing.T) {
	svc, store, cache, _ := newAuthFixture(t)
	seedMember(t, store, "buyer@example.com", "secret1234")
	ctx := context.Background()

	pair, err := svc.Login(ctx, "buyer@example.com", "secret1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(ctx, pair.AccessToken, "buyer@example.com"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if revoked, _ := cache.IsBlacklisted(ctx, pair.AccessToken); !revoked {
		t.Error("access token not blacklisted")
	}
	if _, found, _ := cache.GetRefresh(ctx, "buyer@example.com"); found {
		t.Error("refresh token still stored after logout")
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, errs.InvalidRefreshToken) {
		t.Errorf("refresh after logout error = %v", err)
	}

	// a second logout with the same token still succeeds
	if err := svc.Logout(ctx, pair.AccessToken, "buyer@example.com"); err != nil {
		t.Errorf("repeated Logout: %v", err)
	}
}
