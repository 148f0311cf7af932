package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/shop-backend/internal/auth"
	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/utils"
)

// TokenPair is the login/refresh result returned to clients.
type TokenPair struct {
	AccessToken          string `json:"accessToken"`
	RefreshToken         string `json:"refreshToken"`
	TokenType            string `json:"tokenType"`
	AccessTokenExpiresIn int64  `json:"accessTokenExpiresIn"` // milliseconds
}

// AuthService implements login, refresh rotation and logout on top of the
// member store, the token codec and the token cache.
type AuthService struct {
	members MemberStore
	cache   auth.TokenCache
	codec   *auth.Codec
}

func NewAuthService(members MemberStore, cache auth.TokenCache, codec *auth.Codec) *AuthService {
	return &AuthService{members: members, cache: cache, codec: codec}
}

// Login verifies credentials, records the login time and issues a fresh
// token pair. The refresh token is stored server-side so at most one is
// live per member.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	m, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, err
	}
	if !m.IsActive() {
		return TokenPair{}, errs.InactiveMember
	}
	if !utils.VerifyPassword(m.PasswordHash, password) {
		return TokenPair{}, errs.InvalidPassword
	}

	if err := s.members.TouchLastLogin(ctx, m.ID, time.Now()); err != nil {
		return TokenPair{}, err
	}

	pair, refresh, err := s.mintPair(m.ID, m.Email, string(m.Role))
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.cache.SaveRefresh(ctx, m.Email, refresh, s.codec.RefreshTTL()); err != nil {
		return TokenPair{}, err
	}

	log.Printf("login ok: %s", m.Email)
	return pair, nil
}

// Refresh rotates the refresh token: the presented token must validate,
// match the stored one exactly, and is then replaced. A mismatch means a
// replay of an older token or a lost concurrent rotation; both are
// rejected the same way.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return TokenPair{}, errs.InvalidRefreshToken
	}

	ok, err := s.codec.Validate(refreshToken)
	if err != nil {
		// Expired surfaces as EXPIRED_TOKEN, distinct from a malformed token.
		return TokenPair{}, err
	}
	if !ok {
		return TokenPair{}, errs.InvalidRefreshToken
	}

	claims, err := s.codec.ParseClaims(refreshToken)
	if err != nil {
		return TokenPair{}, errs.InvalidRefreshToken
	}

	stored, found, err := s.cache.GetRefresh(ctx, claims.Email)
	if err != nil {
		return TokenPair{}, err
	}
	if !found || stored != refreshToken {
		return TokenPair{}, errs.InvalidRefreshToken
	}

	m, err := s.members.GetByEmail(ctx, claims.Email)
	if err != nil {
		return TokenPair{}, err
	}

	pair, newRefresh, err := s.mintPair(m.ID, m.Email, string(m.Role))
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.cache.RotateRefresh(ctx, m.Email, newRefresh, s.codec.RefreshTTL()); err != nil {
		return TokenPair{}, err
	}

	log.Printf("token refresh ok: %s", m.Email)
	return pair, nil
}

// Logout revokes the access token for its remaining lifetime and removes
// the member's refresh token. Calling it again with the same token is a
// no-op that still succeeds.
func (s *AuthService) Logout(ctx context.Context, accessToken, email string) error {
	remaining, err := s.codec.Remaining(accessToken)
	if err != nil {
		return err
	}
	if err := s.cache.Blacklist(ctx, accessToken, remaining); err != nil {
		return err
	}
	if err := s.cache.DeleteRefresh(ctx, email); err != nil {
		return err
	}
	log.Printf("logout ok: %s", email)
	return nil
}

func (s *AuthService) mintPair(memberID int64, email, role string) (TokenPair, string, error) {
	access, err := s.codec.CreateAccess(memberID, email, role)
	if err != nil {
		return TokenPair{}, "", err
	}
	refresh, err := s.codec.CreateRefresh(memberID, email)
	if err != nil {
		return TokenPair{}, "", err
	}
	return TokenPair{
		AccessToken:          access,
		RefreshToken:         refresh,
		TokenType:            "Bearer",
		AccessTokenExpiresIn: s.codec.AccessTTL().Milliseconds(),
	}, refresh, nil
}
