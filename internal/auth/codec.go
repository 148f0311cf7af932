// Package auth provides the signed-token codec, the server-side token cache
// and the request principal shared by the authentication flow.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/shop-backend/internal/errs"
)

// TokenType distinguishes the two token kinds minted by the codec.
type TokenType string

const (
	TokenAccess  TokenType = "ACCESS"
	TokenRefresh TokenType = "REFRESH"
)

const bearerPrefix = "Bearer "

// Claims is the decoded payload of a token issued by this codec.
type Claims struct {
	Email     string
	MemberID  int64
	Role      string
	Type      TokenType
	ExpiresAt time.Time
}

// Codec signs and verifies compact JWTs with HMAC-SHA-512. The signing key
// is the base64-decoded secret and must be at least 64 bytes so it matches
// the HS512 block size.
type Codec struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec decodes the base64 secret and validates its length. TTLs of zero
// fall back to the defaults of 1 hour for access and 14 days for refresh.
func NewCodec(secretB64, issuer string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(secretB64)
	if err != nil {
		return nil, fmt.Errorf("jwt secret is not valid base64: %w", err)
	}
	if len(key) < 64 {
		return nil, fmt.Errorf("jwt secret must decode to at least 64 bytes, got %d", len(key))
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 14 * 24 * time.Hour
	}
	return &Codec{key: key, issuer: issuer, accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// CreateAccess mints an access token carrying the member's identity and role.
func (c *Codec) CreateAccess(memberID int64, email, role string) (string, error) {
	return c.sign(memberID, email, role, TokenAccess, c.accessTTL)
}

// CreateRefresh mints a refresh token. Refresh tokens carry no role claim.
func (c *Codec) CreateRefresh(memberID int64, email string) (string, error) {
	return c.sign(memberID, email, "", TokenRefresh, c.refreshTTL)
}

func (c *Codec) sign(memberID int64, email, role string, typ TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      email,
		"iss":      c.issuer,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
		"memberId": memberID,
		"type":     string(typ),
	}
	if role != "" {
		claims["role"] = role
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return t.SignedString(c.key)
}

// Validate checks the signature and expiry of token. An expired token fails
// with errs.ExpiredToken so callers can report it distinctly; any other
// defect (malformed, bad signature, wrong algorithm, empty) yields plain
// false with a nil error.
func (c *Codec) Validate(token string) (bool, error) {
	_, err := c.parse(token)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return false, errs.ExpiredToken
	}
	return false, nil
}

// ParseClaims verifies token and decodes its payload.
func (c *Codec) ParseClaims(token string) (Claims, error) {
	mc, err := c.parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, errs.ExpiredToken
		}
		return Claims{}, errs.InvalidToken
	}
	return decodeClaims(mc), nil
}

// Remaining returns the time left until token expiry. The result may be
// negative for an already expired token; it is used only to size the
// blacklist TTL on logout, so expiry itself is not an error here.
func (c *Codec) Remaining(token string) (time.Duration, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	mc := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(token, mc, c.keyFunc); err != nil {
		return 0, errs.InvalidToken
	}
	claims := decodeClaims(mc)
	return time.Until(claims.ExpiresAt), nil
}

// ResolveFromHeader extracts the raw token from an Authorization header
// value. A missing header or a non-Bearer scheme yields ok=false.
func ResolveFromHeader(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", false
	}
	return token, true
}

func (c *Codec) parse(token string) (jwt.MapClaims, error) {
	mc := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, mc, c.keyFunc); err != nil {
		return nil, err
	}
	return mc, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
	}
	return c.key, nil
}

func decodeClaims(mc jwt.MapClaims) Claims {
	out := Claims{}
	if sub, ok := mc["sub"].(string); ok {
		out.Email = sub
	}
	if id, ok := mc["memberId"].(float64); ok {
		out.MemberID = int64(id)
	}
	if role, ok := mc["role"].(string); ok {
		out.Role = role
	}
	if typ, ok := mc["type"].(string); ok {
		out.Type = TokenType(typ)
	}
	if exp, ok := mc["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out
}
