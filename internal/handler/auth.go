package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-backend/internal/auth"
	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/middleware"
	"github.com/iliyamo/shop-backend/internal/service"
)

const refreshCookieName = "refreshToken"

// AuthHandler exposes login, refresh and logout.
type AuthHandler struct {
	Auth  *service.AuthService
	Codec *auth.Codec
}

func NewAuthHandler(svc *service.AuthService, codec *auth.Codec) *AuthHandler {
	return &AuthHandler{Auth: svc, Codec: codec}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// Login verifies credentials and returns a token pair. The refresh token is
// also mirrored into an HttpOnly cookie for browser clients.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return failInput(c, "invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return failInput(c, "email and password are required")
	}

	pair, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return Fail(c, err)
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	return OK(c, http.StatusOK, pair)
}

// Refresh rotates the refresh token. The token is taken from the cookie
// first, falling back to the request body for non-browser clients.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshReq
		if err := c.Bind(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		return Fail(c, errs.InvalidRefreshToken)
	}

	pair, err := h.Auth.Refresh(c.Request().Context(), token)
	if err != nil {
		return Fail(c, err)
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	return OK(c, http.StatusOK, pair)
}

// Logout revokes the caller's access token and clears the refresh state.
func (h *AuthHandler) Logout(c echo.Context) error {
	p := middleware.Principal(c)
	token, ok := middleware.AccessToken(c)
	if p == nil || !ok {
		return Fail(c, errs.Unauthorized)
	}
	if err := h.Auth.Logout(c.Request().Context(), token, p.Email); err != nil {
		return Fail(c, err)
	}
	h.clearRefreshCookie(c)
	return OK(c, http.StatusOK, nil)
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Codec.RefreshTTL() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
