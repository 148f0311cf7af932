package handler

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-backend/internal/service"
)

// MemberHandler exposes signup and email availability.
type MemberHandler struct {
	Members *service.MemberService
}

func NewMemberHandler(svc *service.MemberService) *MemberHandler {
	return &MemberHandler{Members: svc}
}

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	passwordPattern = regexp.MustCompile(`^[A-Za-z\d@$!%*#?&]{8,20}$`)
	phonePattern    = regexp.MustCompile(`^01[016789]\d{7,8}$`)
)

type signUpReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// SignUp registers a new member. Validation mirrors the account rules:
// email at most 50 chars, password 8-20 with at least one letter, one digit
// and one of @$!%*#?&, name 2-50 chars, phone in the 01x mobile form when
// present.
func (h *MemberHandler) SignUp(c echo.Context) error {
	var req signUpReq
	if err := c.Bind(&req); err != nil {
		return failInput(c, "invalid request body")
	}
	if msg, ok := validateSignUp(&req); !ok {
		return failInput(c, msg)
	}

	m, err := h.Members.SignUp(c.Request().Context(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     strings.ToUpper(strings.TrimSpace(req.Role)),
	})
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, newMemberView(m))
}

// CheckEmail reports whether the email is already registered.
func (h *MemberHandler) CheckEmail(c echo.Context) error {
	email := strings.ToLower(strings.TrimSpace(c.QueryParam("email")))
	if email == "" || len(email) > 50 || !emailPattern.MatchString(email) {
		return failInput(c, "valid email query parameter required")
	}
	exists, err := h.Members.CheckEmail(c.Request().Context(), email)
	if err != nil {
		return Fail(c, err)
	}
	return OK(c, http.StatusOK, exists)
}

func validateSignUp(req *signUpReq) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(email) > 50 || !emailPattern.MatchString(email) {
		return "email must be a valid address of at most 50 characters", false
	}
	if !passwordPattern.MatchString(req.Password) ||
		!strings.ContainsAny(req.Password, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ") ||
		!strings.ContainsAny(req.Password, "0123456789") ||
		!strings.ContainsAny(req.Password, "@$!%*#?&") {
		return "password must be 8-20 characters with a letter, a digit and a special character", false
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 2 || len(name) > 50 {
		return "name must be 2-50 characters", false
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" && !phonePattern.MatchString(phone) {
		return "phone must be a valid mobile number", false
	}
	return "", true
}
