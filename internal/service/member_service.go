// Package service implements the business operations on top of the store
// interfaces. Services accept interfaces so the MySQL repositories and the
// in-memory test stores are interchangeable.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
	"github.com/iliyamo/shop-backend/internal/utils"
)

// MemberStore is the persistence contract for members.
type MemberStore interface {
	// Create inserts the member and fills in its ID. A duplicate email
	// fails with errs.DuplicateEmail.
	Create(ctx context.Context, m *model.Member) error
	// GetByEmail fails with errs.MemberNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (*model.Member, error)
	// GetByID fails with errs.MemberNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*model.Member, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// TouchLastLogin persists the login timestamp.
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// SignUpInput carries the already validated signup fields.
type SignUpInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     string
}

// MemberService handles signup and email availability checks.
type MemberService struct {
	members    MemberStore
	bcryptCost int
}

func NewMemberService(members MemberStore, bcryptCost int) *MemberService {
	return &MemberService{members: members, bcryptCost: bcryptCost}
}

// SignUp creates an ACTIVE member. The role defaults to USER when the
// request names none or an unknown one.
func (s *MemberService) SignUp(ctx context.Context, in SignUpInput) (*model.Member, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	exists, err := s.members.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.DuplicateEmail
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	role := model.RoleUser
	if model.ValidRole(in.Role) {
		role = model.MemberRole(in.Role)
	}

	m := &model.Member{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
		Status:       model.MemberActive,
	}
	if err := s.members.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// CheckEmail reports whether email is already registered.
func (s *MemberService) CheckEmail(ctx context.Context, email string) (bool, error) {
	return s.members.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
