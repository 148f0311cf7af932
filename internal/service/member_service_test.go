package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/shop-backend/internal/errs"
	"github.com/iliyamo/shop-backend/internal/model"
	"github.com/iliyamo/shop-backend/internal/repository/memstore"
	"github.com/iliyamo/shop-backend/internal/service"
	"github.com/iliyamo/shop-backend/internal/utils"
)

func TestSignUpCreatesActiveMember(t *testing.T) {
	store := memstore.New()
	svc := service.NewMemberService(store.Members(), 4)
	ctx := context.Background()

	m, err := svc.SignUp(ctx, service.SignUpInput{
		Email:    "New.Buyer@Example.com",
		Password: "secret1234",
		Name:     "New Buyer",
		Phone:    "01012345678",
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if m.ID == 0 {
		t.Error("member ID not assigned")
	}
	if m.Email != "new.buyer@example.com" {
		t.Errorf("email = %q, want lowercased", m.Email)
	}
	if m.Role != model.RoleUser || m.Status != model.MemberActive {
		t.Errorf("role/status = %s/%s, want USER/ACTIVE", m.Role, m.Status)
	}
	if m.PasswordHash == "secret1234" || m.PasswordHash == "" {
		t.Error("password stored unhashed")
	}
	if !utils.VerifyPassword(m.PasswordHash, "secret1234") {
		t.Error("stored hash does not verify against the password")
	}
}

func TestSignUpRoleHandling(t *testing.T) {
	store := memstore.New()
	svc := service.NewMemberService(store.Members(), 4)
	ctx := context.Background()

	seller, err := svc.SignUp(ctx, service.SignUpInput{
		Email: "seller@example.com", Password: "secret1234", Name: "Seller", Role: "SELLER",
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if seller.Role != model.RoleSeller {
		t.Errorf("role = %s, want SELLER", seller.Role)
	}

	unknown, err := svc.SignUp(ctx, service.SignUpInput{
		Email: "odd@example.com", Password: "secret1234", Name: "Odd", Role: "WIZARD",
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if unknown.Role != model.RoleUser {
		t.Errorf("unknown role mapped to %s, want USER", unknown.Role)
	}
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	store := memstore.New()
	svc := service.NewMemberService(store.Members(), 4)
	ctx := context.Background()

	in := service.SignUpInput{Email: "dup@example.com", Password: "secret1234", Name: "First"}
	if _, err := svc.SignUp(ctx, in); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, err := svc.SignUp(ctx, in); !errors.Is(err, errs.DuplicateEmail) {
		t.Errorf("duplicate error = %v, want DUPLICATE_EMAIL", err)
	}

	exists, err := svc.CheckEmail(ctx, "DUP@example.com")
	if err != nil || !exists {
		t.Errorf("CheckEmail = (%v, %v), want (true, nil)", exists, err)
	}
	exists, err = svc.CheckEmail(ctx, "free@example.com")
	if err != nil || exists {
		t.Errorf("CheckEmail free = (%v, %v), want (false, nil)", exists, err)
	}
}
