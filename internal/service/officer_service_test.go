package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
)

func validOfficerInput() CreateOfficerInput {
	return CreateOfficerInput{
		Username:   "perito.santos",
		Email:      "santos@dpt.ba.gov.br",
		Name:       "Perito Santos",
		Department: entity.DeptCriminal,
		Badge:      "PC-2002",
		Password:   "provisoria123",
	}
}

func TestCreateOfficer(t *testing.T) {
	ctx := context.Background()

	t.Run("new officer gets OFFICER role and a provisional password", func(t *testing.T) {
		users := &mockUserRepo{users: map[string]*entity.User{}}
		s := NewOfficerService(users, testLogger())

		officer, err := s.Create(ctx, validOfficerInput(), agentActor)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if officer.Role != entity.RoleOfficer {
			t.Errorf("expected OFFICER role, got %s", officer.Role)
		}
		if !officer.MustChangePassword {
			t.Errorf("expected must_change_password to be set")
		}
		if officer.PasswordHash == "provisoria123" {
			t.Errorf("password stored in clear")
		}
	})

	t.Run("officer cannot create other officers", func(t *testing.T) {
		users := &mockUserRepo{users: map[string]*entity.User{}}
		s := NewOfficerService(users, testLogger())

		_, err := s.Create(ctx, validOfficerInput(), officerActor)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("duplicate badge is rejected", func(t *testing.T) {
		users := &mockUserRepo{users: map[string]*entity.User{
			"u1": {ID: "u1", Username: "outro", Email: "outro@dpt.ba.gov.br", Badge: "PC-2002"},
		}}
		s := NewOfficerService(users, testLogger())

		_, err := s.Create(ctx, validOfficerInput(), agentActor)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if valErr.Field != "badge" {
			t.Errorf("expected field badge, got %s", valErr.Field)
		}
	})

	t.Run("malformed email is rejected", func(t *testing.T) {
		users := &mockUserRepo{users: map[string]*entity.User{}}
		s := NewOfficerService(users, testLogger())

		input := validOfficerInput()
		input.Email = "sem-arroba"

		_, err := s.Create(ctx, input, agentActor)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		users := &mockUserRepo{users: map[string]*entity.User{}}
		s := NewOfficerService(users, testLogger())

		input := validOfficerInput()
		input.Name = ""

		_, err := s.Create(ctx, input, agentActor)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestListOfficers(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepo{users: map[string]*entity.User{}}
	s := NewOfficerService(users, testLogger())

	t.Run("officer cannot list", func(t *testing.T) {
		_, err := s.List(ctx, officerActor)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("agent can list", func(t *testing.T) {
		if _, err := s.List(ctx, agentActor); err != nil {
			t.Fatalf("List failed: %v", err)
		}
	})
}
