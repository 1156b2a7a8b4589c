package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type CreateOfficerInput struct {
	Username   string
	Email      string
	Name       string
	Department entity.Department
	Badge      string
	Password   string
}

// OfficerService gerencia as contas de policiais. Apenas agentes
// criam e listam policiais.
type OfficerService interface {
	Create(ctx context.Context, input CreateOfficerInput, actor entity.Actor) (*entity.User, error)
	List(ctx context.Context, actor entity.Actor) ([]entity.User, error)
}

type officerService struct {
	userRepo repository.UserRepository
	log      *logrus.Entry
}

func NewOfficerService(userRepo repository.UserRepository, log *logrus.Logger) OfficerService {
	return &officerService{
		userRepo: userRepo,
		log:      logrus.NewEntry(log),
	}
}

func (s *officerService) Create(ctx context.Context, input CreateOfficerInput, actor entity.Actor) (*entity.User, error) {
	const op = "service.Officer.Create"
	log := s.log.WithField("operation", op)

	if actor.Role != entity.RoleAgent {
		return nil, NewAuthorizationError("apenas agentes podem criar policiais")
	}

	if input.Username == "" || input.Email == "" || input.Name == "" ||
		input.Badge == "" || input.Password == "" {
		return nil, NewValidationError("", "Todos os campos são obrigatórios")
	}
	if !input.Department.Valid() {
		return nil, NewValidationError("department", "departamento inválido")
	}
	if !emailPattern.MatchString(input.Email) {
		return nil, NewValidationError("email", "Email inválido")
	}

	if existing, err := s.userRepo.GetByUsername(ctx, input.Username); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	} else if existing != nil {
		return nil, NewValidationError("username", "Usuário já existe")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, input.Email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	} else if existing != nil {
		return nil, NewValidationError("email", "Email já cadastrado")
	}

	if existing, err := s.userRepo.GetByBadge(ctx, input.Badge); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	} else if existing != nil {
		return nil, NewValidationError("badge", "Matrícula já cadastrada")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	officer := &entity.User{
		ID:                 uuid.New().String(),
		Username:           input.Username,
		Email:              input.Email,
		Name:               input.Name,
		Department:         input.Department,
		Badge:              input.Badge,
		Role:               entity.RoleOfficer,
		PasswordHash:       string(hashed),
		IsActive:           true,
		MustChangePassword: true, // Senha provisória: troca obrigatória no primeiro acesso
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.userRepo.Create(ctx, officer); err != nil {
		log.WithError(err).Errorf("%s: failed to create officer", op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.WithField("badge", officer.Badge).Info("officer created")
	return officer, nil
}

func (s *officerService) List(ctx context.Context, actor entity.Actor) ([]entity.User, error) {
	const op = "service.Officer.List"

	if actor.Role != entity.RoleAgent {
		return nil, NewAuthorizationError("apenas agentes podem listar policiais")
	}

	officers, err := s.userRepo.ListOfficers(ctx)
	if err != nil {
		s.log.WithField("operation", op).WithError(err).Errorf("%s: failed to list officers", op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return officers, nil
}
