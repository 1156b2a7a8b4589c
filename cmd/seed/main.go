package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Beatriz-ux/laudos-dpt/internal/config"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/repository"
	"github.com/Beatriz-ux/laudos-dpt/internal/platform/database"
	"github.com/Beatriz-ux/laudos-dpt/internal/repository/postgres"
)

// Contas iniciais para desenvolvimento. Idempotente: contas já
// existentes são puladas.
func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db, err := database.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	ctx := context.Background()

	seeds := []struct {
		username   string
		email      string
		name       string
		department entity.Department
		badge      string
		role       entity.AppRole
		password   string
	}{
		{
			username:   "agente.mesa",
			email:      "agente@dpt.ba.gov.br",
			name:       "Agente de Mesa",
			department: entity.DeptTraffic,
			badge:      "AG-0001",
			role:       entity.RoleAgent,
			password:   "agente123",
		},
		{
			username:   "perito.silva",
			email:      "perito@dpt.ba.gov.br",
			name:       "Perito Silva",
			department: entity.DeptTraffic,
			badge:      "PC-1001",
			role:       entity.RoleOfficer,
			password:   "perito123",
		},
	}

	for _, s := range seeds {
		if err := seedUser(ctx, userRepo, s.username, s.email, s.name, s.department, s.badge, s.role, s.password); err != nil {
			log.WithError(err).WithField("username", s.username).Fatal("failed to seed user")
		}
		log.WithField("username", s.username).Info("user ready")
	}
}

func seedUser(ctx context.Context, userRepo repository.UserRepository, username, email, name string, department entity.Department, badge string, role entity.AppRole, password string) error {
	existing, err := userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	return userRepo.Create(ctx, &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		Name:         name,
		Department:   department,
		Badge:        badge,
		Role:         role,
		PasswordHash: string(hashed),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
