package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/repository"
)

// ErrMustChangePassword sinaliza que o login exige troca de senha.
// O frontend detecta a mensagem e reapresenta o formulário.
var ErrMustChangePassword = errors.New("MUST_CHANGE_PASSWORD")

const sessionTTL = 7 * 24 * time.Hour

// SessionClaims carrega a identidade completa do usuário no token,
// de modo que o middleware monta o Actor sem consultar o banco
type SessionClaims struct {
	Name       string            `json:"name"`
	Role       entity.AppRole    `json:"role"`
	Department entity.Department `json:"department"`
	Badge      string            `json:"badge"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, email, password, newPassword string) (*entity.User, string, error)
	ValidateToken(tokenString string) (*entity.Actor, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	log       *logrus.Entry
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret []byte, log *logrus.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		log:       logrus.NewEntry(log),
	}
}

func (s *authService) Login(ctx context.Context, email, password, newPassword string) (*entity.User, string, error) {
	const op = "service.Auth.Login"
	log := s.log.WithField("operation", op)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to load user", op)
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return nil, "", NewAuthorizationError("Credenciais inválidas")
	}

	if !user.IsActive {
		return nil, "", NewAuthorizationError("Usuário inativo. Contate o administrador.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", NewAuthorizationError("Credenciais inválidas")
	}

	if user.MustChangePassword && newPassword == "" {
		return nil, "", ErrMustChangePassword
	}

	if newPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashed), false); err != nil {
			log.WithError(err).Errorf("%s: failed to update password", op)
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		user.MustChangePassword = false
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	// Registro de último login é best-effort
	_ = s.userRepo.UpdateLastLogin(ctx, user.ID)

	log.WithField("user", user.Username).Info("login succeeded")
	return user, token, nil
}

func (s *authService) generateToken(user *entity.User) (string, error) {
	claims := SessionClaims{
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
		Badge:      user.Badge,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			Issuer:    "laudos-dpt",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ValidateToken(tokenString string) (*entity.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return &entity.Actor{
		ID:         claims.Subject,
		Name:       claims.Name,
		Role:       claims.Role,
		Department: claims.Department,
		Badge:      claims.Badge,
	}, nil
}

func (s *authService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewNotFoundError("Usuário não encontrado")
	}
	return user, nil
}
