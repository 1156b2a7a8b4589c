package postgres

import (
	"context"
	"database/sql"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/repository"
)

type userRepo struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, username, email, name, department, badge, role, password_hash,
	is_active, must_change_password, last_login, created_at, updated_at`

func scanUser(row interface {
	Scan(dest ...interface{}) error
}) (*entity.User, error) {
	u := &entity.User{}
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.Department, &u.Badge,
		&u.Role, &u.PasswordHash, &u.IsActive, &u.MustChangePassword,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return u, nil
}

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (id, username, email, name, department, badge, role, password_hash,
	          is_active, must_change_password, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.Name, user.Department, user.Badge,
		user.Role, user.PasswordHash, user.IsActive, user.MustChangePassword,
		user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *userRepo) getBy(ctx context.Context, field, value string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + field + ` = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *userRepo) GetByBadge(ctx context.Context, badge string) (*entity.User, error) {
	return r.getBy(ctx, "badge", badge)
}

func (r *userRepo) ListOfficers(ctx context.Context) ([]entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, entity.RoleOfficer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	officers := []entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		officers = append(officers, *user)
	}
	return officers, rows.Err()
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id string) error {
	query := `UPDATE users SET last_login = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, passwordHash string, mustChangePassword bool) error {
	query := `UPDATE users SET password_hash = $1, must_change_password = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, passwordHash, mustChangePassword, id)
	return err
}
