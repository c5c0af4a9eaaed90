package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plumeblog/plume/internal/platform/db"
	"github.com/plumeblog/plume/internal/platform/httpx"
)

// Repository defines persistence operations for accounts and roles.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, email, passwordHash string, roleID int64) (*User, error)
	FindRole(ctx context.Context, id int64) (*Role, error)
	FindRoleByName(ctx context.Context, name string) (*Role, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `u.id, u.email, u.password_hash, u.role_id, r.name, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.RoleID, &user.Role.Name, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.Role.ID = user.RoleID
	return &user, nil
}

// FindByEmail fetches a user and its role by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u JOIN roles r ON r.id = u.role_id WHERE u.email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFoundError("user not found")
		}
		return nil, fmt.Errorf("auth: find user by email: %w", err)
	}
	return user, nil
}

// FindByID fetches a user and its role by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFoundError("user not found")
		}
		return nil, fmt.Errorf("auth: find user by id: %w", err)
	}
	return user, nil
}

// CreateUser inserts an account and reads back its role in one transaction.
// A duplicate email surfaces as a conflict.
func (r *PGRepository) CreateUser(ctx context.Context, email, passwordHash string, roleID int64) (*User, error) {
	var user User
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, role_id, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
			RETURNING id, email, password_hash, role_id, created_at, updated_at`,
			email, passwordHash, roleID)
		if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.RoleID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return httpx.ConflictError("a user with this email already exists")
			}
			return fmt.Errorf("auth: create user: %w", err)
		}
		if err := tx.QueryRow(ctx, `SELECT id, name FROM roles WHERE id = $1`, user.RoleID).Scan(&user.Role.ID, &user.Role.Name); err != nil {
			return fmt.Errorf("auth: create user role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindRole fetches a role by id.
func (r *PGRepository) FindRole(ctx context.Context, id int64) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE id = $1`, id).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFoundError("role not found")
		}
		return nil, fmt.Errorf("auth: find role: %w", err)
	}
	return &role, nil
}

// FindRoleByName fetches a role by name.
func (r *PGRepository) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.NotFoundError("role not found")
		}
		return nil, fmt.Errorf("auth: find role by name: %w", err)
	}
	return &role, nil
}

var _ Repository = (*PGRepository)(nil)
