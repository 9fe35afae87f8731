package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"hardware-catalog-service/internal/domain"
)

const userColumns = `id, email, name, role, password_hash, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }, u *domain.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO shop.users (email, name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query, user.Email, user.Name, user.Role, user.PasswordHash)

	var created domain.User
	if err := scanUser(row, &created); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // Unique violation
			if strings.Contains(pqErr.Constraint, "users_email_key") || strings.Contains(pqErr.Detail, "Key (email)") {
				return nil, ErrUserEmailTaken
			}
		}
		return nil, fmt.Errorf("store: CreateUser failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM shop.users WHERE id = $1;`
	var user domain.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, id), &user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store: GetUserByID failed to scan row: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM shop.users WHERE email = $1;`
	var user domain.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, email), &user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store: GetUserByEmail failed to scan row: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, params ListUsersParams) ([]domain.User, int, error) {
	countQuery := `SELECT COUNT(*) FROM shop.users;`
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListUsers failed to count users: %w", err)
	}

	if totalCount == 0 {
		return []domain.User{}, 0, nil
	}

	query := `SELECT ` + userColumns + ` FROM shop.users ORDER BY id ASC LIMIT $1 OFFSET $2;`
	rows, err := s.db.QueryContext(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListUsers failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, params.Limit)
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, fmt.Errorf("store: ListUsers failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListUsers iteration error: %w", err)
	}

	return users, totalCount, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		UPDATE shop.users
		SET email = $1, name = $2, role = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING ` + userColumns + `;
	`
	var updated domain.User
	err := scanUser(s.db.QueryRowContext(ctx, query, user.Email, user.Name, user.Role, user.ID), &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if strings.Contains(pqErr.Constraint, "users_email_key") || strings.Contains(pqErr.Detail, "Key (email)") {
				return nil, ErrUserEmailTaken
			}
		}
		return nil, fmt.Errorf("store: UpdateUser failed to scan row: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	query := `DELETE FROM shop.users WHERE id = $1;`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteUser failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteUser failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
