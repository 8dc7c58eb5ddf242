package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ivyresort/internal/models"
)

func (db *DB) CreateDashboardUser(ctx context.Context, user *models.DashboardUser) error {
	query := `INSERT INTO dashboard_users (name, email, role, active, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, user.Name, user.Email, user.Role, user.Active, now, now)
	if err != nil {
		return fmt.Errorf("failed to create dashboard user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (db *DB) GetDashboardUser(ctx context.Context, id int64) (*models.DashboardUser, error) {
	query := `SELECT id, name, email, role, active, created_at, updated_at
              FROM dashboard_users WHERE id = ?`
	var user models.DashboardUser
	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.Active,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard user: %w", err)
	}
	return &user, nil
}

func (db *DB) ListDashboardUsers(ctx context.Context) ([]*models.DashboardUser, error) {
	query := `SELECT id, name, email, role, active, created_at, updated_at
              FROM dashboard_users ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboard users: %w", err)
	}
	defer rows.Close()

	var users []*models.DashboardUser
	for rows.Next() {
		var user models.DashboardUser
		err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Role, &user.Active,
			&user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dashboard user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dashboard users: %w", err)
	}
	return users, nil
}

func (db *DB) UpdateDashboardUser(ctx context.Context, user *models.DashboardUser) error {
	query := `UPDATE dashboard_users SET name = ?, email = ?, role = ?, active = ?, updated_at = ?
              WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		user.Name, user.Email, user.Role, user.Active, time.Now().UTC(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to update dashboard user: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (db *DB) DeleteDashboardUser(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM dashboard_users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dashboard user: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
