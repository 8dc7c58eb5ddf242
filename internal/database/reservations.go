package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ivyresort/internal/models"
)

const reservationColumns = `id, confirmation_id, guest_name, email, phone, room_name, room_type,
                 check_in, check_out, guests, total_amount, currency, special_requests,
                 email_sent, status, created_at, updated_at, version`

func (db *DB) CreateReservation(ctx context.Context, res *models.Reservation) error {
	query := `INSERT INTO reservations (
				confirmation_id, guest_name, email, phone, room_name, room_type,
				check_in, check_out, guests, total_amount, currency, special_requests,
				email_sent, status, created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		res.ConfirmationID,
		res.GuestName,
		res.Email,
		res.Phone,
		res.RoomName,
		res.RoomType,
		res.CheckIn,
		res.CheckOut,
		res.Guests,
		res.TotalAmount,
		res.Currency,
		res.SpecialRequests,
		res.EmailSent,
		res.Status,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	res.ID = id
	res.CreatedAt = now
	res.UpdatedAt = now
	res.Version = 1

	return nil
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

// ListReservations returns rows most-recently-updated first.
func (db *DB) ListReservations(ctx context.Context, filter models.ReservationFilter) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	} else if !filter.IncludeDeleted {
		conditions = append(conditions, "status != ?")
		args = append(args, models.StatusDeleted)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "updated_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reservations: %w", err)
	}
	return reservations, nil
}

// UpdateReservation merges only the provided patch fields, bumping
// version and updated_at. Returns ErrNotFound for an unknown id.
func (db *DB) UpdateReservation(ctx context.Context, id int64, patch models.ReservationPatch) error {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.GuestName != nil {
		add("guest_name", *patch.GuestName)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.RoomName != nil {
		add("room_name", *patch.RoomName)
	}
	if patch.RoomType != nil {
		add("room_type", *patch.RoomType)
	}
	if patch.CheckIn != nil {
		add("check_in", *patch.CheckIn)
	}
	if patch.CheckOut != nil {
		add("check_out", *patch.CheckOut)
	}
	if patch.Guests != nil {
		add("guests", *patch.Guests)
	}
	if patch.TotalAmount != nil {
		add("total_amount", *patch.TotalAmount)
	}
	if patch.Currency != nil {
		add("currency", *patch.Currency)
	}
	if patch.SpecialRequests != nil {
		add("special_requests", *patch.SpecialRequests)
	}
	if patch.EmailSent != nil {
		add("email_sent", *patch.EmailSent)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}

	if len(sets) == 0 {
		// Nothing to merge; still verify the row exists.
		_, err := db.GetReservation(ctx, id)
		return err
	}

	sets = append(sets, "version = version + 1", "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := "UPDATE reservations SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateReservationStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE reservations SET status = ?, version = version + 1, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateReservationStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE reservations SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

func (db *DB) SetEmailSent(ctx context.Context, id int64, sent bool) error {
	query := `UPDATE reservations SET email_sent = ?, version = version + 1, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, sent, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set email_sent: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReservation is a hard remove.
func (db *DB) DeleteReservation(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStats aggregates counts by status and revenue for rows created
// within the trailing window.
func (db *DB) GetStats(ctx context.Context, since time.Time) (*models.Stats, error) {
	query := `SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)
              FROM reservations WHERE created_at >= ? GROUP BY status`
	rows, err := db.QueryContext(ctx, query, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	defer rows.Close()

	stats := &models.Stats{}
	for rows.Next() {
		var status string
		var count int
		var revenue float64
		if err := rows.Scan(&status, &count, &revenue); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}

		stats.TotalReservations += count
		stats.TotalRevenue += revenue
		switch status {
		case models.StatusPending:
			stats.Pending = count
		case models.StatusConfirmed:
			stats.Confirmed = count
		case models.StatusCheckedIn:
			stats.CheckedIn = count
		case models.StatusCheckedOut:
			stats.CheckedOut = count
		case models.StatusCancelled:
			stats.Cancelled = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stats: %w", err)
	}
	return stats, nil
}

// SweepExpired hard-deletes terminal reservations whose updated_at is
// older than cutoff and returns the number of rows removed.
func (db *DB) SweepExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM reservations WHERE status IN (?, ?, ?) AND updated_at < ?`
	result, err := db.ExecContext(ctx, query,
		models.StatusCancelled, models.StatusCheckedOut, models.StatusDeleted, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired reservations: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count swept reservations: %w", err)
	}
	return rows, nil
}

// RecordCleanupRun stores the outcome of a retention sweep.
func (db *DB) RecordCleanupRun(ctx context.Context, ranAt time.Time, deleted int64, windowDays int) error {
	query := `INSERT INTO cleanup_runs (ran_at, deleted_count, window_days) VALUES (?, ?, ?)`
	if _, err := db.ExecContext(ctx, query, ranAt.UTC(), deleted, windowDays); err != nil {
		return fmt.Errorf("failed to record cleanup run: %w", err)
	}
	return nil
}

// LastCleanupRun returns the most recent sweep record, or nil when none ran yet.
func (db *DB) LastCleanupRun(ctx context.Context) (*models.CleanupRun, error) {
	query := `SELECT id, ran_at, deleted_count, window_days FROM cleanup_runs ORDER BY ran_at DESC LIMIT 1`
	var run models.CleanupRun
	err := db.QueryRowContext(ctx, query).Scan(&run.ID, &run.RanAt, &run.DeletedCount, &run.WindowDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last cleanup run: %w", err)
	}
	return &run, nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row scannable) (*models.Reservation, error) {
	res := &models.Reservation{}
	err := row.Scan(
		&res.ID, &res.ConfirmationID, &res.GuestName, &res.Email, &res.Phone,
		&res.RoomName, &res.RoomType, &res.CheckIn, &res.CheckOut, &res.Guests,
		&res.TotalAmount, &res.Currency, &res.SpecialRequests, &res.EmailSent,
		&res.Status, &res.CreatedAt, &res.UpdatedAt, &res.Version,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}
