package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_date, end_date, item_id, booker_id, status)
              VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		booking.Start,
		booking.End,
		booking.ItemID,
		booking.BookerID,
		booking.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	var b models.Booking
	query := `SELECT id, start_date, end_date, item_id, booker_id, status FROM bookings WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Start, &b.End, &b.ItemID, &b.BookerID, &b.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// ListBookingsByBooker returns the booker's bookings ordered by start
// descending. A negative limit disables paging.
func (db *DB) ListBookingsByBooker(ctx context.Context, bookerID int64, limit, offset int) ([]*models.Booking, error) {
	query := `SELECT id, start_date, end_date, item_id, booker_id, status
              FROM bookings WHERE booker_id = ?
              ORDER BY start_date DESC`
	args := []interface{}{bookerID}
	if limit >= 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	return db.queryBookings(ctx, query, args...)
}

// ListBookingsByOwner returns bookings of every item owned by ownerID,
// ordered by start descending. A negative limit disables paging.
func (db *DB) ListBookingsByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*models.Booking, error) {
	query := `SELECT b.id, b.start_date, b.end_date, b.item_id, b.booker_id, b.status
              FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ?
              ORDER BY b.start_date DESC`
	args := []interface{}{ownerID}
	if limit >= 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	return db.queryBookings(ctx, query, args...)
}

// GetLastBooking returns the most recent approved booking of the item that
// has already started, or ErrNotFound.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT id, start_date, end_date, item_id, booker_id, status
              FROM bookings
              WHERE item_id = ? AND status = ? AND start_date <= ?
              ORDER BY start_date DESC LIMIT 1`
	return db.queryBooking(ctx, query, itemID, models.StatusApproved, now)
}

// GetNextBooking returns the soonest approved booking of the item that
// starts after now, or ErrNotFound.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT id, start_date, end_date, item_id, booker_id, status
              FROM bookings
              WHERE item_id = ? AND status = ? AND start_date > ?
              ORDER BY start_date ASC LIMIT 1`
	return db.queryBooking(ctx, query, itemID, models.StatusApproved, now)
}

// HasFinishedBooking reports whether any booking of the item ended before now.
func (db *DB) HasFinishedBooking(ctx context.Context, itemID int64, now time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE item_id = ? AND end_date < ?`
	var count int
	if err := db.QueryRowContext(ctx, query, itemID, now).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count finished bookings: %w", err)
	}
	return count > 0, nil
}

func (db *DB) queryBooking(ctx context.Context, query string, args ...interface{}) (*models.Booking, error) {
	var b models.Booking
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&b.ID, &b.Start, &b.End, &b.ItemID, &b.BookerID, &b.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		if err := rows.Scan(&b.ID, &b.Start, &b.End, &b.ItemID, &b.BookerID, &b.Status); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
