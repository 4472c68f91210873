package repository

import (
	"context"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
)

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, sessionID, userID int64) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (session_id, user_id)
		VALUES ($1, $2)
		RETURNING id, session_id, user_id, booked_at
	`
	var booking models.Booking
	err := r.db.QueryRow(ctx, query, sessionID, userID).Scan(
		&booking.ID,
		&booking.SessionID,
		&booking.UserID,
		&booking.BookedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) Exists(ctx context.Context, sessionID, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE session_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, sessionID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *BookingRepository) CountBySession(ctx context.Context, sessionID int64) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE session_id = $1`, sessionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BookingRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.Booking, error) {
	query := `
		SELECT id, session_id, user_id, booked_at
		FROM bookings
		WHERE session_id = $1
		ORDER BY id ASC
	`
	return r.list(ctx, query, sessionID)
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	query := `
		SELECT id, session_id, user_id, booked_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY id ASC
	`
	return r.list(ctx, query, userID)
}

func (r *BookingRepository) list(ctx context.Context, query string, arg any) ([]models.Booking, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		var booking models.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.SessionID,
			&booking.UserID,
			&booking.BookedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// CreditBookers refunds the token cost to every user holding a booking on the
// session and reports how many users were credited. Runs as a single
// statement, so it is safe to combine with DeleteBySession in one transaction.
func (r *BookingRepository) CreditBookers(ctx context.Context, sessionID int64, tokens int) (int64, error) {
	query := `
		UPDATE users u
		SET tokens = u.tokens + $2, updated_at = NOW()
		FROM bookings b
		WHERE b.session_id = $1 AND b.user_id = u.id
	`
	tag, err := r.db.Exec(ctx, query, sessionID, tokens)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *BookingRepository) DeleteBySession(ctx context.Context, sessionID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
