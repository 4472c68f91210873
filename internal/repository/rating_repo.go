package repository

import (
	"context"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
)

type RatingRepository struct {
	db DBTX
}

func NewRatingRepository(db DBTX) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert stores one rating per (session, user). Resubmission overwrites the
// value, feedback and timestamp in place instead of adding a row.
func (r *RatingRepository) Upsert(ctx context.Context, sessionID, userID int64, rating int, feedback *string) (*models.Rating, error) {
	query := `
		INSERT INTO ratings (session_id, user_id, rating, feedback)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, feedback = EXCLUDED.feedback, rated_at = NOW()
		RETURNING id, session_id, user_id, rating, feedback, rated_at
	`
	var entry models.Rating
	err := r.db.QueryRow(ctx, query, sessionID, userID, rating, feedback).Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.UserID,
		&entry.Rating,
		&entry.Feedback,
		&entry.RatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *RatingRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.Rating, error) {
	query := `
		SELECT id, session_id, user_id, rating, feedback, rated_at
		FROM ratings
		WHERE session_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]models.Rating, 0)
	for rows.Next() {
		var entry models.Rating
		if err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&entry.UserID,
			&entry.Rating,
			&entry.Feedback,
			&entry.RatedAt,
		); err != nil {
			return nil, err
		}
		ratings = append(ratings, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ratings, nil
}
