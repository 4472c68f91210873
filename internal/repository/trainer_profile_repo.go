package repository

import (
	"context"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
)

type TrainerProfileRepository struct {
	db DBTX
}

func NewTrainerProfileRepository(db DBTX) *TrainerProfileRepository {
	return &TrainerProfileRepository{db: db}
}

func (r *TrainerProfileRepository) CreateEmpty(ctx context.Context, userID int64) error {
	query := `INSERT INTO trainer_profiles (user_id) VALUES ($1)`
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

func (r *TrainerProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.TrainerProfile, error) {
	query := `
		SELECT id, user_id, bio, hourly_rate, rating, created_at, updated_at
		FROM trainer_profiles
		WHERE user_id = $1
	`
	var profile models.TrainerProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Bio,
		&profile.HourlyRate,
		&profile.Rating,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *TrainerProfileRepository) Update(ctx context.Context, userID int64, bio *string, hourlyRate *float64) (*models.TrainerProfile, error) {
	query := `
		UPDATE trainer_profiles
		SET bio = COALESCE($2, bio),
			hourly_rate = COALESCE($3, hourly_rate),
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING id, user_id, bio, hourly_rate, rating, created_at, updated_at
	`
	var profile models.TrainerProfile
	err := r.db.QueryRow(ctx, query, userID, bio, hourlyRate).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Bio,
		&profile.HourlyRate,
		&profile.Rating,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// RecomputeRating rescans every rating across all of the trainer's sessions
// and stores the fresh one-decimal mean. Full rescan, not incremental.
func (r *TrainerProfileRepository) RecomputeRating(ctx context.Context, trainerID int64) error {
	query := `
		UPDATE trainer_profiles
		SET rating = (
				SELECT ROUND(AVG(r.rating)::numeric, 1)
				FROM ratings r
				JOIN sessions s ON s.id = r.session_id
				WHERE s.trainer_id = $1
			),
			updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.db.Exec(ctx, query, trainerID)
	return err
}
