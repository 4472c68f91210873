package repository

import (
	"context"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
)

type ParticipantRepository struct {
	db DBTX
}

func NewParticipantRepository(db DBTX) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// RecordJoin inserts the participant or, on rejoin, refreshes joined_at and
// clears left_at so the next leave closes the new interval. Accumulated
// duration and engagement counters survive the rejoin.
func (r *ParticipantRepository) RecordJoin(ctx context.Context, sessionID, userID int64) (*models.Participant, error) {
	query := `
		INSERT INTO participants (session_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (session_id, user_id)
		DO UPDATE SET joined_at = NOW(), left_at = NULL
		RETURNING id, session_id, user_id, joined_at, left_at, duration_seconds, message_count, reaction_count
	`
	var participant models.Participant
	err := r.db.QueryRow(ctx, query, sessionID, userID).Scan(
		&participant.ID,
		&participant.SessionID,
		&participant.UserID,
		&participant.JoinedAt,
		&participant.LeftAt,
		&participant.DurationSeconds,
		&participant.MessageCount,
		&participant.ReactionCount,
	)
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// RecordLeave stamps left_at and folds the elapsed interval into the running
// duration total. The left_at IS NULL predicate makes a second leave a no-op;
// pgx.ErrNoRows means there was no open join to close.
func (r *ParticipantRepository) RecordLeave(ctx context.Context, sessionID, userID int64) (*models.Participant, error) {
	query := `
		UPDATE participants
		SET left_at = NOW(),
			duration_seconds = duration_seconds + EXTRACT(EPOCH FROM (NOW() - joined_at))::int
		WHERE session_id = $1 AND user_id = $2 AND left_at IS NULL
		RETURNING id, session_id, user_id, joined_at, left_at, duration_seconds, message_count, reaction_count
	`
	var participant models.Participant
	err := r.db.QueryRow(ctx, query, sessionID, userID).Scan(
		&participant.ID,
		&participant.SessionID,
		&participant.UserID,
		&participant.JoinedAt,
		&participant.LeftAt,
		&participant.DurationSeconds,
		&participant.MessageCount,
		&participant.ReactionCount,
	)
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *ParticipantRepository) Exists(ctx context.Context, sessionID, userID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM participants WHERE session_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, sessionID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ParticipantRepository) ListBySession(ctx context.Context, sessionID int64) ([]models.Participant, error) {
	query := `
		SELECT id, session_id, user_id, joined_at, left_at, duration_seconds, message_count, reaction_count
		FROM participants
		WHERE session_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var participant models.Participant
		if err := rows.Scan(
			&participant.ID,
			&participant.SessionID,
			&participant.UserID,
			&participant.JoinedAt,
			&participant.LeftAt,
			&participant.DurationSeconds,
			&participant.MessageCount,
			&participant.ReactionCount,
		); err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return participants, nil
}

func (r *ParticipantRepository) IncrementMessageCount(ctx context.Context, sessionID, userID int64) error {
	query := `
		UPDATE participants
		SET message_count = message_count + 1
		WHERE session_id = $1 AND user_id = $2
	`
	_, err := r.db.Exec(ctx, query, sessionID, userID)
	return err
}

func (r *ParticipantRepository) IncrementReactionCount(ctx context.Context, sessionID, userID int64) error {
	query := `
		UPDATE participants
		SET reaction_count = reaction_count + 1
		WHERE session_id = $1 AND user_id = $2
	`
	_, err := r.db.Exec(ctx, query, sessionID, userID)
	return err
}
