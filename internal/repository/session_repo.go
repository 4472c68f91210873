package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, trainer_id, title, description, scheduled_at, duration_min,
		token_cost, max_participants, status, average_rating, channel_name,
		rtc_resource_id, rtc_sid, stream_started_at, stream_ended_at, created_at, updated_at`

type CreateSessionInput struct {
	TrainerID       int64
	Title           string
	Description     *string
	ScheduledAt     time.Time
	DurationMinutes int
	TokenCost       int
	MaxParticipants int
}

type UpdateSessionInput struct {
	Title           *string
	Description     *string
	ScheduledAt     *time.Time
	DurationMinutes *int
	TokenCost       *int
	MaxParticipants *int
}

type SessionListFilter struct {
	TrainerID int64
	Status    string
	Timeframe string
}

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.TrainerID,
		&session.Title,
		&session.Description,
		&session.ScheduledAt,
		&session.DurationMinutes,
		&session.TokenCost,
		&session.MaxParticipants,
		&session.Status,
		&session.AverageRating,
		&session.ChannelName,
		&session.RTCResourceID,
		&session.RTCSessionID,
		&session.StreamStartedAt,
		&session.StreamEndedAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	query := fmt.Sprintf(`
		INSERT INTO sessions (trainer_id, title, description, scheduled_at, duration_min, token_cost, max_participants, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'scheduled')
		RETURNING %s
	`, sessionColumns)

	return scanSession(r.db.QueryRow(
		ctx,
		query,
		input.TrainerID,
		input.Title,
		input.Description,
		input.ScheduledAt,
		input.DurationMinutes,
		input.TokenCost,
		input.MaxParticipants,
	))
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1 FOR UPDATE`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) List(ctx context.Context, filter SessionListFilter) ([]models.Session, error) {
	args := []any{}
	whereParts := []string{}

	if filter.TrainerID > 0 {
		args = append(args, filter.TrainerID)
		whereParts = append(whereParts, fmt.Sprintf("trainer_id = $%d", len(args)))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) > NOW()",
		)
	case "past":
		whereParts = append(
			whereParts,
			"(scheduled_at + (duration_min * INTERVAL '1 minute')) <= NOW()",
		)
	}

	where := ""
	if len(whereParts) > 0 {
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		%s
		ORDER BY scheduled_at ASC, id ASC
	`, sessionColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *SessionRepository) Update(ctx context.Context, sessionID int64, input UpdateSessionInput) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET title = COALESCE($2, title),
			description = COALESCE($3, description),
			scheduled_at = COALESCE($4, scheduled_at),
			duration_min = COALESCE($5, duration_min),
			token_cost = COALESCE($6, token_cost),
			max_participants = COALESCE($7, max_participants),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, sessionColumns)

	return scanSession(r.db.QueryRow(
		ctx,
		query,
		sessionID,
		input.Title,
		input.Description,
		input.ScheduledAt,
		input.DurationMinutes,
		input.TokenCost,
		input.MaxParticipants,
	))
}

func (r *SessionRepository) UpdateStatusIfCurrent(ctx context.Context, sessionID int64, currentStatus, nextStatus string) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, currentStatus, nextStatus))
}

// MarkLive flips a scheduled session to live and records the stream metadata.
// The status predicate makes the transition a compare-and-set; pgx.ErrNoRows
// means the session was not in the scheduled state anymore.
func (r *SessionRepository) MarkLive(ctx context.Context, sessionID int64, channelName string) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = 'live', channel_name = $2, stream_started_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'scheduled'
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID, channelName))
}

func (r *SessionRepository) MarkCompleted(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET status = 'completed', stream_ended_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'live'
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) SetRecording(ctx context.Context, sessionID int64, resourceID, sid string) error {
	query := `
		UPDATE sessions
		SET rtc_resource_id = $2, rtc_sid = $3, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, sessionID, resourceID, sid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RecomputeAverageRating refreshes the denormalized one-decimal mean after any
// rating mutation.
func (r *SessionRepository) RecomputeAverageRating(ctx context.Context, sessionID int64) (*models.Session, error) {
	query := fmt.Sprintf(`
		UPDATE sessions
		SET average_rating = (
				SELECT ROUND(AVG(rating)::numeric, 1)
				FROM ratings
				WHERE session_id = $1
			),
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, sessionColumns)
	return scanSession(r.db.QueryRow(ctx, query, sessionID))
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
