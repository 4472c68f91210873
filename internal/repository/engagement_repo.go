package repository

import (
	"context"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
)

type EngagementRepository struct {
	db DBTX
}

func NewEngagementRepository(db DBTX) *EngagementRepository {
	return &EngagementRepository{db: db}
}

func (r *EngagementRepository) CreateMessage(ctx context.Context, sessionID, userID int64, content string) (*models.ChatMessage, error) {
	query := `
		INSERT INTO chat_messages (session_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, session_id, user_id, content, created_at
	`
	var message models.ChatMessage
	err := r.db.QueryRow(ctx, query, sessionID, userID, content).Scan(
		&message.ID,
		&message.SessionID,
		&message.UserID,
		&message.Content,
		&message.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *EngagementRepository) ListMessagesBySession(ctx context.Context, sessionID int64) ([]models.ChatMessage, error) {
	query := `
		SELECT id, session_id, user_id, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var message models.ChatMessage
		if err := rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.UserID,
			&message.Content,
			&message.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *EngagementRepository) CreateReaction(ctx context.Context, sessionID, userID int64, kind string) (*models.Reaction, error) {
	query := `
		INSERT INTO reactions (session_id, user_id, kind)
		VALUES ($1, $2, $3)
		RETURNING id, session_id, user_id, kind, created_at
	`
	var reaction models.Reaction
	err := r.db.QueryRow(ctx, query, sessionID, userID, kind).Scan(
		&reaction.ID,
		&reaction.SessionID,
		&reaction.UserID,
		&reaction.Kind,
		&reaction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *EngagementRepository) ListReactionsBySession(ctx context.Context, sessionID int64) ([]models.Reaction, error) {
	query := `
		SELECT id, session_id, user_id, kind, created_at
		FROM reactions
		WHERE session_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reactions := make([]models.Reaction, 0)
	for rows.Next() {
		var reaction models.Reaction
		if err := rows.Scan(
			&reaction.ID,
			&reaction.SessionID,
			&reaction.UserID,
			&reaction.Kind,
			&reaction.CreatedAt,
		); err != nil {
			return nil, err
		}
		reactions = append(reactions, reaction)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reactions, nil
}
