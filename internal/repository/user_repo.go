package repository

import (
	"context"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, tokens, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, user.Email, user.PasswordHash, user.Role).
		Scan(&user.ID, &user.Tokens, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, role, tokens, preferences, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Tokens,
		&user.Preferences,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, role, tokens, preferences, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Tokens,
		&user.Preferences,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DebitTokens subtracts amount from the user's balance. The balance guard is
// part of the statement, so a concurrent debit can never push it negative;
// pgx.ErrNoRows means the balance was insufficient.
func (r *UserRepository) DebitTokens(ctx context.Context, userID int64, amount int) (int, error) {
	query := `
		UPDATE users
		SET tokens = tokens - $2, updated_at = NOW()
		WHERE id = $1 AND tokens >= $2
		RETURNING tokens
	`
	var remaining int
	if err := r.db.QueryRow(ctx, query, userID, amount).Scan(&remaining); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (r *UserRepository) CreditTokens(ctx context.Context, userID int64, amount int) (int, error) {
	query := `
		UPDATE users
		SET tokens = tokens + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING tokens
	`
	var balance int
	if err := r.db.QueryRow(ctx, query, userID, amount).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *UserRepository) SetTokens(ctx context.Context, userID int64, tokens int) (*models.User, error) {
	query := `
		UPDATE users
		SET tokens = GREATEST($2, 0), updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, password_hash, role, tokens, preferences, created_at, updated_at
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, userID, tokens).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Tokens,
		&user.Preferences,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePreferences(ctx context.Context, userID int64, preferences []string) error {
	query := `
		UPDATE users
		SET preferences = $2, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, userID, preferences)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
