package repository

import (
	"context"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
)

type CreateTransactionInput struct {
	UserID        int64
	PackageID     int64
	Tokens        int
	Amount        float64
	Currency      string
	PaymentMethod string
	Status        string
	Reference     string
}

type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, package_id, tokens, amount, currency, payment_method, status, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, package_id, tokens, amount, currency, payment_method, status, reference, created_at
	`
	var txn models.Transaction
	err := r.db.QueryRow(
		ctx,
		query,
		input.UserID,
		input.PackageID,
		input.Tokens,
		input.Amount,
		input.Currency,
		input.PaymentMethod,
		input.Status,
		input.Reference,
	).Scan(
		&txn.ID,
		&txn.UserID,
		&txn.PackageID,
		&txn.Tokens,
		&txn.Amount,
		&txn.Currency,
		&txn.PaymentMethod,
		&txn.Status,
		&txn.Reference,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, package_id, tokens, amount, currency, payment_method, status, reference, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY id DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.PackageID,
			&txn.Tokens,
			&txn.Amount,
			&txn.Currency,
			&txn.PaymentMethod,
			&txn.Status,
			&txn.Reference,
			&txn.CreatedAt,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}
