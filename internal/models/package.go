package models

import "time"

type Package struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Tokens        int        `json:"tokens"`
	Price         float64    `json:"price"`
	Currency      string     `json:"currency"`
	PromoStartsAt *time.Time `json:"promo_starts_at,omitempty"`
	PromoEndsAt   *time.Time `json:"promo_ends_at,omitempty"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusRefunded  = "refunded"
)

type Transaction struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	PackageID     int64     `json:"package_id"`
	Tokens        int       `json:"tokens"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	Reference     string    `json:"reference"`
	CreatedAt     time.Time `json:"created_at"`
}
