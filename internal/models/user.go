package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Tokens       int       `json:"tokens"`
	Preferences  *[]string `json:"preferences"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TrainerProfile struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Bio        *string   `json:"bio"`
	HourlyRate *float64  `json:"hourly_rate"`
	Rating     *float64  `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
