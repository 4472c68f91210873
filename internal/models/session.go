package models

import "time"

const (
	SessionStatusScheduled = "scheduled"
	SessionStatusLive      = "live"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

type Session struct {
	ID              int64      `json:"id"`
	TrainerID       int64      `json:"trainer_id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes"`
	TokenCost       int        `json:"token_cost"`
	MaxParticipants int        `json:"max_participants"`
	Status          string     `json:"status"`
	AverageRating   *float64   `json:"average_rating"`
	ChannelName     *string    `json:"channel_name,omitempty"`
	RTCResourceID   *string    `json:"-"`
	RTCSessionID    *string    `json:"-"`
	StreamStartedAt *time.Time `json:"stream_started_at,omitempty"`
	StreamEndedAt   *time.Time `json:"stream_ended_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Booking struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	UserID    int64     `json:"user_id"`
	BookedAt  time.Time `json:"booked_at"`
}

type Participant struct {
	ID              int64      `json:"id"`
	SessionID       int64      `json:"session_id"`
	UserID          int64      `json:"user_id"`
	JoinedAt        time.Time  `json:"joined_at"`
	LeftAt          *time.Time `json:"left_at"`
	DurationSeconds int        `json:"duration_seconds"`
	MessageCount    int        `json:"message_count"`
	ReactionCount   int        `json:"reaction_count"`
}

type Rating struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Feedback  *string   `json:"feedback,omitempty"`
	RatedAt   time.Time `json:"rated_at"`
}

type ChatMessage struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Reaction struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionDetail struct {
	Session
	BookedCount  int           `json:"booked_count"`
	Participants []Participant `json:"participants,omitempty"`
	Ratings      []Rating      `json:"ratings,omitempty"`
}
