package models

type DropoffPoint struct {
	Minute  int     `json:"minute"`
	Leavers int     `json:"leavers"`
	Percent float64 `json:"percent"`
}

type SessionAnalytics struct {
	SessionID             int64          `json:"session_id"`
	RegisteredCount       int            `json:"registered_count"`
	AttendedCount         int            `json:"attended_count"`
	CompletedCount        int            `json:"completed_count"`
	AverageRating         *float64       `json:"average_rating"`
	RatingHistogram       map[int]int    `json:"rating_histogram"`
	MessageCount          int            `json:"message_count"`
	QuestionCount         int            `json:"question_count"`
	ReactionCount         int            `json:"reaction_count"`
	DropoffPoints         []DropoffPoint `json:"dropoff_points"`
	AverageViewMinutes    float64        `json:"average_view_minutes"`
	PeakAttendanceMinute  int            `json:"peak_attendance_minute"`
}
