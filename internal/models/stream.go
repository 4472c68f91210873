package models

import "time"

type StreamCredential struct {
	Token       string    `json:"token"`
	ChannelName string    `json:"channel_name"`
	UID         int64     `json:"uid"`
	Role        string    `json:"role"`
	ExpiresAt   time.Time `json:"expires_at"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

type StreamInfo struct {
	SessionID   int64             `json:"session_id"`
	Status      string            `json:"status"`
	ChannelName string            `json:"channel_name"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	EndedAt     *time.Time        `json:"ended_at,omitempty"`
	Credential  *StreamCredential `json:"credential,omitempty"`
}
