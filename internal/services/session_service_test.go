package services

import (
	"errors"
	"testing"
	"time"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
)

func TestValidateBooking(t *testing.T) {
	now := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)
	upcoming := now.Add(2 * time.Hour)

	cases := []struct {
		name          string
		session       models.Session
		alreadyBooked bool
		bookedCount   int
		wantErr       error
	}{
		{
			name:    "bookable",
			session: models.Session{ScheduledAt: upcoming, Status: models.SessionStatusScheduled, MaxParticipants: 20},
		},
		{
			name:    "in the past",
			session: models.Session{ScheduledAt: now.Add(-time.Hour), Status: models.SessionStatusScheduled, MaxParticipants: 20},
			wantErr: ErrSessionInPast,
		},
		{
			name:    "cancelled",
			session: models.Session{ScheduledAt: upcoming, Status: models.SessionStatusCancelled, MaxParticipants: 20},
			wantErr: ErrSessionCancelled,
		},
		{
			name:          "already booked",
			session:       models.Session{ScheduledAt: upcoming, Status: models.SessionStatusScheduled, MaxParticipants: 20},
			alreadyBooked: true,
			wantErr:       ErrAlreadyBooked,
		},
		{
			name:        "full",
			session:     models.Session{ScheduledAt: upcoming, Status: models.SessionStatusScheduled, MaxParticipants: 20},
			bookedCount: 20,
			wantErr:     ErrSessionFull,
		},
		{
			name:        "unlimited capacity",
			session:     models.Session{ScheduledAt: upcoming, Status: models.SessionStatusScheduled, MaxParticipants: 0},
			bookedCount: 500,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateBooking(&tc.session, tc.alreadyBooked, tc.bookedCount, now)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNormalizeRequestedStatus(t *testing.T) {
	for _, variant := range []string{"cancel", "cancelled", "canceled", " Cancelled ", "CANCEL"} {
		got, err := normalizeRequestedStatus(variant)
		if err != nil {
			t.Fatalf("normalizeRequestedStatus(%q): %v", variant, err)
		}
		if got != models.SessionStatusCancelled {
			t.Fatalf("normalizeRequestedStatus(%q) = %q", variant, got)
		}
	}

	// Stream lifecycle transitions go through the stream endpoints, not the
	// status update endpoint.
	for _, lifecycle := range []string{"live", "completed", "complete", "scheduled"} {
		if _, err := normalizeRequestedStatus(lifecycle); !errors.Is(err, ErrInvalidStateTransition) {
			t.Fatalf("normalizeRequestedStatus(%q): expected ErrInvalidStateTransition, got %v", lifecycle, err)
		}
	}

	if _, err := normalizeRequestedStatus("paused"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCanManageSession(t *testing.T) {
	session := &models.Session{ID: 12, TrainerID: 7}

	if !canManageSession("admin", 99, session) {
		t.Fatalf("admin should manage any session")
	}
	if !canManageSession("trainer", 7, session) {
		t.Fatalf("owning trainer should manage their session")
	}
	if canManageSession("trainer", 8, session) {
		t.Fatalf("other trainers must not manage the session")
	}
	if canManageSession("user", 7, session) {
		t.Fatalf("users must not manage sessions")
	}
}

func TestReactionKinds(t *testing.T) {
	for _, kind := range []string{"like", "love", "fire", "clap", "wow"} {
		if !reactionKinds[kind] {
			t.Errorf("expected %q to be a valid reaction", kind)
		}
	}
	if reactionKinds["thumbsdown"] {
		t.Errorf("unexpected reaction kind accepted")
	}
}
