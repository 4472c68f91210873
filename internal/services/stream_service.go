package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/IlkerKadir/fitstream-backend/internal/metrics"
	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/IlkerKadir/fitstream-backend/internal/repository"
	"github.com/jackc/pgx/v5"
)

var ErrUpstream = errors.New("rtc provider failure")

const (
	hostCredentialTTL   = 24 * time.Hour
	viewerCredentialTTL = 3 * time.Hour

	// Trainers may fetch pre-start stream info this long before the
	// scheduled start.
	preStartLeadWindow = 15 * time.Minute
)

type StreamService struct {
	sessionRepo     *repository.SessionRepository
	bookingRepo     *repository.BookingRepository
	participantRepo *repository.ParticipantRepository
	rtc             RTCProvider
}

func NewStreamService(
	sessionRepo *repository.SessionRepository,
	bookingRepo *repository.BookingRepository,
	participantRepo *repository.ParticipantRepository,
	rtc RTCProvider,
) *StreamService {
	return &StreamService{
		sessionRepo:     sessionRepo,
		bookingRepo:     bookingRepo,
		participantRepo: participantRepo,
		rtc:             rtc,
	}
}

// ChannelName derives the provider channel deterministically from the session
// id, so every credential for a session addresses the same channel.
func ChannelName(sessionID int64) string {
	return fmt.Sprintf("fitstream_%d", sessionID)
}

// StartStream mints a host credential, records the channel and start time and
// moves the session to live. Only the owning trainer may start, and only from
// the scheduled state.
func (s *StreamService) StartStream(ctx context.Context, trainerID int64, role string, sessionID int64) (*models.StreamInfo, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canManageSession(role, trainerID, session) {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionStatusScheduled {
		return nil, ErrInvalidStateTransition
	}

	channel := ChannelName(sessionID)
	credential, err := s.rtc.MintHostCredential(ctx, channel, session.TrainerID, hostCredentialTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	live, err := s.sessionRepo.MarkLive(ctx, sessionID, channel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	// Recording is best effort; the stream goes live either way.
	resourceID, sid, err := s.rtc.StartRecording(ctx, channel, session.TrainerID)
	if err != nil {
		log.Printf("recording start failed for session %d: %v", sessionID, err)
	} else if resourceID != "" {
		if err := s.sessionRepo.SetRecording(ctx, sessionID, resourceID, sid); err != nil {
			return nil, err
		}
	}

	metrics.StreamsStartedTotal.Inc()
	return streamInfo(live, credential), nil
}

// EndStream stops any active recording, records the end time and moves the
// session from live to completed.
func (s *StreamService) EndStream(ctx context.Context, trainerID int64, role string, sessionID int64) (*models.StreamInfo, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canManageSession(role, trainerID, session) {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionStatusLive {
		return nil, ErrInvalidStateTransition
	}

	if session.RTCResourceID != nil && session.RTCSessionID != nil && session.ChannelName != nil {
		if err := s.rtc.StopRecording(ctx, *session.ChannelName, *session.RTCSessionID, *session.RTCResourceID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	completed, err := s.sessionRepo.MarkCompleted(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	return streamInfo(completed, nil), nil
}

// JoinStream records a join event for a booked user on a live session. The
// owning trainer may join too but is never tracked as a participant.
func (s *StreamService) JoinStream(ctx context.Context, userID int64, role string, sessionID int64) (*models.Participant, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusLive {
		return nil, ErrSessionNotLive
	}

	if session.TrainerID == userID {
		return nil, nil
	}

	booked, err := s.bookingRepo.Exists(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !booked {
		return nil, ErrForbidden
	}

	return s.participantRepo.RecordJoin(ctx, sessionID, userID)
}

func (s *StreamService) LeaveStream(ctx context.Context, userID int64, sessionID int64) (*models.Participant, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}

	participant, err := s.participantRepo.RecordLeave(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotParticipant
		}
		return nil, err
	}
	return participant, nil
}

// GetStreamInfo re-derives a fresh credential on every call: host credentials
// for the owning trainer (24h TTL, available inside the pre-start lead
// window), viewer credentials for booked users on a live session (3h TTL).
func (s *StreamService) GetStreamInfo(ctx context.Context, userID int64, role string, sessionID int64) (*models.StreamInfo, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionStatusCancelled || session.Status == models.SessionStatusCompleted {
		return nil, ErrInvalidStateTransition
	}

	channel := ChannelName(sessionID)

	if canManageSession(role, userID, session) {
		if session.Status != models.SessionStatusLive && time.Now().Before(session.ScheduledAt.Add(-preStartLeadWindow)) {
			return nil, ErrInvalidStateTransition
		}
		credential, err := s.rtc.MintHostCredential(ctx, channel, session.TrainerID, hostCredentialTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return streamInfo(session, credential), nil
	}

	if session.Status != models.SessionStatusLive {
		return nil, ErrSessionNotLive
	}
	booked, err := s.bookingRepo.Exists(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !booked {
		return nil, ErrForbidden
	}

	credential, err := s.rtc.MintViewerCredential(ctx, channel, userID, viewerCredentialTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return streamInfo(session, credential), nil
}

// ListParticipants asks the provider for the current channel members and
// falls back to the stored roster when the provider call fails.
func (s *StreamService) ListParticipants(ctx context.Context, sessionID int64) ([]models.Participant, []string, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	roster, err := s.participantRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	if session.Status == models.SessionStatusLive {
		members, err := s.rtc.ListChannelMembers(ctx, ChannelName(sessionID))
		if err != nil {
			log.Printf("rtc member listing failed for session %d, serving stored roster: %v", sessionID, err)
			return roster, nil, nil
		}
		return roster, members, nil
	}

	return roster, nil, nil
}

func streamInfo(session *models.Session, credential *models.StreamCredential) *models.StreamInfo {
	info := &models.StreamInfo{
		SessionID:   session.ID,
		Status:      session.Status,
		ChannelName: ChannelName(session.ID),
		StartedAt:   session.StreamStartedAt,
		EndedAt:     session.StreamEndedAt,
		Credential:  credential,
	}
	return info
}
