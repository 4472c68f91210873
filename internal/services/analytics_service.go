package services

import (
	"context"
	"math"
	"strings"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/IlkerKadir/fitstream-backend/internal/repository"
)

const (
	// A participant counts as having completed the session once their
	// tracked duration reaches this share of the scheduled duration.
	completionThreshold = 0.8

	// A minute becomes a dropoff point when at least this share of
	// attendees' leave events land in it.
	dropoffThreshold = 0.05
)

type AnalyticsService struct {
	sessionRepo     *repository.SessionRepository
	bookingRepo     *repository.BookingRepository
	participantRepo *repository.ParticipantRepository
	ratingRepo      *repository.RatingRepository
	engagementRepo  *repository.EngagementRepository
}

func NewAnalyticsService(
	sessionRepo *repository.SessionRepository,
	bookingRepo *repository.BookingRepository,
	participantRepo *repository.ParticipantRepository,
	ratingRepo *repository.RatingRepository,
	engagementRepo *repository.EngagementRepository,
) *AnalyticsService {
	return &AnalyticsService{
		sessionRepo:     sessionRepo,
		bookingRepo:     bookingRepo,
		participantRepo: participantRepo,
		ratingRepo:      ratingRepo,
		engagementRepo:  engagementRepo,
	}
}

func (s *AnalyticsService) GetSessionAnalytics(ctx context.Context, actorID int64, role string, sessionID int64) (*models.SessionAnalytics, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canManageSession(role, actorID, session) {
		return nil, ErrForbidden
	}

	registered, err := s.bookingRepo.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratingRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	messages, err := s.engagementRepo.ListMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	reactions, err := s.engagementRepo.ListReactionsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return aggregateSessionAnalytics(session, registered, participants, ratings, messages, reactions), nil
}

// aggregateSessionAnalytics is pure arithmetic over already-loaded records.
// The trainer never appears in participants, so no exclusion is needed here.
func aggregateSessionAnalytics(
	session *models.Session,
	registered int,
	participants []models.Participant,
	ratings []models.Rating,
	messages []models.ChatMessage,
	reactions []models.Reaction,
) *models.SessionAnalytics {
	attended := len(participants)
	scheduledSeconds := session.DurationMinutes * 60

	completed := 0
	totalSeconds := 0
	for _, p := range participants {
		totalSeconds += p.DurationSeconds
		if scheduledSeconds > 0 && float64(p.DurationSeconds) >= completionThreshold*float64(scheduledSeconds) {
			completed++
		}
	}

	histogram := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range ratings {
		if r.Rating >= 1 && r.Rating <= 5 {
			histogram[r.Rating]++
		}
	}

	questions := 0
	for _, m := range messages {
		if strings.Contains(m.Content, "?") {
			questions++
		}
	}

	averageViewMinutes := 0.0
	if attended > 0 {
		averageViewMinutes = roundOneDecimal(float64(totalSeconds) / float64(attended) / 60)
	}

	return &models.SessionAnalytics{
		SessionID:            session.ID,
		RegisteredCount:      registered,
		AttendedCount:        attended,
		CompletedCount:       completed,
		AverageRating:        session.AverageRating,
		RatingHistogram:      histogram,
		MessageCount:         len(messages),
		QuestionCount:        questions,
		ReactionCount:        len(reactions),
		DropoffPoints:        dropoffPoints(participants),
		AverageViewMinutes:   averageViewMinutes,
		PeakAttendanceMinute: session.DurationMinutes / 3,
	}
}

// dropoffPoints buckets leave events by the minute of each participant's
// accumulated duration. That is an approximation: a rejoining viewer's bucket
// reflects total watch time, not the wall-clock minute they left at.
func dropoffPoints(participants []models.Participant) []models.DropoffPoint {
	attended := len(participants)
	if attended == 0 {
		return []models.DropoffPoint{}
	}

	leaversByMinute := map[int]int{}
	for _, p := range participants {
		if p.LeftAt == nil {
			continue
		}
		leaversByMinute[p.DurationSeconds/60]++
	}

	points := make([]models.DropoffPoint, 0)
	for minute := 0; minute <= maxMinute(leaversByMinute); minute++ {
		leavers := leaversByMinute[minute]
		share := float64(leavers) / float64(attended)
		if leavers > 0 && share >= dropoffThreshold {
			points = append(points, models.DropoffPoint{
				Minute:  minute,
				Leavers: leavers,
				Percent: roundOneDecimal(share * 100),
			})
		}
	}
	return points
}

func maxMinute(buckets map[int]int) int {
	max := -1
	for minute := range buckets {
		if minute > max {
			max = minute
		}
	}
	return max
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
