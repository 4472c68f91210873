package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IlkerKadir/fitstream-backend/internal/metrics"
	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/IlkerKadir/fitstream-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrSessionLocked          = errors.New("cannot modify a live or completed session")
	ErrSessionInPast          = errors.New("cannot book a session in the past")
	ErrSessionCancelled       = errors.New("session is cancelled")
	ErrSessionNotLive         = errors.New("session is not live")
	ErrAlreadyBooked          = errors.New("session already booked")
	ErrSessionFull            = errors.New("session is full")
	ErrInsufficientTokens     = errors.New("insufficient tokens")
	ErrNotCompleted           = errors.New("can only rate completed sessions")
	ErrNotParticipant         = errors.New("not a participant of this session")
	ErrInvalidReaction        = errors.New("invalid reaction")
)

var reactionKinds = map[string]bool{
	"like": true,
	"love": true,
	"fire": true,
	"clap": true,
	"wow":  true,
}

type SessionService struct {
	db                 *pgxpool.Pool
	sessionRepo        *repository.SessionRepository
	bookingRepo        *repository.BookingRepository
	participantRepo    *repository.ParticipantRepository
	ratingRepo         *repository.RatingRepository
	engagementRepo     *repository.EngagementRepository
	trainerProfileRepo *repository.TrainerProfileRepository
}

func NewSessionService(
	db *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	bookingRepo *repository.BookingRepository,
	participantRepo *repository.ParticipantRepository,
	ratingRepo *repository.RatingRepository,
	engagementRepo *repository.EngagementRepository,
	trainerProfileRepo *repository.TrainerProfileRepository,
) *SessionService {
	return &SessionService{
		db:                 db,
		sessionRepo:        sessionRepo,
		bookingRepo:        bookingRepo,
		participantRepo:    participantRepo,
		ratingRepo:         ratingRepo,
		engagementRepo:     engagementRepo,
		trainerProfileRepo: trainerProfileRepo,
	}
}

type CreateSessionInput struct {
	Title           string
	Description     *string
	ScheduledAt     time.Time
	DurationMinutes int
	TokenCost       int
	MaxParticipants int
}

func (s *SessionService) CreateSession(ctx context.Context, trainerID int64, input CreateSessionInput) (*models.Session, error) {
	if strings.TrimSpace(input.Title) == "" || input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if input.TokenCost < 0 || input.MaxParticipants < 0 {
		return nil, ErrInvalidInput
	}
	if input.ScheduledAt.Before(time.Now().Add(-1 * time.Minute)) {
		return nil, ErrInvalidInput
	}

	return s.sessionRepo.Create(ctx, repository.CreateSessionInput{
		TrainerID:       trainerID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		TokenCost:       input.TokenCost,
		MaxParticipants: input.MaxParticipants,
	})
}

func (s *SessionService) ListSessions(ctx context.Context, filter repository.SessionListFilter) ([]models.Session, error) {
	return s.sessionRepo.List(ctx, filter)
}

func (s *SessionService) GetSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	bookedCount, err := s.bookingRepo.CountBySession(ctx, sessionID)
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

	return &models.SessionDetail{
		Session:      *session,
		BookedCount:  bookedCount,
		Participants: participants,
		Ratings:      ratings,
	}, nil
}

func (s *SessionService) UpdateSession(ctx context.Context, actorID int64, role string, sessionID int64, input repository.UpdateSessionInput) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canManageSession(role, actorID, session) {
		return nil, ErrForbidden
	}
	if session.Status == models.SessionStatusLive || session.Status == models.SessionStatusCompleted {
		return nil, ErrSessionLocked
	}
	if input.DurationMinutes != nil && *input.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}
	if input.TokenCost != nil && *input.TokenCost < 0 {
		return nil, ErrInvalidInput
	}
	if input.MaxParticipants != nil && *input.MaxParticipants < 0 {
		return nil, ErrInvalidInput
	}

	return s.sessionRepo.Update(ctx, sessionID, input)
}

// UpdateStatus handles the generic status endpoint. The only transition it
// owns is scheduled -> cancelled, which also refunds every booked user; live
// and completed transitions belong to the stream orchestration flow.
func (s *SessionService) UpdateStatus(ctx context.Context, actorID int64, role string, sessionID int64, requestedStatus string) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !canManageSession(role, actorID, session) {
		return nil, ErrForbidden
	}
	if session.Status == models.SessionStatusLive || session.Status == models.SessionStatusCompleted {
		return nil, ErrSessionLocked
	}

	nextStatus, err := normalizeRequestedStatus(requestedStatus)
	if err != nil {
		return nil, err
	}
	if nextStatus != models.SessionStatusCancelled {
		return nil, ErrInvalidStateTransition
	}

	return s.cancelSession(ctx, sessionID)
}

func (s *SessionService) DeleteSession(ctx context.Context, actorID int64, role string, sessionID int64) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if !canManageSession(role, actorID, session) {
		return ErrForbidden
	}
	if session.Status == models.SessionStatusLive || session.Status == models.SessionStatusCompleted {
		return ErrSessionLocked
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txBookingRepo := repository.NewBookingRepository(tx)

	locked, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return err
	}
	if locked.Status == models.SessionStatusLive || locked.Status == models.SessionStatusCompleted {
		return ErrSessionLocked
	}

	// A still-booked scheduled session refunds everyone before going away.
	if locked.Status == models.SessionStatusScheduled {
		if _, err := txBookingRepo.CreditBookers(ctx, sessionID, locked.TokenCost); err != nil {
			return err
		}
		if _, err := txBookingRepo.DeleteBySession(ctx, sessionID); err != nil {
			return err
		}
	}
	if err := txSessionRepo.Delete(ctx, sessionID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *SessionService) cancelSession(ctx context.Context, sessionID int64) (*models.Session, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txBookingRepo := repository.NewBookingRepository(tx)

	locked, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if locked.Status != models.SessionStatusScheduled {
		return nil, ErrInvalidStateTransition
	}

	cancelled, err := txSessionRepo.UpdateStatusIfCurrent(ctx, sessionID, models.SessionStatusScheduled, models.SessionStatusCancelled)
	if err != nil {
		return nil, err
	}

	refunded, err := txBookingRepo.CreditBookers(ctx, sessionID, locked.TokenCost)
	if err != nil {
		return nil, err
	}
	if _, err := txBookingRepo.DeleteBySession(ctx, sessionID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.RefundsTotal.Add(float64(refunded))
	return cancelled, nil
}

// BookSession debits the token cost and records the booking in one
// transaction with the session row locked, so concurrent bookings cannot
// overshoot capacity and the balance can never go negative.
func (s *SessionService) BookSession(ctx context.Context, userID, sessionID int64) (*models.Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txSessionRepo := repository.NewSessionRepository(tx)
	txBookingRepo := repository.NewBookingRepository(tx)
	txUserRepo := repository.NewUserRepository(tx)

	session, err := txSessionRepo.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	alreadyBooked, err := txBookingRepo.Exists(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	bookedCount, err := txBookingRepo.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := validateBooking(session, alreadyBooked, bookedCount, time.Now().UTC()); err != nil {
		return nil, err
	}

	if session.TokenCost > 0 {
		if _, err := txUserRepo.DebitTokens(ctx, userID, session.TokenCost); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrInsufficientTokens
			}
			return nil, err
		}
	}

	booking, err := txBookingRepo.Create(ctx, sessionID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyBooked
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.BookingsTotal.Inc()
	return booking, nil
}

// RateSession upserts the caller's rating, refreshes the session average and
// recomputes the trainer aggregate, all in one transaction.
func (s *SessionService) RateSession(ctx context.Context, userID, sessionID int64, rating int, feedback *string) (*models.Rating, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusCompleted {
		return nil, ErrNotCompleted
	}

	participated, err := s.participantRepo.Exists(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !participated {
		return nil, ErrNotParticipant
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txRatingRepo := repository.NewRatingRepository(tx)
	txSessionRepo := repository.NewSessionRepository(tx)
	txTrainerProfileRepo := repository.NewTrainerProfileRepository(tx)

	entry, err := txRatingRepo.Upsert(ctx, sessionID, userID, rating, feedback)
	if err != nil {
		return nil, err
	}
	if _, err := txSessionRepo.RecomputeAverageRating(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := txTrainerProfileRepo.RecomputeRating(ctx, session.TrainerID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *SessionService) PostMessage(ctx context.Context, userID, sessionID int64, content string) (*models.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusLive {
		return nil, ErrSessionNotLive
	}

	isTrainer := session.TrainerID == userID
	if !isTrainer {
		joined, err := s.participantRepo.Exists(ctx, sessionID, userID)
		if err != nil {
			return nil, err
		}
		if !joined {
			return nil, ErrNotParticipant
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txEngagementRepo := repository.NewEngagementRepository(tx)
	txParticipantRepo := repository.NewParticipantRepository(tx)

	message, err := txEngagementRepo.CreateMessage(ctx, sessionID, userID, strings.TrimSpace(content))
	if err != nil {
		return nil, err
	}
	if !isTrainer {
		if err := txParticipantRepo.IncrementMessageCount(ctx, sessionID, userID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return message, nil
}

func (s *SessionService) PostReaction(ctx context.Context, userID, sessionID int64, kind string) (*models.Reaction, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if !reactionKinds[kind] {
		return nil, ErrInvalidReaction
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusLive {
		return nil, ErrSessionNotLive
	}

	joined, err := s.participantRepo.Exists(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, ErrNotParticipant
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txEngagementRepo := repository.NewEngagementRepository(tx)
	txParticipantRepo := repository.NewParticipantRepository(tx)

	reaction, err := txEngagementRepo.CreateReaction(ctx, sessionID, userID, kind)
	if err != nil {
		return nil, err
	}
	if err := txParticipantRepo.IncrementReactionCount(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return reaction, nil
}

func (s *SessionService) ListMessages(ctx context.Context, sessionID int64) ([]models.ChatMessage, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.engagementRepo.ListMessagesBySession(ctx, sessionID)
}

func canManageSession(role string, actorID int64, session *models.Session) bool {
	if role == "admin" {
		return true
	}
	return role == "trainer" && session.TrainerID == actorID
}

func validateBooking(session *models.Session, alreadyBooked bool, bookedCount int, now time.Time) error {
	if session.ScheduledAt.Before(now) {
		return ErrSessionInPast
	}
	if session.Status == models.SessionStatusCancelled {
		return ErrSessionCancelled
	}
	if alreadyBooked {
		return ErrAlreadyBooked
	}
	if session.MaxParticipants > 0 && bookedCount >= session.MaxParticipants {
		return ErrSessionFull
	}
	return nil
}

func normalizeRequestedStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "cancel", "cancelled", "canceled":
		return models.SessionStatusCancelled, nil
	case "scheduled", "live", "complete", "completed":
		return "", ErrInvalidStateTransition
	default:
		return "", ErrInvalidStatus
	}
}
