package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/IlkerKadir/fitstream-backend/internal/repository"
	"github.com/IlkerKadir/fitstream-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type sessionApplicationService interface {
	CreateSession(ctx context.Context, trainerID int64, input services.CreateSessionInput) (*models.Session, error)
	ListSessions(ctx context.Context, filter repository.SessionListFilter) ([]models.Session, error)
	GetSession(ctx context.Context, sessionID int64) (*models.SessionDetail, error)
	UpdateSession(ctx context.Context, actorID int64, role string, sessionID int64, input repository.UpdateSessionInput) (*models.Session, error)
	UpdateStatus(ctx context.Context, actorID int64, role string, sessionID int64, requestedStatus string) (*models.Session, error)
	DeleteSession(ctx context.Context, actorID int64, role string, sessionID int64) error
	BookSession(ctx context.Context, userID, sessionID int64) (*models.Booking, error)
	RateSession(ctx context.Context, userID, sessionID int64, rating int, feedback *string) (*models.Rating, error)
	PostMessage(ctx context.Context, userID, sessionID int64, content string) (*models.ChatMessage, error)
	PostReaction(ctx context.Context, userID, sessionID int64, kind string) (*models.Reaction, error)
	ListMessages(ctx context.Context, sessionID int64) ([]models.ChatMessage, error)
}

type sessionAnalyticsService interface {
	GetSessionAnalytics(ctx context.Context, actorID int64, role string, sessionID int64) (*models.SessionAnalytics, error)
}

type SessionHandler struct {
	service   sessionApplicationService
	analytics sessionAnalyticsService
}

func NewSessionHandler(service *services.SessionService, analytics *services.AnalyticsService) *SessionHandler {
	return &SessionHandler{service: service, analytics: analytics}
}

type createSessionRequest struct {
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	ScheduledAt     string  `json:"scheduled_at"`
	DurationMinutes int     `json:"duration_minutes"`
	TokenCost       int     `json:"token_cost"`
	MaxParticipants int     `json:"max_participants"`
}

type updateSessionRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	ScheduledAt     *string `json:"scheduled_at"`
	DurationMinutes *int    `json:"duration_minutes"`
	TokenCost       *int    `json:"token_cost"`
	MaxParticipants *int    `json:"max_participants"`
}

type updateSessionStatusRequest struct {
	Status string `json:"status"`
}

type rateSessionRequest struct {
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback"`
}

type chatMessageRequest struct {
	Content string `json:"content"`
}

type reactionRequest struct {
	Kind string `json:"kind"`
}

func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	trainerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	scheduledAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ScheduledAt))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduled_at must be a valid RFC3339 timestamp"})
	}

	session, err := h.service.CreateSession(c.Context(), trainerID, services.CreateSessionInput{
		Title:           req.Title,
		Description:     req.Description,
		ScheduledAt:     scheduledAt,
		DurationMinutes: req.DurationMinutes,
		TokenCost:       req.TokenCost,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	timeframe := strings.TrimSpace(c.Query("timeframe"))
	if timeframe != "" && timeframe != "upcoming" && timeframe != "past" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeframe must be upcoming or past"})
	}

	filter := repository.SessionListFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		Timeframe: timeframe,
	}
	filter.TrainerID = int64(c.QueryInt("trainer_id"))

	sessions, err := h.service.ListSessions(c.Context(), filter)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	sessionID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	session, err := h.service.GetSession(c.Context(), sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) UpdateSession(c *fiber.Ctx) error {
	userID, role, sessionID, err := sessionActor(c)
	if err != nil {
		return err
	}

	var req updateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	input := repository.UpdateSessionInput{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		TokenCost:       req.TokenCost,
		MaxParticipants: req.MaxParticipants,
	}
	if req.ScheduledAt != nil {
		scheduledAt, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.ScheduledAt))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduled_at must be a valid RFC3339 timestamp"})
		}
		input.ScheduledAt = &scheduledAt
	}

	session, err := h.service.UpdateSession(c.Context(), userID, role, sessionID, input)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, role, sessionID, err := sessionActor(c)
	if err != nil {
		return err
	}

	var req updateSessionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	session, err := h.service.UpdateStatus(c.Context(), userID, role, sessionID, req.Status)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"session": session})
}

func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	userID, role, sessionID, err := sessionActor(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteSession(c.Context(), userID, role, sessionID); err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"deleted": true})
}

func (h *SessionHandler) BookSession(c *fiber.Ctx) error {
	userID, _, sessionID, err := sessionActor(c)
	if err != nil {
		return err
	}

	booking, err := h.service.BookSession(c.Context(), userID, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking})
}

func (h *SessionHandler) RateSession(c *fiber.Ctx) error {
	userID, _, sessionID, err := sessionActor(c)
	if err != nil {
		return err
	}

	var req rateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	rating, err := h.service.RateSession(c.Context(), userID, sessionID, req.Rating, req.Feedback)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"rating": rating})
}

func (h *SessionHandler) PostMessage(c *fiber.Ctx) error {
	userID, _, sessionID, err := sessionActor(c)
	if err != nil {
		return err
	}

	var req chatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	message, err := h.service.PostMessage(c.Context(), userID, sessionID, req.Content)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": message})
}

func (h *SessionHandler) PostReaction(c *fiber.Ctx) error {
	userID, _, sessionID, err := sessionActor(c)
	if err != nil {
		return err
	}

	var req reactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	reaction, err := h.service.PostReaction(c.Context(), userID, sessionID, req.Kind)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"reaction": reaction})
}

func (h *SessionHandler) ListMessages(c *fiber.Ctx) error {
	sessionID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	messages, err := h.service.ListMessages(c.Context(), sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"messages": messages})
}

func (h *SessionHandler) GetAnalytics(c *fiber.Ctx) error {
	userID, role, sessionID, err := sessionActor(c)
	if err != nil {
		return err
	}

	analytics, err := h.analytics.GetSessionAnalytics(c.Context(), userID, role, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"analytics": analytics})
}

func sessionActor(c *fiber.Ctx) (int64, string, int64, error) {
	userID, err := actorID(c)
	if err != nil {
		return 0, "", 0, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, ok := actorRole(c)
	if !ok {
		return 0, "", 0, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := paramID(c, "id")
	if err != nil {
		return 0, "", 0, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}
	return userID, role, sessionID, nil
}

func mapSessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidReaction):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSessionInPast):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot book a session in the past"})
	case errors.Is(err, services.ErrSessionCancelled):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Session is cancelled"})
	case errors.Is(err, services.ErrAlreadyBooked):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Session already booked"})
	case errors.Is(err, services.ErrSessionFull):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Session is full"})
	case errors.Is(err, services.ErrInsufficientTokens):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Insufficient tokens"})
	case errors.Is(err, services.ErrNotCompleted):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Can only rate completed sessions"})
	case errors.Is(err, services.ErrSessionNotLive):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Session is not live"})
	case errors.Is(err, services.ErrSessionLocked):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot modify a live or completed session"})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid state transition"})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrNotParticipant):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrUpstream):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Streaming provider unavailable"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process session request"})
	}
}
