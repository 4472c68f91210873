package handlers

import (
	"context"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/IlkerKadir/fitstream-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type streamApplicationService interface {
	StartStream(ctx context.Context, trainerID int64, role string, sessionID int64) (*models.StreamInfo, error)
	EndStream(ctx context.Context, trainerID int64, role string, sessionID int64) (*models.StreamInfo, error)
	JoinStream(ctx context.Context, userID int64, role string, sessionID int64) (*models.Participant, error)
	LeaveStream(ctx context.Context, userID int64, sessionID int64) (*models.Participant, error)
	GetStreamInfo(ctx context.Context, userID int64, role string, sessionID int64) (*models.StreamInfo, error)
	ListParticipants(ctx context.Context, sessionID int64) ([]models.Participant, []string, error)
}

type StreamHandler struct {
	service streamApplicationService
}

func NewStreamHandler(service *services.StreamService) *StreamHandler {
	return &StreamHandler{service: service}
}

func (h *StreamHandler) Start(c *fiber.Ctx) error {
	userID, role, sessionID, err := streamActor(c)
	if err != nil {
		return err
	}

	info, err := h.service.StartStream(c.Context(), userID, role, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"stream": info})
}

func (h *StreamHandler) End(c *fiber.Ctx) error {
	userID, role, sessionID, err := streamActor(c)
	if err != nil {
		return err
	}

	info, err := h.service.EndStream(c.Context(), userID, role, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"stream": info})
}

func (h *StreamHandler) Join(c *fiber.Ctx) error {
	userID, role, sessionID, err := streamActor(c)
	if err != nil {
		return err
	}

	participant, err := h.service.JoinStream(c.Context(), userID, role, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	response := fiber.Map{"joined": true}
	if participant != nil {
		response["participant"] = participant
	}
	return c.JSON(response)
}

func (h *StreamHandler) Leave(c *fiber.Ctx) error {
	userID, _, sessionID, err := streamActor(c)
	if err != nil {
		return err
	}

	participant, err := h.service.LeaveStream(c.Context(), userID, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"participant": participant})
}

func (h *StreamHandler) GetInfo(c *fiber.Ctx) error {
	userID, role, sessionID, err := streamActor(c)
	if err != nil {
		return err
	}

	info, err := h.service.GetStreamInfo(c.Context(), userID, role, sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	return c.JSON(fiber.Map{"stream": info})
}

func (h *StreamHandler) ListParticipants(c *fiber.Ctx) error {
	_, _, sessionID, err := streamActor(c)
	if err != nil {
		return err
	}

	roster, channelMembers, err := h.service.ListParticipants(c.Context(), sessionID)
	if err != nil {
		return mapSessionError(c, err)
	}

	response := fiber.Map{"participants": roster}
	if channelMembers != nil {
		response["channel_members"] = channelMembers
	}
	return c.JSON(response)
}

func streamActor(c *fiber.Ctx) (int64, string, int64, error) {
	userID, err := actorID(c)
	if err != nil {
		return 0, "", 0, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, ok := actorRole(c)
	if !ok {
		return 0, "", 0, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	sessionID, err := paramID(c, "sessionId")
	if err != nil {
		return 0, "", 0, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}
	return userID, role, sessionID, nil
}
