package handlers

import (
	"errors"

	"github.com/IlkerKadir/fitstream-backend/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type UserHandler struct {
	userRepo           *repository.UserRepository
	trainerProfileRepo *repository.TrainerProfileRepository
	bookingRepo        *repository.BookingRepository
	transactionRepo    *repository.TransactionRepository
}

func NewUserHandler(
	userRepo *repository.UserRepository,
	trainerProfileRepo *repository.TrainerProfileRepository,
	bookingRepo *repository.BookingRepository,
	transactionRepo *repository.TransactionRepository,
) *UserHandler {
	return &UserHandler{
		userRepo:           userRepo,
		trainerProfileRepo: trainerProfileRepo,
		bookingRepo:        bookingRepo,
		transactionRepo:    transactionRepo,
	}
}

type updatePreferencesRequest struct {
	Preferences []string `json:"preferences"`
}

type updateTokensRequest struct {
	Tokens int `json:"tokens"`
}

type updateTrainerProfileRequest struct {
	Bio        *string  `json:"bio"`
	HourlyRate *float64 `json:"hourly_rate"`
}

func (h *UserHandler) ListMyBookings(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	bookings, err := h.bookingRepo.ListByUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}

	return c.JSON(fiber.Map{"bookings": bookings})
}

func (h *UserHandler) ListMyTransactions(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	transactions, err := h.transactionRepo.ListByUser(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch transactions"})
	}

	return c.JSON(fiber.Map{"transactions": transactions})
}

func (h *UserHandler) UpdatePreferences(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updatePreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := h.userRepo.UpdatePreferences(c.Context(), userID, req.Preferences); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update preferences"})
	}

	return c.JSON(fiber.Map{"preferences": req.Preferences})
}

// UpdateTokens is the admin balance adjustment; the repository floors the
// result at zero so the ledger invariant holds.
func (h *UserHandler) UpdateTokens(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req updateTokensRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.userRepo.SetTokens(c.Context(), userID, req.Tokens)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update tokens"})
	}

	return c.JSON(fiber.Map{"user": user})
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	requestedID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	callerID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	role, _ := actorRole(c)
	if callerID != requestedID && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	user, err := h.userRepo.GetByID(c.Context(), requestedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
	}

	return c.JSON(fiber.Map{"user": user})
}

func (h *UserHandler) UpdateTrainerProfile(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateTrainerProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.HourlyRate != nil && *req.HourlyRate < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hourly_rate must not be negative"})
	}

	profile, err := h.trainerProfileRepo.Update(c.Context(), userID, req.Bio, req.HourlyRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"trainer_profile": profile})
}
