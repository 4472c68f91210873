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

type packageApplicationService interface {
	ListPackages(ctx context.Context, includeInactive bool) ([]models.Package, error)
	GetPackage(ctx context.Context, packageID int64) (*models.Package, error)
	CreatePackage(ctx context.Context, input repository.CreatePackageInput) (*models.Package, error)
	UpdatePackage(ctx context.Context, packageID int64, input repository.UpdatePackageInput) (*models.Package, error)
	DeactivatePackage(ctx context.Context, packageID int64) (*models.Package, error)
	Purchase(ctx context.Context, userID, packageID int64, paymentMethod string) (*models.Transaction, error)
}

type PackageHandler struct {
	service packageApplicationService
}

func NewPackageHandler(service *services.PackageService) *PackageHandler {
	return &PackageHandler{service: service}
}

type createPackageRequest struct {
	Name          string  `json:"name"`
	Tokens        int     `json:"tokens"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	PromoStartsAt *string `json:"promo_starts_at"`
	PromoEndsAt   *string `json:"promo_ends_at"`
}

type updatePackageRequest struct {
	Name          *string  `json:"name"`
	Tokens        *int     `json:"tokens"`
	Price         *float64 `json:"price"`
	Currency      *string  `json:"currency"`
	PromoStartsAt *string  `json:"promo_starts_at"`
	PromoEndsAt   *string  `json:"promo_ends_at"`
}

type purchaseRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *PackageHandler) ListPackages(c *fiber.Ctx) error {
	role, _ := actorRole(c)
	includeInactive := role == "admin" && c.QueryBool("include_inactive")

	packages, err := h.service.ListPackages(c.Context(), includeInactive)
	if err != nil {
		return mapPackageError(c, err)
	}

	return c.JSON(fiber.Map{"packages": packages})
}

func (h *PackageHandler) GetPackage(c *fiber.Ctx) error {
	packageID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package id"})
	}

	pkg, err := h.service.GetPackage(c.Context(), packageID)
	if err != nil {
		return mapPackageError(c, err)
	}

	return c.JSON(fiber.Map{"package": pkg})
}

func (h *PackageHandler) CreatePackage(c *fiber.Ctx) error {
	var req createPackageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	promoStartsAt, err := parseOptionalTime(req.PromoStartsAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "promo_starts_at must be a valid RFC3339 timestamp"})
	}
	promoEndsAt, err := parseOptionalTime(req.PromoEndsAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "promo_ends_at must be a valid RFC3339 timestamp"})
	}

	pkg, err := h.service.CreatePackage(c.Context(), repository.CreatePackageInput{
		Name:          req.Name,
		Tokens:        req.Tokens,
		Price:         req.Price,
		Currency:      req.Currency,
		PromoStartsAt: promoStartsAt,
		PromoEndsAt:   promoEndsAt,
	})
	if err != nil {
		return mapPackageError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"package": pkg})
}

func (h *PackageHandler) UpdatePackage(c *fiber.Ctx) error {
	packageID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package id"})
	}

	var req updatePackageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	promoStartsAt, err := parseOptionalTime(req.PromoStartsAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "promo_starts_at must be a valid RFC3339 timestamp"})
	}
	promoEndsAt, err := parseOptionalTime(req.PromoEndsAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "promo_ends_at must be a valid RFC3339 timestamp"})
	}

	pkg, err := h.service.UpdatePackage(c.Context(), packageID, repository.UpdatePackageInput{
		Name:          req.Name,
		Tokens:        req.Tokens,
		Price:         req.Price,
		Currency:      req.Currency,
		PromoStartsAt: promoStartsAt,
		PromoEndsAt:   promoEndsAt,
	})
	if err != nil {
		return mapPackageError(c, err)
	}

	return c.JSON(fiber.Map{"package": pkg})
}

func (h *PackageHandler) DeactivatePackage(c *fiber.Ctx) error {
	packageID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package id"})
	}

	pkg, err := h.service.DeactivatePackage(c.Context(), packageID)
	if err != nil {
		return mapPackageError(c, err)
	}

	return c.JSON(fiber.Map{"package": pkg})
}

func (h *PackageHandler) Purchase(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	packageID, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid package id"})
	}

	var req purchaseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
	}

	txn, err := h.service.Purchase(c.Context(), userID, packageID, req.PaymentMethod)
	if err != nil {
		return mapPackageError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"transaction": txn})
}

func parseOptionalTime(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*value))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func mapPackageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPackageInactive):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Package is not available"})
	case errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Package not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process package request"})
	}
}
