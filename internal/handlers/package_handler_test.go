package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/IlkerKadir/fitstream-backend/internal/repository"
	"github.com/IlkerKadir/fitstream-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type stubPackageService struct {
	listResult        []models.Package
	listErr           error
	getResult         *models.Package
	getErr            error
	createResult      *models.Package
	createErr         error
	updateResult      *models.Package
	updateErr         error
	deactivateResult  *models.Package
	deactivateErr     error
	purchaseResult    *models.Transaction
	purchaseErr       error
	lastIncludeAll    bool
	lastPackageID     int64
	lastUserID        int64
	lastPaymentMethod string
	lastCreateInput   repository.CreatePackageInput
}

func (s *stubPackageService) ListPackages(_ context.Context, includeInactive bool) ([]models.Package, error) {
	s.lastIncludeAll = includeInactive
	return s.listResult, s.listErr
}

func (s *stubPackageService) GetPackage(_ context.Context, packageID int64) (*models.Package, error) {
	s.lastPackageID = packageID
	return s.getResult, s.getErr
}

func (s *stubPackageService) CreatePackage(_ context.Context, input repository.CreatePackageInput) (*models.Package, error) {
	s.lastCreateInput = input
	return s.createResult, s.createErr
}

func (s *stubPackageService) UpdatePackage(_ context.Context, packageID int64, _ repository.UpdatePackageInput) (*models.Package, error) {
	s.lastPackageID = packageID
	return s.updateResult, s.updateErr
}

func (s *stubPackageService) DeactivatePackage(_ context.Context, packageID int64) (*models.Package, error) {
	s.lastPackageID = packageID
	return s.deactivateResult, s.deactivateErr
}

func (s *stubPackageService) Purchase(_ context.Context, userID, packageID int64, paymentMethod string) (*models.Transaction, error) {
	s.lastUserID = userID
	s.lastPackageID = packageID
	s.lastPaymentMethod = paymentMethod
	return s.purchaseResult, s.purchaseErr
}

func newPackageTestApp(handler *PackageHandler, role, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("role", role)
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Get("/api/packages", handler.ListPackages)
	app.Get("/api/packages/:id", handler.GetPackage)
	app.Post("/api/packages", handler.CreatePackage)
	app.Post("/api/packages/:id/purchase", handler.Purchase)
	return app
}

func TestListPackagesHidesInactiveForUsers(t *testing.T) {
	service := &stubPackageService{listResult: []models.Package{{ID: 1, Name: "Starter", Tokens: 10}}}
	handler := &PackageHandler{service: service}
	app := newPackageTestApp(handler, "user", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/packages?include_inactive=true", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastIncludeAll {
		t.Fatalf("non-admin must not see inactive packages")
	}
}

func TestListPackagesIncludesInactiveForAdmin(t *testing.T) {
	service := &stubPackageService{}
	handler := &PackageHandler{service: service}
	app := newPackageTestApp(handler, "admin", "1")

	req := httptest.NewRequest(http.MethodGet, "/api/packages?include_inactive=true", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !service.lastIncludeAll {
		t.Fatalf("admin should see inactive packages when requested")
	}
}

func TestGetPackageNotFound(t *testing.T) {
	handler := &PackageHandler{service: &stubPackageService{getErr: pgx.ErrNoRows}}
	app := newPackageTestApp(handler, "user", "42")

	req := httptest.NewRequest(http.MethodGet, "/api/packages/99", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreatePackageForwardsInput(t *testing.T) {
	service := &stubPackageService{
		createResult: &models.Package{ID: 2, Name: "Pro", Tokens: 50, Price: 39.99, Currency: "USD", Active: true},
	}
	handler := &PackageHandler{service: service}
	app := newPackageTestApp(handler, "admin", "1")

	req := httptest.NewRequest(http.MethodPost, "/api/packages", strings.NewReader(`{
		"name": "Pro",
		"tokens": 50,
		"price": 39.99,
		"currency": "USD"
	}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastCreateInput.Tokens != 50 || service.lastCreateInput.Name != "Pro" {
		t.Fatalf("unexpected create input: %+v", service.lastCreateInput)
	}
}

func TestPurchaseReturnsTransaction(t *testing.T) {
	service := &stubPackageService{
		purchaseResult: &models.Transaction{ID: 5, UserID: 42, Tokens: 50, Status: "completed"},
	}
	handler := &PackageHandler{service: service}
	app := newPackageTestApp(handler, "user", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/packages/2/purchase", strings.NewReader(`{"payment_method":"mock"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 || service.lastPackageID != 2 || service.lastPaymentMethod != "mock" {
		t.Fatalf("unexpected purchase call: %d/%d/%q", service.lastUserID, service.lastPackageID, service.lastPaymentMethod)
	}
	var body struct {
		Transaction models.Transaction `json:"transaction"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Transaction.Tokens != 50 {
		t.Fatalf("expected 50 tokens, got %d", body.Transaction.Tokens)
	}
}

func TestPurchaseInactivePackage(t *testing.T) {
	handler := &PackageHandler{service: &stubPackageService{purchaseErr: services.ErrPackageInactive}}
	app := newPackageTestApp(handler, "user", "42")

	req := httptest.NewRequest(http.MethodPost, "/api/packages/2/purchase", strings.NewReader(`{"payment_method":"card"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if msg := decodeError(t, resp); msg != "Package is not available" {
		t.Fatalf("unexpected error message: %q", msg)
	}
}
