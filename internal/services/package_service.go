package services

import (
	"context"
	"errors"
	"strings"

	"github.com/IlkerKadir/fitstream-backend/internal/metrics"
	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/IlkerKadir/fitstream-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPackageInactive = errors.New("package is not available")

var paymentMethods = map[string]bool{
	"card":   true,
	"paypal": true,
	"mock":   true,
}

type PackageService struct {
	db              *pgxpool.Pool
	packageRepo     *repository.PackageRepository
	transactionRepo *repository.TransactionRepository
}

func NewPackageService(
	db *pgxpool.Pool,
	packageRepo *repository.PackageRepository,
	transactionRepo *repository.TransactionRepository,
) *PackageService {
	return &PackageService{
		db:              db,
		packageRepo:     packageRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *PackageService) ListPackages(ctx context.Context, includeInactive bool) ([]models.Package, error) {
	return s.packageRepo.List(ctx, !includeInactive)
}

func (s *PackageService) GetPackage(ctx context.Context, packageID int64) (*models.Package, error) {
	return s.packageRepo.GetByID(ctx, packageID)
}

func (s *PackageService) CreatePackage(ctx context.Context, input repository.CreatePackageInput) (*models.Package, error) {
	if strings.TrimSpace(input.Name) == "" || input.Tokens <= 0 || input.Price < 0 {
		return nil, ErrInvalidInput
	}
	if input.Currency == "" {
		input.Currency = "USD"
	}
	return s.packageRepo.Create(ctx, input)
}

func (s *PackageService) UpdatePackage(ctx context.Context, packageID int64, input repository.UpdatePackageInput) (*models.Package, error) {
	if input.Tokens != nil && *input.Tokens <= 0 {
		return nil, ErrInvalidInput
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, ErrInvalidInput
	}
	return s.packageRepo.Update(ctx, packageID, input)
}

// DeactivatePackage soft-deletes; the row stays so transactions keep a valid
// package reference.
func (s *PackageService) DeactivatePackage(ctx context.Context, packageID int64) (*models.Package, error) {
	return s.packageRepo.Deactivate(ctx, packageID)
}

// Purchase creates a completed transaction and credits the tokens in one
// transaction. There is no real payment gateway; the purchase is finalized
// immediately.
func (s *PackageService) Purchase(ctx context.Context, userID, packageID int64, paymentMethod string) (*models.Transaction, error) {
	paymentMethod = strings.ToLower(strings.TrimSpace(paymentMethod))
	if paymentMethod == "" {
		paymentMethod = "mock"
	}
	if !paymentMethods[paymentMethod] {
		return nil, ErrInvalidInput
	}

	pkg, err := s.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if !pkg.Active {
		return nil, ErrPackageInactive
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txTransactionRepo := repository.NewTransactionRepository(tx)
	txUserRepo := repository.NewUserRepository(tx)

	txn, err := txTransactionRepo.Create(ctx, repository.CreateTransactionInput{
		UserID:        userID,
		PackageID:     pkg.ID,
		Tokens:        pkg.Tokens,
		Amount:        pkg.Price,
		Currency:      pkg.Currency,
		PaymentMethod: paymentMethod,
		Status:        models.TransactionStatusCompleted,
		Reference:     uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	if _, err := txUserRepo.CreditTokens(ctx, userID, pkg.Tokens); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.PurchasesTotal.Inc()
	return txn, nil
}
