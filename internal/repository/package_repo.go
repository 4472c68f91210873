package repository

import (
	"context"
	"time"

	"github.com/IlkerKadir/fitstream-backend/internal/models"
	"github.com/jackc/pgx/v5"
)

type CreatePackageInput struct {
	Name          string
	Tokens        int
	Price         float64
	Currency      string
	PromoStartsAt *time.Time
	PromoEndsAt   *time.Time
}

type UpdatePackageInput struct {
	Name          *string
	Tokens        *int
	Price         *float64
	Currency      *string
	PromoStartsAt *time.Time
	PromoEndsAt   *time.Time
}

type PackageRepository struct {
	db DBTX
}

func NewPackageRepository(db DBTX) *PackageRepository {
	return &PackageRepository{db: db}
}

func scanPackage(row pgx.Row) (*models.Package, error) {
	var pkg models.Package
	err := row.Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.Tokens,
		&pkg.Price,
		&pkg.Currency,
		&pkg.PromoStartsAt,
		&pkg.PromoEndsAt,
		&pkg.Active,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *PackageRepository) Create(ctx context.Context, input CreatePackageInput) (*models.Package, error) {
	query := `
		INSERT INTO packages (name, tokens, price, currency, promo_starts_at, promo_ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, tokens, price, currency, promo_starts_at, promo_ends_at, active, created_at, updated_at
	`
	return scanPackage(r.db.QueryRow(
		ctx,
		query,
		input.Name,
		input.Tokens,
		input.Price,
		input.Currency,
		input.PromoStartsAt,
		input.PromoEndsAt,
	))
}

func (r *PackageRepository) GetByID(ctx context.Context, packageID int64) (*models.Package, error) {
	query := `
		SELECT id, name, tokens, price, currency, promo_starts_at, promo_ends_at, active, created_at, updated_at
		FROM packages
		WHERE id = $1
	`
	return scanPackage(r.db.QueryRow(ctx, query, packageID))
}

func (r *PackageRepository) List(ctx context.Context, activeOnly bool) ([]models.Package, error) {
	query := `
		SELECT id, name, tokens, price, currency, promo_starts_at, promo_ends_at, active, created_at, updated_at
		FROM packages
	`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	packages := make([]models.Package, 0)
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, *pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return packages, nil
}

func (r *PackageRepository) Update(ctx context.Context, packageID int64, input UpdatePackageInput) (*models.Package, error) {
	query := `
		UPDATE packages
		SET name = COALESCE($2, name),
			tokens = COALESCE($3, tokens),
			price = COALESCE($4, price),
			currency = COALESCE($5, currency),
			promo_starts_at = COALESCE($6, promo_starts_at),
			promo_ends_at = COALESCE($7, promo_ends_at),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, tokens, price, currency, promo_starts_at, promo_ends_at, active, created_at, updated_at
	`
	return scanPackage(r.db.QueryRow(
		ctx,
		query,
		packageID,
		input.Name,
		input.Tokens,
		input.Price,
		input.Currency,
		input.PromoStartsAt,
		input.PromoEndsAt,
	))
}

// Deactivate soft-deletes the package. Packages are never hard-deleted so
// existing transactions keep a valid reference.
func (r *PackageRepository) Deactivate(ctx context.Context, packageID int64) (*models.Package, error) {
	query := `
		UPDATE packages
		SET active = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, tokens, price, currency, promo_starts_at, promo_ends_at, active, created_at, updated_at
	`
	return scanPackage(r.db.QueryRow(ctx, query, packageID))
}
