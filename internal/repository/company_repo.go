package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/khanhvu/jobradar/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyRepository handles company data operations.
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CompanyRepository: repository instance bound to db.
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// FindOrCreateByName resolves a company by its normalized name, creating the
// row on first sight. Lookup is case- and whitespace-insensitive, so "ACME
// Corp" and "acme  corp" resolve to the same company.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - name: raw company name as scraped.
// Returns:
//   - *domain.Company: existing or newly created company.
//   - error: non-nil if lookup or creation fails.
func (r *CompanyRepository) FindOrCreateByName(ctx context.Context, name string) (*domain.Company, error) {
	normalized := domain.NormalizeCompanyName(name)

	var company domain.Company
	err := r.db.WithContext(ctx).First(&company, "normalized_name = ?", normalized).Error
	if err == nil {
		return &company, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	company = domain.Company{
		ID:             uuid.New().String(),
		Name:           name,
		NormalizedName: normalized,
	}
	// DoNothing on conflict: a concurrent worker may have created the row
	// between the lookup and this insert.
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "normalized_name"}},
		DoNothing: true,
	}).Create(&company).Error; err != nil {
		return nil, err
	}

	// Re-read to get the winning row regardless of which worker inserted it.
	if err := r.db.WithContext(ctx).First(&company, "normalized_name = ?", normalized).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// GetByID retrieves a company by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: company ID.
// Returns:
//   - *domain.Company: company record if found.
//   - error: non-nil if lookup fails.
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	var company domain.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// List retrieves companies ordered by name with pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Company: company records.
//   - error: non-nil if the query fails.
func (r *CompanyRepository) List(ctx context.Context, limit, offset int) ([]domain.Company, error) {
	if limit <= 0 {
		limit = 50
	}
	var companies []domain.Company
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}
