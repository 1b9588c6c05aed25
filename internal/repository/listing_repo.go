package repository

import (
	"context"
	"errors"
	"time"

	"github.com/khanhvu/jobradar/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingFilter narrows List queries. Zero values mean "no constraint".
type ListingFilter struct {
	Source          string
	CompanyID       string
	Location        string
	Keyword         string // matched against title and description
	JobType         domain.JobType
	ExperienceLevel domain.ExperienceLevel
	RelevantOnly    bool
	ActiveOnly      bool
	PostedAfter     *time.Time
	Limit           int
	Offset          int
}

// ListingStats summarizes the catalog for the stats endpoint.
type ListingStats struct {
	Total      int64            `json:"total"`
	Active     int64            `json:"active"`
	Relevant   int64            `json:"relevant"`
	BySource   map[string]int64 `json:"by_source"`
	ByLevel    map[string]int64 `json:"by_level"`
	LastSeenAt *time.Time       `json:"last_seen_at,omitempty"`
}

// ListingRepository handles listing data operations.
type ListingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new ListingRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ListingRepository: repository instance bound to db.
func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// FindByIdentity retrieves a listing by its identity hash.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - identityHash: dedup key computed from the listing's stable fields.
// Returns:
//   - *domain.Listing: the listing, or nil when no row matches.
//   - error: non-nil only for real query failures; not-found is (nil, nil).
func (r *ListingRepository) FindByIdentity(ctx context.Context, identityHash string) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.db.WithContext(ctx).First(&listing, "identity_hash = ?", identityHash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// Upsert creates or updates a listing keyed by its identity hash. Concurrent
// workers racing on the same identity converge on a single row.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - listing: listing record to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *ListingRepository) Upsert(ctx context.Context, listing *domain.Listing) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity_hash"}},
		UpdateAll: true,
	}).Create(listing).Error
}

// GetByID retrieves a listing by its ID, preloading the company.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: listing ID.
// Returns:
//   - *domain.Listing: listing record if found.
//   - error: non-nil if lookup fails.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var listing domain.Listing
	if err := r.db.WithContext(ctx).Preload("Company").First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// List retrieves listings matching the filter with pagination, newest first
// by posted date with nulls last.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - filter: query constraints and pagination.
// Returns:
//   - []domain.Listing: matching listing records.
//   - int64: total number of matches ignoring pagination.
//   - error: non-nil if the query fails.
func (r *ListingRepository) List(ctx context.Context, filter ListingFilter) ([]domain.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Listing{})

	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.CompanyID != "" {
		query = query.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Location != "" {
		query = query.Where("location LIKE ?", "%"+filter.Location+"%")
	}
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.JobType != "" {
		query = query.Where("job_type = ?", filter.JobType)
	}
	if filter.ExperienceLevel != "" {
		query = query.Where("experience_level = ?", filter.ExperienceLevel)
	}
	if filter.RelevantOnly {
		query = query.Where("is_relevant = ?", true)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.PostedAfter != nil {
		query = query.Where("posted_date >= ?", *filter.PostedAfter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var listings []domain.Listing
	if err := query.
		Preload("Company").
		Order("posted_date DESC NULLS LAST, last_seen_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// MarkInactiveNotSeenSince deactivates listings from a source that have not
// been observed since the cutoff. Runs only after the source succeeded, so a
// blocked or failing board never deactivates its own listings.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - source: source name whose listings to sweep.
//   - cutoff: listings last seen before this instant go inactive.
// Returns:
//   - int64: number of listings deactivated.
//   - error: non-nil if the update fails.
func (r *ListingRepository) MarkInactiveNotSeenSince(ctx context.Context, source string, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("source = ? AND is_active = ? AND last_seen_at < ?", source, true, cutoff).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// Stats aggregates catalog counts for the stats endpoint.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *ListingStats: aggregate counts.
//   - error: non-nil if any query fails.
func (r *ListingRepository) Stats(ctx context.Context) (*ListingStats, error) {
	stats := &ListingStats{
		BySource: make(map[string]int64),
		ByLevel:  make(map[string]int64),
	}

	model := func() *gorm.DB { return r.db.WithContext(ctx).Model(&domain.Listing{}) }

	if err := model().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := model().Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	if err := model().Where("is_relevant = ?", true).Count(&stats.Relevant).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}
	var bySource []bucket
	if err := model().Select("source AS key, COUNT(*) AS count").Group("source").Scan(&bySource).Error; err != nil {
		return nil, err
	}
	for _, b := range bySource {
		stats.BySource[b.Key] = b.Count
	}

	var byLevel []bucket
	if err := model().Select("experience_level AS key, COUNT(*) AS count").Group("experience_level").Scan(&byLevel).Error; err != nil {
		return nil, err
	}
	for _, b := range byLevel {
		stats.ByLevel[b.Key] = b.Count
	}

	var last domain.Listing
	err := model().Order("last_seen_at DESC").First(&last).Error
	if err == nil {
		stats.LastSeenAt = &last.LastSeenAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return stats, nil
}
