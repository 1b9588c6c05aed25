package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JobType represents the employment type of a listing.
// Values include JobTypeFullTime, JobTypePartTime, JobTypeContract,
// JobTypeInternship, and JobTypeUnknown.
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeUnknown    JobType = "unknown"
)

// ExperienceLevel represents the seniority bucket derived from listing text.
type ExperienceLevel string

const (
	ExperienceEntry   ExperienceLevel = "entry"
	ExperienceJunior  ExperienceLevel = "junior"
	ExperienceMid     ExperienceLevel = "mid"
	ExperienceSenior  ExperienceLevel = "senior"
	ExperienceUnknown ExperienceLevel = "unknown"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Listing represents a normalized job listing in the catalog.
// IdentityHash is the dedup key: stable across repeated scrapes of the same
// posting even when whitespace or casing in the raw text changes.
type Listing struct {
	ID              string          `gorm:"type:text;primaryKey" json:"id"`
	IdentityHash    string          `gorm:"type:text;not null;uniqueIndex:idx_listings_identity" json:"-"`
	Source          string          `gorm:"type:text;not null;index:idx_listings_source_ext,unique" json:"source"`
	ExternalID      string          `gorm:"type:text;index:idx_listings_source_ext,unique" json:"external_id,omitempty"`
	Title           string          `gorm:"type:text;not null;index" json:"title"`
	CompanyID       string          `gorm:"type:text;index" json:"company_id,omitempty"`
	Company         *Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Description     string          `gorm:"type:text" json:"description"`
	Location        string          `gorm:"type:text;index" json:"location"`
	URL             string          `gorm:"type:text;not null;uniqueIndex:idx_listings_url" json:"url"`
	JobType         JobType         `gorm:"type:text;default:unknown" json:"job_type"`
	ExperienceLevel ExperienceLevel `gorm:"type:text;index;default:unknown" json:"experience_level"`
	SalaryMin       *float64        `json:"salary_min,omitempty"`
	SalaryMax       *float64        `json:"salary_max,omitempty"`
	SalaryCurrency  string          `gorm:"type:text" json:"salary_currency,omitempty"`
	SalaryUncertain bool            `json:"salary_uncertain,omitempty"`
	PostedDate      *time.Time      `gorm:"index" json:"posted_date,omitempty"`
	PostedInferred  bool            `json:"posted_inferred,omitempty"`
	IsRelevant      bool            `gorm:"index" json:"is_relevant"`
	IsActive        bool            `gorm:"index;default:true" json:"is_active"`
	FirstSeenAt     time.Time       `json:"first_seen_at"`
	LastSeenAt      time.Time       `gorm:"index" json:"last_seen_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName returns the database table name for Listing.
func (Listing) TableName() string {
	return "listings"
}

// ContentEquals reports whether the mutable content of two listings matches.
// A mismatch on any of these fields turns an upsert into an update rather
// than a no-op; last_seen_at and bookkeeping timestamps are ignored.
func (l *Listing) ContentEquals(other *Listing) bool {
	return l.Title == other.Title &&
		l.Description == other.Description &&
		floatPtrEqual(l.SalaryMin, other.SalaryMin) &&
		floatPtrEqual(l.SalaryMax, other.SalaryMax) &&
		l.IsActive == other.IsActive &&
		timePtrEqual(l.PostedDate, other.PostedDate)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
