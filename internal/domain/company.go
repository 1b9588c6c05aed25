package domain

import (
	"strings"
	"time"
)

// Company represents an employer referenced by one or more listings.
// Identity is the normalized name: case- and whitespace-insensitive, so
// repeated scrapes never create duplicate company rows.
type Company struct {
	ID             string    `gorm:"type:text;primaryKey" json:"id"`
	Name           string    `gorm:"type:text;not null" json:"name"`
	NormalizedName string    `gorm:"type:text;not null;uniqueIndex:idx_companies_norm_name" json:"-"`
	Website        string    `gorm:"type:text" json:"website,omitempty"`
	Industry       string    `gorm:"type:text;index" json:"industry,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for Company.
func (Company) TableName() string {
	return "companies"
}

// NormalizeCompanyName lowercases a company name and collapses internal
// whitespace so lookups are insensitive to casing and spacing noise.
func NormalizeCompanyName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
