package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// RunStatus represents the lifecycle state of an ingestion run.
// Transitions: pending → running → {succeeded, partial, failed}.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// RunCounters aggregates per-listing outcomes for a run or a single source.
type RunCounters struct {
	Fetched   int `json:"fetched"`
	New       int `json:"new"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Duplicate int `json:"duplicate"`
	Errors    int `json:"errors"`
}

// Add accumulates another set of counters into this one.
func (c *RunCounters) Add(other RunCounters) {
	c.Fetched += other.Fetched
	c.New += other.New
	c.Updated += other.Updated
	c.Unchanged += other.Unchanged
	c.Duplicate += other.Duplicate
	c.Errors += other.Errors
}

// SourceResult records the outcome of one source within a run.
type SourceResult struct {
	Status   RunStatus   `json:"status"`
	Counters RunCounters `json:"counters"`
	Pages    int         `json:"pages"`
	Error    string      `json:"error,omitempty"`
}

// SourceResults is a custom type for storing per-source outcomes as JSON.
type SourceResults map[string]SourceResult

// Value implements the driver.Valuer interface for database serialization.
func (r SourceResults) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	return json.Marshal(r)
}

// Scan implements the sql.Scanner interface for database deserialization.
func (r *SourceResults) Scan(value interface{}) error {
	if value == nil {
		*r = SourceResults{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan SourceResults")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, r)
}

// IngestRun represents one scheduler-triggered ingestion cycle across one or
// more sources. Created at run start, mutated throughout the run, finalized
// at run end. Never deleted by the pipeline; retention is an external policy.
type IngestRun struct {
	ID          string        `gorm:"type:text;primaryKey" json:"id"`
	Sources     StringArray   `gorm:"type:text" json:"sources"`
	Status      RunStatus     `gorm:"type:text;index;default:pending" json:"status"`
	Trigger     string        `gorm:"type:text" json:"trigger"` // "cron" or "manual"
	Fetched     int           `gorm:"default:0" json:"fetched"`
	New         int           `gorm:"default:0" json:"new"`
	Updated     int           `gorm:"default:0" json:"updated"`
	Unchanged   int           `gorm:"default:0" json:"unchanged"`
	Duplicate   int           `gorm:"default:0" json:"duplicate"`
	Errors      int           `gorm:"default:0" json:"errors"`
	BySource    SourceResults `gorm:"type:text" json:"by_source"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	ErrorLog    string        `json:"error_log,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName returns the database table name for IngestRun.
func (IngestRun) TableName() string {
	return "ingest_runs"
}

// SetCounters copies aggregate counters onto the run record.
func (r *IngestRun) SetCounters(c RunCounters) {
	r.Fetched = c.Fetched
	r.New = c.New
	r.Updated = c.Updated
	r.Unchanged = c.Unchanged
	r.Duplicate = c.Duplicate
	r.Errors = c.Errors
}
