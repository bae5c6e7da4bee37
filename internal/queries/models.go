package queries

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no query has the requested id
var ErrNotFound = errors.New("query not found")

// Result values stored before a verification finishes or when it fails.
// Completed queries store the final verdict name.
const (
	ResultProcessing = "processing"
	ResultError      = "error"
)

// Query is one verification request and its final outcome
type Query struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	URL           *string        `gorm:"type:text" json:"url,omitempty"`
	UserID        *string        `gorm:"type:varchar(255);index" json:"user_id,omitempty"`
	DeviceID      *string        `gorm:"type:varchar(255)" json:"device_id,omitempty"`
	Mode          string         `gorm:"type:varchar(32);not null" json:"mode"`
	Strategy      string         `gorm:"type:varchar(32)" json:"strategy,omitempty"`
	Result        string         `gorm:"type:varchar(32);not null;index" json:"result"`
	Confidence    int            `gorm:"not null;default:0" json:"confidence"`
	PrimarySource string         `gorm:"type:varchar(32)" json:"primary_source,omitempty"`
	Summary       datatypes.JSON `json:"summary,omitempty"`
	ErrorMessage  *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName overrides the gorm default
func (Query) TableName() string {
	return "verification_queries"
}

// BeforeCreate fills in an id for records created without one
func (q *Query) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Completion is the final update applied to a processing query
type Completion struct {
	Result        string
	Confidence    int
	PrimarySource string
	Strategy      string
	Summary       datatypes.JSON
}

// Filter narrows history listings
type Filter struct {
	UserID *string
}

// Stats are aggregate counters over all stored queries
type Stats struct {
	TotalQueries      int64            `json:"total_queries"`
	UniqueUsers       int64            `json:"unique_users"`
	AverageTextLength float64          `json:"average_text_length"`
	ResultCounts      map[string]int64 `json:"result_distribution,omitempty"`
}

// HistoryItem is the list projection of a query
type HistoryItem struct {
	ID            uuid.UUID `json:"id"`
	Text          string    `json:"text"`
	URL           *string   `json:"url,omitempty"`
	UserID        *string   `json:"user_id,omitempty"`
	Mode          string    `json:"mode"`
	Result        string    `json:"result"`
	Confidence    int       `json:"confidence"`
	PrimarySource string    `json:"primary_source,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryPage is one page of history plus the total row count
type HistoryPage struct {
	Items  []HistoryItem `json:"items"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
