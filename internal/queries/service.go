package queries

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"factcheck/factcheck-backend/internal/queries/export"
)

var (
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")
	ErrInvalidDays  = errors.New("days must be at least 1")
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	previewLength = 100
	exportLimit   = 10000
	recentWindow  = 24 * time.Hour
)

// DatabaseStatus are the counters reported by the status endpoint
type DatabaseStatus struct {
	TotalQueries   int64 `json:"total_queries"`
	UniqueUsers    int64 `json:"unique_users"`
	QueriesLast24h int64 `json:"queries_last_24h"`
}

// Service exposes stored queries to the API
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new query service
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// History returns one page of queries, newest first
func (s *Service) History(ctx context.Context, filter Filter, limit, offset int) (*HistoryPage, error) {
	if limit < 1 || limit > MaxLimit {
		return nil, ErrInvalidLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.repo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, len(rows))
	for i, q := range rows {
		items[i] = HistoryItem{
			ID:            q.ID,
			Text:          preview(q.Text, previewLength),
			URL:           q.URL,
			UserID:        q.UserID,
			Mode:          q.Mode,
			Result:        q.Result,
			Confidence:    q.Confidence,
			PrimarySource: q.PrimarySource,
			CreatedAt:     q.CreatedAt,
		}
	}

	return &HistoryPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// Get returns the full record for id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Query, error) {
	return s.repo.GetByID(ctx, id)
}

// Stats returns aggregate counters; withDistribution adds per-result counts
func (s *Service) Stats(ctx context.Context, withDistribution bool) (*Stats, error) {
	return s.repo.AggregateStats(ctx, withDistribution)
}

// Status reports database counters for the status endpoint
func (s *Service) Status(ctx context.Context) (*DatabaseStatus, error) {
	if err := s.repo.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	stats, err := s.repo.AggregateStats(ctx, false)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.CountSince(ctx, s.now().Add(-recentWindow))
	if err != nil {
		return nil, err
	}
	return &DatabaseStatus{
		TotalQueries:   stats.TotalQueries,
		UniqueUsers:    stats.UniqueUsers,
		QueriesLast24h: recent,
	}, nil
}

// Purge deletes queries older than days
func (s *Service) Purge(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, ErrInvalidDays
	}
	cutoff := s.now().AddDate(0, 0, -days)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to purge queries", zap.Int("days", days), zap.Error(err))
		return 0, err
	}
	s.logger.Info("Purged old queries",
		zap.Int("days", days),
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted))
	return deleted, nil
}

// Export writes the newest queries matching filter to w
func (s *Service) Export(ctx context.Context, w io.Writer, format export.Format, filter Filter) error {
	rows, _, err := s.repo.List(ctx, filter, 0, exportLimit)
	if err != nil {
		return err
	}

	table := export.Table{
		Title:   "Verification history",
		Columns: exportColumns,
		Rows:    make([]export.Row, len(rows)),
	}
	for i, q := range rows {
		table.Rows[i] = export.Row{
			"id":             q.ID.String(),
			"text":           q.Text,
			"url":            q.URL,
			"user_id":        q.UserID,
			"mode":           q.Mode,
			"result":         q.Result,
			"confidence":     q.Confidence,
			"primary_source": q.PrimarySource,
			"created_at":     q.CreatedAt,
		}
	}

	if err := export.Write(w, format, table); err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}
	s.logger.Info("Exported history", zap.String("format", string(format)), zap.Int("rows", len(rows)))
	return nil
}

var exportColumns = []export.Column{
	{Key: "id", Label: "ID"},
	{Key: "text", Label: "Text"},
	{Key: "url", Label: "URL"},
	{Key: "user_id", Label: "User"},
	{Key: "mode", Label: "Mode"},
	{Key: "result", Label: "Result"},
	{Key: "confidence", Label: "Confidence"},
	{Key: "primary_source", Label: "Source"},
	{Key: "created_at", Label: "Created"},
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
