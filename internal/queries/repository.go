package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for query data access
type Repository interface {
	Insert(ctx context.Context, q *Query) error
	Complete(ctx context.Context, id uuid.UUID, c Completion) error
	Fail(ctx context.Context, id uuid.UUID, message string) error
	GetByID(ctx context.Context, id uuid.UUID) (*Query, error)
	List(ctx context.Context, filter Filter, offset, limit int) ([]Query, int64, error)
	AggregateStats(ctx context.Context, withDistribution bool) (*Stats, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Ping(ctx context.Context) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a gorm-backed query repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// AutoMigrate creates or updates the queries table
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Query{})
}

func (r *gormRepository) Insert(ctx context.Context, q *Query) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("failed to insert query: %w", err)
	}
	return nil
}

func (r *gormRepository) Complete(ctx context.Context, id uuid.UUID, c Completion) error {
	res := r.db.WithContext(ctx).Model(&Query{}).Where("id = ?", id).Updates(map[string]interface{}{
		"result":         c.Result,
		"confidence":     c.Confidence,
		"primary_source": c.PrimarySource,
		"strategy":       c.Strategy,
		"summary":        c.Summary,
		"updated_at":     time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to complete query: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) Fail(ctx context.Context, id uuid.UUID, message string) error {
	res := r.db.WithContext(ctx).Model(&Query{}).Where("id = ?", id).Updates(map[string]interface{}{
		"result":        ResultError,
		"confidence":    0,
		"error_message": message,
		"updated_at":    time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to mark query as failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Query, error) {
	var q Query
	err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get query: %w", err)
	}
	return &q, nil
}

func (r *gormRepository) List(ctx context.Context, filter Filter, offset, limit int) ([]Query, int64, error) {
	tx := r.db.WithContext(ctx).Model(&Query{})
	if filter.UserID != nil {
		tx = tx.Where("user_id = ?", *filter.UserID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count queries: %w", err)
	}

	var items []Query
	err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list queries: %w", err)
	}
	return items, total, nil
}

func (r *gormRepository) AggregateStats(ctx context.Context, withDistribution bool) (*Stats, error) {
	var row struct {
		Total     int64
		Users     int64
		AvgLength *float64
	}
	err := r.db.WithContext(ctx).Model(&Query{}).
		Select("COUNT(*) AS total, COUNT(DISTINCT user_id) AS users, AVG(LENGTH(text)) AS avg_length").
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	stats := &Stats{
		TotalQueries: row.Total,
		UniqueUsers:  row.Users,
	}
	if row.AvgLength != nil {
		stats.AverageTextLength = *row.AvgLength
	}

	if !withDistribution {
		return stats, nil
	}

	var buckets []struct {
		Result string
		Count  int64
	}
	err = r.db.WithContext(ctx).Model(&Query{}).
		Select("result, COUNT(*) AS count").
		Group("result").
		Scan(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate result distribution: %w", err)
	}

	stats.ResultCounts = make(map[string]int64, len(buckets))
	for _, b := range buckets {
		stats.ResultCounts[b.Result] = b.Count
	}
	return stats, nil
}

func (r *gormRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Query{}).Where("created_at >= ?", since).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent queries: %w", err)
	}
	return n, nil
}

func (r *gormRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Query{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete old queries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
