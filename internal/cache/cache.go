// Package cache keeps successful backend answers in Redis keyed by a hash
// of the normalized query text.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"factcheck/factcheck-backend/internal/claimsearch"
	"factcheck/factcheck-backend/internal/generative"
)

const (
	DefaultTTL = 24 * time.Hour

	claimSearchPrefix = "factcheck:claims:"
	generativePrefix  = "factcheck:analysis:"
)

// NewRedisClient connects to the Redis instance at url
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// Store reads and writes JSON values with a fixed TTL
type Store struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore creates a new cache store
func NewStore(rdb redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{rdb: rdb, ttl: ttl, logger: logger}
}

// Key hashes the normalized text under prefix
func Key(prefix, text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(norm.NFC.String(text))), " ")
	h := xxhash.NewS64(0)
	_, _ = h.Write([]byte(normalized))
	return prefix + strconv.FormatUint(h.Sum64(), 16)
}

// get decodes the value at key into dst and reports whether it was present.
// Redis errors are logged and treated as a miss.
func (s *Store) get(ctx context.Context, key string, dst interface{}) bool {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) set(ctx context.Context, key string, val interface{}) {
	data, err := json.Marshal(val)
	if err != nil {
		s.logger.Warn("Cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// ClaimSearcher is the claim search contract being cached
type ClaimSearcher interface {
	SearchClaims(ctx context.Context, text string) (*claimsearch.Result, error)
}

// Analyzer is the generative contract being cached
type Analyzer interface {
	AnalyzeClaim(ctx context.Context, text string) (*generative.Analysis, error)
}

// CachedClaimSearcher serves repeated claim searches from Redis
type CachedClaimSearcher struct {
	next  ClaimSearcher
	store *Store
}

// WrapClaimSearcher caches successful results of next
func WrapClaimSearcher(next ClaimSearcher, store *Store) *CachedClaimSearcher {
	return &CachedClaimSearcher{next: next, store: store}
}

func (c *CachedClaimSearcher) SearchClaims(ctx context.Context, text string) (*claimsearch.Result, error) {
	key := Key(claimSearchPrefix, text)
	var cached claimsearch.Result
	if c.store.get(ctx, key, &cached) {
		return &cached, nil
	}

	res, err := c.next.SearchClaims(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store.set(ctx, key, res)
	return res, nil
}

// CachedAnalyzer serves repeated analyses from Redis
type CachedAnalyzer struct {
	next  Analyzer
	store *Store
}

// WrapAnalyzer caches successful results of next
func WrapAnalyzer(next Analyzer, store *Store) *CachedAnalyzer {
	return &CachedAnalyzer{next: next, store: store}
}

func (c *CachedAnalyzer) AnalyzeClaim(ctx context.Context, text string) (*generative.Analysis, error) {
	key := Key(generativePrefix, text)
	var cached generative.Analysis
	if c.store.get(ctx, key, &cached) {
		return &cached, nil
	}

	a, err := c.next.AnalyzeClaim(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store.set(ctx, key, a)
	return a, nil
}
