package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campushub/examcore-api/internal/dto"
)

const reportCacheVersionKey = "examcore:report:version"

// ReportCache stores rendered student reports in Redis. Entries are keyed by
// a global version counter; bumping the counter on approval transitions
// orphans every cached report at once instead of tracking per-student keys.
type ReportCache interface {
	Get(ctx context.Context, studentID uint, includeUnapproved bool) (dto.StudentReportResponse, bool)
	Set(ctx context.Context, studentID uint, includeUnapproved bool, report dto.StudentReportResponse)
	Invalidate(ctx context.Context)
}

type reportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewReportCache wraps a Redis client. A nil client disables caching.
func NewReportCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportCache {
	return &reportCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "report_cache").Logger(),
	}
}

func (c *reportCache) key(ctx context.Context, studentID uint, includeUnapproved bool) string {
	version, err := c.client.Get(ctx, reportCacheVersionKey).Int64()
	if err != nil && err != redis.Nil {
		c.logger.Warn().Err(err).Msg("failed to read report cache version")
	}
	return fmt.Sprintf("examcore:report:v%d:student:%d:unapproved:%t", version, studentID, includeUnapproved)
}

func (c *reportCache) Get(ctx context.Context, studentID uint, includeUnapproved bool) (dto.StudentReportResponse, bool) {
	if c.client == nil {
		return dto.StudentReportResponse{}, false
	}

	raw, err := c.client.Get(ctx, c.key(ctx, studentID, includeUnapproved)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("report cache read failed")
		}
		return dto.StudentReportResponse{}, false
	}

	var report dto.StudentReportResponse
	if err := json.Unmarshal(raw, &report); err != nil {
		c.logger.Warn().Err(err).Msg("report cache entry corrupt")
		return dto.StudentReportResponse{}, false
	}
	return report, true
}

func (c *reportCache) Set(ctx context.Context, studentID uint, includeUnapproved bool, report dto.StudentReportResponse) {
	if c.client == nil {
		return
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(ctx, studentID, includeUnapproved), raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("report cache write failed")
	}
}

// Invalidate bumps the version counter so every existing entry stops being
// addressable. Stale entries expire on their own TTL.
func (c *reportCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, reportCacheVersionKey).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("report cache invalidation failed")
	}
}
