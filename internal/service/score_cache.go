package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/arka-labs/gradeflow-api/internal/grading"
)

const scoreCacheKeyPrefix = "gradeflow:score:"

// CachedScorer wraps a Scorer with a redis-backed cache keyed by the exact
// scoring inputs. A retried grading job therefore reuses the first successful
// similarity score instead of re-querying the non-deterministic scorer, so
// retries cannot award different marks. Cache misses and redis failures
// degrade to a fresh call.
type CachedScorer struct {
	inner  grading.Scorer
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedScorer constructs the caching decorator. A nil redis client
// disables caching entirely.
func NewCachedScorer(inner grading.Scorer, redisClient *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedScorer {
	return &CachedScorer{
		inner:  inner,
		redis:  redisClient,
		ttl:    ttl,
		logger: logger.With().Str("component", "score_cache").Logger(),
	}
}

// Score implements grading.Scorer.
func (c *CachedScorer) Score(ctx context.Context, embeddingURL, markingScheme, studentResponse string) (float64, error) {
	if c.redis == nil {
		return c.inner.Score(ctx, embeddingURL, markingScheme, studentResponse)
	}

	key := cacheKey(embeddingURL, markingScheme, studentResponse)

	cached, err := c.redis.Get(ctx, key).Float64()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Msg("score cache read failed")
	}

	score, err := c.inner.Score(ctx, embeddingURL, markingScheme, studentResponse)
	if err != nil {
		return 0, err
	}

	if err := c.redis.Set(ctx, key, score, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("score cache write failed")
	}

	return score, nil
}

func cacheKey(embeddingURL, markingScheme, studentResponse string) string {
	digest := sha256.New()
	digest.Write([]byte(embeddingURL))
	digest.Write([]byte{0})
	digest.Write([]byte(markingScheme))
	digest.Write([]byte{0})
	digest.Write([]byte(studentResponse))

	return scoreCacheKeyPrefix + hex.EncodeToString(digest.Sum(nil))
}
