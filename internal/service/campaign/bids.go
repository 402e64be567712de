package campaign

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/bookads/internal/amazonads"
	"github.com/ignite/bookads/internal/domain"
	"github.com/ignite/bookads/internal/pkg/logger"
)

// BidResolver turns platform bid recommendations into usable bids. The raw
// recommendation is cached in Redis when a client is configured, since the
// single-keyword strategies can request the same value repeatedly within
// one scheduling window.
type BidResolver struct {
	rec   BidRecommender
	cache *redis.Client
	ttl   time.Duration
}

// NewBidResolver creates a resolver. cache may be nil to disable caching.
func NewBidResolver(rec BidRecommender, cache *redis.Client, ttl time.Duration) *BidResolver {
	return &BidResolver{rec: rec, cache: cache, ttl: ttl}
}

// Recommend returns the platform's suggested bid range for a value. All
// zeros means the platform has no recommendation data.
func (r *BidResolver) Recommend(ctx context.Context, campaignID, adGroupID int64, value string, exprType domain.ExpressionType) (amazonads.BidRange, error) {
	key := fmt.Sprintf("bidrec:%d:%s:%s", adGroupID, exprType, value)

	if r.cache != nil {
		if data, err := r.cache.Get(ctx, key).Bytes(); err == nil {
			var rng amazonads.BidRange
			if json.Unmarshal(data, &rng) == nil {
				return rng, nil
			}
		}
	}

	rng, err := r.rec.BidRecommendations(ctx, campaignID, adGroupID, value, exprType)
	if err != nil {
		return amazonads.BidRange{}, fmt.Errorf("bid recommendations for %q: %w", value, err)
	}

	if r.cache != nil {
		if data, err := json.Marshal(rng); err == nil {
			if err := r.cache.Set(ctx, key, data, r.ttl).Err(); err != nil {
				logger.Warn("bid recommendation cache write failed", "key", key, "error", err)
			}
		}
	}
	return rng, nil
}

// Resolve returns the bid to use for a value: the recommended mid bid
// clamped into [defaultBid, 2*defaultBid], or defaultBid when the platform
// has no recommendation.
func (r *BidResolver) Resolve(ctx context.Context, campaignID, adGroupID int64, value string, exprType domain.ExpressionType, defaultBid float64) (float64, error) {
	rng, err := r.Recommend(ctx, campaignID, adGroupID, value, exprType)
	if err != nil {
		return 0, err
	}
	return ClampBid(rng.Mid, defaultBid), nil
}

// ClampBid clamps a recommended bid into [def, 2*def]. A zero or
// below-default recommendation resolves to the default; anything above
// twice the default is capped there.
func ClampBid(recommended, def float64) float64 {
	if recommended == 0 || recommended < def {
		return def
	}
	if recommended > 2*def {
		return 2 * def
	}
	return recommended
}
