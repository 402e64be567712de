package campaign

import (
	"context"

	"github.com/ignite/bookads/internal/amazonads"
	"github.com/ignite/bookads/internal/domain"
)

// EntityCreator creates campaign shells, ad groups and product ads on the
// advertising platform. On success the descriptor's ExternalID is filled
// in; a platform rejection propagates as an error.
type EntityCreator interface {
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	CreateAdGroup(ctx context.Context, g *domain.AdGroup) error
	CreateProductAd(ctx context.Context, p *domain.ProductAd) error
}

// BatchService submits keyword/target batch operations. Results carry one
// outcome per entry in request order; partial failures are reported through
// per-entry error codes, not through the returned error.
type BatchService interface {
	CreateKeywords(ctx context.Context, reqs []amazonads.KeywordRequest) (amazonads.BatchResult, error)
	CreateTargets(ctx context.Context, reqs []amazonads.TargetRequest) (amazonads.BatchResult, error)
	UpdateTargets(ctx context.Context, updates []amazonads.TargetUpdate) (amazonads.BatchResult, error)
}

// BidRecommender queries the platform's suggested bid range for a keyword
// text or targeting value. A zero BidRange means no recommendation data.
type BidRecommender interface {
	BidRecommendations(ctx context.Context, campaignID, adGroupID int64, value string, exprType domain.ExpressionType) (amazonads.BidRange, error)
}

// TargetSyncer triggers a pull of platform-generated targets for the given
// external campaign IDs into the local store. Completion is observed by
// polling the store, not by this call returning.
type TargetSyncer interface {
	SyncTargets(ctx context.Context, campaignIDs []int64) error
}
