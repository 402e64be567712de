package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/bookads/internal/config"
	"github.com/ignite/bookads/internal/domain"
)

// Created is one (campaign, ad group, product ad) triple produced by a
// strategy invocation.
type Created struct {
	Campaign  domain.Campaign
	AdGroup   domain.AdGroup
	ProductAd domain.ProductAd
}

// Strategy creates the campaigns for one purpose. Create returns everything
// it created in this invocation; on error, already-created entities are not
// rolled back but are recorded in the creation journal.
type Strategy interface {
	Create(ctx context.Context) ([]Created, error)
}

// Updater retrofits product ads and targets onto an existing campaign. The
// product-targeting strategies implement it.
type Updater interface {
	Update(ctx context.Context, c *domain.Campaign, books []*domain.Book) error
}

// Deps bundles the collaborators every strategy needs.
type Deps struct {
	Repo        Repository
	Creator     EntityCreator
	Batch       BatchService
	Recommender BidRecommender
	Syncer      TargetSyncer

	// Cache is the optional Redis client backing the bid recommendation
	// cache.
	Cache *redis.Client

	Bidding     config.BiddingConfig
	Purposes    config.PurposesConfig
	Marketplace string

	// Discovery's bounded wait for target sync.
	SyncWait time.Duration
	SyncPoll time.Duration
}

func (d Deps) maxTargets(p domain.Purpose) int {
	return d.Purposes.MaxTargetsFor(string(p))
}

// Params carries the per-invocation input.
type Params struct {
	Book *domain.Book

	// Raw keyword texts (keyword strategies) or ASINs (product strategies).
	Keywords []string
	ASINs    []string

	// Bid overrides the configured default bid when non-zero.
	Bid float64
}

// constructors is the purpose dispatch table. Discovery sub-purposes are
// not listed: the Discovery strategy creates them itself. Cat-Research
// campaigns are managed outside the creation flows.
var constructors = map[domain.Purpose]func(Deps, Params) Strategy{
	domain.PurposeAutoGP:              newAutoGP,
	domain.PurposeGP:                  newGP,
	domain.PurposeBroadResearch:       newBroadResearch,
	domain.PurposeBroadResearchSingle: newBroadResearchSingle,
	domain.PurposeExactScale:          newExactScale,
	domain.PurposeExactScaleSingle:    newExactScaleSingle,
	domain.PurposeDiscovery:           newDiscovery,
	domain.PurposeProductComp:         newProductComp,
	domain.PurposeProductOwn:          newProductOwn,
	domain.PurposeProductSelf:         newProductSelf,
	domain.PurposeProductExp:          newProductExp,
}

// New instantiates the strategy registered for a purpose.
func New(purpose domain.Purpose, deps Deps, p Params) (Strategy, error) {
	ctor, ok := constructors[purpose]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPurpose, purpose)
	}
	return ctor(deps, p), nil
}
