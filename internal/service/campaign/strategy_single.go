package campaign

import (
	"context"

	"github.com/ignite/bookads/internal/domain"
)

// singleKeyword creates one campaign per keyword so each search term gets
// its own budget and bid. Duplicate scoping goes by campaign name
// fragments rather than purpose, matching how these campaigns are named.
type singleKeyword struct {
	base
	params    Params
	purpose   domain.Purpose
	match     domain.MatchType
	nameScope []string
}

func newBroadResearchSingle(d Deps, p Params) Strategy {
	return &singleKeyword{base{deps: d, book: p.Book}, p, domain.PurposeBroadResearchSingle, domain.MatchBroad, []string{"Broad", "Single"}}
}

func newExactScaleSingle(d Deps, p Params) Strategy {
	return &singleKeyword{base{deps: d, book: p.Book}, p, domain.PurposeExactScaleSingle, domain.MatchExact, []string{"Exact", "Single"}}
}

func (s *singleKeyword) Create(ctx context.Context) ([]Created, error) {
	working := CleanKeywords(s.params.Keywords, CleanOptions{Singularize: true, Marketplace: s.deps.Marketplace})
	err := FilterDuplicates(ctx, working, func(ctx context.Context) (map[string]struct{}, error) {
		return s.deps.Repo.KeywordTextsByName(ctx, s.book.ID, s.nameScope, s.match)
	})
	if err != nil {
		return nil, err
	}

	tos := s.deps.Bidding.SingleTOSPercent
	resolver := s.bidResolver()

	var out []Created
	for _, text := range sortedKeys(working) {
		unit, err := s.createUnit(ctx, s.purpose, domain.BiddingDownOnly, domain.TargetingManual, s.deps.Bidding.DefaultBid, &tos, nil)
		if err != nil {
			return out, err
		}

		bid := s.params.Bid
		if bid == 0 {
			bid, err = resolver.Resolve(ctx, unit.Campaign.ExternalID, unit.AdGroup.ExternalID, text, "", s.deps.Bidding.DefaultBid)
			if err != nil {
				return out, err
			}
		}

		kws := buildKeywords(&unit.Campaign, &unit.AdGroup, []string{text}, s.match, bid)
		if err := s.submitKeywords(ctx, &unit.Campaign, &unit.AdGroup, kws); err != nil {
			return out, err
		}
		out = append(out, *unit)
	}
	return out, nil
}
