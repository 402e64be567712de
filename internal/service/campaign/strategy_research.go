package campaign

import (
	"context"
	"fmt"

	"github.com/ignite/bookads/internal/domain"
	"github.com/ignite/bookads/internal/pkg/logger"
)

// batchedKeywords is the shared implementation behind Broad-Research and
// Exact-Scale: clean, dedupe, top up existing under-filled campaigns, then
// partition the remainder into new campaigns bounded by the per-purpose
// target cap.
type batchedKeywords struct {
	base
	params    Params
	purpose   domain.Purpose
	match     domain.MatchType
	negatives bool
}

func newBroadResearch(d Deps, p Params) Strategy {
	return &batchedKeywords{base{deps: d, book: p.Book}, p, domain.PurposeBroadResearch, domain.MatchBroad, true}
}

func newExactScale(d Deps, p Params) Strategy {
	return &batchedKeywords{base{deps: d, book: p.Book}, p, domain.PurposeExactScale, domain.MatchExact, false}
}

func (s *batchedKeywords) Create(ctx context.Context) ([]Created, error) {
	working := CleanKeywords(s.params.Keywords, CleanOptions{Singularize: true, Marketplace: s.deps.Marketplace})
	err := FilterDuplicates(ctx, working, func(ctx context.Context) (map[string]struct{}, error) {
		return s.deps.Repo.KeywordTexts(ctx, s.book.ID, s.purpose, s.match)
	})
	if err != nil {
		return nil, err
	}

	maxPer := s.deps.maxTargets(s.purpose)
	bid := s.defaultBid(s.params)

	if err := s.topUp(ctx, working, maxPer, bid); err != nil {
		return nil, err
	}

	var out []Created
	for _, batch := range chunk(sortedKeys(working), maxPer) {
		unit, err := s.createUnit(ctx, s.purpose, domain.BiddingDownOnly, domain.TargetingManual, bid, nil, nil)
		if err != nil {
			return out, err
		}
		kws := buildKeywords(&unit.Campaign, &unit.AdGroup, batch, s.match, bid)
		if err := s.submitKeywords(ctx, &unit.Campaign, &unit.AdGroup, kws); err != nil {
			return out, err
		}
		out = append(out, *unit)
	}

	if s.negatives && len(out) > 0 {
		if err := s.formatNegatives().Apply(ctx, s.book, out); err != nil {
			return out, err
		}
	}
	return out, nil
}

// topUp feeds remaining keywords into existing campaigns of the same
// purpose that still have room, consuming them from the working set.
// Only campaigns with exactly one ad group are eligible.
func (s *batchedKeywords) topUp(ctx context.Context, working map[string]struct{}, maxPer int, bid float64) error {
	open, err := s.deps.Repo.OpenCampaigns(ctx, s.book.ID, s.purpose)
	if err != nil {
		return fmt.Errorf("list open campaigns: %w", err)
	}
	for i := range open {
		if len(working) == 0 {
			return nil
		}
		c := &open[i]
		groups, err := s.deps.Repo.AdGroups(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("list ad groups for %q: %w", c.Name, err)
		}
		if len(groups) != 1 {
			continue
		}
		count, err := s.deps.Repo.KeywordCount(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("keyword count for %q: %w", c.Name, err)
		}
		room := maxPer - count
		if room <= 0 {
			continue
		}
		batch := take(working, room)
		kws := buildKeywords(c, &groups[0], batch, s.match, bid)
		if err := s.submitKeywords(ctx, c, &groups[0], kws); err != nil {
			return err
		}
		logger.Info("topped up campaign", "name", c.Name, "added", len(batch))
	}
	return nil
}
