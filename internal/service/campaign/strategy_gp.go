package campaign

import (
	"context"
	"fmt"

	"github.com/ignite/bookads/internal/domain"
)

// autoGP creates the single always-on auto-targeting campaign for a book.
// GP ("general purpose") campaigns run at the fixed minimum bid: they exist
// for baseline visibility, not for scaling.
type autoGP struct {
	base
	params Params
}

func newAutoGP(d Deps, p Params) Strategy {
	return &autoGP{base{deps: d, book: p.Book}, p}
}

func (s *autoGP) Create(ctx context.Context) ([]Created, error) {
	if err := guardGPExists(ctx, &s.base, domain.PurposeAutoGP); err != nil {
		return nil, err
	}
	unit, err := s.createUnit(ctx, domain.PurposeAutoGP, domain.BiddingFixed, domain.TargetingAuto, s.deps.Bidding.MinBid, nil, nil)
	if err != nil {
		return nil, err
	}
	return []Created{*unit}, nil
}

// gp creates the single manual GP campaign carrying all cleaned keywords in
// broad match at the minimum bid.
type gp struct {
	base
	params Params
}

func newGP(d Deps, p Params) Strategy {
	return &gp{base{deps: d, book: p.Book}, p}
}

func (s *gp) Create(ctx context.Context) ([]Created, error) {
	if err := guardGPExists(ctx, &s.base, domain.PurposeGP); err != nil {
		return nil, err
	}
	working := CleanKeywords(s.params.Keywords, CleanOptions{Singularize: true, Marketplace: s.deps.Marketplace})

	unit, err := s.createUnit(ctx, domain.PurposeGP, domain.BiddingFixed, domain.TargetingManual, s.deps.Bidding.MinBid, nil, nil)
	if err != nil {
		return nil, err
	}
	kws := buildKeywords(&unit.Campaign, &unit.AdGroup, sortedKeys(working), domain.MatchBroad, s.deps.Bidding.MinBid)
	if err := s.submitKeywords(ctx, &unit.Campaign, &unit.AdGroup, kws); err != nil {
		return nil, err
	}
	return []Created{*unit}, nil
}

// guardGPExists fails before any external call when an enabled fixed-bid
// campaign of the purpose already exists for the book.
func guardGPExists(ctx context.Context, b *base, purpose domain.Purpose) error {
	exists, err := b.deps.Repo.LiveCampaignExists(ctx, b.book.ID, purpose, domain.BiddingFixed)
	if err != nil {
		return fmt.Errorf("existence check: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s for %s", ErrCampaignExists, purpose, b.book.ASIN)
	}
	return nil
}
