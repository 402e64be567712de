package campaign

import (
	"context"
	"fmt"
	"strings"

	"github.com/ignite/bookads/internal/domain"
)

// productTargeting is the shared implementation behind the four product
// targeting strategies. Targets are structured ASIN expressions instead of
// free-text keywords; everything else mirrors the batched keyword flow.
type productTargeting struct {
	base
	params   Params
	purpose  domain.Purpose
	exprType domain.ExpressionType

	// selfOnly targets the book's own ASIN (defensive placement on its own
	// product page) and ignores params.ASINs.
	selfOnly bool

	// forceMaxBid bids the configured maximum; used by Product-Self where
	// losing the own-page placement to a competitor is the worst outcome.
	forceMaxBid bool
}

func newProductComp(d Deps, p Params) Strategy {
	return &productTargeting{base: base{deps: d, book: p.Book}, params: p, purpose: domain.PurposeProductComp, exprType: domain.ExprASINSameAs}
}

func newProductOwn(d Deps, p Params) Strategy {
	return &productTargeting{base: base{deps: d, book: p.Book}, params: p, purpose: domain.PurposeProductOwn, exprType: domain.ExprASINSameAs}
}

func newProductSelf(d Deps, p Params) Strategy {
	return &productTargeting{base: base{deps: d, book: p.Book}, params: p, purpose: domain.PurposeProductSelf, exprType: domain.ExprASINSameAs, selfOnly: true, forceMaxBid: true}
}

func newProductExp(d Deps, p Params) Strategy {
	return &productTargeting{base: base{deps: d, book: p.Book}, params: p, purpose: domain.PurposeProductExp, exprType: domain.ExprASINExpandedFrom}
}

func (s *productTargeting) bid() float64 {
	if s.forceMaxBid {
		return s.deps.Bidding.MaxBid
	}
	return s.defaultBid(s.params)
}

func (s *productTargeting) Create(ctx context.Context) ([]Created, error) {
	var working map[string]struct{}
	if s.selfOnly {
		working = map[string]struct{}{s.book.ASIN: {}}
	} else {
		working = CleanKeywords(s.params.ASINs, CleanOptions{ASINs: true})
	}
	err := FilterDuplicates(ctx, working, func(ctx context.Context) (map[string]struct{}, error) {
		return s.deps.Repo.TargetValues(ctx, s.book.ID, s.purpose, s.exprType)
	})
	if err != nil {
		return nil, err
	}

	maxPer := s.deps.maxTargets(s.purpose)
	bid := s.bid()

	var out []Created
	for _, batch := range chunk(sortedKeys(working), maxPer) {
		unit, err := s.createUnit(ctx, s.purpose, domain.BiddingDownOnly, domain.TargetingManual, bid, nil, nil)
		if err != nil {
			return out, err
		}
		ts := buildTargets(&unit.Campaign, &unit.AdGroup, batch, s.exprType, bid)
		if err := s.submitTargets(ctx, &unit.Campaign, &unit.AdGroup, ts); err != nil {
			return out, err
		}
		out = append(out, *unit)
	}
	return out, nil
}

// Update retrofits product ads and targets onto an already-existing
// campaign: every book gets a product ad if it lacks one, and every book
// ASIN not yet targeted becomes a new target.
func (s *productTargeting) Update(ctx context.Context, c *domain.Campaign, books []*domain.Book) error {
	groups, err := s.deps.Repo.AdGroups(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("list ad groups for %q: %w", c.Name, err)
	}
	var group *domain.AdGroup
	for i := range groups {
		if groups[i].State == domain.StateEnabled {
			group = &groups[i]
			break
		}
	}
	if group == nil {
		return fmt.Errorf("campaign %q has no enabled ad group", c.Name)
	}

	for _, book := range books {
		exists, err := s.deps.Repo.ProductAdExists(ctx, c.ID, book.ASIN)
		if err != nil {
			return fmt.Errorf("product ad check for %s: %w", book.ASIN, err)
		}
		if exists {
			continue
		}
		if _, err := s.createProductAd(ctx, c, group, book.ASIN); err != nil {
			return err
		}
	}

	existing, err := s.deps.Repo.TargetValuesForCampaign(ctx, c.ID, s.exprType)
	if err != nil {
		return fmt.Errorf("list targets for %q: %w", c.Name, err)
	}
	seen := make(map[string]struct{}, len(existing))
	for v := range existing {
		seen[strings.ToUpper(v)] = struct{}{}
	}

	var missing []string
	for _, book := range books {
		asin := strings.ToUpper(book.ASIN)
		if _, ok := seen[asin]; ok {
			continue
		}
		seen[asin] = struct{}{}
		missing = append(missing, asin)
	}
	if len(missing) == 0 {
		return nil
	}

	ts := buildTargets(c, group, missing, s.exprType, s.bid())
	return s.submitTargets(ctx, c, group, ts)
}
