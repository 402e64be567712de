package campaign

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/bookads/internal/amazonads"
	"github.com/ignite/bookads/internal/domain"
	"github.com/ignite/bookads/internal/pkg/logger"
)

// base holds the orchestration primitives shared by all strategies:
// journaled creation of campaign shells, ad groups and product ads, and
// batch keyword/target submission with tolerated error codes.
type base struct {
	deps Deps
	book *domain.Book
}

func (b *base) bidResolver() *BidResolver {
	return NewBidResolver(b.deps.Recommender, b.deps.Cache, b.deps.Bidding.RecommendationTTL())
}

func (b *base) formatNegatives() *FormatNegatives {
	return NewFormatNegatives(b.deps.Repo, b.deps.Batch)
}

func (b *base) defaultBid(p Params) float64 {
	if p.Bid > 0 {
		return p.Bid
	}
	return b.deps.Bidding.DefaultBid
}

// buildCampaign constructs an enabled campaign descriptor with a generated
// name. The platform has not seen it yet: ExternalID stays zero until
// createCampaign runs.
func (b *base) buildCampaign(ctx context.Context, purpose domain.Purpose, bidding domain.BiddingStrategy, targeting domain.TargetingType, tos, pp *int) (*domain.Campaign, error) {
	name, err := NewNamer(b.deps.Repo, b.book, purpose).Name(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Campaign{
		ID:              uuid.New().String(),
		BookID:          b.book.ID,
		ProfileID:       b.book.ProfileID,
		Name:            name,
		Purpose:         purpose,
		BiddingStrategy: bidding,
		TargetingType:   targeting,
		State:           domain.StateEnabled,
		DailyBudget:     b.deps.Bidding.DailyBudget,
		TopOfSearchPct:  tos,
		ProductPagePct:  pp,
	}, nil
}

// journaled runs one external creation step with journal bracketing: the
// entry is appended once the platform call succeeds and marked persisted
// once the local record is written. A journal write failure aborts the run,
// because without the entry a crash would leave the stores silently
// diverged.
func (b *base) journaled(ctx context.Context, purpose domain.Purpose, kind, localID string, create func(context.Context) error, externalID func() int64, persist func(context.Context) error) error {
	if err := create(ctx); err != nil {
		return err
	}
	entry := &JournalEntry{
		ID:         uuid.New().String(),
		BookID:     b.book.ID,
		Purpose:    purpose,
		EntityKind: kind,
		LocalID:    localID,
		ExternalID: externalID(),
		State:      JournalExternalCreated,
		CreatedAt:  time.Now().UTC(),
	}
	if err := b.deps.Repo.AppendJournal(ctx, entry); err != nil {
		return fmt.Errorf("journal %s %s: %w", kind, localID, err)
	}
	if err := persist(ctx); err != nil {
		return fmt.Errorf("persist %s %s: %w", kind, localID, err)
	}
	return b.deps.Repo.MarkJournalPersisted(ctx, entry.ID)
}

// createCampaign submits the descriptor to the platform and persists it.
func (b *base) createCampaign(ctx context.Context, c *domain.Campaign) error {
	err := b.journaled(ctx, c.Purpose, "campaign", c.ID,
		func(ctx context.Context) error {
			if err := b.deps.Creator.CreateCampaign(ctx, c); err != nil {
				return fmt.Errorf("create campaign %q: %w", c.Name, err)
			}
			return nil
		},
		func() int64 { return c.ExternalID },
		func(ctx context.Context) error { return b.deps.Repo.SaveCampaign(ctx, c) },
	)
	if err != nil {
		return err
	}
	logger.Info("campaign created", "name", c.Name, "purpose", c.Purpose, "external_id", c.ExternalID)
	return nil
}

// createAdGroup creates the campaign's single ad group at the given
// default bid.
func (b *base) createAdGroup(ctx context.Context, c *domain.Campaign, bid float64) (*domain.AdGroup, error) {
	g := &domain.AdGroup{
		ID:         uuid.New().String(),
		CampaignID: c.ID,
		Name:       c.Name + "-AG",
		DefaultBid: bid,
		State:      domain.StateEnabled,
	}
	err := b.journaled(ctx, c.Purpose, "ad_group", g.ID,
		func(ctx context.Context) error {
			if err := b.deps.Creator.CreateAdGroup(ctx, g); err != nil {
				return fmt.Errorf("create ad group for %q: %w", c.Name, err)
			}
			return nil
		},
		func() int64 { return g.ExternalID },
		func(ctx context.Context) error { return b.deps.Repo.SaveAdGroup(ctx, g) },
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// createProductAd creates one product ad for the ASIN in the given
// campaign + ad group pair.
func (b *base) createProductAd(ctx context.Context, c *domain.Campaign, g *domain.AdGroup, asin string) (*domain.ProductAd, error) {
	p := &domain.ProductAd{
		ID:         uuid.New().String(),
		CampaignID: c.ID,
		AdGroupID:  g.ID,
		ASIN:       asin,
		State:      domain.StateEnabled,
	}
	err := b.journaled(ctx, c.Purpose, "product_ad", p.ID,
		func(ctx context.Context) error {
			if err := b.deps.Creator.CreateProductAd(ctx, p); err != nil {
				return fmt.Errorf("create product ad %s for %q: %w", asin, c.Name, err)
			}
			return nil
		},
		func() int64 { return p.ExternalID },
		func(ctx context.Context) error { return b.deps.Repo.SaveProductAd(ctx, p) },
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// createUnit creates a full campaign shell: campaign, one ad group, one
// product ad for the strategy's book.
func (b *base) createUnit(ctx context.Context, purpose domain.Purpose, bidding domain.BiddingStrategy, targeting domain.TargetingType, adGroupBid float64, tos, pp *int) (*Created, error) {
	c, err := b.buildCampaign(ctx, purpose, bidding, targeting, tos, pp)
	if err != nil {
		return nil, err
	}
	if err := b.createCampaign(ctx, c); err != nil {
		return nil, err
	}
	g, err := b.createAdGroup(ctx, c, adGroupBid)
	if err != nil {
		return nil, err
	}
	p, err := b.createProductAd(ctx, c, g, b.book.ASIN)
	if err != nil {
		return nil, err
	}
	return &Created{Campaign: *c, AdGroup: *g, ProductAd: *p}, nil
}

func (b *base) submitKeywords(ctx context.Context, c *domain.Campaign, g *domain.AdGroup, kws []domain.Keyword) error {
	return submitKeywordBatch(ctx, b.deps.Repo, b.deps.Batch, c, g, kws)
}

func (b *base) submitTargets(ctx context.Context, c *domain.Campaign, g *domain.AdGroup, ts []domain.Target) error {
	return submitTargetBatch(ctx, b.deps.Repo, b.deps.Batch, c, g, ts)
}

// submitKeywordBatch submits a keyword creation batch and persists the
// entries the platform accepted. Duplicate-value errors are tolerated so
// re-invocation stays safe; any other error code fails the whole call.
func submitKeywordBatch(ctx context.Context, repo Repository, batch BatchService, c *domain.Campaign, g *domain.AdGroup, kws []domain.Keyword) error {
	if len(kws) == 0 {
		return nil
	}
	reqs := make([]amazonads.KeywordRequest, len(kws))
	for i, k := range kws {
		reqs[i] = amazonads.KeywordRequest{
			CampaignID: c.ExternalID,
			AdGroupID:  g.ExternalID,
			Text:       k.Text,
			MatchType:  string(k.MatchType),
			Bid:        k.Bid,
			State:      string(k.State),
		}
	}
	res, err := batch.CreateKeywords(ctx, reqs)
	if err != nil {
		return fmt.Errorf("create keywords for %q: %w", c.Name, err)
	}
	accepted, err := checkOutcomes(res, len(kws), amazonads.ErrCodeDuplicateValue)
	if err != nil {
		return err
	}
	created := make([]domain.Keyword, 0, len(accepted))
	for _, i := range accepted {
		kws[i].ExternalID = res.Outcomes[i].ExternalID
		created = append(created, kws[i])
	}
	if len(created) < len(kws) {
		logger.Debug("duplicate keywords tolerated", "campaign", c.Name, "count", len(kws)-len(created))
	}
	if len(created) == 0 {
		return nil
	}
	if err := repo.SaveKeywords(ctx, created); err != nil {
		return fmt.Errorf("persist keywords for %q: %w", c.Name, err)
	}
	return nil
}

// submitTargetBatch is the target counterpart of submitKeywordBatch. It
// additionally tolerates targeting clause setup errors.
func submitTargetBatch(ctx context.Context, repo Repository, batch BatchService, c *domain.Campaign, g *domain.AdGroup, ts []domain.Target) error {
	if len(ts) == 0 {
		return nil
	}
	reqs := make([]amazonads.TargetRequest, len(ts))
	for i, t := range ts {
		reqs[i] = amazonads.TargetRequest{
			CampaignID:      c.ExternalID,
			AdGroupID:       g.ExternalID,
			ExpressionType:  string(t.Expression.Type),
			ExpressionValue: t.Expression.Value,
			Bid:             t.Bid,
			State:           string(t.State),
		}
	}
	res, err := batch.CreateTargets(ctx, reqs)
	if err != nil {
		return fmt.Errorf("create targets for %q: %w", c.Name, err)
	}
	accepted, err := checkOutcomes(res, len(ts), amazonads.ErrCodeDuplicateValue, amazonads.ErrCodeTargetingClauseSetup)
	if err != nil {
		return err
	}
	created := make([]domain.Target, 0, len(accepted))
	for _, i := range accepted {
		ts[i].ExternalID = res.Outcomes[i].ExternalID
		created = append(created, ts[i])
	}
	if len(created) == 0 {
		return nil
	}
	if err := repo.SaveTargets(ctx, created); err != nil {
		return fmt.Errorf("persist targets for %q: %w", c.Name, err)
	}
	return nil
}

// checkOutcomes validates a batch response against the expected entry count
// and returns the indices of accepted entries. Every error in the batch is
// inspected: one intolerable code fails the call, no matter how the other
// entries fared.
func checkOutcomes(res amazonads.BatchResult, n int, tolerated ...string) ([]int, error) {
	if len(res.Outcomes) != n {
		return nil, fmt.Errorf("%w: %d outcomes for %d entries", ErrObjectNotCreated, len(res.Outcomes), n)
	}
	accepted := make([]int, 0, n)
	for i, o := range res.Outcomes {
		if o.Code == "" {
			accepted = append(accepted, i)
			continue
		}
		if !slices.Contains(tolerated, o.Code) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrObjectNotCreated, o.Code, o.Description)
		}
	}
	return accepted, nil
}

// sortedKeys returns the set's keys in lexical order so partitioning is
// deterministic.
func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// take removes up to n entries from the set in lexical order and returns
// them.
func take(set map[string]struct{}, n int) []string {
	keys := sortedKeys(set)
	if len(keys) > n {
		keys = keys[:n]
	}
	for _, k := range keys {
		delete(set, k)
	}
	return keys
}

// chunk splits values into slices of at most size entries.
func chunk(values []string, size int) [][]string {
	var out [][]string
	for len(values) > size {
		out = append(out, values[:size])
		values = values[size:]
	}
	if len(values) > 0 {
		out = append(out, values)
	}
	return out
}

func buildKeywords(c *domain.Campaign, g *domain.AdGroup, texts []string, match domain.MatchType, bid float64) []domain.Keyword {
	kws := make([]domain.Keyword, len(texts))
	for i, t := range texts {
		kws[i] = domain.Keyword{
			ID:         uuid.New().String(),
			CampaignID: c.ID,
			AdGroupID:  g.ID,
			Text:       t,
			MatchType:  match,
			Bid:        bid,
			State:      domain.StateEnabled,
		}
	}
	return kws
}

func buildTargets(c *domain.Campaign, g *domain.AdGroup, values []string, exprType domain.ExpressionType, bid float64) []domain.Target {
	ts := make([]domain.Target, len(values))
	for i, v := range values {
		ts[i] = domain.Target{
			ID:         uuid.New().String(),
			CampaignID: c.ID,
			AdGroupID:  g.ID,
			Expression: domain.TargetExpression{Type: exprType, Value: v},
			Bid:        bid,
			State:      domain.StateEnabled,
		}
	}
	return ts
}
