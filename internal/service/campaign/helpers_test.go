package campaign_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ignite/bookads/internal/amazonads"
	"github.com/ignite/bookads/internal/config"
	"github.com/ignite/bookads/internal/domain"
	"github.com/ignite/bookads/internal/service/campaign"
)

// memRepo is an in-memory campaign.Repository for unit testing.
type memRepo struct {
	mu         sync.Mutex
	campaigns  map[string]*domain.Campaign
	adGroups   map[string][]domain.AdGroup
	productAds map[string][]domain.ProductAd
	keywords   map[string][]domain.Keyword
	targets    map[string][]domain.Target
	journal    []campaign.JournalEntry

	// autoTargets, when set, supplies "synced" targets for campaigns that
	// have none stored. Used by discovery tests.
	autoTargets func(campaignID string) []domain.Target

	countLikeCalls int
}

func newMemRepo() *memRepo {
	return &memRepo{
		campaigns:  make(map[string]*domain.Campaign),
		adGroups:   make(map[string][]domain.AdGroup),
		productAds: make(map[string][]domain.ProductAd),
		keywords:   make(map[string][]domain.Keyword),
		targets:    make(map[string][]domain.Target),
	}
}

func (m *memRepo) LiveCampaignExists(_ context.Context, bookID string, purpose domain.Purpose, bidding domain.BiddingStrategy) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.campaigns {
		if c.BookID != bookID || c.Purpose != purpose || c.State != domain.StateEnabled {
			continue
		}
		if bidding != "" && c.BiddingStrategy != bidding {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (m *memRepo) CountCampaignsLike(_ context.Context, asin, profileID, formatToken, purposeFragment string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countLikeCalls++
	n := 0
	for _, c := range m.campaigns {
		if c.ProfileID != profileID {
			continue
		}
		if strings.Contains(c.Name, asin) && strings.Contains(c.Name, purposeFragment) && strings.Contains(c.Name, formatToken) {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) OpenCampaigns(_ context.Context, bookID string, purpose domain.Purpose) ([]domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Campaign
	for _, c := range m.campaigns {
		if c.BookID == bookID && c.Purpose == purpose && c.State == domain.StateEnabled {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memRepo) AdGroups(_ context.Context, campaignID string) ([]domain.AdGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AdGroup(nil), m.adGroups[campaignID]...), nil
}

func (m *memRepo) KeywordCount(_ context.Context, campaignID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.keywords[campaignID] {
		if !k.MatchType.IsNegative() {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) KeywordTexts(_ context.Context, bookID string, purpose domain.Purpose, match domain.MatchType) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{})
	for id, c := range m.campaigns {
		if c.BookID != bookID || c.Purpose != purpose || c.State == domain.StateArchived {
			continue
		}
		for _, k := range m.keywords[id] {
			if k.MatchType == match {
				out[k.Text] = struct{}{}
			}
		}
	}
	return out, nil
}

func (m *memRepo) KeywordTextsByName(_ context.Context, bookID string, fragments []string, match domain.MatchType) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{})
	for id, c := range m.campaigns {
		if c.BookID != bookID || !c.NameContains(fragments...) {
			continue
		}
		for _, k := range m.keywords[id] {
			if k.MatchType == match {
				out[k.Text] = struct{}{}
			}
		}
	}
	return out, nil
}

func (m *memRepo) TargetValues(_ context.Context, bookID string, purpose domain.Purpose, exprType domain.ExpressionType) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{})
	for id, c := range m.campaigns {
		if c.BookID != bookID || c.Purpose != purpose {
			continue
		}
		for _, t := range m.targets[id] {
			if t.Expression.Type == exprType {
				out[t.Expression.Value] = struct{}{}
			}
		}
	}
	return out, nil
}

func (m *memRepo) TargetValuesForCampaign(_ context.Context, campaignID string, exprType domain.ExpressionType) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{})
	for _, t := range m.targets[campaignID] {
		if t.Expression.Type == exprType {
			out[t.Expression.Value] = struct{}{}
		}
	}
	return out, nil
}

func (m *memRepo) ProductAdExists(_ context.Context, campaignID, asin string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.productAds[campaignID] {
		if strings.EqualFold(p.ASIN, asin) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) TargetsForCampaign(_ context.Context, campaignID string) ([]domain.Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.targets[campaignID]) == 0 && m.autoTargets != nil {
		m.targets[campaignID] = m.autoTargets(campaignID)
	}
	return append([]domain.Target(nil), m.targets[campaignID]...), nil
}

func (m *memRepo) SaveCampaign(_ context.Context, c *domain.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.campaigns[cp.ID] = &cp
	return nil
}

func (m *memRepo) SaveAdGroup(_ context.Context, g *domain.AdGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adGroups[g.CampaignID] = append(m.adGroups[g.CampaignID], *g)
	return nil
}

func (m *memRepo) SaveProductAd(_ context.Context, p *domain.ProductAd) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.productAds[p.CampaignID] = append(m.productAds[p.CampaignID], *p)
	return nil
}

func (m *memRepo) SaveKeywords(_ context.Context, kws []domain.Keyword) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range kws {
		m.keywords[k.CampaignID] = append(m.keywords[k.CampaignID], k)
	}
	return nil
}

func (m *memRepo) SaveTargets(_ context.Context, ts []domain.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range ts {
		m.targets[t.CampaignID] = append(m.targets[t.CampaignID], t)
	}
	return nil
}

func (m *memRepo) UpdateTargetStates(_ context.Context, ids []string, state domain.EntityState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	for cid := range m.targets {
		for i := range m.targets[cid] {
			if _, ok := want[m.targets[cid][i].ID]; ok {
				m.targets[cid][i].State = state
			}
		}
	}
	return nil
}

func (m *memRepo) AppendJournal(_ context.Context, e *campaign.JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = append(m.journal, *e)
	return nil
}

func (m *memRepo) MarkJournalPersisted(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.journal {
		if m.journal[i].ID == id {
			m.journal[i].State = campaign.JournalPersisted
		}
	}
	return nil
}

func (m *memRepo) StaleJournal(_ context.Context, olderThan time.Time) ([]campaign.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []campaign.JournalEntry
	for _, e := range m.journal {
		if e.State == campaign.JournalExternalCreated && e.CreatedAt.Before(olderThan) {
			out = append(out, e)
		}
	}
	return out, nil
}

// allKeywords returns every stored keyword across campaigns.
func (m *memRepo) allKeywords() []domain.Keyword {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Keyword
	for _, kws := range m.keywords {
		out = append(out, kws...)
	}
	return out
}

func testBook() *domain.Book {
	return &domain.Book{
		ID:          "book-1",
		ProfileID:   "profile-1",
		ASIN:        "1801019959",
		Title:       "The Gardener's Guide",
		Format:      "Paperback",
		Marketplace: "US",
		Price:       12.99,
	}
}

func testDeps(repo campaign.Repository, stub *amazonads.Stub) campaign.Deps {
	return campaign.Deps{
		Repo:        repo,
		Creator:     stub,
		Batch:       stub,
		Recommender: stub,
		Syncer:      stub,
		Bidding: config.BiddingConfig{
			DefaultBid:               0.50,
			MinBid:                   0.15,
			MaxBid:                   1.25,
			SingleTOSPercent:         5,
			DailyBudget:              10,
			RecommendationTTLMinutes: 60,
		},
		Purposes: config.PurposesConfig{MaxTargets: map[string]int{
			string(domain.PurposeBroadResearch): 50,
			string(domain.PurposeExactScale):    50,
			string(domain.PurposeProductComp):   30,
		}},
		Marketplace: "US",
		SyncWait:    200 * time.Millisecond,
		SyncPoll:    5 * time.Millisecond,
	}
}
