package campaign_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ignite/bookads/internal/amazonads"
	"github.com/ignite/bookads/internal/domain"
	"github.com/ignite/bookads/internal/service/campaign"
)

func TestSingleKeywordOneCampaignPerKeyword(t *testing.T) {
	repo := newMemRepo()
	stub := amazonads.NewStub()
	stub.Bids["container garden"] = amazonads.BidRange{Low: 0.40, Mid: 1.30, High: 2.10}

	s, err := campaign.New(domain.PurposeBroadResearchSingle, testDeps(repo, stub), campaign.Params{
		Book:     testBook(),
		Keywords: []string{"Container Gardens", "herb spiral"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created, err := s.Create(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 campaigns, got %d", len(created))
	}
	for _, c := range created {
		if c.Campaign.TopOfSearchPct == nil || *c.Campaign.TopOfSearchPct != 5 {
			t.Errorf("expected top-of-search 5%% on %s", c.Campaign.Name)
		}
	}

	bids := make(map[string]float64, len(stub.Keywords))
	for _, k := range stub.Keywords {
		bids[k.Text] = k.Bid
	}
	// recommended 1.30 clamps to 2*default; no recommendation falls back to default
	if bids["container garden"] != 1.00 {
		t.Errorf("expected clamped bid 1.00, got %v", bids["container garden"])
	}
	if bids["herb spiral"] != 0.50 {
		t.Errorf("expected default bid 0.50, got %v", bids["herb spiral"])
	}
}

func TestSingleKeywordDedupesByNameScope(t *testing.T) {
	repo := newMemRepo()
	stub := amazonads.NewStub()
	book := testBook()
	ctx := context.Background()

	prior := &domain.Campaign{
		ID:        uuid.New().String(),
		BookID:    book.ID,
		ProfileID: book.ProfileID,
		Name:      "TGG-SP-Broad-Research-Single-1-1801019959-Paperback",
		Purpose:   domain.PurposeBroadResearchSingle,
		State:     domain.StateEnabled,
	}
	if err := repo.SaveCampaign(ctx, prior); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveKeywords(ctx, []domain.Keyword{{
		ID:         uuid.New().String(),
		CampaignID: prior.ID,
		Text:       "herb spiral",
		MatchType:  domain.MatchBroad,
		State:      domain.StateEnabled,
	}}); err != nil {
		t.Fatal(err)
	}

	s, _ := campaign.New(domain.PurposeBroadResearchSingle, testDeps(repo, stub), campaign.Params{
		Book:     book,
		Keywords: []string{"herb spiral", "container gardens"},
	})
	created, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected only the new keyword's campaign, got %d", len(created))
	}
	if len(stub.Keywords) != 1 || stub.Keywords[0].Text != "container garden" {
		t.Fatalf("expected only %q submitted, got %+v", "container garden", stub.Keywords)
	}
}
