package campaign_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/ignite/bookads/internal/amazonads"
	"github.com/ignite/bookads/internal/domain"
	"github.com/ignite/bookads/internal/service/campaign"
)

func researchKeywords(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("gardening term %03d", i)
	}
	return out
}

func TestBroadResearchPartitionsByMaxTargets(t *testing.T) {
	repo := newMemRepo()
	stub := amazonads.NewStub()

	s, err := campaign.New(domain.PurposeBroadResearch, testDeps(repo, stub), campaign.Params{
		Book:     testBook(),
		Keywords: researchKeywords(120),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created, err := s.Create(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 120 keywords at 50 per campaign -> 3 campaigns
	if len(created) != 3 {
		t.Fatalf("expected 3 campaigns, got %d", len(created))
	}
	for _, c := range created {
		n, err := repo.KeywordCount(context.Background(), c.Campaign.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n > 50 {
			t.Errorf("campaign %s holds %d keywords, cap is 50", c.Campaign.Name, n)
		}
	}

	// paperback book negates the other three formats plus ebook
	negatives := 0
	for _, k := range stub.Keywords {
		if k.MatchType == string(domain.MatchNegativePhrase) {
			negatives++
		}
	}
	if negatives != 3*4 {
		t.Errorf("expected 12 negative keywords, got %d", negatives)
	}
}

func TestBroadResearchReinvocationIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	stub := amazonads.NewStub()
	deps := testDeps(repo, stub)
	params := campaign.Params{Book: testBook(), Keywords: researchKeywords(30)}

	s, _ := campaign.New(domain.PurposeBroadResearch, deps, params)
	if _, err := s.Create(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	campaignsAfterFirst := len(repo.campaigns)
	keywordsAfterFirst := len(repo.allKeywords())

	s, _ = campaign.New(domain.PurposeBroadResearch, deps, params)
	created, err := s.Create(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected no new campaigns on re-invocation, got %d", len(created))
	}
	if len(repo.campaigns) != campaignsAfterFirst || len(repo.allKeywords()) != keywordsAfterFirst {
		t.Fatalf("re-invocation changed stored state: %d->%d campaigns, %d->%d keywords",
			campaignsAfterFirst, len(repo.campaigns), keywordsAfterFirst, len(repo.allKeywords()))
	}
}

func TestBroadResearchTopsUpExistingCampaign(t *testing.T) {
	repo := newMemRepo()
	stub := amazonads.NewStub()
	book := testBook()
	ctx := context.Background()

	// existing campaign with one ad group and 40 of 50 slots used
	existing := &domain.Campaign{
		ID:              uuid.New().String(),
		BookID:          book.ID,
		ProfileID:       book.ProfileID,
		Name:            "TGG-SP-Broad-Research-1-1801019959-Paperback",
		Purpose:         domain.PurposeBroadResearch,
		BiddingStrategy: domain.BiddingDownOnly,
		TargetingType:   domain.TargetingManual,
		State:           domain.StateEnabled,
		ExternalID:      1001,
	}
	group := &domain.AdGroup{ID: uuid.New().String(), CampaignID: existing.ID, ExternalID: 1002, State: domain.StateEnabled}
	if err := repo.SaveCampaign(ctx, existing); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveAdGroup(ctx, group); err != nil {
		t.Fatal(err)
	}
	var seeded []domain.Keyword
	for i := 0; i < 40; i++ {
		seeded = append(seeded, domain.Keyword{
			ID:         uuid.New().String(),
			CampaignID: existing.ID,
			AdGroupID:  group.ID,
			Text:       fmt.Sprintf("seeded term %02d", i),
			MatchType:  domain.MatchBroad,
			State:      domain.StateEnabled,
		})
	}
	if err := repo.SaveKeywords(ctx, seeded); err != nil {
		t.Fatal(err)
	}

	s, _ := campaign.New(domain.PurposeBroadResearch, testDeps(repo, stub), campaign.Params{
		Book:     book,
		Keywords: researchKeywords(15),
	})
	created, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 10 slots filled in the existing campaign, 5 left for one new campaign
	if len(created) != 1 {
		t.Fatalf("expected 1 new campaign, got %d", len(created))
	}
	count, _ := repo.KeywordCount(ctx, existing.ID)
	if count != 50 {
		t.Errorf("expected existing campaign topped up to 50, got %d", count)
	}
	count, _ = repo.KeywordCount(ctx, created[0].Campaign.ID)
	if count != 5 {
		t.Errorf("expected 5 keywords in new campaign, got %d", count)
	}
}

func TestExactScaleSkipsFormatNegatives(t *testing.T) {
	repo := newMemRepo()
	stub := amazonads.NewStub()

	s, _ := campaign.New(domain.PurposeExactScale, testDeps(repo, stub), campaign.Params{
		Book:     testBook(),
		Keywords: researchKeywords(5),
	})
	created, err := s.Create(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 campaign, got %d", len(created))
	}
	for _, k := range stub.Keywords {
		if k.MatchType != string(domain.MatchExact) {
			t.Errorf("expected only exact keywords, got %+v", k)
		}
	}
}
