package campaign_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ignite/bookads/internal/amazonads"
	"github.com/ignite/bookads/internal/domain"
	"github.com/ignite/bookads/internal/service/campaign"
)

var discoveryPreferred = map[domain.Purpose]domain.ExpressionType{
	domain.PurposeDiscoveryLoose:       domain.ExprQueryBroadRelMatches,
	domain.PurposeDiscoveryClose:       domain.ExprQueryHighRelMatches,
	domain.PurposeDiscoverySubstitutes: domain.ExprASINSubstituteRelated,
	domain.PurposeDiscoveryComplements: domain.ExprASINAccessoryRelated,
}

// syncedTargets simulates the platform sync delivering one auto-generated
// target per expression type.
func syncedTargets(campaignID string) []domain.Target {
	types := []domain.ExpressionType{
		domain.ExprQueryBroadRelMatches,
		domain.ExprQueryHighRelMatches,
		domain.ExprASINSubstituteRelated,
		domain.ExprASINAccessoryRelated,
	}
	out := make([]domain.Target, len(types))
	for i, tp := range types {
		out[i] = domain.Target{
			ID:         fmt.Sprintf("%s-t%d", campaignID, i),
			CampaignID: campaignID,
			ExternalID: int64(9000 + i),
			Expression: domain.TargetExpression{Type: tp},
			State:      domain.StateEnabled,
		}
	}
	return out
}

func TestDiscoveryPausesCompetingMatchGroups(t *testing.T) {
	repo := newMemRepo()
	repo.autoTargets = syncedTargets
	stub := amazonads.NewStub()
	ctx := context.Background()

	s, err := campaign.New(domain.PurposeDiscovery, testDeps(repo, stub), campaign.Params{Book: testBook()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	created, err := s.Create(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("expected 4 campaigns, got %d", len(created))
	}
	if len(stub.Synced) != 1 || len(stub.Synced[0]) != 4 {
		t.Fatalf("expected one sync trigger covering 4 campaigns, got %v", stub.Synced)
	}

	for _, c := range created {
		if c.Campaign.TargetingType != domain.TargetingAuto {
			t.Errorf("campaign %s: expected auto targeting", c.Campaign.Name)
		}
		want, ok := discoveryPreferred[c.Campaign.Purpose]
		if !ok {
			t.Fatalf("unexpected purpose %s", c.Campaign.Purpose)
		}
		targets, _ := repo.TargetsForCampaign(ctx, c.Campaign.ID)
		for _, tg := range targets {
			if tg.Expression.Type == want && tg.State != domain.StateEnabled {
				t.Errorf("campaign %s: preferred %s was paused", c.Campaign.Name, want)
			}
			if tg.Expression.Type != want && tg.State != domain.StatePaused {
				t.Errorf("campaign %s: competing %s left %s", c.Campaign.Name, tg.Expression.Type, tg.State)
			}
		}
	}

	// 3 competing types paused per campaign
	if len(stub.TargetUpdates) != 12 {
		t.Errorf("expected 12 pause updates, got %d", len(stub.TargetUpdates))
	}
	// each campaign gets the 4 paperback format negatives
	if len(stub.Keywords) != 16 {
		t.Errorf("expected 16 negative keywords, got %d", len(stub.Keywords))
	}
}

func TestDiscoverySkipsLiveSubPurposes(t *testing.T) {
	repo := newMemRepo()
	repo.autoTargets = syncedTargets
	stub := amazonads.NewStub()
	book := testBook()
	repo.campaigns["live"] = &domain.Campaign{
		ID:      "live",
		BookID:  book.ID,
		Purpose: domain.PurposeDiscoveryClose,
		State:   domain.StateEnabled,
	}

	s, _ := campaign.New(domain.PurposeDiscovery, testDeps(repo, stub), campaign.Params{Book: book})
	created, err := s.Create(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 campaigns, got %d", len(created))
	}
	for _, c := range created {
		if c.Campaign.Purpose == domain.PurposeDiscoveryClose {
			t.Fatalf("expected close-match purpose skipped, got %s", c.Campaign.Name)
		}
	}
}

func TestDiscoverySyncTimeout(t *testing.T) {
	repo := newMemRepo() // no autoTargets: the sync never delivers
	stub := amazonads.NewStub()
	deps := testDeps(repo, stub)
	deps.SyncWait = 20 * time.Millisecond
	deps.SyncPoll = 5 * time.Millisecond

	s, _ := campaign.New(domain.PurposeDiscovery, deps, campaign.Params{Book: testBook()})
	_, err := s.Create(context.Background())
	if !errors.Is(err, campaign.ErrSyncTimeout) {
		t.Fatalf("expected ErrSyncTimeout, got %v", err)
	}
}
