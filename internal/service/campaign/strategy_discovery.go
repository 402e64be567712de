package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/bookads/internal/amazonads"
	"github.com/ignite/bookads/internal/domain"
	"github.com/ignite/bookads/internal/pkg/logger"
)

// discoveryMatchGroups maps each auto-targeting sub-purpose to its
// preferred resolved expression type. After the platform generates targets,
// every target whose type is one of the other three gets paused, so each
// campaign keeps exactly one targeting signal active.
var discoveryMatchGroups = []struct {
	purpose   domain.Purpose
	preferred domain.ExpressionType
}{
	{domain.PurposeDiscoveryLoose, domain.ExprQueryBroadRelMatches},
	{domain.PurposeDiscoveryClose, domain.ExprQueryHighRelMatches},
	{domain.PurposeDiscoverySubstitutes, domain.ExprASINSubstituteRelated},
	{domain.PurposeDiscoveryComplements, domain.ExprASINAccessoryRelated},
}

var autoExpressionTypes = map[domain.ExpressionType]struct{}{
	domain.ExprQueryBroadRelMatches:  {},
	domain.ExprQueryHighRelMatches:   {},
	domain.ExprASINSubstituteRelated: {},
	domain.ExprASINAccessoryRelated:  {},
}

// discovery creates one auto-targeting campaign per match group, waits for
// the platform-generated targets to sync, and pauses the competing
// expression types in each campaign.
type discovery struct {
	base
	params Params
}

func newDiscovery(d Deps, p Params) Strategy {
	return &discovery{base{deps: d, book: p.Book}, p}
}

func (s *discovery) Create(ctx context.Context) ([]Created, error) {
	bid := s.defaultBid(s.params)

	var out []Created
	preferred := make(map[string]domain.ExpressionType, len(discoveryMatchGroups))
	for _, g := range discoveryMatchGroups {
		exists, err := s.deps.Repo.LiveCampaignExists(ctx, s.book.ID, g.purpose, "")
		if err != nil {
			return out, fmt.Errorf("existence check for %s: %w", g.purpose, err)
		}
		if exists {
			logger.Debug("discovery sub-campaign already live", "purpose", g.purpose, "asin", s.book.ASIN)
			continue
		}
		unit, err := s.createUnit(ctx, g.purpose, domain.BiddingDownOnly, domain.TargetingAuto, bid, nil, nil)
		if err != nil {
			return out, err
		}
		preferred[unit.Campaign.ID] = g.preferred
		out = append(out, *unit)
	}
	if len(out) == 0 {
		return out, nil
	}

	extIDs := make([]int64, len(out))
	for i := range out {
		extIDs[i] = out[i].Campaign.ExternalID
	}
	if err := s.deps.Syncer.SyncTargets(ctx, extIDs); err != nil {
		return out, fmt.Errorf("trigger target sync: %w", err)
	}

	for i := range out {
		if err := s.pauseCompeting(ctx, &out[i], preferred[out[i].Campaign.ID]); err != nil {
			return out, err
		}
	}

	if err := s.formatNegatives().Apply(ctx, s.book, out); err != nil {
		return out, err
	}
	return out, nil
}

// pauseCompeting waits for the campaign's auto-generated targets to appear
// in the store, then pauses every target whose expression type is not the
// campaign's preferred one.
func (s *discovery) pauseCompeting(ctx context.Context, unit *Created, want domain.ExpressionType) error {
	targets, err := s.waitForTargets(ctx, unit.Campaign.ID)
	if err != nil {
		return err
	}

	var updates []amazonads.TargetUpdate
	var localIDs []string
	for _, t := range targets {
		if _, auto := autoExpressionTypes[t.Expression.Type]; !auto || t.Expression.Type == want {
			continue
		}
		updates = append(updates, amazonads.TargetUpdate{TargetID: t.ExternalID, State: string(domain.StatePaused)})
		localIDs = append(localIDs, t.ID)
	}
	if len(updates) == 0 {
		return nil
	}

	res, err := s.deps.Batch.UpdateTargets(ctx, updates)
	if err != nil {
		return fmt.Errorf("pause targets for %q: %w", unit.Campaign.Name, err)
	}
	if _, err := checkOutcomes(res, len(updates)); err != nil {
		return err
	}
	if err := s.deps.Repo.UpdateTargetStates(ctx, localIDs, domain.StatePaused); err != nil {
		return fmt.Errorf("persist paused targets for %q: %w", unit.Campaign.Name, err)
	}
	logger.Info("paused competing targets", "campaign", unit.Campaign.Name, "paused", len(updates), "kept", string(want))
	return nil
}

// waitForTargets polls the store until the sync job has delivered targets
// for the campaign, up to the configured deadline.
func (s *discovery) waitForTargets(ctx context.Context, campaignID string) ([]domain.Target, error) {
	deadline := time.Now().Add(s.deps.SyncWait)
	for {
		targets, err := s.deps.Repo.TargetsForCampaign(ctx, campaignID)
		if err != nil {
			return nil, fmt.Errorf("load synced targets: %w", err)
		}
		if len(targets) > 0 {
			return targets, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: campaign %s", ErrSyncTimeout, campaignID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.deps.SyncPoll):
		}
	}
}
