package amazonads

import (
	"context"
	"sync"

	"github.com/ignite/bookads/internal/domain"
)

// Stub is an in-memory advertising platform used when the worker runs in
// dry-run mode and by service tests. It assigns sequential external IDs and
// records every call. Per-value error codes and bid ranges can be injected
// to exercise failure handling.
type Stub struct {
	mu     sync.Mutex
	nextID int64

	// Recorded calls, in order.
	Campaigns     []*domain.Campaign
	AdGroups      []*domain.AdGroup
	ProductAds    []*domain.ProductAd
	Keywords      []KeywordRequest
	Targets       []TargetRequest
	TargetUpdates []TargetUpdate
	Synced        [][]int64

	// Injected behavior.
	CampaignErr   error
	KeywordErrors map[string]string // keyword text -> error code
	TargetErrors  map[string]string // expression value -> error code
	Bids          map[string]BidRange
	SyncErr       error
}

// NewStub creates an empty stub platform.
func NewStub() *Stub {
	return &Stub{
		KeywordErrors: make(map[string]string),
		TargetErrors:  make(map[string]string),
		Bids:          make(map[string]BidRange),
	}
}

func (s *Stub) next() int64 {
	s.nextID++
	return s.nextID
}

// CreateCampaign assigns an external ID to the campaign descriptor.
func (s *Stub) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CampaignErr != nil {
		return s.CampaignErr
	}
	c.ExternalID = s.next()
	s.Campaigns = append(s.Campaigns, c)
	return nil
}

// CreateAdGroup assigns an external ID to the ad group descriptor.
func (s *Stub) CreateAdGroup(_ context.Context, g *domain.AdGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ExternalID = s.next()
	s.AdGroups = append(s.AdGroups, g)
	return nil
}

// CreateProductAd assigns an external ID to the product ad descriptor.
func (s *Stub) CreateProductAd(_ context.Context, p *domain.ProductAd) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ExternalID = s.next()
	s.ProductAds = append(s.ProductAds, p)
	return nil
}

// CreateKeywords returns one outcome per request, using injected error
// codes where present.
func (s *Stub) CreateKeywords(_ context.Context, reqs []KeywordRequest) (BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := BatchResult{Outcomes: make([]BatchOutcome, len(reqs))}
	for i, r := range reqs {
		s.Keywords = append(s.Keywords, r)
		if code, ok := s.KeywordErrors[r.Text]; ok {
			res.Outcomes[i] = BatchOutcome{Code: code, Description: "injected"}
			continue
		}
		res.Outcomes[i] = BatchOutcome{ExternalID: s.next()}
	}
	return res, nil
}

// CreateTargets returns one outcome per request, using injected error
// codes where present.
func (s *Stub) CreateTargets(_ context.Context, reqs []TargetRequest) (BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := BatchResult{Outcomes: make([]BatchOutcome, len(reqs))}
	for i, r := range reqs {
		s.Targets = append(s.Targets, r)
		if code, ok := s.TargetErrors[r.ExpressionValue]; ok {
			res.Outcomes[i] = BatchOutcome{Code: code, Description: "injected"}
			continue
		}
		res.Outcomes[i] = BatchOutcome{ExternalID: s.next()}
	}
	return res, nil
}

// UpdateTargets records the updates and reports success for each.
func (s *Stub) UpdateTargets(_ context.Context, updates []TargetUpdate) (BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := BatchResult{Outcomes: make([]BatchOutcome, len(updates))}
	for i, u := range updates {
		s.TargetUpdates = append(s.TargetUpdates, u)
		res.Outcomes[i] = BatchOutcome{ExternalID: u.TargetID}
	}
	return res, nil
}

// BidRecommendations returns the injected range for the value, or all
// zeros when none is configured.
func (s *Stub) BidRecommendations(_ context.Context, _, _ int64, value string, _ domain.ExpressionType) (BidRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Bids[value], nil
}

// SyncTargets records the sync trigger.
func (s *Stub) SyncTargets(_ context.Context, campaignIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SyncErr != nil {
		return s.SyncErr
	}
	s.Synced = append(s.Synced, campaignIDs)
	return nil
}
