package campaign

import (
	"context"
	"time"

	"github.com/ignite/bookads/internal/domain"
)

// Repository defines the data access contract for the campaign layer.
// Implementations must be safe for concurrent use.
type Repository interface {
	// LiveCampaignExists reports whether an enabled campaign with the given
	// purpose exists for the book. An empty bidding strategy matches any.
	LiveCampaignExists(ctx context.Context, bookID string, purpose domain.Purpose, bidding domain.BiddingStrategy) (bool, error)

	// CountCampaignsLike counts persisted campaigns matching the book ASIN,
	// profile, format token and a purpose substring of the campaign name.
	// Used by the name generator to derive the next sequence number.
	CountCampaignsLike(ctx context.Context, asin, profileID, formatToken, purposeFragment string) (int, error)

	// OpenCampaigns returns the enabled, non-archived campaigns of the
	// given purpose for a book, oldest first.
	OpenCampaigns(ctx context.Context, bookID string, purpose domain.Purpose) ([]domain.Campaign, error)

	// AdGroups returns the ad groups of a campaign.
	AdGroups(ctx context.Context, campaignID string) ([]domain.AdGroup, error)

	// KeywordCount returns the number of non-negative keywords in a campaign.
	KeywordCount(ctx context.Context, campaignID string) (int, error)

	// KeywordTexts returns the keyword texts already persisted for the
	// book's enabled, non-archived campaigns of the given purpose and
	// match type.
	KeywordTexts(ctx context.Context, bookID string, purpose domain.Purpose, match domain.MatchType) (map[string]struct{}, error)

	// KeywordTextsByName is like KeywordTexts but scopes by campaign name
	// fragments instead of purpose. Single-keyword strategies dedupe
	// against every campaign whose name contains all fragments.
	KeywordTextsByName(ctx context.Context, bookID string, nameFragments []string, match domain.MatchType) (map[string]struct{}, error)

	// TargetValues returns the targeting expression values persisted for
	// the book's campaigns of the given purpose and expression type.
	TargetValues(ctx context.Context, bookID string, purpose domain.Purpose, exprType domain.ExpressionType) (map[string]struct{}, error)

	// TargetValuesForCampaign returns the expression values of one
	// campaign's targets of the given expression type.
	TargetValuesForCampaign(ctx context.Context, campaignID string, exprType domain.ExpressionType) (map[string]struct{}, error)

	// ProductAdExists reports whether the campaign already advertises the ASIN.
	ProductAdExists(ctx context.Context, campaignID, asin string) (bool, error)

	// TargetsForCampaign returns all targets synced for a campaign.
	TargetsForCampaign(ctx context.Context, campaignID string) ([]domain.Target, error)

	SaveCampaign(ctx context.Context, c *domain.Campaign) error
	SaveAdGroup(ctx context.Context, g *domain.AdGroup) error
	SaveProductAd(ctx context.Context, p *domain.ProductAd) error
	SaveKeywords(ctx context.Context, kws []domain.Keyword) error
	SaveTargets(ctx context.Context, ts []domain.Target) error

	// UpdateTargetStates transitions the given local targets to a state.
	UpdateTargetStates(ctx context.Context, ids []string, state domain.EntityState) error

	// AppendJournal records a creation step. Entries in state
	// JournalExternalCreated that never reach JournalPersisted mark
	// entities that exist on the platform but not locally.
	AppendJournal(ctx context.Context, e *JournalEntry) error

	// MarkJournalPersisted transitions a journal entry to JournalPersisted.
	MarkJournalPersisted(ctx context.Context, id string) error

	// StaleJournal returns unpersisted journal entries older than the
	// given cutoff, for reconciliation reporting.
	StaleJournal(ctx context.Context, olderThan time.Time) ([]JournalEntry, error)
}

// Journal entry states.
const (
	JournalExternalCreated = "external_created"
	JournalPersisted       = "persisted"
)

// JournalEntry records one external creation step. A row is appended after
// the platform call succeeds and marked persisted after the local record is
// written, so a crash between the two leaves a detectable trace instead of
// a silently diverged store.
type JournalEntry struct {
	ID         string         `json:"id" db:"id"`
	BookID     string         `json:"book_id" db:"book_id"`
	Purpose    domain.Purpose `json:"purpose" db:"purpose"`
	EntityKind string         `json:"entity_kind" db:"entity_kind"`
	LocalID    string         `json:"local_id" db:"local_id"`
	ExternalID int64          `json:"external_id" db:"external_id"`
	State      string         `json:"state" db:"state"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}
