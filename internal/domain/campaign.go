package domain

import (
	"strings"
	"time"
)

// Purpose tags a campaign with the strategy that created it. The tag is part
// of the campaign name and drives duplicate scoping, so values are stable.
type Purpose string

const (
	PurposeAutoGP              Purpose = "Auto-GP"
	PurposeGP                  Purpose = "GP"
	PurposeBroadResearch       Purpose = "Broad-Research"
	PurposeBroadResearchSingle Purpose = "Broad-Research-Single"
	PurposeExactScale          Purpose = "Exact-Scale"
	PurposeExactScaleSingle    Purpose = "Exact-Scale-Single"
	PurposeDiscovery           Purpose = "Auto-Discovery"
	PurposeProductComp         Purpose = "Product-Comp"
	PurposeProductOwn          Purpose = "Product-Own"
	PurposeProductSelf         Purpose = "Product-Self"
	PurposeProductExp          Purpose = "Product-Exp"
	PurposeCatResearch         Purpose = "Cat-Research"

	// Discovery sub-purposes: one auto-targeting campaign per match group.
	PurposeDiscoveryLoose       Purpose = "Auto-Discovery-Loose-Match"
	PurposeDiscoveryClose       Purpose = "Auto-Discovery-Close-Match"
	PurposeDiscoverySubstitutes Purpose = "Auto-Discovery-Substitutes"
	PurposeDiscoveryComplements Purpose = "Auto-Discovery-Complements"
)

// BiddingStrategy is the platform-level bid adjustment policy.
type BiddingStrategy string

const (
	BiddingDownOnly  BiddingStrategy = "legacyForSales"
	BiddingUpAndDown BiddingStrategy = "autoForSales"
	BiddingFixed     BiddingStrategy = "manual"
)

// TargetingType distinguishes auto-targeted campaigns (the platform picks
// targets) from manually targeted ones.
type TargetingType string

const (
	TargetingAuto   TargetingType = "auto"
	TargetingManual TargetingType = "manual"
)

// EntityState is the lifecycle state shared by campaigns, ad groups,
// product ads, keywords and targets.
type EntityState string

const (
	StateEnabled  EntityState = "enabled"
	StatePaused   EntityState = "paused"
	StateArchived EntityState = "archived"
)

// Campaign is the descriptor for a Sponsored Products campaign. ExternalID
// is zero until the advertising platform assigns one at creation time and
// is never changed afterwards.
type Campaign struct {
	ID              string          `json:"id" db:"id"`
	BookID          string          `json:"book_id" db:"book_id"`
	ProfileID       string          `json:"profile_id" db:"profile_id"`
	ExternalID      int64           `json:"external_id" db:"external_id"`
	Name            string          `json:"name" db:"name"`
	Purpose         Purpose         `json:"purpose" db:"purpose"`
	BiddingStrategy BiddingStrategy `json:"bidding_strategy" db:"bidding_strategy"`
	TargetingType   TargetingType   `json:"targeting_type" db:"targeting_type"`
	State           EntityState     `json:"state" db:"state"`
	DailyBudget     float64         `json:"daily_budget" db:"daily_budget"`

	// Placement multipliers in percent; nil when unset.
	TopOfSearchPct *int `json:"top_of_search_pct" db:"top_of_search_pct"`
	ProductPagePct *int `json:"product_page_pct" db:"product_page_pct"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsLive reports whether the campaign is enabled and not archived.
func (c *Campaign) IsLive() bool {
	return c.State == StateEnabled
}

// NameContains reports whether the campaign name contains every given
// fragment, case-insensitively. Single-keyword strategies scope their
// duplicate checks by name fragments.
func (c *Campaign) NameContains(fragments ...string) bool {
	name := strings.ToLower(c.Name)
	for _, f := range fragments {
		if !strings.Contains(name, strings.ToLower(f)) {
			return false
		}
	}
	return true
}

// AdGroup belongs to exactly one campaign. The creation flows maintain a
// single enabled ad group per campaign.
type AdGroup struct {
	ID         string      `json:"id" db:"id"`
	CampaignID string      `json:"campaign_id" db:"campaign_id"`
	ExternalID int64       `json:"external_id" db:"external_id"`
	Name       string      `json:"name" db:"name"`
	DefaultBid float64     `json:"default_bid" db:"default_bid"`
	State      EntityState `json:"state" db:"state"`
}

// ProductAd advertises one book ASIN within a (campaign, ad group) pair.
// At most one product ad exists per (campaign, ad group, ASIN).
type ProductAd struct {
	ID         string      `json:"id" db:"id"`
	CampaignID string      `json:"campaign_id" db:"campaign_id"`
	AdGroupID  string      `json:"ad_group_id" db:"ad_group_id"`
	ExternalID int64       `json:"external_id" db:"external_id"`
	ASIN       string      `json:"asin" db:"asin"`
	State      EntityState `json:"state" db:"state"`
}
