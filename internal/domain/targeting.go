package domain

// MatchType is the matching strategy for a keyword, or its negative
// counterpart.
type MatchType string

const (
	MatchExact          MatchType = "exact"
	MatchPhrase         MatchType = "phrase"
	MatchBroad          MatchType = "broad"
	MatchNegativeExact  MatchType = "negativeExact"
	MatchNegativePhrase MatchType = "negativePhrase"
)

// IsNegative reports whether the match type is a negative variant.
func (m MatchType) IsNegative() bool {
	return m == MatchNegativeExact || m == MatchNegativePhrase
}

// ExpressionType classifies a targeting expression. The query* types are
// resolved from auto-targeting campaigns; the asin* types are used for
// manual product targeting.
type ExpressionType string

const (
	ExprQueryHighRelMatches   ExpressionType = "queryHighRelMatches"
	ExprQueryBroadRelMatches  ExpressionType = "queryBroadRelMatches"
	ExprASINSubstituteRelated ExpressionType = "asinSubstituteRelated"
	ExprASINAccessoryRelated  ExpressionType = "asinAccessoryRelated"
	ExprASINSameAs            ExpressionType = "asinSameAs"
	ExprASINExpandedFrom      ExpressionType = "asinExpandedFrom"
)

// TargetExpression is a structured targeting predicate: a type plus a value
// (an ASIN for the asin* types, empty for resolved auto expressions).
type TargetExpression struct {
	Type  ExpressionType `json:"type" db:"expression_type"`
	Value string         `json:"value" db:"expression_value"`
}

// Keyword is a single positive or negative text targeting clause within a
// campaign + ad group. ExternalID is zero until platform-assigned.
type Keyword struct {
	ID         string      `json:"id" db:"id"`
	CampaignID string      `json:"campaign_id" db:"campaign_id"`
	AdGroupID  string      `json:"ad_group_id" db:"ad_group_id"`
	ExternalID int64       `json:"external_id" db:"external_id"`
	Text       string      `json:"text" db:"text"`
	MatchType  MatchType   `json:"match_type" db:"match_type"`
	Bid        float64     `json:"bid" db:"bid"`
	State      EntityState `json:"state" db:"state"`
}

// Target is a single structured targeting clause within a campaign + ad
// group. Targets in auto campaigns are created by the platform and synced
// back; manual product targets are created by the product strategies.
type Target struct {
	ID         string           `json:"id" db:"id"`
	CampaignID string           `json:"campaign_id" db:"campaign_id"`
	AdGroupID  string           `json:"ad_group_id" db:"ad_group_id"`
	ExternalID int64            `json:"external_id" db:"external_id"`
	Expression TargetExpression `json:"expression" db:"expression"`
	Bid        float64          `json:"bid" db:"bid"`
	State      EntityState      `json:"state" db:"state"`
}
