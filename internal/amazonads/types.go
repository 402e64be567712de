// Package amazonads defines the request/response contract with the
// advertising platform adapter. The adapter itself (HTTP client, auth,
// throttling) is a separate deployable; this package only carries the
// shapes both sides agree on, plus an in-memory stub for dry runs and tests.
package amazonads

// Error codes returned inside batch responses. Duplicate-value errors are
// tolerated by the creation flows so re-invocation stays idempotent.
const (
	ErrCodeDuplicateValue       = "duplicateValueError"
	ErrCodeTargetingClauseSetup = "targetingClauseSetupError"
)

// KeywordRequest is one entry in a keyword batch creation call.
type KeywordRequest struct {
	CampaignID int64   `json:"campaignId"`
	AdGroupID  int64   `json:"adGroupId"`
	Text       string  `json:"keywordText"`
	MatchType  string  `json:"matchType"`
	Bid        float64 `json:"bid,omitempty"`
	State      string  `json:"state"`
}

// TargetRequest is one entry in a target batch creation call.
type TargetRequest struct {
	CampaignID      int64   `json:"campaignId"`
	AdGroupID       int64   `json:"adGroupId"`
	ExpressionType  string  `json:"expressionType"`
	ExpressionValue string  `json:"expressionValue,omitempty"`
	Bid             float64 `json:"bid,omitempty"`
	State           string  `json:"state"`
}

// TargetUpdate changes the state of an existing target.
type TargetUpdate struct {
	TargetID int64  `json:"targetId"`
	State    string `json:"state"`
}

// BatchOutcome is the per-entry result of a batch call, aligned by index
// with the request slice. Code is empty on success.
type BatchOutcome struct {
	ExternalID  int64  `json:"id,omitempty"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// BatchResult holds one outcome per submitted entry, in request order.
type BatchResult struct {
	Outcomes []BatchOutcome
}

// BidRange is a bid recommendation. All zeros when the platform has no
// recommendation data for the requested target.
type BidRange struct {
	Low  float64 `json:"rangeStart"`
	Mid  float64 `json:"suggested"`
	High float64 `json:"rangeEnd"`
}
