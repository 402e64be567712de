package campaign

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/bookads/internal/domain"
)

// knownFormats is the closed list of advertisable book formats used for
// cross-format negatives.
var knownFormats = []string{"paperback", "kindle", "hardcover", "audiobook"}

// FormatNegatives adds negative phrase keywords for the book formats a
// campaign family is not advertising, so a paperback campaign does not also
// match searches naming the kindle edition.
type FormatNegatives struct {
	repo  Repository
	batch BatchService
}

// NewFormatNegatives creates the service.
func NewFormatNegatives(repo Repository, batch BatchService) *FormatNegatives {
	return &FormatNegatives{repo: repo, batch: batch}
}

// NegativeFormats returns the formats to negate for a book: every known
// format other than the book's own, plus "ebook" when the book itself is
// not the Kindle edition.
func NegativeFormats(book *domain.Book) []string {
	out := make([]string, 0, len(knownFormats))
	for _, f := range knownFormats {
		if !book.MatchesFormat(f) {
			out = append(out, f)
		}
	}
	if !book.IsKindle() {
		out = append(out, "ebook")
	}
	return out
}

// Apply submits one negative phrase keyword per (campaign, other-format)
// pair for every newly created campaign.
func (fn *FormatNegatives) Apply(ctx context.Context, book *domain.Book, created []Created) error {
	formats := NegativeFormats(book)
	for i := range created {
		c, g := &created[i].Campaign, &created[i].AdGroup
		kws := make([]domain.Keyword, len(formats))
		for j, f := range formats {
			kws[j] = domain.Keyword{
				ID:         uuid.New().String(),
				CampaignID: c.ID,
				AdGroupID:  g.ID,
				Text:       f,
				MatchType:  domain.MatchNegativePhrase,
				State:      domain.StateEnabled,
			}
		}
		if err := submitKeywordBatch(ctx, fn.repo, fn.batch, c, g, kws); err != nil {
			return fmt.Errorf("format negatives for %q: %w", c.Name, err)
		}
	}
	return nil
}
