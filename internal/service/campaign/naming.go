package campaign

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/ignite/bookads/internal/domain"
)

// Namer derives a deterministic, collision-avoiding campaign name of the
// form {acronym}-SP-{purpose}-{sequence}-{asin}-{format}. The sequence is
// the count of persisted campaigns matching the same ASIN, profile, format
// and purpose, plus one. The name is computed once and cached; repeated
// calls return the same string without another count query.
type Namer struct {
	repo    Repository
	book    *domain.Book
	purpose domain.Purpose
	name    string
}

// NewNamer creates a namer for one campaign-to-be.
func NewNamer(repo Repository, book *domain.Book, purpose domain.Purpose) *Namer {
	return &Namer{repo: repo, book: book, purpose: purpose}
}

// Name returns the campaign name, computing it on first call.
func (n *Namer) Name(ctx context.Context) (string, error) {
	if n.name != "" {
		return n.name, nil
	}
	count, err := n.repo.CountCampaignsLike(ctx, n.book.ASIN, n.book.ProfileID, n.book.FormatToken(), string(n.purpose))
	if err != nil {
		return "", fmt.Errorf("count campaigns for name: %w", err)
	}
	n.name = fmt.Sprintf("%s-SP-%s-%d-%s-%s",
		TitleAcronym(n.book.Title), n.purpose, count+1, n.book.ASIN, n.book.FormatToken())
	return n.name, nil
}

// TitleAcronym builds an acronym from the first letter of each word of a
// book title ("The Gardener's Guide" -> "TGG"). Words not starting with a
// letter or digit are skipped.
func TitleAcronym(title string) string {
	var b strings.Builder
	for _, word := range strings.Fields(title) {
		r := []rune(word)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
