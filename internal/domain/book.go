package domain

import (
	"strings"
	"time"
)

// Known book formats as they appear in catalog data. Format strings from the
// catalog can be compound ("Mass Market Paperback"), so comparisons go
// through FormatToken / MatchesFormat rather than raw equality.
const (
	FormatPaperback = "Paperback"
	FormatKindle    = "Kindle"
	FormatHardcover = "Hardcover"
	FormatAudiobook = "Audiobook"
)

// Book represents one published work in one marketplace. Books are created
// by catalog ingestion; the campaign layer only reads them.
type Book struct {
	ID            string    `json:"id" db:"id"`
	ProfileID     string    `json:"profile_id" db:"profile_id"`
	ASIN          string    `json:"asin" db:"asin"`
	Title         string    `json:"title" db:"title"`
	Format        string    `json:"format" db:"format"`
	Marketplace   string    `json:"marketplace" db:"marketplace"`
	Price         float64   `json:"price" db:"price"`
	BreakEvenACOS float64   `json:"break_even_acos" db:"break_even_acos"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// FormatToken returns the first whitespace-delimited token of the format
// string ("Mass Market Paperback" -> "Mass"). Used in campaign names.
func (b *Book) FormatToken() string {
	fields := strings.Fields(b.Format)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// MatchesFormat reports whether the book's format contains the given format
// word, case-insensitively.
func (b *Book) MatchesFormat(format string) bool {
	return strings.Contains(strings.ToLower(b.Format), strings.ToLower(format))
}

// IsKindle reports whether the book is a Kindle edition.
func (b *Book) IsKindle() bool {
	return b.MatchesFormat(FormatKindle)
}
