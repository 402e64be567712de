package campaign

import (
	"context"
	"fmt"
	"strings"
)

// ExistingTexts supplies the texts or expression values already persisted
// for a book and scope. Strategies bind this to the Repository query that
// matches their purpose and match type.
type ExistingTexts func(ctx context.Context) (map[string]struct{}, error)

// FilterDuplicates removes from the working set every entry already present
// in the supplier's set, comparing case-insensitively. The working set is
// mutated in place. Every strategy runs this before creating anything, so
// re-invoking a strategy with the same input never submits a keyword or
// target twice.
func FilterDuplicates(ctx context.Context, working map[string]struct{}, supplier ExistingTexts) error {
	existing, err := supplier(ctx)
	if err != nil {
		return fmt.Errorf("load existing entries: %w", err)
	}
	if len(existing) == 0 || len(working) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(existing))
	for t := range existing {
		seen[strings.ToLower(t)] = struct{}{}
	}
	for w := range working {
		if _, ok := seen[strings.ToLower(w)]; ok {
			delete(working, w)
		}
	}
	return nil
}
