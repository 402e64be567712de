// Package campaign implements campaign creation orchestration.
//
// A family of strategies partitions keywords and product targets into
// size-bounded campaigns, filters duplicates against persisted state,
// derives bids from fixed defaults or platform recommendations, and adds
// format negative keywords. The factory maps a campaign purpose to its
// strategy.
//
// The package depends on the Repository interface defined here and on the
// platform collaborator interfaces in platform.go; it never talks to
// Postgres or the advertising API directly. Repository implementations
// live in repository/postgres/.
package campaign
