package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ignite/bookads/internal/domain"
	"github.com/ignite/bookads/internal/service/campaign"
)

// CampaignRepo implements campaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) LiveCampaignExists(ctx context.Context, bookID string, purpose domain.Purpose, bidding domain.BiddingStrategy) (bool, error) {
	q := `SELECT EXISTS (
		SELECT 1 FROM ads_campaigns
		WHERE book_id = $1 AND purpose = $2 AND state = 'enabled'`
	args := []interface{}{bookID, purpose}
	if bidding != "" {
		q += ` AND bidding_strategy = $3`
		args = append(args, bidding)
	}
	q += `)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("live campaign exists: %w", err)
	}
	return exists, nil
}

func (r *CampaignRepo) CountCampaignsLike(ctx context.Context, asin, profileID, formatToken, purposeFragment string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ads_campaigns
		WHERE profile_id = $1
		  AND name LIKE '%' || $2 || '%'
		  AND name LIKE '%' || $3 || '%'
		  AND name LIKE '%' || $4 || '%'
	`, profileID, asin, formatToken, purposeFragment).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count campaigns like: %w", err)
	}
	return n, nil
}

const campaignCols = `id, book_id, profile_id, external_id, name, purpose,
	       bidding_strategy, targeting_type, state, daily_budget,
	       top_of_search_pct, product_page_pct, created_at, updated_at`

func scanCampaign(row interface{ Scan(...interface{}) error }) (domain.Campaign, error) {
	var c domain.Campaign
	var tos, pp sql.NullInt64
	err := row.Scan(
		&c.ID, &c.BookID, &c.ProfileID, &c.ExternalID, &c.Name, &c.Purpose,
		&c.BiddingStrategy, &c.TargetingType, &c.State, &c.DailyBudget,
		&tos, &pp, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}
	if tos.Valid {
		v := int(tos.Int64)
		c.TopOfSearchPct = &v
	}
	if pp.Valid {
		v := int(pp.Int64)
		c.ProductPagePct = &v
	}
	return c, nil
}

func (r *CampaignRepo) OpenCampaigns(ctx context.Context, bookID string, purpose domain.Purpose) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+campaignCols+`
		FROM ads_campaigns
		WHERE book_id = $1 AND purpose = $2 AND state = 'enabled'
		ORDER BY created_at
	`, bookID, purpose)
	if err != nil {
		return nil, fmt.Errorf("open campaigns: %w", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) AdGroups(ctx context.Context, campaignID string) ([]domain.AdGroup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, campaign_id, external_id, name, default_bid, state
		FROM ads_ad_groups
		WHERE campaign_id = $1
		ORDER BY created_at
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("ad groups: %w", err)
	}
	defer rows.Close()

	var out []domain.AdGroup
	for rows.Next() {
		var g domain.AdGroup
		if err := rows.Scan(&g.ID, &g.CampaignID, &g.ExternalID, &g.Name, &g.DefaultBid, &g.State); err != nil {
			return nil, fmt.Errorf("scan ad group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) KeywordCount(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ads_keywords
		WHERE campaign_id = $1 AND match_type NOT IN ('negativeExact','negativePhrase')
	`, campaignID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("keyword count: %w", err)
	}
	return n, nil
}

func (r *CampaignRepo) KeywordTexts(ctx context.Context, bookID string, purpose domain.Purpose, match domain.MatchType) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT k.text
		FROM ads_keywords k
		JOIN ads_campaigns c ON c.id = k.campaign_id
		WHERE c.book_id = $1 AND c.purpose = $2 AND c.state != 'archived'
		  AND k.match_type = $3
	`, bookID, purpose, match)
	if err != nil {
		return nil, fmt.Errorf("keyword texts: %w", err)
	}
	defer rows.Close()
	return scanTextSet(rows)
}

func (r *CampaignRepo) KeywordTextsByName(ctx context.Context, bookID string, fragments []string, match domain.MatchType) (map[string]struct{}, error) {
	q := `
		SELECT k.text
		FROM ads_keywords k
		JOIN ads_campaigns c ON c.id = k.campaign_id
		WHERE c.book_id = $1 AND k.match_type = $2`
	args := []interface{}{bookID, match}
	for i, f := range fragments {
		q += fmt.Sprintf(" AND c.name LIKE '%%' || $%d || '%%'", i+3)
		args = append(args, f)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("keyword texts by name: %w", err)
	}
	defer rows.Close()
	return scanTextSet(rows)
}

func (r *CampaignRepo) TargetValues(ctx context.Context, bookID string, purpose domain.Purpose, exprType domain.ExpressionType) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.expression_value
		FROM ads_targets t
		JOIN ads_campaigns c ON c.id = t.campaign_id
		WHERE c.book_id = $1 AND c.purpose = $2 AND t.expression_type = $3
	`, bookID, purpose, exprType)
	if err != nil {
		return nil, fmt.Errorf("target values: %w", err)
	}
	defer rows.Close()
	return scanTextSet(rows)
}

func (r *CampaignRepo) TargetValuesForCampaign(ctx context.Context, campaignID string, exprType domain.ExpressionType) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT expression_value FROM ads_targets
		WHERE campaign_id = $1 AND expression_type = $2
	`, campaignID, exprType)
	if err != nil {
		return nil, fmt.Errorf("target values for campaign: %w", err)
	}
	defer rows.Close()
	return scanTextSet(rows)
}

func (r *CampaignRepo) ProductAdExists(ctx context.Context, campaignID, asin string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ads_product_ads
			WHERE campaign_id = $1 AND UPPER(asin) = UPPER($2)
		)
	`, campaignID, asin).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("product ad exists: %w", err)
	}
	return exists, nil
}

func (r *CampaignRepo) TargetsForCampaign(ctx context.Context, campaignID string) ([]domain.Target, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, campaign_id, ad_group_id, external_id,
		       expression_type, COALESCE(expression_value,''), bid, state
		FROM ads_targets
		WHERE campaign_id = $1
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("targets for campaign: %w", err)
	}
	defer rows.Close()

	var out []domain.Target
	for rows.Next() {
		var t domain.Target
		if err := rows.Scan(
			&t.ID, &t.CampaignID, &t.AdGroupID, &t.ExternalID,
			&t.Expression.Type, &t.Expression.Value, &t.Bid, &t.State,
		); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) SaveCampaign(ctx context.Context, c *domain.Campaign) error {
	var tos, pp sql.NullInt64
	if c.TopOfSearchPct != nil {
		tos = sql.NullInt64{Int64: int64(*c.TopOfSearchPct), Valid: true}
	}
	if c.ProductPagePct != nil {
		pp = sql.NullInt64{Int64: int64(*c.ProductPagePct), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ads_campaigns
			(id, book_id, profile_id, external_id, name, purpose,
			 bidding_strategy, targeting_type, state, daily_budget,
			 top_of_search_pct, product_page_pct, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`, c.ID, c.BookID, c.ProfileID, c.ExternalID, c.Name, c.Purpose,
		c.BiddingStrategy, c.TargetingType, c.State, c.DailyBudget, tos, pp)
	if err != nil {
		return fmt.Errorf("save campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) SaveAdGroup(ctx context.Context, g *domain.AdGroup) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ads_ad_groups (id, campaign_id, external_id, name, default_bid, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, g.ID, g.CampaignID, g.ExternalID, g.Name, g.DefaultBid, g.State)
	if err != nil {
		return fmt.Errorf("save ad group: %w", err)
	}
	return nil
}

func (r *CampaignRepo) SaveProductAd(ctx context.Context, p *domain.ProductAd) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ads_product_ads (id, campaign_id, ad_group_id, external_id, asin, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, p.ID, p.CampaignID, p.AdGroupID, p.ExternalID, p.ASIN, p.State)
	if err != nil {
		return fmt.Errorf("save product ad: %w", err)
	}
	return nil
}

func (r *CampaignRepo) SaveKeywords(ctx context.Context, kws []domain.Keyword) error {
	if len(kws) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save keywords: %w", err)
	}
	defer tx.Rollback()

	for _, k := range kws {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ads_keywords (id, campaign_id, ad_group_id, external_id, text, match_type, bid, state, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		`, k.ID, k.CampaignID, k.AdGroupID, k.ExternalID, k.Text, k.MatchType, k.Bid, k.State); err != nil {
			return fmt.Errorf("save keyword %q: %w", k.Text, err)
		}
	}
	return tx.Commit()
}

func (r *CampaignRepo) SaveTargets(ctx context.Context, ts []domain.Target) error {
	if len(ts) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save targets: %w", err)
	}
	defer tx.Rollback()

	for _, t := range ts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ads_targets (id, campaign_id, ad_group_id, external_id, expression_type, expression_value, bid, state, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		`, t.ID, t.CampaignID, t.AdGroupID, t.ExternalID, t.Expression.Type, t.Expression.Value, t.Bid, t.State); err != nil {
			return fmt.Errorf("save target %q: %w", t.Expression.Value, err)
		}
	}
	return tx.Commit()
}

func (r *CampaignRepo) UpdateTargetStates(ctx context.Context, ids []string, state domain.EntityState) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE ads_targets SET state = $1 WHERE id = ANY($2)
	`, state, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("update target states: %w", err)
	}
	return nil
}

func (r *CampaignRepo) AppendJournal(ctx context.Context, e *campaign.JournalEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ads_creation_journal (id, book_id, purpose, entity_kind, local_id, external_id, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.BookID, e.Purpose, e.EntityKind, e.LocalID, e.ExternalID, e.State, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

func (r *CampaignRepo) MarkJournalPersisted(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ads_creation_journal SET state = $1 WHERE id = $2
	`, campaign.JournalPersisted, id)
	if err != nil {
		return fmt.Errorf("mark journal persisted: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) StaleJournal(ctx context.Context, olderThan time.Time) ([]campaign.JournalEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, book_id, purpose, entity_kind, local_id, external_id, state, created_at
		FROM ads_creation_journal
		WHERE state = $1 AND created_at < $2
		ORDER BY created_at
	`, campaign.JournalExternalCreated, olderThan)
	if err != nil {
		return nil, fmt.Errorf("stale journal: %w", err)
	}
	defer rows.Close()

	var out []campaign.JournalEntry
	for rows.Next() {
		var e campaign.JournalEntry
		if err := rows.Scan(&e.ID, &e.BookID, &e.Purpose, &e.EntityKind, &e.LocalID, &e.ExternalID, &e.State, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanTextSet(rows *sql.Rows) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan text: %w", err)
		}
		out[s] = struct{}{}
	}
	return out, rows.Err()
}
