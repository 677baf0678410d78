package database

import (
	"fmt"

	"github.com/INHQInc/outrigger-seo-bot/app/rules"
)

// RuleRepo handles database operations for audit rules
type RuleRepo struct {
	db *DB
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *DB) *RuleRepo {
	return &RuleRepo{db: db}
}

// UpsertRule inserts or updates a rule definition
func (r *RuleRepo) UpsertRule(rule rules.Rule) error {
	_, err := r.db.Exec(`
		INSERT INTO rules (id, site_id, name, category, predicate_key, instruction, description, recommendation, severity, tier, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id, site_id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			predicate_key = excluded.predicate_key,
			instruction = excluded.instruction,
			description = excluded.description,
			recommendation = excluded.recommendation,
			severity = excluded.severity,
			tier = excluded.tier,
			enabled = excluded.enabled,
			updated_at = CURRENT_TIMESTAMP
	`, rule.ID, rule.SiteID, rule.Name, rule.Category, rule.PredicateKey,
		rule.Instruction, rule.Description, rule.Recommendation, rule.Severity,
		rule.Tier, rule.Enabled)

	if err != nil {
		return fmt.Errorf("failed to upsert rule: %w", err)
	}

	return nil
}

// GetEnabledRules returns the enabled rules applying to a site, in catalogue
// order. Global rules (empty site_id) apply to every site.
func (r *RuleRepo) GetEnabledRules(siteID string) ([]rules.Rule, error) {
	rows, err := r.db.Query(`
		SELECT id, site_id, name, category, predicate_key, instruction, description, recommendation, severity, tier, enabled
		FROM rules
		WHERE enabled = 1 AND (site_id = '' OR site_id = ?)
		ORDER BY category, tier, id
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled rules: %w", err)
	}
	defer rows.Close()

	var result []rules.Rule
	for rows.Next() {
		var rule rules.Rule
		err := rows.Scan(
			&rule.ID, &rule.SiteID, &rule.Name, &rule.Category, &rule.PredicateKey,
			&rule.Instruction, &rule.Description, &rule.Recommendation, &rule.Severity,
			&rule.Tier, &rule.Enabled,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		result = append(result, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule rows: %w", err)
	}

	return result, nil
}

// GetRuleCount returns the total number of rules
func (r *RuleRepo) GetRuleCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM rules").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get rule count: %w", err)
	}
	return count, nil
}
