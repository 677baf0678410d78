package database

import (
	"database/sql"
	"fmt"
)

// SiteRepo handles database operations for sites
type SiteRepo struct {
	db *DB
}

// NewSiteRepository creates a new site repository
func NewSiteRepository(db *DB) *SiteRepo {
	return &SiteRepo{db: db}
}

// UpsertSite inserts or updates a site configuration
func (r *SiteRepo) UpsertSite(site Site) error {
	_, err := r.db.Exec(`
		INSERT INTO sites (id, name, domain, sitemap_url, monday_board_id, days_to_check, max_pages, enable_llm, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			domain = excluded.domain,
			sitemap_url = excluded.sitemap_url,
			monday_board_id = excluded.monday_board_id,
			days_to_check = excluded.days_to_check,
			max_pages = excluded.max_pages,
			enable_llm = excluded.enable_llm,
			enabled = excluded.enabled,
			updated_at = CURRENT_TIMESTAMP
	`, site.ID, site.Name, site.Domain, site.SitemapURL, site.MondayBoardID,
		site.DaysToCheck, site.MaxPages, site.EnableLLM, site.Enabled)

	if err != nil {
		return fmt.Errorf("failed to upsert site: %w", err)
	}

	return nil
}

// GetSite retrieves a site by its ID
func (r *SiteRepo) GetSite(siteID string) (*Site, error) {
	var site Site
	err := r.db.QueryRow(`
		SELECT id, name, domain, sitemap_url, monday_board_id, days_to_check, max_pages, enable_llm, enabled, created_at, updated_at
		FROM sites
		WHERE id = ?
	`, siteID).Scan(
		&site.ID, &site.Name, &site.Domain, &site.SitemapURL, &site.MondayBoardID,
		&site.DaysToCheck, &site.MaxPages, &site.EnableLLM, &site.Enabled,
		&site.CreatedAt, &site.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	return &site, nil
}

// GetEnabledSites returns all enabled sites
func (r *SiteRepo) GetEnabledSites() ([]Site, error) {
	rows, err := r.db.Query(`
		SELECT id, name, domain, sitemap_url, monday_board_id, days_to_check, max_pages, enable_llm, enabled, created_at, updated_at
		FROM sites
		WHERE enabled = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var site Site
		err := rows.Scan(
			&site.ID, &site.Name, &site.Domain, &site.SitemapURL, &site.MondayBoardID,
			&site.DaysToCheck, &site.MaxPages, &site.EnableLLM, &site.Enabled,
			&site.CreatedAt, &site.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site row: %w", err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site rows: %w", err)
	}

	return sites, nil
}

// GetSiteCount returns the total number of sites
func (r *SiteRepo) GetSiteCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sites").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get site count: %w", err)
	}
	return count, nil
}
