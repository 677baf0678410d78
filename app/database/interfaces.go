package database

import (
	"github.com/INHQInc/outrigger-seo-bot/app/rules"
)

type SiteRepository interface {
	GetSite(siteID string) (*Site, error)
	GetEnabledSites() ([]Site, error)
	GetSiteCount() (int, error)

	UpsertSite(site Site) error
}

type RuleRepository interface {
	GetEnabledRules(siteID string) ([]rules.Rule, error)
	GetRuleCount() (int, error)

	UpsertRule(rule rules.Rule) error
}

type RunRepository interface {
	GetRun(runID string) (*AuditRun, error)
	GetRecentRuns(limit int) ([]AuditRun, error)

	SaveRun(run AuditRun) error

	GetProgress(runID string) (*AuditProgress, error)
	UpdateProgress(progress AuditProgress) error
}
