package api

import (
	"github.com/INHQInc/outrigger-seo-bot/app/database"
	"github.com/INHQInc/outrigger-seo-bot/app/tasks"
)

// AuditTaskFactory builds an audit run task for the given run and site.
// Injected so the handler does not carry the full audit dependency set.
type AuditTaskFactory func(runID, siteID string, categories map[string]bool) tasks.TaskInterface

type Handler struct {
	siteRepo     database.SiteRepository
	ruleRepo     database.RuleRepository
	runRepo      database.RunRepository
	runner       tasks.RunnerInterface
	newAuditTask AuditTaskFactory
}

// AuditRequest is the POST /audit body. Both fields are optional.
type AuditRequest struct {
	SiteID     string          `json:"site_id"`
	Categories map[string]bool `json:"categories"`
}
