package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/INHQInc/outrigger-seo-bot/app/database"
	"github.com/INHQInc/outrigger-seo-bot/app/tasks"
	"github.com/gin-gonic/gin"
)

func NewHandler(siteRepo database.SiteRepository, ruleRepo database.RuleRepository,
	runRepo database.RunRepository, runner tasks.RunnerInterface,
	newAuditTask AuditTaskFactory) *Handler {
	return &Handler{
		siteRepo:     siteRepo,
		ruleRepo:     ruleRepo,
		runRepo:      runRepo,
		runner:       runner,
		newAuditTask: newAuditTask,
	}
}

// TriggerAudit enqueues an audit run. The run executes asynchronously on
// the single-worker runner, so concurrent triggers queue up.
func (h *Handler) TriggerAudit(c *gin.Context) {
	var req AuditRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}
	}

	siteID := req.SiteID
	if siteID == "" {
		sites, err := h.siteRepo.GetEnabledSites()
		if err != nil {
			slog.Error("Database error", "operation", "get_enabled_sites", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if len(sites) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "No enabled sites configured"})
			return
		}
		siteID = sites[0].ID
	} else {
		site, err := h.siteRepo.GetSite(siteID)
		if err != nil {
			slog.Error("Database error", "operation", "get_site", "site", siteID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if site == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Site %s not found", siteID)})
			return
		}
	}

	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())

	if err := h.runRepo.UpdateProgress(database.AuditProgress{RunID: runID, Phase: "queued"}); err != nil {
		slog.Warn("Failed to create progress row", "run_id", runID, "error", err)
	}

	task := h.newAuditTask(runID, siteID, req.Categories)
	if err := h.runner.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue audit run", "run_id", runID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Audit queue is full",
			"details": err.Error(),
		})
		return
	}

	slog.Info("Audit run queued", "run_id", runID, "site", siteID)

	// The run executes asynchronously, so the accepted response carries a
	// zeroed summary shape; GET /runs/:id serves the live counters.
	response := runSummaryJSON(database.AuditRun{
		ID:        runID,
		SiteID:    siteID,
		StartedAt: time.Now().UTC(),
		Errors:    []string{},
	})
	response["status"] = "queued"

	c.JSON(http.StatusAccepted, response)
}

// GetRun returns the summary and progress of a run
func (h *Handler) GetRun(c *gin.Context) {
	runID := c.Param("id")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing run id parameter"})
		return
	}

	run, err := h.runRepo.GetRun(runID)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "run_id", runID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	progress, err := h.runRepo.GetProgress(runID)
	if err != nil {
		slog.Error("Database error", "operation", "get_progress", "run_id", runID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if run == nil && progress == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	response := gin.H{"run_id": runID}
	if progress != nil {
		response["progress"] = gin.H{
			"phase":         progress.Phase,
			"pages_done":    progress.PagesDone,
			"pages_total":   progress.PagesTotal,
			"issues_found":  progress.IssuesFound,
			"tasks_created": progress.TasksCreated,
			"updated_at":    progress.UpdatedAt,
		}
	}
	if run != nil {
		response["summary"] = runSummaryJSON(*run)
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if siteCount, err := h.siteRepo.GetSiteCount(); err == nil {
		health["sites"] = siteCount
	}
	if ruleCount, err := h.ruleRepo.GetRuleCount(); err == nil {
		health["rules"] = ruleCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	runs, err := h.runRepo.GetRecentRuns(20)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats := make([]map[string]interface{}, 0, len(runs))
	for _, run := range runs {
		stats = append(stats, runSummaryJSON(run))
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"runs":  stats,
		"total": len(stats),
	})
}

func runSummaryJSON(run database.AuditRun) map[string]interface{} {
	return map[string]interface{}{
		"run_id":             run.ID,
		"site_id":            run.SiteID,
		"started_at":         run.StartedAt,
		"finished_at":        run.FinishedAt,
		"pages_checked":      run.PagesChecked,
		"seo_issues":         run.SEOIssues,
		"voice_issues":       run.VoiceIssues,
		"brand_issues":       run.BrandIssues,
		"tasks_created":      run.TasksCreated,
		"duplicates_skipped": run.DuplicatesSkipped,
		"tasks_failed":       run.TasksFailed,
		"issues_verified":    run.IssuesVerified,
		"issues_fixed":       run.IssuesFixed,
		"errors":             run.Errors,
	}
}
