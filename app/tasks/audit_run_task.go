package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/INHQInc/outrigger-seo-bot/app/audit"
	"github.com/INHQInc/outrigger-seo-bot/app/board"
	"github.com/INHQInc/outrigger-seo-bot/app/database"
	"github.com/INHQInc/outrigger-seo-bot/app/llm"
	"github.com/INHQInc/outrigger-seo-bot/app/page"
	"github.com/INHQInc/outrigger-seo-bot/app/rules"
	"github.com/INHQInc/outrigger-seo-bot/app/sitemap"
	"github.com/INHQInc/outrigger-seo-bot/app/verify"
)

// AuditRunTask executes a full audit of one site: discover URLs, evaluate
// rules per page, publish issues to the board, then verify open tasks.
type AuditRunTask struct {
	Task
	RunID      string
	SiteID     string
	Categories map[string]bool // empty means all categories

	siteRepo       database.SiteRepository
	ruleRepo       database.RuleRepository
	runRepo        database.RunRepository
	sitemapParser  *sitemap.Parser
	fetcher        *page.Fetcher
	analyzer       *page.Analyzer
	extractor      *page.ContentExtractor
	evaluator      *audit.Evaluator
	scorer         *audit.Scorer
	llmEvaluator   *llm.Evaluator
	boardClient    *board.Client
	defaultBoardID string
	verifier       *verify.Engine
	requestDelay   time.Duration
}

func NewAuditRunTask(runID, siteID string, categories map[string]bool,
	siteRepo database.SiteRepository, ruleRepo database.RuleRepository, runRepo database.RunRepository,
	sitemapParser *sitemap.Parser, fetcher *page.Fetcher, analyzer *page.Analyzer,
	extractor *page.ContentExtractor, evaluator *audit.Evaluator, scorer *audit.Scorer,
	llmEvaluator *llm.Evaluator, boardClient *board.Client, defaultBoardID string,
	verifier *verify.Engine, requestDelayMs int) *AuditRunTask {
	return &AuditRunTask{
		Task:           NewTask(TaskTypeAuditRun, siteID),
		RunID:          runID,
		SiteID:         siteID,
		Categories:     categories,
		siteRepo:       siteRepo,
		ruleRepo:       ruleRepo,
		runRepo:        runRepo,
		sitemapParser:  sitemapParser,
		fetcher:        fetcher,
		analyzer:       analyzer,
		extractor:      extractor,
		evaluator:      evaluator,
		scorer:         scorer,
		llmEvaluator:   llmEvaluator,
		boardClient:    boardClient,
		defaultBoardID: defaultBoardID,
		verifier:       verifier,
		requestDelay:   time.Duration(requestDelayMs) * time.Millisecond,
	}
}

func (t *AuditRunTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	summary := &audit.RunSummary{
		RunID:     t.RunID,
		SiteID:    t.SiteID,
		StartedAt: time.Now().UTC(),
	}

	site, err := t.siteRepo.GetSite(t.SiteID)
	if err != nil {
		t.finishRun(summary, "failed")
		return fmt.Errorf("failed to load site: %w", err)
	}
	if site == nil {
		t.finishRun(summary, "failed")
		return fmt.Errorf("site %s not found", t.SiteID)
	}

	ruleSet, err := t.loadRules()
	if err != nil {
		t.finishRun(summary, "failed")
		return err
	}
	if len(ruleSet) == 0 {
		slog.Warn("No enabled rules for site, auditing nothing", "site", t.SiteID)
	}

	boardID := site.MondayBoardID
	if boardID == "" {
		boardID = t.defaultBoardID
	}
	boardManager := board.NewManager(t.boardClient, boardID)

	// An unreachable board makes publishing and verification impossible,
	// so this failure aborts the run.
	if err := boardManager.Initialize(ctx); err != nil {
		t.finishRun(summary, "failed")
		return fmt.Errorf("board initialization failed: %w", err)
	}

	urls := t.discoverURLs(ctx, site, summary)

	knownKeys, err := boardManager.KnownIdentityKeys(ctx)
	if err != nil {
		slog.Warn("Failed to load known board tasks, duplicate detection degraded", "error", err)
		summary.AddError(fmt.Sprintf("failed to load known board tasks: %v", err))
		knownKeys = make(map[string]bool)
	}
	publisher := audit.NewPublisher(boardManager, knownKeys)

	t.updateProgress(database.AuditProgress{
		RunID: t.RunID, Phase: "auditing", PagesTotal: len(urls),
	})

	for i, pageURL := range urls {
		if i > 0 && t.requestDelay > 0 {
			select {
			case <-ctx.Done():
				t.finishRun(summary, "failed")
				return ctx.Err()
			case <-time.After(t.requestDelay):
			}
		}

		t.auditPage(ctx, pageURL, ruleSet, site.EnableLLM, publisher, summary)

		t.updateProgress(database.AuditProgress{
			RunID:        t.RunID,
			Phase:        "auditing",
			PagesDone:    i + 1,
			PagesTotal:   len(urls),
			IssuesFound:  summary.SEOIssues + summary.VoiceIssues + summary.BrandIssues,
			TasksCreated: summary.TasksCreated,
		})
	}

	t.updateProgress(database.AuditProgress{
		RunID: t.RunID, Phase: "verifying",
		PagesDone: len(urls), PagesTotal: len(urls),
		IssuesFound:  summary.SEOIssues + summary.VoiceIssues + summary.BrandIssues,
		TasksCreated: summary.TasksCreated,
	})

	t.verifyOpenTasks(ctx, boardManager, summary)

	t.finishRun(summary, "complete")

	slog.Info("Task completed",
		"type", "AuditRun",
		"run_id", t.RunID,
		"site", t.SiteID,
		"duration", t.GetDuration(),
		"pages", summary.PagesChecked,
		"tasks_created", summary.TasksCreated,
		"duplicates", summary.DuplicatesSkipped,
		"verified", summary.IssuesVerified,
		"fixed", summary.IssuesFixed,
		"errors", len(summary.Errors))

	return nil
}

// loadRules fetches the enabled rules and applies the category filter
func (t *AuditRunTask) loadRules() ([]rules.Rule, error) {
	ruleSet, err := t.ruleRepo.GetEnabledRules(t.SiteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	if len(t.Categories) == 0 {
		return ruleSet, nil
	}

	var filtered []rules.Rule
	for _, rule := range ruleSet {
		if t.Categories[rule.Category] {
			filtered = append(filtered, rule)
		}
	}
	return filtered, nil
}

// discoverURLs walks the site's sitemap. Discovery failure degrades the run
// to verification only.
func (t *AuditRunTask) discoverURLs(ctx context.Context, site *database.Site, summary *audit.RunSummary) []string {
	cutoff := time.Time{}
	if site.DaysToCheck > 0 {
		cutoff = time.Now().UTC().AddDate(0, 0, -site.DaysToCheck)
	}

	urls, err := t.sitemapParser.Run(ctx, site.SitemapURL, cutoff, site.MaxPages)
	if err != nil {
		slog.Error("Sitemap discovery failed, skipping page audits", "site", t.SiteID, "error", err)
		summary.AddError(fmt.Sprintf("sitemap discovery failed: %v", err))
		return nil
	}

	return urls
}

// auditPage audits a single URL. Failures are isolated: they are recorded
// on the summary and the run moves on to the next URL. Every attempted URL
// counts as checked, whether or not its checks could run.
func (t *AuditRunTask) auditPage(ctx context.Context, pageURL string, ruleSet []rules.Rule, enableLLM bool, publisher *audit.Publisher, summary *audit.RunSummary) {
	summary.PagesChecked++

	data, err := t.fetcher.Run(ctx, pageURL)
	if err != nil {
		summary.AddError(fmt.Sprintf("failed to fetch %s: %v", pageURL, err))
		slog.Warn("Page fetch failed", "url", pageURL, "error", err)
		return
	}

	p, err := t.analyzer.Run(data, pageURL)
	if err != nil {
		summary.AddError(fmt.Sprintf("failed to analyze %s: %v", pageURL, err))
		slog.Warn("Page analysis failed", "url", pageURL, "error", err)
		return
	}

	if readable, err := t.extractor.Run(data); err == nil {
		p.ReadableText = readable
	}

	if p.IsChallenge() {
		slog.Warn("Bot challenge page served, no checks applied", "url", pageURL)
		return
	}

	// Procedural verdicts are authoritative: they publish first, so a
	// dual-mode rule's interpretive duplicate is skipped as known.
	issues := t.evaluator.Run(p, ruleSet)
	publisher.Run(ctx, issues, summary)

	if enableLLM && t.llmEvaluator != nil {
		llmIssues := t.llmEvaluator.Run(ctx, p, ruleSet)
		publisher.Run(ctx, llmIssues, summary)
	}

	score := t.scorer.Run(p)
	slog.Info("Page audited",
		"url", pageURL,
		"issues", len(issues),
		"score", score.Total,
		"grade", score.Grade)
}

// verifyOpenTasks re-checks the open board tasks and updates their state
func (t *AuditRunTask) verifyOpenTasks(ctx context.Context, boardManager *board.Manager, summary *audit.RunSummary) {
	items, err := boardManager.ItemsToVerify(ctx)
	if err != nil {
		slog.Warn("Failed to list board tasks for verification", "error", err)
		summary.AddError(fmt.Sprintf("verification listing failed: %v", err))
		return
	}

	for _, item := range items {
		result := t.verifier.Run(ctx, verify.Item{
			ID:        item.ID,
			Name:      item.Name,
			URL:       item.URL,
			IssueType: item.IssueType,
		})
		summary.IssuesVerified++

		if result.Fixed {
			if err := boardManager.MarkIssueFixed(ctx, item.ID); err != nil {
				slog.Warn("Failed to mark task fixed", "item", item.ID, "error", err)
				summary.AddError(fmt.Sprintf("failed to mark %s fixed: %v", item.ID, err))
				continue
			}
			summary.IssuesFixed++
			slog.Info("Issue verified fixed", "item", item.ID, "url", item.URL)
		} else {
			if err := boardManager.StampVerification(ctx, item.ID, result.Details); err != nil {
				slog.Warn("Failed to stamp verification", "item", item.ID, "error", err)
			}
			slog.Debug("Issue not yet fixed", "item", item.ID, "details", result.Details)
		}
	}
}

// updateProgress writes the progress row; failures are logged, never fatal
func (t *AuditRunTask) updateProgress(progress database.AuditProgress) {
	if err := t.runRepo.UpdateProgress(progress); err != nil {
		slog.Warn("Failed to update run progress", "run_id", t.RunID, "error", err)
	}
}

// finishRun persists the summary and final progress phase
func (t *AuditRunTask) finishRun(summary *audit.RunSummary, phase string) {
	summary.FinishedAt = time.Now().UTC()

	finished := summary.FinishedAt
	run := database.AuditRun{
		ID:                summary.RunID,
		SiteID:            summary.SiteID,
		StartedAt:         summary.StartedAt,
		FinishedAt:        &finished,
		PagesChecked:      summary.PagesChecked,
		SEOIssues:         summary.SEOIssues,
		VoiceIssues:       summary.VoiceIssues,
		BrandIssues:       summary.BrandIssues,
		TasksCreated:      summary.TasksCreated,
		DuplicatesSkipped: summary.DuplicatesSkipped,
		TasksFailed:       summary.TasksFailed,
		IssuesVerified:    summary.IssuesVerified,
		IssuesFixed:       summary.IssuesFixed,
		Errors:            summary.Errors,
	}

	if err := t.runRepo.SaveRun(run); err != nil {
		slog.Error("Failed to persist run summary", "run_id", summary.RunID, "error", err)
	}

	t.updateProgress(database.AuditProgress{
		RunID:        summary.RunID,
		Phase:        phase,
		PagesDone:    summary.PagesChecked,
		PagesTotal:   summary.PagesChecked,
		IssuesFound:  summary.SEOIssues + summary.VoiceIssues + summary.BrandIssues,
		TasksCreated: summary.TasksCreated,
	})
}
