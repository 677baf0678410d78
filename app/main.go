package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/INHQInc/outrigger-seo-bot/app/api"
	"github.com/INHQInc/outrigger-seo-bot/app/audit"
	"github.com/INHQInc/outrigger-seo-bot/app/board"
	"github.com/INHQInc/outrigger-seo-bot/app/cfg"
	"github.com/INHQInc/outrigger-seo-bot/app/database"
	"github.com/INHQInc/outrigger-seo-bot/app/llm"
	"github.com/INHQInc/outrigger-seo-bot/app/page"
	"github.com/INHQInc/outrigger-seo-bot/app/rules"
	"github.com/INHQInc/outrigger-seo-bot/app/sitemap"
	"github.com/INHQInc/outrigger-seo-bot/app/tasks"
	"github.com/INHQInc/outrigger-seo-bot/app/verify"
	"gopkg.in/yaml.v3"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return // help was requested
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting Outrigger SEO Bot", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	siteRepo := database.NewSiteRepository(db)
	ruleRepo := database.NewRuleRepository(db)
	runRepo := database.NewRunRepository(db)

	seedRules(appCfg.RulesDir, ruleRepo)
	registerSites(appCfg.SitesFile, siteRepo)

	// The fetcher enforces its own per-request timeout; board and LLM calls
	// get clients sized for their latency.
	fetchClient := &http.Client{}
	boardHTTPClient := &http.Client{Timeout: 30 * time.Second}
	llmHTTPClient := &http.Client{Timeout: 120 * time.Second}

	fetcher := page.NewFetcher(fetchClient, appCfg.FetchProxyURL, appCfg.FetchProxyKey, appCfg.UserAgent, appCfg.FetchTimeout)
	analyzer := page.NewAnalyzer()
	extractor := page.NewContentExtractor()
	evaluator := audit.NewEvaluator()
	scorer := audit.NewScorer()
	sitemapParser := sitemap.NewParser(fetcher)
	verifier := verify.NewEngine(fetcher, analyzer)

	boardClient := board.NewClient(boardHTTPClient, appCfg.MondayAPIURL, appCfg.MondayAPIToken)

	var llmEvaluator *llm.Evaluator
	if appCfg.AnthropicAPIKey != "" {
		llmClient := llm.NewClient(llmHTTPClient, appCfg.AnthropicAPIURL, appCfg.AnthropicAPIKey, appCfg.AnthropicModel)
		llmEvaluator = llm.NewEvaluator(llmClient, appCfg.LLMMaxMarkupLen, appCfg.LLMRulesPerBatch, appCfg.LLMBatchDelayMs)
	} else {
		slog.Warn("No Anthropic API key configured, interpretive rule checks are disabled")
	}

	runner := tasks.NewRunner()
	runner.Start()
	defer runner.Stop()

	newAuditTask := func(runID, siteID string, categories map[string]bool) tasks.TaskInterface {
		return tasks.NewAuditRunTask(runID, siteID, categories,
			siteRepo, ruleRepo, runRepo,
			sitemapParser, fetcher, analyzer, extractor,
			evaluator, scorer, llmEvaluator,
			boardClient, appCfg.MondayBoardID,
			verifier, appCfg.RequestDelayMs)
	}

	handler := api.NewHandler(siteRepo, ruleRepo, runRepo, runner, newAuditTask)
	server := api.NewServer(handler, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	slog.Info("Shutdown complete")
}

// seedRules loads the rule catalogue from disk and upserts it into the
// database. Disabled rules stay in the database so operators can re-enable
// them without reseeding. Rules naming an unregistered predicate key are
// rejected by the loader before they reach the catalogue.
func seedRules(rulesDir string, ruleRepo database.RuleRepository) {
	predicateKeys := make(map[string]bool)
	for key := range audit.Predicates() {
		predicateKeys[key] = true
	}

	loader := rules.NewLoader(rulesDir, predicateKeys)
	seed, err := loader.LoadAll()
	if err != nil {
		slog.Error("Failed to load rule catalogue", "dir", rulesDir, "error", err)
		os.Exit(1)
	}

	seeded := 0
	for _, rule := range seed {
		if err := ruleRepo.UpsertRule(rule); err != nil {
			slog.Warn("Failed to seed rule", "rule", rule.ID, "error", err)
			continue
		}
		seeded++
	}

	slog.Info("Rule catalogue seeded", "rules", seeded)
}

type siteSeed struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Domain        string `yaml:"domain"`
	SitemapURL    string `yaml:"sitemap_url"`
	MondayBoardID string `yaml:"monday_board_id"`
	DaysToCheck   int    `yaml:"days_to_check"`
	MaxPages      int    `yaml:"max_pages"`
	EnableLLM     bool   `yaml:"enable_llm"`
	Enabled       *bool  `yaml:"enabled"`
}

// registerSites upserts the audited sites from the seed file. A missing
// file is fine, sites can also be managed directly in the database.
func registerSites(path string, siteRepo database.SiteRepository) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("No site seed file found", "path", path)
			return
		}
		slog.Error("Failed to read site seed file", "path", path, "error", err)
		os.Exit(1)
	}

	var seeds []siteSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		slog.Error("Failed to parse site seed file", "path", path, "error", err)
		os.Exit(1)
	}

	registered := 0
	for _, seed := range seeds {
		if seed.ID == "" || seed.SitemapURL == "" {
			slog.Warn("Skipping site seed without id or sitemap_url", "name", seed.Name)
			continue
		}

		enabled := true
		if seed.Enabled != nil {
			enabled = *seed.Enabled
		}

		site := database.Site{
			ID:            seed.ID,
			Name:          seed.Name,
			Domain:        seed.Domain,
			SitemapURL:    seed.SitemapURL,
			MondayBoardID: seed.MondayBoardID,
			DaysToCheck:   seed.DaysToCheck,
			MaxPages:      seed.MaxPages,
			EnableLLM:     seed.EnableLLM,
			Enabled:       enabled,
		}

		if err := siteRepo.UpsertSite(site); err != nil {
			slog.Warn("Failed to register site", "site", seed.ID, "error", err)
			continue
		}
		registered++
	}

	slog.Info("Sites registered", "sites", registered)
}
