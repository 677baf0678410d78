package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./seo-bot.db" description:"Path to the SQLite database file"`

	// Application configuration
	RulesDir  string `long:"rules-dir" env:"RULES_DIR" default:"./rules" description:"Directory containing rule seed files"`
	SitesFile string `long:"sites-file" env:"SITES_FILE" default:"./sites.yaml" description:"Path to the site seed file"`
	Port      string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl   string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service"`

	// Task board (Monday.com)
	MondayAPIURL   string `long:"monday-api-url" env:"MONDAY_API_URL" default:"https://api.monday.com/v2" description:"Monday.com API endpoint"`
	MondayAPIToken string `long:"monday-api-token" env:"MONDAY_API_TOKEN" description:"Monday.com API token (required)" required:"true"`
	MondayBoardID  string `long:"monday-board-id" env:"MONDAY_BOARD_ID" description:"Default Monday.com board ID"`

	// Reasoning service (Anthropic)
	AnthropicAPIURL  string `long:"anthropic-api-url" env:"ANTHROPIC_API_URL" default:"https://api.anthropic.com/v1/messages" description:"Anthropic API endpoint"`
	AnthropicAPIKey  string `long:"anthropic-api-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key (LLM rules disabled when empty)"`
	AnthropicModel   string `long:"anthropic-model" env:"ANTHROPIC_MODEL" default:"claude-sonnet-4-5" description:"Model used for interpretive rule evaluation"`
	LLMMaxMarkupLen  int    `long:"llm-max-markup" env:"LLM_MAX_MARKUP" default:"15000" description:"Maximum markup length submitted per LLM request"`
	LLMRulesPerBatch int    `long:"llm-rules-per-batch" env:"LLM_RULES_PER_BATCH" default:"5" description:"Number of interpretive rules submitted per LLM request"`
	LLMBatchDelayMs  int    `long:"llm-batch-delay" env:"LLM_BATCH_DELAY_MS" default:"1000" description:"Delay between LLM rule batches in milliseconds"`

	// Page fetching
	FetchProxyURL  string `long:"fetch-proxy-url" env:"FETCH_PROXY_URL" description:"Optional render proxy endpoint for page fetching"`
	FetchProxyKey  string `long:"fetch-proxy-key" env:"FETCH_PROXY_KEY" description:"API key for the render proxy"`
	FetchTimeout   int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30" description:"Page fetch timeout in seconds"`
	RequestDelayMs int    `long:"request-delay" env:"REQUEST_DELAY_MS" default:"500" description:"Pacing delay between audited URLs in milliseconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"OutriggerSEOBot/1.0 (SEO Audit Tool)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Pacific/Honolulu)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		RulesDir:         raw.RulesDir,
		SitesFile:        raw.SitesFile,
		Port:             raw.Port,
		BaseUrl:          raw.BaseUrl,
		MondayAPIURL:     raw.MondayAPIURL,
		MondayAPIToken:   raw.MondayAPIToken,
		MondayBoardID:    raw.MondayBoardID,
		AnthropicAPIURL:  raw.AnthropicAPIURL,
		AnthropicAPIKey:  raw.AnthropicAPIKey,
		AnthropicModel:   raw.AnthropicModel,
		LLMMaxMarkupLen:  raw.LLMMaxMarkupLen,
		LLMRulesPerBatch: raw.LLMRulesPerBatch,
		LLMBatchDelayMs:  raw.LLMBatchDelayMs,
		FetchProxyURL:    raw.FetchProxyURL,
		FetchProxyKey:    raw.FetchProxyKey,
		FetchTimeout:     raw.FetchTimeout,
		RequestDelayMs:   raw.RequestDelayMs,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
