package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/INHQInc/outrigger-seo-bot/app/audit"
	"github.com/INHQInc/outrigger-seo-bot/app/page"
	"github.com/INHQInc/outrigger-seo-bot/app/rules"
)

const truncationMarker = "\n... [content truncated]"

const systemPrompt = `You are an SEO, brand voice and content quality auditor for hospitality websites.
You evaluate page markup against a numbered list of rules.
Respond with a JSON array only, no prose. Each element has the shape:
{"rule_index": <number>, "passed": <boolean>, "title": "<short issue title>", "explanation": "<one or two sentences>"}
Include one element per rule, in the same order the rules were given.`

// Completer is the slice of the API client the evaluator needs
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Evaluator runs interpretive rules against page markup through the
// reasoning service. Evaluation is degraded-safe: any failure yields zero
// issues for the affected batch rather than an error.
type Evaluator struct {
	client        Completer
	maxMarkupLen  int
	rulesPerBatch int
	batchDelay    time.Duration
}

func NewEvaluator(client Completer, maxMarkupLen, rulesPerBatch, batchDelayMs int) *Evaluator {
	if rulesPerBatch < 1 {
		rulesPerBatch = 1
	}
	return &Evaluator{
		client:        client,
		maxMarkupLen:  maxMarkupLen,
		rulesPerBatch: rulesPerBatch,
		batchDelay:    time.Duration(batchDelayMs) * time.Millisecond,
	}
}

type verdict struct {
	RuleIndex   int    `json:"rule_index"`
	Passed      bool   `json:"passed"`
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
}

// Run evaluates the interpretive rules in the set and returns issues for
// failed verdicts. Challenge pages are never sent to the service.
func (e *Evaluator) Run(ctx context.Context, p *page.ParsedPage, ruleSet []rules.Rule) []audit.Issue {
	if p.IsChallenge() {
		slog.Warn("Bot challenge page detected, skipping interpretive evaluation", "url", p.URL)
		return nil
	}

	var interpretive []rules.Rule
	for _, rule := range ruleSet {
		if rule.Instruction != "" {
			interpretive = append(interpretive, rule)
		}
	}
	if len(interpretive) == 0 {
		return nil
	}

	markup := e.truncateMarkup(p.RawHTML)

	var issues []audit.Issue
	for start := 0; start < len(interpretive); start += e.rulesPerBatch {
		if start > 0 && e.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return issues
			case <-time.After(e.batchDelay):
			}
		}

		end := min(start+e.rulesPerBatch, len(interpretive))
		batch := interpretive[start:end]

		issues = append(issues, e.evaluateBatch(ctx, p, markup, batch)...)
	}

	return issues
}

// truncateMarkup caps the markup at the configured limit, appending an
// explicit marker so the model knows the page was cut off. The cut point
// backs up to a rune boundary.
func (e *Evaluator) truncateMarkup(markup string) string {
	if e.maxMarkupLen <= 0 || len(markup) <= e.maxMarkupLen {
		return markup
	}
	cut := e.maxMarkupLen
	for cut > 0 && !utf8.RuneStart(markup[cut]) {
		cut--
	}
	return markup[:cut] + truncationMarker
}

func (e *Evaluator) evaluateBatch(ctx context.Context, p *page.ParsedPage, markup string, batch []rules.Rule) []audit.Issue {
	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\n\nRules to evaluate:\n", p.URL)
	for i, rule := range batch {
		fmt.Fprintf(&sb, "%d. [%s] %s: %s\n", i, rule.Category, rule.Name, rule.Instruction)
	}
	fmt.Fprintf(&sb, "\nPage markup:\n%s\n", markup)

	reply, err := e.client.Complete(ctx, systemPrompt, sb.String())
	if err != nil {
		slog.Warn("Interpretive evaluation failed", "url", p.URL, "error", err)
		return nil
	}

	verdicts, err := parseVerdicts(reply)
	if err != nil {
		slog.Warn("Unparseable interpretive reply", "url", p.URL, "error", err)
		return nil
	}

	var issues []audit.Issue
	for _, v := range verdicts {
		if v.RuleIndex < 0 || v.RuleIndex >= len(batch) {
			slog.Warn("Verdict references unknown rule index, dropping",
				"url", p.URL, "rule_index", v.RuleIndex)
			continue
		}
		if v.Passed {
			continue
		}

		rule := batch[v.RuleIndex]
		title := v.Title
		if title == "" {
			title = rule.Name
		}

		issues = append(issues, audit.Issue{
			URL:            p.URL,
			RuleID:         rule.ID,
			RuleName:       rule.Name,
			Category:       rule.Category,
			Severity:       rule.Severity,
			IssueType:      audit.TypeLLMFinding,
			Title:          title,
			Description:    v.Explanation,
			Recommendation: rule.Recommendation,
		})
	}

	return issues
}

// parseVerdicts extracts the JSON array from the reply, tolerating prose
// around it.
func parseVerdicts(reply string) ([]verdict, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in reply")
	}

	var verdicts []verdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &verdicts); err != nil {
		return nil, fmt.Errorf("failed to parse verdicts: %w", err)
	}

	return verdicts, nil
}
