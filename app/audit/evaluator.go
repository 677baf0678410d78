package audit

import (
	"log/slog"

	"github.com/INHQInc/outrigger-seo-bot/app/page"
	"github.com/INHQInc/outrigger-seo-bot/app/rules"
)

// Evaluator runs procedural rules against extracted page facts
type Evaluator struct {
	predicates map[string]Predicate
}

func NewEvaluator() *Evaluator {
	return &Evaluator{predicates: Predicates()}
}

// Run evaluates the given rules in catalogue order and returns the issues
// found. Interpretive-only rules are ignored here; bot-challenge pages
// produce no issues at all.
func (e *Evaluator) Run(p *page.ParsedPage, ruleSet []rules.Rule) []Issue {
	if p.IsChallenge() {
		slog.Warn("Bot challenge page detected, skipping evaluation", "url", p.URL)
		return nil
	}

	var issues []Issue
	for _, rule := range ruleSet {
		if rule.Kind() == rules.KindInterpretive {
			continue
		}

		predicate, ok := e.predicates[rule.PredicateKey]
		if !ok {
			slog.Warn("No predicate registered for rule, skipping",
				"rule", rule.ID, "predicate_key", rule.PredicateKey)
			continue
		}

		issues = append(issues, predicate(p, rule)...)
	}

	return issues
}
