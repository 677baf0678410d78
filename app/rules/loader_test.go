package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
}

func TestLoadAllMissingDirectory(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "nope"), nil)

	loaded, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("expected no error for missing directory, got %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected no rules, got %d", len(loaded))
	}
}

func TestLoadAllParsesRules(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "seo.yaml", `
category: seo
rules:
  - id: title-tag
    name: Title Tag Present
    predicateKey: title
    description: Every page needs a title tag
    recommendation: Add a descriptive title tag
    severity: High
    enabled: true
  - id: brand-voice
    name: Brand Voice Consistency
    category: brand
    instruction: Check that the page copy matches the brand voice guide
    enabled: true
`)

	loader := NewLoader(dir, nil)
	loaded, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(loaded))
	}

	first := loaded[0]
	if first.ID != "title-tag" {
		t.Errorf("expected id 'title-tag', got %q", first.ID)
	}
	if first.Category != CategorySEO {
		t.Errorf("expected file-level category to apply, got %q", first.Category)
	}
	if first.Kind() != KindProcedural {
		t.Errorf("expected procedural kind, got %s", first.Kind())
	}

	second := loaded[1]
	if second.Category != CategoryBrand {
		t.Errorf("expected rule-level category to win, got %q", second.Category)
	}
	if second.Kind() != KindInterpretive {
		t.Errorf("expected interpretive kind, got %s", second.Kind())
	}
	if second.Severity != SeverityMedium {
		t.Errorf("expected default severity Medium, got %q", second.Severity)
	}
	if second.Tier != 1 {
		t.Errorf("expected default tier 1, got %d", second.Tier)
	}
}

func TestLoadAllRejectsRuleWithoutChecks(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "bad.yaml", `
category: seo
rules:
  - id: empty-rule
    name: No Checks At All
    enabled: true
`)

	loader := NewLoader(dir, nil)
	if _, err := loader.LoadAll(); err == nil {
		t.Error("expected error for rule without predicate key or instruction")
	}
}

func TestLoadAllRejectsInvalidCategory(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "bad.yaml", `
category: marketing
rules:
  - id: some-rule
    name: Some Rule
    predicateKey: title
`)

	loader := NewLoader(dir, nil)
	if _, err := loader.LoadAll(); err == nil {
		t.Error("expected error for invalid category")
	}
}

func TestLoadAllRejectsUnknownPredicateKey(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "seo.yaml", `
category: seo
rules:
  - id: title-tag
    name: Title Tag Present
    predicateKey: title
    enabled: true
  - id: typo-rule
    name: Mistyped Check
    predicateKey: titel
    enabled: true
`)

	loader := NewLoader(dir, map[string]bool{"title": true})
	loaded, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected the unknown-key rule to be rejected, got %d rules", len(loaded))
	}
	if loaded[0].ID != "title-tag" {
		t.Errorf("expected only 'title-tag' to load, got %q", loaded[0].ID)
	}
}

func TestKindDual(t *testing.T) {
	rule := Rule{
		PredicateKey: "title",
		Instruction:  "Verify the title reads naturally",
	}
	if rule.Kind() != KindDual {
		t.Errorf("expected dual kind, got %s", rule.Kind())
	}
}
