package rules

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of rule seed files
type Loader struct {
	rulesDir      string
	predicateKeys map[string]bool
}

// NewLoader creates a new rule seed loader. predicateKeys is the set of
// registered procedural check keys; rules naming a key outside the set are
// rejected at load time. A nil set disables the check.
func NewLoader(rulesDir string, predicateKeys map[string]bool) *Loader {
	return &Loader{rulesDir: rulesDir, predicateKeys: predicateKeys}
}

// LoadAll loads all YAML seed files from the rules directory
func (l *Loader) LoadAll() ([]Rule, error) {
	var loaded []Rule

	if _, err := os.Stat(l.rulesDir); os.IsNotExist(err) {
		return loaded, nil
	}

	files, err := filepath.Glob(filepath.Join(l.rulesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(l.rulesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		seed, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		for i, rule := range seed.Rules {
			if rule.Category == "" {
				rule.Category = seed.Category
			}
			if err := l.validate(rule); err != nil {
				return nil, fmt.Errorf("invalid rule %d in %s: %w", i, file, err)
			}
			if rule.PredicateKey != "" && l.predicateKeys != nil && !l.predicateKeys[rule.PredicateKey] {
				slog.Warn("Unknown predicate key, rejecting rule",
					"rule", rule.ID, "predicate_key", rule.PredicateKey, "file", file)
				continue
			}
			loaded = append(loaded, rule)
		}

		slog.Info("Loaded rule seed file", "file", file, "rules", len(seed.Rules))
	}

	return loaded, nil
}

// loadFile loads a single YAML seed file
func (l *Loader) loadFile(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range seed.Rules {
		l.setDefaults(&seed.Rules[i])
	}

	return &seed, nil
}

// setDefaults applies default values to a rule
func (l *Loader) setDefaults(rule *Rule) {
	if rule.Severity == "" {
		rule.Severity = SeverityMedium
	}
	if rule.Tier == 0 {
		rule.Tier = 1
	}
}

// validate validates a single rule definition
func (l *Loader) validate(rule Rule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	if rule.Name == "" {
		return fmt.Errorf("rule name is required")
	}

	validCategories := map[string]bool{
		CategorySEO:   true,
		CategoryVoice: true,
		CategoryBrand: true,
	}
	if !validCategories[rule.Category] {
		return fmt.Errorf("invalid category: %s", rule.Category)
	}

	validSeverities := map[string]bool{
		SeverityLow:      true,
		SeverityMedium:   true,
		SeverityHigh:     true,
		SeverityCritical: true,
	}
	if !validSeverities[rule.Severity] {
		return fmt.Errorf("invalid severity: %s", rule.Severity)
	}

	if rule.Kind() == KindInvalid {
		return fmt.Errorf("rule must define a predicate key or an instruction")
	}

	return nil
}
