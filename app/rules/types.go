package rules

// Rule categories
const (
	CategorySEO   = "seo"
	CategoryVoice = "voice"
	CategoryBrand = "brand"
)

// Severity levels
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// CheckKind describes how a rule is evaluated
type CheckKind int

const (
	KindInvalid CheckKind = iota
	KindProcedural
	KindInterpretive
	KindDual
)

func (k CheckKind) String() string {
	switch k {
	case KindProcedural:
		return "procedural"
	case KindInterpretive:
		return "interpretive"
	case KindDual:
		return "dual"
	default:
		return "invalid"
	}
}

// Rule is a single audit check definition
type Rule struct {
	ID             string `yaml:"id"`
	SiteID         string `yaml:"-"`
	Name           string `yaml:"name"`
	Category       string `yaml:"category"`
	PredicateKey   string `yaml:"predicateKey"`
	Instruction    string `yaml:"instruction"`
	Description    string `yaml:"description"`
	Recommendation string `yaml:"recommendation"`
	Severity       string `yaml:"severity"`
	Tier           int    `yaml:"tier"`
	Enabled        bool   `yaml:"enabled"`
}

// Kind derives the evaluation mode from which check fields are set.
// A rule carrying both a predicate key and an instruction is evaluated
// by both engines.
func (r Rule) Kind() CheckKind {
	switch {
	case r.PredicateKey != "" && r.Instruction != "":
		return KindDual
	case r.PredicateKey != "":
		return KindProcedural
	case r.Instruction != "":
		return KindInterpretive
	default:
		return KindInvalid
	}
}

// seedFile is the on-disk shape of a rule seed document
type seedFile struct {
	Category string `yaml:"category"`
	Rules    []Rule `yaml:"rules"`
}
