package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	RulesDir  string
	SitesFile string
	Port      string
	BaseUrl   string

	// Task board (Monday.com)
	MondayAPIURL   string
	MondayAPIToken string
	MondayBoardID  string

	// Reasoning service (Anthropic)
	AnthropicAPIURL  string
	AnthropicAPIKey  string
	AnthropicModel   string
	LLMMaxMarkupLen  int
	LLMRulesPerBatch int
	LLMBatchDelayMs  int

	// Page fetching
	FetchProxyURL  string
	FetchProxyKey  string
	FetchTimeout   int
	RequestDelayMs int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
