package board

// Group titles the manager maintains on the board
const (
	GroupNewIssues  = "New Issues"
	GroupInProgress = "In Progress"
	GroupCompleted  = "Completed"
	GroupWontFix    = "Won't Fix"
)

type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type Group struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type BoardInfo struct {
	ID      string
	Name    string
	Columns []Column
	Groups  []Group
}

// BoardItem is a raw item as returned by the board API
type BoardItem struct {
	ID         string
	Name       string
	GroupID    string
	ColumnText map[string]string // column id -> text value
}

// TrackedItem is an open board task the verification engine can act on
type TrackedItem struct {
	ID        string
	Name      string
	Title     string // issue title recovered from the item name
	URL       string
	IssueType string
	GroupID   string
}
