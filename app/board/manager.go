package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/INHQInc/outrigger-seo-bot/app/audit"
)

// Column roles the manager needs to resolve on the board. Each role maps to
// a list of title candidates, exact matches preferred over substring hits.
var columnRoles = map[string][]string{
	"url":            {"page url", "url"},
	"severity":       {"severity"},
	"category":       {"category"},
	"description":    {"description"},
	"recommendation": {"recommendation"},
	"issue_type":     {"issue type", "type"},
	"date_found":     {"date found", "date"},
	"last_verified":  {"last verified", "verified"},
	"note":           {"verification note", "note"},
}

var requiredGroups = []string{GroupNewIssues, GroupInProgress, GroupCompleted, GroupWontFix}

// Manager maintains the audit task board: groups, column mapping and the
// task lifecycle.
type Manager struct {
	client  *Client
	boardID string
	info    *BoardInfo
	groups  map[string]string // group title -> group id
	columns map[string]string // role -> column id
}

func NewManager(client *Client, boardID string) *Manager {
	return &Manager{
		client:  client,
		boardID: boardID,
		groups:  make(map[string]string),
		columns: make(map[string]string),
	}
}

// Initialize loads the board layout and ensures the lifecycle groups exist.
// A run cannot proceed without a reachable board.
func (m *Manager) Initialize(ctx context.Context) error {
	info, err := m.client.GetBoardInfo(ctx, m.boardID)
	if err != nil {
		return fmt.Errorf("failed to initialize board: %w", err)
	}
	m.info = info

	for _, group := range info.Groups {
		m.groups[group.Title] = group.ID
	}

	for _, title := range requiredGroups {
		if _, ok := m.groups[title]; ok {
			continue
		}
		groupID, err := m.client.CreateGroup(ctx, m.boardID, title)
		if err != nil {
			return fmt.Errorf("failed to create group %q: %w", title, err)
		}
		m.groups[title] = groupID
		slog.Info("Created board group", "group", title)
	}

	for role, candidates := range columnRoles {
		columnID := resolveColumn(info.Columns, candidates)
		if columnID == "" {
			slog.Warn("No board column found for role", "role", role)
			continue
		}
		m.columns[role] = columnID
	}

	slog.Info("Board initialized",
		"board", info.Name,
		"columns_mapped", len(m.columns),
		"groups", len(m.groups))

	return nil
}

// resolveColumn finds a column id by title. Exact matches win over
// substring matches; candidates are tried in order.
func resolveColumn(columns []Column, candidates []string) string {
	for _, candidate := range candidates {
		for _, column := range columns {
			if strings.EqualFold(column.Title, candidate) {
				return column.ID
			}
		}
	}
	for _, candidate := range candidates {
		for _, column := range columns {
			if strings.Contains(strings.ToLower(column.Title), candidate) {
				return column.ID
			}
		}
	}
	return ""
}

// taskName builds the board item name for an issue
func taskName(issue audit.Issue) string {
	return fmt.Sprintf("[%s] %s - %s", issue.Severity, issue.Title, truncate(issue.URL, 50))
}

// titleFromItemName recovers the issue title from a board item name
func titleFromItemName(name string) string {
	title := name
	if strings.HasPrefix(title, "[") {
		if idx := strings.Index(title, "] "); idx >= 0 {
			title = title[idx+2:]
		}
	}
	if idx := strings.LastIndex(title, " - "); idx >= 0 {
		title = title[:idx]
	}
	return title
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// CreateIssueTask creates a board task with the full column payload
func (m *Manager) CreateIssueTask(ctx context.Context, issue audit.Issue) (string, error) {
	values := make(map[string]any)
	m.setColumn(values, "url", issue.URL)
	m.setColumn(values, "severity", issue.Severity)
	m.setColumn(values, "category", issue.Category)
	m.setColumn(values, "description", issue.Description)
	m.setColumn(values, "recommendation", issue.Recommendation)
	m.setColumn(values, "issue_type", issue.IssueType)
	if columnID, ok := m.columns["date_found"]; ok {
		values[columnID] = map[string]string{"date": time.Now().UTC().Format("2006-01-02")}
	}

	return m.client.CreateItem(ctx, m.boardID, m.groups[GroupNewIssues], taskName(issue), values)
}

// CreateIssueTaskReduced creates a board task with the name only. Used as a
// fallback when the full payload is rejected.
func (m *Manager) CreateIssueTaskReduced(ctx context.Context, issue audit.Issue) (string, error) {
	return m.client.CreateItem(ctx, m.boardID, m.groups[GroupNewIssues], taskName(issue), map[string]any{})
}

func (m *Manager) setColumn(values map[string]any, role, value string) {
	if value == "" {
		return
	}
	if columnID, ok := m.columns[role]; ok {
		values[columnID] = value
	}
}

// KnownIdentityKeys returns the deduplication keys of the open tasks
// already on the board.
func (m *Manager) KnownIdentityKeys(ctx context.Context) (map[string]bool, error) {
	items, err := m.openItems(ctx)
	if err != nil {
		return nil, err
	}

	urlColumn, hasURLColumn := m.columns["url"]
	if !hasURLColumn {
		slog.Warn("No URL column on board, duplicate detection degraded")
	}

	keys := make(map[string]bool)
	for _, item := range items {
		url := ""
		if hasURLColumn {
			url = item.ColumnText[urlColumn]
		}
		if url == "" {
			continue
		}
		keys[audit.IdentityKey(titleFromItemName(item.Name), url)] = true
	}

	return keys, nil
}

// ItemsToVerify returns the open tasks the verification engine should
// re-check.
func (m *Manager) ItemsToVerify(ctx context.Context) ([]TrackedItem, error) {
	items, err := m.openItems(ctx)
	if err != nil {
		return nil, err
	}

	urlColumn := m.columns["url"]
	typeColumn := m.columns["issue_type"]

	var tracked []TrackedItem
	for _, item := range items {
		tracked = append(tracked, TrackedItem{
			ID:        item.ID,
			Name:      item.Name,
			Title:     titleFromItemName(item.Name),
			URL:       item.ColumnText[urlColumn],
			IssueType: item.ColumnText[typeColumn],
			GroupID:   item.GroupID,
		})
	}

	return tracked, nil
}

// openItems returns the items sitting in the New Issues and In Progress
// groups.
func (m *Manager) openItems(ctx context.Context) ([]BoardItem, error) {
	items, err := m.client.GetItems(ctx, m.boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list board items: %w", err)
	}

	openGroups := map[string]bool{
		m.groups[GroupNewIssues]:  true,
		m.groups[GroupInProgress]: true,
	}

	var open []BoardItem
	for _, item := range items {
		if openGroups[item.GroupID] {
			open = append(open, item)
		}
	}

	return open, nil
}

// MarkIssueFixed moves a task to Completed and stamps the verification date
func (m *Manager) MarkIssueFixed(ctx context.Context, itemID string) error {
	if err := m.client.MoveItemToGroup(ctx, itemID, m.groups[GroupCompleted]); err != nil {
		return fmt.Errorf("failed to move item to completed: %w", err)
	}
	return m.StampVerification(ctx, itemID, "Verified fixed")
}

// StampVerification records the verification date and note on a task
func (m *Manager) StampVerification(ctx context.Context, itemID, note string) error {
	values := make(map[string]any)
	if columnID, ok := m.columns["last_verified"]; ok {
		values[columnID] = map[string]string{"date": time.Now().UTC().Format("2006-01-02")}
	}
	if columnID, ok := m.columns["note"]; ok {
		values[columnID] = note
	}
	if len(values) == 0 {
		return nil
	}

	if err := m.client.UpdateItemColumns(ctx, m.boardID, itemID, values); err != nil {
		return fmt.Errorf("failed to stamp verification: %w", err)
	}
	return nil
}
