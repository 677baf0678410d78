package database

import (
	"time"
)

type Site struct {
	ID            string
	Name          string
	Domain        string
	SitemapURL    string
	MondayBoardID string // Overrides the configured default board when set
	DaysToCheck   int    // Sitemap lastmod cutoff window
	MaxPages      int
	EnableLLM     bool
	Enabled       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type AuditRun struct {
	ID                string
	SiteID            string
	StartedAt         time.Time
	FinishedAt        *time.Time
	PagesChecked      int
	SEOIssues         int
	VoiceIssues       int
	BrandIssues       int
	TasksCreated      int
	DuplicatesSkipped int
	TasksFailed       int
	IssuesVerified    int
	IssuesFixed       int
	Errors            []string // Persisted as a JSON array
}

type AuditProgress struct {
	RunID        string
	Phase        string // queued, auditing, verifying, complete, failed
	PagesDone    int
	PagesTotal   int
	IssuesFound  int
	TasksCreated int
	UpdatedAt    time.Time
}
