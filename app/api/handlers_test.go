package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/INHQInc/outrigger-seo-bot/app/database"
	"github.com/INHQInc/outrigger-seo-bot/app/rules"
	"github.com/INHQInc/outrigger-seo-bot/app/tasks"
	"github.com/gin-gonic/gin"
)

type fakeSiteRepo struct {
	sites []database.Site
}

func (r *fakeSiteRepo) GetSite(siteID string) (*database.Site, error) {
	for _, site := range r.sites {
		if site.ID == siteID {
			return &site, nil
		}
	}
	return nil, nil
}

func (r *fakeSiteRepo) GetEnabledSites() ([]database.Site, error) {
	return r.sites, nil
}

func (r *fakeSiteRepo) GetSiteCount() (int, error) {
	return len(r.sites), nil
}

func (r *fakeSiteRepo) UpsertSite(database.Site) error {
	return nil
}

type fakeRuleRepo struct{}

func (r *fakeRuleRepo) GetEnabledRules(string) ([]rules.Rule, error) { return nil, nil }
func (r *fakeRuleRepo) GetRuleCount() (int, error)                   { return 0, nil }
func (r *fakeRuleRepo) UpsertRule(rules.Rule) error                  { return nil }

type fakeRunRepo struct{}

func (r *fakeRunRepo) GetRun(string) (*database.AuditRun, error)       { return nil, nil }
func (r *fakeRunRepo) GetRecentRuns(int) ([]database.AuditRun, error)  { return nil, nil }
func (r *fakeRunRepo) SaveRun(database.AuditRun) error                 { return nil }
func (r *fakeRunRepo) GetProgress(string) (*database.AuditProgress, error) {
	return nil, nil
}
func (r *fakeRunRepo) UpdateProgress(database.AuditProgress) error { return nil }

type fakeRunner struct {
	queued []tasks.TaskInterface
	full   bool
}

func (r *fakeRunner) Start() {}
func (r *fakeRunner) Stop()  {}

func (r *fakeRunner) EnqueueTask(task tasks.TaskInterface) error {
	if r.full {
		return fmt.Errorf("task queue is full")
	}
	r.queued = append(r.queued, task)
	return nil
}

type stubTask struct {
	tasks.Task
}

func (s *stubTask) Execute(context.Context) error { return nil }

func stubTaskFactory(runID, siteID string, categories map[string]bool) tasks.TaskInterface {
	return &stubTask{Task: tasks.NewTask(tasks.TaskTypeAuditRun, siteID)}
}

func newTestHandler(siteRepo database.SiteRepository, runner tasks.RunnerInterface) *Handler {
	return NewHandler(siteRepo, &fakeRuleRepo{}, &fakeRunRepo{}, runner, stubTaskFactory)
}

func TestTriggerAuditReturnsSummaryShape(t *testing.T) {
	gin.SetMode(gin.TestMode)

	runner := &fakeRunner{}
	handler := newTestHandler(&fakeSiteRepo{sites: []database.Site{{ID: "site-1", Enabled: true}}}, runner)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/audit", nil)

	handler.TriggerAudit(c)

	if w.Code != 202 {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if len(runner.queued) != 1 {
		t.Fatalf("expected 1 queued task, got %d", len(runner.queued))
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body["run_id"] == "" || body["run_id"] == nil {
		t.Error("expected a run_id in the response")
	}
	if body["site_id"] != "site-1" {
		t.Errorf("expected site_id 'site-1', got %v", body["site_id"])
	}
	if body["status"] != "queued" {
		t.Errorf("expected status 'queued', got %v", body["status"])
	}

	// The accepted body mirrors the run summary fields, zeroed
	for _, field := range []string{"pages_checked", "tasks_created", "duplicates_skipped", "issues_verified", "issues_fixed"} {
		value, ok := body[field]
		if !ok {
			t.Errorf("expected summary field %q in the response", field)
			continue
		}
		if value.(float64) != 0 {
			t.Errorf("expected %q to be zero for a queued run, got %v", field, value)
		}
	}
}

func TestTriggerAuditNoSitesConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := newTestHandler(&fakeSiteRepo{}, &fakeRunner{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/audit", nil)

	handler.TriggerAudit(c)

	if w.Code != 404 {
		t.Errorf("expected 404 when no sites are configured, got %d", w.Code)
	}
}

func TestTriggerAuditQueueFull(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := newTestHandler(&fakeSiteRepo{sites: []database.Site{{ID: "site-1", Enabled: true}}}, &fakeRunner{full: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/audit", nil)

	handler.TriggerAudit(c)

	if w.Code != 503 {
		t.Errorf("expected 503 when the queue is full, got %d", w.Code)
	}
}
