package audit

import (
	"context"
	"fmt"
	"log/slog"
)

// TaskBoard is the slice of the board manager the publisher needs
type TaskBoard interface {
	CreateIssueTask(ctx context.Context, issue Issue) (string, error)
	CreateIssueTaskReduced(ctx context.Context, issue Issue) (string, error)
}

// Publisher turns issues into board tasks, deduplicating against tasks that
// already exist on the board and tasks created earlier in the same run.
type Publisher struct {
	board     TaskBoard
	knownKeys map[string]bool
}

// NewPublisher creates a publisher seeded with the identity keys of tasks
// already present on the board.
func NewPublisher(board TaskBoard, knownKeys map[string]bool) *Publisher {
	if knownKeys == nil {
		knownKeys = make(map[string]bool)
	}
	return &Publisher{
		board:     board,
		knownKeys: knownKeys,
	}
}

// Run publishes the given issues, updating the run summary counters. A
// publish failure is retried once with a reduced payload before being
// recorded as failed; it never aborts the run.
func (pb *Publisher) Run(ctx context.Context, issues []Issue, summary *RunSummary) {
	for _, issue := range issues {
		key := issue.Key()
		if pb.knownKeys[key] {
			summary.DuplicatesSkipped++
			slog.Debug("Skipping duplicate issue", "key", key)
			continue
		}

		itemID, err := pb.board.CreateIssueTask(ctx, issue)
		if err != nil {
			slog.Warn("Task creation failed, retrying with reduced payload",
				"key", key, "error", err)
			itemID, err = pb.board.CreateIssueTaskReduced(ctx, issue)
		}
		if err != nil {
			summary.TasksFailed++
			summary.AddError(fmt.Sprintf("failed to create task for %s: %v", key, err))
			continue
		}

		pb.knownKeys[key] = true
		summary.TasksCreated++
		summary.CountIssue(issue.Category)

		slog.Info("Task created", "item_id", itemID, "issue", issue.Title, "url", issue.URL)
	}
}
