package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ RunnerInterface = (*Runner)(nil)

// Runner executes queued tasks strictly one at a time. Audit runs hammer
// the audited site and the board API, so there is deliberately a single
// worker.
type Runner struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewRunner() *Runner {
	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 10),
	}
}

func (r *Runner) Start() {
	r.wg.Add(1)
	go r.worker()
}

func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
	close(r.taskQueue)
}

func (r *Runner) EnqueueTask(task TaskInterface) error {
	select {
	case r.taskQueue <- task:
		return nil
	case <-r.ctx.Done():
		return r.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (r *Runner) worker() {
	defer r.wg.Done()

	for {
		select {
		case task, ok := <-r.taskQueue:
			if !ok {
				return
			}
			r.executeTask(task)

		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Runner) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(r.ctx, 60*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "subject", task.GetSubject(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-r.ctx.Done():
					slog.Debug("Runner stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := r.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
