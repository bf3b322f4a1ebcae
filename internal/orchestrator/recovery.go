package orchestrator

import (
	"context"
	"os"
	"path/filepath"

	"subforge/internal/logging"
	"subforge/internal/store"
)

// Recover re-enqueues tasks that were interrupted by a shutdown or crash.
// Tasks whose input file still exists restart from the beginning; tasks
// whose input is gone are marked failed. Call before Start accepts new
// submissions so recovered work counts toward the admission limit.
func (o *Orchestrator) Recover(ctx context.Context) error {
	tasks, err := o.store.IncompleteTasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	var requeue []string
	failed := 0
	for _, task := range tasks {
		inputPath := filepath.Join(o.cfg.Paths.UploadDir, task.StoredFilename)
		if _, err := os.Stat(inputPath); err != nil {
			failed++
			o.logger.Warn("dropping interrupted task, input file lost",
				logging.String("task_id", task.TaskID),
				logging.String("path", inputPath),
			)
			if updateErr := o.store.UpdateStatus(ctx, task.TaskID, store.StatusUpdate{
				Status:       store.StatusError,
				Progress:     task.Progress,
				Message:      "Recovery failed: input file lost",
				ErrorMessage: "input file lost",
			}); updateErr != nil {
				return updateErr
			}
			continue
		}

		if err := o.store.UpdateStatus(ctx, task.TaskID, store.StatusUpdate{
			Status:   store.StatusQueued,
			Progress: 0,
			Message:  "Task requeued after restart",
		}); err != nil {
			return err
		}
		requeue = append(requeue, task.TaskID)
	}

	o.mu.Lock()
	// A lowered workers/max_tasks_factor setting can leave more persisted
	// tasks than the channel buffer holds, and no worker is draining it yet.
	// Grow the buffer so the enqueue loop cannot block.
	if needed := len(o.jobs) + len(requeue); needed > cap(o.jobs) {
		resized := make(chan string, needed)
		for len(o.jobs) > 0 {
			resized <- <-o.jobs
		}
		o.jobs = resized
	}
	for _, taskID := range requeue {
		o.queued++
		o.jobs <- taskID
	}
	o.mu.Unlock()

	o.logger.Info("recovery complete",
		logging.Int("requeued", len(requeue)),
		logging.Int("failed", failed),
	)
	return nil
}
