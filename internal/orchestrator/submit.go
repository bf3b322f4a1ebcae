package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"subforge/internal/language"
	"subforge/internal/logging"
	"subforge/internal/store"
	"subforge/internal/transcribe"
)

// CapacityError reports a submission refused at the concurrency ceiling.
// No task state is created; the caller should retry later.
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("task queue at capacity (%d tasks)", e.Limit)
}

// IsCapacityError reports whether err is an admission rejection.
func IsCapacityError(err error) bool {
	var capacityErr *CapacityError
	return errors.As(err, &capacityErr)
}

// Submission describes a new job. FilePath must point at the stored input
// file; StoredFilename is its unique name under the upload directory.
type Submission struct {
	TaskID           string
	OriginalFilename string
	StoredFilename   string
	FilePath         string
	FileType         store.MediaType
	TargetLang       string
	KeepOriginal     bool
	ModelName        string
}

// Submit validates a job, admits it if capacity allows, persists the task
// and input file rows, and enqueues it. The admission check, task-row
// creation, and enqueue share one critical section so two submissions
// cannot both squeeze past the limit.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) error {
	if strings.TrimSpace(sub.TaskID) == "" {
		return errors.New("submit: task id is required")
	}
	if sub.FileType != store.MediaVideo && sub.FileType != store.MediaAudio {
		return fmt.Errorf("submit: unsupported file type %q", sub.FileType)
	}

	modelName := strings.TrimSpace(sub.ModelName)
	if modelName == "" {
		modelName = o.cfg.Whisper.Model
	}
	if !transcribe.ValidModel(modelName) {
		return fmt.Errorf("submit: unsupported model %q", modelName)
	}

	targetLang := language.Display(sub.TargetLang)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active+o.queued >= o.maxTasks {
		return &CapacityError{Limit: o.maxTasks}
	}

	task := &store.Task{
		TaskID:           sub.TaskID,
		OriginalFilename: sub.OriginalFilename,
		StoredFilename:   sub.StoredFilename,
		FileType:         sub.FileType,
		Status:           store.StatusQueued,
		Message:          "Task queued",
		TargetLang:       targetLang,
		KeepOriginal:     sub.KeepOriginal,
		ModelName:        modelName,
	}
	if err := o.store.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	if err := o.store.AddFile(ctx, &store.FileRecord{
		TaskID:           sub.TaskID,
		FileType:         store.FileKind(sub.FileType),
		OriginalFilename: sub.OriginalFilename,
		StoredFilename:   sub.StoredFilename,
		FilePath:         sub.FilePath,
	}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	o.queued++
	o.jobs <- sub.TaskID

	o.logger.Info("task submitted",
		logging.String("task_id", sub.TaskID),
		logging.String("file_type", string(sub.FileType)),
		logging.Int("queued", o.queued),
	)
	return nil
}
