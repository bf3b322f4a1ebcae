package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subforge/internal/logging"
	"subforge/internal/pipeline"
	"subforge/internal/store"
	"subforge/internal/subtitle"
)

// Coarse progress milestones per stage. Callers treat these as stage
// indicators, not precise completion estimates.
const (
	progressExtracting  = 10
	progressGenerating  = 30
	progressCorrecting  = 40
	progressTranslating = 70
	progressCleaning    = 90
	progressCompleted   = 100
)

func (o *Orchestrator) processTask(ctx context.Context, logger *slog.Logger, taskID string) {
	task, err := o.store.GetTask(ctx, taskID)
	if err != nil || task == nil {
		logger.Error("dequeued task could not be loaded",
			logging.String("task_id", taskID),
			logging.Error(err),
		)
		return
	}

	logger = logger.With(logging.String("task_id", taskID))
	started := time.Now()

	if err := o.runStages(ctx, logger, task, started); err != nil {
		elapsed := time.Since(started).Seconds()
		logger.Error("task failed", logging.Error(err), logging.Float64("process_time", elapsed))
		if updateErr := o.store.UpdateStatus(ctx, taskID, store.StatusUpdate{
			Status:       store.StatusError,
			Progress:     task.Progress,
			Message:      "Processing failed: " + err.Error(),
			ErrorMessage: err.Error(),
			ProcessTime:  elapsed,
		}); updateErr != nil {
			logger.Error("failed to persist error status", logging.Error(updateErr))
		}
	}
}

func (o *Orchestrator) runStages(ctx context.Context, logger *slog.Logger, task *store.Task, started time.Time) error {
	inputPath := filepath.Join(o.cfg.Paths.UploadDir, task.StoredFilename)
	stem := strings.TrimSuffix(task.StoredFilename, filepath.Ext(task.StoredFilename))
	workPath := inputPath

	if task.FileType == store.MediaVideo {
		if err := o.setStage(ctx, task, store.StatusExtractingAudio, progressExtracting, "Extracting audio"); err != nil {
			return err
		}
		audioPath := filepath.Join(o.cfg.Paths.OutputDir, stem+".mp3")
		if err := o.extractor.Extract(ctx, inputPath, audioPath); err != nil {
			return err
		}
		if err := o.store.AddFile(ctx, &store.FileRecord{
			TaskID:           task.TaskID,
			FileType:         store.FileAudio,
			OriginalFilename: task.OriginalFilename,
			StoredFilename:   filepath.Base(audioPath),
			FilePath:         audioPath,
			IsTemporary:      true,
		}); err != nil {
			return err
		}
		workPath = audioPath
	}

	if err := o.setStage(ctx, task, store.StatusGeneratingSubtitles, progressGenerating, "Generating subtitles"); err != nil {
		return err
	}
	srtPath, err := o.transcriber.Transcribe(ctx, workPath, o.cfg.Paths.OutputDir, task.ModelName)
	if err != nil {
		return err
	}
	if err := o.store.AddFile(ctx, &store.FileRecord{
		TaskID:           task.TaskID,
		FileType:         store.FileSubtitle,
		OriginalFilename: task.OriginalFilename,
		StoredFilename:   filepath.Base(srtPath),
		FilePath:         srtPath,
	}); err != nil {
		return err
	}

	if _, err := o.transform(ctx, logger, task, srtPath); err != nil {
		return err
	}

	if err := o.setStage(ctx, task, store.StatusCleaning, progressCleaning, "Cleaning temporary files"); err != nil {
		return err
	}
	paths, err := o.store.CleanupTemporaryFiles(ctx, task.TaskID)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove temporary file",
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}

	elapsed := time.Since(started).Seconds()
	if err := o.store.UpdateStatus(ctx, task.TaskID, store.StatusUpdate{
		Status:      store.StatusCompleted,
		Progress:    progressCompleted,
		Message:     "Processing complete",
		ProcessTime: elapsed,
	}); err != nil {
		return err
	}

	logger.Info("task completed", logging.Float64("process_time", elapsed))
	return nil
}

// transform applies the configured text-transform stages to the raw SRT and
// writes the processed artifact. It returns the final subtitle path, which
// is the raw SRT when no stage applies or the file has no usable blocks.
func (o *Orchestrator) transform(ctx context.Context, logger *slog.Logger, task *store.Task, srtPath string) (string, error) {
	stages, err := o.buildStages(task)
	if err != nil {
		return "", err
	}
	if len(stages) == 0 {
		return srtPath, nil
	}

	status, progress, message := transformMilestone(task, stages)
	if err := o.setStage(ctx, task, status, progress, message); err != nil {
		return "", err
	}

	content, err := os.ReadFile(srtPath)
	if err != nil {
		return "", fmt.Errorf("read subtitle file: %w", err)
	}
	blocks := subtitle.Parse(string(content), logger)
	if len(blocks) == 0 {
		logger.Warn("subtitle file has no usable blocks; skipping transforms",
			logging.String("path", srtPath),
		)
		return srtPath, nil
	}

	scenes := subtitle.Segment(blocks, subtitle.SegmentConfig{
		SceneGap:     o.cfg.Processing.SceneGap,
		MinSceneSize: o.cfg.Processing.MinSceneSize,
		MaxSceneSize: o.cfg.Processing.MaxSceneSize,
	}, logger)

	rendered, err := o.runner.Run(ctx, scenes, stages, task.KeepOriginal)
	if err != nil {
		return "", err
	}

	outPath := pipeline.OutputName(srtPath, stages, task.KeepOriginal)
	if err := os.WriteFile(outPath, []byte(subtitle.Render(rendered)), 0o644); err != nil {
		return "", fmt.Errorf("write processed subtitle: %w", err)
	}

	if err := o.store.AddFile(ctx, &store.FileRecord{
		TaskID:           task.TaskID,
		FileType:         store.FileSubtitleProcessed,
		OriginalFilename: task.OriginalFilename,
		StoredFilename:   filepath.Base(outPath),
		FilePath:         outPath,
	}); err != nil {
		return "", err
	}
	return outPath, nil
}

// transformMilestone picks the single status shown while the runner works.
// The runner applies every stage per scene in one pass, so correction and
// translation cannot be reported separately; correction leads when present,
// and a translation-only run reports translating.
func transformMilestone(task *store.Task, stages []pipeline.Stage) (store.Status, int, string) {
	if stages[0].Name() == "correct" {
		return store.StatusCorrectingSubtitles, progressCorrecting, "Correcting subtitles"
	}
	return store.StatusTranslating, progressTranslating, "Translating to " + task.TargetLang
}

func (o *Orchestrator) buildStages(task *store.Task) ([]pipeline.Stage, error) {
	var stages []pipeline.Stage
	if o.cfg.LLM.CorrectionEnabled && o.corrector != nil {
		stage, err := pipeline.NewCorrectionStage(o.corrector)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	if task.TargetLang != "" && o.translator != nil {
		stage, err := pipeline.NewTranslationStage(o.translator, task.TargetLang)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

func (o *Orchestrator) setStage(ctx context.Context, task *store.Task, status store.Status, progress int, message string) error {
	task.Progress = progress
	return o.store.UpdateStatus(ctx, task.TaskID, store.StatusUpdate{
		Status:   status,
		Progress: progress,
		Message:  message,
	})
}
