package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"subforge/internal/logging"
	"subforge/internal/subtitle"
)

// Runner fans scenes out across a bounded worker pool, applies the stage
// list to each scene in order, and relinearizes the per-scene results.
type Runner struct {
	workers int
	logger  *slog.Logger
}

// NewRunner constructs a Runner with the given scene worker bound.
func NewRunner(workers int, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		workers: workers,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run transforms every scene and returns the rendered blocks in original
// block order. Scene completion order does not affect output order: results
// are collected keyed by scene index. Any scene failure fails the whole run
// and cancels the remaining scenes; partial results are discarded.
func (r *Runner) Run(ctx context.Context, scenes [][]subtitle.Block, stages []Stage, keepOriginal bool) ([]subtitle.Block, error) {
	if len(scenes) == 0 {
		return nil, nil
	}
	if len(stages) == 0 {
		var out []subtitle.Block
		for _, scene := range scenes {
			out = append(out, scene...)
		}
		return out, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][]subtitle.Block, len(scenes))
	errs := make(chan error, len(scenes))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i, scene := range scenes {
		wg.Add(1)
		go func(index int, scene []subtitle.Block) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-runCtx.Done():
				errs <- runCtx.Err()
				return
			}

			rendered, err := r.processScene(runCtx, index, scene, stages, keepOriginal)
			if err != nil {
				errs <- err
				cancel()
				return
			}
			results[index] = rendered
			errs <- nil
		}(i, scene)
	}
	wg.Wait()

	// First failure wins; cancellations triggered by that failure are noise.
	var firstErr error
	for range scenes {
		err := <-errs
		if err == nil {
			continue
		}
		if firstErr == nil || (errors.Is(firstErr, context.Canceled) && !errors.Is(err, context.Canceled)) {
			firstErr = err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}

	var out []subtitle.Block
	for _, rendered := range results {
		out = append(out, rendered...)
	}
	return out, nil
}

func (r *Runner) processScene(ctx context.Context, index int, scene []subtitle.Block, stages []Stage, keepOriginal bool) ([]subtitle.Block, error) {
	texts := make([]string, len(scene))
	for i, block := range scene {
		texts[i] = block.Text
	}
	text := strings.Join(texts, "\n")

	for _, stage := range stages {
		transformed, err := stage.Transform(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %s: %w", index+1, stage.Name(), err)
		}
		text = transformed
	}

	segments := subtitle.SplitTransformed(text, scene)
	rendered := make([]subtitle.Block, len(scene))
	for i, block := range scene {
		segment := segments[i]
		if keepOriginal {
			segment = block.Text + "\n" + segment
		}
		rendered[i] = subtitle.Block{
			Index: block.Index,
			Start: block.Start,
			End:   block.End,
			Text:  segment,
		}
	}

	r.logger.Debug("scene processed",
		logging.Int("scene", index+1),
		logging.Int("blocks", len(scene)),
	)
	return rendered, nil
}
