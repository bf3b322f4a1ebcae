package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"subforge/internal/config"
	"subforge/internal/logging"
	"subforge/internal/pipeline"
	"subforge/internal/store"
)

// AudioExtractor pulls the audio stream out of a media file.
type AudioExtractor interface {
	Extract(ctx context.Context, inputPath, outputPath string) error
}

// SpeechToText turns an audio file into an SRT file in outputDir and
// returns the subtitle path.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath, outputDir, modelName string) (string, error)
}

// Deps bundles the collaborators an Orchestrator needs. Corrector and
// Translator are optional; the matching pipeline stages are skipped when
// they are nil.
type Deps struct {
	Store       *store.Store
	Extractor   AudioExtractor
	Transcriber SpeechToText
	Corrector   pipeline.Corrector
	Translator  pipeline.Translator
	Logger      *slog.Logger
}

// Orchestrator owns the task worker pool and admission bookkeeping.
type Orchestrator struct {
	cfg         *config.Config
	store       *store.Store
	extractor   AudioExtractor
	transcriber SpeechToText
	corrector   pipeline.Corrector
	translator  pipeline.Translator
	runner      *pipeline.Runner
	logger      *slog.Logger

	// mu guards the admission counters and task-row creation; it is held
	// only for that bookkeeping, never across pipeline work.
	mu       sync.Mutex
	active   int
	queued   int
	maxTasks int

	jobs    chan string
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs an Orchestrator from config and collaborators.
func New(cfg *config.Config, deps Deps) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if deps.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if deps.Transcriber == nil {
		return nil, errors.New("transcriber is required")
	}

	logger := logging.NewComponentLogger(deps.Logger, "orchestrator")
	maxTasks := cfg.MaxTasks()

	return &Orchestrator{
		cfg:         cfg,
		store:       deps.Store,
		extractor:   deps.Extractor,
		transcriber: deps.Transcriber,
		corrector:   deps.Corrector,
		translator:  deps.Translator,
		runner:      pipeline.NewRunner(cfg.Processing.SceneWorkers, deps.Logger),
		logger:      logger,
		maxTasks:    maxTasks,
		jobs:        make(chan string, maxTasks),
	}, nil
}

// Start launches the worker pool.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return errors.New("orchestrator already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.running = true
	workers := o.cfg.Processing.Workers
	o.wg.Add(workers)
	o.mu.Unlock()

	for i := 0; i < workers; i++ {
		go o.runWorker(runCtx, i+1)
	}

	o.logger.Info("orchestrator started",
		logging.Int("workers", workers),
		logging.Int("max_tasks", o.maxTasks),
	)
	return nil
}

// Stop terminates the worker pool and waits for in-flight tasks.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	cancel := o.cancel
	o.running = false
	o.cancel = nil
	o.mu.Unlock()

	cancel()
	o.wg.Wait()
}

func (o *Orchestrator) runWorker(ctx context.Context, id int) {
	defer o.wg.Done()
	logger := o.logger.With(logging.Int("worker", id))

	for {
		select {
		case <-ctx.Done():
			return
		case taskID := <-o.jobs:
			o.mu.Lock()
			o.queued--
			o.active++
			o.mu.Unlock()

			o.processTask(ctx, logger, taskID)

			o.mu.Lock()
			o.active--
			o.mu.Unlock()
		}
	}
}

// Counts returns the current active and queued task counts.
func (o *Orchestrator) Counts() (active, queued int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active, o.queued
}
