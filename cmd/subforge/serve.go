package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"subforge/internal/api"
	"subforge/internal/logging"
	"subforge/internal/media"
	"subforge/internal/orchestrator"
	"subforge/internal/services/llm"
	"subforge/internal/store"
	"subforge/internal/transcribe"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the subtitle pipeline daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(cmdCtx context.Context, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "subforge.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another subforge instance holds %s", lockPath)
	}
	defer lock.Unlock()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open task store", logging.Error(err))
		return err
	}
	defer st.Close()

	deps := orchestrator.Deps{
		Store:       st,
		Extractor:   media.NewExtractor(cfg.FFmpegBinary(), logger),
		Transcriber: transcribe.NewTranscriber(cfg.Whisper.Binary, cfg.Whisper.Language, cfg.Whisper.Device, logger),
		Logger:      logger,
	}
	if key := strings.TrimSpace(cfg.LLM.APIKey); key != "" {
		client := llm.NewClient(key,
			llm.WithBaseURL(cfg.LLM.BaseURL),
			llm.WithModel(cfg.LLM.Model),
			llm.WithTimeout(time.Duration(cfg.LLM.TimeoutSeconds)*time.Second),
		)
		deps.Corrector = client
		deps.Translator = client
	} else {
		logger.Warn("llm api key not configured; correction and translation stages disabled")
	}

	orch, err := orchestrator.New(cfg, deps)
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}
	if err := orch.Recover(signalCtx); err != nil {
		logger.Error("task recovery failed", logging.Error(err))
		return err
	}
	if err := orch.Start(signalCtx); err != nil {
		return fmt.Errorf("start orchestrator: %w", err)
	}
	defer orch.Stop()

	server, err := api.NewServer(cfg, st, orch, logger)
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}
	if err := server.Start(signalCtx); err != nil {
		return err
	}
	defer server.Stop()

	<-signalCtx.Done()
	logger.Info("subforge daemon shutting down")
	return nil
}
