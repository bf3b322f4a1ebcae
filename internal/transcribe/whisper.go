package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"subforge/internal/logging"
)

// Transcriber runs the whisper CLI against extracted audio.
type Transcriber struct {
	binary   string
	language string
	device   string
	logger   *slog.Logger
}

// NewTranscriber constructs a Transcriber. An empty binary defaults to
// whisper on PATH; device is passed through only when set.
func NewTranscriber(binary, language, device string, logger *slog.Logger) *Transcriber {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "whisper"
	}
	return &Transcriber{
		binary:   binary,
		language: strings.TrimSpace(language),
		device:   strings.TrimSpace(device),
		logger:   logging.NewComponentLogger(logger, "transcribe"),
	}
}

// Transcribe produces an SRT file for audioPath in outputDir using the
// named model and returns the subtitle path. The model must be in the
// catalog; that is checked before any work starts.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, outputDir, modelName string) (string, error) {
	modelName = strings.TrimSpace(modelName)
	if !ValidModel(modelName) {
		return "", fmt.Errorf("unsupported model %q", modelName)
	}

	args := []string{
		audioPath,
		"--model", modelName,
		"--output_dir", outputDir,
		"--output_format", "srt",
	}
	if t.language != "" {
		args = append(args, "--language", t.language)
	}
	if t.device != "" {
		args = append(args, "--device", t.device)
	}

	t.logger.Info("transcribing audio",
		logging.String("audio", audioPath),
		logging.String("model", modelName),
	)

	cmd := exec.CommandContext(ctx, t.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w: %s", err, tailLines(stderr.String(), 5))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	return filepath.Join(outputDir, base+".srt"), nil
}

func tailLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
