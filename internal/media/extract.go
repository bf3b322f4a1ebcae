package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"subforge/internal/logging"
)

// Extractor pulls the audio stream out of a media file with ffmpeg.
type Extractor struct {
	binary string
	logger *slog.Logger
}

// NewExtractor constructs an Extractor. An empty binary defaults to ffmpeg
// on PATH.
func NewExtractor(binary string, logger *slog.Logger) *Extractor {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Extractor{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "media"),
	}
}

// Extract writes the audio stream of inputPath to outputPath at maximum
// quality. The last lines of ffmpeg's stderr are folded into the error.
func (e *Extractor) Extract(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-q:a", "0",
		"-map", "a",
		outputPath,
	}

	e.logger.Info("extracting audio",
		logging.String("input", inputPath),
		logging.String("output", outputPath),
	)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w: %s", err, tailLines(stderr.String(), 5))
	}
	return nil
}

func tailLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
