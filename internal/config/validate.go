package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants before the daemon starts.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.UploadDir) == "" {
		problems = append(problems, "paths.upload_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		problems = append(problems, "paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must be set")
	}
	if c.Processing.Workers < 1 {
		problems = append(problems, "processing.workers must be at least 1")
	}
	if c.Processing.MaxTasksFactor < 1 {
		problems = append(problems, "processing.max_tasks_factor must be at least 1")
	}
	if c.Processing.SceneWorkers < 1 {
		problems = append(problems, "processing.scene_workers must be at least 1")
	}
	if c.Processing.SceneGap <= 0 {
		problems = append(problems, "processing.scene_gap must be positive")
	}
	if c.Processing.MinSceneSize < 1 {
		problems = append(problems, "processing.min_scene_size must be at least 1")
	}
	if c.Processing.MaxSceneSize < c.Processing.MinSceneSize {
		problems = append(problems, "processing.max_scene_size must be at least processing.min_scene_size")
	}
	if c.LLM.TimeoutSeconds < 1 {
		problems = append(problems, "llm.timeout_seconds must be at least 1")
	}
	if c.LLM.CorrectionEnabled && strings.TrimSpace(c.LLM.APIKey) == "" {
		problems = append(problems, "llm.api_key must be set when llm.correction_enabled is true")
	}

	if len(problems) == 0 {
		return nil
	}
	if len(problems) == 1 {
		return errors.New(problems[0])
	}
	return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
}
