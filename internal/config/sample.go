package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const sampleConfig = `# subforge configuration

[paths]
upload_dir = "~/.local/share/subforge/uploads"
output_dir = "~/.local/share/subforge/output"
log_dir = "~/.local/share/subforge/logs"
api_bind = "127.0.0.1:7519"

[whisper]
binary = "whisper"
# One of: tiny, base, small, medium, large-v3, large-v3-turbo
model = "large-v3-turbo"
language = "Chinese"
# Optional. Set to "cuda" to force GPU transcription.
device = ""

[ffmpeg]
binary = "ffmpeg"

[llm]
api_key = "your_api_key_here"
base_url = "https://api.deepseek.com/v1"
model = "deepseek-chat"
timeout_seconds = 120
correction_enabled = false

[processing]
workers = 2
max_tasks_factor = 3
scene_workers = 3
scene_gap = 2.0
min_scene_size = 3
max_scene_size = 15

[logging]
# "console" or "json"
format = "console"
level = "info"
`

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
