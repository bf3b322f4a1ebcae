package pipeline

import (
	"path/filepath"
	"strings"
)

// OutputName derives the artifact filename for a pipeline run. Every stage
// contributes its suffix in order; a bilingual marker follows the
// translation suffix when the original text is kept. The result is
// deterministic given the stage list and flags.
func OutputName(inputPath string, stages []Stage, keepOriginal bool) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	if ext == "" {
		ext = ".srt"
	}

	var suffixes strings.Builder
	for _, stage := range stages {
		suffixes.WriteString(stage.Suffix())
		if keepOriginal && stage.Name() == "translate" {
			suffixes.WriteString("_bilingual")
		}
	}
	return base + suffixes.String() + ext
}
