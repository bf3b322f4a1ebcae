package subtitle

import (
	"log/slog"
	"strings"

	"subforge/internal/logging"
)

// SegmentConfig bounds scene size and controls the gap heuristic.
type SegmentConfig struct {
	// SceneGap is the silence, in seconds, that suggests a scene change.
	SceneGap     float64
	MinSceneSize int
	MaxSceneSize int
}

// DefaultSegmentConfig returns the segmentation defaults.
func DefaultSegmentConfig() SegmentConfig {
	return SegmentConfig{SceneGap: 2.0, MinSceneSize: 3, MaxSceneSize: 15}
}

// Strong sentence terminators that mark a semantic boundary. The engine
// targets Chinese speech first, so the CJK forms are included alongside
// their ASCII counterparts.
var sceneBreakMarkers = []string{"。。。", "…", "...", "？", "?", "！", "!"}

func hasSceneBreakMarker(text string) bool {
	for _, marker := range sceneBreakMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// Segment groups ordered blocks into contiguous scenes. A scene boundary is
// placed before a block only when the current scene has reached
// MinSceneSize and either the scene is full (MaxSceneSize) or a time gap
// larger than SceneGap coincides with a sentence terminator in the previous
// block. Pure time-gap splitting over-fragments naturally paused speech;
// requiring the co-occurring semantic boundary avoids splitting mid-sentence.
func Segment(blocks []Block, cfg SegmentConfig, logger *slog.Logger) [][]Block {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(blocks) == 0 {
		return nil
	}
	if cfg.MinSceneSize < 1 {
		cfg.MinSceneSize = 1
	}
	if cfg.MaxSceneSize < cfg.MinSceneSize {
		cfg.MaxSceneSize = cfg.MinSceneSize
	}

	var scenes [][]Block
	var current []Block
	lastEnd := 0.0

	for _, block := range blocks {
		if len(current) >= cfg.MinSceneSize {
			full := len(current) >= cfg.MaxSceneSize
			gap := block.Start-lastEnd > cfg.SceneGap
			semanticBreak := hasSceneBreakMarker(current[len(current)-1].Text)
			if full || (gap && semanticBreak) {
				scenes = append(scenes, current)
				current = nil
			}
		}
		current = append(current, block)
		lastEnd = block.End
	}
	if len(current) > 0 {
		scenes = append(scenes, current)
	}

	scenes = mergeSmallScenes(scenes, cfg.MinSceneSize)

	logger.Debug("segmented subtitle blocks",
		logging.Int("blocks", len(blocks)),
		logging.Int("scenes", len(scenes)),
	)
	return scenes
}

// mergeSmallScenes folds any scene below the minimum size into a neighbor,
// preferring the following scene, so nothing pathologically small is sent
// downstream.
func mergeSmallScenes(scenes [][]Block, minSize int) [][]Block {
	if len(scenes) < 2 {
		return scenes
	}
	merged := make([][]Block, 0, len(scenes))
	for i := 0; i < len(scenes); i++ {
		scene := scenes[i]
		if len(scene) >= minSize {
			merged = append(merged, scene)
			continue
		}
		if i+1 < len(scenes) {
			scenes[i+1] = append(scene, scenes[i+1]...)
			continue
		}
		if len(merged) > 0 {
			merged[len(merged)-1] = append(merged[len(merged)-1], scene...)
			continue
		}
		merged = append(merged, scene)
	}
	return merged
}
