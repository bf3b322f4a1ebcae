package subtitle

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Sentence terminators used when snapping a proportional cut point forward.
// Ordered period, question mark, exclamation mark; the earliest match wins.
var sentenceTerminators = []rune{'。', '.', '？', '?', '！', '!'}

// SplitTransformed maps transformed scene text back onto the scene's blocks,
// returning one text segment per block.
//
// When the transformed text splits on newlines into exactly as many
// non-empty lines as the scene has blocks, the mapping is positional.
// Otherwise the text is reflowed proportionally: each block receives a share
// of the characters matching its share of the scene's duration, with the cut
// point snapped forward to the nearest sentence terminator so no block ends
// mid-sentence. The final block absorbs all remaining text.
func SplitTransformed(text string, blocks []Block) []string {
	if len(blocks) == 0 {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == len(blocks) {
		return lines
	}

	return proportionalSplit(text, blocks)
}

func proportionalSplit(text string, blocks []Block) []string {
	normalized := whitespaceRun.ReplaceAllString(strings.TrimSpace(text), " ")
	runes := []rune(normalized)

	totalDuration := blocks[len(blocks)-1].End - blocks[0].Start
	segments := make([]string, 0, len(blocks))
	start := 0

	for i, block := range blocks {
		if i == len(blocks)-1 {
			segments = append(segments, strings.TrimSpace(string(runes[start:])))
			break
		}

		var share float64
		if totalDuration > 0 {
			share = block.Duration() / totalDuration
		} else {
			share = 1.0 / float64(len(blocks))
		}
		end := start + int(float64(len(runes))*share)
		if end > len(runes) {
			end = len(runes)
		}
		if end < start {
			end = start
		}
		if pos := nextTerminator(runes, end); pos >= 0 {
			end = pos + 1
		}

		segments = append(segments, strings.TrimSpace(string(runes[start:end])))
		start = end
	}
	return segments
}

// nextTerminator returns the index of the earliest sentence terminator at or
// after from, or -1 when none follows.
func nextTerminator(runes []rune, from int) int {
	for i := from; i < len(runes); i++ {
		for _, term := range sentenceTerminators {
			if runes[i] == term {
				return i
			}
		}
	}
	return -1
}
