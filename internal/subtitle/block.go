package subtitle

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"subforge/internal/logging"
)

// Block is one numbered caption entry with times in seconds.
type Block struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Duration returns the display duration of the block in seconds.
func (b Block) Duration() float64 {
	return b.End - b.Start
}

// Parse splits SRT content into blocks. Blocks that fail to parse (bad
// index, missing timestamp separator, unparsable time) are dropped with a
// warning; they never abort processing.
func Parse(content string, logger *slog.Logger) []Block {
	if logger == nil {
		logger = logging.NewNop()
	}
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return nil
	}

	var blocks []Block
	for i, raw := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(raw), "\n")
		if len(lines) < 3 {
			logger.Warn("skipping caption block: too few lines", logging.Int("block", i+1))
			continue
		}

		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			logger.Warn("skipping caption block: bad index",
				logging.Int("block", i+1),
				logging.String("index", lines[0]),
			)
			continue
		}

		start, end, err := parseTimestampPair(lines[1])
		if err != nil {
			logger.Warn("skipping caption block: bad timestamp",
				logging.Int("block", i+1),
				logging.Error(err),
			)
			continue
		}

		blocks = append(blocks, Block{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return blocks
}

// Render writes blocks back out as SRT content.
func Render(blocks []Block) string {
	var sb strings.Builder
	for i, block := range blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strconv.Itoa(block.Index))
		sb.WriteByte('\n')
		sb.WriteString(FormatTimestamp(block.Start))
		sb.WriteString(" --> ")
		sb.WriteString(FormatTimestamp(block.End))
		sb.WriteByte('\n')
		sb.WriteString(block.Text)
	}
	if len(blocks) > 0 {
		sb.WriteByte('\n')
	}
	return sb.String()
}

func parseTimestampPair(line string) (float64, float64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("missing timestamp separator in %q", line)
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("end before start in %q", line)
	}
	return start, end, nil
}

// ParseTimestamp converts an SRT timestamp (HH:MM:SS,mmm) to seconds.
// A period is accepted in place of the comma.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// FormatTimestamp renders seconds as an SRT timestamp.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	h := millis / 3_600_000
	millis -= h * 3_600_000
	m := millis / 60_000
	millis -= m * 60_000
	s := millis / 1000
	millis -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, millis)
}
