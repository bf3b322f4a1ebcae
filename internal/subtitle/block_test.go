package subtitle

import (
	"strings"
	"testing"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,500
hello there

2
00:00:04,000 --> 00:00:06,250
general kenobi
`

func TestParseBasic(t *testing.T) {
	blocks := Parse(sampleSRT, nil)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Index != 1 || blocks[0].Start != 1.0 || blocks[0].End != 3.5 {
		t.Errorf("unexpected first block: %+v", blocks[0])
	}
	if blocks[0].Text != "hello there" {
		t.Errorf("unexpected first block text: %q", blocks[0].Text)
	}
	if blocks[1].Text != "general kenobi" {
		t.Errorf("unexpected second block text: %q", blocks[1].Text)
	}
}

func TestParseCRLFAndMultilineText(t *testing.T) {
	content := "1\r\n00:00:00,000 --> 00:00:02,000\r\nline one\r\nline two\r\n"
	blocks := Parse(content, nil)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Text != "line one\nline two" {
		t.Errorf("unexpected text: %q", blocks[0].Text)
	}
}

func TestParseDropsMalformedBlocks(t *testing.T) {
	content := `not-a-number
00:00:01,000 --> 00:00:02,000
bad index

2
00:00:03,000 missing arrow 00:00:04,000
bad timestamp

3
00:00:05,000 --> 00:00:04,000
end before start

4
00:00:06,000 --> 00:00:07,000
survivor
`
	blocks := Parse(content, nil)
	if len(blocks) != 1 {
		t.Fatalf("expected only the well-formed block to survive, got %d", len(blocks))
	}
	if blocks[0].Index != 4 || blocks[0].Text != "survivor" {
		t.Errorf("unexpected surviving block: %+v", blocks[0])
	}
}

func TestParseTimestampVariants(t *testing.T) {
	got, err := ParseTimestamp("00:01:02,500")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if got != 62.5 {
		t.Errorf("expected 62.5, got %v", got)
	}

	// Period in place of the comma is accepted.
	got, err = ParseTimestamp("01:00:00.250")
	if err != nil {
		t.Fatalf("ParseTimestamp with period: %v", err)
	}
	if got != 3600.25 {
		t.Errorf("expected 3600.25, got %v", got)
	}

	if _, err := ParseTimestamp("garbage"); err == nil {
		t.Error("expected error for garbage timestamp")
	}
	if _, err := ParseTimestamp(""); err == nil {
		t.Error("expected error for empty timestamp")
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(62.5); got != "00:01:02,500" {
		t.Errorf("expected 00:01:02,500, got %s", got)
	}
	if got := FormatTimestamp(0); got != "00:00:00,000" {
		t.Errorf("expected zero timestamp, got %s", got)
	}
	if got := FormatTimestamp(-5); got != "00:00:00,000" {
		t.Errorf("negative seconds should clamp to zero, got %s", got)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	blocks := Parse(sampleSRT, nil)
	rendered := Render(blocks)
	if !strings.HasSuffix(rendered, "\n") {
		t.Error("rendered SRT should end with a newline")
	}
	again := Parse(rendered, nil)
	if len(again) != len(blocks) {
		t.Fatalf("round trip changed block count: %d != %d", len(again), len(blocks))
	}
	for i := range blocks {
		if again[i] != blocks[i] {
			t.Errorf("block %d changed in round trip: %+v != %+v", i, again[i], blocks[i])
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(nil); got != "" {
		t.Errorf("expected empty render, got %q", got)
	}
}
