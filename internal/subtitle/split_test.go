package subtitle

import "testing"

func TestSplitTransformedPositional(t *testing.T) {
	blocks := []Block{
		{Index: 1, Start: 0, End: 2},
		{Index: 2, Start: 2, End: 4},
		{Index: 3, Start: 4, End: 6},
	}
	segments := SplitTransformed("first\nsecond\nthird", blocks)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if segments[i] != want[i] {
			t.Errorf("segment %d: got %q, want %q", i, segments[i], want[i])
		}
	}
}

func TestSplitTransformedPositionalIgnoresBlankLines(t *testing.T) {
	blocks := []Block{
		{Index: 1, Start: 0, End: 2},
		{Index: 2, Start: 2, End: 4},
	}
	segments := SplitTransformed("one\n\n  \ntwo\n", blocks)
	if segments[0] != "one" || segments[1] != "two" {
		t.Fatalf("expected [one two], got %v", segments)
	}
}

func TestSplitTransformedProportionalSnapsToTerminator(t *testing.T) {
	blocks := []Block{
		{Index: 1, Start: 0, End: 2},
		{Index: 2, Start: 2, End: 4},
	}
	// Two lines would be positional; one line forces the proportional path.
	// The midpoint cut lands inside the first sentence and snaps forward to
	// its terminator.
	segments := SplitTransformed("一二三四五。六七。", blocks)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0] != "一二三四五。" {
		t.Errorf("first segment should end at the terminator, got %q", segments[0])
	}
	if segments[1] != "六七。" {
		t.Errorf("second segment should hold the remainder, got %q", segments[1])
	}
}

func TestSplitTransformedProportionalNoTerminator(t *testing.T) {
	blocks := []Block{
		{Index: 1, Start: 0, End: 2},
		{Index: 2, Start: 2, End: 4},
	}
	segments := SplitTransformed("abcdefgh", blocks)
	if segments[0] != "abcd" || segments[1] != "efgh" {
		t.Fatalf("expected even split [abcd efgh], got %v", segments)
	}
}

func TestSplitTransformedProportionalByDuration(t *testing.T) {
	// First block covers three quarters of the scene, so it receives three
	// quarters of the characters.
	blocks := []Block{
		{Index: 1, Start: 0, End: 6},
		{Index: 2, Start: 6, End: 8},
	}
	segments := SplitTransformed("abcdefgh", blocks)
	if segments[0] != "abcdef" || segments[1] != "gh" {
		t.Fatalf("expected [abcdef gh], got %v", segments)
	}
}

func TestSplitTransformedZeroDurationFallsBackToEvenShares(t *testing.T) {
	blocks := []Block{
		{Index: 1, Start: 1, End: 1},
		{Index: 2, Start: 1, End: 1},
	}
	segments := SplitTransformed("abcd", blocks)
	if segments[0] != "ab" || segments[1] != "cd" {
		t.Fatalf("expected [ab cd], got %v", segments)
	}
}

func TestSplitTransformedCollapsesWhitespaceInProportionalPath(t *testing.T) {
	blocks := []Block{
		{Index: 1, Start: 0, End: 2},
		{Index: 2, Start: 2, End: 4},
	}
	segments := SplitTransformed("ab  cd ef\tgh", blocks)
	if segments[0] != "ab cd" || segments[1] != "ef gh" {
		t.Fatalf("expected [\"ab cd\" \"ef gh\"], got %v", segments)
	}
}

func TestSplitTransformedEmptyBlocks(t *testing.T) {
	if segments := SplitTransformed("anything", nil); segments != nil {
		t.Errorf("expected nil for no blocks, got %v", segments)
	}
}
