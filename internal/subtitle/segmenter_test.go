package subtitle

import "testing"

// contiguousBlocks builds n blocks of one second each with no gaps.
func contiguousBlocks(n int) []Block {
	blocks := make([]Block, n)
	for i := range blocks {
		blocks[i] = Block{
			Index: i + 1,
			Start: float64(i),
			End:   float64(i + 1),
			Text:  "line",
		}
	}
	return blocks
}

func sceneSizes(scenes [][]Block) []int {
	sizes := make([]int, len(scenes))
	for i, scene := range scenes {
		sizes[i] = len(scene)
	}
	return sizes
}

func TestSegmentGapWithSemanticBreak(t *testing.T) {
	blocks := contiguousBlocks(12)
	// Sentence ends at block 4, followed by a 5 second silence.
	blocks[3].Text = "is anyone there?"
	for i := 4; i < 12; i++ {
		blocks[i].Start += 5
		blocks[i].End += 5
	}

	scenes := Segment(blocks, SegmentConfig{SceneGap: 2.0, MinSceneSize: 3, MaxSceneSize: 15}, nil)
	sizes := sceneSizes(scenes)
	if len(sizes) != 2 || sizes[0] != 4 || sizes[1] != 8 {
		t.Fatalf("expected scenes [4 8], got %v", sizes)
	}
	if scenes[1][0].Index != 5 {
		t.Errorf("second scene should start at block 5, got %d", scenes[1][0].Index)
	}
}

func TestSegmentGapWithoutSemanticBreakDoesNotSplit(t *testing.T) {
	blocks := contiguousBlocks(8)
	// Long pause mid-sentence; no terminator in the preceding block.
	for i := 4; i < 8; i++ {
		blocks[i].Start += 5
		blocks[i].End += 5
	}

	scenes := Segment(blocks, SegmentConfig{SceneGap: 2.0, MinSceneSize: 3, MaxSceneSize: 15}, nil)
	if len(scenes) != 1 {
		t.Fatalf("expected a single scene, got %v", sceneSizes(scenes))
	}
}

func TestSegmentSemanticBreakWithoutGapDoesNotSplit(t *testing.T) {
	blocks := contiguousBlocks(8)
	blocks[3].Text = "that is all!"

	scenes := Segment(blocks, SegmentConfig{SceneGap: 2.0, MinSceneSize: 3, MaxSceneSize: 15}, nil)
	if len(scenes) != 1 {
		t.Fatalf("expected a single scene, got %v", sceneSizes(scenes))
	}
}

func TestSegmentMaxSizeForcesSplit(t *testing.T) {
	scenes := Segment(contiguousBlocks(10), SegmentConfig{SceneGap: 2.0, MinSceneSize: 2, MaxSceneSize: 4}, nil)
	sizes := sceneSizes(scenes)
	if len(sizes) != 3 || sizes[0] != 4 || sizes[1] != 4 || sizes[2] != 2 {
		t.Fatalf("expected scenes [4 4 2], got %v", sizes)
	}
}

func TestSegmentNeverSplitsBelowMinSize(t *testing.T) {
	blocks := contiguousBlocks(4)
	for i := range blocks {
		blocks[i].Text = "done!"
		blocks[i].Start += float64(i) * 10
		blocks[i].End += float64(i) * 10
	}

	scenes := Segment(blocks, SegmentConfig{SceneGap: 2.0, MinSceneSize: 5, MaxSceneSize: 15}, nil)
	if len(scenes) != 1 || len(scenes[0]) != 4 {
		t.Fatalf("expected one scene of 4 blocks, got %v", sceneSizes(scenes))
	}
}

func TestSegmentMergesSmallTailScene(t *testing.T) {
	// Max splits produce [3 3 1]; the 1-block tail is below the minimum and
	// folds into its neighbor.
	scenes := Segment(contiguousBlocks(7), SegmentConfig{SceneGap: 2.0, MinSceneSize: 3, MaxSceneSize: 3}, nil)
	sizes := sceneSizes(scenes)
	if len(sizes) != 2 || sizes[0] != 3 || sizes[1] != 4 {
		t.Fatalf("expected scenes [3 4], got %v", sizes)
	}
}

func TestSegmentPreservesBlockOrder(t *testing.T) {
	blocks := contiguousBlocks(20)
	scenes := Segment(blocks, SegmentConfig{SceneGap: 2.0, MinSceneSize: 2, MaxSceneSize: 5}, nil)

	var flattened []Block
	for _, scene := range scenes {
		flattened = append(flattened, scene...)
	}
	if len(flattened) != len(blocks) {
		t.Fatalf("segmentation lost blocks: %d != %d", len(flattened), len(blocks))
	}
	for i := range blocks {
		if flattened[i].Index != blocks[i].Index {
			t.Fatalf("block order changed at %d: %d != %d", i, flattened[i].Index, blocks[i].Index)
		}
	}
}

func TestSegmentEmpty(t *testing.T) {
	if scenes := Segment(nil, DefaultSegmentConfig(), nil); scenes != nil {
		t.Errorf("expected nil scenes for empty input, got %v", scenes)
	}
}
