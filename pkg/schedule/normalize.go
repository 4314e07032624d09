package schedule

import (
	"fmt"
	"sort"
)

// Normalize orders blocks by start and resolves overlaps by pushing a
// block's start to its predecessor's end. Malformed blocks and blocks left
// empty by the adjustment are dropped.
func Normalize(blocks []Block) []Block {
	sorted := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Valid() {
			sorted = append(sorted, b)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && b.Start < out[n-1].End {
			b.Start = out[n-1].End
			if !b.Valid() {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// Validate reports the first block that is malformed, out of order, or
// overlapping its predecessor.
func Validate(blocks []Block) error {
	for i, b := range blocks {
		if !b.Valid() {
			return fmt.Errorf("block %d (%s-%s): %w", i, b.Start, b.End, ErrInvalidInterval)
		}
		if i > 0 && b.Start < blocks[i-1].End {
			return fmt.Errorf("block %d starts at %s before %s: %w", i, b.Start, blocks[i-1].End, ErrOverlap)
		}
	}
	return nil
}

// Filled returns the blocks that carry a label.
func Filled(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Filled() {
			out = append(out, b)
		}
	}
	return out
}
