package spaces

import (
	"bytes"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Singularity-ng/singularity-analysis/pkg/models"
)

// LineCount returns the number of lines in src. A trailing newline does not
// start a new line and empty input has none.
func LineCount(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := bytes.Count(src, []byte{'\n'}) + 1
	if src[len(src)-1] == '\n' {
		n--
	}
	return n
}

// assignLines gives every line of the file to exactly one space and fills the
// line tallies from the lines each space owns. A line belongs to the innermost
// space covering it; when siblings share a line the earlier one keeps it.
//
// Spaces are visited in post-order with children in source order, which is
// exactly the order of decreasing precedence, so each space claims whatever
// part of its range no earlier space has claimed.
func assignLines(root *models.Space, lines int, code, comments *roaring.Bitmap) {
	text := roaring.Or(code, comments)
	claimed := roaring.New()

	for _, sp := range postOrder(root) {
		owned := roaring.New()
		if lines > 0 {
			first, last := uint64(0), uint64(lines)
			if sp != root {
				first = uint64(sp.StartLine - 1)
				last = min(uint64(sp.EndLine), uint64(lines))
			}
			if first < last {
				owned.AddRange(first, last)
			}
		}
		owned.AndNot(claimed)
		claimed.Or(owned)

		c := sp.Counters
		c.Lines = int(owned.GetCardinality())
		c.CodeLines = int(owned.AndCardinality(code))
		c.Comments = int(owned.AndCardinality(comments))
		c.BlankLines = c.Lines - int(owned.AndCardinality(text))
	}
}

// postOrder lists the tree children-first, children in source order.
func postOrder(root *models.Space) []*models.Space {
	var out []*models.Space
	stack := []*models.Space{root}
	for len(stack) > 0 {
		sp := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, sp)
		stack = append(stack, sp.Spaces...)
	}
	// out is pre-order with children reversed; its reverse is the post-order
	// with children in source order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
