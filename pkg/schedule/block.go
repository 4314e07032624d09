package schedule

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tableflip.dev/timebox/pkg/timeutil"
)

// NewID returns a fresh opaque block identifier.
func NewID() string {
	return uuid.NewString()
}

// Block is a labelled interval of a day. Start is inclusive and End is
// exclusive; End may be timeutil.EndOfDay.
type Block struct {
	ID    string
	Start timeutil.TimeOfDay
	End   timeutil.TimeOfDay
	Label string
}

// NewBlock builds a block with a fresh id.
func NewBlock(start, end timeutil.TimeOfDay, label string) Block {
	return Block{
		ID:    NewID(),
		Start: start,
		End:   end,
		Label: label,
	}
}

// Duration is the length of the block in minutes.
func (b Block) Duration() int {
	return b.End.Sub(b.Start)
}

// Filled reports whether the block carries a label.
func (b Block) Filled() bool {
	return strings.TrimSpace(b.Label) != ""
}

// Valid reports whether the block is a well formed interval.
func (b Block) Valid() bool {
	return b.Start.Valid() && b.End.Valid() &&
		!b.Start.IsEndOfDay() && b.Start < b.End
}

func (b Block) String() string {
	return fmt.Sprintf("%s-%s  %s", b.Start, b.End, b.Label)
}
