package printers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/timebox/pkg/schedule"
)

// BlockView is the JSON projection of a block.
type BlockView struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Minutes int    `json:"minutes"`
	Label   string `json:"label"`
}

// DayView is the JSON projection of a day.
type DayView struct {
	Date   string      `json:"date"`
	Source string      `json:"source,omitempty"`
	Notice string      `json:"notice,omitempty"`
	Blocks []BlockView `json:"blocks"`
}

// NewDayView projects blocks for output.
func NewDayView(date, source, notice string, blocks []schedule.Block) DayView {
	v := DayView{
		Date:   date,
		Source: source,
		Notice: notice,
		Blocks: make([]BlockView, 0, len(blocks)),
	}
	for i, b := range blocks {
		v.Blocks = append(v.Blocks, BlockView{
			Index:   i,
			ID:      b.ID,
			Start:   b.Start.String(),
			End:     b.End.WireEnd(),
			Minutes: b.Duration(),
			Label:   b.Label,
		})
	}
	return v
}

// JSON writes v as a single line of JSON to out, or color.Output when out
// is nil.
func JSON(out io.Writer, v any) error {
	if out == nil {
		out = color.Output
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
