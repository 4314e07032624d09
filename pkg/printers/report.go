package printers

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/timebox/pkg/timeutil"
)

// Total is one row of a time report.
type Total struct {
	Label   string
	Minutes int
	Count   int
}

// Totals prints where the time went, largest first as given, followed by
// the sum.
func (pp *PrettyPrint) Totals(title string, rows []Total, total int) {
	pp.Title(title)
	if len(rows) == 0 {
		_, _ = color.New(color.Faint).Fprintln(pp.out(), "nothing recorded")
		pp.NewLine()
		return
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("LABEL", "TIME", "BLOCKS")
	for _, r := range rows {
		table.AddRow(r.Label, timeutil.FormatMinutes(r.Minutes), r.Count)
	}
	table.AddRow("", "", "")
	table.AddRow(color.New(color.Bold).Sprint("total"), timeutil.FormatMinutes(total), "")
	_, _ = fmt.Fprintln(pp.out(), table)
	pp.NewLine()
}
