// Package browse is a terminal viewer over the saved days.
package browse

import (
	"context"
	"fmt"
	"strings"

	"github.com/marcusolsson/tui-go"

	"tableflip.dev/timebox/pkg/app"
	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/timeutil"
)

type Browse struct {
	Service *app.Service

	days  map[string]app.ReportDay
	index []string
	dirty string

	dates     *tui.Table
	datesView *tui.Box

	blocks      *tui.Table
	blocksView  *tui.Box
	blocksTitle string
}

func (b *Browse) Do(ctx context.Context) error {
	if err := b.load(ctx); err != nil {
		return err
	}

	dTable := tui.NewTable(1, 0)
	dates := tui.NewVBox(
		dTable,
		tui.NewSpacer(),
	)
	dates.SetBorder(true)
	dates.SetSizePolicy(tui.Preferred, tui.Expanding)

	bTable := tui.NewTable(1, 0)
	bTable.SetSizePolicy(tui.Expanding, tui.Maximum)

	status := tui.NewStatusBar("")
	status.SetPermanentText(`Use left or right arrows to switch panes, 'k' for keys, ESC or 'q' to quit`)

	blocks := tui.NewVBox(bTable)
	blocks.SetBorder(true)
	blocks.SetSizePolicy(tui.Expanding, tui.Maximum)

	root := tui.NewVBox(
		tui.NewHBox(dates, blocks),
		tui.NewSpacer(),
		status,
	)

	keys := keysUI()
	keys.SetBorder(true)
	keys.SetTitle("keys")

	popup := tui.NewVBox(
		tui.NewHBox(keys, tui.NewSpacer()),
		tui.NewSpacer(),
		status,
	)

	ui, err := tui.New(root)
	if err != nil {
		return err
	}

	b.dates = dTable
	b.datesView = dates
	b.blocks = bTable
	b.blocksView = blocks

	b.populateDates()
	dTable.OnSelectionChanged(func(*tui.Table) {
		b.populateBlocks()
	})

	showKeys := false
	ui.SetKeybinding("k", func() {
		if showKeys {
			ui.SetWidget(root)
		} else {
			ui.SetWidget(popup)
		}
		showKeys = !showKeys
	})
	ui.SetKeybinding("Left", b.focusDates)
	ui.SetKeybinding("Right", b.focusBlocks)
	ui.SetKeybinding("Esc", func() { ui.Quit() })
	ui.SetKeybinding("q", func() { ui.Quit() })

	b.populateBlocks()
	b.focusDates()

	return ui.Run()
}

// load reads every saved day, newest first.
func (b *Browse) load(ctx context.Context) error {
	dates, err := b.Service.Dates(ctx)
	if err != nil {
		return err
	}
	b.days = make(map[string]app.ReportDay, len(dates))
	b.index = make([]string, 0, len(dates))
	if len(dates) == 0 {
		return nil
	}
	res, err := b.Service.Report(ctx, dates[0], dates[len(dates)-1])
	if err != nil {
		return err
	}
	for i := len(res.Days) - 1; i >= 0; i-- {
		d := res.Days[i]
		b.days[d.Date] = d
		b.index = append(b.index, d.Date)
	}
	return nil
}

func (b *Browse) focusDates() {
	b.dates.SetFocused(true)
	b.datesView.SetTitle("DAYS")

	b.blocks.SetFocused(false)
	b.blocksView.SetTitle(b.blocksTitle)
}

func (b *Browse) focusBlocks() {
	b.dates.SetFocused(false)
	b.datesView.SetTitle("days")

	b.blocks.SetFocused(true)
	b.blocksView.SetTitle(strings.ToUpper(b.blocksTitle))
}

func (b *Browse) populateDates() {
	b.dates.RemoveRows()
	for _, date := range b.index {
		b.dates.AppendRow(tui.NewLabel(dateRow(b.days[date])))
	}
	b.dates.Select(0)
}

func (b *Browse) populateBlocks() {
	selected := ""
	if i := b.dates.Selected(); i >= 0 && i < len(b.index) {
		selected = b.index[i]
	}
	if b.dirty == selected && selected != "" {
		return
	}

	b.blocks.RemoveRows()
	b.blocksTitle = selected
	if day, ok := b.days[selected]; ok {
		for _, row := range blockRows(day.Blocks) {
			b.blocks.AppendRow(tui.NewLabel(row))
		}
	} else {
		b.blocks.AppendRow(tui.NewLabel("No saved days yet."))
	}
	b.blocksView.SetTitle(b.blocksTitle)
	b.dirty = selected
}

func dateRow(d app.ReportDay) string {
	label := d.Date
	if t, err := schedule.ParseDate(d.Date); err == nil {
		label = t.Format("Mon Jan 2 2006")
	}
	return fmt.Sprintf("%s  %s", label, timeutil.FormatMinutes(d.Minutes))
}

func blockRows(blocks []schedule.Block) []string {
	rows := make([]string, 0, len(blocks))
	for _, bl := range blocks {
		rows = append(rows, fmt.Sprintf("%s-%s  %-6s  %s", bl.Start, bl.End, timeutil.FormatMinutes(bl.Duration()), bl.Label))
	}
	return rows
}

func keysUI() *tui.Box {
	return tui.NewVBox(
		tui.NewLabel("Keys"),
		tui.NewLabel("up/down  pick a day or block"),
		tui.NewLabel("left     days"),
		tui.NewLabel("right    blocks"),
		tui.NewLabel("k        toggle this help"),
		tui.NewLabel("q, ESC   quit"),
		tui.NewSpacer(),
	)
}
