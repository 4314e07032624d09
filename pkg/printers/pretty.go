package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/timebox/pkg/schedule"
	"tableflip.dev/timebox/pkg/settings"
	"tableflip.dev/timebox/pkg/timeutil"
)

// PrettyPrint writes human readable output. Out defaults to color.Output.
type PrettyPrint struct {
	Out    io.Writer
	ShowID bool
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " "+noun)
	default:
		_, _ = c.Fprintln(pp.out(), " "+noun+"s")
	}
}

// Notice prints a warning about where the shown data came from.
func (pp *PrettyPrint) Notice(msg string) {
	if msg == "" {
		return
	}
	y := color.New(color.FgHiYellow, color.Italic)
	_, _ = y.Fprintln(pp.out(), msg)
}

// Message prints a plain status line.
func (pp *PrettyPrint) Message(msg string) {
	if msg == "" {
		return
	}
	_, _ = fmt.Fprintln(pp.out(), msg)
}

// Day prints a day's blocks as a numbered table. Indexes printed here are
// the ones the edit commands accept.
func (pp *PrettyPrint) Day(date string, blocks []schedule.Block, notice string) {
	title := date
	if t, err := schedule.ParseDate(date); err == nil {
		title = t.Format("Monday, January 2 2006")
	}
	pp.TitleWithCount(title, len(blocks), "block")
	pp.Notice(notice)

	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	if pp.ShowID {
		table.AddRow("#", "TIME", "LENGTH", "LABEL", "ID")
	} else {
		table.AddRow("#", "TIME", "LENGTH", "LABEL")
	}

	faint := color.New(color.Faint, color.Italic)
	for i, b := range blocks {
		label := b.Label
		if !b.Filled() {
			label = faint.Sprint("(empty)")
		}
		row := []interface{}{
			i,
			fmt.Sprintf("%s-%s", b.Start, b.End),
			timeutil.FormatMinutes(b.Duration()),
			label,
		}
		if pp.ShowID {
			row = append(row, b.ID)
		}
		table.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), table)
	pp.NewLine()
}

// Settings prints the user's preferences.
func (pp *PrettyPrint) Settings(st settings.Settings) {
	pp.Title("Settings")

	table := uitable.New()
	table.AddRow("name", displayName(st.Name))
	table.AddRow("slot", settings.SlotLabel(st.SlotDuration()))
	table.AddRow("remind-before", onOff(st.RemindBeforeActivity))
	table.AddRow("remind-start", onOff(st.RemindOnStart))
	table.AddRow("nudge", onOff(st.NudgeDuringActivity))
	table.AddRow("congratulate", onOff(st.CongratulateOnFinish))
	table.AddRow("telegram", linked(st.TelegramLinked))
	_, _ = fmt.Fprintln(pp.out(), table)
	pp.NewLine()
}

// List prints a titled list of strings, or "none".
func (pp *PrettyPrint) List(title, noun string, items []string) {
	pp.TitleWithCount(title, len(items), noun)
	if len(items) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	_, _ = fmt.Fprintln(pp.out(), "  "+strings.Join(items, "\n  "))
	pp.NewLine()
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "-"
	}
	return name
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func linked(b bool) string {
	if b {
		return "linked"
	}
	return "not linked"
}
