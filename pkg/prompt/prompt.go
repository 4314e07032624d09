// Package prompt asks the user for input on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"

	"tableflip.dev/timebox/pkg/schedule"
)

var templates = &promptui.PromptTemplates{
	Prompt:  "{{ . }}: ",
	Valid:   "{{ . | green }}: ",
	Invalid: "{{ . | red }}: ",
	Success: "{{ . | bold }}: ",
}

// Prompter reads answers from In and draws prompts on Out.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

func (p Prompter) prompt(label, def string, mask rune) (string, error) {
	pr := promptui.Prompt{
		Label:     label,
		Default:   def,
		Mask:      mask,
		Templates: templates,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" && def == "" {
				return errors.New("empty")
			}
			return nil
		},
		Stdin:  io.NopCloser(p.In),
		Stdout: NopCloser(p.Out),
	}
	result, err := pr.Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %s: %w", label, err)
	}
	if result == "" {
		result = def
	}
	return result, nil
}

// Credentials asks for whatever of username and password is missing. The
// password is masked.
func (p Prompter) Credentials(username, password string) (string, string, error) {
	var err error
	if strings.TrimSpace(username) == "" {
		if username, err = p.prompt("Username", "", 0); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = p.prompt("Password", "", '*'); err != nil {
			return "", "", err
		}
	}
	return strings.TrimSpace(username), password, nil
}

// Confirm asks a yes/no question. Anything but yes is false.
func (p Prompter) Confirm(label string) bool {
	pr := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     io.NopCloser(p.In),
		Stdout:    NopCloser(p.Out),
	}
	_, err := pr.Run()
	return err == nil
}

// Item is a block as shown in the picker.
type Item struct {
	Index int
	Time  string
	Label string
}

// Items projects blocks for Block.
func Items(blocks []schedule.Block) []Item {
	items := make([]Item, 0, len(blocks))
	for i, b := range blocks {
		label := b.Label
		if !b.Filled() {
			label = "(empty)"
		}
		items = append(items, Item{
			Index: i,
			Time:  fmt.Sprintf("%s-%s", b.Start, b.End),
			Label: label,
		})
	}
	return items
}

// Block lets the user pick one of blocks and returns its index.
func (p Prompter) Block(label string, blocks []schedule.Block) (int, error) {
	items := Items(blocks)
	sel := promptui.Select{
		HideHelp: true,
		Label:    label,
		Items:    items,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}?",
			Active:   "➜  {{ .Time | bold }} {{ .Label | green }}",
			Inactive: "   {{ .Time }} {{ .Label | cyan }}",
			Selected: "{{ .Time | bold }} {{ .Label }}",
		},
		Size: 10,
		Searcher: func(input string, index int) bool {
			name := strings.Replace(strings.ToLower(items[index].Label), " ", "", -1)
			input = strings.Replace(strings.ToLower(input), " ", "", -1)
			return strings.Contains(name, input)
		},
		Stdin:  io.NopCloser(p.In),
		Stdout: NopCloser(p.Out),
	}
	i, _, err := sel.Run()
	if err != nil {
		return 0, fmt.Errorf("prompt: %s: %w", label, err)
	}
	return i, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close method wrapping w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}
