package checklist

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"listscribe"

	"github.com/charmbracelet/lipgloss"
)

// Section is one category header and the items under it.
type Section struct {
	Header  string
	Entries []ViewEntry
}

type ViewEntry struct {
	Name    string
	Label   string
	Checked bool
}

// BuildView groups items into sections in order of first appearance.
// Checked flags come from state when it has the item.
func BuildView(items []listscribe.GroceryItem, state State) []Section {
	var sections []Section
	index := map[string]int{}

	for _, it := range items {
		i, ok := index[it.Category]
		if !ok {
			i = len(sections)
			index[it.Category] = i
			sections = append(sections, Section{Header: strings.TrimSpace(capitalize(it.Category) + " " + it.Emoji)})
		}

		checked := it.Checked
		if e, ok := state.Get(it.Name); ok {
			checked = e.Checked
		}
		sections[i].Entries = append(sections[i].Entries, ViewEntry{
			Name:    it.Name,
			Label:   capitalize(it.Name),
			Checked: checked,
		})
	}
	return sections
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginTop(1)
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Strikethrough(true)
	itemStyle    = lipgloss.NewStyle().PaddingLeft(2)
	messageStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#FF5F87"))
)

// Render writes sections as a terminal checklist.
func Render(w io.Writer, sections []Section) error {
	if len(sections) == 0 {
		_, err := fmt.Fprintln(w, messageStyle.Render("No list yet. Scan one with `listscribe scan <image>`."))
		return err
	}

	var b strings.Builder
	for _, s := range sections {
		b.WriteString(headerStyle.Render(s.Header))
		b.WriteByte('\n')
		for _, e := range s.Entries {
			box, label := "[ ]", e.Label
			if e.Checked {
				box, label = "[x]", checkedStyle.Render(e.Label)
			}
			b.WriteString(itemStyle.Render(box + " " + label))
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderMessage writes a status or error message.
func RenderMessage(w io.Writer, msg string) error {
	_, err := fmt.Fprintln(w, messageStyle.Render(msg))
	return err
}
