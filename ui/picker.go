package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/muesli/reflow/truncate"
	"github.com/sahilm/fuzzy"
)

// sourceList adapts a list of sources to fuzzy.Source.
type sourceList []rsvp.TextSource

func (l sourceList) String(i int) string {
	return l[i].Meta().Title + " " + l[i].CurrentText()
}

func (l sourceList) Len() int {
	return len(l)
}

// pickerModel lets the reader choose which message to read.
type pickerModel struct {
	common  *commonModel
	keys    *keyMap
	input   textinput.Model
	sources sourceList
	matches []int
	cursor  int
}

func newPickerModel(common *commonModel, keys *keyMap) pickerModel {
	ti := textinput.New()
	ti.Prompt = "Find: "
	ti.Placeholder = "type to filter messages"
	ti.CharLimit = 100
	return pickerModel{
		common: common,
		keys:   keys,
		input:  ti,
	}
}

// load lists the sources newest first and resets the filter.
func (m *pickerModel) load(set rsvp.SourceSet) tea.Cmd {
	list := slices.Clone(set.Sources())
	slices.Reverse(list)
	m.sources = list
	m.input.Reset()
	m.filter()
	return m.input.Focus()
}

func (m *pickerModel) filter() {
	m.cursor = 0
	m.matches = m.matches[:0]
	term := strings.TrimSpace(m.input.Value())
	if term == "" {
		for i := range m.sources {
			m.matches = append(m.matches, i)
		}
		return
	}
	for _, match := range fuzzy.FindFrom(term, m.sources) {
		m.matches = append(m.matches, match.Index)
	}
}

// selected returns the highlighted source or nil.
func (m pickerModel) selected() rsvp.TextSource {
	if m.cursor < 0 || m.cursor >= len(m.matches) {
		return nil
	}
	return m.sources[m.matches[m.cursor]]
}

func (m pickerModel) update(msg tea.Msg) (pickerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.filter()
	}
	return m, cmd
}

func (m pickerModel) view(st styles) string {
	width := max(10, m.common.width-4)
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.matches) == 0 {
		b.WriteString(st.Subtitle.Render("No messages match."))
		return b.String()
	}

	rows := max(1, m.common.height-6)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	for i := start; i < len(m.matches) && i < start+rows; i++ {
		src := m.sources[m.matches[i]]
		line := pickerLine(src)
		line = truncate.StringWithTail(line, uint(width), ellipsis) //nolint:gosec
		if i == m.cursor {
			b.WriteString(st.Selected.Render("> " + line))
		} else {
			b.WriteString(st.Subtitle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pickerLine(src rsvp.TextSource) string {
	title := src.Meta().Title
	if title == "" {
		title = src.ID()
	}
	if src.AuthorIsLocalUser() {
		title += " (you)"
	}
	text := strings.Join(strings.Fields(src.CurrentText()), " ")
	return fmt.Sprintf("%s: %s", title, text)
}
