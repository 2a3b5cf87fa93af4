package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/utils"
)

// contextModel shows the whole session as rendered text with the current
// word emphasised, for when a passage needs a second look.
type contextModel struct {
	common   *commonModel
	viewport viewport.Model
}

func newContextModel(common *commonModel) contextModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0
	return contextModel{common: common, viewport: vp}
}

func (m *contextModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = max(1, h-2)
}

// load renders tokens and scrolls to the word at cursor.
func (m *contextModel) load(tokens []rsvp.Token, cursor int) {
	width := m.common.width
	if limit := int(m.common.cfg.GlamourMaxWidth); limit > 0 && width > limit { //nolint:gosec
		width = limit
	}
	out, err := glamourRender(m.common.cfg.GlamourStyle, contextMarkdown(tokens, cursor), width)
	if err != nil {
		log.Error("error rendering context", "error", err)
		out = plainContext(tokens)
	}
	m.viewport.SetContent(out)

	// Land roughly where the cursor is.
	if len(tokens) > 0 {
		m.viewport.SetYOffset(m.viewport.TotalLineCount() * cursor / len(tokens))
	}
}

func (m contextModel) update(msg tea.Msg) (contextModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m contextModel) view() string {
	return m.viewport.View()
}

func plainContext(tokens []rsvp.Token) string {
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = tok.Text
	}
	return strings.Join(words, " ")
}

func glamourRender(style, markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		utils.GlamourStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return out, nil
}
