// Package ui provides the terminal reader: a bubbletea program that flashes
// one word at a time and lets the reader steer playback and reply.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/wordrunner/rsvp"
	"github.com/dgnsrekt/wordrunner/rsvp/stream"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "sent"
	submitTimeout        = time.Second * 5
	ellipsis             = "…"
)

// Reader bundles the playback components the UI drives.
type Reader struct {
	Loop     *rsvp.EventLoop
	Player   *rsvp.Player
	Settings rsvp.SettingsStore
	Screen   *Screen
	Adapter  *stream.Adapter

	// Selector and Sources are set when reading a conversation.
	Selector *stream.Selector
	Sources  rsvp.SourceSet

	// Copy puts text on the clipboard. Defaults to the system clipboard.
	Copy func(string) error
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, r Reader) *tea.Program {
	log.Debug("starting wordrunner ui", "title", cfg.Title, "conversation", r.Selector != nil)

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if cfg.InputTTY {
		opts = append(opts, tea.WithInputTTY())
	}
	return tea.NewProgram(newModel(cfg, r), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// FatalError returns a message that replaces the reader with an error view.
// Send it with Program.Send when a source fails for good.
func FatalError(err error) tea.Msg {
	return errMsg{err}
}

type statusMessageTimeoutMsg int

// view is the screen the model is showing.
type view int

const (
	viewReader view = iota
	viewPicker
	viewContext
)

func (v view) String() string {
	return map[view]string{
		viewReader:  "reader",
		viewPicker:  "picker",
		viewContext: "context",
	}[v]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	width  int
	height int
}

type model struct {
	common   *commonModel
	reader   Reader
	view     view
	fatalErr error

	keys    *keyMap
	help    help.Model
	theme   string
	styles  styles
	spinner spinner.Model
	waiting bool

	compose textarea.Model
	picker  pickerModel
	context contextModel

	statusMessage string
	statusIsError bool
	statusSeq     int
}

func newModel(cfg Config, r Reader) *model {
	if r.Copy == nil {
		r.Copy = clipboard.WriteAll
	}

	theme := r.Settings.Get().Theme
	st := newStyles(theme)

	if cfg.GlamourStyle == glamourstyles.AutoStyle {
		if st.name == "sepia" || st.name == "paper" {
			cfg.GlamourStyle = glamourstyles.LightStyle
		} else {
			cfg.GlamourStyle = glamourstyles.DarkStyle
		}
	}

	common := &commonModel{cfg: cfg}
	keys := newKeyMap()
	keys.setConversation(r.Selector != nil && r.Sources != nil)

	ta := textarea.New()
	ta.Placeholder = "Reply…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = keys.Newline

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = st.Pivot

	r.Player.OnClose(r.Screen.Clear)

	return &model{
		common:  common,
		reader:  r,
		keys:    &keys,
		help:    help.New(),
		theme:   theme,
		styles:  st,
		spinner: sp,
		compose: ta,
		picker:  newPickerModel(common, &keys),
		context: newContextModel(common),
	}
}

func (m *model) Init() tea.Cmd {
	m.waiting = true
	return tea.Batch(waitForLoop(m.reader.Loop), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case loopReadyMsg:
		m.reader.Loop.Drain()
		cmds = append(cmds, waitForLoop(m.reader.Loop))

	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		cmds = append(cmds, m.handleKey(msg))

	case spinner.TickMsg:
		if !m.waiting {
			break
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case statusMessageTimeoutMsg:
		if int(msg) == m.statusSeq {
			m.statusMessage = ""
			m.statusIsError = false
		}

	case errMsg:
		m.fatalErr = msg.err

	default:
		cmds = append(cmds, m.updateChild(msg))
	}

	cmds = append(cmds, m.sync()...)
	return m, tea.Batch(cmds...)
}

// handleKey routes a key press to the active view.
func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.view {
	case viewPicker:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.view = viewReader
			m.picker.input.Blur()
			return nil
		case key.Matches(msg, m.keys.Select):
			src := m.picker.selected()
			m.view = viewReader
			m.picker.input.Blur()
			if src != nil {
				m.reader.Selector.ReadOne(src)
			}
			return nil
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.update(msg)
		return cmd

	case viewContext:
		if key.Matches(msg, m.keys.Cancel, m.keys.Context, m.keys.Quit) {
			m.view = viewReader
			return nil
		}
		var cmd tea.Cmd
		m.context, cmd = m.context.update(msg)
		return cmd
	}

	p := m.reader.Player
	if p.Mode() == rsvp.ModeComposing {
		return m.handleComposeKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		p.Toggle()
	case key.Matches(msg, m.keys.Back):
		p.Back(0)
	case key.Matches(msg, m.keys.Forward):
		p.Forward(0)
	case key.Matches(msg, m.keys.Faster):
		return m.showStatusMessage(fmt.Sprintf("%d wpm", p.SpeedUp()), false)
	case key.Matches(msg, m.keys.Slower):
		return m.showStatusMessage(fmt.Sprintf("%d wpm", p.SlowDown()), false)
	case key.Matches(msg, m.keys.Restart):
		p.Restart()
	case key.Matches(msg, m.keys.Compose):
		p.EnterCompose()
	case key.Matches(msg, m.keys.Close):
		if m.reader.Selector == nil {
			p.Close()
			return tea.Quit
		}
		m.reader.Selector.Reset()
		return m.showStatusMessage("closed; waiting for the next message", false)
	case key.Matches(msg, m.keys.Pin):
		m.reader.Selector.Pin()
		m.reader.Selector.Check(true)
	case key.Matches(msg, m.keys.Pick):
		m.view = viewPicker
		return m.picker.load(m.reader.Sources)
	case key.Matches(msg, m.keys.Context):
		if !p.IsOpen() {
			return nil
		}
		if p.Mode() == rsvp.ModePlaying {
			p.Pause()
		}
		current, _ := m.reader.Screen.Position()
		m.context.load(p.Tokens(), max(0, current-1))
		m.view = viewContext
	case key.Matches(msg, m.keys.Copy):
		return m.copyText()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *model) handleComposeKey(msg tea.KeyMsg) tea.Cmd {
	p := m.reader.Player
	switch {
	case key.Matches(msg, m.keys.Leave):
		p.LeaveCompose()
		return nil
	case key.Matches(msg, m.keys.Send):
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		if err := p.Submit(ctx, m.compose.Value()); err != nil {
			if errors.Is(err, rsvp.ErrEmptySubmit) {
				return nil
			}
			if draft := p.Composer().Draft(); draft != "" {
				m.compose.SetValue(draft)
			}
			return m.showStatusMessage("not sent: "+err.Error(), true)
		}
		m.compose.Reset()
		return m.showStatusMessage("sent", false)
	}

	var cmd tea.Cmd
	m.compose, cmd = m.compose.Update(msg)
	p.Composer().SetDraft(m.compose.Value())
	return cmd
}

func (m *model) updateChild(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.view {
	case viewPicker:
		m.picker, cmd = m.picker.update(msg)
	case viewContext:
		m.context, cmd = m.context.update(msg)
	default:
		if m.compose.Focused() {
			m.compose, cmd = m.compose.Update(msg)
		}
	}
	return cmd
}

// sync brings the model in line with the player after every update: compose
// focus follows the mode, the spinner runs while no session is open, and
// theme changes from the config file are picked up.
func (m *model) sync() []tea.Cmd {
	var cmds []tea.Cmd
	p := m.reader.Player

	composing := p.Mode() == rsvp.ModeComposing
	m.keys.composed = composing
	switch {
	case composing && !m.compose.Focused():
		m.compose.SetValue(p.Composer().Draft())
		cmds = append(cmds, m.compose.Focus())
	case !composing && m.compose.Focused():
		m.compose.Blur()
		m.compose.Reset()
	}

	waiting := !p.IsOpen()
	if waiting && !m.waiting {
		cmds = append(cmds, m.spinner.Tick)
	}
	m.waiting = waiting

	if theme := m.reader.Settings.Get().Theme; theme != m.theme {
		m.theme = theme
		m.styles = newStyles(theme)
		m.spinner.Style = m.styles.Pivot
	}
	return cmds
}

func (m *model) setSize(w, h int) {
	m.common.width = w
	m.common.height = h
	m.help.Width = w
	m.compose.SetWidth(min(max(10, w-6), 80))
	m.picker.input.Width = max(10, w-10)
	m.context.setSize(w, h)
}

func (m *model) copyText() tea.Cmd {
	var text string
	if src := m.reader.Adapter.Source(); src != nil {
		text = src.CurrentText()
	} else {
		text = plainContext(m.reader.Player.Tokens())
	}
	if text == "" {
		return nil
	}
	if err := m.reader.Copy(text); err != nil {
		log.Warn("copy failed", "error", err)
		return m.showStatusMessage("copy failed", true)
	}
	return m.showStatusMessage("copied", false)
}

func (m *model) showStatusMessage(msg string, isErr bool) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.statusMessage = msg
	m.statusIsError = isErr
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg(seq)
	})
}

func (m *model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}
	if m.common.width == 0 || m.common.height == 0 {
		return ""
	}

	st := m.styles
	footer := []string{m.statusView()}
	if !m.common.cfg.HideHelp {
		footer = append(footer, m.help.View(m.keys))
	}
	footerView := strings.Join(footer, "\n")
	bodyHeight := max(1, m.common.height-lipgloss.Height(footerView))

	var body string
	switch m.view {
	case viewPicker:
		body = m.picker.view(st)
	case viewContext:
		body = m.context.view()
	default:
		body = m.readerView(bodyHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.Place(m.common.width, bodyHeight, lipgloss.Left, lipgloss.Top, body,
			lipgloss.WithWhitespaceBackground(st.palette.Background)),
		footerView,
	)
}

func (m *model) readerView(height int) string {
	st := m.styles
	w := m.common.width

	var lines []string
	tok, shown := m.reader.Screen.Word()
	switch {
	case m.waiting:
		title := m.common.cfg.Title
		if title == "" {
			title = "text"
		}
		lines = append(lines, lipgloss.PlaceHorizontal(w, lipgloss.Center,
			st.Subtitle.Render(m.spinner.View()+" waiting for "+title+ellipsis),
			lipgloss.WithWhitespaceBackground(st.palette.Background)))
	case shown:
		lines = append(lines,
			renderGuide(st, w),
			renderWord(st, tok.Text, w),
			renderGuide(st, w),
		)
	default:
		lines = append(lines, "", "", "")
	}

	if sub := m.reader.Screen.Subtitle(); sub != "" && !m.waiting {
		sub = wordwrap.String(sub, max(10, w-4))
		lines = append(lines, "", lipgloss.PlaceHorizontal(w, lipgloss.Center, st.Subtitle.Render(sub),
			lipgloss.WithWhitespaceBackground(st.palette.Background)))
	}

	if m.compose.Focused() {
		box := st.Compose.Render(m.compose.View())
		lines = append(lines, "", lipgloss.PlaceHorizontal(w, lipgloss.Center, box,
			lipgloss.WithWhitespaceBackground(st.palette.Background)))
	}

	block := strings.Join(lines, "\n")
	return lipgloss.Place(w, height, lipgloss.Center, lipgloss.Center, block,
		lipgloss.WithWhitespaceBackground(st.palette.Background))
}

// statusView renders the one-line status bar.
func (m *model) statusView() string {
	st := m.styles
	snap := m.reader.Player.Snapshot()

	parts := []string{modeIndicator(snap)}
	if pos := positionText(m.reader.Screen.Position()); pos != "" {
		parts = append(parts, pos)
	}
	parts = append(parts, fmt.Sprintf("%d wpm", m.reader.Settings.Get().WordsPerMinute))
	if m.reader.Selector != nil && m.reader.Selector.Pinned() {
		parts = append(parts, "pinned")
	}
	status := strings.Join(parts, " • ")

	if m.statusMessage != "" {
		msgStyle := st.Status
		if m.statusIsError {
			msgStyle = st.Error
		}
		status = st.Status.Render(status+" • ") + msgStyle.Render(m.statusMessage)
	} else {
		status = st.Status.Render(status)
	}
	return truncate.StringWithTail(status, uint(max(0, m.common.width)), ellipsis) //nolint:gosec
}

func modeIndicator(snap rsvp.Snapshot) string {
	switch snap.Mode {
	case rsvp.ModePlaying:
		return "▶ playing"
	case rsvp.ModePaused:
		if snap.Starved {
			return "⟳ waiting"
		}
		return "⏸ paused"
	case rsvp.ModeComposing:
		return "✎ reply"
	default:
		return "■ idle"
	}
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
