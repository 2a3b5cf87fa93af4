package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/wordrunner/rsvp"
)

// loopReadyMsg reports that the reader's event loop has queued tasks.
type loopReadyMsg struct{}

// waitForLoop blocks until the event loop has work. The tasks themselves run
// in Update so that playback state is only touched from the program's
// goroutine.
func waitForLoop(l *rsvp.EventLoop) tea.Cmd {
	return func() tea.Msg {
		<-l.Ready()
		return loopReadyMsg{}
	}
}
