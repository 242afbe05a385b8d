// Package tui is the interactive front-end: a bubbletea program that maps
// key input and capture polling onto controller events and renders the
// session snapshot.
package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sniffscope/internal/capture"
	"sniffscope/internal/controller"
)

// redrawInterval paces elapsed-time updates while no packets arrive.
const redrawInterval = 250 * time.Millisecond

// frameMsg carries one captured frame into the update loop.
type frameMsg struct {
	data []byte
}

// timeoutMsg signals an expired capture poll; the expected idle case.
type timeoutMsg struct{}

// captureErrMsg signals a fatal capture read error.
type captureErrMsg struct {
	err error
}

// tickMsg triggers a periodic redraw.
type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(redrawInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Model wraps the controller for bubbletea. All state lives in the
// controller; the model holds view concerns plus the poll bookkeeping.
type Model struct {
	ctrl    *controller.Controller
	width   int
	height  int
	status  string
	err     error
	polling bool
}

func New(ctrl *controller.Controller) Model {
	return Model{ctrl: ctrl}
}

// Err reports the fatal capture error that ended the session, if any. The
// caller inspects it after the program exits the alternate screen.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// pollCmd reads one frame from the capture source. The source has a short
// read timeout, so the command returns promptly and key messages are never
// starved by a continuous stream of frames.
func (m Model) pollCmd() tea.Cmd {
	source := m.ctrl.Source()
	return func() tea.Msg {
		data, err := source.NextFrame()
		switch {
		case err == nil:
			return frameMsg{data: data}
		case errors.Is(err, capture.ErrTimeout):
			return timeoutMsg{}
		default:
			return captureErrMsg{err: err}
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		m.polling = false
		m.ctrl.HandleFrame(msg.data)
		return m.continuePolling()

	case timeoutMsg:
		m.polling = false
		m.ctrl.HandleTimeout()
		return m.continuePolling()

	case captureErrMsg:
		m.polling = false
		m.ctrl.HandleFatal(msg.err)
		m.err = msg.err
		m.status = "capture error: " + msg.err.Error()
		return m, tea.Quit

	case tickMsg:
		return m, tickCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.Quit()
		return m, tea.Quit

	case "up", "k":
		m.ctrl.MoveUp()
		return m, nil

	case "down", "j":
		m.ctrl.MoveDown()
		return m, nil

	case "enter":
		if m.ctrl.State() != controller.StateSelecting {
			return m, nil
		}
		if err := m.ctrl.Confirm(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = ""
		return m.continuePolling()

	case "s":
		m.ctrl.ToggleCapture()
		return m.continuePolling()
	}

	return m, nil
}

// continuePolling arms the capture poll while capturing. The source must
// have exactly one outstanding read, so a poll is issued only when none is
// in flight; a pending pre-pause read re-arms the chain itself when its
// result lands after a resume.
func (m Model) continuePolling() (tea.Model, tea.Cmd) {
	if m.ctrl.State() == controller.StateCapturing && !m.polling {
		m.polling = true
		return m, m.pollCmd()
	}
	return m, nil
}
