package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniffscope/internal/capture"
	"sniffscope/internal/controller"
)

type idleSource struct{}

func (idleSource) NextFrame() ([]byte, error) { return nil, capture.ErrTimeout }
func (idleSource) Close()                     {}

func newTestModel(open controller.OpenFunc) Model {
	devices := []capture.Device{{Name: "eth0"}, {Name: "wlan0"}, {Name: "lo"}}
	return New(controller.New(controller.Config{Devices: devices, Open: open}))
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestNavigationKeys(t *testing.T) {
	m := newTestModel(nil)

	m, _ = update(t, m, keyMsg("down"))
	m, _ = update(t, m, keyMsg("down"))
	m, _ = update(t, m, keyMsg("up"))
	assert.Equal(t, 1, m.ctrl.Snapshot().Selected)

	// Vim keys mirror the arrows.
	m, _ = update(t, m, keyMsg("j"))
	assert.Equal(t, 2, m.ctrl.Snapshot().Selected)
	m, _ = update(t, m, keyMsg("k"))
	assert.Equal(t, 1, m.ctrl.Snapshot().Selected)
}

func TestQuitKeyTerminates(t *testing.T) {
	m := newTestModel(nil)

	m, cmd := update(t, m, keyMsg("q"))
	assert.Equal(t, controller.StateTerminated, m.ctrl.State())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEnterConfirmsAndStartsPolling(t *testing.T) {
	open := func(capture.Device, bool) (controller.FrameSource, error) {
		return idleSource{}, nil
	}
	m := newTestModel(open)

	m, cmd := update(t, m, keyMsg("enter"))
	assert.Equal(t, controller.StateCapturing, m.ctrl.State())
	require.NotNil(t, cmd)

	// The poll command reports the idle timeout, which keeps the chain
	// alive without touching state.
	msg := cmd()
	assert.IsType(t, timeoutMsg{}, msg)
	m, cmd = update(t, m, msg)
	assert.Equal(t, controller.StateCapturing, m.ctrl.State())
	assert.NotNil(t, cmd)
}

func TestEnterReportsOpenFailure(t *testing.T) {
	open := func(capture.Device, bool) (controller.FrameSource, error) {
		return nil, errors.New("permission denied")
	}
	m := newTestModel(open)

	m, cmd := update(t, m, keyMsg("enter"))
	assert.Equal(t, controller.StateSelecting, m.ctrl.State())
	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "permission denied")
	// The error surfaces on the selection screen.
	assert.Contains(t, m.View(), "permission denied")
}

func TestToggleKeyPausesAndResumes(t *testing.T) {
	open := func(capture.Device, bool) (controller.FrameSource, error) {
		return idleSource{}, nil
	}
	m := newTestModel(open)
	m, _ = update(t, m, keyMsg("enter"))

	m, cmd := update(t, m, keyMsg("s"))
	assert.Equal(t, controller.StatePaused, m.ctrl.State())
	assert.Nil(t, cmd)

	// The pre-pause poll resolves while paused and the chain ends.
	m, cmd = update(t, m, timeoutMsg{})
	assert.Nil(t, cmd)

	m, cmd = update(t, m, keyMsg("s"))
	assert.Equal(t, controller.StateCapturing, m.ctrl.State())
	assert.NotNil(t, cmd)
}

func TestResumeWithPendingPollKeepsSingleChain(t *testing.T) {
	open := func(capture.Device, bool) (controller.FrameSource, error) {
		return idleSource{}, nil
	}
	m := newTestModel(open)
	m, _ = update(t, m, keyMsg("enter"))

	// Pause and resume before the outstanding poll has resolved. The
	// resume must not arm a second reader on the same source.
	m, _ = update(t, m, keyMsg("s"))
	m, cmd := update(t, m, keyMsg("s"))
	assert.Equal(t, controller.StateCapturing, m.ctrl.State())
	assert.Nil(t, cmd)

	// The pending result arrives and re-arms the one chain.
	m, cmd = update(t, m, timeoutMsg{})
	assert.NotNil(t, cmd)

	// Its successor resolving keeps it at exactly one chain.
	_, cmd = update(t, m, timeoutMsg{})
	assert.NotNil(t, cmd)
}

func TestFatalCaptureErrorQuits(t *testing.T) {
	open := func(capture.Device, bool) (controller.FrameSource, error) {
		return idleSource{}, nil
	}
	m := newTestModel(open)
	m, _ = update(t, m, keyMsg("enter"))

	readErr := errors.New("device disappeared")
	m, cmd := update(t, m, captureErrMsg{err: readErr})
	assert.Equal(t, controller.StateTerminated, m.ctrl.State())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	// The error survives program shutdown so the caller can exit non-zero.
	assert.ErrorIs(t, m.Err(), readErr)
}

func TestTruncateCutsOnRuneBoundaries(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde", truncate("abcdefgh", 5))
	assert.Equal(t, "日本語", truncate("日本語パケット", 3))
	assert.Equal(t, "DST: café", truncate("DST: café.example:443", 9))
}

func TestViewShowsSelectionThenCapture(t *testing.T) {
	open := func(capture.Device, bool) (controller.FrameSource, error) {
		return idleSource{}, nil
	}
	m := newTestModel(open)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	view := m.View()
	assert.Contains(t, view, "Select Network Interface")
	assert.Contains(t, view, "eth0")

	m, _ = update(t, m, keyMsg("enter"))
	view = m.View()
	assert.Contains(t, view, "Total Packets: 0")
	assert.Contains(t, view, "stop capturing")
}
