// Package session holds the live state of one monitor run: device
// selection, capture status, the display window and running statistics.
// It is mutated only by the controller loop; no locking is needed.
package session

import (
	"time"

	"sniffscope/internal/capture"
	"sniffscope/internal/models"
)

// Session is the mutable state for the current run. The device list is
// fetched once at startup and read-only thereafter.
type Session struct {
	Devices   []capture.Device
	Selected  int
	Confirmed bool
	Capturing bool

	Stats  *Stats
	Buffer *Buffer

	observed int
}

func New(devices []capture.Device) *Session {
	return &Session{
		Devices: devices,
		Stats:   NewStats(),
		Buffer:  NewBuffer(),
	}
}

// SelectNext moves the selection down one entry, wrapping at the end.
func (s *Session) SelectNext() {
	if len(s.Devices) == 0 {
		return
	}
	s.Selected = (s.Selected + 1) % len(s.Devices)
}

// SelectPrevious moves the selection up one entry, wrapping at the start.
func (s *Session) SelectPrevious() {
	if len(s.Devices) == 0 {
		return
	}
	s.Selected = (s.Selected + len(s.Devices) - 1) % len(s.Devices)
}

// SelectedDevice returns the device under the cursor.
func (s *Session) SelectedDevice() capture.Device {
	return s.Devices[s.Selected]
}

// NextNumber returns the sequence number for the next observed frame.
// Numbering counts every captured frame, not just displayed ones, so it is
// stable regardless of filter configuration.
func (s *Session) NextNumber() int {
	n := s.observed
	s.observed++
	return n
}

// Observed returns how many frames have been seen, kept or not.
func (s *Session) Observed() int {
	return s.observed
}

// Snapshot is the read-only view handed to renderers. Copied per redraw so
// the renderer never aliases live state.
type Snapshot struct {
	Devices   []capture.Device
	Selected  int
	Confirmed bool
	Capturing bool
	Packets   []models.PacketSummary
	Total     int
	Rate      float64
	Elapsed   time.Duration
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Devices:   s.Devices,
		Selected:  s.Selected,
		Confirmed: s.Confirmed,
		Capturing: s.Capturing,
		Packets:   s.Buffer.Entries(),
		Total:     s.Stats.Total(),
		Rate:      s.Stats.Rate(),
		Elapsed:   s.Stats.Elapsed(),
	}
}
