// Package controller drives the capture/UI state machine: device
// selection, capture lifecycle, and the per-frame classify/filter/record
// pipeline. It owns the capture session from open to close and is the only
// writer of session state.
package controller

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"sniffscope/internal/capture"
	"sniffscope/internal/classify"
	"sniffscope/internal/export"
	"sniffscope/internal/filter"
	"sniffscope/internal/models"
	"sniffscope/internal/session"
)

// State is the controller's position in the capture lifecycle.
type State int

const (
	// StateSelecting is the initial state: the device cursor is live and
	// no capture is open.
	StateSelecting State = iota
	// StatePaused has a confirmed device and an open session that is not
	// being consumed.
	StatePaused
	// StateCapturing is actively draining the capture source.
	StateCapturing
	// StateTerminated is terminal: resources released, no transitions out.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StatePaused:
		return "paused"
	case StateCapturing:
		return "capturing"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// FrameSource is the non-blocking capture surface the loop polls. A read
// yields a frame, capture.ErrTimeout, or a fatal error.
type FrameSource interface {
	NextFrame() ([]byte, error)
	Close()
}

// OpenFunc opens a capture session on the confirmed device.
type OpenFunc func(dev capture.Device, promisc bool) (FrameSource, error)

// Observer receives every kept packet and capture lifecycle changes.
// Implementations must not block; the controller calls them on the hot path.
type Observer interface {
	PacketKept(models.PacketSummary)
	CaptureStarted(device string)
	CaptureStopped()
}

// Config wires a Controller. Open may be nil when the caller attaches an
// already-open source via StartWith.
type Config struct {
	Devices     []capture.Device
	Rules       []filter.Rule
	Promiscuous bool
	Open        OpenFunc
	Exporter    *export.Exporter
}

type Controller struct {
	state     State
	sess      *session.Session
	rules     []filter.Rule
	promisc   bool
	open      OpenFunc
	exporter  *export.Exporter
	source    FrameSource
	observers []Observer
}

func New(cfg Config) *Controller {
	return &Controller{
		state:    StateSelecting,
		sess:     session.New(cfg.Devices),
		rules:    cfg.Rules,
		promisc:  cfg.Promiscuous,
		open:     cfg.Open,
		exporter: cfg.Exporter,
	}
}

// AttachObserver registers a packet observer. Not safe once the loop runs.
func (c *Controller) AttachObserver(o Observer) {
	c.observers = append(c.observers, o)
}

func (c *Controller) State() State {
	return c.state
}

// Source exposes the open capture source for the polling front-end. Nil
// until a device is confirmed.
func (c *Controller) Source() FrameSource {
	return c.source
}

// Snapshot returns the read-only view for renderers.
func (c *Controller) Snapshot() session.Snapshot {
	return c.sess.Snapshot()
}

// MoveUp moves the device cursor up while selecting.
func (c *Controller) MoveUp() {
	if c.state == StateSelecting {
		c.sess.SelectPrevious()
	}
}

// MoveDown moves the device cursor down while selecting.
func (c *Controller) MoveDown() {
	if c.state == StateSelecting {
		c.sess.SelectNext()
	}
}

// Confirm opens a capture session on the selected device and starts
// capturing. On failure the controller stays in device selection so the
// interactive mode can pick another device.
func (c *Controller) Confirm() error {
	if c.state != StateSelecting {
		return nil
	}
	dev := c.sess.SelectedDevice()
	source, err := c.open(dev, c.promisc)
	if err != nil {
		log.WithField("device", dev.Name).Error("capture open failed")
		return fmt.Errorf("open capture on %s: %w", dev.Name, err)
	}
	c.startWith(source, dev.Name)
	return nil
}

// StartWith begins capturing from an already-open source, bypassing device
// selection. Used by the plain monitor, which prompts for the device itself.
func (c *Controller) StartWith(source FrameSource, name string) {
	if c.state != StateSelecting {
		return
	}
	c.startWith(source, name)
}

func (c *Controller) startWith(source FrameSource, name string) {
	c.source = source
	c.sess.Confirmed = true
	c.sess.Capturing = true
	c.sess.Stats.Reset()
	c.state = StateCapturing
	log.WithField("device", name).Info("capture started")
	for _, o := range c.observers {
		o.CaptureStarted(name)
	}
}

// ToggleCapture flips between Capturing and Paused without closing the
// session.
func (c *Controller) ToggleCapture() {
	switch c.state {
	case StateCapturing:
		c.state = StatePaused
		c.sess.Capturing = false
	case StatePaused:
		c.state = StateCapturing
		c.sess.Capturing = true
	}
}

// HandleFrame runs one observed frame through the pipeline: classify,
// filter, and on keep record stats, push to the display buffer, export and
// fan out to observers. Frames arriving outside StateCapturing are dropped.
func (c *Controller) HandleFrame(data []byte) {
	if c.state != StateCapturing {
		return
	}
	summary := classify.Classify(data, c.sess.NextNumber())
	log.WithFields(log.Fields{
		"number":   summary.Number,
		"protocol": summary.Protocol,
		"length":   summary.Length,
	}).Debug("frame observed")

	if !filter.ShouldDisplay(summary.Text, c.rules) {
		return
	}

	c.sess.Stats.Record()
	c.sess.Buffer.Push(summary)
	if c.exporter != nil {
		if err := c.exporter.Append(summary.Text); err != nil {
			log.WithError(err).Warn("export append failed")
		}
	}
	for _, o := range c.observers {
		o.PacketKept(summary)
	}
}

// HandleTimeout is the expected idle case for a non-blocking source. It is
// deliberately a no-op.
func (c *Controller) HandleTimeout() {}

// HandleFatal reports a fatal capture error and terminates.
func (c *Controller) HandleFatal(err error) {
	if c.state == StateTerminated {
		return
	}
	log.WithError(err).Error("capture failed")
	c.terminate()
}

// Quit terminates from any state, releasing the capture session if open.
func (c *Controller) Quit() {
	if c.state == StateTerminated {
		return
	}
	c.terminate()
}

func (c *Controller) terminate() {
	if c.source != nil {
		c.source.Close()
		c.source = nil
		for _, o := range c.observers {
			o.CaptureStopped()
		}
	}
	c.sess.Capturing = false
	c.state = StateTerminated
}
