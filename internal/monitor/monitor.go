// Package monitor is the plain, line-printing front-end: a numbered device
// prompt on stdin, then a capture loop that prints every kept summary.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"sniffscope/internal/capture"
	"sniffscope/internal/controller"
	"sniffscope/internal/models"
)

// PromptDevice lists the devices on out and reads a 1-based selection from
// in. Out-of-range or non-numeric input is an error; the caller treats it
// as fatal.
func PromptDevice(devices []capture.Device, in io.Reader, out io.Writer) (capture.Device, error) {
	fmt.Fprintln(out, "Available devices:")
	for i, dev := range devices {
		if dev.Description != "" {
			fmt.Fprintf(out, "%d. %s (%s)\n", i+1, dev.Name, dev.Description)
		} else {
			fmt.Fprintf(out, "%d. %s\n", i+1, dev.Name)
		}
	}
	fmt.Fprint(out, "Select a device to capture: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return capture.Device{}, fmt.Errorf("read selection: %w", err)
	}
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return capture.Device{}, fmt.Errorf("invalid selection %q: expected a number", strings.TrimSpace(line))
	}
	if choice < 1 || choice > len(devices) {
		return capture.Device{}, fmt.Errorf("invalid selection %d: have %d devices", choice, len(devices))
	}
	return devices[choice-1], nil
}

// Printer writes each kept summary line to out. It is the plain mode's
// rendering sink.
type Printer struct {
	Out io.Writer
}

func (p *Printer) PacketKept(s models.PacketSummary) {
	fmt.Fprintln(p.Out, s.Text)
}

func (p *Printer) CaptureStarted(device string) {
	fmt.Fprintf(p.Out, "Sniffing on %s... Press Ctrl+C to stop.\n", device)
}

func (p *Printer) CaptureStopped() {}

// Run drains the capture source through the controller until the context
// is cancelled, the source ends (offline replay), or a fatal read error
// occurs. Timeouts are the idle case and loop silently.
func Run(ctx context.Context, ctrl *controller.Controller, source controller.FrameSource) error {
	for {
		select {
		case <-ctx.Done():
			logCaptureStats(source)
			ctrl.Quit()
			return nil
		default:
		}

		data, err := source.NextFrame()
		switch {
		case err == nil:
			ctrl.HandleFrame(data)
		case errors.Is(err, capture.ErrTimeout):
			ctrl.HandleTimeout()
		case errors.Is(err, io.EOF):
			log.Info("end of capture source")
			ctrl.Quit()
			return nil
		default:
			ctrl.HandleFatal(err)
			return err
		}
	}
}

// logCaptureStats reports handle counters for sources that expose them.
// Must run before the session is closed; offline replays have no counters
// and are skipped.
func logCaptureStats(source controller.FrameSource) {
	st, ok := source.(interface{ Stats() (int, int, error) })
	if !ok {
		return
	}
	received, dropped, err := st.Stats()
	if err != nil {
		return
	}
	log.WithFields(log.Fields{
		"received": received,
		"dropped":  dropped,
	}).Info("capture statistics")
}
