package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/gopacket/pcap"
)

const (
	DefaultSnapLen = 65535

	// ReadTimeout bounds a single NextFrame poll. The interactive loop
	// needs reads to return quickly so UI input is never starved.
	ReadTimeout = time.Millisecond
)

// ErrTimeout is returned by NextFrame when the poll expired without a
// frame. It is the expected idle case, not a failure.
var ErrTimeout = errors.New("capture: read timed out")

// Device identifies one capture source. Immutable once enumerated.
type Device struct {
	Name        string
	Description string
	Addresses   []string
}

// ListDevices returns all available capture devices.
func ListDevices() ([]Device, error) {
	devs, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	var out []Device
	for _, d := range devs {
		dev := Device{
			Name:        d.Name,
			Description: d.Description,
		}
		for _, addr := range d.Addresses {
			dev.Addresses = append(dev.Addresses, addr.IP.String())
		}
		out = append(out, dev)
	}
	return out, nil
}

// Session owns one open capture handle from open to close.
type Session struct {
	handle *pcap.Handle
	source string
}

// Open starts a live capture on the given device. The handle is configured
// for short bounded reads before activation; a failure at any step surfaces
// as an error rather than an assumed-good handle.
func Open(dev Device, promisc bool, snapLen int32) (*Session, error) {
	if snapLen <= 0 {
		snapLen = DefaultSnapLen
	}
	inactive, err := pcap.NewInactiveHandle(dev.Name)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", dev.Name, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(int(snapLen)); err != nil {
		return nil, fmt.Errorf("set snaplen on %s: %w", dev.Name, err)
	}
	if err := inactive.SetPromisc(promisc); err != nil {
		return nil, fmt.Errorf("set promiscuous mode on %s: %w", dev.Name, err)
	}
	if err := inactive.SetImmediateMode(true); err != nil {
		return nil, fmt.Errorf("set immediate mode on %s: %w", dev.Name, err)
	}
	if err := inactive.SetTimeout(ReadTimeout); err != nil {
		return nil, fmt.Errorf("set read timeout on %s: %w", dev.Name, err)
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("start capture on %s: %w", dev.Name, err)
	}
	return &Session{handle: handle, source: dev.Name}, nil
}

// NextFrame returns the next raw frame. ErrTimeout signals an expired poll;
// any other error is fatal for the session. io.EOF marks the end of an
// offline replay.
func (s *Session) NextFrame() ([]byte, error) {
	data, _, err := s.handle.ReadPacketData()
	if err != nil {
		if err == pcap.NextErrorTimeoutExpired {
			return nil, ErrTimeout
		}
		return nil, err
	}
	return data, nil
}

// Source returns the device name or file path this session reads from.
func (s *Session) Source() string {
	return s.source
}

// Stats returns capture statistics from the handle.
func (s *Session) Stats() (received, dropped int, err error) {
	stats, err := s.handle.Stats()
	if err != nil {
		return 0, 0, err
	}
	return stats.PacketsReceived, stats.PacketsDropped, nil
}

// Close releases the capture handle.
func (s *Session) Close() {
	if s.handle != nil {
		s.handle.Close()
	}
}
