package monitor

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniffscope/internal/capture"
	"sniffscope/internal/controller"
)

func TestPromptDevice(t *testing.T) {
	devices := []capture.Device{
		{Name: "eth0", Description: "wired"},
		{Name: "wlan0"},
		{Name: "lo"},
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid selection", input: "2\n", want: "wlan0"},
		{name: "first device", input: "1\n", want: "eth0"},
		{name: "non-numeric", input: "abc\n", wantErr: true},
		{name: "zero", input: "0\n", wantErr: true},
		{name: "out of range", input: "4\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			dev, err := PromptDevice(devices, strings.NewReader(tt.input), &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dev.Name)
			assert.Contains(t, out.String(), "1. eth0 (wired)")
			assert.Contains(t, out.String(), "3. lo")
		})
	}
}

// scriptedSource replays a fixed frame sequence, then reports end of file.
type scriptedSource struct {
	frames [][]byte
	closed bool
}

func (s *scriptedSource) NextFrame() ([]byte, error) {
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func (s *scriptedSource) Close() { s.closed = true }

func testFrame(t *testing.T) []byte {
	t.Helper()
	eth := layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{6, 7, 8, 9, 10, 11},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := layers.IPv4{
		Version: 4, IHL: 5, TTL: 64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.ParseIP("10.0.0.1"),
		DstIP:    net.ParseIP("10.0.0.2"),
	}
	tcp := layers.TCP{SrcPort: 80, DstPort: 51000, PSH: true, ACK: true}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(&ip))
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, &eth, &ip, &tcp))
	return buf.Bytes()
}

func TestRunDrainsSourceUntilEOF(t *testing.T) {
	src := &scriptedSource{frames: [][]byte{testFrame(t), testFrame(t)}}
	ctrl := controller.New(controller.Config{
		Devices: []capture.Device{{Name: "replay"}},
	})

	var out bytes.Buffer
	ctrl.AttachObserver(&Printer{Out: &out})
	ctrl.StartWith(src, "replay")

	require.NoError(t, Run(context.Background(), ctrl, src))

	assert.Equal(t, controller.StateTerminated, ctrl.State())
	assert.True(t, src.closed)
	assert.Equal(t, 2, ctrl.Snapshot().Total)
	assert.Contains(t, out.String(), "Sniffing on replay")
	assert.Contains(t, out.String(), "[0] IPv4 TCP")
	assert.Contains(t, out.String(), "[1] IPv4 TCP")
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{frames: [][]byte{testFrame(t)}}
	ctrl := controller.New(controller.Config{
		Devices: []capture.Device{{Name: "replay"}},
	})
	ctrl.StartWith(src, "replay")

	require.NoError(t, Run(ctx, ctrl, src))
	assert.Equal(t, controller.StateTerminated, ctrl.State())
	// The pending frame was never consumed.
	assert.Equal(t, 0, ctrl.Snapshot().Total)
}
