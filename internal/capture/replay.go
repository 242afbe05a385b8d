package capture

import (
	"fmt"

	"github.com/google/gopacket/pcap"
)

// OpenFile opens a pcap file for offline replay behind the same Session
// surface as a live capture. NextFrame returns io.EOF once the file is
// exhausted.
func OpenFile(path string) (*Session, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("open pcap file %s: %w", path, err)
	}
	return &Session{handle: handle, source: path}, nil
}
