package classify

import (
	"fmt"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"sniffscope/internal/models"
)

// Classify converts a raw frame into a PacketSummary. It is total: any
// frame that cannot be decoded down to a recognized transport yields the
// Unknown summary instead of an error. Dispatch is strictly top-down,
// Ethernet -> {IPv4, IPv6} -> {TCP, UDP}; a parse failure at any depth
// falls through to Unknown.
func Classify(data []byte, number int) models.PacketSummary {
	var eth layers.Ethernet
	if err := eth.DecodeFromBytes(data, gopacket.NilDecodeFeedback); err != nil {
		return unknown(data, number)
	}

	switch eth.EthernetType {
	case layers.EthernetTypeIPv4:
		var ip4 layers.IPv4
		if err := ip4.DecodeFromBytes(eth.Payload, gopacket.NilDecodeFeedback); err != nil {
			return unknown(data, number)
		}
		return classifyTransport(data, number, "IPv4", ip4.SrcIP.String(), ip4.DstIP.String(), ip4.Protocol, ip4.Payload)
	case layers.EthernetTypeIPv6:
		var ip6 layers.IPv6
		if err := ip6.DecodeFromBytes(eth.Payload, gopacket.NilDecodeFeedback); err != nil {
			return unknown(data, number)
		}
		return classifyTransport(data, number, "IPv6", ip6.SrcIP.String(), ip6.DstIP.String(), ip6.NextHeader, ip6.Payload)
	}

	return unknown(data, number)
}

func classifyTransport(data []byte, number int, family, srcIP, dstIP string, proto layers.IPProtocol, payload []byte) models.PacketSummary {
	switch proto {
	case layers.IPProtocolTCP:
		var tcp layers.TCP
		if err := tcp.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err != nil {
			return unknown(data, number)
		}
		s := models.PacketSummary{
			Number:   number,
			Protocol: family + " TCP",
			SrcAddr:  fmt.Sprintf("%s:%d", srcIP, tcp.SrcPort),
			DstAddr:  fmt.Sprintf("%s:%d", dstIP, tcp.DstPort),
			Flags:    tcpFlags(&tcp),
			Length:   len(data),
		}
		s.Text = fmt.Sprintf("[%d] %s | SRC: %s | DST: %s | FLAGS: [%s] | LEN: %d",
			s.Number, s.Protocol, s.SrcAddr, s.DstAddr, s.Flags, s.Length)
		return s
	case layers.IPProtocolUDP:
		var udp layers.UDP
		if err := udp.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err != nil {
			return unknown(data, number)
		}
		s := models.PacketSummary{
			Number:   number,
			Protocol: family + " UDP",
			SrcAddr:  fmt.Sprintf("%s:%d", srcIP, udp.SrcPort),
			DstAddr:  fmt.Sprintf("%s:%d", dstIP, udp.DstPort),
			Length:   len(data),
		}
		s.Text = fmt.Sprintf("[%d] %s | SRC: %s | DST: %s | LEN: %d",
			s.Number, s.Protocol, s.SrcAddr, s.DstAddr, s.Length)
		return s
	}

	return unknown(data, number)
}

func unknown(data []byte, number int) models.PacketSummary {
	return models.PacketSummary{
		Number:   number,
		Protocol: "Unknown",
		Length:   len(data),
		Text:     fmt.Sprintf("[%d] Unknown Packet | LEN: %d", number, len(data)),
	}
}

func tcpFlags(tcp *layers.TCP) string {
	flagParts := []string{}
	if tcp.SYN {
		flagParts = append(flagParts, "SYN")
	}
	if tcp.ACK {
		flagParts = append(flagParts, "ACK")
	}
	if tcp.FIN {
		flagParts = append(flagParts, "FIN")
	}
	if tcp.RST {
		flagParts = append(flagParts, "RST")
	}
	if tcp.PSH {
		flagParts = append(flagParts, "PSH")
	}
	if tcp.URG {
		flagParts = append(flagParts, "URG")
	}
	return strings.Join(flagParts, ", ")
}
