package models

// PacketSummary is the classifier's one-line description of a captured frame.
// Immutable once produced.
type PacketSummary struct {
	Number   int    `json:"number"`
	Protocol string `json:"protocol"`
	SrcAddr  string `json:"srcAddr,omitempty"`
	DstAddr  string `json:"dstAddr,omitempty"`
	Flags    string `json:"flags,omitempty"`
	Length   int    `json:"length"`
	Text     string `json:"text"`
}
