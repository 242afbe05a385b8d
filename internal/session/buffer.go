package session

import "sniffscope/internal/models"

// BufferCapacity bounds the display window independent of the unbounded
// total packet count.
const BufferCapacity = 100

// Buffer is a bounded, newest-first window of kept packet summaries.
type Buffer struct {
	entries []models.PacketSummary
}

func NewBuffer() *Buffer {
	return &Buffer{entries: make([]models.PacketSummary, 0, BufferCapacity)}
}

// Push inserts a summary at the front, evicting the oldest entry when the
// window is full.
func (b *Buffer) Push(s models.PacketSummary) {
	if len(b.entries) < BufferCapacity {
		b.entries = append(b.entries, models.PacketSummary{})
	}
	copy(b.entries[1:], b.entries)
	b.entries[0] = s
}

func (b *Buffer) Len() int {
	return len(b.entries)
}

// Entries returns a copy of the window, newest first.
func (b *Buffer) Entries() []models.PacketSummary {
	out := make([]models.PacketSummary, len(b.entries))
	copy(out, b.entries)
	return out
}
