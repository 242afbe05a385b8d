package session

import "time"

// Stats tracks the kept-packet count and a throttled rate estimate. The
// rate is recomputed at most once per second so the displayed value stays
// stable between redraws; the count itself is always exact.
type Stats struct {
	total      int
	rate       float64
	start      time.Time
	lastSample time.Time

	now func() time.Time
}

func NewStats() *Stats {
	s := &Stats{now: time.Now}
	s.Reset()
	return s
}

// Reset clears the counters and restarts the elapsed-time clock. Called
// when a capture session opens.
func (s *Stats) Reset() {
	n := s.now()
	s.total = 0
	s.rate = 0
	s.start = n
	s.lastSample = n
}

// Record counts one kept packet. The rate is recomputed only when at least
// one second has elapsed since the last recomputation.
func (s *Stats) Record() {
	s.total++
	n := s.now()
	if n.Sub(s.lastSample) >= time.Second {
		if elapsed := n.Sub(s.start).Seconds(); elapsed > 0 {
			s.rate = float64(s.total) / elapsed
		}
		s.lastSample = n
	}
}

func (s *Stats) Total() int {
	return s.total
}

func (s *Stats) Rate() float64 {
	return s.rate
}

func (s *Stats) Elapsed() time.Duration {
	return s.now().Sub(s.start)
}
