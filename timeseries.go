package ppg

import "github.com/chewxy/math32"

// series is a sliding window over recent channel values tracking the
// running mean (the DC level) and the min/max envelope.
type series struct {
	buf []float32
	idx int
	n   int
	sum float32

	max float32
	min float32
}

func newSeries(size int) *series {
	return &series{
		buf: make([]float32, size),
	}
}

func (s *series) add(v float32) {
	var evicted float32
	full := s.n == len(s.buf)
	if full {
		evicted = s.buf[s.idx]
		s.sum -= evicted
	} else {
		s.n++
	}

	s.buf[s.idx] = v
	s.sum += v
	s.idx = (s.idx + 1) % len(s.buf)

	if s.n == 1 {
		s.max, s.min = v, v
		return
	}

	if full && (evicted == s.max || evicted == s.min) {
		// The envelope may have left with the evicted value.
		s.max, s.min = v, v
		for i := 0; i < s.n; i++ {
			s.minmax(s.buf[i])
		}
		return
	}
	s.minmax(v)
}

func (s *series) minmax(v float32) {
	if v > s.max {
		s.max = v
	}
	if v < s.min {
		s.min = v
	}
}

func (s *series) mean() float32 {
	if s.n == 0 {
		return 0
	}
	return s.sum / float32(s.n)
}

// acdc returns the pulsatile swing relative to the DC level.
func (s *series) acdc() float32 {
	dc := s.mean()
	if math32.Abs(dc) < 1 {
		return 0
	}

	return (s.max - s.min) / dc
}
