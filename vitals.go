package ppg

import "time"

const (
	// beatFloor is the minimum peak-to-trough swing, in ADC counts, for
	// a zero crossing to count as a beat rather than noise.
	beatFloor = 64

	// Beat spans outside 238 ms – 6 s correspond to rates outside
	// 10–250 bpm and are discarded as invalid.
	minBeatSpan = 238 * time.Millisecond
	maxBeatSpan = 6 * time.Second
)

// ema keeps an estimated moving average over the last 4 values.
type ema struct {
	mean float32
}

func (m *ema) add(n float32) {
	m.mean += (n - m.mean) / 4
}

// Vitals derives heart-rate and SpO2 estimates from the filtered red and
// IR channels. Beats are detected as positive zero crossings of the AC
// component of the red signal.
type Vitals struct {
	red *series
	ir  *series

	hr   ema
	spo2 ema

	acPrev float32
	acMax  float32
	acMin  float32
	rising bool

	lastBeat time.Time
	now      func() time.Time
}

// NewVitals returns a vitals monitor with empty history.
func NewVitals() *Vitals {
	return &Vitals{
		red: newSeries(64),
		ir:  newSeries(64),
		now: time.Now,
	}
}

// Update consumes one filtered sample pair and reports whether it
// completed a beat.
func (v *Vitals) Update(red, ir float32) bool {
	v.red.add(red)
	v.ir.add(ir)

	ac := red - v.red.mean()
	beat := false

	// Rising edge
	if v.acPrev < 0 && ac >= 0 {
		if v.acMax-v.acMin > beatFloor {
			t := v.now()
			if !v.lastBeat.IsZero() {
				span := t.Sub(v.lastBeat)
				if span > minBeatSpan && span < maxBeatSpan {
					ms := float32(span.Milliseconds())
					if v.hr.mean == 0 {
						v.hr.mean = ms
					}
					v.hr.add(ms)
					v.updateSpO2()
					beat = true
				}
			}
			v.lastBeat = t
		}
		v.rising = true
		v.acMax = 0
	}

	// Falling edge
	if v.acPrev > 0 && ac <= 0 {
		v.rising = false
		v.acMin = 0
	}

	if v.rising {
		if ac > v.acPrev {
			v.acMax = ac
		}
	} else {
		if ac < v.acPrev {
			v.acMin = ac
		}
	}

	v.acPrev = ac

	return beat
}

func (v *Vitals) updateSpO2() {
	irACDC := v.ir.acdc()
	if irACDC == 0 {
		return
	}
	r := v.red.acdc() / irACDC

	s := 104 - 17*r
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}

	if v.spo2.mean == 0 {
		v.spo2.mean = s
	}
	v.spo2.add(s)
}

// HeartRate returns the smoothed heart rate in beats per minute, or 0
// before the first valid beat.
func (v *Vitals) HeartRate() float32 {
	if v.hr.mean == 0 {
		return 0
	}
	return 60000 / v.hr.mean
}

// SpO2 returns the smoothed SpO2 estimate in percent, or 0 before the
// first valid beat.
func (v *Vitals) SpO2() float32 {
	return v.spo2.mean
}
