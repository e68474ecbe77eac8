package ppg

// Biquad is one direct form II transposed second-order recursive filter
// section. State persists across calls, so feeding samples one at a
// time continues the recursion. Each channel gets its own instance.
type Biquad struct {
	b0, b1, b2 float32
	a1, a2     float32

	d1, d2 float32
}

// NewLowPass returns a biquad with the low-pass response applied to
// every LED channel.
func NewLowPass() *Biquad {
	return &Biquad{
		b0: 0.274727,
		b1: 0.549454,
		b2: 0.274727,
		a1: 0.073624,
		a2: -0.172531,
	}
}

// Filter consumes one raw input and produces one filtered output.
func (f *Biquad) Filter(x float32) float32 {
	y := f.b0*x + f.d1
	f.d1 = f.b1*x + f.a1*y + f.d2
	f.d2 = f.b2*x + f.a2*y

	return y
}

// Reset clears the filter state.
func (f *Biquad) Reset() {
	f.d1, f.d2 = 0, 0
}
