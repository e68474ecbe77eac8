// Package ppg turns raw MAX30101 readings into a calibrated, filtered
// photoplethysmography signal synchronized with a companion motion
// sensor. It layers LED-power calibration, per-channel low-pass
// filtering and a two-goroutine sampling schedule on top of the
// register-level driver in package max30101.
package ppg

// A Reporter receives the outputs of the sampling pipeline. Sample is
// called once per consumed optical sample with the filtered channel
// values, Motion once per accelerometer reading, and Vitals whenever the
// derived estimates are refreshed on a detected beat.
type Reporter interface {
	Sample(red, ir, green float32)
	Motion(x, y, z, mag float32)
	Vitals(bpm, spo2 float32)
}

// A MotionSource reads one acceleration sample from the companion
// motion sensor, in g.
type MotionSource interface {
	Read() (x, y, z float32, err error)
}
