package ppg

import (
	"errors"
	"fmt"

	"github.com/pulseloop/ppg/max30101"
)

const (
	// calTarget centers the DC level at half of the 18-bit full scale.
	calTarget    = 262144 / 2
	calTolerance = 4096

	// calBudget bounds the feedback loop. A non-monotonic or saturating
	// LED response would otherwise hunt forever; walking an amplitude
	// end to end takes 255 steps, so this is generous.
	calBudget = 4096
)

// ErrCalibration is returned when the LED feedback loop exhausts its
// sample budget without both channels settling inside the target band.
var ErrCalibration = errors.New("ppg: calibration did not converge")

// Calibration holds the per-LED drive levels found by Calibrate.
type Calibration struct {
	Red   uint8
	IR    uint8
	Green uint8
}

// Calibrate finds the drive level that lands each channel's DC reading
// inside the target band. The device is switched to fast settings (no
// averaging, all channels, 1.6 kHz) with red and IR starting dark; the
// green LED is pinned at full drive and excluded from the loop. Each
// observed sample nudges red and IR by one level toward the target and
// re-applies the amplitudes before the next observation. On success the
// device is left running with the returned levels; reconfigure it for
// steady-state sampling afterwards.
func Calibrate(d *max30101.Device) (Calibration, error) {
	c := Calibration{Green: 0xFF}

	if _, err := d.Options(
		max30101.SampleAveraging(max30101.SampleAvg1),
		max30101.SampleRate(max30101.SampleRate1600),
		max30101.PulseWidth(max30101.PW215),
		max30101.ADCRange(max30101.ADCRange16384),
		max30101.RedPulseAmp(c.Red),
		max30101.IRPulseAmp(c.IR),
		max30101.GreenPulseAmp(c.Green),
		max30101.Slot(1, max30101.SlotRedLED),
		max30101.Slot(2, max30101.SlotIRLED),
		max30101.Slot(3, max30101.SlotGreenLED),
		max30101.FIFORollover(true),
		max30101.Mode(max30101.ModeMultiLed),
	); err != nil {
		return c, fmt.Errorf("ppg: could not configure calibration settings: %w", err)
	}

	seen := 0
	for seen < calBudget {
		if _, err := d.Check(); err != nil {
			return c, fmt.Errorf("ppg: calibration poll failed: %w", err)
		}

		for d.Available() > 0 && seen < calBudget {
			seen++
			s := d.Sample()

			c.Red = stepToward(c.Red, s.Red)
			c.IR = stepToward(c.IR, s.IR)

			if _, err := d.Options(
				max30101.RedPulseAmp(c.Red),
				max30101.IRPulseAmp(c.IR),
			); err != nil {
				return c, fmt.Errorf("ppg: could not update LED amplitude: %w", err)
			}

			done := inBand(s.Red) && inBand(s.IR)
			d.NextSample()
			if done {
				return c, nil
			}
		}
	}

	return c, fmt.Errorf("%w after %d samples (red=%d ir=%d)", ErrCalibration, seen, c.Red, c.IR)
}

// stepToward moves a drive level one unit toward the target band,
// clamped to [0, 255].
func stepToward(level uint8, raw uint32) uint8 {
	switch {
	case raw > calTarget+calTolerance:
		if level > 0 {
			level--
		}
	case raw < calTarget-calTolerance:
		if level < 0xFF {
			level++
		}
	}
	return level
}

func inBand(raw uint32) bool {
	d := int64(raw) - calTarget
	return d > -calTolerance && d < calTolerance
}
