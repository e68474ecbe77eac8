package max30101

import "fmt"

// Option defines a functional option for the device.
type Option func(d *Device) (Option, error)

// Options set different configuration options and returns the previous
// value of the last option passed.
func (d *Device) Options(options ...Option) (Option, error) {
	var old Option
	var err error
	for _, opt := range options {
		old, err = opt(d)
		if err != nil {
			return nil, err
		}
	}

	return old, nil
}

// Mode sets which LED channels are sampled: red only, red+IR, or all
// three via the multi-LED slots. The hardware FIFO pointers are cleared
// so decoding starts from a known state.
func Mode(mode byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(ModeCfg, modeMask, mode)
		if err != nil {
			return nil, fmt.Errorf("max30101: could not configure mode: %w", err)
		}

		switch mode {
		case ModeMultiLed:
			d.activeLEDs = 3
		case ModeRedIR:
			d.activeLEDs = 2
		case ModeRedOnly:
			d.activeLEDs = 1
		}

		if err := d.ClearFIFO(); err != nil {
			return nil, fmt.Errorf("max30101: could not configure mode: %w", err)
		}

		return Mode(old), nil
	}
}

// SampleAveraging sets how many raw samples the chip averages into one
// FIFO entry (SampleAvg1 .. SampleAvg32).
func SampleAveraging(avg byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(FIFOCfg, sampleAvgMask, avg)
		if err != nil {
			return nil, fmt.Errorf("max30101: could not configure sample averaging: %w", err)
		}

		return SampleAveraging(old), nil
	}
}

// FIFORollover controls whether the hardware FIFO wraps and overwrites
// old entries when full.
func FIFORollover(enable bool) Option {
	return func(d *Device) (Option, error) {
		var bits byte
		if enable {
			bits = rolloverEna
		}
		old, err := d.config(FIFOCfg, rolloverMask, bits)
		if err != nil {
			return nil, fmt.Errorf("max30101: could not configure FIFO rollover: %w", err)
		}

		return FIFORollover(old != 0), nil
	}
}

// AlmostFullValue sets how many unread samples remain when the
// AlmostFull interrupt triggers. It can take values from 0 to 15.
func AlmostFullValue(left byte) Option {
	return func(d *Device) (Option, error) {
		left &= ^fifoFullMask
		old, err := d.config(FIFOCfg, fifoFullMask, left)
		if err != nil {
			return nil, fmt.Errorf("max30101: could not configure almost full value to %d: %w", left, err)
		}

		return AlmostFullValue(old), nil
	}
}

// SampleRate sets the sample rate control of the device
// (SampleRate50 .. SampleRate3200).
func SampleRate(sr byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(ParticleCfg, srMask, sr)
		if err != nil {
			return nil, fmt.Errorf("max30101: could not configure sample rate: %w", err)
		}

		return SampleRate(old), nil
	}
}

// PulseWidth sets the LED pulse width (PW69 .. PW411). Longer pulses
// trade sampling headroom for ADC resolution, up to 18 bits at 411 µs.
func PulseWidth(pw byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(ParticleCfg, pwMask, pw)
		if err != nil {
			return nil, fmt.Errorf("max30101: could not configure pulse width: %w", err)
		}

		return PulseWidth(old), nil
	}
}

// ADCRange sets the ADC full-scale range (ADCRange2048 .. ADCRange16384).
func ADCRange(r byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(ParticleCfg, adcRangeMask, r)
		if err != nil {
			return nil, fmt.Errorf("max30101: could not configure ADC range: %w", err)
		}

		return ADCRange(old), nil
	}
}

func pulseAmp(reg byte, name string, level byte) Option {
	return func(d *Device) (Option, error) {
		if err := d.Write(reg, level); err != nil {
			return nil, fmt.Errorf("max30101: could not configure %s LED pulse amplitude: %w", name, err)
		}

		return pulseAmp(reg, name, level), nil
	}
}

// RedPulseAmp sets the red LED drive level. Levels 0–255 map linearly to
// 0–50 mA.
func RedPulseAmp(level byte) Option {
	return pulseAmp(Led1PA, "red", level)
}

// IRPulseAmp sets the IR LED drive level (0–255, 0–50 mA).
func IRPulseAmp(level byte) Option {
	return pulseAmp(Led2PA, "IR", level)
}

// GreenPulseAmp sets the green LED drive level (0–255, 0–50 mA).
func GreenPulseAmp(level byte) Option {
	return pulseAmp(Led3PA, "green", level)
}

// ProxPulseAmp sets the pilot LED drive level used in proximity mode.
func ProxPulseAmp(level byte) Option {
	return pulseAmp(LedProxPA, "proximity", level)
}

// Slot assigns an LED or pilot role to one of the four multiplexed
// slots. Slots 1 and 2 share one register, 3 and 4 the other.
func Slot(n int, role byte) Option {
	return func(d *Device) (Option, error) {
		var err error
		switch n {
		case 1:
			_, err = d.config(MultiLedS2S1, slotLowMask, role)
		case 2:
			_, err = d.config(MultiLedS2S1, slotHighMask, role<<4)
		case 3:
			_, err = d.config(MultiLedS4S3, slotLowMask, role)
		case 4:
			_, err = d.config(MultiLedS4S3, slotHighMask, role<<4)
		default:
			return nil, fmt.Errorf("max30101: invalid slot %d", n)
		}
		if err != nil {
			return nil, fmt.Errorf("max30101: could not configure slot %d: %w", n, err)
		}

		return Slot(n, role), nil
	}
}

// DisableSlots clears all four slot assignments.
func DisableSlots() Option {
	return func(d *Device) (Option, error) {
		if err := d.Write(MultiLedS2S1, 0); err != nil {
			return nil, fmt.Errorf("max30101: could not clear slots: %w", err)
		}
		if err := d.Write(MultiLedS4S3, 0); err != nil {
			return nil, fmt.Errorf("max30101: could not clear slots: %w", err)
		}

		return DisableSlots(), nil
	}
}

// InterruptEnable enables the given interrupt flags in the first enable
// register.
func InterruptEnable(i byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(IntEna1, ^i, i)
		if err != nil {
			return nil, fmt.Errorf("max30101: could not configure interrupt flags: %w", err)
		}

		return InterruptEnable(old), nil
	}
}

// InterruptDisable clears the given interrupt flags in the first enable
// register.
func InterruptDisable(i byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(IntEna1, ^i, 0)
		if err != nil {
			return nil, fmt.Errorf("max30101: could not configure interrupt flags: %w", err)
		}

		return InterruptEnable(old), nil
	}
}

// ProximityThreshold sets the 8 most significant bits of the IR ADC
// count that starts particle-sensing mode.
func ProximityThreshold(msb byte) Option {
	return func(d *Device) (Option, error) {
		if err := d.Write(ProxThresh, msb); err != nil {
			return nil, fmt.Errorf("max30101: could not configure proximity threshold: %w", err)
		}

		return ProximityThreshold(msb), nil
	}
}
