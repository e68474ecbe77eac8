package ppg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pulseloop/ppg/max30101"
)

// Config is the application configuration surface. Zero values are
// backfilled from Default on load.
type Config struct {
	Sensor    SensorConfig    `yaml:"sensor"`
	Motion    MotionConfig    `yaml:"motion"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SensorConfig selects the optical sensor bus and its steady-state
// sampling settings, in datasheet units.
type SensorConfig struct {
	Bus  string `yaml:"bus"`
	Addr uint16 `yaml:"addr"`

	SampleAveraging int `yaml:"sample_averaging"` // 1, 2, 4, 8, 16, 32
	LEDMode         int `yaml:"led_mode"`         // 1 = red, 2 = red+IR, 3 = red+IR+green
	SampleRate      int `yaml:"sample_rate_hz"`   // 50 .. 3200
	PulseWidth      int `yaml:"pulse_width_us"`   // 69, 118, 215, 411
	ADCRange        int `yaml:"adc_range"`        // 2048, 4096, 8192, 16384
}

// MotionConfig selects the companion accelerometer.
type MotionConfig struct {
	Bus  string `yaml:"bus"`
	Addr uint16 `yaml:"addr"`
}

// TelemetryConfig selects the report sink. With an empty serial port
// the stream goes to standard output.
type TelemetryConfig struct {
	SerialPort string `yaml:"serial_port"`
	BaudRate   int    `yaml:"baud_rate"`
}

// DefaultConfig returns the steady-state settings the original firmware
// runs with.
func DefaultConfig() *Config {
	return &Config{
		Sensor: SensorConfig{
			SampleAveraging: 2,
			LEDMode:         3,
			SampleRate:      100,
			PulseWidth:      215,
			ADCRange:        16384,
		},
		Telemetry: TelemetryConfig{
			BaudRate: 115200,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file or
// missing fields fall back to defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("ppg: could not read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ppg: could not parse config file: %w", err)
	}
	cfg.ensureDefaults()

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("ppg: could not marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("ppg: could not write config file: %w", err)
	}

	return nil
}

func (c *Config) ensureDefaults() {
	def := DefaultConfig()

	if c.Sensor.SampleAveraging == 0 {
		c.Sensor.SampleAveraging = def.Sensor.SampleAveraging
	}
	if c.Sensor.LEDMode == 0 {
		c.Sensor.LEDMode = def.Sensor.LEDMode
	}
	if c.Sensor.SampleRate == 0 {
		c.Sensor.SampleRate = def.Sensor.SampleRate
	}
	if c.Sensor.PulseWidth == 0 {
		c.Sensor.PulseWidth = def.Sensor.PulseWidth
	}
	if c.Sensor.ADCRange == 0 {
		c.Sensor.ADCRange = def.Sensor.ADCRange
	}
	if c.Telemetry.BaudRate == 0 {
		c.Telemetry.BaudRate = def.Telemetry.BaudRate
	}
}

// Apply configures the device for steady-state sampling with the given
// calibrated LED levels, assigns the slots for the configured mode, and
// clears the hardware FIFO.
func (c *Config) Apply(d *max30101.Device, cal Calibration) error {
	opts, err := c.Sensor.options()
	if err != nil {
		return err
	}

	opts = append(opts,
		max30101.RedPulseAmp(cal.Red),
		max30101.IRPulseAmp(cal.IR),
		max30101.GreenPulseAmp(cal.Green),
		max30101.Slot(1, max30101.SlotRedLED),
	)
	if c.Sensor.LEDMode > 1 {
		opts = append(opts, max30101.Slot(2, max30101.SlotIRLED))
	}
	if c.Sensor.LEDMode > 2 {
		opts = append(opts, max30101.Slot(3, max30101.SlotGreenLED))
	}

	if _, err := d.Options(opts...); err != nil {
		return fmt.Errorf("ppg: could not apply sensor settings: %w", err)
	}

	return d.ClearFIFO()
}

// options translates the datasheet-unit settings into register options.
func (s *SensorConfig) options() ([]max30101.Option, error) {
	var opts []max30101.Option

	switch s.SampleAveraging {
	case 1:
		opts = append(opts, max30101.SampleAveraging(max30101.SampleAvg1))
	case 2:
		opts = append(opts, max30101.SampleAveraging(max30101.SampleAvg2))
	case 4:
		opts = append(opts, max30101.SampleAveraging(max30101.SampleAvg4))
	case 8:
		opts = append(opts, max30101.SampleAveraging(max30101.SampleAvg8))
	case 16:
		opts = append(opts, max30101.SampleAveraging(max30101.SampleAvg16))
	case 32:
		opts = append(opts, max30101.SampleAveraging(max30101.SampleAvg32))
	default:
		return nil, fmt.Errorf("ppg: invalid sample averaging %d", s.SampleAveraging)
	}

	switch s.SampleRate {
	case 50:
		opts = append(opts, max30101.SampleRate(max30101.SampleRate50))
	case 100:
		opts = append(opts, max30101.SampleRate(max30101.SampleRate100))
	case 200:
		opts = append(opts, max30101.SampleRate(max30101.SampleRate200))
	case 400:
		opts = append(opts, max30101.SampleRate(max30101.SampleRate400))
	case 800:
		opts = append(opts, max30101.SampleRate(max30101.SampleRate800))
	case 1000:
		opts = append(opts, max30101.SampleRate(max30101.SampleRate1000))
	case 1600:
		opts = append(opts, max30101.SampleRate(max30101.SampleRate1600))
	case 3200:
		opts = append(opts, max30101.SampleRate(max30101.SampleRate3200))
	default:
		return nil, fmt.Errorf("ppg: invalid sample rate %d Hz", s.SampleRate)
	}

	switch s.PulseWidth {
	case 69:
		opts = append(opts, max30101.PulseWidth(max30101.PW69))
	case 118:
		opts = append(opts, max30101.PulseWidth(max30101.PW118))
	case 215:
		opts = append(opts, max30101.PulseWidth(max30101.PW215))
	case 411:
		opts = append(opts, max30101.PulseWidth(max30101.PW411))
	default:
		return nil, fmt.Errorf("ppg: invalid pulse width %d µs", s.PulseWidth)
	}

	switch s.ADCRange {
	case 2048:
		opts = append(opts, max30101.ADCRange(max30101.ADCRange2048))
	case 4096:
		opts = append(opts, max30101.ADCRange(max30101.ADCRange4096))
	case 8192:
		opts = append(opts, max30101.ADCRange(max30101.ADCRange8192))
	case 16384:
		opts = append(opts, max30101.ADCRange(max30101.ADCRange16384))
	default:
		return nil, fmt.Errorf("ppg: invalid ADC range %d", s.ADCRange)
	}

	opts = append(opts, max30101.FIFORollover(true))

	switch s.LEDMode {
	case 1:
		opts = append(opts, max30101.Mode(max30101.ModeRedOnly))
	case 2:
		opts = append(opts, max30101.Mode(max30101.ModeRedIR))
	case 3:
		opts = append(opts, max30101.Mode(max30101.ModeMultiLed))
	default:
		return nil, fmt.Errorf("ppg: invalid LED mode %d", s.LEDMode)
	}

	return opts, nil
}
