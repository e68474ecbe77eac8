// Package lis2dw12 is a minimal driver for the LIS2DW12 3-axis
// accelerometer, covering identity check, high-performance mode
// configuration and burst acceleration reads.
package lis2dw12

import (
	"errors"
	"fmt"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

// ErrNotDevice is returned when the WHO_AM_I register does not match
// the LIS2DW12 signature (0x44).
var ErrNotDevice = errors.New("lis2dw12: WHO_AM_I does not match (0x44)")

// Register map.
const (
	RegWhoAmI byte = 0x0F
	RegCtrl1  byte = 0x20
	RegCtrl6  byte = 0x25
	RegOutXL  byte = 0x28

	// Addr is the default I²C address with SA0 high.
	Addr uint16 = 0x19

	// WhoAmI is the fixed identity of the part.
	WhoAmI byte = 0x44

	// ctrl1HighPerf100Hz selects 100 Hz output in high-performance mode
	// (ODR = 0101, MODE = 01).
	ctrl1HighPerf100Hz byte = 0x54
)

// scale converts a 14-bit left-justified reading at ±2 g full scale to
// g (0.244 mg/digit).
const scale = 0.000244

// Conn is the register transport of the device. *i2c.Dev satisfies it;
// tests inject a simulated register file.
type Conn interface {
	Tx(w, r []byte) error
	Write(b []byte) (n int, err error)
}

// Device drives one LIS2DW12 on an addressed bus.
type Device struct {
	conn Conn
	bus  i2c.BusCloser
}

// New opens the I²C bus, verifies the part identity and configures
// continuous 100 Hz sampling. An empty busName selects the first
// available bus; a zero addr selects the default (0x19).
func New(busName string, addr uint16) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("lis2dw12: could not initialize host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("lis2dw12: could not open I2C bus: %w", err)
	}

	if addr == 0 {
		addr = Addr
	}

	d, err := NewConn(&i2c.Dev{Addr: addr, Bus: bus})
	if err != nil {
		bus.Close()
		return nil, err
	}
	d.bus = bus

	return d, nil
}

// NewConn binds a device over an already established register
// transport, verifies the identity and starts continuous sampling.
func NewConn(c Conn) (*Device, error) {
	d := &Device{conn: c}

	id, err := d.read(RegWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("lis2dw12: could not get identity: %w", err)
	}
	if id != WhoAmI {
		return nil, ErrNotDevice
	}

	if err := d.write(RegCtrl1, ctrl1HighPerf100Hz); err != nil {
		return nil, fmt.Errorf("lis2dw12: could not start sampling: %w", err)
	}

	return d, nil
}

// Read returns the latest acceleration on the three axes, in g.
func (d *Device) Read() (x, y, z float32, err error) {
	// The output registers auto-increment, so all six bytes come in one
	// transaction.
	b := make([]byte, 6)
	if err := d.conn.Tx([]byte{RegOutXL}, b); err != nil {
		return 0, 0, 0, fmt.Errorf("lis2dw12: could not read acceleration: %w", err)
	}

	x = convert(b[0], b[1])
	y = convert(b[2], b[3])
	z = convert(b[4], b[5])

	return x, y, z, nil
}

// convert assembles a little-endian left-justified 14-bit sample.
func convert(lo, hi byte) float32 {
	raw := int16(uint16(hi)<<8 | uint16(lo))
	return float32(raw>>2) * scale
}

// Close releases the bus.
func (d *Device) Close() {
	if d.bus != nil {
		d.bus.Close()
	}
}

func (d *Device) read(reg byte) (byte, error) {
	b := make([]byte, 1)
	if err := d.conn.Tx([]byte{reg}, b); err != nil {
		return 0, fmt.Errorf("could not read register %#x: %w", reg, err)
	}

	return b[0], nil
}

func (d *Device) write(reg, data byte) error {
	n, err := d.conn.Write([]byte{reg, data})
	if err != nil {
		return fmt.Errorf("could not write register %#x: %w", reg, err)
	}
	n-- // remove register write
	if n != 1 {
		return fmt.Errorf("write %#x: wrong number of bytes written: want %d, got %d", reg, 1, n)
	}

	return nil
}
