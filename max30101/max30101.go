// Package max30101 is a register-level driver for the MAX30101
// multi-wavelength pulse oximetry sensor. It owns the device
// configuration, drains the on-chip FIFO into a fixed ring of decoded
// samples, and exposes the die-temperature and power controls.
package max30101

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

var (
	// ErrNotDevice is returned when the part ID register does not match
	// a MAX30101 signature (0x15).
	ErrNotDevice = errors.New("max30101: part ID does not match (0x15)")
	// ErrBurstTooLarge is returned when a burst read is requested beyond
	// the fixed transfer buffer capacity.
	ErrBurstTooLarge = errors.New("max30101: burst read exceeds buffer capacity")
)

// burstCap is the fixed capacity of a single burst transaction. A full
// FIFO in three-channel mode is 32*3*3 = 288 bytes, so one drain fits in
// one transaction.
const burstCap = 288

// statusTimeout bounds the polls for the soft-reset and temperature
// ready flags. After it elapses the operation proceeds as if complete.
const statusTimeout = 100 * time.Millisecond

// Conn is the register transport of the device. *i2c.Dev satisfies it;
// tests inject a simulated register file.
type Conn interface {
	Tx(w, r []byte) error
	Write(b []byte) (n int, err error)
}

// Device drives one MAX30101 on an addressed bus.
type Device struct {
	conn Conn
	bus  i2c.BusCloser

	activeLEDs int
	burst      int
	rev        byte

	ring Ring
}

// New opens the I²C bus, verifies the part identity and applies the
// given options.
//
// Argument "busName" selects the exact bus to use ("/dev/i2c-1", "I2C1",
// "1"); an empty string selects the first available bus. Argument "addr"
// overrides the default address (0x57) when non-zero.
func New(busName string, addr uint16, opts ...Option) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("max30101: could not initialize host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("max30101: could not open I2C bus: %w", err)
	}

	if addr == 0 {
		addr = Addr
	}

	d, err := NewConn(&i2c.Dev{Addr: addr, Bus: bus}, opts...)
	if err != nil {
		bus.Close()
		return nil, err
	}
	d.bus = bus

	return d, nil
}

// NewConn binds a device over an already established register transport.
// It verifies the part identity, caches the revision ID, soft-resets the
// device and applies the given options. Identity failure is permanent:
// there is no retry.
func NewConn(c Conn, opts ...Option) (*Device, error) {
	d := &Device{
		conn:       c,
		activeLEDs: 3,
		burst:      burstCap,
	}

	part, err := d.Read(RegPartID)
	if err != nil {
		return nil, fmt.Errorf("max30101: could not get part ID: %w", err)
	}
	if part != PartID {
		return nil, ErrNotDevice
	}

	if d.rev, err = d.Read(RegRevID); err != nil {
		return nil, fmt.Errorf("max30101: could not get revision ID: %w", err)
	}

	if err := d.SoftReset(); err != nil {
		return nil, fmt.Errorf("max30101: could not reset device: %w", err)
	}

	if _, err := d.Options(opts...); err != nil {
		return nil, fmt.Errorf("max30101: could not initialize device: %w", err)
	}

	return d, nil
}

// Close shuts the device down and releases the bus.
func (d *Device) Close() {
	d.Shutdown()
	if d.bus != nil {
		d.bus.Close()
	}
}

// RevID returns the revision ID cached at init.
func (d *Device) RevID() byte {
	return d.rev
}

// ActiveChannels returns the number of LED channels decoded per sample,
// as set by the Mode option.
func (d *Device) ActiveChannels() int {
	return d.activeLEDs
}

// Read reads a single byte from a register.
func (d *Device) Read(reg byte) (byte, error) {
	b := make([]byte, 1)
	if err := d.conn.Tx([]byte{reg}, b); err != nil {
		return 0, fmt.Errorf("max30101: could not read register %#x: %w", reg, err)
	}

	return b[0], nil
}

// ReadBurst reads n bytes from one register address in a single bus
// transaction. The hardware FIFO pointer advances once per byte, so the
// register address is issued only once. A failed transaction consumes
// nothing.
func (d *Device) ReadBurst(reg byte, n int) ([]byte, error) {
	if n > d.burst {
		return nil, ErrBurstTooLarge
	}
	b := make([]byte, n)
	if err := d.conn.Tx([]byte{reg}, b); err != nil {
		return nil, fmt.Errorf("max30101: could not burst read %d bytes: %w", n, err)
	}

	return b, nil
}

// Write writes a byte to a register.
func (d *Device) Write(reg, data byte) error {
	n, err := d.conn.Write([]byte{reg, data})
	if err != nil {
		return fmt.Errorf("max30101: could not write register %#x: %w", reg, err)
	}
	n-- // remove register write
	if n != 1 {
		return fmt.Errorf("max30101: write %#x: wrong number of bytes written: want %d, got %d", reg, 1, n)
	}

	return nil
}

// config does a masked read-modify-write: the register is read, the bits
// selected by mask are kept, and flag is OR'd in. It returns the bits
// that were cleared.
func (d *Device) config(reg, mask, flag byte) (byte, error) {
	cfg, err := d.Read(reg)
	if err != nil {
		return 0, fmt.Errorf("could not get %#x from %#x: %w", mask, reg, err)
	}
	old := cfg &^ mask
	cfg &= mask
	cfg |= flag
	if err := d.Write(reg, cfg); err != nil {
		return 0, fmt.Errorf("could not set %#x in %#x: %w", flag, reg, err)
	}

	return old, nil
}

// waitClear polls reg with ~1 ms spacing until flag reads zero or the
// timeout elapses. A timeout is not an error: the caller proceeds as if
// the operation completed.
func (d *Device) waitClear(reg, flag byte, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		state, err := d.Read(reg)
		if err != nil {
			return err
		}
		if state&flag == 0 {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// waitSet is the counterpart of waitClear for flags that latch high.
func (d *Device) waitSet(reg, flag byte, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		state, err := d.Read(reg)
		if err != nil {
			return err
		}
		if state&flag != 0 {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// SoftReset resets all configuration, threshold, and data registers to
// their power-on state, then waits for the reset bit to clear.
func (d *Device) SoftReset() error {
	if _, err := d.config(ModeCfg, resetMask, resetBit); err != nil {
		return fmt.Errorf("max30101: could not reset: %w", err)
	}
	if err := d.waitClear(ModeCfg, resetBit, statusTimeout); err != nil {
		return fmt.Errorf("max30101: could not reset: %w", err)
	}

	return nil
}

// Shutdown puts the device into power-save mode. It keeps responding on
// the bus but takes no new readings.
func (d *Device) Shutdown() error {
	_, err := d.config(ModeCfg, shutdownMask, shutdownBit)

	return err
}

// Startup wakes the device from power-save mode.
func (d *Device) Startup() error {
	_, err := d.config(ModeCfg, shutdownMask, 0)

	return err
}

// Temperature triggers a one-shot die-temperature conversion and returns
// the result in °C with 1/16 °C resolution.
func (d *Device) Temperature() (float64, error) {
	if err := d.Write(TempCfg, tempEna); err != nil {
		return 0, fmt.Errorf("max30101: could not enable temperature: %w", err)
	}
	if err := d.waitSet(IntStat2, DieTempReady, statusTimeout); err != nil {
		return 0, fmt.Errorf("max30101: could not read temperature state: %w", err)
	}

	i, err := d.Read(TempInt)
	if err != nil {
		return 0, fmt.Errorf("max30101: could not read integer part of temperature: %w", err)
	}

	// Reading the fraction clears the DIE_TEMP_RDY interrupt.
	f, err := d.Read(TempFrac)
	if err != nil {
		return 0, fmt.Errorf("max30101: could not read fractional part of temperature: %w", err)
	}

	return float64(int8(i)) + float64(f)*0.0625, nil
}

// TemperatureF returns the die temperature in °F.
func (d *Device) TemperatureF() (float64, error) {
	t, err := d.Temperature()
	if err != nil {
		return 0, err
	}
	return t*1.8 + 32, nil
}
