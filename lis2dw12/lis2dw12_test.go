package lis2dw12

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type simConn struct {
	regs   map[byte]byte
	accel  [6]byte
	writes []byte
}

func newSimConn() *simConn {
	return &simConn{
		regs: map[byte]byte{RegWhoAmI: WhoAmI},
	}
}

func (s *simConn) Tx(w, r []byte) error {
	if len(w) != 1 {
		return errors.New("sim: unexpected transaction")
	}
	if w[0] == RegOutXL {
		copy(r, s.accel[:])
		return nil
	}
	r[0] = s.regs[w[0]]
	return nil
}

func (s *simConn) Write(b []byte) (int, error) {
	if len(b) != 2 {
		return 0, errors.New("sim: unexpected write")
	}
	s.regs[b[0]] = b[1]
	s.writes = append(s.writes, b...)
	return 2, nil
}

func TestNewConn(t *testing.T) {
	sim := newSimConn()
	_, err := NewConn(sim)
	require.NoError(t, err)

	// 100 Hz high-performance sampling is on.
	assert.Equal(t, byte(0x54), sim.regs[RegCtrl1])
}

func TestNewConnWrongIdentity(t *testing.T) {
	sim := newSimConn()
	sim.regs[RegWhoAmI] = 0x33

	_, err := NewConn(sim)
	assert.ErrorIs(t, err, ErrNotDevice)
}

func TestRead(t *testing.T) {
	sim := newSimConn()
	d, err := NewConn(sim)
	require.NoError(t, err)

	// +1 g on Z: 4096 digits at 0.244 mg/digit, left-justified by two.
	sim.accel = [6]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x40}

	x, y, z, err := d.Read()
	require.NoError(t, err)
	assert.Equal(t, float32(0), x)
	assert.Equal(t, float32(0), y)
	assert.InDelta(t, 0.9994, z, 1e-4)
}

func TestReadNegative(t *testing.T) {
	sim := newSimConn()
	d, err := NewConn(sim)
	require.NoError(t, err)

	// -0.5 g on X: -2048 digits, left-justified.
	sim.accel = [6]byte{0x00, 0xE0, 0x00, 0x00, 0x00, 0x00}

	x, _, _, err := d.Read()
	require.NoError(t, err)
	assert.InDelta(t, -0.4997, x, 1e-4)
}

func TestConvert(t *testing.T) {
	assert.Equal(t, float32(0), convert(0x00, 0x00))
	assert.InDelta(t, 0.000244, convert(0x04, 0x00), 1e-7)
	assert.InDelta(t, -0.000244, convert(0xFC, 0xFF), 1e-7)
}
