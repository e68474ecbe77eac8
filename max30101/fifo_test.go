package max30101

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, channels int) (*Device, *simConn) {
	t.Helper()

	sim := newSim()
	d, err := NewConn(sim)
	require.NoError(t, err)

	mode := ModeMultiLed
	switch channels {
	case 1:
		mode = ModeRedOnly
	case 2:
		mode = ModeRedIR
	}
	_, err = d.Options(Mode(mode))
	require.NoError(t, err)

	return d, sim
}

func TestCheckNoData(t *testing.T) {
	d, _ := newTestDevice(t, 2)

	n, err := d.Check()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, d.Available())
}

func TestCheckDecode(t *testing.T) {
	d, sim := newTestDevice(t, 2)

	sim.fifo = []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	sim.regs[FIFOWrPtr] = 1

	n, err := d.Check()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 1, d.Available())

	got := d.Sample()
	assert.Equal(t, uint32(0x010203)&rawMask, got.Red)
	assert.Equal(t, uint32(0x040506)&rawMask, got.IR)
	assert.Equal(t, uint32(0), got.Green)
}

func TestCheckMasksTo18Bits(t *testing.T) {
	d, sim := newTestDevice(t, 1)

	sim.queueSamples(1, 1, 0xFFFFFF, 0, 0)

	n, err := d.Check()
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, uint32(rawMask), d.Sample().Red)
}

func TestCheckPointerDelta(t *testing.T) {
	d, sim := newTestDevice(t, 2)

	sim.regs[FIFORdPtr] = 5
	sim.regs[FIFOWrPtr] = 9
	sim.fifo = make([]byte, 4*2*3)

	n, err := d.Check()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.Len(t, sim.burstSizes, 1)
	assert.Equal(t, 24, sim.burstSizes[0])
}

func TestCheckPointerWraparound(t *testing.T) {
	d, sim := newTestDevice(t, 2)

	sim.regs[FIFORdPtr] = 30
	sim.regs[FIFOWrPtr] = 2
	sim.fifo = make([]byte, 4*2*3)

	n, err := d.Check()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestChunkSize(t *testing.T) {
	assert.Equal(t, 30, chunkSize(32, 6))
	assert.Equal(t, 27, chunkSize(32, 9))
	assert.Equal(t, 288, chunkSize(288, 6))
	assert.Equal(t, 279, chunkSize(288, 9))
}

func TestCheckChunksNeverSplitSamples(t *testing.T) {
	d, sim := newTestDevice(t, 2)
	d.burst = 32

	sim.queueSamples(6, 2, 1, 2, 0) // 36 bytes, above the burst capacity

	n, err := d.Check()
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	require.Equal(t, []int{30, 6}, sim.burstSizes)
	for i := 0; i < 6; i++ {
		s := d.Sample()
		assert.Equal(t, uint32(1), s.Red)
		assert.Equal(t, uint32(2), s.IR)
		d.NextSample()
	}
}

func TestCheckBurstFailureAborts(t *testing.T) {
	d, sim := newTestDevice(t, 2)

	sim.queueSamples(4, 2, 1, 2, 0)
	sim.failBurst = true

	n, err := d.Check()
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, d.Available())
}

func TestBurstCapacityBound(t *testing.T) {
	d, _ := newTestDevice(t, 2)

	_, err := d.ReadBurst(FIFOData, burstCap+1)
	assert.ErrorIs(t, err, ErrBurstTooLarge)
}

func TestSafeCheck(t *testing.T) {
	d, sim := newTestDevice(t, 2)

	ok, err := d.SafeCheck(5 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	sim.queueSamples(1, 2, 7, 8, 0)
	ok, err = d.SafeCheck(5 * time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
}
