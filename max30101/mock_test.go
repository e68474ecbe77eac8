package max30101

import (
	"errors"
	"sync"
)

var errSimBus = errors.New("simulated bus failure")

// simConn emulates the register file and FIFO of a MAX30101 behind the
// Conn interface.
type simConn struct {
	mu sync.Mutex

	regs map[byte]byte
	fifo []byte

	writes     []byte // register addresses, in write order
	burstSizes []int
	failBurst  bool
}

func newSim() *simConn {
	return &simConn{
		regs: map[byte]byte{
			RegPartID: PartID,
			RegRevID:  0x03,
		},
	}
}

func (s *simConn) Tx(w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(w) != 1 {
		return errSimBus
	}
	reg := w[0]

	if reg == FIFOData {
		if s.failBurst {
			return errSimBus
		}
		s.burstSizes = append(s.burstSizes, len(r))
		n := copy(r, s.fifo)
		s.fifo = s.fifo[n:]
		return nil
	}

	if len(r) != 1 {
		return errSimBus
	}
	r[0] = s.regs[reg]

	// Reading the temperature fraction clears the ready interrupt.
	if reg == TempFrac {
		s.regs[IntStat2] &^= DieTempReady
	}
	return nil
}

func (s *simConn) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(b) != 2 {
		return 0, errSimBus
	}
	reg, val := b[0], b[1]

	switch reg {
	case ModeCfg:
		// Reset completes instantly.
		val &^= resetBit
	case TempCfg:
		if val&tempEna != 0 {
			s.regs[IntStat2] |= DieTempReady
		}
	}

	s.regs[reg] = val
	s.writes = append(s.writes, reg)
	return 2, nil
}

// queueSamples appends n identical raw samples for the given channel
// count and moves the hardware write pointer accordingly.
func (s *simConn) queueSamples(n, channels int, red, ir, green uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < n; i++ {
		s.fifo = append(s.fifo, be24(red)...)
		if channels > 1 {
			s.fifo = append(s.fifo, be24(ir)...)
		}
		if channels > 2 {
			s.fifo = append(s.fifo, be24(green)...)
		}
	}
	s.regs[FIFOWrPtr] = byte((int(s.regs[FIFOWrPtr]) + n) % 32)
}

func be24(v uint32) []byte {
	return []byte{byte(v >> 16), byte(v >> 8), byte(v)}
}
