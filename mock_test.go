package ppg

import (
	"errors"
	"sync"

	"github.com/pulseloop/ppg/max30101"
)

// plantConn emulates a MAX30101 whose raw readings respond to the LED
// drive levels, behind the max30101.Conn interface. One new sample is
// ready on every poll.
type plantConn struct {
	mu sync.Mutex

	regs map[byte]byte

	// red and ir map the current drive level to a raw reading. A nil
	// plant reads zero.
	red   func(level uint8) uint32
	ir    func(level uint8) uint32
	green uint32

	channels int
}

func newPlant(channels int) *plantConn {
	return &plantConn{
		regs: map[byte]byte{
			max30101.RegPartID: max30101.PartID,
			max30101.RegRevID:  0x02,
		},
		channels: channels,
	}
}

func (p *plantConn) Tx(w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(w) != 1 {
		return errors.New("plant: unexpected transaction")
	}
	reg := w[0]

	if reg == max30101.FIFOData {
		p.fill(r)
		// The hardware read pointer advances as the FIFO drains.
		sampleBytes := p.channels * 3
		p.regs[max30101.FIFORdPtr] = byte((int(p.regs[max30101.FIFORdPtr]) + len(r)/sampleBytes) % 32)
		return nil
	}

	if reg == max30101.FIFOWrPtr {
		// One fresh sample is always pending.
		r[0] = byte((int(p.regs[max30101.FIFORdPtr]) + 1) % 32)
		return nil
	}

	r[0] = p.regs[reg]
	return nil
}

func (p *plantConn) fill(r []byte) {
	var red, ir uint32
	if p.red != nil {
		red = p.red(p.regs[max30101.Led1PA])
	}
	if p.ir != nil {
		ir = p.ir(p.regs[max30101.Led2PA])
	}

	vals := []uint32{red, ir, p.green}[:p.channels]
	i := 0
	for i+3*p.channels <= len(r) {
		for _, v := range vals {
			r[i] = byte(v >> 16)
			r[i+1] = byte(v >> 8)
			r[i+2] = byte(v)
			i += 3
		}
	}
}

func (p *plantConn) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(b) != 2 {
		return 0, errors.New("plant: unexpected write")
	}
	reg, val := b[0], b[1]
	if reg == max30101.ModeCfg {
		val &^= 0x40 // reset completes instantly
	}
	p.regs[reg] = val
	return 2, nil
}
