package max30101

import (
	"fmt"
	"time"
)

// rawMask keeps the 18 significant bits of an assembled channel value.
const rawMask = 0x3FFFF

// ClearFIFO zeroes the hardware read, write and overflow pointers.
func (d *Device) ClearFIFO() error {
	for _, reg := range []byte{FIFOWrPtr, OvfCount, FIFORdPtr} {
		if err := d.Write(reg, 0); err != nil {
			return fmt.Errorf("max30101: could not clear FIFO: %w", err)
		}
	}
	return nil
}

// WritePointer reads the hardware FIFO write pointer (modulo 32).
func (d *Device) WritePointer() (byte, error) {
	return d.Read(FIFOWrPtr)
}

// ReadPointer reads the hardware FIFO read pointer (modulo 32).
func (d *Device) ReadPointer() (byte, error) {
	return d.Read(FIFORdPtr)
}

// Check polls the hardware FIFO pointers and drains any pending samples
// into the ring. Bytes are fetched in bursts sized to whole samples so a
// sample never splits across transactions. It returns the number of
// samples decoded; a burst failure aborts the pass and surfaces the
// error with whatever was decoded before it.
func (d *Device) Check() (int, error) {
	rd, err := d.ReadPointer()
	if err != nil {
		return 0, err
	}
	wr, err := d.WritePointer()
	if err != nil {
		return 0, err
	}

	if rd == wr {
		return 0, nil
	}

	pending := (int(wr) + ringSize - int(rd)) % ringSize
	sampleBytes := d.activeLEDs * 3
	left := pending * sampleBytes

	decoded := 0
	for left > 0 {
		toGet := left
		if toGet > d.burst {
			toGet = chunkSize(d.burst, sampleBytes)
		}

		buf, err := d.ReadBurst(FIFOData, toGet)
		if err != nil {
			return decoded, fmt.Errorf("max30101: FIFO drain aborted: %w", err)
		}

		for i := 0; i+sampleBytes <= len(buf); i += sampleBytes {
			d.ring.Push(decodeSample(buf[i:i+sampleBytes], d.activeLEDs))
			decoded++
		}
		left -= toGet
	}

	return decoded, nil
}

// chunkSize returns the largest whole-sample byte count that fits the
// burst capacity.
func chunkSize(capacity, sampleBytes int) int {
	return capacity - capacity%sampleBytes
}

// decodeSample assembles one sample from its wire form: one big-endian
// 3-byte group per active channel, in red, IR, green order, each masked
// to 18 bits.
func decodeSample(b []byte, channels int) Sample {
	s := Sample{Red: raw18(b[0:3])}
	if channels > 1 {
		s.IR = raw18(b[3:6])
	}
	if channels > 2 {
		s.Green = raw18(b[6:9])
	}
	return s
}

func raw18(b []byte) uint32 {
	return (uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])) & rawMask
}

// SafeCheck polls for new data until some arrives or maxWait elapses.
// It reports whether new samples were decoded.
func (d *Device) SafeCheck(maxWait time.Duration) (bool, error) {
	deadline := time.Now().Add(maxWait)
	for {
		n, err := d.Check()
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, nil
		}
		time.Sleep(time.Millisecond)
	}
}

// Available returns how many decoded samples wait in the ring.
func (d *Device) Available() int {
	return d.ring.Available()
}

// Sample returns the sample at the tail of the ring. Valid only when
// Available returns more than zero.
func (d *Device) Sample() Sample {
	return d.ring.Peek()
}

// NextSample consumes the sample at the tail of the ring.
func (d *Device) NextSample() {
	d.ring.Advance()
}
