package max30101

// ringSize mirrors the depth of the hardware FIFO: the on-chip read and
// write pointers both count modulo 32, and the decode step advances head
// in lockstep with them.
const ringSize = 32

// Sample holds one multi-channel reading. Each value carries at most 18
// significant bits; channels beyond the configured LED mode stay zero.
type Sample struct {
	Red   uint32
	IR    uint32
	Green uint32
}

// Ring is a fixed-capacity circular buffer of decoded samples. The
// producer (the FIFO decode in Check) advances head; the consumer
// advances tail. Overflow accounting is left to the hardware pointers,
// so the ring itself never distinguishes full from empty.
type Ring struct {
	buf  [ringSize]Sample
	head uint8
	tail uint8
}

// Available returns the number of samples that can be consumed.
func (r *Ring) Available() int {
	return int((r.head + ringSize - r.tail) % ringSize)
}

// Peek returns the sample at the tail. It is only meaningful when
// Available returns more than zero.
func (r *Ring) Peek() Sample {
	return r.buf[r.tail]
}

// Advance consumes the sample at the tail. It is a no-op when the ring
// is empty.
func (r *Ring) Advance() {
	if r.Available() == 0 {
		return
	}
	r.tail = (r.tail + 1) % ringSize
}

// Push stores a decoded sample at the head.
func (r *Ring) Push(s Sample) {
	r.buf[r.head] = s
	r.head = (r.head + 1) % ringSize
}
