// Package telemetry streams sensor readings as newline-delimited text
// records, either to an arbitrary io.Writer or to a serial port.
package telemetry

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// Writer formats sample, motion and vitals records onto an io.Writer.
// It is safe for concurrent use; optical and motion records may arrive
// from different goroutines.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	count uint64
	err   error
}

// NewWriter returns a telemetry writer streaming to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Sample emits one filtered optical record, tagged with a running
// sample counter.
func (t *Writer) Sample(red, ir, green float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.emit("C:%d,R:%.1f,IR:%.1f,G:%.1f\n", t.count, red, ir, green)
}

// Motion emits one accelerometer record, in g.
func (t *Writer) Motion(x, y, z, mag float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emit("X:%.3f,Y:%.3f,Z:%.3f,M:%.3f\n", x, y, z, mag)
}

// Vitals emits a heart-rate and SpO2 record.
func (t *Writer) Vitals(bpm, spo2 float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emit("HR:%.1f,SPO2:%.1f\n", bpm, spo2)
}

func (t *Writer) emit(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(t.w, format, args...); err != nil && t.err == nil {
		t.err = err
	}
}

// Count returns the number of optical records emitted so far.
func (t *Writer) Count() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Err returns the first write error encountered, if any. The stream
// keeps trying after an error; a transient sink hiccup should not stop
// sampling.
func (t *Writer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Serial is a telemetry writer backed by a serial port.
type Serial struct {
	*Writer
	port serial.Port
}

// NewSerial opens the named serial port at the given baud rate and
// returns a telemetry writer streaming to it.
func NewSerial(name string, baud int) (*Serial, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("telemetry: could not open %s: %w", name, err)
	}

	return &Serial{
		Writer: NewWriter(port),
		port:   port,
	}, nil
}

// Close closes the underlying serial port.
func (s *Serial) Close() error {
	return s.port.Close()
}
