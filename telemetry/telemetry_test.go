package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterRecords(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Sample(1010.5, 980.25, 120)
	w.Motion(0.012, -0.98, 0.1, 0.9882)
	w.Vitals(72.4, 97.8)
	w.Sample(1011, 981, 121)

	want := "C:1,R:1010.5,IR:980.2,G:120.0\n" +
		"X:0.012,Y:-0.980,Z:0.100,M:0.988\n" +
		"HR:72.4,SPO2:97.8\n" +
		"C:2,R:1011.0,IR:981.0,G:121.0\n"
	assert.Equal(t, want, buf.String())
	assert.EqualValues(t, 2, w.Count())
	require.NoError(t, w.Err())
}

type failWriter struct {
	fails int
	n     int
}

func (f *failWriter) Write(p []byte) (int, error) {
	f.n++
	if f.n <= f.fails {
		return 0, errors.New("sink gone")
	}
	return len(p), nil
}

func TestWriterKeepsFirstError(t *testing.T) {
	w := NewWriter(&failWriter{fails: 1})

	w.Sample(1, 2, 3)
	first := w.Err()
	require.Error(t, first)

	// Later records still go through and the error sticks.
	w.Sample(4, 5, 6)
	assert.Equal(t, first, w.Err())
	assert.EqualValues(t, 2, w.Count())
}

func TestWriterConcurrent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				w.Sample(1, 2, 3)
				w.Motion(0, 0, 1, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 200, w.Count())
	// Every record lands on its own line.
	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	assert.Equal(t, 400, lines)
}
