package ppg

import (
	"context"
	"log"
	"runtime"
	"time"

	"github.com/chewxy/math32"

	"github.com/pulseloop/ppg/max30101"
)

const (
	// motionWait bounds how stale a motion reading can be relative to
	// the optical sample it is associated with.
	motionWait = 10 * time.Millisecond

	// idleWait paces the optical poll when the FIFO is empty.
	idleWait = time.Millisecond
)

// Scheduler runs the two sampling loops: the optical loop drains the
// sensor FIFO, filters each channel and reports it; the motion loop
// waits on the wake signal and reads the accelerometer so each motion
// report pairs with the most recently processed optical sample.
//
// The loops share nothing but the wake signal. It is binary: wakes that
// arrive while the motion loop is busy collapse into one.
type Scheduler struct {
	sensor *max30101.Device
	motion MotionSource
	report Reporter

	// Vitals optionally derives heart-rate and SpO2 estimates from the
	// filtered samples.
	Vitals *Vitals

	wake    chan struct{}
	filters [3]*Biquad

	samples uint32
	started time.Time
}

// NewScheduler wires a scheduler. The motion source may be nil, in
// which case only the optical loop runs.
func NewScheduler(sensor *max30101.Device, motion MotionSource, report Reporter) *Scheduler {
	s := &Scheduler{
		sensor: sensor,
		motion: motion,
		report: report,
		wake:   make(chan struct{}, 1),
	}
	for i := range s.filters {
		s.filters[i] = NewLowPass()
	}
	return s
}

// Run executes both loops until the context is cancelled. For the
// process-lifetime behavior of the device, pass context.Background().
func (s *Scheduler) Run(ctx context.Context) error {
	s.started = time.Now()

	done := make(chan struct{})
	if s.motion != nil {
		go func() {
			defer close(done)
			s.motionLoop(ctx)
		}()
	} else {
		close(done)
	}

	s.opticalLoop(ctx)
	<-done

	return ctx.Err()
}

func (s *Scheduler) opticalLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := s.sensor.Check()
		if err != nil {
			log.Printf("ppg: optical poll: %v", err)
			time.Sleep(idleWait)
			continue
		}

		for s.sensor.Available() > 0 {
			s.processSample(s.sensor.Sample())
			s.sensor.NextSample()
			s.signal()
			runtime.Gosched()
		}

		if n == 0 {
			time.Sleep(idleWait)
		}
	}
}

func (s *Scheduler) processSample(raw max30101.Sample) {
	s.samples++

	red := s.filters[0].Filter(float32(raw.Red))
	ir := s.filters[1].Filter(float32(raw.IR))
	green := s.filters[2].Filter(float32(raw.Green))

	s.report.Sample(red, ir, green)

	if s.Vitals != nil && s.Vitals.Update(red, ir) {
		s.report.Vitals(s.Vitals.HeartRate(), s.Vitals.SpO2())
	}
}

// signal sets the wake signal without blocking; a pending wake absorbs
// further sets.
func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) motionLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-s.wake:
			x, y, z, err := s.motion.Read()
			if err != nil {
				log.Printf("ppg: motion read: %v", err)
				continue
			}
			s.report.Motion(x, y, z, math32.Sqrt(x*x+y*y+z*z))

		case <-time.After(motionWait):
			// Stale wake window expired; poll again.
		}
	}
}

// Samples returns the number of optical samples processed since Run
// started.
func (s *Scheduler) Samples() int {
	return int(s.samples)
}

// Rate returns the achieved optical sample rate in Hz since Run
// started.
func (s *Scheduler) Rate() float64 {
	elapsed := time.Since(s.started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.samples) / elapsed
}
