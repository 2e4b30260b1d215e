package clock

import "time"

// Tick is what every animated component sees for one frame.
type Tick struct {
	Frame   int
	Elapsed float64 // seconds since scene start, strictly increasing
	Delta   float64 // seconds since the previous tick, unbounded
}

// Clock supplies frame ticks to the scene.
type Clock interface {
	Next() Tick
}

// FixedStep advances by exactly 1/fps per tick. Used for offline rendering where
// every frame must land on the video timeline.
type FixedStep struct {
	fps   int
	frame int
}

// NewFixedStep returns a clock whose first tick reports Elapsed = 0.
func NewFixedStep(fps int) *FixedStep {
	if fps <= 0 {
		fps = 30
	}
	return &FixedStep{fps: fps}
}

func (c *FixedStep) Next() Tick {
	t := Tick{
		Frame:   c.frame,
		Elapsed: float64(c.frame) / float64(c.fps),
	}
	if c.frame > 0 {
		t.Delta = 1 / float64(c.fps)
	}
	c.frame++
	return t
}

// At returns the tick for an arbitrary frame without advancing the clock.
func (c *FixedStep) At(frame int) Tick {
	t := Tick{Frame: frame, Elapsed: float64(frame) / float64(c.fps)}
	if frame > 0 {
		t.Delta = 1 / float64(c.fps)
	}
	return t
}

// Wall measures elapsed time from a time source. A stalled host produces a large
// Delta; a reading that does not move forward is nudged by one nanosecond.
type Wall struct {
	now   func() time.Time
	start time.Time
	last  time.Duration
	frame int
}

// NewWall starts the clock at the current reading of now. A nil now uses time.Now.
func NewWall(now func() time.Time) *Wall {
	if now == nil {
		now = time.Now
	}
	return &Wall{now: now, start: now(), last: -1}
}

func (c *Wall) Next() Tick {
	d := c.now().Sub(c.start)
	if d <= c.last {
		d = c.last + time.Nanosecond
	}
	t := Tick{Frame: c.frame, Elapsed: d.Seconds()}
	if c.frame > 0 {
		t.Delta = (d - c.last).Seconds()
	}
	c.last = d
	c.frame++
	return t
}
