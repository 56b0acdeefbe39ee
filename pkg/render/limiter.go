// pkg/render/limiter.go
package render

import "time"

// FrameLimiter caps a loop at a frame rate. It only sleeps; a frame that
// ran long is not made up by shortening the next one.
type FrameLimiter struct {
	last  time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

// NewFrameLimiter creates a limiter using the wall clock
func NewFrameLimiter() *FrameLimiter {
	return &FrameLimiter{now: time.Now, sleep: time.Sleep}
}

// Wait blocks until 1/fps has passed since the previous Wait returned.
// A non-positive fps returns immediately.
func (l *FrameLimiter) Wait(fps int) {
	if fps <= 0 {
		l.last = l.now()
		return
	}
	frame := time.Second / time.Duration(fps)
	if !l.last.IsZero() {
		if remaining := frame - l.now().Sub(l.last); remaining > 0 {
			l.sleep(remaining)
		}
	}
	l.last = l.now()
}
