package exam

import (
	"sync"
	"time"
)

// Countdown drives a session's clock at a one-second cadence, independent of
// any client polling rate. It reconciles against wall-clock time on every
// wake: if the process was descheduled (or the host throttled the timer) for
// several seconds, the next tick accounts for all of them at once, so the
// exam can never silently run past its allotted time.
//
// Exactly one of two things ends the ticking: Stop (manual submit or
// abandonment) or the session's clock reaching zero, in which case the
// expiry callback fires once with the final snapshot.
type Countdown struct {
	sess     *Session
	onExpire func(*Snapshot)

	// OnTick, when set before Start, is invoked with the remaining seconds
	// after every accounted tick. Used by the WebSocket stream.
	OnTick func(remaining int)

	interval time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewCountdown creates a stopped countdown for the session. onExpire runs on
// the countdown's own goroutine when time runs out; it may be nil.
func NewCountdown(sess *Session, onExpire func(*Snapshot)) *Countdown {
	return &Countdown{
		sess:     sess,
		onExpire: onExpire,
		interval: time.Second,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticking goroutine. Call at most once.
func (c *Countdown) Start() {
	go c.run()
}

// Stop halts ticking. Idempotent and safe to call after expiry; a stopped
// countdown never ticks the session again.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Wait blocks until the ticking goroutine has exited.
func (c *Countdown) Wait() {
	<-c.done
}

func (c *Countdown) run() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// last marks the point in wall-clock time already charged to the
	// session. Advanced by whole seconds only, so fractional remainders
	// carry over to the next wake instead of being lost.
	last := c.now()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if c.sess.Status() != StatusInProgress {
				// Manual submit won the race; nothing left to drive.
				return
			}

			now := c.now()
			elapsed := int(now.Sub(last) / time.Second)
			if elapsed <= 0 {
				continue
			}
			last = last.Add(time.Duration(elapsed) * time.Second)

			remaining, snap := c.sess.Tick(elapsed)
			if snap != nil {
				c.Stop()
				if c.onExpire != nil {
					c.onExpire(snap)
				}
				return
			}
			if c.OnTick != nil {
				c.OnTick(remaining)
			}
		}
	}
}
