package playback

import (
	"context"
	"time"
)

// startReporter spawns the position reporter. It publishes EventPlaying
// right away and then every tick interval until cancelled.
func (c *Controller) startReporter() {
	c.reporterRun++
	run := c.reporterRun
	ctx, cancel := context.WithCancel(c.ctx)
	c.stopReporter = cancel

	interval := c.cfg.TickInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			c.post(func() { c.onTick(run) })
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (c *Controller) cancelReporter() {
	if c.stopReporter != nil {
		c.stopReporter()
		c.stopReporter = nil
	}
}

func (c *Controller) onTick(run uint64) {
	if run != c.reporterRun || c.stopReporter == nil || c.state != StatePlaying {
		return
	}
	c.publish(EventPlaying, c.state)
}

// armWatchdog stops the session if buffering outlives the configured
// timeout. A zero timeout disables it.
func (c *Controller) armWatchdog() {
	d := c.cfg.BufferingTimeout()
	if d <= 0 || c.watchdog != nil {
		return
	}
	run := c.watchdogRun
	c.watchdog = time.AfterFunc(d, func() {
		c.post(func() { c.onWatchdog(run) })
	})
}

func (c *Controller) disarmWatchdog() {
	if c.watchdog == nil {
		return
	}
	c.watchdog.Stop()
	c.watchdog = nil
	c.watchdogRun++
}

func (c *Controller) onWatchdog(run uint64) {
	if run != c.watchdogRun || c.state != StateBuffering {
		return
	}
	c.rollback("buffering", ErrBufferingTimeout)
}
