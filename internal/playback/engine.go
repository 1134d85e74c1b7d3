package playback

import (
	"github.com/llehouerou/wavestream/internal/config"
	"github.com/llehouerou/wavestream/internal/player"
)

// engineListener forwards engine callbacks to the controller goroutine,
// tagged with the generation of the engine they came from.
type engineListener struct {
	c   *Controller
	gen uint64
}

func (l *engineListener) Prepared() {
	l.c.post(func() { l.c.onPrepared(l.gen) })
}

func (l *engineListener) BufferingProgress(percent int) {
	l.c.post(func() { l.c.onBuffering(l.gen, percent) })
}

func (l *engineListener) Completed() {
	l.c.post(func() { l.c.onCompleted(l.gen) })
}

func (l *engineListener) Failed(err error) {
	l.c.post(func() { l.c.onFailed(l.gen, err) })
}

func (c *Controller) onPrepared(gen uint64) {
	if !c.current(gen) || c.state != StateBuffering {
		return
	}
	c.h.engine.Start()
	c.setState(StatePlaying)
	// Progress reported while buffering was ignored; catch up now.
	c.applyBuffered(c.h.engine.BufferedPercent())
}

// onBuffering only counts progress while the duration is known. The
// buffered amount never moves backwards for a given engine.
func (c *Controller) onBuffering(gen uint64, percent int) {
	if !c.current(gen) || !c.state.IsActive() {
		return
	}
	c.applyBuffered(percent)
}

func (c *Controller) applyBuffered(percent int) {
	percent = min(max(percent, 0), 100)
	buffered := c.h.engine.Duration() * int64(percent) / 100
	if buffered <= c.buffered {
		return
	}
	c.buffered = buffered
	c.publish(EventBuffering, c.state)
}

func (c *Controller) onCompleted(gen uint64) {
	if !c.current(gen) {
		return
	}
	c.log.Debug().Str("policy", c.cfg.OnCompletion).Msg("Track completed")
	if c.cfg.OnCompletion == config.CompletionStop {
		c.stop()
		return
	}
	c.next()
}

// onFailed drains an engine fault into a stop, queued behind whatever is
// already in the mailbox.
func (c *Controller) onFailed(gen uint64, err error) {
	if !c.current(gen) {
		return
	}
	c.log.Error().Err(err).Int("code", player.ErrorCode(err)).Msg("Engine failed")
	c.setState(StateError)
	c.post(func() {
		if c.current(gen) {
			c.stop()
		}
	})
}
