package playback

import "github.com/llehouerou/wavestream/internal/focus"

// focusListener forwards focus changes to the controller goroutine.
type focusListener struct {
	c *Controller
}

func (l focusListener) FocusChanged(change focus.Change) {
	l.c.post(func() { l.c.onFocusChange(change) })
}

func (c *Controller) onFocusChange(change focus.Change) {
	// Changes queued before a stop abandoned focus are stale.
	if c.closing || !c.focusRequested {
		return
	}
	c.log.Debug().Stringer("change", change).Stringer("state", c.state).Msg("Focus changed")

	switch change {
	case focus.ChangeGain:
		if c.h == nil || c.state == StatePaused {
			c.play()
		}
		c.setVolume(1)
	case focus.ChangeLoss:
		c.stop()
	case focus.ChangeTransientLoss:
		c.pause()
	case focus.ChangeTransientLossCanDuck:
		// Keep playing, quieter. No transition.
		if c.h != nil && c.h.engine.IsPlaying() {
			c.setVolume(c.cfg.DuckVolume)
		}
	}
}
