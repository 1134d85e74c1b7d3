package player

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// Start begins or resumes output. It has no effect unless the engine is
// Prepared or Paused.
func (e *StreamEngine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.CanStart() {
		return
	}

	switch e.state {
	case Paused:
		speaker.Lock()
		e.ctrl.Paused = false
		speaker.Unlock()
		e.state = Started
	case Prepared:
		if err := initSpeaker(e.format.SampleRate); err != nil {
			go e.fail(e.run, &Error{Code: CodeIO, Op: "speaker", Err: err})
			return
		}
		e.ctrl = &beep.Ctrl{Streamer: e.chainLocked()}
		e.volume = &effects.Volume{
			Streamer: e.ctrl,
			Base:     2,
			Volume:   levelToVolume(e.level),
			Silent:   e.level <= 0,
		}
		speaker.Play(e.volume)
		e.state = Started
	}
}

// chainLocked wraps the current streamer for the speaker: resampled to the
// speaker rate, followed by the completion callback of the current run.
func (e *StreamEngine) chainLocked() beep.Streamer {
	var s beep.Streamer = e.streamer
	if e.format.SampleRate != speakerSampleRate {
		s = beep.Resample(4, e.format.SampleRate, speakerSampleRate, s)
	}
	run := e.run
	// The callback runs under the speaker lock; finish takes e.mu.
	return beep.Seq(s, beep.Callback(func() { go e.finish(run) }))
}

// Pause suspends output, keeping the decoder and buffer.
func (e *StreamEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.CanPause() {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	e.state = Paused
}

// Stop halts output and drops the decoder. The engine must be Reset
// before loading again.
func (e *StreamEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.HasOutput() {
		return
	}
	e.detachLocked()
	e.state = Stopped
}

// Reset returns the engine to Idle. Pending callbacks of the previous
// source are discarded.
func (e *StreamEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Released {
		return
	}
	e.detachLocked()
	e.run++
	e.state = Idle
}

// Release frees the engine. Every later call is a no-op.
func (e *StreamEngine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Released {
		return
	}
	e.detachLocked()
	e.run++
	e.state = Released
	close(e.done)
}

// detachLocked silences the speaker chain and tears down decoder, download
// and buffer.
func (e *StreamEngine) detachLocked() {
	if e.ctrl != nil {
		speaker.Lock()
		e.ctrl.Streamer = nil
		speaker.Unlock()
		e.ctrl = nil
	}
	e.volume = nil
	e.length = 0
	if e.pump != nil {
		e.pump.stop()
		e.pump = nil
	}
	e.streamer = nil
	if e.spool != nil {
		e.spool.abort()
		e.spool = nil
	}
	if e.body != nil {
		e.body.Close()
		e.body = nil
	}
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
	e.url = ""
}

// SeekTo moves playback to positionMillis. Non-blocking: only the most
// recent pending request is kept.
func (e *StreamEngine) SeekTo(positionMillis int64) {
	e.mu.Lock()
	ok := e.state.HasOutput()
	e.mu.Unlock()
	if !ok {
		return
	}

	select {
	case e.seekCh <- positionMillis:
	default:
		select {
		case <-e.seekCh:
		default:
		}
		select {
		case e.seekCh <- positionMillis:
		default:
		}
	}
}

// seekLoop processes seek requests sequentially until the engine is
// released.
func (e *StreamEngine) seekLoop() {
	for {
		select {
		case ms := <-e.seekCh:
			e.doSeek(ms)
		case <-e.done:
			return
		}
	}
}

// doSeek restarts decoding from the start of the buffered source and
// skips to the target. Seeking past the end completes the track.
func (e *StreamEngine) doSeek(ms int64) {
	e.mu.Lock()
	if !e.state.HasOutput() || e.spool == nil {
		e.mu.Unlock()
		return
	}
	run, kind, sp := e.run, e.kind, e.spool
	target := max(e.format.SampleRate.N(time.Duration(ms)*time.Millisecond), 0)
	e.mu.Unlock()

	counter := &countingReader{r: sp.reader()}
	dec, _, err := decode(kind, sp, counter)
	if err != nil {
		e.fail(run, &Error{Code: CodeDecode, Op: "seek", Err: err})
		return
	}
	skip := target
	if kind.needsWholeSource() {
		if err := dec.Seek(target); err != nil {
			dec.Close()
			e.fail(run, &Error{Code: CodeDecode, Op: "seek", Err: err})
			return
		}
		skip = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run != run || !e.state.HasOutput() {
		dec.Close()
		return
	}
	old := e.pump
	e.pump = startPump(e.ctx, dec, counter, skip)
	e.streamer = newPumpStreamer(e.pump, int64(target))
	if e.ctrl != nil {
		speaker.Lock()
		e.ctrl.Streamer = e.chainLocked()
		speaker.Unlock()
	}
	if old != nil {
		old.stop()
	}
	e.log.Debug().Int64("position_ms", ms).Msg("Seeked")
}

// IsPlaying reports whether output is running.
func (e *StreamEngine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == Started
}

// Position returns the playback position in milliseconds, 0 without a
// prepared source.
func (e *StreamEngine) Position() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0
	}
	return e.format.SampleRate.D(int(e.streamer.position.Load())).Milliseconds()
}

// Duration returns the track length in milliseconds: the decoder's own
// length when it knows it, otherwise an estimate from the decoded sample
// rate and the source size. It returns 0 when unknown.
func (e *StreamEngine) Duration() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pump == nil || e.spool == nil {
		return 0
	}
	if e.length > 0 {
		return e.format.SampleRate.D(e.length).Milliseconds()
	}
	size := e.spool.size()
	spb := e.pump.samplesPerByte()
	if size <= 0 || spb <= 0 {
		return 0
	}
	return e.format.SampleRate.D(int(float64(size) * spb)).Milliseconds()
}

// BufferedPercent returns the download progress of the loaded source, 0
// when nothing is loaded.
func (e *StreamEngine) BufferedPercent() int {
	e.mu.Lock()
	sp := e.spool
	e.mu.Unlock()
	if sp == nil {
		return 0
	}
	return sp.percent()
}
