package player

import (
	"context"
	"sync"
)

// Mock is a test double for Engine. It records every call and lets tests
// fire listener callbacks by hand.
type Mock struct {
	mu sync.Mutex

	listener Listener
	url      string
	loaded   bool
	playing  bool
	released bool
	volume   float64
	position int64
	duration int64
	buffered int

	loadErr     error
	prepareErr  error
	loadHook    func(ctx context.Context) error
	autoPrepare bool

	calls map[string]int
	seeks []int64
}

// NewMock creates a mock engine bound to l.
func NewMock(l Listener) *Mock {
	return &Mock{
		listener: l,
		volume:   1,
		calls:    make(map[string]int),
	}
}

func (m *Mock) record(name string) {
	m.calls[name]++
}

func (m *Mock) Load(ctx context.Context, url string) error {
	m.mu.Lock()
	m.record("load")
	hook := m.loadHook
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return ErrReleased
	}
	if m.loadErr != nil {
		return m.loadErr
	}
	m.url = url
	m.loaded = true
	return nil
}

func (m *Mock) PrepareAsync() error {
	m.mu.Lock()
	m.record("prepare")
	if m.released {
		m.mu.Unlock()
		return ErrReleased
	}
	if !m.loaded {
		m.mu.Unlock()
		return ErrNotLoaded
	}
	if m.prepareErr != nil {
		err := m.prepareErr
		m.mu.Unlock()
		return err
	}
	auto := m.autoPrepare
	l := m.listener
	m.mu.Unlock()

	if auto && l != nil {
		l.Prepared()
	}
	return nil
}

func (m *Mock) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("start")
	m.playing = true
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("pause")
	m.playing = false
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("stop")
	m.playing = false
}

func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("reset")
	m.playing = false
	m.loaded = false
	m.url = ""
	m.buffered = 0
}

func (m *Mock) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("release")
	m.playing = false
	m.released = true
}

func (m *Mock) SeekTo(positionMillis int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("seek")
	m.seeks = append(m.seeks, positionMillis)
	m.position = positionMillis
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("volume")
	m.volume = level
}

func (m *Mock) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Mock) Position() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) BufferedPercent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffered
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetPrepareError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prepareErr = err
}

// SetLoadHook installs a function run at the start of Load, e.g. to block
// until the test releases it.
func (m *Mock) SetLoadHook(fn func(ctx context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadHook = fn
}

// SetAutoPrepare makes PrepareAsync fire Prepared immediately.
func (m *Mock) SetAutoPrepare(auto bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoPrepare = auto
}

func (m *Mock) SetPosition(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = ms
}

func (m *Mock) SetDuration(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = ms
}

// SetPlaying overrides the playing flag without recording a call.
func (m *Mock) SetPlaying(playing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = playing
}

// Calls returns how many times the named method was invoked. Names are the
// lower-case method names: load, prepare, start, pause, stop, reset,
// release, seek, volume.
func (m *Mock) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *Mock) SeekCalls() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.seeks...)
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) URL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.url
}

func (m *Mock) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// SimulatePrepared fires Listener.Prepared.
func (m *Mock) SimulatePrepared() { m.listener.Prepared() }

// SimulateBuffering records percent as the buffered progress and fires
// Listener.BufferingProgress.
func (m *Mock) SimulateBuffering(percent int) {
	m.mu.Lock()
	m.buffered = percent
	m.mu.Unlock()
	m.listener.BufferingProgress(percent)
}

// SimulateCompleted fires Listener.Completed.
func (m *Mock) SimulateCompleted() { m.listener.Completed() }

// SimulateError fires Listener.Failed.
func (m *Mock) SimulateError(err error) { m.listener.Failed(err) }

// MockFactory builds Mock engines and keeps every one it built.
type MockFactory struct {
	mu        sync.Mutex
	engines   []*Mock
	configure func(*Mock)
	err       error
}

// NewMockFactory returns a factory that applies configure to each new mock.
func NewMockFactory(configure func(*Mock)) *MockFactory {
	return &MockFactory{configure: configure}
}

// New implements Factory.
func (f *MockFactory) New(l Listener) (Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m := NewMock(l)
	if f.configure != nil {
		f.configure(m)
	}
	f.engines = append(f.engines, m)
	return m, nil
}

// SetError makes subsequent New calls fail.
func (f *MockFactory) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Engines returns every mock built so far, oldest first.
func (f *MockFactory) Engines() []*Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Mock(nil), f.engines...)
}

// Last returns the most recently built mock, or nil.
func (f *MockFactory) Last() *Mock {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.engines) == 0 {
		return nil
	}
	return f.engines[len(f.engines)-1]
}
