//go:build !windows

package stderr

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartForwardsCapturedLines(t *testing.T) {
	var out syncBuffer
	require.NoError(t, Start(zerolog.New(&out)))
	t.Cleanup(Stop)

	fmt.Fprintln(os.Stderr, "ALSA lib pcm.c: underrun occurred")
	fmt.Fprintln(os.Stderr, "   ")

	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("underrun occurred"))
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), `"component":"stderr"`)
	assert.Contains(t, out.String(), `"level":"warn"`)
}

func TestStopWithoutStart(t *testing.T) {
	assert.NotPanics(t, Stop)
}
