//go:build linux

package mpris

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/llehouerou/wavestream/internal/tags"
)

// artWriter exports the session cover as a PNG file. Each cover gets its
// own file name so clients that cache by URL pick up the change.
type artWriter struct {
	dir string

	mu   sync.Mutex
	path string
}

func newArtWriter(dir string) *artWriter {
	return &artWriter{dir: dir}
}

// write stores img and returns its file URL. The previous file is removed.
func (w *artWriter) write(gen uint64, img image.Image) (string, error) {
	if w.dir == "" || img == nil {
		return "", nil
	}
	data, err := tags.EncodePNG(img)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create art dir: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("cover-%d.png", gen))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write cover: %w", err)
	}

	w.mu.Lock()
	prev := w.path
	w.path = path
	w.mu.Unlock()
	if prev != "" && prev != path {
		_ = os.Remove(prev)
	}
	return "file://" + path, nil
}

// clear removes the exported file.
func (w *artWriter) clear() {
	w.mu.Lock()
	prev := w.path
	w.path = ""
	w.mu.Unlock()
	if prev != "" {
		_ = os.Remove(prev)
	}
}
