//go:build !linux

package focus

import "github.com/rs/zerolog"

// WatchSleep is a no-op on platforms without logind.
func WatchSleep(_ Arbiter, _ zerolog.Logger) (func(), error) {
	return func() {}, nil
}
