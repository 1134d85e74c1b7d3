//go:build !linux

package keepalive

// New returns a Noop lock on platforms without logind.
func New(_, _ string) Lock {
	return &Noop{}
}
