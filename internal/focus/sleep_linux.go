//go:build linux

package focus

import (
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	login1Path      = "/org/freedesktop/login1"
	login1Interface = "org.freedesktop.login1.Manager"
)

// WatchSleep follows logind's PrepareForSleep signal on the system bus and
// maps suspend and resume to focus changes on a. The returned function
// stops watching.
func WatchSleep(a Arbiter, logger zerolog.Logger) (func(), error) {
	log := logger.With().Str("component", "sleep").Logger()

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, err
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(login1Path),
		dbus.WithMatchInterface(login1Interface),
		dbus.WithMatchMember("PrepareForSleep"),
	); err != nil {
		conn.Close()
		return nil, err
	}

	signals := make(chan *dbus.Signal, 4)
	conn.Signal(signals)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if sig.Name == login1Interface+".PrepareForSleep" {
					onPrepareForSleep(a, sig.Body, log)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		conn.RemoveSignal(signals)
		conn.Close()
	}, nil
}
