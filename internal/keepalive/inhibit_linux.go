//go:build linux

package keepalive

import (
	"fmt"
	"os"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	login1Dest  = "org.freedesktop.login1"
	login1Path  = "/org/freedesktop/login1"
	inhibitWhat = "idle"
	inhibitMode = "block"
)

// Verify Inhibitor implements Lock at compile time.
var _ Lock = (*Inhibitor)(nil)

// Inhibitor holds a logind idle inhibitor. The lock lives as long as the
// file descriptor returned by logind stays open.
type Inhibitor struct {
	mu  sync.Mutex
	obj dbus.BusObject
	who string
	why string
	fd  *os.File
}

// New returns a logind-backed lock, or a Noop lock if the system bus is
// unavailable.
func New(who, why string) Lock {
	conn, err := dbus.SystemBus()
	if err != nil {
		return &Noop{}
	}
	return &Inhibitor{
		obj: conn.Object(login1Dest, dbus.ObjectPath(login1Path)),
		who: who,
		why: why,
	}
}

func (i *Inhibitor) Acquire() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fd != nil {
		return nil
	}

	var fd dbus.UnixFD
	err := i.obj.Call(login1Dest+".Manager.Inhibit", 0, inhibitWhat, i.who, i.why, inhibitMode).Store(&fd)
	if err != nil {
		return fmt.Errorf("inhibit: %w", err)
	}
	i.fd = os.NewFile(uintptr(fd), "logind-inhibit")
	return nil
}

func (i *Inhibitor) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.fd == nil {
		return nil
	}
	err := i.fd.Close()
	i.fd = nil
	return err
}

func (i *Inhibitor) Held() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.fd != nil
}
