package playback

import (
	"testing"
	"testing/synctest"
)

func TestMailbox_RunsInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := newMailbox()
		var got []int
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				fn, ok := m.next()
				if !ok {
					return
				}
				fn()
			}
		}()

		for i := range 100 {
			m.post(func() { got = append(got, i) })
		}
		m.close()
		<-done

		if len(got) != 100 {
			t.Fatalf("ran %d closures, want 100", len(got))
		}
		for i, v := range got {
			if v != i {
				t.Fatalf("got[%d] = %d, closures ran out of order", i, v)
			}
		}
	})
}

func TestMailbox_PostAfterClose(t *testing.T) {
	m := newMailbox()
	m.close()

	if m.post(func() {}) {
		t.Error("post() after close = true, want false")
	}
	if _, ok := m.next(); ok {
		t.Error("next() on closed empty mailbox = true, want false")
	}
}

func TestMailbox_PostFromClosure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := newMailbox()
		var order []string
		m.post(func() {
			order = append(order, "first")
			m.post(func() { order = append(order, "nested") })
		})
		m.post(func() { order = append(order, "second") })

		for range 3 {
			fn, _ := m.next()
			fn()
		}

		want := []string{"first", "second", "nested"}
		for i := range want {
			if order[i] != want[i] {
				t.Fatalf("order = %v, want %v", order, want)
			}
		}
	})
}
