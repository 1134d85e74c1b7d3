//go:build linux

package notify

import (
	"os"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvocation(t *testing.T) {
	inv, ok := parseInvocation([]any{uint32(4), keyNext})
	require.True(t, ok)
	assert.Equal(t, Invocation{ID: 4, Key: keyNext}, inv)

	for _, body := range [][]any{
		nil,
		{uint32(4)},
		{"4", keyNext},
		{uint32(4), 5},
	} {
		_, ok := parseInvocation(body)
		assert.False(t, ok, "%v", body)
	}
}

func TestHints(t *testing.T) {
	h := hints(Notification{Urgency: UrgencyLow})
	assert.Equal(t, dbus.MakeVariant(byte(0)), h["urgency"])
	assert.Equal(t, dbus.MakeVariant(desktopEntry), h["desktop-entry"])
	assert.NotContains(t, h, "category")
	assert.NotContains(t, h, "action-icons")
	assert.NotContains(t, h, "resident")
	assert.NotContains(t, h, "image-path")

	h = hints(Notification{
		Icon:     "/tmp/wavestream/notification.png",
		Category: CategoryMusic,
		Actions:  transportActions(0),
		Resident: true,
	})
	assert.Equal(t, dbus.MakeVariant(CategoryMusic), h["category"])
	assert.Equal(t, dbus.MakeVariant(true), h["action-icons"])
	assert.Equal(t, dbus.MakeVariant(true), h["resident"])
	assert.Equal(t, dbus.MakeVariant("file:///tmp/wavestream/notification.png"), h["image-path"])

	assert.NotContains(t, hints(Notification{Icon: "audio-x-generic"}), "image-path")
}

func TestNotifyReplacesExisting(t *testing.T) {
	// Skip if no D-Bus session (CI environment)
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	notifier, err := New()
	require.NoError(t, err)
	defer notifier.Shutdown()

	id1, err := notifier.Notify(Notification{
		Title:   "Wavestream Test",
		Body:    "Artist · Album",
		Timeout: 2000,
		Actions: transportActions(0),
	})
	require.NoError(t, err)
	if id1 == 0 {
		t.Skip("notification server did not assign an ID")
	}

	id2, err := notifier.Notify(Notification{
		Title:      "Paused: Wavestream Test",
		Body:       "Artist · Album",
		Timeout:    1000,
		ReplacesID: id1,
	})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.NoError(t, notifier.Close(id2))
}
