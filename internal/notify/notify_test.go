package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUrgencyValues(t *testing.T) {
	// freedesktop urgency levels
	assert.Equal(t, Urgency(0), UrgencyLow)
	assert.Equal(t, Urgency(1), UrgencyNormal)
	assert.Equal(t, Urgency(2), UrgencyCritical)
}

func TestActionList(t *testing.T) {
	n := Notification{Actions: transportActions(0)}
	assert.Equal(t, []string{
		keyPrevious, "Previous",
		keyPause, "Pause",
		keyNext, "Next",
	}, n.actionList())

	assert.Empty(t, Notification{}.actionList())
	assert.NotNil(t, Notification{}.actionList())
}

func TestStubNotifier(t *testing.T) {
	var n Notifier = stubNotifier{}
	id, err := n.Notify(Notification{Title: "x"})
	assert.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, n.Close(1))
	assert.Nil(t, n.Invocations())
	n.Shutdown()
}
