// Package notify keeps a now-playing desktop notification in step with the
// playback session and turns its transport buttons back into commands.
package notify

// Urgency is the freedesktop notification urgency level.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// CategoryMusic is the category media players tag their notifications with.
const CategoryMusic = "x-gnome.music"

// Action is a notification button. With icon actions enabled the server
// draws Key as an icon name, so keys are freedesktop icon names.
type Action struct {
	Key   string
	Label string
}

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
	Category   string
	Actions    []Action
	// Resident keeps the notification up after one of its actions is used.
	Resident bool
}

// actionList flattens the actions into the key, label pairs the Notify
// call expects.
func (n Notification) actionList() []string {
	out := make([]string, 0, 2*len(n.Actions))
	for _, a := range n.Actions {
		out = append(out, a.Key, a.Label)
	}
	return out
}

// Invocation reports that the action Key was used on notification ID.
type Invocation struct {
	ID  uint32
	Key string
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
	// Invocations delivers used actions. It is nil when the notifier cannot
	// report them.
	Invocations() <-chan Invocation
	// Shutdown releases the notifier. Invocations is closed.
	Shutdown()
}

// stubNotifier drops everything. It stands in when no notification server
// is reachable.
type stubNotifier struct{}

func (stubNotifier) Notify(_ Notification) (uint32, error) { return 0, nil }
func (stubNotifier) Close(_ uint32) error                  { return nil }
func (stubNotifier) Invocations() <-chan Invocation        { return nil }
func (stubNotifier) Shutdown()                             {}
