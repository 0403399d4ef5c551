package notify

type EventKind int

const (
	EventShown EventKind = iota
	EventUpdated
	EventDismissed
	EventCancelled
)

// String makes EventKind implement the fmt.Stringer interface for pretty printing.
func (k EventKind) String() string {
	switch k {
	case EventShown:
		return "Shown"
	case EventUpdated:
		return "Updated"
	case EventDismissed:
		return "Dismissed"
	case EventCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Event is delivered to observers after a lifecycle transition. Entry is a
// copy taken at transition time. A presentation adapter subscribes to these
// to keep its rendering in step with the queue.
type Event struct {
	Kind  EventKind
	Entry Entry
}

type EventCallback func(Event)
