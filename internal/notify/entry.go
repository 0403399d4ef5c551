package notify

import "time"

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
	KindLoading Kind = "loading"
)

// Lane is an independent insertion-ordered display sequence. Reordering one
// lane never affects the other.
type Lane string

const (
	// LaneEphemeral holds transient global notices, most-recent-first.
	LaneEphemeral Lane = "ephemeral"
	// LaneForm holds persistent form-scoped notices in chronological order.
	LaneForm Lane = "form"
)

// Config describes a notification to show. A zero Timeout means the entry is
// sticky until dismissed; a positive Delay defers display so fast operations
// never flash a toast.
type Config struct {
	ID          string
	Title       string
	Message     string
	Kind        Kind
	Lane        Lane
	Timeout     time.Duration
	Delay       time.Duration
	Dismissible bool
}

// Patch is a partial update for a pending or visible entry. Nil fields keep
// their current value; a non-nil Timeout restarts the auto-dismiss timer.
type Patch struct {
	Title       *string
	Message     *string
	Kind        *Kind
	Timeout     *time.Duration
	Dismissible *bool
}

// Entry is the live state of a notification. Accessors hand out copies; the
// queue owns the originals.
type Entry struct {
	ID          string
	Title       string
	Message     string
	Kind        Kind
	Lane        Lane
	Timeout     time.Duration
	Delay       time.Duration
	Dismissible bool
	Status      Status
	CreatedAt   time.Time
}

func patchOf(cfg Config) Patch {
	return Patch{
		Title:       &cfg.Title,
		Message:     &cfg.Message,
		Kind:        &cfg.Kind,
		Timeout:     &cfg.Timeout,
		Dismissible: &cfg.Dismissible,
	}
}
