package notify

type Status int

const (
	// Pending entries have a delay timer running and are not yet visible.
	Pending Status = iota
	// Visible entries are in a lane; an auto-dismiss timer may be running.
	Visible
	// Dismissed is terminal: the entry was visible and then removed.
	Dismissed
	// Cancelled is terminal: the entry was removed while still pending and
	// was never shown.
	Cancelled
)

// String makes Status implement the fmt.Stringer interface for pretty printing.
func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Visible:
		return "Visible"
	case Dismissed:
		return "Dismissed"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}
