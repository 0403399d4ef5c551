package store

type ChangeKind int

const (
	ChangeInitialize ChangeKind = iota
	ChangeCreate
	ChangeUpdate
	ChangeOptimistic
	ChangeRollback
	ChangeConfirm
)

// String makes ChangeKind implement the fmt.Stringer interface for pretty printing.
func (k ChangeKind) String() string {
	switch k {
	case ChangeInitialize:
		return "Initialize"
	case ChangeCreate:
		return "Create"
	case ChangeUpdate:
		return "Update"
	case ChangeOptimistic:
		return "Optimistic"
	case ChangeRollback:
		return "Rollback"
	case ChangeConfirm:
		return "Confirm"
	default:
		return "Unknown"
	}
}

// ChangeEvent describes a successful mutation. Record is a copy of the state
// after the mutation; it is the zero value for Initialize, which replaces the
// whole record set.
type ChangeEvent struct {
	Kind   ChangeKind
	Key    string
	Record Record
}

type ChangeCallback func(ChangeEvent)
