package entity

// Status enumerates the fixed order lifecycle values. The set is closed on the
// Go side but the database column is free text, so unknown values coming back
// from storage must still classify without panicking.
type Status string

const (
	StatusPending     Status = "pending"
	StatusWashed      Status = "washed"
	StatusDried       Status = "dried"
	StatusIroned      Status = "ironed"
	StatusReadyPicked Status = "ready_picked"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

// Scope partitions orders into the two list views.
type Scope string

const (
	ScopeActive  Scope = "active"
	ScopeHistory Scope = "history"
)

// Statuses lists every defined status in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusPending,
		StatusWashed,
		StatusDried,
		StatusIroned,
		StatusReadyPicked,
		StatusCompleted,
		StatusCancelled,
	}
}

// Known reports whether s is one of the defined statuses.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusWashed, StatusDried, StatusIroned,
		StatusReadyPicked, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Classify maps a status onto the active/history partition. Completed and
// cancelled are terminal by convention; everything else, including unknown
// strings, counts as active.
func (s Status) Classify() Scope {
	switch s {
	case StatusCompleted, StatusCancelled:
		return ScopeHistory
	default:
		return ScopeActive
	}
}

// Presentation carries the display attributes for a status.
type Presentation struct {
	Icon  string
	Color string
	Label string
}

// Present resolves the display mapping for a status. Unknown values get a
// dedicated fallback instead of an error so a bad row never breaks a list view.
func (s Status) Present() Presentation {
	switch s {
	case StatusPending:
		return Presentation{Icon: "hourglass", Color: "#F59E0B", Label: "Pending"}
	case StatusWashed:
		return Presentation{Icon: "droplet", Color: "#3B82F6", Label: "Washed"}
	case StatusDried:
		return Presentation{Icon: "wind", Color: "#06B6D4", Label: "Dried"}
	case StatusIroned:
		return Presentation{Icon: "flame", Color: "#F97316", Label: "Ironed"}
	case StatusReadyPicked:
		return Presentation{Icon: "package", Color: "#8B5CF6", Label: "Ready for Pickup"}
	case StatusCompleted:
		return Presentation{Icon: "check-circle", Color: "#22C55E", Label: "Completed"}
	case StatusCancelled:
		return Presentation{Icon: "x-circle", Color: "#EF4444", Label: "Cancelled"}
	default:
		return Presentation{Icon: "help-circle", Color: "#6B7280", Label: "Unknown"}
	}
}

// usualNext records the conventional forward step for each status. It is
// advisory only: staff may override any status with any other, so callers use
// this to warn, never to reject.
var usualNext = map[Status][]Status{
	StatusPending:     {StatusWashed, StatusCancelled},
	StatusWashed:      {StatusDried, StatusCancelled},
	StatusDried:       {StatusIroned, StatusCancelled},
	StatusIroned:      {StatusReadyPicked, StatusCancelled},
	StatusReadyPicked: {StatusCompleted, StatusCancelled},
}

// UsualTransition reports whether moving from s to next follows the
// conventional lifecycle. A false result is informational.
func (s Status) UsualTransition(next Status) bool {
	for _, candidate := range usualNext[s] {
		if candidate == next {
			return true
		}
	}
	return false
}
