package delegation

import "fmt"

// State classifies the result of a transfer. Busy is a normal, expected
// return value under lock contention, never an error.
type State int

const (
	// StateCompleted marks a transfer (or one fan-out branch) that ran to
	// completion.
	StateCompleted State = iota
	// StateBusy marks a transfer rejected because another transfer of the
	// same pattern is in flight for the same parent.
	StateBusy
	// StateFailed marks a fan-out branch whose subagent returned an error.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateBusy:
		return "busy"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the status of one transfer target: its terminal state plus a
// human-readable message (result location, busy explanation or captured
// error).
type Outcome struct {
	State   State  `json:"state"`
	Message string `json:"message"`
}

// Fanout is the result of a multi-target transfer. When State is StateBusy
// nothing was dispatched and Statuses is nil; otherwise Statuses carries one
// Outcome per requested subagent name, exactly once each.
type Fanout struct {
	State    State              `json:"state"`
	Message  string             `json:"message,omitempty"`
	Statuses map[string]Outcome `json:"statuses,omitempty"`
}

// NotFoundError reports an unknown parent or subagent name.
type NotFoundError struct {
	Name   string
	Parent string // empty when the missing record is the parent itself
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Parent == "" {
		return fmt.Sprintf("agent %q not found", e.Name)
	}
	return fmt.Sprintf("subagent %q not found under agent %q, please try another possible sub-agent name", e.Name, e.Parent)
}

// CapabilityError reports a transfer target lacking a flag required by the
// requested pattern. It is raised before any dispatch happens.
type CapabilityError struct {
	Name       string
	Capability string
}

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("subagent %q is not flagged %s and cannot receive this transfer", e.Name, e.Capability)
}
