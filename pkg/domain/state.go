package domain

// Phase identifies the lifecycle step in which a hook ran.
type Phase string

const (
	PhaseStart  Phase = "start"
	PhaseUpdate Phase = "update"
	PhaseEnd    Phase = "end"
)

// Kind identifies the structural role of a state.
type Kind string

const (
	KindState  Kind = "state"  // Leaf driven by user hooks
	KindSeries Kind = "series" // Sequential composite
	KindGroup  Kind = "group"  // Parallel composite
	KindProxy  Kind = "proxy"  // Zero-duration expander
)

// Status summarizes the lifecycle flags of a state as a single value.
type Status string

const (
	StatusPending Status = "pending" // Not started
	StatusRunning Status = "running" // Started, not ended
	StatusEnded   Status = "ended"
)

// StatusOf derives the Status from the raw lifecycle flags.
func StatusOf(started, ended bool) Status {
	switch {
	case ended:
		return StatusEnded
	case started:
		return StatusRunning
	default:
		return StatusPending
	}
}
