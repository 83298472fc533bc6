package check

import "fmt"

// DescriptionKind labels a fork in the task tree for debugging and
// cancellation bookkeeping.
type DescriptionKind uint8

const (
	DescRequire DescriptionKind = iota
	DescAny
	DescAll
	DescJoin
	DescRequireLowerChain
	DescRequireBoundsProvablyPredicate
)

// TaskDescription labels one fork of the task tree, mirroring the
// original's debug::TaskDescription lineage labels used for cancellation
// tracing.
type TaskDescription struct {
	Kind  DescriptionKind
	Index int
}

func (d TaskDescription) String() string {
	switch d.Kind {
	case DescRequire:
		return fmt.Sprintf("Require(%d)", d.Index)
	case DescAny:
		return fmt.Sprintf("Any(%d)", d.Index)
	case DescAll:
		return fmt.Sprintf("All(%d)", d.Index)
	case DescJoin:
		return fmt.Sprintf("Join(%d)", d.Index)
	case DescRequireLowerChain:
		return "RequireLowerChain"
	case DescRequireBoundsProvablyPredicate:
		return "RequireBoundsProvablyPredicate"
	default:
		return "Task"
	}
}

// Reported marks that an error was already surfaced as a diagnostic; it
// poisons downstream checks without re-reporting. Mirrors spec.md §7's
// "Reported diagnostics" error kind.
type Reported struct {
	Reason string
}

func (r Reported) Error() string { return r.Reason }

// OrElse produces the Reported error to raise if a proof obligation this
// closure guards later turns out to be false.
type OrElse func() Reported
