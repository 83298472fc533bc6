package check

import "sync/atomic"

// Alternative is a node in the proof-search tree that concurrent proof
// attempts are organized into. A node is Required when it is the unique
// live sibling left in its parent's fan-out — that distinction is what lets
// IfRequired choose between imposing a constraint on the inference state
// (required branch) and merely speculatively testing one (non-required
// branch).
//
// Grounded on spec.md §4.5's "alternatives tree" design; modeled here as a
// shared live-sibling counter rather than the original's borrowed tree
// structure, since Go tasks run as goroutines rather than borrowed futures.
type Alternative struct {
	liveSiblings *int64
}

// Root returns a fresh top-level alternative with no siblings: it is always
// Required.
func Root() Alternative {
	n := int64(1)
	return Alternative{liveSiblings: &n}
}

// SpawnChildren returns n sibling Alternatives sharing one live-count. Each
// must eventually call Retire exactly once when its branch finishes (found
// an answer or was cancelled), at which point the remaining siblings
// recompute Required.
func (a Alternative) SpawnChildren(n int) []Alternative {
	count := int64(n)
	out := make([]Alternative, n)
	for i := range out {
		out[i] = Alternative{liveSiblings: &count}
	}
	return out
}

// Required reports whether this alternative is the sole remaining live
// sibling.
func (a Alternative) Required() bool {
	if a.liveSiblings == nil {
		return true
	}
	return atomic.LoadInt64(a.liveSiblings) <= 1
}

// Retire marks this alternative's branch as finished, decrementing the
// shared live-sibling count so the remaining siblings may become Required.
func (a Alternative) Retire() {
	if a.liveSiblings == nil {
		return
	}
	atomic.AddInt64(a.liveSiblings, -1)
}
