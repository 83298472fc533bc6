// Package check implements the cooperative check driver: task combinators
// that run typing of expressions, signatures, fields, and bodies as
// interdependent tasks sharing one logical database.
//
// Go has no borrowed-future analogue, so each task here runs as a plain
// goroutine; cooperation and cancellation are expressed through
// context.Context and the Alternative live-sibling counter rather than a
// hand-rolled poll loop, while still presenting the same combinator surface
// spec.md §4.5 describes. Grounded on the teacher's errgroup-based fan-out
// in internal/driver/parallel.go for the join/fan-out shape, and on the
// original implementation's check/env/combinator.rs for the combinator set
// itself (require, require_both, require_for_all, exists, for_all, either,
// if_required, require_for_all_chain_bounds).
package check

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is a single proof obligation: it runs to completion (possibly
// suspending on a channel internally) and reports whether it proved its
// goal, or an error if the goal is known to be unprovable.
type Task func(ctx context.Context) (bool, error)

// Require runs pred and reports or_else's Reported error if it settles
// false. A context error (cancellation from an enclosing Exists/Either) is
// returned as a cancellation, not a failed proof.
func Require(ctx context.Context, pred Task, orElse OrElse) error {
	ok, err := pred(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return orElse()
	}
	return nil
}

// RequireBoth succeeds only if both a and b succeed; the first error
// short-circuits the other (the already-started goroutine is still allowed
// to finish since inference mutation is append-only and therefore safe to
// let run to completion).
func RequireBoth(ctx context.Context, a, b Task) (bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	var ra, rb bool
	g.Go(func() error {
		v, err := a(gctx)
		ra = v
		return err
	})
	g.Go(func() error {
		v, err := b(gctx)
		rb = v
		return err
	})
	if err := g.Wait(); err != nil {
		return false, err
	}
	return ra && rb, nil
}

// RequireForAll fans out f over items and joins, matching the spec's
// require_for_all fan-out-then-join semantics.
func RequireForAll[T any](ctx context.Context, items []T, f func(context.Context, T) (bool, error)) (bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([]bool, len(items))
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			v, err := f(gctx, item)
			results[i] = v
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	for _, r := range results {
		if !r {
			return false, nil
		}
	}
	return true, nil
}

// Exists runs f over items concurrently and short-circuits true as soon as
// any item proves its goal; siblings still running are cancelled via ctx
// but any inference state they already committed stands (monotonic append
// makes this safe per spec.md §5).
func Exists[T any](ctx context.Context, items []T, f func(context.Context, T) (bool, error)) (bool, error) {
	return searchUnordered(ctx, items, f, true)
}

// ForAll runs f over items concurrently and short-circuits false as soon as
// any item disproves its goal.
func ForAll[T any](ctx context.Context, items []T, f func(context.Context, T) (bool, error)) (bool, error) {
	return searchUnordered(ctx, items, f, false)
}

func searchUnordered[T any](ctx context.Context, items []T, f func(context.Context, T) (bool, error), wantTrue bool) (bool, error) {
	if len(items) == 0 {
		return !wantTrue, nil
	}
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		ok  bool
		err error
	}
	results := make(chan outcome, len(items))
	for _, item := range items {
		item := item
		go func() {
			ok, err := f(sctx, item)
			results <- outcome{ok: ok, err: err}
		}()
	}

	var firstErr error
	for i := 0; i < len(items); i++ {
		out := <-results
		if out.err != nil {
			if firstErr == nil {
				firstErr = out.err
			}
			continue
		}
		if out.ok == wantTrue {
			cancel()
			return wantTrue, nil
		}
	}
	if firstErr != nil {
		return false, firstErr
	}
	return !wantTrue, nil
}

// Either returns true as soon as either a or b proves true; otherwise it
// returns the first error either alternative reported, or false with a nil
// error when both settled false.
func Either(ctx context.Context, a, b Task) (bool, error) {
	return searchUnordered(ctx, []Task{a, b}, func(ctx context.Context, t Task) (bool, error) {
		return t(ctx)
	}, true)
}

// IfRequired drives ifReq when alt is the unique live sibling (the
// "required" branch, which is allowed to impose constraints on the
// inference state) and ifNot otherwise (a purely speculative test that
// must not mutate shared inference state beyond what monotonic append
// already tolerates being discarded).
func IfRequired(alt Alternative, ifReq, ifNot Task) Task {
	if alt.Required() {
		return ifReq
	}
	return ifNot
}

// RequireForAllChainBounds loops over newly observed bounds on var
// (delivered via watch), calling poll before each wait, until poll reports
// done, poll returns an error, ctx is done, or the watch channel is closed.
// This implements the "future never comes" idiom: while poll is not done and
// neither a wake-up nor cancellation arrives, it keeps waiting.
func RequireForAllChainBounds(ctx context.Context, watch <-chan struct{}, poll func() (done bool, err error)) error {
	for {
		done, err := poll()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case _, open := <-watch:
			if !open {
				return nil
			}
		}
	}
}
