// Package safego provides panic-recovering goroutine launchers for background work.
package safego

import (
	"context"
	"log/slog"
	"sync"
)

// Go launches fn in a new goroutine. A panic in fn is recovered and logged with
// the task name instead of crashing the process. The returned channel is closed
// once fn has returned or panicked.
func Go(name string, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "task", name, "panic", r)
			}
		}()
		fn()
	}()
	return done
}

// Group tracks in-flight goroutines so shutdown can wait for them to drain.
// The zero value is ready to use.
type Group struct {
	wg sync.WaitGroup
}

// Go launches fn like the package-level Go and tracks it in the group.
func (g *Group) Go(name string, fn func()) {
	g.wg.Add(1)
	Go(name, func() {
		defer g.wg.Done()
		fn()
	})
}

// Wait blocks until every tracked goroutine has finished or ctx is done.
func (g *Group) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
