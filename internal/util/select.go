package util

import (
	"context"
)

// Sel runs f in its own goroutine and returns its error, or the
// context error if ctx is done first. When ctx wins, f keeps running
// until its blocking I/O fails; callers close the transport to make
// that happen. The result channel is buffered so f never blocks on
// send after Sel has returned.
func Sel(ctx context.Context, f func() error) error {
	var d = make(chan error, 1)
	go func() {
		d <- f()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-d:
		return err
	}
}
