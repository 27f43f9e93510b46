package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errStage = errors.New("stage failed")

func TestSel(t *testing.T) {
	// normal operation
	f1 := func() error {
		return errStage
	}
	ctx, cancel := context.WithCancel(context.Background())
	require.ErrorIs(t, Sel(ctx, f1), errStage)
	require.NoError(t, Sel(ctx, func() error { return nil }))

	// context canceled
	cancel()
	block := make(chan struct{})
	defer close(block)
	require.ErrorIs(t, Sel(ctx, func() error { <-block; return nil }), context.Canceled)

	// deadline exceeded
	f2 := func() error {
		time.Sleep(time.Second)
		return nil
	}
	ctx, cancel = context.WithTimeout(context.Background(), time.Second/10)
	defer cancel()
	require.ErrorIs(t, Sel(ctx, f2), context.DeadlineExceeded)
}
