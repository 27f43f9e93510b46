package otext

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/go-logr/logr"
	"github.com/optable/otext/internal/util"
	"github.com/optable/otext/pkg/log"
	"github.com/optable/otext/pkg/ot"
	"golang.org/x/sync/errgroup"
)

const bufferSize = 64 * 1024

// runStages runs each stage in order under ctx and logs its statistics.
// The first failing stage ends the run. cleanup runs once the last
// started stage has returned: when ctx is cancelled that stage may
// still be blocked on I/O, so cleanup can run after runStages returns.
func runStages(ctx context.Context, logger logr.Logger, cleanup func(), stages ...func() error) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	start := time.Now()
	prev, mem := start, m.Sys

	for i, stage := range stages {
		logger.V(1).Info("Starting stage", "stage", i+1)
		done := make(chan struct{})
		err := util.Sel(ctx, func() error {
			defer close(done)
			return stage()
		})
		if err != nil {
			select {
			case <-done:
				cleanup()
			default:
				go func() {
					<-done
					cleanup()
				}()
			}
			return abort(fmt.Sprintf("stage%d", i+1), err)
		}
		prev, mem = log.StageStats(logger, i+1, prev, start, mem)
	}

	cleanup()
	log.MemUsage(logger)
	return nil
}

// parallel splits [0, n) into one contiguous chunk per available
// processor and runs f on every chunk concurrently.
func parallel(n int, f func(lo, hi int) error) error {
	if n == 0 {
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	step := (n + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < n; lo += step {
		hi := min(lo+step, n)
		g.Go(func() error { return f(lo, hi) })
	}
	return g.Wait()
}

// maskMessages writes, for each pair j,
//
//	c_j0 = m_j0 ^ H(j, 0, q_j)
//	c_j1 = m_j1 ^ H(j, 1, q_j ^ s)
//
// to w, in item order.
func maskMessages(h Hash, q [][]byte, s []byte, messages []ot.OTMessage, w io.Writer) error {
	ciphertexts := make([]ot.OTMessage, len(messages))
	err := parallel(len(messages), func(lo, hi int) error {
		key := make([]byte, len(s))
		for j := lo; j < hi; j++ {
			copy(key, q[j])
			util.Xor(key, s)

			for b, keyb := range [2][]byte{q[j], key} {
				c := make([]byte, len(messages[j][b]))
				copy(c, messages[j][b])
				if err := h.Mask(c, uint64(j), uint8(b), keyb); err != nil {
					return err
				}
				ciphertexts[j][b] = c
			}
		}
		clear(key)
		return nil
	})
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, bufferSize)
	for _, c := range ciphertexts {
		if _, err := bw.Write(c[0]); err != nil {
			return err
		}
		if _, err := bw.Write(c[1]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// unmaskMessages reads both ciphertexts of every pair from r and
// returns m_{j,r_j} = c_{j,r_j} ^ H(j, r_j, t_j).
func unmaskMessages(h Hash, t [][]byte, choices []uint8, msgLen []int, r io.Reader) ([][]byte, error) {
	var total int
	for _, l := range msgLen {
		total += 2 * l
	}

	stream := make([]byte, total)
	if _, err := io.ReadFull(r, stream); err != nil {
		return nil, err
	}

	// offsets of c_j0 in stream
	offsets := make([]int, len(msgLen))
	for j := 1; j < len(msgLen); j++ {
		offsets[j] = offsets[j-1] + 2*msgLen[j-1]
	}

	out := make([][]byte, len(msgLen))
	err := parallel(len(msgLen), func(lo, hi int) error {
		for j := lo; j < hi; j++ {
			bit := util.BitExtract(choices, j)
			off := offsets[j] + int(bit)*msgLen[j]

			out[j] = make([]byte, msgLen[j])
			copy(out[j], stream[off:off+msgLen[j]])
			if err := h.Mask(out[j], uint64(j), bit, t[j]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
