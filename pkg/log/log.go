package log

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// GetLogger returns a stdr.Logger that implements the logr.Logger interface
// and sets the verbosity of the returned logger.
// set v to 0 for info level messages,
// 1 for debug messages and 2 for trace level message.
// any other verbosity level will default to 0.
func GetLogger(v int) logr.Logger {
	logger := stdr.New(nil).WithName("otext")
	// bound check
	if v > 2 || v < 0 {
		v = 0
		logger.Info("Invalid verbosity, setting logger to display info level messages only.")
	}
	stdr.SetVerbosity(v)

	return logger
}

// ContextWithLogger returns a context that has a logr.Logger contained inside,
// which can then be used by the Send/Receive functions of the OT extension
// engines.
func ContextWithLogger(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// ProtocolLogger returns the logger carried by ctx tagged with the
// protocol name, or a logger that discards everything.
func ProtocolLogger(ctx context.Context, protocol string) logr.Logger {
	return logr.FromContextOrDiscard(ctx).WithValues("protocol", protocol)
}

// StageStats logs the time spent in stage since prev and since start,
// along with the memory held by the process, and returns the values to
// feed into the next call.
func StageStats(logger logr.Logger, stage int, prev, start time.Time, prevMem uint64) (time.Time, uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	now := time.Now()

	logger.V(1).Info("stage finished",
		"stage", stage,
		"time", now.Sub(prev).String(),
		"cumulative time", now.Sub(start).String(),
		"memory delta (MiB)", toMiB(int64(m.Sys)-int64(prevMem)),
	)

	return now, m.Sys
}

// MemUsage logs the total memory usage and garbage collector calls
func MemUsage(logger logr.Logger) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m) // https://cs.opensource.google/go/go/+/go1.17.1:src/runtime/mstats.go;l=107
	logger.V(1).Info("Final stats", "total memory (MiB)", toMiB(int64(m.Sys)))
	logger.V(1).Info("Final stats", "garbage collector calls", m.NumGC)
}

func toMiB(b int64) float64 {
	return math.Round(float64(b)*100/(1024*1024)) / 100
}
