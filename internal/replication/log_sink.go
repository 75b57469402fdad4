// Package replication supplies concrete sorted_set.Sink implementations -
// the external collaborators spec.md's §6 Delta/Sink contract is written
// against, without pulling cluster membership or a wire protocol back into
// the core.
package replication

import (
	"context"

	"go.uber.org/zap"

	core "github.com/lattice-kv/zsetcore/internal/sorted_set"
)

// LogSink logs every delta it receives and otherwise discards it. It is the
// zero-configuration default: a standalone keyspace can run with it and
// never special-case "no replication configured" beyond what
// core.NoopSink already does, while still surfacing mutations for
// debugging.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink builds a LogSink that writes through logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish implements core.Sink.
func (s *LogSink) Publish(_ context.Context, key string, delta core.Delta) error {
	s.logger.Debug("sorted set delta",
		zap.String("key", key),
		zap.Int("adds", len(delta.Adds)),
		zap.Int("rems", len(delta.Rems)),
	)
	return nil
}
