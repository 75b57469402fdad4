package replication

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/raft"

	core "github.com/lattice-kv/zsetcore/internal/sorted_set"

	internalraft "github.com/lattice-kv/zsetcore/internal/raft"
)

// raftApplier is the subset of internal/raft's *Node this sink needs,
// narrowed to an interface so any Apply implementation can stand in for it.
type raftApplier interface {
	Apply(cmd []byte, timeout time.Duration) raft.ApplyFuture
}

// RaftSink publishes deltas by committing them to a single-voter Raft log
// (internal/raft), which replays them into the owning keyspace through its
// FSM. It never configures cluster membership - see internal/raft's package
// doc for why.
type RaftSink struct {
	node    raftApplier
	timeout time.Duration
}

// NewRaftSink wraps node, applying each delta with the given timeout.
func NewRaftSink(node raftApplier, timeout time.Duration) *RaftSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RaftSink{node: node, timeout: timeout}
}

// Publish implements core.Sink.
func (s *RaftSink) Publish(_ context.Context, key string, delta core.Delta) error {
	payload, err := json.Marshal(internalraft.LogEntry{Key: key, Delta: delta})
	if err != nil {
		return fmt.Errorf("replication: encoding raft log entry: %w", err)
	}
	future := s.node.Apply(payload, s.timeout)
	return future.Error()
}
