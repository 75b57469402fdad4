// Copyright 2024 Kelvin Clement Mwinuka
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package raft wires github.com/hashicorp/raft into a single-voter,
// in-process log the way sorted_set's delta replication sink uses it.
// Cluster membership (joining peers, leadership transfer between nodes,
// TCP transport bootstrap) is an external collaborator's concern per this
// repository's scope; this package deliberately never grows that surface -
// it exists only to give deltas a durable, ordered log to replay from.
package raft

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"

	"github.com/lattice-kv/zsetcore/internal/config"
)

// Opts configures the single-node Raft instance.
type Opts struct {
	Config  config.Config
	FSM     raft.FSM
	InMemory bool
}

// Node wraps a *raft.Raft bootstrapped as the sole voter of a one-node
// configuration, with an in-process transport - there is no listening
// socket and no peer to join, by design.
type Node struct {
	raft *raft.Raft
}

// NewNode builds and bootstraps the node. The returned Node accepts Apply
// once it has won its single-voter election, shortly after NewNode returns
// (see IsLeader); raft.Raft.BootstrapCluster is idempotent once this
// node is already part of a configuration, so repeated calls across
// restarts are safe.
func NewNode(opts Opts) (*Node, error) {
	raftConfig := raft.DefaultConfig()
	raftConfig.LocalID = raft.ServerID("single-node")
	raftConfig.SnapshotThreshold = opts.Config.SnapshotThreshold
	raftConfig.SnapshotInterval = opts.Config.SnapshotInterval

	var logStore raft.LogStore
	var stableStore raft.StableStore
	var snapshotStore raft.SnapshotStore

	if opts.InMemory {
		logStore = raft.NewInmemStore()
		stableStore = raft.NewInmemStore()
		snapshotStore = raft.NewInmemSnapshotStore()
	} else {
		if err := os.MkdirAll(opts.Config.RaftDir, 0o755); err != nil {
			return nil, fmt.Errorf("raft: creating raft dir: %w", err)
		}
		boltStore, err := raftboltdb.NewBoltStore(filepath.Join(opts.Config.RaftDir, "logs.db"))
		if err != nil {
			return nil, fmt.Errorf("raft: opening bolt log store: %w", err)
		}
		logStore, err = raft.NewLogCache(512, boltStore)
		if err != nil {
			return nil, fmt.Errorf("raft: wrapping log cache: %w", err)
		}
		stableStore = boltStore
		snapshotStore, err = raft.NewFileSnapshotStore(opts.Config.RaftDir, 2, os.Stdout)
		if err != nil {
			return nil, fmt.Errorf("raft: opening snapshot store: %w", err)
		}
	}

	addr := opts.Config.RaftBindAddr
	transport, _ := raft.NewInmemTransport(raft.ServerAddress(addr))

	r, err := raft.NewRaft(raftConfig, opts.FSM, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, fmt.Errorf("raft: starting node: %w", err)
	}

	_ = r.BootstrapCluster(raft.Configuration{
		Servers: []raft.Server{
			{Suffrage: raft.Voter, ID: raftConfig.LocalID, Address: raft.ServerAddress(addr)},
		},
	}).Error()

	return &Node{raft: r}, nil
}

// Apply submits cmd (an encoded delta) to the log and blocks until it is
// committed and applied by the FSM, or timeout elapses.
func (n *Node) Apply(cmd []byte, timeout time.Duration) raft.ApplyFuture {
	return n.raft.Apply(cmd, timeout)
}

// IsLeader reports whether this node currently holds leadership - always
// true shortly after NewNode returns, for a single-voter configuration.
func (n *Node) IsLeader() bool {
	return n.raft.State() == raft.Leader
}

// Shutdown releases the underlying Raft instance's resources.
func (n *Node) Shutdown() error {
	return n.raft.Shutdown().Error()
}
