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

package raft

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/raft"

	core "github.com/lattice-kv/zsetcore/internal/sorted_set"
)

// LogEntry is what gets JSON-encoded into every raft.Log committed by this
// package - a Delta scoped to the key it mutates.
type LogEntry struct {
	Key   string
	Delta core.Delta
}

// FSMOpts supplies the callbacks the FSM needs into the owning keyspace.
// ApplyDelta replays one committed delta; SnapshotState/RestoreState
// round-trip the whole keyspace through Raft's own snapshot machinery,
// independent of this repository's own periodic snapshot.Engine (see
// internal/snapshot), which exists for operators who want snapshots outside
// of Raft's log-compaction cadence.
type FSMOpts struct {
	ApplyDelta    func(key string, delta core.Delta) error
	SnapshotState func() map[string][]byte
	RestoreState  func(map[string][]byte) error
}

// FSM replays committed deltas against a keyspace. It carries none of the
// command-dispatch plumbing the teacher's generic-keyspace FSM had -
// dispatching a parsed request to a handler is a transport collaborator's
// job, and this package only ever sees deltas, never raw commands.
type FSM struct {
	opts FSMOpts
}

func NewFSM(opts FSMOpts) raft.FSM {
	return &FSM{opts: opts}
}

// Apply implements raft.FSM.
func (fsm *FSM) Apply(log *raft.Log) interface{} {
	if log.Type != raft.LogCommand {
		return nil
	}
	var entry LogEntry
	if err := json.Unmarshal(log.Data, &entry); err != nil {
		return err
	}
	return fsm.opts.ApplyDelta(entry.Key, entry.Delta)
}

// Snapshot implements raft.FSM.
func (fsm *FSM) Snapshot() (raft.FSMSnapshot, error) {
	return &fsmSnapshot{state: fsm.opts.SnapshotState()}, nil
}

// Restore implements raft.FSM.
func (fsm *FSM) Restore(snapshot io.ReadCloser) error {
	defer snapshot.Close()
	b, err := io.ReadAll(snapshot)
	if err != nil {
		return fmt.Errorf("raft: reading snapshot: %w", err)
	}
	var state map[string][]byte
	if err := json.Unmarshal(b, &state); err != nil {
		return fmt.Errorf("raft: decoding snapshot: %w", err)
	}
	return fsm.opts.RestoreState(state)
}
