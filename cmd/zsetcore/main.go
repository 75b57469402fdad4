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

// Command zsetcore wires a keyspace of sorted sets to a replication sink and
// a periodic snapshot engine. It deliberately stops short of the teacher's
// server binary: no listener is opened here, since accepting client
// connections and parsing a wire protocol belong to a transport collaborator
// this repository doesn't implement. What it does own is the startup order
// every component above it assumes: config, then logger, then sink, then
// keyspace, then snapshot engine, then graceful shutdown on signal.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lattice-kv/zsetcore/internal"
	"github.com/lattice-kv/zsetcore/internal/config"
	"github.com/lattice-kv/zsetcore/internal/keyspace"
	"github.com/lattice-kv/zsetcore/internal/logging"
	internalraft "github.com/lattice-kv/zsetcore/internal/raft"
	"github.com/lattice-kv/zsetcore/internal/replication"
	"github.com/lattice-kv/zsetcore/internal/snapshot"
	core "github.com/lattice-kv/zsetcore/internal/sorted_set"
)

func main() {
	conf, err := config.GetConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(conf)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	cancelCh := make(chan os.Signal, 1)
	signal.Notify(cancelCh, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	sink, closeSink, err := buildSink(conf, logger)
	if err != nil {
		logger.Fatal("building replication sink", zap.Error(err))
	}
	if closeSink != nil {
		defer closeSink()
	}

	ks := keyspace.New(sink)

	var latestSnapshotMillis int64
	snapshotEngine := snapshot.NewSnapshotEngine(
		snapshot.WithDirectory(conf.DataDir),
		snapshot.WithInterval(conf.SnapshotInterval),
		snapshot.WithThreshold(conf.SnapshotThreshold),
		snapshot.WithGetStateFunc(ks.Snapshot),
		snapshot.WithRestoreStateFunc(ks.Restore),
		snapshot.WithSetLatestSnapshotTimeFunc(func(msec int64) { latestSnapshotMillis = msec }),
		snapshot.WithGetLatestSnapshotTimeFunc(func() int64 { return latestSnapshotMillis }),
	)

	if err := snapshotEngine.Restore(); err != nil {
		logger.Info("no snapshot restored at startup", zap.Error(err))
	}

	logger.Info("zsetcore keyspace ready",
		zap.String("replication_backend", string(conf.ReplicationBackend)),
		zap.Int("restored_keys", ks.Len()),
	)

	<-cancelCh

	logger.Info("shutting down, taking final snapshot")
	if err := snapshotEngine.TakeSnapshot(); err != nil {
		logger.Warn("final snapshot failed", zap.Error(err))
	}
}

// buildSink constructs the core.Sink implementation named by
// conf.ReplicationBackend, along with an optional cleanup func.
func buildSink(conf config.Config, logger *zap.Logger) (core.Sink, func(), error) {
	switch conf.ReplicationBackend {
	case config.ReplicationKafka:
		sink, err := replication.NewKafkaSink(conf, logger)
		if err != nil {
			return nil, nil, err
		}
		return sink, sink.Close, nil

	case config.ReplicationRaft:
		if conf.RaftBindAddr == "" {
			port, err := internal.GetFreePort()
			if err != nil {
				return nil, nil, err
			}
			conf.RaftBindAddr = fmt.Sprintf("127.0.0.1:%d", port)
		}
		// The FSM's ApplyDelta/Snapshot/Restore callbacks close over a
		// keyspace that doesn't exist until after the sink is built, so the
		// node is wired through a keyspace created here rather than reused
		// from main - this mirrors how the teacher's cluster layer wires its
		// FSM ahead of the store it mutates.
		raftKeyspace := keyspace.New(replication.NewLogSink(logger))
		fsm := internalraft.NewFSM(internalraft.FSMOpts{
			ApplyDelta:    raftKeyspace.ApplyDelta,
			SnapshotState: func() map[string][]byte { state, _ := raftKeyspace.Snapshot(); return state },
			RestoreState:  raftKeyspace.Restore,
		})
		node, err := internalraft.NewNode(internalraft.Opts{
			Config: conf,
			FSM:    fsm,
		})
		if err != nil {
			return nil, nil, err
		}
		return replication.NewRaftSink(node, 5*time.Second), func() { _ = node.Shutdown() }, nil

	default:
		return replication.NewLogSink(logger), nil, nil
	}
}
