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

package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ReplicationBackend selects which Sink implementation owns delta
// propagation for a keyspace.
type ReplicationBackend string

const (
	ReplicationNone  ReplicationBackend = "none"
	ReplicationRaft  ReplicationBackend = "raft"
	ReplicationKafka ReplicationBackend = "kafka"
)

// Config holds every value this repository's components read at startup.
// It keeps the teacher's pattern of a flat struct with yaml tags, loaded
// from flags and optionally overridden by a config file, but carries only
// the fields a sorted-set keyspace plus its logging/snapshot/replication
// collaborators actually use - TLS, ACL, eviction and cluster-bootstrap
// fields from the teacher's original Config are dropped as out of scope
// (see DESIGN.md).
type Config struct {
	DataDir            string             `yaml:"DataDir"`
	LogLevel           string             `yaml:"LogLevel"`
	LogFormat          string             `yaml:"LogFormat"`
	SnapshotThreshold  uint64             `yaml:"SnapshotThreshold"`
	SnapshotInterval   time.Duration      `yaml:"SnapshotInterval"`
	ReplicationBackend ReplicationBackend `yaml:"ReplicationBackend"`
	RaftDir            string             `yaml:"RaftDir"`
	RaftBindAddr       string             `yaml:"RaftBindAddr"`
	KafkaBrokers       []string           `yaml:"KafkaBrokers"`
	KafkaTopic         string             `yaml:"KafkaTopic"`
}

// GetConfig parses command-line flags, optionally layering a JSON/YAML
// config file on top, the same two-step precedence the teacher's loader
// uses (flags establish defaults, the file overrides them).
func GetConfig() (Config, error) {
	var kafkaBrokers []string
	flag.Func("kafka-broker", "A Kafka broker address; repeat for multiple brokers.", func(s string) error {
		kafkaBrokers = append(kafkaBrokers, strings.TrimSpace(s))
		return nil
	})

	replicationBackend := flag.String("replication-backend", string(ReplicationNone),
		"Delta replication backend: 'none', 'raft' or 'kafka'.")
	dataDir := flag.String("data-dir", ".", "Directory to store snapshots.")
	logLevel := flag.String("log-level", "info", "Logging level: debug, info, warn, error.")
	logFormat := flag.String("log-format", "production", "Logging format: production or development.")
	snapshotThreshold := flag.Uint64("snapshot-threshold", 1000, "Number of deltas that trigger a snapshot.")
	snapshotInterval := flag.Duration("snapshot-interval", 5*time.Minute, "Time interval between snapshots.")
	raftDir := flag.String("raft-dir", "./raft", "Directory for the Raft log store and snapshots.")
	raftBindAddr := flag.String("raft-bind-addr", "127.0.0.1:7481", "Bind address for the Raft transport.")
	kafkaTopic := flag.String("kafka-topic", "sorted-set-deltas", "Kafka topic deltas are published to.")
	configFile := flag.String("config", "", "Path to a JSON or YAML config file overriding the flag values.")

	flag.Parse()

	backend := ReplicationBackend(strings.ToLower(*replicationBackend))
	if !slices.Contains([]ReplicationBackend{ReplicationNone, ReplicationRaft, ReplicationKafka}, backend) {
		return Config{}, fmt.Errorf("replication-backend %q is not one of none, raft, kafka", *replicationBackend)
	}

	conf := Config{
		DataDir:            *dataDir,
		LogLevel:           *logLevel,
		LogFormat:          *logFormat,
		SnapshotThreshold:  *snapshotThreshold,
		SnapshotInterval:   *snapshotInterval,
		ReplicationBackend: backend,
		RaftDir:            *raftDir,
		RaftBindAddr:       *raftBindAddr,
		KafkaBrokers:       kafkaBrokers,
		KafkaTopic:         *kafkaTopic,
	}

	if len(*configFile) > 0 {
		if err := overrideFromFile(&conf, *configFile); err != nil {
			return Config{}, err
		}
	}

	if conf.ReplicationBackend == ReplicationKafka && len(conf.KafkaBrokers) == 0 {
		return Config{}, errors.New("kafka replication backend requires at least one --kafka-broker")
	}

	return conf, nil
}

func overrideFromFile(conf *Config, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Println(cerr)
		}
	}()

	switch path.Ext(f.Name()) {
	case ".yaml", ".yml":
		return yaml.NewDecoder(f).Decode(conf)
	case ".json":
		return json.NewDecoder(f).Decode(conf)
	default:
		return fmt.Errorf("unrecognized config file extension %q", path.Ext(f.Name()))
	}
}
