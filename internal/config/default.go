package config

import "time"

// DefaultConfig returns the configuration a keyspace runs with when no
// flags or config file are supplied - standalone, no replication, snapshots
// every 5 minutes.
func DefaultConfig() Config {
	return Config{
		DataDir:            ".",
		LogLevel:           "info",
		LogFormat:          "production",
		SnapshotThreshold:  1000,
		SnapshotInterval:   5 * time.Minute,
		ReplicationBackend: ReplicationNone,
		RaftDir:            "./raft",
		RaftBindAddr:       "127.0.0.1:7481",
		KafkaTopic:         "sorted-set-deltas",
	}
}
