package config_test

import (
	"testing"

	"github.com/lattice-kv/zsetcore/internal/config"
)

func Test_DefaultConfig(t *testing.T) {
	conf := config.DefaultConfig()

	if conf.ReplicationBackend != config.ReplicationNone {
		t.Errorf("expected default replication backend %q, got %q", config.ReplicationNone, conf.ReplicationBackend)
	}
	if conf.SnapshotThreshold == 0 {
		t.Error("expected a non-zero default snapshot threshold")
	}
	if conf.SnapshotInterval <= 0 {
		t.Error("expected a positive default snapshot interval")
	}
	if conf.DataDir == "" {
		t.Error("expected a non-empty default data directory")
	}
}
