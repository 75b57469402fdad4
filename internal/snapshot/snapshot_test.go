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

package snapshot_test

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lattice-kv/zsetcore/internal/clock"
	"github.com/lattice-kv/zsetcore/internal/snapshot"
)

func Test_SnapshotEngine(t *testing.T) {
	mockClock := clock.NewClock()
	directory := "./testdata"
	var threshold uint64 = 5

	var snapshotInProgress atomic.Bool
	startSnapshotFunc := func() {
		if snapshotInProgress.Load() {
			t.Error("expected snapshotInProgress to be false, got true")
		}
		snapshotInProgress.Store(true)
	}
	finishSnapshotFunc := func() {
		if !snapshotInProgress.Load() {
			t.Error("expected snapshotInProgress to be true, got false")
		}
		snapshotInProgress.Store(false)
	}

	state := map[string][]byte{
		"key1": []byte("encoded-sorted-set-1"),
		"key2": []byte("encoded-sorted-set-2"),
		"key3": []byte("encoded-sorted-set-3"),
		"key4": []byte("encoded-sorted-set-4"),
		"key5": []byte("encoded-sorted-set-5"),
	}
	getStateFunc := func() (map[string][]byte, error) {
		return state, nil
	}

	restoredState := map[string][]byte{}
	restoreStateFunc := func(s map[string][]byte) error {
		for key, data := range s {
			restoredState[key] = data
		}
		return nil
	}

	var latestSnapshotTime int64
	setLatestSnapshotTimeFunc := func(msec int64) {
		latestSnapshotTime = msec
	}
	getLatestSnapshotTimeFunc := func() int64 {
		return latestSnapshotTime
	}

	snapshotEngine := snapshot.NewSnapshotEngine(
		snapshot.WithClock(mockClock),
		snapshot.WithDirectory(directory),
		snapshot.WithInterval(10*time.Millisecond),
		snapshot.WithThreshold(threshold),
		snapshot.WithStartSnapshotFunc(startSnapshotFunc),
		snapshot.WithFinishSnapshotFunc(finishSnapshotFunc),
		snapshot.WithGetStateFunc(getStateFunc),
		snapshot.WithRestoreStateFunc(restoreStateFunc),
		snapshot.WithSetLatestSnapshotTimeFunc(setLatestSnapshotTimeFunc),
		snapshot.WithGetLatestSnapshotTimeFunc(getLatestSnapshotTimeFunc),
	)

	if err := snapshotEngine.TakeSnapshot(); err != nil {
		t.Error(err)
	}

	// Add more records to the state
	for i := 0; i < 5; i++ {
		state[fmt.Sprintf("key%d", i)] = []byte(fmt.Sprintf("encoded-sorted-set-%d", i))
	}

	// Take another snapshot
	if err := snapshotEngine.TakeSnapshot(); err != nil {
		t.Error(err)
	}

	if err := snapshotEngine.Restore(); err != nil {
		t.Error(err)
	}

	if len(restoredState) != len(state) {
		t.Errorf("expected restored state to be length %d, got %d", len(state), len(restoredState))
	}

	for key, data := range restoredState {
		if string(state[key]) != string(data) {
			t.Errorf("expected data %v for key %s, got %v", state[key], key, data)
		}
	}

	_ = os.RemoveAll(directory)
}
