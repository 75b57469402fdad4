// Package keyspace is the thin external collaborator that owns a
// map of sorted sets by key, the connective tissue SPEC_FULL.md describes
// but spec.md itself treats as outside the core's concern: which key maps
// to which *sorted_set.SortedSet, and what happens when a mutation leaves
// one empty.
package keyspace

import (
	"sync"

	core "github.com/lattice-kv/zsetcore/internal/sorted_set"
)

// Keyspace owns every sorted set in a running process, keyed by name. It is
// the simplest possible external collaborator satisfying §4.6's
// empty-set-disposal contract and §5's per-key lock: one *SortedSet per key,
// created on first write, removed once it reports empty.
type Keyspace struct {
	mu   sync.RWMutex
	sets map[string]*core.SortedSet
	sink core.Sink
}

// New constructs an empty keyspace whose sets all publish deltas to sink.
func New(sink core.Sink) *Keyspace {
	return &Keyspace{sets: make(map[string]*core.SortedSet), sink: sink}
}

// GetOrCreate returns the sorted set for key, creating an empty one on
// first access.
func (k *Keyspace) GetOrCreate(key string) *core.SortedSet {
	k.mu.RLock()
	set, ok := k.sets[key]
	k.mu.RUnlock()
	if ok {
		return set
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if set, ok = k.sets[key]; ok {
		return set
	}
	set = core.New(key, k.sink)
	k.sets[key] = set
	return set
}

// Get returns the sorted set for key, if one has been created.
func (k *Keyspace) Get(key string) (*core.SortedSet, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	set, ok := k.sets[key]
	return set, ok
}

// DisposeIfEmpty implements §4.6: after a mutating command, the caller
// checks whether the set it just touched is now empty and, if so, removes
// it from the keyspace entirely rather than leaving a zero-member set
// around forever.
func (k *Keyspace) DisposeIfEmpty(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if set, ok := k.sets[key]; ok && set.IsEmpty() {
		delete(k.sets, key)
	}
}

// ApplyDelta replays a delta received from replication against key,
// creating the set if this is its first mutation.
func (k *Keyspace) ApplyDelta(key string, delta core.Delta) error {
	set := k.GetOrCreate(key)
	set.Lock()
	defer set.Unlock()
	if err := set.ApplyDelta(delta); err != nil {
		return err
	}
	if set.IsEmpty() {
		k.DisposeIfEmpty(key)
	}
	return nil
}

// Snapshot returns every set's MarshalBinary encoding, keyed by name.
func (k *Keyspace) Snapshot() (map[string][]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make(map[string][]byte, len(k.sets))
	for key, set := range k.sets {
		set.Lock()
		data, err := set.MarshalBinary()
		set.Unlock()
		if err != nil {
			return nil, err
		}
		out[key] = data
	}
	return out, nil
}

// Restore replaces the keyspace's contents with the given per-key snapshot
// data, in the format produced by Snapshot.
func (k *Keyspace) Restore(state map[string][]byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	sets := make(map[string]*core.SortedSet, len(state))
	for key, data := range state {
		set := core.New(key, k.sink)
		if err := set.UnmarshalBinary(data); err != nil {
			return err
		}
		sets[key] = set
	}
	k.sets = sets
	return nil
}

// Len returns the number of keys currently tracked. A set created by
// GetOrCreate is counted even while empty, until DisposeIfEmpty removes it.
func (k *Keyspace) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.sets)
}
