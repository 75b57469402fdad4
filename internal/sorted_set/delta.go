package sorted_set

import "context"

// MemberScore is one (member, canonical score bytes) pair inside an AddsDelta.
type MemberScore struct {
	Member     Value
	ScoreBytes []byte
}

// Delta describes the net effect of one mutating command on a set, in the
// order its entries must be replayed to reproduce the result: all adds
// (including score updates, which are modeled as an add of the new score)
// first, then all removals. A command that both updates members and expires
// the set down to nothing still emits one Delta for the mutation; emptiness
// is communicated separately (see §4.6) rather than folded into the delta
// shape.
type Delta struct {
	Adds []MemberScore
	Rems []Value
}

// Empty reports whether the delta carries no changes and can be skipped.
func (d Delta) Empty() bool {
	return len(d.Adds) == 0 && len(d.Rems) == 0
}

// Sink is the interface an external replication collaborator implements to
// receive deltas as they are produced. Publish is called synchronously,
// inside the set's per-key lock, once per mutating command - the caller
// decides whether that means fire-and-forget to an in-memory channel or a
// blocking round trip to a replication log; this package only guarantees
// ordering and that a delta is never emitted twice for the same mutation.
type Sink interface {
	Publish(ctx context.Context, key string, delta Delta) error
}

// NoopSink discards every delta. It is the default when a set is
// constructed without an explicit Sink, so the core works standalone
// without forcing every caller to plumb one through.
type NoopSink struct{}

func (NoopSink) Publish(context.Context, string, Delta) error { return nil }
