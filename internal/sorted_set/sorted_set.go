package sorted_set

import (
	"context"
	"sync"
)

// MemberParam is one (member, score) pair supplied to AddOrUpdate, mirroring
// the shape callers build from command arguments.
type MemberParam struct {
	Member Value
	Score  Score
}

// AddOptions mirrors ZADD's option flags as a typed struct rather than the
// loose interface{}/string-token flags an earlier revision of this package
// used - the option struct makes illegal combinations (e.g. NX and XX both
// set) representable but still cheap for the command layer to validate
// once, up front, instead of re-parsing tokens on every member.
type AddOptions struct {
	NX   bool // only add new members, never update
	XX   bool // only update existing members, never add
	GT   bool // only update if the new score is greater
	LT   bool // only update if the new score is less
	CH   bool // AddResult.Changed counts updates as well as adds
	Incr bool // treat the single score as an increment, not an assignment
}

// AddResult reports what AddOrUpdate actually did, giving the command layer
// everything it needs to compute ZADD's various return shapes (count added,
// count changed, or the new score under INCR) without re-deriving them.
type AddResult struct {
	Added    int
	Changed  int
	NewScore Score // meaningful only when len(members) == 1 && Incr
	Applied  bool  // false when an Incr was suppressed by NX/XX/GT/LT
}

// SortedSet is the dual-indexed core: a MemberMap for O(1) membership and
// score lookup, and a Tree for O(log n) order-statistics over the same
// entries. Every mutator removes an entry from the tree before mutating its
// score and reinserts it afterward, keeping the two indexes in lockstep.
//
// SortedSet does not lock itself around reads the way a typical Go
// container would; per this package's concurrency contract the external
// caller holds the set's lock (via Lock/Unlock) for the whole command,
// including reads, and the methods below assume that lock is already held.
type SortedSet struct {
	mu sync.Mutex

	key     string
	members *MemberMap
	tree    *Tree
	sink    Sink
}

// New constructs an empty set that publishes deltas for key to sink. A nil
// sink is replaced with NoopSink so callers that don't care about
// replication can pass nothing.
func New(key string, sink Sink) *SortedSet {
	if sink == nil {
		sink = NoopSink{}
	}
	return &SortedSet{key: key, members: newMemberMap(), tree: &Tree{}, sink: sink}
}

// Lock and Unlock expose the set's per-instance exclusive lock. A
// standalone caller (as in this package's own tests) can use them directly;
// an embedding executor that already serializes access per key by some
// other mechanism may choose not to call them at all, since nothing inside
// SortedSet takes the lock on its own.
func (s *SortedSet) Lock()   { s.mu.Lock() }
func (s *SortedSet) Unlock() { s.mu.Unlock() }

// Key returns the set's owning key, as supplied to New.
func (s *SortedSet) Key() string { return s.key }

// Len returns the number of members (ZCARD).
func (s *SortedSet) Len() int { return s.members.Len() }

// IsEmpty reports whether the set has no members. Per §4.6, a command that
// leaves a set empty signals its collaborator to dispose of the key
// entirely; this package only reports the condition, it does not act on it.
func (s *SortedSet) IsEmpty() bool { return s.members.Len() == 0 }

// Score returns the member's current score (ZSCORE).
func (s *SortedSet) Score(member Value) (Score, bool) {
	e, ok := s.members.Get(member)
	if !ok {
		return 0, false
	}
	return e.ScoreVal, true
}

// upsert applies a single (member, score) pair to both indexes and reports
// whether the member was newly created and whether its score actually
// changed. The caller is responsible for NX/XX/GT/LT gating before calling
// this - by the time upsert runs, the write is unconditional.
func (s *SortedSet) upsert(member Value, score Score) (isNew, changed bool, entry *Entry) {
	existing, ok := s.members.Get(member)
	if !ok {
		e := newEntry(member, score)
		s.members.Set(member, e)
		s.tree.Add(e)
		return true, true, e
	}
	newBytes := CanonicalScoreBytes(score)
	changed = string(existing.ScoreBytes) != string(newBytes)
	if changed {
		s.tree.Remove(existing)
		existing.ScoreVal = score
		existing.ScoreBytes = newBytes
		s.tree.Add(existing)
	}
	return false, changed, existing
}

// AddOrUpdate implements ZADD/ZINCRBY's member-by-member semantics over a
// batch, honoring NX/XX/GT/LT/CH/INCR, and emits a single Delta for the
// whole batch to the set's Sink before returning.
func (s *SortedSet) AddOrUpdate(ctx context.Context, members []MemberParam, opts AddOptions) (AddResult, error) {
	var result AddResult
	var delta Delta

	for _, mp := range members {
		existing, exists := s.members.Get(mp.Member)

		if opts.NX && exists {
			continue
		}
		if opts.XX && !exists {
			continue
		}

		newScore := mp.Score
		if opts.Incr && exists {
			sum, err := addScores(existing.ScoreVal, mp.Score)
			if err != nil {
				return AddResult{}, err
			}
			newScore = sum
		}

		if exists && (opts.GT || opts.LT) && !gtltAllows(opts, existing.ScoreVal, newScore) {
			continue
		}

		isNew, changed, entry := s.upsert(mp.Member, newScore)
		if isNew {
			result.Added++
		}
		if changed {
			if opts.CH || isNew {
				result.Changed++
			}
			delta.Adds = append(delta.Adds, MemberScore{Member: entry.Member, ScoreBytes: entry.ScoreBytes})
		}
		if opts.Incr {
			result.NewScore = entry.ScoreVal
			result.Applied = true
		}
	}

	if !delta.Empty() {
		if err := s.sink.Publish(ctx, s.key, delta); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Remove deletes the given members (ZREM), returning how many were present.
func (s *SortedSet) Remove(ctx context.Context, members []Value) (int, error) {
	var delta Delta
	removed := 0
	for _, member := range members {
		e, ok := s.members.Get(member)
		if !ok {
			continue
		}
		s.tree.Remove(e)
		s.members.Delete(member)
		removed++
		delta.Rems = append(delta.Rems, member)
	}
	if !delta.Empty() {
		if err := s.sink.Publish(ctx, s.key, delta); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// Rank returns member's zero-based ascending rank (ZRANK).
func (s *SortedSet) Rank(member Value) (int, bool) {
	e, ok := s.members.Get(member)
	if !ok {
		return 0, false
	}
	return s.tree.IndexOf(e), true
}

// RevRank returns member's zero-based descending rank (ZREVRANK).
func (s *SortedSet) RevRank(member Value) (int, bool) {
	e, ok := s.members.Get(member)
	if !ok {
		return 0, false
	}
	return s.tree.Size() - 1 - s.tree.IndexOf(e), true
}

// ScoreRange describes one endpoint of a ZCOUNT/ZRANGEBYSCORE/
// ZREVRANGEBYSCORE query.
type ScoreRange struct {
	Score     Score
	Exclusive bool
}

// CountByScore returns the number of members whose score falls within
// [min, max] (ZCOUNT), honoring each endpoint's exclusivity.
func (s *SortedSet) CountByScore(min, max ScoreRange) int {
	lo := scoreProbe(min.Score, min.Exclusive, true)
	hi := scoreProbe(max.Score, max.Exclusive, false)
	return s.tree.IndexOf(hi) - s.tree.IndexOf(lo)
}

// RangeByScore returns members with score in [min, max] in ascending order
// (ZRANGEBYSCORE), honoring offset/count as a LIMIT clause applied after the
// range is resolved. count < 0 means unbounded.
func (s *SortedSet) RangeByScore(min, max ScoreRange, offset, count int) []*Entry {
	lo := scoreProbe(min.Score, min.Exclusive, true)
	hi := scoreProbe(max.Score, max.Exclusive, false)
	start := s.tree.IndexOf(lo)
	end := s.tree.IndexOf(hi)
	return s.sliceAscending(start, end, offset, count)
}

// RevRangeByScore returns the same members as RangeByScore but in descending
// order (ZREVRANGEBYSCORE). min/max are still passed in (min, max) order by
// value; minIndex/maxIndex describe the same ascending [minIndex, maxIndex)
// tree window RangeByScore uses, but sliceDescending walks it from its high
// end (maxIndex-1) down to its low end (minIndex), since that's the window's
// last member in ascending order and its first in descending order.
func (s *SortedSet) RevRangeByScore(min, max ScoreRange, offset, count int) []*Entry {
	lo := scoreProbe(min.Score, min.Exclusive, true)
	hi := scoreProbe(max.Score, max.Exclusive, false)
	minIndex := s.tree.IndexOf(lo)
	maxIndex := s.tree.IndexOf(hi)
	return s.sliceDescending(maxIndex-1, minIndex, offset, count)
}

// LexRange describes one endpoint of a ZRANGEBYLEX query. Unbounded
// indicates "-"/"+".
type LexRange struct {
	Member    Value
	Exclusive bool
	Unbounded bool
}

// RangeByLex returns members in [min, max] by byte ordering, assuming every
// member in the set shares the same score - behavior is unspecified (and,
// per this package's design notes, not guaranteed useful) when scores
// differ, since lex ordering only has meaning within one score band.
func (s *SortedSet) RangeByLex(min, max LexRange, offset, count int) []*Entry {
	first := s.tree.Get(0)
	if first == nil {
		return nil
	}
	band := first.ScoreVal

	var lo, hi *Entry
	if min.Unbounded {
		lo = leastProbe(band)
	} else {
		lo = lexProbe(min.Member, band, min.Exclusive, true)
	}
	if max.Unbounded {
		hi = greatestProbe(band)
	} else {
		hi = lexProbe(max.Member, band, max.Exclusive, false)
	}
	start := s.tree.IndexOf(lo)
	end := s.tree.IndexOf(hi)
	return s.sliceAscending(start, end, offset, count)
}

// Range returns the members at ascending ranks [start, stop] inclusive,
// resolving negative indices the Redis way (-1 is the last element), for
// ZRANGE.
func (s *SortedSet) Range(start, stop int) []*Entry {
	lo, hi, ok := resolveRankBounds(start, stop, s.tree.Size())
	if !ok {
		return nil
	}
	return s.sliceAscending(lo, hi+1, -1, -1)
}

// RevRange returns the members at descending ranks [start, stop] inclusive
// (ZREVRANGE).
func (s *SortedSet) RevRange(start, stop int) []*Entry {
	lo, hi, ok := resolveRankBounds(start, stop, s.tree.Size())
	if !ok {
		return nil
	}
	size := s.tree.Size()
	return s.sliceDescending(size-1-lo, size-1-hi, -1, -1)
}

func resolveRankBounds(start, stop, size int) (lo, hi int, ok bool) {
	if size == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += size
	}
	if stop < 0 {
		stop += size
	}
	if start < 0 {
		start = 0
	}
	if stop >= size {
		stop = size - 1
	}
	if start > stop || start >= size {
		return 0, 0, false
	}
	return start, stop, true
}

// sliceAscending reads entries at tree indices [begin, end) then applies an
// offset/count LIMIT on top of that window; offset/count < 0 disables the
// limit.
func (s *SortedSet) sliceAscending(begin, end, offset, count int) []*Entry {
	if begin >= end {
		return nil
	}
	if offset > 0 {
		begin += offset
	}
	if begin >= end {
		return nil
	}
	cursor := s.tree.GetIndexRange(begin, end-begin, false)
	return drainCursor(cursor, count)
}

func (s *SortedSet) sliceDescending(begin, end, offset, count int) []*Entry {
	if begin < end {
		return nil
	}
	if offset > 0 {
		begin -= offset
	}
	if begin < end {
		return nil
	}
	cursor := s.tree.GetIndexRange(begin, begin-end+1, true)
	return drainCursor(cursor, count)
}

func drainCursor(c *RangeCursor, count int) []*Entry {
	var out []*Entry
	for count < 0 || len(out) < count {
		e, ok := c.Next()
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out
}

// PopMax removes and returns up to count members with the highest scores,
// highest first (ZPOPMAX).
func (s *SortedSet) PopMax(ctx context.Context, count int) ([]*Entry, error) {
	if count <= 0 || s.tree.Size() == 0 {
		return nil, nil
	}
	cursor := s.tree.GetIndexRange(s.tree.Size()-1, count, true)
	var popped []*Entry
	var delta Delta
	for {
		e, ok := cursor.Next()
		if !ok {
			break
		}
		cursor.RemoveLast()
		s.members.Delete(e.Member)
		popped = append(popped, e)
		delta.Rems = append(delta.Rems, e.Member)
	}
	if !delta.Empty() {
		if err := s.sink.Publish(ctx, s.key, delta); err != nil {
			return popped, err
		}
	}
	return popped, nil
}

// ApplyDelta replays a Delta produced by this package (typically received
// from a replication collaborator) without re-emitting it to the Sink -
// doing otherwise would echo every replicated mutation back into the
// replication stream.
func (s *SortedSet) ApplyDelta(delta Delta) error {
	for _, add := range delta.Adds {
		score, err := ParseScore(string(add.ScoreBytes))
		if err != nil {
			return err
		}
		s.upsert(add.Member, score)
	}
	for _, member := range delta.Rems {
		if e, ok := s.members.Get(member); ok {
			s.tree.Remove(e)
			s.members.Delete(member)
		}
	}
	return nil
}

// All returns every entry in ascending order. Per-command range operations
// use Range/RangeByScore/RangeByLex instead so they don't pay for a full
// scan.
func (s *SortedSet) All() []*Entry {
	return s.tree.InOrder()
}

// HeapSize reports an estimate of the set's memory footprint in bytes,
// summing the MemberMap's estimate (the tree reuses the same *Entry
// pointers, so its own nodes only add a small constant per member).
func (s *SortedSet) HeapSize() int {
	const treeNodeOverhead = 40
	return s.members.HeapSize() + s.tree.Size()*treeNodeOverhead
}
