package sorted_set

import (
	"context"
	"math"
	"testing"

	"github.com/go-test/deep"
)

type recordingSink struct {
	deltas []Delta
}

func (r *recordingSink) Publish(_ context.Context, _ string, d Delta) error {
	r.deltas = append(r.deltas, d)
	return nil
}

func members(pairs ...any) []MemberParam {
	var out []MemberParam
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, MemberParam{Member: Value(pairs[i].(string)), Score: Score(pairs[i+1].(float64))})
	}
	return out
}

func TestAddOrUpdateBasic(t *testing.T) {
	sink := &recordingSink{}
	s := New("z", sink)
	ctx := context.Background()

	result, err := s.AddOrUpdate(ctx, members("a", 1.0, "b", 2.0), AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Added != 2 || result.Changed != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 members, got %d", s.Len())
	}
	if len(sink.deltas) != 1 || len(sink.deltas[0].Adds) != 2 {
		t.Fatalf("expected one delta with two adds, got %+v", sink.deltas)
	}
}

func TestAddOrUpdateNXXX(t *testing.T) {
	s := New("z", nil)
	ctx := context.Background()
	if _, err := s.AddOrUpdate(ctx, members("a", 1.0), AddOptions{}); err != nil {
		t.Fatal(err)
	}

	result, err := s.AddOrUpdate(ctx, members("a", 5.0, "b", 2.0), AddOptions{NX: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Added != 1 {
		t.Fatalf("expected only b to be added under NX, got %+v", result)
	}
	score, _ := s.Score("a")
	if score != 1.0 {
		t.Fatalf("NX must not update existing member a, got score %v", score)
	}

	result, err = s.AddOrUpdate(ctx, members("c", 9.0), AddOptions{XX: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Added != 0 || s.members.Contains("c") {
		t.Fatalf("XX must not add new member c, got %+v", result)
	}
}

func TestAddOrUpdateGTLT(t *testing.T) {
	s := New("z", nil)
	ctx := context.Background()
	if _, err := s.AddOrUpdate(ctx, members("a", 5.0), AddOptions{}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.AddOrUpdate(ctx, members("a", 3.0), AddOptions{GT: true}); err != nil {
		t.Fatal(err)
	}
	if score, _ := s.Score("a"); score != 5.0 {
		t.Fatalf("GT must reject a lower score, got %v", score)
	}

	if _, err := s.AddOrUpdate(ctx, members("a", 10.0), AddOptions{GT: true}); err != nil {
		t.Fatal(err)
	}
	if score, _ := s.Score("a"); score != 10.0 {
		t.Fatalf("GT must accept a higher score, got %v", score)
	}

	if _, err := s.AddOrUpdate(ctx, members("a", 20.0), AddOptions{LT: true}); err != nil {
		t.Fatal(err)
	}
	if score, _ := s.Score("a"); score != 10.0 {
		t.Fatalf("LT must reject a higher score, got %v", score)
	}
}

func TestAddOrUpdateIncr(t *testing.T) {
	s := New("z", nil)
	ctx := context.Background()

	result, err := s.AddOrUpdate(ctx, members("a", 5.0), AddOptions{Incr: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.NewScore != 5.0 {
		t.Fatalf("incr on absent member should seed at the increment, got %v", result.NewScore)
	}

	result, err = s.AddOrUpdate(ctx, members("a", 2.5), AddOptions{Incr: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.NewScore != 7.5 {
		t.Fatalf("expected 7.5 after incrementing by 2.5, got %v", result.NewScore)
	}
}

func TestIncrNaNRejected(t *testing.T) {
	s := New("z", nil)
	ctx := context.Background()
	if _, err := s.AddOrUpdate(ctx, members("a", scoreInf(1)), AddOptions{}); err != nil {
		t.Fatal(err)
	}
	_, err := s.AddOrUpdate(ctx, members("a", scoreInf(-1)), AddOptions{Incr: true})
	if err != ErrOperationProducedNaN {
		t.Fatalf("expected ErrOperationProducedNaN, got %v", err)
	}
}

func scoreInf(sign float64) float64 {
	return math.Inf(int(sign))
}

func TestRemoveEmitsDelta(t *testing.T) {
	sink := &recordingSink{}
	s := New("z", sink)
	ctx := context.Background()
	s.AddOrUpdate(ctx, members("a", 1.0, "b", 2.0), AddOptions{})

	removed, err := s.Remove(ctx, []Value{"a", "missing"})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 remaining member, got %d", s.Len())
	}
	last := sink.deltas[len(sink.deltas)-1]
	if diff := deep.Equal(last.Rems, []Value{"a"}); diff != nil {
		t.Fatalf("unexpected delta: %v", diff)
	}
}

func buildSet(t *testing.T) *SortedSet {
	t.Helper()
	s := New("z", nil)
	_, err := s.AddOrUpdate(context.Background(), members(
		"a", 1.0, "b", 2.0, "c", 2.0, "d", 3.0, "e", 5.0,
	), AddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRankAndRange(t *testing.T) {
	s := buildSet(t)

	if rank, ok := s.Rank("a"); !ok || rank != 0 {
		t.Fatalf("expected a at rank 0, got %d, %v", rank, ok)
	}
	if rank, ok := s.RevRank("a"); !ok || rank != 4 {
		t.Fatalf("expected a at rev rank 4, got %d, %v", rank, ok)
	}

	items := s.Range(0, -1)
	if len(items) != 5 {
		t.Fatalf("expected all 5 members, got %d", len(items))
	}
	if items[0].Member != "a" || items[4].Member != "e" {
		t.Fatalf("unexpected ascending order: %+v", items)
	}

	rev := s.RevRange(0, 1)
	if len(rev) != 2 || rev[0].Member != "e" || rev[1].Member != "d" {
		t.Fatalf("unexpected descending slice: %+v", rev)
	}
}

func TestRangeByScore(t *testing.T) {
	s := buildSet(t)

	items := s.RangeByScore(ScoreRange{Score: 2, Exclusive: false}, ScoreRange{Score: 3, Exclusive: false}, -1, -1)
	if len(items) != 3 {
		t.Fatalf("expected b,c,d inclusive, got %+v", items)
	}

	items = s.RangeByScore(ScoreRange{Score: 2, Exclusive: true}, ScoreRange{Score: 3, Exclusive: false}, -1, -1)
	if len(items) != 1 || items[0].Member != "d" {
		t.Fatalf("expected only d with exclusive min 2, got %+v", items)
	}
}

func TestRevRangeByScore(t *testing.T) {
	s := buildSet(t)

	items := s.RevRangeByScore(ScoreRange{Score: 2, Exclusive: false}, ScoreRange{Score: 3, Exclusive: false}, -1, -1)
	got := make([]string, len(items))
	for i, e := range items {
		got[i] = string(e.Member)
	}
	if diff := deep.Equal(got, []string{"d", "c", "b"}); diff != nil {
		t.Fatalf("unexpected descending score range: %v", diff)
	}

	// A score range that falls strictly between two members' scores must
	// return nothing, not a spurious out-of-range entry.
	empty := s.RevRangeByScore(ScoreRange{Score: 2.5, Exclusive: false}, ScoreRange{Score: 2.5, Exclusive: false}, -1, -1)
	if len(empty) != 0 {
		t.Fatalf("expected no members between existing scores, got %+v", empty)
	}

	limited := s.RevRangeByScore(ScoreRange{Score: 1, Exclusive: false}, ScoreRange{Score: 5, Exclusive: false}, 1, 2)
	got = make([]string, len(limited))
	for i, e := range limited {
		got[i] = string(e.Member)
	}
	if diff := deep.Equal(got, []string{"d", "c"}); diff != nil {
		t.Fatalf("unexpected limited descending range: %v", diff)
	}
}

func TestCountByScore(t *testing.T) {
	s := buildSet(t)
	count := s.CountByScore(ScoreRange{Score: 2}, ScoreRange{Score: 5})
	if count != 4 {
		t.Fatalf("expected 4 members in [2,5], got %d", count)
	}
}

func TestRangeByLex(t *testing.T) {
	s := New("z", nil)
	s.AddOrUpdate(context.Background(), members("a", 0.0, "b", 0.0, "c", 0.0, "d", 0.0), AddOptions{})

	items := s.RangeByLex(
		LexRange{Member: "b", Exclusive: false},
		LexRange{Member: "d", Exclusive: true},
		-1, -1,
	)
	got := make([]string, len(items))
	for i, e := range items {
		got[i] = string(e.Member)
	}
	if diff := deep.Equal(got, []string{"b", "c"}); diff != nil {
		t.Fatalf("unexpected lex range: %v", diff)
	}
}

func TestPopMax(t *testing.T) {
	s := buildSet(t)
	popped, err := s.PopMax(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(popped) != 2 || popped[0].Member != "e" || popped[1].Member != "d" {
		t.Fatalf("unexpected pop order: %+v", popped)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 remaining, got %d", s.Len())
	}
}

func TestApplyDeltaReplaysWithoutReemitting(t *testing.T) {
	sink := &recordingSink{}
	s := New("z", sink)
	delta := Delta{Adds: []MemberScore{{Member: "a", ScoreBytes: []byte("1")}}}

	if err := s.ApplyDelta(delta); err != nil {
		t.Fatal(err)
	}
	if len(sink.deltas) != 0 {
		t.Fatalf("ApplyDelta must not re-publish to the sink, got %+v", sink.deltas)
	}
	if score, ok := s.Score("a"); !ok || score != 1 {
		t.Fatalf("expected a=1 after replay, got %v %v", score, ok)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	s := buildSet(t)
	data, err := s.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	restored := New("z2", nil)
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if restored.Len() != s.Len() {
		t.Fatalf("expected %d members after round trip, got %d", s.Len(), restored.Len())
	}
	for _, e := range s.All() {
		score, ok := restored.Score(e.Member)
		if !ok || score != e.ScoreVal {
			t.Fatalf("member %s mismatch after round trip: %v %v vs %v", e.Member, score, ok, e.ScoreVal)
		}
	}
}

func TestScoreCanonicalization(t *testing.T) {
	cases := map[string]string{
		"5.50":  "5.5",
		"5.000": "5",
		"5":     "5",
	}
	for raw, want := range cases {
		score, err := ParseScore(raw)
		if err != nil {
			t.Fatal(err)
		}
		got := string(CanonicalScoreBytes(score))
		if got != want {
			t.Fatalf("canonicalization of %q: got %q, want %q", raw, got, want)
		}
	}
}

func TestSentinelCompareSameKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic comparing two LEAST sentinels")
		}
	}()
	compareMembers(leastProbe(0), leastProbe(0))
}
