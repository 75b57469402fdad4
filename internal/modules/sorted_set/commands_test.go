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

package sorted_set

import (
	"context"
	"testing"

	core "github.com/lattice-kv/zsetcore/internal/sorted_set"
)

func seedSet(t *testing.T) *core.SortedSet {
	t.Helper()
	set := core.New("myset", nil)
	_, err := ZAdd(context.Background(), set, []core.MemberParam{
		{Member: "a", Score: 1},
		{Member: "b", Score: 2},
		{Member: "c", Score: 3},
	}, ZAddOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestZAddOptionValidation(t *testing.T) {
	set := core.New("s", nil)
	_, err := ZAdd(context.Background(), set, []core.MemberParam{{Member: "a", Score: 1}}, ZAddOptions{NX: true, XX: true})
	if err != ErrBadOptionCombination {
		t.Fatalf("expected ErrBadOptionCombination, got %v", err)
	}
}

func TestZAddCHReportsChangedCount(t *testing.T) {
	set := seedSet(t)
	result, err := ZAdd(context.Background(), set, []core.MemberParam{{Member: "a", Score: 99}}, ZAddOptions{CH: true})
	if err != nil {
		t.Fatal(err)
	}
	if result.Count != 1 {
		t.Fatalf("expected CH to count the update, got %+v", result)
	}
}

func TestZIncrBy(t *testing.T) {
	set := seedSet(t)
	newScore, err := ZIncrBy(context.Background(), set, "a", 4)
	if err != nil {
		t.Fatal(err)
	}
	if newScore != 5 {
		t.Fatalf("expected 5, got %v", newScore)
	}
}

func TestZRemZCard(t *testing.T) {
	set := seedSet(t)
	if ZCard(set) != 3 {
		t.Fatalf("expected 3 members")
	}
	removed, err := ZRem(context.Background(), set, []core.Value{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 || ZCard(set) != 2 {
		t.Fatalf("expected 1 removed and 2 remaining, got removed=%d card=%d", removed, ZCard(set))
	}
}

func TestZScoreZRankZRevRank(t *testing.T) {
	set := seedSet(t)
	if score, ok := ZScore(set, "b"); !ok || score != 2 {
		t.Fatalf("unexpected score: %v %v", score, ok)
	}
	if rank, ok := ZRank(set, "b"); !ok || rank != 1 {
		t.Fatalf("unexpected rank: %v %v", rank, ok)
	}
	if rank, ok := ZRevRank(set, "b"); !ok || rank != 1 {
		t.Fatalf("unexpected rev rank: %v %v", rank, ok)
	}
	if _, ok := ZScore(set, "missing"); ok {
		t.Fatalf("expected missing member to report not found")
	}
}

func TestZRangeAndZRevRange(t *testing.T) {
	set := seedSet(t)
	items := ZRange(set, 0, -1)
	if len(items) != 3 || items[0].Member != "a" || items[2].Member != "c" {
		t.Fatalf("unexpected range: %+v", items)
	}
	rev := ZRevRange(set, 0, 0)
	if len(rev) != 1 || rev[0].Member != "c" {
		t.Fatalf("unexpected rev range: %+v", rev)
	}
}

func TestParseScoreBound(t *testing.T) {
	b, err := ParseScoreBound("(5")
	if err != nil {
		t.Fatal(err)
	}
	if !b.Exclusive || b.Value != 5 {
		t.Fatalf("unexpected bound: %+v", b)
	}

	b, err = ParseScoreBound("-inf")
	if err != nil {
		t.Fatal(err)
	}
	if b.Exclusive {
		t.Fatalf("-inf must be inclusive by default")
	}
}

func TestZCountAndZRangeByScore(t *testing.T) {
	set := seedSet(t)
	min, _ := ParseScoreBound("1")
	max, _ := ParseScoreBound("2")
	if count := ZCount(set, min, max); count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
	items := ZRangeByScore(set, min, max, nil)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
}

func TestZRevRangeByScore(t *testing.T) {
	set := seedSet(t)
	min, _ := ParseScoreBound("1")
	max, _ := ParseScoreBound("3")
	items := ZRevRangeByScore(set, min, max, nil)
	if len(items) != 3 || items[0].Member != "c" || items[1].Member != "b" || items[2].Member != "a" {
		t.Fatalf("unexpected reverse score range: %+v", items)
	}

	// A range strictly between two scored members must return nothing.
	betweenMin, _ := ParseScoreBound("1.5")
	betweenMax, _ := ParseScoreBound("1.5")
	if items := ZRevRangeByScore(set, betweenMin, betweenMax, nil); len(items) != 0 {
		t.Fatalf("expected no members between existing scores, got %+v", items)
	}

	limited := ZRevRangeByScore(set, min, max, &Limit{Offset: 1, Count: 1})
	if len(limited) != 1 || limited[0].Member != "b" {
		t.Fatalf("unexpected limited reverse score range: %+v", limited)
	}
}

func TestParseLexBound(t *testing.T) {
	b, err := ParseLexBound("[abc")
	if err != nil {
		t.Fatal(err)
	}
	if b.Exclusive || b.Member != "abc" {
		t.Fatalf("unexpected bound: %+v", b)
	}
	b, err = ParseLexBound("-")
	if err != nil {
		t.Fatal(err)
	}
	if !b.Unbounded {
		t.Fatalf("expected unbounded for '-'")
	}
	if _, err := ParseLexBound("abc"); err == nil {
		t.Fatalf("expected error for token missing prefix")
	}
}

func TestZRangeByLex(t *testing.T) {
	set := core.New("lex", nil)
	ZAdd(context.Background(), set, []core.MemberParam{
		{Member: "a", Score: 0}, {Member: "b", Score: 0}, {Member: "c", Score: 0},
	}, ZAddOptions{})

	min, _ := ParseLexBound("[a")
	max, _ := ParseLexBound("(c")
	items := ZRangeByLex(set, min, max, nil)
	if len(items) != 2 || items[0].Member != "a" || items[1].Member != "b" {
		t.Fatalf("unexpected lex range: %+v", items)
	}
}

func TestZPopMax(t *testing.T) {
	set := seedSet(t)
	items, err := ZPopMax(context.Background(), set, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Member != "c" {
		t.Fatalf("unexpected pop: %+v", items)
	}
}

func TestApplyDeltaThroughCommandLayer(t *testing.T) {
	set := core.New("s", nil)
	err := ApplyDelta(set, core.Delta{Adds: []core.MemberScore{{Member: "x", ScoreBytes: []byte("3")}}})
	if err != nil {
		t.Fatal(err)
	}
	if score, ok := ZScore(set, "x"); !ok || score != 3 {
		t.Fatalf("unexpected result after ApplyDelta: %v %v", score, ok)
	}
}
