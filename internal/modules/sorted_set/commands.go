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

// Package sorted_set is the command layer over internal/sorted_set's core:
// one function per in-scope command, operating on native Go values rather
// than wire-protocol tokens. Parsing a request into these types (and
// encoding the result back out) is a transport collaborator's job; this
// package only ever sees and returns Go values.
package sorted_set

import (
	"context"
	"errors"

	core "github.com/lattice-kv/zsetcore/internal/sorted_set"
)

// ErrBadOptionCombination is returned when a caller sets mutually exclusive
// ZADD flags (NX+XX, GT+LT, or GT/LT+NX).
var ErrBadOptionCombination = errors.New("sorted_set: incompatible option flags")

// ZAddOptions mirrors ZADD's flags.
type ZAddOptions struct {
	NX   bool
	XX   bool
	GT   bool
	LT   bool
	CH   bool
	Incr bool
}

// ZAddResult is ZADD's return shape: either a count (added, or added+changed
// under CH) or, under INCR, the member's new score.
type ZAddResult struct {
	Count    int
	NewScore core.Score
	Applied  bool // meaningful only under Incr: false means the update was suppressed by NX/XX/GT/LT
}

func (o ZAddOptions) toCoreOptions() core.AddOptions {
	return core.AddOptions{NX: o.NX, XX: o.XX, GT: o.GT, LT: o.LT, CH: o.CH, Incr: o.Incr}
}

func (o ZAddOptions) validate() error {
	if o.NX && o.XX {
		return ErrBadOptionCombination
	}
	if o.GT && o.LT {
		return ErrBadOptionCombination
	}
	if o.NX && (o.GT || o.LT) {
		return ErrBadOptionCombination
	}
	return nil
}

// ZAdd adds or updates members in set, honoring opts, under the set's lock
// for the whole operation.
func ZAdd(ctx context.Context, set *core.SortedSet, members []core.MemberParam, opts ZAddOptions) (ZAddResult, error) {
	if err := opts.validate(); err != nil {
		return ZAddResult{}, err
	}
	set.Lock()
	defer set.Unlock()

	result, err := set.AddOrUpdate(ctx, members, opts.toCoreOptions())
	if err != nil {
		return ZAddResult{}, err
	}
	out := ZAddResult{NewScore: result.NewScore, Applied: result.Applied}
	if opts.CH {
		out.Count = result.Changed
	} else {
		out.Count = result.Added
	}
	return out, nil
}

// ZIncrBy increments member's score by delta, creating the member at score
// delta if it does not already exist.
func ZIncrBy(ctx context.Context, set *core.SortedSet, member core.Value, delta core.Score) (core.Score, error) {
	set.Lock()
	defer set.Unlock()

	result, err := set.AddOrUpdate(ctx, []core.MemberParam{{Member: member, Score: delta}}, core.AddOptions{Incr: true})
	if err != nil {
		return 0, err
	}
	return result.NewScore, nil
}

// ZRem removes members from set, returning how many were present.
func ZRem(ctx context.Context, set *core.SortedSet, members []core.Value) (int, error) {
	set.Lock()
	defer set.Unlock()
	return set.Remove(ctx, members)
}

// ZCard returns the number of members in set.
func ZCard(set *core.SortedSet) int {
	set.Lock()
	defer set.Unlock()
	return set.Len()
}

// ZScore returns member's score, if present.
func ZScore(set *core.SortedSet, member core.Value) (core.Score, bool) {
	set.Lock()
	defer set.Unlock()
	return set.Score(member)
}

// ZRank returns member's ascending rank, if present.
func ZRank(set *core.SortedSet, member core.Value) (int, bool) {
	set.Lock()
	defer set.Unlock()
	return set.Rank(member)
}

// ZRevRank returns member's descending rank, if present.
func ZRevRank(set *core.SortedSet, member core.Value) (int, bool) {
	set.Lock()
	defer set.Unlock()
	return set.RevRank(member)
}

// RangeItem is one (member, score) result row from a range-shaped command.
type RangeItem struct {
	Member core.Value
	Score  core.Score
}

func entriesToItems(entries []*core.Entry) []RangeItem {
	if len(entries) == 0 {
		return nil
	}
	out := make([]RangeItem, len(entries))
	for i, e := range entries {
		out[i] = RangeItem{Member: e.Member, Score: e.ScoreVal}
	}
	return out
}

// ZRange returns the members at ascending ranks [start, stop].
func ZRange(set *core.SortedSet, start, stop int) []RangeItem {
	set.Lock()
	defer set.Unlock()
	return entriesToItems(set.Range(start, stop))
}

// ZRevRange returns the members at descending ranks [start, stop].
func ZRevRange(set *core.SortedSet, start, stop int) []RangeItem {
	set.Lock()
	defer set.Unlock()
	return entriesToItems(set.RevRange(start, stop))
}

// ScoreBound is one endpoint of a score-range command, parsed from the
// "(score"/"score"/"-inf"/"+inf" token conventions ZCOUNT and
// ZRANGEBYSCORE share.
type ScoreBound struct {
	Value     core.Score
	Exclusive bool
}

// ParseScoreBound parses a single score-range token.
func ParseScoreBound(token string) (ScoreBound, error) {
	exclusive := false
	if len(token) > 0 && token[0] == '(' {
		exclusive = true
		token = token[1:]
	}
	score, err := core.ParseScore(token)
	if err != nil {
		return ScoreBound{}, err
	}
	return ScoreBound{Value: score, Exclusive: exclusive}, nil
}

func (b ScoreBound) toRange() core.ScoreRange {
	return core.ScoreRange{Score: b.Value, Exclusive: b.Exclusive}
}

// Limit is an optional LIMIT offset/count clause; a nil *Limit means no
// limit was supplied (return everything in range).
type Limit struct {
	Offset int
	Count  int
}

func (l *Limit) offsetCount() (int, int) {
	if l == nil {
		return -1, -1
	}
	return l.Offset, l.Count
}

// ZCount returns the number of members with score in [min, max].
func ZCount(set *core.SortedSet, min, max ScoreBound) int {
	set.Lock()
	defer set.Unlock()
	return set.CountByScore(min.toRange(), max.toRange())
}

// ZRangeByScore returns members with score in [min, max], ascending.
func ZRangeByScore(set *core.SortedSet, min, max ScoreBound, limit *Limit) []RangeItem {
	set.Lock()
	defer set.Unlock()
	offset, count := limit.offsetCount()
	return entriesToItems(set.RangeByScore(min.toRange(), max.toRange(), offset, count))
}

// ZRevRangeByScore returns members with score in [min, max], descending.
func ZRevRangeByScore(set *core.SortedSet, min, max ScoreBound, limit *Limit) []RangeItem {
	set.Lock()
	defer set.Unlock()
	offset, count := limit.offsetCount()
	return entriesToItems(set.RevRangeByScore(min.toRange(), max.toRange(), offset, count))
}

// LexBound is one endpoint of a ZRANGEBYLEX range, parsed from the
// "[member"/"(member"/"-"/"+" token conventions.
type LexBound struct {
	Member    core.Value
	Exclusive bool
	Unbounded bool
}

// ParseLexBound parses a single lex-range token.
func ParseLexBound(token string) (LexBound, error) {
	switch token {
	case "-", "+":
		return LexBound{Unbounded: true}, nil
	}
	if len(token) == 0 {
		return LexBound{}, errors.New("sorted_set: empty lex bound")
	}
	switch token[0] {
	case '[':
		return LexBound{Member: core.Value(token[1:])}, nil
	case '(':
		return LexBound{Member: core.Value(token[1:]), Exclusive: true}, nil
	default:
		return LexBound{}, errors.New("sorted_set: lex bound must start with '[', '(', '-' or '+'")
	}
}

func (b LexBound) toRange() core.LexRange {
	return core.LexRange{Member: b.Member, Exclusive: b.Exclusive, Unbounded: b.Unbounded}
}

// ZRangeByLex returns members in [min, max] by byte ordering.
func ZRangeByLex(set *core.SortedSet, min, max LexBound, limit *Limit) []RangeItem {
	set.Lock()
	defer set.Unlock()
	offset, count := limit.offsetCount()
	return entriesToItems(set.RangeByLex(min.toRange(), max.toRange(), offset, count))
}

// ZPopMax removes and returns up to count members with the highest scores.
func ZPopMax(ctx context.Context, set *core.SortedSet, count int) ([]RangeItem, error) {
	set.Lock()
	defer set.Unlock()
	entries, err := set.PopMax(ctx, count)
	if err != nil {
		return nil, err
	}
	return entriesToItems(entries), nil
}

// ApplyDelta replays a replicated Delta against set.
func ApplyDelta(set *core.SortedSet, delta core.Delta) error {
	set.Lock()
	defer set.Unlock()
	return set.ApplyDelta(delta)
}
