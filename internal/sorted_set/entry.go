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

// Package sorted_set implements the dual-indexed sorted set core: a hash map
// from member to Entry backed by an order-statistics tree ordered by
// (score, member). It has no notion of wire protocol, cluster membership or
// persistence; those are the concern of collaborators that embed it.
package sorted_set

// Value is the byte-string identity of a sorted set member.
type Value string

// Score is the double associated with a member. NaN is never a valid Score;
// every constructor and mutator that could produce one rejects it instead.
type Score float64

// memberKind tags an Entry as a real member or one of the synthetic probe
// shapes used to encode range endpoints. The spec's reference design
// distinguishes sentinels by object identity; a tagged variant is the more
// idiomatic Go translation (see Design Notes) and avoids relying on pointer
// identity surviving copies.
type memberKind uint8

const (
	kindNormal memberKind = iota
	kindLeast
	kindGreatest
	kindLexProbe
)

// Entry is the triple (member, scoreBytes, score) that lives in both the
// MemberMap and the ScoreSet tree. Probe entries (sentinels and lex probes)
// reuse the same struct but are never inserted into either index; they exist
// only as comparator operands for indexOf calls.
type Entry struct {
	Member     Value
	ScoreBytes []byte
	ScoreVal   Score

	kind         memberKind
	lexMinimum   bool
	lexExclusive bool
}

// newEntry builds a real, insertable entry, canonicalizing the score to its
// wire representation.
func newEntry(member Value, score Score) *Entry {
	return &Entry{
		Member:     member,
		ScoreVal:   score,
		ScoreBytes: CanonicalScoreBytes(score),
		kind:       kindNormal,
	}
}

// leastProbe and greatestProbe are the two sentinel identities. They compare
// less than (resp. greater than) every real member at the same score and are
// rejected by the comparator if ever compared against another instance of
// the same sentinel kind - that combination can never arise from a
// correctly-built range query and signals a programmer error.
func leastProbe(score Score) *Entry {
	return &Entry{ScoreVal: score, kind: kindLeast}
}

func greatestProbe(score Score) *Entry {
	return &Entry{ScoreVal: score, kind: kindGreatest}
}

// scoreProbe builds the single synthetic entry that encodes one end of a
// ZCOUNT/ZRANGEBYSCORE range. Real implementations resolve inclusive/
// exclusive and min/max purely by picking which sentinel member identity to
// attach to the probe score, so the tree never has to understand range
// semantics - it just answers indexOf.
//
// LEAST is used for an inclusive-min or an exclusive-max bound
// (isExclusive != isMinimum), GREATEST for an exclusive-min or an
// inclusive-max bound.
func scoreProbe(score Score, isExclusive, isMinimum bool) *Entry {
	if isExclusive != isMinimum {
		return leastProbe(score)
	}
	return greatestProbe(score)
}

// lexProbe builds the synthetic entry used to encode one end of a
// ZRANGEBYLEX range. All members participating in a lex range are assumed
// to share the same score (the caller's responsibility per §4.4); the probe
// carries that score so the comparator's score-equality fast path still
// applies before falling through to the lex comparison.
func lexProbe(member Value, score Score, isExclusive, isMinimum bool) *Entry {
	return &Entry{
		Member:       member,
		ScoreVal:     score,
		kind:         kindLexProbe,
		lexMinimum:   isMinimum,
		lexExclusive: isExclusive,
	}
}
