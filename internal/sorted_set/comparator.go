package sorted_set

import "strings"

// compareEntries is the single comparator used throughout the package: by
// the tree for ordering and indexOf, and by callers building probes for
// range queries. Every range and rank operation reduces to one
// or two calls into this function through the tree - there is no second
// code path for "is this in range".
func compareEntries(a, b *Entry) int {
	if a.ScoreVal != b.ScoreVal {
		if a.ScoreVal < b.ScoreVal {
			return -1
		}
		return 1
	}
	return compareMembers(a, b)
}

// compareMembers breaks ties on equal score. Sentinels always win against a
// real member or against the opposite sentinel; two probes of the same
// sentinel kind compared against each other can never arise from a
// correctly-built range (probes are only ever compared against entries
// stored in the tree, never against each other) and is a programmer
// error, not a data condition, so it panics rather than returning a
// meaningless ordering.
func compareMembers(a, b *Entry) int {
	if a.kind == kindLeast && b.kind == kindLeast {
		panic("sorted_set: compared two LEAST sentinels")
	}
	if a.kind == kindGreatest && b.kind == kindGreatest {
		panic("sorted_set: compared two GREATEST sentinels")
	}
	if a.kind == kindLeast || b.kind == kindGreatest {
		return -1
	}
	if b.kind == kindLeast || a.kind == kindGreatest {
		return 1
	}
	if a.kind == kindLexProbe && a.Member == b.Member {
		return lexProbeSign(a.lexMinimum, a.lexExclusive)
	}
	if b.kind == kindLexProbe && a.Member == b.Member {
		return -lexProbeSign(b.lexMinimum, b.lexExclusive)
	}
	return strings.Compare(string(a.Member), string(b.Member))
}

// lexProbeSign is the sign of (probe - member) when the probe's member bytes
// are byte-equal to a real member: -1 when the probe must sort immediately
// before that member (an inclusive minimum or an exclusive maximum), +1
// when it must sort immediately after (an exclusive minimum or an inclusive
// maximum).
func lexProbeSign(isMinimum, isExclusive bool) int {
	if isMinimum != isExclusive {
		return -1
	}
	return 1
}
