package sorted_set

import "errors"

var (
	// ErrNotAValidFloat is returned when a score token cannot be parsed as a
	// finite or infinite double.
	ErrNotAValidFloat = errors.New("value is not a valid float")

	// ErrOperationProducedNaN is returned by ZINCRBY when adding the
	// increment to the current score would produce NaN (the +inf/-inf
	// combination).
	ErrOperationProducedNaN = errors.New("resulting score is not a number (NaN)")

	// ErrWrongType is returned by collaborators that store sorted sets
	// alongside other value types when a key exists but does not hold one.
	ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

	// ErrMemberNotFound describes an absent member. This package does not
	// return it: Score, Rank and RevRank report an absent member through
	// their boolean result instead.
	ErrMemberNotFound = errors.New("member does not exist in sorted set")

	// ErrEmptySet describes a set with nothing left to pop. This package
	// does not return it: PopMax on an empty set returns no entries and a
	// nil error.
	ErrEmptySet = errors.New("sorted set is empty")
)
