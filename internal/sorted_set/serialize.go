package sorted_set

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// MarshalBinary encodes the set as an int32 member count followed by, for
// each member in ascending order, a length-prefixed member and a
// length-prefixed canonical score. It is mutually exclusive with any
// mutator - the caller must hold the set's lock for the duration of the
// call, the same as for any other operation.
func (s *SortedSet) MarshalBinary() ([]byte, error) {
	entries := s.tree.InOrder()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, int32(len(entries))); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := writeLengthPrefixed(&buf, []byte(e.Member)); err != nil {
			return nil, err
		}
		if err := writeLengthPrefixed(&buf, e.ScoreBytes); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeLengthPrefixed(buf *bytes.Buffer, data []byte) error {
	if err := binary.Write(buf, binary.BigEndian, int32(len(data))); err != nil {
		return err
	}
	_, err := buf.Write(data)
	return err
}

// UnmarshalBinary replaces the set's contents with the entries encoded in
// data, in the format produced by MarshalBinary. It does not emit a delta;
// a freshly loaded set is assumed to already be consistent with whatever
// replication state produced the snapshot.
func (s *SortedSet) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	var count int32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return fmt.Errorf("sorted_set: reading entry count: %w", err)
	}
	members := newMemberMap()
	tree := &Tree{}
	for i := int32(0); i < count; i++ {
		memberBytes, err := readLengthPrefixed(r)
		if err != nil {
			return fmt.Errorf("sorted_set: reading member %d: %w", i, err)
		}
		scoreBytes, err := readLengthPrefixed(r)
		if err != nil {
			return fmt.Errorf("sorted_set: reading score for member %d: %w", i, err)
		}
		score, err := ParseScore(string(scoreBytes))
		if err != nil {
			return fmt.Errorf("sorted_set: decoding score for member %d: %w", i, err)
		}
		e := newEntry(Value(memberBytes), score)
		members.Set(e.Member, e)
		tree.Add(e)
	}
	s.members = members
	s.tree = tree
	return nil
}

func readLengthPrefixed(r *bytes.Reader) ([]byte, error) {
	var n int32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative length prefix %d", n)
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
