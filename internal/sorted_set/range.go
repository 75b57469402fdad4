package sorted_set

// RangeCursor is the lazy iterator returned by Tree.GetIndexRange. It yields
// up to count entries starting at index start, walking forward if reverse
// is false and backward if true, and supports removing the entry it most
// recently yielded in O(log n) - the mechanism ZPOPMAX uses to pop the top
// of the set without a separate removal pass.
type RangeCursor struct {
	tr        *Tree
	idx       int
	reverse   bool
	remaining int

	hasLast bool
	last    *Entry
}

// GetIndexRange starts a cursor at absolute index start.
func (t *Tree) GetIndexRange(start, count int, reverse bool) *RangeCursor {
	return &RangeCursor{tr: t, idx: start, reverse: reverse, remaining: count}
}

// Next returns the next entry in the range, or (nil, false) once count
// entries have been yielded or the tree boundary is reached.
func (c *RangeCursor) Next() (*Entry, bool) {
	if c.remaining <= 0 {
		return nil, false
	}
	if c.idx < 0 || c.idx >= c.tr.Size() {
		return nil, false
	}
	e := c.tr.Get(c.idx)
	c.last = e
	c.hasLast = true
	if c.reverse {
		c.idx--
	} else {
		c.idx++
	}
	c.remaining--
	return e, true
}

// RemoveLast removes the entry most recently returned by Next from the
// underlying tree and reports whether there was one to remove. It must be
// called at most once per Next call.
func (c *RangeCursor) RemoveLast() bool {
	if !c.hasLast {
		return false
	}
	ok := c.tr.Remove(c.last)
	if ok && !c.reverse {
		// Everything at and after the removed index shifted left by one;
		// the forward cursor's next fetch must shift with it. A backward
		// cursor is unaffected since it only ever revisits lower indices.
		c.idx--
	}
	c.hasLast = false
	return ok
}
