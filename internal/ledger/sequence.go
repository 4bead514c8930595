package ledger

import "sync/atomic"

// Sequence hands out increasing integer identifiers. Values are never reused.
type Sequence struct {
	next atomic.Int64
}

// NewSequence returns a sequence whose first value is start.
func NewSequence(start int) *Sequence {
	s := &Sequence{}
	s.next.Store(int64(start))
	return s
}

// Next returns the current value and advances the sequence.
func (s *Sequence) Next() int {
	return int(s.next.Add(1) - 1)
}
