// Package span implements the packed source-range primitive shared by every
// layer of the core: tokens, AST nodes, and facts all carry a Span rather
// than duplicating line/column bookkeeping.
package span

import "fmt"

// Span is a half-open byte range [Start, End) over a source buffer.
//
// Span fits in 8 bytes (two uint32 offsets) so it can be embedded directly
// in a packed Token or Fact without growing either beyond its fixed size.
// A Span never spans more than 4 GiB of source; larger inputs are out of
// scope for this core.
type Span struct {
	Start uint32
	End   uint32
}

// Zero is the empty span at the start of a buffer, used for synthetic nodes
// inserted during error recovery before a real position is known.
var Zero = Span{}

// New builds a Span, panicking if start > end — callers are expected to
// compute ranges correctly; this is not a user-facing validation error.
func New(start, end uint32) Span {
	if start > end {
		panic(fmt.Sprintf("span: invalid range [%d, %d)", start, end))
	}
	return Span{Start: start, End: end}
}

// Len returns the byte length of the span.
func (s Span) Len() uint32 { return s.End - s.Start }

// Empty reports whether the span covers zero bytes.
func (s Span) Empty() bool { return s.Start == s.End }

// Slice returns the bytes of src covered by s. Panics if the span is out of
// bounds for src — callers must keep spans valid for the buffer they were
// produced from.
func (s Span) Slice(src []byte) []byte {
	return src[s.Start:s.End]
}

// Contains reports whether s fully contains other.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Intersects reports whether s and other share at least one byte. Two
// empty, equal-offset spans do not intersect under half-open semantics.
func (s Span) Intersects(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Cover returns the smallest span containing both s and other.
func Cover(s, other Span) Span {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Shift translates a span by delta bytes, used by the incremental
// coordinator to reposition spans after an edit without re-lexing them.
// delta may be negative; callers must ensure the result does not underflow.
func (s Span) Shift(delta int32) Span {
	return Span{
		Start: uint32(int64(s.Start) + int64(delta)),
		End:   uint32(int64(s.End) + int64(delta)),
	}
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}
