package watch

import (
	"bytes"

	"github.com/opal-lang/stratacore/incremental"
	"github.com/opal-lang/stratacore/span"
)

// NextEdit computes the single Range/NewText pair spec §4.4's "edit" unit
// needs to turn old into new, by trimming the longest common prefix and
// (non-overlapping) suffix. This is the minimal single-range edit a
// whole-file rewrite (what a filesystem write event actually reports)
// can be reduced to; an editor with real cursor-level edit events would
// feed incremental.Edit values directly instead of going through this
// diff at all.
func NextEdit(old, new []byte) (incremental.Edit, bool) {
	if bytes.Equal(old, new) {
		return incremental.Edit{}, false
	}

	prefix := commonPrefixLen(old, new)
	suffix := commonSuffixLen(old[prefix:], new[prefix:])

	oldEnd := len(old) - suffix
	newEnd := len(new) - suffix

	return incremental.Edit{
		Range:   span.New(uint32(prefix), uint32(oldEnd)),
		NewText: append([]byte(nil), new[prefix:newEnd]...),
	}, true
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

func commonSuffixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[len(a)-1-i] == b[len(b)-1-i] {
		i++
	}
	return i
}
