package parser

import "github.com/opal-lang/stratacore/token"

// bracketInfo records one open bracket for mismatch diagnostics, adapted
// from the teacher's runtime/parser/errors.go BracketTracker.
type bracketInfo struct {
	kind token.Kind // the open token's kind
	open token.Token
}

// bracketTracker tracks open brackets so an unmatched or mismatched close
// can be reported against the position it was opened at, not just where it
// went wrong.
type bracketTracker struct {
	stack []bracketInfo
}

func (bt *bracketTracker) push(kind token.Kind, open token.Token) {
	bt.stack = append(bt.stack, bracketInfo{kind: kind, open: open})
}

// pop removes the innermost open bracket and reports whether it matches
// the expected opening kind for the close token being parsed.
func (bt *bracketTracker) pop(wantOpen token.Kind) (bracketInfo, bool) {
	if len(bt.stack) == 0 {
		return bracketInfo{}, false
	}
	top := bt.stack[len(bt.stack)-1]
	bt.stack = bt.stack[:len(bt.stack)-1]
	return top, top.kind == wantOpen
}

// peek returns the innermost open bracket without removing it, used to
// report what a mismatched closer was supposed to match.
func (bt *bracketTracker) peek() (bracketInfo, bool) {
	if len(bt.stack) == 0 {
		return bracketInfo{}, false
	}
	return bt.stack[len(bt.stack)-1], true
}
