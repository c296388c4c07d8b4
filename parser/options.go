package parser

import "github.com/opal-lang/stratacore/value"

// Opt configures a parse, following the teacher's functional-options
// idiom (runtime/parser/options.go's ParserOpt/ParserConfig).
type Opt func(*Config)

// Config holds the options enumerated in spec §6. Parse starts from
// per-language defaults (trailing commas allowed for ZON only, recovery
// on, MaxDepth 100, no trivia) and applies the caller's options over them;
// lang.Registry's DefaultOptions reach Parse as ordinary options.
type Config struct {
	AllowTrailingCommas bool
	RecoverFromErrors   bool
	MaxDepth            uint32
	PreserveTrivia      bool
	Atoms               *value.AtomPool
}

// WithTrailingCommas overrides the language default for whether a comma
// before a closing bracket is accepted silently instead of diagnosed.
func WithTrailingCommas(allow bool) Opt {
	return func(c *Config) { c.AllowTrailingCommas = allow }
}

// WithRecovery sets Config.RecoverFromErrors. The parser does not read
// this field: it always recovers, inserting err nodes and continuing past
// every syntax error, whichever value is set.
func WithRecovery(recover bool) Opt {
	return func(c *Config) { c.RecoverFromErrors = recover }
}

// WithMaxDepth overrides the nesting limit (spec §6 default: 100).
func WithMaxDepth(depth uint32) Opt {
	return func(c *Config) { c.MaxDepth = depth }
}

// WithPreserveTrivia makes the parser request trivia tokens from the
// lexer. The parser skips those tokens as it reads and attaches none of
// them to the tree.
func WithPreserveTrivia(preserve bool) Opt {
	return func(c *Config) { c.PreserveTrivia = preserve }
}

// WithAtomPool makes the parser intern identifiers and field names into an
// existing pool instead of allocating a fresh one. The incremental
// coordinator uses this to re-parse one edited boundary's text so the
// grafted-in nodes' atom ids still resolve against the live document's
// pool, rather than minting ids private to a throwaway sub-parse.
func WithAtomPool(pool *value.AtomPool) Opt {
	return func(c *Config) { c.Atoms = pool }
}
