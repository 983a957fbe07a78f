// Package rules compiles the user's folder patterns into an ordered rule set.
//
// # Pattern Conventions
//
// The configuration text holds one regular expression per line:
//
//	_assets
//	^archive$
//	.*/drafts$
//
// Matching is unanchored: a pattern matches when it is found anywhere in the
// folder path, so `attachments` matches both `notes/attachments` and
// `attachments/2024`. Use `^` and `$` to pin a pattern to the whole path.
//
// Paths are the slash separated folder paths the host exposes, relative to
// the root of the tree and without a leading slash.
//
// # Invalid Lines
//
// A line that does not compile is skipped. The rest of the set still applies,
// and the failures are kept on the Set so callers can report them.
//
// # Order
//
// Rules are evaluated in the order they appear. Any match suppresses the
// folder; order only decides which rule is reported as the match.
package rules
