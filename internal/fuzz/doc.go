// Package fuzztests holds fuzz harnesses for the script pipeline: bytes go
// through the lexer, the parsers and, when they parse, a fresh ownership
// store. The harnesses look for panics and hangs, not for wrong answers.
package fuzztests
