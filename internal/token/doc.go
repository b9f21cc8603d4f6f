// Package token defines the lexical tokens of ownership scripts.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Comments and whitespace never appear in the token stream; they are
//     attached to the next token as leading Trivia.
//   - Keywords are case-sensitive; only the lowercase forms are recognized.
package token
