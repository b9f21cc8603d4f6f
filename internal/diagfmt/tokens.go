package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"ownsim/internal/source"
	"ownsim/internal/token"
)

type TokenOutput struct {
	Kind    string      `json:"kind"`
	Text    string      `json:"text,omitempty"`
	Span    source.Span `json:"span"`
	Leading []string    `json:"leading,omitempty"`
}

func leadingKinds(tok token.Token) []string {
	if len(tok.Leading) == 0 {
		return nil
	}
	out := make([]string, len(tok.Leading))
	for i, tr := range tok.Leading {
		out[i] = tr.Kind.String()
	}
	return out
}

// FormatTokensPretty prints one token per line with its position.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for i, tok := range tokens {
		startPos, endPos := fs.Resolve(tok.Span)
		if _, err := fmt.Fprintf(w, "%3d: %-12s", i+1, tok.Kind.String()); err != nil {
			return err
		}
		if tok.Text != "" {
			fmt.Fprintf(w, " %q", tok.Text)
		}
		fmt.Fprintf(w, " at %d:%d-%d:%d", startPos.Line, startPos.Col, endPos.Line, endPos.Col)
		if leading := leadingKinds(tok); len(leading) > 0 {
			fmt.Fprintf(w, " (leading: %s)", strings.Join(leading, ", "))
		}
		fmt.Fprintln(w)
		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

// FormatTokensJSON writes the tokens as a JSON array.
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		output = append(output, TokenOutput{
			Kind:    tok.Kind.String(),
			Text:    tok.Text,
			Span:    tok.Span,
			Leading: leadingKinds(tok),
		})
		if tok.Kind == token.EOF {
			break
		}
	}
	return encode(w, output)
}
