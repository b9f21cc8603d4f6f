package fuzztests

import (
	"testing"

	"ownsim/internal/diag"
	"ownsim/internal/lexer"
	"ownsim/internal/source"
	"ownsim/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.own", input))

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
		// every token consumes at least one byte, so the stream is bounded
		for i := 0; i <= len(file.Content)+1; i++ {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				return
			}
			if tok.Span.End > uint32(len(file.Content)) {
				t.Fatalf("token %v ends past the input (%d bytes)", tok.Span, len(file.Content))
			}
		}
		t.Fatalf("lexer did not reach EOF on %d bytes", len(file.Content))
	})
}
