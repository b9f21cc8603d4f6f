package fuzztests

import (
	"context"
	"testing"
	"time"

	"ownsim/internal/ast"
	"ownsim/internal/diag"
	"ownsim/internal/driver"
	"ownsim/internal/parser"
	"ownsim/internal/source"
)

// parseTimeout bounds a single input; longer means a recovery loop.
const parseTimeout = 5 * time.Second

func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("let\nlet\nlet"))
	f.Add([]byte("move -> -> ->"))
	f.Add([]byte("{ { { { } } }"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)
		done := make(chan struct{})
		go func() {
			defer close(done)
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual("fuzz.own", input))
			bag := diag.NewBag(128)
			_ = parser.Parse(file, ast.NewBuilder(), parser.Options{Reporter: diag.BagReporter{Bag: bag}})
		}()
		select {
		case <-done:
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang: %d bytes, %q", len(input), truncateForLog(input, 200))
		}
	})
}

func FuzzYAMLParser(f *testing.F) {
	f.Add([]byte("steps:\n  - op: let\n    name: s\n    value: hi\n"))
	f.Add([]byte("steps:\n  - op: scope\n    body:\n      - op: use\n        name: s\n"))
	f.Add([]byte("steps: [1, 2, 3]"))
	f.Add([]byte(":\n- -"))
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.yaml", input))
		bag := diag.NewBag(128)
		_ = parser.Parse(file, ast.NewBuilder(), parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	})
}

// FuzzEvaluate runs whatever parses against a store. Rejections are fine;
// panics and a store left open are not.
func FuzzEvaluate(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input)
		res, err := driver.EvaluateSource(context.Background(), "fuzz.own", input, driver.Options{})
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if !res.Parsed {
			return
		}
		last := res.Outcomes[len(res.Outcomes)-1]
		if last.Op != "close" {
			t.Fatalf("last step is %q, want close", last.Op)
		}
		for _, buf := range res.Buffers {
			if !buf.Released {
				t.Fatalf("buffer %d (%s) still live after close", buf.ID, buf.Owner)
			}
		}
	})
}

func truncateForLog(input []byte, limit int) []byte {
	if len(input) <= limit {
		return input
	}
	return input[:limit]
}
