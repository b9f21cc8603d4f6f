package fuzztests

import (
	"testing"

	"ownsim/internal/examples"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func addCorpusSeeds(f *testing.F) {
	for _, sc := range examples.List() {
		f.Add(clamp(sc.Source))
	}
	f.Add([]byte{})
	f.Add([]byte("let s = \"a\"; move s -> t; use s\n"))
	f.Add([]byte("{ let mut s = \"x\"; borrow r = &mut s; push s \"y\" }"))
	f.Add([]byte("expect AliasConflict { }"))
	f.Add([]byte("let t = (1, (2, 'c'), true, 2.5)"))
	f.Add([]byte("let s = \"unterminated"))
	f.Add([]byte("}}}{{{"))
}

func clamp(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
