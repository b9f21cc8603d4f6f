package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.own", []byte("let x = 1"), 0)
	if id1 != 0 {
		t.Errorf("expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("test.own", []byte("let x = 2"), 0)
	if id2 != 1 {
		t.Errorf("expected second FileID to be 1, got %d", id2)
	}

	latest, ok := fs.GetLatest("test.own")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d, true", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "let x = 1" {
		t.Errorf("old version content = %q", got)
	}
	if fs.Get(99) != nil {
		t.Errorf("expected nil for unknown id")
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("pos.own", []byte("ab\ncde\n\nf"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // the newline byte stays on line 1
		{3, LineCol{2, 1}},
		{5, LineCol{2, 3}},
		{7, LineCol{3, 1}},
		{8, LineCol{4, 1}},
		{9, LineCol{4, 2}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("rt.own", []byte("let a = 1\nmove a -> b\n"))
	f := fs.Get(id)

	if off := f.Offset(LineCol{Line: 2, Col: 6}); off != 15 {
		t.Fatalf("Offset = %d, want 15", off)
	}
	if off := f.Offset(LineCol{Line: 1, Col: 100}); off != 9 {
		t.Fatalf("clamped Offset = %d, want 9", off)
	}
	if got := f.GetLine(2); got != "move a -> b" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(5); got != "" {
		t.Fatalf("GetLine(5) = %q, want empty", got)
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.own")
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("let x = 1\r\nuse x\r\n")...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "let x = 1\nuse x\n" {
		t.Fatalf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
}
