package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileSet owns every script loaded during a run. IDs are dense and never
// reused, so a path loaded twice gets two IDs and the index points at the
// newer one.
type FileSet struct {
	files   []File
	latest  map[string]FileID
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{latest: map[string]FileID{}}
}

// SetBaseDir sets the directory relative paths are shown against.
func (fs *FileSet) SetBaseDir(dir string) { fs.baseDir = dir }

// BaseDir returns the directory set by SetBaseDir or, failing that, the
// working directory.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir != "" {
		return fs.baseDir
	}
	wd, _ := os.Getwd()
	return wd
}

// Add registers already normalized content under path.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	id := FileID(n)
	path = cleanPath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: newlineOffsets(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.latest[path] = id
	return id
}

// Load reads path from disk. A leading BOM is dropped and CRLF pairs become
// LF; the flags record which of the two happened.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	if rest, ok := bytes.CutPrefix(raw, utf8BOM); ok {
		raw = rest
		flags |= FileHadBOM
	}
	if content, changed := unixNewlines(raw); changed {
		raw = content
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, raw, flags), nil
}

// AddVirtual registers in-memory content such as an embedded example.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	content, _ = unixNewlines(content)
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file with id, or nil.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) < len(fs.files) {
		return &fs.files[id]
	}
	return nil
}

// GetLatest returns the newest ID registered for path.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.latest[cleanPath(path)]
	return id, ok
}

// Resolve turns both ends of span into line and column numbers. Spans in
// unknown files resolve to zero positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.position(span.Start), f.position(span.End)
}

// position maps off to a 1-based line and column. A newline byte belongs
// to the line it ends.
func (f *File) position(off uint32) LineCol {
	// index of the first newline at or after off is the count of lines before it
	line, _ := slices.BinarySearch(f.LineIdx, off)
	start := f.lineStart(line)
	return LineCol{Line: toU32(line + 1), Col: off - start + 1}
}

// lineStart returns the offset of the first byte of zero-based line i.
func (f *File) lineStart(i int) uint32 {
	if i == 0 {
		return 0
	}
	return f.LineIdx[i-1] + 1
}

// lineEnd returns the offset of the newline ending zero-based line i, or
// the content length for the last line.
func (f *File) lineEnd(i int) uint32 {
	if i < len(f.LineIdx) {
		return f.LineIdx[i]
	}
	return toU32(len(f.Content))
}

// Offset converts a 1-based position back to a byte offset. Columns past
// the end of a line clamp to the line end and lines past the end of the
// file clamp to the content length.
func (f *File) Offset(pos LineCol) uint32 {
	if pos.Line == 0 {
		return 0
	}
	i := int(pos.Line - 1)
	if i > len(f.LineIdx) {
		return toU32(len(f.Content))
	}
	off := f.lineStart(i) + max(pos.Col, 1) - 1
	return min(off, f.lineEnd(i))
}

// GetLine returns the text of 1-based line n without its newline, or ""
// when the file has no such line.
func (f *File) GetLine(n uint32) string {
	if n == 0 || int(n-1) > len(f.LineIdx) {
		return ""
	}
	i := int(n - 1)
	start := f.lineStart(i)
	if int(start) >= len(f.Content) {
		return ""
	}
	return string(f.Content[start:f.lineEnd(i)])
}

// DisplayPath is the path relative to baseDir when that is shorter.
// Virtual files keep their name.
func (f *File) DisplayPath(baseDir string) string {
	if f.Flags&FileVirtual != 0 || baseDir == "" {
		return f.Path
	}
	rel, err := RelativePath(f.Path, baseDir)
	if err != nil || len(rel) >= len(f.Path) {
		return f.Path
	}
	return rel
}

// BaseName returns the last element of path.
func BaseName(path string) string { return filepath.Base(path) }

// RelativePath returns path relative to baseDir with forward slashes.
func RelativePath(path, baseDir string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	return filepath.ToSlash(rel), err
}

func cleanPath(p string) string { return filepath.ToSlash(filepath.Clean(p)) }

// unixNewlines rewrites CRLF pairs to LF. A lone CR is kept.
func unixNewlines(b []byte) ([]byte, bool) {
	if !bytes.Contains(b, []byte("\r\n")) {
		return b, false
	}
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n")), true
}

func newlineOffsets(content []byte) []uint32 {
	var out []uint32
	for i := bytes.IndexByte(content, '\n'); i >= 0; {
		out = append(out, toU32(i))
		next := bytes.IndexByte(content[i+1:], '\n')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return out
}

func toU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("source offset overflow: %w", err))
	}
	return v
}
