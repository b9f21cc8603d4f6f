package diagfmt

import (
	"path/filepath"

	"ownsim/internal/source"
)

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		if f.Flags&source.FileVirtual != 0 {
			return f.Path
		}
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative:
		if rel, err := source.RelativePath(f.Path, fs.BaseDir()); err == nil {
			return rel
		}
		return f.Path
	case PathModeBasename:
		return source.BaseName(f.Path)
	default:
		return f.DisplayPath(fs.BaseDir())
	}
}

// located reports whether span points into a file of fs. Diagnostics
// without a location (I/O failures, timings) use the zero span.
func located(span source.Span, fs *source.FileSet) bool {
	if fs == nil || span == (source.Span{}) {
		return false
	}
	return fs.Get(span.File) != nil
}
