package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto renders paths relative to the base directory when shorter.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode accepts auto, absolute, relative and basename.
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "auto":
		return PathModeAuto, true
	case "absolute", "abs":
		return PathModeAbsolute, true
	case "relative", "rel":
		return PathModeRelative, true
	case "basename", "base":
		return PathModeBasename, true
	default:
		return PathModeAuto, false
	}
}

// PrettyOpts configures pretty-printing of diagnostics and run reports.
type PrettyOpts struct {
	Color    bool
	Context  int8 // lines of source shown around the primary line
	PathMode PathMode
	Width    uint8 // maximum cell width in tables, 0 means unlimited
	// ShowNotes prints notes with their own source excerpt.
	ShowNotes bool
	// ShowEvents lists each step's store events in run reports.
	ShowEvents bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // add line/col
	PathMode         PathMode
	Max              int // truncates the output, not the Bag
	IncludeNotes     bool
	IncludeEvents    bool
}
