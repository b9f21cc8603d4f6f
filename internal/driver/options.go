package driver

import "ownsim/internal/ownership"

// Options controls how scripts are evaluated.
type Options struct {
	// Shadowing is the redeclaration policy handed to every store.
	Shadowing ownership.ShadowPolicy
	// FailFast stops a script at its first unexpected rejection. The root
	// scope is still closed so final drops are recorded.
	FailFast bool
	// MaxDiagnostics caps each script's bag (0 means the bag default).
	MaxDiagnostics int
	// Jobs bounds CheckFiles parallelism (0 means GOMAXPROCS).
	Jobs int
	// Timings appends an OBS6001 timing note to each result.
	Timings bool
	// OnFile, when set, is called by CheckFiles as each file starts and
	// finishes. Calls come from worker goroutines.
	OnFile func(FileEvent)
}

// FileEvent reports CheckFiles progress for one path.
type FileEvent struct {
	Path   string
	Done   bool
	Failed bool
}
