package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Tracer receives events. Implementations must be safe for concurrent use;
// CheckFiles emits from several workers at once.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode says where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory, newest wins
	ModeBoth
)

var modeNames = [...]string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}

func (m StorageMode) String() string {
	if int(m) < len(modeNames) && modeNames[m] != "" {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode accepts stream, ring or both.
func ParseMode(s string) (StorageMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if name != "" && s == name {
			return StorageMode(i), nil
		}
	}
	return ModeStream, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config describes a tracer to build with New.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto picks by the OutputPath extension
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "" or "-" is stderr
	RingSize   int       // default 4096
}

// New builds the tracer cfg describes. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = defaultRingSize
	}
	format := cfg.Format
	if format == FormatAuto {
		format = formatFor(cfg.OutputPath)
	}

	switch cfg.Mode {
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	case ModeStream, ModeBoth:
		w, err := cfg.writer()
		if err != nil {
			return nil, err
		}
		stream := NewStreamTracer(w, cfg.Level, format)
		if cfg.Mode == ModeStream {
			return stream, nil
		}
		return NewMultiTracer(cfg.Level, stream, NewRingTracer(cfg.RingSize, cfg.Level)), nil
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
}

func (cfg Config) writer() (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return stderrWriter{}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// stderrWriter is not an io.Closer, so closing the tracer leaves stderr open.
type stderrWriter struct{}

func (stderrWriter) Write(p []byte) (int, error) { return os.Stderr.Write(p) }

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards everything.
var Nop Tracer = nopTracer{}
