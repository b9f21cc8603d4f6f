package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ownsim/internal/diag"
	"ownsim/internal/source"
	"ownsim/internal/trace"
)

// IsScript reports whether path has a script extension (.own, .yaml, .yml).
func IsScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".own", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// ListScripts walks dir and returns every script file, sorted.
func ListScripts(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsScript(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ExpandPaths replaces directories in paths with the scripts they contain.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		files, err := ListScripts(p)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 && IsScript(p) {
			files = []string{p}
		}
		out = append(out, files...)
	}
	return out, nil
}

// CheckFiles evaluates every path in parallel, each against its own store.
// Results keep the order of paths. A file that cannot be loaded yields a
// result holding an I/O diagnostic instead of an error.
func CheckFiles(ctx context.Context, paths []string, opts Options) ([]*Result, error) {
	results := make([]*Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "check")
	defer span.End("")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			notify(opts, FileEvent{Path: path})
			res, err := checkOne(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			notify(opts, FileEvent{Path: path, Done: true, Failed: res.Failed()})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func checkOne(ctx context.Context, path string, opts Options) (*Result, error) {
	fset := source.NewFileSet()
	fileID, err := fset.Load(path)
	if err != nil {
		return loadFailure(path, fset, err, opts), nil
	}
	return Evaluate(ctx, fset, fileID, opts)
}

func notify(opts Options, ev FileEvent) {
	if opts.OnFile != nil {
		opts.OnFile(ev)
	}
}

func loadFailure(path string, fset *source.FileSet, err error, opts Options) *Result {
	bag := diag.NewBag(opts.MaxDiagnostics)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file: "+err.Error()))
	return &Result{Path: path, FileSet: fset, Bag: bag}
}
