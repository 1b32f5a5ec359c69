// Package bundler merges a directory of HELIX sources into a single
// compiled IR: files are read in lexicographic order, their ASTs
// concatenated, duplicate top-level symbols rejected unless explicitly
// overridden, and the merged IR optionally tree-shaken before
// optimization.
package bundler

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/cyber-boost/helix-sub000/internal/ast"
	"github.com/cyber-boost/helix-sub000/internal/herr"
	"github.com/cyber-boost/helix-sub000/internal/ir"
	"github.com/cyber-boost/helix-sub000/internal/optimizer"
	"github.com/cyber-boost/helix-sub000/internal/parser"
	"github.com/cyber-boost/helix-sub000/internal/validator"
)

// Options configures a bundle run.
type Options struct {
	Dir        string
	Include    []string // glob patterns against base names; defaults to ["*.hlx"]
	Exclude    []string // glob patterns against base names
	TreeShake  bool
	OptimizeAt optimizer.Level
}

// Result is a completed bundle: the merged (and possibly optimized) IR,
// the files that contributed to it in the order they were merged, and
// the optimizer statistics from whatever level ran.
type Result struct {
	IR    *ir.IR
	Files []string
	Stats optimizer.Stats
}

// Bundle discovers, parses, merges, validates, and optimizes every
// matching file under opts.Dir.
func Bundle(ctx context.Context, opts Options) (*Result, error) {
	files, err := discover(opts.Dir, opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, herr.New(herr.InvalidInput, "no matching .hlx files found under "+opts.Dir)
	}

	asts, err := parseAll(ctx, files)
	if err != nil {
		return nil, err
	}

	merged, err := merge(files, asts)
	if err != nil {
		return nil, err
	}

	rep := validator.Validate(merged)
	if !rep.Valid() {
		return nil, rep.Errors[0]
	}

	built, _, err := ir.Build(merged)
	if err != nil {
		return nil, err
	}

	level := opts.OptimizeAt
	if opts.TreeShake && level < optimizer.Two {
		level = optimizer.Two
	}
	optimized, stats, err := optimizer.Optimize(built, level)
	if err != nil {
		return nil, err
	}

	return &Result{IR: optimized, Files: files, Stats: stats}, nil
}

// discover lists opts.Dir's immediate .hlx files (default include pattern
// "*.hlx" when opts.Include is empty), applies include/exclude globs
// against base names, and returns matches in lexicographic order.
func discover(dir string, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = []string{"*.hlx"}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, herr.IoErr(err, "failed to read bundle directory "+dir)
	}

	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !matchAny(include, name) || matchAny(exclude, name) {
			continue
		}
		matches = append(matches, filepath.Join(dir, name))
	}

	sort.Strings(matches)
	return matches, nil
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// parseAll reads and parses every file concurrently, then returns the
// results in the same order as files (index-aligned), regardless of
// which goroutine finished first.
func parseAll(ctx context.Context, files []string) ([]*ast.File, error) {
	out := make([]*ast.File, len(files))
	eg, egCtx := errgroup.WithContext(ctx)

	for i, path := range files {
		i, path := i, path
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return herr.IoErr(err, "failed to read "+path)
			}
			res := parser.Parse(string(src))
			if len(res.Errors) > 0 {
				return res.Errors[0]
			}
			out[i] = res.File
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
