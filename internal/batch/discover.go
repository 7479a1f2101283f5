// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

// Default patterns used when a BatchConfig leaves Include or Exclude empty.
var (
	DefaultInclude = []string{"**.ipynb"}
	DefaultExclude = []string{"{.ipynb_checkpoints/**,**/.ipynb_checkpoints/**}"}
)

// compiledPattern holds both the pattern string and compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

func matchAny(patterns []compiledPattern, path string) bool {
	for _, p := range patterns {
		if p.glob.Match(path) {
			return true
		}
	}
	return false
}

// Discover walks root and returns the files whose slash-separated path
// relative to root matches an include pattern and no exclude pattern.
// Empty pattern lists fall back to DefaultInclude and DefaultExclude.
// Paths are returned sorted, joined to root.
func Discover(root string, include, exclude []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	if len(exclude) == 0 {
		exclude = DefaultExclude
	}

	inc, err := compilePatterns(include)
	if err != nil {
		return nil, err
	}
	exc, err := compilePatterns(exclude)
	if err != nil {
		return nil, err
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if matchAny(inc, rel) && !matchAny(exc, rel) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(found)
	return found, nil
}
