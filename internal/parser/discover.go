package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover expands proto inputs into a sorted, de-duplicated list of files.
// An input is a file, a directory searched recursively for .proto files, or
// a doublestar glob. Entries whose name starts with a dot are skipped when
// walking directories.
func Discover(inputs []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		path = filepath.Clean(path)
		if seen[path] {
			return
		}
		seen[path] = true
		out = append(out, path)
	}
	for _, input := range inputs {
		info, err := os.Stat(input)
		switch {
		case err == nil && !info.IsDir():
			add(input)
			continue
		case err == nil:
			matches, err := doublestar.FilepathGlob(filepath.Join(input, "**", "*.proto"), doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("search %s: %w", input, err)
			}
			for _, m := range matches {
				if hidden(input, m) {
					continue
				}
				add(m)
			}
			continue
		}
		if !isGlob(input) {
			return nil, fmt.Errorf("proto path %s: %w", input, err)
		}
		matches, err := doublestar.FilepathGlob(input, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", input, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("glob %s matched no files", input)
		}
		for _, m := range matches {
			add(m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ImportRoots derives import paths from inputs when none are configured:
// directories as given, the static prefix of globs and the parent of files.
func ImportRoots(inputs []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, input := range inputs {
		root := input
		if isGlob(input) {
			root, _ = doublestar.SplitPattern(filepath.ToSlash(input))
			root = filepath.FromSlash(root)
		} else if info, err := os.Stat(input); err == nil && !info.IsDir() {
			root = filepath.Dir(input)
		}
		root = filepath.Clean(root)
		if !seen[root] {
			seen[root] = true
			out = append(out, root)
		}
	}
	if len(out) == 0 {
		out = append(out, ".")
	}
	return out
}

// RelativeNames maps each file to its name relative to the first import path
// that contains it, which is how the compiler resolves it.
func RelativeNames(importPaths, files []string) ([]string, error) {
	out := make([]string, 0, len(files))
	for _, file := range files {
		name, ok := relativeName(importPaths, file)
		if !ok {
			return nil, fmt.Errorf("proto file %s is not under any import path %v", file, importPaths)
		}
		out = append(out, name)
	}
	return out, nil
}

func relativeName(importPaths []string, file string) (string, bool) {
	absFile, err := filepath.Abs(file)
	if err != nil {
		return "", false
	}
	for _, ip := range importPaths {
		absRoot, err := filepath.Abs(ip)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absRoot, absFile)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func hidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
