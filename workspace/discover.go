// Package workspace finds assembler sources under a root folder and keeps
// track of changes to them.
package workspace

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/z80asm/macroasm-ls/config"
)

var skipDirs = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	".hg":          {},
	".svn":         {},
	".vscode":      {},
	"build":        {},
	"dist":         {},
	"out":          {},
}

// Filter decides which paths under a root are assembler sources.
type Filter struct {
	root      string
	exts      map[string]struct{}
	gitignore *ignore.GitIgnore
	exclude   *ignore.GitIgnore
}

func NewFilter(root string, files config.Files) *Filter {
	f := &Filter{root: root, exts: make(map[string]struct{}, len(files.Include))}
	for _, ext := range files.Include {
		f.exts["."+strings.ToLower(ext)] = struct{}{}
	}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		f.gitignore = gi
	}
	if len(files.Exclude) > 0 {
		f.exclude = ignore.CompileIgnoreLines(files.Exclude...)
	}
	return f
}

// SkipDir reports whether the directory at path should not be descended into.
func (f *Filter) SkipDir(path string) bool {
	if path == f.root {
		return false
	}
	name := filepath.Base(path)
	if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
		return true
	}
	return f.ignored(path + string(filepath.Separator))
}

// Match reports whether the file at path is an assembler source to index.
func (f *Filter) Match(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if _, ok := f.exts[strings.ToLower(filepath.Ext(name))]; !ok {
		return false
	}
	return !f.ignored(path)
}

func (f *Filter) ignored(path string) bool {
	rel, err := filepath.Rel(f.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	rel = filepath.ToSlash(rel)
	if f.gitignore != nil && f.gitignore.MatchesPath(rel) {
		return true
	}
	return f.exclude != nil && f.exclude.MatchesPath(rel)
}

// Discover returns the absolute paths of all assembler sources under root,
// sorted.
func Discover(root string, files config.Files) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	filter := NewFilter(root, files)

	var results []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if filter.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if filter.Match(path) {
			results = append(results, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(results)
	return results, nil
}
