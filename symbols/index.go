package symbols

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/z80asm/macroasm-ls/assembler"
)

var ErrNotFound = errors.New("symbol not found")

// SymbolMap maps every valid spelling of a visible name to its declaration.
type SymbolMap map[string]*assembler.Symbol

// ScopedFile is one member of an include closure together with the scope
// it was included under.
type ScopedFile struct {
	Path        string
	LabelPath   []string
	ParentLabel string
}

// Index owns the File Table of every known file. Tables are swapped whole,
// so readers see either the previous or the next table, never a partial one.
type Index struct {
	mu     sync.RWMutex
	files  map[string]*assembler.FileTable
	opener DocumentOpener
	logger *slog.Logger

	seekWorkspace bool
}

type Option func(*Index)

func WithLogger(logger *slog.Logger) Option {
	return func(x *Index) {
		x.logger = logger
	}
}

// WithWorkspaceFallback makes lookups also search files outside the include closure.
func WithWorkspaceFallback(enabled bool) Option {
	return func(x *Index) {
		x.seekWorkspace = enabled
	}
}

func NewIndex(opener DocumentOpener, opts ...Option) *Index {
	if opener == nil {
		opener = DiskOpener{}
	}
	x := &Index{
		files:  make(map[string]*assembler.FileTable),
		opener: opener,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Index) SetWorkspaceFallback(enabled bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.seekWorkspace = enabled
}

func (x *Index) workspaceFallback() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.seekWorkspace
}

// Update reparses a document whose text changed and publishes its table.
func (x *Index) Update(doc *assembler.Document) *assembler.FileTable {
	table := assembler.Parse(doc)
	x.store(table)
	return table
}

// Refresh reparses path from the opener after a file system event. Unchanged
// content keeps the current table.
func (x *Index) Refresh(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	doc, err := x.opener.Open(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			x.Remove(path)
		}
		return err
	}

	table := assembler.Parse(doc)
	if old, ok := x.Table(path); ok && old.Hash == table.Hash {
		x.logger.Debug("file unchanged, keeping table", "path", path)
		return nil
	}
	x.store(table)
	return nil
}

func (x *Index) Remove(path string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.files, filepath.Clean(path))
}

func (x *Index) Table(path string) (*assembler.FileTable, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	table, ok := x.files[filepath.Clean(path)]
	return table, ok
}

// Files returns the paths of all indexed files in sorted order.
func (x *Index) Files() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	paths := make([]string, 0, len(x.files))
	for p := range x.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Document returns the current text of path from the opener.
func (x *Index) Document(ctx context.Context, path string) (*assembler.Document, error) {
	return x.opener.Open(ctx, filepath.Clean(path))
}

func (x *Index) store(table *assembler.FileTable) {
	table.Path = filepath.Clean(table.Path)
	x.mu.Lock()
	defer x.mu.Unlock()
	x.files[table.Path] = table
}

// ensure returns the table of path, opening and parsing the file on demand.
func (x *Index) ensure(ctx context.Context, path string) (*assembler.FileTable, error) {
	if table, ok := x.Table(path); ok {
		return table, nil
	}
	doc, err := x.opener.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return x.Update(doc), nil
}

type frame struct {
	path   string
	prefix []string
}

// Symbols returns every symbol visible from path: the file itself and its
// include closure, plus the rest of the workspace when the fallback is on.
// Each symbol is listed under all suffixes of its qualified path; the first
// declaration to claim a spelling keeps it.
func (x *Index) Symbols(ctx context.Context, path string) (SymbolMap, error) {
	out := make(SymbolMap)
	visited := make(map[string]bool)

	if err := x.seek(ctx, filepath.Clean(path), out, visited); err != nil {
		return nil, err
	}

	if x.workspaceFallback() {
		for _, other := range x.Files() {
			if visited[other] {
				continue
			}
			if err := x.seek(ctx, other, out, visited); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// seek walks the include graph depth first from root, includes in source order.
func (x *Index) seek(ctx context.Context, root string, out SymbolMap, visited map[string]bool) error {
	stack := []frame{{path: root}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[f.path] {
			continue
		}
		visited[f.path] = true

		table, err := x.ensure(ctx, f.path)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			x.logger.Debug("skipping unreadable include", "path", f.path, "error", err)
			continue
		}

		for _, sym := range table.Symbols {
			full := append(slices.Clone(f.prefix), sym.Path...)
			for i := len(full) - 1; i >= 0; i-- {
				name := strings.Replace(strings.Join(full[i:], "."), "..", ".", 1)
				if _, taken := out[name]; !taken {
					out[name] = sym
				}
			}
		}

		for i := len(table.Includes) - 1; i >= 0; i-- {
			inc := table.Includes[i]
			if visited[inc.FullPath] {
				continue
			}
			stack = append(stack, frame{
				path:   inc.FullPath,
				prefix: append(slices.Clone(f.prefix), inc.LabelPath...),
			})
		}
	}
	return nil
}

// FilesWithIncludes returns path and every file transitively included from
// it, each with the scope it was included under. Files that cannot be opened
// are left out.
func (x *Index) FilesWithIncludes(ctx context.Context, path string) ([]ScopedFile, error) {
	path = filepath.Clean(path)
	var out []ScopedFile
	seen := map[string]bool{path: true}
	stack := []ScopedFile{{Path: path}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		table, err := x.ensure(ctx, f.Path)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			x.logger.Debug("include closure skips unreadable file", "path", f.Path, "error", err)
			continue
		}
		out = append(out, f)

		for i := len(table.Includes) - 1; i >= 0; i-- {
			inc := table.Includes[i]
			if seen[inc.FullPath] {
				continue
			}
			seen[inc.FullPath] = true
			stack = append(stack, ScopedFile{
				Path:        inc.FullPath,
				LabelPath:   inc.LabelPath,
				ParentLabel: inc.ParentLabel,
			})
		}
	}
	return out, nil
}
