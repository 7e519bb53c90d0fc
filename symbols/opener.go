package symbols

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/z80asm/macroasm-ls/assembler"
)

// DocumentOpener supplies documents the index has not parsed yet.
type DocumentOpener interface {
	Open(ctx context.Context, path string) (*assembler.Document, error)
}

// DiskOpener reads documents straight from the file system.
type DiskOpener struct{}

func (DiskOpener) Open(ctx context.Context, path string) (*assembler.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return assembler.NewDocument(path, string(data)), nil
}

// Overlay serves documents held open by the editor and falls back to another
// opener for everything else.
type Overlay struct {
	mu       sync.RWMutex
	docs     map[string]*assembler.Document
	fallback DocumentOpener
}

func NewOverlay(fallback DocumentOpener) *Overlay {
	if fallback == nil {
		fallback = DiskOpener{}
	}
	return &Overlay{
		docs:     make(map[string]*assembler.Document),
		fallback: fallback,
	}
}

func (o *Overlay) Set(doc *assembler.Document) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.docs[filepath.Clean(doc.Path)] = doc
}

func (o *Overlay) Delete(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.docs, filepath.Clean(path))
}

// Get returns the open editor buffer for path, if any.
func (o *Overlay) Get(path string) (*assembler.Document, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	doc, ok := o.docs[filepath.Clean(path)]
	return doc, ok
}

func (o *Overlay) Open(ctx context.Context, path string) (*assembler.Document, error) {
	if doc, ok := o.Get(path); ok {
		return doc, nil
	}
	return o.fallback.Open(ctx, path)
}
