package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80asm/macroasm-ls/config"
	"github.com/z80asm/macroasm-ls/util"
	"github.com/z80asm/macroasm-ls/workspace"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	main := writeFile(t, root, "main.asm", "")
	inc := writeFile(t, root, "lib/gfx.INC", "")
	writeFile(t, root, "readme.md", "")
	writeFile(t, root, ".hidden.asm", "")
	writeFile(t, root, ".git/config.asm", "")
	writeFile(t, root, "build/out.asm", "")
	writeFile(t, root, "gen/table.asm", "")
	writeFile(t, root, "vendor/rom.asm", "")
	writeFile(t, root, ".gitignore", "gen/\n")

	files := config.Defaults().Files
	files.Exclude = []string{"vendor/"}

	found, err := workspace.Discover(root, files)
	require.NoError(t, err)
	assert.Equal(t, []string{inc, main}, found)
}

type recorder struct {
	mu      sync.Mutex
	changed []string
	deleted []string
}

func (r *recorder) FileChanged(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, path)
}

func (r *recorder) FileDeleted(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, path)
}

func (r *recorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.changed...), append([]string(nil), r.deleted...)
}

func TestWatcherForwardsChanges(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{}

	filter := workspace.NewFilter(root, config.Defaults().Files)
	w, err := workspace.NewWatcher(filter, rec, 20*time.Millisecond, util.NopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	path := writeFile(t, root, "main.asm", "start: nop\n")
	writeFile(t, root, "notes.txt", "ignored")

	assert.Eventually(t, func() bool {
		changed, _ := rec.snapshot()
		return slices.Contains(changed, path)
	}, 2*time.Second, 10*time.Millisecond)
	changed, _ := rec.snapshot()
	assert.NotContains(t, changed, filepath.Join(root, "notes.txt"))

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		_, deleted := rec.snapshot()
		return slices.Contains(deleted, path)
	}, 2*time.Second, 10*time.Millisecond)
}
