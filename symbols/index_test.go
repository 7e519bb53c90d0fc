package symbols_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80asm/macroasm-ls/assembler"
	"github.com/z80asm/macroasm-ls/symbols"
	"github.com/z80asm/macroasm-ls/util"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newIndex(opts ...symbols.Option) *symbols.Index {
	opts = append([]symbols.Option{symbols.WithLogger(util.NopLogger())}, opts...)
	return symbols.NewIndex(symbols.DiskOpener{}, opts...)
}

func TestSymbolsFollowIncludes(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", "\tinclude \"lib/util.inc\"\nstart:\n\tcall clear\n")
	writeFile(t, dir, "lib/util.inc", "MODULE util\nclear: ret\nENDMODULE\n\tinclude \"deep.inc\"\n")
	writeFile(t, dir, "lib/deep.inc", "deep: nop\n")

	visible, err := newIndex().Symbols(context.Background(), main)
	require.NoError(t, err)

	for _, name := range []string{"start", "util", "util.clear", "clear", "deep"} {
		assert.Contains(t, visible, name)
	}
	assert.Same(t, visible["clear"], visible["util.clear"])
}

func TestSymbolsIncludeScopePrefix(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", "MODULE gfx\n\tinclude \"spr.inc\"\nENDMODULE\n")
	writeFile(t, dir, "spr.inc", "sprite: db 0\n.frame: db 1\n")

	visible, err := newIndex().Symbols(context.Background(), main)
	require.NoError(t, err)

	require.Contains(t, visible, "gfx.sprite")
	assert.Same(t, visible["sprite"], visible["gfx.sprite"])
	assert.Contains(t, visible, "gfx.sprite.frame")
	assert.Contains(t, visible, "sprite.frame")
	assert.Contains(t, visible, ".frame")
}

func TestSymbolsCycleSafe(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.asm", "\tinclude \"b.asm\"\nalpha: nop\n")
	writeFile(t, dir, "b.asm", "\tinclude \"a.asm\"\nbeta: nop\n")

	visible, err := newIndex().Symbols(context.Background(), a)
	require.NoError(t, err)

	distinct := map[*assembler.Symbol]bool{}
	for _, sym := range visible {
		distinct[sym] = true
	}
	assert.Len(t, distinct, 2)
	assert.Contains(t, visible, "alpha")
	assert.Contains(t, visible, "beta")
}

func TestSymbolsMissingInclude(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", "\tinclude \"sub.inc\"\nown: nop\n")

	x := newIndex()
	visible, err := x.Symbols(context.Background(), main)
	require.NoError(t, err)
	assert.Contains(t, visible, "own")
	assert.Len(t, visible, 1)

	diags, err := x.Diagnostics(context.Background(), main)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, assembler.Warning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "sub.inc")
}

func TestSymbolsFirstWriterWins(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", "twice: nop\n\tinclude \"other.inc\"\n")
	other := writeFile(t, dir, "other.inc", "twice: nop\nonce: nop\n")

	visible, err := newIndex().Symbols(context.Background(), main)
	require.NoError(t, err)
	require.Contains(t, visible, "twice")
	require.Contains(t, visible, "once")
	assert.Equal(t, main, visible["twice"].Location.Path)
	assert.Equal(t, other, visible["once"].Location.Path)
}

func TestSymbolsWorkspaceFallback(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", "start: nop\n")
	other := writeFile(t, dir, "other.asm", "elsewhere: nop\n")

	x := newIndex()
	require.NoError(t, x.Refresh(context.Background(), other))

	visible, err := x.Symbols(context.Background(), main)
	require.NoError(t, err)
	assert.NotContains(t, visible, "elsewhere")

	x.SetWorkspaceFallback(true)
	visible, err = x.Symbols(context.Background(), main)
	require.NoError(t, err)
	assert.Contains(t, visible, "elsewhere")
}

func TestRefreshSkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.asm", "start: nop\n")

	x := newIndex()
	ctx := context.Background()
	require.NoError(t, x.Refresh(ctx, path))
	first, ok := x.Table(path)
	require.True(t, ok)

	require.NoError(t, x.Refresh(ctx, path))
	second, _ := x.Table(path)
	assert.Same(t, first, second)

	writeFile(t, dir, "main.asm", "begin: nop\n")
	require.NoError(t, x.Refresh(ctx, path))
	third, _ := x.Table(path)
	assert.NotSame(t, first, third)
	assert.Equal(t, "begin", third.Symbols[0].Declaration)

	require.NoError(t, os.Remove(path))
	assert.Error(t, x.Refresh(ctx, path))
	_, ok = x.Table(path)
	assert.False(t, ok)
}

func TestOverlayWinsOverDisk(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.asm", "disk: nop\n")

	overlay := symbols.NewOverlay(nil)
	overlay.Set(assembler.NewDocument(path, "buffer: nop\n"))
	x := symbols.NewIndex(overlay, symbols.WithLogger(util.NopLogger()))

	visible, err := x.Symbols(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, visible, "buffer")
	assert.NotContains(t, visible, "disk")

	overlay.Delete(path)
	x.Remove(path)
	visible, err = x.Symbols(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, visible, "disk")
}

func TestSymbolsCancelled(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", "start: nop\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newIndex().Symbols(ctx, main)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilesWithIncludes(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", "start:\n\tinclude \"a.inc\"\n\tinclude \"b.inc\"\n\tinclude \"gone.inc\"\n")
	a := writeFile(t, dir, "a.inc", "\tinclude \"b.inc\"\n")
	b := writeFile(t, dir, "b.inc", "\tinclude \"main.asm\"\n")

	files, err := newIndex().FilesWithIncludes(context.Background(), main)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{main, a, b}, paths)
	assert.Equal(t, "start", files[1].ParentLabel)
}

func TestWorkspaceAndDocumentSymbols(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", "MODULE io\nshow: ret\nENDMODULE\n")
	other := writeFile(t, dir, "other.asm", "showcase: nop\nloop: nop\n")

	x := newIndex()
	ctx := context.Background()
	require.NoError(t, x.Refresh(ctx, main))
	require.NoError(t, x.Refresh(ctx, other))

	found, err := x.WorkspaceSymbols(ctx, "SHOW")
	require.NoError(t, err)
	var names []string
	for _, s := range found {
		names = append(names, s.Declaration)
	}
	assert.Equal(t, []string{"io.show", "showcase"}, names)

	docSymbols, err := x.DocumentSymbols(ctx, other)
	require.NoError(t, err)
	assert.Len(t, docSymbols, 2)
}
