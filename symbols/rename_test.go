package symbols_test

import (
	"context"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80asm/macroasm-ls/assembler"
	"github.com/z80asm/macroasm-ls/symbols"
)

const renameMain = "\tinclude \"gfx.inc\"\n" +
	"start:\n" +
	"\tcall clear ; clear first\n" +
	".loop:\n" +
	"\tjr .loop\n" +
	"\tjp gfx.clear\n" +
	"other:\n" +
	".loop:\n" +
	"\tjr .loop\n" +
	"\tdb \"clear\"\n"

const renameInclude = "MODULE gfx\n" +
	"clear:\n" +
	"\tld hl, 0 ; clear screen\n" +
	"\tret\n" +
	"ENDMODULE\n"

func applyEdits(text string, edits []symbols.Edit) string {
	lines := strings.Split(text, "\n")
	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b symbols.Edit) int {
		if a.Range.Start.Line != b.Range.Start.Line {
			return b.Range.Start.Line - a.Range.Start.Line
		}
		return b.Range.Start.Char - a.Range.Start.Char
	})
	for _, e := range sorted {
		l := lines[e.Range.Start.Line]
		lines[e.Range.Start.Line] = l[:e.Range.Start.Char] + e.NewText + l[e.Range.End.Char:]
	}
	return strings.Join(lines, "\n")
}

func renameAt(t *testing.T, x *symbols.Index, path string, line, char int, newName string) symbols.WorkspaceEdit {
	t.Helper()
	renamer := symbols.NewRenamer(x, symbols.NewResolver(x))
	edits, err := renamer.Rename(context.Background(), openDoc(t, path), assembler.TextPosition{Line: line, Char: char}, newName)
	require.NoError(t, err)
	return edits
}

// applyWorkspace writes the edits to disk and reindexes the touched files.
func applyWorkspace(t *testing.T, x *symbols.Index, edits symbols.WorkspaceEdit) {
	t.Helper()
	for path, fileEdits := range edits {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, []byte(applyEdits(string(data), fileEdits)), 0o644))
		require.NoError(t, x.Refresh(context.Background(), path))
	}
}

func TestRenameGlobalAcrossIncludes(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", renameMain)
	inc := writeFile(t, dir, "gfx.inc", renameInclude)
	x := newIndex()

	edits := renameAt(t, x, main, 2, 7, "wipe")
	require.Len(t, edits, 2)
	assert.Equal(t, []symbols.Edit{
		{Range: assembler.LineRange(2, 6, 11), NewText: "wipe"},
		{Range: assembler.LineRange(5, 8, 13), NewText: "wipe"},
	}, edits[main])
	assert.Equal(t, []symbols.Edit{
		{Range: assembler.LineRange(1, 0, 5), NewText: "wipe"},
	}, edits[inc])
}

func TestRenameRoundTrip(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", renameMain)
	inc := writeFile(t, dir, "gfx.inc", renameInclude)
	x := newIndex()

	applyWorkspace(t, x, renameAt(t, x, main, 2, 7, "wipe"))
	data, err := os.ReadFile(inc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wipe:")

	applyWorkspace(t, x, renameAt(t, x, main, 2, 7, "clear"))

	gotMain, err := os.ReadFile(main)
	require.NoError(t, err)
	gotInc, err := os.ReadFile(inc)
	require.NoError(t, err)
	assert.Equal(t, renameMain, string(gotMain))
	assert.Equal(t, renameInclude, string(gotInc))
}

func TestRenameLocalLabelStaysInScope(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", renameMain)
	writeFile(t, dir, "gfx.inc", renameInclude)
	x := newIndex()

	edits := renameAt(t, x, main, 4, 5, "again")
	assert.Equal(t, []symbols.Edit{
		{Range: assembler.LineRange(3, 1, 5), NewText: "again"},
		{Range: assembler.LineRange(4, 5, 9), NewText: "again"},
	}, edits[main])
}

func TestRenameModule(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", renameMain)
	inc := writeFile(t, dir, "gfx.inc", renameInclude)
	x := newIndex()

	edits := renameAt(t, x, main, 5, 5, "video")
	assert.Equal(t, []symbols.Edit{
		{Range: assembler.LineRange(5, 4, 7), NewText: "video"},
	}, edits[main])
	assert.Equal(t, []symbols.Edit{
		{Range: assembler.LineRange(0, 7, 10), NewText: "video"},
	}, edits[inc])
}

func TestRenameThroughIncludeInsideModule(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", "MODULE gfx\n\tinclude \"spr.inc\"\nENDMODULE\n\tcall gfx.draw\n")
	spr := writeFile(t, dir, "spr.inc", "draw: ret\n")
	x := newIndex()

	edits := renameAt(t, x, main, 3, 11, "paint")
	assert.Equal(t, []symbols.Edit{
		{Range: assembler.LineRange(3, 10, 14), NewText: "paint"},
	}, edits[main])
	assert.Equal(t, []symbols.Edit{
		{Range: assembler.LineRange(0, 0, 4), NewText: "paint"},
	}, edits[spr])
}

func TestRenameUnresolvedIsEmpty(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", "\tcall nowhere\n")
	x := newIndex()

	assert.Empty(t, renameAt(t, x, main, 0, 8, "somewhere"))
}

func TestRenameCancelled(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.asm", renameMain)
	writeFile(t, dir, "gfx.inc", renameInclude)
	x := newIndex()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	renamer := symbols.NewRenamer(x, symbols.NewResolver(x))
	edits, err := renamer.Rename(ctx, openDoc(t, main), assembler.TextPosition{Line: 2, Char: 7}, "wipe")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, edits)
}

func TestPrepareRenameReasons(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.asm", "\tinclude \"x.inc\"\n\tnop ; hi\n\tdb \"abc\"\n\tld a, b\n\tld a, $FF\nloop: nop\n")
	doc := openDoc(t, path)
	x := newIndex()
	renamer := symbols.NewRenamer(x, symbols.NewResolver(x))

	tests := []struct {
		line, char int
		want       *assembler.RenameError
	}{
		{0, 3, assembler.RenameErrors.Include()},
		{1, 7, assembler.RenameErrors.Comment()},
		{2, 6, assembler.RenameErrors.String()},
		{3, 1, assembler.RenameErrors.Keyword()},
		{3, 7, assembler.RenameErrors.Register()},
		{4, 9, assembler.RenameErrors.Numeral()},
	}
	for _, tt := range tests {
		_, err := renamer.PrepareRename(doc, assembler.TextPosition{Line: tt.line, Char: tt.char})
		require.Error(t, err)
		assert.True(t, assembler.RenameErrors.IsRenameError(err))
		assert.EqualError(t, err, tt.want.Reason)
	}

	r, err := renamer.PrepareRename(doc, assembler.TextPosition{Line: 5, Char: 2})
	require.NoError(t, err)
	assert.Equal(t, assembler.LineRange(5, 0, 4), r)
}
