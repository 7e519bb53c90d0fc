package completion_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80asm/macroasm-ls/assembler"
	"github.com/z80asm/macroasm-ls/completion"
	"github.com/z80asm/macroasm-ls/config"
	"github.com/z80asm/macroasm-ls/symbols"
	"github.com/z80asm/macroasm-ls/util"
)

const source = "start:\n" + // 0
	"\tld \n" + // 1
	"\tl\n" + // 2
	"\tMACRO mymac p\n" + // 3
	"\tENDM\n" + // 4
	"\tpop \n" + // 5
	"\tex af,\n" + // 6
	"\tjp \n" + // 7
	"\tnop ; ld \n" + // 8
	"\tL\n" + // 9
	"MODULE gfx\n" + // 10
	"clear: ret\n" + // 11
	"ENDMODULE\n" + // 12
	"loop: push \n" + // 13
	"ld \n" // 14

func complete(t *testing.T, line, char int, props config.Props) []completion.Item {
	t.Helper()
	doc := assembler.NewDocument(filepath.Join(t.TempDir(), "main.asm"), source)
	x := symbols.NewIndex(symbols.DiskOpener{}, symbols.WithLogger(util.NopLogger()))
	x.Update(doc)

	items, err := completion.NewProvider(x, util.NopLogger()).
		Complete(context.Background(), doc, assembler.TextPosition{Line: line, Char: char}, props)
	require.NoError(t, err)
	return items
}

func labels(items []completion.Item, kind completion.Kind) []string {
	var out []string
	for _, it := range items {
		if it.Kind == kind {
			out = append(out, it.Label)
		}
	}
	return out
}

func find(items []completion.Item, label string) *completion.Item {
	for i := range items {
		if items[i].Label == label {
			return &items[i]
		}
	}
	return nil
}

func TestCompleteAfterLoadSuggestsRegisters(t *testing.T) {
	items := complete(t, 1, 4, config.Defaults())

	assert.Empty(t, labels(items, completion.KindKeyword))
	assert.Equal(t, assembler.Registers, labels(items, completion.KindValue))

	a := find(items, "a")
	require.NotNil(t, a)
	assert.Equal(t, "a$0", a.InsertText)
	assert.Equal(t, "!00", a.SortText)
	assert.Equal(t, []string{",", "\t", "\n"}, a.CommitCharacters)
	require.NotNil(t, a.Range)
	assert.Equal(t, assembler.LineRange(1, 4, 4), *a.Range)

	start := find(items, "start")
	require.NotNil(t, start)
	assert.Equal(t, completion.KindVariable, start.Kind)
	assert.Equal(t, "!z0000000001", start.SortText)
	assert.NotNil(t, find(items, "gfx.clear"))
}

func TestCompleteInstructionPosition(t *testing.T) {
	items := complete(t, 2, 2, config.Defaults())

	ld := find(items, "ld")
	require.NotNil(t, ld)
	assert.Equal(t, completion.KindKeyword, ld.Kind)
	assert.Equal(t, "ld\t$0", ld.InsertText)
	assert.True(t, ld.Preselect)
	assert.Equal(t, assembler.LineRange(2, 1, 2), *ld.Range)

	nop := find(items, "nop")
	require.NotNil(t, nop)
	assert.Equal(t, "nop\n$0", nop.InsertText)

	mul := find(items, "mul")
	require.NotNil(t, mul)
	assert.Equal(t, "zmul", mul.SortText)
	assert.Equal(t, "(Z80N)", mul.Documentation)

	// macros stand in for instructions, labels and modules do not
	assert.Equal(t, []string{"mymac"}, labels(items, completion.KindFunction))
	assert.Empty(t, labels(items, completion.KindVariable))
	assert.Empty(t, labels(items, completion.KindModule))
}

func TestCompleteMirrorsCase(t *testing.T) {
	items := complete(t, 9, 2, config.Defaults())
	ld := find(items, "LD")
	require.NotNil(t, ld)
	assert.Equal(t, "LD\t$0", ld.InsertText)

	props := config.Defaults()
	props.UppercaseKeywords = config.Off
	props.WhitespaceAfterInstruction = config.WhitespaceSingleSpace
	items = complete(t, 9, 2, props)
	ld = find(items, "ld")
	require.NotNil(t, ld)
	assert.Equal(t, "ld $0", ld.InsertText)
}

func TestCompleteStackTier(t *testing.T) {
	items := complete(t, 5, 5, config.Defaults())
	assert.Equal(t, []string{"hl", "de", "bc", "af", "ix", "iy"}, labels(items, completion.KindValue))

	// a leading label is skipped before classification
	items = complete(t, 13, 11, config.Defaults())
	assert.Equal(t, []string{"hl", "de", "bc", "af", "ix", "iy"}, labels(items, completion.KindValue))
}

func TestCompleteMnemonicAtColumnZero(t *testing.T) {
	items := complete(t, 14, 3, config.Defaults())
	assert.Empty(t, labels(items, completion.KindKeyword))
	assert.Equal(t, assembler.Registers, labels(items, completion.KindValue))
}

func TestCompleteExchangeShadowRegister(t *testing.T) {
	items := complete(t, 6, 7, config.Defaults())
	require.Len(t, items, 1)
	assert.Equal(t, "af'", items[0].Label)
	assert.Equal(t, "af'\n$0", items[0].InsertText)
}

func TestCompleteConditions(t *testing.T) {
	items := complete(t, 7, 4, config.Defaults())
	assert.Equal(t, assembler.Conditionals, labels(items, completion.KindValue))
}

func TestCompleteInsideComment(t *testing.T) {
	assert.Empty(t, complete(t, 8, 10, config.Defaults()))
}

func TestCompleteSquareBrackets(t *testing.T) {
	props := config.Defaults()
	props.BracketType = config.BracketSquare
	items := complete(t, 1, 4, props)

	assert.NotNil(t, find(items, "[hl]"))
	ix := find(items, "[ix+*]")
	require.NotNil(t, ix)
	assert.Equal(t, "[ix+${1:0}]$0", ix.InsertText)
}
