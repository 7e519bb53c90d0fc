package assembler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80asm/macroasm-ls/assembler"
)

func TestParseNumeral(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"42", 42},
		{"-7", -7},
		{"$FF", 255},
		{"#1f", 31},
		{"0x10", 16},
		{"0FFh", 255},
		{"@17", 15},
		{"17o", 15},
		{"%1010", 10},
		{"0b11", 3},
		{"101b", 5},
	}
	for _, tt := range tests {
		got, ok := assembler.ParseNumeral(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, ok := assembler.ParseNumeral("loop")
	assert.False(t, ok)
}

func hoverAt(line string, char int) (string, assembler.TextRange, bool) {
	doc := assembler.NewDocument("/src/hover.asm", line)
	return assembler.HoverAt(doc, assembler.TextPosition{Line: 0, Char: char})
}

func TestHoverInstruction(t *testing.T) {
	text, r, ok := hoverAt("\tld a, (hl)", 2)
	require.True(t, ok)
	assert.Contains(t, text, "Load Instruction.")
	assert.Equal(t, assembler.LineRange(0, 1, 3), r)
}

func TestHoverRegisters(t *testing.T) {
	text, _, ok := hoverAt("\tld a, (hl)", 4)
	require.True(t, ok)
	assert.Contains(t, text, "Accumulator")

	text, r, ok := hoverAt("\tld a, (hl)", 8)
	require.True(t, ok)
	assert.Contains(t, text, "`(hl)`")
	assert.Equal(t, assembler.LineRange(0, 7, 11), r)

	text, _, ok = hoverAt("\tex af, af'", 9)
	require.True(t, ok)
	assert.Contains(t, text, "`af'`")
}

func TestHoverCondition(t *testing.T) {
	text, r, ok := hoverAt("\tjp nz, loop", 4)
	require.True(t, ok)
	assert.Equal(t, "Condition `nz`\n\nZero flag reset", text)
	assert.Equal(t, assembler.LineRange(0, 4, 6), r)
}

func TestHoverNumeral(t *testing.T) {
	text, _, ok := hoverAt("\tld a, $FF", 9)
	require.True(t, ok)
	assert.Equal(t, "Integer Literal `255` (`$FF`, `%11111111`)", text)
}

func TestHoverIgnoresCommentsAndStrings(t *testing.T) {
	_, _, ok := hoverAt("\tnop ; ld a, b", 8)
	assert.False(t, ok)

	_, _, ok = hoverAt("\tdb \"ld a\"", 6)
	assert.False(t, ok)
}
