package assembler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/z80asm/macroasm-ls/assembler"
)

func TestIsKeyword(t *testing.T) {
	for _, w := range []string{"ld", "LD", "djnz", "include", "ENDMODULE", "nextreg", "defb", "equ", "org"} {
		assert.True(t, assembler.IsKeyword(w), w)
	}
	for _, w := range []string{"loop", "start", ".ld", "ldx", "screen"} {
		assert.False(t, assembler.IsKeyword(w), w)
	}
}

func TestIsNumeral(t *testing.T) {
	for _, w := range []string{"42", "-7", "$FF", "#1f", "0x10", "0FFh", "@17", "17o", "%1010", "0b11", "101b"} {
		assert.True(t, assembler.IsNumeral(w), w)
	}
	for _, w := range []string{"FFh", "loop", "$", "0x", "af"} {
		assert.False(t, assembler.IsNumeral(w), w)
	}
}

func TestIsRegisterOrCondition(t *testing.T) {
	for _, w := range []string{"a", "HL", "ix", "ixh", "af'", "nz", "pe", "sp"} {
		assert.True(t, assembler.IsRegisterOrCondition(w), w)
	}
	assert.False(t, assembler.IsRegisterOrCondition("loop"))
}

func TestIsHorizontalRule(t *testing.T) {
	assert.True(t, assembler.IsHorizontalRule("------"))
	assert.True(t, assembler.IsHorizontalRule("=="))
	assert.False(t, assembler.IsHorizontalRule("-"))
	assert.False(t, assembler.IsHorizontalRule("--x--"))
}

func TestCommentIndex(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"\tld a, b ; copy", 9},
		{"\tld a, \";\" ; semicolon", 11},
		{"\tex af, af' ; swap", 12},
		{"\tnop // c style", 5},
		{"\tld a, 'x'", -1},
		{"label:", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, assembler.CommentIndex(tt.line), tt.line)
	}
}

func TestNeutralizeLineKeepsOffsets(t *testing.T) {
	line := "msg: db \"a;b\", 0 ; text"
	neutral := assembler.NeutralizeLine(line)
	assert.Len(t, neutral, len(line))
	assert.Equal(t, "msg: db      , 0       ", neutral)
}

func TestSplitOutsideQuotes(t *testing.T) {
	assert.Equal(t, []string{"\tld a, \":\" ", " nop"}, assembler.SplitOutsideQuotes("\tld a, \":\" : nop", ':'))
	assert.Equal(t, []string{"label", " ex af, af'"}, assembler.SplitOutsideQuotes("label: ex af, af'", ':'))
}

func TestWordRangeAt(t *testing.T) {
	line := "\tcall foo.bar ; go"
	start, end, ok := assembler.WordRangeAt(line, 8, assembler.Patterns.FullLabel)
	assert.True(t, ok)
	assert.Equal(t, "foo.bar", line[start:end])

	start, end, ok = assembler.WordRangeAt(line, 13, assembler.Patterns.FullLabel)
	assert.True(t, ok)
	assert.Equal(t, "foo.bar", line[start:end])

	_, _, ok = assembler.WordRangeAt(line, 0, assembler.Patterns.FullLabel)
	assert.False(t, ok)
}
