package formatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80asm/macroasm-ls/assembler"
	"github.com/z80asm/macroasm-ls/config"
	"github.com/z80asm/macroasm-ls/formatter"
)

func formatLine(t *testing.T, props config.Props, line string) string {
	t.Helper()
	doc := assembler.NewDocument("test.asm", line)
	return formatter.Apply(doc, formatter.New(props).Document(doc))
}

func TestFormatLines(t *testing.T) {
	spaces := config.Defaults()
	spaces.IndentSpaces = true
	spaces.IndentSize = 4

	upper := config.Defaults()
	upper.UppercaseKeywords = config.On
	upper.BracketType = config.BracketSquare
	upper.SpaceAfterArgument = true

	motorola := config.Defaults()
	motorola.HexaNumberStyle = config.HexMotorola
	motorola.HexaNumberCase = config.On

	intel := config.Defaults()
	intel.HexaNumberStyle = config.HexIntel

	cStyle := config.Defaults()
	cStyle.HexaNumberStyle = config.HexCStyle

	noColon := config.Defaults()
	noColon.ColonAfterLabels = config.Off

	colon := config.Defaults()
	colon.ColonAfterLabels = config.On

	joined := config.Defaults()
	joined.SplitInstructionsByColon = false

	single := config.Defaults()
	single.WhitespaceAfterInstruction = config.WhitespaceSingleSpace

	tests := []struct {
		name  string
		props config.Props
		in    string
		want  string
	}{
		{"label and instruction", config.Defaults(), "start: ld a,b ; load", "start:\t\tld\ta,b ; load"},
		{"whitespace only", config.Defaults(), " \t ", ""},
		{"comment line", config.Defaults(), "; --- header ---", "; --- header ---"},
		{"indented comment", config.Defaults(), "\t; note", "\t; note"},
		{"spaces", spaces, "\tnop", "        nop"},
		{"keyword case and brackets", upper, "\tld a,(hl)", "\t\tLD\tA, [HL]"},
		{"motorola", motorola, "\tld a,0ffh", "\t\tld\ta,$0FF"},
		{"intel", intel, "\tld a,$ff", "\t\tld\ta,0ffh"},
		{"c-style", cStyle, "\tld hl,#1F", "\t\tld\thl,0x1F"},
		{"drop label colon", noColon, "start: nop", "start\t\tnop"},
		{"add label colon", colon, "start nop", "start:\t\tnop"},
		{"split by colon", config.Defaults(), "\tld a,b : nop", "\t\tld\ta,b\n\t\tnop"},
		{"split keeps instruction whitespace", config.Defaults(), "\tnop : ld a,(hl) : ret", "\t\tnop\n\t\tld\ta,(hl)\n\t\tret"},
		{"split single space", single, "\tnop : ld a,(hl)", "\t\tnop\n\t\tld a,(hl)"},
		{"keyword label keeps colon", noColon, "ld: nop", "ld:\t\tnop"},
		{"keep joined", joined, "\tld a,b:nop", "\t\tld\ta,b : nop"},
		{"long label", config.Defaults(), "averyverylonglabel: nop", "averyverylonglabel:\n\t\tnop"},
		{"assignment", config.Defaults(), "x = 5", "x = 5"},
		{"equ", config.Defaults(), "VALUE equ 5", "VALUE\t\tequ\t5"},
		{"module", config.Defaults(), "MODULE gfx", "\tMODULE\tgfx"},
		{"endmodule", config.Defaults(), "ENDMODULE", "\tENDMODULE"},
		{"macro", config.Defaults(), "\tMACRO mymac p1, p2", "\tMACRO\tmymac p1,p2"},
		{"string argument", config.Defaults(), "\tdb \"a:b\",0", "\t\tdb\t\"a:b\",0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatLine(t, tt.props, tt.in))
		})
	}
}

func TestFormatIdempotent(t *testing.T) {
	src := "; header\n" +
		"\tMODULE gfx\n" +
		"start:  ld a,b ; load\n" +
		".loop: djnz .loop\n" +
		"\tld hl,$4000 : ld de,#4001\n" +
		"VALUE equ 0ffh\n" +
		"x = 5\n" +
		"averyverylonglabel: ret\n" +
		"\tnop : ld a,(hl) : ret\n" +
		"ld: nop\n" +
		"\tex af,af'\n" +
		"\tdb \"text; not a comment\",0\n" +
		"   \n" +
		"ENDMODULE\n"

	configs := map[string]config.Props{"defaults": config.Defaults()}

	p := config.Defaults()
	p.IndentSpaces = true
	p.IndentSize = 4
	p.UppercaseKeywords = config.On
	p.HexaNumberStyle = config.HexIntel
	p.HexaNumberCase = config.On
	p.BracketType = config.BracketSquare
	configs["spaces upper intel"] = p

	p = config.Defaults()
	p.SplitInstructionsByColon = false
	p.WhitespaceAfterInstruction = config.WhitespaceSingleSpace
	p.HexaNumberStyle = config.HexHash
	p.ColonAfterLabels = config.On
	p.SpaceAfterArgument = true
	configs["joined single space"] = p

	p = config.Defaults()
	p.ColonAfterLabels = config.Off
	configs["no label colons"] = p

	for name, props := range configs {
		t.Run(name, func(t *testing.T) {
			f := formatter.New(props)
			doc := assembler.NewDocument("test.asm", src)
			first := f.Document(doc)
			require.NotEmpty(t, first)

			again := assembler.NewDocument("test.asm", formatter.Apply(doc, first))
			assert.Empty(t, f.Document(again), formatter.Apply(doc, first))
		})
	}
}

func TestFormatOnType(t *testing.T) {
	f := formatter.New(config.Defaults())

	doc := assembler.NewDocument("test.asm", "\tld a, ")
	edits := f.OnType(doc, assembler.TextPosition{Line: 0, Char: 7}, ",")
	require.Len(t, edits, 1)
	assert.Equal(t, "\t\tld\ta, ", edits[0].NewText)

	doc = assembler.NewDocument("test.asm", "start: nop\n")
	edits = f.OnType(doc, assembler.TextPosition{Line: 1, Char: 0}, "\n")
	require.Len(t, edits, 1)
	assert.Equal(t, 0, edits[0].Range.Start.Line)
	assert.Equal(t, "start:\t\tnop", edits[0].NewText)

	// multi-instruction lines wait until the line is finished
	doc = assembler.NewDocument("test.asm", "\tld a,b : n")
	assert.Empty(t, f.OnType(doc, assembler.TextPosition{Line: 0, Char: 11}, "n"))
}
