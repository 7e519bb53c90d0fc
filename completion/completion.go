package completion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/z80asm/macroasm-ls/assembler"
	"github.com/z80asm/macroasm-ls/config"
	"github.com/z80asm/macroasm-ls/symbols"
)

// Kind mirrors the LSP CompletionItemKind numbering.
type Kind int

const (
	KindFunction Kind = 3
	KindVariable Kind = 6
	KindModule   Kind = 9
	KindValue    Kind = 12
	KindKeyword  Kind = 14
)

// Item is one suggestion. InsertText uses snippet syntax.
type Item struct {
	Label            string
	Kind             Kind
	InsertText       string
	SortText         string
	Documentation    string
	CommitCharacters []string
	Preselect        bool
	Range            *assembler.TextRange
}

type Provider struct {
	index  *symbols.Index
	logger *slog.Logger
}

func NewProvider(index *symbols.Index, logger *slog.Logger) *Provider {
	return &Provider{index: index, logger: logger}
}

// suggestion is what the fragment under the cursor asks for.
type suggestion int

const (
	suggestNone suggestion = iota
	suggestInstruction
	suggestRegister
	suggestCondition
)

// Complete proposes mnemonics, operands and visible symbols for the line
// text left of pos.
func (p *Provider) Complete(ctx context.Context, doc *assembler.Document, pos assembler.TextPosition, props config.Props) ([]Item, error) {
	line := doc.LineAt(pos.Line)
	if pos.Char > len(line) {
		pos.Char = len(line)
	}
	if idx := assembler.CommentIndex(line); idx >= 0 && idx < pos.Char {
		return nil, nil
	}

	base := 0
	if m := assembler.Patterns.LabelDefinition.FindStringSubmatch(line); m != nil && !assembler.IsKeyword(m[1]) {
		base = len(m[0])
		for base < len(line) && (line[base] == ' ' || line[base] == '\t') {
			base++
		}
	}
	if base >= pos.Char {
		return nil, nil
	}
	text := line[base:pos.Char]
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	parts := assembler.SplitOutsideQuotes(text, ':')
	fragment := parts[len(parts)-1]
	fragmentStart := base + len(text) - len(fragment)
	if fragment == "" {
		return nil, nil
	}

	var out []Item
	want := suggestNone

	// a mnemonic followed by whitespace is an instruction awaiting operands,
	// not a label in front of one
	m := assembler.Patterns.ShouldSuggestInstruction.FindStringSubmatchIndex(fragment)
	if m != nil && m[4] >= 0 && assembler.IsKeyword(fragment[m[4]:m[5]]) {
		m = nil
	}

	if m != nil {
		want = suggestInstruction
		out = instructionItems(fragment, m, fragmentStart, pos, props)
	} else if m := assembler.Patterns.ShouldSuggest2ArgRegister.FindStringSubmatch(fragment); m != nil {
		want = suggestRegister
		uppercase := shouldUppercase(m[1], props.UppercaseKeywords)
		if strings.EqualFold(m[1], "ex") && strings.EqualFold(m[2], "af") {
			text := uppercaseIfNeeded("af'", uppercase)
			return []Item{{
				Label:            text,
				Kind:             KindValue,
				InsertText:       text + props.EOL + "$0",
				CommitCharacters: []string{"\n"},
			}}, nil
		}
		for i, reg := range assembler.Registers {
			out = append(out, registerItem(reg, i, uppercase, true, nil, props))
		}
	} else if m := assembler.Patterns.ShouldSuggest1ArgRegister.FindStringSubmatchIndex(fragment); m != nil {
		want = suggestRegister
		instruction := fragment[m[2]:m[3]]
		uppercase := shouldUppercase(instruction, props.UppercaseKeywords)

		tier := assembler.Registers
		switch {
		case m[4] >= 0:
			tier = assembler.Registers[assembler.RegR16Index:assembler.RegStackIndex]
		case m[6] >= 0:
			tier = assembler.Registers[:assembler.RegR16Index]
		}

		start := m[3]
		for start < len(fragment) && (fragment[start] == ' ' || fragment[start] == '\t') {
			start++
		}
		r := assembler.LineRange(pos.Line, fragmentStart+start, pos.Char)
		for i, reg := range tier {
			out = append(out, registerItem(reg, i, uppercase, false, &r, props))
		}
	} else if m := assembler.Patterns.ShouldSuggestConditionals.FindStringSubmatch(fragment); m != nil {
		want = suggestCondition
		uppercase := shouldUppercase(m[1], props.UppercaseKeywords)
		for i, cond := range assembler.Conditionals {
			out = append(out, registerItem(cond, i, uppercase, false, nil, props))
		}
	}

	visible, err := p.index.Symbols(ctx, doc.Path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(visible))
	for name := range visible {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		sym := visible[name]

		kind := KindVariable
		switch sym.Kind {
		case assembler.SymbolKindModule:
			kind = KindModule
			if want == suggestInstruction {
				continue
			}
		case assembler.SymbolKindMacro:
			kind = KindFunction
		default:
			if want == suggestInstruction {
				continue
			}
		}

		item := Item{
			Label:            name,
			Kind:             kind,
			InsertText:       name,
			CommitCharacters: []string{"\n"},
		}
		if len(sym.Path) > 1 {
			item.Documentation = sym.Declaration
		}
		if sym.Documentation != "" {
			if item.Documentation != "" {
				item.Documentation += "\n\n"
			}
			item.Documentation += sym.Documentation
		}

		if sym.Location.Path == doc.Path {
			delta := sym.Line - pos.Line
			if delta < 0 {
				delta = -delta
			}
			item.SortText = "!z" + pad(delta, 10)
		} else {
			item.SortText = sym.Declaration
		}

		if name[0] == '.' {
			if dot := strings.LastIndexByte(text, '.'); dot > 0 {
				r := assembler.LineRange(pos.Line, base+dot, pos.Char)
				item.Range = &r
			}
		}
		out = append(out, item)
	}

	p.logger.Debug("completion", "path", doc.Path, "line", pos.Line, "items", len(out))
	return out, nil
}

func instructionItems(fragment string, m []int, fragmentStart int, pos assembler.TextPosition, props config.Props) []Item {
	var part string
	start := len(fragment)
	if m[6] >= 0 {
		part = fragment[m[6]:m[7]]
		start = m[6]
	}
	uppercase := shouldUppercase(part, props.UppercaseKeywords)
	r := assembler.LineRange(pos.Line, fragmentStart+start, pos.Char)

	items := make([]Item, 0, len(assembler.Instructions)+len(assembler.NextInstructions))
	for _, snippet := range assembler.Instructions {
		items = append(items, instructionItem(snippet, uppercase, false, &r, props))
	}
	for _, snippet := range assembler.NextInstructions {
		items = append(items, instructionItem(snippet, uppercase, true, &r, props))
	}

	if part != "" {
		find := uppercaseIfNeeded(part, uppercase)
		for i := range items {
			if strings.HasPrefix(items[i].Label, find) {
				items[i].Preselect = true
				break
			}
		}
	}
	return items
}

func instructionItem(snippet string, uppercase, z80n bool, r *assembler.TextRange, props config.Props) Item {
	delimiter := snippet[len(snippet)-1]
	name := strings.TrimSpace(uppercaseIfNeeded(snippet, uppercase))

	insert := name
	switch {
	case delimiter == '\t':
		switch {
		case props.WhitespaceAfterInstruction == config.WhitespaceSingleSpace:
			insert += " "
		case props.WhitespaceAfterInstruction == config.WhitespaceTab || !props.IndentSpaces:
			insert += "\t"
		default:
			size := max(props.IndentSize, 1)
			tabSize := size
			for len(name) > tabSize {
				tabSize += size
			}
			insert += strings.Repeat(" ", tabSize-len(name))
		}
	case delimiter == '\n' && props.SplitInstructionsByColon:
		insert += props.EOL
	default:
		insert += " "
	}

	item := Item{
		Label:            name,
		Kind:             KindKeyword,
		InsertText:       insert + "$0",
		CommitCharacters: []string{"\t"},
		Range:            r,
	}
	if z80n {
		item.Documentation = "(Z80N)"
		item.SortText = "z" + name
	}
	return item
}

func registerItem(snippet string, index int, uppercase, secondArgument bool, r *assembler.TextRange, props config.Props) Item {
	snippet = uppercaseIfNeeded(snippet, uppercase)

	// with format on type the formatter already placed the separator
	prefix, suffix := "", ""
	if !props.FormatOnType && secondArgument {
		if props.SpaceAfterArgument {
			prefix = " "
		}
		if props.SplitInstructionsByColon {
			suffix = props.EOL
		}
	}

	commit := []string{"\t", "\n"}
	if !secondArgument {
		commit = append([]string{","}, commit...)
	}

	if props.BracketType == config.BracketSquare && strings.HasPrefix(snippet, "(") {
		snippet = strings.Replace(strings.Replace(snippet, "(", "[", 1), ")", "]", 1)
	}

	return Item{
		Label:            snippet,
		Kind:             KindValue,
		InsertText:       prefix + strings.Replace(snippet, "*", "${1:0}", 1) + suffix + "$0",
		SortText:         "!" + pad(index, 2),
		CommitCharacters: commit,
		Range:            r,
	}
}

func shouldUppercase(part string, mode config.Tristate) bool {
	switch mode {
	case config.On:
		return true
	case config.Off:
		return false
	}
	return part != "" && unicode.IsUpper(rune(part[0]))
}

func uppercaseIfNeeded(s string, uppercase bool) string {
	if uppercase {
		return strings.ToUpper(s)
	}
	return s
}

// pad renders n as upper case hex, zero padded to width.
func pad(n, width int) string {
	return fmt.Sprintf("%0*X", width, n)
}
