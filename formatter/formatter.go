package formatter

import (
	"regexp"
	"slices"
	"strings"

	"github.com/z80asm/macroasm-ls/assembler"
	"github.com/z80asm/macroasm-ls/config"
)

type Edit struct {
	Range   assembler.TextRange
	NewText string
}

var (
	fragmentSplit = regexp.MustCompile(`^(\S+)\s+(.*)$`)
	trailingSpace = regexp.MustCompile(`\S(\s*)$`)
	trailingColon = regexp.MustCompile(`:\s*$`)
	spacedAssign  = regexp.MustCompile(`(\t| {2,})=`)
	hexPrefix     = regexp.MustCompile(`(?i)^(?:0x|[$#])`)
)

// fragment is one instruction or directive of a line.
type fragment struct {
	keyword    string
	firstParam string
	fillSpace  bool
	args       []string
}

type lineParts struct {
	fragment
	label           string
	colonAfterLabel bool
	fragments       []fragment
}

// Formatter rewrites lines according to a fixed configuration.
type Formatter struct {
	props config.Props
}

func New(props config.Props) *Formatter {
	if props.IndentSize <= 0 {
		props.IndentSize = 8
	}
	if props.EOL == "" {
		props.EOL = "\n"
	}
	return &Formatter{props: props}
}

// Document formats every line of doc.
func (f *Formatter) Document(doc *assembler.Document) []Edit {
	return f.Lines(doc, 0, doc.LineCount()-1, false)
}

// OnType formats the line being typed, or the previous one when ch is a
// newline.
func (f *Formatter) OnType(doc *assembler.Document, pos assembler.TextPosition, ch string) []Edit {
	line := pos.Line
	if ch == "\n" && line > 0 {
		line--
	}
	return f.Lines(doc, line, line, ch != "\n")
}

// Lines formats lines first through last inclusive. Only lines whose text
// changes produce an edit, so formatting twice yields nothing the second time.
func (f *Formatter) Lines(doc *assembler.Document, first, last int, onType bool) []Edit {
	var edits []Edit
	for n := max(first, 0); n <= last && n < doc.LineCount(); n++ {
		line := doc.LineAt(n)
		if line == "" {
			continue
		}
		if strings.TrimSpace(line) == "" {
			edits = append(edits, Edit{Range: assembler.LineRange(n, 0, len(line))})
			continue
		}

		text, ok := f.line(line, onType)
		if !ok || text == line[:codeEnd(line)] {
			continue
		}
		edits = append(edits, Edit{Range: assembler.LineRange(n, 0, codeEnd(line)), NewText: text})
	}
	return edits
}

// codeEnd is the offset where the code part of a line ends, before any
// trailing comment and the whitespace leading up to it.
func codeEnd(line string) int {
	idx := assembler.CommentIndex(line)
	if idx < 0 {
		return len(line)
	}
	for idx > 0 && (line[idx-1] == ' ' || line[idx-1] == '\t') {
		idx--
	}
	return idx
}

func (f *Formatter) line(line string, onType bool) (string, bool) {
	opt := f.props
	if assembler.Patterns.CommentLine.MatchString(line) {
		return "", false
	}

	text := line[:codeEnd(line)]
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	indent := -1
	var parts lineParts
	notIndented := false

	if m := assembler.Patterns.EvalExpression.FindStringSubmatch(text); m != nil {
		indent = opt.BaseIndent
		parts.label = m[1] + m[2]
		parts.colonAfterLabel = m[3] == ":"
		parts.keyword = m[4]
		parts.args = []string{m[5]}
		if m[4] == "=" {
			notIndented = !spacedAssign.MatchString(m[0])
		}
		text = strings.TrimSpace(strings.Replace(text, m[0], "", 1))
	}

	// a mnemonic at column zero is an instruction unless written with a colon
	if m := assembler.Patterns.LabelDefinition.FindStringSubmatch(text); m != nil && (m[2] == ":" || !assembler.IsKeyword(m[1])) {
		indent = opt.BaseIndent
		parts.label = m[1]
		if m[0][0] == '@' {
			parts.label = "@" + m[1]
		}
		parts.colonAfterLabel = m[2] == ":"
		text = strings.TrimSpace(text[len(m[0]):])
	}

	trimmed := trimFor(text, onType)
	trailing := ""
	if m := trailingSpace.FindStringSubmatch(text); m != nil {
		trailing = m[1]
	}

	if m := assembler.Patterns.ModuleLine.FindStringSubmatchIndex(trimmed); m != nil && m[0] == 0 {
		directive := trimmed[m[2]:m[3]]
		indent = opt.ControlIndent
		parts.keyword = strings.TrimSpace(directive)
		parts.args = []string{strings.TrimSpace(strings.Replace(text, directive, "", 1))}
		text = ""
	} else if m := assembler.Patterns.MacroLine.FindStringSubmatchIndex(trimmed); m != nil && m[0] == 0 {
		indent = opt.ControlIndent
		parts.keyword = strings.TrimSpace(trimmed[m[2]:m[3]])
		parts.firstParam = trimmed[m[4]:m[5]]
		parts.args = nil
		if m[6] >= 0 {
			parts.args = splitArgs(trimmed[m[6]:m[7]], true)
		}
		text = ""
	} else if assembler.Patterns.ControlKeywordLine.MatchString(trimmed) {
		indent = opt.ControlIndent
	}

	if strings.TrimSpace(text) != "" {
		if indent < 0 {
			indent = opt.BaseIndent
		}

		if strings.Contains(text, ":") {
			// splitting happens once typing is done
			if opt.SplitInstructionsByColon && onType {
				return "", false
			}
			if split := assembler.SplitOutsideQuotes(text, ':'); len(split) > 1 {
				for _, frag := range split {
					parts.fragments = append(parts.fragments, processFragment(strings.TrimSpace(frag)))
				}
				if !opt.SplitInstructionsByColon && onType && trailingColon.MatchString(text) {
					parts.fragments[len(parts.fragments)-1].fillSpace = true
				}
			}
		}

		if parts.fragments == nil {
			frag := processFragment(trimFor(text, onType))
			parts.keyword = frag.keyword
			parts.args = frag.args
		}
	}

	var out []string
	if parts.label != "" {
		label := parts.label
		// a mnemonic label without its colon would read back as an instruction
		if (opt.ColonAfterLabels == config.Auto && parts.colonAfterLabel) || opt.ColonAfterLabels == config.On ||
			(parts.colonAfterLabel && assembler.IsKeyword(strings.TrimPrefix(label, "@"))) {
			label += ":"
		}
		if notIndented {
			out = append(out, label+" ")
		} else {
			out = append(out, f.indent(indent, label, true))
		}
	} else {
		out = append(out, f.indent(max(indent, 0), "", false))
	}

	frags := parts.fragments
	if frags == nil {
		frags = []fragment{parts.fragment}
	}
	for i, frag := range frags {
		out = f.renderFragment(out, i, frag, indent, notIndented)
	}

	result := strings.TrimRight(strings.Join(out, ""), " \t\r\n")
	if onType {
		result += trailing
	}
	return result, true
}

func (f *Formatter) renderFragment(out []string, index int, frag fragment, indent int, notIndented bool) []string {
	opt := f.props
	if frag.keyword == "" && !frag.fillSpace {
		return out
	}

	separator := ": "
	if opt.SpaceAfterInstruction {
		separator = " : "
	}

	keyword := f.adjustCase(frag.keyword, false)
	if index > 0 {
		last := len(out) - 1
		out[last] = strings.TrimRight(out[last], " \t")

		switch {
		case opt.SplitInstructionsByColon:
			// each split fragment becomes a line of its own
			out = append(out, opt.EOL+f.indent(indent, "", false))
			out = append(out, f.instruction(keyword, notIndented))
		case frag.fillSpace:
			return append(out, strings.TrimRight(separator, " "))
		default:
			out = append(out, separator, keyword+" ")
		}
	} else {
		out = append(out, f.instruction(keyword, notIndented))
	}

	if frag.firstParam != "" {
		out = append(out, frag.firstParam+" ")
	}

	comma := ","
	if opt.SpaceAfterArgument {
		comma = ", "
	}
	for i, arg := range frag.args {
		if i > 0 {
			out = append(out, comma)
		}
		out = append(out, f.argument(arg))
	}
	return out
}

// instruction renders keyword with the whitespace configured before its
// operands.
func (f *Formatter) instruction(keyword string, notIndented bool) string {
	switch {
	case f.props.WhitespaceAfterInstruction == config.WhitespaceSingleSpace || notIndented:
		return keyword + " "
	case f.props.WhitespaceAfterInstruction == config.WhitespaceTab:
		return keyword + "\t"
	default:
		return f.indent(1, keyword, false)
	}
}

func (f *Formatter) argument(value string) string {
	opt := f.props
	result := ""

	if opt.BracketType != config.BracketNoChange {
		if m := assembler.Patterns.BracketsBounds.FindStringSubmatch(value); m != nil {
			content := m[1]
			if m[2] != "" {
				content = m[2]
			}
			open, close := "(", ")"
			if opt.BracketType == config.BracketSquare {
				open, close = "[", "]"
			}
			result = open + f.adjustCase(content, true) + close
		}
	}

	if opt.HexaNumberStyle != config.HexNoChange {
		if m := assembler.Patterns.Numerals.FindStringSubmatch(value); m != nil {
			if hexa := m[2] + m[3]; hexa != "" {
				result = f.hexadecimal(hexa)
			}
		}
	}

	if result == "" {
		result = f.adjustCase(value, true)
	}
	return result
}

// hexadecimal re-renders a hex literal in any notation into the configured one.
func (f *Formatter) hexadecimal(literal string) string {
	sign := ""
	if strings.HasPrefix(literal, "-") {
		sign, literal = "-", literal[1:]
	}
	digits := hexPrefix.ReplaceAllString(literal, "")
	if len(digits) == len(literal) {
		digits = digits[:len(digits)-1] // h suffix
	}

	switch f.props.HexaNumberCase {
	case config.On:
		digits = strings.ToUpper(digits)
	case config.Off:
		digits = strings.ToLower(digits)
	}

	switch f.props.HexaNumberStyle {
	case config.HexHash:
		return sign + "#" + digits
	case config.HexMotorola:
		return sign + "$" + digits
	case config.HexIntel, config.HexIntelUppercase:
		suffix := "h"
		if f.props.HexaNumberStyle == config.HexIntelUppercase {
			suffix = "H"
		}
		if digits[0] > '9' {
			digits = "0" + digits
		}
		return sign + digits + suffix
	case config.HexCStyle:
		return sign + "0x" + digits
	}
	return sign + literal
}

func (f *Formatter) adjustCase(keyword string, checkRegsOrConds bool) string {
	if f.props.UppercaseKeywords == config.Auto {
		return keyword
	}
	if !assembler.IsKeyword(keyword) && !(checkRegsOrConds && assembler.IsRegisterOrCondition(keyword)) {
		return keyword
	}
	if f.props.UppercaseKeywords == config.On {
		return strings.ToUpper(keyword)
	}
	return strings.ToLower(keyword)
}

// indent pads snippet out to level indent stops. A snippet too wide for
// its column is left on a line of its own when keepAligned is set.
func (f *Formatter) indent(level int, snippet string, keepAligned bool) string {
	opt := f.props
	tabsSize := opt.IndentSize * level

	prepend := snippet
	fill := tabsSize
	if snippet != "" {
		if keepAligned && len(snippet) >= tabsSize {
			prepend += opt.EOL
		} else {
			for len(snippet) >= fill {
				fill += opt.IndentSize
			}
			fill -= len(snippet)
		}
	}

	if opt.IndentSpaces {
		return prepend + strings.Repeat(" ", fill)
	}
	return prepend + strings.Repeat("\t", (fill+opt.IndentSize-1)/opt.IndentSize)
}

func processFragment(frag string) fragment {
	m := fragmentSplit.FindStringSubmatch(frag)
	if m == nil {
		return fragment{keyword: frag}
	}
	return fragment{keyword: m[1], args: splitArgs(m[2], false)}
}

func splitArgs(rest string, trimRight bool) []string {
	if !strings.Contains(rest, ",") {
		if trimRight {
			rest = strings.TrimRight(rest, " \t")
		}
		return []string{rest}
	}
	args := assembler.SplitOutsideQuotes(rest, ',')
	for i, arg := range args {
		if trimRight {
			arg = strings.TrimRight(arg, " \t")
		}
		if i > 0 {
			arg = strings.TrimLeft(arg, " \t")
		}
		args[i] = arg
	}
	return args
}

func trimFor(s string, onType bool) string {
	if onType {
		return strings.TrimLeft(s, " \t")
	}
	return strings.TrimSpace(s)
}

// Apply returns the text of doc with edits applied. Edits must not overlap.
func Apply(doc *assembler.Document, edits []Edit) string {
	lines := make([]string, doc.LineCount())
	for i := range lines {
		lines[i] = doc.LineAt(i)
	}
	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, func(a, b Edit) int {
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
