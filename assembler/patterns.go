package assembler

import (
	"regexp"
	"strings"
)

// patternSet is the line level lexicon shared by the parser, resolver,
// completion and formatter. Submatch indexes are documented per pattern
// since callers address them positionally.
type patternSet struct {
	CommentLine   *regexp.Regexp // 1: comment text
	EndComment    *regexp.Regexp // 1: comment text
	IncludeLine   *regexp.Regexp // 1: directive with trailing space, 2: quoted path
	MacroLine     *regexp.Regexp // 1: directive with trailing space, 2: name, 3: params
	ModuleLine    *regexp.Regexp // 1: directive with trailing space, 2: name
	EndModuleLine *regexp.Regexp
	FullLabel     *regexp.Regexp
	PartialLabel  *regexp.Regexp // 1: name without dot or $$ prefix
	DefaultWord   *regexp.Regexp
	NumeralWord   *regexp.Regexp
	StringBounds  *regexp.Regexp
	Numerals      *regexp.Regexp // 1: dec, 2: prefixed hex, 3: suffixed hex, 4-5: oct, 6-7: bin
	Registers     *regexp.Regexp
	RegsOrConds   *regexp.Regexp
	CondFlags     *regexp.Regexp // 1: instruction, 2: condition

	LabelDefinition  *regexp.Regexp // 1: label, 2: terminator
	ParentLabel      *regexp.Regexp // 1: label
	EvalExpression   *regexp.Regexp // 1: @, 2: label, 3: colon, 4: keyword, 5: value
	DefineExpression *regexp.Regexp // 1: label, 2: directive, 3: operand

	ShouldSuggestInstruction  *regexp.Regexp // 1: label with separator, 2: label, 3: instruction part
	ShouldSuggest1ArgRegister *regexp.Regexp // 1: instruction, 2: r16 class, 3: r8 class, 4: any, 5: operand part
	ShouldSuggest2ArgRegister *regexp.Regexp // 1: instruction, 2: first argument, 3: operand part
	ShouldSuggestConditionals *regexp.Regexp // 1: instruction, 2: operand part

	ControlKeywordLine *regexp.Regexp
	BracketsBounds     *regexp.Regexp // 1: round content, 2: square content

	keyword *regexp.Regexp
}

const registerAlternation = `[abcdefhlir]|ix|iy|af'?|bc|de|hl|pc|sp|ix[hlu]|iy[hlu]|[lh]x|x[lh]|[lh]y|y[lh]`

const conditionAlternation = `[cmpz]|n[cz]|p[eo]`

const keywordAlternation = `equ|eval|f?org|end?t|align|(?:de|un)?phase|shift|` +
	`save(?:bin|dev|hob|nex|sna|tap|trd)|empty(?:tap|trd)|` +
	`inc(?:bin|hob|trd)|b?include|includelua|insert|binary|end|out(?:put|end)|tap(?:out|end)|` +
	`fpos|fname|page|slot|size|opt|outradix|` +
	`cpu|device|encoding|charset|proc|local|shared|public|export|` +
	`dup|edup|block|rept|macro|end[mpr]|exitm|module|endmod(?:ule)?|(?:un)?define|` +
	`disp|textarea|map|mmu|field|defarray|list|nolist|let|labelslist|` +
	`assert|fatal|error|warning|message|display|print|fail|` +
	`shellexec|amsdos|breakpoint|buildcpr|buildsna|run|save|setcpc|setcrtc|` +
	`repeat|rend|until|switch|case|default|break|endswitch|stop|while|wend|` +
	`inc(?:l4[89]|lz4|zx7|exo)|lz(?:4[89]?|w7|exo|close)|read|` +
	`bank|bankset|limit|protect|write\s+direct|str|(?:end)?struct|ends|` +
	`def[bdlmswir]|d[bcdszw]|abyte[cz]?|byte|d?word|hex|` +
	`if|ifn?def|ifn?used|else|elseif|endif|` +
	`ad[cd]|and|bit|call|ccf|cp|cp[di]r?|cpl|daa|dec|[de]i|djnz|exx?|ex[ad]|halt|` +
	`i[mn]|inc|in[di]r?|j[pr]|ld|ld[di]r?|neg|nop|ot[di]r|out|out[di]|` +
	`pop|push|res|ret[in]?|rla?|rlca?|r[lr]d|rra?|rrca?|rst|sbc|scf|set|` +
	`s[lr]a|s[lr]l|slia|sl1|sub|x?or|` +
	`swap|ldir?x|ldws|lddr?x|ldpirx|outinb|swapnib|` +
	`mul|mirror|nextreg|pixel(?:ad|dn)|setae|te?st|` +
	`bs[lr]a|bsr[lf]|brlc`

var Patterns = patternSet{
	CommentLine:   regexp.MustCompile(`^(?:;+|/{2,})\s*(.*)$`),
	EndComment:    regexp.MustCompile(`(?:;+|/{2,})\s*(.*)$`),
	IncludeLine:   regexp.MustCompile(`(?i)(\binclude\s+)("[^"]+"|'[^']+')`),
	MacroLine:     regexp.MustCompile(`(?i)\b(macro\s+)(\w+)(?:\s+([^/;$]+))?`),
	ModuleLine:    regexp.MustCompile(`(?i)\b(module\s+)(\w+)\b`),
	EndModuleLine: regexp.MustCompile(`(?i)\bendmod(?:ule)?\b`),
	FullLabel:     regexp.MustCompile(`\$\$\w[\w.]*|[\w.]+`),
	PartialLabel:  regexp.MustCompile(`(?:\$\$|\.)?(\w+)`),
	DefaultWord:   regexp.MustCompile("[^`~!@#$%^&*()\\-=+\\[{\\]}\\\\|;:'\",.<>/?\\s]+"),
	NumeralWord:   regexp.MustCompile(`[$#%@-]?\w+`),
	StringBounds:  regexp.MustCompile(`"[^"]*"|'[^']*'`),
	Numerals: regexp.MustCompile(`(?i)^(?:(-?\d+)|((?:-?0x|[$#])[0-9a-f]+)|(-?[0-9][0-9a-f]*h)|` +
		`((?:-?0q|@)[0-7]+)|([0-7]+o)|((?:-?0b|%)[01]+)|([01]+b))$`),
	Registers:   regexp.MustCompile(`(?i)\b(?:` + registerAlternation + `)\b`),
	RegsOrConds: regexp.MustCompile(`(?i)^(?:` + registerAlternation + `|` + conditionAlternation + `)$`),
	CondFlags:   regexp.MustCompile(`(?i)\b(j[pr]|call|ret)(?:\s+(` + conditionAlternation + `))\b`),

	LabelDefinition: regexp.MustCompile(`^@?(\$\$\w[\w.]*|[\w.]+)(:|\s|$)`),
	ParentLabel:     regexp.MustCompile(`^((?:@|\$\$)?\w[\w.]*)(?::|\s|$)`),
	EvalExpression:  regexp.MustCompile(`(?i)^(@?)([\w.]+)(:?)\s+(=|equ|eval)\s+([^;]+?)\s*(;.*)?$`),
	DefineExpression: regexp.MustCompile(`(?i)^@?([\w.]+):?\s+(` +
		`inc(?:bin|hob|trd)|b?include|includelua|insert|binary|` +
		`inc(?:l4[89]|lz4|zx7|exo)|read|` +
		`def[bdghlmswir]|d[bcghmswz]|abyte[cz]?|byte|d?word|hex` +
		`)\s+([^;]+)(;.*)?$`),

	ShouldSuggestInstruction: regexp.MustCompile(`^(@?(\$\$\w[\w.]*|[\w.]+)[:\s])?\s*(\w+)?$`),
	ShouldSuggest1ArgRegister: regexp.MustCompile(`(?i)\b((pop|push)|` +
		`(cp|in|s[lr]a|s[lr]l|slia|sl1|sub|and|te?st|x?or|mul)|` +
		`(ex|ld|inc|dec|adc|add|sbc))\s+\(?([a-z]\w*)?$`),
	ShouldSuggest2ArgRegister: regexp.MustCompile(`(?i)\b(adc|add|bit|ex|ld|out|res|r[lr]c?|set|` +
		`s[lr]a|s[lr]l|slia|sl1|sbc|nextreg|bs[lr]a|bsr[lf]|brlc)` +
		`\s+(\w+|\([^)]+?\)),\s*?\(?([^(\n]*)$`),
	ShouldSuggestConditionals: regexp.MustCompile(`(?i)\b(j[pr]|call|ret)\s+([a-z]*)$`),

	ControlKeywordLine: regexp.MustCompile(`(?i)^(?:if|ifn?def|ifn?used|else|elseif|endif|` +
		`dup|edup|rept|endr|repeat|until|while|wend|switch|case|default|endswitch|` +
		`endm|endmod(?:ule)?|(?:end)?struct|ends|proc|endp|device|org|output|outend)\b`),
	BracketsBounds: regexp.MustCompile(`^\(([^()]*)\)$|^\[([^\[\]]*)\]$`),

	keyword: regexp.MustCompile(`(?i)^(?:` + keywordAlternation + `)$`),
}

// IsKeyword reports whether s is a recognized instruction, directive or
// pseudo-op. Such words never become symbols.
func IsKeyword(s string) bool {
	return Patterns.keyword.MatchString(s)
}

// IsRegisterOrCondition reports whether s is exactly a register or a condition code.
func IsRegisterOrCondition(s string) bool {
	return Patterns.RegsOrConds.MatchString(s)
}

// IsHorizontalRule reports whether s is decoration made of one repeated character.
func IsHorizontalRule(s string) bool {
	if len(s) < 2 {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// IsNumeral reports whether s is a numeric literal in any supported notation.
func IsNumeral(s string) bool {
	return Patterns.Numerals.MatchString(s)
}

// StartsWithDigit reports whether a label candidate is really a numeric
// (temporary) label rather than a name.
func StartsWithDigit(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}

// CommentIndex returns the byte offset at which an end of line comment starts,
// ignoring comment markers inside string literals, or -1.
func CommentIndex(line string) int {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"':
			quote = c
		case c == '\'':
			// af' is a register, not the start of a string
			if i > 0 && isWordChar(line[i-1]) {
				continue
			}
			if strings.IndexByte(line[i+1:], '\'') < 0 {
				continue
			}
			quote = c
		case c == ';':
			return i
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return i
		}
	}
	return -1
}

// StripComment returns line without its end of line comment.
func StripComment(line string) string {
	if idx := CommentIndex(line); idx >= 0 {
		return line[:idx]
	}
	return line
}

// NeutralizeLine blanks out string literals and the end of line comment,
// keeping every other byte offset intact.
func NeutralizeLine(line string) string {
	b := []byte(line)
	if idx := CommentIndex(line); idx >= 0 {
		for i := idx; i < len(b); i++ {
			b[i] = ' '
		}
	}
	for _, loc := range Patterns.StringBounds.FindAllIndex(b, -1) {
		for i := loc[0]; i < loc[1]; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// SplitOutsideQuotes splits s by sep, ignoring separators inside string literals.
func SplitOutsideQuotes(s string, sep byte) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || (c == '\'' && !(i > 0 && isWordChar(s[i-1]))):
			quote = c
		case c == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// WordRangeAt returns the span of the first match of re within line that
// contains the column char, both ends inclusive.
func WordRangeAt(line string, char int, re *regexp.Regexp) (int, int, bool) {
	for _, loc := range re.FindAllStringIndex(line, -1) {
		if loc[0] == loc[1] {
			continue
		}
		if loc[0] <= char && char <= loc[1] {
			return loc[0], loc[1], true
		}
		if loc[0] > char {
			break
		}
	}
	return 0, 0, false
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
