package assembler

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNumeral returns the value of a numeric literal written in any of the
// supported notations.
func ParseNumeral(s string) (int64, bool) {
	m := Patterns.Numerals.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	body := strings.TrimPrefix(s, "-")
	negative := len(body) != len(s)

	var digits string
	base := 10
	switch {
	case m[1] != "":
		digits = body
	case m[2] != "":
		digits, base = trimAnyPrefix(body, "0x", "0X", "$", "#"), 16
	case m[3] != "":
		digits, base = body[:len(body)-1], 16
	case m[4] != "":
		digits, base = trimAnyPrefix(body, "0q", "0Q", "@"), 8
	case m[5] != "":
		digits, base = body[:len(body)-1], 8
	case m[6] != "":
		digits, base = trimAnyPrefix(body, "0b", "0B", "%"), 2
	case m[7] != "":
		digits, base = body[:len(body)-1], 2
	}

	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

func trimAnyPrefix(s string, prefixes ...string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return s[len(p):]
		}
	}
	return s
}

func IncludeHover(fullPath string) string {
	return fmt.Sprintf(hoverInfoFormats.include, fullPath)
}

// HoverAt describes the instruction, register, condition or numeric literal
// under pos. Symbols are resolved elsewhere; this only knows the fixed lexicon.
func HoverAt(doc *Document, pos TextPosition) (string, TextRange, bool) {
	line := doc.LineAt(pos.Line)

	if idx := CommentIndex(line); idx >= 0 && pos.Char >= idx {
		return "", TextRange{}, false
	}
	if _, _, ok := WordRangeAt(line, pos.Char, Patterns.StringBounds); ok {
		return "", TextRange{}, false
	}

	if start, end, ok := WordRangeAt(line, pos.Char, Patterns.NumeralWord); ok {
		if v, ok := ParseNumeral(line[start:end]); ok {
			u := uint64(v)
			if v < 0 {
				u &= 0xFFFF
			}
			return fmt.Sprintf(hoverInfoFormats.integerLiteral, v, u, u), LineRange(pos.Line, start, end), true
		}
	}

	start, end, ok := WordRangeAt(line, pos.Char, Patterns.DefaultWord)
	if !ok {
		return "", TextRange{}, false
	}
	word := strings.ToLower(line[start:end])
	if word == "af" && end < len(line) && line[end] == '\'' {
		word = "af'"
		end++
	}
	r := LineRange(pos.Line, start, end)
	prefix := line[:end]

	fragments := SplitOutsideQuotes(prefix, ':')
	if m := Patterns.ShouldSuggestInstruction.FindStringSubmatch(fragments[len(fragments)-1]); m != nil && !IsKeyword(m[2]) && strings.EqualFold(m[3], word) {
		if info, ok := getHoverInfoForInstruction(word); ok {
			return info, r, true
		}
		return "", TextRange{}, false
	}

	if m := Patterns.CondFlags.FindStringSubmatchIndex(prefix); m != nil && m[5] == end {
		return fmt.Sprintf(hoverInfoFormats.condition, word, conditionInfo[word]), r, true
	}

	if !IsRegisterOrCondition(word) {
		return "", TextRange{}, false
	}
	if start > 0 && line[start-1] == '(' && end < len(line) && line[end] == ')' {
		return getHoverInfoForIndirect(word), LineRange(pos.Line, start-1, end+1), true
	}
	if info, ok := getHoverInfoForRegister(word); ok {
		return info, r, true
	}
	return "", TextRange{}, false
}

func getHoverInfoForInstruction(opcode string) (string, bool) {
	info, ok := instructionInfo[strings.TrimSpace(strings.ToLower(opcode))]
	return info, ok
}

func getHoverInfoForIndirect(name string) string {
	if name == "c" {
		return fmt.Sprintf(hoverInfoFormats.special, specialRegisterInfo["(c)"])
	}
	return fmt.Sprintf(hoverInfoFormats.indirect, "("+name+")", name)
}

func getHoverInfoForRegister(name string) (string, bool) {
	switch name {
	case "a":
		return hoverInfoFormats.accumulator, true
	case "b", "c", "d", "e", "h", "l":
		return fmt.Sprintf(hoverInfoFormats.generic8Register, name), true
	case "i", "r", "pc":
		return fmt.Sprintf(hoverInfoFormats.special, specialRegisterInfo[name]), true
	case "ixh", "ixl", "ixu", "hx", "lx", "xh", "xl":
		return fmt.Sprintf(hoverInfoFormats.indexHalf, name, "ix"), true
	case "iyh", "iyl", "iyu", "hy", "ly", "yh", "yl":
		return fmt.Sprintf(hoverInfoFormats.indexHalf, name, "iy"), true
	case "bc", "de", "hl":
		return fmt.Sprintf(hoverInfoFormats.pair, name, name[0], name[1]), true
	case "af", "af'":
		return fmt.Sprintf(hoverInfoFormats.flagsPair, name), true
	case "ix", "iy":
		return fmt.Sprintf(hoverInfoFormats.indexRegister, name, name), true
	case "sp":
		return hoverInfoFormats.stackPointer, true
	}
	return "", false
}
