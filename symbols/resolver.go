package symbols

import (
	"context"
	"strings"

	"github.com/z80asm/macroasm-ls/assembler"
)

// Mode selects what a lookup is for. Definition and Hover accept include
// paths and apply operand triage; the Symbol modes serve rename.
type Mode int

const (
	ModeDefinition Mode = iota
	ModeHover
	ModeSymbol
	ModeSymbolFull
)

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	Symbol    *assembler.Symbol
	Include   *assembler.IncludeEdge // set instead of Symbol for include paths
	Range     assembler.TextRange    // span of the token under the cursor
	LabelPart string                 // token as it appears, minus any explicit qualifier
	LabelFull string                 // qualified name that was looked up
}

type Resolver struct {
	index *Index
}

func NewResolver(index *Index) *Resolver {
	return &Resolver{index: index}
}

// Resolve finds the declaration referenced at pos. It returns ErrNotFound
// when the position holds nothing resolvable.
func (r *Resolver) Resolve(ctx context.Context, doc *assembler.Document, pos assembler.TextPosition, mode Mode) (*Resolution, error) {
	line := doc.LineAt(pos.Line)
	table := r.tableFor(doc)

	if mode < ModeSymbol {
		if m := assembler.Patterns.IncludeLine.FindStringSubmatch(assembler.StripComment(line)); m != nil {
			literal := m[2][1 : len(m[2])-1]
			edge := findInclude(table, literal, pos.Line)
			if edge == nil {
				return nil, ErrNotFound
			}
			if edge.Location.Range.Contains(pos) {
				return &Resolution{Include: edge, Range: edge.Location.Range}, nil
			}
		}
	}

	start, end, ok := r.token(line, pos, mode)
	if !ok {
		return nil, ErrNotFound
	}
	token := line[start:end]

	if mode < ModeSymbol && operandTriage(line[:end], token) {
		return nil, ErrNotFound
	}

	visible, err := r.index.Symbols(ctx, doc.Path)
	if err != nil {
		return nil, err
	}

	part, full := qualify(doc, pos.Line, token, visible)
	sym := visible[full]
	if sym == nil {
		sym = visible[part]
	}
	if sym == nil {
		return nil, ErrNotFound
	}

	return &Resolution{
		Symbol:    sym,
		Range:     assembler.LineRange(pos.Line, start, end),
		LabelPart: part,
		LabelFull: full,
	}, nil
}

// tableFor returns the indexed table of doc, indexing it first if needed.
func (r *Resolver) tableFor(doc *assembler.Document) *assembler.FileTable {
	if table, ok := r.index.Table(doc.Path); ok {
		return table
	}
	return r.index.Update(doc)
}

func findInclude(table *assembler.FileTable, literal string, line int) *assembler.IncludeEdge {
	for i := range table.Includes {
		inc := &table.Includes[i]
		if inc.Declaration == literal && inc.Line == line {
			return inc
		}
	}
	return nil
}

// token extracts the identifier under pos, rejecting comments, strings,
// numerals and keywords.
func (r *Resolver) token(line string, pos assembler.TextPosition, mode Mode) (int, int, bool) {
	if idx := assembler.CommentIndex(line); idx >= 0 && pos.Char >= idx {
		return 0, 0, false
	}
	if _, _, ok := assembler.WordRangeAt(line, pos.Char, assembler.Patterns.StringBounds); ok {
		return 0, 0, false
	}
	if s, e, ok := assembler.WordRangeAt(line, pos.Char, assembler.Patterns.NumeralWord); ok && assembler.IsNumeral(line[s:e]) {
		return 0, 0, false
	}

	re := assembler.Patterns.FullLabel
	if mode == ModeSymbol {
		re = assembler.Patterns.DefaultWord
	}
	start, end, ok := assembler.WordRangeAt(line, pos.Char, re)
	if !ok || start == end {
		return 0, 0, false
	}
	if start == 0 && mode < ModeSymbol {
		return 0, 0, false
	}
	if assembler.IsKeyword(line[start:end]) {
		return 0, 0, false
	}
	return start, end, true
}

// operandTriage reports whether token is a register or condition used as an
// instruction operand rather than a symbol reference.
func operandTriage(active, token string) bool {
	if !assembler.IsRegisterOrCondition(token) {
		return false
	}
	if m := assembler.Patterns.CondFlags.FindStringSubmatchIndex(active); m != nil && m[5] == len(active) {
		return true
	}
	if m := assembler.Patterns.ShouldSuggest2ArgRegister.FindStringSubmatch(active); m != nil && assembler.Patterns.Registers.MatchString(m[3]) {
		return true
	}
	if m := assembler.Patterns.ShouldSuggest1ArgRegister.FindStringSubmatch(active); m != nil && assembler.Patterns.Registers.MatchString(m[5]) {
		return true
	}
	return false
}

// qualify works out the fully qualified name a token refers to. An explicit
// `module.` or `parent.` qualifier wins; otherwise the lines above the
// reference supply the enclosing parent label and module.
func qualify(doc *assembler.Document, line int, token string, visible SymbolMap) (part, full string) {
	part = token
	full = token
	var parent, module string

	if token[0] != '.' {
		if first, rest, ok := strings.Cut(token, "."); ok && rest != "" {
			if sym := visible[first]; sym != nil {
				if sym.Kind == assembler.SymbolKindModule {
					module = first
					if p, r, ok := strings.Cut(rest, "."); ok {
						parent, rest = p, r
					}
					part, full = rest, rest
				} else {
					parent = first
					part, full = "."+rest, "."+rest
				}
			}
		}
	}

	if parent == "" && module == "" {
		parent, module = scanScope(doc, line, part[0] == '.')
	}

	full = enlarge(enlarge(full, parent), module)
	return part, full
}

// scanScope walks up from line looking for the parent label of a local
// reference and the innermost open module.
func scanScope(doc *assembler.Document, line int, local bool) (parent, module string) {
	for n := line - 1; n >= 0; n-- {
		if doc.IsBlank(n) {
			continue
		}
		text := doc.LineAt(n)

		if local && parent == "" {
			if m := assembler.Patterns.ParentLabel.FindStringSubmatch(text); m != nil {
				candidate := strings.TrimPrefix(m[1], "@")
				if !strings.Contains(candidate, "$$") && !assembler.IsKeyword(candidate) && !assembler.StartsWithDigit(candidate) {
					parent = candidate
				}
			}
		}

		neutral := assembler.NeutralizeLine(text)
		if m := assembler.Patterns.ModuleLine.FindStringSubmatch(neutral); m != nil {
			module = m[2]
			break
		}
		if assembler.Patterns.EndModuleLine.MatchString(neutral) {
			break
		}
	}
	return parent, module
}

func enlarge(base, prepend string) string {
	if prepend == "" || base == prepend || strings.HasPrefix(base, prepend+".") {
		return base
	}
	if base[0] == '.' {
		return prepend + base
	}
	return prepend + "." + base
}
