package symbols

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/z80asm/macroasm-ls/assembler"
)

type Edit struct {
	Range   assembler.TextRange `json:"range"`
	NewText string              `json:"newText"`
}

// WorkspaceEdit groups edits by absolute file path.
type WorkspaceEdit map[string][]Edit

// Renamer rewrites a symbol across the include closure of a document.
type Renamer struct {
	index    *Index
	resolver *Resolver
	logger   *slog.Logger
}

func NewRenamer(index *Index, resolver *Resolver) *Renamer {
	return &Renamer{index: index, resolver: resolver, logger: index.logger}
}

// PrepareRename checks that pos holds something renamable and returns its
// span. The error is an *assembler.RenameError carrying the reason.
func (rn *Renamer) PrepareRename(doc *assembler.Document, pos assembler.TextPosition) (assembler.TextRange, error) {
	line := doc.LineAt(pos.Line)

	if assembler.Patterns.IncludeLine.MatchString(assembler.StripComment(line)) {
		return assembler.TextRange{}, assembler.RenameErrors.Include()
	}
	if idx := assembler.CommentIndex(line); idx >= 0 && pos.Char >= idx {
		return assembler.TextRange{}, assembler.RenameErrors.Comment()
	}
	if _, _, ok := assembler.WordRangeAt(line, pos.Char, assembler.Patterns.StringBounds); ok {
		return assembler.TextRange{}, assembler.RenameErrors.String()
	}
	if s, e, ok := assembler.WordRangeAt(line, pos.Char, assembler.Patterns.NumeralWord); ok && assembler.IsNumeral(line[s:e]) {
		return assembler.TextRange{}, assembler.RenameErrors.Numeral()
	}

	start, end, ok := assembler.WordRangeAt(line, pos.Char, assembler.Patterns.DefaultWord)
	if !ok {
		return assembler.TextRange{}, assembler.RenameErrors.NoSymbol()
	}
	word := line[start:end]
	if assembler.IsKeyword(word) {
		return assembler.TextRange{}, assembler.RenameErrors.Keyword()
	}
	if operandTriage(line[:end], word) {
		return assembler.TextRange{}, assembler.RenameErrors.Register()
	}
	return assembler.LineRange(pos.Line, start, end), nil
}

// Rename computes the edits that rename the symbol at pos to newName in
// every file of the include closure. A symbol that cannot be resolved yields
// an empty edit set.
func (rn *Renamer) Rename(ctx context.Context, doc *assembler.Document, pos assembler.TextPosition, newName string) (WorkspaceEdit, error) {
	edits := WorkspaceEdit{}

	line := doc.LineAt(pos.Line)
	start, end, ok := assembler.WordRangeAt(line, pos.Char, assembler.Patterns.PartialLabel)
	if !ok {
		return edits, nil
	}
	m := assembler.Patterns.PartialLabel.FindStringSubmatch(line[start:end])
	if m == nil || assembler.IsKeyword(m[1]) {
		return edits, nil
	}
	oldName := m[1]
	wasLocal := m[0][0] == '.'

	res, err := rn.resolve(ctx, doc, pos, wasLocal)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return edits, nil
	}

	files, err := rn.index.FilesWithIncludes(ctx, doc.Path)
	if err != nil {
		return nil, err
	}

	// an include made inside a module qualifies what the included file declares
	var includeModule string
	for _, f := range files {
		if f.Path == res.Symbol.Location.Path && len(f.LabelPath) > 0 {
			includeModule = f.LabelPath[len(f.LabelPath)-1]
		}
	}

	for _, f := range files {
		fileDoc := doc
		if f.Path != doc.Path {
			fileDoc, err = rn.index.Document(ctx, f.Path)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if err != nil {
				rn.logger.Debug("rename skips unreadable file", "path", f.Path, "error", err)
				continue
			}
		}

		fileEdits := renameInDocument(fileDoc, f, res.Symbol, includeModule, oldName, newName)
		if len(fileEdits) > 0 {
			edits[fileDoc.Path] = fileEdits
		}
	}
	return edits, nil
}

// resolve tries the local spelling first for dot-prefixed tokens, then a
// direct match, then a fully qualified retry.
func (rn *Renamer) resolve(ctx context.Context, doc *assembler.Document, pos assembler.TextPosition, wasLocal bool) (*Resolution, error) {
	modes := []Mode{ModeSymbol, ModeSymbolFull}
	if wasLocal {
		modes = []Mode{ModeSymbolFull, ModeSymbol}
	}
	for _, mode := range modes {
		res, err := rn.resolver.Resolve(ctx, doc, pos, mode)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// renameScanner tracks parse scope while walking a file for occurrences.
type renameScanner struct {
	sym      *assembler.Symbol
	included string // module the declaring file was included under
	oldName  string
	newName  string
	scratch  bool
	modules  []string
	lastFull string
	edits    []Edit
}

func renameInDocument(doc *assembler.Document, scope ScopedFile, sym *assembler.Symbol, includeModule, oldName, newName string) []Edit {
	s := &renameScanner{
		sym:      sym,
		included: includeModule,
		oldName:  oldName,
		newName:  newName,
		scratch:  strings.HasPrefix(sym.Name(), "$$"),
		lastFull: scope.ParentLabel,
	}
	for n := 0; n < doc.LineCount(); n++ {
		s.line(n, doc.LineAt(n))
	}

	slices.SortFunc(s.edits, func(a, b Edit) int {
		if a.Range.Start.Line != b.Range.Start.Line {
			return a.Range.Start.Line - b.Range.Start.Line
		}
		return a.Range.Start.Char - b.Range.Start.Char
	})
	return slices.CompactFunc(s.edits, func(a, b Edit) bool {
		return a.Range == b.Range
	})
}

func (s *renameScanner) module() string {
	if len(s.modules) == 0 {
		return ""
	}
	return s.modules[len(s.modules)-1]
}

func (s *renameScanner) edit(line, start int) {
	s.edits = append(s.edits, Edit{
		Range:   assembler.LineRange(line, start, start+len(s.oldName)),
		NewText: s.newName,
	})
}

func (s *renameScanner) line(n int, raw string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || assembler.Patterns.CommentLine.MatchString(trimmed) {
		return
	}
	text := []byte(assembler.NeutralizeLine(raw))

	if m := assembler.Patterns.MacroLine.FindSubmatchIndex(text); m != nil {
		if s.sym.Kind == assembler.SymbolKindMacro && string(text[m[4]:m[5]]) == s.oldName {
			s.edit(n, m[4])
		}
		blank(text, m[0], m[1])
	}

	if m := assembler.Patterns.LabelDefinition.FindSubmatch(text); m != nil {
		name := string(m[1])
		if name[0] != '.' && !strings.Contains(name, "$$") && !assembler.IsKeyword(name) && !assembler.StartsWithDigit(name) {
			s.lastFull = name
		}
	}

	if m := assembler.Patterns.ModuleLine.FindSubmatchIndex(text); m != nil {
		name := string(text[m[4]:m[5]])
		if s.sym.Kind == assembler.SymbolKindModule && name == s.oldName {
			s.edit(n, m[4])
		}
		s.modules = append(s.modules, name)
		blank(text, m[0], m[1])
	} else if assembler.Patterns.EndModuleLine.Match(text) {
		if len(s.modules) > 0 {
			s.modules = s.modules[:len(s.modules)-1]
		}
		return
	}

	s.occurrences(n, string(text))
}

// occurrences finds whole-word uses of the old name and keeps those whose
// qualification matches the symbol being renamed.
func (s *renameScanner) occurrences(n int, text string) {
	for from := 0; ; {
		idx := strings.Index(text[from:], s.oldName)
		if idx < 0 {
			return
		}
		idx += from
		end := idx + len(s.oldName)
		from = end

		if idx > 0 && isWordByte(text[idx-1]) {
			continue
		}
		if end < len(text) && isWordByte(text[end]) {
			continue
		}
		if s.matches(text, idx) {
			s.edit(n, idx)
		}
	}
}

func (s *renameScanner) matches(text string, idx int) bool {
	if s.scratch || (idx > 0 && text[idx-1] == '$') {
		return s.scratch && idx >= 2 && text[idx-2:idx] == "$$"
	}

	if idx == 0 || text[idx-1] != '.' {
		return !s.sym.LocalLabel
	}

	q := idx - 1
	for q > 0 && (isWordByte(text[q-1]) || text[q-1] == '.') {
		q--
	}
	qualifier := text[q : idx-1]
	if qualifier == "" {
		if !s.sym.LocalLabel || s.lastFull != s.sym.ParentLabel {
			return false
		}
		mod := s.module()
		return mod == "" || mod == s.sym.ModuleName
	}

	fragments := strings.Split(qualifier, ".")
	last := fragments[len(fragments)-1]
	if s.sym.LocalLabel {
		return last == s.sym.ParentLabel
	}
	return last == s.sym.ModuleName || (s.included != "" && last == s.included)
}

func blank(b []byte, start, end int) {
	for i := start; i < end; i++ {
		b[i] = ' '
	}
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
