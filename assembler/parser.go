package assembler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"
)

type parseState int

const (
	stateNormal parseState = iota
	stateInModule
	stateInCommentRun
)

func (s parseState) String() string {
	switch s {
	case stateInModule:
		return "in-module"
	case stateInCommentRun:
		return "in-comment-run"
	}
	return "normal"
}

type lineKind int

const (
	lineBlank lineKind = iota
	lineComment
	lineDecoration
	lineCode
)

// parser walks a document once, line by line. Its scope state is the module
// stack (innermost last), the pending comment buffer and the last full label.
type parser struct {
	doc   *Document
	table *FileTable

	state         parseState
	modules       []string
	open          []*Symbol // module symbols matching modules
	comments      []string
	lastFullLabel string
}

// Parse builds the File Table of a single document.
func Parse(doc *Document) *FileTable {
	p := &parser{
		doc: doc,
		table: &FileTable{
			Path: doc.Path,
			Hash: xxh3.HashString(doc.Text()),
		},
	}
	for i := 0; i < doc.LineCount(); i++ {
		p.step(i, doc.LineAt(i))
	}
	for _, sym := range p.open {
		p.table.Diagnostics = append(p.table.Diagnostics, Warnings.UnclosedModule(sym.Declaration, sym.Location.Range))
	}
	return p.table
}

// classifyLine returns the kind of a line and, for comment lines, the comment text.
func classifyLine(line string) (lineKind, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return lineBlank, ""
	}
	if m := Patterns.CommentLine.FindStringSubmatch(trimmed); m != nil {
		text := strings.TrimSpace(m[1])
		if IsHorizontalRule(text) {
			return lineDecoration, ""
		}
		return lineComment, text
	}
	return lineCode, ""
}

func (p *parser) step(n int, line string) {
	kind, text := classifyLine(line)
	switch kind {
	case lineBlank:
		p.comments = nil
	case lineDecoration:
	case lineComment:
		p.comments = append(p.comments, text)
	case lineCode:
		p.code(n, line)
		p.comments = nil
	}
	p.state = p.nextState()
}

func (p *parser) nextState() parseState {
	if len(p.comments) > 0 {
		return stateInCommentRun
	}
	if len(p.modules) > 0 {
		return stateInModule
	}
	return stateNormal
}

// pending returns the comment run directly above the current line.
func (p *parser) pending() []string {
	if p.state != stateInCommentRun {
		return nil
	}
	return p.comments
}

func (p *parser) module() string {
	if len(p.modules) == 0 {
		return ""
	}
	return p.modules[len(p.modules)-1]
}

func (p *parser) location(line, start, end int) Location {
	return Location{Path: p.doc.Path, Range: LineRange(line, start, end)}
}

func (p *parser) code(n int, line string) {
	stripped := StripComment(line)
	neutral := NeutralizeLine(line)

	labelFragment := ""
	if sym := p.label(n, line, stripped); sym != nil {
		p.table.Symbols = append(p.table.Symbols, sym)
		labelFragment = sym.Path[len(sym.Path)-1]
	}

	if m := Patterns.IncludeLine.FindStringSubmatchIndex(stripped); m != nil {
		p.include(n, stripped[m[4]:m[5]], m[4], m[5], labelFragment)
		return
	}
	if m := Patterns.MacroLine.FindStringSubmatchIndex(neutral); m != nil {
		p.macro(n, line, neutral, m)
		return
	}
	if m := Patterns.ModuleLine.FindStringSubmatchIndex(neutral); m != nil {
		p.openModule(n, neutral[m[4]:m[5]], m[4], m[5])
		return
	}
	if m := Patterns.EndModuleLine.FindStringIndex(neutral); m != nil {
		if len(p.modules) == 0 {
			p.table.Diagnostics = append(p.table.Diagnostics,
				Warnings.UnmatchedEndModule(neutral[m[0]:m[1]], LineRange(n, m[0], m[1])))
			return
		}
		p.modules = p.modules[:len(p.modules)-1]
		p.open = p.open[:len(p.open)-1]
	}
}

// label emits a symbol for a label definition starting at column 0.
func (p *parser) label(n int, line, stripped string) *Symbol {
	m := Patterns.LabelDefinition.FindStringSubmatchIndex(stripped)
	if m == nil {
		return nil
	}
	name := stripped[m[2]:m[3]]
	if name == "" || StartsWithDigit(name) || IsKeyword(name) {
		return nil
	}
	noQualify := stripped[0] == '@'

	sym := &Symbol{
		Declaration: name,
		Path:        []string{name},
		Kind:        SymbolKindLabel,
		Location:    p.location(n, m[2], m[3]),
		Line:        n,
	}

	switch {
	case name[0] == '.':
		sym.LocalLabel = true
		if p.lastFullLabel != "" && !strings.Contains(name, "$$") {
			sym.ParentLabel = p.lastFullLabel
			sym.Path = []string{p.lastFullLabel, name}
			sym.Declaration = p.lastFullLabel + name
		}
	case !strings.Contains(name, "$$"):
		p.lastFullLabel = name
	}

	if mod := p.module(); mod != "" && !noQualify {
		sym.ModuleName = mod
		sym.Path = append([]string{mod}, sym.Path...)
		sym.Declaration = mod + "." + sym.Declaration
	}

	doc := append([]string(nil), p.pending()...)
	if d := Patterns.DefineExpression.FindStringSubmatch(line); d != nil {
		doc = append(doc, fmt.Sprintf("\n```\n%-8s%s\n```", d[2], strings.TrimSpace(d[3])))
	} else if e := Patterns.EvalExpression.FindStringSubmatch(line); e != nil {
		doc = append(doc, "\n`"+strings.TrimSpace(e[5])+"`")
	}
	if c, ok := trailingComment(line); ok {
		doc = append([]string{c}, doc...)
	}
	sym.Documentation = strings.TrimSpace(strings.Join(doc, "\n"))
	return sym
}

func (p *parser) include(n int, quoted string, start, end int, labelFragment string) {
	literal := quoted[1 : len(quoted)-1]
	full := literal
	if !filepath.IsAbs(full) {
		full = filepath.Join(filepath.Dir(p.doc.Path), literal)
	}

	var labelPath []string
	if mod := p.module(); mod != "" {
		labelPath = append(labelPath, mod)
	}
	if labelFragment != "" {
		labelPath = append(labelPath, labelFragment)
	}

	p.table.Includes = append(p.table.Includes, IncludeEdge{
		Declaration: literal,
		LabelPath:   labelPath,
		FullPath:    filepath.Clean(full),
		Location:    p.location(n, start, end),
		Line:        n,
		ParentLabel: p.lastFullLabel,
	})
}

func (p *parser) macro(n int, line, neutral string, m []int) {
	name := neutral[m[4]:m[5]]
	if IsKeyword(name) {
		return
	}

	doc := []string{"**macro " + name + "**"}
	if m[6] >= 0 {
		if params := strings.TrimSpace(neutral[m[6]:m[7]]); params != "" {
			doc = append(doc, "`"+params+"`\n")
		}
	}
	if c, ok := trailingComment(line); ok {
		doc = append(doc, c)
	}
	doc = append(doc, p.pending()...)

	sym := &Symbol{
		Declaration:   name,
		Path:          []string{name},
		Kind:          SymbolKindMacro,
		Location:      p.location(n, m[4], m[5]),
		Line:          n,
		Documentation: strings.TrimSpace(strings.Join(doc, "\n")),
	}
	p.qualify(sym)
	p.table.Symbols = append(p.table.Symbols, sym)
}

func (p *parser) openModule(n int, name string, start, end int) {
	if IsKeyword(name) {
		return
	}

	doc := append([]string{"**module " + name + "**\n"}, p.pending()...)
	sym := &Symbol{
		Declaration:   name,
		Path:          []string{name},
		Kind:          SymbolKindModule,
		Location:      p.location(n, start, end),
		Line:          n,
		Documentation: strings.TrimSpace(strings.Join(doc, "\n")),
	}
	p.qualify(sym)
	p.table.Symbols = append(p.table.Symbols, sym)
	p.modules = append(p.modules, name)
	p.open = append(p.open, sym)
}

// qualify prefixes a macro or module declaration with the enclosing module.
func (p *parser) qualify(sym *Symbol) {
	mod := p.module()
	if mod == "" {
		return
	}
	sym.ModuleName = mod
	sym.Path = []string{mod, sym.Declaration}
	sym.Declaration = mod + "." + sym.Declaration
}

// trailingComment returns the text of the end of line comment of line, if any.
func trailingComment(line string) (string, bool) {
	idx := CommentIndex(line)
	if idx < 0 {
		return "", false
	}
	m := Patterns.EndComment.FindStringSubmatch(line[idx:])
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
