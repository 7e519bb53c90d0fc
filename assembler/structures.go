package assembler

type TextPosition struct {
	Line int `json:"line"`
	Char int `json:"character"`
}

type TextRange struct {
	Start TextPosition `json:"start"`
	End   TextPosition `json:"end"`
}

// Contains reports whether pos lies within r, both ends inclusive.
func (r TextRange) Contains(pos TextPosition) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Char < r.Start.Char {
		return false
	}
	if pos.Line == r.End.Line && pos.Char > r.End.Char {
		return false
	}
	return true
}

func (r TextRange) IsEmpty() bool {
	return r.Start == r.End
}

func LineRange(line, start, end int) TextRange {
	return TextRange{
		Start: TextPosition{Line: line, Char: start},
		End:   TextPosition{Line: line, Char: end},
	}
}

// Location is a span inside a file identified by its absolute file system path.
type Location struct {
	Path  string    `json:"path"`
	Range TextRange `json:"range"`
}

type SymbolKind int

const (
	SymbolKindLabel SymbolKind = iota
	SymbolKindMacro
	SymbolKindModule
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolKindMacro:
		return "macro"
	case SymbolKindModule:
		return "module"
	}
	return "label"
}

// Symbol is a name declared in assembler source.
type Symbol struct {
	Declaration   string   // fully qualified, dot joined
	Path          []string // module, parent label, own name
	Kind          SymbolKind
	Location      Location
	Line          int
	Documentation string // markdown
	LocalLabel    bool
	ModuleName    string // innermost open module at declaration, "" outside modules
	ParentLabel   string // full label a local label hangs off
}

// Name returns the innermost fragment of the symbol path.
func (s *Symbol) Name() string {
	if len(s.Path) == 0 {
		return s.Declaration
	}
	return s.Path[len(s.Path)-1]
}

// IncludeEdge is a directed file relation created by an include directive.
type IncludeEdge struct {
	Declaration string   // path literal as written
	LabelPath   []string // scope active at the point of inclusion
	FullPath    string   // resolved absolute path of the included file
	Location    Location // span of the quoted path literal
	Line        int
	ParentLabel string // last full label seen before the directive
}

// FileTable is everything one parse of a file produced. Tables are replaced
// wholesale and must not be mutated once published.
type FileTable struct {
	Path        string
	Includes    []IncludeEdge
	Symbols     []*Symbol
	Diagnostics []Diagnostic // structural problems found while parsing
	Hash        uint64
}

type CodeDescription struct {
	URL string `json:"href"`
}

type DiagnosticSeverity int

const (
	Error       DiagnosticSeverity = 1
	Warning     DiagnosticSeverity = 2
	Information DiagnosticSeverity = 3
	Hint        DiagnosticSeverity = 4
)

type Diagnostic struct {
	Range           TextRange          `json:"range"`
	Message         string             `json:"message"`
	Source          string             `json:"source,omitempty"`
	CodeDescription *CodeDescription   `json:"codeDescription,omitempty"`
	Severity        DiagnosticSeverity `json:"severity,omitempty"`
}
