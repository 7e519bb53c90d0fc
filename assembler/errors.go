package assembler

import "errors"

func AdjustRange(r TextRange, errorText string) (TextRange, string) {
	// Removes the leading and training whitespace from the error text, and adjusts the range accordingly
	text := errorText
	for len(text) > 0 && text[0] == ' ' {
		text = text[1:]
		r.Start.Char += 1
	}

	for len(text) > 0 && text[len(text)-1] == ' ' {
		text = text[:len(text)-1]
		r.End.Char -= 1
	}

	return r, text
}

// Warnings
type assemblyWarning struct{}

var Warnings assemblyWarning

func (assemblyWarning) IncludeNotFound(path string, r TextRange) Diagnostic {
	return Diagnostic{
		Range:    r,
		Message:  "Included file not found: \"" + path + "\"",
		Source:   "Assembler",
		Severity: Warning,
	}
}

func (assemblyWarning) UnmatchedEndModule(directive string, r TextRange) Diagnostic {
	r, directive = AdjustRange(r, directive)
	return Diagnostic{
		Range:    r,
		Message:  "\"" + directive + "\" without an open module",
		Source:   "Assembler",
		Severity: Warning,
	}
}

func (assemblyWarning) UnclosedModule(name string, r TextRange) Diagnostic {
	return Diagnostic{
		Range:    r,
		Message:  "Module \"" + name + "\" is never closed",
		Source:   "Assembler",
		Severity: Information,
	}
}

// Rename errors
type RenameError struct {
	Reason string
}

func (e *RenameError) Error() string {
	return e.Reason
}

type renameErrors struct{}

var RenameErrors renameErrors

func (renameErrors) Include() *RenameError {
	return &RenameError{Reason: "You cannot rename a include."}
}

func (renameErrors) Comment() *RenameError {
	return &RenameError{Reason: "You cannot rename a comment."}
}

func (renameErrors) String() *RenameError {
	return &RenameError{Reason: "You cannot rename a string."}
}

func (renameErrors) Keyword() *RenameError {
	return &RenameError{Reason: "You cannot rename a keyword."}
}

func (renameErrors) Numeral() *RenameError {
	return &RenameError{Reason: "You cannot rename a numeral."}
}

func (renameErrors) Register() *RenameError {
	return &RenameError{Reason: "You cannot rename a register or condition."}
}

func (renameErrors) NoSymbol() *RenameError {
	return &RenameError{Reason: "No symbol found at this position."}
}

func (renameErrors) IsRenameError(err error) bool {
	var re *RenameError
	return errors.As(err, &re)
}
