package symbols

import (
	"context"
	"slices"
	"strings"

	"github.com/z80asm/macroasm-ls/assembler"
)

// DocumentSymbols lists the declarations of one file in source order.
func (x *Index) DocumentSymbols(ctx context.Context, path string) ([]*assembler.Symbol, error) {
	table, err := x.ensure(ctx, path)
	if err != nil {
		return nil, err
	}
	return slices.Clone(table.Symbols), nil
}

// WorkspaceSymbols lists every indexed declaration whose qualified name
// contains query, ignoring case. Each declaration appears once.
func (x *Index) WorkspaceSymbols(ctx context.Context, query string) ([]*assembler.Symbol, error) {
	query = strings.ToLower(query)
	out := make(SymbolMap)
	visited := make(map[string]bool)

	for _, path := range x.Files() {
		if visited[path] {
			continue
		}
		if err := x.seek(ctx, path, out, visited); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool)
	var result []*assembler.Symbol
	for _, sym := range out {
		if seen[sym.Declaration] {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(sym.Declaration), query) {
			continue
		}
		seen[sym.Declaration] = true
		result = append(result, sym)
	}

	slices.SortFunc(result, func(a, b *assembler.Symbol) int {
		return strings.Compare(a.Declaration, b.Declaration)
	})
	return result, nil
}

// Diagnostics reports structural problems of a file and includes whose
// target cannot be opened.
func (x *Index) Diagnostics(ctx context.Context, path string) ([]assembler.Diagnostic, error) {
	table, err := x.ensure(ctx, path)
	if err != nil {
		return nil, err
	}

	diags := slices.Clone(table.Diagnostics)
	for _, inc := range table.Includes {
		if _, err := x.ensure(ctx, inc.FullPath); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			diags = append(diags, assembler.Warnings.IncludeNotFound(inc.Declaration, inc.Location.Range))
		}
	}
	return diags, nil
}
