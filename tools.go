package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/z80asm/macroasm-ls/assembler"
	"github.com/z80asm/macroasm-ls/config"
	"github.com/z80asm/macroasm-ls/formatter"
	"github.com/z80asm/macroasm-ls/symbols"
	"github.com/z80asm/macroasm-ls/workspace"
)

// newSymbolsCmd creates the "symbols" command.
func newSymbolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols <file>",
		Short: "List the symbols visible from a source file",
		Long:  "Symbols follows the include graph of the file and prints every declaration reachable from it, with problems found along the way on stderr.",
		Args:  cobra.ExactArgs(1),
		RunE:  runSymbols,
	}

	cmd.Flags().String("root", "", "Workspace root searched when --seek-workspace is set (default: the file's directory)")
	cmd.Flags().Bool("json", false, "Print symbols as JSON")

	return cmd
}

type symbolEntry struct {
	Declaration   string `json:"declaration"`
	Kind          string `json:"kind"`
	Path          string `json:"path"`
	Line          int    `json:"line"`
	Documentation string `json:"documentation,omitempty"`
}

func runSymbols(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	root, _ := cmd.Flags().GetString("root")
	asJSON, _ := cmd.Flags().GetBool("json")

	props, err := loadProps()
	if err != nil {
		return err
	}
	logger := newLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	index := symbols.NewIndex(symbols.DiskOpener{},
		symbols.WithLogger(logger),
		symbols.WithWorkspaceFallback(props.SeekSymbolsThroughWorkspace),
	)
	if props.SeekSymbolsThroughWorkspace {
		if root == "" {
			root = filepath.Dir(path)
		}
		files, err := workspace.Discover(root, props.Files)
		if err != nil {
			return fmt.Errorf("workspace discovery failed: %w", err)
		}
		for _, f := range files {
			if err := index.Refresh(ctx, f); err != nil {
				logger.Debug("cannot index file", "path", f, "error", err)
			}
		}
	}

	entries, err := visibleSymbols(ctx, index, path)
	if err != nil {
		return err
	}

	diags, err := index.Diagnostics(ctx, path)
	if err != nil {
		return err
	}
	for _, d := range diags {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d:%d: %s\n", path, d.Range.Start.Line+1, d.Range.Start.Char+1, d.Message)
	}

	return printSymbols(cmd.OutOrStdout(), entries, asJSON)
}

// visibleSymbols lists each declaration visible from path once, sorted.
func visibleSymbols(ctx context.Context, index *symbols.Index, path string) ([]symbolEntry, error) {
	visible, err := index.Symbols(ctx, path)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []symbolEntry
	for _, sym := range visible {
		if seen[sym.Declaration] {
			continue
		}
		seen[sym.Declaration] = true
		entries = append(entries, symbolEntry{
			Declaration:   sym.Declaration,
			Kind:          sym.Kind.String(),
			Path:          sym.Location.Path,
			Line:          sym.Line + 1,
			Documentation: sym.Documentation,
		})
	}
	slices.SortFunc(entries, func(a, b symbolEntry) int {
		return strings.Compare(a.Declaration, b.Declaration)
	})
	return entries, nil
}

func printSymbols(w io.Writer, entries []symbolEntry, asJSON bool) error {
	if asJSON {
		if entries == nil {
			entries = []symbolEntry{}
		}
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%-7s %s\t%s:%d\n", e.Kind, e.Declaration, e.Path, e.Line)
	}
	return nil
}

// newFormatCmd creates the "format" command.
func newFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format <file>",
		Short: "Reformat a source file",
		Long:  "Format prints the reformatted file, a line diff against the original with --diff, or rewrites it in place with --write.",
		Args:  cobra.ExactArgs(1),
		RunE:  runFormat,
	}

	cmd.Flags().Bool("diff", false, "Print a line diff instead of the formatted text")
	cmd.Flags().BoolP("write", "w", false, "Write the result back to the file")

	return cmd
}

func runFormat(cmd *cobra.Command, args []string) error {
	path := args[0]
	showDiff, _ := cmd.Flags().GetBool("diff")
	write, _ := cmd.Flags().GetBool("write")

	props, err := loadProps()
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	original := string(data)
	formatted := formatSource(path, original, props)

	switch {
	case showDiff:
		fmt.Fprint(cmd.OutOrStdout(), lineDiff(path, original, formatted))
	case !write:
		fmt.Fprint(cmd.OutOrStdout(), formatted)
	}

	if write && formatted != original {
		if err := os.WriteFile(path, []byte(formatted), info.Mode().Perm()); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// formatSource reformats a whole file, writing line breaks as configured.
func formatSource(path, text string, props config.Props) string {
	eol := props.EOL
	props.EOL = "\n"

	doc := assembler.NewDocument(path, text)
	formatted := formatter.Apply(doc, formatter.New(props).Document(doc))
	if eol != "" && eol != "\n" {
		formatted = strings.ReplaceAll(formatted, "\n", eol)
	}
	return formatted
}

// lineDiff renders the changed lines between before and after.
func lineDiff(name, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s (formatted)\n", name, name)
	line := 1
	inHunk := false
	for _, d := range diffs {
		chunk := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			line += len(chunk)
			inHunk = false
			continue
		case diffmatchpatch.DiffDelete:
			if !inHunk {
				fmt.Fprintf(&sb, "@@ line %d @@\n", line)
				inHunk = true
			}
			for _, l := range chunk {
				sb.WriteString("-" + l + "\n")
			}
			line += len(chunk)
		case diffmatchpatch.DiffInsert:
			if !inHunk {
				fmt.Fprintf(&sb, "@@ line %d @@\n", line)
				inHunk = true
			}
			for _, l := range chunk {
				sb.WriteString("+" + l + "\n")
			}
		}
	}
	return sb.String()
}

func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(strings.TrimSuffix(l, "\n"), "\r")
	}
	return lines
}
