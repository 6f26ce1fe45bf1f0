// Package coverage estimates inline documentation density for source files.
package coverage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/steveyegge/doclife/internal/types"
)

// blockDelim is a multi-line comment or docstring delimiter pair.
type blockDelim struct {
	open  string
	close string
}

// syntax is the comment convention of a language family.
type syntax struct {
	// linePrefixes start a single-line comment (matched after trimming indentation)
	linePrefixes []string
	// blocks are multi-line comment forms; every line inside counts as a comment
	blocks []blockDelim
	// docOpeners mark a structured documentation block
	docOpeners []string
}

var cBlock = blockDelim{open: "/*", close: "*/"}

var syntaxTable = map[types.LanguageFamily]syntax{
	types.FamilyGo: {
		linePrefixes: []string{"//"},
		blocks:       []blockDelim{cBlock},
		docOpeners:   []string{"// Package ", "/*"},
	},
	types.FamilyC: {
		linePrefixes: []string{"//"},
		blocks:       []blockDelim{cBlock},
		docOpeners:   []string{"/**", "/*!", "///"},
	},
	types.FamilyJava: {
		linePrefixes: []string{"//"},
		blocks:       []blockDelim{cBlock},
		docOpeners:   []string{"/**"},
	},
	types.FamilyJavaScript: {
		linePrefixes: []string{"//"},
		blocks:       []blockDelim{cBlock},
		docOpeners:   []string{"/**"},
	},
	types.FamilyCSharp: {
		linePrefixes: []string{"//"},
		blocks:       []blockDelim{cBlock},
		docOpeners:   []string{"///", "/**"},
	},
	types.FamilyRust: {
		linePrefixes: []string{"//"},
		blocks:       []blockDelim{cBlock},
		docOpeners:   []string{"///", "//!", "/**"},
	},
	types.FamilyPHP: {
		linePrefixes: []string{"//", "#"},
		blocks:       []blockDelim{cBlock},
		docOpeners:   []string{"/**"},
	},
	types.FamilyPython: {
		linePrefixes: []string{"#"},
		blocks:       []blockDelim{{open: `"""`, close: `"""`}, {open: "'''", close: "'''"}},
		docOpeners:   []string{`"""`, "'''"},
	},
	types.FamilyRuby: {
		linePrefixes: []string{"#"},
		blocks:       []blockDelim{{open: "=begin", close: "=end"}},
		docOpeners:   []string{"=begin", "##"},
	},
	types.FamilyShell: {
		linePrefixes: []string{"#"},
		docOpeners:   []string{"#:"},
	},
	types.FamilyLua: {
		linePrefixes: []string{"--"},
		blocks:       []blockDelim{{open: "--[[", close: "]]"}},
		docOpeners:   []string{"---", "--[["},
	},
	types.FamilySQL: {
		linePrefixes: []string{"--"},
		blocks:       []blockDelim{cBlock},
		docOpeners:   []string{"/**"},
	},
	types.FamilyHaskell: {
		linePrefixes: []string{"--"},
		blocks:       []blockDelim{{open: "{-", close: "-}"}},
		docOpeners:   []string{"-- |", "{-|"},
	},
	types.FamilyElixir: {
		linePrefixes: []string{"#"},
		docOpeners:   []string{"@moduledoc", "@doc"},
	},
}

// Supported reports whether the estimator knows the family's comment syntax.
func Supported(family types.LanguageFamily) bool {
	_, ok := syntaxTable[family]
	return ok
}

// Estimate counts comment lines against total lines for the text read from r.
// An empty input yields zero counts (coverage 0) and no doc block. Lines of
// any length are counted; only read errors are returned.
func Estimate(r io.Reader, family types.LanguageFamily) (types.CoverageSample, error) {
	sample := types.CoverageSample{LanguageFamily: family}
	syn, known := syntaxTable[family]

	var open *blockDelim
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return sample, fmt.Errorf("reading source: %w", err)
		}
		if raw == "" {
			break
		}
		sample.TotalLineCount++
		if known {
			open = syn.count(&sample, strings.TrimSpace(raw), open)
		}
		if err != nil {
			break
		}
	}
	return sample, nil
}

// count classifies one trimmed line and returns the block still open after it.
func (syn syntax) count(sample *types.CoverageSample, line string, open *blockDelim) *blockDelim {
	if open != nil {
		sample.CommentLineCount++
		if strings.Contains(line, open.close) {
			return nil
		}
		return open
	}

	if !sample.HasStructuredDocBlock && hasAnyPrefix(line, syn.docOpeners) {
		sample.HasStructuredDocBlock = true
	}

	if b, ok := openingBlock(line, syn.blocks); ok {
		sample.CommentLineCount++
		// Single-line blocks such as /* x */ or """doc""" close on the same line.
		if !strings.Contains(line[len(b.open):], b.close) {
			return &b
		}
		return nil
	}

	if hasAnyPrefix(line, syn.linePrefixes) {
		sample.CommentLineCount++
	}
	return nil
}

// openingBlock checks blocks before line prefixes so "--[[" is not read as "--".
func openingBlock(line string, blocks []blockDelim) (blockDelim, bool) {
	for _, b := range blocks {
		if strings.HasPrefix(line, b.open) {
			return b, true
		}
	}
	return blockDelim{}, false
}

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
