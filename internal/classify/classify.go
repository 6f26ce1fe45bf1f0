// Package classify assigns documentation categories to file paths.
//
// Classification is pure: it looks only at the path, never at the file system.
// When a name matches several rules the precedence is
// Readme > ApiSpec > TestFile > MarkdownDoc > SourceCode > Other.
package classify

import (
	"path"
	"strings"

	"github.com/steveyegge/doclife/internal/types"
)

// Result is the outcome of classifying one path.
type Result struct {
	Category types.Category
	Family   types.LanguageFamily
}

// Classifier maps paths to categories using a configurable source-extension table.
type Classifier struct {
	// Extensions maps a lowercase extension (with dot) to its language family
	Extensions map[string]types.LanguageFamily
}

// New creates a classifier. A nil table uses DefaultExtensions.
func New(extensions map[string]types.LanguageFamily) *Classifier {
	if extensions == nil {
		extensions = DefaultExtensions()
	}
	return &Classifier{Extensions: extensions}
}

// DefaultExtensions returns the built-in source extension table.
func DefaultExtensions() map[string]types.LanguageFamily {
	return map[string]types.LanguageFamily{
		".go":    types.FamilyGo,
		".c":     types.FamilyC,
		".h":     types.FamilyC,
		".cc":    types.FamilyC,
		".cpp":   types.FamilyC,
		".hpp":   types.FamilyC,
		".m":     types.FamilyC,
		".java":  types.FamilyJava,
		".kt":    types.FamilyJava,
		".scala": types.FamilyJava,
		".swift": types.FamilyJava,
		".js":    types.FamilyJavaScript,
		".jsx":   types.FamilyJavaScript,
		".mjs":   types.FamilyJavaScript,
		".ts":    types.FamilyJavaScript,
		".tsx":   types.FamilyJavaScript,
		".cs":    types.FamilyCSharp,
		".rs":    types.FamilyRust,
		".py":    types.FamilyPython,
		".rb":    types.FamilyRuby,
		".sh":    types.FamilyShell,
		".bash":  types.FamilyShell,
		".zsh":   types.FamilyShell,
		".php":   types.FamilyPHP,
		".lua":   types.FamilyLua,
		".sql":   types.FamilySQL,
		".hs":    types.FamilyHaskell,
		".ex":    types.FamilyElixir,
		".exs":   types.FamilyElixir,
	}
}

var apiSpecNames = map[string]bool{
	"openapi.yaml": true,
	"openapi.yml":  true,
	"swagger.json": true,
	"swagger.yaml": true,
}

// Classify categorizes a relative, slash-separated path.
func (c *Classifier) Classify(relPath string) Result {
	base := strings.ToLower(path.Base(relPath))
	ext := path.Ext(base)
	family := c.Extensions[ext]

	switch {
	case IsReadme(base):
		return Result{Category: types.CategoryReadme}
	case apiSpecNames[base] || ext == ".graphql" || ext == ".gql":
		return Result{Category: types.CategoryAPISpec}
	case IsTestName(base):
		return Result{Category: types.CategoryTestFile, Family: family}
	case ext == ".md" || ext == ".markdown":
		return Result{Category: types.CategoryMarkdownDoc}
	case family != types.FamilyNone:
		return Result{Category: types.CategorySourceCode, Family: family}
	}
	return Result{Category: types.CategoryOther}
}

// IsReadme matches readme* and *.readme, case-insensitively.
func IsReadme(base string) bool {
	base = strings.ToLower(base)
	return strings.HasPrefix(base, "readme") || strings.HasSuffix(base, ".readme")
}

// IsTestName matches *.test.*, *.spec.*, *_test.* and test_* names.
func IsTestName(base string) bool {
	base = strings.ToLower(base)
	if strings.HasPrefix(base, "test_") {
		return true
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	return strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.HasSuffix(stem, "_test")
}
