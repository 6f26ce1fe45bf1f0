package coverage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/doclife/internal/types"
)

func estimate(t *testing.T, text string, family types.LanguageFamily) types.CoverageSample {
	t.Helper()
	sample, err := Estimate(strings.NewReader(text), family)
	require.NoError(t, err)
	return sample
}

func TestEstimate_EmptyFile(t *testing.T) {
	sample := estimate(t, "", types.FamilyPython)

	assert.Equal(t, 0, sample.TotalLineCount)
	assert.Equal(t, 0, sample.CommentLineCount)
	assert.Equal(t, 0, sample.CoveragePercent())
	assert.False(t, sample.HasStructuredDocBlock)
}

func TestEstimate_PythonHashComments(t *testing.T) {
	text := strings.Join([]string{
		"# module a",
		"import os",
		"# helper",
		"def f():",
		"    # inline",
		"    return 1",
		"",
		"# trailing",
		"x = f()",
		"print(x)",
	}, "\n")

	sample := estimate(t, text, types.FamilyPython)

	assert.Equal(t, 10, sample.TotalLineCount)
	assert.Equal(t, 4, sample.CommentLineCount)
	assert.Equal(t, 40, sample.CoveragePercent())
	assert.False(t, sample.HasStructuredDocBlock)
}

func TestEstimate_PythonDocstring(t *testing.T) {
	text := "def f():\n    \"\"\"Do a thing.\n\n    More detail.\n    \"\"\"\n    return 1\n"

	sample := estimate(t, text, types.FamilyPython)

	assert.Equal(t, 6, sample.TotalLineCount)
	assert.Equal(t, 4, sample.CommentLineCount)
	assert.True(t, sample.HasStructuredDocBlock)
}

func TestEstimate_SingleLineDocstring(t *testing.T) {
	text := "def f():\n    \"\"\"One line.\"\"\"\n    return 1\n"

	sample := estimate(t, text, types.FamilyPython)

	assert.Equal(t, 1, sample.CommentLineCount)
	assert.True(t, sample.HasStructuredDocBlock)
}

func TestEstimate_JavaDocBlock(t *testing.T) {
	text := strings.Join([]string{
		"/**",
		" * Adds numbers.",
		" */",
		"public int add(int a, int b) {",
		"  // sum",
		"  return a + b;",
		"}",
	}, "\n")

	sample := estimate(t, text, types.FamilyJava)

	assert.Equal(t, 7, sample.TotalLineCount)
	assert.Equal(t, 4, sample.CommentLineCount)
	assert.Equal(t, 57, sample.CoveragePercent()) // floor(400/7)
	assert.True(t, sample.HasStructuredDocBlock)
}

func TestEstimate_PlainBlockIsNotDocBlock(t *testing.T) {
	text := "/* license */\nint main() { return 0; }\n"

	sample := estimate(t, text, types.FamilyC)

	assert.Equal(t, 1, sample.CommentLineCount)
	assert.False(t, sample.HasStructuredDocBlock)
}

func TestEstimate_GoPackageComment(t *testing.T) {
	text := "// Package foo does things.\npackage foo\n\nfunc A() {}\n"

	sample := estimate(t, text, types.FamilyGo)

	assert.Equal(t, 4, sample.TotalLineCount)
	assert.Equal(t, 1, sample.CommentLineCount)
	assert.True(t, sample.HasStructuredDocBlock)
}

func TestEstimate_LuaBlockBeforeLineComment(t *testing.T) {
	text := "--[[\nlong\ncomment\n]]\nlocal x = 1\n"

	sample := estimate(t, text, types.FamilyLua)

	assert.Equal(t, 5, sample.TotalLineCount)
	assert.Equal(t, 4, sample.CommentLineCount)
	assert.True(t, sample.HasStructuredDocBlock)
}

func TestEstimate_UnknownFamily(t *testing.T) {
	sample := estimate(t, "# a\n# b\n", types.LanguageFamily("cobol"))

	assert.Equal(t, 2, sample.TotalLineCount)
	assert.Equal(t, 0, sample.CommentLineCount)
	assert.False(t, Supported(types.LanguageFamily("cobol")))
	assert.True(t, Supported(types.FamilyRust))
}

func TestEstimate_LongLinesAreCounted(t *testing.T) {
	long := strings.Repeat("x", 5*1024*1024)
	text := "# header\n" + long + "\n# trailer\n"

	sample := estimate(t, text, types.FamilyPython)

	assert.Equal(t, 3, sample.TotalLineCount)
	assert.Equal(t, 2, sample.CommentLineCount)
}

func TestEstimate_NoTrailingNewline(t *testing.T) {
	sample := estimate(t, "# a\nx = 1", types.FamilyPython)

	assert.Equal(t, 2, sample.TotalLineCount)
	assert.Equal(t, 1, sample.CommentLineCount)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestEstimate_ReadErrorIsReturned(t *testing.T) {
	_, err := Estimate(failingReader{}, types.FamilyGo)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}
