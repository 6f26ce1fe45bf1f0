// Package links validates relative cross-references between documents.
package links

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/steveyegge/doclife/internal/types"
)

// DefaultCacheSize bounds the number of resolved targets remembered per validator.
const DefaultCacheSize = 4096

// linkPattern matches [label](target) and [label](target "title").
var linkPattern = regexp.MustCompile(`\[[^\]]*\]\(\s*<?([^)\s>]+)>?(?:\s+["'][^"']*["'])?\s*\)`)

// Reference is one inline link found in a document.
type Reference struct {
	Target string
	Line   int
}

// Validator resolves link targets against a scan root.
type Validator struct {
	root string

	// exists caches whether an absolute path is present on disk
	exists *lru.Cache[string, bool]
}

// New creates a validator for documents under root.
func New(root string, cacheSize int) (*Validator, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, bool](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating link cache: %w", err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root path %q: %w", root, err)
	}
	return &Validator{root: absRoot, exists: cache}, nil
}

// Validate checks every Readme and MarkdownDoc in docs and returns the
// references that resolve to nothing. Other categories are ignored.
func (v *Validator) Validate(docs []types.DiscoveredFile) []types.BrokenLink {
	var broken []types.BrokenLink
	for _, doc := range docs {
		if !doc.Category.IsLinkSource() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(v.root, filepath.FromSlash(doc.Path)))
		if err != nil {
			slog.Warn("skipping unreadable document", "path", doc.Path, "error", err)
			continue
		}
		broken = append(broken, v.ValidateText(doc.Path, string(data))...)
	}
	return broken
}

// ValidateText checks the references in text, which lives at docPath
// (relative to the root). Each distinct target is reported at most once.
func (v *Validator) ValidateText(docPath, text string) []types.BrokenLink {
	var broken []types.BrokenLink
	seen := make(map[string]bool)

	for _, ref := range Extract(text) {
		target, ok := Normalize(ref.Target)
		if !ok || seen[ref.Target] {
			continue
		}
		seen[ref.Target] = true

		if v.resolves(docPath, target) {
			continue
		}
		reason := types.LinkDirNotFound
		if !strings.HasSuffix(target, "/") && path.Ext(target) != "" {
			reason = types.LinkFileNotFound
		}
		broken = append(broken, types.BrokenLink{
			SourceDoc:       docPath,
			TargetReference: ref.Target,
			Reason:          reason,
			Line:            ref.Line,
		})
	}
	return broken
}

// resolves tries the target relative to the document's directory, then
// relative to the root.
func (v *Validator) resolves(docPath, target string) bool {
	candidates := make([]string, 0, 2)
	if !strings.HasPrefix(target, "/") {
		docDir := filepath.Dir(filepath.Join(v.root, filepath.FromSlash(docPath)))
		candidates = append(candidates, filepath.Join(docDir, filepath.FromSlash(target)))
	}
	candidates = append(candidates, filepath.Join(v.root, filepath.FromSlash(strings.TrimPrefix(target, "/"))))

	for _, c := range candidates {
		if v.pathExists(c) {
			return true
		}
	}
	return false
}

func (v *Validator) pathExists(abs string) bool {
	if ok, hit := v.exists.Get(abs); hit {
		return ok
	}
	_, err := os.Stat(abs)
	ok := err == nil
	v.exists.Add(abs, ok)
	return ok
}

// Extract returns the inline link targets in text, skipping fenced code blocks.
func Extract(text string) []Reference {
	var refs []Reference
	inFence := false
	for i, l := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(l)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		for _, m := range linkPattern.FindAllStringSubmatch(l, -1) {
			refs = append(refs, Reference{Target: m[1], Line: i + 1})
		}
	}
	return refs
}

// Normalize strips the fragment and query from a target and decodes it.
// It reports false for targets that are not local paths: absolute URLs,
// protocol-relative URLs and pure anchors. Targets that are not valid URLs
// (a bare "%" for instance) are kept as written.
func Normalize(target string) (string, bool) {
	u, err := url.Parse(target)
	if err != nil {
		return normalizeRaw(target)
	}
	if u.Scheme != "" || u.Host != "" {
		return "", false
	}
	p := u.Path
	if p == "" {
		return "", false
	}
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	return p, true
}

func normalizeRaw(target string) (string, bool) {
	if strings.Contains(target, "://") || strings.HasPrefix(target, "//") {
		return "", false
	}
	p, _, _ := strings.Cut(target, "#")
	p, _, _ = strings.Cut(p, "?")
	if p == "" {
		return "", false
	}
	slog.Debug("link target is not a valid URL, checking it as written", "target", target)
	return p, true
}
