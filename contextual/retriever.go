// Package contextual supplies workspace context for hole-filling prompts:
// related code snippets and a directory listing, as opaque formatted text.
//
// Information Hiding:
// - Filesystem walking and path filtering
// - Size and count bounds on retrieved context
// - Snippet formatting

package contextual

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/richinex/midline/internal/dsa"
	"github.com/richinex/midline/internal/logger"
	"github.com/richinex/midline/model"
)

const (
	// DefaultMaxSnippets bounds how many related files feed one prompt.
	DefaultMaxSnippets = 3
	// DefaultMaxSnippetBytes bounds how much of each file is read.
	DefaultMaxSnippetBytes = 4096
	// DefaultMaxDirectories bounds the workspace listing.
	DefaultMaxDirectories = 50
)

// WorkspaceRetriever pulls context from a workspace directory tree.
type WorkspaceRetriever struct {
	root            string
	maxSnippets     int
	maxSnippetBytes int64
	maxDirectories  int
	logger          *log.Logger
}

// NewWorkspaceRetriever creates a retriever rooted at the given directory.
func NewWorkspaceRetriever(root string) *WorkspaceRetriever {
	return &WorkspaceRetriever{
		root:            root,
		maxSnippets:     DefaultMaxSnippets,
		maxSnippetBytes: DefaultMaxSnippetBytes,
		maxDirectories:  DefaultMaxDirectories,
		logger:          logger.Default("contextual"),
	}
}

// WithLimits overrides the snippet and listing bounds.
func (r *WorkspaceRetriever) WithLimits(maxSnippets int, maxSnippetBytes int64, maxDirectories int) *WorkspaceRetriever {
	if maxSnippets > 0 {
		r.maxSnippets = maxSnippets
	}
	if maxSnippetBytes > 0 {
		r.maxSnippetBytes = maxSnippetBytes
	}
	if maxDirectories > 0 {
		r.maxDirectories = maxDirectories
	}
	return r
}

// RelatedSnippets returns the heads of files sharing the cursor file's
// extension, nearest directories first. The cursor's own file is skipped.
func (r *WorkspaceRetriever) RelatedSnippets(ctx context.Context, cursor model.CursorContext) (string, error) {
	if cursor.FilePath == "" {
		return "", nil
	}
	ext := filepath.Ext(cursor.FilePath)
	if ext == "" {
		return "", nil
	}

	absRoot, err := filepath.Abs(r.root)
	if err != nil {
		return "", fmt.Errorf("invalid workspace root: %w", err)
	}

	var candidates []string
	err = filepath.WalkDir(absRoot, func(path string, entry os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(entry.Name()) != ext {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if sameFile(rel, cursor.FilePath) {
			return nil
		}
		candidates = append(candidates, rel)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("workspace walk failed: %w", err)
	}

	sortByProximity(candidates, cursor.FilePath)
	if scanLimit := r.maxSnippets * snippetScanFactor; len(candidates) > scanLimit {
		candidates = candidates[:scanLimit]
	}

	snippets := make([]snippet, 0, len(candidates))
	token := cursorToken(cursor.Prefix)
	for _, rel := range candidates {
		content, err := r.readHead(filepath.Join(absRoot, rel))
		if err != nil {
			r.logger.Debug("skipping unreadable snippet", "path", rel, "error", err)
			continue
		}
		hits := 0
		if token != "" {
			hits = dsa.BuildSuffixArray(content).Count(token)
		}
		snippets = append(snippets, snippet{rel: rel, content: content, hits: hits})
	}

	// Files mentioning the identifier at the cursor come first; proximity
	// order breaks ties.
	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].hits > snippets[j].hits
	})
	if len(snippets) > r.maxSnippets {
		snippets = snippets[:r.maxSnippets]
	}

	var sb strings.Builder
	for _, s := range snippets {
		fmt.Fprintf(&sb, "--- %s ---\n%s\n", s.rel, s.content)
	}
	return sb.String(), nil
}

// snippetScanFactor bounds how many proximity-ordered candidates are read
// and scored before the final cut.
const snippetScanFactor = 3

type snippet struct {
	rel     string
	content string
	hits    int
}

// cursorToken extracts the identifier immediately before the cursor, if
// any. Short fragments score too many false hits and are ignored.
func cursorToken(prefix string) string {
	end := len(prefix)
	start := end
	for start > 0 {
		c := prefix[start-1]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
			start--
			continue
		}
		break
	}
	if end-start < 3 {
		return ""
	}
	return prefix[start:end]
}

// WorkspaceDirectories returns a sorted listing of the workspace's
// directories, hidden ones skipped, bounded in count.
func (r *WorkspaceRetriever) WorkspaceDirectories(ctx context.Context) (string, error) {
	absRoot, err := filepath.Abs(r.root)
	if err != nil {
		return "", fmt.Errorf("invalid workspace root: %w", err)
	}

	var dirs []string
	err = filepath.WalkDir(absRoot, func(path string, entry os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") && path != absRoot {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil || rel == "." {
			return nil
		}
		dirs = append(dirs, rel+"/")
		if len(dirs) >= r.maxDirectories {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return "", fmt.Errorf("workspace walk failed: %w", err)
	}

	sort.Strings(dirs)
	return strings.Join(dirs, "\n"), nil
}

// readHead reads at most maxSnippetBytes from the start of a file.
func (r *WorkspaceRetriever) readHead(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, r.maxSnippetBytes)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// sameFile compares paths ignoring separator style and leading "./".
func sameFile(a, b string) bool {
	clean := func(p string) string {
		return filepath.ToSlash(filepath.Clean(p))
	}
	ca, cb := clean(a), clean(b)
	return ca == cb || strings.HasSuffix(cb, "/"+ca) || strings.HasSuffix(ca, "/"+cb)
}

// sortByProximity orders candidates by shared leading path segments with
// the cursor's file, most shared first, ties alphabetical.
func sortByProximity(candidates []string, filePath string) {
	target := strings.Split(filepath.ToSlash(filepath.Dir(filePath)), "/")
	shared := func(p string) int {
		parts := strings.Split(filepath.ToSlash(filepath.Dir(p)), "/")
		n := 0
		for n < len(parts) && n < len(target) && parts[n] == target[n] {
			n++
		}
		return n
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := shared(candidates[i]), shared(candidates[j])
		if si != sj {
			return si > sj
		}
		return candidates[i] < candidates[j]
	})
}

// Verify WorkspaceRetriever satisfies the retriever contract used by the
// prompt layer without importing it.
var _ interface {
	RelatedSnippets(ctx context.Context, cursor model.CursorContext) (string, error)
	WorkspaceDirectories(ctx context.Context) (string, error)
} = (*WorkspaceRetriever)(nil)
