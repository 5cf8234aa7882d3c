// Package scanner walks a repository root and yields the source files that
// feed the detection and inference stages.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/StinkyLord/archmap/internal/model"
)

// maxFileSize caps how much of a single file is considered. Lock files in
// large JS repos can run to tens of megabytes and add nothing but noise.
const maxFileSize = 5 << 20

// readConcurrency bounds parallel file reads. Reads are independent, so the
// only constraint is file-descriptor pressure.
const readConcurrency = 8

// SourceFile is one candidate file: repository-relative slash-normalized
// path, decoded text content, and the language guessed from the extension.
// Immutable once read.
type SourceFile struct {
	Path     string
	Content  string
	Language string
}

// Stem returns the file name without directory or extension.
func (f SourceFile) Stem() string {
	base := f.Path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return base
}

// Result holds one completed scan: the files read plus the warnings for
// files that were skipped. A fresh scan re-reads from disk.
type Result struct {
	Files    []SourceFile
	Warnings []model.Warning
}

// Scanner reads candidate source files under a repository root.
// Include/Exclude are doublestar globs matched against repository-relative
// paths; empty Include means every candidate file is considered.
type Scanner struct {
	Root    string
	Include []string
	Exclude []string

	logger *zap.Logger
}

// New creates a Scanner for the given root.
func New(root string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{Root: root, logger: logger}
}

// skipDirs are dependency, build, and VCS directories that never contain
// first-party source worth analyzing.
var skipDirs = map[string]bool{
	"node_modules":  true,
	"__pycache__":   true,
	"venv":          true,
	"vendor":        true,
	"build":         true,
	"dist":          true,
	"out":           true,
	"target":        true,
	"site-packages": true,
}

// sourceExts is the set of file extensions treated as analyzable source or
// configuration text.
var sourceExts = map[string]bool{
	".py": true, ".pyi": true,
	".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".go": true, ".rb": true, ".java": true, ".kt": true,
	".php": true, ".cs": true,
	".yaml": true, ".yml": true, ".toml": true,
	".tf": true, ".sql": true,
}

// wellKnownFiles are configuration files analyzed regardless of extension.
var wellKnownFiles = map[string]bool{
	"requirements.txt":   true,
	"pyproject.toml":     true,
	"Pipfile":            true,
	"package.json":       true,
	"yarn.lock":          true,
	"package-lock.json":  true,
	"Dockerfile":         true,
	"docker-compose.yml": true,
	".env":               true,
}

// langByExt maps extensions to display language names. Unknown extensions
// report "text".
var langByExt = map[string]string{
	".py": "python", ".pyi": "python",
	".js": "javascript", ".jsx": "javascript",
	".ts": "typescript", ".tsx": "typescript",
	".go": "go", ".rb": "ruby", ".java": "java", ".kt": "kotlin",
	".php": "php", ".cs": "csharp",
	".yaml": "yaml", ".yml": "yaml", ".toml": "toml",
	".tf": "terraform", ".sql": "sql",
}

// Scan walks the root once and reads every candidate file. Unreadable and
// binary files are skipped with a recorded warning; they never abort the
// run. The returned file order is the deterministic lexical walk order.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	info, err := os.Stat(s.Root)
	if err != nil {
		return nil, fmt.Errorf("repository root %q does not exist: %w", s.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %q is not a directory", s.Root)
	}

	paths, warnings, err := s.collectPaths(ctx)
	if err != nil {
		return nil, err
	}

	// Read contents in parallel; each goroutine writes only its own index,
	// so the result order stays the deterministic walk order.
	files := make([]*SourceFile, len(paths))
	fileWarnings := make([]*model.Warning, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)
	for i, rel := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sf, warn := s.readFile(rel)
			files[i] = sf
			fileWarnings[i] = warn
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Warnings: warnings}
	for i := range files {
		if files[i] != nil {
			result.Files = append(result.Files, *files[i])
		}
		if fileWarnings[i] != nil {
			result.Warnings = append(result.Warnings, *fileWarnings[i])
		}
	}
	return result, nil
}

// collectPaths walks the tree and returns the repository-relative paths of
// every candidate file, in lexical walk order.
func (s *Scanner) collectPaths(ctx context.Context) ([]string, []model.Warning, error) {
	var paths []string
	var warnings []model.Warning

	err := filepath.WalkDir(s.Root, func(path string, d os.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			rel := s.relPath(path)
			warnings = append(warnings, model.Warning{Path: rel, Reason: err.Error()})
			s.logger.Warn("cannot access path", zap.String("path", rel), zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			name := d.Name()
			if path != s.Root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}

		rel := s.relPath(path)
		if !s.isCandidate(d.Name(), rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return paths, warnings, nil
}

// isCandidate applies the extension filter and the include/exclude globs.
// Extensionless files are candidates so that scripts and config files
// without a suffix still get looked at (and binaries among them warned on).
func (s *Scanner) isCandidate(base, rel string) bool {
	ext := strings.ToLower(filepath.Ext(base))
	if !sourceExts[ext] && !wellKnownFiles[base] && ext != "" {
		return false
	}
	if strings.HasPrefix(base, ".") && !wellKnownFiles[base] {
		return false
	}

	if len(s.Include) > 0 {
		matched := false
		for _, glob := range s.Include {
			if ok, err := doublestar.Match(glob, rel); err == nil && ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, glob := range s.Exclude {
		if ok, err := doublestar.Match(glob, rel); err == nil && ok {
			return false
		}
	}
	return true
}

// readFile reads and decodes one candidate. It returns either a SourceFile
// or a warning, never both.
func (s *Scanner) readFile(rel string) (*SourceFile, *model.Warning) {
	full := filepath.Join(s.Root, filepath.FromSlash(rel))

	if info, err := os.Stat(full); err == nil && info.Size() > maxFileSize {
		s.logger.Warn("skipping oversized file", zap.String("path", rel), zap.Int64("size", info.Size()))
		return nil, &model.Warning{Path: rel, Reason: fmt.Sprintf("file exceeds %d bytes", maxFileSize)}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		s.logger.Warn("cannot read file", zap.String("path", rel), zap.Error(err))
		return nil, &model.Warning{Path: rel, Reason: err.Error()}
	}

	if isBinary(data) {
		s.logger.Warn("skipping binary file", zap.String("path", rel))
		return nil, &model.Warning{Path: rel, Reason: "binary content"}
	}

	// Best-effort decode: drop undecodable bytes rather than failing.
	content := strings.ToValidUTF8(string(data), "")

	lang := langByExt[strings.ToLower(filepath.Ext(rel))]
	if lang == "" {
		lang = "text"
	}

	return &SourceFile{Path: rel, Content: content, Language: lang}, nil
}

// isBinary sniffs the first 8 KiB for a NUL byte, the same heuristic git
// uses to classify files.
func isBinary(data []byte) bool {
	n := len(data)
	if n > 8192 {
		n = 8192
	}
	for _, b := range data[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}

func (s *Scanner) relPath(path string) string {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
