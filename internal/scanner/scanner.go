// Package scanner finds analyzable source files under a set of paths.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/Singularity-ng/singularity-analysis/pkg/config"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config    *config.Config
	skipDirs  map[string]struct{}
	patterns  *ignore.GitIgnore
	languages map[parser.Language]struct{}
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{
		config:   cfg,
		skipDirs: make(map[string]struct{}, len(cfg.Exclude.Dirs)),
	}
	for _, d := range cfg.Exclude.Dirs {
		s.skipDirs[d] = struct{}{}
	}
	if len(cfg.Exclude.Patterns) > 0 {
		s.patterns = ignore.CompileIgnoreLines(cfg.Exclude.Patterns...)
	}
	if langs := cfg.LanguageFilter(); len(langs) > 0 {
		s.languages = make(map[parser.Language]struct{}, len(langs))
		for _, l := range langs {
			s.languages[l] = struct{}{}
		}
	}
	return s
}

// Scan expands paths into a sorted, de-duplicated list of source files.
// Directories are walked; files named explicitly are kept when their
// language is supported, even if exclusion patterns would match them.
func (s *Scanner) Scan(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	add := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		files = append(files, f)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if s.accepts(p) {
				add(filepath.Clean(p))
			}
			continue
		}
		found, err := s.ScanDir(p)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ScanDir recursively scans a directory for source files. Hidden and
// configured directories are skipped, as are symlinks resolving outside root.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	var gi *gitignoreView
	if s.config.Exclude.Gitignore {
		gi = loadGitignore(root, absRoot)
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
			info, err := os.Stat(resolved)
			if err != nil || info.IsDir() {
				// Symlinked directories are not followed.
				return nil
			}
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if s.SkipsDir(d.Name()) {
				return filepath.SkipDir
			}
			if gi.ignored(path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if s.patterns != nil && s.patterns.MatchesPath(filepath.ToSlash(rel)) {
			return nil
		}
		if gi.ignored(path, false) {
			return nil
		}
		if s.accepts(path) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, walkErr
}

// SkipsDir reports whether directories with this name are never scanned.
func (s *Scanner) SkipsDir(name string) bool {
	_, skip := s.skipDirs[name]
	return skip || strings.HasPrefix(name, ".")
}

// Matches reports whether ScanDir(root) would return path, ignoring
// .gitignore files. The file does not need to exist.
func (s *Scanner) Matches(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if s.SkipsDir(dir) {
			return false
		}
	}
	if strings.HasPrefix(parts[len(parts)-1], ".") {
		return false
	}
	if s.patterns != nil && s.patterns.MatchesPath(rel) {
		return false
	}
	return s.accepts(path)
}

// accepts reports whether path has a supported, selected language.
func (s *Scanner) accepts(path string) bool {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return false
	}
	if s.languages == nil {
		return true
	}
	_, ok := s.languages[lang]
	return ok
}

// findGitRoot returns the nearest directory at or above start holding a
// .git directory, or "" outside a repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// gitignoreView matches walked paths against every .gitignore of the
// repository containing the scanned root.
type gitignoreView struct {
	matcher gitignore.Matcher
	base    string // directory the patterns were read from
	root    string // root as given to ScanDir
	absRoot string
}

// loadGitignore reads the .gitignore files of the enclosing repository, or
// of absRoot itself outside a repository. It returns nil when there are none.
func loadGitignore(root, absRoot string) *gitignoreView {
	base := findGitRoot(absRoot)
	if base == "" {
		base = absRoot
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(base), nil)
	if err != nil || len(patterns) == 0 {
		return nil
	}
	return &gitignoreView{
		matcher: gitignore.NewMatcher(patterns),
		base:    base,
		root:    root,
		absRoot: absRoot,
	}
}

func (g *gitignoreView) ignored(path string, isDir bool) bool {
	if g == nil {
		return false
	}
	rel, err := filepath.Rel(g.root, path)
	if err != nil {
		return false
	}
	rel, err = filepath.Rel(g.base, filepath.Join(g.absRoot, rel))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return g.matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// The separator keeps "/root2" from matching "/root".
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// GroupByLanguage groups files by their detected language.
func GroupByLanguage(files []string) map[parser.Language][]string {
	groups := make(map[parser.Language][]string)
	for _, f := range files {
		lang := parser.DetectLanguage(f)
		if lang != parser.LangUnknown {
			groups[lang] = append(groups[lang], f)
		}
	}
	return groups
}

// FilterBySize drops files larger than maxSize. It returns the kept files
// and the number skipped. A maxSize of 0 keeps everything.
func FilterBySize(files []string, maxSize int64) ([]string, int) {
	if maxSize <= 0 {
		return files, 0
	}

	filtered := make([]string, 0, len(files))
	skipped := 0
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.Size() > maxSize {
			skipped++
			continue
		}
		filtered = append(filtered, f)
	}
	return filtered, skipped
}
