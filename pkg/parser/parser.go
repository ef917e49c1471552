package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangTSX        Language = "tsx"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangBash       Language = "bash"
	LangUnknown    Language = "unknown"
)

// Languages returns every language with a bundled grammar, sorted by tag.
func Languages() []Language {
	langs := []Language{
		LangGo, LangRust, LangPython, LangTypeScript, LangJavaScript, LangTSX,
		LangJava, LangC, LangCPP, LangCSharp, LangRuby, LangPHP, LangBash,
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// aliases maps lowercase display names and common spellings to tags.
var aliases = map[string]Language{
	"golang":     LangGo,
	"rs":         LangRust,
	"py":         LangPython,
	"python3":    LangPython,
	"ts":         LangTypeScript,
	"js":         LangJavaScript,
	"jsx":        LangTSX,
	"ecmascript": LangJavaScript,
	"c++":        LangCPP,
	"cxx":        LangCPP,
	"c#":         LangCSharp,
	"cs":         LangCSharp,
	"rb":         LangRuby,
	"sh":         LangBash,
	"shell":      LangBash,
}

// ParseLanguage resolves a free-form language name to a tag.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseLanguage(name string) (Language, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return LangUnknown, false
	}
	for _, l := range Languages() {
		if string(l) == key {
			return l, true
		}
	}
	if l, ok := aliases[key]; ok {
		return l, true
	}
	return LangUnknown, false
}

// DisplayName returns the human readable name of a language.
func (l Language) DisplayName() string {
	switch l {
	case LangGo:
		return "Go"
	case LangRust:
		return "Rust"
	case LangPython:
		return "Python"
	case LangTypeScript:
		return "TypeScript"
	case LangJavaScript:
		return "JavaScript"
	case LangTSX:
		return "TSX"
	case LangJava:
		return "Java"
	case LangC:
		return "C"
	case LangCPP:
		return "C++"
	case LangCSharp:
		return "C#"
	case LangRuby:
		return "Ruby"
	case LangPHP:
		return "PHP"
	case LangBash:
		return "Bash"
	default:
		return "Unknown"
	}
}

// Extensions returns the file extensions mapped to a language.
func (l Language) Extensions() []string {
	var exts []string
	for ext, lang := range extensions {
		if lang == l {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Parser wraps tree-sitter for multi-language parsing.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed tree and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Parse parses source code with a specified language.
func (p *Parser) Parse(source []byte, lang Language, path string) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("failed to parse: no tree produced for %s", lang)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// GetTreeSitterLanguage returns the tree-sitter grammar for a Language.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangC:
		return c.GetLanguage(), nil
	case LangCPP:
		return cpp.GetLanguage(), nil
	case LangCSharp:
		return csharp.GetLanguage(), nil
	case LangRuby:
		return ruby.GetLanguage(), nil
	case LangPHP:
		return php.GetLanguage(), nil
	case LangBash:
		return bash.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

var extensions = map[string]Language{
	".go":   LangGo,
	".rs":   LangRust,
	".py":   LangPython,
	".pyw":  LangPython,
	".pyi":  LangPython,
	".ts":   LangTypeScript,
	".mts":  LangTypeScript,
	".cts":  LangTypeScript,
	".tsx":  LangTSX,
	".js":   LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".jsx":  LangTSX, // JSX parses with the TSX grammar
	".java": LangJava,
	".c":    LangC,
	".h":    LangC,
	".cpp":  LangCPP,
	".cc":   LangCPP,
	".cxx":  LangCPP,
	".hpp":  LangCPP,
	".hxx":  LangCPP,
	".hh":   LangCPP,
	".cs":   LangCSharp,
	".rb":   LangRuby,
	".rake": LangRuby,
	".php":  LangPHP,
	".sh":   LangBash,
	".bash": LangBash,
}

// DetectLanguage determines the language from a file path.
func DetectLanguage(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	base := strings.ToLower(filepath.Base(path))

	switch base {
	case "rakefile", "gemfile":
		return LangRuby
	}

	if lang, ok := extensions[ext]; ok {
		return lang
	}
	return LangUnknown
}
