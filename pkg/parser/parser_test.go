package parser

import (
	"sort"
	"testing"
)

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.parser == nil {
		t.Error("parser field is nil")
	}
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		// Go
		{"main.go", LangGo},
		{"pkg/parser/parser.go", LangGo},

		// Rust
		{"main.rs", LangRust},

		// Python
		{"script.py", LangPython},
		{"module.pyw", LangPython},
		{"types.pyi", LangPython},

		// TypeScript
		{"app.ts", LangTypeScript},
		{"app.mts", LangTypeScript},
		{"component.tsx", LangTSX},

		// JavaScript
		{"script.js", LangJavaScript},
		{"module.mjs", LangJavaScript},
		{"common.cjs", LangJavaScript},
		{"component.jsx", LangTSX},

		// Java
		{"Main.java", LangJava},

		// C/C++
		{"main.c", LangC},
		{"header.h", LangC},
		{"main.cpp", LangCPP},
		{"main.cc", LangCPP},
		{"header.hpp", LangCPP},

		// C#
		{"Program.cs", LangCSharp},

		// Ruby
		{"script.rb", LangRuby},
		{"Rakefile", LangRuby},

		// PHP
		{"index.php", LangPHP},

		// Bash
		{"script.sh", LangBash},
		{"script.bash", LangBash},

		// Unknown
		{"file.txt", LangUnknown},
		{"file.cob", LangUnknown},
		{"file", LangUnknown},

		// Case insensitivity
		{"Main.GO", LangGo},
		{"SCRIPT.PY", LangPython},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := DetectLanguage(tt.path)
			if got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		name string
		want Language
		ok   bool
	}{
		{"go", LangGo, true},
		{"  Go ", LangGo, true},
		{"golang", LangGo, true},
		{"RUST", LangRust, true},
		{"C++", LangCPP, true},
		{"c#", LangCSharp, true},
		{"TypeScript", LangTypeScript, true},
		{"tsx", LangTSX, true},
		{"shell", LangBash, true},
		{"cobol", LangUnknown, false},
		{"", LangUnknown, false},
		{"unknown", LangUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLanguage(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseLanguage(%q) = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLanguagesSorted(t *testing.T) {
	langs := Languages()
	if len(langs) != 13 {
		t.Fatalf("Languages() returned %d entries, want 13", len(langs))
	}
	if !sort.SliceIsSorted(langs, func(i, j int) bool { return langs[i] < langs[j] }) {
		t.Errorf("Languages() not sorted: %v", langs)
	}
	for _, l := range langs {
		if l.DisplayName() == "Unknown" {
			t.Errorf("%s has no display name", l)
		}
		if len(l.Extensions()) == 0 {
			t.Errorf("%s has no file extensions", l)
		}
	}
}

func TestGetTreeSitterLanguage(t *testing.T) {
	for _, lang := range Languages() {
		t.Run(string(lang), func(t *testing.T) {
			tsLang, err := GetTreeSitterLanguage(lang)
			if err != nil {
				t.Errorf("GetTreeSitterLanguage(%v) returned error: %v", lang, err)
			}
			if tsLang == nil {
				t.Errorf("GetTreeSitterLanguage(%v) returned nil", lang)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := GetTreeSitterLanguage(LangUnknown)
		if err == nil {
			t.Error("GetTreeSitterLanguage(LangUnknown) should return error")
		}
	})
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		source string
		lang   Language
	}{
		{
			name:   "go function",
			source: "package main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n",
			lang:   LangGo,
		},
		{
			name:   "python function",
			source: "def hello():\n    print('hello')\n",
			lang:   LangPython,
		},
		{
			name:   "javascript function",
			source: "function hello() {\n  console.log('hello');\n}\n",
			lang:   LangJavaScript,
		},
		{
			name:   "rust function",
			source: "fn main() {\n    println!(\"hello\");\n}\n",
			lang:   LangRust,
		},
	}

	p := New()
	defer p.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse([]byte(tt.source), tt.lang, "test.file")
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			defer result.Tree.Close()

			if result.Language != tt.lang {
				t.Errorf("result.Language = %v, want %v", result.Language, tt.lang)
			}
			if string(result.Source) != tt.source {
				t.Error("result.Source doesn't match input")
			}
			root := result.Tree.RootNode()
			if root == nil {
				t.Fatal("root node is nil")
			}
			if root.ChildCount() == 0 {
				t.Error("root node has no children")
			}
			if root.HasError() {
				t.Error("well-formed source produced an error tree")
			}
		})
	}
}
