package analyzer

import (
	"errors"
	"fmt"

	"github.com/Singularity-ng/singularity-analysis/pkg/lang"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

var (
	// ErrUnsupportedLanguage matches every UnsupportedLanguageError.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParseFailure matches every ParseError.
	ErrParseFailure = errors.New("parse failure")

	// ErrDecodeFailure is returned when the input is not valid UTF-8 text.
	ErrDecodeFailure = errors.New("input is not valid UTF-8")

	// ErrFileTooLarge is returned when the input exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrGrammarMismatch is returned when a classifier table is stale for its grammar.
	ErrGrammarMismatch = lang.ErrGrammarMismatch
)

// UnsupportedLanguageError reports a language tag with no registered analyzer.
type UnsupportedLanguageError struct {
	Tag string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %q", e.Tag)
}

// Is matches ErrUnsupportedLanguage.
func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// ParseError reports source the grammar could not turn into a clean tree.
type ParseError struct {
	Language parser.Language
	Path     string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	msg := "parse failure"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Language != "" {
		msg += " (" + string(e.Language) + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is matches ErrParseFailure.
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFailure
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
