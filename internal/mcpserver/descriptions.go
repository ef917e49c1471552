package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeAnalyzeSource() string {
	return `Computes per-scope code metrics for a single source buffer passed inline.

USE WHEN:
- Reviewing a snippet or an unsaved file
- Comparing two versions of a function before and after a refactor
- Checking a generated function against complexity limits

INTERPRETING RESULTS:
- The result is a tree of spaces: unit > class/interface > function > closure
- "metrics" aggregates a space and everything nested in it; "own" excludes children
- Cyclomatic > 10: many paths, hard to test; > 20 is a strong refactoring candidate
- Maintainability index < 20: hard to maintain (scale 0-171, higher is better)
- max_nesting > 4: deeply nested, consider early returns or extraction
- Syntax errors fail the call unless the server tolerates them

METRICS RETURNED:
- cyclomatic, halstead (n1, n2, N1, N2, volume, difficulty, effort, bugs)
- loc (source, physical, logical, comment, blank)
- maintainability_index, nom (functions, closures), nargs, nexits, max_nesting
- Threshold violations for each function`
}

func describeAnalyzePaths() string {
	return `Computes code metrics for every supported source file under the given paths.

USE WHEN:
- Getting a complexity overview of a directory or repository
- Finding the functions that exceed complexity or maintainability limits
- Prioritizing refactoring work across many files

INTERPRETING RESULTS:
- summary: file and function counts, mean/p50/p90/max cyclomatic, mean/min maintainability
- files: one space tree per file (omit with spaces=false for a compact answer)
- violations: functions over the configured limits, warning or critical (2x the limit)
- failures: files that could not be parsed, with the reason

METRICS RETURNED:
- Per-file and per-function cyclomatic, Halstead, LOC, maintainability, NOM, NArgs, NExits
- Batch summary statistics and the violation list`
}

func describeListLanguages() string {
	return `Lists the language tags the analyzer accepts, sorted.

USE WHEN:
- Choosing the language argument for analyze_source
- Checking whether a file type will be picked up by analyze_paths

METRICS RETURNED:
- Language tags with display names and file extensions`
}
