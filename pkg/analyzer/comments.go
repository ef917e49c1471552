package analyzer

import (
	"context"

	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

// StripComments returns content with every comment removed. Line breaks
// inside a comment are kept so line numbers stay stable, and blanks left in
// front of a comment that ran to the end of its line are trimmed.
func (a *Analyzer) StripComments(ctx context.Context, language parser.Language, path string, content []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, cls, err := a.parse(language, path, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var spans [][2]uint32
	ast.Walk(tree.Root(), func(n ast.Node) ast.Action {
		if cls.IsComment(n, content) {
			spans = append(spans, [2]uint32{n.Start(), n.End()})
			return ast.SkipChildren
		}
		return ast.Continue
	}, nil)
	if len(spans) == 0 {
		return content, nil
	}

	out := make([]byte, 0, len(content))
	var prev uint32
	for _, span := range spans {
		start, end := span[0], span[1]
		if start < prev || end > uint32(len(content)) {
			continue
		}
		out = append(out, content[prev:start]...)
		if endsLine(content, end) {
			out = trimBlanks(out)
		}
		for _, c := range content[start:end] {
			if c == '\n' || c == '\r' {
				out = append(out, c)
			}
		}
		prev = end
	}
	return append(out, content[prev:]...), nil
}

func endsLine(content []byte, end uint32) bool {
	if int(end) >= len(content) {
		return true
	}
	c := content[end]
	return c == '\n' || c == '\r' || (end > 0 && content[end-1] == '\n')
}

func trimBlanks(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}
