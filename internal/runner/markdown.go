package runner

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// renderMarkdown flattens instruction-step markdown into plain
// terminal text: headings become upper-cased lines, list items get a
// bullet, inline formatting is dropped.
func renderMarkdown(src string) string {
	source := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if entering {
				b.WriteString(strings.ToUpper(string(node.Text(source))))
				b.WriteString("\n\n")
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if !entering {
				if _, inItem := node.Parent().(*ast.ListItem); !inItem {
					b.WriteString("\n\n")
				}
			}
		case *ast.ListItem:
			if entering {
				b.WriteString("  - ")
			} else {
				b.WriteString("\n")
			}
		case *ast.List:
			if !entering {
				b.WriteString("\n")
			}
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteString("\n")
				}
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimRight(b.String(), "\n")
}
