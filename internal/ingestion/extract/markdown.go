package extract

import (
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
)

func getMarkdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
		)
	})
	return markdownParser
}

// Markdown extracts the first heading as the title and the text of every
// block, code blocks included. Raw HTML blocks are skipped.
func Markdown(raw []byte) (string, string, error) {
	source := raw
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	var (
		title  string
		chunks [][]byte
	)
	err := ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if title == "" {
				title = inlineText(node, source)
			}
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				chunks = append(chunks, seg.Value(source))
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			chunks = append(chunks, node.Label(source))
		case *ast.Text:
			chunks = append(chunks, node.Segment.Value(source))
		case *ast.String:
			chunks = append(chunks, node.Value)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", "", err
	}
	return collapse(title), joinChunks(chunks), nil
}

func inlineText(n ast.Node, source []byte) string {
	var chunks [][]byte
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.Text:
			chunks = append(chunks, node.Segment.Value(source))
		case *ast.String:
			chunks = append(chunks, node.Value)
		}
		return ast.WalkContinue, nil
	})
	return joinChunks(chunks)
}
