package extract

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML extracts the <title> and all visible text, skipping script, style,
// noscript and template elements. The title text is part of the visible
// text as well.
func HTML(raw []byte) (string, string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", "", fmt.Errorf("parsing html: %w", err)
	}
	var (
		title    string
		hasTitle bool
		chunks   [][]byte
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript, atom.Template:
				return
			case atom.Title:
				if !hasTitle {
					title = nodeText(n)
					hasTitle = true
				}
			}
		}
		if n.Type == html.TextNode {
			chunks = append(chunks, []byte(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return collapse(title), joinChunks(chunks), nil
}

func nodeText(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
	}
	return buf.String()
}
