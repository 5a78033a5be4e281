package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// PlainText reduces an HTML document to plain text. Script and style
// elements are dropped, then the trimmed texts of all non-empty paragraph
// elements are joined with newlines in document order. Documents without
// paragraph text fall back to the full document text with each text block
// on its own line.
func PlainText(rawHTML []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n"), nil
	}

	return documentText(doc), nil
}

// documentText walks every text node of the document and joins the trimmed
// non-empty ones with newlines, preserving document order.
func documentText(doc *goquery.Document) string {
	var blocks []string
	for _, node := range doc.Selection.Nodes {
		collectText(node, &blocks)
	}
	return strings.Join(blocks, "\n")
}

func collectText(n *html.Node, blocks *[]string) {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*blocks = append(*blocks, text)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, blocks)
	}
}
