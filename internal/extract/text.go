package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// MaxTextChars bounds the text handed to the classifier for URL-only requests
const MaxTextChars = 2000

// visibleText collects text nodes, skipping scripts and styles, with
// whitespace collapsed to single spaces
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
		}

		if n.Type == html.TextNode {
			for _, word := range strings.Fields(n.Data) {
				if buf.Len() > 0 {
					buf.WriteByte(' ')
				}
				buf.WriteString(word)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// findFirst returns the first element with one of the given tag names
func findFirst(n *html.Node, tags ...string) *html.Node {
	if n.Type == html.ElementNode {
		for _, tag := range tags {
			if n.Data == tag {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tags...); found != nil {
			return found
		}
	}
	return nil
}

// truncate cuts s to at most limit runes, preferring a word boundary
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndexByte(cut, ' '); idx > limit/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
