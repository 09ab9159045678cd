package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// adMarkers are class/id fragments that identify ad containers
var adMarkers = []string{"adsbygoogle", "ad-slot", "ad-container", "advert", "sponsored", "doubleclick", "dfp-ad"}

func collectSignals(doc *html.Node, base *url.URL, page *Page) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script":
				if src := attr(n, "src"); src != "" {
					if resolved := resolveURL(base, src); resolved != "" {
						page.ScriptSources = append(page.ScriptSources, resolved)
					}
				}
			case "iframe":
				page.Iframes++
			}
			if isAdSlot(n) {
				page.AdSlots++
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func isAdSlot(n *html.Node) bool {
	if n.Data == "ins" && strings.Contains(attr(n, "class"), "adsbygoogle") {
		return true
	}
	if n.Data == "script" || n.Data == "ins" {
		return false
	}
	marker := strings.ToLower(attr(n, "class") + " " + attr(n, "id"))
	for _, m := range adMarkers {
		if strings.Contains(marker, m) {
			return true
		}
	}
	return false
}

// resolveURL resolves a relative URL against a base URL, keeping only http(s)
func resolveURL(base *url.URL, href string) string {
	if strings.HasPrefix(href, "#") {
		return ""
	}
	if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "data:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
