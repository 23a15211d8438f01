package filetext

import (
	"context"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// extractHTML converts an HTML file to readable text. The markup is sanitized
// first (scripts, styles and their contents go away), then rendered to
// markdown, which keeps headings, lists and tables legible in a prompt. When
// conversion produces nothing, a plain DOM text walk is the fallback.
func (e *Engine) extractHTML(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	raw, err := decodeText(data, e.cfg.EncodingHint, e.caps[CapCharset])
	if err != nil {
		return "", wrapf(FailDecode, err, "decode %s", path)
	}
	raw = stripBOM(raw)

	sanitized := htmlSanitizer.Sanitize(raw)
	if md, err := e.md.ConvertString(sanitized); err == nil {
		if text := strings.TrimSpace(md); text != "" {
			return text, nil
		}
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", wrapf(FailMalformed, err, "parse html %s", path)
	}
	return collectHTMLText(doc), nil
}

var htmlSanitizer = bluemonday.UGCPolicy()

// collectHTMLText gathers the visible text of a DOM subtree, skipping script,
// style and noscript blocks.
func collectHTMLText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
