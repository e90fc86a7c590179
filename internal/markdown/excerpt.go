package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Excerpt returns the text of the first non-empty <p> element in an HTML
// fragment, with whitespace collapsed. It returns "" when there is none.
func Excerpt(fragment []byte) string {
	z := html.NewTokenizer(bytes.NewReader(fragment))
	depth := 0
	var text strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(text.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "p" {
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "p" && depth > 0 {
				depth--
				if depth == 0 && strings.TrimSpace(text.String()) != "" {
					return strings.Join(strings.Fields(text.String()), " ")
				}
			}
		case html.TextToken:
			if depth > 0 {
				text.Write(z.Text())
			}
		}
	}
}
