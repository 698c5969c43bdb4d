package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Void elements per the HTML standard: no closing tag, no children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Render serializes e back to a self-contained markup fragment. The output
// re-parses to an equivalent tree, which makes it stable enough to serve as
// part of an issue's natural key.
func (e *Element) Render() string {
	var sb strings.Builder
	render(&sb, e)
	return sb.String()
}

func render(sb *strings.Builder, e *Element) {
	if e.IsText() {
		sb.WriteString(html.EscapeString(e.Text))
		return
	}
	if e.Tag == "#root" {
		for _, c := range e.Children {
			render(sb, c)
		}
		return
	}

	sb.WriteByte('<')
	sb.WriteString(e.Tag)
	for _, a := range e.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Val))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')

	if voidElements[e.Tag] {
		return
	}

	// Raw text elements keep their content unescaped.
	if e.Tag == "script" || e.Tag == "style" {
		for _, c := range e.Children {
			if c.IsText() {
				sb.WriteString(c.Text)
			}
		}
	} else {
		for _, c := range e.Children {
			render(sb, c)
		}
	}

	sb.WriteString("</")
	sb.WriteString(e.Tag)
	sb.WriteByte('>')
}
