package dom

import "strings"

// simpleSelector matches a single element: optional tag name plus zero or
// more attribute conditions.
type simpleSelector struct {
	tag   string
	attrs []attrCond
}

type attrCond struct {
	key      string
	val      string
	hasValue bool
}

func (s simpleSelector) matches(e *Element) bool {
	if e.IsText() {
		return false
	}
	if s.tag != "" && s.tag != "*" && e.Tag != s.tag {
		return false
	}
	for _, c := range s.attrs {
		v, ok := e.Attr(c.key)
		if !ok {
			return false
		}
		if c.hasValue && v != c.val {
			return false
		}
	}
	return true
}

// parseSimple parses "tag[attr][attr=val]" into a simpleSelector.
func parseSimple(s string) simpleSelector {
	var sel simpleSelector
	for {
		open := strings.IndexByte(s, '[')
		if open < 0 {
			sel.tag = strings.ToLower(s)
			return sel
		}
		if sel.tag == "" {
			sel.tag = strings.ToLower(s[:open])
		}
		close := strings.IndexByte(s[open:], ']')
		if close < 0 {
			return sel
		}
		body := s[open+1 : open+close]
		if eq := strings.IndexByte(body, '='); eq >= 0 {
			val := strings.Trim(body[eq+1:], `"'`)
			sel.attrs = append(sel.attrs, attrCond{key: strings.ToLower(body[:eq]), val: val, hasValue: true})
		} else {
			sel.attrs = append(sel.attrs, attrCond{key: strings.ToLower(body)})
		}
		s = s[open+close+1:]
		if s == "" {
			return sel
		}
	}
}

// Find returns every element matching the selector, in document order.
// Supported syntax: tag names, [attr] presence, [attr=val] equality, and
// whitespace descendant combinators ("table td[scope]"). Comma-separated
// selector groups are unioned.
func (d *Document) Find(selector string) []*Element {
	var chains [][]simpleSelector
	for _, group := range strings.Split(selector, ",") {
		group = strings.TrimSpace(group)
		if group == "" {
			continue
		}
		parts := strings.Fields(group)
		chain := make([]simpleSelector, len(parts))
		for i, p := range parts {
			chain[i] = parseSimple(p)
		}
		chains = append(chains, chain)
	}

	var out []*Element
	d.Walk(func(e *Element) {
		for _, chain := range chains {
			if matchChain(e, chain) {
				out = append(out, e)
				return
			}
		}
	})
	return out
}

// matchChain checks that e matches the last selector in the chain and that
// the remaining selectors match some ancestor path, innermost last.
func matchChain(e *Element, chain []simpleSelector) bool {
	if len(chain) == 0 {
		return false
	}
	last := chain[len(chain)-1]
	if !last.matches(e) {
		return false
	}
	rest := chain[:len(chain)-1]
	cur := e.Parent
	for i := len(rest) - 1; i >= 0; i-- {
		found := false
		for ; cur != nil; cur = cur.Parent {
			if rest[i].matches(cur) {
				found = true
				cur = cur.Parent
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
