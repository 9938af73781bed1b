package processor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/pagetlai"
	"golang.org/x/net/html"
)

// HTMLProcessor extracts text segments from HTML values and applies their
// translations.
type HTMLProcessor struct {
	ignoredTags map[string]bool
}

// NewHTMLProcessor creates a processor skipping DefaultIgnoredTags.
func NewHTMLProcessor() *HTMLProcessor {
	return NewHTMLProcessorWithIgnoredTags(DefaultIgnoredTags)
}

// NewHTMLProcessorWithIgnoredTags creates a processor skipping the given tags.
func NewHTMLProcessorWithIgnoredTags(tags []string) *HTMLProcessor {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLProcessor{
		ignoredTags: ignored,
	}
}

// Fragment is a parsed HTML value awaiting translations.
type Fragment struct {
	doc *goquery.Document
}

// Extract parses an HTML fragment and returns its distinct text segments
// in document order.
func (p *HTMLProcessor) Extract(content string) (*Fragment, []Segment, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, nil, &pagetlai.ProcessorError{
			Message:     "failed to parse HTML",
			Cause:       err,
			ContentType: "html",
		}
	}

	var segments []Segment
	seen := make(map[string]bool)

	p.walk(doc.Find("body"), func(n *html.Node) {
		text := strings.TrimSpace(n.Data)
		hash := pagetlai.HashText(text)
		if seen[hash] {
			return
		}
		seen[hash] = true

		segments = append(segments, Segment{
			ID:      fmt.Sprintf("seg-%d", len(segments)),
			Text:    text,
			Hash:    hash,
			Context: buildContext(n),
		})
	})

	return &Fragment{doc: doc}, segments, nil
}

// Apply writes translations, keyed by segment hash, into the fragment and
// serializes it. Segments without a translation keep their source text.
func (p *HTMLProcessor) Apply(f *Fragment, translations map[string]string) (string, error) {
	if f == nil || f.doc == nil {
		return "", &pagetlai.ProcessorError{
			Message:     "fragment not parsed",
			ContentType: "html",
		}
	}

	body := f.doc.Find("body")
	p.walk(body, func(n *html.Node) {
		if translated, ok := translations[pagetlai.HashText(n.Data)]; ok {
			n.Data = preserveWhitespace(n.Data, translated)
		}
	})

	out, err := body.Html()
	if err != nil {
		return "", &pagetlai.ProcessorError{
			Message:     "failed to serialize HTML",
			Cause:       err,
			ContentType: "html",
		}
	}
	return out, nil
}

// walk calls fn for every non-blank text node outside ignored elements.
func (p *HTMLProcessor) walk(sel *goquery.Selection, fn func(*html.Node)) {
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && p.skip(n) {
			return
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			fn(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}

	for _, n := range sel.Nodes {
		visit(n)
	}
}

func (p *HTMLProcessor) skip(n *html.Node) bool {
	if p.ignoredTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key == "data-no-translate" || (attr.Key == "translate" && attr.Val == "no") {
			return true
		}
	}
	return false
}

// buildContext describes where a text node sits, e.g.
// `in <a class="btn"> | inside: nav > ul`.
func buildContext(n *html.Node) string {
	parent := n.Parent
	if parent == nil || parent.Type != html.ElementNode || parent.Data == "body" {
		return ""
	}

	var parts []string
	if class := attrValue(parent, "class"); class != "" {
		parts = append(parts, fmt.Sprintf("in <%s class=%q>", parent.Data, class))
	} else if id := attrValue(parent, "id"); id != "" {
		parts = append(parts, fmt.Sprintf("in <%s id=%q>", parent.Data, id))
	} else {
		parts = append(parts, fmt.Sprintf("in <%s>", parent.Data))
	}

	var ancestors []string
	for a := parent.Parent; a != nil && len(ancestors) < 3; a = a.Parent {
		if a.Type == html.ElementNode && a.Data != "html" && a.Data != "body" {
			ancestors = append([]string{a.Data}, ancestors...)
		}
	}
	if len(ancestors) > 0 {
		parts = append(parts, "inside: "+strings.Join(ancestors, " > "))
	}

	return strings.Join(parts, " | ")
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// preserveWhitespace carries the original leading/trailing whitespace over.
func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	if leadingLen == len(original) {
		return original
	}
	return original[:leadingLen] + strings.TrimSpace(translated) + original[len(original)-trailingLen:]
}
