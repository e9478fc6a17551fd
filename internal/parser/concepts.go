package parser

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// MarkerClass is the class that turns an element into a concept marker:
//
//	<span class="concept" name="Spaced Repetition">spaced repetition</span>
const MarkerClass = "concept"

// sentinel temporarily stands in for a marker's text while its offset is
// measured. It is a private-use rune that does not occur in normal prose.
const sentinel = "\uE000"

// ConceptMention groups every sentence in a piece of content that mentions
// one concept.
type ConceptMention struct {
	Name     string   `json:"name"`
	Mentions []string `json:"mentions"`
}

func (m ConceptMention) String() string {
	return fmt.Sprintf("<ConceptMention name='%s' count=%d>", m.Name, len(m.Mentions))
}

// blankSpace maps single-byte whitespace to a plain space, so the sentences
// the segmenter reports read the same as the text they were cut from.
var blankSpace = strings.NewReplacer("\n", " ", "\t", " ", "\r", " ", "\f", " ", "\v", " ")

// ParseConcepts extracts concept markers from HTML content. Each marker
// contributes the sentence it occurs in, with the marker text re-wrapped in a
// concept span ready for display. Mentions are grouped by the marker's name
// attribute in first-seen order. Markers without a name are skipped.
func ParseConcepts(content string) []ConceptMention {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}
	markers := doc.Find("." + MarkerClass)
	if markers.Length() == 0 {
		return nil
	}

	text := blankSpace.Replace(doc.Text())
	spans := segment(text)

	var order []string
	grouped := make(map[string][]string)

	markers.Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.AttrOr("name", ""))
		if name == "" {
			return
		}
		literal := s.Text()
		if strings.TrimSpace(literal) == "" {
			return
		}

		s.SetText(sentinel)
		offset := strings.Index(doc.Text(), sentinel)
		s.SetText(literal)
		if offset < 0 {
			return
		}

		sp, ok := enclosing(spans, offset)
		if !ok {
			sp, ok = trailing(text, spans)
		}
		if !ok {
			return
		}

		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], wrapMention(sp, offset, blankSpace.Replace(literal), name))
	})

	out := make([]ConceptMention, 0, len(order))
	for _, name := range order {
		out = append(out, ConceptMention{Name: name, Mentions: grouped[name]})
	}
	return out
}

// enclosing returns the sentence whose [start, end] range holds offset. An
// offset that falls in the gap between two sentences belongs to the next one.
func enclosing(spans []span, offset int) (span, bool) {
	for _, sp := range spans {
		if sp.text == "" {
			continue
		}
		if offset <= sp.end {
			return sp, true
		}
	}
	return span{}, false
}

// trailing is the unterminated fragment after the last sentence. The
// segmenter drops it, but a marker inside it still needs a context.
func trailing(text string, spans []span) (span, bool) {
	start := 0
	for _, sp := range spans {
		if sp.text != "" {
			start = sp.end
		}
	}
	rest := text[start:]
	trimmed := strings.TrimSpace(rest)
	if trimmed == "" {
		return span{}, false
	}
	start += len(rest) - len(strings.TrimLeftFunc(rest, unicode.IsSpace))
	return span{start: start, end: start + len(trimmed), text: trimmed}, true
}

func wrapMention(sp span, offset int, literal, name string) string {
	tag := func(s string) string {
		return "<span class='" + MarkerClass + "' name='" + html.EscapeString(name) + "'>" + html.EscapeString(s) + "</span>"
	}

	rel := offset - sp.start
	if rel >= 0 && rel <= len(sp.text) && strings.HasPrefix(sp.text[rel:], literal) {
		return html.EscapeString(sp.text[:rel]) + tag(literal) + html.EscapeString(sp.text[rel+len(literal):])
	}

	// The marker text was trimmed at the sentence edge or runs past it.
	trimmed := strings.TrimSpace(literal)
	if i := strings.Index(sp.text, trimmed); i >= 0 {
		return html.EscapeString(sp.text[:i]) + tag(trimmed) + html.EscapeString(sp.text[i+len(trimmed):])
	}
	return html.EscapeString(sp.text)
}

// ParseSummary returns the text of the first <summary> element, or "".
func ParseSummary(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	summary := doc.Find("summary").First()
	if summary.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(summary.Text())
}

// HTMLToText strips all markup and returns the text content.
func HTMLToText(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	return doc.Text()
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "details": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"figure": true, "footer": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true, "ol": true, "p": true,
	"pre": true, "section": true, "summary": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

// PlainText is HTMLToText for display: block elements are kept apart by a
// space and runs of whitespace collapse to one. Offsets do not match the
// source, so the parser itself uses HTMLToText.
func PlainText(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}

	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			switch name := goquery.NodeName(c); {
			case name == "#text":
				b.WriteString(c.Text())
			case name == "script" || name == "style":
			case blockElements[name]:
				b.WriteByte(' ')
				walk(c)
				b.WriteByte(' ')
			default:
				walk(c)
			}
		})
	}
	walk(doc.Selection)
	return strings.Join(strings.Fields(b.String()), " ")
}
