package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// Both placeholders are single bytes: prd stands in for a protected period
// without changing any offsets, and stop is the only thing the pipeline
// inserts.
const (
	prd  = "\x00"
	stop = "\x01"
)

// Words that commonly open a sentence. An acronym or company suffix directly
// followed by one of them ends the sentence.
const starters = `(Mr|Mrs|Ms|Dr|He\s|She\s|It\s|They\s|Their\s|Our\s|We\s|But\s|However\s|That\s|This\s|Wherever)`

var (
	prefixesRe       = regexp.MustCompile(`(Mr|St|Mrs|Ms|Dr)[.]`)
	websitesRe       = regexp.MustCompile(`[.](com|net|org|io|gov)`)
	initialRe        = regexp.MustCompile(`\s([A-Za-z])[.] `)
	acronymStarterRe = regexp.MustCompile(`([A-Z][.][A-Z][.](?:[A-Z][.])?) ` + starters)
	threeLetterRe    = regexp.MustCompile(`([A-Za-z])[.]([A-Za-z])[.]([A-Za-z])[.]`)
	twoLetterRe      = regexp.MustCompile(`([A-Za-z])[.]([A-Za-z])[.]`)
	suffixStarterRe  = regexp.MustCompile(` (Inc|Ltd|Jr|Sr|Co)[.] ` + starters)
	suffixRe         = regexp.MustCompile(` (Inc|Ltd|Jr|Sr|Co)[.]`)
	letterRe         = regexp.MustCompile(` ([A-Za-z])[.]`)
)

// Protected abbreviations, in the order the rules see them. Anything outside
// this list that ends in a period (e.g. "etc.", "approx.") splits a sentence.
var ProtectedAbbreviations = []string{
	"Mr.", "St.", "Mrs.", "Ms.", "Dr.",
	".com", ".net", ".org", ".io", ".gov",
	"Ph.D.",
	"Inc.", "Ltd.", "Jr.", "Sr.", "Co.",
}

var quoteSwaps = strings.NewReplacer(
	".”", "”.",
	".\"", "\".",
	"!\"", "\"!",
	"?\"", "\"?",
)

// placeholderBytes clears newlines and any stray placeholder bytes from the
// input, one byte for one.
var placeholderBytes = strings.NewReplacer("\n", " ", prd, " ", stop, " ")

var terminators = strings.NewReplacer(
	".", "."+stop,
	"?", "?"+stop,
	"!", "!"+stop,
)

// SplitSentences breaks English prose into sentences with punctuation and
// abbreviation rules. The trailing fragment after the last terminator is
// dropped, so text without any terminator yields no sentences.
func SplitSentences(text string) []string {
	spans := segment(text)
	sentences := make([]string, 0, len(spans))
	for _, sp := range spans {
		sentences = append(sentences, sp.text)
	}
	return sentences
}

// span is one trimmed sentence and its byte range in the segmented text.
type span struct {
	start, end int
	text       string
}

// segment runs the sentence rules and reports where each sentence sits in
// text. Every rule keeps byte lengths except the stop markers, so positions
// map back by skipping those.
func segment(text string) []span {
	marked := " " + placeholderBytes.Replace(text) + "  "

	marked = prefixesRe.ReplaceAllString(marked, "${1}"+prd)
	marked = websitesRe.ReplaceAllString(marked, prd+"${1}")
	marked = strings.ReplaceAll(marked, "Ph.D.", "Ph"+prd+"D"+prd)
	marked = initialRe.ReplaceAllString(marked, " ${1}"+prd+" ")
	marked = acronymStarterRe.ReplaceAllString(marked, "${1}"+stop+" ${2}")
	marked = threeLetterRe.ReplaceAllString(marked, "${1}"+prd+"${2}"+prd+"${3}"+prd)
	marked = twoLetterRe.ReplaceAllString(marked, "${1}"+prd+"${2}"+prd)
	marked = suffixStarterRe.ReplaceAllString(marked, " ${1}"+prd+stop+" ${2}")
	marked = suffixRe.ReplaceAllString(marked, " ${1}"+prd)
	marked = letterRe.ReplaceAllString(marked, " ${1}"+prd)

	marked = quoteSwaps.Replace(marked)
	marked = terminators.Replace(marked)

	parts := strings.Split(marked, stop)
	parts = parts[:len(parts)-1]

	spans := make([]span, 0, len(parts))
	pos := -1 // the leading pad byte sits before text
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		lead := len(p) - len(strings.TrimLeftFunc(p, unicode.IsSpace))
		if trimmed == "" {
			lead = 0
		}
		start := max(pos+lead, 0)
		spans = append(spans, span{
			start: start,
			end:   start + len(trimmed),
			text:  strings.ReplaceAll(trimmed, prd, "."),
		})
		pos += len(p)
	}
	return spans
}
