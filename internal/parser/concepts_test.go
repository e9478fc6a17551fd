package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConceptsNoMarkers(t *testing.T) {
	assert.Empty(t, ParseConcepts("<p>Plain content without any markers.</p>"))
	assert.Empty(t, ParseConcepts(""))
}

func TestParseConceptsWrapsMention(t *testing.T) {
	content := "Some content about <span name='Spaced Repetition' class='concept'>spaced repetition</span>."

	got := ParseConcepts(content)
	require.Len(t, got, 1)
	assert.Equal(t, "Spaced Repetition", got[0].Name)
	require.Len(t, got[0].Mentions, 1)
	assert.Equal(t,
		"Some content about <span class='concept' name='Spaced Repetition'>spaced repetition</span>.",
		got[0].Mentions[0])
}

func TestParseConceptsGroupsByName(t *testing.T) {
	content := `<p>The <span class="concept" name="Memory">memory</span> fades quickly. ` +
		`Review keeps <span class="concept" name="Memory">memories</span> alive.</p>`

	got := ParseConcepts(content)
	require.Len(t, got, 1)
	assert.Equal(t, "Memory", got[0].Name)
	assert.Equal(t, []string{
		"The <span class='concept' name='Memory'>memory</span> fades quickly.",
		"Review keeps <span class='concept' name='Memory'>memories</span> alive.",
	}, got[0].Mentions)
}

func TestParseConceptsKeepsDuplicateSentences(t *testing.T) {
	content := `<p><span class="concept" name="Recall">Recall</span> beats rereading, and ` +
		`<span class="concept" name="Recall">recall</span> is hard.</p>`

	got := ParseConcepts(content)
	require.Len(t, got, 1)
	require.Len(t, got[0].Mentions, 2)
	assert.Equal(t,
		"<span class='concept' name='Recall'>Recall</span> beats rereading, and recall is hard.",
		got[0].Mentions[0])
	assert.Equal(t,
		"Recall beats rereading, and <span class='concept' name='Recall'>recall</span> is hard.",
		got[0].Mentions[1])
}

func TestParseConceptsSameLiteralInDifferentSentences(t *testing.T) {
	content := `<p>Testing matters. Practice testing works. ` +
		`Use <span class="concept" name="Testing Effect">testing</span> daily.</p>`

	got := ParseConcepts(content)
	require.Len(t, got, 1)
	assert.Equal(t, []string{
		"Use <span class='concept' name='Testing Effect'>testing</span> daily.",
	}, got[0].Mentions)
}

func TestParseConceptsSkipsMarkersWithoutName(t *testing.T) {
	content := `<p>A <span class="concept">nameless</span> marker. ` +
		`A <span class="concept" name="  ">blank</span> one. ` +
		`A <span class="concept" name="Named">named</span> marker.</p>`

	got := ParseConcepts(content)
	require.Len(t, got, 1)
	assert.Equal(t, "Named", got[0].Name)
}

func TestParseConceptsPreservesFirstSeenOrder(t *testing.T) {
	content := `<p><span class="concept" name="Zeta">zeta</span> first. ` +
		`<span class="concept" name="Alpha">alpha</span> second. ` +
		`<span class="concept" name="Zeta">zeta</span> third.</p>`

	got := ParseConcepts(content)
	require.Len(t, got, 2)
	assert.Equal(t, "Zeta", got[0].Name)
	assert.Equal(t, "Alpha", got[1].Name)
	assert.Len(t, got[0].Mentions, 2)
}

func TestParseConceptsAcrossElements(t *testing.T) {
	content := `<h1>Notes</h1><p>First paragraph ends here.</p>` +
		`<p>Dr. Wozniak built <span class="concept" name="SuperMemo">SuperMemo</span> early.</p>`

	got := ParseConcepts(content)
	require.Len(t, got, 1)
	require.Len(t, got[0].Mentions, 1)
	assert.Contains(t, got[0].Mentions[0], "<span class='concept' name='SuperMemo'>SuperMemo</span> early.")
	assert.Contains(t, got[0].Mentions[0], "Dr. Wozniak built")
}

func TestParseConceptsEscapesText(t *testing.T) {
	content := `<p>Use &lt;b&gt; with <span class="concept" name="Tags &amp; Markup">tags</span>.</p>`

	got := ParseConcepts(content)
	require.Len(t, got, 1)
	assert.Equal(t, "Tags & Markup", got[0].Name)
	assert.Equal(t,
		"Use &lt;b&gt; with <span class='concept' name='Tags &amp; Markup'>tags</span>.",
		got[0].Mentions[0])
}

func TestParseConceptsMalformedHTML(t *testing.T) {
	content := `<p>Broken <span class="concept" name="Tolerance">markup</span> here.<div><b>`

	got := ParseConcepts(content)
	require.Len(t, got, 1)
	assert.Equal(t, "Tolerance", got[0].Name)
}

func TestParseSummary(t *testing.T) {
	assert.Equal(t, "Short summary.", ParseSummary("<details><summary>Short summary.</summary><p>Body</p></details>"))
	assert.Equal(t, "First", ParseSummary("<summary>First</summary><summary>Second</summary>"))
	assert.Equal(t, "", ParseSummary("<p>No summary here.</p>"))
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "Hello world.", HTMLToText("<p>Hello <em>world</em>.</p>"))
	assert.Equal(t, "", HTMLToText(""))
}

func TestConceptMentionString(t *testing.T) {
	m := ConceptMention{Name: "Memory", Mentions: []string{"a", "b"}}
	assert.Equal(t, "<ConceptMention name='Memory' count=2>", m.String())
}

func TestParseConceptsQuotedAcronym(t *testing.T) {
	content := `<p>He loves the "U.S." and <span class="concept" name="Freedom">freedom</span> too. ` +
		`Later <span class="concept" name="Memory">memory</span> faded.</p>`

	got := ParseConcepts(content)
	require.Len(t, got, 2)
	assert.Equal(t, "Freedom", got[0].Name)
	assert.Equal(t, []string{
		"He loves the &#34;U.S.&#34; and <span class='concept' name='Freedom'>freedom</span> too.",
	}, got[0].Mentions)
	assert.Equal(t, "Memory", got[1].Name)
	assert.Equal(t, []string{
		"Later <span class='concept' name='Memory'>memory</span> faded.",
	}, got[1].Mentions)
}

func TestParseConceptsQuotedTitle(t *testing.T) {
	content := `<p>He said "Hi Mr." to <span class="concept" name="A">a</span>. ` +
		`Then <span class="concept" name="B">b</span> left.</p>`

	got := ParseConcepts(content)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	require.Len(t, got[0].Mentions, 1)
	assert.Contains(t, got[0].Mentions[0], "&#34;Hi Mr.&#34; to <span class='concept' name='A'>a</span>.")
	assert.Equal(t, "B", got[1].Name)
	require.Len(t, got[1].Mentions, 1)
	assert.Contains(t, got[1].Mentions[0], "Then <span class='concept' name='B'>b</span> left.")
}

func TestParseConceptsUnterminatedFragment(t *testing.T) {
	content := `<p>First one. Then <span class="concept" name="Tail">tail</span> without end</p>`

	got := ParseConcepts(content)
	require.Len(t, got, 1)
	assert.Equal(t, []string{
		"Then <span class='concept' name='Tail'>tail</span> without end",
	}, got[0].Mentions)
}

func TestSegmentSpansMatchText(t *testing.T) {
	text := `She said "Hi Dr." twice. The U.S. He left. Odd "end."`

	for _, sp := range segment(text) {
		assert.Equal(t, len(sp.text), sp.end-sp.start)
		assert.Equal(t, quoteSwaps.Replace(text[sp.start:sp.end]), sp.text)
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "one two three", PlainText("<p>one\n two</p><p>three</p>"))
	assert.Equal(t, "Title Hello world.", PlainText("<h1>Title</h1><p>Hello <em>world</em>.</p>"))
	assert.Equal(t, "kept", PlainText("<script>var x;</script><p>kept</p>"))
	assert.Equal(t, "", PlainText(""))
}
