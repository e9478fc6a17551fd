package concepts

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conceptblog/internal/graphdb"
	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/parser"
)

type memConcept struct {
	display string
	content string
}

// memEdges is an in-memory EdgeStore.
type memEdges struct {
	concepts map[string]*memConcept
	edges    map[models.OwnerRef]map[string][]string
	failOn   string
	deletes  int
}

func newMemEdges() *memEdges {
	return &memEdges{
		concepts: map[string]*memConcept{},
		edges:    map[models.OwnerRef]map[string][]string{},
	}
}

func (m *memEdges) DeleteEdges(_ context.Context, _ graphdb.Runner, owner models.OwnerRef) error {
	m.deletes++
	delete(m.edges, owner)
	return nil
}

func (m *memEdges) MergeConcept(_ context.Context, _ graphdb.Runner, c *models.Concept) (bool, string, error) {
	if c.Name == m.failOn {
		return false, "", errors.New("boom")
	}
	if existing, ok := m.concepts[c.Name]; ok {
		return false, existing.content, nil
	}
	m.concepts[c.Name] = &memConcept{display: c.DisplayName, content: c.Content}
	return true, c.Content, nil
}

func (m *memEdges) MergeEdge(_ context.Context, _ graphdb.Runner, owner models.OwnerRef, concept string, mentions []string) error {
	if m.edges[owner] == nil {
		m.edges[owner] = map[string][]string{}
	}
	m.edges[owner][concept] = mentions
	return nil
}

func (m *memEdges) targets(owner models.OwnerRef) []string {
	var out []string
	for name := range m.edges[owner] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// seed stores a concept the way an earlier write would have left it.
func (m *memEdges) seed(name, content string) {
	m.concepts[name] = &memConcept{display: name, content: content}
}

func marker(name, text string) string {
	return `<span class="concept" name="` + name + `">` + text + `</span>`
}

func parseable(content string) []string {
	var out []string
	for _, g := range Group(parser.ParseConcepts(content)) {
		out = append(out, g.Name)
	}
	sort.Strings(out)
	return out
}

func TestReconcileEdgeSetMatchesContentAcrossEdits(t *testing.T) {
	edges := newMemEdges()
	sync := NewSynchronizer(edges, DefaultMaxDepth, logger.NewNop())
	owner := models.OwnerRef{Label: models.LabelArticle, Key: "Learning"}
	ctx := context.Background()

	edits := []string{
		"<p>About " + marker("Spaced Repetition", "spacing") + " and " + marker("Memory", "memory") + " today.</p>",
		"<p>Only " + marker("Memory", "memory") + " remains now.</p>",
		"<p>Nothing marked here anymore.</p>",
		"<p>" + marker("Testing Effect", "Testing") + " is back again.</p>",
	}
	for i, content := range edits {
		res, err := sync.Reconcile(ctx, nil, owner, content)
		require.NoError(t, err, "edit %d", i)
		assert.Equal(t, parseable(content), edges.targets(owner), "edit %d", i)
		assert.Len(t, res.Concepts, len(parseable(content)))
	}
	assert.Equal(t, len(edits), edges.deletes)
	// concepts are shared and never removed
	assert.Len(t, edges.concepts, 3)
}

func TestReconcileStoresMentionsAndNormalizesNames(t *testing.T) {
	edges := newMemEdges()
	sync := NewSynchronizer(edges, DefaultMaxDepth, logger.NewNop())
	owner := models.OwnerRef{Label: models.LabelNote, Key: "n1"}

	content := "<p>" + marker("Spaced Repetition", "Spacing") + " helps a lot. " +
		"Use " + marker(" spaced repetition ", "it") + " daily.</p>"
	res, err := sync.Reconcile(context.Background(), nil, owner, content)
	require.NoError(t, err)

	assert.Equal(t, []string{"spaced repetition"}, res.Concepts)
	assert.Equal(t, []string{"spaced repetition"}, res.Created)
	assert.Equal(t, "Spaced Repetition", edges.concepts["spaced repetition"].display)
	assert.Len(t, edges.edges[owner]["spaced repetition"], 2)
}

func TestReconcileSecondOwnerReusesConcept(t *testing.T) {
	edges := newMemEdges()
	sync := NewSynchronizer(edges, DefaultMaxDepth, logger.NewNop())
	ctx := context.Background()
	content := "<p>" + marker("Memory", "memory") + " matters.</p>"

	first, err := sync.Reconcile(ctx, nil, models.OwnerRef{Label: models.LabelArticle, Key: "a"}, content)
	require.NoError(t, err)
	second, err := sync.Reconcile(ctx, nil, models.OwnerRef{Label: models.LabelLink, Key: "b"}, content)
	require.NoError(t, err)

	assert.Equal(t, []string{"memory"}, first.Created)
	assert.Empty(t, second.Created)
	assert.Len(t, edges.concepts, 1)
}

func TestReconcileExpandsConceptsWithStoredContent(t *testing.T) {
	edges := newMemEdges()
	edges.seed("memory", "<p>"+marker("Forgetting Curve", "forgetting")+" explains decay.</p>")
	sync := NewSynchronizer(edges, DefaultMaxDepth, logger.NewNop())
	owner := models.OwnerRef{Label: models.LabelArticle, Key: "a"}

	res, err := sync.Reconcile(context.Background(), nil, owner, "<p>"+marker("Memory", "memory")+" matters.</p>")
	require.NoError(t, err)

	assert.Equal(t, []string{"memory"}, res.Concepts)
	assert.Equal(t, []string{"memory"}, res.Expanded)
	assert.Equal(t, []string{"forgetting curve"}, res.Created)
	memory := models.OwnerRef{Label: models.LabelConcept, Key: "memory"}
	assert.Equal(t, []string{"forgetting curve"}, edges.targets(memory))
}

func TestReconcileSkipsConceptsWithoutContent(t *testing.T) {
	edges := newMemEdges()
	edges.seed("recall", "")
	sync := NewSynchronizer(edges, DefaultMaxDepth, logger.NewNop())

	res, err := sync.Reconcile(context.Background(), nil, models.OwnerRef{Label: models.LabelArticle, Key: "a"},
		"<p>"+marker("Recall", "recall")+" and "+marker("Memory", "memory")+" matter.</p>")
	require.NoError(t, err)

	assert.Empty(t, res.Expanded)
	assert.Equal(t, []string{"memory"}, res.Created)
	assert.Empty(t, edges.concepts["memory"].content)
}

func TestReconcileStopsOnCycles(t *testing.T) {
	edges := newMemEdges()
	edges.seed("a", "<p>"+marker("B", "b")+" follows.</p>")
	edges.seed("b", "<p>"+marker("A", "a")+" again.</p>")
	sync := NewSynchronizer(edges, 10, logger.NewNop())
	owner := models.OwnerRef{Label: models.LabelConcept, Key: "a"}

	res, err := sync.Reconcile(context.Background(), nil, owner, "<p>"+marker("B", "b")+" follows.</p>")
	require.NoError(t, err)

	assert.Equal(t, []string{"b"}, res.Expanded)
	assert.Equal(t, []string{"b"}, edges.targets(owner))
	assert.Equal(t, []string{"a"}, edges.targets(models.OwnerRef{Label: models.LabelConcept, Key: "b"}))
}

func TestReconcileRespectsMaxDepth(t *testing.T) {
	edges := newMemEdges()
	edges.seed("one", "<p>"+marker("Two", "two")+" next.</p>")
	edges.seed("two", "<p>"+marker("Three", "three")+" next.</p>")
	sync := NewSynchronizer(edges, 1, logger.NewNop())

	res, err := sync.Reconcile(context.Background(), nil,
		models.OwnerRef{Label: models.LabelNote, Key: "root"}, "<p>"+marker("One", "one")+" start.</p>")
	require.NoError(t, err)

	assert.Equal(t, []string{"one"}, res.Expanded)
	assert.Equal(t, []string{"two"}, edges.targets(models.OwnerRef{Label: models.LabelConcept, Key: "one"}))
	assert.Empty(t, edges.targets(models.OwnerRef{Label: models.LabelConcept, Key: "two"}))
}

func TestReconcilePropagatesStoreErrors(t *testing.T) {
	edges := newMemEdges()
	edges.failOn = "memory"
	sync := NewSynchronizer(edges, DefaultMaxDepth, logger.NewNop())

	_, err := sync.Reconcile(context.Background(), nil,
		models.OwnerRef{Label: models.LabelArticle, Key: "a"}, "<p>"+marker("Memory", "memory")+" matters.</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory")
}

func TestReconcileRejectsNonOwners(t *testing.T) {
	sync := NewSynchronizer(newMemEdges(), DefaultMaxDepth, logger.NewNop())
	_, err := sync.Reconcile(context.Background(), nil, models.OwnerRef{Label: models.LabelUser, Key: "x"}, "")
	assert.Error(t, err)
}

func TestGroup(t *testing.T) {
	got := Group([]parser.ConceptMention{
		{Name: "Memory", Mentions: []string{"one"}},
		{Name: "  ", Mentions: []string{"skip"}},
		{Name: "MEMORY", Mentions: []string{"two"}},
		{Name: "Recall", Mentions: []string{"three"}},
	})
	require.Len(t, got, 2)
	assert.Equal(t, Mention{Name: "memory", DisplayName: "Memory", Mentions: []string{"one", "two"}}, got[0])
	assert.Equal(t, "recall", got[1].Name)
}
