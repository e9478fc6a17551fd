package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conceptblog/internal/config"
	"conceptblog/internal/graphdb"
	"conceptblog/internal/models"
)

const markedContent = `<p>About <span class="concept" name="Memory">memory</span> today.</p>`

func noopWrite(graphdb.Runner) error { return nil }

func TestWriterAtomicRunsEverythingInOneTransaction(t *testing.T) {
	g := newFakeGraph()
	w, store := newTestWriter(g, config.SyncAtomic, nil)
	owner := models.OwnerRef{Label: models.LabelArticle, Key: "A"}

	res, err := w.Write(context.Background(), owner, noopWrite, strPtr(markedContent))
	require.NoError(t, err)
	assert.Equal(t, []string{"memory"}, res.Concepts)
	assert.Equal(t, 1, store.Commits)
	for _, c := range store.Calls() {
		assert.True(t, c.InTx, c.Cypher)
	}
}

func TestWriterAtomicFailureRollsBack(t *testing.T) {
	g := newFakeGraph()
	g.failOn = "DELETE rel"
	issues := &fakeIssues{}
	w, store := newTestWriter(g, config.SyncAtomic, issues)

	_, err := w.Write(context.Background(), models.OwnerRef{Label: models.LabelNote, Key: "N"}, noopWrite, strPtr(markedContent))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, 0, store.Commits)
	assert.Equal(t, 1, store.Rollbacks)
	assert.Empty(t, issues.recorded)
}

func TestWriterSplitRecordsEdgeFailure(t *testing.T) {
	g := newFakeGraph()
	g.failOn = "DELETE rel"
	issues := &fakeIssues{}
	w, store := newTestWriter(g, config.SyncSplit, issues)
	owner := models.OwnerRef{Label: models.LabelLink, Key: "L"}
	changed := 0
	w.OnChange(func() { changed++ })

	_, err := w.Write(context.Background(), owner, noopWrite, strPtr(markedContent))
	require.NoError(t, err)
	assert.Equal(t, 1, store.Commits, "content transaction committed")
	assert.Equal(t, 1, store.Rollbacks, "edge transaction failed")
	assert.Equal(t, []models.OwnerRef{owner}, issues.recorded)
	assert.Equal(t, 1, changed)
}

func TestWriterSplitContentFailureSkipsEdges(t *testing.T) {
	g := newFakeGraph()
	w, store := newTestWriter(g, config.SyncSplit, &fakeIssues{})

	_, err := w.Write(context.Background(), models.OwnerRef{Label: models.LabelLink, Key: "L"},
		func(graphdb.Runner) error { return errBoom }, strPtr(markedContent))
	require.Error(t, err)
	assert.Empty(t, store.Find("HAS_CONCEPT"))
}

func TestWriterWithoutContentSkipsReconcile(t *testing.T) {
	g := newFakeGraph()
	w, store := newTestWriter(g, config.SyncAtomic, nil)

	_, err := w.Write(context.Background(), models.OwnerRef{Label: models.LabelArticle, Key: "A"}, noopWrite, nil)
	require.NoError(t, err)
	assert.Empty(t, store.Find("HAS_CONCEPT"))
	assert.Equal(t, 1, store.Commits)
}

func TestResyncResolvesIssue(t *testing.T) {
	g := newFakeGraph()
	g.content = markedContent
	issues := &fakeIssues{}
	w, _ := newTestWriter(g, config.SyncSplit, issues)
	owner := models.OwnerRef{Label: models.LabelPodcast, Key: "P"}

	res, err := w.Resync(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"memory"}, res.Concepts)
	assert.Equal(t, []models.OwnerRef{owner}, issues.resolved)
}
