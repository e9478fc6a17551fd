package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const previewPage = `<!DOCTYPE html>
<html><head><title>Why forgetting helps</title>
<meta name="description" content="Forgetting makes retrieval practice work.">
</head><body><article>
<h1>Why forgetting helps</h1>
<p>Retrieval practice is most effective when some forgetting has happened. Each successful recall after a delay strengthens the memory more than an easy one would, which is why spacing works.</p>
<p>Researchers call this desirable difficulty. The harder the retrieval, the larger the benefit, as long as the retrieval eventually succeeds.</p>
</article></body></html>`

func TestLinkPreviewerExcerpt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "conceptblog-preview")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(previewPage))
	}))
	defer server.Close()

	excerpt, err := NewLinkPreviewer(0).Excerpt(context.Background(), server.URL+"/post")
	require.NoError(t, err)
	assert.Equal(t, "Forgetting makes retrieval practice work.", excerpt)
}

func TestLinkPreviewerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	p := NewLinkPreviewer(0)
	_, err := p.Excerpt(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "HTTP 404"))

	_, err = p.Excerpt(context.Background(), "ftp://example.com/file")
	assert.Error(t, err)
}
