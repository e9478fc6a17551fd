package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/services"
)

// ContentHandler serves the notes, links and podcasts pages.
type ContentHandler struct {
	notes    *services.NoteService
	links    *services.LinkService
	podcasts *services.PodcastService
	importer *services.PodcastFeedImporter
	log      *logger.Logger
}

func NewContentHandler(notes *services.NoteService, links *services.LinkService, podcasts *services.PodcastService, importer *services.PodcastFeedImporter, log *logger.Logger) *ContentHandler {
	return &ContentHandler{notes: notes, links: links, podcasts: podcasts, importer: importer, log: log}
}

func (h *ContentHandler) Notes(c *gin.Context) {
	notes, err := h.notes.List(c.Request.Context())
	if err != nil {
		RenderServiceError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "notes.html", gin.H{"Notes": notes})
}

func (h *ContentHandler) UpsertNote(c *gin.Context) {
	var in models.NoteInput
	if !bindJSON(c, &in) {
		return
	}
	n, created, err := h.notes.Upsert(c.Request.Context(), in)
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	upserted(c, n, created)
}

func (h *ContentHandler) Links(c *gin.Context) {
	links, err := h.links.List(c.Request.Context())
	if err != nil {
		RenderServiceError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "links.html", gin.H{"Links": links})
}

func (h *ContentHandler) UpsertLink(c *gin.Context) {
	var in models.LinkInput
	if !bindJSON(c, &in) {
		return
	}
	l, created, err := h.links.Upsert(c.Request.Context(), in)
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	upserted(c, l, created)
}

func (h *ContentHandler) Podcasts(c *gin.Context) {
	podcasts, err := h.podcasts.List(c.Request.Context())
	if err != nil {
		RenderServiceError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "podcasts.html", gin.H{"Podcasts": podcasts})
}

func (h *ContentHandler) UpsertPodcast(c *gin.Context) {
	var in models.PodcastInput
	if !bindJSON(c, &in) {
		return
	}
	p, created, err := h.podcasts.Upsert(c.Request.Context(), in)
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	upserted(c, p, created)
}

type importRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ImportPodcasts pulls every episode of an RSS feed.
func (h *ContentHandler) ImportPodcasts(c *gin.Context) {
	var req importRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.importer.Import(c.Request.Context(), req.URL)
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
