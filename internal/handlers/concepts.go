package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/services"
)

type ConceptHandler struct {
	concepts *services.ConceptService
	articles *services.ArticleService
	log      *logger.Logger
}

func NewConceptHandler(concepts *services.ConceptService, articles *services.ArticleService, log *logger.Logger) *ConceptHandler {
	return &ConceptHandler{concepts: concepts, articles: articles, log: log}
}

// Index lists every concept by letter, or with ?concept= the published
// articles linked to one concept.
func (h *ConceptHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	if name := strings.TrimSpace(c.Query("concept")); name != "" {
		page, perPage := pageParams(c)
		result, err := h.articles.ByConcept(ctx, c.Request.URL.Path, models.NormalizeConceptName(name), page, perPage)
		if err != nil {
			RenderServiceError(c, h.log, err)
			return
		}
		Render(c, http.StatusOK, "concepts/articles.html", gin.H{"Concept": name, "Page": result})
		return
	}

	groups, err := h.concepts.Index(ctx)
	if err != nil {
		RenderServiceError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "concepts/index.html", gin.H{"Groups": groups})
}

func (h *ConceptHandler) Upsert(c *gin.Context) {
	var in models.ConceptInput
	if !bindJSON(c, &in) {
		return
	}
	concept, created, err := h.concepts.Upsert(c.Request.Context(), in)
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	upserted(c, concept, created)
}

func (h *ConceptHandler) Popup(c *gin.Context) {
	popup, err := h.concepts.Popup(c.Request.Context(), c.Param("name"))
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":         popup.Concept.Name,
		"display_name": popup.Concept.DisplayName,
		"content":      popup.Concept.Content,
		"related":      popup.Related,
	})
}
