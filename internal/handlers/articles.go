package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/services"
	"conceptblog/internal/utils"
)

const popupExcerptLen = 280

type ArticleHandler struct {
	articles *services.ArticleService
	concepts *services.ConceptService
	siteURL  string
	log      *logger.Logger
}

func NewArticleHandler(articles *services.ArticleService, concepts *services.ConceptService, siteURL string, log *logger.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, concepts: concepts, siteURL: siteURL, log: log}
}

// Home 首页：公开文章 + 概念及其文章数
func (h *ArticleHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	articles, err := h.articles.AllPublished(ctx)
	if err != nil {
		RenderServiceError(c, h.log, err)
		return
	}
	concepts, err := h.concepts.InArticles(ctx)
	if err != nil {
		RenderServiceError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "home.html", gin.H{
		"Articles": articles,
		"Concepts": concepts,
	})
}

func (h *ArticleHandler) About(c *gin.Context) {
	Render(c, http.StatusOK, "about.html", nil)
}

func (h *ArticleHandler) List(c *gin.Context) {
	page, perPage := pageParams(c)
	result, err := h.articles.Published(c.Request.Context(), c.Request.URL.Path, page, perPage)
	if err != nil {
		RenderServiceError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "articles/list.html", gin.H{"Page": result})
}

func (h *ArticleHandler) Detail(c *gin.Context) {
	detail, err := h.articles.Detail(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RenderServiceError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "articles/detail.html", gin.H{
		"Detail":  detail,
		"Content": utils.EnhanceHTMLContent(detail.Article.Content, h.siteURL),
	})
}

// Upsert creates or updates an article from a JSON body.
func (h *ArticleHandler) Upsert(c *gin.Context) {
	var in models.ArticleInput
	if !bindJSON(c, &in) {
		return
	}
	a, created, err := h.articles.Upsert(c.Request.Context(), in)
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	upserted(c, a, created)
}

// Popup is the hover card behind links to other articles.
func (h *ArticleHandler) Popup(c *gin.Context) {
	a, err := h.articles.Popup(c.Request.Context(), c.Param("slug"))
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":    a.Title,
		"slug":     a.Slug,
		"excerpt":  services.Excerpt(a, popupExcerptLen),
		"concepts": a.Concepts,
	})
}

func (h *ArticleHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		Render(c, http.StatusOK, "search.html", gin.H{"Query": ""})
		return
	}
	page, perPage := pageParams(c)
	result, err := h.articles.Search(c.Request.Context(), c.Request.URL.Path, query, page, perPage)
	if err != nil {
		RenderServiceError(c, h.log, err)
		return
	}
	Render(c, http.StatusOK, "search.html", gin.H{"Query": query, "Page": result})
}
