package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/services"
)

type SEOHandler struct {
	articles *services.ArticleService
	siteURL  string
	log      *logger.Logger
}

func NewSEOHandler(articles *services.ArticleService, siteURL string, log *logger.Logger) *SEOHandler {
	return &SEOHandler{articles: articles, siteURL: strings.TrimSuffix(siteURL, "/"), log: log}
}

// RobotsTxt 返回 robots.txt 内容
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

# 管理接口与弹窗片段不需要收录
Disallow: /admin/
Disallow: /article/
Disallow: /concepts/*/popup

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

var sitemapPages = []struct {
	path       string
	changefreq string
	priority   string
}{
	{"/", "daily", "1.0"},
	{"/articles", "daily", "0.9"},
	{"/concepts", "weekly", "0.8"},
	{"/notes", "weekly", "0.6"},
	{"/links", "weekly", "0.6"},
	{"/podcasts", "weekly", "0.6"},
	{"/about", "monthly", "0.5"},
}

// SitemapXML 动态生成 sitemap.xml，包含所有公开文章
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	articles, err := h.articles.AllPublished(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to build sitemap", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC().Format("2006-01-02")
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`)
	for _, p := range sitemapPages {
		writeURL(&b, h.siteURL+p.path, now, p.changefreq, p.priority)
	}
	for _, a := range articles {
		writeURL(&b, h.siteURL+"/articles/"+a.Slug, lastmod(a, now), "weekly", "0.7")
	}
	b.WriteString(`</urlset>`)

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

func writeURL(b *strings.Builder, loc, lastmod, changefreq, priority string) {
	fmt.Fprintf(b, `  <url>
    <loc>%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>%s</changefreq>
    <priority>%s</priority>
  </url>
`, html.EscapeString(loc), lastmod, changefreq, priority)
}

// lastmod 取最后编辑日期，解析失败时用今天
func lastmod(a *models.Article, fallback string) string {
	for _, ts := range []string{a.LastEdited, a.Timestamp} {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return fallback
}
