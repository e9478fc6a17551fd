package router

import (
	"github.com/gin-gonic/gin"

	"conceptblog/internal/handlers"
	"conceptblog/internal/middleware"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Articles *handlers.ArticleHandler
	Concepts *handlers.ConceptHandler
	Content  *handlers.ContentHandler
	Comments *handlers.CommentHandler
	Admin    *handlers.AdminHandler
	SEO      *handlers.SEOHandler
}

// Auth is the admin credential pair; an empty Username leaves writes open.
type Auth struct {
	Username     string
	PasswordHash string
}

func RegisterRoutes(r *gin.Engine, h Handlers, auth Auth) {
	admin := middleware.AdminRequired(auth.Username, auth.PasswordHash)

	// 公共页面 (Public Routes)
	r.GET("/", h.Articles.Home)                      // 首页
	r.GET("/about", h.Articles.About)                // 关于
	r.GET("/articles", h.Articles.List)              // 公开文章分页
	r.GET("/articles/:slug", h.Articles.Detail)      // 文章详情 + 评论
	r.GET("/article/:slug/popup", h.Articles.Popup)  // 文章悬浮卡片
	r.GET("/notes", h.Content.Notes)                 // 笔记
	r.GET("/links", h.Content.Links)                 // 链接
	r.GET("/podcasts", h.Content.Podcasts)           // 播客
	r.GET("/concepts", h.Concepts.Index)             // 概念索引 / 概念下的文章
	r.GET("/concepts/:name/popup", h.Concepts.Popup) // 概念悬浮卡片
	r.GET("/search", h.Articles.Search)              // 全文搜索
	r.POST("/comments/:slug", h.Comments.Submit)     // 读者评论

	r.GET("/robots.txt", h.SEO.RobotsTxt)
	r.GET("/sitemap.xml", h.SEO.SitemapXML)

	// 写入接口 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(admin)
	{
		authorized.POST("/articles", h.Articles.Upsert)
		authorized.POST("/notes", h.Content.UpsertNote)
		authorized.POST("/links", h.Content.UpsertLink)
		authorized.POST("/podcasts", h.Content.UpsertPodcast)
		authorized.POST("/podcasts/import", h.Content.ImportPodcasts)
		authorized.POST("/concepts", h.Concepts.Upsert)
	}

	// 运维路由 (Admin Routes)
	ops := r.Group("/admin")
	ops.Use(admin)
	{
		ops.GET("/reconcile-issues", h.Admin.ReconcileIssues)
		ops.POST("/reconcile-issues/:id/retry", h.Admin.RetryReconcile)
		ops.POST("/resync", h.Admin.Resync)
	}
}
