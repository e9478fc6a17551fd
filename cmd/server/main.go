package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"conceptblog/internal/concepts"
	"conceptblog/internal/config"
	"conceptblog/internal/db"
	"conceptblog/internal/graphdb"
	"conceptblog/internal/handlers"
	"conceptblog/internal/ledger"
	"conceptblog/internal/logger"
	"conceptblog/internal/middleware"
	"conceptblog/internal/models"
	"conceptblog/internal/repository"
	"conceptblog/internal/router"
	"conceptblog/internal/services"
	"conceptblog/internal/utils"
)

const cacheSize = 1024

// connectGraph is swapped out in tests.
var connectGraph = func(ctx context.Context, cfg config.Neo4j, log *logger.Logger) (graphdb.Store, error) {
	client, err := graphdb.Connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("Server stopped", "error", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

// run serves until ctx is done. Every resource it opens is released before
// it returns, including on startup failures.
func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	// Initialize Graph Store
	store, err := connectGraph(ctx, cfg.Neo4j, log)
	if err != nil {
		return fmt.Errorf("connect to neo4j: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("Failed to close Neo4j driver", "error", err)
		}
	}()
	graphdb.EnsureSchema(ctx, store, log)

	// Initialize Ledger Database
	gdb, err := db.Open(cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("open ledger database: %w", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	issues := ledger.New(gdb)

	cache, err := utils.NewCache(cacheSize)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}

	// Repositories & Services
	synchronizer := concepts.NewSynchronizer(concepts.GraphEdges{}, cfg.ConceptMaxDepth, log)
	writer := services.NewContentWriter(store, synchronizer, cfg.SyncMode, issues, log)
	writer.OnChange(cache.Purge)

	articleRepo := repository.NewArticleRepository(store)
	conceptRepo := repository.NewConceptRepository(store)

	var related services.RelatedFinder
	if cfg.Enrichment.Enabled {
		related = services.NewEnricher(cfg.Enrichment, log)
	}
	var previewer services.Previewer
	if cfg.LinkPreviewEnabled {
		previewer = services.NewLinkPreviewer(0)
	}

	articleService := services.NewArticleService(writer, articleRepo, log)
	conceptService := services.NewConceptService(writer, store, conceptRepo, cache, related, log)
	noteService := services.NewNoteService(writer, repository.NewNoteRepository(store), log)
	linkService := services.NewLinkService(writer, repository.NewLinkRepository(store), previewer, log)
	podcastService := services.NewPodcastService(writer, repository.NewPodcastRepository(store), log)
	commentService := services.NewCommentService(store, repository.NewCommentRepository(store), articleRepo, log)
	reconcileService := services.NewReconcileService(writer, issues)

	// Initialize Gin
	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), gzip.Gzip(gzip.DefaultCompression))

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("conceptblog_session", sessionStore))

	r.HTMLRender = loadTemplates(cfg.TemplatesDir, cfg.SiteBase())
	r.Static("/static", cfg.StaticDir)

	router.RegisterRoutes(r, router.Handlers{
		Articles: handlers.NewArticleHandler(articleService, conceptService, cfg.SiteBase(), log),
		Concepts: handlers.NewConceptHandler(conceptService, articleService, log),
		Content: handlers.NewContentHandler(noteService, linkService, podcastService,
			services.NewPodcastFeedImporter(podcastService, log), log),
		Comments: handlers.NewCommentHandler(commentService, log),
		Admin:    handlers.NewAdminHandler(reconcileService, log),
		SEO:      handlers.NewSEOHandler(articleService, cfg.SiteBase(), log),
	}, router.Auth{Username: cfg.AdminUsername, PasswordHash: cfg.AdminPasswordHash})

	if !cfg.AuthEnabled() {
		log.Warn("ADMIN_USERNAME is not set, write routes are unauthenticated")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Port, "sync_mode", cfg.SyncMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func loadTemplates(templatesDir, siteURL string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}
	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		return append(files, filepath.Join(templatesDir, "views", view))
	}

	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"markdown": utils.RenderMarkdown,
		"enhance": func(s string) template.HTML {
			return utils.EnhanceHTMLContent(s, siteURL)
		},
		"excerpt": func(a *models.Article) string {
			return services.Excerpt(a, 200)
		},
		"date": func(ts string) string {
			t, err := time.Parse(time.RFC3339Nano, ts)
			if err != nil {
				return ts
			}
			return t.Format("January 2, 2006")
		},
	}

	views := []string{
		"home.html",
		"about.html",
		"articles/list.html",
		"articles/detail.html",
		"search.html",
		"notes.html",
		"links.html",
		"podcasts.html",
		"concepts/index.html",
		"concepts/articles.html",
		"error.html",
	}
	for _, v := range views {
		r.AddFromFilesFuncs(v, funcMap, assemble(v)...)
	}
	return r
}
