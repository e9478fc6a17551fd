package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"conceptblog/internal/logger"
	"conceptblog/internal/pagination"
	"conceptblog/internal/services"
	"conceptblog/internal/utils"
)

const flashKey = "flash"

// Render helper to inject common variables into every page
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	obj["CurrentPath"] = c.Request.URL.Path
	if _, ok := obj["Flashes"]; !ok {
		obj["Flashes"] = popFlashes(c)
	}

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// statusOf maps service errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal failures from visitors.
func publicMessage(code int, err error) string {
	if code == http.StatusInternalServerError {
		return "Something went wrong, please try again later."
	}
	return err.Error()
}

// RenderServiceError renders the error page for err, logging anything that
// is not the client's fault.
func RenderServiceError(c *gin.Context, log *logger.Logger, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	RenderError(c, code, publicMessage(code, err))
}

// JSONServiceError is RenderServiceError for the JSON API.
func JSONServiceError(c *gin.Context, log *logger.Logger, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		log.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(code, gin.H{"error": publicMessage(code, err)})
}

// bindJSON decodes the request body, answering 400 itself on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// upserted answers a JSON upsert: 201 for a new document, 200 otherwise.
func upserted(c *gin.Context, doc any, created bool) {
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, doc)
}

// pageParams reads ?page= and ?per_page=, clamped to sane bounds.
func pageParams(c *gin.Context) (page, perPage int) {
	page = pagination.ClampPage(utils.StringToInt(c.Query("page"), 0))
	perPage = pagination.ClampPerPage(utils.StringToInt(c.Query("per_page"), pagination.DefaultPerPage))
	return page, perPage
}

func addFlash(c *gin.Context, message string) {
	session := sessionOf(c)
	if session == nil {
		return
	}
	session.AddFlash(message, flashKey)
	_ = session.Save()
}

func popFlashes(c *gin.Context) []string {
	session := sessionOf(c)
	if session == nil {
		return nil
	}
	raw := session.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save()
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// sessionOf returns nil when the sessions middleware is not installed.
func sessionOf(c *gin.Context) sessions.Session {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	return sessions.Default(c)
}
