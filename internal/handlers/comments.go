package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"conceptblog/internal/logger"
	"conceptblog/internal/models"
	"conceptblog/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
	log      *logger.Logger
}

func NewCommentHandler(comments *services.CommentService, log *logger.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

// Submit 处理文章页评论表单，出错时通过 flash 回显到文章页
func (h *CommentHandler) Submit(c *gin.Context) {
	slug := c.Param("slug")
	back := "/articles/" + url.PathEscape(slug)

	var form models.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		addFlash(c, "Please fill in your name, a valid email and a comment.")
		c.Redirect(http.StatusFound, back+"#comment-form")
		return
	}

	target := models.ReplyTarget(c.DefaultQuery("parent", string(models.ReplyToArticle)))
	comment, err := h.comments.Submit(c.Request.Context(), slug, target, c.Query("parent_id"), form)
	switch {
	case err == nil:
		addFlash(c, "Thanks, your comment was posted.")
		c.Redirect(http.StatusFound, back+"#comment-"+comment.UUID)
	case errors.Is(err, services.ErrValidation):
		addFlash(c, err.Error())
		c.Redirect(http.StatusFound, back+"#comment-form")
	default:
		RenderServiceError(c, h.log, err)
	}
}
