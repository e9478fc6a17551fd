package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"conceptblog/internal/logger"
	"conceptblog/internal/services"
)

type AdminHandler struct {
	reconcile *services.ReconcileService
	log       *logger.Logger
}

func NewAdminHandler(reconcile *services.ReconcileService, log *logger.Logger) *AdminHandler {
	return &AdminHandler{reconcile: reconcile, log: log}
}

// ReconcileIssues 未处理的概念边同步失败记录
func (h *AdminHandler) ReconcileIssues(c *gin.Context) {
	issues, err := h.reconcile.Open(c.Request.Context())
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issues": issues})
}

// RetryReconcile 重新根据已存内容重建概念边
func (h *AdminHandler) RetryReconcile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue id"})
		return
	}

	res, err := h.reconcile.Retry(c.Request.Context(), uint(id))
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	h.log.Info("Reconcile issue retried", "id", id, "concepts", len(res.Concepts))
	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"concepts": res.Concepts,
		"created":  res.Created,
		"expanded": res.Expanded,
	})
}

type resyncRequest struct {
	Kind string `json:"kind" binding:"required"`
	Key  string `json:"key" binding:"required"`
}

// Resync 按类型和主键手动重建任意内容的概念边
func (h *AdminHandler) Resync(c *gin.Context) {
	var req resyncRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.reconcile.ResyncOwner(c.Request.Context(), req.Kind, req.Key)
	if err != nil {
		JSONServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"concepts": res.Concepts,
		"created":  res.Created,
		"expanded": res.Expanded,
	})
}
