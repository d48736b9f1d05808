package suggestions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mailmind-backend/internal/embedding"
	"mailmind-backend/internal/generation"
	"mailmind-backend/internal/shared/server/middleware"
	"mailmind-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches suggestion routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/suggestions", h.create)
	rg.GET("/suggestions/:id", h.get)
	rg.GET("/threads/:threadId/suggestions", h.listByThread)
	rg.POST("/suggestions/:id/enhance", h.enhance)
	rg.POST("/suggestions/:id/approve", h.approve)
	rg.POST("/suggestions/:id/reject", h.reject)
}

type createRequest struct {
	ThreadID string `json:"threadId"`
	Content  string `json:"content"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	sug, err := h.Svc.Create(c.Request.Context(), userID, req.ThreadID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "threadId and content are required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create suggestion", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResponse(sug))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	sug, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "suggestion not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "suggestion id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load suggestion", nil)
		}
		return
	}

	respond.OK(c, toResponse(sug))
}

func (h *Handler) listByThread(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	items, err := h.Svc.ListByThread(c.Request.Context(), userID, c.Param("threadId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "thread id is required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list suggestions", nil)
		}
		return
	}

	out := make([]SuggestionResponse, 0, len(items))
	for _, s := range items {
		out = append(out, toResponse(s))
	}
	respond.OK(c, gin.H{"suggestions": out})
}

func (h *Handler) enhance(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	res, err := h.Svc.Enhance(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "suggestion not found", nil)
		case errors.Is(err, ErrInvalidInput), errors.Is(err, embedding.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, embedding.ErrUnavailable):
			respond.Error(c, http.StatusBadGateway, "embedding_unavailable", "embedding service unavailable", nil)
		case errors.Is(err, generation.ErrUnavailable):
			respond.Error(c, http.StatusBadGateway, "generation_unavailable", "generation service unavailable", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to enhance suggestion", nil)
		}
		return
	}

	c.Set("suggestionId", res.Suggestion.ID)
	if res.Enhanced {
		c.Set("statusTransition", "pending->enhanced")
	}
	respond.OK(c, toEnhanceResponse(res))
}

func (h *Handler) approve(c *gin.Context) {
	h.setStatus(c, StatusApproved)
}

func (h *Handler) reject(c *gin.Context) {
	h.setStatus(c, StatusRejected)
}

func (h *Handler) setStatus(c *gin.Context, status string) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.SetStatus(c.Request.Context(), userID, c.Param("id"), status); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "suggestion not found", nil)
		case errors.Is(err, ErrInvalidStatus):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update suggestion", nil)
		}
		return
	}

	respond.OK(c, gin.H{"status": status})
}
