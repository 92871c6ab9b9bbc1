package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/recipe-api/internal/database/service"
	"github.com/EgehanKilicarslan/recipe-api/internal/middleware"
)

// AttributeHandler serves the current user's tags or ingredients. Both
// render as {id, name}.
type AttributeHandler[T any] struct {
	service service.AttributeService[T]
	logger  *slog.Logger
}

// NewAttributeHandler creates a handler over one attribute service
func NewAttributeHandler[T any](service service.AttributeService[T], logger *slog.Logger) *AttributeHandler[T] {
	return &AttributeHandler[T]{
		service: service,
		logger:  logger,
	}
}

// List handles GET on the collection; assigned_only=1 keeps rows used by a recipe
func (h *AttributeHandler[T]) List(c *gin.Context) {
	verr := &service.ValidationError{}
	assignedOnly := parseFlag(c, verr, "assigned_only")
	if err := verr.OrNil(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	rows, err := h.service.List(c.Request.Context(), middleware.CurrentUser(c).ID, assignedOnly)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *AttributeHandler[T]) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondNotFound(c)
		return
	}

	row, err := h.service.Get(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// Update handles PUT and PATCH; name is the only writable field
func (h *AttributeHandler[T]) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondNotFound(c)
		return
	}

	p, err := decodePayload(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	name := p.Text("name")
	if err := p.Err(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	partial := c.Request.Method == http.MethodPatch
	row, err := h.service.Update(c.Request.Context(), middleware.CurrentUser(c).ID, id, name, partial)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *AttributeHandler[T]) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondNotFound(c)
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.CurrentUser(c).ID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
