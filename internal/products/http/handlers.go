package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/productstack/products-backend/internal/auth"
	"github.com/productstack/products-backend/internal/products/domain"
	"github.com/productstack/products-backend/internal/products/wire"
)

func (h *Handler) list(c *gin.Context) {
	userID := auth.UserID(c)

	items, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	out, err := wire.EncodeProducts(items)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	userID := auth.UserID(c)

	p, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	out, err := wire.EncodeProduct(*p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) create(c *gin.Context) {
	userID := auth.UserID(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "cannot read request body")
		return
	}

	p, err := wire.DecodeProduct(body, false)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := h.svc.Create(c.Request.Context(), p, userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	out, err := wire.EncodeProduct(*created)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) upsert(c *gin.Context) {
	userID := auth.UserID(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "cannot read request body")
		return
	}

	p, err := wire.DecodeProduct(body, true)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	stored, err := h.svc.Upsert(c.Request.Context(), p, userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	out, err := wire.EncodeProduct(*stored)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) patch(c *gin.Context) {
	userID := auth.UserID(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "cannot read request body")
		return
	}

	p, err := wire.DecodePatch(body)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.svc.Update(c.Request.Context(), c.Param("id"), p, userID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) delete(c *gin.Context) {
	userID := auth.UserID(c)

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps domain errors onto the HTTP error contract. Anything outside
// the taxonomy is a plain 500; store failures are never retried or masked.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		detail(c, http.StatusNotFound, "product not found")
	case errors.Is(err, domain.ErrNotOwner):
		detail(c, http.StatusForbidden, "acting user is not the product owner")
	case errors.Is(err, domain.ErrMalformedKey):
		detail(c, http.StatusUnprocessableEntity, "malformed product id")
	case errors.Is(err, domain.ErrProductExists):
		detail(c, http.StatusUnprocessableEntity, "product key already exists")
	case errors.Is(err, domain.ErrWriteConflict):
		detail(c, http.StatusUnprocessableEntity, "write failed due to a concurrent modification")
	default:
		detail(c, http.StatusInternalServerError, "internal server error")
	}
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}
