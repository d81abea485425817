// Package http provides HTTP handlers for the pack lifecycle.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/httputil"
	"github.com/allisson/storesync/internal/inventory/http/dto"
	inventoryUseCase "github.com/allisson/storesync/internal/inventory/usecase"
	"github.com/allisson/storesync/internal/session"
	customValidation "github.com/allisson/storesync/internal/validation"
)

// PackHandler handles HTTP requests for pack operations.
type PackHandler struct {
	packUseCase inventoryUseCase.PackUseCase
	logger      *slog.Logger
}

// NewPackHandler creates a new pack handler with required dependencies.
func NewPackHandler(packUseCase inventoryUseCase.PackUseCase, logger *slog.Logger) *PackHandler {
	return &PackHandler{
		packUseCase: packUseCase,
		logger:      logger,
	}
}

// ReceiveHandler registers a new pack in RECEIVED status.
// POST /v1/packs
// Returns 201 Created with the pack.
func (h *PackHandler) ReceiveHandler(c *gin.Context) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.ReceivePackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pack, err := h.packUseCase.ReceivePack(c.Request.Context(), sess, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPackToResponse(pack))
}

// GetHandler returns one pack of the session store.
// GET /v1/packs/:id
func (h *PackHandler) GetHandler(c *gin.Context) {
	sess, packID, ok := h.sessionAndPackID(c)
	if !ok {
		return
	}

	pack, err := h.packUseCase.GetPack(c.Request.Context(), sess.StoreID, packID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPackToResponse(pack))
}

// ActivateHandler places a pack in a bin. With deplete_previous the bin's current occupant
// is depleted first and reported in auto_depleted.
// POST /v1/packs/:id/activate
func (h *PackHandler) ActivateHandler(c *gin.Context) {
	sess, packID, ok := h.sessionAndPackID(c)
	if !ok {
		return
	}

	var req dto.ActivatePackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.packUseCase.ActivatePack(c.Request.Context(), sess, req.ToInput(packID))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapActivationToResponse(result))
}

// DepleteHandler marks an ACTIVE pack sold out.
// POST /v1/packs/:id/deplete
func (h *PackHandler) DepleteHandler(c *gin.Context) {
	sess, packID, ok := h.sessionAndPackID(c)
	if !ok {
		return
	}

	pack, err := h.packUseCase.DepletePack(c.Request.Context(), sess, packID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPackToResponse(pack))
}

// ReturnHandler returns a pack. An ACTIVE pack needs closing_serial.
// POST /v1/packs/:id/return
func (h *PackHandler) ReturnHandler(c *gin.Context) {
	sess, packID, ok := h.sessionAndPackID(c)
	if !ok {
		return
	}

	var req dto.ReturnPackRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pack, err := h.packUseCase.ReturnPack(c.Request.Context(), sess, req.ToInput(packID))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPackToResponse(pack))
}

func (h *PackHandler) sessionAndPackID(c *gin.Context) (session.Session, uuid.UUID, bool) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return session.Session{}, uuid.Nil, false
	}

	packID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return session.Session{}, uuid.Nil, false
	}
	return sess, packID, true
}
