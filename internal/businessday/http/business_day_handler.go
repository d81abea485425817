// Package http provides HTTP handlers for the business-day close workflow.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/businessday/http/dto"
	businessDayUseCase "github.com/allisson/storesync/internal/businessday/usecase"
	"github.com/allisson/storesync/internal/httputil"
	outboxDTO "github.com/allisson/storesync/internal/outbox/http/dto"
	"github.com/allisson/storesync/internal/session"
	customValidation "github.com/allisson/storesync/internal/validation"
)

// BusinessDayHandler handles HTTP requests for business days and their two-phase close.
type BusinessDayHandler struct {
	dayCloseUseCase businessDayUseCase.DayCloseUseCase
	logger          *slog.Logger
}

// NewBusinessDayHandler creates a new business-day handler with required dependencies.
func NewBusinessDayHandler(dayCloseUseCase businessDayUseCase.DayCloseUseCase, logger *slog.Logger) *BusinessDayHandler {
	return &BusinessDayHandler{
		dayCloseUseCase: dayCloseUseCase,
		logger:          logger,
	}
}

// CurrentHandler returns the store's open business day, opening one if needed.
// GET /v1/business-days/current
func (h *BusinessDayHandler) CurrentHandler(c *gin.Context) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	day, err := h.dayCloseUseCase.CurrentDay(c.Request.Context(), sess.StoreID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBusinessDayToResponse(day))
}

// GetHandler returns one business day.
// GET /v1/business-days/:id
func (h *BusinessDayHandler) GetHandler(c *gin.Context) {
	sess, dayID, ok := h.sessionAndDayID(c)
	if !ok {
		return
	}

	day, err := h.dayCloseUseCase.Get(c.Request.Context(), sess.StoreID, dayID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBusinessDayToResponse(day))
}

// PrepareCloseHandler validates the closing counts and reserves the day. Nothing is
// applied until commit.
// POST /v1/business-days/:id/prepare-close
func (h *BusinessDayHandler) PrepareCloseHandler(c *gin.Context) {
	sess, dayID, ok := h.sessionAndDayID(c)
	if !ok {
		return
	}

	var req dto.PrepareCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	preview, err := h.dayCloseUseCase.PrepareClose(c.Request.Context(), sess, dayID, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// CommitCloseHandler applies a prepared close.
// POST /v1/business-days/:id/commit-close
func (h *BusinessDayHandler) CommitCloseHandler(c *gin.Context) {
	sess, dayID, ok := h.sessionAndDayID(c)
	if !ok {
		return
	}

	day, err := h.dayCloseUseCase.CommitClose(c.Request.Context(), sess, dayID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBusinessDayToResponse(day))
}

// CancelCloseHandler drops a prepared close and reopens the day.
// POST /v1/business-days/:id/cancel-close
func (h *BusinessDayHandler) CancelCloseHandler(c *gin.Context) {
	sess, dayID, ok := h.sessionAndDayID(c)
	if !ok {
		return
	}

	day, err := h.dayCloseUseCase.CancelClose(c.Request.Context(), sess, dayID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapBusinessDayToResponse(day))
}

// RequeueSyncHandler queues the day-close snapshot of a closed day again.
// POST /v1/business-days/:id/requeue-sync
func (h *BusinessDayHandler) RequeueSyncHandler(c *gin.Context) {
	sess, dayID, ok := h.sessionAndDayID(c)
	if !ok {
		return
	}

	item, err := h.dayCloseUseCase.RequeueForSync(c.Request.Context(), sess, dayID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusAccepted, outboxDTO.MapOutboxItemToResponse(item))
}

func (h *BusinessDayHandler) sessionAndDayID(c *gin.Context) (session.Session, uuid.UUID, bool) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return session.Session{}, uuid.Nil, false
	}

	dayID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return session.Session{}, uuid.Nil, false
	}
	return sess, dayID, true
}
