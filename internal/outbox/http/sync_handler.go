// Package http provides the operator endpoints for sync health and dead-letter management.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/storesync/internal/httputil"
	"github.com/allisson/storesync/internal/outbox/http/dto"
	outboxUseCase "github.com/allisson/storesync/internal/outbox/usecase"
	"github.com/allisson/storesync/internal/session"
	customValidation "github.com/allisson/storesync/internal/validation"
)

// SyncHandler handles the sync operator API. Every endpoint operates on the store of the
// request session.
type SyncHandler struct {
	outboxStore       outboxUseCase.OutboxStore
	deadLetterUseCase outboxUseCase.DeadLetterUseCase
	dispatcher        outboxUseCase.DispatcherUseCase
	logger            *slog.Logger
}

// NewSyncHandler creates a new sync handler with required dependencies.
func NewSyncHandler(
	outboxStore outboxUseCase.OutboxStore,
	deadLetterUseCase outboxUseCase.DeadLetterUseCase,
	dispatcher outboxUseCase.DispatcherUseCase,
	logger *slog.Logger,
) *SyncHandler {
	return &SyncHandler{
		outboxStore:       outboxStore,
		deadLetterUseCase: deadLetterUseCase,
		dispatcher:        dispatcher,
		logger:            logger,
	}
}

// StatusHandler returns the queue counters of the store.
// GET /v1/sync/status
func (h *SyncHandler) StatusHandler(c *gin.Context) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	counts, err := h.outboxStore.CountByStatus(c.Request.Context(), sess.StoreID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.SyncStatusResponse{StoreID: sess.StoreID.String(), StatusCounts: *counts})
}

// DispatchHandler drains the store queue once and returns the report.
// POST /v1/sync/dispatch
func (h *SyncHandler) DispatchHandler(c *gin.Context) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	report, err := h.dispatcher.DispatchStore(c.Request.Context(), sess.StoreID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListDeadLettersHandler lists dead-lettered items, newest first.
// GET /v1/sync/dead-letters?entity_type=&reason=&error_category=&offset=&limit=
func (h *SyncHandler) ListDeadLettersHandler(c *gin.Context) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter, err := dto.ParseDeadLetterFilter(c.Query("entity_type"), c.Query("reason"), c.Query("error_category"))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	items, err := h.deadLetterUseCase.List(c.Request.Context(), sess.StoreID, filter, offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOutboxItemsToListResponse(items, offset, limit))
}

// DeadLetterStatsHandler aggregates the dead-letter queue.
// GET /v1/sync/dead-letters/stats
func (h *SyncHandler) DeadLetterStatsHandler(c *gin.Context) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	stats, err := h.deadLetterUseCase.Stats(c.Request.Context(), sess.StoreID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RestoreHandler returns one dead-lettered item to the queue with a fresh attempt budget.
// POST /v1/sync/dead-letters/:id/restore
func (h *SyncHandler) RestoreHandler(c *gin.Context) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	item, err := h.deadLetterUseCase.Restore(c.Request.Context(), sess.StoreID, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.dispatcher.Trigger(sess.StoreID)
	c.JSON(http.StatusOK, dto.MapOutboxItemToResponse(item))
}

// RestoreManyHandler restores several dead-lettered items. Ids that are unknown or not
// dead-lettered are skipped.
// POST /v1/sync/dead-letters/restore
func (h *SyncHandler) RestoreManyHandler(c *gin.Context) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.RestoreManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	restored, err := h.deadLetterUseCase.RestoreMany(c.Request.Context(), sess.StoreID, req.ParsedIDs())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	if restored > 0 {
		h.dispatcher.Trigger(sess.StoreID)
	}
	c.JSON(http.StatusOK, dto.RestoreManyResponse{Restored: restored})
}

// DeleteHandler permanently removes a dead-lettered item.
// DELETE /v1/sync/dead-letters/:id
func (h *SyncHandler) DeleteHandler(c *gin.Context) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.deadLetterUseCase.Delete(c.Request.Context(), sess.StoreID, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ManualDeadLetterHandler parks a pending item in the dead-letter queue.
// POST /v1/sync/items/:id/dead-letter
func (h *SyncHandler) ManualDeadLetterHandler(c *gin.Context) {
	sess, err := session.MustFromContext(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	var req dto.ManualDeadLetterRequest
	// The body is optional.
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

	item, err := h.deadLetterUseCase.ManualDeadLetter(c.Request.Context(), sess.StoreID, id, req.Note)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapOutboxItemToResponse(item))
}
