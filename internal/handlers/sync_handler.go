package handlers

import (
	"net/http"

	"amazon-connector-service/internal/repository"
	"amazon-connector-service/internal/services"
	"github.com/gin-gonic/gin"
)

// SyncHandler handles order synchronization endpoints
type SyncHandler struct {
	importer   *services.OrderImporter
	reconciler *services.OrderReconciler
	scheduler  *services.SyncScheduler
	orders     repository.OrderRepositoryInterface
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(
	importer *services.OrderImporter,
	reconciler *services.OrderReconciler,
	scheduler *services.SyncScheduler,
	orders repository.OrderRepositoryInterface,
) *SyncHandler {
	return &SyncHandler{
		importer:   importer,
		reconciler: reconciler,
		scheduler:  scheduler,
		orders:     orders,
	}
}

// ImportOrders imports new marketplace orders for a channel
func (h *SyncHandler) ImportOrders(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.importer.ImportOrders(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ImportOrder imports or refreshes a single order by its marketplace id
func (h *SyncHandler) ImportOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	externalID := c.Param("externalId")
	if externalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "externalId is required"})
		return
	}

	order, err := h.importer.ImportOrder(c.Request.Context(), id, externalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

// UpdateOrderStatuses reconciles open orders against the marketplace
func (h *SyncHandler) UpdateOrderStatuses(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.reconciler.UpdateOrderStatuses(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// SyncAll runs an import and reconciliation pass across every channel
func (h *SyncHandler) SyncAll(c *gin.Context) {
	if err := h.scheduler.SyncAllChannels(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// ListExceptions lists synchronization exceptions for a channel
func (h *SyncHandler) ListExceptions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	unresolvedOnly := c.Query("unresolved") == "true"

	exceptions, err := h.orders.ListExceptions(c.Request.Context(), id, unresolvedOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  exceptions,
		"total": len(exceptions),
	})
}

// ResolveException marks an exception as handled
func (h *SyncHandler) ResolveException(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.orders.ResolveException(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}
