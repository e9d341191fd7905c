package handlers

import (
	"net/http"

	"amazon-connector-service/internal/services"
	"github.com/gin-gonic/gin"
)

// FeedHandler handles outbound feed endpoints
type FeedHandler struct {
	exporter *services.FeedExporter
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(exporter *services.FeedExporter) *FeedHandler {
	return &FeedHandler{exporter: exporter}
}

// ExportPrices submits the channel's listing prices to the marketplace
func (h *FeedHandler) ExportPrices(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.exporter.ExportPrices(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ExportInventory submits the channel's stock levels to the marketplace
func (h *FeedHandler) ExportInventory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.exporter.ExportInventory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ExportAllInventory submits stock levels for every marketplace channel,
// one feed per channel
func (h *FeedHandler) ExportAllInventory(c *gin.Context) {
	results, err := h.exporter.ExportAllInventory(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": results})
}

// ExportShipmentStatus confirms completed shipments to the marketplace
func (h *FeedHandler) ExportShipmentStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.exporter.ExportShipmentStatus(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
