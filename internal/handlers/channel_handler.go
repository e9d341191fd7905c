package handlers

import (
	"errors"
	"net/http"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChannelHandler handles sale channel endpoints
type ChannelHandler struct {
	channels *services.ChannelService
	health   *services.ChannelHealthService
}

// NewChannelHandler creates a new channel handler
func NewChannelHandler(channels *services.ChannelService, health *services.ChannelHealthService) *ChannelHandler {
	return &ChannelHandler{channels: channels, health: health}
}

// CreateChannelRequest is the payload for creating a channel
type CreateChannelRequest struct {
	Name             string `json:"name" binding:"required"`
	Source           string `json:"source" binding:"required"`
	MerchantID       string `json:"merchantId"`
	MarketplaceID    string `json:"marketplaceId"`
	AccessKey        string `json:"accessKey"`
	SecretKey        string `json:"secretKey"`
	SecretReference  string `json:"secretReference"`
	CurrencyCode     string `json:"currencyCode"`
	DefaultUnit      string `json:"defaultUnit"`
	DeliveryLeadDays int    `json:"deliveryLeadDays"`
	WarehouseID      string `json:"warehouseId" binding:"required"`
	FBAWarehouseID   string `json:"fbaWarehouseId"`
}

// Create creates a new channel
func (h *ChannelHandler) Create(c *gin.Context) {
	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	warehouseID, err := uuid.Parse(req.WarehouseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid warehouseId"})
		return
	}

	channel := &models.Channel{
		Name:             req.Name,
		Source:           models.ChannelSource(req.Source),
		MerchantID:       req.MerchantID,
		MarketplaceID:    req.MarketplaceID,
		AccessKey:        req.AccessKey,
		SecretKey:        req.SecretKey,
		SecretReference:  req.SecretReference,
		DeliveryLeadDays: req.DeliveryLeadDays,
		WarehouseID:      warehouseID,
	}
	if req.CurrencyCode != "" {
		channel.CurrencyCode = req.CurrencyCode
	}
	if req.DefaultUnit != "" {
		channel.DefaultUnit = req.DefaultUnit
	}
	if req.FBAWarehouseID != "" {
		fbaID, err := uuid.Parse(req.FBAWarehouseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fbaWarehouseId"})
			return
		}
		channel.FBAWarehouseID = &fbaID
	}

	if err := h.channels.CreateChannel(c.Request.Context(), channel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": channel})
}

// Get returns a single channel
func (h *ChannelHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	channel, err := h.channels.GetChannel(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": channel})
}

// SeedOrderStates resets the channel's status mapping to the defaults
func (h *ChannelHandler) SeedOrderStates(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.channels.SeedOrderStates(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "seeded"})
}

// CheckServiceStatus reports the marketplace service health for a channel
func (h *ChannelHandler) CheckServiceStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	report, err := h.health.CheckServiceStatus(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// CheckSettings verifies the channel's marketplace credentials
func (h *ChannelHandler) CheckSettings(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	report, err := h.health.CheckSettings(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// parseID reads the :id path parameter as a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service errors to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsConfigurationError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
