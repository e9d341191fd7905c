package handlers

import (
	"net/http"

	"amazon-connector-service/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler handles stock level endpoints
type InventoryHandler struct {
	inventory repository.InventoryRepositoryInterface
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventory repository.InventoryRepositoryInterface) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// SetOnHandRequest represents a stock level update
type SetOnHandRequest struct {
	WarehouseID uuid.UUID `json:"warehouseId" binding:"required"`
	ProductID   uuid.UUID `json:"productId" binding:"required"`
	OnHand      int       `json:"onHand"`
}

// SetOnHand records the on-hand quantity of a product in a warehouse
func (h *InventoryHandler) SetOnHand(c *gin.Context) {
	var req SetOnHandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.inventory.SetOnHand(c.Request.Context(), req.WarehouseID, req.ProductID, req.OnHand); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": req})
}
