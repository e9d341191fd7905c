package repository

import (
	"context"
	"time"

	"amazon-connector-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShipmentRepositoryInterface defines shipment persistence operations.
type ShipmentRepositoryInterface interface {
	Create(ctx context.Context, shipment *models.Shipment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error)
	ListUnexported(ctx context.Context, channelID uuid.UUID) ([]models.Shipment, error)
	UpdateState(ctx context.Context, id uuid.UUID, state models.ShipmentState) error
	MarkExported(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// ShipmentRepository handles database operations for outgoing shipments
type ShipmentRepository struct {
	db *gorm.DB
}

var _ ShipmentRepositoryInterface = (*ShipmentRepository)(nil)

// NewShipmentRepository creates a new shipment repository
func NewShipmentRepository(db *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

// Create creates a shipment with its units
func (r *ShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

// GetByID retrieves a shipment with its units
func (r *ShipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Units").
		First(&shipment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

// ListByOrder retrieves every shipment carrying units of one order
func (r *ShipmentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Units").
		Where("id IN (?)", r.db.Model(&models.ShipmentUnit{}).
			Select("shipment_id").
			Where("order_id = ?", orderID)).
		Order("created_at ASC").
		Find(&shipments).Error
	return shipments, err
}

// ListUnexported retrieves completed shipments whose fulfillment has not
// been confirmed back to the marketplace yet.
func (r *ShipmentRepository) ListUnexported(ctx context.Context, channelID uuid.UUID) ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := r.db.WithContext(ctx).
		Preload("Units").
		Where("channel_id = ? AND state = ? AND exported_at IS NULL", channelID, models.ShipmentDone).
		Order("completed_at ASC").
		Find(&shipments).Error
	return shipments, err
}

// UpdateState advances the shipment state. Reaching the final state also
// stamps the completion time.
func (r *ShipmentRepository) UpdateState(ctx context.Context, id uuid.UUID, state models.ShipmentState) error {
	updates := map[string]interface{}{
		"state":      state,
		"updated_at": time.Now(),
	}
	if state == models.ShipmentDone {
		now := time.Now()
		updates["completed_at"] = &now
	}
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// MarkExported stamps shipments as confirmed to the marketplace
func (r *ShipmentRepository) MarkExported(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id IN ?", ids).
		Update("exported_at", &at).Error
}
