package repository

import (
	"context"
	"errors"
	"time"

	"amazon-connector-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepositoryInterface defines order persistence operations.
type OrderRepositoryInterface interface {
	CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByExternalID(ctx context.Context, channelID uuid.UUID, externalID string) (*models.Order, error)
	ListOpen(ctx context.Context, channelID uuid.UUID) ([]models.Order, error)
	UpdateState(ctx context.Context, id uuid.UUID, state models.OrderState) error
	CreateException(ctx context.Context, exception *models.SyncException) error
	ListExceptions(ctx context.Context, channelID uuid.UUID, unresolvedOnly bool) ([]models.SyncException, error)
	ResolveException(ctx context.Context, id uuid.UUID) error
}

// OrderRepository handles database operations for imported orders
type OrderRepository struct {
	db *gorm.DB
}

var _ OrderRepositoryInterface = (*OrderRepository)(nil)

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateIfAbsent inserts the order with its lines unless another writer
// already holds the (channel, external id) slot. It reports whether this
// call created the row, so concurrent imports of the same order collapse
// into a single record.
func (r *OrderRepository) CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := order.Lines
		order.Lines = nil
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel_id"}, {Name: "external_id"}},
			DoNothing: true,
		}).Create(order)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost the race; reload the winner so callers see the
			// persisted row.
			var existing models.Order
			if err := tx.Preload("Lines").
				Where("channel_id = ? AND external_id = ?", order.ChannelID, order.ExternalID).
				First(&existing).Error; err != nil {
				return err
			}
			*order = existing
			return nil
		}
		created = true
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		order.Lines = lines
		return nil
	})
	return created, err
}

// GetByID retrieves an order with its lines
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByExternalID retrieves an order by its marketplace id within one
// channel. A missing order returns (nil, nil).
func (r *OrderRepository) FindByExternalID(ctx context.Context, channelID uuid.UUID, externalID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("channel_id = ? AND external_id = ?", channelID, externalID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOpen retrieves the channel's orders still awaiting fulfillment.
func (r *OrderRepository) ListOpen(ctx context.Context, channelID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("channel_id = ? AND state IN ?", channelID, []models.OrderState{
			models.OrderProcessing,
			models.OrderManualReview,
		}).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// UpdateState updates the order state
func (r *OrderRepository) UpdateState(ctx context.Context, id uuid.UUID, state models.OrderState) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"state":      state,
			"updated_at": time.Now(),
		}).Error
}

// CreateException records a synchronization exception against an order
func (r *OrderRepository) CreateException(ctx context.Context, exception *models.SyncException) error {
	return r.db.WithContext(ctx).Create(exception).Error
}

// ListExceptions retrieves exceptions for a channel
func (r *OrderRepository) ListExceptions(ctx context.Context, channelID uuid.UUID, unresolvedOnly bool) ([]models.SyncException, error) {
	var exceptions []models.SyncException
	query := r.db.WithContext(ctx).Where("channel_id = ?", channelID)
	if unresolvedOnly {
		query = query.Where("resolved = ?", false)
	}
	err := query.Order("created_at DESC").Find(&exceptions).Error
	return exceptions, err
}

// ResolveException marks an exception as handled
func (r *OrderRepository) ResolveException(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.SyncException{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved":    true,
			"resolved_at": &now,
		}).Error
}
