package repository

import (
	"context"
	"time"

	"amazon-connector-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChannelRepositoryInterface defines channel persistence operations.
type ChannelRepositoryInterface interface {
	Create(ctx context.Context, channel *models.Channel) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error)
	ListBySource(ctx context.Context, source models.ChannelSource) ([]models.Channel, error)
	Update(ctx context.Context, channel *models.Channel) error
	UpdateLastImportAt(ctx context.Context, id uuid.UUID, at time.Time) error
	ReplaceOrderStates(ctx context.Context, channelID uuid.UUID, states []models.ChannelOrderState) error
}

// ChannelRepository handles database operations for sale channels
type ChannelRepository struct {
	db *gorm.DB
}

var _ ChannelRepositoryInterface = (*ChannelRepository)(nil)

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Create creates a new channel
func (r *ChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	return r.db.WithContext(ctx).Create(channel).Error
}

// GetByID retrieves a channel with its order state mapping
func (r *ChannelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	var channel models.Channel
	err := r.db.WithContext(ctx).
		Preload("OrderStates").
		First(&channel, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// ListBySource retrieves all channels for one integration source
func (r *ChannelRepository) ListBySource(ctx context.Context, source models.ChannelSource) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.WithContext(ctx).
		Preload("OrderStates").
		Where("source = ?", source).
		Order("created_at ASC").
		Find(&channels).Error
	return channels, err
}

// Update updates an existing channel
func (r *ChannelRepository) Update(ctx context.Context, channel *models.Channel) error {
	return r.db.WithContext(ctx).Save(channel).Error
}

// UpdateLastImportAt advances the channel's import cursor. The cursor only
// moves after a full import pass commits, so a failed pass is retried from
// the same window.
func (r *ChannelRepository) UpdateLastImportAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Channel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_import_at": at,
			"updated_at":     time.Now(),
		}).Error
}

// ReplaceOrderStates replaces the channel's order state mapping in one
// transaction. Used when seeding a channel with the default mapping.
func (r *ChannelRepository) ReplaceOrderStates(ctx context.Context, channelID uuid.UUID, states []models.ChannelOrderState) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", channelID).
			Delete(&models.ChannelOrderState{}).Error; err != nil {
			return err
		}
		for i := range states {
			states[i].ChannelID = channelID
		}
		if len(states) == 0 {
			return nil
		}
		return tx.Create(&states).Error
	})
}
