package services

import (
	"context"
	"fmt"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChannelService manages sale channels and their order state mapping.
type ChannelService struct {
	channels repository.ChannelRepositoryInterface
	logger   *zap.Logger
}

// NewChannelService creates a new channel service
func NewChannelService(channels repository.ChannelRepositoryInterface, logger *zap.Logger) *ChannelService {
	return &ChannelService{channels: channels, logger: logger}
}

// CreateChannel creates a channel and, for marketplace channels, seeds
// the default order state mapping so imports work before any manual
// configuration.
func (s *ChannelService) CreateChannel(ctx context.Context, channel *models.Channel) error {
	if err := s.channels.Create(ctx, channel); err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	if !channel.IsAmazon() {
		return nil
	}
	if err := s.SeedOrderStates(ctx, channel.ID); err != nil {
		return err
	}
	s.logger.Info("channel created",
		zap.String("channelId", channel.ID.String()),
		zap.String("source", string(channel.Source)))
	return nil
}

// GetChannel retrieves a channel with its order state mapping.
func (s *ChannelService) GetChannel(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	return s.channels.GetByID(ctx, id)
}

// UpdateChannel updates a channel.
func (s *ChannelService) UpdateChannel(ctx context.Context, channel *models.Channel) error {
	return s.channels.Update(ctx, channel)
}

// SeedOrderStates replaces the channel's order state mapping with the
// defaults for every known marketplace status.
func (s *ChannelService) SeedOrderStates(ctx context.Context, channelID uuid.UUID) error {
	states := make([]models.ChannelOrderState, 0, len(models.AmazonOrderStatuses))
	for _, code := range models.AmazonOrderStatuses {
		action, invoice, shipment := models.DefaultActionForStatus(code)
		states = append(states, models.ChannelOrderState{
			Code:           code,
			Name:           code,
			Action:         action,
			InvoiceMethod:  invoice,
			ShipmentMethod: shipment,
		})
	}
	if err := s.channels.ReplaceOrderStates(ctx, channelID, states); err != nil {
		return fmt.Errorf("failed to seed order states: %w", err)
	}
	return nil
}
