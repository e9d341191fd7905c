package services

import (
	"context"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentChannels bounds how many channels sync at once. Each
// channel has its own rate-limited client, so the bound mostly protects
// the database connection pool.
const maxConcurrentChannels = 4

// SyncScheduler runs periodic synchronization across every marketplace
// channel.
type SyncScheduler struct {
	channels   repository.ChannelRepositoryInterface
	importer   *OrderImporter
	reconciler *OrderReconciler
	logger     *zap.Logger
}

// NewSyncScheduler creates a new sync scheduler
func NewSyncScheduler(
	channels repository.ChannelRepositoryInterface,
	importer *OrderImporter,
	reconciler *OrderReconciler,
	logger *zap.Logger,
) *SyncScheduler {
	return &SyncScheduler{
		channels:   channels,
		importer:   importer,
		reconciler: reconciler,
		logger:     logger,
	}
}

// SyncAllChannels imports new orders and reconciles open ones for every
// marketplace channel. Channels run concurrently; one channel failing
// does not stop the others, and the first failure is reported after all
// channels finish.
func (s *SyncScheduler) SyncAllChannels(ctx context.Context) error {
	channels, err := s.channels.ListBySource(ctx, models.SourceAmazonMWS)
	if err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentChannels)
	for i := range channels {
		channel := channels[i]
		g.Go(func() error {
			if _, err := s.importer.ImportOrders(ctx, channel.ID); err != nil {
				s.logger.Error("channel import failed",
					zap.String("channelId", channel.ID.String()),
					zap.Error(err))
				return err
			}
			if _, err := s.reconciler.UpdateOrderStatuses(ctx, channel.ID); err != nil {
				s.logger.Error("channel reconciliation failed",
					zap.String("channelId", channel.ID.String()),
					zap.Error(err))
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
