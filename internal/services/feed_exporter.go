package services

import (
	"context"
	"fmt"
	"time"

	"amazon-connector-service/internal/feeds"
	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/mws"
	"amazon-connector-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeedResult summarizes one feed submission.
type FeedResult struct {
	SubmissionID string `json:"submissionId,omitempty"`
	Status       string `json:"status,omitempty"`
	Messages     int    `json:"messages"`
}

// FeedExporter pushes prices, inventory and shipment confirmations to the
// marketplace as feed documents.
type FeedExporter struct {
	channels  repository.ChannelRepositoryInterface
	products  repository.ProductRepositoryInterface
	inventory repository.InventoryRepositoryInterface
	shipments repository.ShipmentRepositoryInterface
	orders    repository.OrderRepositoryInterface
	clients   ClientProvider
	logger    *zap.Logger
}

// NewFeedExporter creates a new feed exporter
func NewFeedExporter(
	channels repository.ChannelRepositoryInterface,
	products repository.ProductRepositoryInterface,
	inventory repository.InventoryRepositoryInterface,
	shipments repository.ShipmentRepositoryInterface,
	orders repository.OrderRepositoryInterface,
	clients ClientProvider,
	logger *zap.Logger,
) *FeedExporter {
	return &FeedExporter{
		channels:  channels,
		products:  products,
		inventory: inventory,
		shipments: shipments,
		orders:    orders,
		clients:   clients,
		logger:    logger,
	}
}

// ExportPrices submits the channel's exportable listing prices.
func (s *FeedExporter) ExportPrices(ctx context.Context, channelID uuid.UUID) (*FeedResult, error) {
	channel, api, err := s.prepare(ctx, channelID)
	if err != nil {
		return nil, err
	}

	listings, err := s.products.ListExportableListings(ctx, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exportable listings: %w", err)
	}

	envelope := feeds.NewEnvelope(channel.MerchantID, feeds.MessageTypePrice)
	for i := range listings {
		product, err := s.products.GetProductByID(ctx, listings[i].ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product for listing %s: %w", listings[i].ExternalSKU, err)
		}
		envelope.AddMessage(feeds.Message{
			Price: &feeds.PriceMessage{
				SKU:           listings[i].ExternalSKU,
				StandardPrice: feeds.NewStandardPrice(product.ListPrice, channel.CurrencyCode),
			},
		})
	}

	return s.submit(ctx, api, channel, envelope, mws.FeedTypePricing)
}

// ExportInventory submits available quantities for the channel's
// exportable listings. Marketplace-fulfilled listings report under their
// fulfillment code rather than the seller SKU.
func (s *FeedExporter) ExportInventory(ctx context.Context, channelID uuid.UUID) (*FeedResult, error) {
	channel, api, err := s.prepare(ctx, channelID)
	if err != nil {
		return nil, err
	}

	listings, err := s.products.ListExportableListings(ctx, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exportable listings: %w", err)
	}

	envelope, err := s.inventoryEnvelope(ctx, channel, listings)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, api, channel, envelope, mws.FeedTypeInventory)
}

// ExportListingInventory submits quantities for an arbitrary set of
// listings, which may span channels. Listings are grouped by channel and
// exactly one envelope is submitted per channel, keeping the call count
// within the feed rate limits.
func (s *FeedExporter) ExportListingInventory(ctx context.Context, listings []models.ProductListing) ([]FeedResult, error) {
	byChannel := make(map[uuid.UUID][]models.ProductListing)
	channelIDs := make([]uuid.UUID, 0)
	for i := range listings {
		if _, seen := byChannel[listings[i].ChannelID]; !seen {
			channelIDs = append(channelIDs, listings[i].ChannelID)
		}
		byChannel[listings[i].ChannelID] = append(byChannel[listings[i].ChannelID], listings[i])
	}

	results := make([]FeedResult, 0, len(channelIDs))
	for _, channelID := range channelIDs {
		channel, api, err := s.prepare(ctx, channelID)
		if err != nil {
			return results, err
		}
		envelope, err := s.inventoryEnvelope(ctx, channel, byChannel[channelID])
		if err != nil {
			return results, err
		}
		result, err := s.submit(ctx, api, channel, envelope, mws.FeedTypeInventory)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}

// ExportAllInventory gathers every marketplace channel's exportable
// listings and runs them through the grouped inventory export.
func (s *FeedExporter) ExportAllInventory(ctx context.Context) ([]FeedResult, error) {
	channels, err := s.channels.ListBySource(ctx, models.SourceAmazonMWS)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	var batch []models.ProductListing
	for i := range channels {
		listings, err := s.products.ListExportableListings(ctx, channels[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list exportable listings: %w", err)
		}
		batch = append(batch, listings...)
	}
	return s.ExportListingInventory(ctx, batch)
}

// inventoryEnvelope builds one inventory envelope for a channel's
// listings. Quantities are clamped at zero on the way out.
func (s *FeedExporter) inventoryEnvelope(ctx context.Context, channel *models.Channel, listings []models.ProductListing) (*feeds.Envelope, error) {
	envelope := feeds.NewEnvelope(channel.MerchantID, feeds.MessageTypeInventory)
	for i := range listings {
		onHand, err := s.inventory.GetOnHand(ctx, channel.WarehouseID, listings[i].ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to read stock for %s: %w", listings[i].ExternalSKU, err)
		}
		if onHand < 0 {
			onHand = 0
		}
		envelope.AddMessage(feeds.Message{
			Inventory: &feeds.InventoryMessage{
				SKU:                listings[i].FeedSKU(),
				Quantity:           onHand,
				FulfillmentLatency: channel.DeliveryLeadDays,
			},
		})
	}
	return envelope, nil
}

// ExportShipmentStatus confirms completed shipments back to the
// marketplace. Each order in a shipment gets its own fulfillment message,
// and confirmed shipments are stamped so the next pass skips them.
func (s *FeedExporter) ExportShipmentStatus(ctx context.Context, channelID uuid.UUID) (*FeedResult, error) {
	channel, api, err := s.prepare(ctx, channelID)
	if err != nil {
		return nil, err
	}

	shipments, err := s.shipments.ListUnexported(ctx, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed shipments: %w", err)
	}

	envelope := feeds.NewEnvelope(channel.MerchantID, feeds.MessageTypeOrderFulfillment)
	exported := make([]uuid.UUID, 0, len(shipments))
	for i := range shipments {
		messages, err := s.fulfillmentMessages(ctx, &shipments[i])
		if err != nil {
			return nil, err
		}
		for _, message := range messages {
			envelope.AddMessage(message)
		}
		exported = append(exported, shipments[i].ID)
	}

	result, err := s.submit(ctx, api, channel, envelope, mws.FeedTypeFulfillment)
	if err != nil {
		return nil, err
	}
	if result.Messages > 0 {
		if err := s.shipments.MarkExported(ctx, exported, time.Now().UTC()); err != nil {
			return result, fmt.Errorf("failed to stamp exported shipments: %w", err)
		}
	}
	return result, nil
}

// fulfillmentMessages builds one message per order carried by a shipment.
// A shipment merging several orders confirms each order separately.
func (s *FeedExporter) fulfillmentMessages(ctx context.Context, shipment *models.Shipment) ([]feeds.Message, error) {
	unitsByOrder := make(map[uuid.UUID][]models.ShipmentUnit)
	orderIDs := make([]uuid.UUID, 0)
	for _, unit := range shipment.Units {
		if _, seen := unitsByOrder[unit.OrderID]; !seen {
			orderIDs = append(orderIDs, unit.OrderID)
		}
		unitsByOrder[unit.OrderID] = append(unitsByOrder[unit.OrderID], unit)
	}

	completedAt := time.Now().UTC()
	if shipment.CompletedAt != nil {
		completedAt = *shipment.CompletedAt
	}

	messages := make([]feeds.Message, 0, len(orderIDs))
	for _, orderID := range orderIDs {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, fmt.Errorf("failed to load order for shipment %s: %w", shipment.Code, err)
		}

		fulfillment := &feeds.FulfillmentMessage{
			AmazonOrderID:   order.ExternalID,
			FulfillmentDate: feeds.FormatFulfillmentDate(completedAt),
			FulfillmentData: feeds.CarrierData(shipment),
		}
		for _, unit := range unitsByOrder[orderID] {
			if unit.ExternalLineID == nil {
				continue
			}
			fulfillment.Items = append(fulfillment.Items, feeds.FulfillmentItem{
				AmazonOrderItemCode: *unit.ExternalLineID,
				Quantity:            unit.Quantity,
			})
		}
		messages = append(messages, feeds.Message{OrderFulfillment: fulfillment})
	}
	return messages, nil
}

func (s *FeedExporter) prepare(ctx context.Context, channelID uuid.UUID) (*models.Channel, mws.API, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load channel: %w", err)
	}
	api, err := s.clients.ClientFor(ctx, channel)
	if err != nil {
		return nil, nil, err
	}
	return channel, api, nil
}

// submit renders and submits an envelope. An empty envelope is not sent.
func (s *FeedExporter) submit(ctx context.Context, api mws.API, channel *models.Channel, envelope *feeds.Envelope, feedType string) (*FeedResult, error) {
	if envelope.Empty() {
		s.logger.Info("nothing to export",
			zap.String("channelId", channel.ID.String()),
			zap.String("feedType", feedType))
		return &FeedResult{}, nil
	}

	document, err := envelope.Build()
	if err != nil {
		return nil, err
	}

	info, err := api.SubmitFeed(ctx, document, feedType, channel.MarketplaceID)
	if err != nil {
		return nil, fmt.Errorf("feed submission failed: %w", err)
	}

	s.logger.Info("feed submitted",
		zap.String("channelId", channel.ID.String()),
		zap.String("feedType", feedType),
		zap.String("submissionId", info.SubmissionID),
		zap.Int("messages", len(envelope.Messages)))
	return &FeedResult{
		SubmissionID: info.SubmissionID,
		Status:       info.Status,
		Messages:     len(envelope.Messages),
	}, nil
}
