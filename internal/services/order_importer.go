package services

import (
	"context"
	"fmt"
	"time"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/mws"
	"amazon-connector-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// importLookback is subtracted from the import cursor on every pass, so
// consecutive passes overlap by ten days. Orders that failed inside the
// window get picked up again on the next run.
const importLookback = 10 * 24 * time.Hour

// ClientProvider builds a marketplace client for a channel.
type ClientProvider interface {
	ClientFor(ctx context.Context, channel *models.Channel) (mws.API, error)
}

// ImportResult summarizes one import pass.
type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// OrderImporter pulls marketplace orders into local sales.
type OrderImporter struct {
	channels   repository.ChannelRepositoryInterface
	orders     repository.OrderRepositoryInterface
	shipments  repository.ShipmentRepositoryInterface
	resolver   *PartyResolver
	mapper     *ProductMapper
	reconciler *OrderReconciler
	clients    ClientProvider
	logger     *zap.Logger
}

// NewOrderImporter creates a new order importer
func NewOrderImporter(
	channels repository.ChannelRepositoryInterface,
	orders repository.OrderRepositoryInterface,
	shipments repository.ShipmentRepositoryInterface,
	resolver *PartyResolver,
	mapper *ProductMapper,
	reconciler *OrderReconciler,
	clients ClientProvider,
	logger *zap.Logger,
) *OrderImporter {
	return &OrderImporter{
		channels:   channels,
		orders:     orders,
		shipments:  shipments,
		resolver:   resolver,
		mapper:     mapper,
		reconciler: reconciler,
		clients:    clients,
		logger:     logger,
	}
}

// ImportOrders imports every order updated since ten days before the
// channel's import cursor, bounded by the channel's creation. The first
// page failing fails the pass; a later page failing keeps the orders
// already collected. The cursor only advances after the batch is
// processed, and the overlap means orders that failed last pass are seen
// again.
func (s *OrderImporter) ImportOrders(ctx context.Context, channelID uuid.UUID) (*ImportResult, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel: %w", err)
	}

	api, err := s.clients.ClientFor(ctx, channel)
	if err != nil {
		return nil, err
	}

	statuses := channel.StatusesToImport()
	if len(statuses) == 0 {
		s.logger.Info("no importable statuses configured",
			zap.String("channelId", channel.ID.String()))
		return &ImportResult{}, nil
	}

	runStart := time.Now().UTC()
	updatedAfter := channel.CreatedAt.UTC()
	if channel.LastImportAt != nil {
		if from := channel.LastImportAt.Add(-importLookback); from.After(updatedAfter) {
			updatedAfter = from
		}
	}

	page, err := api.ListOrders(ctx, channel.MarketplaceID, updatedAfter, statuses)
	if err != nil {
		return nil, fmt.Errorf("order listing failed: %w", err)
	}
	remote := page.Orders

	for page.NextToken != "" {
		page, err = api.ListOrdersByNextToken(ctx, page.NextToken)
		if err != nil {
			if mws.IsRemoteError(err) {
				// Keep what we have; the cursor does not advance past
				// runStart, so the missing pages are retried later.
				s.logger.Warn("pagination aborted, keeping partial batch",
					zap.String("channelId", channel.ID.String()),
					zap.Int("collected", len(remote)),
					zap.Error(err))
				break
			}
			return nil, fmt.Errorf("order pagination failed: %w", err)
		}
		remote = append(remote, page.Orders...)
	}

	result := &ImportResult{}
	for i := range remote {
		if err := s.importOne(ctx, api, channel, &remote[i], result); err != nil {
			result.Failed++
			s.logger.Error("order import failed",
				zap.String("channelId", channel.ID.String()),
				zap.String("externalId", remote[i].OrderID),
				zap.Error(err))
		}
	}

	if err := s.channels.UpdateLastImportAt(ctx, channel.ID, runStart); err != nil {
		return result, fmt.Errorf("failed to advance import cursor: %w", err)
	}

	s.logger.Info("import pass finished",
		zap.String("channelId", channel.ID.String()),
		zap.Int("imported", result.Imported),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

// ImportOrder imports or refreshes a single order by its marketplace id.
func (s *OrderImporter) ImportOrder(ctx context.Context, channelID uuid.UUID, externalID string) (*models.Order, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel: %w", err)
	}

	api, err := s.clients.ClientFor(ctx, channel)
	if err != nil {
		return nil, err
	}

	remote, err := api.GetOrder(ctx, []string{externalID})
	if err != nil {
		return nil, fmt.Errorf("order fetch failed: %w", err)
	}
	if len(remote) == 0 {
		return nil, fmt.Errorf("order %s not found on marketplace", externalID)
	}

	result := &ImportResult{}
	if err := s.importOne(ctx, api, channel, &remote[0], result); err != nil {
		return nil, err
	}
	return s.orders.FindByExternalID(ctx, channel.ID, externalID)
}

// importOne routes a remote order to creation or reconciliation. A
// re-seen order is reconciled in place rather than duplicated.
func (s *OrderImporter) importOne(ctx context.Context, api mws.API, channel *models.Channel, remote *mws.Order, result *ImportResult) error {
	existing, err := s.orders.FindByExternalID(ctx, channel.ID, remote.OrderID)
	if err != nil {
		return fmt.Errorf("failed to look up order: %w", err)
	}
	if existing != nil {
		changed, err := s.reconciler.ApplyRemoteState(ctx, existing, remote.Status)
		if err != nil {
			return err
		}
		if changed {
			result.Updated++
		} else {
			result.Skipped++
		}
		return nil
	}

	created, err := s.createFromRemote(ctx, api, channel, remote)
	if err != nil {
		return err
	}
	if created {
		result.Imported++
	} else {
		result.Skipped++
	}
	return nil
}

// createFromRemote builds the local order for a marketplace order and
// applies the configured action for its status.
func (s *OrderImporter) createFromRemote(ctx context.Context, api mws.API, channel *models.Channel, remote *mws.Order) (bool, error) {
	stateCfg := channel.ActionForStatus(remote.Status)

	order := &models.Order{
		ChannelID:          channel.ID,
		ExternalID:         remote.OrderID,
		Reference:          remote.OrderID,
		CurrencyCode:       remote.CurrencyCode,
		SaleDate:           remote.PurchaseDate,
		Total:              remote.Total,
		State:              models.OrderDraft,
		FulfillmentChannel: remote.FulfillmentChannel,
		WarehouseID:        channel.WarehouseID,
	}
	if remote.CurrencyCode == "" {
		order.CurrencyCode = channel.CurrencyCode
	}
	if remote.FulfillmentChannel == mws.FulfilledByMarketplace && channel.FBAWarehouseID != nil {
		order.WarehouseID = *channel.FBAWarehouseID
	}

	if stateCfg.Action == models.ActionDoNotImport {
		order.State = models.OrderIgnored
		created, err := s.orders.CreateIfAbsent(ctx, order)
		if err != nil {
			return false, fmt.Errorf("failed to record ignored order: %w", err)
		}
		return created, nil
	}

	items, err := api.ListOrderItems(ctx, remote.OrderID)
	if err != nil {
		return false, fmt.Errorf("item listing for %s failed: %w", remote.OrderID, err)
	}

	resolved, err := s.resolver.Resolve(ctx, remote)
	if err != nil {
		return false, err
	}
	order.PartyID = resolved.Party.ID
	order.InvoiceAddressID = resolved.Address.ID
	order.ShipmentAddressID = resolved.Address.ID

	order.Lines, err = s.mapper.MapLines(ctx, api, channel, remote, items)
	if err != nil {
		return false, err
	}

	created, err := s.orders.CreateIfAbsent(ctx, order)
	if err != nil {
		return false, fmt.Errorf("failed to create order: %w", err)
	}
	if !created {
		// Another writer imported it first; leave their record alone.
		return false, nil
	}

	if !order.ComputedTotal().Round(2).Equal(remote.Total.Round(2)) {
		if err := s.orders.CreateException(ctx, &models.SyncException{
			ChannelID: channel.ID,
			OrderID:   order.ID,
			Kind:      models.ExceptionTotalMismatch,
			Log: fmt.Sprintf("marketplace total %s, computed total %s",
				remote.Total.StringFixed(2), order.ComputedTotal().StringFixed(2)),
		}); err != nil {
			return true, fmt.Errorf("failed to record total mismatch: %w", err)
		}
		s.logger.Warn("order total mismatch, left in draft",
			zap.String("externalId", remote.OrderID))
		return true, nil
	}

	if err := s.applyAction(ctx, channel, order, stateCfg); err != nil {
		if exErr := s.orders.CreateException(ctx, &models.SyncException{
			ChannelID: channel.ID,
			OrderID:   order.ID,
			Kind:      models.ExceptionTransitionFailure,
			Log:       fmt.Sprintf("action %s: %v", stateCfg.Action, err),
		}); exErr != nil {
			return true, fmt.Errorf("failed to record transition failure: %w", exErr)
		}
		s.logger.Warn("order transition failed, left in draft",
			zap.String("externalId", remote.OrderID),
			zap.String("action", string(stateCfg.Action)),
			zap.Error(err))
	}
	return true, nil
}

// applyAction advances a freshly created order per its configured action.
func (s *OrderImporter) applyAction(ctx context.Context, channel *models.Channel, order *models.Order, stateCfg models.ChannelOrderState) error {
	switch stateCfg.Action {
	case models.ActionProcessAutomatically:
		if err := s.createShipment(ctx, channel, order, models.ShipmentDraft); err != nil {
			return err
		}
		return s.orders.UpdateState(ctx, order.ID, models.OrderProcessing)

	case models.ActionProcessManually:
		return s.orders.UpdateState(ctx, order.ID, models.OrderManualReview)

	case models.ActionImportAsPast:
		// Already fulfilled on the marketplace side; mirror that locally.
		if err := s.createShipment(ctx, channel, order, models.ShipmentDone); err != nil {
			return err
		}
		return s.orders.UpdateState(ctx, order.ID, models.OrderDone)

	default:
		return s.orders.UpdateState(ctx, order.ID, models.OrderIgnored)
	}
}

// createShipment creates one shipment carrying the order's product lines.
func (s *OrderImporter) createShipment(ctx context.Context, channel *models.Channel, order *models.Order, state models.ShipmentState) error {
	shipment := &models.Shipment{
		ChannelID:   channel.ID,
		Code:        fmt.Sprintf("SHP-%s", order.ExternalID),
		State:       state,
		WarehouseID: order.WarehouseID,
	}
	if state == models.ShipmentDone {
		now := time.Now().UTC()
		shipment.CompletedAt = &now
	}
	for _, line := range order.Lines {
		if line.IsShipping() {
			continue
		}
		shipment.Units = append(shipment.Units, models.ShipmentUnit{
			OrderID:        order.ID,
			OrderLineID:    line.ID,
			ExternalLineID: line.ExternalLineID,
			Quantity:       line.Quantity,
		})
	}
	if err := s.shipments.Create(ctx, shipment); err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}
	return nil
}
