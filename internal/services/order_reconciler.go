package services

import (
	"context"
	"fmt"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/mws"
	"amazon-connector-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// shipmentSequence is the forward-only shipment state machine. Advancing
// a shipment walks the remaining steps in order, so a partially advanced
// shipment resumes where it stopped.
var shipmentSequence = []models.ShipmentState{
	models.ShipmentDraft,
	models.ShipmentWaiting,
	models.ShipmentAssigned,
	models.ShipmentPacked,
	models.ShipmentDone,
}

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Checked   int `json:"checked"`
	Fulfilled int `json:"fulfilled"`
}

// OrderReconciler refreshes open local orders against their current
// marketplace status.
type OrderReconciler struct {
	channels  repository.ChannelRepositoryInterface
	orders    repository.OrderRepositoryInterface
	shipments repository.ShipmentRepositoryInterface
	clients   ClientProvider
	logger    *zap.Logger
}

// NewOrderReconciler creates a new order reconciler
func NewOrderReconciler(
	channels repository.ChannelRepositoryInterface,
	orders repository.OrderRepositoryInterface,
	shipments repository.ShipmentRepositoryInterface,
	clients ClientProvider,
	logger *zap.Logger,
) *OrderReconciler {
	return &OrderReconciler{
		channels:  channels,
		orders:    orders,
		shipments: shipments,
		clients:   clients,
		logger:    logger,
	}
}

// UpdateOrderStatuses fetches the current marketplace status of every open
// order in batches. A marketplace failure mid-pass stops the pass but
// keeps the batches already applied; the remaining orders are simply
// picked up by the next pass.
func (s *OrderReconciler) UpdateOrderStatuses(ctx context.Context, channelID uuid.UUID) (*ReconcileResult, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel: %w", err)
	}

	api, err := s.clients.ClientFor(ctx, channel)
	if err != nil {
		return nil, err
	}

	open, err := s.orders.ListOpen(ctx, channel.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open orders: %w", err)
	}

	byExternal := make(map[string]*models.Order, len(open))
	for i := range open {
		byExternal[open[i].ExternalID] = &open[i]
	}

	result := &ReconcileResult{}
	for start := 0; start < len(open); start += mws.GetOrderMaxIDs {
		end := start + mws.GetOrderMaxIDs
		if end > len(open) {
			end = len(open)
		}
		ids := make([]string, 0, end-start)
		for _, order := range open[start:end] {
			ids = append(ids, order.ExternalID)
		}

		remote, err := api.GetOrder(ctx, ids)
		if err != nil {
			if mws.IsRemoteError(err) {
				s.logger.Warn("reconciliation pass stopped early",
					zap.String("channelId", channel.ID.String()),
					zap.Int("checked", result.Checked),
					zap.Error(err))
				return result, nil
			}
			return result, fmt.Errorf("status fetch failed: %w", err)
		}

		for i := range remote {
			order, ok := byExternal[remote[i].OrderID]
			if !ok {
				continue
			}
			result.Checked++
			changed, err := s.ApplyRemoteState(ctx, order, remote[i].Status)
			if err != nil {
				return result, err
			}
			if changed {
				result.Fulfilled++
			}
		}
	}

	s.logger.Info("reconciliation pass finished",
		zap.String("channelId", channel.ID.String()),
		zap.Int("checked", result.Checked),
		zap.Int("fulfilled", result.Fulfilled))
	return result, nil
}

// ApplyRemoteState folds a marketplace status into a local order. Only a
// shipped status changes anything: the order's shipments advance to done
// and the order completes. A cancellation is surfaced in the log but the
// local order is left for a human, since stock may already be moving.
func (s *OrderReconciler) ApplyRemoteState(ctx context.Context, order *models.Order, remoteStatus string) (bool, error) {
	switch remoteStatus {
	case "Shipped":
		if !order.IsOpen() {
			return false, nil
		}
		if err := s.advanceShipments(ctx, order); err != nil {
			return false, err
		}
		if err := s.orders.UpdateState(ctx, order.ID, models.OrderDone); err != nil {
			return false, fmt.Errorf("failed to complete order: %w", err)
		}
		order.State = models.OrderDone
		return true, nil

	case "Canceled":
		if order.IsOpen() {
			s.logger.Warn("marketplace canceled an open order",
				zap.String("orderId", order.ID.String()),
				zap.String("externalId", order.ExternalID))
		}
		return false, nil

	default:
		return false, nil
	}
}

// advanceShipments walks every shipment of the order to done.
func (s *OrderReconciler) advanceShipments(ctx context.Context, order *models.Order) error {
	shipments, err := s.shipments.ListByOrder(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to list shipments: %w", err)
	}
	for i := range shipments {
		if err := s.advanceShipment(ctx, &shipments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderReconciler) advanceShipment(ctx context.Context, shipment *models.Shipment) error {
	position := 0
	for i, state := range shipmentSequence {
		if shipment.State == state {
			position = i
			break
		}
	}
	for _, state := range shipmentSequence[position+1:] {
		if err := s.shipments.UpdateState(ctx, shipment.ID, state); err != nil {
			return fmt.Errorf("failed to advance shipment %s to %s: %w", shipment.Code, state, err)
		}
	}
	shipment.State = models.ShipmentDone
	return nil
}
