package services

import (
	"context"
	"fmt"
	"strings"

	"amazon-connector-service/internal/mws"
	"amazon-connector-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HealthReport is the human-readable outcome of a channel health check.
type HealthReport struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Healthy bool   `json:"healthy"`
}

// ChannelHealthService answers availability and credential questions for
// a channel without touching any order data.
type ChannelHealthService struct {
	channels repository.ChannelRepositoryInterface
	clients  ClientProvider
	logger   *zap.Logger
}

// NewChannelHealthService creates a new channel health service
func NewChannelHealthService(channels repository.ChannelRepositoryInterface, clients ClientProvider, logger *zap.Logger) *ChannelHealthService {
	return &ChannelHealthService{channels: channels, clients: clients, logger: logger}
}

// CheckServiceStatus reports whether the marketplace order service is up.
func (s *ChannelHealthService) CheckServiceStatus(ctx context.Context, channelID uuid.UUID) (*HealthReport, error) {
	api, err := s.clientFor(ctx, channelID)
	if err != nil {
		return nil, err
	}

	status, err := api.GetServiceStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("service status check failed: %w", err)
	}

	report := &HealthReport{Status: status.Status}
	switch status.Status {
	case mws.StatusGreen:
		report.Healthy = true
		report.Message = "The service is operating normally."
	case mws.StatusGreenI:
		report.Healthy = true
		report.Message = "The service is operating normally."
		if len(status.Messages) > 0 {
			report.Message += " " + strings.Join(status.Messages, " ")
		}
	case mws.StatusYellow:
		report.Message = "The service is experiencing higher than normal error rates or is operating with degraded performance."
	case mws.StatusRed:
		report.Message = "The service is unavailable or experiencing extremely high error rates."
	default:
		report.Message = fmt.Sprintf("Unrecognized service status %q.", status.Status)
	}
	return report, nil
}

// CheckSettings verifies the channel's credentials with a harmless
// authenticated call.
func (s *ChannelHealthService) CheckSettings(ctx context.Context, channelID uuid.UUID) (*HealthReport, error) {
	api, err := s.clientFor(ctx, channelID)
	if err != nil {
		return nil, err
	}

	if _, err := api.GetFeedSubmissionCount(ctx); err != nil {
		if mws.IsRemoteError(err) {
			return &HealthReport{
				Status:  "INVALID",
				Message: fmt.Sprintf("Credentials rejected by the marketplace: %v", err),
			}, nil
		}
		return nil, fmt.Errorf("settings check failed: %w", err)
	}

	return &HealthReport{
		Status:  "OK",
		Healthy: true,
		Message: "Connection to the marketplace established, credentials are valid.",
	}, nil
}

func (s *ChannelHealthService) clientFor(ctx context.Context, channelID uuid.UUID) (mws.API, error) {
	channel, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel: %w", err)
	}
	return s.clients.ClientFor(ctx, channel)
}
