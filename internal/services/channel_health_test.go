package services

import (
	"context"
	"testing"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/mws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newHealthFixture() (*MockChannelRepository, *MockMarketplaceAPI, *ChannelHealthService) {
	channels := new(MockChannelRepository)
	api := new(MockMarketplaceAPI)
	service := NewChannelHealthService(channels, &staticClientProvider{api: api}, zap.NewNop())
	return channels, api, service
}

func TestCheckServiceStatusGreen(t *testing.T) {
	channels, api, service := newHealthFixture()
	channel := testChannel()

	channels.On("GetByID", mock.Anything, channel.ID).Return(channel, nil)
	api.On("GetServiceStatus", mock.Anything).Return(&mws.ServiceStatus{Status: mws.StatusGreen}, nil)

	report, err := service.CheckServiceStatus(context.Background(), channel.ID)

	assert.NoError(t, err)
	assert.True(t, report.Healthy)
	assert.Equal(t, "The service is operating normally.", report.Message)
}

func TestCheckServiceStatusGreenIncludesMessages(t *testing.T) {
	channels, api, service := newHealthFixture()
	channel := testChannel()

	channels.On("GetByID", mock.Anything, channel.ID).Return(channel, nil)
	api.On("GetServiceStatus", mock.Anything).Return(&mws.ServiceStatus{
		Status:   mws.StatusGreenI,
		Messages: []string{"Elevated latency in EU."},
	}, nil)

	report, err := service.CheckServiceStatus(context.Background(), channel.ID)

	assert.NoError(t, err)
	assert.True(t, report.Healthy)
	assert.Contains(t, report.Message, "Elevated latency in EU.")
}

func TestCheckServiceStatusRedIsUnhealthy(t *testing.T) {
	channels, api, service := newHealthFixture()
	channel := testChannel()

	channels.On("GetByID", mock.Anything, channel.ID).Return(channel, nil)
	api.On("GetServiceStatus", mock.Anything).Return(&mws.ServiceStatus{Status: mws.StatusRed}, nil)

	report, err := service.CheckServiceStatus(context.Background(), channel.ID)

	assert.NoError(t, err)
	assert.False(t, report.Healthy)
	assert.Contains(t, report.Message, "unavailable")
}

func TestCheckSettingsValidCredentials(t *testing.T) {
	channels, api, service := newHealthFixture()
	channel := testChannel()

	channels.On("GetByID", mock.Anything, channel.ID).Return(channel, nil)
	api.On("GetFeedSubmissionCount", mock.Anything).Return(12, nil)

	report, err := service.CheckSettings(context.Background(), channel.ID)

	assert.NoError(t, err)
	assert.True(t, report.Healthy)
}

func TestCheckSettingsRejectedCredentials(t *testing.T) {
	channels, api, service := newHealthFixture()
	channel := testChannel()

	channels.On("GetByID", mock.Anything, channel.ID).Return(channel, nil)
	api.On("GetFeedSubmissionCount", mock.Anything).
		Return(0, &mws.RemoteError{Op: "GetFeedSubmissionCount", Message: "access denied"})

	report, err := service.CheckSettings(context.Background(), channel.ID)

	assert.NoError(t, err)
	assert.False(t, report.Healthy)
	assert.Equal(t, "INVALID", report.Status)
}

func TestChannelServiceSeedsDefaultStates(t *testing.T) {
	channels := new(MockChannelRepository)
	service := NewChannelService(channels, zap.NewNop())
	channel := &models.Channel{Source: models.SourceAmazonMWS, Name: "Amazon US"}

	channels.On("Create", mock.Anything, channel).Return(nil)
	channels.On("ReplaceOrderStates", mock.Anything, mock.Anything, mock.MatchedBy(func(states []models.ChannelOrderState) bool {
		if len(states) != len(models.AmazonOrderStatuses) {
			return false
		}
		for _, state := range states {
			if state.Code == "Unshipped" && state.Action != models.ActionProcessAutomatically {
				return false
			}
			if state.Code == "Pending" && state.Action != models.ActionDoNotImport {
				return false
			}
		}
		return true
	})).Return(nil)

	err := service.CreateChannel(context.Background(), channel)

	assert.NoError(t, err)
	channels.AssertExpectations(t)
}

func TestChannelServiceSkipsSeedingManualChannels(t *testing.T) {
	channels := new(MockChannelRepository)
	service := NewChannelService(channels, zap.NewNop())
	channel := &models.Channel{Source: models.SourceManual, Name: "Counter sales"}

	channels.On("Create", mock.Anything, channel).Return(nil)

	err := service.CreateChannel(context.Background(), channel)

	assert.NoError(t, err)
	channels.AssertNotCalled(t, "ReplaceOrderStates", mock.Anything, mock.Anything, mock.Anything)
}

func TestClientFactoryRejectsManualChannels(t *testing.T) {
	factory := NewClientFactory("", nil)
	channel := &models.Channel{Source: models.SourceManual}

	_, err := factory.ClientFor(context.Background(), channel)

	assert.True(t, IsConfigurationError(err))
}

func TestClientFactoryRejectsIncompleteCredentials(t *testing.T) {
	factory := NewClientFactory("", nil)
	channel := &models.Channel{
		Source:        models.SourceAmazonMWS,
		MarketplaceID: "ATVPDKIKX0DER",
		AccessKey:     "AK",
	}

	_, err := factory.ClientFor(context.Background(), channel)

	assert.True(t, IsConfigurationError(err))
}

func TestClientFactoryBuildsClientFromInlineCredentials(t *testing.T) {
	factory := NewClientFactory("", nil)
	channel := testChannel()

	api, err := factory.ClientFor(context.Background(), channel)

	assert.NoError(t, err)
	assert.NotNil(t, api)
}
