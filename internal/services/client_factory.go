package services

import (
	"context"
	"fmt"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/mws"
)

// CredentialSource resolves an externally stored MWS credential set. The
// production implementation reads Google Secret Manager.
type CredentialSource interface {
	Resolve(ctx context.Context, reference string) (mws.Credentials, error)
}

// ClientFactory builds marketplace clients for channels. Credentials live
// either inline on the channel row or behind a secret reference.
type ClientFactory struct {
	endpoint string
	secrets  CredentialSource
}

// NewClientFactory creates a client factory. An empty endpoint selects the
// production marketplace endpoint.
func NewClientFactory(endpoint string, secrets CredentialSource) *ClientFactory {
	return &ClientFactory{endpoint: endpoint, secrets: secrets}
}

// ClientFor returns a marketplace client for the channel.
func (f *ClientFactory) ClientFor(ctx context.Context, channel *models.Channel) (mws.API, error) {
	if !channel.IsAmazon() {
		return nil, &ConfigurationError{
			Field:  "source",
			Reason: fmt.Sprintf("channel %s has source %q", channel.ID, channel.Source),
		}
	}

	creds, err := f.credentialsFor(ctx, channel)
	if err != nil {
		return nil, err
	}
	if creds.AccessKey == "" || creds.SecretKey == "" || creds.MerchantID == "" {
		return nil, &ConfigurationError{Field: "credentials", Reason: "incomplete credential set"}
	}
	if channel.MarketplaceID == "" {
		return nil, &ConfigurationError{Field: "marketplaceId", Reason: "marketplace id is required"}
	}

	return mws.NewClient(creds, f.endpoint), nil
}

func (f *ClientFactory) credentialsFor(ctx context.Context, channel *models.Channel) (mws.Credentials, error) {
	if channel.SecretReference != "" {
		if f.secrets == nil {
			return mws.Credentials{}, &ConfigurationError{
				Field:  "secretReference",
				Reason: "no credential source configured",
			}
		}
		creds, err := f.secrets.Resolve(ctx, channel.SecretReference)
		if err != nil {
			return mws.Credentials{}, fmt.Errorf("failed to resolve channel credentials: %w", err)
		}
		if creds.MerchantID == "" {
			creds.MerchantID = channel.MerchantID
		}
		return creds, nil
	}
	return mws.Credentials{
		AccessKey:  channel.AccessKey,
		SecretKey:  channel.SecretKey,
		MerchantID: channel.MerchantID,
	}, nil
}
