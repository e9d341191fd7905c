package services

import (
	"context"
	"fmt"
	"strings"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/mws"
	"amazon-connector-service/internal/repository"
	"go.uber.org/zap"
)

// PartyResolver finds or creates the party and address records behind a
// marketplace buyer.
type PartyResolver struct {
	parties repository.PartyRepositoryInterface
	logger  *zap.Logger
}

// NewPartyResolver creates a new party resolver
func NewPartyResolver(parties repository.PartyRepositoryInterface, logger *zap.Logger) *PartyResolver {
	return &PartyResolver{parties: parties, logger: logger}
}

// ResolvedParty is the outcome of resolving a buyer.
type ResolvedParty struct {
	Party   *models.Party
	Address *models.Address
}

// Resolve maps a marketplace order's buyer to a local party with an
// address. Parties are keyed on (name, email): the same buyer across
// orders reuses one party, and an address matching an existing one by
// name is reused rather than duplicated.
func (r *PartyResolver) Resolve(ctx context.Context, order *mws.Order) (*ResolvedParty, error) {
	name := strings.TrimSpace(order.BuyerName)
	if name == "" {
		name = order.BuyerEmail
	}
	if name == "" && order.ShippingAddress != nil {
		name = order.ShippingAddress.Name
	}
	if name == "" {
		return nil, &MappingError{Reason: fmt.Sprintf("order %s has no buyer identity", order.OrderID)}
	}

	party, err := r.parties.FindByNameAndEmail(ctx, name, order.BuyerEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to look up party: %w", err)
	}
	if party == nil {
		party = &models.Party{Name: name, Email: order.BuyerEmail}
		if err := r.parties.Create(ctx, party); err != nil {
			return nil, fmt.Errorf("failed to create party: %w", err)
		}
		r.logger.Info("created party",
			zap.String("partyId", party.ID.String()),
			zap.String("orderId", order.OrderID))
	}

	address, err := r.resolveAddress(ctx, party, order.ShippingAddress)
	if err != nil {
		return nil, err
	}

	if order.ShippingAddress != nil && order.ShippingAddress.Phone != "" {
		if err := r.ensurePhone(ctx, party, order.ShippingAddress.Phone); err != nil {
			return nil, err
		}
	}

	return &ResolvedParty{Party: party, Address: address}, nil
}

// resolveAddress reuses an existing address whose name matches the
// incoming one, otherwise creates a new address. The comparison is exact
// name string equality, nothing more; two different street addresses
// sharing a recipient name collapse to one. An order without a shipping
// payload gets a minimal address carrying only the party's name.
func (r *PartyResolver) resolveAddress(ctx context.Context, party *models.Party, remote *mws.Address) (*models.Address, error) {
	if remote == nil {
		remote = &mws.Address{Name: party.Name}
	}

	existing, err := r.parties.ListAddresses(ctx, party.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list party addresses: %w", err)
	}
	for i := range existing {
		if existing[i].Name == remote.Name {
			return &existing[i], nil
		}
	}

	address := &models.Address{
		PartyID:     party.ID,
		Name:        remote.Name,
		Line1:       optional(remote.Line1),
		Line2:       optional(remote.Line2),
		City:        optional(remote.City),
		StateRegion: optional(remote.StateOrRegion),
		PostalCode:  optional(remote.PostalCode),
		CountryCode: optional(remote.CountryCode),
	}

	if remote.CountryCode != "" && remote.StateOrRegion != "" {
		subdivision, err := r.parties.FindSubdivision(ctx, remote.CountryCode, remote.StateOrRegion)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve subdivision: %w", err)
		}
		if subdivision != nil {
			address.SubdivisionCode = &subdivision.Code
		} else {
			r.logger.Debug("no subdivision match",
				zap.String("country", remote.CountryCode),
				zap.String("region", remote.StateOrRegion))
		}
	}

	if err := r.parties.CreateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return address, nil
}

func (r *PartyResolver) ensurePhone(ctx context.Context, party *models.Party, phone string) error {
	exists, err := r.parties.HasContact(ctx, party.ID, models.ContactPhone, phone)
	if err != nil {
		return fmt.Errorf("failed to check contact mechanism: %w", err)
	}
	if exists {
		return nil
	}
	return r.parties.CreateContact(ctx, &models.ContactMechanism{
		PartyID: party.ID,
		Type:    models.ContactPhone,
		Value:   phone,
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
