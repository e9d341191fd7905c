package services

import (
	"context"
	"fmt"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/mws"
	"amazon-connector-service/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// placeholderPrice is assigned to products discovered through the
// marketplace catalog, which never exposes the merchant's cost or list
// price. Merchants correct the records afterwards.
var placeholderPrice = decimal.NewFromFloat(0.01)

// ProductMapper resolves marketplace order items to local products and
// listings, creating both from catalog data when nothing matches.
type ProductMapper struct {
	products repository.ProductRepositoryInterface
	logger   *zap.Logger
}

// NewProductMapper creates a new product mapper
func NewProductMapper(products repository.ProductRepositoryInterface, logger *zap.Logger) *ProductMapper {
	return &ProductMapper{products: products, logger: logger}
}

// ResolveListing finds the channel listing for one order item. Resolution
// order: listing by ASIN, then listing by seller SKU, then product by SKU
// (creating the missing listing), then a single catalog fetch that
// creates both product and listing. fulfilledByMarketplace backfills the
// marketplace-managed SKU on listings first seen through a
// marketplace-fulfilled order.
func (m *ProductMapper) ResolveListing(ctx context.Context, api mws.API, channel *models.Channel, item mws.OrderItem, fulfilledByMarketplace bool) (*models.ProductListing, error) {
	if item.ASIN == "" {
		return nil, &MappingError{SKU: item.SellerSKU, Reason: "order item carries no ASIN"}
	}

	listing, err := m.products.FindListingByASIN(ctx, channel.ID, item.ASIN)
	if err != nil {
		return nil, fmt.Errorf("failed to look up listing by ASIN: %w", err)
	}
	if listing != nil {
		if fulfilledByMarketplace && listing.FulfillmentCode == nil && item.SellerSKU != "" {
			if err := m.products.UpdateListingFulfillmentCode(ctx, listing.ID, item.SellerSKU); err != nil {
				return nil, fmt.Errorf("failed to backfill fulfillment code: %w", err)
			}
			listing.FulfillmentCode = &item.SellerSKU
		}
		return listing, nil
	}

	listing, err = m.products.FindListingBySKU(ctx, channel.ID, item.SellerSKU)
	if err != nil {
		return nil, fmt.Errorf("failed to look up listing by SKU: %w", err)
	}
	if listing != nil {
		return listing, nil
	}

	product, err := m.products.FindProductByCode(ctx, item.SellerSKU)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product by code: %w", err)
	}
	if product == nil {
		product, err = m.createFromCatalog(ctx, api, channel, item)
		if err != nil {
			return nil, err
		}
	}

	listing = &models.ProductListing{
		ProductID:   product.ID,
		ChannelID:   channel.ID,
		ExternalSKU: item.SellerSKU,
		ASIN:        item.ASIN,
	}
	if fulfilledByMarketplace {
		listing.FulfillmentCode = &item.SellerSKU
	}
	if err := m.products.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	m.logger.Info("created listing",
		zap.String("channelId", channel.ID.String()),
		zap.String("sku", item.SellerSKU),
		zap.String("asin", item.ASIN))
	return listing, nil
}

// createFromCatalog fetches catalog attributes once, keyed by the seller
// SKU, and creates the product.
func (m *ProductMapper) createFromCatalog(ctx context.Context, api mws.API, channel *models.Channel, item mws.OrderItem) (*models.Product, error) {
	attrs, err := api.GetMatchingProductForID(ctx, channel.MarketplaceID, "SellerSKU", []string{item.SellerSKU})
	if err != nil {
		return nil, fmt.Errorf("catalog lookup for %s failed: %w", item.SellerSKU, err)
	}

	name := item.Title
	if len(attrs) > 0 && attrs[0].Title != "" {
		name = attrs[0].Title
	}
	if name == "" {
		return nil, &MappingError{SKU: item.SellerSKU, ASIN: item.ASIN, Reason: "catalog returned no usable attributes"}
	}

	product := &models.Product{
		Code:      item.SellerSKU,
		Name:      name,
		ListPrice: placeholderPrice,
		CostPrice: placeholderPrice,
		Unit:      channel.DefaultUnit,
	}
	if err := m.products.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	m.logger.Info("created product from catalog",
		zap.String("code", product.Code),
		zap.String("asin", item.ASIN))
	return product, nil
}

// MapLines converts marketplace order items to local order lines, plus a
// shipping line when the order carries shipping charges.
func (m *ProductMapper) MapLines(ctx context.Context, api mws.API, channel *models.Channel, order *mws.Order, items []mws.OrderItem) ([]models.OrderLine, error) {
	fba := order.FulfillmentChannel == mws.FulfilledByMarketplace

	lines := make([]models.OrderLine, 0, len(items)+1)
	shipping := decimal.Zero
	for _, item := range items {
		listing, err := m.ResolveListing(ctx, api, channel, item, fba)
		if err != nil {
			return nil, err
		}

		itemID := item.OrderItemID
		productID := listing.ProductID
		lines = append(lines, models.OrderLine{
			ExternalLineID: &itemID,
			ProductID:      &productID,
			Description:    item.Title,
			Quantity:       item.Quantity,
			UnitPrice:      unitPrice(item),
			Unit:           channel.DefaultUnit,
		})

		shipping = shipping.Add(item.ShippingAmount.Sub(item.ShippingDiscount))
	}

	if !shipping.IsZero() {
		lines = append(lines, models.OrderLine{
			Description: shippingDescription(order),
			Quantity:    1,
			UnitPrice:   shipping,
			Unit:        channel.DefaultUnit,
		})
	}
	return lines, nil
}

// unitPrice computes the per-unit price net of promotions. A zero quantity
// yields a zero price rather than a division error.
func unitPrice(item mws.OrderItem) decimal.Decimal {
	if item.Quantity == 0 {
		return decimal.Zero
	}
	net := item.ItemAmount.Sub(item.PromotionDiscount)
	return net.Div(decimal.NewFromInt(int64(item.Quantity)))
}

// shippingDescription labels a shipping line with the service hints the
// marketplace provides.
func shippingDescription(order *mws.Order) string {
	desc := "Shipping & Handling"
	if order.ShipServiceLevel != "" {
		desc = fmt.Sprintf("%s (%s)", desc, order.ShipServiceLevel)
	} else if order.ShipmentServiceLevelCategory != "" {
		desc = fmt.Sprintf("%s (%s)", desc, order.ShipmentServiceLevelCategory)
	}
	return desc
}
