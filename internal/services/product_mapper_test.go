package services

import (
	"context"
	"testing"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/mws"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newMapperFixture() (*MockProductRepository, *MockMarketplaceAPI, *ProductMapper) {
	products := new(MockProductRepository)
	api := new(MockMarketplaceAPI)
	return products, api, NewProductMapper(products, zap.NewNop())
}

func widgetItem() mws.OrderItem {
	return mws.OrderItem{
		OrderItemID: "item-1",
		SellerSKU:   "SKU-1",
		ASIN:        "B00ABC1234",
		Title:       "Widget",
		Quantity:    2,
		ItemAmount:  decimal.RequireFromString("20.00"),
	}
}

func TestResolveListingPrefersExistingASINMatch(t *testing.T) {
	products, api, mapper := newMapperFixture()
	channel := testChannel()
	listing := &models.ProductListing{ID: uuid.New(), ProductID: uuid.New(), ASIN: "B00ABC1234"}

	products.On("FindListingByASIN", mock.Anything, channel.ID, "B00ABC1234").Return(listing, nil)

	got, err := mapper.ResolveListing(context.Background(), api, channel, widgetItem(), false)

	assert.NoError(t, err)
	assert.Equal(t, listing.ID, got.ID)
	products.AssertNotCalled(t, "FindProductByCode", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "GetMatchingProductForID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveListingBackfillsFulfillmentCode(t *testing.T) {
	products, api, mapper := newMapperFixture()
	channel := testChannel()
	listing := &models.ProductListing{ID: uuid.New(), ProductID: uuid.New(), ASIN: "B00ABC1234"}

	products.On("FindListingByASIN", mock.Anything, channel.ID, "B00ABC1234").Return(listing, nil)
	products.On("UpdateListingFulfillmentCode", mock.Anything, listing.ID, "SKU-1").Return(nil)

	got, err := mapper.ResolveListing(context.Background(), api, channel, widgetItem(), true)

	assert.NoError(t, err)
	assert.NotNil(t, got.FulfillmentCode)
	assert.Equal(t, "SKU-1", *got.FulfillmentCode)
	products.AssertExpectations(t)
}

func TestResolveListingLinksExistingProductBySKU(t *testing.T) {
	products, api, mapper := newMapperFixture()
	channel := testChannel()
	product := &models.Product{ID: uuid.New(), Code: "SKU-1", Name: "Widget"}

	products.On("FindListingByASIN", mock.Anything, channel.ID, "B00ABC1234").Return(nil, nil)
	products.On("FindListingBySKU", mock.Anything, channel.ID, "SKU-1").Return(nil, nil)
	products.On("FindProductByCode", mock.Anything, "SKU-1").Return(product, nil)
	products.On("CreateListing", mock.Anything, mock.MatchedBy(func(l *models.ProductListing) bool {
		return l.ProductID == product.ID && l.ExternalSKU == "SKU-1" && l.ASIN == "B00ABC1234"
	})).Return(nil)

	_, err := mapper.ResolveListing(context.Background(), api, channel, widgetItem(), false)

	assert.NoError(t, err)
	api.AssertNotCalled(t, "GetMatchingProductForID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	products.AssertExpectations(t)
}

func TestResolveListingFallsBackToSKUListing(t *testing.T) {
	products, api, mapper := newMapperFixture()
	channel := testChannel()
	listing := &models.ProductListing{ID: uuid.New(), ProductID: uuid.New(), ExternalSKU: "SKU-1"}

	products.On("FindListingByASIN", mock.Anything, channel.ID, "B00ABC1234").Return(nil, nil)
	products.On("FindListingBySKU", mock.Anything, channel.ID, "SKU-1").Return(listing, nil)

	got, err := mapper.ResolveListing(context.Background(), api, channel, widgetItem(), false)

	assert.NoError(t, err)
	assert.Equal(t, listing.ID, got.ID)
	products.AssertNotCalled(t, "FindProductByCode", mock.Anything, mock.Anything)
	products.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "GetMatchingProductForID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveListingCreatesProductFromCatalogOnce(t *testing.T) {
	products, api, mapper := newMapperFixture()
	channel := testChannel()

	products.On("FindListingByASIN", mock.Anything, channel.ID, "B00ABC1234").Return(nil, nil)
	products.On("FindListingBySKU", mock.Anything, channel.ID, "SKU-1").Return(nil, nil)
	products.On("FindProductByCode", mock.Anything, "SKU-1").Return(nil, nil)
	api.On("GetMatchingProductForID", mock.Anything, channel.MarketplaceID, "SellerSKU", []string{"SKU-1"}).
		Return([]mws.ProductAttributes{{ASIN: "B00ABC1234", Title: "Widget Deluxe", Brand: "Acme"}}, nil)
	products.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.Code == "SKU-1" && p.Name == "Widget Deluxe" && p.Unit == channel.DefaultUnit
	})).Return(nil)
	products.On("CreateListing", mock.Anything, mock.AnythingOfType("*models.ProductListing")).Return(nil)

	_, err := mapper.ResolveListing(context.Background(), api, channel, widgetItem(), false)

	assert.NoError(t, err)
	api.AssertNumberOfCalls(t, "GetMatchingProductForID", 1)
	products.AssertExpectations(t)
}

func TestResolveListingEmptyCatalogIsMappingError(t *testing.T) {
	products, api, mapper := newMapperFixture()
	channel := testChannel()
	item := widgetItem()
	item.Title = ""

	products.On("FindListingByASIN", mock.Anything, channel.ID, "B00ABC1234").Return(nil, nil)
	products.On("FindListingBySKU", mock.Anything, channel.ID, "SKU-1").Return(nil, nil)
	products.On("FindProductByCode", mock.Anything, "SKU-1").Return(nil, nil)
	api.On("GetMatchingProductForID", mock.Anything, channel.MarketplaceID, "SellerSKU", []string{"SKU-1"}).
		Return([]mws.ProductAttributes{}, nil)

	_, err := mapper.ResolveListing(context.Background(), api, channel, item, false)

	assert.True(t, IsMappingError(err))
}

func TestResolveListingMissingASINIsMappingError(t *testing.T) {
	_, api, mapper := newMapperFixture()
	item := widgetItem()
	item.ASIN = ""

	_, err := mapper.ResolveListing(context.Background(), api, testChannel(), item, false)

	assert.True(t, IsMappingError(err))
}

func TestMapLinesComputesNetUnitPrice(t *testing.T) {
	products, api, mapper := newMapperFixture()
	channel := testChannel()
	listing := &models.ProductListing{ID: uuid.New(), ProductID: uuid.New()}
	products.On("FindListingByASIN", mock.Anything, channel.ID, mock.Anything).Return(listing, nil)

	order := unshippedOrder("17.00")
	item := widgetItem()
	item.PromotionDiscount = decimal.RequireFromString("3.00")

	lines, err := mapper.MapLines(context.Background(), api, channel, &order, []mws.OrderItem{item})

	assert.NoError(t, err)
	assert.Len(t, lines, 1)
	// (20.00 - 3.00) / 2
	assert.True(t, lines[0].UnitPrice.Equal(decimal.RequireFromString("8.5")))
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestMapLinesZeroQuantityYieldsZeroPrice(t *testing.T) {
	products, api, mapper := newMapperFixture()
	channel := testChannel()
	products.On("FindListingByASIN", mock.Anything, channel.ID, mock.Anything).
		Return(&models.ProductListing{ID: uuid.New(), ProductID: uuid.New()}, nil)

	order := unshippedOrder("0.00")
	item := widgetItem()
	item.Quantity = 0

	lines, err := mapper.MapLines(context.Background(), api, channel, &order, []mws.OrderItem{item})

	assert.NoError(t, err)
	assert.True(t, lines[0].UnitPrice.IsZero())
}

func TestMapLinesAddsShippingLine(t *testing.T) {
	products, api, mapper := newMapperFixture()
	channel := testChannel()
	products.On("FindListingByASIN", mock.Anything, channel.ID, mock.Anything).
		Return(&models.ProductListing{ID: uuid.New(), ProductID: uuid.New()}, nil)

	order := unshippedOrder("24.00")
	order.ShipServiceLevel = "Std US Dom"
	item := widgetItem()
	item.ShippingAmount = decimal.RequireFromString("5.00")
	item.ShippingDiscount = decimal.RequireFromString("1.00")

	lines, err := mapper.MapLines(context.Background(), api, channel, &order, []mws.OrderItem{item})

	assert.NoError(t, err)
	assert.Len(t, lines, 2)

	shipping := lines[1]
	assert.True(t, shipping.IsShipping())
	assert.Nil(t, shipping.ProductID)
	assert.True(t, shipping.UnitPrice.Equal(decimal.RequireFromString("4.00")))
	assert.Contains(t, shipping.Description, "Std US Dom")
}

func TestMapLinesOmitsZeroShipping(t *testing.T) {
	products, api, mapper := newMapperFixture()
	channel := testChannel()
	products.On("FindListingByASIN", mock.Anything, channel.ID, mock.Anything).
		Return(&models.ProductListing{ID: uuid.New(), ProductID: uuid.New()}, nil)

	order := unshippedOrder("20.00")

	lines, err := mapper.MapLines(context.Background(), api, channel, &order, []mws.OrderItem{widgetItem()})

	assert.NoError(t, err)
	assert.Len(t, lines, 1)
}
