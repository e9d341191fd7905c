package services

import (
	"context"
	"time"

	"amazon-connector-service/internal/models"
	"amazon-connector-service/internal/mws"
	"amazon-connector-service/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockChannelRepository is a mock implementation of ChannelRepositoryInterface
type MockChannelRepository struct {
	mock.Mock
}

var _ repository.ChannelRepositoryInterface = (*MockChannelRepository)(nil)

func (m *MockChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockChannelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Channel), args.Error(1)
}

func (m *MockChannelRepository) ListBySource(ctx context.Context, source models.ChannelSource) ([]models.Channel, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Channel), args.Error(1)
}

func (m *MockChannelRepository) Update(ctx context.Context, channel *models.Channel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockChannelRepository) UpdateLastImportAt(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockChannelRepository) ReplaceOrderStates(ctx context.Context, channelID uuid.UUID, states []models.ChannelOrderState) error {
	args := m.Called(ctx, channelID, states)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of OrderRepositoryInterface
type MockOrderRepository struct {
	mock.Mock
}

var _ repository.OrderRepositoryInterface = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error) {
	args := m.Called(ctx, order)
	if args.Error(1) == nil && args.Bool(0) {
		order.ID = uuid.New()
		for i := range order.Lines {
			order.Lines[i].ID = uuid.New()
			order.Lines[i].OrderID = order.ID
		}
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByExternalID(ctx context.Context, channelID uuid.UUID, externalID string) (*models.Order, error) {
	args := m.Called(ctx, channelID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOpen(ctx context.Context, channelID uuid.UUID) ([]models.Order, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateState(ctx context.Context, id uuid.UUID, state models.OrderState) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateException(ctx context.Context, exception *models.SyncException) error {
	args := m.Called(ctx, exception)
	return args.Error(0)
}

func (m *MockOrderRepository) ListExceptions(ctx context.Context, channelID uuid.UUID, unresolvedOnly bool) ([]models.SyncException, error) {
	args := m.Called(ctx, channelID, unresolvedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SyncException), args.Error(1)
}

func (m *MockOrderRepository) ResolveException(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockShipmentRepository is a mock implementation of ShipmentRepositoryInterface
type MockShipmentRepository struct {
	mock.Mock
}

var _ repository.ShipmentRepositoryInterface = (*MockShipmentRepository)(nil)

func (m *MockShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	args := m.Called(ctx, shipment)
	if args.Error(0) == nil {
		shipment.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockShipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Shipment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) ListUnexported(ctx context.Context, channelID uuid.UUID) ([]models.Shipment, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) UpdateState(ctx context.Context, id uuid.UUID, state models.ShipmentState) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *MockShipmentRepository) MarkExported(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	args := m.Called(ctx, ids, at)
	return args.Error(0)
}

// MockPartyRepository is a mock implementation of PartyRepositoryInterface
type MockPartyRepository struct {
	mock.Mock
}

var _ repository.PartyRepositoryInterface = (*MockPartyRepository)(nil)

func (m *MockPartyRepository) FindByNameAndEmail(ctx context.Context, name, email string) (*models.Party, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Party), args.Error(1)
}

func (m *MockPartyRepository) Create(ctx context.Context, party *models.Party) error {
	args := m.Called(ctx, party)
	if args.Error(0) == nil {
		party.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockPartyRepository) ListAddresses(ctx context.Context, partyID uuid.UUID) ([]models.Address, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Address), args.Error(1)
}

func (m *MockPartyRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	args := m.Called(ctx, address)
	if args.Error(0) == nil {
		address.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockPartyRepository) HasContact(ctx context.Context, partyID uuid.UUID, contactType models.ContactMechanismType, value string) (bool, error) {
	args := m.Called(ctx, partyID, contactType, value)
	return args.Bool(0), args.Error(1)
}

func (m *MockPartyRepository) CreateContact(ctx context.Context, contact *models.ContactMechanism) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockPartyRepository) FindSubdivision(ctx context.Context, countryCode, region string) (*models.Subdivision, error) {
	args := m.Called(ctx, countryCode, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subdivision), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepositoryInterface
type MockProductRepository struct {
	mock.Mock
}

var _ repository.ProductRepositoryInterface = (*MockProductRepository)(nil)

func (m *MockProductRepository) FindListingByASIN(ctx context.Context, channelID uuid.UUID, asin string) (*models.ProductListing, error) {
	args := m.Called(ctx, channelID, asin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductListing), args.Error(1)
}

func (m *MockProductRepository) FindListingBySKU(ctx context.Context, channelID uuid.UUID, sku string) (*models.ProductListing, error) {
	args := m.Called(ctx, channelID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductListing), args.Error(1)
}

func (m *MockProductRepository) CreateListing(ctx context.Context, listing *models.ProductListing) error {
	args := m.Called(ctx, listing)
	if args.Error(0) == nil {
		listing.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockProductRepository) UpdateListingFulfillmentCode(ctx context.Context, id uuid.UUID, code string) error {
	args := m.Called(ctx, id, code)
	return args.Error(0)
}

func (m *MockProductRepository) ListExportableListings(ctx context.Context, channelID uuid.UUID) ([]models.ProductListing, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProductListing), args.Error(1)
}

func (m *MockProductRepository) FindProductByCode(ctx context.Context, code string) (*models.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	if args.Error(0) == nil {
		product.ID = uuid.New()
	}
	return args.Error(0)
}

// MockInventoryRepository is a mock implementation of InventoryRepositoryInterface
type MockInventoryRepository struct {
	mock.Mock
}

var _ repository.InventoryRepositoryInterface = (*MockInventoryRepository)(nil)

func (m *MockInventoryRepository) GetOnHand(ctx context.Context, warehouseID, productID uuid.UUID) (int, error) {
	args := m.Called(ctx, warehouseID, productID)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) SetOnHand(ctx context.Context, warehouseID, productID uuid.UUID, onHand int) error {
	args := m.Called(ctx, warehouseID, productID, onHand)
	return args.Error(0)
}

// MockMarketplaceAPI is a mock implementation of the marketplace API
type MockMarketplaceAPI struct {
	mock.Mock
}

var _ mws.API = (*MockMarketplaceAPI)(nil)

func (m *MockMarketplaceAPI) ListOrders(ctx context.Context, marketplaceID string, updatedAfter time.Time, statuses []string) (*mws.OrderPage, error) {
	args := m.Called(ctx, marketplaceID, updatedAfter, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mws.OrderPage), args.Error(1)
}

func (m *MockMarketplaceAPI) ListOrdersByNextToken(ctx context.Context, token string) (*mws.OrderPage, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mws.OrderPage), args.Error(1)
}

func (m *MockMarketplaceAPI) GetOrder(ctx context.Context, orderIDs []string) ([]mws.Order, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mws.Order), args.Error(1)
}

func (m *MockMarketplaceAPI) ListOrderItems(ctx context.Context, orderID string) ([]mws.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mws.OrderItem), args.Error(1)
}

func (m *MockMarketplaceAPI) GetMatchingProductForID(ctx context.Context, marketplaceID, idType string, ids []string) ([]mws.ProductAttributes, error) {
	args := m.Called(ctx, marketplaceID, idType, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mws.ProductAttributes), args.Error(1)
}

func (m *MockMarketplaceAPI) SubmitFeed(ctx context.Context, envelope []byte, feedType, marketplaceID string) (*mws.FeedSubmissionInfo, error) {
	args := m.Called(ctx, envelope, feedType, marketplaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mws.FeedSubmissionInfo), args.Error(1)
}

func (m *MockMarketplaceAPI) GetServiceStatus(ctx context.Context) (*mws.ServiceStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mws.ServiceStatus), args.Error(1)
}

func (m *MockMarketplaceAPI) GetFeedSubmissionCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// staticClientProvider hands every channel the same API client.
type staticClientProvider struct {
	api mws.API
}

func (p *staticClientProvider) ClientFor(ctx context.Context, channel *models.Channel) (mws.API, error) {
	return p.api, nil
}
