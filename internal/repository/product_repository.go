package repository

import (
	"context"
	"errors"
	"time"

	"amazon-connector-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepositoryInterface defines product and listing persistence operations.
type ProductRepositoryInterface interface {
	FindListingByASIN(ctx context.Context, channelID uuid.UUID, asin string) (*models.ProductListing, error)
	FindListingBySKU(ctx context.Context, channelID uuid.UUID, sku string) (*models.ProductListing, error)
	CreateListing(ctx context.Context, listing *models.ProductListing) error
	UpdateListingFulfillmentCode(ctx context.Context, id uuid.UUID, code string) error
	ListExportableListings(ctx context.Context, channelID uuid.UUID) ([]models.ProductListing, error)
	FindProductByCode(ctx context.Context, code string) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
}

// InventoryRepositoryInterface defines stock level lookups.
type InventoryRepositoryInterface interface {
	GetOnHand(ctx context.Context, warehouseID, productID uuid.UUID) (int, error)
	SetOnHand(ctx context.Context, warehouseID, productID uuid.UUID, onHand int) error
}

// ProductRepository handles database operations for products and listings
type ProductRepository struct {
	db *gorm.DB
}

var _ ProductRepositoryInterface = (*ProductRepository)(nil)

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindListingByASIN retrieves a channel listing by its ASIN. A missing
// listing returns (nil, nil).
func (r *ProductRepository) FindListingByASIN(ctx context.Context, channelID uuid.UUID, asin string) (*models.ProductListing, error) {
	var listing models.ProductListing
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND asin = ?", channelID, asin).
		First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// FindListingBySKU retrieves a channel listing by its seller SKU. A
// missing listing returns (nil, nil).
func (r *ProductRepository) FindListingBySKU(ctx context.Context, channelID uuid.UUID, sku string) (*models.ProductListing, error) {
	var listing models.ProductListing
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND external_sku = ?", channelID, sku).
		First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// CreateListing inserts a listing unless the (channel, SKU) slot is taken.
// Losing the race reloads the existing row, so concurrent imports of the
// same SKU converge on one listing.
func (r *ProductRepository) CreateListing(ctx context.Context, listing *models.ProductListing) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}, {Name: "external_sku"}},
		DoNothing: true,
	}).Create(listing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var existing models.ProductListing
		if err := r.db.WithContext(ctx).
			Where("channel_id = ? AND external_sku = ?", listing.ChannelID, listing.ExternalSKU).
			First(&existing).Error; err != nil {
			return err
		}
		*listing = existing
	}
	return nil
}

// UpdateListingFulfillmentCode backfills the marketplace fulfillment SKU
func (r *ProductRepository) UpdateListingFulfillmentCode(ctx context.Context, id uuid.UUID, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductListing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"fulfillment_code": code,
			"updated_at":       time.Now(),
		}).Error
}

// ListExportableListings retrieves the channel's listings whose products
// are flagged for export.
func (r *ProductRepository) ListExportableListings(ctx context.Context, channelID uuid.UUID) ([]models.ProductListing, error) {
	var listings []models.ProductListing
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_channel_listings.product_id").
		Where("product_channel_listings.channel_id = ? AND products.exportable = ?", channelID, true).
		Find(&listings).Error
	return listings, err
}

// FindProductByCode retrieves a product by its SKU. A missing product
// returns (nil, nil).
func (r *ProductRepository) FindProductByCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductByID retrieves a product
func (r *ProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct creates a new product
func (r *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// InventoryRepository handles database operations for stock levels
type InventoryRepository struct {
	db *gorm.DB
}

var _ InventoryRepositoryInterface = (*InventoryRepository)(nil)

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetOnHand returns the stock level of a product in a warehouse. A product
// with no level row reports zero on hand.
func (r *InventoryRepository) GetOnHand(ctx context.Context, warehouseID, productID uuid.UUID) (int, error) {
	var level models.InventoryLevel
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
		First(&level).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return level.OnHand, nil
}

// SetOnHand upserts the stock level of a product in a warehouse
func (r *InventoryRepository) SetOnHand(ctx context.Context, warehouseID, productID uuid.UUID, onHand int) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "warehouse_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"on_hand": onHand, "updated_at": time.Now()}),
	}).Create(&models.InventoryLevel{
		WarehouseID: warehouseID,
		ProductID:   productID,
		OnHand:      onHand,
	}).Error
}
