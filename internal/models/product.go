package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is an internal product record. Code is the merchant SKU.
type Product struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code string    `gorm:"type:varchar(255);not null;index:idx_products_code" json:"code"`
	Name string    `gorm:"type:varchar(500);not null" json:"name"`

	ListPrice decimal.Decimal `gorm:"type:decimal(16,4)" json:"listPrice"`
	CostPrice decimal.Decimal `gorm:"type:decimal(16,4)" json:"costPrice"`
	Unit      string          `gorm:"type:varchar(50);not null" json:"unit"`

	// Exportable products are included in outbound price feeds.
	Exportable bool `gorm:"default:true" json:"exportable"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Listings []ProductListing `gorm:"foreignKey:ProductID" json:"listings,omitempty"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// ProductListing links a product to a (channel, external SKU) pair. A
// product may be listed on many channels but at most once per channel+SKU;
// the composite unique index enforces that against concurrent importers.
type ProductListing struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	ChannelID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_listings_channel_sku" json:"channelId"`

	ExternalSKU string `gorm:"type:varchar(255);not null;uniqueIndex:idx_listings_channel_sku" json:"externalSku"`
	ASIN        string `gorm:"type:varchar(20);index:idx_listings_asin" json:"asin"`

	// FulfillmentCode is the marketplace-fulfillment SKU (FBA). Set when
	// the listing is fulfilled by the marketplace; distinct from the
	// seller SKU in the general case.
	FulfillmentCode *string `gorm:"type:varchar(255)" json:"fulfillmentCode,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Product *Product `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
	Channel *Channel `gorm:"foreignKey:ChannelID;references:ID" json:"channel,omitempty"`
}

// TableName specifies the table name
func (ProductListing) TableName() string {
	return "product_channel_listings"
}

// IsFBA reports whether the listing is fulfilled by the marketplace.
func (l *ProductListing) IsFBA() bool {
	return l.FulfillmentCode != nil && *l.FulfillmentCode != ""
}

// FeedSKU is the SKU used in outbound inventory feeds: the fulfillment
// code for marketplace-fulfilled listings, the seller SKU otherwise.
func (l *ProductListing) FeedSKU() string {
	if l.IsFBA() {
		return *l.FulfillmentCode
	}
	return l.ExternalSKU
}

// InventoryLevel is the on-hand quantity of a product at a warehouse.
type InventoryLevel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_warehouse_product" json:"warehouseId"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_warehouse_product" json:"productId"`

	OnHand int `gorm:"default:0" json:"onHand"`

	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name
func (InventoryLevel) TableName() string {
	return "inventory_levels"
}
