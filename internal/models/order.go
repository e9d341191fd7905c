package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderState is the local order state machine.
type OrderState string

const (
	OrderDraft        OrderState = "DRAFT"
	OrderProcessing   OrderState = "PROCESSING"
	OrderManualReview OrderState = "MANUAL_REVIEW"
	OrderDone         OrderState = "DONE"
	OrderIgnored      OrderState = "IGNORED"
)

// Order is an internal sale created from a marketplace order. At most one
// Order exists per (channel, external order id); the composite unique index
// backs that guarantee against concurrent importers.
type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ChannelID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_orders_channel_external" json:"channelId"`
	ExternalID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_orders_channel_external" json:"externalId"`

	Reference    string          `gorm:"type:varchar(255);not null" json:"reference"`
	CurrencyCode string          `gorm:"type:varchar(3);not null" json:"currencyCode"`
	SaleDate     time.Time       `json:"saleDate"`
	Total        decimal.Decimal `gorm:"type:decimal(16,4)" json:"total"`
	State        OrderState      `gorm:"type:varchar(20);not null;default:'DRAFT';index:idx_orders_state" json:"state"`

	// merchant-fulfilled or marketplace-fulfilled, as reported upstream.
	FulfillmentChannel string    `gorm:"type:varchar(10)" json:"fulfillmentChannel"`
	WarehouseID        uuid.UUID `gorm:"type:uuid" json:"warehouseId"`

	PartyID           uuid.UUID `gorm:"type:uuid" json:"partyId"`
	InvoiceAddressID  uuid.UUID `gorm:"type:uuid" json:"invoiceAddressId"`
	ShipmentAddressID uuid.UUID `gorm:"type:uuid" json:"shipmentAddressId"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Lines      []OrderLine     `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
	Exceptions []SyncException `gorm:"foreignKey:OrderID" json:"exceptions,omitempty"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "sale_orders"
}

// ComputedTotal sums quantity times unit price over all lines, shipping
// lines included.
func (o *Order) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// IsOpen reports whether the order is still waiting on remote status.
func (o *Order) IsOpen() bool {
	return o.State == OrderProcessing || o.State == OrderManualReview
}

// OrderLine is a single sale line. ExternalLineID is nil for synthetic
// shipping lines, which have no marketplace line item behind them.
type OrderLine struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"orderId"`

	ExternalLineID *string    `gorm:"type:varchar(255)" json:"externalLineId,omitempty"`
	ProductID      *uuid.UUID `gorm:"type:uuid" json:"productId,omitempty"`

	Description string          `gorm:"type:text" json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(16,4)" json:"unitPrice"`
	Unit        string          `gorm:"type:varchar(50)" json:"unit"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name
func (OrderLine) TableName() string {
	return "sale_order_lines"
}

// IsShipping reports whether the line is a synthetic shipping charge.
func (l *OrderLine) IsShipping() bool {
	return l.ExternalLineID == nil
}

// SyncExceptionKind classifies a recorded discrepancy.
type SyncExceptionKind string

const (
	ExceptionTotalMismatch     SyncExceptionKind = "TOTAL_MISMATCH"
	ExceptionTransitionFailure SyncExceptionKind = "TRANSITION_FAILURE"
)

// SyncException is a recoverable discrepancy attached to an order for
// human review. It never blocks creation of the order itself.
type SyncException struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ChannelID uuid.UUID         `gorm:"type:uuid;not null;index" json:"channelId"`
	OrderID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"orderId"`
	Kind      SyncExceptionKind `gorm:"type:varchar(50);not null" json:"kind"`
	Log       string            `gorm:"type:text;not null" json:"log"`

	Resolved   bool       `gorm:"default:false" json:"resolved"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name
func (SyncException) TableName() string {
	return "channel_sync_exceptions"
}
