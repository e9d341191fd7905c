package models

import (
	"time"

	"github.com/google/uuid"
)

// ChannelSource identifies the integration a sale channel talks to.
type ChannelSource string

const (
	SourceAmazonMWS ChannelSource = "amazon_mws"
	SourceManual    ChannelSource = "manual"
)

// OrderStateAction is the local action taken for an external order status.
type OrderStateAction string

const (
	ActionProcessAutomatically OrderStateAction = "process_automatically"
	ActionProcessManually      OrderStateAction = "process_manually"
	ActionImportAsPast         OrderStateAction = "import_as_past"
	ActionDoNotImport          OrderStateAction = "do_not_import"
)

// BillingMethod says when an invoice or shipment is raised for an order.
type BillingMethod string

const (
	MethodOnOrder    BillingMethod = "order"
	MethodOnShipment BillingMethod = "shipment"
	MethodManual     BillingMethod = "manual"
)

// Channel represents one marketplace seller account with its credential set.
// Credentials are immutable once orders reference the channel; rotation is
// out of scope.
type Channel struct {
	ID     uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name   string        `gorm:"type:varchar(255);not null" json:"name"`
	Source ChannelSource `gorm:"type:varchar(50);not null;index:idx_channels_source" json:"source"`

	// MWS seller credentials. Either the inline key pair or a Secret
	// Manager reference is set, never both.
	MerchantID      string `gorm:"type:varchar(255)" json:"merchantId"`
	MarketplaceID   string `gorm:"type:varchar(255)" json:"marketplaceId"`
	AccessKey       string `gorm:"type:varchar(255)" json:"-"`
	SecretKey       string `gorm:"type:varchar(255)" json:"-"`
	SecretReference string `gorm:"type:varchar(500)" json:"-"`

	CurrencyCode     string `gorm:"type:varchar(3);not null;default:'USD'" json:"currencyCode"`
	DefaultUnit      string `gorm:"type:varchar(50);not null;default:'unit'" json:"defaultUnit"`
	DeliveryLeadDays int    `gorm:"default:2" json:"deliveryLeadDays"`

	// WarehouseID is the merchant warehouse inventory is quoted from.
	// FBAWarehouseID is assigned to marketplace-fulfilled orders.
	WarehouseID    uuid.UUID  `gorm:"type:uuid;not null" json:"warehouseId"`
	FBAWarehouseID *uuid.UUID `gorm:"type:uuid" json:"fbaWarehouseId,omitempty"`

	LastImportAt *time.Time `json:"lastImportAt,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	OrderStates []ChannelOrderState `gorm:"foreignKey:ChannelID" json:"orderStates,omitempty"`
}

// TableName specifies the table name
func (Channel) TableName() string {
	return "sale_channels"
}

// IsAmazon reports whether the channel talks to Amazon MWS.
func (c *Channel) IsAmazon() bool {
	return c.Source == SourceAmazonMWS
}

// ChannelOrderState maps an external order status code to the local action
// taken when an order in that status is imported.
type ChannelOrderState struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ChannelID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_channel_order_states_code" json:"channelId"`
	Code      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_channel_order_states_code" json:"code"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`

	Action         OrderStateAction `gorm:"type:varchar(50);not null" json:"action"`
	InvoiceMethod  BillingMethod    `gorm:"type:varchar(20);not null" json:"invoiceMethod"`
	ShipmentMethod BillingMethod    `gorm:"type:varchar(20);not null" json:"shipmentMethod"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name
func (ChannelOrderState) TableName() string {
	return "sale_channel_order_states"
}

// AmazonOrderStatuses are the external status codes Amazon reports.
var AmazonOrderStatuses = []string{
	"Pending",
	"Unshipped",
	"PartiallyShipped",
	"Shipped",
	"InvoiceUnconfirmed",
	"Canceled",
	"Unfulfillable",
}

// DefaultActionForStatus returns the default local action for an Amazon
// order status code.
func DefaultActionForStatus(code string) (OrderStateAction, BillingMethod, BillingMethod) {
	switch code {
	case "Unshipped":
		return ActionProcessAutomatically, MethodOnShipment, MethodOnOrder
	case "PartiallyShipped":
		return ActionProcessManually, MethodOnShipment, MethodOnOrder
	case "Shipped":
		return ActionImportAsPast, MethodOnOrder, MethodOnOrder
	default:
		// Pending, Canceled, InvoiceUnconfirmed, Unfulfillable
		return ActionDoNotImport, MethodManual, MethodManual
	}
}

// StatusesToImport returns the external status codes worth importing.
// Amazon requires Unshipped and PartiallyShipped to be requested together;
// asking for one without the other is rejected by the API.
func (c *Channel) StatusesToImport() []string {
	set := make(map[string]struct{})
	for _, state := range c.OrderStates {
		if state.Action == ActionDoNotImport {
			continue
		}
		set[state.Code] = struct{}{}
		if state.Code == "Unshipped" || state.Code == "PartiallyShipped" {
			set["Unshipped"] = struct{}{}
			set["PartiallyShipped"] = struct{}{}
		}
	}

	statuses := make([]string, 0, len(set))
	// Keep the canonical order stable for request signing and tests.
	for _, code := range AmazonOrderStatuses {
		if _, ok := set[code]; ok {
			statuses = append(statuses, code)
		}
	}
	return statuses
}

// ActionForStatus returns the configured action for an external status,
// falling back to the defaults when the channel has no explicit state row.
func (c *Channel) ActionForStatus(code string) ChannelOrderState {
	for _, state := range c.OrderStates {
		if state.Code == code {
			return state
		}
	}
	action, invoice, shipment := DefaultActionForStatus(code)
	return ChannelOrderState{
		ChannelID:      c.ID,
		Code:           code,
		Name:           code,
		Action:         action,
		InvoiceMethod:  invoice,
		ShipmentMethod: shipment,
	}
}
