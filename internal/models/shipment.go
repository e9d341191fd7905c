package models

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentState is the outgoing shipment state machine. States advance
// strictly forward: draft, waiting, assigned, packed, done.
type ShipmentState string

const (
	ShipmentDraft    ShipmentState = "draft"
	ShipmentWaiting  ShipmentState = "waiting"
	ShipmentAssigned ShipmentState = "assigned"
	ShipmentPacked   ShipmentState = "packed"
	ShipmentDone     ShipmentState = "done"
)

// CarrierMethod identifies the carrier cost method configured on a
// shipment. The fulfillment feed maps these onto marketplace carrier codes.
type CarrierMethod string

const (
	CarrierEndicia CarrierMethod = "endicia"
	CarrierFedex   CarrierMethod = "fedex"
	CarrierUPS     CarrierMethod = "ups"
)

// Shipment is an outgoing shipment. One physical shipment may carry units
// from several orders (order merging), so orders attach through units
// rather than a direct foreign key.
type Shipment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ChannelID uuid.UUID `gorm:"type:uuid;not null;index" json:"channelId"`
	Code      string    `gorm:"type:varchar(100);not null" json:"code"`

	State       ShipmentState `gorm:"type:varchar(20);not null;default:'draft';index:idx_shipments_state" json:"state"`
	WarehouseID uuid.UUID     `gorm:"type:uuid" json:"warehouseId"`

	CarrierMethod  CarrierMethod `gorm:"type:varchar(50)" json:"carrierMethod,omitempty"`
	CarrierName    string        `gorm:"type:varchar(255)" json:"carrierName,omitempty"`
	ServiceName    string        `gorm:"type:varchar(255)" json:"serviceName,omitempty"`
	TrackingNumber string        `gorm:"type:varchar(255)" json:"trackingNumber,omitempty"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// ExportedAt records when the shipment was confirmed back to the
	// marketplace, so fulfillment feeds never repeat a confirmation.
	ExportedAt *time.Time `json:"exportedAt,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Units []ShipmentUnit `gorm:"foreignKey:ShipmentID" json:"units,omitempty"`
}

// TableName specifies the table name
func (Shipment) TableName() string {
	return "stock_shipments_out"
}

// ShipmentUnit is one outgoing quantity of an order line in a shipment.
type ShipmentUnit struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ShipmentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"shipmentId"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"orderId"`
	OrderLineID uuid.UUID `gorm:"type:uuid;not null" json:"orderLineId"`

	// ExternalLineID mirrors the order line's marketplace item id so the
	// fulfillment feed can be built without joining back to lines.
	ExternalLineID *string `gorm:"type:varchar(255)" json:"externalLineId,omitempty"`

	Quantity int `json:"quantity"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name
func (ShipmentUnit) TableName() string {
	return "stock_shipment_out_units"
}
