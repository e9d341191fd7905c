package feeds

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Feed message types accepted by the envelope schema.
const (
	MessageTypePrice            = "Price"
	MessageTypeInventory        = "Inventory"
	MessageTypeOrderFulfillment = "OrderFulfillment"
)

const documentVersion = "1.01"

// Envelope is the feed document wrapper every submission shares. It is
// built through NewEnvelope and AddMessage so message ids stay sequential.
type Envelope struct {
	XMLName         xml.Name `xml:"AmazonEnvelope"`
	XSINamespace    string   `xml:"xmlns:xsi,attr"`
	SchemaLocation  string   `xml:"xsi:noNamespaceSchemaLocation,attr"`
	Header          Header   `xml:"Header"`
	MessageType     string   `xml:"MessageType"`
	PurgeAndReplace bool     `xml:"PurgeAndReplace"`
	Messages        []Message `xml:"Message"`
}

// Header identifies the merchant and schema version of a feed document.
type Header struct {
	DocumentVersion    string `xml:"DocumentVersion"`
	MerchantIdentifier string `xml:"MerchantIdentifier"`
}

// Message is one envelope entry. Exactly one payload pointer is set,
// matching the envelope's MessageType.
type Message struct {
	MessageID        int               `xml:"MessageID"`
	Price            *PriceMessage     `xml:"Price,omitempty"`
	Inventory        *InventoryMessage `xml:"Inventory,omitempty"`
	OrderFulfillment *FulfillmentMessage `xml:"OrderFulfillment,omitempty"`
}

// PriceMessage publishes the standard price of one listing.
type PriceMessage struct {
	SKU           string        `xml:"SKU"`
	StandardPrice StandardPrice `xml:"StandardPrice"`
}

// StandardPrice carries an amount with its currency attribute.
type StandardPrice struct {
	Currency string `xml:"currency,attr"`
	Amount   string `xml:",chardata"`
}

// NewStandardPrice formats a decimal amount with two fraction digits.
func NewStandardPrice(amount decimal.Decimal, currency string) StandardPrice {
	return StandardPrice{Currency: currency, Amount: amount.StringFixed(2)}
}

// InventoryMessage publishes the available quantity of one listing.
// FulfillmentLatency is the channel's delivery lead time in days.
type InventoryMessage struct {
	SKU                string `xml:"SKU"`
	Quantity           int    `xml:"Quantity"`
	FulfillmentLatency int    `xml:"FulfillmentLatency,omitempty"`
}

// FulfillmentMessage confirms the shipment of one order.
type FulfillmentMessage struct {
	AmazonOrderID   string           `xml:"AmazonOrderID"`
	FulfillmentDate string           `xml:"FulfillmentDate"`
	FulfillmentData FulfillmentData  `xml:"FulfillmentData"`
	Items           []FulfillmentItem `xml:"Item"`
}

// FulfillmentData names the carrier used for a shipment. CarrierCode is
// set for carriers the schema enumerates; anything else travels as
// CarrierName.
type FulfillmentData struct {
	CarrierCode           string `xml:"CarrierCode,omitempty"`
	CarrierName           string `xml:"CarrierName,omitempty"`
	ShippingMethod        string `xml:"ShippingMethod,omitempty"`
	ShipperTrackingNumber string `xml:"ShipperTrackingNumber,omitempty"`
}

// FulfillmentItem confirms shipped quantity for one order line.
type FulfillmentItem struct {
	AmazonOrderItemCode string `xml:"AmazonOrderItemCode"`
	Quantity            int    `xml:"Quantity"`
}

// FormatFulfillmentDate renders a timestamp the way the fulfillment
// schema expects it.
func FormatFulfillmentDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NewEnvelope creates an empty envelope of the given message type for a
// merchant.
func NewEnvelope(merchantID, messageType string) *Envelope {
	return &Envelope{
		XSINamespace:   "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: "amznenvelope.xsd",
		Header: Header{
			DocumentVersion:    documentVersion,
			MerchantIdentifier: merchantID,
		},
		MessageType:     messageType,
		PurgeAndReplace: false,
	}
}

// AddMessage appends a payload with the next sequential message id.
func (e *Envelope) AddMessage(m Message) {
	m.MessageID = len(e.Messages) + 1
	e.Messages = append(e.Messages, m)
}

// Empty reports whether the envelope carries no messages. Empty
// envelopes are never submitted.
func (e *Envelope) Empty() bool {
	return len(e.Messages) == 0
}

// Build renders the envelope as an XML document.
func (e *Envelope) Build() ([]byte, error) {
	body, err := xml.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render %s envelope: %w", e.MessageType, err)
	}
	return append([]byte(xml.Header), body...), nil
}
