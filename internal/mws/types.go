package mws

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FulfillmentChannel values reported by the marketplace.
const (
	FulfilledByMarketplace = "AFN"
	FulfilledByMerchant    = "MFN"
)

// Feed types accepted by SubmitFeed.
const (
	FeedTypePricing     = "_POST_PRODUCT_PRICING_DATA_"
	FeedTypeInventory   = "_POST_INVENTORY_AVAILABILITY_DATA_"
	FeedTypeFulfillment = "_POST_ORDER_FULFILLMENT_DATA_"
)

// GetOrderMaxIDs is the per-call identifier limit of the GetOrder operation.
const GetOrderMaxIDs = 50

// API is the typed surface of the marketplace web service the engine
// consumes. Every implementation must normalize the wire format's
// single-record/list ambiguity: slices are always returned, never a bare
// record.
type API interface {
	ListOrders(ctx context.Context, marketplaceID string, updatedAfter time.Time, statuses []string) (*OrderPage, error)
	ListOrdersByNextToken(ctx context.Context, token string) (*OrderPage, error)
	GetOrder(ctx context.Context, orderIDs []string) ([]Order, error)
	ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error)
	GetMatchingProductForID(ctx context.Context, marketplaceID, idType string, ids []string) ([]ProductAttributes, error)
	SubmitFeed(ctx context.Context, envelope []byte, feedType, marketplaceID string) (*FeedSubmissionInfo, error)
	GetServiceStatus(ctx context.Context) (*ServiceStatus, error)
	GetFeedSubmissionCount(ctx context.Context) (int, error)
}

// OrderPage is one page of a paginated order listing. NextToken is empty
// on the last page.
type OrderPage struct {
	Orders    []Order
	NextToken string
}

// Address is a shipping address payload. All fields except Name may be
// empty depending on the order's fulfillment state.
type Address struct {
	Name          string
	Line1         string
	Line2         string
	City          string
	StateOrRegion string
	PostalCode    string
	CountryCode   string
	Phone         string
}

// Order is a normalized marketplace order header.
type Order struct {
	OrderID            string
	Status             string
	FulfillmentChannel string
	PurchaseDate       time.Time

	BuyerName string
	BuyerEmail string

	Total        decimal.Decimal
	CurrencyCode string

	ShipServiceLevel             string
	ShipmentServiceLevelCategory string

	// ShippingAddress is nil when the marketplace withholds it, which
	// happens for pending and marketplace-fulfilled orders.
	ShippingAddress *Address
}

// OrderItem is a normalized marketplace order line. Amounts default to
// zero when the corresponding wire element is absent.
type OrderItem struct {
	OrderItemID string
	SellerSKU   string
	ASIN        string
	Title       string
	Quantity    int

	ItemAmount        decimal.Decimal
	PromotionDiscount decimal.Decimal
	ShippingAmount    decimal.Decimal
	ShippingDiscount  decimal.Decimal
}

// ProductAttributes is the attribute payload of a matching-product lookup.
type ProductAttributes struct {
	ASIN  string
	Title string
	Brand string
}

// FeedSubmissionInfo is the acknowledgement of a submitted feed.
type FeedSubmissionInfo struct {
	SubmissionID string
	Status       string
}

// Service status codes reported by GetServiceStatus.
const (
	StatusGreen  = "GREEN"
	StatusGreenI = "GREEN_I"
	StatusYellow = "YELLOW"
	StatusRed    = "RED"
)

// ServiceStatus is the operational status of the marketplace service.
type ServiceStatus struct {
	Status   string
	Messages []string
}

// RemoteError is any failure reported by the marketplace service:
// throttling, temporary unavailability, malformed responses. The engine
// treats all of them uniformly as retryable by stopping the current loop.
type RemoteError struct {
	Op      string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("mws: %s: %s", e.Op, e.Message)
}

// IsRemoteError reports whether err is a marketplace service failure.
func IsRemoteError(err error) bool {
	_, ok := err.(*RemoteError)
	return ok
}
