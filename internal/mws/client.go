package mws

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://mws.amazonservices.com"

// API section paths and versions.
var (
	sectionOrders   = apiSection{path: "/Orders/2013-09-01", version: "2013-09-01"}
	sectionProducts = apiSection{path: "/Products/2011-10-01", version: "2011-10-01"}
	sectionFeeds    = apiSection{path: "/Feeds/2009-01-01", version: "2009-01-01"}
)

type apiSection struct {
	path    string
	version string
}

// Credentials is an MWS seller credential set.
type Credentials struct {
	AccessKey  string
	SecretKey  string
	MerchantID string
}

// Client is the HTTP implementation of the marketplace web service. All
// requests are signed with Signature Version 2 and pass through a shared
// rate limiter, since the service throttles aggressively.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	creds       Credentials
	rateLimiter *rate.Limiter
	retry       retryPolicy
}

var _ API = (*Client)(nil)

// NewClient creates a marketplace client for a credential set. An empty
// endpoint selects the production endpoint; tests point it at a local
// server.
func NewClient(creds Credentials, endpoint string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		endpoint:    endpoint,
		creds:       creds,
		rateLimiter: rate.NewLimiter(rate.Limit(2), 5),
		retry:       defaultRetryPolicy(),
	}
}

// ListOrders lists orders updated after the given time, filtered by status.
func (c *Client) ListOrders(ctx context.Context, marketplaceID string, updatedAfter time.Time, statuses []string) (*OrderPage, error) {
	params := url.Values{}
	params.Set("MarketplaceId.Id.1", marketplaceID)
	params.Set("LastUpdatedAfter", updatedAfter.UTC().Format(time.RFC3339))
	for i, status := range statuses {
		params.Set(fmt.Sprintf("OrderStatus.Status.%d", i+1), status)
	}

	body, err := c.doRequest(ctx, sectionOrders, "ListOrders", params, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Result struct {
			Orders    []xmlOrder `xml:"Orders>Order"`
			NextToken string     `xml:"NextToken"`
		} `xml:"ListOrdersResult"`
	}
	if err := xml.Unmarshal(body, &response); err != nil {
		return nil, &RemoteError{Op: "ListOrders", Message: err.Error()}
	}

	return &OrderPage{
		Orders:    normalizeOrders(response.Result.Orders),
		NextToken: response.Result.NextToken,
	}, nil
}

// ListOrdersByNextToken fetches the next page of a prior ListOrders call.
func (c *Client) ListOrdersByNextToken(ctx context.Context, token string) (*OrderPage, error) {
	params := url.Values{}
	params.Set("NextToken", token)

	body, err := c.doRequest(ctx, sectionOrders, "ListOrdersByNextToken", params, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Result struct {
			Orders    []xmlOrder `xml:"Orders>Order"`
			NextToken string     `xml:"NextToken"`
		} `xml:"ListOrdersByNextTokenResult"`
	}
	if err := xml.Unmarshal(body, &response); err != nil {
		return nil, &RemoteError{Op: "ListOrdersByNextToken", Message: err.Error()}
	}

	return &OrderPage{
		Orders:    normalizeOrders(response.Result.Orders),
		NextToken: response.Result.NextToken,
	}, nil
}

// GetOrder fetches up to GetOrderMaxIDs orders by id.
func (c *Client) GetOrder(ctx context.Context, orderIDs []string) ([]Order, error) {
	if len(orderIDs) > GetOrderMaxIDs {
		return nil, fmt.Errorf("mws: GetOrder accepts at most %d ids, got %d", GetOrderMaxIDs, len(orderIDs))
	}

	params := url.Values{}
	for i, id := range orderIDs {
		params.Set(fmt.Sprintf("AmazonOrderId.Id.%d", i+1), id)
	}

	body, err := c.doRequest(ctx, sectionOrders, "GetOrder", params, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Result struct {
			Orders []xmlOrder `xml:"Orders>Order"`
		} `xml:"GetOrderResult"`
	}
	if err := xml.Unmarshal(body, &response); err != nil {
		return nil, &RemoteError{Op: "GetOrder", Message: err.Error()}
	}

	return normalizeOrders(response.Result.Orders), nil
}

// ListOrderItems lists the line items of a single order.
func (c *Client) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	params := url.Values{}
	params.Set("AmazonOrderId", orderID)

	body, err := c.doRequest(ctx, sectionOrders, "ListOrderItems", params, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Result struct {
			Items []xmlOrderItem `xml:"OrderItems>OrderItem"`
		} `xml:"ListOrderItemsResult"`
	}
	if err := xml.Unmarshal(body, &response); err != nil {
		return nil, &RemoteError{Op: "ListOrderItems", Message: err.Error()}
	}

	items := make([]OrderItem, 0, len(response.Result.Items))
	for _, item := range response.Result.Items {
		items = append(items, OrderItem{
			OrderItemID:       item.OrderItemID,
			SellerSKU:         item.SellerSKU,
			ASIN:              item.ASIN,
			Title:             item.Title,
			Quantity:          item.QuantityOrdered,
			ItemAmount:        parseAmount(item.ItemPrice.Amount),
			PromotionDiscount: parseAmount(item.PromotionDiscount.Amount),
			ShippingAmount:    parseAmount(item.ShippingPrice.Amount),
			ShippingDiscount:  parseAmount(item.ShippingDiscount.Amount),
		})
	}
	return items, nil
}

// GetMatchingProductForID fetches product attribute payloads for external
// identifiers of the given type (SellerSKU, ASIN, UPC and so on).
func (c *Client) GetMatchingProductForID(ctx context.Context, marketplaceID, idType string, ids []string) ([]ProductAttributes, error) {
	params := url.Values{}
	params.Set("MarketplaceId", marketplaceID)
	params.Set("IdType", idType)
	for i, id := range ids {
		params.Set(fmt.Sprintf("IdList.Id.%d", i+1), id)
	}

	body, err := c.doRequest(ctx, sectionProducts, "GetMatchingProductForId", params, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Results []struct {
			Products []struct {
				ASIN  string `xml:"Identifiers>MarketplaceASIN>ASIN"`
				Title string `xml:"AttributeSets>ItemAttributes>Title"`
				Brand string `xml:"AttributeSets>ItemAttributes>Brand"`
			} `xml:"Products>Product"`
		} `xml:"GetMatchingProductForIdResult"`
	}
	if err := xml.Unmarshal(body, &response); err != nil {
		return nil, &RemoteError{Op: "GetMatchingProductForId", Message: err.Error()}
	}

	var attrs []ProductAttributes
	for _, result := range response.Results {
		for _, product := range result.Products {
			attrs = append(attrs, ProductAttributes{
				ASIN:  product.ASIN,
				Title: product.Title,
				Brand: product.Brand,
			})
		}
	}
	return attrs, nil
}

// SubmitFeed submits a feed envelope document.
func (c *Client) SubmitFeed(ctx context.Context, envelope []byte, feedType, marketplaceID string) (*FeedSubmissionInfo, error) {
	params := url.Values{}
	params.Set("FeedType", feedType)
	params.Set("MarketplaceIdList.Id.1", marketplaceID)

	sum := md5.Sum(envelope)
	params.Set("ContentMD5Value", base64.StdEncoding.EncodeToString(sum[:]))

	body, err := c.doRequest(ctx, sectionFeeds, "SubmitFeed", params, envelope)
	if err != nil {
		return nil, err
	}

	var response struct {
		Result struct {
			Info struct {
				SubmissionID string `xml:"FeedSubmissionId"`
				Status       string `xml:"FeedProcessingStatus"`
			} `xml:"FeedSubmissionInfo"`
		} `xml:"SubmitFeedResult"`
	}
	if err := xml.Unmarshal(body, &response); err != nil {
		return nil, &RemoteError{Op: "SubmitFeed", Message: err.Error()}
	}

	return &FeedSubmissionInfo{
		SubmissionID: response.Result.Info.SubmissionID,
		Status:       response.Result.Info.Status,
	}, nil
}

// GetServiceStatus fetches the operational status of the order service.
func (c *Client) GetServiceStatus(ctx context.Context) (*ServiceStatus, error) {
	body, err := c.doRequest(ctx, sectionOrders, "GetServiceStatus", url.Values{}, nil)
	if err != nil {
		return nil, err
	}

	var response struct {
		Result struct {
			Status   string `xml:"Status"`
			Messages []struct {
				Text string `xml:"Text"`
			} `xml:"Messages>Message"`
		} `xml:"GetServiceStatusResult"`
	}
	if err := xml.Unmarshal(body, &response); err != nil {
		return nil, &RemoteError{Op: "GetServiceStatus", Message: err.Error()}
	}

	status := &ServiceStatus{Status: response.Result.Status}
	for _, message := range response.Result.Messages {
		status.Messages = append(status.Messages, message.Text)
	}
	return status, nil
}

// GetFeedSubmissionCount returns the number of feed submissions on record.
// Its only use is as a cheap credential health check.
func (c *Client) GetFeedSubmissionCount(ctx context.Context) (int, error) {
	body, err := c.doRequest(ctx, sectionFeeds, "GetFeedSubmissionCount", url.Values{}, nil)
	if err != nil {
		return 0, err
	}

	var response struct {
		Result struct {
			Count int `xml:"Count"`
		} `xml:"GetFeedSubmissionCountResult"`
	}
	if err := xml.Unmarshal(body, &response); err != nil {
		return 0, &RemoteError{Op: "GetFeedSubmissionCount", Message: err.Error()}
	}
	return response.Result.Count, nil
}

// doRequest performs a signed request against one API section. A non-nil
// body is sent as the request payload (feed submissions); everything else
// travels in the signed query string. Throttled and server-side failures
// are retried with exponential backoff.
func (c *Client) doRequest(ctx context.Context, section apiSection, action string, params url.Values, body []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		respBody, retryAfter, err := c.attempt(ctx, section, action, params, body)
		if err == nil {
			return respBody, nil
		}
		lastErr = err

		var remote *retryableError
		if !errors.As(err, &remote) || attempt == c.retry.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retry.backoff(attempt, retryAfter)):
		}
	}

	var remote *retryableError
	if errors.As(lastErr, &remote) {
		return nil, remote.cause
	}
	return nil, lastErr
}

// retryableError wraps a RemoteError that is worth another attempt.
type retryableError struct {
	cause *RemoteError
}

func (e *retryableError) Error() string { return e.cause.Error() }

// attempt performs a single signed request. Each attempt carries a fresh
// timestamp and signature.
func (c *Client) attempt(ctx context.Context, section apiSection, action string, params url.Values, body []byte) ([]byte, time.Duration, error) {
	params.Set("Action", action)
	params.Set("AWSAccessKeyId", c.creds.AccessKey)
	params.Set("SellerId", c.creds.MerchantID)
	params.Set("SignatureMethod", "HmacSHA256")
	params.Set("SignatureVersion", "2")
	params.Set("Timestamp", time.Now().UTC().Format(time.RFC3339))
	params.Set("Version", section.version)
	params.Set("Signature", c.sign(section.path, params))

	fullURL := c.endpoint + section.path + "?" + params.Encode()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	} else {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &retryableError{cause: &RemoteError{Op: action, Message: err.Error()}}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &retryableError{cause: &RemoteError{Op: action, Message: err.Error()}}
	}

	if resp.StatusCode >= 400 {
		remote := &RemoteError{Op: action, Message: parseErrorMessage(resp.StatusCode, respBody)}
		if retryableStatus(resp.StatusCode) {
			return nil, parseRetryAfter(resp), &retryableError{cause: remote}
		}
		return nil, 0, remote
	}
	return respBody, 0, nil
}

// sign computes the Signature Version 2 request signature.
func (c *Client) sign(path string, params url.Values) string {
	host := strings.TrimPrefix(strings.TrimPrefix(c.endpoint, "https://"), "http://")
	toSign := strings.Join([]string{http.MethodPost, host, path, params.Encode()}, "\n")

	mac := hmac.New(sha256.New, []byte(c.creds.SecretKey))
	mac.Write([]byte(toSign))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// parseErrorMessage extracts the message of an error response document.
func parseErrorMessage(statusCode int, body []byte) string {
	var response struct {
		Error struct {
			Code    string `xml:"Code"`
			Message string `xml:"Message"`
		} `xml:"Error"`
	}
	if err := xml.Unmarshal(body, &response); err == nil && response.Error.Message != "" {
		return fmt.Sprintf("%s: %s", response.Error.Code, response.Error.Message)
	}
	return fmt.Sprintf("status %d: %s", statusCode, strings.TrimSpace(string(body)))
}

// Wire-format structs. The service returns a bare record where a list has
// one element; encoding/xml decodes both shapes into slices, which is the
// normalization the engine relies on.

type xmlMoney struct {
	Amount       string `xml:"Amount"`
	CurrencyCode string `xml:"CurrencyCode"`
}

type xmlAddress struct {
	Name          string `xml:"Name"`
	AddressLine1  string `xml:"AddressLine1"`
	AddressLine2  string `xml:"AddressLine2"`
	City          string `xml:"City"`
	StateOrRegion string `xml:"StateOrRegion"`
	PostalCode    string `xml:"PostalCode"`
	CountryCode   string `xml:"CountryCode"`
	Phone         string `xml:"Phone"`
}

type xmlOrder struct {
	AmazonOrderID                string      `xml:"AmazonOrderId"`
	OrderStatus                  string      `xml:"OrderStatus"`
	FulfillmentChannel           string      `xml:"FulfillmentChannel"`
	PurchaseDate                 time.Time   `xml:"PurchaseDate"`
	BuyerName                    string      `xml:"BuyerName"`
	BuyerEmail                   string      `xml:"BuyerEmail"`
	OrderTotal                   xmlMoney    `xml:"OrderTotal"`
	ShipServiceLevel             string      `xml:"ShipServiceLevel"`
	ShipmentServiceLevelCategory string      `xml:"ShipmentServiceLevelCategory"`
	ShippingAddress              *xmlAddress `xml:"ShippingAddress"`
}

type xmlOrderItem struct {
	OrderItemID       string   `xml:"OrderItemId"`
	SellerSKU         string   `xml:"SellerSKU"`
	ASIN              string   `xml:"ASIN"`
	Title             string   `xml:"Title"`
	QuantityOrdered   int      `xml:"QuantityOrdered"`
	ItemPrice         xmlMoney `xml:"ItemPrice"`
	PromotionDiscount xmlMoney `xml:"PromotionDiscount"`
	ShippingPrice     xmlMoney `xml:"ShippingPrice"`
	ShippingDiscount  xmlMoney `xml:"ShippingDiscount"`
}

func normalizeOrders(raw []xmlOrder) []Order {
	orders := make([]Order, 0, len(raw))
	for _, o := range raw {
		order := Order{
			OrderID:                      o.AmazonOrderID,
			Status:                       o.OrderStatus,
			FulfillmentChannel:           o.FulfillmentChannel,
			PurchaseDate:                 o.PurchaseDate,
			BuyerName:                    o.BuyerName,
			BuyerEmail:                   o.BuyerEmail,
			Total:                        parseAmount(o.OrderTotal.Amount),
			CurrencyCode:                 o.OrderTotal.CurrencyCode,
			ShipServiceLevel:             o.ShipServiceLevel,
			ShipmentServiceLevelCategory: o.ShipmentServiceLevelCategory,
		}
		if o.ShippingAddress != nil {
			order.ShippingAddress = &Address{
				Name:          o.ShippingAddress.Name,
				Line1:         o.ShippingAddress.AddressLine1,
				Line2:         o.ShippingAddress.AddressLine2,
				City:          o.ShippingAddress.City,
				StateOrRegion: o.ShippingAddress.StateOrRegion,
				PostalCode:    o.ShippingAddress.PostalCode,
				CountryCode:   o.ShippingAddress.CountryCode,
				Phone:         o.ShippingAddress.Phone,
			}
		}
		orders = append(orders, order)
	}
	return orders
}

// parseAmount parses a wire amount, treating absent elements as zero.
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		// Some sandbox responses carry locale formatting; fall back to
		// float parsing before giving up.
		if f, ferr := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); ferr == nil {
			return decimal.NewFromFloat(f)
		}
		return decimal.Zero
	}
	return amount
}
