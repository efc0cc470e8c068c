package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OffCmfrt/exchange-return-tracking/internal/config"
)

// ICommerceClient is the read-mostly storefront adapter. FindOrder returns
// (nil, nil) when no order matches; CreateReplacementOrder is only used by
// the exchange approval flow.
type ICommerceClient interface {
	FindOrder(ctx context.Context, orderNumber, emailOrPhone string) (*Order, error)
	FetchVariants(ctx context.Context, productID int64) ([]Variant, error)
	CreateReplacementOrder(ctx context.Context, original *Order, items []ReplacementItem, note string) (orderID int64, err error)
}

type commerceClient struct {
	storeDomain string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
}

func NewCommerceClient(cfg config.CommerceConfig) ICommerceClient {
	return &commerceClient{
		storeDomain: cfg.StoreDomain,
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		httpClient:  &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *commerceClient) endpoint(path string) string {
	return fmt.Sprintf("https://%s/admin/api/%s%s", c.storeDomain, c.apiVersion, path)
}

// FindOrder looks the order up by its display number. The platform is
// inconsistent about the leading "#": depending on how the order was
// created, the name may or may not carry it, so a miss on the supplied form
// retries the alternate form before giving up.
func (c *commerceClient) FindOrder(ctx context.Context, orderNumber, emailOrPhone string) (*Order, error) {
	forms := []string{orderNumber}
	if strings.HasPrefix(orderNumber, "#") {
		forms = append(forms, strings.TrimPrefix(orderNumber, "#"))
	} else {
		forms = append(forms, "#"+orderNumber)
	}

	for _, form := range forms {
		orders, err := c.ordersByName(ctx, form)
		if err != nil {
			return nil, err
		}
		for i := range orders {
			if MatchesContact(&orders[i], emailOrPhone) {
				return &orders[i], nil
			}
		}
	}
	return nil, nil
}

func (c *commerceClient) ordersByName(ctx context.Context, name string) ([]Order, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("status", "any")

	raw, err := c.get(ctx, "/orders.json?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var res ordersResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("orders response invalid: %w", err)
	}
	return res.Orders, nil
}

func (c *commerceClient) FetchVariants(ctx context.Context, productID int64) ([]Variant, error) {
	raw, err := c.get(ctx, fmt.Sprintf("/products/%d.json", productID))
	if err != nil {
		return nil, err
	}

	var res productResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("product response invalid: %w", err)
	}
	return res.Product.Variants, nil
}

// CreateReplacementOrder places a zero-charge replacement order for an
// approved exchange. Tags carry the originating order name so support can
// trace it back.
func (c *commerceClient) CreateReplacementOrder(ctx context.Context, original *Order, items []ReplacementItem, note string) (int64, error) {
	lineItems := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		lineItems = append(lineItems, map[string]interface{}{
			"variant_id": it.VariantID,
			"quantity":   it.Quantity,
			"price":      "0.00",
		})
	}

	payload := map[string]interface{}{
		"order": map[string]interface{}{
			"email":               original.Email,
			"line_items":          lineItems,
			"financial_status":    "paid",
			"tags":                "exchange-replacement," + original.Name,
			"note":                note,
			"shipping_address":    original.ShippingTo,
			"send_receipt":        false,
			"inventory_behaviour": "decrement_obeying_policy",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/orders.json"), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("create order failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("create order rejected (%d): %s", resp.StatusCode, string(raw))
	}

	var res createOrderResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return 0, fmt.Errorf("create order response invalid: %w", err)
	}
	return res.Order.ID, nil
}

func (c *commerceClient) get(ctx context.Context, path string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("storefront request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("storefront responded %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func (c *commerceClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
}
