package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/OffCmfrt/exchange-return-tracking/internal/config"
	"github.com/OffCmfrt/exchange-return-tracking/internal/entity"

	"github.com/patrickmn/go-cache"
)

const tokenCacheKey = "auth_token"

// ICourierClient wraps the shipping aggregator. The three operation methods
// return (nil, nil) when the aggregator rejects the payload as invalid so
// callers can degrade gracefully; transport and auth failures are errors.
type ICourierClient interface {
	CreateReversePickup(ctx context.Context, req *entity.ReturnRequest, pickupFrom Destination) (*Pickup, error)
	CreateForwardShipment(ctx context.Context, req *entity.ReturnRequest, deliverTo Destination) (*Shipment, error)
	Track(ctx context.Context, awb string) (*TrackData, error)
}

type courierClient struct {
	baseURL        string
	email          string
	password       string
	pickupLocation string
	tokenTTL       time.Duration
	httpClient     *http.Client
	tokens         *cache.Cache
}

func NewCourierClient(cfg config.CourierConfig) ICourierClient {
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	// Expire the cached token slightly early so a stale bearer is never sent.
	cacheTTL := ttl - time.Hour
	if cacheTTL <= 0 {
		cacheTTL = ttl
	}
	return &courierClient{
		baseURL:        cfg.BaseURL,
		email:          cfg.Email,
		password:       cfg.Password,
		pickupLocation: cfg.PickupLocation,
		tokenTTL:       ttl,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		tokens:         cache.New(cacheTTL, 10*time.Minute),
	}
}

// token returns a cached bearer token, logging in again when absent or
// expired. Two goroutines may both refresh; the race is benign, the last
// write wins and both tokens are valid.
func (c *courierClient) token(ctx context.Context) (string, error) {
	if t, found := c.tokens.Get(tokenCacheKey); found {
		return t.(string), nil
	}

	payload := map[string]string{"email": c.email, "password": c.password}
	body, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/external/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("courier auth failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("courier auth rejected (%d): %s", resp.StatusCode, string(raw))
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("courier auth response invalid: %w", err)
	}
	if auth.Token == "" {
		return "", fmt.Errorf("courier auth returned empty token")
	}

	c.tokens.Set(tokenCacheKey, auth.Token, cache.DefaultExpiration)
	return auth.Token, nil
}

// post sends an authenticated JSON request. A 401 invalidates the cached
// token and retries once with a fresh login. Responses in the 4xx range
// (other than 401) are reported as (nil, false, nil): remote validation
// errors the caller should swallow.
func (c *courierClient) post(ctx context.Context, path string, payload interface{}) (body []byte, accepted bool, err error) {
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *courierClient) get(ctx context.Context, path string) (body []byte, accepted bool, err error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *courierClient) do(ctx context.Context, method, path string, payload interface{}) ([]byte, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		tok, err := c.token(ctx)
		if err != nil {
			return nil, false, err
		}

		var reader io.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			if err != nil {
				return nil, false, err
			}
			reader = bytes.NewReader(raw)
		}

		httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, false, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+tok)

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return nil, false, fmt.Errorf("courier request failed: %w", err)
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, false, err
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			// Stale token; refresh and retry once.
			c.tokens.Delete(tokenCacheKey)
			continue
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return raw, true, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return raw, false, nil
		default:
			return nil, false, fmt.Errorf("courier responded %d: %s", resp.StatusCode, string(raw))
		}
	}
	return nil, false, fmt.Errorf("courier auth retry exhausted")
}

func (c *courierClient) CreateReversePickup(ctx context.Context, req *entity.ReturnRequest, pickupFrom Destination) (*Pickup, error) {
	payload := map[string]interface{}{
		"order_id":             req.RequestID,
		"order_date":           req.CreatedAt.Format("2006-01-02"),
		"pickup_location":      c.pickupLocation,
		"channel":              "custom",
		"pickup_customer_name": pickupFrom.Name,
		"pickup_phone":         pickupFrom.Phone,
		"pickup_email":         pickupFrom.Email,
		"pickup_address":       pickupFrom.Address,
		"pickup_city":          pickupFrom.City,
		"pickup_state":         pickupFrom.State,
		"pickup_pincode":       pickupFrom.Pincode,
		"pickup_country":       "India",
		"order_items":          shipmentItems(req.Items),
		"payment_method":       "Prepaid",
		"sub_total":            itemsTotal(req.Items),
	}

	raw, accepted, err := c.post(ctx, "/v1/external/orders/create/return", payload)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, nil
	}

	var res returnOrderResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("courier return-order response invalid: %w", err)
	}
	return &Pickup{
		ShipmentID: strconv.FormatInt(res.ShipmentID, 10),
		AWBNumber:  res.AWBCode,
		PickupDate: res.PickupDate,
	}, nil
}

func (c *courierClient) CreateForwardShipment(ctx context.Context, req *entity.ReturnRequest, deliverTo Destination) (*Shipment, error) {
	payload := map[string]interface{}{
		"order_id":              req.RequestID + "-FWD",
		"order_date":            time.Now().Format("2006-01-02"),
		"pickup_location":       c.pickupLocation,
		"channel":               "custom",
		"billing_customer_name": deliverTo.Name,
		"billing_phone":         deliverTo.Phone,
		"billing_email":         deliverTo.Email,
		"billing_address":       deliverTo.Address,
		"billing_city":          deliverTo.City,
		"billing_state":         deliverTo.State,
		"billing_pincode":       deliverTo.Pincode,
		"billing_country":       "India",
		"shipping_is_billing":   true,
		"order_items":           shipmentItems(req.Items),
		"payment_method":        "Prepaid",
		"sub_total":             itemsTotal(req.Items),
	}

	raw, accepted, err := c.post(ctx, "/v1/external/orders/create/adhoc", payload)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, nil
	}

	var res forwardOrderResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("courier forward-order response invalid: %w", err)
	}
	return &Shipment{
		ShipmentID: strconv.FormatInt(res.ShipmentID, 10),
		AWBNumber:  res.AWBCode,
	}, nil
}

func (c *courierClient) Track(ctx context.Context, awb string) (*TrackData, error) {
	raw, accepted, err := c.get(ctx, "/v1/external/courier/track/awb/"+awb)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, nil
	}

	var res trackResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("courier track response invalid: %w", err)
	}
	if len(res.TrackingData.ShipmentTrack) == 0 {
		return nil, nil
	}

	track := res.TrackingData.ShipmentTrack[0]
	return &TrackData{
		AWBNumber:     track.AWBCode,
		CurrentStatus: track.CurrentStatus,
		Origin:        track.Origin,
		Destination:   track.Destination,
		ETA:           track.EDD,
		Activities:    res.TrackingData.ShipmentTrackActivities,
	}, nil
}

func shipmentItems(items []entity.RequestItem) []ShipmentItem {
	out := make([]ShipmentItem, 0, len(items))
	for _, it := range items {
		name := it.Title
		if it.VariantTitle != "" {
			name = name + " / " + it.VariantTitle
		}
		out = append(out, ShipmentItem{
			Name:  name,
			SKU:   strconv.FormatInt(it.VariantID, 10),
			Units: it.Quantity,
			Price: it.Price,
		})
	}
	return out
}

func itemsTotal(items []entity.RequestItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}
