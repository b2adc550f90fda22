package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stockbridge/internal"
	"stockbridge/internal/config"
)

// Client talks to the storefront admin API with a static access token.
// Reads use since_id cursor pagination; a fixed delay follows every page
// and every write, as a floor under the platform's rate limit.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.StorefrontTimeoutMs) * time.Millisecond},
	}
}

// FetchAllVariants flattens the product snapshot into variant records.
// Variants without a SKU are dropped here; they cannot be correlated.
func (c *Client) FetchAllVariants(ctx context.Context) ([]internal.Variant, error) {
	all := make([]internal.Variant, 0)
	var sinceID int64

	for {
		products, err := c.fetchProductPage(ctx, sinceID)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			break
		}

		for _, product := range products {
			if product.ID > sinceID {
				sinceID = product.ID
			}
			for _, variant := range product.Variants {
				if strings.TrimSpace(variant.SKU) == "" {
					continue
				}
				all = append(all, internal.Variant{
					SKU:             variant.SKU,
					InventoryItemID: variant.InventoryItemID,
					ProductID:       product.ID,
					VariantID:       variant.ID,
					ProductTitle:    product.Title,
					VariantTitle:    variant.Title,
					Quantity:        variant.InventoryQuantity,
					Policy:          internal.OversellPolicy(variant.InventoryPolicy),
				})
			}
		}

		c.pause(ctx, c.cfg.StorefrontPageDelayMs)
	}

	return all, nil
}

func (c *Client) fetchProductPage(ctx context.Context, sinceID int64) ([]productPayload, error) {
	path := fmt.Sprintf("products.json?limit=250&since_id=%d", sinceID)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var payload productsPage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode products page since_id=%d: %w", sinceID, err)
	}
	return payload.Products, nil
}

// SetInventoryLevel sets the absolute available quantity of one inventory
// item at one location. The call is idempotent.
func (c *Client) SetInventoryLevel(ctx context.Context, inventoryItemID, locationID int64, available int) error {
	payload := map[string]any{
		"inventory_item_id": inventoryItemID,
		"location_id":       locationID,
		"available":         available,
	}
	if _, err := c.post(ctx, "inventory_levels/set.json", payload); err != nil {
		return err
	}
	c.pause(ctx, c.cfg.StorefrontWriteDelayMs)
	return nil
}

// FetchRecentOrders returns orders of any status created at or after
// since. A zero since fetches the most recent page without a time filter.
func (c *Client) FetchRecentOrders(ctx context.Context, since time.Time, limit int) ([]internal.Order, error) {
	path := fmt.Sprintf("orders.json?limit=%d&status=any", limit)
	if !since.IsZero() {
		path += "&created_at_min=" + since.UTC().Format(time.RFC3339)
	}
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var payload ordersPage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	orders := make([]internal.Order, 0, len(payload.Orders))
	for _, raw := range payload.Orders {
		orders = append(orders, raw.toOrder())
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*internal.Order, error) {
	body, err := c.get(ctx, fmt.Sprintf("orders/%d.json", id))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Order orderPayload `json:"order"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	order := payload.Order.toOrder()
	return &order, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	blob, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, path, blob)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if strings.TrimSpace(c.cfg.StorefrontDomain) == "" {
		return nil, errors.New("missing STOREFRONT_SHOP_DOMAIN")
	}
	if strings.TrimSpace(c.cfg.StorefrontAccessToken) == "" {
		return nil, errors.New("missing STOREFRONT_ACCESS_TOKEN")
	}

	url := fmt.Sprintf("https://%s/admin/api/%s/%s", c.cfg.StorefrontDomain, c.cfg.StorefrontAPIVersion, path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", c.cfg.StorefrontAccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("storefront api error: %s %s status=%d body=%s", method, path, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

func (c *Client) pause(ctx context.Context, delayMs int) {
	if delayMs <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(delayMs) * time.Millisecond):
	}
}
