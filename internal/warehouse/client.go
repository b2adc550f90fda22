package warehouse

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"stockbridge/internal"
	"stockbridge/internal/config"
)

// Client talks to the warehouse API. Every request is signed with an HMAC
// over the raw query string, sent next to the API identity header.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter

	recentMu        sync.Mutex
	recentOrders    map[string]string
	recentFetchedAt time.Time
}

const recentOrdersTTL = time.Minute

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.WarehouseTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.WarehouseRateRPS),
	}
}

// FetchAllStock drains the stock-on-hand endpoint page by page. Any
// non-2xx response is returned as an error: a partial snapshot is not
// usable for reconciliation.
func (c *Client) FetchAllStock(ctx context.Context) ([]internal.StockRecord, error) {
	all := make([]internal.StockRecord, 0)
	page := 1

	for {
		items, numberOfPages, err := c.fetchStockPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			all = append(all, internal.StockRecord{
				SKU:       item.ProductCode,
				QtyOnHand: int(math.Floor(item.QtyOnHand)),
			})
		}
		if page >= numberOfPages {
			break
		}
		page++
	}

	return all, nil
}

func (c *Client) fetchStockPage(ctx context.Context, page int) ([]stockItem, int, error) {
	query := fmt.Sprintf("pageSize=%d&page=%d", c.cfg.WarehousePageSize, page)
	body, err := c.get(ctx, "StockOnHand", query)
	if err != nil {
		return nil, 0, err
	}

	var payload stockPage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, 0, fmt.Errorf("decode stock page %d: %w", page, err)
	}
	return payload.Items, payload.Pagination.NumberOfPages, nil
}

// FindCustomer looks up a customer by exact code. A missing customer is
// (nil, nil), not an error.
func (c *Client) FindCustomer(ctx context.Context, code string) (*Customer, error) {
	query := "customerCode=" + url.QueryEscape(code)
	body, err := c.get(ctx, "Customers", query)
	if err != nil {
		return nil, err
	}

	var payload customerPage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, nil
	}
	return &payload.Items[0], nil
}

func (c *Client) CreateCustomer(ctx context.Context, customer Customer) (*Customer, error) {
	body, err := c.post(ctx, "Customers", customer)
	if err != nil {
		return nil, err
	}
	var created Customer
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) CreateSalesOrder(ctx context.Context, order SalesOrder) (*CreatedOrder, error) {
	body, err := c.post(ctx, "SalesOrders", order)
	if err != nil {
		return nil, err
	}
	var created CreatedOrder
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// FindOrderByRef reports the warehouse order number already carrying the
// given external reference, or "" if none. Recent orders are cached
// briefly because batch runs probe once per order. Lookup failures are
// swallowed: a missed dedupe check must not block order submission.
func (c *Client) FindOrderByRef(ctx context.Context, externalRef string) string {
	c.recentMu.Lock()
	defer c.recentMu.Unlock()

	if c.recentOrders == nil || time.Since(c.recentFetchedAt) >= recentOrdersTTL {
		body, err := c.get(ctx, "SalesOrders", "pageSize=100")
		if err != nil {
			return ""
		}
		var payload orderListPage
		if err := json.Unmarshal(body, &payload); err != nil {
			return ""
		}
		c.recentOrders = make(map[string]string, len(payload.Items))
		for _, item := range payload.Items {
			if item.CustomerRef == "" {
				continue
			}
			ref := item.OrderNumber
			if ref == "" {
				ref = item.Guid
			}
			c.recentOrders[item.CustomerRef] = ref
		}
		c.recentFetchedAt = time.Now()
	}

	return c.recentOrders[externalRef]
}

func (c *Client) get(ctx context.Context, endpoint, rawQuery string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, rawQuery, nil)
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	blob, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, endpoint, "", blob)
}

func (c *Client) do(ctx context.Context, method, endpoint, rawQuery string, body []byte) ([]byte, error) {
	if strings.TrimSpace(c.cfg.WarehouseAPIID) == "" || strings.TrimSpace(c.cfg.WarehouseAPIKey) == "" {
		return nil, errors.New("missing WAREHOUSE_API_ID / WAREHOUSE_API_KEY")
	}

	u, err := url.Parse(strings.TrimRight(c.cfg.WarehouseAPIBaseURL, "/") + "/" + endpoint)
	if err != nil {
		return nil, err
	}
	u.RawQuery = rawQuery

	c.limiter.WaitTurn()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-auth-id", c.cfg.WarehouseAPIID)
	req.Header.Set("api-auth-signature", Sign(rawQuery, c.cfg.WarehouseAPIKey))

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
		return nil, fmt.Errorf("warehouse api error: %s %s status=%d body=%s", method, endpoint, resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// Sign computes the base64 HMAC-SHA256 of the raw query string under the
// shared API key. POST bodies are not signed; the query is empty there.
func Sign(rawQuery, apiKey string) string {
	mac := hmac.New(sha256.New, []byte(apiKey))
	mac.Write([]byte(rawQuery))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
