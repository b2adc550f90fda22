package warehouse

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"stockbridge/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func clientConfig() config.Config {
	return config.Config{
		WarehouseAPIBaseURL: "https://warehouse.test/api",
		WarehouseAPIID:      "api-id",
		WarehouseAPIKey:     "api-key",
		WarehousePageSize:   200,
		WarehouseRateRPS:    1000,
		WarehouseTimeoutMs:  5000,
	}
}

func jsonResponse(status int, payload any) *http.Response {
	blob, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(string(blob))),
		Header:     make(http.Header),
	}
}

func TestFetchAllStockPaginates(t *testing.T) {
	client := NewClient(clientConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if !strings.HasSuffix(r.URL.Path, "/StockOnHand") {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("api-auth-id") != "api-id" {
				t.Fatalf("missing identity header")
			}
			if got, want := r.Header.Get("api-auth-signature"), Sign(r.URL.RawQuery, "api-key"); got != want {
				t.Fatalf("signature %s, want %s for query %s", got, want, r.URL.RawQuery)
			}

			page := r.URL.Query().Get("page")
			switch page {
			case "1":
				return jsonResponse(200, map[string]any{
					"Items": []map[string]any{
						{"ProductCode": "A", "QtyOnHand": 10.0},
						{"ProductCode": "B", "QtyOnHand": 2.9},
					},
					"Pagination": map[string]any{"NumberOfPages": 2},
				}), nil
			case "2":
				return jsonResponse(200, map[string]any{
					"Items":      []map[string]any{{"ProductCode": "C", "QtyOnHand": 0.0}},
					"Pagination": map[string]any{"NumberOfPages": 2},
				}), nil
			default:
				t.Fatalf("unexpected page %s", page)
				return nil, nil
			}
		}),
	}

	stock, err := client.FetchAllStock(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stock) != 3 {
		t.Fatalf("len=%d", len(stock))
	}
	// Fractional warehouse quantities floor to integers.
	if stock[1].SKU != "B" || stock[1].QtyOnHand != 2 {
		t.Fatalf("got %+v", stock[1])
	}
}

func TestFetchAllStockNon2xxFails(t *testing.T) {
	client := NewClient(clientConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(503, map[string]any{"error": "maintenance"}), nil
		}),
	}

	if _, err := client.FetchAllStock(context.Background()); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestFetchAllStockMissingCredentials(t *testing.T) {
	cfg := clientConfig()
	cfg.WarehouseAPIKey = ""
	client := NewClient(cfg)

	if _, err := client.FetchAllStock(context.Background()); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestFindCustomer(t *testing.T) {
	client := NewClient(clientConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if got := r.URL.Query().Get("customerCode"); got != "SHOPIFY-42" {
				t.Fatalf("customerCode=%s", got)
			}
			return jsonResponse(200, map[string]any{
				"Items": []map[string]any{
					{"CustomerCode": "SHOPIFY-42", "CustomerName": "Jo Nguyen", "Guid": "abc-123"},
				},
			}), nil
		}),
	}

	customer, err := client.FindCustomer(context.Background(), "SHOPIFY-42")
	if err != nil {
		t.Fatal(err)
	}
	if customer == nil || customer.Guid != "abc-123" {
		t.Fatalf("customer=%+v", customer)
	}
}

func TestFindCustomerAbsentIsNil(t *testing.T) {
	client := NewClient(clientConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(200, map[string]any{"Items": []map[string]any{}}), nil
		}),
	}

	customer, err := client.FindCustomer(context.Background(), "SHOPIFY-404")
	if err != nil {
		t.Fatal(err)
	}
	if customer != nil {
		t.Fatalf("customer=%+v", customer)
	}
}

func TestCreateSalesOrderSignsEmptyQuery(t *testing.T) {
	client := NewClient(clientConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Method != http.MethodPost {
				t.Fatalf("method=%s", r.Method)
			}
			// POST bodies are not signed; the signature covers the empty query.
			if got, want := r.Header.Get("api-auth-signature"), Sign("", "api-key"); got != want {
				t.Fatalf("signature=%s want=%s", got, want)
			}
			var order SalesOrder
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &order); err != nil {
				t.Fatal(err)
			}
			if order.CustomerRef != "999" {
				t.Fatalf("customerRef=%s", order.CustomerRef)
			}
			return jsonResponse(201, map[string]any{"Guid": "new-guid", "OrderNumber": "SO-0100"}), nil
		}),
	}

	created, err := client.CreateSalesOrder(context.Background(), SalesOrder{CustomerRef: "999"})
	if err != nil {
		t.Fatal(err)
	}
	if created.Guid != "new-guid" {
		t.Fatalf("created=%+v", created)
	}
}

func TestFindOrderByRefCaches(t *testing.T) {
	requests := 0
	client := NewClient(clientConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			requests++
			return jsonResponse(200, map[string]any{
				"Items": []map[string]any{
					{"Guid": "g1", "OrderNumber": "SO-0001", "CustomerRef": "111"},
					{"Guid": "g2", "OrderNumber": "", "CustomerRef": "222"},
				},
			}), nil
		}),
	}

	if got := client.FindOrderByRef(context.Background(), "111"); got != "SO-0001" {
		t.Fatalf("ref 111 -> %s", got)
	}
	if got := client.FindOrderByRef(context.Background(), "222"); got != "g2" {
		t.Fatalf("ref 222 -> %s", got)
	}
	if got := client.FindOrderByRef(context.Background(), "333"); got != "" {
		t.Fatalf("ref 333 -> %s", got)
	}
	if requests != 1 {
		t.Fatalf("requests=%d, want cached lookups", requests)
	}
}
