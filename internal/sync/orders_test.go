package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockbridge/internal"
	"stockbridge/internal/config"
	"stockbridge/internal/warehouse"
)

type fakeGateway struct {
	customers      map[string]*warehouse.Customer
	createdOrders  []warehouse.SalesOrder
	createErr      error
	failRef        string
	findCalls      int
	createCusCalls int
	existingRefs   map[string]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{customers: map[string]*warehouse.Customer{}, existingRefs: map[string]string{}}
}

func (g *fakeGateway) FindCustomer(_ context.Context, code string) (*warehouse.Customer, error) {
	g.findCalls++
	return g.customers[code], nil
}

func (g *fakeGateway) CreateCustomer(_ context.Context, customer warehouse.Customer) (*warehouse.Customer, error) {
	g.createCusCalls++
	customer.Guid = "cus-" + customer.CustomerCode
	g.customers[customer.CustomerCode] = &customer
	return &customer, nil
}

func (g *fakeGateway) CreateSalesOrder(_ context.Context, order warehouse.SalesOrder) (*warehouse.CreatedOrder, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.failRef != "" && order.CustomerRef == g.failRef {
		return nil, errors.New("rejected " + g.failRef)
	}
	g.createdOrders = append(g.createdOrders, order)
	return &warehouse.CreatedOrder{Guid: "so-guid-1", OrderNumber: "SO-0001"}, nil
}

func (g *fakeGateway) FindOrderByRef(_ context.Context, ref string) string {
	return g.existingRefs[ref]
}

type fakeOrderSource struct {
	orders []internal.Order
	err    error
}

func (f fakeOrderSource) FetchRecentOrders(context.Context, time.Time, int) ([]internal.Order, error) {
	return f.orders, f.err
}

func (f fakeOrderSource) GetOrder(_ context.Context, id int64) (*internal.Order, error) {
	for _, order := range f.orders {
		if order.ID == id {
			return &order, nil
		}
	}
	return nil, errors.New("order not found")
}

func orderConfig() config.Config {
	return config.Config{
		StoreName:          "teststore",
		StoreDisplayName:   "Test Store",
		CustomerCodePrefix: "SHOPIFY-",
		TaxCode:            "G.S.T.",
		CurrencyCode:       "AUD",
		DeliveryMethod:     "Shipping",
		OrderLookbackHours: 24,
		OrderFetchLimit:    50,
	}
}

func testOrder() internal.Order {
	return internal.Order{
		ID:          111222333,
		OrderNumber: 1042,
		Email:       "jo@example.com",
		Customer:    internal.Customer{ID: 555, FirstName: "Jo", LastName: "Nguyen", Email: "jo@example.com"},
		LineItems: []internal.LineItem{
			{SKU: "BUNDLE1", Title: "Starter Kit", Quantity: 1, Price: "49.95"},
			{SKU: "PLAIN", Title: "Plain", Quantity: 2, Price: "10.00"},
		},
		ShippingAddress: &internal.Address{
			Name: "Jo Nguyen", Address1: "1 Main St", City: "Melbourne", Province: "VIC", Zip: "3000", Country: "Australia",
		},
		FinancialStatus: "paid",
		CreatedAt:       time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
	}
}

func testMappings() []internal.BundleMapping {
	return []internal.BundleMapping{
		{Store: "teststore", StorefrontSKU: "BUNDLE1", WarehouseSKU: "X", ComponentQty: 2, Active: true},
		{Store: "teststore", StorefrontSKU: "BUNDLE1", WarehouseSKU: "Y", ComponentQty: 1, Active: true},
	}
}

func TestSyncOrderSuccess(t *testing.T) {
	gateway := newFakeGateway()
	syncer := NewOrderSyncer(orderConfig(), fakeOrderSource{}, gateway, nil)

	result := syncer.SyncOrder(context.Background(), testOrder(), testMappings(), Options{})

	if result.State != internal.StateSuccess {
		t.Fatalf("state=%s error=%s", result.State, result.Error)
	}
	if result.WarehouseGuid != "so-guid-1" {
		t.Fatalf("guid=%s", result.WarehouseGuid)
	}
	if result.BundlesExpanded != 1 || result.LineCount != 3 {
		t.Fatalf("bundles=%d lines=%d", result.BundlesExpanded, result.LineCount)
	}

	if len(gateway.createdOrders) != 1 {
		t.Fatalf("created=%d", len(gateway.createdOrders))
	}
	so := gateway.createdOrders[0]
	if so.OrderStatus != warehouse.StatusCompleted {
		t.Fatalf("paid order must be Completed, got %s", so.OrderStatus)
	}
	if so.CustomerRef != "111222333" {
		t.Fatalf("customerRef=%s", so.CustomerRef)
	}
	if so.Customer.CustomerCode != "SHOPIFY-555" {
		t.Fatalf("customerCode=%s", so.Customer.CustomerCode)
	}
	if so.OrderDate != "2026-03-02T10:30:00Z" || so.RequiredDate != so.OrderDate {
		t.Fatalf("dates=%s/%s", so.OrderDate, so.RequiredDate)
	}
	if so.DeliveryCity != "Melbourne" || so.DeliveryPostCode != "3000" {
		t.Fatalf("delivery=%+v", so)
	}
	// Bundle components at zero price: subtotal is the pass-through line only.
	if so.SubTotal != 20.00 || so.Total != 20.00 {
		t.Fatalf("subTotal=%v total=%v", so.SubTotal, so.Total)
	}
	if gateway.createCusCalls != 1 {
		t.Fatalf("customer create calls=%d", gateway.createCusCalls)
	}
}

func TestSyncOrderUnpaidIsParked(t *testing.T) {
	gateway := newFakeGateway()
	syncer := NewOrderSyncer(orderConfig(), fakeOrderSource{}, gateway, nil)

	order := testOrder()
	order.FinancialStatus = "pending"
	result := syncer.SyncOrder(context.Background(), order, nil, Options{})

	if result.State != internal.StateSuccess {
		t.Fatalf("state=%s", result.State)
	}
	if gateway.createdOrders[0].OrderStatus != warehouse.StatusParked {
		t.Fatalf("status=%s", gateway.createdOrders[0].OrderStatus)
	}
}

func TestSyncOrderDryRun(t *testing.T) {
	gateway := newFakeGateway()
	syncer := NewOrderSyncer(orderConfig(), fakeOrderSource{}, gateway, nil)

	result := syncer.SyncOrder(context.Background(), testOrder(), testMappings(), Options{DryRun: true})

	if result.State != internal.StateSuccess {
		t.Fatalf("state=%s", result.State)
	}
	if result.WarehouseGuid != internal.DryRunGuid {
		t.Fatalf("guid=%s", result.WarehouseGuid)
	}
	// Expansion still ran so the counters reflect reality.
	if result.BundlesExpanded != 1 || result.LineCount != 3 {
		t.Fatalf("bundles=%d lines=%d", result.BundlesExpanded, result.LineCount)
	}
	if len(gateway.createdOrders) != 0 || gateway.findCalls != 0 || gateway.createCusCalls != 0 {
		t.Fatalf("dry run touched the gateway: created=%d find=%d createCus=%d",
			len(gateway.createdOrders), gateway.findCalls, gateway.createCusCalls)
	}
}

func TestSyncOrderAlreadySyncedSkipped(t *testing.T) {
	gateway := newFakeGateway()
	gateway.existingRefs["111222333"] = "SO-0009"
	syncer := NewOrderSyncer(orderConfig(), fakeOrderSource{}, gateway, nil)

	result := syncer.SyncOrder(context.Background(), testOrder(), nil, Options{})

	if result.State != internal.StateSkipped {
		t.Fatalf("state=%s", result.State)
	}
	if result.WarehouseGuid != "SO-0009" {
		t.Fatalf("guid=%s", result.WarehouseGuid)
	}
	if len(gateway.createdOrders) != 0 {
		t.Fatal("skipped order was submitted")
	}
}

func TestSyncOrderFailureRecorded(t *testing.T) {
	gateway := newFakeGateway()
	gateway.createErr = errors.New("warehouse rejected order")
	syncer := NewOrderSyncer(orderConfig(), fakeOrderSource{}, gateway, nil)

	result := syncer.SyncOrder(context.Background(), testOrder(), nil, Options{})

	if result.State != internal.StateFailed {
		t.Fatalf("state=%s", result.State)
	}
	if result.Error == "" {
		t.Fatal("error not recorded")
	}
}

func TestSyncRecentBatchTolerance(t *testing.T) {
	bad := testOrder()
	good := testOrder()
	good.ID = 444555666
	good.OrderNumber = 1043

	// First order fails on submit, second succeeds: the batch continues.
	gateway := newFakeGateway()
	gateway.failRef = "111222333"
	syncer := NewOrderSyncer(orderConfig(), fakeOrderSource{orders: []internal.Order{bad, good}}, gateway, nil)

	results, err := syncer.SyncRecent(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results=%d", len(results))
	}
	if results[0].State != internal.StateFailed {
		t.Fatalf("first state=%s", results[0].State)
	}
	if results[1].State != internal.StateSuccess {
		t.Fatalf("second state=%s error=%s", results[1].State, results[1].Error)
	}
}

func TestSyncRecentFetchFailureIsFatal(t *testing.T) {
	syncer := NewOrderSyncer(orderConfig(), fakeOrderSource{err: errors.New("storefront down")}, newFakeGateway(), nil)
	if _, err := syncer.SyncRecent(context.Background(), Options{}); err == nil {
		t.Fatal("expected fatal error")
	}
}

func TestResolveCustomerDeterministic(t *testing.T) {
	if CustomerCode("SHOPIFY-", 555) != "SHOPIFY-555" {
		t.Fatal("unexpected customer code")
	}

	gateway := newFakeGateway()
	order := testOrder()

	first, err := ResolveCustomer(context.Background(), gateway, "SHOPIFY-", order, false)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ResolveCustomer(context.Background(), gateway, "SHOPIFY-", order, false)
	if err != nil {
		t.Fatal(err)
	}

	if first.CustomerCode != second.CustomerCode {
		t.Fatalf("codes differ: %s vs %s", first.CustomerCode, second.CustomerCode)
	}
	if gateway.createCusCalls != 1 {
		t.Fatalf("customer created %d times", gateway.createCusCalls)
	}
}

func TestResolveCustomerDryRunNoNetwork(t *testing.T) {
	gateway := newFakeGateway()
	ref, err := ResolveCustomer(context.Background(), gateway, "SHOPIFY-", testOrder(), true)
	if err != nil {
		t.Fatal(err)
	}
	if ref.CustomerCode != "SHOPIFY-555" {
		t.Fatalf("code=%s", ref.CustomerCode)
	}
	if gateway.findCalls != 0 || gateway.createCusCalls != 0 {
		t.Fatal("dry run touched the gateway")
	}
}
