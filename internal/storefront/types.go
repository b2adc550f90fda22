package storefront

import (
	"encoding/json"
	"time"

	"stockbridge/internal"
)

type productsPage struct {
	Products []productPayload `json:"products"`
}

type productPayload struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Variants []variantPayload `json:"variants"`
}

type variantPayload struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	InventoryItemID   int64  `json:"inventory_item_id"`
	InventoryQuantity int    `json:"inventory_quantity"`
	InventoryPolicy   string `json:"inventory_policy"`
}

type ordersPage struct {
	Orders []orderPayload `json:"orders"`
}

type orderPayload struct {
	ID              int64             `json:"id"`
	OrderNumber     int               `json:"order_number"`
	Email           string            `json:"email"`
	FinancialStatus string            `json:"financial_status"`
	CreatedAt       string            `json:"created_at"`
	Customer        customerPayload   `json:"customer"`
	LineItems       []lineItemPayload `json:"line_items"`
	ShippingAddress *addressPayload   `json:"shipping_address"`
}

type customerPayload struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type lineItemPayload struct {
	SKU      string `json:"sku"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type addressPayload struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

func (p orderPayload) toOrder() internal.Order {
	createdAt, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	order := internal.Order{
		ID:              p.ID,
		OrderNumber:     p.OrderNumber,
		Email:           p.Email,
		FinancialStatus: p.FinancialStatus,
		CreatedAt:       createdAt,
		Customer: internal.Customer{
			ID:        p.Customer.ID,
			FirstName: p.Customer.FirstName,
			LastName:  p.Customer.LastName,
			Email:     p.Customer.Email,
		},
	}
	for _, item := range p.LineItems {
		order.LineItems = append(order.LineItems, internal.LineItem{
			SKU:      item.SKU,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	if p.ShippingAddress != nil {
		order.ShippingAddress = &internal.Address{
			Name:     p.ShippingAddress.Name,
			Address1: p.ShippingAddress.Address1,
			Address2: p.ShippingAddress.Address2,
			City:     p.ShippingAddress.City,
			Province: p.ShippingAddress.Province,
			Zip:      p.ShippingAddress.Zip,
			Country:  p.ShippingAddress.Country,
		}
	}
	return order
}

// ParseOrderPayload decodes a raw order JSON document, as delivered by an
// order webhook, into the internal order shape.
func ParseOrderPayload(raw []byte) (internal.Order, error) {
	var payload orderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return internal.Order{}, err
	}
	return payload.toOrder(), nil
}
