package sync

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"stockbridge/internal"
	"stockbridge/internal/warehouse"
)

type CustomerGateway interface {
	FindCustomer(ctx context.Context, code string) (*warehouse.Customer, error)
	CreateCustomer(ctx context.Context, customer warehouse.Customer) (*warehouse.Customer, error)
}

// CustomerCode derives the warehouse customer code from the storefront
// customer id. The code is deterministic so repeated runs reuse the same
// warehouse customer instead of creating duplicates.
func CustomerCode(prefix string, customerID int64) string {
	return prefix + strconv.FormatInt(customerID, 10)
}

// ResolveCustomer returns the customer reference to place the sales order
// under, creating the warehouse customer on first sight. Dry runs derive
// the code without touching the network.
func ResolveCustomer(ctx context.Context, gateway CustomerGateway, prefix string, order internal.Order, dryRun bool) (warehouse.CustomerRef, error) {
	code := CustomerCode(prefix, order.Customer.ID)
	name := strings.TrimSpace(order.Customer.FirstName + " " + order.Customer.LastName)

	if dryRun {
		return warehouse.CustomerRef{CustomerCode: code, CustomerName: name}, nil
	}

	existing, err := gateway.FindCustomer(ctx, code)
	if err != nil {
		return warehouse.CustomerRef{}, fmt.Errorf("find customer %s: %w", code, err)
	}
	if existing != nil {
		return warehouse.CustomerRef{
			CustomerCode: existing.CustomerCode,
			CustomerName: existing.CustomerName,
			Guid:         existing.Guid,
		}, nil
	}

	customer := warehouse.Customer{
		CustomerCode: code,
		CustomerName: name,
		ContactName:  name,
		Email:        order.Customer.Email,
	}
	if order.ShippingAddress != nil {
		customer.Address1 = order.ShippingAddress.Address1
		customer.City = order.ShippingAddress.City
		customer.Region = order.ShippingAddress.Province
		customer.PostalCode = order.ShippingAddress.Zip
		customer.Country = order.ShippingAddress.Country
	}

	created, err := gateway.CreateCustomer(ctx, customer)
	if err != nil {
		return warehouse.CustomerRef{}, fmt.Errorf("create customer %s: %w", code, err)
	}
	return warehouse.CustomerRef{
		CustomerCode: created.CustomerCode,
		CustomerName: created.CustomerName,
		Guid:         created.Guid,
	}, nil
}
