package product

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SampleCatalog is the demo data written by `tienda seed`.
func SampleCatalog() []Product {
	return []Product{
		{Name: "Laptop Pro", Description: "High-performance laptop for professionals", Price: decimal.RequireFromString("1299.99"), Stock: 10, Category: "Electronics"},
		{Name: "Wireless Headphones", Description: "Premium noise-cancelling headphones", Price: decimal.RequireFromString("199.99"), Stock: 25, Category: "Electronics"},
		{Name: "Coffee Maker", Description: "Automatic drip coffee maker", Price: decimal.RequireFromString("89.99"), Stock: 15, Category: "Home & Kitchen"},
		{Name: "Running Shoes", Description: "Lightweight running shoes", Price: decimal.RequireFromString("129.99"), Stock: 30, Category: "Sports"},
		{Name: "Smartphone", Description: "Latest model smartphone", Price: decimal.RequireFromString("899.99"), Stock: 20, Category: "Electronics"},
	}
}

// Seed writes items when the catalog is empty and returns the new ids. A
// non-empty catalog is left untouched.
func Seed(ctx context.Context, repo Repository, items []Product) ([]string, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}
	for i := range items {
		items[i].ID = uuid.NewString()
		if err := validate(&items[i]); err != nil {
			return nil, err
		}
		if err := repo.Create(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return ids(items), nil
}
