package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock_quantity"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

// View is the JSON shape of a product. Price is rendered with two fraction
// digits so clients never see binary floating point.
// swagger:model Product
type View struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         string    `json:"price"          example:"10.00"`
	StockQuantity int       `json:"stock_quantity" example:"3"`
	Category      string    `json:"category"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *Product) View() View {
	return View{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.Stock,
		Category:      p.Category,
		CreatedAt:     p.CreatedAt,
	}
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
	// ProductID is set on insufficient stock failures
	ProductID string `json:"product_id,omitempty"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Items  []View `json:"items"`
}

// CreateProductRequest payload of creation. Price accepts a JSON number or a
// decimal string.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name          string           `json:"name"           binding:"required" example:"Widget"`
	Description   string           `json:"description"    example:"A useful widget"`
	Price         *decimal.Decimal `json:"price"          binding:"required" swaggertype:"string" example:"10.00"`
	StockQuantity *int             `json:"stock_quantity" binding:"required" example:"3"`
	Category      string           `json:"category"       example:"Tools"`
}
