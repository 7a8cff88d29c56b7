package order

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const StatusPending = "pending"

type Order struct {
	ID        string
	UserID    string
	Status    string
	Total     decimal.Decimal
	CreatedAt time.Time
	Lines     []Line
}

// Line is one requested product within an order. UnitPrice is the catalog
// price at the time the order was placed.
type Line struct {
	ID        string
	OrderID   string
	LineNo    int
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// View is the JSON shape of an order.
// swagger:model Order
type View struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TotalAmount string     `json:"total_amount" example:"20.00"`
	Status      string     `json:"status"       example:"pending"`
	CreatedAt   time.Time  `json:"created_at"`
	Items       []LineView `json:"items"`
}

// swagger:model OrderItem
type LineView struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"   example:"2"`
	Price     string `json:"price"      example:"10.00"`
	LineTotal string `json:"line_total" example:"20.00"`
}

func (o *Order) View() View {
	return View{
		ID:          o.ID,
		UserID:      o.UserID,
		TotalAmount: o.Total.StringFixed(2),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		Items: lo.Map(o.Lines, func(l Line, _ int) LineView {
			return LineView{
				ID:        l.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Price:     l.UnitPrice.StringFixed(2),
				LineTotal: l.LineTotal.StringFixed(2),
			}
		}),
	}
}

func Views(os []Order) []View {
	return lo.Map(os, func(o Order, _ int) View { return o.View() })
}
