package order

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/audit"
	"github.com/MikeMC777/tienda/internal/events"
	"github.com/MikeMC777/tienda/internal/logger"
	"github.com/MikeMC777/tienda/internal/metrics"
	"github.com/MikeMC777/tienda/internal/product"
	"github.com/MikeMC777/tienda/internal/user"
)

// Catalog is the part of the product repository the order flow reads.
type Catalog interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// Invalidator drops cached products whose stock changed.
type Invalidator interface {
	Invalidate(ctx context.Context, ids ...string)
}

var maxTotal = decimal.New(1, 10)

type Service struct {
	repo      Repository
	catalog   Catalog
	cache     Invalidator
	publisher events.Publisher
	audit     audit.Recorder
}

func NewService(repo Repository, catalog Catalog, cache Invalidator, pub events.Publisher, rec audit.Recorder) *Service {
	if cache == nil {
		cache = product.NoCache{}
	}
	if pub == nil {
		pub = events.Noop{}
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{repo: repo, catalog: catalog, cache: cache, publisher: pub, audit: rec}
}

// PlaceOrder validates the request against current stock, prices every line
// and persists the order. The stock check here only gives early feedback;
// the guarded decrement inside Repository.Place is what prevents overselling.
func (s *Service) PlaceOrder(ctx context.Context, account *user.User, req []LineRequest) (o *Order, err error) {
	defer func() {
		if err != nil {
			metrics.OrderRejections.WithLabelValues(apperr.KindOf(err).String()).Inc()
			s.audit.Record(ctx, "order.place",
				slog.String("user_id", account.ID), slog.Bool("ok", false), slog.String("reason", apperr.KindOf(err).String()))
		}
	}()

	if len(req) == 0 {
		return nil, apperr.New(apperr.InvalidRequest, "order must contain at least one item")
	}

	o = &Order{
		ID:     uuid.NewString(),
		UserID: account.ID,
		Status: StatusPending,
		Total:  decimal.Zero,
		Lines:  make([]Line, 0, len(req)),
	}
	requested := map[string]int{}
	for i, r := range req {
		if r.Quantity <= 0 {
			return nil, apperr.Newf(apperr.InvalidRequest, "item %d: quantity must be a positive integer", i+1)
		}
		p, err := s.lookup(ctx, r.ProductID)
		if err != nil {
			return nil, err
		}
		requested[p.ID] += r.Quantity
		if requested[p.ID] > p.Stock {
			return nil, apperr.Stock(p.ID, p.Name)
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(r.Quantity)))
		o.Total = o.Total.Add(lineTotal)
		o.Lines = append(o.Lines, Line{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			LineNo:    i + 1,
			ProductID: p.ID,
			Quantity:  r.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
		})
	}
	if o.Total.GreaterThanOrEqual(maxTotal) {
		return nil, apperr.New(apperr.InvalidRequest, "order total is too large")
	}

	if err := s.repo.Place(ctx, o); err != nil {
		switch apperr.KindOf(err) {
		case apperr.Unavailable, apperr.Conflict:
			return nil, err
		}
		logger.WithCtx(ctx).Error("place order", "order_id", o.ID, "err", err)
		return nil, apperr.Wrap(apperr.Conflict, err, "order could not be placed")
	}

	touched := lo.Uniq(lo.Map(o.Lines, func(l Line, _ int) string { return l.ProductID }))
	s.cache.Invalidate(ctx, touched...)
	s.publisher.PublishOrderPlaced(ctx, placedEvent(o))
	metrics.OrdersPlaced.Inc()
	s.audit.Record(ctx, "order.place",
		slog.String("user_id", account.ID), slog.String("order_id", o.ID),
		slog.String("total", o.Total.StringFixed(2)), slog.Bool("ok", true))
	return o, nil
}

func (s *Service) lookup(ctx context.Context, id string) (*product.Product, error) {
	notFound := apperr.Newf(apperr.NotFound, "product %s not found", id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound
	}
	p, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return p, nil
}

// ListForAccount returns the account's orders oldest first, lines included.
func (s *Service) ListForAccount(ctx context.Context, account *user.User) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}
	lines, err := s.repo.LinesFor(ctx, lo.Map(orders, func(o Order, _ int) string { return o.ID })...)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lo.Ternary(lines[orders[i].ID] == nil, []Line{}, lines[orders[i].ID])
	}
	return orders, nil
}

// Get returns NotFound both for unknown ids and for orders of other accounts.
func (s *Service) Get(ctx context.Context, account *user.User, id string) (*Order, error) {
	notFound := apperr.New(apperr.NotFound, "order not found")
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound
	}
	o, err := s.repo.GetForUser(ctx, account.ID, id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, notFound
		}
		return nil, err
	}
	lines, err := s.repo.LinesFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lo.Ternary(lines[o.ID] == nil, []Line{}, lines[o.ID])
	return o, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func placedEvent(o *Order) events.OrderPlaced {
	return events.OrderPlaced{
		OrderID: o.ID,
		UserID:  o.UserID,
		Total:   o.Total.StringFixed(2),
		Lines: lo.Map(o.Lines, func(l Line, _ int) events.OrderLine {
			return events.OrderLine{ProductID: l.ProductID, Quantity: l.Quantity, LineTotal: l.LineTotal.StringFixed(2)}
		}),
		CreatedAt: o.CreatedAt,
	}
}
