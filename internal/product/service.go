package product

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/audit"
)

type Service struct {
	repo  Repository
	cache Cache
	audit audit.Recorder
}

func NewService(repo Repository, cache Cache, rec audit.Recorder) *Service {
	if cache == nil {
		cache = NoCache{}
	}
	if rec == nil {
		rec = audit.Nop{}
	}
	return &Service{repo: repo, cache: cache, audit: rec}
}

// List returns one page in insertion order. Filtering is left to clients.
func (s *Service) List(ctx context.Context, offset, limit int) ([]Product, Query, error) {
	q := Query{Offset: offset, Limit: limit}.normalize()
	items, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, q, err
	}
	return items, q, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	if p, ok := s.cache.Get(ctx, id); ok {
		return p, nil
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.NotFound, "product not found")
		}
		return nil, err
	}
	s.cache.Set(ctx, p)
	return p, nil
}

type CreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
}

// Create adds a catalog item. Any authenticated account may do so; actor is
// recorded in the audit log.
func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (*Product, error) {
	p := &Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, "product.create",
		slog.String("product_id", p.ID), slog.String("name", p.Name), slog.String("by", actor))
	return p, nil
}

// Invalidate drops cached copies after their stock changed.
func (s *Service) Invalidate(ctx context.Context, ids ...string) {
	s.cache.Invalidate(ctx, ids...)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func validate(p *Product) error {
	switch {
	case p.Name == "":
		return apperr.New(apperr.InvalidRequest, "name is required")
	case len(p.Name) > 200:
		return apperr.New(apperr.InvalidRequest, "name is too long")
	case p.Price.IsNegative():
		return apperr.New(apperr.InvalidRequest, "price must be non-negative")
	case !p.Price.Equal(p.Price.Round(2)):
		return apperr.New(apperr.InvalidRequest, "price must have at most two decimal places")
	case p.Price.GreaterThanOrEqual(decimal.New(1, 10)):
		return apperr.New(apperr.InvalidRequest, "price is too large")
	case p.Stock < 0:
		return apperr.New(apperr.InvalidRequest, "stock_quantity must be non-negative")
	}
	return nil
}
