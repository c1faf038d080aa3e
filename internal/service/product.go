package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/analytics"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/search"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/slug"
)

// ProductInput creates or replaces a product.
type ProductInput struct {
	Title         domain.LocalizedText `json:"title" validate:"required"`
	Description   domain.LocalizedText `json:"description"`
	Slug          string               `json:"slug" validate:"max=200"`
	Price         int64                `json:"price" validate:"gte=0"`
	Discount      float64              `json:"discount" validate:"gte=0,lte=100"`
	DiscountUntil *time.Time           `json:"discountUntil"`
	CategoryID    *string              `json:"categoryId" validate:"omitempty,uuid"`
	Colors        []string             `json:"colors"`
	Sizes         []string             `json:"sizes"`
	Images        []string             `json:"images" validate:"dive,url"`
}

// ListProductsInput is the storefront listing query.
type ListProductsInput struct {
	Query      string
	CategoryID *string
	Sort       string
	Page       int
	PerPage    int
}

// ProductView is a product as shown to a shopper: the stored fields plus
// the price in effect right now and the text in the requested language.
type ProductView struct {
	*domain.Product
	EffectivePrice       int64  `json:"effectivePrice"`
	DiscountActive       bool   `json:"discountActive"`
	LocalizedTitle       string `json:"localizedTitle"`
	LocalizedDescription string `json:"localizedDescription"`
}

// NewProductView evaluates p at now in lang.
func NewProductView(p *domain.Product, now time.Time, lang string) ProductView {
	lang = domain.NormalizeLang(lang)
	return ProductView{
		Product:              p,
		EffectivePrice:       p.EffectivePrice(now),
		DiscountActive:       p.DiscountActive(now),
		LocalizedTitle:       p.Title.In(lang),
		LocalizedDescription: p.Description.In(lang),
	}
}

// ProductService manages the catalog. engine may be nil, in which case text
// queries run against the product store.
type ProductService struct {
	repo    repository.ProductRepository
	engine  search.Engine
	emitter analytics.Emitter
	logger  *slog.Logger
	now     func() time.Time
}

func NewProductService(repo repository.ProductRepository, engine search.Engine, emitter analytics.Emitter, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:    repo,
		engine:  engine,
		emitter: emitter,
		logger:  logger,
		now:     time.Now,
	}
}

// Now is the clock used to evaluate discounts.
func (s *ProductService) Now() time.Time {
	return s.now()
}

func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Product{ID: uuid.NewString(), CreatedAt: now}
	applyProductInput(p, in, now)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.index(ctx, p)

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", p.ID),
		slog.String("slug", p.Slug),
	)
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	applyProductInput(p, in, s.now().UTC())

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.index(ctx, p)
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if s.engine != nil {
		if err := s.engine.Delete(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to remove product from search index",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// GetProduct returns one product and reports a product view.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	s.emitter.Emit(ctx, analytics.NewEvent(ctx, domain.EventProductView, p.ID, 0))
	return p, nil
}

// ListProducts filters, sorts and pages the catalog. With a search engine
// configured a text query is resolved to ids there first; if the engine is
// unavailable the store's own text match is used.
func (s *ProductService) ListProducts(ctx context.Context, in ListProductsInput) ([]domain.Product, int, error) {
	filter := domain.ProductFilter{
		Query:      strings.TrimSpace(in.Query),
		CategoryID: in.CategoryID,
		Sort:       in.Sort,
		Page:       in.Page,
		PerPage:    in.PerPage,
	}

	if filter.Query != "" && s.engine != nil {
		q := search.Query{Text: filter.Query, Limit: search.MaxHits}
		if in.CategoryID != nil {
			q.CategoryID = *in.CategoryID
		}
		ids, err := s.engine.Search(ctx, q)
		if err != nil {
			s.logger.WarnContext(ctx, "search engine failed, falling back to store search",
				slog.String("query", filter.Query),
				slog.String("error", err.Error()),
			)
		} else {
			if len(ids) == 0 {
				return []domain.Product{}, 0, nil
			}
			filter.Query = ""
			filter.IDs = ids
		}
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

func (s *ProductService) index(ctx context.Context, p *domain.Product) {
	if s.engine == nil {
		return
	}
	if err := s.engine.Index(ctx, search.NewDocument(p)); err != nil {
		s.logger.WarnContext(ctx, "failed to index product",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}
}

func validateProductInput(in ProductInput) error {
	if in.Title.IsEmpty() {
		return apperrors.Validation("title is required in at least one language")
	}
	if in.Price < 0 {
		return apperrors.Validation("price must not be negative")
	}
	if !domain.ValidDiscount(in.Discount) {
		return apperrors.Validation("discount must be between 0 and 100")
	}
	return nil
}

func applyProductInput(p *domain.Product, in ProductInput, now time.Time) {
	p.Title = in.Title
	p.Description = in.Description
	if p.Description == nil {
		p.Description = domain.LocalizedText{}
	}
	p.Slug = slug.Generate(in.Slug)
	if p.Slug == "" {
		p.Slug = slug.Generate(in.Title.In(domain.DefaultLang))
	}
	if p.Slug == "" {
		p.Slug = p.ID
	}
	p.Price = in.Price
	p.Discount = in.Discount
	p.DiscountUntil = in.DiscountUntil
	p.CategoryID = in.CategoryID
	p.Colors = in.Colors
	p.Sizes = in.Sizes
	p.Images = in.Images
	p.UpdatedAt = now
}
