package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/service"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/httputil"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/pagination"
)

// CatalogHandler serves products, categories and banners.
type CatalogHandler struct {
	products   *service.ProductService
	categories *service.CategoryService
	banners    *service.BannerService
	logger     *slog.Logger
}

func NewCatalogHandler(
	products *service.ProductService,
	categories *service.CategoryService,
	banners *service.BannerService,
	logger *slog.Logger,
) *CatalogHandler {
	return &CatalogHandler{products: products, categories: categories, banners: banners, logger: logger}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := pagination.FromRequest(r)

	in := service.ListProductsInput{
		Query:   q.Get("q"),
		Sort:    q.Get("sort"),
		Page:    page.Page,
		PerPage: page.PerPage,
	}
	if in.Sort != "" && !slices.Contains(domain.ProductSorts(), in.Sort) {
		httputil.WriteError(w, r, apperrors.Validation(fmt.Sprintf("sort must be one of: %v", domain.ProductSorts())), h.logger)
		return
	}
	if raw := q.Get("categoryId"); raw != "" {
		id, ok := httputil.ParseUUID(w, raw)
		if !ok {
			return
		}
		categoryID := id.String()
		in.CategoryID = &categoryID
	}

	products, total, err := h.products.ListProducts(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	now, lang := h.products.Now(), requestLang(r)
	views := make([]service.ProductView, len(products))
	for i := range products {
		views[i] = service.NewProductView(&products[i], now, lang)
	}
	httputil.WriteData(w, http.StatusOK, httputil.NewPage(views, total, page.Page, page.PerPage))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	p, err := h.products.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, service.NewProductView(p, h.products.Now(), requestLang(r)))
}

// CreateProduct handles POST /api/v1/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	p, err := h.products.CreateProduct(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, service.NewProductView(p, h.products.Now(), requestLang(r)))
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req service.ProductInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	p, err := h.products.UpdateProduct(r.Context(), id.String(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, service.NewProductView(p, h.products.Now(), requestLang(r)))
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.products.DeleteProduct(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	c, err := h.categories.CreateCategory(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, c)
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.categories.DeleteCategory(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBanners handles GET /api/v1/banners
func (h *CatalogHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	position := r.URL.Query().Get("position")
	if position != "" && !slices.Contains(domain.BannerPositions(), position) {
		httputil.WriteError(w, r, apperrors.Validation(fmt.Sprintf("unknown banner position %q", position)), h.logger)
		return
	}

	banners, err := h.banners.ListVisible(r.Context(), position)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, banners)
}

// CreateBanner handles POST /api/v1/banners
func (h *CatalogHandler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	var req service.BannerInput
	if !httputil.Decode(w, r, &req) {
		return
	}

	b, err := h.banners.CreateBanner(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, b)
}

// DeleteBanner handles DELETE /api/v1/banners/{id}
func (h *CatalogHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.banners.DeleteBanner(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
