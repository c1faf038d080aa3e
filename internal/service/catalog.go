package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/slug"
)

// CategoryInput creates a category.
type CategoryInput struct {
	Name     domain.LocalizedText `json:"name" validate:"required"`
	Slug     string               `json:"slug"`
	ParentID *string              `json:"parentId" validate:"omitempty,uuid"`
}

type CategoryService struct {
	repo   repository.CategoryRepository
	logger *slog.Logger
}

func NewCategoryService(repo repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if in.Name.IsEmpty() {
		return nil, apperrors.Validation("name is required in at least one language")
	}
	c := &domain.Category{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Slug:      slug.Generate(in.Slug),
		ParentID:  in.ParentID,
		CreatedAt: time.Now().UTC(),
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(in.Name.In(domain.DefaultLang))
	}
	if c.Slug == "" {
		return nil, apperrors.Validation("slug cannot be derived from the name")
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.InfoContext(ctx, "category created", slog.String("category_id", c.ID), slog.String("slug", c.Slug))
	return c, nil
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory fails with Conflict while products reference it.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// BannerInput creates a banner.
type BannerInput struct {
	Title     domain.LocalizedText `json:"title"`
	ImageURL  string               `json:"imageUrl" validate:"required,url"`
	LinkURL   string               `json:"linkUrl"`
	Position  string               `json:"position" validate:"required,banner_position"`
	SortOrder int                  `json:"sortOrder"`
	IsActive  *bool                `json:"isActive"`
	StartsAt  *time.Time           `json:"startsAt"`
	EndsAt    *time.Time           `json:"endsAt"`
}

type BannerService struct {
	repo   repository.BannerRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewBannerService(repo repository.BannerRepository, logger *slog.Logger) *BannerService {
	return &BannerService{repo: repo, logger: logger, now: time.Now}
}

func (s *BannerService) CreateBanner(ctx context.Context, in BannerInput) (*domain.Banner, error) {
	if !slices.Contains(domain.BannerPositions(), in.Position) {
		return nil, apperrors.Validation(fmt.Sprintf("unknown banner position %q", in.Position))
	}
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		return nil, apperrors.Validation("endsAt must be after startsAt")
	}

	b := &domain.Banner{
		ID:        uuid.NewString(),
		Title:     in.Title,
		ImageURL:  in.ImageURL,
		LinkURL:   in.LinkURL,
		Position:  in.Position,
		SortOrder: in.SortOrder,
		IsActive:  in.IsActive == nil || *in.IsActive,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		CreatedAt: s.now().UTC(),
	}
	if b.Title == nil {
		b.Title = domain.LocalizedText{}
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create banner: %w", err)
	}
	return b, nil
}

func (s *BannerService) DeleteBanner(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	return nil
}

// ListVisible returns the banners shown right now at position, or at every
// position when position is empty.
func (s *BannerService) ListVisible(ctx context.Context, position string) ([]domain.Banner, error) {
	banners, err := s.repo.ListActive(ctx, position)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}

	now := s.now()
	visible := make([]domain.Banner, 0, len(banners))
	for i := range banners {
		if banners[i].VisibleAt(now) {
			visible = append(visible, banners[i])
		}
	}
	return visible, nil
}

type WishlistService struct {
	repo   repository.WishlistRepository
	logger *slog.Logger
}

func NewWishlistService(repo repository.WishlistRepository, logger *slog.Logger) *WishlistService {
	return &WishlistService{repo: repo, logger: logger}
}

// Add saves a product. Saving it again is a no-op; an unknown product is
// NotFound.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) error {
	if err := s.repo.Add(ctx, userID, productID); err != nil {
		return fmt.Errorf("add to wishlist: %w", err)
	}
	return nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID string) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove from wishlist: %w", err)
	}
	return nil
}

func (s *WishlistService) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	return items, nil
}
