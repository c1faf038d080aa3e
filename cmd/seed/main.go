// Command seed fills an empty storefront database with a demo catalog, an
// admin account and homepage banners. It goes through the same services as
// the API, so slugs and validation match what the admin panel produces.
// Re-running it is safe: existing categories and the admin are reused and
// products are only created when the catalog is empty.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/analytics"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/config"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository/postgres"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/service"
	"github.com/Emirlan007/Cassini-shop-sub000/migrations"
	pkgconfig "github.com/Emirlan007/Cassini-shop-sub000/pkg/config"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/database"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/logger"
)

type seedConfig struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@cassini.kg"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD" envDefault:"ChangeMe123"`
}

type categoryDef struct {
	name domain.LocalizedText
	slug string
}

type productDef struct {
	title    domain.LocalizedText
	category string
	price    int64
	discount float64
	colors   []string
	sizes    []string
}

var categories = []categoryDef{
	{domain.LocalizedText{"ru": "Платья", "en": "Dresses", "kg": "Көйнөктөр"}, "platya"},
	{domain.LocalizedText{"ru": "Верхняя одежда", "en": "Outerwear", "kg": "Сырт кийим"}, "verhnyaya-odezhda"},
	{domain.LocalizedText{"ru": "Аксессуары", "en": "Accessories", "kg": "Аксессуарлар"}, "aksessuary"},
}

var products = []productDef{
	{domain.LocalizedText{"ru": "Летнее платье", "en": "Summer dress"}, "platya", 3200, 20, []string{"red", "white"}, []string{"S", "M", "L"}},
	{domain.LocalizedText{"ru": "Вечернее платье", "en": "Evening gown"}, "platya", 8900, 0, []string{"black"}, []string{"S", "M"}},
	{domain.LocalizedText{"ru": "Платье-рубашка", "en": "Shirt dress"}, "platya", 4100, 15, []string{"blue", "beige"}, []string{"M", "L", "XL"}},
	{domain.LocalizedText{"ru": "Тренч", "en": "Trench coat"}, "verhnyaya-odezhda", 12500, 10, []string{"beige"}, []string{"M", "L"}},
	{domain.LocalizedText{"ru": "Пуховик", "en": "Down jacket"}, "verhnyaya-odezhda", 15900, 25, []string{"black", "olive"}, []string{"S", "M", "L", "XL"}},
	{domain.LocalizedText{"ru": "Шёлковый платок", "en": "Silk scarf", "kg": "Жибек жоолук"}, "aksessuary", 1800, 0, []string{"red", "green"}, nil},
	{domain.LocalizedText{"ru": "Кожаный ремень", "en": "Leather belt"}, "aksessuary", 2400, 0, []string{"brown", "black"}, []string{"90", "100"}},
}

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	var seedCfg seedConfig
	if err := pkgconfig.Load(&seedCfg); err != nil {
		return err
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if err := seedAdmin(ctx, postgres.NewUserRepository(pool), seedCfg, log); err != nil {
		return err
	}

	categorySvc := service.NewCategoryService(postgres.NewCategoryRepository(pool), log)
	categoryIDs, err := seedCategories(ctx, categorySvc, log)
	if err != nil {
		return err
	}

	productSvc := service.NewProductService(postgres.NewProductRepository(pool), nil, analytics.NopEmitter{}, log)
	created, err := seedProducts(ctx, productSvc, categoryIDs, log)
	if err != nil {
		return err
	}
	if created > 0 {
		if err := seedBanners(ctx, service.NewBannerService(postgres.NewBannerRepository(pool), log)); err != nil {
			return err
		}
	}

	log.Info("seed complete", slog.Int("products_created", created))
	return nil
}

func seedAdmin(ctx context.Context, users *postgres.UserRepository, cfg seedConfig, log *slog.Logger) error {
	if _, err := users.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		log.Info("admin already exists", slog.String("email", cfg.AdminEmail))
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	now := time.Now().UTC()
	admin := &domain.User{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("admin created", slog.String("email", admin.Email))
	return nil
}

func seedCategories(ctx context.Context, svc *service.CategoryService, log *slog.Logger) (map[string]string, error) {
	for _, c := range categories {
		_, err := svc.CreateCategory(ctx, service.CategoryInput{Name: c.name, Slug: c.slug})
		if err != nil && !errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("seed category %s: %w", c.slug, err)
		}
	}

	existing, err := svc.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(existing))
	for _, c := range existing {
		ids[c.Slug] = c.ID
	}
	log.Info("categories ready", slog.Int("count", len(ids)))
	return ids, nil
}

func seedProducts(ctx context.Context, svc *service.ProductService, categoryIDs map[string]string, log *slog.Logger) (int, error) {
	_, total, err := svc.ListProducts(ctx, service.ListProductsInput{Page: 1, PerPage: 1})
	if err != nil {
		return 0, err
	}
	if total > 0 {
		log.Info("catalog not empty, skipping products", slog.Int("products", total))
		return 0, nil
	}

	saleEnds := time.Now().UTC().AddDate(0, 1, 0)
	for i, p := range products {
		in := service.ProductInput{
			Title:  p.title,
			Price:  p.price,
			Colors: p.colors,
			Sizes:  p.sizes,
			Images: []string{fmt.Sprintf("https://picsum.photos/seed/cassini-%d/800/1000", i+1)},
		}
		if id, ok := categoryIDs[p.category]; ok {
			in.CategoryID = &id
		}
		if p.discount > 0 {
			in.Discount = p.discount
			in.DiscountUntil = &saleEnds
		}
		if _, err := svc.CreateProduct(ctx, in); err != nil {
			return i, fmt.Errorf("seed product %q: %w", p.title.In(domain.LangRU), err)
		}
	}
	return len(products), nil
}

func seedBanners(ctx context.Context, svc *service.BannerService) error {
	banners := []service.BannerInput{
		{
			Title:    domain.LocalizedText{"ru": "Летняя распродажа", "en": "Summer sale"},
			ImageURL: "https://picsum.photos/seed/cassini-hero/1600/600",
			LinkURL:  "/catalog?sort=price_asc",
			Position: domain.BannerPositionHero,
		},
		{
			Title:    domain.LocalizedText{"ru": "Новая коллекция", "en": "New collection"},
			ImageURL: "https://picsum.photos/seed/cassini-middle/1200/400",
			LinkURL:  "/catalog?sort=newest",
			Position: domain.BannerPositionMiddle,
		},
	}
	for _, b := range banners {
		if _, err := svc.CreateBanner(ctx, b); err != nil {
			return fmt.Errorf("seed banner: %w", err)
		}
	}
	return nil
}
