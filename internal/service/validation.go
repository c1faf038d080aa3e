package service

import (
	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/validator"
)

func init() {
	validator.RegisterEnum("payment_method", domain.PaymentMethods()...)
	validator.RegisterEnum("banner_position", domain.BannerPositions()...)
	validator.RegisterEnum("analytics_type", domain.AnalyticsEventTypes()...)
	validator.RegisterEnum("product_sort", domain.ProductSorts()...)
}
