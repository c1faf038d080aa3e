package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/analytics"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/auth"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/event"
	redisrepo "github.com/Emirlan007/Cassini-shop-sub000/internal/repository/redis"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/service"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/health"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/httputil"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/middleware"
)

const (
	productID = "7b0c3c2e-3f43-4e0e-9a55-8d4f2a0b1c01"
	orderID   = "0d6f5a52-8f0e-4d7c-9a9a-2b4e6c1f3a10"
	userID    = "3a1f2c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
	adminID   = "9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a"
)

type testAPI struct {
	handler    http.Handler
	jwt        *auth.JWTManager
	products   *mockProductRepo
	categories *mockCategoryRepo
	banners    *mockBannerRepo
	wishlist   *mockWishlistRepo
	users      *mockUserRepo
	orders     *mockOrderRepo
	history    *mockHistoryRepo
	analytics  *mockAnalyticsRepo
	engine     *mockEngine
	emitter    *recordingEmitter
	redis      *miniredis.Miniredis
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	api := &testAPI{
		jwt:        auth.NewJWTManager("handler-test-secret", 15*time.Minute, time.Hour),
		products:   &mockProductRepo{},
		categories: &mockCategoryRepo{},
		banners:    &mockBannerRepo{},
		wishlist:   &mockWishlistRepo{},
		users:      &mockUserRepo{},
		orders:     &mockOrderRepo{},
		history:    &mockHistoryRepo{},
		analytics:  &mockAnalyticsRepo{},
		engine:     &mockEngine{},
		emitter:    &recordingEmitter{},
		redis:      mr,
	}

	logger := testLogger()
	producer := event.NewProducer(nopPublisher{}, logger)
	carts := redisrepo.NewCartRepository(client, time.Hour)

	svc := Services{
		Users:      service.NewUserService(api.users, api.jwt, logger),
		Products:   service.NewProductService(api.products, api.engine, analytics.NopEmitter{}, logger),
		Categories: service.NewCategoryService(api.categories, logger),
		Banners:    service.NewBannerService(api.banners, logger),
		Wishlist:   service.NewWishlistService(api.wishlist, logger),
		Carts:      service.NewCartService(carts, api.products, producer, analytics.NopEmitter{}, logger),
		Orders:     service.NewOrderService(api.orders, api.history, carts, producer, analytics.NopEmitter{}, logger),
		Analytics:  service.NewAnalyticsService(api.emitter, api.analytics, logger),
	}

	api.handler = NewRouter(svc, health.NewHandler(time.Second), RouterConfig{
		ValidateToken:  api.jwt.ValidateAccessToken,
		CORS:           middleware.DefaultCORSConfig(),
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}, logger)
	return api
}

func (a *testAPI) token(t *testing.T, id, role string) string {
	t.Helper()
	pair, err := a.jwt.IssuePair(&domain.User{ID: id, Email: id + "@example.com", Role: role})
	require.NoError(t, err)
	return pair.AccessToken
}

type reqOpt func(*http.Request)

func withToken(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withSession(id string) reqOpt {
	return func(r *http.Request) { r.Header.Set(middleware.SessionHeader, id) }
}

func (a *testAPI) do(t *testing.T, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func dress() *domain.Product {
	until := time.Now().Add(24 * time.Hour)
	return &domain.Product{
		ID:            productID,
		Title:         domain.LocalizedText{"ru": "Платье", "en": "Dress"},
		Price:         1000,
		Discount:      10,
		DiscountUntil: &until,
		Colors:        []string{"red"},
		Sizes:         []string{"M"},
	}
}

func addToCart(t *testing.T, api *testAPI, qty int, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	return api.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"productId": productID, "color": "red", "size": "M", "quantity": qty,
	}, opts...)
}

func TestHealthLive(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCart_GuestFlow(t *testing.T) {
	api := newTestAPI(t)
	api.products.On("GetByID", mock.Anything, productID).Return(dress(), nil)
	guest := withSession("sess-42")

	rec := addToCart(t, api, 2, guest)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	addToCart(t, api, 1, guest)

	rec = api.do(t, http.MethodGet, "/api/v1/cart?lang=en", nil, guest)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart domain.Cart
	decodeData(t, rec, &cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.TotalQuantity)
	assert.Equal(t, int64(900), cart.Lines[0].UnitPrice)
	assert.Equal(t, int64(2700), cart.TotalPrice)
	assert.True(t, api.redis.Exists("cart:sess-42"))

	rec = api.do(t, http.MethodPut, "/api/v1/cart/items", map[string]any{
		"productId": productID, "color": "red", "size": "M", "quantity": 0,
	}, guest)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Lines)
	assert.Zero(t, cart.TotalPrice)
}

func TestCart_RequiresOwner(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/v1/cart", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeResponse(t, rec).Error.Code)
}

func TestCart_AddItem_Validation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"productId": "not-a-uuid", "quantity": 0,
	}, withSession("s1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "productId")
	assert.Contains(t, resp.Error.Fields, "quantity")
}

func TestCart_AddItem_QuantityLimits(t *testing.T) {
	api := newTestAPI(t)
	api.products.On("GetByID", mock.Anything, productID).Return(dress(), nil)
	guest := withSession("sess-big")

	rec := addToCart(t, api, math.MaxInt64, guest)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResponse(t, rec).Error.Fields, "quantity")

	require.Equal(t, http.StatusOK, addToCart(t, api, 99, guest).Code)
	rec = addToCart(t, api, 2, guest)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeResponse(t, rec).Error.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/cart", nil, guest)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart domain.Cart
	decodeData(t, rec, &cart)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 99, cart.Lines[0].Quantity)
	assert.Equal(t, int64(99*900), cart.TotalPrice)
}

func TestCart_UnsupportedContentType(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewBufferString("productId=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestCart_MergeOnSignIn(t *testing.T) {
	api := newTestAPI(t)
	api.products.On("GetByID", mock.Anything, productID).Return(dress(), nil)
	token := api.token(t, userID, domain.RoleCustomer)

	addToCart(t, api, 1, withSession("sess-1"))
	addToCart(t, api, 2, withToken(token))

	rec := api.do(t, http.MethodPost, "/api/v1/cart/merge", nil, withToken(token), withSession("sess-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var cart domain.Cart
	decodeData(t, rec, &cart)
	assert.Equal(t, 3, cart.TotalQuantity)
	assert.False(t, api.redis.Exists("cart:sess-1"))
}

func TestAuth_LogoutClearsCart(t *testing.T) {
	api := newTestAPI(t)
	api.products.On("GetByID", mock.Anything, productID).Return(dress(), nil)
	token := api.token(t, userID, domain.RoleCustomer)

	addToCart(t, api, 1, withToken(token))
	require.True(t, api.redis.Exists("cart:"+userID))

	rec := api.do(t, http.MethodPost, "/api/v1/auth/logout", nil, withToken(token))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, api.redis.Exists("cart:"+userID))
}

func TestAuth_RejectsBadToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/products", nil, withToken("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_Login_WrongCredentials(t *testing.T) {
	api := newTestAPI(t)
	api.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.NotFound("user", "ghost@example.com"))

	rec := api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "ghost@example.com", "password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeResponse(t, rec).Error.Code)
}

func TestOrders_PlaceOrder(t *testing.T) {
	api := newTestAPI(t)
	api.products.On("GetByID", mock.Anything, productID).Return(dress(), nil)
	api.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	token := api.token(t, userID, domain.RoleCustomer)

	addToCart(t, api, 2, withToken(token))

	rec := api.do(t, http.MethodPost, "/api/v1/orders", map[string]string{
		"paymentMethod": "qrCode",
		"name":          "Aida",
		"phone":         "+996555123456",
		"city":          "Bishkek",
		"address":       "Chui 1",
	}, withToken(token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var raw map[string]any
	decodeData(t, rec, &raw)
	assert.NotEmpty(t, raw["_id"])
	assert.Equal(t, userID, raw["user"])
	assert.Equal(t, float64(1800), raw["totalPrice"])
	assert.Equal(t, "warehouse", raw["deliveryStatus"])
	assert.Equal(t, "pending", raw["paymentStatus"])
	assert.Equal(t, "Bishkek", raw["city"])

	assert.False(t, api.redis.Exists("cart:"+userID))
}

func TestOrders_PlaceOrder_EmptyCart(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, userID, domain.RoleCustomer)

	rec := api.do(t, http.MethodPost, "/api/v1/orders", map[string]string{
		"paymentMethod": "cash", "name": "Aida", "phone": "+996555123456", "city": "Bishkek", "address": "Chui 1",
	}, withToken(token))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "EMPTY_CART", decodeResponse(t, rec).Error.Code)
	api.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrders_PlaceOrder_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/api/v1/orders", map[string]string{"paymentMethod": "cash"}, withSession("s1"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrders_GetOrder_HiddenFromOtherUsers(t *testing.T) {
	api := newTestAPI(t)
	api.orders.On("GetByID", mock.Anything, orderID).Return(&domain.Order{ID: orderID, UserID: userID}, nil)

	rec := api.do(t, http.MethodGet, "/api/v1/orders/"+orderID, nil, withToken(api.token(t, "someone-else", domain.RoleCustomer)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/orders/"+orderID, nil, withToken(api.token(t, adminID, domain.RoleAdmin)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", nil, withToken(api.token(t, userID, domain.RoleCustomer)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrders_SetStatus_AdminOnly(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPatch, "/api/v1/orders/"+orderID+"/status",
		map[string]string{"deliveryStatus": "delivered"},
		withToken(api.token(t, userID, domain.RoleCustomer)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrders_SetStatus_RejectsUnknownValue(t *testing.T) {
	api := newTestAPI(t)
	admin := withToken(api.token(t, adminID, domain.RoleAdmin))

	tests := []struct {
		body  map[string]string
		value string
	}{
		{map[string]string{"paymentStatus": "refunded"}, "refunded"},
		{map[string]string{"deliveryStatus": "lost"}, "lost"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			rec := api.do(t, http.MethodPatch, "/api/v1/orders/"+orderID+"/status", tt.body, admin)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeResponse(t, rec)
			assert.Equal(t, "INVALID_STATUS", resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.value)
		})
	}
	api.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrders_SetStatus_CompletesAndArchives(t *testing.T) {
	api := newTestAPI(t)
	before := &domain.Order{ID: orderID, UserID: userID, DeliveryStatus: domain.DeliveryDelivered, PaymentStatus: domain.PaymentPending, PaymentMethod: domain.PaymentCash}
	after := *before
	after.PaymentStatus = domain.PaymentPaid

	api.orders.On("GetByID", mock.Anything, orderID).Return(before, nil)
	api.orders.On("UpdateStatus", mock.Anything, orderID, mock.Anything).Return(&after, nil)
	api.history.On("Create", mock.Anything, mock.Anything).
		Return(&domain.OrderHistoryEntry{ID: "h1", OrderID: orderID, UserID: userID}, true, nil)

	rec := api.do(t, http.MethodPatch, "/api/v1/orders/"+orderID+"/status",
		map[string]string{"paymentStatus": "paid"},
		withToken(api.token(t, adminID, domain.RoleAdmin)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res service.StatusResult
	decodeData(t, rec, &res)
	assert.Equal(t, domain.PaymentPaid, res.Order.PaymentStatus)
	require.NotNil(t, res.History)
	assert.Equal(t, orderID, res.History.OrderID)
}

func TestOrders_Archive(t *testing.T) {
	api := newTestAPI(t)
	admin := withToken(api.token(t, adminID, domain.RoleAdmin))
	completed := &domain.Order{ID: orderID, UserID: userID, DeliveryStatus: domain.DeliveryDelivered, PaymentStatus: domain.PaymentPaid}
	entry := &domain.OrderHistoryEntry{ID: "h1", OrderID: orderID}

	api.orders.On("GetByID", mock.Anything, orderID).Return(completed, nil)
	api.history.On("Create", mock.Anything, mock.Anything).Return(entry, true, nil).Once()
	api.history.On("Create", mock.Anything, mock.Anything).Return(entry, false, nil).Once()

	rec := api.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/archive", nil, admin)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/archive", nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)
	var res service.ArchiveResult
	decodeData(t, rec, &res)
	assert.False(t, res.Created)
	assert.Equal(t, "h1", res.Entry.ID)
}

func TestOrders_Archive_NotCompleted(t *testing.T) {
	api := newTestAPI(t)
	api.orders.On("GetByID", mock.Anything, orderID).Return(&domain.Order{
		ID: orderID, DeliveryStatus: domain.DeliveryOnTheWay, PaymentStatus: domain.PaymentPaid,
	}, nil)

	rec := api.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/archive", nil, withToken(api.token(t, adminID, domain.RoleAdmin)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_STATUS", decodeResponse(t, rec).Error.Code)
}

func TestOrders_AdminComment_EmptyText(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/admin-comment",
		map[string]string{"text": "   "},
		withToken(api.token(t, adminID, domain.RoleAdmin)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeResponse(t, rec).Error.Code)
}

func TestProducts_List(t *testing.T) {
	api := newTestAPI(t)
	api.products.On("List", mock.Anything, domain.ProductFilter{Sort: "price_asc", Page: 2, PerPage: 5}).
		Return([]domain.Product{*dress()}, 6, nil)

	rec := api.do(t, http.MethodGet, "/api/v1/products?sort=price_asc&page=2&perPage=5&lang=en", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))

	var page struct {
		Items []struct {
			ID             string `json:"id"`
			EffectivePrice int64  `json:"effectivePrice"`
			DiscountActive bool   `json:"discountActive"`
			LocalizedTitle string `json:"localizedTitle"`
		} `json:"items"`
		TotalCount int  `json:"totalCount"`
		HasNext    bool `json:"hasNext"`
	}
	decodeData(t, rec, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(900), page.Items[0].EffectivePrice)
	assert.True(t, page.Items[0].DiscountActive)
	assert.Equal(t, "Dress", page.Items[0].LocalizedTitle)
	assert.Equal(t, 6, page.TotalCount)
	assert.False(t, page.HasNext)
}

func TestProducts_List_SearchEngine(t *testing.T) {
	api := newTestAPI(t)
	api.engine.On("Search", mock.Anything, mock.Anything).Return([]string{productID}, nil)
	api.products.On("List", mock.Anything, domain.ProductFilter{IDs: []string{productID}, Page: 1, PerPage: 20}).
		Return([]domain.Product{*dress()}, 1, nil)

	rec := api.do(t, http.MethodGet, "/api/v1/products?q=dress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	api.products.AssertExpectations(t)
}

func TestProducts_List_BadSort(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/v1/products?sort=popular", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProducts_Create_AdminOnly(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]any{"title": map[string]string{"ru": "Платье"}, "price": 1000, "discount": 150}

	rec := api.do(t, http.MethodPost, "/api/v1/products", body, withToken(api.token(t, userID, domain.RoleCustomer)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/products", body, withToken(api.token(t, adminID, domain.RoleAdmin)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeResponse(t, rec).Error.Fields, "discount")
}

func TestCategories_DeleteInUse(t *testing.T) {
	api := newTestAPI(t)
	const categoryID = "5c8a1f0e-2b3d-4e5f-8a9b-0c1d2e3f4a5b"
	api.categories.On("Delete", mock.Anything, categoryID).Return(apperrors.Conflict("category still has products"))

	rec := api.do(t, http.MethodDelete, "/api/v1/categories/"+categoryID, nil, withToken(api.token(t, adminID, domain.RoleAdmin)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWishlist_AddUnknownProduct(t *testing.T) {
	api := newTestAPI(t)
	api.wishlist.On("Add", mock.Anything, userID, productID).Return(apperrors.NotFound("product", productID))

	rec := api.do(t, http.MethodPost, "/api/v1/wishlist/"+productID, nil, withToken(api.token(t, userID, domain.RoleCustomer)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalytics_Track(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/analytics/event", map[string]any{
		"type": "product_view", "productId": productID,
	}, withSession("sess-7"))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	events := api.emitter.emitted()
	require.Len(t, events, 1)
	assert.Equal(t, "sess-7", events[0].SessionID)

	rec = api.do(t, http.MethodPost, "/api/v1/analytics/event", map[string]any{
		"type": "page_scroll", "productId": productID, "sessionId": "s",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalytics_TopProducts_BadSince(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/api/v1/analytics/top-products?since=yesterday", nil,
		withToken(api.token(t, adminID, domain.RoleAdmin)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartOwner_PrefersUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := middleware.WithClaims(context.Background(), &middleware.Claims{UserID: "u1"})
	assert.Equal(t, "u1", cartOwner(req.WithContext(ctx)))
	assert.Equal(t, "", cartOwner(req))
}

func TestRequestLang(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?lang=kg", nil)
	assert.Equal(t, "kg", requestLang(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	assert.Equal(t, "en", requestLang(req))

	req.Header.Set("Accept-Language", "de")
	assert.Equal(t, "ru", requestLang(req))
}
