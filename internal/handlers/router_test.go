package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/chriskamgang/MyINSAM-Resto/internal/coupon"
	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
	"github.com/chriskamgang/MyINSAM-Resto/internal/repository"
	"github.com/chriskamgang/MyINSAM-Resto/internal/service"
	"github.com/chriskamgang/MyINSAM-Resto/pkg/logger"
)

const (
	testRestaurantID = 1
	testLat          = 5.4720
	testLon          = 10.4180
)

type testAPI struct {
	handler  http.Handler
	services Services
	orders   repository.OrderRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := logger.Discard()

	users := repository.NewInMemoryUserRepository()
	orders := repository.NewInMemoryOrderRepository()
	menu := repository.NewInMemoryMenuRepository(repository.RestaurantSeed{
		ID: testRestaurantID, Latitude: testLat, Longitude: testLon, DeliveryFee: 500,
	})
	catalog := coupon.NewCatalog(coupon.DefaultRules())

	profile := service.NewProfileService(users, log)
	orderSvc := service.NewOrderService(menu, orders, users, catalog, profile, service.OrderConfig{PrepTime: 20 * time.Minute, SpeedKmh: 20}, log)
	svc := Services{
		Auth:     service.NewAuthService(users, bcrypt.MinCost, log),
		Menu:     service.NewMenuService(menu),
		Orders:   orderSvc,
		Payments: service.NewPaymentService(orders, orderSvc, log),
		Profile:  profile,
		Coupons:  catalog,
	}
	return &testAPI{
		handler:  NewRouter(svc, RouterOptions{Sandbox: true}, log),
		services: svc,
		orders:   orders,
	}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) register(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Name: "Client", Email: email, Password: "secret1", PasswordConfirmation: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res models.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (a *testAPI) addAddress(t *testing.T, token string) models.Address {
	t.Helper()
	lat, lon := models.Float(testLat+0.02), models.Float(testLon)
	rec := a.do(t, http.MethodPost, "/api/profile/addresses", token, models.AddressInput{
		Label: "Maison", Address: "Foreke, Dschang", Latitude: &lat, Longitude: &lon,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res struct {
		Address models.Address `json:"address"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.Address
}

func (a *testAPI) placeOrder(t *testing.T, token string, addressID int64, method models.PaymentMethod) models.Order {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/orders", token, models.CreateOrderRequest{
		RestaurantID:  testRestaurantID,
		AddressID:     addressID,
		PaymentMethod: method,
		Items:         []models.OrderItemRequest{{MenuItemID: 1, Quantity: 2}, {MenuItemID: 6, Quantity: 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res models.OrderEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Order)
	return *res.Order
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "healthy", res.Status)
	assert.EqualValues(t, 4, res.Coupons["total_coupons"])
}

func TestAuthRoutes(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "awa@example.cm")

	t.Run("me", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var res struct {
			User models.User `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "awa@example.cm", res.User.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
			Name: "Other", Email: "AWA@example.cm", Password: "secret1", PasswordConfirmation: "secret1",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "This email is already registered", message(t, rec))
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "awa@example.cm", Password: "nope123"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", message(t, rec))
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("protected route without token", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/orders", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		other := api.register(t, "ben@example.cm")
		rec := api.do(t, http.MethodPost, "/api/auth/logout", other, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = api.do(t, http.MethodGet, "/api/auth/me", other, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMenuRoutes(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"restaurant", "/api/restaurants/1", http.StatusOK},
		{"menu", "/api/restaurants/1/menu", http.StatusOK},
		{"unknown restaurant", "/api/restaurants/99", http.StatusNotFound},
		{"bad id", "/api/restaurants/abc/menu", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, tt.path, "", nil)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}

	rec := api.do(t, http.MethodGet, "/api/restaurants/1/menu", "", nil)
	var menu models.Menu
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &menu))
	assert.Equal(t, int64(testRestaurantID), menu.Restaurant.ID)
	assert.NotEmpty(t, menu.Menu)
}

func TestCouponRoutes(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "awa@example.cm")

	tests := []struct {
		name           string
		code           string
		subtotal       money.Amount
		expectedStatus int
		expectedMsg    string
	}{
		{"percentage", "bienvenue", 6000, http.StatusOK, "Coupon applied"},
		{"below minimum", "DSCHANG500", 2000, http.StatusUnprocessableEntity, "This coupon requires a minimum order of 3 000 XAF"},
		{"expired", "INSAM2023", 6000, http.StatusUnprocessableEntity, "This coupon has expired"},
		{"unknown", "NOPE", 6000, http.StatusUnprocessableEntity, "Invalid coupon code"},
		{"empty", " ", 6000, http.StatusUnprocessableEntity, "Please enter a coupon code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/coupons/validate", token, models.ValidateCouponRequest{
				Code: tt.code, Subtotal: tt.subtotal, RestaurantID: testRestaurantID,
			})
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedMsg, message(t, rec))
		})
	}

	rec := api.do(t, http.MethodPost, "/api/coupons/validate", token, models.ValidateCouponRequest{Code: "BIENVENUE", Subtotal: 6000})
	var v models.CouponValidation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, "BIENVENUE", v.Coupon.Code)
	assert.Equal(t, money.Amount(600), v.DiscountAmount)

	rec = api.do(t, http.MethodGet, "/api/coupons/stats", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderRoutes(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "awa@example.cm")
	addr := api.addAddress(t, token)

	t.Run("create validation", func(t *testing.T) {
		tests := []struct {
			name           string
			req            models.CreateOrderRequest
			expectedStatus int
		}{
			{"empty", models.CreateOrderRequest{RestaurantID: 1, AddressID: addr.ID, PaymentMethod: models.PaymentCash}, http.StatusUnprocessableEntity},
			{"bad method", models.CreateOrderRequest{RestaurantID: 1, AddressID: addr.ID, PaymentMethod: "cheque", Items: []models.OrderItemRequest{{MenuItemID: 1, Quantity: 1}}}, http.StatusUnprocessableEntity},
			{"unavailable item", models.CreateOrderRequest{RestaurantID: 1, AddressID: addr.ID, PaymentMethod: models.PaymentCash, Items: []models.OrderItemRequest{{MenuItemID: 4, Quantity: 1}}}, http.StatusUnprocessableEntity},
			{"unknown address", models.CreateOrderRequest{RestaurantID: 1, AddressID: 999, PaymentMethod: models.PaymentCash, Items: []models.OrderItemRequest{{MenuItemID: 1, Quantity: 1}}}, http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := api.do(t, http.MethodPost, "/api/orders", token, tt.req)
				assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			})
		}
	})

	t.Run("coupon is applied to the order", func(t *testing.T) {
		code := "BIENVENUE"
		rec := api.do(t, http.MethodPost, "/api/orders", token, models.CreateOrderRequest{
			RestaurantID: 1, AddressID: addr.ID, PaymentMethod: models.PaymentCash, CouponCode: &code,
			Items: []models.OrderItemRequest{{MenuItemID: 1, Quantity: 2}, {MenuItemID: 6, Quantity: 1}},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var res models.OrderEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, money.Amount(6000), res.Order.Subtotal)
		assert.Equal(t, money.Amount(600), res.Order.Discount)
		assert.Equal(t, money.Amount(5900), res.Order.Total)

		// a second use by the same customer is rejected
		rec = api.do(t, http.MethodPost, "/api/orders", token, models.CreateOrderRequest{
			RestaurantID: 1, AddressID: addr.ID, PaymentMethod: models.PaymentCash, CouponCode: &code,
			Items: []models.OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "You have already used this coupon", message(t, rec))
	})

	o := api.placeOrder(t, token, addr.ID, models.PaymentCash)
	assert.Equal(t, money.Amount(6500), o.Total)
	orderPath := fmt.Sprintf("/api/orders/%d", o.ID)

	t.Run("list and get", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/api/orders", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list struct {
			Data []models.Order `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.NotEmpty(t, list.Data)
		assert.Equal(t, o.ID, list.Data[0].ID)

		rec = api.do(t, http.MethodGet, orderPath, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var one struct {
			Order models.Order `json:"order"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
		assert.Equal(t, o.OrderNumber, one.Order.OrderNumber)
	})

	t.Run("other customers cannot see the order", func(t *testing.T) {
		other := api.register(t, "ben@example.cm")
		rec := api.do(t, http.MethodGet, orderPath, other, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("track", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, orderPath+"/track", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var info models.TrackingInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		assert.Equal(t, models.OrderStatus("pending"), info.OrderStatus)
		assert.Nil(t, info.Driver)
	})

	t.Run("rate before delivery", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, orderPath+"/rate", token, models.RateOrderRequest{RestaurantRating: 5, DriverRating: 5})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("cancel too late", func(t *testing.T) {
		late := api.placeOrder(t, token, addr.ID, models.PaymentCash)
		for i := 0; i < 2; i++ {
			rec := api.do(t, http.MethodPost, fmt.Sprintf("/api/sandbox/orders/%d/advance", late.ID), "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
		}
		rec := api.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", late.ID), token, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "This order can no longer be cancelled", message(t, rec))
	})

	t.Run("cancel", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, orderPath+"/cancel", token, models.CancelOrderRequest{Reason: "changed my mind"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res models.OrderEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, models.OrderStatus("cancelled"), res.Order.Status)
		assert.Equal(t, "changed my mind", res.Order.CancellationReason)

		rec = api.do(t, http.MethodPost, fmt.Sprintf("/api/sandbox/orders/%d/advance", o.ID), "", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestDeliverAndRate(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "awa@example.cm")
	addr := api.addAddress(t, token)
	o := api.placeOrder(t, token, addr.ID, models.PaymentCash)

	for i := 0; i < 6; i++ {
		rec := api.do(t, http.MethodPost, fmt.Sprintf("/api/sandbox/orders/%d/advance", o.ID), "", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	path := fmt.Sprintf("/api/orders/%d/rate", o.ID)
	rec := api.do(t, http.MethodPost, path, token, models.RateOrderRequest{RestaurantRating: 6, DriverRating: 5})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPost, path, token, models.RateOrderRequest{RestaurantRating: 5, DriverRating: 4, Comment: "Très bon"})
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.OrderEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotNil(t, res.Order.Rating)
	assert.Equal(t, 4, res.Order.Rating.DriverRating)
	assert.Equal(t, models.OrderPaymentPaid, res.Order.PaymentStatus)

	rec = api.do(t, http.MethodPost, path, token, models.RateOrderRequest{RestaurantRating: 5, DriverRating: 5})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPaymentRoutes(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "awa@example.cm")
	addr := api.addAddress(t, token)

	cash := api.placeOrder(t, token, addr.ID, models.PaymentCash)
	momo := api.placeOrder(t, token, addr.ID, models.PaymentMTNMoMo)

	tests := []struct {
		name           string
		req            models.InitiatePaymentRequest
		expectedStatus int
	}{
		{"cash order", models.InitiatePaymentRequest{OrderID: cash.ID, Phone: "677123456"}, http.StatusUnprocessableEntity},
		{"bad phone", models.InitiatePaymentRequest{OrderID: momo.ID, Phone: "12"}, http.StatusUnprocessableEntity},
		{"method mismatch", models.InitiatePaymentRequest{OrderID: momo.ID, Phone: "677123456", Method: models.PaymentOrangeMoney}, http.StatusUnprocessableEntity},
		{"unknown order", models.InitiatePaymentRequest{OrderID: 999, Phone: "677123456"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/payments/initiate-mobile", token, tt.req)
			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
		})
	}

	rec := api.do(t, http.MethodPost, "/api/payments/initiate-mobile", token, models.InitiatePaymentRequest{OrderID: momo.ID, Phone: "677123456"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env models.PaymentEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Payment)
	assert.Equal(t, models.PaymentPending, env.Payment.Status)
	assert.Equal(t, momo.Total, env.Payment.Amount)

	rec = api.do(t, http.MethodPost, "/api/payments/initiate-mobile", token, models.InitiatePaymentRequest{OrderID: momo.ID, Phone: "677123456"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	statusPath := fmt.Sprintf("/api/payments/%d/status", env.Payment.ID)
	other := api.register(t, "ben@example.cm")
	rec = api.do(t, http.MethodGet, statusPath, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resolvePath := fmt.Sprintf("/api/sandbox/payments/%d/resolve", env.Payment.ID)
	rec = api.do(t, http.MethodPost, resolvePath, "", models.ResolvePaymentRequest{Status: models.PaymentPending})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodPost, resolvePath, "", models.ResolvePaymentRequest{Status: models.PaymentCompleted})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, statusPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st struct {
		Payment models.Payment `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, models.PaymentCompleted, st.Payment.Status)

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", momo.ID), token, nil)
	var one struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, models.OrderStatus("confirmed"), one.Order.Status)
	assert.Equal(t, models.OrderPaymentPaid, one.Order.PaymentStatus)

	rec = api.do(t, http.MethodPost, resolvePath, "", models.ResolvePaymentRequest{Status: models.PaymentFailed})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProfileRoutes(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "awa@example.cm")

	rec := api.do(t, http.MethodGet, "/api/profile/addresses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"addresses":[]}`, rec.Body.String())

	first := api.addAddress(t, token)
	assert.True(t, first.IsDefault)

	rec = api.do(t, http.MethodPost, "/api/profile/addresses", token, models.AddressInput{Address: "Campus INSAM"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Address models.Address `json:"address"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Home", created.Address.Label)
	assert.False(t, created.Address.IsDefault)

	rec = api.do(t, http.MethodPost, fmt.Sprintf("/api/profile/addresses/%d/default", created.Address.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/profile/addresses", token, nil)
	var list struct {
		Addresses []models.Address `json:"addresses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Addresses, 2)
	defaults := 0
	for _, a := range list.Addresses {
		if a.IsDefault {
			defaults++
			assert.Equal(t, created.Address.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	rec = api.do(t, http.MethodPost, "/api/profile/addresses", token, models.AddressInput{Label: "Vide"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/api/profile/addresses/%d", first.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/api/profile/addresses/%d", first.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/profile", token, models.UpdateProfileRequest{Name: "Awa Ngono", Phone: "677000111"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPut, "/api/profile", token, models.UpdateProfileRequest{Name: " "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/profile", token, nil)
	var prof struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prof))
	assert.Equal(t, "Awa Ngono", prof.User.Name)
}

func TestNotificationRoutes(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "awa@example.cm")
	addr := api.addAddress(t, token)
	api.placeOrder(t, token, addr.ID, models.PaymentCash)

	rec := api.do(t, http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Notifications []models.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.NotEmpty(t, list.Notifications)
	assert.Nil(t, list.Notifications[0].ReadAt)

	rec = api.do(t, http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", list.Notifications[0].ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, "/api/notifications/999/read", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(t, http.MethodPost, "/api/notifications/read-all", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/notifications", token, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	for _, n := range list.Notifications {
		assert.NotNil(t, n.ReadAt)
	}
}

func TestSandboxRoutesAreOptional(t *testing.T) {
	api := newTestAPI(t)
	h := NewRouter(api.services, RouterOptions{}, logger.Discard())

	req := httptest.NewRequest(http.MethodPost, "/api/sandbox/orders/1/advance", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	api := newTestAPI(t)
	h := NewRouter(api.services, RouterOptions{AuthPerMinute: 1, AuthBurst: 1}, logger.Discard())

	login := func() int {
		body := bytes.NewBufferString(`{"email":"nobody@example.cm","password":"secret1"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusTooManyRequests, login())
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{"wrapped coupon rejection", fmt.Errorf("%w: %w", service.ErrInvalidCoupon, coupon.ErrExpired), http.StatusUnprocessableEntity, "This coupon has expired"},
		{"unavailable item", fmt.Errorf("%w: Taro", service.ErrItemUnavailable), http.StatusUnprocessableEntity, "Some items are no longer available"},
		{"cannot cancel", service.ErrCannotCancel, http.StatusConflict, "This order can no longer be cancelled"},
		{"payment in progress", service.ErrPaymentInProgress, http.StatusConflict, "A payment is already in progress for this order"},
		{"restaurant", repository.ErrRestaurantNotFound, http.StatusNotFound, "Restaurant not found"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := errorResponse(tt.err)
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedMsg, msg)
		})
	}
}
