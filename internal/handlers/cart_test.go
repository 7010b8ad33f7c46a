package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/kondarsoft/marketplace/internal/cache"
	"github.com/kondarsoft/marketplace/internal/models"
)

func bearerToken(t *testing.T, env *testEnv, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID})
	signed, err := token.SignedString(env.JWTSecret)
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestAddToCartValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		body map[string]any
		want string
	}{
		{map[string]any{"productId": "prod-1", "quantity": 1}, "Missing required userId"},
		{map[string]any{"userId": "user-1", "quantity": 1}, "Missing required productId"},
		{map[string]any{"userId": "user-1", "productId": "prod-1"}, "Missing required quantity"},
	}
	for _, tc := range cases {
		rec, c := env.doJSONRequest(http.MethodPost, "/api/cart/add-to-cart", tc.body)
		require.NoError(t, env.C.AddToCart(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, tc.want, rec.Body.String())
	}
}

func TestAddToCartIncrementsExistingLine(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"userId": "user-1", "productId": "prod-1", "quantity": 2}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/cart/add-to-cart", body)
	require.NoError(t, env.C.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Successfully added item to cart.", rec.Body.String())

	body["quantity"] = 3
	rec, c = env.doJSONRequest(http.MethodPost, "/api/cart/add-to-cart", body)
	require.NoError(t, env.C.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, env.DB.Find(&items).Error)
	require.Len(t, items, 1)
	require.EqualValues(t, 5, items[0].Quantity)

	var carts int64
	require.NoError(t, env.DB.Model(&models.Cart{}).Count(&carts).Error)
	require.EqualValues(t, 1, carts)

	require.Len(t, env.Producer.Events, 2)
	require.Equal(t, "cart_events", env.Producer.Events[0].Topic)
	require.Equal(t, "user-1", env.Producer.Events[0].Key)
}

func TestCreateCartAnonymous(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/cart/create-cart", map[string]any{"productId": "prod-1", "quantity": 2})
	c.Request().Header.Set("X-Forwarded-For", "203.0.113.7")
	require.NoError(t, env.C.CreateCart(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Successfully added item to cart.", rec.Body.String())

	ck := sessionCookie(t, rec, "cartSessionId")

	var cart models.Cart
	require.NoError(t, env.DB.Preload("Items").First(&cart).Error)
	require.Nil(t, cart.UserID)
	require.NotNil(t, cart.SessionID)
	require.Equal(t, ck.Value, *cart.SessionID)
	require.NotNil(t, cart.SessionExpiry)
	require.Len(t, cart.Items, 1)
	require.EqualValues(t, 2, cart.Items[0].Quantity)
}

func TestCreateCartMintFailure(t *testing.T) {
	env := newTestEnv(t)

	// No userId, no cookie and no client IP: the session cannot be minted.
	rec, c := env.doJSONRequest(http.MethodPost, "/api/cart/create-cart", map[string]any{"productId": "prod-1", "quantity": 1})
	require.NoError(t, env.C.CreateCart(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Error: Failed to create sessionId", rec.Body.String())
}

func TestCreateCartValidation(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/cart/create-cart", map[string]any{"quantity": 1})
	require.NoError(t, env.C.CreateCart(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing required productId", rec.Body.String())

	rec, c = env.doJSONRequest(http.MethodPost, "/api/cart/create-cart", map[string]any{"productId": "prod-1"})
	require.NoError(t, env.C.CreateCart(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing required quantity", rec.Body.String())
}

func TestGetCartCacheHit(t *testing.T) {
	env := newTestEnv(t)

	payload := `[{"id":9,"cartId":1,"productId":"prod-1","quantity":4}]`
	env.Cache.Preset("cart-203.0.113.7", payload)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/cart/get-cart", nil)
	c.Request().Header.Set("X-Forwarded-For", "203.0.113.7")
	require.NoError(t, env.C.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// The cached payload is served verbatim and nothing is written back.
	require.Equal(t, payload, rec.Body.String())
	require.Empty(t, env.Cache.Sets)
}

func TestGetCartCacheMissAuthenticated(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.DB.Create(&models.Product{ID: "prod-1", Name: "Desk Lamp", Price: 39.99}).Error)
	body := map[string]any{"userId": "user-1", "productId": "prod-1", "quantity": 2}
	_, c := env.doJSONRequest(http.MethodPost, "/api/cart/add-to-cart", body)
	require.NoError(t, env.C.AddToCart(c))

	rec, c := env.doJSONRequest(http.MethodGet, "/api/cart/get-cart", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, bearerToken(t, env, "user-1"))
	require.NoError(t, env.C.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.EqualValues(t, 2, items[0].Quantity)
	require.Equal(t, "Desk Lamp", items[0].Product.Name)

	require.Len(t, env.Cache.Sets, 1)
	require.Equal(t, "cart-user-1", env.Cache.Sets[0].Key)
	require.Equal(t, rec.Body.String(), env.Cache.Sets[0].Value)
	require.Equal(t, cache.CartTTL, env.Cache.Sets[0].TTL)
}

func TestGetCartCacheWriteFailureTolerated(t *testing.T) {
	env := newTestEnv(t)
	env.Cache.SetErr = errors.New("redis unavailable")

	body := map[string]any{"userId": "user-1", "productId": "prod-1", "quantity": 2}
	_, c := env.doJSONRequest(http.MethodPost, "/api/cart/add-to-cart", body)
	require.NoError(t, env.C.AddToCart(c))

	// The cache write fails but the fresh read is still served.
	rec, c := env.doJSONRequest(http.MethodGet, "/api/cart/get-cart", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, bearerToken(t, env, "user-1"))
	require.NoError(t, env.C.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
}

func TestGetCartAnonymousWithoutCart(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/cart/get-cart", nil)
	c.Request().Header.Set("X-Forwarded-For", "203.0.113.7")
	require.NoError(t, env.C.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Empty(t, items)
	require.Empty(t, env.Cache.Sets)
}

func TestGetCartAuthenticatedWithoutCart(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSONRequest(http.MethodGet, "/api/cart/get-cart", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, bearerToken(t, env, "user-1"))
	require.NoError(t, env.C.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []models.CartItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Empty(t, items)
}
