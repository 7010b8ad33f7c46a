package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kondarsoft/marketplace/internal/cache"
	"github.com/kondarsoft/marketplace/internal/events"
	"github.com/kondarsoft/marketplace/internal/identity"
	"github.com/kondarsoft/marketplace/internal/logging"
	"github.com/kondarsoft/marketplace/internal/models"
	"github.com/kondarsoft/marketplace/internal/store"
)

type CartHandler struct {
	Store     *store.CartStore
	Cache     cache.Cache
	Resolver  *identity.Resolver
	Producer  events.Publisher
	JWTSecret []byte
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.Publish(ctx, "cart_events", fmt.Sprint(event["identity"]), event); err != nil {
		logging.FromContext(ctx).Error("Kafka publish error", "error", err)
	}
}

type cartRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  uint   `json:"quantity"`
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	var req cartRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}
	if req.UserID == "" {
		return c.String(http.StatusBadRequest, "Missing required userId")
	}
	if req.ProductID == "" {
		return c.String(http.StatusBadRequest, "Missing required productId")
	}
	if req.Quantity == 0 {
		return c.String(http.StatusBadRequest, "Missing required quantity")
	}

	ctx := c.Request().Context()
	log := logging.FromContext(ctx)
	id := identity.Bucket{UserID: req.UserID}

	cart, err := h.Store.FindOrCreate(ctx, id)
	if err != nil {
		log.Error("Error adding item to cart", "error", err)
		return c.String(http.StatusInternalServerError, err.Error())
	}

	item, err := h.Store.AddItem(ctx, cart.ID, req.ProductID, req.Quantity)
	if err != nil {
		log.Error("Error adding item to cart", "error", err)
		return c.String(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"identity":  req.UserID,
		"productID": item.ProductID,
		"quantity":  item.Quantity,
	})

	return c.String(http.StatusOK, "Successfully added item to cart.")
}

// CreateCart inserts a fresh cart with its first item. Anonymous callers get
// a minted cartSessionId cookie instead of a userId.
func (h *CartHandler) CreateCart(c echo.Context) error {
	var req cartRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}
	if req.ProductID == "" {
		return c.String(http.StatusBadRequest, "Missing required productId")
	}
	if req.Quantity == 0 {
		return c.String(http.StatusBadRequest, "Missing required quantity")
	}

	id, ok := h.Resolver.Resolve(c, req.UserID)
	if !ok {
		var err error
		id, err = h.Resolver.Mint(c)
		if err != nil {
			return c.String(http.StatusBadRequest, "Error: Failed to create sessionId")
		}
	}

	ctx := c.Request().Context()
	log := logging.FromContext(ctx)

	cart, err := h.Store.Create(ctx, id)
	if err != nil {
		log.Error("Error adding item to cart", "error", err)
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if _, err := h.Store.AddItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		log.Error("Error adding item to cart", "error", err)
		return c.String(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_created",
		"identity":  identKey(id),
		"productID": req.ProductID,
		"quantity":  req.Quantity,
	})

	return c.String(http.StatusOK, "Successfully added item to cart.")
}

// GetCart is the cache-aside read path. The key is the authenticated user
// id when present, otherwise the client IP; note the anonymous key is a
// weaker identity proxy than the session cookie and the two are kept apart.
func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	log := logging.FromContext(ctx)

	userID := identity.UserFromToken(c, h.JWTSecret)
	ip := identity.ClientIP(c.Request())

	cacheKey := "cart-" + ip
	if userID != "" {
		cacheKey = "cart-" + userID
	}

	if cached, err := h.Cache.Get(ctx, cacheKey); err == nil {
		return c.JSONBlob(http.StatusOK, []byte(cached))
	} else if !errors.Is(err, cache.ErrMiss) {
		log.Error("cart cache read error", "error", err)
	}

	if userID != "" {
		cart, err := h.Store.GetWithItems(ctx, identity.Bucket{UserID: userID})
		if err == nil {
			payload, err := json.Marshal(cart.Items)
			if err != nil {
				log.Error("Error getting cart", "error", err)
				return c.String(http.StatusInternalServerError, err.Error())
			}
			// Fire-and-forget: a cache write failure never fails the request.
			if err := h.Cache.Set(ctx, cacheKey, string(payload), cache.CartTTL); err != nil {
				log.Error("cart cache write error", "error", err)
			}
			return c.JSONBlob(http.StatusOK, payload)
		}
		if !errors.Is(err, store.ErrCartNotFound) {
			log.Error("Error getting cart", "error", err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, []models.CartItem{})
}
