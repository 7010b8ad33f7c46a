package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kondarsoft/marketplace/internal/events"
	"github.com/kondarsoft/marketplace/internal/identity"
	"github.com/kondarsoft/marketplace/internal/logging"
	"github.com/kondarsoft/marketplace/internal/store"
)

type WishlistHandler struct {
	Store    *store.WishlistStore
	Resolver *identity.Resolver
	Producer events.Publisher
}

func (h *WishlistHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.Publish(ctx, "wishlist_events", fmt.Sprint(event["identity"]), event); err != nil {
		logging.FromContext(ctx).Error("Kafka publish error", "error", err)
	}
}

func (h *WishlistHandler) Add(c echo.Context) error {
	var req struct {
		UserID    string `json:"userId"`
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Missing required productId")
	}
	if req.ProductID == "" {
		return c.String(http.StatusBadRequest, "Missing required productId")
	}

	ctx := c.Request().Context()
	log := logging.FromContext(ctx)

	id, ok := h.Resolver.Resolve(c, req.UserID)
	if !ok {
		var err error
		id, err = h.Resolver.Mint(c)
		if errors.Is(err, identity.ErrNoClientIP) {
			return c.String(http.StatusBadRequest, "Error getting user's IP address")
		}
		if err != nil {
			return c.String(http.StatusBadRequest, "Error: Failed to create sessionId")
		}
	}

	wl, err := h.Store.FindOrCreate(ctx, id)
	if err != nil {
		log.Error("Error adding item to wishlist", "error", err)
		return c.String(http.StatusInternalServerError, "Internal server error")
	}

	if _, err := h.Store.AddItem(ctx, wl.ID, req.ProductID); err != nil {
		// The compound unique key is the duplicate guard: a repeat add of
		// the same product is a no-op, not a failure.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Error("Error adding item to wishlist", "error", err)
			return c.String(http.StatusInternalServerError, "Internal server error")
		}
	}

	h.publish(c, map[string]any{
		"type":      "wishlist_item_added",
		"identity":  identKey(id),
		"productID": req.ProductID,
	})

	return c.String(http.StatusOK, "Successfully added item to wishlist")
}

func (h *WishlistHandler) Get(c echo.Context) error {
	id, ok := h.Resolver.Resolve(c, c.QueryParam("userId"))
	if !ok {
		return c.String(http.StatusBadRequest, "No sessionId found")
	}

	ctx := c.Request().Context()
	wl, err := h.Store.GetWithItems(ctx, id)
	if errors.Is(err, store.ErrWishlistNotFound) {
		return c.String(http.StatusNotFound, "Wishlist not found")
	}
	if err != nil {
		logging.FromContext(ctx).Error("Error getting wishlist", "error", err)
		return c.String(http.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(http.StatusOK, wl)
}

func (h *WishlistHandler) Remove(c echo.Context) error {
	productID := c.Param("productId")
	if productID == "" {
		return c.String(http.StatusBadRequest, "Missing required productId")
	}

	id, ok := h.Resolver.Resolve(c, c.QueryParam("userId"))
	if !ok {
		return c.String(http.StatusBadRequest, "No sessionId found")
	}

	ctx := c.Request().Context()
	err := h.Store.RemoveItem(ctx, id, productID)
	if errors.Is(err, store.ErrWishlistNotFound) {
		return c.String(http.StatusNotFound, "Wishlist not found")
	}
	if err != nil {
		logging.FromContext(ctx).Error("Error removing item from wishlist", "error", err)
		return c.String(http.StatusInternalServerError, "Internal server error")
	}

	h.publish(c, map[string]any{
		"type":      "wishlist_item_removed",
		"identity":  identKey(id),
		"productID": productID,
	})

	return c.String(http.StatusOK, "Successfully removed item from wishlist")
}

func identKey(id identity.Bucket) string {
	if id.Authenticated() {
		return id.UserID
	}
	return id.SessionID
}
