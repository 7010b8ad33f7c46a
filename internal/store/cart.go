package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kondarsoft/marketplace/internal/identity"
	"github.com/kondarsoft/marketplace/internal/models"
)

var ErrCartNotFound = errors.New("cart not found")

type CartStore struct {
	DB *gorm.DB
}

// Find looks the cart up by the identity's active field only; the inactive
// field is never part of the filter.
func (s *CartStore) Find(ctx context.Context, id identity.Bucket) (*models.Cart, error) {
	var cart models.Cart
	if err := s.whereIdentity(ctx, id).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// FindOrCreate creates the cart lazily on first add, with only the active
// identity field populated. The read-then-write pair is deliberately not
// wrapped in a transaction; two concurrent first adds from the same new
// identity can race (see DESIGN.md).
func (s *CartStore) FindOrCreate(ctx context.Context, id identity.Bucket) (*models.Cart, error) {
	cart, err := s.Find(ctx, id)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrCartNotFound) {
		return nil, err
	}

	fresh := newCart(id)
	if err := s.DB.WithContext(ctx).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// Create unconditionally inserts a new cart for the identity.
func (s *CartStore) Create(ctx context.Context, id identity.Bucket) (*models.Cart, error) {
	cart := newCart(id)
	if err := s.DB.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem upserts by the (cart_id, product_id) compound key: an existing
// row has its quantity incremented in place, never overwritten.
func (s *CartStore) AddItem(ctx context.Context, cartID uint, productID string, quantity uint) (*models.CartItem, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return nil, res.Error
	}

	var item models.CartItem
	if res.RowsAffected == 0 {
		item = models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
		if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}

	if err := s.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetWithItems fetches the cart and its line items, with the product
// display data the storefront needs, in one read.
func (s *CartStore) GetWithItems(ctx context.Context, id identity.Bucket) (*models.Cart, error) {
	var cart models.Cart
	if err := s.whereIdentity(ctx, id).Preload("Items.Product").First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

func (s *CartStore) whereIdentity(ctx context.Context, id identity.Bucket) *gorm.DB {
	q := s.DB.WithContext(ctx)
	if id.Authenticated() {
		return q.Where("user_id = ?", id.UserID)
	}
	return q.Where("session_id = ?", id.SessionID)
}

func newCart(id identity.Bucket) models.Cart {
	var cart models.Cart
	if id.Authenticated() {
		cart.UserID = &id.UserID
		return cart
	}
	cart.SessionID = &id.SessionID
	if !id.Expiry.IsZero() {
		expiry := id.Expiry
		cart.SessionExpiry = &expiry
	}
	return cart
}
