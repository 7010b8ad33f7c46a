package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kondarsoft/marketplace/internal/identity"
	"github.com/kondarsoft/marketplace/internal/models"
)

var ErrWishlistNotFound = errors.New("wishlist not found")

type WishlistStore struct {
	DB *gorm.DB
}

func (s *WishlistStore) Find(ctx context.Context, id identity.Bucket) (*models.Wishlist, error) {
	var wl models.Wishlist
	if err := s.whereIdentity(ctx, id).First(&wl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistNotFound
		}
		return nil, err
	}
	return &wl, nil
}

func (s *WishlistStore) FindOrCreate(ctx context.Context, id identity.Bucket) (*models.Wishlist, error) {
	wl, err := s.Find(ctx, id)
	if err == nil {
		return wl, nil
	}
	if !errors.Is(err, ErrWishlistNotFound) {
		return nil, err
	}

	fresh := newWishlist(id)
	if err := s.DB.WithContext(ctx).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// AddItem inserts the (wishlist_id, product_id) row. The compound unique key
// is the duplicate guard; a repeat add surfaces gorm.ErrDuplicatedKey and is
// not pre-checked.
func (s *WishlistStore) AddItem(ctx context.Context, wishlistID uint, productID string) (*models.WishlistItem, error) {
	item := models.WishlistItem{WishlistID: wishlistID, ProductID: productID}
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes by the compound key. A missing wishlist is reported as
// ErrWishlistNotFound before any item lookup happens.
func (s *WishlistStore) RemoveItem(ctx context.Context, id identity.Bucket, productID string) error {
	wl, err := s.Find(ctx, id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wl.ID, productID).
		Delete(&models.WishlistItem{}).Error
}

func (s *WishlistStore) GetWithItems(ctx context.Context, id identity.Bucket) (*models.Wishlist, error) {
	var wl models.Wishlist
	if err := s.whereIdentity(ctx, id).Preload("Items.Product").First(&wl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishlistNotFound
		}
		return nil, err
	}
	return &wl, nil
}

func (s *WishlistStore) whereIdentity(ctx context.Context, id identity.Bucket) *gorm.DB {
	q := s.DB.WithContext(ctx)
	if id.Authenticated() {
		return q.Where("user_id = ?", id.UserID)
	}
	return q.Where("session_id = ?", id.SessionID)
}

func newWishlist(id identity.Bucket) models.Wishlist {
	var wl models.Wishlist
	if id.Authenticated() {
		wl.UserID = &id.UserID
		return wl
	}
	wl.SessionID = &id.SessionID
	if !id.Expiry.IsZero() {
		expiry := id.Expiry
		wl.SessionExpiry = &expiry
	}
	return wl
}
