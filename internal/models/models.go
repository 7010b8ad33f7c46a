package models

import (
	"time"

	"github.com/lib/pq"
)

type Product struct {
	ID          string         `gorm:"primaryKey"    json:"id"`
	Name        string         `gorm:"not null"      json:"name"`
	Description string         `json:"description"`
	Price       float64        `gorm:"not null"      json:"price"`
	ImageURL    string         `json:"imageUrl"`
	ShipsTo     pq.StringArray `gorm:"type:text"     json:"shipsTo"`
}

// Cart holds either a userId or a sessionId, never both. Each column is
// unique on its own, so there is at most one cart per user and one per
// anonymous session.
type Cart struct {
	ID            uint       `gorm:"primaryKey"  json:"id"`
	UserID        *string    `gorm:"uniqueIndex" json:"userId,omitempty"`
	SessionID     *string    `gorm:"uniqueIndex" json:"sessionId,omitempty"`
	SessionExpiry *time.Time `json:"sessionExpiry,omitempty"`
	Items         []CartItem `gorm:"foreignKey:CartID" json:"cartItem,omitempty"`
}

type CartItem struct {
	ID        uint    `gorm:"primaryKey"                              json:"id"`
	CartID    uint    `gorm:"not null;uniqueIndex:idx_cart_product"   json:"cartId"`
	ProductID string  `gorm:"not null;uniqueIndex:idx_cart_product"   json:"productId"`
	Quantity  uint    `gorm:"not null;check:quantity>0"               json:"quantity"`
	Product   Product `gorm:"foreignKey:ProductID"                    json:"product,omitempty"`
}

type Wishlist struct {
	ID            uint           `gorm:"primaryKey"  json:"id"`
	UserID        *string        `gorm:"uniqueIndex" json:"userId,omitempty"`
	SessionID     *string        `gorm:"uniqueIndex" json:"sessionId,omitempty"`
	SessionExpiry *time.Time     `json:"sessionExpiry,omitempty"`
	Items         []WishlistItem `gorm:"foreignKey:WishlistID" json:"wishlistItem,omitempty"`
}

type WishlistItem struct {
	ID         uint    `gorm:"primaryKey"                                  json:"id"`
	WishlistID uint    `gorm:"not null;uniqueIndex:idx_wishlist_product"   json:"wishlistId"`
	ProductID  string  `gorm:"not null;uniqueIndex:idx_wishlist_product"   json:"productId"`
	Product    Product `gorm:"foreignKey:ProductID"                        json:"product,omitempty"`
}

type Business struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	FirstName string `gorm:"not null"             json:"firstName"`
	LastName  string `gorm:"not null"             json:"lastName"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Company   string `gorm:"not null"             json:"company"`
	Industry  string `json:"industry"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
}

type Individual struct {
	ID        uint   `gorm:"primaryKey"           json:"id"`
	FirstName string `gorm:"not null"             json:"firstName"`
	LastName  string `gorm:"not null"             json:"lastName"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Country   string `json:"country"`
}
