package model

import (
	"time"
)

// CartItem is one merged line in a user's cart. ItemKey captures the
// product plus its normalized customization; the same key always lands on
// the same row. UnitPrice is frozen when the line is first added and is
// not recomputed on later merges or catalog price changes.
type CartItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_cart_user_item_key" json:"user_id"`
	ItemKey    string    `gorm:"size:64;not null;uniqueIndex:idx_cart_user_item_key" json:"-"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice  float64   `gorm:"not null" json:"unit_price"`
	Size       ScoopSize `gorm:"type:varchar(20)" json:"size"`
	Container  Container `gorm:"type:varchar(20)" json:"container"`
	ToppingIDs string    `gorm:"type:text" json:"-"`
	Notes      string    `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Product Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Customization rebuilds the value object stored on the line.
func (ci CartItem) Customization() Customization {
	return Customization{
		Size:       ci.Size,
		Container:  ci.Container,
		ToppingIDs: DecodeToppingIDs(ci.ToppingIDs),
		Notes:      ci.Notes,
	}
}
