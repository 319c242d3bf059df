package model

import (
	"time"

	"github.com/lib/pq"
)

type ProductCategory string

const (
	CategoryClassic ProductCategory = "classic"
	CategoryPremium ProductCategory = "premium"
	CategorySorbet  ProductCategory = "sorbet"
	CategoryVegan   ProductCategory = "vegan"
)

// IsValidProductCategory reports whether s names a known category.
func IsValidProductCategory(s string) bool {
	switch ProductCategory(s) {
	case CategoryClassic, CategoryPremium, CategorySorbet, CategoryVegan:
		return true
	}
	return false
}

// Product is a scoopable flavor on the menu. Rows are hard-deleted;
// past orders keep a name/price snapshot on their order items instead.
type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         float64         `gorm:"not null" json:"price"`
	Category      ProductCategory `gorm:"type:varchar(50)" json:"category"`
	StockQuantity int             `gorm:"default:0" json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	Allergens     pq.StringArray  `gorm:"type:text[]" json:"allergens"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	CartItems []CartItem `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// Topping is an add-on priced per scoop serving. Hard-deleted like Product.
type Topping struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Topping) TableName() string {
	return "toppings"
}
