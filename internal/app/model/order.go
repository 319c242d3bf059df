package model

import (
	"time"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// orderTransitions is the single source of truth for legal status moves.
// delivered and cancelled are terminal; cancelled is reachable from any
// non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:  {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:      {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// IsValidOrderStatus reports whether s is a known status value.
func IsValidOrderStatus(s OrderStatus) bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0 && IsValidOrderStatus(s)
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID              uint          `gorm:"primarykey" json:"id"`
	UserID          uint          `gorm:"not null;index" json:"user_id"`
	TotalAmount     float64       `gorm:"not null" json:"total_amount"`
	Status          OrderStatus   `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	PaymentProvider string        `gorm:"type:varchar(50)" json:"payment_provider,omitempty"`
	PaymentIntentID string        `gorm:"type:varchar(100);index" json:"payment_intent_id,omitempty"`
	AddressID       *uint         `gorm:"index" json:"address_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Address    *Address    `gorm:"foreignKey:AddressID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"address,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is an immutable snapshot of one cart line at materialization
// time. ProductID goes NULL if the catalog row is later removed; the name,
// price and customization snapshot keep the history readable.
type OrderItem struct {
	ID                    uint      `gorm:"primarykey" json:"id"`
	OrderID               uint      `gorm:"not null;index" json:"order_id"`
	ProductID             *uint     `gorm:"index" json:"product_id,omitempty"`
	ProductName           string    `gorm:"not null" json:"product_name"`
	Quantity              int       `gorm:"not null" json:"quantity"`
	Price                 float64   `gorm:"not null" json:"price"`
	CustomizationSnapshot string    `gorm:"type:text" json:"customization_snapshot,omitempty"`
	CreatedAt             time.Time `json:"created_at"`

	Order   Order    `gorm:"foreignKey:OrderID" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
