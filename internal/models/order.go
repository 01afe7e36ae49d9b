package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCOD          PaymentMethod = "cod"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodVNPay        PaymentMethod = "vnpay"
	PaymentMethodMomo         PaymentMethod = "momo"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodBankTransfer, PaymentMethodVNPay, PaymentMethodMomo:
		return true
	}
	return false
}

// Order is created once at checkout. Monetary fields are minor currency units.
type Order struct {
	BaseModel
	OrderNumber     string        `gorm:"uniqueIndex" json:"order_number"`
	UserID          *uuid.UUID    `gorm:"type:uuid;index" json:"user_id"`
	User            *User         `json:"user,omitempty"`
	CustomerName    string        `json:"customer_name"`
	CustomerEmail   string        `gorm:"index" json:"customer_email"`
	CustomerPhone   string        `json:"customer_phone"`
	ShippingAddress string        `json:"shipping_address"`
	Note            string        `json:"note"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(32)" json:"payment_method"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(16)" json:"payment_status"`
	Status          OrderStatus   `gorm:"type:varchar(16);index" json:"status"`
	Subtotal        int64         `json:"subtotal"`
	ShippingFee     int64         `json:"shipping_fee"`
	Discount        int64         `json:"discount"`
	Total           int64         `json:"total"`
	Currency        string        `json:"currency"`
	CouponID        *uuid.UUID    `gorm:"type:uuid" json:"coupon_id"`
	CouponCode      string        `json:"coupon_code"`
	PlacedAt        time.Time     `json:"placed_at"`
	Items           []OrderItem   `json:"items,omitempty"`
}

// OrderItem stores the price and quantity captured at order time.
type OrderItem struct {
	BaseModel
	OrderID      uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID    uuid.UUID  `gorm:"type:uuid;index" json:"product_id"`
	VariantID    *uuid.UUID `gorm:"type:uuid;index" json:"variant_id"`
	ProductName  string     `json:"product_name"`
	VariantLabel string     `json:"variant_label"`
	Quantity     int        `json:"quantity"`
	UnitPrice    int64      `json:"unit_price"`
	LineTotal    int64      `json:"line_total"`
}
