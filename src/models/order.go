package models

import "cafe/src/types"

type Order struct {
	ID                  uint                `gorm:"primarykey" json:"id"`
	OrderNumber         string              `gorm:"uniqueIndex" json:"order_number,omitempty"`
	CustomerName        string              `json:"customer_name,omitempty"`
	CustomerPhone       string              `json:"customer_phone,omitempty"`
	CustomerEmail       string              `json:"customer_email,omitempty"`
	OrderType           types.OrderType     `json:"order_type,omitempty"`
	TableNumber         string              `json:"table_number,omitempty"`
	Status              types.OrderStatus   `gorm:"default:'received'" json:"status,omitempty"`
	PaymentStatus       types.PaymentStatus `gorm:"default:'pending'" json:"payment_status,omitempty"`
	PaymentRef          string              `json:"payment_ref,omitempty"`
	Total               int64               `json:"total"`
	Notes               string              `json:"notes,omitempty"`
	SpecialInstructions string              `json:"special_instructions,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	types.Timestamps
}

// OrderItem captures the catalog price at the moment the order was placed.
// UnitPrice is a snapshot; later catalog edits must not rewrite history.
type OrderItem struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	OrderID    uint   `json:"order_id,omitempty"`
	MenuItemID uint   `json:"menu_item_id,omitempty"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	Subtotal   int64  `json:"subtotal"`
	Notes      string `json:"notes,omitempty"`

	MenuItem MenuItem `gorm:"foreignKey:MenuItemID" json:"-"`

	types.Timestamps
}
