package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type OrderType string

const (
	ORDER_DINE_IN  OrderType = "dine-in"
	ORDER_TAKEAWAY OrderType = "takeaway"
	ORDER_DELIVERY OrderType = "delivery"
)

type OrderStatus string

const (
	ORDER_RECEIVED  OrderStatus = "received"
	ORDER_PREPARING OrderStatus = "preparing"
	ORDER_READY     OrderStatus = "ready"
	ORDER_DELIVERED OrderStatus = "delivered"
	ORDER_CANCELED  OrderStatus = "cancelled"
)

// orderTransitions is the fulfillment state machine. Delivered and
// cancelled are terminal; cancellation is allowed only before the kitchen
// has finished the order.
var orderTransitions = map[OrderStatus][]OrderStatus{
	ORDER_RECEIVED:  {ORDER_PREPARING, ORDER_CANCELED},
	ORDER_PREPARING: {ORDER_READY, ORDER_CANCELED},
	ORDER_READY:     {ORDER_DELIVERED},
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PAYMENT_PENDING  PaymentStatus = "pending"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_FAILED   PaymentStatus = "failed"
	PAYMENT_REFUNDED PaymentStatus = "refunded"
)

// Payment status is an axis independent of fulfillment. A failed payment
// may be retried, a paid order may be refunded.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PAYMENT_PENDING: {PAYMENT_PAID, PAYMENT_FAILED},
	PAYMENT_FAILED:  {PAYMENT_PENDING},
	PAYMENT_PAID:    {PAYMENT_REFUNDED},
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELED  BookingStatus = "cancelled"
	BOOKING_COMPLETED BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BOOKING_PENDING:   {BOOKING_CONFIRMED, BOOKING_CANCELED},
	BOOKING_CONFIRMED: {BOOKING_COMPLETED, BOOKING_CANCELED},
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_PUBLISHED EventStatus = "published"
	EVENT_CANCELED  EventStatus = "cancelled"
	EVENT_COMPLETED EventStatus = "completed"
)

type OrderItemInput struct {
	MenuItemID uint   `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	Notes      string `json:"notes,omitempty"`
}

type CreateOrderRequestBody struct {
	CustomerName        string           `json:"customerName" binding:"required,min=2"`
	CustomerPhone       string           `json:"customerPhone" binding:"required,e164phone"`
	CustomerEmail       string           `json:"customerEmail,omitempty" binding:"omitempty,email"`
	TableNumber         string           `json:"tableNumber,omitempty"`
	OrderType           OrderType        `json:"orderType" binding:"required,oneof=dine-in takeaway delivery"`
	Notes               string           `json:"notes,omitempty"`
	SpecialInstructions string           `json:"specialInstructions,omitempty"`
	Items               []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

type CreateBookingRequestBody struct {
	Name      string `json:"name" binding:"required,min=2"`
	Phone     string `json:"phone" binding:"required,e164phone"`
	Email     string `json:"email,omitempty" binding:"omitempty,email"`
	PartySize int    `json:"partySize" binding:"required,min=1"`
	Date      string `json:"date" binding:"required,bookabledate"`
	Notes     string `json:"notes,omitempty"`
	EventID   *uint  `json:"eventId,omitempty"`
}

type CreateCategoryRequestBody struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order,omitempty"`
}

type UpdateCategoryRequestBody struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CreateMenuItemRequestBody struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price" binding:"required,min=1"`
	ImageURL    string `json:"image_url,omitempty"`
	CategoryID  uint   `json:"category" binding:"required"`
	IsAvailable *bool  `json:"is_available,omitempty"`
}

type UpdateMenuItemRequestBody struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,min=1"`
	ImageURL    *string `json:"image_url,omitempty"`
	CategoryID  *uint   `json:"category,omitempty"`
	IsAvailable *bool   `json:"is_available,omitempty"`
}

type CreateEventRequestBody struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartsAt    string `json:"starts_at" binding:"required,bookabledate"`
	EndsAt      string `json:"ends_at" binding:"required,bookabledate"`
	MaxCapacity *uint  `json:"max_capacity,omitempty"`
	Price       int64  `json:"price" binding:"min=0"`
	Publish     bool   `json:"publish,omitempty"`
}

type UpdateEventRequestBody struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	StartsAt    *string `json:"starts_at,omitempty" binding:"omitempty,bookabledate"`
	EndsAt      *string `json:"ends_at,omitempty" binding:"omitempty,bookabledate"`
	MaxCapacity *uint   `json:"max_capacity,omitempty"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,min=0"`
	Status      *string `json:"status,omitempty" binding:"omitempty,oneof=draft published cancelled completed"`
}

type UpdateOrderStatusRequestBody struct {
	Status OrderStatus `json:"status" binding:"required,oneof=received preparing ready delivered cancelled"`
}

type UpdatePaymentStatusRequestBody struct {
	Status PaymentStatus `json:"status" binding:"required,oneof=pending paid failed refunded"`
}

type UpdateBookingStatusRequestBody struct {
	Status BookingStatus `json:"status" binding:"required,oneof=pending confirmed cancelled completed"`
}

type AdminLoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type OrderNumberRequestParams struct {
	Number string `uri:"number" binding:"required"`
}
