package utils

import (
	"cafe/src/db"
	"cafe/src/models"
	"cafe/src/types"
	"time"
)

type SalesBucket struct {
	Orders  int64 `json:"orders"`
	Revenue int64 `json:"revenue"`
}

type TopItem struct {
	MenuItemID uint   `json:"menu_item_id"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
}

type SalesSummary struct {
	Today            SalesBucket `json:"today"`
	Week             SalesBucket `json:"week"`
	Month            SalesBucket `json:"month"`
	TopItems         []TopItem   `json:"top_items"`
	OpenOrders       int64       `json:"open_orders"`
	UpcomingBookings int64       `json:"upcoming_bookings"`
}

// GetSalesSummary aggregates paid-order revenue (paise) over the usual
// dashboard windows plus the best sellers of the last 30 days.
func GetSalesSummary() (*SalesSummary, error) {
	db := db.GetDb()
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	salesSince := func(since time.Time) (SalesBucket, error) {
		var bucket SalesBucket
		err := db.
			Model(&models.Order{}).
			Where("payment_status = ? AND created_at >= ?", types.PAYMENT_PAID, since).
			Select("COUNT(id) AS orders, COALESCE(SUM(total), 0) AS revenue").
			Scan(&bucket).
			Error
		return bucket, err
	}

	summary := &SalesSummary{}
	var err error
	if summary.Today, err = salesSince(startOfDay); err != nil {
		return nil, err
	}
	if summary.Week, err = salesSince(now.AddDate(0, 0, -7)); err != nil {
		return nil, err
	}
	if summary.Month, err = salesSince(now.AddDate(0, 0, -30)); err != nil {
		return nil, err
	}

	if err := db.
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Where("orders.payment_status = ? AND orders.created_at >= ?", types.PAYMENT_PAID, now.AddDate(0, 0, -30)).
		Select("order_items.menu_item_id AS menu_item_id, menu_items.name AS name, SUM(order_items.quantity) AS quantity").
		Group("order_items.menu_item_id, menu_items.name").
		Order("quantity DESC").
		Limit(5).
		Scan(&summary.TopItems).
		Error; err != nil {
		return nil, err
	}

	if err := db.
		Model(&models.Order{}).
		Where("status IN ?", []types.OrderStatus{types.ORDER_RECEIVED, types.ORDER_PREPARING, types.ORDER_READY}).
		Count(&summary.OpenOrders).
		Error; err != nil {
		return nil, err
	}
	if err := db.
		Model(&models.Booking{}).
		Where("date >= ? AND status IN ?", now, []types.BookingStatus{types.BOOKING_PENDING, types.BOOKING_CONFIRMED}).
		Count(&summary.UpcomingBookings).
		Error; err != nil {
		return nil, err
	}
	return summary, nil
}
