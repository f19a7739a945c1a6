package utils

import (
	"cafe/src/config"
	"cafe/src/db"
	"cafe/src/lib"
	"cafe/src/models"
	"cafe/src/types"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrEventNotOpen      = errors.New("event is not open for booking")
	ErrEventFull         = errors.New("event is fully booked")
	ErrOrderNumberTaken  = errors.New("order number already taken")
	ErrOrderNotFound     = errors.New("order not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Crockford-style alphabet, no lookalike characters, so staff can read an
// order number over the counter without ambiguity.
const orderNumberAlphabet = "ABCDEFGHJKMNPQRSTVWXYZ23456789"

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()[:n]
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return string(buf)
}

// GenerateOrderNumber produces RC-YYYYMMDD-XXXXXX. Uniqueness is enforced
// by the orders.order_number unique index; a collision is retried once
// with a fresh number.
func GenerateOrderNumber() string {
	return fmt.Sprintf("RC-%s-%s", time.Now().Format("20060102"), randomSuffix(6))
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ComputeOrderLines resolves every requested item against the catalog and
// prices the order server-side. Unit prices are snapshots of the catalog
// price at this moment; client-supplied prices are never accepted.
// Availability is deliberately not checked here, matching the storefront's
// observed behavior.
func ComputeOrderLines(items []types.OrderItemInput, catalog map[uint]models.MenuItem) ([]models.OrderItem, int64, error) {
	lines := make([]models.OrderItem, 0, len(items))
	var total int64
	for _, item := range items {
		entry, ok := catalog[item.MenuItemID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: [%d]", ErrMenuItemNotFound, item.MenuItemID)
		}
		subtotal := entry.Price * int64(item.Quantity)
		lines = append(lines, models.OrderItem{
			MenuItemID: entry.ID,
			Quantity:   item.Quantity,
			UnitPrice:  entry.Price,
			Subtotal:   subtotal,
			Notes:      item.Notes,
		})
		total += subtotal
	}
	return lines, total, nil
}

// CreateNewOrder persists an order and all of its lines in one
// transaction. Either every row becomes visible together or none do.
func CreateNewOrder(params *types.CreateOrderRequestBody) (*models.Order, error) {
	db := db.GetDb()
	var order models.Order
	makeOrder := func() error {
		return db.Transaction(func(tx *gorm.DB) error {
			ids := make([]uint, 0, len(params.Items))
			for _, item := range params.Items {
				ids = append(ids, item.MenuItemID)
			}
			var catalog []models.MenuItem
			if err := tx.Where("id IN ?", ids).Find(&catalog).Error; err != nil {
				return err
			}
			byID := make(map[uint]models.MenuItem, len(catalog))
			for _, entry := range catalog {
				byID[entry.ID] = entry
			}
			lines, total, err := ComputeOrderLines(params.Items, byID)
			if err != nil {
				return err
			}
			order = models.Order{
				OrderNumber:         GenerateOrderNumber(),
				CustomerName:        params.CustomerName,
				CustomerPhone:       params.CustomerPhone,
				CustomerEmail:       params.CustomerEmail,
				OrderType:           params.OrderType,
				TableNumber:         params.TableNumber,
				Status:              types.ORDER_RECEIVED,
				PaymentStatus:       types.PAYMENT_PENDING,
				PaymentRef:          uuid.NewString(),
				Total:               total,
				Notes:               params.Notes,
				SpecialInstructions: params.SpecialInstructions,
				Items:               lines,
			}
			if err := tx.Create(&order).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrOrderNumberTaken
				}
				return err
			}
			return nil
		})
	}
	err := makeOrder()
	if errors.Is(err, ErrOrderNumberTaken) {
		log.Printf("Order number collision, retrying with a fresh number")
		err = makeOrder()
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateBooking persists a booking and, when it targets a capacity-limited
// event, reserves the seats first. The check-and-increment is a single
// conditional UPDATE whose affected-row count decides the outcome, so two
// concurrent bookings can never overshoot the capacity together. The seat
// update and the booking insert share one transaction.
func CreateBooking(params *types.CreateBookingRequestBody) (*models.Booking, error) {
	date, err := time.Parse(config.TIME_PARSE_FORMAT, params.Date)
	if err != nil {
		return nil, err
	}
	db := db.GetDb()
	var booking models.Booking
	err = db.Transaction(func(tx *gorm.DB) error {
		if params.EventID != nil {
			var event models.Event
			if err := tx.Where(&models.Event{ID: *params.EventID}).First(&event).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrEventNotFound
				}
				return err
			}
			if event.Status == types.EVENT_CANCELED {
				return ErrEventNotOpen
			}
			res := tx.
				Model(&models.Event{}).
				Where("id = ? AND (max_capacity IS NULL OR current_bookings + ? <= max_capacity)", event.ID, params.PartySize).
				Update("current_bookings", gorm.Expr("current_bookings + ?", params.PartySize))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrEventFull
			}
		}
		booking = models.Booking{
			Name:      params.Name,
			Phone:     params.Phone,
			Email:     params.Email,
			PartySize: params.PartySize,
			Date:      date,
			Status:    types.BOOKING_PENDING,
			Notes:     params.Notes,
			EventID:   params.EventID,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func UpdateOrderStatus(id uint, next types.OrderStatus) (*models.Order, error) {
	db := db.GetDb()
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Order{ID: id}).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
		}
		if err := tx.
			Model(&models.Order{}).
			Where(&models.Order{ID: id}).
			Update("status", next).
			Error; err != nil {
			return err
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func UpdatePaymentStatus(id uint, next types.PaymentStatus) (*models.Order, error) {
	db := db.GetDb()
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Order{ID: id}).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.PaymentStatus.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.PaymentStatus, next)
		}
		if err := tx.
			Model(&models.Order{}).
			Where(&models.Order{ID: id}).
			Update("payment_status", next).
			Error; err != nil {
			return err
		}
		order.PaymentStatus = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateBookingStatus moves a booking through its lifecycle. Cancelling a
// booking tied to an event hands the seats back; the counter is floored at
// zero so a double release can never underflow it.
func UpdateBookingStatus(id uint, next types.BookingStatus) (*models.Booking, error) {
	db := db.GetDb()
	var booking models.Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Booking{ID: id}).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if !booking.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, next)
		}
		if next == types.BOOKING_CANCELED && booking.EventID != nil {
			if err := tx.
				Model(&models.Event{}).
				Where("id = ?", *booking.EventID).
				Update("current_bookings", gorm.Expr("GREATEST(current_bookings - ?, 0)", booking.PartySize)).
				Error; err != nil {
				return err
			}
		}
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: id}).
			Update("status", next).
			Error; err != nil {
			return err
		}
		booking.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

const (
	menuCacheKey = "menu:catalog"
	menuCacheTTL = 5 * time.Minute
)

// GetMenu returns active categories with their available items, served
// from the cache when warm. The cache sits in front of catalog reads only;
// order placement always reads the database inside its own transaction.
func GetMenu() ([]models.Category, error) {
	rd := lib.GetRedisClient()
	if rd != nil {
		cached, err := rd.Get(context.Background(), menuCacheKey).Result()
		if err == nil && cached != "" {
			var categories []models.Category
			if err := json.Unmarshal([]byte(cached), &categories); err == nil {
				return categories, nil
			}
		}
	}
	db := db.GetDb()
	var categories []models.Category
	if err := db.
		Where(&models.Category{IsActive: true}).
		Preload("Items", "is_available = ?", true).
		Order("sort_order asc").
		Find(&categories).
		Error; err != nil {
		return nil, err
	}
	if rd != nil {
		if b, err := json.Marshal(categories); err == nil {
			if err := rd.SetEx(context.Background(), menuCacheKey, string(b), menuCacheTTL).Err(); err != nil {
				log.Printf("[redis] Error caching menu: %s\n", err.Error())
			}
		}
	}
	return categories, nil
}

func InvalidateMenuCache() {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(context.Background(), menuCacheKey).Err(); err != nil {
		log.Printf("[redis] Error invalidating menu cache: %s\n", err.Error())
	}
}

func CreateCategory(params *types.CreateCategoryRequestBody) (*models.Category, error) {
	db := db.GetDb()
	category := models.Category{
		Name:        params.Name,
		Slug:        slug.Make(params.Name),
		Description: params.Description,
		SortOrder:   params.SortOrder,
		IsActive:    true,
	}
	if err := db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			category.ID = 0
			category.Slug = fmt.Sprintf("%s-%s", category.Slug, randomSuffix(4))
			if err := db.Create(&category).Error; err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	InvalidateMenuCache()
	return &category, nil
}

func CreateMenuItem(params *types.CreateMenuItemRequestBody) (*models.MenuItem, error) {
	db := db.GetDb()
	item := models.MenuItem{
		Name:        params.Name,
		Slug:        slug.Make(params.Name),
		Description: params.Description,
		Price:       params.Price,
		IsAvailable: true,
		ImageURL:    params.ImageURL,
		CategoryID:  params.CategoryID,
	}
	if params.IsAvailable != nil {
		item.IsAvailable = *params.IsAvailable
	}
	if err := db.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			item.ID = 0
			item.Slug = fmt.Sprintf("%s-%s", item.Slug, randomSuffix(4))
			if err := db.Create(&item).Error; err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	InvalidateMenuCache()
	return &item, nil
}

func CreateNewEvent(params *types.CreateEventRequestBody) (*models.Event, error) {
	startsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartsAt)
	if err != nil {
		return nil, err
	}
	endsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.EndsAt)
	if err != nil {
		return nil, err
	}
	if endsAt.Before(startsAt) {
		return nil, errors.New("ends_at must not be before starts_at")
	}
	status := types.EVENT_DRAFT
	if params.Publish {
		status = types.EVENT_PUBLISHED
	}
	db := db.GetDb()
	event := models.Event{
		Title:       params.Title,
		Slug:        slug.Make(params.Title),
		Description: params.Description,
		Location:    params.Location,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		MaxCapacity: params.MaxCapacity,
		Price:       params.Price,
		Status:      status,
	}
	if err := db.Create(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			event.ID = 0
			event.Slug = fmt.Sprintf("%s-%s", event.Slug, randomSuffix(4))
			if err := db.Create(&event).Error; err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	return &event, nil
}

// ExpireStaleOrders cancels unpaid orders still sitting in "received" past
// the configured cutoff. Run by the scheduler.
func ExpireStaleOrders() {
	cutoff := time.Now().Add(-config.StaleOrderCutoff())
	db := db.GetDb()
	res := db.
		Model(&models.Order{}).
		Where("status = ? AND payment_status = ? AND created_at < ?", types.ORDER_RECEIVED, types.PAYMENT_PENDING, cutoff).
		Update("status", types.ORDER_CANCELED)
	if res.Error != nil {
		log.Printf("Error expiring stale orders: %s\n", res.Error.Error())
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Cancelled %d stale unpaid orders\n", res.RowsAffected)
	}
}

func SendOrderConfirmation(order *models.Order) {
	if order.CustomerEmail == "" {
		return
	}
	input := &lib.SendMailInput{
		From:     config.SMTPFrom(),
		FromName: "noreply",
		To:       []string{order.CustomerEmail},
		Subject:  fmt.Sprintf("Order %s received", order.OrderNumber),
		Body: fmt.Sprintf(`
			<p>Thanks %s, we have received your order.</p>
			<p>Order number: <b>%s</b></p>
			<p>Total: ₹%s</p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			order.CustomerName,
			order.OrderNumber,
			FormatPaise(order.Total),
		),
		Html: true,
	}
	if err := lib.SendMail(input); err != nil {
		log.Printf("[mailer] Error sending order confirmation for [%s]: %s\n", order.OrderNumber, err.Error())
	}
}

func SendBookingConfirmation(booking *models.Booking) {
	if booking.Email == "" {
		return
	}
	input := &lib.SendMailInput{
		From:     config.SMTPFrom(),
		FromName: "noreply",
		To:       []string{booking.Email},
		Subject:  "Booking request received",
		Body: fmt.Sprintf(`
			<p>Thanks %s, we have received your booking for %d on %s.</p>
			<p>We will confirm shortly.</p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
			booking.Name,
			booking.PartySize,
			booking.Date.Format("Mon, 02 Jan 2006 15:04"),
		),
		Html: true,
	}
	if err := lib.SendMail(input); err != nil {
		log.Printf("[mailer] Error sending booking confirmation for [%d]: %s\n", booking.ID, err.Error())
	}
}
