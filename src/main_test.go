package main

import (
	"cafe/src/db"
	"cafe/src/lib"
	"cafe/src/middlewares"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	Redis *miniredis.Miniredis
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func (s *TestSuite) SetupSuite() {
	registerValidators()

	d, mock := NewMockDB()
	db.NewDB(d)
	s.DB = d
	s.Mock = mock

	mr, err := miniredis.Run()
	if err != nil {
		log.Fatalf("Error starting miniredis: %s\n", err.Error())
	}
	s.Redis = mr
	lib.NewRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func (s *TestSuite) TearDownSuite() {
	if inner, err := s.DB.DB(); err == nil {
		inner.Close()
	}
	s.Redis.Close()
}

func (s *TestSuite) SetupTest() {
	s.Redis.FlushAll()
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestAdminRoutesRequireAuth() {
	router := setupRouter()
	authorized := router.Group(apiPrefix + "/admin")
	authorized.Use(middlewares.AuthMiddleware)
	adminOrderHandlers(authorized)

	s.Run("Should reject a request without a token", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/admin/orders", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("Should reject a malformed token", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})
}

func (s *TestSuite) TestOrderValidation() {
	router := setupRouter()
	orderHandlers(apiv1Group(router))

	s.Run("Should return 400 when the order has no items", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"customerName":  "Asha Rao",
			"customerPhone": "+919876543210",
			"orderType":     "dine-in",
			"items":         []any{},
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/orders", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should return 400 for an invalid phone number", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"customerName":  "Asha Rao",
			"customerPhone": "not-a-phone",
			"orderType":     "takeaway",
			"items":         []any{map[string]any{"menuItemId": 1, "quantity": 1}},
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/orders", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)

		rbytes, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		errMsg := gjson.Get(string(rbytes), "error").String()
		assert.NotEmpty(s.T(), errMsg)
	})

	s.Run("Should return 400 for a zero quantity", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"customerName":  "Asha Rao",
			"customerPhone": "+919876543210",
			"orderType":     "dine-in",
			"items":         []any{map[string]any{"menuItemId": 1, "quantity": 0}},
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/orders", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestBookingValidation() {
	router := setupRouter()
	bookingHandlers(apiv1Group(router))

	s.Run("Should return 400 for a zero party size", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"name":      "Asha Rao",
			"phone":     "+919876543210",
			"partySize": 0,
			"date":      time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("Should return 400 for a date in the past", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"name":      "Asha Rao",
			"phone":     "+919876543210",
			"partySize": 2,
			"date":      time.Now().Add(-48 * time.Hour).Format(time.RFC3339),
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})
}

func (s *TestSuite) TestCreateOrder() {
	router := setupRouter()
	orderHandlers(apiv1Group(router))

	s.Mock.ExpectBegin()
	s.Mock.
		ExpectQuery(`SELECT (.+) FROM "menu_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "is_available"}).
			AddRow(1, "Filter Coffee", 4000, true).
			AddRow(2, "Masala Dosa", 12000, true))
	s.Mock.
		ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.
		ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	s.Mock.ExpectCommit()

	w := httptest.NewRecorder()
	jbody := map[string]any{
		"customerName":  "Asha Rao",
		"customerPhone": "+919876543210",
		"orderType":     "dine-in",
		"items": []any{
			map[string]any{"menuItemId": 1, "quantity": 2},
			map[string]any{"menuItemId": 2, "quantity": 1},
		},
	}
	sbody, _ := json.Marshal(&jbody)
	req, _ := http.NewRequest("POST", "/api/v1/orders", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 201, w.Code)

	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	sjson := string(rbytes)

	assert.Equal(s.T(), int64(20000), gjson.Get(sjson, "order.total").Int())
	assert.Equal(s.T(), int64(4000), gjson.Get(sjson, "order.items.0.unit_price").Int())
	assert.Equal(s.T(), int64(8000), gjson.Get(sjson, "order.items.0.subtotal").Int())
	assert.Equal(s.T(), int64(12000), gjson.Get(sjson, "order.items.1.subtotal").Int())
	assert.Equal(s.T(), "received", gjson.Get(sjson, "order.status").String())
	assert.Equal(s.T(), "pending", gjson.Get(sjson, "order.payment_status").String())
	number := gjson.Get(sjson, "order.order_number").String()
	assert.True(s.T(), strings.HasPrefix(number, fmt.Sprintf("RC-%s-", time.Now().Format("20060102"))))

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateOrderNumberCollisionRetry() {
	router := setupRouter()
	orderHandlers(apiv1Group(router))

	menuRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name", "price", "is_available"}).
			AddRow(1, "Filter Coffee", 4000, true)
	}

	// First transaction hits the order_number unique index and rolls back,
	// the retry gets a fresh number and commits.
	s.Mock.ExpectBegin()
	s.Mock.
		ExpectQuery(`SELECT (.+) FROM "menu_items"`).
		WillReturnRows(menuRows())
	s.Mock.
		ExpectQuery(`INSERT INTO "orders"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_order_number"})
	s.Mock.ExpectRollback()

	s.Mock.ExpectBegin()
	s.Mock.
		ExpectQuery(`SELECT (.+) FROM "menu_items"`).
		WillReturnRows(menuRows())
	s.Mock.
		ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.
		ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectCommit()

	w := httptest.NewRecorder()
	jbody := map[string]any{
		"customerName":  "Asha Rao",
		"customerPhone": "+919876543210",
		"orderType":     "takeaway",
		"items":         []any{map[string]any{"menuItemId": 1, "quantity": 1}},
	}
	sbody, _ := json.Marshal(&jbody)
	req, _ := http.NewRequest("POST", "/api/v1/orders", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 201, w.Code)

	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	assert.NotEmpty(s.T(), gjson.Get(string(rbytes), "order.order_number").String())

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateOrderUnknownItem() {
	router := setupRouter()
	orderHandlers(apiv1Group(router))

	s.Mock.ExpectBegin()
	s.Mock.
		ExpectQuery(`SELECT (.+) FROM "menu_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}))
	s.Mock.ExpectRollback()

	w := httptest.NewRecorder()
	jbody := map[string]any{
		"customerName":  "Asha Rao",
		"customerPhone": "+919876543210",
		"orderType":     "delivery",
		"items":         []any{map[string]any{"menuItemId": 99, "quantity": 1}},
	}
	sbody, _ := json.Marshal(&jbody)
	req, _ := http.NewRequest("POST", "/api/v1/orders", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 404, w.Code)
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateBooking() {
	router := setupRouter()
	bookingHandlers(apiv1Group(router))

	s.Mock.ExpectBegin()
	s.Mock.
		ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "max_capacity", "current_bookings"}).
			AddRow(1, "published", 20, 4))
	s.Mock.
		ExpectExec(`UPDATE "events"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Mock.
		ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	s.Mock.ExpectCommit()

	w := httptest.NewRecorder()
	jbody := map[string]any{
		"name":      "Asha Rao",
		"phone":     "+919876543210",
		"partySize": 2,
		"date":      time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"eventId":   1,
	}
	sbody, _ := json.Marshal(&jbody)
	req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 201, w.Code)

	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	sjson := string(rbytes)
	assert.Equal(s.T(), "pending", gjson.Get(sjson, "booking.status").String())
	assert.Equal(s.T(), int64(2), gjson.Get(sjson, "booking.party_size").Int())

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateBookingEventFull() {
	router := setupRouter()
	bookingHandlers(apiv1Group(router))

	s.Mock.ExpectBegin()
	s.Mock.
		ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "max_capacity", "current_bookings"}).
			AddRow(1, "published", 10, 9))
	s.Mock.
		ExpectExec(`UPDATE "events"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.Mock.ExpectRollback()

	w := httptest.NewRecorder()
	jbody := map[string]any{
		"name":      "Asha Rao",
		"phone":     "+919876543210",
		"partySize": 2,
		"date":      time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"eventId":   1,
	}
	sbody, _ := json.Marshal(&jbody)
	req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 409, w.Code)

	rbytes, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	errMsg := gjson.Get(string(rbytes), "error").String()
	assert.NotEmpty(s.T(), errMsg)

	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestCreateBookingEventCancelled() {
	router := setupRouter()
	bookingHandlers(apiv1Group(router))

	s.Mock.ExpectBegin()
	s.Mock.
		ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "max_capacity", "current_bookings"}).
			AddRow(1, "cancelled", 10, 0))
	s.Mock.ExpectRollback()

	w := httptest.NewRecorder()
	jbody := map[string]any{
		"name":      "Asha Rao",
		"phone":     "+919876543210",
		"partySize": 2,
		"date":      time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"eventId":   1,
	}
	sbody, _ := json.Marshal(&jbody)
	req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 409, w.Code)
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestMenuCaching() {
	router := setupRouter()
	menuHandlers(apiv1Group(router))

	s.Mock.
		ExpectQuery(`SELECT (.+) FROM "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "sort_order", "is_active"}).
			AddRow(1, "Beverages", "beverages", 1, true))
	s.Mock.
		ExpectQuery(`SELECT (.+) FROM "menu_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "price", "is_available", "category_id"}).
			AddRow(1, "Filter Coffee", "filter-coffee", 4000, true, 1))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/menu", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), "Beverages", gjson.Get(string(rbytes), "data.0.name").String())
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())

	// Second read must come from the cache. No expectations are queued,
	// so a database round trip here would fail the mock.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/menu", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	rbytes, _ = io.ReadAll(w.Body)
	assert.Equal(s.T(), "filter-coffee", gjson.Get(string(rbytes), "data.0.items.0.slug").String())
	assert.Nil(s.T(), s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestAdminLoginValidation() {
	router := setupRouter()
	adminAuthRoutes(apiv1Group(router))

	w := httptest.NewRecorder()
	jbody := map[string]any{"email": "not-an-email", "password": "x"}
	sbody, _ := json.Marshal(&jbody)
	req, _ := http.NewRequest("POST", "/api/v1/admin/login", strings.NewReader(string(sbody)))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 400, w.Code)
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
