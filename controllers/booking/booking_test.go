package booking_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cylinder-booking/constants"
	"cylinder-booking/database"
	"cylinder-booking/models/address"
	bookingModel "cylinder-booking/models/booking"
	inventoryModel "cylinder-booking/models/inventory"
	paymentModel "cylinder-booking/models/payment"
	userModel "cylinder-booking/models/user"
	"cylinder-booking/routes"
	"cylinder-booking/utils"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("UPI_PAYEE_VPA", "agency@upi")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	database.DB = db

	require.NoError(t, db.Create(&inventoryModel.CylinderStock{ID: 1, Total: 100, Available: 100}).Error)

	app := fiber.New()
	routes.SetupRoutes(app, db)
	return app, db
}

func createUser(t *testing.T, db *gorm.DB, email, role string, quota int) *userModel.User {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	u := &userModel.User{
		Name:           "Test User",
		Email:          email,
		Phone:          fmt.Sprintf("98%08d", time.Now().UnixNano()%100000000),
		PasswordHash:   hash,
		Role:           role,
		RemainingQuota: quota,
		QuotaYear:      time.Now().Year(),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func authedRequest(t *testing.T, u *userModel.User, method, target string, payload interface{}) *http.Request {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	token, err := utils.GenerateToken(u)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "access", Value: token})
	return req
}

func createPayload(qty int, method string) map[string]interface{} {
	return map[string]interface{}{
		"quantity":       qty,
		"payment_method": method,
		"line1":          "12 Lake Road",
		"city":           "Pune",
		"state":          "Maharashtra",
		"pincode":        "411001",
		"address_type":   "home",
	}
}

func TestCreateBookingDecrementsQuota(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser, 12)

	resp, err := app.Test(authedRequest(t, u, "POST", "/api/booking/create", createPayload(2, "COD")), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var fresh userModel.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.Equal(t, 10, fresh.RemainingQuota)

	var b bookingModel.Booking
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&b).Error)
	assert.Equal(t, bookingModel.BookingStatusPending, b.Status)
	assert.Equal(t, 2, b.Quantity)
	assert.NotEmpty(t, b.BookingRef)

	var p paymentModel.Payment
	require.NoError(t, db.Where("booking_id = ?", b.ID).First(&p).Error)
	assert.Equal(t, paymentModel.PaymentStatusPending, p.Status)
	assert.Equal(t, float64(2)*850, p.Amount)
}

func TestCreateBookingQuotaExceeded(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser, 1)

	resp, err := app.Test(authedRequest(t, u, "POST", "/api/booking/create", createPayload(2, "COD")), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var fresh userModel.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.Equal(t, 1, fresh.RemainingQuota, "failed booking must not touch the quota")

	var count int64
	require.NoError(t, db.Model(&bookingModel.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	app, _ := setupApp(t)

	raw, err := json.Marshal(createPayload(1, "COD"))
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/booking/create", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateBookingRejectsInvalidPayload(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser, 12)

	payload := createPayload(0, "COD") // quantity below minimum
	resp, err := app.Test(authedRequest(t, u, "POST", "/api/booking/create", payload), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCancelBookingRestoresQuota(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser, 12)

	resp, err := app.Test(authedRequest(t, u, "POST", "/api/booking/create", createPayload(3, "UPI")), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var b bookingModel.Booking
	require.NoError(t, db.Where("user_id = ?", u.ID).First(&b).Error)

	resp, err = app.Test(authedRequest(t, u, "POST", "/api/booking/cancel",
		map[string]interface{}{"booking_id": b.ID}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&b, b.ID).Error)
	assert.Equal(t, bookingModel.BookingStatusCancelled, b.Status)

	var fresh userModel.User
	require.NoError(t, db.First(&fresh, u.ID).Error)
	assert.Equal(t, 12, fresh.RemainingQuota)

	var p paymentModel.Payment
	require.NoError(t, db.Where("booking_id = ?", b.ID).First(&p).Error)
	assert.Equal(t, paymentModel.PaymentStatusCancelled, p.Status)
}

func TestCancelForeignBookingNotFound(t *testing.T) {
	app, db := setupApp(t)
	owner := createUser(t, db, "owner@example.com", constants.RoleUser, 12)
	other := createUser(t, db, "other@example.com", constants.RoleUser, 12)

	resp, err := app.Test(authedRequest(t, owner, "POST", "/api/booking/create", createPayload(1, "COD")), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var b bookingModel.Booking
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&b).Error)

	resp, err = app.Test(authedRequest(t, other, "POST", "/api/booking/cancel",
		map[string]interface{}{"booking_id": b.ID}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCancelDeliveredBookingRejected(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser, 12)

	b := seedBooking(t, db, u, bookingModel.BookingStatusDelivered)

	resp, err := app.Test(authedRequest(t, u, "POST", "/api/booking/cancel",
		map[string]interface{}{"booking_id": b.ID}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestApproveBooking(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser, 12)
	admin := createUser(t, db, "admin@example.com", constants.RoleAdmin, 12)

	b := seedBooking(t, db, u, bookingModel.BookingStatusPending)

	resp, err := app.Test(authedRequest(t, admin, "POST", "/api/admin/booking/approve",
		map[string]interface{}{"booking_id": b.ID}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&b, b.ID).Error)
	assert.Equal(t, bookingModel.BookingStatusApproved, b.Status)
	require.NotNil(t, b.ExpectedDeliveryAt)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), *b.ExpectedDeliveryAt, time.Hour)
}

func TestApproveRejectsNonPending(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser, 12)
	admin := createUser(t, db, "admin@example.com", constants.RoleAdmin, 12)

	b := seedBooking(t, db, u, bookingModel.BookingStatusCancelled)

	resp, err := app.Test(authedRequest(t, admin, "POST", "/api/admin/booking/approve",
		map[string]interface{}{"booking_id": b.ID}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestApproveRequiresAdminRole(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser, 12)

	b := seedBooking(t, db, u, bookingModel.BookingStatusPending)

	resp, err := app.Test(authedRequest(t, u, "POST", "/api/admin/booking/approve",
		map[string]interface{}{"booking_id": b.ID}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestListMineFiltersByOwner(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser, 12)
	other := createUser(t, db, "other@example.com", constants.RoleUser, 12)

	seedBooking(t, db, u, bookingModel.BookingStatusPending)
	seedBooking(t, db, other, bookingModel.BookingStatusPending)

	resp, err := app.Test(authedRequest(t, u, "GET", "/api/booking/list", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data struct {
			Bookings []bookingModel.Booking `json:"bookings"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Len(t, envelope.Data.Bookings, 1)
	assert.Equal(t, u.ID, envelope.Data.Bookings[0].UserID)
}

// seedBooking inserts a booking row directly with the given status.
func seedBooking(t *testing.T, db *gorm.DB, u *userModel.User, status bookingModel.BookingStatus) *bookingModel.Booking {
	t.Helper()

	addr := addressRow(t, db)
	b := &bookingModel.Booking{
		BookingRef:    fmt.Sprintf("GB-TEST-%d", time.Now().UnixNano()),
		UserID:        u.ID,
		AddressID:     addr,
		Status:        status,
		PaymentMethod: bookingModel.PaymentMethodCOD,
		Quantity:      1,
		RequestedAt:   time.Now(),
		CreatedBy:     u.Email,
	}
	require.NoError(t, db.Create(b).Error)

	p := &paymentModel.Payment{
		BookingID: b.ID,
		Amount:    850,
		Method:    b.PaymentMethod,
		Status:    paymentModel.PaymentStatusPending,
	}
	require.NoError(t, db.Create(p).Error)

	return b
}

func addressRow(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	a := &address.Address{
		Line1: "12 Lake Road", City: "Pune", State: "Maharashtra",
		Pincode: "411001", AddressType: "home",
	}
	require.NoError(t, db.Create(a).Error)
	return a.ID
}
