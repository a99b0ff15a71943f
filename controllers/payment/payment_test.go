package payment_test

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

func createUser(t *testing.T, db *gorm.DB, email, role string) *userModel.User {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	u := &userModel.User{
		Name:           "Test User",
		Email:          email,
		Phone:          fmt.Sprintf("95%08d", time.Now().UnixNano()%100000000),
		PasswordHash:   hash,
		Role:           role,
		RemainingQuota: 12,
		QuotaYear:      time.Now().Year(),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedUPIBooking(t *testing.T, db *gorm.DB, u *userModel.User) (*bookingModel.Booking, *paymentModel.Payment) {
	t.Helper()

	a := &address.Address{
		Line1: "7 Mill Lane", City: "Pune", State: "Maharashtra",
		Pincode: "411003", AddressType: "home",
	}
	require.NoError(t, db.Create(a).Error)

	b := &bookingModel.Booking{
		BookingRef:    fmt.Sprintf("GB-TEST-%d", time.Now().UnixNano()),
		UserID:        u.ID,
		AddressID:     a.ID,
		Status:        bookingModel.BookingStatusPending,
		PaymentMethod: bookingModel.PaymentMethodUPI,
		Quantity:      1,
		RequestedAt:   time.Now(),
		CreatedBy:     u.Email,
	}
	require.NoError(t, db.Create(b).Error)

	p := &paymentModel.Payment{
		BookingID: b.ID,
		Amount:    850,
		Method:    bookingModel.PaymentMethodUPI,
		Status:    paymentModel.PaymentStatusPending,
	}
	require.NoError(t, db.Create(p).Error)
	return b, p
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

func TestGetPaymentLink(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser)
	b, _ := seedUPIBooking(t, db, u)

	resp, err := app.Test(authedRequest(t, u, "GET",
		fmt.Sprintf("/api/payment/upi-link/%d", b.ID), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data struct {
			UPILink string `json:"upi_link"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Contains(t, envelope.Data.UPILink, "upi://pay?")
	assert.Contains(t, envelope.Data.UPILink, b.BookingRef)
}

func TestSubmitUPITransaction(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser)
	b, p := seedUPIBooking(t, db, u)

	resp, err := app.Test(authedRequest(t, u, "POST", "/api/payment/submit-upi",
		map[string]interface{}{"booking_id": b.ID, "upi_transaction_id": "UTR1234567890"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(p, p.ID).Error)
	require.NotNil(t, p.UPITransactionID)
	assert.Equal(t, "UTR1234567890", *p.UPITransactionID)
	assert.Equal(t, paymentModel.PaymentStatusPending, p.Status, "submission alone does not settle the payment")
}

func TestReviewConfirm(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser)
	admin := createUser(t, db, "admin@example.com", constants.RoleAdmin)
	_, p := seedUPIBooking(t, db, u)
	require.NoError(t, db.Model(p).Update("upi_transaction_id", "UTR1234567890").Error)

	resp, err := app.Test(authedRequest(t, admin, "POST", "/api/admin/payment/review",
		map[string]interface{}{"payment_id": p.ID, "action": "CONFIRM"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(p, p.ID).Error)
	assert.Equal(t, paymentModel.PaymentStatusSuccess, p.Status)
	require.NotNil(t, p.ReviewedBy)
	assert.Equal(t, admin.Email, *p.ReviewedBy)
}

func TestReviewRejectOpensFreshPayment(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser)
	admin := createUser(t, db, "admin@example.com", constants.RoleAdmin)
	b, p := seedUPIBooking(t, db, u)
	require.NoError(t, db.Model(p).Update("upi_transaction_id", "UTR1234567890").Error)

	resp, err := app.Test(authedRequest(t, admin, "POST", "/api/admin/payment/review",
		map[string]interface{}{"payment_id": p.ID, "action": "REJECT", "note": "reference not found"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(p, p.ID).Error)
	assert.Equal(t, paymentModel.PaymentStatusFailed, p.Status)

	var payments []paymentModel.Payment
	require.NoError(t, db.Where("booking_id = ?", b.ID).Order("id ASC").Find(&payments).Error)
	require.Len(t, payments, 2)
	assert.Equal(t, paymentModel.PaymentStatusPending, payments[1].Status)
	assert.Equal(t, p.Amount, payments[1].Amount)
}

func TestReviewRejectsCODPayment(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser)
	admin := createUser(t, db, "admin@example.com", constants.RoleAdmin)
	b, p := seedUPIBooking(t, db, u)
	require.NoError(t, db.Model(b).Update("payment_method", bookingModel.PaymentMethodCOD).Error)
	require.NoError(t, db.Model(p).Update("method", bookingModel.PaymentMethodCOD).Error)

	resp, err := app.Test(authedRequest(t, admin, "POST", "/api/admin/payment/review",
		map[string]interface{}{"payment_id": p.ID, "action": "CONFIRM"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitUPIRejectsSettledPayment(t *testing.T) {
	app, db := setupApp(t)
	u := createUser(t, db, "customer@example.com", constants.RoleUser)
	b, p := seedUPIBooking(t, db, u)
	require.NoError(t, db.Model(p).Update("status", paymentModel.PaymentStatusSuccess).Error)

	resp, err := app.Test(authedRequest(t, u, "POST", "/api/payment/submit-upi",
		map[string]interface{}{"booking_id": b.ID, "upi_transaction_id": "UTR9999999999"}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
