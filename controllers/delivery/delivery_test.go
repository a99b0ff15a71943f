package delivery_test

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
	deliveryModel "cylinder-booking/models/delivery"
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
		Phone:          fmt.Sprintf("97%08d", time.Now().UnixNano()%100000000),
		PasswordHash:   hash,
		Role:           role,
		RemainingQuota: 12,
		QuotaYear:      time.Now().Year(),
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedBooking(t *testing.T, db *gorm.DB, u *userModel.User, status bookingModel.BookingStatus, qty int) *bookingModel.Booking {
	t.Helper()

	a := &address.Address{
		Line1: "4 Station Road", City: "Pune", State: "Maharashtra",
		Pincode: "411002", AddressType: "home",
	}
	require.NoError(t, db.Create(a).Error)

	b := &bookingModel.Booking{
		BookingRef:    fmt.Sprintf("GB-TEST-%d", time.Now().UnixNano()),
		UserID:        u.ID,
		AddressID:     a.ID,
		Status:        status,
		PaymentMethod: bookingModel.PaymentMethodCOD,
		Quantity:      qty,
		RequestedAt:   time.Now(),
		CreatedBy:     u.Email,
	}
	require.NoError(t, db.Create(b).Error)

	p := &paymentModel.Payment{
		BookingID: b.ID,
		Amount:    float64(qty) * 850,
		Method:    b.PaymentMethod,
		Status:    paymentModel.PaymentStatusPending,
	}
	require.NoError(t, db.Create(p).Error)
	return b
}

func seedPartner(t *testing.T, db *gorm.DB) *deliveryModel.DeliveryPartner {
	t.Helper()
	p := &deliveryModel.DeliveryPartner{
		Name:   "Ravi Kumar",
		Phone:  fmt.Sprintf("96%08d", time.Now().UnixNano()%100000000),
		Active: true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func adminRequest(t *testing.T, admin *userModel.User, method, target string, payload interface{}) *http.Request {
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

	token, err := utils.GenerateToken(admin)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "access", Value: token})
	return req
}

func assign(t *testing.T, app *fiber.App, admin *userModel.User, bookingID, partnerID uint) *http.Response {
	t.Helper()
	resp, err := app.Test(adminRequest(t, admin, "POST", "/api/admin/delivery/assign",
		map[string]interface{}{"booking_id": bookingID, "partner_id": partnerID}), -1)
	require.NoError(t, err)
	return resp
}

func moveStatus(t *testing.T, app *fiber.App, admin *userModel.User, assignmentID uint, status string) *http.Response {
	t.Helper()
	resp, err := app.Test(adminRequest(t, admin, "POST", "/api/admin/delivery/status",
		map[string]interface{}{"assignment_id": assignmentID, "status": status}), -1)
	require.NoError(t, err)
	return resp
}

func activeAssignment(t *testing.T, db *gorm.DB, bookingID uint) *deliveryModel.DeliveryAssignment {
	t.Helper()
	var a deliveryModel.DeliveryAssignment
	require.NoError(t, db.Where("booking_id = ? AND active = ?", bookingID, true).First(&a).Error)
	return &a
}

func TestAssignPartner(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "admin@example.com", constants.RoleAdmin)
	customer := createUser(t, db, "customer@example.com", constants.RoleUser)
	b := seedBooking(t, db, customer, bookingModel.BookingStatusApproved, 1)
	partner := seedPartner(t, db)

	resp := assign(t, app, admin, b.ID, partner.ID)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	a := activeAssignment(t, db, b.ID)
	assert.Equal(t, deliveryModel.AssignmentStatusAssigned, a.Status)
	assert.Equal(t, admin.Email, a.AssignedBy)

	// A booking can have only one active assignment.
	resp = assign(t, app, admin, b.ID, partner.ID)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAssignRejectsPendingBooking(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "admin@example.com", constants.RoleAdmin)
	customer := createUser(t, db, "customer@example.com", constants.RoleUser)
	b := seedBooking(t, db, customer, bookingModel.BookingStatusPending, 1)
	partner := seedPartner(t, db)

	resp := assign(t, app, admin, b.ID, partner.ID)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAssignRejectsInactivePartner(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "admin@example.com", constants.RoleAdmin)
	customer := createUser(t, db, "customer@example.com", constants.RoleUser)
	b := seedBooking(t, db, customer, bookingModel.BookingStatusApproved, 1)
	partner := seedPartner(t, db)
	require.NoError(t, db.Model(partner).Update("active", false).Error)

	resp := assign(t, app, admin, b.ID, partner.ID)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeliveryLifecycle(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "admin@example.com", constants.RoleAdmin)
	customer := createUser(t, db, "customer@example.com", constants.RoleUser)
	b := seedBooking(t, db, customer, bookingModel.BookingStatusApproved, 2)
	partner := seedPartner(t, db)

	require.Equal(t, fiber.StatusCreated, assign(t, app, admin, b.ID, partner.ID).StatusCode)
	a := activeAssignment(t, db, b.ID)

	// Skipping straight to DELIVERED is not a legal move.
	resp := moveStatus(t, app, admin, a.ID, "DELIVERED")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = moveStatus(t, app, admin, a.ID, "PICKED_UP")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&b, b.ID).Error)
	assert.Equal(t, bookingModel.BookingStatusApproved, b.Status, "pickup does not change the booking status")

	resp = moveStatus(t, app, admin, a.ID, "OUT_FOR_DELIVERY")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&b, b.ID).Error)
	assert.Equal(t, bookingModel.BookingStatusOutForDelivery, b.Status)

	resp = moveStatus(t, app, admin, a.ID, "DELIVERED")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&b, b.ID).Error)
	assert.Equal(t, bookingModel.BookingStatusDelivered, b.Status)
	assert.NotNil(t, b.DeliveredAt)

	// COD settles at the door.
	var p paymentModel.Payment
	require.NoError(t, db.Where("booking_id = ?", b.ID).First(&p).Error)
	assert.Equal(t, paymentModel.PaymentStatusSuccess, p.Status)

	// Delivered cylinders leave the available pool.
	var s inventoryModel.CylinderStock
	require.NoError(t, db.First(&s, 1).Error)
	assert.Equal(t, 98, s.Available)
	assert.Equal(t, 2, s.Issued)

	var adj inventoryModel.StockAdjustment
	require.NoError(t, db.Where("reason = ?", inventoryModel.AdjustmentReasonIssue).First(&adj).Error)
	assert.Equal(t, -2, adj.Delta)

	// Terminal assignments reject further moves.
	require.NoError(t, db.First(a, a.ID).Error)
	resp = moveStatus(t, app, admin, a.ID, "FAILED")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestFailedDeliveryReleasesBooking(t *testing.T) {
	app, db := setupApp(t)
	admin := createUser(t, db, "admin@example.com", constants.RoleAdmin)
	customer := createUser(t, db, "customer@example.com", constants.RoleUser)
	b := seedBooking(t, db, customer, bookingModel.BookingStatusApproved, 1)
	partner := seedPartner(t, db)

	require.Equal(t, fiber.StatusCreated, assign(t, app, admin, b.ID, partner.ID).StatusCode)
	a := activeAssignment(t, db, b.ID)

	resp := moveStatus(t, app, admin, a.ID, "FAILED")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(a, a.ID).Error)
	assert.False(t, a.Active)
	assert.Equal(t, deliveryModel.AssignmentStatusFailed, a.Status)

	require.NoError(t, db.First(&b, b.ID).Error)
	assert.Equal(t, bookingModel.BookingStatusApproved, b.Status, "booking returns to the assignment pool")

	// Reassignment is possible once the failed assignment is inactive.
	resp = assign(t, app, admin, b.ID, partner.ID)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
