package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"rms/src/boot"
	"rms/src/config"
	"rms/src/db"
	"rms/src/lib"
	"rms/src/models"
	"rms/src/types"
	"rms/src/utils"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"github.com/plutov/paypal/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeMailer struct {
	Sent []*lib.SendMailInput
}

func (m *fakeMailer) Send(input *lib.SendMailInput) error {
	m.Sent = append(m.Sent, input)
	return nil
}

type fakeStripeGateway struct {
	IntentStatus   stripe.PaymentIntentStatus
	IntentCustomer *stripe.Customer
	SessionStatus  stripe.CheckoutSessionPaymentStatus
	SessionErr     error
	Customers      []*stripe.Customer
	CreatedSession *stripe.CheckoutSession
}

func (g *fakeStripeGateway) CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error) {
	customer := &stripe.Customer{ID: fmt.Sprintf("cus_%d", len(g.Customers)+1), Email: *params.Email}
	g.Customers = append(g.Customers, customer)
	return customer, nil
}

func (g *fakeStripeGateway) ListCustomersByEmail(ctx context.Context, email string) ([]*stripe.Customer, error) {
	matches := []*stripe.Customer{}
	for _, c := range g.Customers {
		if c.Email == email {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

func (g *fakeStripeGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	session := &stripe.CheckoutSession{ID: "cs_test_1", ClientSecret: "cs_secret"}
	g.CreatedSession = session
	return session, nil
}

func (g *fakeStripeGateway) RetrieveCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	if g.SessionErr != nil {
		return nil, g.SessionErr
	}
	return &stripe.CheckoutSession{ID: id, PaymentStatus: g.SessionStatus}, nil
}

func (g *fakeStripeGateway) RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	return &stripe.PaymentIntent{ID: id, Status: g.IntentStatus, Customer: g.IntentCustomer}, nil
}

type fakePayPalGateway struct {
	OrderStatus string
	OrderErr    error
}

func (g *fakePayPalGateway) CreateOrder(ctx context.Context, bookingID uint, amount float64, currency, description string) (*paypal.Order, error) {
	return &paypal.Order{ID: fmt.Sprintf("ppo_%d", bookingID), Status: paypal.OrderStatusCreated}, nil
}

func (g *fakePayPalGateway) GetOrder(ctx context.Context, orderID string) (*paypal.Order, error) {
	if g.OrderErr != nil {
		return nil, g.OrderErr
	}
	return &paypal.Order{ID: orderID, Status: g.OrderStatus}, nil
}

func (g *fakePayPalGateway) CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureOrderResponse, error) {
	return &paypal.CaptureOrderResponse{ID: orderID, Status: paypal.OrderStatusCompleted}, nil
}

type fakeExpoPushClient struct {
	Published []*expo.PushMessage
}

func (c *fakeExpoPushClient) Publish(message *expo.PushMessage) (expo.PushResponse, error) {
	c.Published = append(c.Published, message)
	return expo.PushResponse{}, nil
}

type TestSuite struct {
	suite.Suite
	DB     *gorm.DB
	Mailer *fakeMailer
	Stripe *fakeStripeGateway
	PayPal *fakePayPalGateway
	Expo   *fakeExpoPushClient

	Admin    models.User
	Agency   models.User
	Renter   models.User
	Location models.Location
	Property models.Property

	AdminToken  string
	AgencyToken string
	RenterToken string
}

func (s *TestSuite) SetupSuite() {
	registerValidators()
	gin.SetMode(gin.TestMode)

	config.JWT_SECRET = "test-secret"
	config.ADMIN_EMAIL = "admin@example.com"

	d, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		log.Fatalf("error opening database: %s", err.Error())
	}
	db.NewDB(d)
	s.DB = boot.InitDb()

	s.Mailer = &fakeMailer{}
	lib.NewMailer(s.Mailer)
	s.Stripe = &fakeStripeGateway{
		IntentStatus:   stripe.PaymentIntentStatusSucceeded,
		IntentCustomer: &stripe.Customer{ID: "cus_pi"},
		SessionStatus:  stripe.CheckoutSessionPaymentStatusPaid,
	}
	lib.NewStripeGateway(s.Stripe)
	s.PayPal = &fakePayPalGateway{OrderStatus: paypal.OrderStatusCompleted}
	lib.NewPayPalGateway(s.PayPal)
	s.Expo = &fakeExpoPushClient{}
	lib.NewExpoPushClient(s.Expo)

	password, _ := utils.HashPassword("secret123")
	s.Admin = models.User{
		FullName: "Platform Admin",
		Email:    config.ADMIN_EMAIL,
		Password: password,
		Type:     types.USER_TYPE_ADMIN,
		Verified: true,
		Active:   true,
	}
	s.Agency = models.User{
		FullName: "Acme Rentals",
		Email:    "agency@example.com",
		Password: password,
		Type:     types.USER_TYPE_AGENCY,
		Verified: true,
		Active:   true,
		PayLater: true,
	}
	s.Renter = models.User{
		FullName: "Jane Renter",
		Email:    "jane@example.com",
		Password: password,
		Type:     types.USER_TYPE_RENTER,
		Language: "fr",
		Verified: true,
		Active:   true,
	}
	if err := s.DB.Create(&s.Admin).Error; err != nil {
		log.Fatalf("error seeding admin: %s", err.Error())
	}
	if err := s.DB.Create(&s.Agency).Error; err != nil {
		log.Fatalf("error seeding agency: %s", err.Error())
	}
	if err := s.DB.Create(&s.Renter).Error; err != nil {
		log.Fatalf("error seeding renter: %s", err.Error())
	}

	country := models.Country{Slug: "france"}
	if err := s.DB.Create(&country).Error; err != nil {
		log.Fatalf("error seeding country: %s", err.Error())
	}
	s.DB.Create(&models.CountryValue{CountryID: country.ID, Language: "en", Name: "France"})
	s.Location = models.Location{CountryID: country.ID, Slug: "paris"}
	if err := s.DB.Create(&s.Location).Error; err != nil {
		log.Fatalf("error seeding location: %s", err.Error())
	}
	s.DB.Create(&models.LocationValue{LocationID: s.Location.ID, Language: "en", Name: "Paris"})
	s.DB.Create(&models.LocationValue{LocationID: s.Location.ID, Language: "fr", Name: "Paris"})

	s.Property = models.Property{
		Name:         "Rue de Rivoli Flat",
		Slug:         "rue-de-rivoli-flat",
		Type:         types.PROPERTY_APARTMENT,
		AgencyID:     s.Agency.ID,
		LocationID:   s.Location.ID,
		Price:        100,
		Cancellation: 30,
		RentalTerm:   types.RENTAL_TERM_DAILY,
		Available:    true,
	}
	if err := s.DB.Create(&s.Property).Error; err != nil {
		log.Fatalf("error seeding property: %s", err.Error())
	}

	s.AdminToken, _ = utils.GenerateJWT(&s.Admin, types.APP_TYPE_BACKEND, time.Hour)
	s.AgencyToken, _ = utils.GenerateJWT(&s.Agency, types.APP_TYPE_BACKEND, time.Hour)
	s.RenterToken, _ = utils.GenerateJWT(&s.Renter, types.APP_TYPE_FRONTEND, time.Hour)
}

func (s *TestSuite) newRouter() *gin.Engine {
	router := setupRouter()
	publicRoutes(router)
	authorizedRoutes(router)
	return router
}

func (s *TestSuite) request(router *gin.Engine, method, url, token string, body any) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		b, err := json.Marshal(body)
		assert.Nil(s.T(), err)
		reader = strings.NewReader(string(b))
	} else {
		reader = strings.NewReader("")
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("x-access-token", token)
	}
	router.ServeHTTP(w, req)
	return w
}

func futureDate(days int) string {
	return time.Now().Add(time.Duration(days) * 24 * time.Hour).Format(config.TIME_PARSE_FORMAT)
}

func (s *TestSuite) bookingDraft() map[string]any {
	return map[string]any{
		"agency":   s.Agency.ID,
		"property": s.Property.ID,
		"renter":   s.Renter.ID,
		"location": s.Location.ID,
		"from":     futureDate(10),
		"to":       futureDate(15),
	}
}

func (s *TestSuite) notificationCount(userId uint) int64 {
	var count int64
	s.DB.Model(&models.Notification{}).Where("user_id = ?", userId).Count(&count)
	return count
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestCheckoutPayLater() {
	router := s.newRouter()

	before := s.notificationCount(s.Agency.ID)
	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking":  s.bookingDraft(),
		"payLater": true,
	})
	assert.Equal(s.T(), 200, w.Code)
	bookingId := gjson.Get(w.Body.String(), "bookingId").Uint()
	assert.Greater(s.T(), bookingId, uint64(0))

	var booking models.Booking
	assert.Nil(s.T(), s.DB.First(&booking, bookingId).Error)
	assert.Equal(s.T(), types.BOOKING_PENDING, booking.Status)
	assert.Nil(s.T(), booking.ExpiresAt)
	assert.Equal(s.T(), 500.0, booking.Price)

	// Agency and admin are both notified, and the renter got an email.
	assert.Equal(s.T(), before+1, s.notificationCount(s.Agency.ID))
	assert.GreaterOrEqual(s.T(), s.notificationCount(s.Admin.ID), int64(1))
	var counter models.NotificationCounter
	assert.Nil(s.T(), s.DB.Where("user_id = ?", s.Agency.ID).First(&counter).Error)
	assert.Greater(s.T(), counter.Count, uint(0))
	assert.Greater(s.T(), len(s.Mailer.Sent), 0)
	var mailedRenter bool
	for _, mail := range s.Mailer.Sent {
		for _, to := range mail.To {
			if to == s.Renter.Email {
				mailedRenter = true
			}
		}
	}
	assert.True(s.T(), mailedRenter)
}

func (s *TestSuite) TestCheckoutRequiresPaymentReference() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking": s.bookingDraft(),
	})
	assert.Equal(s.T(), 400, w.Code)
	assert.Equal(s.T(), "paymentIntentId and sessionId not found", gjson.Get(w.Body.String(), "error").String())
}

func (s *TestSuite) TestCheckoutUnknownRenter() {
	router := s.newRouter()

	draft := s.bookingDraft()
	draft["renter"] = 99999
	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking":  draft,
		"payLater": true,
	})
	assert.Equal(s.T(), 204, w.Code)
}

func (s *TestSuite) TestCheckoutUnknownProperty() {
	router := s.newRouter()

	draft := s.bookingDraft()
	draft["property"] = 99999
	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking":  draft,
		"payLater": true,
	})
	assert.Equal(s.T(), 400, w.Code)
}

func (s *TestSuite) TestCheckoutPaymentIntent() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking":         s.bookingDraft(),
		"paymentIntentId": "pi_123",
	})
	assert.Equal(s.T(), 200, w.Code)
	bookingId := gjson.Get(w.Body.String(), "bookingId").Uint()

	var booking models.Booking
	assert.Nil(s.T(), s.DB.First(&booking, bookingId).Error)
	assert.Equal(s.T(), types.BOOKING_PAID, booking.Status)
	assert.Nil(s.T(), booking.ExpiresAt)
	assert.NotNil(s.T(), booking.PaymentIntentID)

	var renter models.User
	assert.Nil(s.T(), s.DB.First(&renter, s.Renter.ID).Error)
	assert.NotNil(s.T(), renter.CustomerID)
}

func (s *TestSuite) TestCheckoutPaymentIntentWithoutCustomerSkipsNotify() {
	router := s.newRouter()

	s.Stripe.IntentCustomer = nil
	defer func() { s.Stripe.IntentCustomer = &stripe.Customer{ID: "cus_pi"} }()

	before := s.notificationCount(s.Agency.ID)
	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking":         s.bookingDraft(),
		"paymentIntentId": "pi_no_customer",
	})
	assert.Equal(s.T(), 200, w.Code)
	bookingId := gjson.Get(w.Body.String(), "bookingId").Uint()

	// Paid but not yet tied to a customer: no fan-out.
	var booking models.Booking
	assert.Nil(s.T(), s.DB.First(&booking, bookingId).Error)
	assert.Equal(s.T(), types.BOOKING_PAID, booking.Status)
	assert.Nil(s.T(), booking.CustomerID)
	assert.Equal(s.T(), before, s.notificationCount(s.Agency.ID))
}

func (s *TestSuite) TestCheckoutSessionLifecycle() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking":   s.bookingDraft(),
		"sessionId": "cs_lifecycle_1",
	})
	assert.Equal(s.T(), 200, w.Code)
	bookingId := gjson.Get(w.Body.String(), "bookingId").Uint()

	var booking models.Booking
	assert.Nil(s.T(), s.DB.First(&booking, bookingId).Error)
	assert.Equal(s.T(), types.BOOKING_VOID, booking.Status)
	assert.NotNil(s.T(), booking.ExpiresAt)

	s.Stripe.SessionStatus = stripe.CheckoutSessionPaymentStatusPaid
	w = s.request(router, "GET", "/api/check-checkout-session/cs_lifecycle_1", "", nil)
	assert.Equal(s.T(), 200, w.Code)

	var promoted models.Booking
	assert.Nil(s.T(), s.DB.First(&promoted, bookingId).Error)
	assert.Equal(s.T(), types.BOOKING_PAID, promoted.Status)
	assert.Nil(s.T(), promoted.ExpiresAt)

	// A repeated poll finds no provisional booking and must not re-promote.
	w = s.request(router, "POST", "/api/check-checkout-session/cs_lifecycle_1", "", nil)
	assert.Equal(s.T(), 204, w.Code)
}

func (s *TestSuite) TestCheckoutSessionUnpaidDeletesBooking() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking":   s.bookingDraft(),
		"sessionId": "cs_unpaid_1",
	})
	assert.Equal(s.T(), 200, w.Code)
	bookingId := gjson.Get(w.Body.String(), "bookingId").Uint()

	s.Stripe.SessionStatus = stripe.CheckoutSessionPaymentStatusUnpaid
	w = s.request(router, "POST", "/api/check-checkout-session/cs_unpaid_1", "", nil)
	assert.Equal(s.T(), 400, w.Code)
	assert.Equal(s.T(), string(stripe.CheckoutSessionPaymentStatusUnpaid), gjson.Get(w.Body.String(), "error").String())

	var count int64
	s.DB.Unscoped().Model(&models.Booking{}).Where("id = ?", bookingId).Count(&count)
	assert.Equal(s.T(), int64(0), count)

	s.Stripe.SessionStatus = stripe.CheckoutSessionPaymentStatusPaid
}

func (s *TestSuite) TestCheckoutSessionUnknownAtProvider() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking":   s.bookingDraft(),
		"sessionId": "cs_unknown_1",
	})
	assert.Equal(s.T(), 200, w.Code)
	bookingId := gjson.Get(w.Body.String(), "bookingId").Uint()

	// Stripe has not persisted the session yet; the client keeps polling.
	s.Stripe.SessionErr = &stripe.Error{Code: stripe.ErrorCodeResourceMissing, HTTPStatusCode: 404}
	w = s.request(router, "GET", "/api/check-checkout-session/cs_unknown_1", "", nil)
	assert.Equal(s.T(), 204, w.Code)
	s.Stripe.SessionErr = nil

	// The provisional booking is left for a later poll or the reaper.
	var booking models.Booking
	assert.Nil(s.T(), s.DB.First(&booking, bookingId).Error)
	assert.Equal(s.T(), types.BOOKING_VOID, booking.Status)
	assert.NotNil(s.T(), booking.ExpiresAt)
}

func (s *TestSuite) TestPayPalLifecycle() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking": s.bookingDraft(),
		"payPal":  true,
	})
	assert.Equal(s.T(), 200, w.Code)
	bookingId := gjson.Get(w.Body.String(), "bookingId").Uint()

	w = s.request(router, "POST", "/api/create-paypal-order", "", map[string]any{
		"bookingId": bookingId,
		"amount":    500,
		"currency":  "EUR",
	})
	assert.Equal(s.T(), 200, w.Code)
	orderId := gjson.Get(w.Body.String(), "orderId").String()
	assert.NotEmpty(s.T(), orderId)

	url := fmt.Sprintf("/api/check-paypal-order/%d/%s", bookingId, orderId)
	w = s.request(router, "POST", url, "", nil)
	assert.Equal(s.T(), 200, w.Code)

	var booking models.Booking
	assert.Nil(s.T(), s.DB.First(&booking, bookingId).Error)
	assert.Equal(s.T(), types.BOOKING_PAID, booking.Status)
	assert.Nil(s.T(), booking.ExpiresAt)

	// Once promoted the booking is no longer provisional.
	w = s.request(router, "POST", url, "", nil)
	assert.Equal(s.T(), 204, w.Code)
}

func (s *TestSuite) TestPayPalDeclinedDeletesBooking() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking": s.bookingDraft(),
		"payPal":  true,
	})
	assert.Equal(s.T(), 200, w.Code)
	bookingId := gjson.Get(w.Body.String(), "bookingId").Uint()

	s.PayPal.OrderStatus = paypal.OrderStatusVoided
	url := fmt.Sprintf("/api/check-paypal-order/%d/ppo_declined", bookingId)
	w = s.request(router, "POST", url, "", nil)
	assert.Equal(s.T(), 400, w.Code)
	assert.Equal(s.T(), paypal.OrderStatusVoided, gjson.Get(w.Body.String(), "error").String())

	var count int64
	s.DB.Unscoped().Model(&models.Booking{}).Where("id = ?", bookingId).Count(&count)
	assert.Equal(s.T(), int64(0), count)

	s.PayPal.OrderStatus = paypal.OrderStatusCompleted
}

func (s *TestSuite) TestPayPalOrderUnknownAtProvider() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/checkout", "", map[string]any{
		"booking": s.bookingDraft(),
		"payPal":  true,
	})
	assert.Equal(s.T(), 200, w.Code)
	bookingId := gjson.Get(w.Body.String(), "bookingId").Uint()

	s.PayPal.OrderErr = &paypal.ErrorResponse{Name: "RESOURCE_NOT_FOUND", Message: "order not found"}
	url := fmt.Sprintf("/api/check-paypal-order/%d/ppo_unknown", bookingId)
	w = s.request(router, "POST", url, "", nil)
	assert.Equal(s.T(), 204, w.Code)
	s.PayPal.OrderErr = nil

	// The provisional booking is left for a later poll or the reaper.
	var booking models.Booking
	assert.Nil(s.T(), s.DB.First(&booking, bookingId).Error)
	assert.NotNil(s.T(), booking.ExpiresAt)
}

func (s *TestSuite) TestCreateCheckoutSessionReusesCustomer() {
	router := s.newRouter()

	body := map[string]any{
		"amount":       500,
		"currency":     "eur",
		"receiptEmail": "repeat@example.com",
		"customerName": "Repeat Renter",
	}
	w := s.request(router, "POST", "/api/create-checkout-session", "", body)
	assert.Equal(s.T(), 200, w.Code)
	first := gjson.Get(w.Body.String(), "customerId").String()

	w = s.request(router, "POST", "/api/create-checkout-session", "", body)
	assert.Equal(s.T(), 200, w.Code)
	second := gjson.Get(w.Body.String(), "customerId").String()
	assert.Equal(s.T(), first, second)
}

func (s *TestSuite) TestSignUpActivateSignIn() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/sign-up", "", map[string]any{
		"email":    "newuser@example.com",
		"password": "secret123",
		"fullName": "New User",
	})
	assert.Equal(s.T(), 200, w.Code)

	var user models.User
	assert.Nil(s.T(), s.DB.Where("email = ?", "newuser@example.com").First(&user).Error)
	assert.False(s.T(), user.Verified)
	assert.NotNil(s.T(), user.ExpiresAt)

	// Unverified accounts cannot sign in yet.
	w = s.request(router, "POST", "/api/sign-in/frontend", "", map[string]any{
		"email":    "newuser@example.com",
		"password": "secret123",
	})
	assert.Equal(s.T(), 204, w.Code)

	var token models.Token
	assert.Nil(s.T(), s.DB.Where("user_id = ?", user.ID).First(&token).Error)
	w = s.request(router, "POST", "/api/activate", "", map[string]any{
		"userId":   user.ID,
		"token":    token.Value,
		"password": "secret456",
	})
	assert.Equal(s.T(), 200, w.Code)

	w = s.request(router, "POST", "/api/sign-in/frontend", "", map[string]any{
		"email":    "newuser@example.com",
		"password": "secret456",
	})
	assert.Equal(s.T(), 200, w.Code)
	accessToken := gjson.Get(w.Body.String(), "token").String()
	assert.NotEmpty(s.T(), accessToken)

	// Renters are not admitted to the admin console.
	w = s.request(router, "POST", "/api/sign-in/backend", "", map[string]any{
		"email":    "newuser@example.com",
		"password": "secret456",
	})
	assert.Equal(s.T(), 204, w.Code)

	w = s.request(router, "GET", "/api/validate-access-token", accessToken, nil)
	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestValidateEmail() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/validate-email", "", map[string]any{"email": "free@example.com"})
	assert.Equal(s.T(), 200, w.Code)

	w = s.request(router, "POST", "/api/validate-email", "", map[string]any{"email": s.Renter.Email})
	assert.Equal(s.T(), 204, w.Code)
}

func (s *TestSuite) TestAuthorizedRoutesRejectAnonymous() {
	router := s.newRouter()

	w := s.request(router, "GET", fmt.Sprintf("/api/user/%d", s.Renter.ID), "", nil)
	assert.Equal(s.T(), 401, w.Code)

	w = s.request(router, "GET", fmt.Sprintf("/api/user/%d", s.Renter.ID), s.RenterToken, nil)
	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestAdminRoutesRequireAdmin() {
	router := s.newRouter()

	body := map[string]any{
		"names": []map[string]any{{"language": "en", "name": "Spain"}},
	}
	w := s.request(router, "POST", "/api/create-country", s.RenterToken, body)
	assert.Equal(s.T(), 403, w.Code)

	w = s.request(router, "POST", "/api/create-country", s.AdminToken, body)
	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestUpdateBookingStatusNotifiesRenter() {
	router := s.newRouter()

	booking := models.Booking{
		AgencyID:   s.Agency.ID,
		PropertyID: s.Property.ID,
		RenterID:   &s.Renter.ID,
		LocationID: s.Location.ID,
		From:       time.Now().Add(240 * time.Hour),
		To:         time.Now().Add(360 * time.Hour),
		Status:     types.BOOKING_PENDING,
		Price:      500,
	}
	assert.Nil(s.T(), s.DB.Create(&booking).Error)

	before := s.notificationCount(s.Renter.ID)
	w := s.request(router, "POST", "/api/update-booking-status", s.AgencyToken, map[string]any{
		"ids":    []uint{booking.ID},
		"status": types.BOOKING_PAID,
	})
	assert.Equal(s.T(), 200, w.Code)

	var updated models.Booking
	assert.Nil(s.T(), s.DB.First(&updated, booking.ID).Error)
	assert.Equal(s.T(), types.BOOKING_PAID, updated.Status)
	assert.Equal(s.T(), before+1, s.notificationCount(s.Renter.ID))

	// The renter's notification is rendered in their language.
	var notification models.Notification
	assert.Nil(s.T(), s.DB.Where("user_id = ?", s.Renter.ID).Order("id DESC").First(&notification).Error)
	assert.Contains(s.T(), notification.Message, "réservation")
}

func (s *TestSuite) TestBookingListAndGet() {
	router := s.newRouter()

	booking := models.Booking{
		AgencyID:   s.Agency.ID,
		PropertyID: s.Property.ID,
		RenterID:   &s.Renter.ID,
		LocationID: s.Location.ID,
		From:       time.Now().Add(500 * time.Hour),
		To:         time.Now().Add(1000 * time.Hour),
		Status:     types.BOOKING_RESERVED,
		Price:      750,
	}
	assert.Nil(s.T(), s.DB.Create(&booking).Error)

	w := s.request(router, "POST", "/api/bookings/1/20/en", s.AgencyToken, map[string]any{
		"agencies": []uint{s.Agency.ID},
		"statuses": []types.BookingStatus{types.BOOKING_RESERVED},
	})
	assert.Equal(s.T(), 200, w.Code)
	assert.Greater(s.T(), gjson.Get(w.Body.String(), "count").Int(), int64(0))

	url := fmt.Sprintf("/api/booking/%d/en", booking.ID)
	w = s.request(router, "GET", url, s.RenterToken, nil)
	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), int64(booking.ID), gjson.Get(w.Body.String(), "data.id").Int())

	w = s.request(router, "GET", "/api/booking/99999/en", s.RenterToken, nil)
	assert.Equal(s.T(), 204, w.Code)
}

func (s *TestSuite) TestDeleteBookings() {
	router := s.newRouter()

	booking := models.Booking{
		AgencyID:   s.Agency.ID,
		PropertyID: s.Property.ID,
		RenterID:   &s.Renter.ID,
		LocationID: s.Location.ID,
		From:       time.Now().Add(240 * time.Hour),
		To:         time.Now().Add(360 * time.Hour),
		Status:     types.BOOKING_PENDING,
	}
	assert.Nil(s.T(), s.DB.Create(&booking).Error)

	w := s.request(router, "POST", "/api/delete-bookings", s.AdminToken, map[string]any{
		"ids": []uint{booking.ID},
	})
	assert.Equal(s.T(), 200, w.Code)

	var count int64
	s.DB.Unscoped().Model(&models.Booking{}).Where("id = ?", booking.ID).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

func (s *TestSuite) TestNotificationCounterClampsAtZero() {
	router := s.newRouter()

	assert.Nil(s.T(), utils.Notify(&s.Renter, nil, "clamp-check"))
	var notification models.Notification
	assert.Nil(s.T(), s.DB.Where("user_id = ? AND message = ?", s.Renter.ID, "clamp-check").First(&notification).Error)

	// Force the counter out of sync so the decrement would underflow.
	assert.Nil(s.T(), s.DB.
		Model(&models.NotificationCounter{}).
		Where("user_id = ?", s.Renter.ID).
		Update("count", 0).
		Error)

	url := fmt.Sprintf("/api/mark-notifications-as-read/%d", s.Renter.ID)
	w := s.request(router, "POST", url, s.RenterToken, map[string]any{"ids": []uint{notification.ID}})
	assert.Equal(s.T(), 200, w.Code)

	var counter models.NotificationCounter
	assert.Nil(s.T(), s.DB.Where("user_id = ?", s.Renter.ID).First(&counter).Error)
	assert.Equal(s.T(), uint(0), counter.Count)
}

func (s *TestSuite) TestNotificationEndpoints() {
	router := s.newRouter()

	assert.Nil(s.T(), utils.Notify(&s.Renter, nil, "first"))
	assert.Nil(s.T(), utils.Notify(&s.Renter, nil, "second"))

	url := fmt.Sprintf("/api/notifications/%d/1/10", s.Renter.ID)
	w := s.request(router, "GET", url, s.RenterToken, nil)
	assert.Equal(s.T(), 200, w.Code)
	assert.GreaterOrEqual(s.T(), gjson.Get(w.Body.String(), "count").Int(), int64(2))

	var notifications []models.Notification
	assert.Nil(s.T(), s.DB.Where("user_id = ? AND read = ?", s.Renter.ID, false).Limit(2).Find(&notifications).Error)
	ids := []uint{notifications[0].ID, notifications[1].ID}

	counterURL := fmt.Sprintf("/api/notification-counter/%d", s.Renter.ID)
	w = s.request(router, "GET", counterURL, s.RenterToken, nil)
	assert.Equal(s.T(), 200, w.Code)
	beforeCount := gjson.Get(w.Body.String(), "data.count").Int()

	w = s.request(router, "POST", fmt.Sprintf("/api/mark-notifications-as-read/%d", s.Renter.ID), s.RenterToken, map[string]any{"ids": ids})
	assert.Equal(s.T(), 200, w.Code)

	w = s.request(router, "GET", counterURL, s.RenterToken, nil)
	assert.Equal(s.T(), beforeCount-2, gjson.Get(w.Body.String(), "data.count").Int())

	w = s.request(router, "POST", fmt.Sprintf("/api/mark-notifications-as-unread/%d", s.Renter.ID), s.RenterToken, map[string]any{"ids": ids})
	assert.Equal(s.T(), 200, w.Code)

	w = s.request(router, "POST", fmt.Sprintf("/api/delete-notifications/%d", s.Renter.ID), s.RenterToken, map[string]any{"ids": ids})
	assert.Equal(s.T(), 200, w.Code)
	var count int64
	s.DB.Unscoped().Model(&models.Notification{}).Where("id IN (?)", ids).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

func (s *TestSuite) TestReapExpired() {
	past := time.Now().Add(-time.Hour)
	booking := models.Booking{
		AgencyID:   s.Agency.ID,
		PropertyID: s.Property.ID,
		RenterID:   &s.Renter.ID,
		LocationID: s.Location.ID,
		From:       time.Now().Add(240 * time.Hour),
		To:         time.Now().Add(360 * time.Hour),
		Status:     types.BOOKING_VOID,
		ExpiresAt:  &past,
	}
	assert.Nil(s.T(), s.DB.Create(&booking).Error)

	stale := models.User{
		FullName:  "Stale Signup",
		Email:     "stale@example.com",
		Type:      types.USER_TYPE_RENTER,
		ExpiresAt: &past,
	}
	assert.Nil(s.T(), s.DB.Create(&stale).Error)
	assert.Nil(s.T(), s.DB.Create(&models.Token{UserID: stale.ID, Value: "stale-token", ExpiresAt: past}).Error)

	boot.ReapExpired()

	var count int64
	s.DB.Unscoped().Model(&models.Booking{}).Where("id = ?", booking.ID).Count(&count)
	assert.Equal(s.T(), int64(0), count)
	s.DB.Unscoped().Model(&models.User{}).Where("id = ?", stale.ID).Count(&count)
	assert.Equal(s.T(), int64(0), count)
	s.DB.Unscoped().Model(&models.Token{}).Where("user_id = ?", stale.ID).Count(&count)
	assert.Equal(s.T(), int64(0), count)

	// Verified users keep their accounts even with a stale deadline.
	verified := models.User{
		FullName:  "Verified User",
		Email:     "verified-stale@example.com",
		Type:      types.USER_TYPE_RENTER,
		Verified:  true,
		ExpiresAt: &past,
	}
	assert.Nil(s.T(), s.DB.Create(&verified).Error)
	boot.ReapExpired()
	s.DB.Unscoped().Model(&models.User{}).Where("id = ?", verified.ID).Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

func (s *TestSuite) TestPushTokenEndpoints() {
	router := s.newRouter()

	url := fmt.Sprintf("/api/create-push-token/%d", s.Renter.ID)
	w := s.request(router, "POST", url, s.RenterToken, map[string]any{"token": "ExponentPushToken[abc]"})
	assert.Equal(s.T(), 200, w.Code)

	// Re-registering replaces the stored token.
	w = s.request(router, "POST", url, s.RenterToken, map[string]any{"token": "ExponentPushToken[def]"})
	assert.Equal(s.T(), 200, w.Code)

	w = s.request(router, "GET", fmt.Sprintf("/api/push-token/%d", s.Renter.ID), s.RenterToken, nil)
	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), "ExponentPushToken[def]", gjson.Get(w.Body.String(), "token").String())

	w = s.request(router, "POST", fmt.Sprintf("/api/delete-push-token/%d", s.Renter.ID), s.RenterToken, nil)
	assert.Equal(s.T(), 200, w.Code)

	w = s.request(router, "GET", fmt.Sprintf("/api/push-token/%d", s.Renter.ID), s.RenterToken, nil)
	assert.Equal(s.T(), 204, w.Code)
}

func (s *TestSuite) TestPropertySearch() {
	router := s.newRouter()

	w := s.request(router, "POST", "/api/frontend-properties/1/10", s.RenterToken, map[string]any{
		"location": s.Location.ID,
	})
	assert.Equal(s.T(), 200, w.Code)
	assert.Greater(s.T(), gjson.Get(w.Body.String(), "count").Int(), int64(0))

	w = s.request(router, "POST", "/api/frontend-properties/1/10", s.RenterToken, map[string]any{
		"keyword": "no-such-property",
	})
	assert.Equal(s.T(), 200, w.Code)
	assert.Equal(s.T(), int64(0), gjson.Get(w.Body.String(), "count").Int())
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
