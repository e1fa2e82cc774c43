package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type AppEnv string

const (
	Local      AppEnv = "local"
	Test       AppEnv = "test"
	Production AppEnv = "production"
)

type UserType string

const (
	USER_TYPE_ADMIN  UserType = "admin"
	USER_TYPE_AGENCY UserType = "agency"
	USER_TYPE_RENTER UserType = "user"
)

// AppType identifies which client a request comes from. It selects the
// auth-cookie name and the set of user types allowed to sign in.
type AppType string

const (
	APP_TYPE_BACKEND  AppType = "backend"
	APP_TYPE_FRONTEND AppType = "frontend"
	APP_TYPE_MOBILE   AppType = "mobile"
)

type BookingStatus string

const (
	BOOKING_VOID      BookingStatus = "void"
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_DEPOSIT   BookingStatus = "deposit"
	BOOKING_PAID      BookingStatus = "paid"
	BOOKING_RESERVED  BookingStatus = "reserved"
	BOOKING_CANCELLED BookingStatus = "cancelled"
)

type RentalTerm string

const (
	RENTAL_TERM_MONTHLY RentalTerm = "monthly"
	RENTAL_TERM_WEEKLY  RentalTerm = "weekly"
	RENTAL_TERM_DAILY   RentalTerm = "daily"
	RENTAL_TERM_YEARLY  RentalTerm = "yearly"
)

type PropertyType string

const (
	PROPERTY_APARTMENT  PropertyType = "apartment"
	PROPERTY_COMMERCIAL PropertyType = "commercial"
	PROPERTY_FARM       PropertyType = "farm"
	PROPERTY_HOUSE      PropertyType = "house"
	PROPERTY_INDUSTRIAL PropertyType = "industrial"
	PROPERTY_PLOT       PropertyType = "plot"
	PROPERTY_TOWNHOUSE  PropertyType = "townhouse"
)

type Claims struct {
	Email   string  `json:"email"`
	Type    string  `json:"type"`
	AppType AppType `json:"app_type"`
	jwt.RegisteredClaims
}

type SignUpRequestBody struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FullName  string `json:"fullName" binding:"required"`
	Phone     string `json:"phone,omitempty"`
	Language  string `json:"language,omitempty"`
	Birthdate string `json:"birthDate,omitempty"`
}

type SignInRequestBody struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	StayConnected bool   `json:"stayConnected,omitempty"`
}

type ActivateRequestBody struct {
	UserID   uint   `json:"userId" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type ValidateEmailRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type ResendLinkRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type UpdateUserRequestBody struct {
	ID                       uint   `json:"id" binding:"required"`
	FullName                 string `json:"fullName,omitempty"`
	Phone                    string `json:"phone,omitempty"`
	Location                 string `json:"location,omitempty"`
	Bio                      string `json:"bio,omitempty"`
	Language                 string `json:"language,omitempty"`
	EnableEmailNotifications *bool  `json:"enableEmailNotifications,omitempty"`
	PayLater                 *bool  `json:"payLater,omitempty"`
}

type CreatePushTokenRequestBody struct {
	Token string `json:"token" binding:"required"`
}

// BookingDraft is the booking part of a checkout payload and the body of the
// admin create/update booking endpoints.
type BookingDraft struct {
	ID           uint          `json:"id,omitempty"`
	AgencyID     uint          `json:"agency" binding:"required"`
	PropertyID   uint          `json:"property" binding:"required"`
	RenterID     uint          `json:"renter,omitempty"`
	LocationID   uint          `json:"location" binding:"required"`
	From         string        `json:"from" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	To           string        `json:"to" binding:"required,bookabledate,gtdate=From" time_format:"2006-01-02 15:04:05 -07:00"`
	Status       BookingStatus `json:"status,omitempty"`
	Cancellation bool          `json:"cancellation,omitempty"`
	Price        float64       `json:"price,omitempty"`
}

// CheckoutRenter carries the profile of a renter signing up during checkout.
type CheckoutRenter struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone,omitempty"`
	Language string `json:"language,omitempty"`
}

type CheckoutRequestBody struct {
	Renter          *CheckoutRenter `json:"renter,omitempty"`
	Booking         BookingDraft    `json:"booking" binding:"required"`
	PayLater        bool            `json:"payLater,omitempty"`
	PayPal          bool            `json:"payPal,omitempty"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	SessionID       string          `json:"sessionId,omitempty"`
	CustomerID      string          `json:"customerId,omitempty"`
}

type CreateCheckoutSessionRequestBody struct {
	BookingID    uint    `json:"bookingId,omitempty"`
	Amount       float64 `json:"amount" binding:"required"`
	Currency     string  `json:"currency" binding:"required"`
	Locale       string  `json:"locale,omitempty"`
	ReceiptEmail string  `json:"receiptEmail" binding:"required,email"`
	CustomerName string  `json:"customerName,omitempty"`
	Description  string  `json:"description,omitempty"`
}

type CreatePayPalOrderRequestBody struct {
	BookingID uint    `json:"bookingId" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Currency  string  `json:"currency" binding:"required"`
	Name      string  `json:"name,omitempty"`
}

type UpdateBookingStatusRequestBody struct {
	IDs    []uint        `json:"ids" binding:"required,min=1"`
	Status BookingStatus `json:"status" binding:"required"`
}

type DeleteBookingsRequestBody struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

type BookingQueryFilters struct {
	Agencies   []uint          `json:"agencies,omitempty"`
	Statuses   []BookingStatus `json:"statuses,omitempty"`
	PropertyID uint            `json:"property,omitempty"`
	From       *time.Time      `json:"from,omitempty"`
	To         *time.Time      `json:"to,omitempty"`
	Keyword    string          `json:"keyword,omitempty"`
}

type CreatePropertyRequestBody struct {
	Name          string       `json:"name" binding:"required"`
	Type          PropertyType `json:"type" binding:"required"`
	AgencyID      uint         `json:"agency" binding:"required"`
	Description   string       `json:"description,omitempty"`
	Bedrooms      uint         `json:"bedrooms,omitempty"`
	Bathrooms     uint         `json:"bathrooms,omitempty"`
	Kitchens      uint         `json:"kitchens,omitempty"`
	ParkingSpaces uint         `json:"parkingSpaces,omitempty"`
	Size          float64      `json:"size,omitempty"`
	PetsAllowed   bool         `json:"petsAllowed,omitempty"`
	Furnished     bool         `json:"furnished,omitempty"`
	Aircon        bool         `json:"aircon,omitempty"`
	Available     bool         `json:"available,omitempty"`
	Hidden        bool         `json:"hidden,omitempty"`
	LocationID    uint         `json:"location" binding:"required"`
	Address       string       `json:"address,omitempty"`
	Price         float64      `json:"price" binding:"required"`
	Cancellation  float64      `json:"cancellation,omitempty"`
	RentalTerm    RentalTerm   `json:"rentalTerm" binding:"required"`
}

type PropertyQueryFilters struct {
	Agencies    []uint         `json:"agencies,omitempty"`
	LocationID  uint           `json:"location,omitempty"`
	Types       []PropertyType `json:"types,omitempty"`
	RentalTerms []RentalTerm   `json:"rentalTerms,omitempty"`
	Keyword     string         `json:"keyword,omitempty"`
}

type LocationName struct {
	Language string `json:"language" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type UpsertLocationRequestBody struct {
	CountryID uint           `json:"country" binding:"required"`
	Names     []LocationName `json:"names" binding:"required,min=1"`
}

type UpsertCountryRequestBody struct {
	Names []LocationName `json:"names" binding:"required,min=1"`
}

type PageParams struct {
	Page     int    `uri:"page" binding:"required,min=1"`
	Size     int    `uri:"size" binding:"required,min=1"`
	Language string `uri:"language,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}
