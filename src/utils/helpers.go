package utils

import (
	"fmt"
	"log"
	"net/url"
	"rms/src/config"
	"rms/src/i18n"
	"rms/src/lib"
	"rms/src/models"
	"rms/src/types"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func GenerateJWT(user *models.User, appType types.AppType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := types.Claims{
		Email:   user.Email,
		Type:    string(user.Type),
		AppType: appType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWT_SECRET))
}

// CreateActivationToken stores a fresh single-use token for the user,
// replacing any token previously issued to them.
func CreateActivationToken(tx *gorm.DB, userID uint) (*models.Token, error) {
	if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.Token{}).Error; err != nil {
		return nil, err
	}
	token := models.Token{
		UserID:    userID,
		Value:     uuid.NewString(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if err := tx.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func activationHost(appType types.AppType) string {
	if appType == types.APP_TYPE_BACKEND {
		return config.BACKEND_HOST
	}
	return config.FRONTEND_HOST
}

func SendActivationEmail(user *models.User, tokenValue string, appType types.AppType) error {
	link := fmt.Sprintf("%s/activate?u=%d&e=%s&t=%s",
		activationHost(appType), user.ID, url.QueryEscape(user.Email), tokenValue)
	return lib.SendMail(&lib.SendMailInput{
		From:     config.SMTP_FROM,
		FromName: config.SMTP_FROM_NAME,
		To:       []string{user.Email},
		Subject:  i18n.T(user.Language, "mail_activation_subject"),
		Body:     i18n.T(user.Language, "mail_activation_body", user.FullName, link),
		Html:     true,
	})
}

func SendBookingConfirmationEmail(renter *models.User, booking *models.Booking, propertyName string) error {
	const dateFormat = "2006-01-02"
	return lib.SendMail(&lib.SendMailInput{
		From:     config.SMTP_FROM,
		FromName: config.SMTP_FROM_NAME,
		To:       []string{renter.Email},
		Subject:  i18n.T(renter.Language, "mail_confirmation_subject"),
		Body: i18n.T(renter.Language, "mail_confirmation_body",
			renter.FullName, booking.ID, propertyName,
			booking.From.Format(dateFormat), booking.To.Format(dateFormat)),
		Html: true,
	})
}

// ParseBookingDate reads the wire format used by the booking endpoints.
func ParseBookingDate(value string) (time.Time, error) {
	t, err := time.Parse(config.TIME_PARSE_FORMAT, value)
	if err != nil {
		log.Printf("Error parsing date %q: %s\n", value, err.Error())
		return time.Time{}, err
	}
	return t, nil
}
