package config

import (
	"fmt"
	"os"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// DEFAULT_LANGUAGE is the fallback locale for emails and notifications.
const DEFAULT_LANGUAGE = "en"

// Auth-cookie names per client app. Mobile always sends the x-access-token
// header instead.
const (
	AUTH_COOKIE_BACKEND  = "rms-be-token"
	AUTH_COOKIE_FRONTEND = "rms-fe-token"
)

// PROVISIONAL_TTL_MINUTES is how long a provisional booking or signup survives
// before the reaper deletes it.
const PROVISIONAL_TTL_MINUTES = 30

var (
	API_ENV     = os.Getenv("API_ENV")
	JWT_SECRET  = os.Getenv("JWT_SECRET")
	ADMIN_EMAIL = os.Getenv("ADMIN_EMAIL")

	BACKEND_HOST  = os.Getenv("BACKEND_HOST")
	FRONTEND_HOST = os.Getenv("FRONTEND_HOST")

	SMTP_FROM      = os.Getenv("SMTP_FROM")
	SMTP_FROM_NAME = os.Getenv("SMTP_FROM_NAME")

	CDN_USERS      = os.Getenv("CDN_USERS")
	CDN_PROPERTIES = os.Getenv("CDN_PROPERTIES")
)
