package main

import (
	"errors"
	"log"
	"net/http"
	"rms/src/config"
	"rms/src/db"
	"rms/src/i18n"
	"rms/src/models"
	"rms/src/types"
	"rms/src/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	sessionTTL       = 24 * time.Hour
	longSessionTTL   = 180 * 24 * time.Hour
	activationWindow = 24 * time.Hour
)

func authCookieName(appType types.AppType) string {
	if appType == types.APP_TYPE_BACKEND {
		return config.AUTH_COOKIE_BACKEND
	}
	return config.AUTH_COOKIE_FRONTEND
}

func signUp(ctx *gin.Context, userType types.UserType, appType types.AppType) {
	var body types.SignUpRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hashed, err := utils.HashPassword(body.Password)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	expiry := time.Now().Add(activationWindow)
	user := models.User{
		FullName:  body.FullName,
		Email:     body.Email,
		Phone:     body.Phone,
		Password:  hashed,
		Type:      userType,
		Language:  i18n.Normalize(body.Language),
		ExpiresAt: &expiry,
	}
	if body.Birthdate != "" {
		if birthdate, err := time.Parse("2006-01-02", body.Birthdate); err == nil {
			user.Birthdate = &birthdate
		}
	}
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		token, err := utils.CreateActivationToken(tx, user.ID)
		if err != nil {
			return err
		}
		return utils.SendActivationEmail(&user, token.Value, appType)
	})
	if err != nil {
		log.Printf("Error on sign-up for %s: %s\n", body.Email, err.Error())
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.Status(http.StatusOK)
}

func authHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/sign-up", func(ctx *gin.Context) {
			signUp(ctx, types.USER_TYPE_RENTER, types.APP_TYPE_FRONTEND)
		}).
		POST("/admin-sign-up", func(ctx *gin.Context) {
			signUp(ctx, types.USER_TYPE_ADMIN, types.APP_TYPE_BACKEND)
		}).
		POST("/sign-in/:type", func(ctx *gin.Context) {
			appType := types.AppType(ctx.Params.ByName("type"))
			switch appType {
			case types.APP_TYPE_BACKEND, types.APP_TYPE_FRONTEND, types.APP_TYPE_MOBILE:
			default:
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.SignInRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var user models.User
			db := db.GetDb()
			if err := db.Where(&models.User{Email: body.Email}).First(&user).Error; err != nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			if !utils.CheckPassword(user.Password, body.Password) {
				ctx.Status(http.StatusNoContent)
				return
			}
			if user.Blacklisted || !user.Verified {
				ctx.Status(http.StatusNoContent)
				return
			}
			// The admin console only admits staff accounts; the renter apps
			// only admit renters.
			if appType == types.APP_TYPE_BACKEND && user.Type == types.USER_TYPE_RENTER {
				ctx.Status(http.StatusNoContent)
				return
			}
			if appType != types.APP_TYPE_BACKEND && user.Type != types.USER_TYPE_RENTER {
				ctx.Status(http.StatusNoContent)
				return
			}
			ttl := sessionTTL
			if body.StayConnected {
				ttl = longSessionTTL
			}
			token, err := utils.GenerateJWT(&user, appType, ttl)
			if err != nil {
				log.Printf("Error generating token for %s: %s\n", user.Email, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if appType != types.APP_TYPE_MOBILE {
				ctx.SetSameSite(http.SameSiteStrictMode)
				ctx.SetCookie(authCookieName(appType), token, int(ttl.Seconds()), "/", "", config.API_ENV != string(types.Local), true)
			}
			ctx.JSON(http.StatusOK, gin.H{"data": &user, "token": token})
		}).
		POST("/sign-out/:type", func(ctx *gin.Context) {
			appType := types.AppType(ctx.Params.ByName("type"))
			ctx.SetCookie(authCookieName(appType), "", -1, "/", "", config.API_ENV != string(types.Local), true)
			ctx.Status(http.StatusOK)
		}).
		POST("/activate", func(ctx *gin.Context) {
			var body types.ActivateRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var token models.Token
				if err := tx.
					Where(&models.Token{UserID: body.UserID, Value: body.Token}).
					First(&token).
					Error; err != nil {
					return errors.New("token not found")
				}
				if token.ExpiresAt.Before(time.Now()) {
					return errors.New("token has expired")
				}
				hashed, err := utils.HashPassword(body.Password)
				if err != nil {
					return err
				}
				if err := tx.
					Model(&models.User{}).
					Where("id = ?", body.UserID).
					Updates(map[string]any{
						"password":   hashed,
						"verified":   true,
						"active":     true,
						"expires_at": nil,
					}).
					Error; err != nil {
					return err
				}
				return tx.Unscoped().Delete(&token).Error
			})
			if err != nil {
				log.Printf("Error activating user %d: %s\n", body.UserID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/resend-link", func(ctx *gin.Context) {
			var body types.ResendLinkRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var user models.User
			db := db.GetDb()
			if err := db.Where(&models.User{Email: body.Email}).First(&user).Error; err != nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			if user.Verified {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "account is already activated"})
				return
			}
			appType := types.APP_TYPE_FRONTEND
			if user.Type != types.USER_TYPE_RENTER {
				appType = types.APP_TYPE_BACKEND
			}
			err := db.Transaction(func(tx *gorm.DB) error {
				token, err := utils.CreateActivationToken(tx, user.ID)
				if err != nil {
					return err
				}
				return utils.SendActivationEmail(&user, token.Value, appType)
			})
			if err != nil {
				log.Printf("Error resending activation link to %s: %s\n", body.Email, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/validate-email", func(ctx *gin.Context) {
			var body types.ValidateEmailRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var count int64
			db := db.GetDb()
			if err := db.
				Model(&models.User{}).
				Where("email = ?", body.Email).
				Count(&count).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if count > 0 {
				ctx.Status(http.StatusNoContent)
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
