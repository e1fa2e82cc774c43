package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"rms/src/config"
	"rms/src/db"
	"rms/src/i18n"
	"rms/src/lib"
	"rms/src/models"
	"rms/src/types"
	"rms/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func userHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/user/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var user models.User
			db := db.GetDb()
			if err := db.First(&user, params.ID).Error; err != nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		POST("/users/:page/:size", func(ctx *gin.Context) {
			var params types.PageParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body struct {
				Types   []types.UserType `json:"types,omitempty"`
				Keyword string           `json:"keyword,omitempty"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			q := db.Model(&models.User{})
			if len(body.Types) > 0 {
				q = q.Where("type IN (?)", body.Types)
			}
			if body.Keyword != "" {
				keyword := "%" + body.Keyword + "%"
				q = q.Where("full_name LIKE ? OR email LIKE ?", keyword, keyword)
			}
			var count int64
			if err := q.Count(&count).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var users []models.User
			if err := q.
				Order("full_name ASC").
				Offset((params.Page - 1) * params.Size).
				Limit(params.Size).
				Find(&users).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": users, "count": count})
		}).
		POST("/create-user", func(ctx *gin.Context) {
			// Staff-created accounts have no password yet; the activation
			// email lets the owner choose one.
			var body struct {
				Email    string         `json:"email" binding:"required,email"`
				FullName string         `json:"fullName" binding:"required"`
				Type     types.UserType `json:"type" binding:"required"`
				Phone    string         `json:"phone,omitempty"`
				Language string         `json:"language,omitempty"`
				PayLater *bool          `json:"payLater,omitempty"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user := models.User{
				FullName: body.FullName,
				Email:    body.Email,
				Phone:    body.Phone,
				Type:     body.Type,
				Language: i18n.Normalize(body.Language),
			}
			if body.PayLater != nil {
				user.PayLater = *body.PayLater
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&user).Error; err != nil {
					return err
				}
				token, err := utils.CreateActivationToken(tx, user.ID)
				if err != nil {
					return err
				}
				return utils.SendActivationEmail(&user, token.Value, types.APP_TYPE_BACKEND)
			})
			if err != nil {
				log.Printf("Error creating user %s: %s\n", body.Email, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		PUT("/update-user", func(ctx *gin.Context) {
			var body types.UpdateUserRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			updates := map[string]any{}
			if body.FullName != "" {
				updates["full_name"] = body.FullName
			}
			if body.Phone != "" {
				updates["phone"] = body.Phone
			}
			if body.Location != "" {
				updates["location"] = body.Location
			}
			if body.Bio != "" {
				updates["bio"] = body.Bio
			}
			if body.Language != "" {
				updates["language"] = i18n.Normalize(body.Language)
			}
			if body.EnableEmailNotifications != nil {
				updates["enable_email_notifications"] = *body.EnableEmailNotifications
			}
			if body.PayLater != nil {
				updates["pay_later"] = *body.PayLater
			}
			db := db.GetDb()
			res := db.Model(&models.User{}).Where("id = ?", body.ID).Updates(updates)
			if res.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.Status(http.StatusNoContent)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/change-password", func(ctx *gin.Context) {
			var body struct {
				ID          uint   `json:"id" binding:"required"`
				Password    string `json:"password" binding:"required"`
				NewPassword string `json:"newPassword" binding:"required,min=6"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var user models.User
				if err := tx.First(&user, body.ID).Error; err != nil {
					return err
				}
				if !utils.CheckPassword(user.Password, body.Password) {
					return errors.New("password mismatch")
				}
				hashed, err := utils.HashPassword(body.NewPassword)
				if err != nil {
					return err
				}
				return tx.
					Model(&models.User{}).
					Where("id = ?", user.ID).
					Update("password", hashed).
					Error
			})
			if err != nil {
				log.Printf("Error changing password for user %d: %s\n", body.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/delete-users", func(ctx *gin.Context) {
			var body struct {
				IDs []uint `json:"ids" binding:"required,min=1"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var avatars []string
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Model(&models.User{}).
					Where("id IN (?) AND avatar <> ''", body.IDs).
					Pluck("avatar", &avatars).
					Error; err != nil {
					return err
				}
				for _, model := range []any{
					&models.Token{},
					&models.PushToken{},
					&models.Notification{},
				} {
					if err := tx.Unscoped().Where("user_id IN (?)", body.IDs).Delete(model).Error; err != nil {
						return err
					}
				}
				if err := tx.Where("user_id IN (?)", body.IDs).Delete(&models.NotificationCounter{}).Error; err != nil {
					return err
				}
				if err := tx.
					Unscoped().
					Where("renter_id IN (?) OR agency_id IN (?)", body.IDs, body.IDs).
					Delete(&models.Booking{}).
					Error; err != nil {
					return err
				}
				if err := tx.Unscoped().Where("agency_id IN (?)", body.IDs).Delete(&models.Property{}).Error; err != nil {
					return err
				}
				return tx.Unscoped().Where("id IN (?)", body.IDs).Delete(&models.User{}).Error
			})
			if err != nil {
				log.Printf("Error deleting users: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			go func() {
				for _, avatar := range avatars {
					if err := lib.S3DeleteObject(context.Background(), config.CDN_USERS, avatar); err != nil {
						log.Printf("Error deleting avatar %s: %s\n", avatar, err.Error())
					}
				}
			}()
			ctx.Status(http.StatusOK)
		}).
		POST("/update-avatar/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			file, err := ctx.FormFile("image")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var user models.User
			db := db.GetDb()
			if err := db.First(&user, params.ID).Error; err != nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			src, err := file.Open()
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			defer src.Close()
			key := fmt.Sprintf("%s%s", uuid.NewString(), path.Ext(file.Filename))
			contentType := file.Header.Get("Content-Type")
			if err := lib.S3PutObject(context.Background(), config.CDN_USERS, key, contentType, src); err != nil {
				log.Printf("Error uploading avatar for user %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := db.
				Model(&models.User{}).
				Where("id = ?", params.ID).
				Update("avatar", key).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if user.Avatar != "" {
				go func() {
					if err := lib.S3DeleteObject(context.Background(), config.CDN_USERS, user.Avatar); err != nil {
						log.Printf("Error deleting avatar %s: %s\n", user.Avatar, err.Error())
					}
				}()
			}
			ctx.JSON(http.StatusOK, gin.H{"avatar": key})
		}).
		POST("/create-push-token/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreatePushTokenRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			if err := db.
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "user_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"token"}),
				}).
				Create(&models.PushToken{UserID: params.ID, Token: body.Token}).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		GET("/push-token/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var pushToken models.PushToken
			db := db.GetDb()
			if err := db.Where(&models.PushToken{UserID: params.ID}).First(&pushToken).Error; err != nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": pushToken.Token})
		}).
		POST("/delete-push-token/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			if err := db.
				Unscoped().
				Where("user_id = ?", params.ID).
				Delete(&models.PushToken{}).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
