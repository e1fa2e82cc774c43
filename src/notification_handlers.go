package main

import (
	"log"
	"net/http"
	"rms/src/db"
	"rms/src/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type notificationIdsRequestBody struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// adjustCounter moves the unread counter by delta in a single upsert,
// clamping at zero.
func adjustCounter(tx *gorm.DB, userId uint, delta int64) error {
	seed := delta
	if seed < 0 {
		seed = 0
	}
	return tx.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"count": gorm.Expr(
					"CASE WHEN notification_counters.count + ? > 0 THEN notification_counters.count + ? ELSE 0 END",
					delta, delta,
				),
			}),
		}).
		Create(&models.NotificationCounter{UserID: userId, Count: uint(seed)}).
		Error
}

func notificationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/notifications/:id/:page/:size", func(ctx *gin.Context) {
			var params struct {
				ID   uint `uri:"id" binding:"required"`
				Page int  `uri:"page" binding:"required,min=1"`
				Size int  `uri:"size" binding:"required,min=1"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var count int64
			if err := db.
				Model(&models.Notification{}).
				Where("user_id = ?", params.ID).
				Count(&count).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var notifications []models.Notification
			if err := db.
				Where("user_id = ?", params.ID).
				Order("created_at DESC").
				Offset((params.Page - 1) * params.Size).
				Limit(params.Size).
				Find(&notifications).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": notifications, "count": count})
		}).
		GET("/notification-counter/:id", func(ctx *gin.Context) {
			var params struct {
				ID uint `uri:"id" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var counter models.NotificationCounter
			db := db.GetDb()
			if err := db.
				Where(&models.NotificationCounter{UserID: params.ID}).
				FirstOrCreate(&counter).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": counter})
		}).
		POST("/mark-notifications-as-read/:id", func(ctx *gin.Context) {
			var params struct {
				ID uint `uri:"id" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body notificationIdsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.Notification{}).
					Where("user_id = ? AND id IN (?) AND read = ?", params.ID, body.IDs, false).
					Update("read", true)
				if res.Error != nil {
					return res.Error
				}
				return adjustCounter(tx, params.ID, -res.RowsAffected)
			})
			if err != nil {
				log.Printf("Error marking notifications as read: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/mark-notifications-as-unread/:id", func(ctx *gin.Context) {
			var params struct {
				ID uint `uri:"id" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body notificationIdsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.Notification{}).
					Where("user_id = ? AND id IN (?) AND read = ?", params.ID, body.IDs, true).
					Update("read", false)
				if res.Error != nil {
					return res.Error
				}
				return adjustCounter(tx, params.ID, res.RowsAffected)
			})
			if err != nil {
				log.Printf("Error marking notifications as unread: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/delete-notifications/:id", func(ctx *gin.Context) {
			var params struct {
				ID uint `uri:"id" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body notificationIdsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var unread int64
				if err := tx.
					Model(&models.Notification{}).
					Where("user_id = ? AND id IN (?) AND read = ?", params.ID, body.IDs, false).
					Count(&unread).
					Error; err != nil {
					return err
				}
				if err := tx.
					Unscoped().
					Where("user_id = ? AND id IN (?)", params.ID, body.IDs).
					Delete(&models.Notification{}).
					Error; err != nil {
					return err
				}
				return adjustCounter(tx, params.ID, -unread)
			})
			if err != nil {
				log.Printf("Error deleting notifications: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
