package main

import (
	"net/http"
	"rms/src/db"
	"rms/src/models"
	"rms/src/types"

	"github.com/gin-gonic/gin"
)

func agencyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/agency/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var agency models.User
			db := db.GetDb()
			if err := db.
				Where(&models.User{ID: params.ID, Type: types.USER_TYPE_AGENCY}).
				First(&agency).
				Error; err != nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": agency})
		}).
		GET("/agencies/:page/:size", func(ctx *gin.Context) {
			var params types.PageParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			keyword := ctx.Query("s")
			db := db.GetDb()
			q := db.Model(&models.User{}).Where("type = ?", types.USER_TYPE_AGENCY)
			if keyword != "" {
				q = q.Where("full_name LIKE ?", "%"+keyword+"%")
			}
			var count int64
			if err := q.Count(&count).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var agencies []models.User
			if err := q.
				Order("full_name ASC").
				Offset((params.Page - 1) * params.Size).
				Limit(params.Size).
				Find(&agencies).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": agencies, "count": count})
		}).
		GET("/all-agencies", func(ctx *gin.Context) {
			var agencies []models.User
			db := db.GetDb()
			if err := db.
				Where("type = ?", types.USER_TYPE_AGENCY).
				Order("full_name ASC").
				Find(&agencies).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": agencies, "count": len(agencies)})
		})
	return g
}
