package main

import (
	"fmt"
	"log"
	"net/http"
	"rms/src/db"
	"rms/src/i18n"
	"rms/src/models"
	"rms/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func locationName(names []types.LocationName, language string) string {
	for _, name := range names {
		if name.Language == language {
			return name.Name
		}
	}
	return names[0].Name
}

func adminLocationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/create-location", func(ctx *gin.Context) {
			var body types.UpsertLocationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			location := models.Location{
				CountryID: body.CountryID,
				Slug:      slug.Make(locationName(body.Names, i18n.DefaultLanguage)),
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var country models.Country
				if err := tx.First(&country, body.CountryID).Error; err != nil {
					return fmt.Errorf("country %d not found", body.CountryID)
				}
				if err := tx.Create(&location).Error; err != nil {
					return err
				}
				for _, name := range body.Names {
					value := models.LocationValue{
						LocationID: location.ID,
						Language:   i18n.Normalize(name.Language),
						Name:       name.Name,
					}
					if err := tx.Create(&value).Error; err != nil {
						return err
					}
					location.Values = append(location.Values, value)
				}
				return nil
			})
			if err != nil {
				log.Printf("Error creating location: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": location})
		}).
		PUT("/update-location/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpsertLocationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var location models.Location
				if err := tx.First(&location, params.ID).Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Location{}).
					Where("id = ?", location.ID).
					Updates(map[string]any{
						"country_id": body.CountryID,
						"slug":       slug.Make(locationName(body.Names, i18n.DefaultLanguage)),
					}).
					Error; err != nil {
					return err
				}
				// Replace the localized names wholesale; partial updates are
				// not worth the bookkeeping for a handful of languages.
				if err := tx.
					Unscoped().
					Where("location_id = ?", location.ID).
					Delete(&models.LocationValue{}).
					Error; err != nil {
					return err
				}
				for _, name := range body.Names {
					value := models.LocationValue{
						LocationID: location.ID,
						Language:   i18n.Normalize(name.Language),
						Name:       name.Name,
					}
					if err := tx.Create(&value).Error; err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				log.Printf("Error updating location %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		DELETE("/delete-location/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var count int64
				if err := tx.
					Model(&models.Property{}).
					Where("location_id = ?", params.ID).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return fmt.Errorf("location %d is still referenced by properties", params.ID)
				}
				if err := tx.
					Unscoped().
					Where("location_id = ?", params.ID).
					Delete(&models.LocationValue{}).
					Error; err != nil {
					return err
				}
				return tx.Unscoped().Delete(&models.Location{}, params.ID).Error
			})
			if err != nil {
				log.Printf("Error deleting location %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}

func locationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/location/:id/:language", func(ctx *gin.Context) {
			var params struct {
				ID       uint   `uri:"id" binding:"required"`
				Language string `uri:"language" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var location models.Location
			db := db.GetDb()
			if err := db.
				Preload("Country.Values", "language = ?", i18n.Normalize(params.Language)).
				Preload("Values", "language = ?", i18n.Normalize(params.Language)).
				First(&location, params.ID).
				Error; err != nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": location})
		}).
		GET("/locations/:page/:size/:language", func(ctx *gin.Context) {
			var params types.PageParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			language := i18n.Normalize(params.Language)
			keyword := ctx.Query("s")
			db := db.GetDb()
			q := db.Model(&models.Location{})
			if keyword != "" {
				q = q.
					Joins("JOIN location_values ON location_values.location_id = locations.id").
					Where("location_values.language = ? AND location_values.name LIKE ?", language, "%"+keyword+"%")
			}
			var count int64
			if err := q.Distinct("locations.id").Count(&count).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var locations []models.Location
			if err := q.
				Distinct().
				Preload("Values", "language = ?", language).
				Order("locations.slug ASC").
				Offset((params.Page - 1) * params.Size).
				Limit(params.Size).
				Find(&locations).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": locations, "count": count})
		})
	return g
}
