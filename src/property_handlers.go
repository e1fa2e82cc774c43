package main

import (
	"context"
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

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func propertyFromBody(body *types.CreatePropertyRequestBody) models.Property {
	return models.Property{
		Name:          body.Name,
		Slug:          slug.Make(body.Name),
		Type:          body.Type,
		AgencyID:      body.AgencyID,
		Description:   body.Description,
		Bedrooms:      body.Bedrooms,
		Bathrooms:     body.Bathrooms,
		Kitchens:      body.Kitchens,
		ParkingSpaces: body.ParkingSpaces,
		Size:          body.Size,
		PetsAllowed:   body.PetsAllowed,
		Furnished:     body.Furnished,
		Aircon:        body.Aircon,
		Available:     body.Available,
		Hidden:        body.Hidden,
		LocationID:    body.LocationID,
		Address:       body.Address,
		Price:         body.Price,
		Cancellation:  body.Cancellation,
		RentalTerm:    body.RentalTerm,
	}
}

func propertyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/create-property", func(ctx *gin.Context) {
			var body types.CreatePropertyRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			property := propertyFromBody(&body)
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var agency models.User
				if err := tx.
					Where(&models.User{ID: body.AgencyID, Type: types.USER_TYPE_AGENCY}).
					First(&agency).
					Error; err != nil {
					return fmt.Errorf("agency %d not found", body.AgencyID)
				}
				var location models.Location
				if err := tx.First(&location, body.LocationID).Error; err != nil {
					return fmt.Errorf("location %d not found", body.LocationID)
				}
				return tx.Create(&property).Error
			})
			if err != nil {
				log.Printf("Error creating property: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": property})
		}).
		PUT("/update-property/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CreatePropertyRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			property := propertyFromBody(&body)
			db := db.GetDb()
			res := db.
				Model(&models.Property{}).
				Where("id = ?", params.ID).
				Updates(map[string]any{
					"name":           property.Name,
					"slug":           property.Slug,
					"type":           property.Type,
					"description":    property.Description,
					"bedrooms":       property.Bedrooms,
					"bathrooms":      property.Bathrooms,
					"kitchens":       property.Kitchens,
					"parking_spaces": property.ParkingSpaces,
					"size":           property.Size,
					"pets_allowed":   property.PetsAllowed,
					"furnished":      property.Furnished,
					"aircon":         property.Aircon,
					"available":      property.Available,
					"hidden":         property.Hidden,
					"location_id":    property.LocationID,
					"address":        property.Address,
					"price":          property.Price,
					"cancellation":   property.Cancellation,
					"rental_term":    property.RentalTerm,
				})
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
		POST("/upload-property-image/:id", func(ctx *gin.Context) {
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
			var property models.Property
			db := db.GetDb()
			if err := db.First(&property, params.ID).Error; err != nil {
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
			if err := lib.S3PutObject(context.Background(), config.CDN_PROPERTIES, key, contentType, src); err != nil {
				log.Printf("Error uploading image for property %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := db.
				Model(&models.Property{}).
				Where("id = ?", params.ID).
				Update("image", key).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if property.Image != "" {
				go func() {
					if err := lib.S3DeleteObject(context.Background(), config.CDN_PROPERTIES, property.Image); err != nil {
						log.Printf("Error deleting image %s: %s\n", property.Image, err.Error())
					}
				}()
			}
			ctx.JSON(http.StatusOK, gin.H{"image": key})
		}).
		DELETE("/delete-property/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var property models.Property
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.First(&property, params.ID).Error; err != nil {
					return err
				}
				var count int64
				if err := tx.
					Model(&models.Booking{}).
					Where("property_id = ?", params.ID).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return fmt.Errorf("property %d still has bookings", params.ID)
				}
				return tx.Unscoped().Delete(&models.Property{}, params.ID).Error
			})
			if err != nil {
				log.Printf("Error deleting property %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if property.Image != "" {
				go func() {
					if err := lib.S3DeleteObject(context.Background(), config.CDN_PROPERTIES, property.Image); err != nil {
						log.Printf("Error deleting image %s: %s\n", property.Image, err.Error())
					}
				}()
			}
			ctx.Status(http.StatusOK)
		}).
		GET("/property/:id/:language", func(ctx *gin.Context) {
			var params struct {
				ID       uint   `uri:"id" binding:"required"`
				Language string `uri:"language" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var property models.Property
			db := db.GetDb()
			if err := db.
				Preload("Agency").
				Preload("Location.Values", "language = ?", i18n.Normalize(params.Language)).
				First(&property, params.ID).
				Error; err != nil {
				ctx.Status(http.StatusNoContent)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": property})
		}).
		POST("/properties/:page/:size", func(ctx *gin.Context) {
			var params types.PageParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var filters types.PropertyQueryFilters
			if err := ctx.ShouldBindJSON(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			q := propertyFilterQuery(db, &filters, false)
			var count int64
			if err := q.Count(&count).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var properties []models.Property
			if err := q.
				Preload("Agency").
				Order("name ASC").
				Offset((params.Page - 1) * params.Size).
				Limit(params.Size).
				Find(&properties).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": properties, "count": count})
		}).
		POST("/frontend-properties/:page/:size", func(ctx *gin.Context) {
			var params types.PageParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var filters types.PropertyQueryFilters
			if err := ctx.ShouldBindJSON(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			q := propertyFilterQuery(db, &filters, true)
			var count int64
			if err := q.Count(&count).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var properties []models.Property
			if err := q.
				Preload("Agency").
				Order("name ASC").
				Offset((params.Page - 1) * params.Size).
				Limit(params.Size).
				Find(&properties).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": properties, "count": count})
		})
	return g
}

// propertyFilterQuery builds the shared search query. The public listing only
// shows visible, available properties.
func propertyFilterQuery(db *gorm.DB, filters *types.PropertyQueryFilters, publicOnly bool) *gorm.DB {
	q := db.Model(&models.Property{})
	if publicOnly {
		q = q.Where("hidden = ? AND available = ?", false, true)
	}
	if len(filters.Agencies) > 0 {
		q = q.Where("agency_id IN (?)", filters.Agencies)
	}
	if filters.LocationID > 0 {
		q = q.Where("location_id = ?", filters.LocationID)
	}
	if len(filters.Types) > 0 {
		q = q.Where("type IN (?)", filters.Types)
	}
	if len(filters.RentalTerms) > 0 {
		q = q.Where("rental_term IN (?)", filters.RentalTerms)
	}
	if filters.Keyword != "" {
		keyword := "%" + filters.Keyword + "%"
		q = q.Where("name LIKE ? OR address LIKE ?", keyword, keyword)
	}
	return q
}
