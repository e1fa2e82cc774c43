package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"rms/src/db"
	"rms/src/i18n"
	"rms/src/lib"
	"rms/src/models"
	"rms/src/types"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const countriesCacheTTL = time.Hour

func countriesCacheKey(language string) string {
	return fmt.Sprintf("countries:%s", language)
}

func invalidateCountriesCache() {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	for language := range map[string]bool{"en": true, "fr": true} {
		rd.Del(context.Background(), countriesCacheKey(language))
	}
}

func adminCountryHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/create-country", func(ctx *gin.Context) {
			var body types.UpsertCountryRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			country := models.Country{
				Slug: slug.Make(locationName(body.Names, i18n.DefaultLanguage)),
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&country).Error; err != nil {
					return err
				}
				for _, name := range body.Names {
					value := models.CountryValue{
						CountryID: country.ID,
						Language:  i18n.Normalize(name.Language),
						Name:      name.Name,
					}
					if err := tx.Create(&value).Error; err != nil {
						return err
					}
					country.Values = append(country.Values, value)
				}
				return nil
			})
			if err != nil {
				log.Printf("Error creating country: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			go invalidateCountriesCache()
			ctx.JSON(http.StatusOK, gin.H{"data": country})
		}).
		PUT("/update-country/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpsertCountryRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var country models.Country
				if err := tx.First(&country, params.ID).Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Country{}).
					Where("id = ?", country.ID).
					Update("slug", slug.Make(locationName(body.Names, i18n.DefaultLanguage))).
					Error; err != nil {
					return err
				}
				if err := tx.
					Unscoped().
					Where("country_id = ?", country.ID).
					Delete(&models.CountryValue{}).
					Error; err != nil {
					return err
				}
				for _, name := range body.Names {
					value := models.CountryValue{
						CountryID: country.ID,
						Language:  i18n.Normalize(name.Language),
						Name:      name.Name,
					}
					if err := tx.Create(&value).Error; err != nil {
						return err
					}
				}
				return nil
			})
			if err != nil {
				log.Printf("Error updating country %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			go invalidateCountriesCache()
			ctx.Status(http.StatusOK)
		}).
		DELETE("/delete-country/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var count int64
				if err := tx.
					Model(&models.Location{}).
					Where("country_id = ?", params.ID).
					Count(&count).
					Error; err != nil {
					return err
				}
				if count > 0 {
					return fmt.Errorf("country %d still has locations", params.ID)
				}
				if err := tx.
					Unscoped().
					Where("country_id = ?", params.ID).
					Delete(&models.CountryValue{}).
					Error; err != nil {
					return err
				}
				return tx.Unscoped().Delete(&models.Country{}, params.ID).Error
			})
			if err != nil {
				log.Printf("Error deleting country %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			go invalidateCountriesCache()
			ctx.Status(http.StatusOK)
		})
	return g
}

func countryHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/countries/:language", func(ctx *gin.Context) {
			language := i18n.Normalize(ctx.Params.ByName("language"))
			rd := lib.GetRedisClient()
			if rd != nil {
				if cached := rd.Get(context.Background(), countriesCacheKey(language)).Val(); cached != "" {
					var countries []models.Country
					if err := json.Unmarshal([]byte(cached), &countries); err == nil {
						ctx.JSON(http.StatusOK, gin.H{"data": countries, "count": len(countries)})
						return
					}
				}
			}
			var countries []models.Country
			db := db.GetDb()
			if err := db.
				Preload("Values", "language = ?", language).
				Order("slug ASC").
				Find(&countries).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if rd != nil {
				if b, err := json.Marshal(countries); err == nil {
					go rd.SetEx(context.Background(), countriesCacheKey(language), string(b), countriesCacheTTL)
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": countries, "count": len(countries)})
		})
	return g
}
