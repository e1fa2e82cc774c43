package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"rms/src/boot"
	"rms/src/config"
	"rms/src/middlewares"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api"
)

var bookableDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	return !time.Now().After(datetime)
}

var gtfield validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	fieldValue, ok := field.Interface().(string)
	if !ok {
		return false
	}
	fielddatetime, err := time.Parse(config.TIME_PARSE_FORMAT, fieldValue)
	if err != nil {
		return false
	}
	return !fielddatetime.After(datetime)
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDateValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	api := g.Group(apiPrefix)
	api = authHandlers(api)
	api = checkoutHandlers(api)
	api = stripeHandlers(api)
	api = paypalHandlers(api)
	return api
}

func authorizedRoutes(g *gin.Engine) *gin.RouterGroup {
	authorized := g.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)

	authorized.GET("/validate-access-token", func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	authorized = userHandlers(authorized)
	authorized = agencyHandlers(authorized)
	authorized = propertyHandlers(authorized)
	authorized = locationHandlers(authorized)
	authorized = countryHandlers(authorized)
	authorized = bookingHandlers(authorized)
	authorized = notificationHandlers(authorized)

	admin := authorized.Group("")
	admin.Use(middlewares.AdminMiddleware)
	adminLocationHandlers(admin)
	adminCountryHandlers(admin)

	return authorized
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitScheduler()
	defer boot.StopScheduler()

	router := setupRouter()

	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "x-access-token")
		cc.AllowOriginFunc = func(origin string) bool {
			for _, host := range []string{config.BACKEND_HOST, config.FRONTEND_HOST} {
				if host == "" {
					continue
				}
				if match, _ := regexp.MatchString(host, origin); match {
					return true
				}
			}
			return false
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	registerValidators()

	publicRoutes(router)
	authorizedRoutes(router)

	if err := router.Run(":4004"); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
