package middlewares

import (
	"log"
	"net/http"
	"rms/src/config"
	"rms/src/db"
	"rms/src/models"
	"rms/src/types"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func requestToken(ctx *gin.Context) string {
	if token := ctx.GetHeader("x-access-token"); token != "" {
		return token
	}
	for _, name := range []string{config.AUTH_COOKIE_BACKEND, config.AUTH_COOKIE_FRONTEND} {
		if cookie, err := ctx.Cookie(name); err == nil && cookie != "" {
			return cookie
		}
	}
	return ""
}

func AuthMiddleware(ctx *gin.Context) {
	reqToken := requestToken(ctx)
	if reqToken == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return []byte(config.JWT_SECRET), nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	db := db.GetDb()
	var user models.User
	db.Model(&models.User{}).Where(&models.User{ID: uint(uid)}).Find(&user)
	if uint(uid) != user.ID || user.ID < 1 || user.Blacklisted {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ctx.Set("id", user.ID)
	ctx.Set("email", user.Email)
	ctx.Set("type", string(user.Type))
	ctx.Set("language", user.Language)
}

// AdminMiddleware restricts a route group to admin accounts. It assumes
// AuthMiddleware already ran.
func AdminMiddleware(ctx *gin.Context) {
	if ctx.GetString("type") != string(types.USER_TYPE_ADMIN) {
		ctx.AbortWithStatus(http.StatusForbidden)
		return
	}
}
