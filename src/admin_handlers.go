package main

import (
	"cafe/src/db"
	"cafe/src/models"
	"cafe/src/types"
	"cafe/src/utils"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func generateJWT(email string, id uint, role string) (string, error) {
	now := time.Now()
	claims := types.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(id), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(12 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func adminAuthRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/admin/login", func(ctx *gin.Context) {
			var body types.AdminLoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var admin models.AdminUser
			if err := db.
				Where(&models.AdminUser{Email: body.Email}).
				First(&admin).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if !utils.CheckPassword(admin.PasswordHash, body.Password) {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			if err := db.
				Model(&models.AdminUser{}).
				Where("id = ?", admin.ID).
				Update("last_active", time.Now()).
				Error; err != nil {
				log.Printf("Error updating last_active for admin [%d]: %s\n", admin.ID, err.Error())
			}
			token, err := generateJWT(admin.Email, admin.ID, admin.Role)
			if err != nil {
				log.Printf("Error signing token: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token})
		})
	return g
}

func adminAnalyticsHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/analytics/summary", func(ctx *gin.Context) {
			summary, err := utils.GetSalesSummary()
			if err != nil {
				log.Printf("Error computing sales summary: %s\n", err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": summary})
		})
	return g
}
