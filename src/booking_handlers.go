package main

import (
	"cafe/src/db"
	"cafe/src/models"
	"cafe/src/types"
	"cafe/src/utils"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := utils.CreateBooking(&body)
			if err != nil {
				log.Printf("Error creating booking: %s\n", err.Error())
				ctx.JSON(errStatus(err), gin.H{"error": err.Error()})
				return
			}
			go utils.SendBookingConfirmation(booking)
			ctx.JSON(http.StatusCreated, gin.H{"booking": booking})
		})
	return g
}

func adminBookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			var query struct {
				Status   string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
				Upcoming bool   `form:"upcoming"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var bookings []models.Booking
			db := db.GetDb()
			tx := db.Model(&models.Booking{}).Preload("Event")
			if query.Status != "" {
				tx = tx.Where("status = ?", query.Status)
			}
			if query.Upcoming {
				tx = tx.Where("date >= ?", time.Now())
			}
			if err := tx.
				Order("date asc").
				Limit(100).
				Find(&bookings).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		PATCH("/bookings/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateBookingStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := utils.UpdateBookingStatus(params.ID, body.Status)
			if err != nil {
				log.Printf("Error updating booking [%d] status: %s\n", params.ID, err.Error())
				ctx.JSON(errStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"booking": booking})
		})
	return g
}
