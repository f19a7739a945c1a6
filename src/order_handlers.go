package main

import (
	"cafe/src/db"
	"cafe/src/models"
	"cafe/src/types"
	"cafe/src/utils"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
	"gorm.io/gorm"
)

func orderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/orders", func(ctx *gin.Context) {
			var body types.CreateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order, err := utils.CreateNewOrder(&body)
			if err != nil {
				log.Printf("Error creating order: %s\n", err.Error())
				ctx.JSON(errStatus(err), gin.H{"error": err.Error()})
				return
			}
			go utils.SendOrderConfirmation(order)
			ctx.JSON(http.StatusCreated, gin.H{"order": order})
		}).
		GET("/orders/:number", func(ctx *gin.Context) {
			var params types.OrderNumberRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var order models.Order
			db := db.GetDb()
			if err := db.
				Where(&models.Order{OrderNumber: params.Number}).
				Preload("Items").
				First(&order).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"order": order})
		}).
		GET("/orders/:number/upi", func(ctx *gin.Context) {
			var params types.OrderNumberRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var order models.Order
			db := db.GetDb()
			if err := db.
				Where(&models.Order{OrderNumber: params.Number}).
				First(&order).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			link := utils.BuildUPILink(&order)
			qrc, err := qrcode.New(link)
			if err != nil {
				log.Printf("Error generating UPI code for [%s]: %s\n", order.OrderNumber, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			filepath := path.Join(os.TempDir(), fmt.Sprintf("upi_%s.jpeg", order.OrderNumber))
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.FileAttachment(filepath, "upi.jpeg")
		})
	return g
}

func adminOrderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/orders", func(ctx *gin.Context) {
			var query struct {
				Status string `form:"status" binding:"omitempty,oneof=received preparing ready delivered cancelled"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var orders []models.Order
			db := db.GetDb()
			tx := db.Model(&models.Order{}).Preload("Items")
			if query.Status != "" {
				tx = tx.Where("status = ?", query.Status)
			}
			if err := tx.
				Order("created_at desc").
				Limit(100).
				Find(&orders).
				Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
		}).
		GET("/orders/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var order models.Order
			db := db.GetDb()
			if err := db.
				Where(&models.Order{ID: params.ID}).
				Preload("Items").
				First(&order).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"order": order})
		}).
		PATCH("/orders/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateOrderStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order, err := utils.UpdateOrderStatus(params.ID, body.Status)
			if err != nil {
				log.Printf("Error updating order [%d] status: %s\n", params.ID, err.Error())
				ctx.JSON(errStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"order": order})
		}).
		PATCH("/orders/:id/payment", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdatePaymentStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			order, err := utils.UpdatePaymentStatus(params.ID, body.Status)
			if err != nil {
				log.Printf("Error updating order [%d] payment: %s\n", params.ID, err.Error())
				ctx.JSON(errStatus(err), gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"order": order})
		})
	return g
}
