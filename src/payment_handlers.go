package main

import (
	"ddtours/src/controllers"
	"ddtours/src/middlewares"
	"ddtours/src/types"

	"github.com/gin-gonic/gin"
)

func paymentHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	g.
		POST("/payments/create-order", func(ctx *gin.Context) {
			var body types.CreateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				bindError(ctx, err)
				return
			}
			order, status, err := c.Payments.CreateOrder(ctx.Request.Context(), &body)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respond(ctx, status, order)
		}).
		POST("/payments/verify", func(ctx *gin.Context) {
			var body types.VerifyPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				bindError(ctx, err)
				return
			}
			res, status, err := c.Payments.Verify(ctx.Request.Context(), middlewares.GetActor(ctx), &body)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{
				"success":   true,
				"message":   "Payment verified and booking confirmed",
				"bookingId": res.BookingID,
				"data":      res.Booking,
			})
		})
	return g
}
