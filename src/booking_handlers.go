package main

import (
	"ddtours/src/controllers"
	"ddtours/src/middlewares"
	"ddtours/src/types"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
)

func bookingHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	create := func(ctx *gin.Context) {
		var body types.CreateBookingRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			bindError(ctx, err)
			return
		}
		booking, status, err := c.Bookings.Create(ctx.Request.Context(), middlewares.GetActor(ctx), &body)
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		respond(ctx, status, booking)
	}

	g.
		POST("/bookings", create).
		POST("/bookings/book", create).
		GET("/bookings/mine", func(ctx *gin.Context) {
			bookings, status, err := c.Bookings.ListMine(ctx.Request.Context(), middlewares.GetActor(ctx))
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respondList(ctx, bookings)
		}).
		GET("/bookings/:id/pass", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				bindError(ctx, err)
				return
			}
			file, status, err := c.Bookings.Pass(ctx.Request.Context(), middlewares.GetActor(ctx), params.ID)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			defer func() {
				if err := os.Remove(file); err != nil {
					log.Printf("[Bookings] Error removing pass file: %s\n", err.Error())
				}
			}()
			ctx.FileAttachment(file, fmt.Sprintf("ddtours-pass-%s.jpeg", params.ID))
		})
	return g
}

func bookingAdminHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	list := func(ctx *gin.Context) {
		bookings, status, err := c.Bookings.ListAll(ctx.Request.Context())
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		respondList(ctx, bookings)
	}
	updateStatus := func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			bindError(ctx, err)
			return
		}
		var body types.UpdateBookingStatusRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			bindError(ctx, err)
			return
		}
		res, status, err := c.Bookings.UpdateStatus(ctx.Request.Context(), params.ID, &body)
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		respond(ctx, status, res)
	}

	g.
		GET("/bookings", list).
		GET("/bookings/all", list).
		PUT("/bookings/:id/status", updateStatus).
		PUT("/bookings/status/:id", updateStatus).
		POST("/bookings/pass/verify", func(ctx *gin.Context) {
			var body types.VerifyPassRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				bindError(ctx, err)
				return
			}
			booking, status, err := c.Bookings.VerifyPass(ctx.Request.Context(), body.Code)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respond(ctx, status, booking)
		})
	return g
}
