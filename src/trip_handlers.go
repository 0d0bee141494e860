package main

import (
	"ddtours/src/controllers"
	"ddtours/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func tripHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	g.
		GET("/trips", func(ctx *gin.Context) {
			trips, status, err := c.Trips.List(ctx.Request.Context())
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respondList(ctx, trips)
		}).
		GET("/trips/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				bindError(ctx, err)
				return
			}
			trip, status, err := c.Trips.Get(ctx.Request.Context(), params.ID)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respond(ctx, status, trip)
		}).
		GET("/trips/:id/reviews", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				bindError(ctx, err)
				return
			}
			var query types.ListQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				bindError(ctx, err)
				return
			}
			reviews, status, err := c.Reviews.TripReviews(ctx.Request.Context(), params.ID, &query)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respondList(ctx, reviews)
		})
	return g
}

func tripAdminHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	create := func(ctx *gin.Context) {
		var form types.TripForm
		if err := ctx.ShouldBind(&form); err != nil {
			bindError(ctx, err)
			return
		}
		trip, status, err := c.Trips.Create(ctx.Request.Context(), &form)
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		respond(ctx, status, trip)
	}
	update := func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			bindError(ctx, err)
			return
		}
		var form types.TripForm
		if err := ctx.ShouldBind(&form); err != nil {
			bindError(ctx, err)
			return
		}
		trip, status, err := c.Trips.Update(ctx.Request.Context(), params.ID, &form)
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		respond(ctx, status, trip)
	}
	remove := func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			bindError(ctx, err)
			return
		}
		status, err := c.Trips.Delete(ctx.Request.Context(), params.ID)
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Trip deleted"})
	}

	g.
		POST("/trips", create).
		PUT("/trips/:id", update).
		DELETE("/trips/:id", remove)

	// routes used by older admin console builds
	g.
		POST("/trips/add", create).
		PUT("/trips/update/:id", update).
		DELETE("/trips/delete/:id", remove)
	return g
}
