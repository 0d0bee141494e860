package main

import (
	"ddtours/src/controllers"
	"ddtours/src/middlewares"
	"ddtours/src/types"

	"github.com/gin-gonic/gin"
)

func reviewHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	g.GET("/reviews/recent", func(ctx *gin.Context) {
		var query types.ListQuery
		if err := ctx.ShouldBindQuery(&query); err != nil {
			bindError(ctx, err)
			return
		}
		reviews, status, err := c.Reviews.Recent(ctx.Request.Context(), &query)
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		respondList(ctx, reviews)
	})
	return g
}

func reviewSubmitHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	submit := func(ctx *gin.Context) {
		var body types.CreateReviewRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			bindError(ctx, err)
			return
		}
		agg, status, err := c.Reviews.Submit(ctx.Request.Context(), middlewares.GetActor(ctx), &body)
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		ctx.JSON(status, gin.H{
			"success":      true,
			"message":      "Review submitted!",
			"newAverage":   agg.AverageRating,
			"totalRatings": agg.TotalRatings,
		})
	}

	g.
		POST("/reviews", submit).
		POST("/reviews/add", submit)
	return g
}
