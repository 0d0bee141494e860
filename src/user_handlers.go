package main

import (
	"ddtours/src/controllers"
	"ddtours/src/middlewares"
	"ddtours/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func profileHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	g.
		GET("/users/profile", func(ctx *gin.Context) {
			profile, status, err := c.Users.Profile(ctx.Request.Context(), middlewares.GetActor(ctx))
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respond(ctx, status, profile)
		}).
		PUT("/users/profile", func(ctx *gin.Context) {
			var body types.UpdateProfileRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				bindError(ctx, err)
				return
			}
			profile, status, err := c.Users.UpdateProfile(ctx.Request.Context(), middlewares.GetActor(ctx), &body)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respond(ctx, status, profile)
		})
	return g
}

func userAdminHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	g.
		GET("/users", func(ctx *gin.Context) {
			var query types.ListUsersQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				bindError(ctx, err)
				return
			}
			page, status, err := c.Users.List(ctx.Request.Context(), &query)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respond(ctx, status, page)
		}).
		DELETE("/users/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				bindError(ctx, err)
				return
			}
			status, err := c.Users.Delete(ctx.Request.Context(), params.ID)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
		})
	return g
}
