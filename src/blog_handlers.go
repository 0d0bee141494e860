package main

import (
	"ddtours/src/controllers"
	"ddtours/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func blogHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	g.
		GET("/blogs", func(ctx *gin.Context) {
			blogs, status, err := c.Blogs.List(ctx.Request.Context())
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respondList(ctx, blogs)
		}).
		GET("/blogs/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				bindError(ctx, err)
				return
			}
			blog, status, err := c.Blogs.Get(ctx.Request.Context(), params.ID)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			respond(ctx, status, blog)
		})
	return g
}

func blogAdminHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	create := func(ctx *gin.Context) {
		var body types.CreateBlogRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			bindError(ctx, err)
			return
		}
		blog, status, err := c.Blogs.Create(ctx.Request.Context(), &body)
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		respond(ctx, status, blog)
	}

	g.
		POST("/blogs", create).
		POST("/blogs/add", create).
		DELETE("/blogs/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				bindError(ctx, err)
				return
			}
			status, err := c.Blogs.Delete(ctx.Request.Context(), params.ID)
			if err != nil {
				respondError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Report deleted"})
		})
	return g
}
