package main

import (
	"ddtours/src/controllers"
	"ddtours/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func adminLoginHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	g.POST("/admin/login", func(ctx *gin.Context) {
		var body types.AdminLoginRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			bindError(ctx, err)
			return
		}
		session, status, err := c.Admin.Login(ctx.Request.Context(), &body)
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		ctx.JSON(status, gin.H{
			"success":    true,
			"message":    session.Message,
			"token":      session.Token,
			"adminEmail": session.AdminEmail,
		})
	})
	return g
}

func adminHandlers(g *gin.RouterGroup, c *controllers.Controllers) *gin.RouterGroup {
	g.POST("/admin/reconcile-ratings", func(ctx *gin.Context) {
		trips, status, err := c.Reviews.ReconcileAll(ctx.Request.Context())
		if err != nil {
			respondError(ctx, status, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true, "trips": trips})
	})
	return g
}
