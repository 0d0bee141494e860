package middlewares

import (
	"ddtours/src/lib"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func SecureHeaders() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		h := ctx.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		ctx.Next()
	}
}

func MaintenanceMode(enabled bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if enabled {
			log.Println("server is under maintenance")
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "server is under maintenance"})
			return
		}
		ctx.Next()
	}
}

func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set("requestId", id)
		ctx.Header("X-Request-Id", id)
		ctx.Next()
	}
}

// RateLimit allows max requests per client IP in each window. Counter errors
// let the request through.
func RateLimit(counter lib.RateCounter, max int, window time.Duration) gin.HandlerFunc {
	message := fmt.Sprintf("Too many requests from this IP, please try again after %d minutes", int(window.Minutes()))
	return func(ctx *gin.Context) {
		if counter == nil || max <= 0 {
			ctx.Next()
			return
		}
		key := fmt.Sprintf("ratelimit:%s", ctx.ClientIP())
		count, err := counter.Hit(ctx.Request.Context(), key, window)
		if err != nil {
			log.Printf("[RateLimit] Error counting request: %s\n", err.Error())
			ctx.Next()
			return
		}
		remaining := int64(max) - count
		if remaining < 0 {
			remaining = 0
		}
		ctx.Header("X-RateLimit-Limit", strconv.Itoa(max))
		ctx.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if count > int64(max) {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": message})
			return
		}
		ctx.Next()
	}
}

func Metrics(m *lib.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.
			WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
