package main

import (
	"ddtours/src/controllers"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const internalErrorMessage = "Something went wrong. Please try again later."

func respond(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, gin.H{"success": true, "data": data})
}

func respondList[T any](ctx *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": items, "count": len(items)})
}

// respondError writes the error body for a controller failure. Server errors
// only expose a generic message.
func respondError(ctx *gin.Context, status int, err error) {
	message := err.Error()
	if status >= http.StatusInternalServerError && !errors.Is(err, controllers.ErrPartialImageDelete) {
		log.Printf("[%s %s] Error: %s\n", ctx.Request.Method, ctx.FullPath(), err.Error())
		message = internalErrorMessage
	}
	ctx.JSON(status, gin.H{"success": false, "message": message})
}

// bindError reports a request that failed binding or validation.
func bindError(ctx *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldMessage(fe))
	}
	ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": strings.Join(fields, "; ")})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
	case "yearmonth":
		return fmt.Sprintf("%s must be a month in YYYY-MM format", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
