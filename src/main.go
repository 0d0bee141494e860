package main

import (
	"context"
	"ddtours/src/boot"
	"ddtours/src/config"
	"ddtours/src/middlewares"
	"ddtours/src/types"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"slices"
	"syscall"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	apiPrefix string = "/api/v1"
)

var isoDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	_, err := time.Parse(config.DATE_FORMAT, fl.Field().String())
	return err == nil
}

var yearMonthValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	_, err := time.Parse(config.MONTH_FORMAT, fl.Field().String())
	return err == nil
}

var bookingStatusValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	return types.BookingStatus(fl.Field().String()).Valid()
}

var paymentStatusValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	return types.PaymentStatus(fl.Field().String()).Valid()
}

var paymentMethodValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	return types.PaymentMethod(fl.Field().String()).Valid()
}

var tripStatusValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	return types.TripStatus(fl.Field().String()).Valid()
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("isodate", isoDateValidatorFunc)
		v.RegisterValidation("yearmonth", yearMonthValidatorFunc)
		v.RegisterValidation("bookingstatus", bookingStatusValidatorFunc)
		v.RegisterValidation("paymentstatus", paymentStatusValidatorFunc)
		v.RegisterValidation("paymentmethod", paymentMethodValidatorFunc)
		v.RegisterValidation("tripstatus", tripStatusValidatorFunc)
	}
}

// setupRouter only honours X-Forwarded-For from TRUSTED_PROXIES. With none
// configured the client IP is the socket peer.
func setupRouter(app *boot.App) *gin.Engine {
	router := gin.Default()
	if err := router.SetTrustedProxies(app.Config.TrustedProxies); err != nil {
		log.Printf("Invalid TRUSTED_PROXIES, ignoring forwarded headers: %s\n", err.Error())
		router.SetTrustedProxies(nil)
	}
	router.Use(middlewares.SecureHeaders(), middlewares.RequestID(), middlewares.Metrics(app.Metrics))
	return router
}

func systemHandlers(router *gin.Engine) {
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "DD Tours API is running"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// buildRouter attaches every middleware before any route so that all routes,
// the health check included, run the full chain.
func buildRouter(app *boot.App) *gin.Engine {
	router := setupRouter(app)
	router.Use(corsMiddleware(app.Config))
	router = maintenanceModeMiddleware(router, app.Config.MaintenanceMode)
	systemHandlers(router)
	registerRoutes(router, app)
	return router
}

func maintenanceModeMiddleware(g *gin.Engine, enabled bool) *gin.Engine {
	g.Use(middlewares.MaintenanceMode(enabled))
	return g
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	if cfg.IsLocal() {
		return cors.Default()
	}
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
	cc.AllowOriginFunc = func(origin string) bool {
		return slices.Contains(cfg.CORSOrigins, origin)
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func apiv1Group(g *gin.Engine, app *boot.App) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	apiv1.Use(middlewares.RateLimit(app.RateCounter, int(app.Config.RateLimitMax), app.Config.RateLimitWindow))
	return apiv1
}

func registerRoutes(router *gin.Engine, app *boot.App) {
	c := app.Controllers
	public := apiv1Group(router, app)
	tripHandlers(public, c)
	reviewHandlers(public, c)
	blogHandlers(public, c)
	adminLoginHandlers(public, c)

	authorized := public.Group("")
	authorized.Use(middlewares.Authenticate(app.UserAuth))
	{
		authorized = bookingHandlers(authorized, c)
		authorized = paymentHandlers(authorized, c)
		authorized = reviewSubmitHandlers(authorized, c)
		authorized = profileHandlers(authorized, c)
	}

	admin := public.Group("")
	admin.Use(middlewares.Authenticate(app.AdminAuth))
	{
		admin = adminHandlers(admin, c)
		admin = tripAdminHandlers(admin, c)
		admin = bookingAdminHandlers(admin, c)
		admin = blogAdminHandlers(admin, c)
		admin = userAdminHandlers(admin, c)
	}
}

func initLogger(cfg *config.Config) {
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		log.Printf("Could not create log directory: %s\n", err.Error())
		return
	}
	serverLogs := path.Join(cfg.LogDir, "server.log")
	apiLogs := path.Join(cfg.LogDir, "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}))
}

func main() {
	cfg := config.Load()
	initLogger(cfg)
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	boot.LoadSecrets(ctx, cfg)
	boot.DownloadSDKFileFromS3(ctx, cfg)

	app, err := boot.InitApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %s", err)
	}
	boot.InitScheduler(app)
	registerValidators()

	router := buildRouter(app)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	go func() {
		log.Printf("Server listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %s", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %s\n", err.Error())
	}
	boot.Shutdown(app)
}
