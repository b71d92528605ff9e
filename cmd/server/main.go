package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/parvatguard/backend/internal/config"
	"github.com/parvatguard/backend/internal/database"
	"github.com/parvatguard/backend/internal/handlers"
	"github.com/parvatguard/backend/internal/middleware"
	"github.com/parvatguard/backend/internal/services"
	"github.com/parvatguard/backend/internal/utils"
	"github.com/parvatguard/backend/pkg/jwt"
	"github.com/parvatguard/backend/pkg/sms"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting ParvatGuard Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize services and repositories
	jwtService := jwt.NewService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	userRepository := database.NewUserRepository(db)
	contactRepository := database.NewContactRepository(db)
	tripRepository := database.NewTripRepository(db)
	tripPackRepository := database.NewTripPackRepository(db)
	alertRepository := database.NewAlertRepository(db)
	userTripRepository := database.NewUserTripRepository(db)
	rateLimitRepository := database.NewRateLimitRepository(db)

	// Initialize SMS gateway (Twilio). Without credentials the alert flow
	// still logs alerts, it just never attempts delivery.
	var smsGateway sms.Gateway
	if cfg.SMS.Configured() {
		logger.Info("Initializing Twilio SMS gateway...")
		smsGateway = sms.NewTwilioGateway(sms.TwilioConfig{
			APIURL:     cfg.SMS.APIURL,
			AccountSID: cfg.SMS.AccountSID,
			AuthToken:  cfg.SMS.AuthToken,
			FromNumber: cfg.SMS.FromNumber,
		})
		logger.Info("Twilio SMS gateway initialized")
	} else {
		logger.Info("SMS relay disabled (no Twilio credentials configured)")
	}

	alertRelayService := services.NewAlertRelayService(
		userRepository,
		contactRepository,
		alertRepository,
		smsGateway,
		logger,
	)

	logger.Info("Services initialized")

	// Initialize handlers
	environment := cfg.Server.Environment
	authHandler := handlers.NewAuthHandler(jwtService, userRepository, logger, environment)
	profileHandler := handlers.NewProfileHandler(userRepository, logger, environment)
	contactHandler := handlers.NewContactHandler(contactRepository, logger, environment)
	tripHandler := handlers.NewTripHandler(tripRepository, tripPackRepository, logger, environment)
	tripPlannerHandler := handlers.NewTripPlannerHandler(userTripRepository, cfg.Map, logger, environment)
	alertHandler := handlers.NewAlertHandler(alertRepository, alertRelayService, logger, environment)
	mapHandler := handlers.NewMapHandler(cfg.Map, logger, environment)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Purge stale rate limit rows in the background
	cleanupStop := make(chan struct{})
	middleware.StartRateLimitCleanup(rateLimitRepository, logger, time.Hour, cleanupStop)

	// API routes
	api := router.Group("/api")
	api.Use(middleware.RateLimiter(rateLimitRepository, logger, middleware.APILimitRule()))
	{
		// Authentication routes (public, tighter limit)
		auth := api.Group("/auth")
		auth.Use(middleware.RateLimiter(rateLimitRepository, logger, middleware.AuthLimitRule()))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// Profile and emergency contact routes (protected)
		profile := api.Group("/profile")
		profile.Use(middleware.AuthMiddleware(jwtService))
		{
			profile.GET("", profileHandler.GetProfile)
			profile.PUT("", profileHandler.UpdateProfile)

			profile.GET("/contact", contactHandler.GetContacts)
			profile.POST("/contact", contactHandler.CreateContact)
			profile.PUT("/contact/:id", contactHandler.UpdateContact)
			profile.DELETE("/contact/:id", contactHandler.DeleteContact)
		}

		// Trip catalog routes (public)
		trips := api.Group("/trips")
		{
			trips.GET("", tripHandler.GetTrips)
			trips.GET("/:id", tripHandler.GetTripByID)
			trips.GET("/:id/offline-pack", tripHandler.GetTripOfflinePack)
		}

		// Trip planner routes; the routing proxy is public, saving and
		// listing planned routes require a token
		api.POST("/trip-planner/route", tripPlannerHandler.GetRoute)

		tripPlanner := api.Group("/trip-planner")
		tripPlanner.Use(middleware.AuthMiddleware(jwtService))
		{
			tripPlanner.POST("/create", tripPlannerHandler.CreateUserTrip)
			tripPlanner.GET("/user/:userId", tripPlannerHandler.GetUserTrips)
		}

		// Alert routes (protected, per-user burst limit)
		alert := api.Group("/alert")
		alert.Use(middleware.AuthMiddleware(jwtService))
		alert.Use(middleware.RateLimiter(rateLimitRepository, logger, middleware.AlertLimitRule()))
		{
			alert.POST("/log", alertHandler.LogAlert)
			alert.GET("/history", alertHandler.GetAlertHistory)
		}

		// Map proxy routes (public)
		mapRoutes := api.Group("/map")
		{
			mapRoutes.GET("/search", mapHandler.Search)
			mapRoutes.GET("/tiles/:z/:x/:y", mapHandler.Tile)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	close(cleanupStop)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		client := utils.ParseUserAgent(c.Request.UserAgent())

		fields := logrus.Fields{
			"status":      c.Writer.Status(),
			"method":      c.Request.Method,
			"path":        path,
			"query":       query,
			"ip":          c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
			"device_type": client.DeviceType,
			"platform":    client.Platform,
			"os":          client.OS,
		}
		if client.IsBot {
			fields["is_bot"] = true
		}

		if authUser, ok := middleware.GetAuthUser(c); ok {
			fields["user_id"] = authUser.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
