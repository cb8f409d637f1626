package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/loveall/loveall-backend/internal/config"
	"github.com/loveall/loveall-backend/internal/database"
	"github.com/loveall/loveall-backend/internal/handlers"
	"github.com/loveall/loveall-backend/internal/middleware"
	"github.com/loveall/loveall-backend/internal/services"
	"github.com/loveall/loveall-backend/internal/utils"
	"github.com/loveall/loveall-backend/pkg/jwt"
	"github.com/loveall/loveall-backend/pkg/mail"
	"github.com/loveall/loveall-backend/pkg/validator"
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

	logger.Info("Starting Loveall Loyalty Backend")
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

	// Make sure the upload directory exists before anything serves from it
	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		logger.Fatalf("Failed to create upload directory: %v", err)
	}

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	businessRepository := database.NewBusinessRepository(db)
	adminRepository := database.NewAdminRepository(db)
	storeRepository := database.NewStoreRepository(db)
	offerRepository := database.NewOfferRepository(db)
	qrCodeRepository := database.NewQrCodeRepository(db)
	transactionRepository := database.NewTransactionRepository(db)
	feedbackRepository := database.NewFeedbackRepository(db)
	charityRepository := database.NewCharityRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	otpService := services.NewOTPService(cfg.OTP.Length, cfg.OTP.ExpiryMinutes)
	passwordService := services.NewPasswordService()
	registrationService := services.NewRegistrationService()
	defer registrationService.Close()
	exportService := services.NewExportService()
	rateLimitService := services.NewRateLimitService(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
	)
	defer rateLimitService.Close()
	credValidator := validator.NewCredentialValidator()

	// Initialize mail gateway
	var mailer mail.Mailer
	if cfg.Mail.Mode == "production" {
		logger.Info("Initializing SMTP mailer in production mode...")
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	} else {
		logger.Info("Mail in dev mode, messages will be logged instead of sent")
		mailer = mail.NewLogMailer(logger)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		jwtService,
		otpService,
		passwordService,
		credValidator,
		userRepository,
		businessRepository,
		adminRepository,
		mailer,
		logger,
	)
	userHandler := handlers.NewUserHandler(
		storeRepository,
		offerRepository,
		qrCodeRepository,
		transactionRepository,
		feedbackRepository,
		userRepository,
		charityRepository,
		logger,
	)
	businessHandler := handlers.NewBusinessHandler(
		otpService,
		passwordService,
		registrationService,
		exportService,
		credValidator,
		businessRepository,
		userRepository,
		adminRepository,
		storeRepository,
		offerRepository,
		qrCodeRepository,
		transactionRepository,
		feedbackRepository,
		mailer,
		logger,
	)
	adminHandler := handlers.NewAdminHandler(
		passwordService,
		exportService,
		businessRepository,
		userRepository,
		storeRepository,
		offerRepository,
		transactionRepository,
		charityRepository,
		mailer,
		logger,
		cfg.Upload.Dir,
	)

	auth := middleware.NewAuth(jwtService, userRepository, businessRepository, adminRepository, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(middleware.RateLimit(rateLimitService))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     []string{cfg.CORS.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Uploaded files are served statically
	router.Static("/images", cfg.Upload.Dir)

	api := router.Group("/api")
	{
		auth_ := api.Group("/auth")
		{
			auth_.POST("/register", authHandler.Register)
			auth_.POST("/verify-otp", authHandler.VerifyOTP)
			auth_.POST("/login", authHandler.Login)
			auth_.POST("/send-otp", authHandler.SendOTP)
			auth_.POST("/forgot-password", authHandler.ForgotPassword)
			auth_.GET("/whoami", authHandler.WhoAmI)
		}

		user := api.Group("/user")
		{
			user.POST("/home", userHandler.Home)
			user.POST("/discount", userHandler.Discount)
			user.POST("/recommended-brands", userHandler.RecommendedBrands)
			user.POST("/charity", userHandler.Charity)

			authed := user.Group("", auth.RequireUser())
			{
				authed.POST("/redeem", userHandler.Redeem)
				authed.GET("/profile", userHandler.Profile)
				authed.PUT("/profile", userHandler.UpdateProfile)
				authed.POST("/card", userHandler.Card)
				authed.POST("/transaction", userHandler.Transactions)
				authed.POST("/feedback", userHandler.SubmitFeedback)
			}
		}

		business := api.Group("/business")
		{
			business.POST("/register", businessHandler.Register)
			business.POST("/verify-otp", businessHandler.VerifyOTP)
			business.POST("/change-password", businessHandler.ChangePassword)

			authed := business.Group("", auth.RequireBusiness())
			{
				authed.POST("/profile", businessHandler.Profile)
				authed.PUT("/update-profile", businessHandler.UpdateProfile)
				authed.GET("/stores", businessHandler.ListStores)
				authed.POST("/stores", businessHandler.AddStore)
				authed.GET("/stores/:store_id", businessHandler.StoreDetails)
				authed.PUT("/stores/:store_id", businessHandler.UpdateStore)
				authed.DELETE("/stores/:store_id", businessHandler.DeleteStore)
				authed.POST("/add-offer", businessHandler.AddOffer)
				authed.POST("/your-offers", businessHandler.YourOffers)
				authed.PUT("/edit-offer", businessHandler.EditOffer)
				authed.DELETE("/delete-offer/:offer_id", businessHandler.DeleteOffer)
				authed.GET("/qr-code/:offerId", businessHandler.GetQrCode)
				authed.DELETE("/qr-code/:offerId", businessHandler.DeleteQrCode)
				authed.POST("/transaction", businessHandler.Transactions)
				authed.GET("/transaction/export", businessHandler.ExportTransactionsCSV)
				authed.GET("/feedback", businessHandler.Feedback)
			}
		}

		admin := api.Group("/admin", auth.RequireAdmin())
		{
			admin.POST("/manual-verification", adminHandler.ManualVerification)
			admin.GET("/transactions", adminHandler.Transactions)
			admin.GET("/transactions/export", adminHandler.ExportTransactionsCSV)
			admin.GET("/transactions/invoices", adminHandler.DownloadInvoices)
			admin.GET("/business-accounts", adminHandler.BusinessAccounts)
			admin.GET("/business-accounts/:businessId", adminHandler.BusinessDetails)
			admin.GET("/user-accounts", adminHandler.UserAccounts)
			admin.GET("/user-accounts/:userId", adminHandler.UserDetails)
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/charity", adminHandler.CharityData)
			admin.POST("/charity/:type", adminHandler.AddCharityContent)
			admin.PUT("/charity/:type/:id", adminHandler.UpdateCharityItem)
			admin.DELETE("/charity/:type/:id", adminHandler.DeleteCharityItem)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
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
		device := utils.ParseUserAgent(utils.GetUserAgent(c))

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         utils.GetRealIP(c),
			"latency_ms": latency.Milliseconds(),
			"browser":    device.Browser,
			"os":         device.OS,
			"device":     device.DeviceType,
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.WithFields(fields).Error("Request failed")
		case c.Writer.Status() >= 400:
			logger.WithFields(fields).Warn("Request error")
		default:
			logger.WithFields(fields).Info("Request completed")
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
