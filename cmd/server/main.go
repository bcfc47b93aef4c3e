package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cartapp "github.com/storelink/backend/internal/application/cart"
	catalogapp "github.com/storelink/backend/internal/application/catalog"
	identityapp "github.com/storelink/backend/internal/application/identity"
	reportapp "github.com/storelink/backend/internal/application/report"
	salesapp "github.com/storelink/backend/internal/application/sales"
	storefrontapp "github.com/storelink/backend/internal/application/storefront"
	taxapp "github.com/storelink/backend/internal/application/tax"
	"github.com/storelink/backend/internal/infrastructure/auth"
	"github.com/storelink/backend/internal/infrastructure/cache"
	"github.com/storelink/backend/internal/infrastructure/config"
	"github.com/storelink/backend/internal/infrastructure/logger"
	"github.com/storelink/backend/internal/infrastructure/persistence"
	"github.com/storelink/backend/internal/infrastructure/printing"
	"github.com/storelink/backend/internal/infrastructure/storage"
	"github.com/storelink/backend/internal/infrastructure/telemetry"
	"github.com/storelink/backend/internal/interfaces/http/handler"
	"github.com/storelink/backend/internal/interfaces/http/middleware"
	"github.com/storelink/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	// Log export: the stdout logger keeps working as-is; an extra core
	// ships the same records to the collector.
	var logsProvider *telemetry.LoggerProvider
	if cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled {
		lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize log export", zap.Error(err))
		}
		logsProvider = lp

		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: lp,
			Level:          logger.ParseLevel(cfg.Log.Level),
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore,
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel))
	}
	defer log.Sync()

	log.Info("Starting StoreLink backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	// Tracing
	var tracerProvider *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		tracerProvider = tp
	}

	// Database
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:  true,
			DBSystem: "postgresql",
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Metrics: settlement counters plus periodic catalog health gauges
	var meterProvider *telemetry.MeterProvider
	var commerceMetrics *telemetry.CommerceMetrics
	if cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled {
		mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
			Enabled:           true,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ExportInterval:    cfg.Telemetry.MetricsExportInterval,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		meterProvider = mp

		cm, err := telemetry.NewCommerceMetrics(telemetry.CommerceMetricsConfig{
			Meter:          mp.Meter("storelink/commerce"),
			Logger:         log,
			HealthProvider: telemetry.NewGormCatalogHealthProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize commerce metrics", zap.Error(err))
		}
		cm.StartPeriodicCollection(context.Background(), telemetry.NewGormStoreProvider(db.DB), 0)
		commerceMetrics = cm
	}

	// Redis: shared by the token blacklist and readiness checks
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	blacklist := auth.NewRedisTokenBlacklistWithClient(redisClient)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	reportRepo := persistence.NewGormSalesReportRepository(db.DB)
	periodRepo := persistence.NewGormTaxPeriodRepository(db.DB)
	identityTxScope := persistence.NewGormIdentityTransactionScope(db.DB)
	salesTxScope := persistence.NewGormSalesTransactionScope(db.DB)

	// Product image storage (optional)
	var imageService *catalogapp.ImageService
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ImageStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiry(cfg.Storage.PresignExpiry))
		if err != nil {
			log.Fatal("Failed to initialize image storage", zap.Error(err))
		}
		imageService = catalogapp.NewImageService(productRepo, s3Storage)
	}

	// Storefront cache (optional, falls back to direct reads)
	var catalogCache storefrontapp.CatalogCache
	if cfg.Cache.Enabled {
		cacheFactory := cache.NewCatalogCacheFactory(cfg.Redis, cache.WithLogger(log))
		catalogCache, err = cacheFactory.CreateCache()
		if err != nil {
			log.Fatal("Failed to initialize storefront cache", zap.Error(err))
		}
	}

	// Receipt rendering (optional)
	var receiptRenderer salesapp.ReceiptRenderer
	if cfg.Receipt.Enabled {
		chromeRenderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Receipt.RenderTimeout,
			NoSandbox:      true,
			Logger:         log,
		})
		if err != nil {
			log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
		}
		defer chromeRenderer.Close()

		rr, err := printing.NewReceiptRenderer(chromeRenderer,
			printing.WithReceiptLogger(log),
			printing.WithReceiptTimeout(cfg.Receipt.RenderTimeout))
		if err != nil {
			log.Fatal("Failed to initialize receipt renderer", zap.Error(err))
		}
		receiptRenderer = rr
	}

	// Application services
	authService := identityapp.NewAuthService(userRepo, storeRepo, identityTxScope,
		jwtService, blacklist, identityapp.AuthServiceConfig{
			MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
			LockDuration:     cfg.Auth.LockoutDuration,
			PublicHost:       cfg.App.PublicHost,
		}, log)
	staffService := identityapp.NewStaffService(userRepo, log)
	storeService := identityapp.NewStoreService(storeRepo, cfg.App.PublicHost, log)

	storefrontOpts := []storefrontapp.StorefrontServiceOption{
		storefrontapp.WithCacheTTL(cfg.Cache.StorefrontTTL),
	}
	if imageService != nil {
		storefrontOpts = append(storefrontOpts, storefrontapp.WithImageResolver(imageService))
	}
	storefrontService := storefrontapp.NewStorefrontService(storeRepo, productRepo,
		catalogCache, log, storefrontOpts...)

	productService := catalogapp.NewProductService(productRepo, storefrontService, log)
	cartService := cartapp.NewCartService(cartRepo, productRepo, log)
	var settlementOpts []salesapp.SettlementServiceOption
	if commerceMetrics != nil {
		settlementOpts = append(settlementOpts, salesapp.WithSettlementMetrics(commerceMetrics))
	}
	settlementService := salesapp.NewSettlementService(storeRepo, salesTxScope, log, settlementOpts...)
	saleService := salesapp.NewSaleService(saleRepo, storeRepo, receiptRenderer, log)
	reportService := reportapp.NewReportService(reportRepo, log)
	taxPeriodService := taxapp.NewPeriodService(periodRepo, reportRepo, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	storeHandler := handler.NewStoreHandler(storeService)
	staffHandler := handler.NewStaffHandler(staffService)
	productHandler := handler.NewProductHandler(productService, imageService)
	cartHandler := handler.NewCartHandler(cartService)
	publicHandler := handler.NewPublicHandler(storefrontService, settlementService, userRepo)
	saleHandler := handler.NewSaleHandler(settlementService, saleService)
	reportHandler := handler.NewReportHandler(reportService)
	taxPeriodHandler := handler.NewTaxPeriodHandler(taxPeriodService)
	systemHandler := handler.NewSystemHandler(db.DB, redisClient)

	// HTTP engine
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// Protected routes
	authMW := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	optionalAuthMW := middleware.OptionalJWTAuthMiddleware(jwtService)

	var authLimitMW gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authLimitMW = middleware.RateLimit(authLimiter)
	} else {
		authLimitMW = func(c *gin.Context) { c.Next() }
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	authRoutes := router.NewDomainGroup("/auth")
	authRoutes.POST("/login", authLimitMW, authHandler.Login)
	authRoutes.POST("/register", authLimitMW, authHandler.RegisterCustomer)
	authRoutes.POST("/register-business", authLimitMW, authHandler.RegisterBusiness)
	authRoutes.POST("/refresh", authLimitMW, authHandler.Refresh)
	authRoutes.POST("/logout", authMW, authHandler.Logout)
	authRoutes.GET("/me", authMW, authHandler.Me)
	authRoutes.PUT("/password", authMW, authHandler.ChangePassword)

	publicRoutes := router.NewDomainGroup("/public")
	publicRoutes.GET("/store/:slug", publicHandler.Storefront)
	publicRoutes.POST("/store/:slug/checkout", optionalAuthMW, publicHandler.Checkout)
	publicRoutes.POST("/store/:slug/checkout-with-account", authLimitMW, publicHandler.CheckoutWithAccount)

	storeRoutes := router.NewDomainGroup("/store")
	storeRoutes.Use(authMW, middleware.RequireStaff())
	storeRoutes.GET("", storeHandler.Get)
	storeRoutes.PUT("", middleware.RequireAction(middleware.ActionStoreManage), storeHandler.Update)
	storeRoutes.POST("/deactivate", middleware.RequireAction(middleware.ActionStoreManage), storeHandler.Deactivate)
	storeRoutes.POST("/activate", middleware.RequireAction(middleware.ActionStoreManage), storeHandler.Activate)

	staffRoutes := router.NewDomainGroup("/staff")
	staffRoutes.Use(authMW, middleware.RequireStaff(), middleware.RequireAction(middleware.ActionStaffManage))
	staffRoutes.POST("", staffHandler.Create)
	staffRoutes.GET("", staffHandler.List)
	staffRoutes.POST("/:id/deactivate", staffHandler.Deactivate)
	staffRoutes.POST("/:id/reactivate", staffHandler.Reactivate)
	staffRoutes.PUT("/:id/role", staffHandler.ChangeRole)

	productRoutes := router.NewDomainGroup("/products")
	productRoutes.Use(authMW, middleware.RequireStaff())
	productRoutes.POST("", middleware.RequireAction(middleware.ActionProductsWrite), productHandler.Create)
	productRoutes.GET("", middleware.RequireAction(middleware.ActionProductsRead), productHandler.List)
	productRoutes.GET("/categories", middleware.RequireAction(middleware.ActionProductsRead), productHandler.Categories)
	productRoutes.GET("/low-stock", middleware.RequireAction(middleware.ActionProductsRead), productHandler.LowStock)
	productRoutes.GET("/:id", middleware.RequireAction(middleware.ActionProductsRead), productHandler.Get)
	productRoutes.PUT("/:id", middleware.RequireAction(middleware.ActionProductsWrite), productHandler.Update)
	productRoutes.DELETE("/:id", middleware.RequireAction(middleware.ActionProductsWrite), productHandler.Delete)
	productRoutes.POST("/:id/stock", middleware.RequireAction(middleware.ActionStockAdjust), productHandler.AdjustStock)
	productRoutes.POST("/:id/activate", middleware.RequireAction(middleware.ActionProductsWrite), productHandler.Activate)
	productRoutes.POST("/:id/deactivate", middleware.RequireAction(middleware.ActionProductsWrite), productHandler.Deactivate)
	productRoutes.POST("/:id/image/upload", middleware.RequireAction(middleware.ActionProductsWrite), productHandler.InitiateImageUpload)
	productRoutes.POST("/:id/image/confirm", middleware.RequireAction(middleware.ActionProductsWrite), productHandler.ConfirmImageUpload)
	productRoutes.DELETE("/:id/image", middleware.RequireAction(middleware.ActionProductsWrite), productHandler.RemoveImage)

	cartRoutes := router.NewDomainGroup("/cart")
	cartRoutes.Use(authMW, middleware.RequireCustomer())
	cartRoutes.GET("", cartHandler.Get)
	cartRoutes.PUT("", cartHandler.Replace)
	cartRoutes.DELETE("", cartHandler.Clear)

	saleRoutes := router.NewDomainGroup("/sales")
	saleRoutes.Use(authMW, middleware.RequireStaff())
	saleRoutes.POST("", middleware.RequireAction(middleware.ActionSalesCreate), saleHandler.CreatePOSSale)
	saleRoutes.GET("", middleware.RequireAction(middleware.ActionSalesRead), saleHandler.List)
	saleRoutes.GET("/:id", middleware.RequireAction(middleware.ActionSalesRead), saleHandler.Get)
	saleRoutes.POST("/:id/delivery", middleware.RequireAction(middleware.ActionDeliveryUpdate), saleHandler.UpdateDelivery)
	saleRoutes.GET("/:id/receipt", middleware.RequireAction(middleware.ActionSalesRead), saleHandler.Receipt)

	dashboardRoutes := router.NewDomainGroup("/dashboard")
	dashboardRoutes.Use(authMW, middleware.RequireStaff(), middleware.RequireAction(middleware.ActionReportsRead))
	dashboardRoutes.GET("/stats", reportHandler.DashboardStats)

	analyticsRoutes := router.NewDomainGroup("/analytics")
	analyticsRoutes.Use(authMW, middleware.RequireStaff(), middleware.RequireAction(middleware.ActionReportsRead))
	analyticsRoutes.GET("", reportHandler.Analytics)

	taxRoutes := router.NewDomainGroup("/tax-periods")
	taxRoutes.Use(authMW, middleware.RequireStaff())
	taxRoutes.POST("", middleware.RequireAction(middleware.ActionTaxManage), taxPeriodHandler.Create)
	taxRoutes.GET("", middleware.RequireAction(middleware.ActionTaxRead), taxPeriodHandler.List)
	taxRoutes.GET("/:id", middleware.RequireAction(middleware.ActionTaxRead), taxPeriodHandler.Get)
	taxRoutes.PUT("/:id", middleware.RequireAction(middleware.ActionTaxManage), taxPeriodHandler.Update)
	taxRoutes.DELETE("/:id", middleware.RequireAction(middleware.ActionTaxManage), taxPeriodHandler.Delete)
	taxRoutes.POST("/:id/close", middleware.RequireAction(middleware.ActionTaxManage), taxPeriodHandler.Close)
	taxRoutes.GET("/:id/report", middleware.RequireAction(middleware.ActionTaxRead), taxPeriodHandler.Report)

	systemRoutes := router.NewDomainGroup("/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(authRoutes).
		Register(publicRoutes).
		Register(storeRoutes).
		Register(staffRoutes).
		Register(productRoutes).
		Register(cartRoutes).
		Register(saleRoutes).
		Register(dashboardRoutes).
		Register(analyticsRoutes).
		Register(taxRoutes).
		Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if commerceMetrics != nil {
		commerceMetrics.Stop()
	}
	if meterProvider != nil {
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Warn("Meter provider shutdown failed", zap.Error(err))
		}
	}
	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Warn("Tracer provider shutdown failed", zap.Error(err))
		}
	}
	if logsProvider != nil {
		if err := logsProvider.Shutdown(ctx); err != nil {
			log.Warn("Logger provider shutdown failed", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
