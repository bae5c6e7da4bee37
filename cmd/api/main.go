package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"factcheck/factcheck-backend/internal/auth"
	"factcheck/factcheck-backend/internal/cache"
	"factcheck/factcheck-backend/internal/claimsearch"
	"factcheck/factcheck-backend/internal/config"
	"factcheck/factcheck-backend/internal/database"
	"factcheck/factcheck-backend/internal/extractor"
	"factcheck/factcheck-backend/internal/generative"
	"factcheck/factcheck-backend/internal/queries"
	"factcheck/factcheck-backend/internal/queries/retention"
	"factcheck/factcheck-backend/internal/verification"
)

const serviceName = "Hybrid Fact-Check API"

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		// The logger is configured from cfg, so fall back to a default one here
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		zap.NewExample().Fatal("Failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	ctx := context.Background()

	// Connect to database
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.DBName))
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := queries.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Backends
	var claims verification.ClaimSearcher
	if cfg.ClaimSearch.APIKey != "" {
		client, err := claimsearch.NewClient(ctx, claimsearch.Config{
			APIKey:       cfg.ClaimSearch.APIKey,
			Endpoint:     cfg.ClaimSearch.Endpoint,
			LanguageCode: cfg.ClaimSearch.LanguageCode,
			PageSize:     cfg.ClaimSearch.PageSize,
			Timeout:      cfg.ClaimSearch.Timeout,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create claim search client", zap.Error(err))
		}
		claims = client
	} else {
		logger.Warn("FACTCHECK_API_KEY not set, claim search disabled")
	}

	provider, err := generative.New(ctx, generative.Config{
		Provider: cfg.Generative.Provider,
		APIKey:   cfg.Generative.APIKey,
		Model:    cfg.Generative.Model,
		BaseURL:  cfg.Generative.BaseURL,
		Timeout:  cfg.Generative.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create generative provider", zap.Error(err))
	}
	var analyzer verification.Analyzer = provider

	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to configure redis", zap.Error(err))
		}
		defer rdb.Close()

		store := cache.NewStore(rdb, cfg.Redis.TTL, logger)
		if claims != nil {
			claims = cache.WrapClaimSearcher(claims, store)
		}
		analyzer = cache.WrapAnalyzer(analyzer, store)
		logger.Info("Backend response cache enabled", zap.Duration("ttl", cfg.Redis.TTL))
	}

	// Modules
	queriesRepo := queries.NewRepository(db)
	queriesService := queries.NewService(queriesRepo, logger)
	queriesHandler := queries.NewHandler(queriesService, logger)

	pages := extractor.New(extractor.Config{
		Timeout:   cfg.Extractor.Timeout,
		UserAgent: cfg.Extractor.UserAgent,
		MaxBytes:  cfg.Extractor.MaxBytes,
	}, nil, logger)

	selector := verification.NewModeSelector(selectorConfig(cfg.Verification))
	executor := verification.NewExecutor(claims, analyzer, logger)
	verificationService := verification.NewService(queriesRepo, pages, selector, executor, verification.ServiceConfig{
		StoredReasoningLimit: cfg.Verification.StoredReasoningLimit,
		ResponseTextLimit:    cfg.Verification.ResponseTextLimit,
	}, logger)
	verificationHandler := verification.NewHandler(verificationService, queriesService, logger)

	var retentionManager *retention.Manager
	if cfg.Retention.Enabled {
		retentionManager = retention.NewManager(queriesService, retention.Config{
			Schedule:   cfg.Retention.Schedule,
			MaxAgeDays: cfg.Retention.MaxAgeDays,
			RunTimeout: cfg.Retention.RunTimeout,
		}, logger)
		if err := retentionManager.Start(); err != nil {
			logger.Fatal("Failed to start retention scheduler", zap.Error(err))
		}
	}

	// Setup Router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": serviceName,
			"status":  "running",
			"modes":   []verification.Mode{verification.ModeAuto, verification.ModeClaimSearchFirst, verification.ModeGenerativeFirst, verification.ModeGenerativeOnly, verification.ModeClaimSearchOnly, verification.ModeCombined},
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})
	router.GET("/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":             serviceName,
			"claim_search":        claims != nil,
			"generative_provider": cfg.Generative.Provider,
			"cache":               cfg.Redis.URL != "",
			"retention_enabled":   cfg.Retention.Enabled,
		})
	})

	// Register Routes
	api := router.Group("/api/v1")
	{
		verificationHandler.RegisterRoutes(api)
		queriesHandler.RegisterRoutes(api)
	}
	admin := api.Group("/admin", auth.RequireAdmin(cfg.Security.JWTSecret, logger))
	{
		verificationHandler.RegisterAdminRoutes(admin)
		queriesHandler.RegisterAdminRoutes(admin)
	}

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if retentionManager != nil {
		retentionManager.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func selectorConfig(v config.VerificationConfig) verification.SelectorConfig {
	sc := verification.DefaultSelectorConfig()
	if len(v.QuestionPrefixes) > 0 {
		sc.QuestionPrefixes = v.QuestionPrefixes
	}
	if len(v.CopularOpeners) > 0 {
		sc.CopularOpeners = v.CopularOpeners
	}
	if len(v.ClaimSearchKeywords) > 0 {
		sc.ClaimSearchKeywords = v.ClaimSearchKeywords
	}
	if len(v.GenerativeKeywords) > 0 {
		sc.GenerativeKeywords = v.GenerativeKeywords
	}
	if v.LongTextWords > 0 {
		sc.LongTextWords = v.LongTextWords
	}
	if v.ShortTextWords > 0 {
		sc.ShortTextWords = v.ShortTextWords
	}
	return sc
}

func corsConfig(origins []string) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
