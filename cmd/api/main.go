package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mailhub/backend/internal/auth"
	jwtpkg "mailhub/backend/internal/auth/jwt"
	"mailhub/backend/internal/config"
	"mailhub/backend/internal/health"
	"mailhub/backend/internal/logger"
	"mailhub/backend/internal/monitoring"
	"mailhub/backend/internal/service"
	"mailhub/backend/internal/storage"
	"mailhub/backend/internal/storage/memory"
	"mailhub/backend/internal/storage/postgres"
	redisstorage "mailhub/backend/internal/storage/redis"
	sqlstorage "mailhub/backend/internal/storage/sql"
	httptransport "mailhub/backend/internal/transport/http"
)

// main 是邮件房后端 HTTP 服务的程序入口。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	logCfg := logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	}
	log, err := logger.NewLogger(logCfg)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()
	log.Info("starting mailhub API server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	store, closeStore, err := buildStore(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}
	if closeStore != nil {
		defer closeStore()
	}

	// 初始化监控指标
	metrics := monitoring.NewMetrics()

	// 健康检查器
	healthChecker := health.NewHealthChecker(store, log)

	// PostgreSQL 低层连接池（仅用于就绪检查）
	if cfg.Database.Type == "postgres" || cfg.Database.Type == "postgresql" {
		pgClient, err := postgres.NewClient(&cfg.Database, log)
		if err != nil {
			log.Warn("failed to initialize postgres health client", zap.Error(err))
		} else {
			defer pgClient.Close()
			healthChecker.AddDependency("postgres", pgClient)
		}
	}

	// Redis（JWT 黑名单）
	var blacklist auth.Blacklist
	if cfg.Redis.Enabled {
		redisClient, err := redisstorage.New(&cfg.Redis, log)
		if err != nil {
			log.Fatal("failed to initialize redis", zap.Error(err))
		}
		defer redisClient.Close()
		blacklist = redisstorage.NewBlacklist(redisClient)
		healthChecker.AddDependency("redis", redisClient)
		log.Info("redis token blacklist enabled", zap.String("address", cfg.Redis.Address))
	}

	// 初始化认证服务
	jwtManager := jwtpkg.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authService := auth.NewService(store, jwtManager, blacklist)

	log.Info("JWT configuration",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("access_expiry", cfg.JWT.AccessExpiry),
		zap.Duration("refresh_expiry", cfg.JWT.RefreshExpiry),
	)

	// 初始化服务层
	mailboxService := service.NewMailboxService(store, cfg)
	clientService := service.NewClientService(store, mailboxService, cfg, metrics, log)
	correspondenceService := service.NewCorrespondenceService(store, metrics)
	contractService := service.NewContractService(store, metrics)
	dashboardService := service.NewDashboardService(store)

	// 创建 HTTP 路由
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:                cfg,
		ClientService:         clientService,
		MailboxService:        mailboxService,
		CorrespondenceService: correspondenceService,
		ContractService:       contractService,
		DashboardService:      dashboardService,
		AuthService:           authService,
		HealthChecker:         healthChecker,
		Metrics:               metrics,
		Logger:                log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("API server listening", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server stopped cleanly")
	}
}

// buildStore 根据配置选择存储后端，返回存储实例及其关闭函数。
func buildStore(cfg *config.Config, log *zap.Logger) (storage.Store, func(), error) {
	dbType := cfg.Database.Type
	switch dbType {
	case "":
		log.Info("using memory storage")
		return memory.NewStore(), nil, nil

	case "mysql", "postgres", "postgresql":
		if dbType == "postgresql" {
			dbType = "postgres"
		}

		// database/sql 后端
		if cfg.Database.Engine == "sql" {
			store, err := sqlstorage.NewStore(
				dbType,
				cfg.Database.DSN,
				cfg.Database.MaxOpenConns,
				cfg.Database.MaxIdleConns,
				cfg.Database.ConnMaxLifetime,
			)
			if err != nil {
				return nil, nil, err
			}
			log.Info("using database/sql storage", zap.String("type", dbType))
			return store, func() {
				if err := store.Close(); err != nil {
					log.Warn("failed to close database", zap.Error(err))
				}
			}, nil
		}

		// GORM 后端（默认）
		var store *postgres.Store
		var err error
		if dbType == "mysql" {
			store, err = postgres.NewMySQLStore(cfg.Database.DSN)
		} else {
			store, err = postgres.NewStore(cfg.Database.DSN)
		}
		if err != nil {
			return nil, nil, err
		}
		log.Info("using gorm storage", zap.String("type", dbType))
		return store, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s (supported: mysql, postgres)", cfg.Database.Type)
	}
}
