package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carelink-alert/internal/config"
	"carelink-alert/internal/evaluator"
	"carelink-alert/internal/httpapi"
	"carelink-alert/internal/interpreter"
	"carelink-alert/internal/notifier"
	"carelink-alert/internal/presence"
	"carelink-alert/internal/repository"
	"carelink-alert/internal/service"
	"carelink-alert/internal/stream"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. 初始化日志
	logger, err := initLogger(cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 3. 连接数据库
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdle)
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	// 4. 连接 Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Fatal("Failed to ping redis", zap.Error(err))
	}

	// 5. 创建仓库
	profilesRepo := repository.NewProfilesRepository(db, logger)
	readingsRepo := repository.NewReadingsRepository(db, logger)
	settingsRepo := repository.NewAlertSettingsRepository(db, logger)
	alertsRepo := repository.NewEmergencyAlertsRepository(db, logger)

	// 6. 创建消息解析器（AI 未配置时只走规则层）
	var fallback interpreter.SemanticFallback
	if cfg.AI.Enabled {
		fallback = interpreter.NewAIFallback(
			cfg.AI.BaseURL,
			cfg.AI.APIKey,
			cfg.AI.Model,
			time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
			logger,
		)
		logger.Info("AI fallback enabled", zap.String("model", cfg.AI.Model))
	} else {
		logger.Info("AI fallback disabled, rule interpreter only")
	}
	msgInterpreter := interpreter.NewInterpreter(interpreter.NewRuleInterpreter(), fallback, logger)

	// 7. 创建评估器（幂等门 + 下游报警流）
	deduper := evaluator.NewRedisDeduper(redisClient, cfg.Alert.DedupKeyPrefix, cfg.Alert.DedupBucketMinutes)
	alertStream := stream.NewRedisAlertStream(redisClient, cfg.Alert.StreamName, logger)
	eval := evaluator.NewEvaluator(alertsRepo, deduper, alertStream, logger)

	// 8. 创建通知链路
	chatClient := notifier.NewChatClient(
		cfg.Chat.BaseURL,
		cfg.Chat.AccountSID,
		cfg.Chat.AuthToken,
		cfg.Chat.FromAddress,
		logger,
	)
	fanout := notifier.NewFanout(profilesRepo, chatClient, logger)
	hub := presence.NewHub(logger)
	defer hub.Shutdown()

	// 9. 创建服务层
	resolver := service.NewReadingResolver(readingsRepo, logger)
	pipeline := service.NewIngestionPipeline(profilesRepo, settingsRepo, eval, fanout, hub, logger)
	chatService := service.NewChatService(profilesRepo, readingsRepo, msgInterpreter, resolver, pipeline, logger)
	alertService := service.NewAlertService(alertsRepo, profilesRepo, settingsRepo, fanout, hub, logger)
	settingsService := service.NewSettingsService(settingsRepo, logger)

	// 10. 注册路由
	router := httpapi.NewRouter(logger)
	router.RegisterWebhookRoutes(httpapi.NewWebhookHandler(chatService, logger))
	router.RegisterReadingRoutes(httpapi.NewReadingsHandler(resolver, pipeline, logger))
	alertsHandler := httpapi.NewAlertsHandler(alertService, logger)
	router.RegisterProfileRoutes(httpapi.NewSettingsHandler(settingsService, logger), alertsHandler)
	router.RegisterAlertRoutes(alertsHandler)
	router.RegisterHealthRoute()
	router.Handle("/ws", presence.ServeWS(hub, logger))
	router.HandleHandler("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// 11. 启动 HTTP 服务
	serverErrChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	// 12. 等待信号（优雅关闭）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case err := <-serverErrChan:
		logger.Fatal("HTTP server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("carelink-alert stopped")
}

// initLogger 初始化日志
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Log.Format == "json" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}
