package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqttcommon "damage-assessment/common/mqtt"
	rediscommon "damage-assessment/common/redis"
	"damage-assessment/internal/config"
	"damage-assessment/internal/domain"
	"damage-assessment/internal/events"
	httpapi "damage-assessment/internal/http"
	"damage-assessment/internal/repository"
	"damage-assessment/internal/service"
	"damage-assessment/internal/store"

	logpkg "damage-assessment/common/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "damage-assessment")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	// 配置持久化：优先 Redis，不可用时回退到内存
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		c, err := rediscommon.Connect(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis enabled but connection failed, falling back to in-memory config store", zap.Error(err))
		} else {
			redisClient = c
		}
	}
	var kv store.KV = store.NewMemoryKV()
	if redisClient != nil {
		kv = store.NewRedisKV(redisClient)
	}
	configs := store.NewConfigStore(kv, cfg.Store.ConfigSlot, logger)
	bootstrapConfiguration(ctx, cfg, configs, logger)

	// 行存储：按地址 scheme 选择
	memory := repository.NewMemoryRowStore()
	demo := domain.DefaultConfiguration()
	demo.TableName = cfg.Store.DemoTable
	memory.SeedDemoJobs(demo)
	postgres := repository.NewPostgresRowStoreFactory(cfg.Database, logger)
	stores := repository.NewSchemeFactory(
		repository.NewRestRowStoreFactory(cfg.Store.Timeout, logger),
		postgres,
		memory,
	)

	var publishers events.Multi
	if cfg.Events.Enabled {
		if redisClient != nil {
			publishers = append(publishers, events.NewStreamPublisher(redisClient, cfg.Events.Stream, logger))
		} else {
			logger.Warn("Edit events enabled but Redis is unavailable")
		}
	}
	var mqttPublisher *mqttcommon.Publisher
	if cfg.MQTT.Enabled {
		if p, err := mqttcommon.Connect(cfg.MQTT.MQTTConfig, logger); err == nil {
			mqttPublisher = p
			publishers = append(publishers, events.NewMQTTPublisher(p, cfg.MQTT.Topic))
		} else {
			logger.Warn("MQTT enabled but connection failed", zap.Error(err))
		}
	}

	svc := service.NewAssessmentService(stores, publishers, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterConfigRoutes(httpapi.NewConfigHandler(configs, logger))
	router.RegisterAssessmentRoutes(httpapi.NewAssessmentHandler(svc, configs, logger))

	srv := httpapi.NewServer(cfg.HTTP.Addr, router, 5*time.Second, logger)

	// SIGINT/SIGTERM 取消 ctx，Run 内部完成优雅关闭
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(sigCtx); err != nil {
		logger.Error("HTTP server error", zap.Error(err))
	}
	logger.Info("Shutting down")

	if err := postgres.Close(); err != nil {
		logger.Warn("Failed to close postgres pools", zap.Error(err))
	}
	if mqttPublisher != nil {
		mqttPublisher.Disconnect()
	}
	_ = rediscommon.Close(redisClient)
}

// bootstrapConfiguration 槽位为空且设置了 STORE_URL 时写入初始配置
func bootstrapConfiguration(ctx context.Context, cfg *config.Config, configs *store.ConfigStore, logger *zap.Logger) {
	if cfg.Store.BootstrapURL == "" {
		return
	}
	_, saved, err := configs.Load(ctx)
	if err != nil {
		logger.Warn("Failed to read configuration slot", zap.Error(err))
		return
	}
	if saved {
		return
	}

	seed := domain.DefaultConfiguration()
	seed.URL = cfg.Store.BootstrapURL
	seed.APIKey = cfg.Store.BootstrapAPIKey
	seed.TableName = cfg.Store.BootstrapTable
	if err := configs.Save(ctx, seed); err != nil {
		logger.Warn("Failed to seed configuration", zap.Error(err))
	}
}
