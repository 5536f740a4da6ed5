package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"studyhub/config"
	"studyhub/internal/api/handler"
	"studyhub/internal/api/router"
	"studyhub/internal/repository"
	"studyhub/internal/service"
	"studyhub/pkg/database"
	"studyhub/pkg/jwt"
	applogger "studyhub/pkg/logger"
	"studyhub/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "配置文件路径，留空时查找 ./config/config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("服务异常退出", zap.Error(err))
		_ = applogger.Sync(logger)
		os.Exit(1)
	}
	_ = applogger.Sync(logger)
}

// run 装配依赖并阻塞到 ctx 取消，随后优雅关闭
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("签到服务启动中",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Attendance.Timezone),
		zap.Duration("check_in_grace", cfg.Attendance.CheckInGrace),
		zap.Bool("allow_body_checker_id", cfg.Attendance.AllowBodyCheckerID),
	)

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDatabase(db, logger)

	rdb := openRedis(cfg, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	// Repository → Service → Handler → Router
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := service.NewService(cfg, repository.NewRepository(db), jwtMgr, rdb, logger)
	engine := router.Setup(cfg, handler.NewHandler(cfg, svc), jwtMgr, rdb, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// 导出 xlsx 需要较长写出时间
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP 服务器异常: %w", err)
	case <-ctx.Done():
		logger.Info("收到关闭信号，开始优雅关闭")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务器关闭异常: %w", err)
	}

	logger.Info("服务器已关闭")
	return nil
}

// openDatabase 连接 PostgreSQL 并执行嵌入的迁移
func openDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	logger.Info("数据库就绪", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))
	return db, nil
}

func closeDatabase(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}
}

// openRedis 连接失败时返回 nil，服务降级运行：
// 排行直接读库，签到不限流，登出不写黑名单
func openRedis(cfg *config.Config, logger *zap.Logger) *redis.Client {
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 不可用，降级运行", zap.Error(err))
		return nil
	}
	return rdb
}
