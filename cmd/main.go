package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MatchSync/internal/adapter"
	"MatchSync/internal/api"
	"MatchSync/internal/config"
	"MatchSync/internal/interfaces"
	"MatchSync/internal/publisher"
	"MatchSync/internal/service"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// options 命令行参数
type options struct {
	ConfigDir string `short:"c" long:"config-dir" env:"MATCHSYNC_CONFIG_DIR" default:"./config" description:"config.yaml 所在目录"`
	Once      bool   `long:"once" description:"同步一次后退出，不启动HTTP服务"`
}

func parseOptions() *options {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		log.Fatalf("解析命令行参数失败: %v", err)
	}
	return &opts
}

// newLogger 按配置初始化日志；配置了文件时同时输出到 stdout 与滚动文件
func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	if cfg.File != "" {
		logger.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}))
	}
	return logger
}

func main() {
	// 1. 命令行参数
	opts := parseOptions()
	if opts == nil {
		return
	}

	// 2. 加载配置文件
	cfg, err := config.LoadConfig(opts.ConfigDir)
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}

	// 3. 初始化日志
	logrusLogger := newLogger(cfg.Log)
	logrusLogger.Info("配置文件加载成功")

	// 4. 输出：文件必选，数据库可选
	filePublisher := publisher.NewFilePublisher(cfg.Output.Dir, cfg.Output.FileName, cfg.Output.TempFileName, logrusLogger)
	publishers := []interfaces.Publisher{filePublisher}

	db, err := openDatabase(cfg.Database, logrusLogger)
	if err != nil {
		logrusLogger.Fatalf("初始化数据库失败: %v", err)
	}
	var dbPublisher *publisher.DBPublisher
	if db != nil {
		dbPublisher = publisher.NewDBPublisher(db, logrusLogger)
		publishers = append(publishers, dbPublisher)
	}

	// 5. 数据源与同步服务
	sources := adapter.NewSources(cfg, logrusLogger)
	syncService := service.NewSyncService(service.SyncOptions{
		Schedule:   sources.Migu,
		Nodes:      sources.Migu,
		Playlist:   sources.Playlist,
		Publishers: publishers,
		MatchDelay: cfg.Sync.MatchDelay,
		Tolerance:  cfg.Sync.TimeTolerance,
	}, logrusLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Once || cfg.Server.Port == 0 {
		res, err := syncService.RunAndPublish(ctx)
		printSummary(os.Stdout, res)
		if err != nil {
			logrusLogger.Fatalf("同步失败: %v", err)
		}
		return
	}

	// 6. 载入上次发布的快照，HTTP 接口在首次同步完成前也有数据可读
	restoreLatest(ctx, syncService, filePublisher, dbPublisher, logrusLogger)

	if cfg.Sync.RunOnStart {
		go func() {
			if _, err := syncService.RunAndPublish(ctx); err != nil {
				logrusLogger.WithError(err).Warn("启动同步发布失败")
			}
		}()
	}
	go service.NewScheduler(syncService, cfg.Sync.Interval, logrusLogger).Start(ctx)

	// 7. 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 注册ppof 方便调试和监测性能问题
	pprof.Register(r)
	logrusLogger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 8. 注册API路由
	matchHandler := api.NewMatchHandler(syncService, logrusLogger)
	r.GET("/api/matches", matchHandler.ListMatches)
	r.GET("/api/matches/:mgdb_id", matchHandler.GetMatch)

	syncHandler := api.NewSyncHandler(syncService, syncService, logrusLogger)
	r.POST("/sync", syncHandler.TriggerSync)
	r.GET("/healthz", syncHandler.Healthz)

	// 9. 启动服务（从配置读取端口），收到信号后优雅退出
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logrusLogger.Infof("服务启动成功，端口：%d", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logrusLogger.Info("收到退出信号，正在关闭服务")
	case err := <-serverErr:
		logrusLogger.Errorf("HTTP服务异常退出: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrusLogger.Errorf("关闭HTTP服务失败: %v", err)
	}
	logrusLogger.Info("服务已停止")
}

func restoreLatest(ctx context.Context, svc *service.SyncService, file *publisher.FilePublisher, db *publisher.DBPublisher, logger *logrus.Logger) {
	if snapshot, err := file.Load(); err == nil {
		if svc.Restore(snapshot) {
			logger.WithField("update_time", snapshot.UpdateTime).Info("已载入上次发布的快照文件")
			return
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.WithError(err).Warn("读取上次发布的快照文件失败")
	}

	if db == nil {
		return
	}
	snapshot, err := db.Load(ctx)
	if err != nil {
		logger.WithError(err).Debug("数据库中暂无可用快照")
		return
	}
	if svc.Restore(snapshot) {
		logger.WithField("update_time", snapshot.UpdateTime).Info("已从数据库载入上次发布的快照")
	}
}
