package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Joey1399/byte-world-ai/internal/api"
	"github.com/Joey1399/byte-world-ai/internal/config"
	"github.com/Joey1399/byte-world-ai/internal/database"
	"github.com/Joey1399/byte-world-ai/internal/engine"
	"github.com/Joey1399/byte-world-ai/internal/errors"
	"github.com/Joey1399/byte-world-ai/internal/game"
	"github.com/Joey1399/byte-world-ai/internal/logger"
	"github.com/Joey1399/byte-world-ai/internal/repository"
	"github.com/Joey1399/byte-world-ai/internal/utils"
	"github.com/Joey1399/byte-world-ai/internal/websocket"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Server 服务器实例
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	// 服务组件
	sessionManager *game.SessionManager
	hub            *websocket.Hub
	wsHandler      *websocket.GameHandler
	router         *api.Router
	httpServer     *http.Server
	redisClient    *redis.Client

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func main() {
	// 命令行参数
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	// 打印启动信息
	printStartInfo(cfg)

	// 创建服务器实例
	server := NewServer(cfg)

	// 启动服务器
	if err := server.Start(); err != nil {
		logger.Fatal("服务器启动失败", zap.Error(err))
	}

	// 等待退出信号
	server.WaitForShutdown()

	// 优雅关闭
	if err := server.Shutdown(); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("服务器已安全关闭")
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		cfg:        cfg,
		logger:     logger.GetLogger(),
		shutdownCh: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("正在启动文字冒险游戏服务器...",
		zap.String("version", Version),
		zap.String("mode", s.cfg.Server.Mode),
	)

	// 初始化各个组件
	if err := s.initComponents(); err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "初始化组件失败")
	}

	// 启动各个服务
	if err := s.startServices(); err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "启动服务失败")
	}

	// 监听配置变化
	config.Watch(func(newCfg *config.Config) {
		s.logger.Info("配置已更新，正在重新加载...")
		s.reloadConfig(newCfg)
	})

	s.logger.Info("服务器启动成功",
		zap.String("http", fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)),
		zap.String("websocket", s.cfg.WebSocket.Path),
	)

	return nil
}

// initComponents 初始化组件
func (s *Server) initComponents() error {
	s.logger.Info("初始化组件...")

	needsDB := s.cfg.Game.SnapshotStore == "database" ||
		s.cfg.Game.SnapshotStore == "cached" ||
		s.cfg.Game.RecordTurns

	if needsDB {
		if err := s.initDatabase(); err != nil {
			return err
		}
	}

	if err := s.initRedis(); err != nil {
		return err
	}

	// 快照持久化
	persister, err := s.buildPersister()
	if err != nil {
		return err
	}

	// 回合审计与存档查询仓储
	var turnRepo repository.TurnRecordRepository
	var snapshotRepo repository.SnapshotRepository
	if database.GetDB() != nil {
		snapshotRepo = repository.NewSnapshotRepository(database.GetDB())
		if s.cfg.Game.RecordTurns {
			turnRepo = repository.NewTurnRecordRepository(database.GetDB())
		}
	}

	// 规则引擎与会话管理器
	ruleEngine := engine.NewEngine(logger.GetModuleLogger("game"))
	s.sessionManager = game.NewSessionManager(&game.SessionConfig{
		Logger:            logger.GetModuleLogger("game"),
		Engine:            ruleEngine,
		Persister:         persister,
		TurnRepo:          turnRepo,
		SnapshotRepo:      snapshotRepo,
		SessionTimeout:    s.cfg.Session.Timeout,
		MaxSessions:       s.cfg.Session.MaxSessions,
		MaxHints:          s.cfg.Game.MaxHints,
		SnapshotRetention: s.cfg.Session.SnapshotRetention,
	})

	// WebSocket
	s.hub = websocket.NewHub(logger.GetModuleLogger("websocket"))
	s.wsHandler = websocket.NewGameHandler(s.hub, s.sessionManager, &s.cfg.WebSocket, logger.GetModuleLogger("websocket"))

	// HTTP路由
	jwtManager := utils.NewJWTManager(
		s.cfg.Security.JWT.Secret,
		time.Duration(s.cfg.Security.JWT.ExpireHours)*time.Hour,
	)
	s.router = api.NewRouter(&api.RouterConfig{
		DB:             database.GetDB(),
		SessionManager: s.sessionManager,
		JWTManager:     jwtManager,
		TurnRepo:       turnRepo,
		SnapshotRepo:   snapshotRepo,
		WSHandler:      s.wsHandler,
		WSPath:         s.cfg.WebSocket.Path,
		Logger:         logger.GetModuleLogger("api"),
	})

	s.logger.Info("所有组件初始化完成")
	return nil
}

// initDatabase 初始化数据库
func (s *Server) initDatabase() error {
	s.logger.Info("初始化数据库...")

	if err := database.Init(&s.cfg.Database); err != nil {
		return errors.Wrap(err, errors.ErrDatabaseConnect, "初始化数据库连接失败")
	}

	if s.cfg.Database.AutoMigrate {
		s.logger.Info("执行数据库自动迁移...")
		if err := database.AutoMigrate(); err != nil {
			return errors.Wrap(err, errors.ErrDatabaseConnect, "数据库迁移失败")
		}
	}

	if !database.IsConnected() {
		return errors.New(errors.ErrDatabaseConnect, "数据库连接检查失败")
	}

	s.logger.Info("数据库初始化完成")
	return nil
}

// initRedis 初始化Redis连接（按需）
func (s *Server) initRedis() error {
	needsRedis := s.cfg.Redis.Enabled ||
		s.cfg.Game.SnapshotStore == "redis" ||
		s.cfg.Game.SnapshotStore == "cached"

	if !needsRedis {
		return nil
	}

	s.redisClient = redis.NewClient(&redis.Options{
		Addr:     s.cfg.Redis.Addr,
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCacheAccess, "Redis连接失败")
	}

	s.logger.Info("Redis连接成功", zap.String("addr", s.cfg.Redis.Addr))
	return nil
}

// buildPersister 按配置选择快照存储
func (s *Server) buildPersister() (game.SnapshotPersister, error) {
	switch s.cfg.Game.SnapshotStore {
	case "memory":
		return game.NewMemorySnapshotPersister(), nil

	case "database":
		if database.GetDB() == nil {
			return nil, errors.New(errors.ErrDatabaseConnect, "database快照存储需要数据库")
		}
		return game.NewDatabaseSnapshotPersister(database.GetDB()), nil

	case "redis":
		if s.redisClient == nil {
			return nil, errors.New(errors.ErrCacheAccess, "redis快照存储需要Redis连接")
		}
		return game.NewRedisSnapshotPersister(s.redisClient, s.cfg.Redis.TTL), nil

	case "cached":
		if database.GetDB() == nil || s.redisClient == nil {
			return nil, errors.New(errors.ErrDatabaseConnect, "cached快照存储需要数据库和Redis")
		}
		cache := game.NewRedisSnapshotPersister(s.redisClient, s.cfg.Redis.TTL)
		storage := game.NewDatabaseSnapshotPersister(database.GetDB())
		return game.NewCacheSnapshotPersister(cache, storage), nil

	default:
		return nil, errors.Newf(errors.ErrConfigValidate, "未知的快照存储类型: %s", s.cfg.Game.SnapshotStore)
	}
}

// startServices 启动服务
func (s *Server) startServices() error {
	s.logger.Info("启动服务...")

	// 启动WebSocket Hub
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.Run(s.ctx)
	}()

	// 启动会话清理任务
	s.sessionManager.StartCleanupTask(s.ctx, s.cfg.Session.CleanupInterval)

	// 启动HTTP服务器
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router.GetEngine(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("HTTP服务器监听", zap.String("addr", addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP服务器异常退出", zap.Error(err))
		}
	}()

	s.logger.Info("所有服务启动完成")
	return nil
}

// WaitForShutdown 等待关闭信号
func (s *Server) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)

	signal.Notify(sigCh,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)

	sig := <-sigCh
	s.logger.Info("收到退出信号", zap.String("signal", sig.String()))

	close(s.shutdownCh)
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	s.logger.Info("正在优雅关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	// 停止接收新请求
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP服务器关闭失败", zap.Error(err))
		}
	}

	// 取消主上下文，触发所有goroutine退出
	s.cancel()

	// 等待所有服务关闭
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("所有服务已正常关闭")
	case <-shutdownCtx.Done():
		s.logger.Warn("关闭超时，强制退出")
		return errors.New(errors.ErrTimeout, "关闭超时")
	}

	// 关闭各个组件
	if err := s.closeComponents(); err != nil {
		s.logger.Error("关闭组件失败", zap.Error(err))
		return err
	}

	// 同步日志
	if err := logger.Sync(); err != nil {
		fmt.Printf("同步日志失败: %v\n", err)
	}

	return nil
}

// closeComponents 关闭组件
func (s *Server) closeComponents() error {
	s.logger.Info("关闭组件...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("关闭Redis失败", zap.Error(err))
		}
	}

	if err := database.Close(); err != nil {
		s.logger.Error("关闭数据库失败", zap.Error(err))
	}

	s.logger.Info("所有组件已关闭")
	return nil
}

// reloadConfig 重新加载配置
func (s *Server) reloadConfig(newCfg *config.Config) {
	s.cfg = newCfg

	// 日志级别热更新
	logger.SetLevel(newCfg.Log.Level)

	s.logger.Info("配置重新加载完成")
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("文字冒险游戏服务器\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("文字冒险游戏服务器")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  byte-world-server [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  BYTE_WORLD_SERVER_MODE   运行环境 (development/production/test)")
	fmt.Println("  BYTE_WORLD_DATABASE_DSN  数据库DSN")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  byte-world-server -config=/path/to/config.yaml")
	fmt.Println("  byte-world-server -version")
}

// printStartInfo 打印启动信息
func printStartInfo(cfg *config.Config) {
	banner := `
╔═══════════════════════════════════════════════════════════════╗
║                                                               ║
║    ____        _        __        __         _     _         ║
║   | __ ) _   _| |_ ___  \ \      / /__  _ __| | __| |        ║
║   |  _ \| | | | __/ _ \  \ \ /\ / / _ \| '__| |/ _` + "`" + ` |        ║
║   | |_) | |_| | ||  __/   \ V  V / (_) | |  | | (_| |        ║
║   |____/ \__, |\__\___|    \_/\_/ \___/|_|  |_|\__,_|        ║
║          |___/                                               ║
║                                                               ║
║                 byte-world-ai :: text adventure               ║
║                                                               ║
╚═══════════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
	fmt.Printf("版本: %s | 模式: %s | PID: %d\n", Version, cfg.Server.Mode, os.Getpid())
	fmt.Println("═══════════════════════════════════════════════════════════════")
}
