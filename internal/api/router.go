package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Joey1399/byte-world-ai/internal/game"
	"github.com/Joey1399/byte-world-ai/internal/middleware"
	"github.com/Joey1399/byte-world-ai/internal/repository"
	"github.com/Joey1399/byte-world-ai/internal/utils"
	"github.com/Joey1399/byte-world-ai/internal/websocket"
)

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	gameHandler    *GameHandler
	wsHandler      *websocket.GameHandler
	authMiddleware *middleware.AuthMiddleware
	wsPath         string
	log            *zap.Logger
}

// RouterConfig 路由器依赖
type RouterConfig struct {
	DB             *gorm.DB
	SessionManager *game.SessionManager
	JWTManager     *utils.JWTManager
	TurnRepo       repository.TurnRecordRepository
	SnapshotRepo   repository.SnapshotRepository
	WSHandler      *websocket.GameHandler
	WSPath         string
	Logger         *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(cfg *RouterConfig) *Router {
	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	// 创建处理器与中间件
	gameHandler := NewGameHandler(cfg.SessionManager, cfg.JWTManager, cfg.TurnRepo, cfg.SnapshotRepo, cfg.Logger)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTManager)

	wsPath := cfg.WSPath
	if wsPath == "" {
		wsPath = "/ws/game"
	}

	router := &Router{
		engine:         engine,
		db:             cfg.DB,
		gameHandler:    gameHandler,
		wsHandler:      cfg.WSHandler,
		authMiddleware: authMiddleware,
		wsPath:         wsPath,
		log:            cfg.Logger,
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		gameGroup := v1.Group("/game")
		{
			// 开始/恢复会话不需要令牌，由它签发令牌
			gameGroup.POST("/start", r.gameHandler.Start)

			// 存档统计：令牌可选，带令牌时附带本会话概览
			gameGroup.GET("/stats", r.authMiddleware.OptionalSession(), r.gameHandler.Stats)

			// 其余游戏操作需要会话令牌
			authRequired := gameGroup.Group("")
			authRequired.Use(r.authMiddleware.RequireSession())
			{
				authRequired.POST("/command", r.gameHandler.Command)
				authRequired.POST("/reset", r.gameHandler.Reset)
				authRequired.GET("/export", r.gameHandler.Export)
				authRequired.POST("/import", r.gameHandler.Import)
				authRequired.GET("/history", r.gameHandler.History)
			}
		}
	}

	// WebSocket路由（握手时用query传session_id）
	if r.wsHandler != nil {
		r.engine.GET(r.wsPath, r.wsHandler.ServeWS)
	}

	// 静态文件服务
	r.engine.Static("/static", "./static")

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	if r.db != nil {
		sqlDB, err := r.db.DB()
		if err != nil {
			c.JSON(500, gin.H{
				"status":  "unhealthy",
				"message": "数据库连接失败",
			})
			return
		}

		if err := sqlDB.Ping(); err != nil {
			c.JSON(500, gin.H{
				"status":  "unhealthy",
				"message": "数据库ping失败",
			})
			return
		}
	}

	c.JSON(200, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// queryInt 读取整数query参数
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
