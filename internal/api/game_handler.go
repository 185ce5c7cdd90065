package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/Joey1399/byte-world-ai/internal/errors"
	"github.com/Joey1399/byte-world-ai/internal/game"
	"github.com/Joey1399/byte-world-ai/internal/middleware"
	"github.com/Joey1399/byte-world-ai/internal/repository"
	"github.com/Joey1399/byte-world-ai/internal/utils"
)

// GameHandler 文字冒险游戏处理器
type GameHandler struct {
	sessionManager *game.SessionManager
	jwtManager     *utils.JWTManager
	turnRepo       repository.TurnRecordRepository
	snapshotRepo   repository.SnapshotRepository
	logger         *zap.Logger
}

// NewGameHandler 创建游戏处理器
func NewGameHandler(sessionManager *game.SessionManager, jwtManager *utils.JWTManager, turnRepo repository.TurnRecordRepository, snapshotRepo repository.SnapshotRepository, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		sessionManager: sessionManager,
		jwtManager:     jwtManager,
		turnRepo:       turnRepo,
		snapshotRepo:   snapshotRepo,
		logger:         logger,
	}
}

// StartRequest 开始会话请求
// session_id可选：携带旧会话ID可恢复存档。
type StartRequest struct {
	SessionID string `json:"session_id"`
}

// StartResponse 开始会话响应
type StartResponse struct {
	OK        bool          `json:"ok"`
	SessionID string        `json:"session_id"`
	Token     string        `json:"token"`
	Payload   *game.Payload `json:"payload"`
}

// CommandRequest 提交命令请求
type CommandRequest struct {
	Command string `json:"command"`
}

// PayloadResponse 通用载荷响应
type PayloadResponse struct {
	OK      bool          `json:"ok"`
	Payload *game.Payload `json:"payload"`
}

// SessionStats 当前会话的存档概览
type SessionStats struct {
	QuestStage string    `json:"quest_stage"`
	TurnCount  int       `json:"turn_count"`
	GameOver   bool      `json:"game_over"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StatsResponse 存档运营统计响应
type StatsResponse struct {
	OK          bool             `json:"ok"`
	ActiveCount int64            `json:"active_count"`
	Stages      map[string]int64 `json:"stages"`
	Session     *SessionStats    `json:"session,omitempty"`
}

// HistoryResponse 回合历史响应
type HistoryResponse struct {
	OK       bool        `json:"ok"`
	Records  interface{} `json:"records"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// respondError 按错误码回写HTTP响应
// 快照相关错误额外带上线上协议错误码（invalid_json等）。
func (h *GameHandler) respondError(c *gin.Context, err error) {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		appErr = apperrors.Wrap(err, apperrors.ErrUnknown)
	}

	body := gin.H{
		"ok":      false,
		"message": appErr.Message,
	}
	if wire := apperrors.WireCode(appErr); wire != "" {
		body["error"] = wire
	}

	c.JSON(appErr.HTTPStatus(), body)
}

// Start 开始或恢复游戏会话
func (h *GameHandler) Start(c *gin.Context) {
	var req StartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数错误: " + err.Error()})
			return
		}
	}

	sessionID, payload, err := h.sessionManager.StartSession(c.Request.Context(), req.SessionID)
	if err != nil {
		h.logger.Error("开始会话失败",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		h.respondError(c, err)
		return
	}

	token, err := h.jwtManager.GenerateSessionToken(sessionID)
	if err != nil {
		h.logger.Error("签发会话令牌失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "签发会话令牌失败"})
		return
	}

	c.JSON(http.StatusOK, StartResponse{
		OK:        true,
		SessionID: sessionID,
		Token:     token,
		Payload:   payload,
	})
}

// Command 提交一条玩家命令
func (h *GameHandler) Command(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数错误: " + err.Error()})
		return
	}

	payload, err := h.sessionManager.SubmitCommand(c.Request.Context(), sessionID, req.Command)
	if err != nil {
		h.logger.Error("命令执行失败",
			zap.String("session_id", sessionID),
			zap.String("command", req.Command),
			zap.Error(err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PayloadResponse{OK: true, Payload: payload})
}

// Reset 重置会话为全新开局
func (h *GameHandler) Reset(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	payload, err := h.sessionManager.ResetSession(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("重置会话失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PayloadResponse{OK: true, Payload: payload})
}

// Export 导出当前会话快照
func (h *GameHandler) Export(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	doc, err := h.sessionManager.ExportSnapshot(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("导出快照失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "snapshot": doc})
}

// Import 导入快照覆盖当前会话
// 请求体就是快照文档本身，解码失败时带协议错误码返回，会话保持不变。
func (h *GameHandler) Import(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "读取请求体失败"})
		return
	}

	payload, err := h.sessionManager.ImportSnapshot(c.Request.Context(), sessionID, raw)
	if err != nil {
		h.logger.Warn("导入快照失败",
			zap.String("session_id", sessionID),
			zap.String("wire_code", apperrors.WireCode(err)),
			zap.Error(err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PayloadResponse{OK: true, Payload: payload})
}

// Stats 存档运营统计
// 活跃数与任务阶段分布是全局的；请求带有效会话令牌时附带该会话的存档概览。
func (h *GameHandler) Stats(c *gin.Context) {
	if h.snapshotRepo == nil {
		c.JSON(http.StatusOK, StatsResponse{OK: true, Stages: map[string]int64{}})
		return
	}

	activeHours := queryInt(c, "active_hours", 24)
	since := time.Now().Add(-time.Duration(activeHours) * time.Hour)

	activeCount, err := h.snapshotRepo.CountActive(c.Request.Context(), since)
	if err != nil {
		h.logger.Error("统计活跃存档失败", zap.Error(err))
		h.respondError(c, err)
		return
	}

	stages, err := h.snapshotRepo.StageDistribution(c.Request.Context())
	if err != nil {
		h.logger.Error("统计阶段分布失败", zap.Error(err))
		h.respondError(c, err)
		return
	}

	resp := StatsResponse{
		OK:          true,
		ActiveCount: activeCount,
		Stages:      stages,
	}

	if sessionID, ok := middleware.GetSessionID(c); ok {
		if row, findErr := h.snapshotRepo.FindBySessionID(c.Request.Context(), sessionID); findErr == nil {
			resp.Session = &SessionStats{
				QuestStage: row.QuestStage,
				TurnCount:  row.TurnCount,
				GameOver:   row.GameOver,
				UpdatedAt:  row.UpdatedAt,
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// History 分页查询会话的回合历史
func (h *GameHandler) History(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	if h.turnRepo == nil {
		c.JSON(http.StatusOK, HistoryResponse{OK: true, Records: []struct{}{}, Total: 0})
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	pagination := repository.NewPagination(page, pageSize)

	records, err := h.turnRepo.FindBySessionID(c.Request.Context(), sessionID, pagination)
	if err != nil {
		h.logger.Error("查询回合历史失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, HistoryResponse{
		OK:       true,
		Records:  records,
		Total:    pagination.Total,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	})
}
