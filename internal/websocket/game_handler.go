package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Joey1399/byte-world-ai/internal/config"
	"github.com/Joey1399/byte-world-ai/internal/game"
)

// GameHandler 游戏WebSocket处理器
// 一方面把回合载荷推给会话订阅者，另一方面接收客户端经WebSocket提交的命令。
type GameHandler struct {
	hub            *Hub
	sessionManager *game.SessionManager
	upgrader       websocket.Upgrader
	logger         *zap.Logger
}

// commandRequest 客户端经WebSocket提交的命令
type commandRequest struct {
	Command string `json:"command"`
}

// NewGameHandler 创建游戏WebSocket处理器
func NewGameHandler(hub *Hub, sessionManager *game.SessionManager, wsCfg *config.WebSocketConfig, logger *zap.Logger) *GameHandler {
	h := &GameHandler{
		hub:            hub,
		sessionManager: sessionManager,
		logger:         logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    wsCfg.ReadBufferSize,
			WriteBufferSize:   wsCfg.WriteBufferSize,
			EnableCompression: wsCfg.EnableCompression,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	hub.SetMessageHandler(h)
	sessionManager.SetTurnSink(h)
	return h
}

// PushTurn 把一个回合的载荷推给会话的所有订阅客户端
func (h *GameHandler) PushTurn(sessionID string, payload *game.Payload) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("序列化回合载荷失败",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}

	msg := &Message{
		Type:      MessageTypeGamePayload,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	if err := h.hub.SendToSession(sessionID, msg); err != nil {
		// 会话没有在线订阅者不是错误，HTTP轮询客户端照常工作
		h.logger.Debug("回合推送无接收方",
			zap.String("session_id", sessionID))
	}
}

// HandleClientMessage 处理客户端消息
func (h *GameHandler) HandleClientMessage(client *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.logger.Error("解析WebSocket消息失败",
			zap.String("client_id", client.ID),
			zap.Error(err))
		client.sendError("消息格式错误")
		return
	}

	switch msg.Type {
	case MessageTypePong:
		h.logger.Debug("收到pong", zap.String("client_id", client.ID))

	case MessageTypeSubscribe:
		if msg.SessionID == "" {
			client.sendError("subscribe需要session_id")
			return
		}
		h.hub.RebindSession(client, msg.SessionID)
		h.logger.Debug("客户端订阅会话",
			zap.String("client_id", client.ID),
			zap.String("session_id", msg.SessionID))

	case MessageTypeGameCommand:
		h.handleGameCommand(client, &msg)

	default:
		h.logger.Warn("收到不支持的消息类型",
			zap.String("client_id", client.ID),
			zap.String("type", msg.Type))
		client.sendError("不支持的消息类型: " + msg.Type)
	}
}

// handleGameCommand 执行客户端提交的命令并回推载荷
func (h *GameHandler) handleGameCommand(client *Client, msg *Message) {
	if client.SessionID == "" {
		client.sendError("尚未订阅会话")
		return
	}

	var req commandRequest
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			client.sendError("命令格式错误")
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload, err := h.sessionManager.SubmitCommand(ctx, client.SessionID, req.Command)
	if err != nil {
		h.logger.Error("WebSocket命令执行失败",
			zap.String("session_id", client.SessionID),
			zap.String("command", req.Command),
			zap.Error(err))
		client.sendError("命令执行失败")
		return
	}

	// SubmitCommand已经通过TurnSink推送了载荷；这里再给发起方回一份，
	// 保证客户端未订阅时也能拿到结果。
	if err := client.SendMessage(MessageTypeGamePayload, payload); err != nil {
		h.logger.Warn("回推载荷失败",
			zap.String("client_id", client.ID),
			zap.Error(err))
	}
}

// ServeWS 处理WebSocket握手升级
// 会话ID取自query参数，缺省时连接保持未订阅状态，等subscribe消息。
func (h *GameHandler) ServeWS(c *gin.Context) {
	sessionID := c.Query("session_id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket升级失败", zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, sessionID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
