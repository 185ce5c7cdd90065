package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MessageHandler 客户端消息处理器
type MessageHandler interface {
	HandleClientMessage(client *Client, data []byte)
}

// Hub WebSocket连接管理中心
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 会话ID到客户端的映射
	sessionClients map[string][]*Client
	sessionMu      sync.RWMutex

	// 消息广播通道
	broadcast chan *Message

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	// 消息处理器
	messageHandler MessageHandler

	// 日志
	logger *zap.Logger
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"` // 消息类型
	SessionID string          `json:"session_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"` // 消息数据
	Timestamp int64           `json:"timestamp"`      // 时间戳
}

// MessageType 消息类型
const (
	// 系统消息
	MessageTypeConnected    = "connected"
	MessageTypeDisconnected = "disconnected"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeError        = "error"

	// 游戏消息
	MessageTypeSubscribe   = "subscribe"
	MessageTypeGameCommand = "game_command"
	MessageTypeGamePayload = "game_payload"
)

// NewHub 创建Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:        make(map[string]*Client),
		sessionClients: make(map[string][]*Client),
		broadcast:      make(chan *Message, 256),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		logger:         logger,
	}
}

// SetMessageHandler 设置客户端消息处理器
func (h *Hub) SetMessageHandler(handler MessageHandler) {
	h.messageHandler = handler
}

// Run 运行Hub，上下文取消后退出
func (h *Hub) Run(ctx context.Context) {
	// 启动心跳检测
	go h.runHeartbeat(ctx)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub停止")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	if client.SessionID != "" {
		h.attachSession(client, client.SessionID)
	}

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.String("session_id", client.SessionID))

	// 发送连接成功消息
	msg := &Message{
		Type:      MessageTypeConnected,
		SessionID: client.SessionID,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"连接成功"}`),
	}
	h.SendToClient(client.ID, msg)
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	h.detachSession(client)

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID),
		zap.String("session_id", client.SessionID))
}

// attachSession 将客户端挂到会话映射
func (h *Hub) attachSession(client *Client, sessionID string) {
	h.sessionMu.Lock()
	h.sessionClients[sessionID] = append(h.sessionClients[sessionID], client)
	h.sessionMu.Unlock()
}

// detachSession 将客户端从会话映射移除
func (h *Hub) detachSession(client *Client) {
	if client.SessionID == "" {
		return
	}

	h.sessionMu.Lock()
	clients := h.sessionClients[client.SessionID]
	for i, c := range clients {
		if c.ID == client.ID {
			h.sessionClients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.sessionClients[client.SessionID]) == 0 {
		delete(h.sessionClients, client.SessionID)
	}
	h.sessionMu.Unlock()
}

// RebindSession 客户端切换订阅会话
func (h *Hub) RebindSession(client *Client, sessionID string) {
	h.detachSession(client)
	client.SessionID = sessionID
	if sessionID != "" {
		h.attachSession(client, sessionID)
	}
}

// broadcastMessage 广播消息
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.clientsMu.RLock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// 发送缓冲区满
			h.logger.Warn("客户端发送缓冲区满",
				zap.String("client_id", client.ID))
		}
	}
	h.clientsMu.RUnlock()
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	client, ok := h.clients[clientID]
	h.clientsMu.RUnlock()

	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// SendToSession 发送消息给指定游戏会话的所有客户端
func (h *Hub) SendToSession(sessionID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.sessionMu.RLock()
	clients := h.sessionClients[sessionID]
	h.sessionMu.RUnlock()

	if len(clients) == 0 {
		return ErrSessionNotConnected
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("会话客户端发送缓冲区满",
				zap.String("client_id", client.ID),
				zap.String("session_id", sessionID))
		}
	}

	return nil
}

// ConnectedSessions 当前有订阅者的会话列表
func (h *Hub) ConnectedSessions() []string {
	h.sessionMu.RLock()
	defer h.sessionMu.RUnlock()

	sessions := make([]string, 0, len(h.sessionClients))
	for sessionID := range h.sessionClients {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// GetOnlineCount 获取在线连接数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// runHeartbeat 运行心跳检测
func (h *Hub) runHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ping := &Message{
				Type:      MessageTypePing,
				Timestamp: time.Now().Unix(),
			}
			h.broadcast <- ping
		}
	}
}

// Broadcast 广播消息（公开方法）
func (h *Hub) Broadcast(message *Message) {
	h.broadcast <- message
}

// Register 注册客户端（公开方法）
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 注销客户端（公开方法）
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
