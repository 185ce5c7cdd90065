package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitForMessage(t *testing.T, client *Client) *Message {
	t.Helper()
	select {
	case raw := <-client.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("等待消息超时")
		return nil
	}
}

// Hub随上下文取消退出，取消前注册与会话推送正常工作
func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := NewClient(hub, nil, "sess-1")
	hub.Register(client)

	// 注册完成的信号是connected消息
	msg := waitForMessage(t, client)
	assert.Equal(t, MessageTypeConnected, msg.Type)
	assert.Equal(t, 1, hub.GetOnlineCount())

	require.NoError(t, hub.SendToSession("sess-1", &Message{
		Type:      MessageTypeGamePayload,
		SessionID: "sess-1",
		Timestamp: time.Now().Unix(),
	}))
	msg = waitForMessage(t, client)
	assert.Equal(t, MessageTypeGamePayload, msg.Type)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Hub未随上下文取消退出")
	}
}

// 切换订阅后旧会话不再可达，新会话收到推送
func TestHubRebindSession(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := NewClient(hub, nil, "sess-a")
	hub.Register(client)
	waitForMessage(t, client)

	hub.RebindSession(client, "sess-b")
	assert.Equal(t, []string{"sess-b"}, hub.ConnectedSessions())

	err := hub.SendToSession("sess-a", &Message{Type: MessageTypePing, Timestamp: time.Now().Unix()})
	assert.Equal(t, ErrSessionNotConnected, err)

	require.NoError(t, hub.SendToSession("sess-b", &Message{
		Type:      MessageTypeGamePayload,
		SessionID: "sess-b",
		Timestamp: time.Now().Unix(),
	}))
	msg := waitForMessage(t, client)
	assert.Equal(t, MessageTypeGamePayload, msg.Type)
}
