package websocket

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agentpost/backend/internal/domain"
)

// newTestClient 构造一个不带底层连接的客户端，只用于订阅与广播路径
func newTestClient(hub *Hub) *Client {
	return &Client{
		ID:        uuid.NewString(),
		send:      make(chan []byte, 256),
		hub:       hub,
		mailboxes: make(map[string]bool),
		log:       zap.NewNop(),
	}
}

func TestHub_ConcurrentSubscribeAndBroadcast(t *testing.T) {
	hub := NewHub([]string{"*"}, zap.NewNop())

	msg := &Message{
		Type:      MessageTypeNewMessage,
		Mailbox:   "agent_1",
		Timestamp: time.Now(),
	}

	// 订阅变更与广播并发执行，不能出现并发 map 读写
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := newTestClient(hub)
			for j := 0; j < 200; j++ {
				client.subscribeMailbox("agent_1")
				client.unsubscribeMailbox("agent_1")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 500; j++ {
			hub.broadcastToMailbox("agent_1", msg)
		}
	}()

	wg.Wait()
}

func TestHub_NotifyAfterShutdown(t *testing.T) {
	hub := NewHub([]string{"*"}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	// Hub 停止后继续通知不能永久阻塞，即使广播缓冲已满
	finished := make(chan struct{})
	go func() {
		for i := 0; i < 300; i++ {
			hub.NotifyNewMessage("agent_1", &domain.Message{ID: "m", Content: "x"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("NotifyNewMessage blocked after hub shutdown")
	}
}

func TestTruncatePreview(t *testing.T) {
	t.Run("短内容原样返回", func(t *testing.T) {
		assert.Equal(t, "hello", truncatePreview("hello", 100))
	})

	t.Run("超长内容截断到上限", func(t *testing.T) {
		long := strings.Repeat("a", 150)
		assert.Equal(t, strings.Repeat("a", 100), truncatePreview(long, 100))
	})

	t.Run("多字节字符不被截成半个", func(t *testing.T) {
		// 每个汉字占 3 字节，100 不是 3 的整数倍
		long := strings.Repeat("消", 50)
		got := truncatePreview(long, 100)

		require.True(t, utf8.ValidString(got))
		assert.Equal(t, 99, len(got))
	})
}
