package httptransport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agentpost/backend/internal/config"
	"agentpost/backend/internal/service"
	"agentpost/backend/internal/storage/memory"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.MessageService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	registry := memory.NewRegistry()
	log := zap.NewNop()
	mailboxService := service.NewMailboxService(registry, log)
	messageService := service.NewMessageService(registry, log)

	router := NewRouter(RouterDependencies{
		Config:         cfg,
		MailboxService: mailboxService,
		MessageService: messageService,
		Logger:         log,
	})

	return router, messageService
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCompatAPI_SendAndList(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("投递消息自动创建信箱", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/mailboxes/agent_1/messages",
			`{"sender":"scheduler","content":"run task 42"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Status    string `json:"status"`
			MessageID string `json:"message_id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "sent", resp.Status)
		assert.NotEmpty(t, resp.MessageID)
	})

	t.Run("信箱名称列表包含新信箱", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/mailboxes", "")
		require.Equal(t, http.StatusOK, w.Code)

		var names []string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &names))
		assert.Equal(t, []string{"agent_1"}, names)
	})

	t.Run("消息列表返回原始数组", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/mailboxes/agent_1/messages", "")
		require.Equal(t, http.StatusOK, w.Code)

		var items []struct {
			ID        string `json:"id"`
			Sender    string `json:"sender"`
			Content   string `json:"content"`
			Timestamp string `json:"timestamp"`
			Read      bool   `json:"read"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, "scheduler", items[0].Sender)
		assert.Equal(t, "run task 42", items[0].Content)
		assert.False(t, items[0].Read)
		assert.NotEmpty(t, items[0].Timestamp)
	})

	t.Run("读取未知信箱返回404", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/mailboxes/missing/messages", "")
		require.Equal(t, http.StatusNotFound, w.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "mailbox not found", resp.Error)
	})
}

func TestCompatAPI_Acknowledge(t *testing.T) {
	router, messages := newTestRouter(t)

	msg := messages.Send(service.SendInput{Mailbox: "agent_1", Sender: "peer", Content: "hello"})

	t.Run("确认消息成功", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/mailboxes/agent_1/messages/"+msg.ID+"/ack", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Status    string `json:"status"`
			MessageID string `json:"message_id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "acknowledged", resp.Status)
		assert.Equal(t, msg.ID, resp.MessageID)
	})

	t.Run("确认后未读列表为空", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/mailboxes/agent_1/messages?unread_only=true", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("未知消息返回404", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/mailboxes/agent_1/messages/no-such-id/ack", "")
		require.Equal(t, http.StatusNotFound, w.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "message not found", resp.Error)
	})

	t.Run("未知信箱返回404", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/api/mailboxes/missing/messages/"+msg.ID+"/ack", "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestV1API_Mailboxes(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("创建信箱返回201", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/mailboxes", `{"name":"agent_1"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, CodeCreated, resp.Code)
	})

	t.Run("空名称返回400", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/mailboxes", `{"name":""}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("获取信箱详情", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/v1/mailboxes/agent_1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Code int             `json:"code"`
			Data mailboxResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "agent_1", resp.Data.Name)
	})

	t.Run("未知信箱返回404", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/v1/mailboxes/missing", "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("信箱列表", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/v1/mailboxes", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Code int                 `json:"code"`
			Data mailboxListResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Data.Count)
	})
}

func TestV1API_Messages(t *testing.T) {
	router, _ := newTestRouter(t)

	var messageID string

	t.Run("投递消息", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/mailboxes/agent_1/messages",
			`{"sender":"peer","content":"hello"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Code int                 `json:"code"`
			Data sendMessageResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "sent", resp.Data.Status)
		require.NotEmpty(t, resp.Data.MessageID)
		messageID = resp.Data.MessageID
	})

	t.Run("确认消息", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/v1/mailboxes/agent_1/messages/"+messageID+"/ack", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Code int                 `json:"code"`
			Data acknowledgeResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "acknowledged", resp.Data.Status)
		assert.Equal(t, messageID, resp.Data.MessageID)
	})

	t.Run("unread_only过滤", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/v1/mailboxes/agent_1/messages?unread_only=true", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Code int                 `json:"code"`
			Data messageListResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Data.Count)
	})

	t.Run("读取未知信箱返回404", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/v1/mailboxes/missing/messages", "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
