package notify

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/bitfantasy/nimo-wms/internal/wms/ledger"
)

// SSEMessage 推送给浏览器端的SSE消息体
type SSEMessage struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client 一条SSE连接
type Client struct {
	ID     string
	UserID string
	Events chan SSEMessage
}

// Hub 管理所有SSE连接。带Owner的事件只推给该用户，全局事件广播。
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register 注册新连接
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("sse client registered",
		zap.String("client", client.ID),
		zap.String("user", client.UserID),
		zap.Int("total", len(h.clients)))
}

// Unregister 摘除连接并关闭其事件通道
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("sse client unregistered",
			zap.String("client", clientID),
			zap.Int("total", len(h.clients)))
	}
}

// Publish 实现 Publisher。通道写不进去就丢弃该客户端的这条消息，不阻塞业务。
func (h *Hub) Publish(event ledger.Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		h.logger.Error("marshal sse event failed", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}
	msg := SSEMessage{EventType: string(event.Type), Data: string(payload)}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if event.Owner != "" && client.UserID != event.Owner {
			continue
		}
		select {
		case client.Events <- msg:
		default:
			h.logger.Warn("sse client buffer full, dropping event",
				zap.String("client", client.ID),
				zap.String("type", string(event.Type)))
		}
	}
}
