package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitfantasy/nimo-wms/internal/wms/notify"
)

// SSEHandler 库存事件SSE推送
type SSEHandler struct {
	hub *notify.Hub
}

func NewSSEHandler(hub *notify.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream SSE端点
// GET /api/v1/wms/events?token=xxx
func (h *SSEHandler) Stream(c *gin.Context) {
	userID := GetUserID(c)
	clientID := fmt.Sprintf("%s_%d", userID, time.Now().UnixNano())

	client := &notify.Client{
		ID:     clientID,
		UserID: userID,
		Events: make(chan notify.SSEMessage, 64),
	}

	h.hub.Register(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteString("event: connected\ndata: {\"client_id\":\"" + clientID + "\"}\n\n")
	c.Writer.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			h.hub.Unregister(clientID)
			return
		case msg, ok := <-client.Events:
			if !ok {
				return
			}
			c.Writer.WriteString(fmt.Sprintf("event: %s\ndata: %s\n\n", msg.EventType, msg.Data))
			c.Writer.Flush()
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
