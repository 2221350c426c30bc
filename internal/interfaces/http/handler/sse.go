package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultSSEHeartbeat is used when no heartbeat interval is configured
const DefaultSSEHeartbeat = 15 * time.Second

// streamEvents writes every update as an SSE event until the client goes
// away or updates is closed. Comment lines keep idle proxies from closing
// the stream.
func streamEvents[T any](c *gin.Context, event string, updates <-chan T, heartbeat time.Duration) {
	if heartbeat <= 0 {
		heartbeat = DefaultSSEHeartbeat
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	// the server write timeout does not apply to streams
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent(event, update)
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(c.Writer, ": heartbeat\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
