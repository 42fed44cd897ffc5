package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/timmy/mediagrid/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// StreamHandler pushes view snapshots over a websocket.
type StreamHandler struct {
	gallery  *GalleryHandler
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a stream handler.
// Parameters:
//   - gallery: handler owning the view registry.
//   - checkOrigin: origin policy for the upgrade request.
// Returns:
//   - *StreamHandler: initialized handler.
func NewStreamHandler(gallery *GalleryHandler, checkOrigin func(r *http.Request) bool) *StreamHandler {
	return &StreamHandler{
		gallery: gallery,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Stream handles GET /api/v1/views/:id/stream.
// The current snapshot is sent right away, then one per controller transition.
// The stream ends when the view is closed or the peer goes away.
func (h *StreamHandler) Stream(c *gin.Context) {
	view, ok := h.gallery.lookup(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logger.CtxWarn(c.Request.Context(), "Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	updates, unsubscribe := view.Controller.Subscribe()
	defer unsubscribe()

	peerGone := make(chan struct{})
	go readPump(conn, peerGone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := writeSnapshot(conn, newViewResponse(view.ID, view.Controller.Snapshot())); err != nil {
		return
	}
	logger.CtxInfo(ctx, "Stream opened")

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "view closed"))
				logger.CtxInfo(ctx, "Stream closed: view closed")
				return
			}
			if err := writeSnapshot(conn, newViewResponse(view.ID, snap)); err != nil {
				logger.CtxDebug(ctx, "Stream write failed: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-peerGone:
			logger.CtxInfo(ctx, "Stream closed by peer")
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, resp ViewResponse) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(resp)
}

// readPump discards client messages and handles pongs until the connection fails.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
