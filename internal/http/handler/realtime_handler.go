package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wm-metals/trade-api/internal/auth"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/realtime"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// RealtimeHandler streams change events to websocket clients. Each
// client picks the tables it wants via the tables query parameter;
// notification events are only forwarded to their owner.
type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the CORS layer in front of this handler
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Subscribe godoc
// @Summary Realtime change feed
// @Description Upgrades to a websocket and streams row change events
// @Tags Realtime
// @Param tables query string false "Comma-separated table names (empty for all)"
// @Success 101
// @Security BearerAuth
// @Router /realtime [get]
func (h *RealtimeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var tables []string
	if raw := r.URL.Query().Get("tables"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables = append(tables, t)
			}
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.hub.Subscribe(tables...)

	h.logger.Debug("realtime client connected",
		zap.String("user_id", userCtx.UserID.String()),
		zap.Strings("tables", tables),
	)

	go h.writeLoop(conn, sub, userCtx)
	h.readLoop(conn, sub)
}

// readLoop drains client frames so pongs and close messages are
// processed; the feed is one-way otherwise.
func (h *RealtimeHandler) readLoop(conn *websocket.Conn, sub *realtime.Subscription) {
	defer func() {
		sub.Close()
		_ = conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *RealtimeHandler) writeLoop(conn *websocket.Conn, sub *realtime.Subscription, userCtx *auth.UserContext) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		_ = conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			if !h.visibleTo(event, userCtx) {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// visibleTo hides other users' notifications from the stream
func (h *RealtimeHandler) visibleTo(event realtime.Event, userCtx *auth.UserContext) bool {
	if event.Table != "notifications" {
		return true
	}
	notification := notificationPayload(event)
	if notification == nil {
		// No payload to check ownership against; only admins see these
		return userCtx.IsAdmin()
	}
	return notification.UserID == userCtx.UserID
}

func notificationPayload(event realtime.Event) *domain.Notification {
	for _, payload := range []interface{}{event.After, event.Before} {
		if n, ok := payload.(*domain.Notification); ok && n != nil {
			return n
		}
	}
	return nil
}
