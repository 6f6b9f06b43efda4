package routes

import (
	"net/http"
	"time"

	"github.com/meetingnexus/backend/internal/hub"
	"github.com/meetingnexus/backend/internal/protocol"
	"github.com/meetingnexus/backend/internal/server/middleware"
	"github.com/meetingnexus/backend/internal/session"
	"github.com/meetingnexus/backend/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Clients connect from arbitrary origins (Electron shells, local dev).
	CheckOrigin: func(r *http.Request) bool { return true },
}

// MeetingSocketHandler upgrades the connection and attaches it to the
// session named by the "session" query parameter. The subscriber receives
// the full meeting state as its first message.
func MeetingSocketHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	sess := app.Controller.Session(c.QueryParam("session"))

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sub, ok := sess.Subscribe()
	if !ok {
		conn.Close()
		return nil
	}
	logger.Info("[WS] Client connected", "session", sess.ID, "conn", sub.ID)

	go writePump(conn, sub)
	readPump(conn, sess, sub)
	return nil
}

// readPump owns inbound traffic. Malformed messages produce an error event
// on this connection only and never close it.
func readPump(conn *websocket.Conn, sess *session.Session, sub *hub.Subscriber) {
	defer func() {
		sess.Unsubscribe(sub.ID)
		conn.Close()
		logger.Info("[WS] Client disconnected", "session", sess.ID, "conn", sub.ID)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("[WS] Unexpected close", "session", sess.ID, "conn", sub.ID, "err", err)
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			sess.SendTo(sub.ID, protocol.NewError(err.Error()))
			continue
		}
		sess.HandleMessage(msg)
	}
}

// writePump owns all writes on the connection, including pings. It exits
// when the subscriber channel is closed or a write fails.
func writePump(conn *websocket.Conn, sub *hub.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-sub.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
