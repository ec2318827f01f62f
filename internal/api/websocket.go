package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hmi-editor/backend/internal/tagoptions"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// WebSocket message types for the project channel
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected     = "connected"
	MsgTypeProjectLoaded = "project:loaded"
	MsgTypePong          = "pong"
	MsgTypeError         = "error"
)

// WSMessage is the envelope of every WebSocket message
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSErrorResponse is the payload of an error message
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WebSocketHandler pushes project load notifications to connected clients
type WebSocketHandler struct {
	source         tagoptions.ScriptSource
	upgrader       websocket.Upgrader
	log            *logrus.Entry
	maxMessageSize int64
}

// NewWebSocketHandler creates a new project push handler. maxMessageKB
// bounds incoming client messages.
func NewWebSocketHandler(source tagoptions.ScriptSource, maxMessageKB int, log *logrus.Entry) *WebSocketHandler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if maxMessageKB <= 0 {
		maxMessageKB = 64
	}
	return &WebSocketHandler{
		source: source,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
		},
		log:            log,
		maxMessageSize: int64(maxMessageKB) * 1024,
	}
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) send(msg WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.ws.WriteJSON(msg)
}

// HandleWebSocket upgrades the connection and forwards project loads until
// the client disconnects.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	ws.SetReadLimit(wsh.maxMessageSize)

	conn := &wsConn{ws: ws}
	wsh.log.Debug("client connected")

	sub := wsh.source.SubscribeLoad(func() {
		if err := conn.send(WSMessage{Type: MsgTypeProjectLoaded, Timestamp: time.Now().UnixMilli()}); err != nil {
			wsh.log.Debugf("failed to push project load: %v", err)
		}
	})
	defer sub.Unsubscribe()

	wsh.sendMessage(conn, WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsh.log.Warnf("connection error: %v", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			wsh.sendMessage(conn, WSMessage{Type: MsgTypePong, ID: msg.ID, Timestamp: time.Now().UnixMilli()})
		default:
			wsh.sendError(conn, "Unknown message type: "+msg.Type, "INVALID_TYPE")
		}
	}

	wsh.log.Debug("client disconnected")
	return nil
}

func (wsh *WebSocketHandler) sendMessage(conn *wsConn, msg WSMessage) {
	if err := conn.send(msg); err != nil {
		wsh.log.Debugf("failed to send message: %v", err)
	}
}

func (wsh *WebSocketHandler) sendError(conn *wsConn, message, code string) {
	wsh.sendMessage(conn, WSMessage{
		Type:      MsgTypeError,
		Timestamp: time.Now().UnixMilli(),
		Payload:   mustJSON(WSErrorResponse{Message: message, Code: code}),
	})
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
