package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/twenty-questions/backend/internal/model/game"
	gameservice "github.com/zhouzirui/twenty-questions/backend/internal/service/game"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// WebSocketHandler 通过 WebSocket 进行对局
type WebSocketHandler struct {
	games    GameService
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(games GameService) *WebSocketHandler {
	return &WebSocketHandler{
		games: games,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// AnswerMessage 玩家回答
type AnswerMessage struct {
	Answer string `json:"answer"`
}

// VerdictMessage 玩家对猜测的确认
type VerdictMessage struct {
	Correct *bool `json:"correct"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connection 串行化写操作，gorilla/websocket 不允许并发写
type connection struct {
	conn      *websocket.Conn
	sessionID string
	mu        sync.Mutex
}

func (c *connection) send(msgType string, data interface{}) {
	msg := outgoingMessage{
		Type:      msgType,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", msgType, err)
	}
}

func (c *connection) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "gameID")

	session, err := h.games.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer ws.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := &connection{conn: ws, sessionID: sessionID}

	_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go h.pingLoop(ctx, conn)

	conn.send("session", session)

	for {
		var msg inboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		_ = ws.SetReadDeadline(time.Now().Add(readTimeout))
		h.handleMessage(ctx, conn, &msg)
	}
}

// handleMessage 分发客户端消息
func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *connection, msg *inboundMessage) {
	switch msg.Type {
	case "answer":
		var payload AnswerMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			conn.send("error", errorData(fmt.Errorf("%w: malformed answer", gameservice.ErrInvalidInput)))
			return
		}
		answer, err := game.ParseAnswer(payload.Answer)
		if err != nil {
			conn.send("error", errorData(fmt.Errorf("%w: %v", gameservice.ErrInvalidInput, err)))
			return
		}
		h.sendTurn(conn, func() (game.Session, game.Outcome, error) {
			return h.games.Answer(ctx, conn.sessionID, answer)
		})
	case "retry":
		h.sendTurn(conn, func() (game.Session, game.Outcome, error) {
			return h.games.Retry(ctx, conn.sessionID)
		})
	case "history":
		history, err := h.games.History(ctx, conn.sessionID)
		if err != nil {
			conn.send("error", errorData(err))
			return
		}
		conn.send("history", map[string]any{"messages": history})
	case "verdict":
		var payload VerdictMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Correct == nil {
			conn.send("error", errorData(fmt.Errorf("%w: correct is required", gameservice.ErrInvalidInput)))
			return
		}
		session, err := h.games.ConfirmGuess(ctx, conn.sessionID, *payload.Correct)
		if err != nil {
			conn.send("error", errorData(err))
			return
		}
		conn.send("session", session)
	default:
		conn.send("error", map[string]any{"status": http.StatusBadRequest, "message": fmt.Sprintf("unsupported message type %q", msg.Type)})
	}
}

func (h *WebSocketHandler) sendTurn(conn *connection, turn func() (game.Session, game.Outcome, error)) {
	session, outcome, err := turn()
	if err != nil {
		conn.send("error", errorData(err))
		return
	}
	conn.send("outcome", TurnResponse{Session: session, Outcome: &outcome})
}

func errorData(err error) map[string]any {
	status, message := statusFor(err)
	return map[string]any{"status": status, "message": message}
}

// pingLoop 定期发送ping消息
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *connection) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
