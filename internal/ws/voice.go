// Package ws carries live conversations over a websocket: buffered audio in,
// synthesized replies streamed back in base64 chunks.
package ws

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/duncan19760605/GenAI-Kid/internal/repository"
	"github.com/duncan19760605/GenAI-Kid/internal/service"
	"github.com/duncan19760605/GenAI-Kid/internal/session"
)

type Handler struct {
	auth     *service.AuthService
	children *repository.ChildRepository
	sessions *session.Factory
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewHandler(auth *service.AuthService, children *repository.ChildRepository, sessions *session.Factory, logger *slog.Logger) *Handler {
	return &Handler{
		auth:     auth,
		children: children,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser and app clients connect from their own origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

func (h *Handler) track(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Handler) untrack(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Drain closes every live voice connection. Upgraded connections are
// hijacked from the HTTP server, so Shutdown never sees them; the server
// calls this before shutting down. Each read loop then returns and ends
// its session.
func (h *Handler) Drain() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		h.closeWith(conn, websocket.CloseGoingAway, "server shutting down")
		conn.Close()
	}
}

// Handle upgrades GET /ws/voice/:child_id?token=... and runs the session
// loop until the client ends the session or drops the connection.
func (h *Handler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	h.track(conn)
	defer func() {
		h.untrack(conn)
		conn.Close()
	}()

	// The request context dies with the HTTP handshake once the connection
	// is hijacked, so session work runs on its own context.
	ctx := context.Background()

	user, err := h.auth.Verify(ctx, c.Query("token"))
	if err != nil {
		h.closeWith(conn, closeInvalidToken, "Invalid token")
		return
	}

	childID := c.Param("child_id")
	child, err := h.children.GetOwned(ctx, childID, user.ID)
	if err != nil {
		conn.WriteJSON(serverMessage{Type: msgError, Message: "Child not found"})
		h.closeWith(conn, closeChildNotFound, "")
		return
	}

	sess := h.sessions.NewSession(child, user.ID)
	if err := sess.Start(ctx); err != nil {
		h.logger.Error("session start failed",
			slog.String("child_id", child.ID), slog.Any("error", err))
		h.closeWith(conn, websocket.CloseInternalServerErr, "")
		return
	}
	if err := conn.WriteJSON(serverMessage{Type: msgSessionStarted, ConversationID: sess.ConversationID()}); err != nil {
		sess.End(ctx)
		return
	}

	h.loop(ctx, conn, sess)
}

func (h *Handler) loop(ctx context.Context, conn *websocket.Conn, sess *session.Session) {
	defer func() {
		if err := sess.End(ctx); err != nil {
			h.logger.Error("session end failed", slog.Any("error", err))
		}
	}()

	var audio bytes.Buffer
	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Info("websocket closed", slog.Any("error", err))
			}
			return
		}

		switch msg.Type {
		case msgAudioStart:
			audio.Reset()
			if err := conn.WriteJSON(serverMessage{Type: msgProcessing, Stage: "listening"}); err != nil {
				return
			}

		case msgAudioChunk:
			chunk, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				if err := conn.WriteJSON(serverMessage{Type: msgError, Message: "Invalid audio data"}); err != nil {
					return
				}
				continue
			}
			audio.Write(chunk)

		case msgAudioEnd:
			if audio.Len() == 0 {
				if err := conn.WriteJSON(serverMessage{Type: msgError, Message: "No audio data"}); err != nil {
					return
				}
				continue
			}
			if err := conn.WriteJSON(serverMessage{Type: msgProcessing, Stage: "thinking"}); err != nil {
				return
			}

			result, err := sess.ProcessAudio(ctx, audio.Bytes())
			audio.Reset()
			if err != nil {
				if err := conn.WriteJSON(serverMessage{Type: msgError, Message: err.Error()}); err != nil {
					return
				}
				continue
			}

			if err := conn.WriteJSON(serverMessage{
				Type:         msgResponseStart,
				Emotion:      result.Emotion,
				ChildText:    result.ChildText,
				ChildEmotion: result.ChildEmotion,
			}); err != nil {
				return
			}
			if err := h.streamAudio(conn, result); err != nil {
				return
			}

		case msgCommand:
			result, err := sess.HandleCommand(ctx, msg.Action, msg.Value)
			if err != nil {
				if err := conn.WriteJSON(serverMessage{Type: msgError, Message: err.Error()}); err != nil {
					return
				}
				continue
			}

			if err := conn.WriteJSON(serverMessage{Type: msgResponseStart, Emotion: result.Emotion}); err != nil {
				return
			}
			if err := h.streamAudio(conn, result); err != nil {
				return
			}

		case msgEndSession:
			if err := sess.End(ctx); err != nil {
				h.logger.Error("session end failed", slog.Any("error", err))
			}
			conn.WriteJSON(serverMessage{Type: msgSessionEnded})
			h.closeWith(conn, websocket.CloseNormalClosure, "")
			return
		}
	}
}

func (h *Handler) streamAudio(conn *websocket.Conn, result session.TurnResult) error {
	for off := 0; off < len(result.Audio); off += chunkSize {
		end := off + chunkSize
		if end > len(result.Audio) {
			end = len(result.Audio)
		}
		err := conn.WriteJSON(serverMessage{
			Type:   msgAudioChunk,
			Data:   base64.StdEncoding.EncodeToString(result.Audio[off:end]),
			Format: result.Format,
		})
		if err != nil {
			return err
		}
	}
	return conn.WriteJSON(serverMessage{Type: msgAudioEnd, Transcript: result.Text})
}

func (h *Handler) closeWith(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}
