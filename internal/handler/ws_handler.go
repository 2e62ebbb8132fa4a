package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/schoolsuite/cbt-backend/internal/exam"
	"github.com/schoolsuite/cbt-backend/internal/middleware"
	"github.com/schoolsuite/cbt-backend/internal/service"
	ws "github.com/schoolsuite/cbt-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live practice session: the client sends answer,
// flag and navigate actions; the server relays server-authoritative
// countdown ticks and the submitted event.
type WSHandler struct {
	registry        *service.Registry
	practiceService *service.PracticeService
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(registry *service.Registry, practiceService *service.PracticeService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		registry:        registry,
		practiceService: practiceService,
		log:             log.With().Str("component", "ws_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// wsInbound is the union of all client action payloads; the action field
// decides which part is meaningful.
type wsInbound struct {
	Action        ws.Action `json:"action"`
	QuestionIndex int       `json:"question_index"`
	OptionIndex   *int      `json:"option_index"`
}

// SessionStream godoc
// WS /ws/v1/practice/stream?token=...
// Upgrades to WebSocket for live answering and countdown ticks.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	active, err := h.registry.Get(claims.StudentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(rawConn)
	defer conn.Close()

	wsLog := h.log.With().
		Str("student_id", claims.StudentID).
		Str("session_id", active.ID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	events, cancel := active.Subscribe()
	defer cancel()

	relayCtx, stopRelay := context.WithCancel(c.Request.Context())
	defer stopRelay()
	go h.relayEvents(relayCtx, conn, events, wsLog)

	// Send the current remaining time so the client clock syncs immediately.
	conn.WriteTyped(ws.TickResponse{Event: ws.EventTick, RemainingSeconds: active.Exam.Remaining()})

	for {
		var msg wsInbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(conn, claims.StudentID, &msg)
		case ws.ActionFlag:
			if err := h.practiceService.ToggleFlag(claims.StudentID, msg.QuestionIndex); err != nil {
				conn.WriteError(actionErrorMessage(err))
				continue
			}
			conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QuestionIndex: msg.QuestionIndex})
		case ws.ActionNavigate:
			if err := h.practiceService.Navigate(claims.StudentID, msg.QuestionIndex); err != nil {
				conn.WriteError(actionErrorMessage(err))
				continue
			}
			conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QuestionIndex: msg.QuestionIndex})
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			conn.WriteError("unknown action")
		}
	}
}

func (h *WSHandler) handleAnswer(conn *ws.Conn, studentID string, msg *wsInbound) {
	err := h.practiceService.SelectAnswer(context.Background(), studentID, msg.QuestionIndex, msg.OptionIndex)
	if err != nil {
		conn.WriteError(actionErrorMessage(err))
		return
	}
	conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QuestionIndex: msg.QuestionIndex})
}

// relayEvents forwards session events to the socket until the session
// event channel closes or the connection context ends.
func (h *WSHandler) relayEvents(ctx context.Context, conn *ws.Conn, events <-chan service.SessionEvent, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case "tick":
				if err := conn.WriteTyped(ws.TickResponse{Event: ws.EventTick, RemainingSeconds: ev.RemainingSeconds}); err != nil {
					log.Debug().Err(err).Msg("Tick write failed")
					return
				}
			case "submitted":
				conn.WriteTyped(ws.SubmittedResponse{
					Event:        ws.EventSubmitted,
					ScorePercent: ev.ScorePercent,
					Grade:        ev.Grade,
				})
				log.Info().Msg("Session submitted, stream complete")
			}
		}
	}
}

func actionErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNoActiveSession):
		return "no active session"
	case errors.Is(err, exam.ErrIndexOutOfRange):
		return "question index out of range"
	case errors.Is(err, exam.ErrInvalidState):
		return "session already submitted"
	default:
		return "action failed"
	}
}
