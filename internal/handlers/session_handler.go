package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/services"
	"github.com/SAP-F-2025/quiz-portal/internal/session"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// SessionHandler runs a timed quiz over a WebSocket. The client sends
// "select" and "submit" messages; the server pushes "started", "tick",
// "submitted" and "error".
type SessionHandler struct {
	BaseHandler
	quizService    services.QuizService
	attemptService services.AttemptService
	upgrader       websocket.Upgrader
	sessionOpts    []session.Option
}

func NewSessionHandler(quizService services.QuizService, attemptService services.AttemptService, logger utils.Logger, opts ...session.Option) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		quizService:    quizService,
		attemptService: attemptService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sessionOpts: opts,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	QuestionID string `json:"question_id"`
	AnswerID   string `json:"answer_id"`
}

type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type startedPayload struct {
	Quiz      *models.Quiz `json:"quiz"`
	Remaining int          `json:"remaining"`
}

type tickPayload struct {
	Remaining int `json:"remaining"`
}

type runResult struct {
	attempt *models.Attempt
	err     error
}

// ServeSession
// @Summary Take a quiz against the clock
// @Tags quizzes
// @Param id path string true "Quiz ID"
// @Router /quizzes/{id}/session [get]
func (h *SessionHandler) ServeSession(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	principal := principalFrom(c)
	if !principal.Is(models.RoleStudent) {
		h.handleServiceError(c, services.NewPermissionError(principal.UserID, id, "quiz", "take", "role not allowed"))
		return
	}
	if !principal.ProfileComplete() {
		h.handleServiceError(c, services.ErrProfileIncomplete)
		return
	}

	quiz, err := h.quizService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.LogError(c, err, "WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	// The server's write timeout would otherwise cut the quiz short.
	_ = conn.NetConn().SetDeadline(time.Time{})

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sess := session.New(principal, quiz, h.attemptService, utils.ToSlogLogger(h.logger), h.sessionOpts...)

	// Single writer: every outbound frame goes through send.
	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		failed := false
		for msg := range send {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.LogWarn(c, "WebSocket write failed", "error", err)
				failed = true
				cancel()
			}
		}
	}()

	inbound := make(chan inboundMessage)
	go func() {
		defer close(inbound)
		for {
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			select {
			case inbound <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make(chan runResult, 1)
	go func() {
		attempt, err := sess.Run(ctx)
		results <- runResult{attempt: attempt, err: err}
	}()

	send <- outboundMessage{Type: "started", Payload: startedPayload{Quiz: quiz, Remaining: quiz.TimeLimit * 60}}

	h.LogInfo(c, "Quiz session opened", "quiz_id", quiz.ID)

	var result runResult
loop:
	for {
		select {
		case remaining := <-sess.Remaining():
			send <- outboundMessage{Type: "tick", Payload: tickPayload{Remaining: remaining}}

		case msg, ok := <-inbound:
			if !ok {
				// Client went away: drop the session without a record.
				cancel()
				inbound = nil
				continue
			}
			h.handleInbound(ctx, sess, msg, send)

		case result = <-results:
			break loop
		}
	}

	switch {
	case result.err == nil:
		send <- outboundMessage{Type: "submitted", Payload: result.attempt}
	case errors.Is(result.err, context.Canceled):
		h.LogInfo(c, "Quiz session abandoned", "quiz_id", quiz.ID)
	default:
		send <- errorMessage(result.err)
	}

	cancel()
	close(send)
	<-writerDone

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

func (h *SessionHandler) handleInbound(ctx context.Context, sess *session.Session, msg inboundMessage, send chan<- outboundMessage) {
	switch msg.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.QuestionID == "" {
			send <- outboundMessage{Type: "error", Payload: ErrorResponse{Message: "invalid select payload", Code: "INVALID_PAYLOAD"}}
			return
		}
		if err := sess.Select(ctx, payload.QuestionID, payload.AnswerID); err != nil && !errors.Is(err, session.ErrSessionClosed) {
			send <- errorMessage(err)
		}
	case "submit":
		// Success is reported once Run returns.
		if _, err := sess.Submit(ctx); err != nil && !errors.Is(err, session.ErrSessionClosed) {
			send <- errorMessage(err)
		}
	default:
		send <- outboundMessage{Type: "error", Payload: ErrorResponse{Message: "unsupported message type", Code: "INVALID_PAYLOAD"}}
	}
}

func errorMessage(err error) outboundMessage {
	resp := ErrorResponse{Message: err.Error()}
	var validationErrors services.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		resp = ErrorResponse{Message: "Validation failed", Details: validationErrors, Code: "VALIDATION_FAILED"}
	case services.IsNotFound(err):
		resp.Code = "NOT_FOUND"
	case services.IsBackend(err):
		resp = ErrorResponse{Message: "Storage backend unavailable", Code: "BACKEND_UNAVAILABLE"}
	}
	return outboundMessage{Type: "error", Payload: resp}
}
