package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

// WSHandler serves the play channel: one socket per user carrying answers, refills and
// streak/leaderboard reads.
type WSHandler struct {
	service  *app.ProgressService
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ProgressService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuizID     string   `json:"quizId"`
	QuestionID string   `json:"questionId"`
	Answer     []string `json:"answer"`
	Duration   float64  `json:"duration"`
}

type leaderboardPayload struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Sort  string `json:"sort"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// wsIdentity reads the gateway headers, falling back to query parameters for browser clients
// that cannot set headers on the upgrade request.
func wsIdentity(r *http.Request) (identity, bool) {
	if id, ok := identityFrom(r); ok {
		return id, true
	}
	q := r.URL.Query()
	id := identity{UserID: q.Get("userId")}
	if id.UserID == "" {
		return identity{}, false
	}
	id.IsPremium, _ = strconv.ParseBool(q.Get("premium"))
	return id, true
}

// ServeWS upgrades the request and answers each inbound message in order.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	id, ok := wsIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing user id")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 16)
	writerDone := make(chan struct{})

	// Only this goroutine writes to conn.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write failed", slog.String("user_id", id.UserID), slog.Any("error", err))
				return
			}
		}
	}()

	ctx := r.Context()
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply := h.dispatch(ctx, id, inbound)
		select {
		case send <- reply:
		case <-writerDone:
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, id identity, inbound inboundMessage) outboundMessage {
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage("invalid_request", "invalid answer payload")
		}
		result, err := h.service.SubmitAnswer(ctx, app.SubmitAnswerInput{
			UserID:     id.UserID,
			IsPremium:  id.IsPremium,
			QuizID:     payload.QuizID,
			QuestionID: payload.QuestionID,
			Answer:     payload.Answer,
			Duration:   payload.Duration,
		})
		return h.reply(ctx, "answerResult", result, err)
	case "refill":
		result, err := h.service.RefillLives(ctx, id.UserID)
		return h.reply(ctx, "lives", result, err)
	case "streak":
		report, err := h.service.Streak(ctx, id.UserID)
		return h.reply(ctx, "streak", report, err)
	case "leaderboard":
		var payload leaderboardPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return errorMessage("invalid_request", "invalid leaderboard payload")
			}
		}
		board, err := h.service.Leaderboard(ctx, app.LeaderboardQuery{
			UserID: id.UserID,
			Page:   payload.Page,
			Limit:  payload.Limit,
			Sort:   domain.SortDirection(payload.Sort),
		})
		return h.reply(ctx, "leaderboard", board, err)
	default:
		return errorMessage("invalid_request", "unsupported message type")
	}
}

func (h *WSHandler) reply(ctx context.Context, typ string, payload any, err error) outboundMessage {
	if err == nil {
		return outboundMessage{Type: typ, Payload: payload}
	}
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(ctx, "ws request failed", slog.String("type", typ), slog.Any("error", err))
		return errorMessage(code, "internal error")
	}
	return errorMessage(code, err.Error())
}

func errorMessage(code, message string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorDetail{Code: code, Message: message}}
}
