package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/domain"
)

const (
	headerUserID  = "X-User-ID"
	headerPremium = "X-User-Premium"
)

// Handler exposes the progress use cases over REST. Identity comes from gateway headers.
type Handler struct {
	service *app.ProgressService
	log     *slog.Logger
}

func NewHandler(service *app.ProgressService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, log: logger}
}

// Register mounts the REST routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /v1/streak-list", h.logRequests(authenticated(h.streakList)))
	mux.Handle("POST /v1/give-answer", h.logRequests(authenticated(h.giveAnswer)))
	mux.Handle("POST /v1/refill-lives", h.logRequests(authenticated(h.refillLives)))
	mux.Handle("GET /v1/leaderboard", h.logRequests(authenticated(h.leaderboard)))
	mux.Handle("POST /v1/activity", h.logRequests(authenticated(h.createActivity)))
	mux.Handle("GET /v1/activity", h.logRequests(authenticated(h.getActivity)))
	mux.Handle("DELETE /v1/activity", h.logRequests(authenticated(h.deleteActivity)))
}

type identity struct {
	UserID    string
	IsPremium bool
}

func identityFrom(r *http.Request) (identity, bool) {
	id := identity{UserID: r.Header.Get(headerUserID)}
	if id.UserID == "" {
		return identity{}, false
	}
	id.IsPremium, _ = strconv.ParseBool(r.Header.Get(headerPremium))
	return id, true
}

// authenticated rejects requests without a user id before calling next.
func authenticated(next func(http.ResponseWriter, *http.Request, identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing "+headerUserID+" header")
			return
		}
		next(w, r, id)
	}
}

func (h *Handler) streakList(w http.ResponseWriter, r *http.Request, id identity) {
	report, err := h.service.Streak(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type giveAnswerRequest struct {
	QuizID     string   `json:"quiz_id"`
	QuestionID string   `json:"question_id"`
	Answer     []string `json:"answer"`
	Duration   float64  `json:"duration"`
}

func (h *Handler) giveAnswer(w http.ResponseWriter, r *http.Request, id identity) {
	var req giveAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	result, err := h.service.SubmitAnswer(r.Context(), app.SubmitAnswerInput{
		UserID:     id.UserID,
		IsPremium:  id.IsPremium,
		QuizID:     req.QuizID,
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
		Duration:   req.Duration,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) refillLives(w http.ResponseWriter, r *http.Request, id identity) {
	result, err := h.service.RefillLives(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) leaderboard(w http.ResponseWriter, r *http.Request, id identity) {
	q, err := leaderboardQuery(r, id.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	board, err := h.service.Leaderboard(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func leaderboardQuery(r *http.Request, userID string) (app.LeaderboardQuery, error) {
	values := r.URL.Query()
	q := app.LeaderboardQuery{UserID: userID, Sort: domain.SortDirection(values.Get("sort"))}
	var err error
	if q.Page, err = intParam(values.Get("page")); err != nil {
		return q, fmt.Errorf("%w: page must be an integer", domain.ErrInvalid)
	}
	if q.Limit, err = intParam(values.Get("limit")); err != nil {
		return q, fmt.Errorf("%w: limit must be an integer", domain.ErrInvalid)
	}
	return q, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

type createActivityRequest struct {
	Interests []string `json:"interests"`
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request, id identity) {
	var req createActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	summary, err := h.service.Register(r.Context(), id.UserID, req.Interests)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id identity) {
	summary, err := h.service.Summary(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) deleteActivity(w http.ResponseWriter, r *http.Request, id identity) {
	if err := h.service.Delete(r.Context(), id.UserID); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps a service error onto the public error envelope; unexpected errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		message = "internal error"
	}
	writeError(w, status, code, message)
}

// classify returns the HTTP status and stable error code for err.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrActivityExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, domain.ErrOutOfLives):
		return http.StatusPreconditionFailed, "out_of_lives"
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return http.StatusPreconditionFailed, "already_answered"
	case errors.Is(err, domain.ErrAlreadyHasLife):
		return http.StatusPreconditionFailed, "already_has_life"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusPreconditionFailed, "insufficient_balance"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// logRequests logs method, path, status and duration of each request.
func (h *Handler) logRequests(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)

		level := slog.LevelInfo
		if sw.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		h.log.LogAttrs(r.Context(), level, "http.request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", sw.status),
			slog.Duration("duration", time.Since(start)),
			slog.String("user_id", r.Header.Get(headerUserID)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}
