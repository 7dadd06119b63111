package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KeitoID/GoLangStudyApp/internal/content"
	"github.com/KeitoID/GoLangStudyApp/internal/report"
)

// Handler serves the learning service API.
type Handler struct {
	content *content.Store
	store   ProgressStore
	runner  *Runner // nil disables the sandbox
	hub     *Hub
}

// HandlerConfig holds dependencies for the API handler.
type HandlerConfig struct {
	Content *content.Store
	Store   ProgressStore
	Runner  *Runner
	Hub     *Hub
}

// NewHandler creates the API handler.
func NewHandler(cfg HandlerConfig) *Handler {
	hub := cfg.Hub
	if hub == nil {
		hub = NewHub()
	}
	return &Handler{
		content: cfg.Content,
		store:   cfg.Store,
		runner:  cfg.Runner,
		hub:     hub,
	}
}

// Routes builds the HTTP mux for the API.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.HandleFunc("GET /api/chapters", h.handleChapters)
	mux.HandleFunc("GET /api/lessons/{id}", h.handleLesson)
	mux.HandleFunc("GET /api/quiz/{lessonId}", h.handleQuiz)
	mux.HandleFunc("POST /api/login", h.handleLogin)
	mux.HandleFunc("GET /api/progress/{username}", h.handleGetProgress)
	mux.HandleFunc("POST /api/progress/{username}/{lessonId}", h.handleMarkProgress)
	mux.HandleFunc("DELETE /api/progress/{username}", h.handleResetProgress)
	mux.HandleFunc("POST /api/run", h.handleRun)
	mux.HandleFunc("GET /api/report/{username}", h.handleReport)
	mux.HandleFunc("GET /ws/progress", h.handleWS)
	return mux
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleChapters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.content.Chapters())
}

func (h *Handler) handleLesson(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	lesson, ok := h.content.Lesson(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lesson not found"})
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (h *Handler) handleQuiz(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("lessonId")
	quiz, ok := h.content.Quiz(lessonID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "quiz not found"})
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	ctx := r.Context()
	if err := h.store.EnsureUser(ctx, username); err != nil {
		slog.Error("login: ensure user failed", "username", username, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create user"})
		return
	}

	progress, err := h.store.Progress(ctx, username)
	if err != nil {
		slog.Error("login: progress lookup failed", "username", username, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get progress"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"username": username,
		"progress": progress,
	})
}

func (h *Handler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	progress, err := h.store.Progress(r.Context(), username)
	if err != nil {
		slog.Error("progress lookup failed", "username", username, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get progress"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"progress": progress})
}

func (h *Handler) handleMarkProgress(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	lessonID := r.PathValue("lessonId")

	if err := h.store.MarkCompleted(r.Context(), username, lessonID); err != nil {
		slog.Error("mark progress failed", "username", username, "lesson", lessonID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save progress"})
		return
	}

	h.hub.Publish(Event{Type: "completed", Username: username, LessonID: lessonID})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleResetProgress(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	if err := h.store.Reset(r.Context(), username); err != nil {
		slog.Error("reset progress failed", "username", username, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reset progress"})
		return
	}

	h.hub.Publish(Event{Type: "reset", Username: username})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeJSON(w, http.StatusServiceUnavailable, RunResult{Error: "code execution is disabled"})
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, RunResult{Error: "invalid request"})
		return
	}
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, RunResult{Error: "code is empty"})
		return
	}

	result, err := h.runner.Run(r.Context(), req.Code)
	if err != nil {
		slog.Error("sandbox run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, RunResult{Error: "sandbox failure"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	progress, err := h.store.Progress(r.Context(), username)
	if err != nil {
		slog.Error("report: progress lookup failed", "username", username, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get progress"})
		return
	}

	completed := make(map[string]struct{}, len(progress))
	for _, id := range progress {
		completed[id] = struct{}{}
	}

	workbook, err := report.Build(username, h.content.Chapters(), completed)
	if err != nil {
		slog.Error("report build failed", "username", username, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to build report"})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", username+"-progress.xlsx"))
	if err := workbook.Write(w); err != nil {
		slog.Warn("report write aborted", "username", username, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("response write failed", "error", err)
	}
}
