// Package nav owns the view-state machine: it maps location strings to
// views, coordinates lesson and quiz transitions, and emits render
// instructions. All navigation, programmatic or direct entry, goes
// through HandleLocation so there is a single code path.
package nav

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/KeitoID/GoLangStudyApp/internal/api"
	"github.com/KeitoID/GoLangStudyApp/internal/content"
	"github.com/KeitoID/GoLangStudyApp/internal/quiz"
	"github.com/KeitoID/GoLangStudyApp/internal/view"
)

const lessonPrefix = "lesson/"

const defaultFetchTimeout = 15 * time.Second

// State is the single source of truth for which view is visible.
type State struct {
	CurrentLessonID string
	View            view.View
}

// ContentFetcher loads chapters and lessons from the remote.
// *api.Client satisfies it.
type ContentFetcher interface {
	Chapters(ctx context.Context) ([]content.Chapter, error)
	Lesson(ctx context.Context, id string) (content.Lesson, error)
}

// ProgressReader supplies the completion set for the sidebar
// projection. *progress.Store satisfies it.
type ProgressReader interface {
	CompletedSet() map[string]struct{}
}

// Config holds dependencies for the router.
type Config struct {
	Content      ContentFetcher
	Quiz         *quiz.Engine
	Progress     ProgressReader
	Renderer     view.Renderer
	FetchTimeout time.Duration // per lesson fetch (default 15s)
}

// Router drives transitions between the welcome, lesson, and quiz
// views. Lesson fetches resolve asynchronously; a generation counter
// guarantees that a fetch superseded by a newer navigation never
// overwrites current view state.
type Router struct {
	content      ContentFetcher
	engine       *quiz.Engine
	progress     ProgressReader
	renderer     view.Renderer
	fetchTimeout time.Duration

	mu       sync.Mutex
	location string
	state    State
	chapters []content.Chapter
	lesson   *content.Lesson
	score    *quiz.ScoreResult
	notice   string
	gen      uint64
}

// NewRouter creates a router showing the welcome view.
func NewRouter(cfg Config) *Router {
	timeout := cfg.FetchTimeout
	if timeout == 0 {
		timeout = defaultFetchTimeout
	}
	return &Router{
		content:      cfg.Content,
		engine:       cfg.Quiz,
		progress:     cfg.Progress,
		renderer:     cfg.Renderer,
		fetchTimeout: timeout,
		state:        State{View: view.Welcome},
	}
}

// LoadChapters fetches the chapter catalogue for the sidebar. Fetched
// once per session; failure keeps the current view and shows a notice.
func (r *Router) LoadChapters(ctx context.Context) {
	chapters, err := r.content.Chapters(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		slog.Error("failed to load chapters", "error", err)
		r.notice = "could not load the chapter list"
		r.renderLocked()
		return
	}
	r.chapters = chapters
	r.renderLocked()
}

// Navigate is the canonical entry point for programmatic navigation:
// it updates the location and routes through the same handler as
// direct location entry. An empty lessonID navigates home.
func (r *Router) Navigate(ctx context.Context, lessonID string) {
	if lessonID == "" {
		r.HandleLocation(ctx, "")
		return
	}
	r.HandleLocation(ctx, lessonPrefix+lessonID)
}

// HandleLocation parses a location string and transitions accordingly.
// Grammar: "" or "/" is the welcome view; "lesson/<id>" is the lesson
// view. Anything else is ignored with a warning.
func (r *Router) HandleLocation(ctx context.Context, loc string) {
	switch {
	case loc == "" || loc == "/":
		r.engine.Reset()
		r.mu.Lock()
		r.location = loc
		r.gen++
		r.state = State{View: view.Welcome}
		r.lesson = nil
		r.score = nil
		r.renderLocked()
		r.mu.Unlock()

	case strings.HasPrefix(loc, lessonPrefix):
		id := strings.TrimPrefix(loc, lessonPrefix)
		if id == "" {
			slog.Warn("ignoring location with empty lesson id", "location", loc)
			return
		}
		r.mu.Lock()
		r.location = loc
		r.gen++
		token := r.gen
		r.mu.Unlock()
		go r.loadLesson(ctx, id, token)

	default:
		slog.Warn("ignoring unknown location", "location", loc)
	}
}

// Location returns the current location string.
func (r *Router) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

// State returns the current navigation state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// CurrentLesson returns the lesson owned by the visible view, if any.
func (r *Router) CurrentLesson() *content.Lesson {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lesson
}

// loadLesson fetches a lesson and applies it unless a newer navigation
// superseded this fetch while it was in flight.
func (r *Router) loadLesson(ctx context.Context, id string, token uint64) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	lesson, err := r.content.Lesson(fetchCtx, id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if token != r.gen {
		slog.Debug("discarding stale lesson fetch", "lesson", id)
		return
	}

	if err != nil {
		slog.Error("failed to load lesson", "lesson", id, "error", err)
		r.notice = "could not load lesson " + id
		r.renderLocked()
		return
	}

	r.engine.Reset()
	r.state = State{CurrentLessonID: id, View: view.Lesson}
	r.lesson = &lesson
	r.score = nil
	r.renderLocked()
}

// StartQuiz begins a quiz attempt for the current lesson. Reachable
// only from the lesson view; when the lesson has no quiz the view does
// not change. A quiz fetch superseded by a newer navigation is
// discarded like a stale lesson fetch.
func (r *Router) StartQuiz(ctx context.Context) {
	r.mu.Lock()
	if r.state.View != view.Lesson {
		r.mu.Unlock()
		return
	}
	lessonID := r.state.CurrentLessonID
	token := r.gen
	r.mu.Unlock()

	quizCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()
	_, err := r.engine.Start(quizCtx, lessonID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if token != r.gen {
		slog.Debug("discarding stale quiz fetch", "lesson", lessonID)
		r.engine.Reset()
		return
	}
	if err != nil {
		if errors.Is(err, api.ErrNoQuiz) {
			r.notice = "this lesson has no quiz"
		} else {
			slog.Error("failed to load quiz", "lesson", lessonID, "error", err)
			r.notice = "could not load the quiz"
		}
		r.renderLocked()
		return
	}
	r.state.View = view.Quiz
	r.score = nil
	r.renderLocked()
}

// SelectAnswer records an answer and re-renders the quiz in place.
func (r *Router) SelectAnswer(questionID string, optionIndex int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.View != view.Quiz {
		return
	}
	r.engine.SelectAnswer(questionID, optionIndex)
	r.renderLocked()
}

// SubmitQuiz scores the attempt. An incomplete attempt stays on the
// quiz view unchanged; a scored one renders in place, no transition.
func (r *Router) SubmitQuiz() {
	r.mu.Lock()
	if r.state.View != view.Quiz {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	result := r.engine.Submit()

	r.mu.Lock()
	defer r.mu.Unlock()
	if result == nil {
		r.notice = "answer every question before submitting"
		r.renderLocked()
		return
	}
	r.score = result
	r.renderLocked()
}

// BackToLesson returns from the quiz to the lesson view, discarding
// the attempt.
func (r *Router) BackToLesson() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.View != view.Quiz {
		return
	}
	r.engine.Reset()
	r.state.View = view.Lesson
	r.score = nil
	r.renderLocked()
}

// renderLocked emits a render instruction for the current state. The
// sidebar is recomputed on every render so completion marks and the
// active-lesson highlight stay a pure projection. Notices are one-shot.
func (r *Router) renderLocked() {
	model := view.Model{
		View:   r.state.View,
		Lesson: r.lesson,
		Quiz:   r.engine.Current(),
		Attempt: view.Attempt{
			Answers:   r.engine.Answers(),
			Submitted: r.engine.Submitted(),
		},
		Score: r.score,
		Sidebar: view.Sidebar{
			Chapters:       r.chapters,
			Completed:      r.progress.CompletedSet(),
			ActiveLessonID: r.state.CurrentLessonID,
		},
		Notice: r.notice,
	}
	r.notice = ""
	r.renderer.Render(model)
}
