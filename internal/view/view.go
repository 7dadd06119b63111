// Package view defines the render contract between the navigation
// layer and whatever draws the screen. Renderers receive a fully
// resolved model and hold no logic beyond presentation.
package view

import (
	"sync"

	"github.com/KeitoID/GoLangStudyApp/internal/content"
	"github.com/KeitoID/GoLangStudyApp/internal/quiz"
)

// View identifies which screen is visible.
type View int

const (
	Welcome View = iota
	Lesson
	Quiz
)

func (v View) String() string {
	switch v {
	case Welcome:
		return "welcome"
	case Lesson:
		return "lesson"
	case Quiz:
		return "quiz"
	default:
		return "unknown"
	}
}

// Attempt is a snapshot of the active quiz attempt for rendering.
type Attempt struct {
	Answers   map[string]int
	Submitted bool
}

// Sidebar is the navigation projection: chapters, completion marks,
// and the highlighted lesson.
type Sidebar struct {
	Chapters       []content.Chapter
	Completed      map[string]struct{}
	ActiveLessonID string
}

// Model is everything a renderer needs to draw one frame.
type Model struct {
	View    View
	Lesson  *content.Lesson
	Quiz    *content.Quiz
	Attempt Attempt
	Score   *quiz.ScoreResult
	Sidebar Sidebar
	Notice  string
}

// Renderer produces visual output from a model.
type Renderer interface {
	Render(Model)
}

// MockRenderer records rendered models for tests and signals each
// render on a buffered channel.
type MockRenderer struct {
	mu     sync.Mutex
	models []Model
	notify chan Model
}

// NewMockRenderer creates a recording renderer.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{
		notify: make(chan Model, 32),
	}
}

func (m *MockRenderer) Render(model Model) {
	m.mu.Lock()
	m.models = append(m.models, model)
	m.mu.Unlock()

	select {
	case m.notify <- model:
	default:
	}
}

// Notify delivers each rendered model in order.
func (m *MockRenderer) Notify() <-chan Model {
	return m.notify
}

// Models returns all rendered models so far.
func (m *MockRenderer) Models() []Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Model{}, m.models...)
}

// Last returns the most recently rendered model.
func (m *MockRenderer) Last() (Model, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.models) == 0 {
		return Model{}, false
	}
	return m.models[len(m.models)-1], true
}
