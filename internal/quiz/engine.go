// Package quiz runs a single quiz attempt: answer recording,
// completeness checks, and scoring on submission.
package quiz

import (
	"context"
	"math"
	"sync"

	"github.com/KeitoID/GoLangStudyApp/internal/content"
)

// PassPercent is the inclusive pass threshold.
const PassPercent = 70

// Fetcher loads the quiz for a lesson. *api.Client satisfies it.
type Fetcher interface {
	Quiz(ctx context.Context, lessonID string) (content.Quiz, error)
}

// Recorder receives the completion side effect of a passed quiz.
// *progress.Store satisfies it.
type Recorder interface {
	MarkCompleted(lessonID string)
}

// ScoreResult is the outcome of a submitted attempt.
type ScoreResult struct {
	Correct int
	Total   int
	Percent int
	Passed  bool
}

// Config holds dependencies for the quiz engine.
type Config struct {
	Fetcher  Fetcher
	Recorder Recorder
}

// Engine holds at most one active quiz attempt. An attempt is
// in-progress from Start until Submit; after Submit the answer set is
// frozen and SelectAnswer is a no-op until the next Start.
type Engine struct {
	fetcher  Fetcher
	recorder Recorder

	mu        sync.Mutex
	current   *content.Quiz
	answers   map[string]int
	submitted bool
	result    *ScoreResult
}

// NewEngine creates a quiz engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		fetcher:  cfg.Fetcher,
		recorder: cfg.Recorder,
	}
}

// Start fetches the quiz for a lesson and begins a fresh attempt,
// discarding any previous one. On fetch failure (including
// api.ErrNoQuiz) the engine is left with no active quiz.
func (e *Engine) Start(ctx context.Context, lessonID string) (*content.Quiz, error) {
	quiz, err := e.fetcher.Quiz(ctx, lessonID)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.answers = make(map[string]int)
	e.submitted = false
	e.result = nil

	if err != nil {
		e.current = nil
		return nil, err
	}
	e.current = &quiz
	return e.current, nil
}

// Reset discards the active attempt, if any.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = nil
	e.answers = nil
	e.submitted = false
	e.result = nil
}

// SelectAnswer records an answer for a question. Last write wins.
// No-op when there is no active quiz, after submission, or when the
// question or option index is unknown.
func (e *Engine) SelectAnswer(questionID string, optionIndex int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil || e.submitted {
		return
	}
	for _, q := range e.current.Questions {
		if q.ID == questionID {
			if optionIndex >= 0 && optionIndex < len(q.Options) {
				e.answers[questionID] = optionIndex
			}
			return
		}
	}
}

// SelectedAnswer returns the recorded answer for a question, -1 if none.
func (e *Engine) SelectedAnswer(questionID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx, ok := e.answers[questionID]; ok {
		return idx
	}
	return -1
}

// IsComplete reports whether every question has a recorded answer.
func (e *Engine) IsComplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isCompleteLocked()
}

func (e *Engine) isCompleteLocked() bool {
	if e.current == nil {
		return false
	}
	for _, q := range e.current.Questions {
		if _, ok := e.answers[q.ID]; !ok {
			return false
		}
	}
	return true
}

// Submit scores the attempt. It returns nil with no state change when
// there is no active quiz or not every question is answered. A passed
// attempt marks the lesson completed. Submitting an already-submitted
// attempt returns the cached result without repeating side effects.
func (e *Engine) Submit() *ScoreResult {
	e.mu.Lock()

	if e.current == nil {
		e.mu.Unlock()
		return nil
	}
	if e.submitted {
		result := e.result
		e.mu.Unlock()
		return result
	}
	if !e.isCompleteLocked() {
		e.mu.Unlock()
		return nil
	}

	correct := 0
	for _, q := range e.current.Questions {
		if e.answers[q.ID] == q.Answer {
			correct++
		}
	}

	total := len(e.current.Questions)
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(correct*100) / float64(total)))
	}

	result := &ScoreResult{
		Correct: correct,
		Total:   total,
		Percent: percent,
		Passed:  percent >= PassPercent,
	}
	e.submitted = true
	e.result = result
	lessonID := e.current.LessonID
	e.mu.Unlock()

	if result.Passed && e.recorder != nil {
		e.recorder.MarkCompleted(lessonID)
	}
	return result
}

// Submitted reports whether the active attempt has been scored.
func (e *Engine) Submitted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitted
}

// Result returns the score of a submitted attempt, nil otherwise.
func (e *Engine) Result() *ScoreResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// IsCorrect reports whether the recorded answer matches the key.
// Meaningful only after submission; false otherwise.
func (e *Engine) IsCorrect(questionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil || !e.submitted {
		return false
	}
	for _, q := range e.current.Questions {
		if q.ID == questionID {
			idx, ok := e.answers[questionID]
			return ok && idx == q.Answer
		}
	}
	return false
}

// CorrectAnswer returns the answer key for a question, -1 if unknown.
func (e *Engine) CorrectAnswer(questionID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return -1
	}
	for _, q := range e.current.Questions {
		if q.ID == questionID {
			return q.Answer
		}
	}
	return -1
}

// Current returns the active quiz, nil when none.
func (e *Engine) Current() *content.Quiz {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Answers returns a copy of the recorded answers.
func (e *Engine) Answers() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	answers := make(map[string]int, len(e.answers))
	for id, idx := range e.answers {
		answers[id] = idx
	}
	return answers
}
