package quiz_test

import (
	"context"
	"testing"

	"github.com/KeitoID/GoLangStudyApp/internal/api"
	"github.com/KeitoID/GoLangStudyApp/internal/content"
	"github.com/KeitoID/GoLangStudyApp/internal/quiz"
)

type fakeFetcher struct {
	quizzes map[string]content.Quiz
}

func (f *fakeFetcher) Quiz(_ context.Context, lessonID string) (content.Quiz, error) {
	q, ok := f.quizzes[lessonID]
	if !ok {
		return content.Quiz{}, api.ErrNoQuiz
	}
	return q, nil
}

type fakeRecorder struct {
	marked []string
}

func (r *fakeRecorder) MarkCompleted(lessonID string) {
	r.marked = append(r.marked, lessonID)
}

// makeQuiz builds a quiz with n questions; the key for every question
// is option 0.
func makeQuiz(lessonID string, n int) content.Quiz {
	q := content.Quiz{LessonID: lessonID}
	for i := 0; i < n; i++ {
		q.Questions = append(q.Questions, content.Question{
			ID:      string(rune('a' + i)),
			Text:    "?",
			Options: []string{"right", "wrong", "also wrong"},
			Answer:  0,
		})
	}
	return q
}

func newEngine(q content.Quiz) (*quiz.Engine, *fakeRecorder) {
	rec := &fakeRecorder{}
	engine := quiz.NewEngine(quiz.Config{
		Fetcher:  &fakeFetcher{quizzes: map[string]content.Quiz{q.LessonID: q}},
		Recorder: rec,
	})
	return engine, rec
}

func TestEngine_StartNoQuiz(t *testing.T) {
	engine, _ := newEngine(makeQuiz("l1", 2))

	q, err := engine.Start(context.Background(), "missing")
	if err != api.ErrNoQuiz {
		t.Fatalf("Start() error = %v, want ErrNoQuiz", err)
	}
	if q != nil {
		t.Error("Start() returned a quiz for a lesson without one")
	}
	if engine.Current() != nil {
		t.Error("engine kept a quiz after a failed start")
	}
}

func TestEngine_Scoring(t *testing.T) {
	tests := []struct {
		name        string
		correct     int
		wantPercent int
		wantPassed  bool
	}{
		{"7-of-10-passes", 7, 70, true},
		{"6-of-10-fails", 6, 60, false},
		{"all-correct", 10, 100, true},
		{"none-correct", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, rec := newEngine(makeQuiz("l2", 10))
			q, err := engine.Start(context.Background(), "l2")
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}

			for i, question := range q.Questions {
				answer := 0
				if i >= tt.correct {
					answer = 1
				}
				engine.SelectAnswer(question.ID, answer)
			}

			result := engine.Submit()
			if result == nil {
				t.Fatal("Submit() = nil for a complete attempt")
			}
			if result.Correct != tt.correct {
				t.Errorf("Correct = %d, want %d", result.Correct, tt.correct)
			}
			if result.Percent != tt.wantPercent {
				t.Errorf("Percent = %d, want %d", result.Percent, tt.wantPercent)
			}
			if result.Passed != tt.wantPassed {
				t.Errorf("Passed = %v, want %v", result.Passed, tt.wantPassed)
			}

			if tt.wantPassed && (len(rec.marked) != 1 || rec.marked[0] != "l2") {
				t.Errorf("marked = %v, want [l2]", rec.marked)
			}
			if !tt.wantPassed && len(rec.marked) != 0 {
				t.Errorf("marked = %v, want none for a failed attempt", rec.marked)
			}
		})
	}
}

func TestEngine_RoundHalfUp(t *testing.T) {
	// 2 of 3 correct is 66.67%, which rounds to 67.
	engine, _ := newEngine(makeQuiz("l3", 3))
	q, _ := engine.Start(context.Background(), "l3")

	engine.SelectAnswer(q.Questions[0].ID, 0)
	engine.SelectAnswer(q.Questions[1].ID, 0)
	engine.SelectAnswer(q.Questions[2].ID, 1)

	result := engine.Submit()
	if result.Percent != 67 {
		t.Errorf("Percent = %d, want 67", result.Percent)
	}
}

func TestEngine_SubmitIncomplete(t *testing.T) {
	engine, rec := newEngine(makeQuiz("l4", 3))
	q, _ := engine.Start(context.Background(), "l4")

	engine.SelectAnswer(q.Questions[0].ID, 0)
	if engine.IsComplete() {
		t.Error("IsComplete() = true with unanswered questions")
	}

	if result := engine.Submit(); result != nil {
		t.Errorf("Submit() = %+v, want nil for incomplete attempt", result)
	}
	if engine.Submitted() {
		t.Error("incomplete Submit() transitioned the attempt")
	}
	if len(rec.marked) != 0 {
		t.Error("incomplete Submit() had side effects")
	}
}

func TestEngine_SubmitWithoutQuiz(t *testing.T) {
	engine, _ := newEngine(makeQuiz("l5", 1))
	if result := engine.Submit(); result != nil {
		t.Errorf("Submit() = %+v with no active quiz, want nil", result)
	}
}

func TestEngine_LastWriteWins(t *testing.T) {
	engine, _ := newEngine(makeQuiz("l6", 1))
	q, _ := engine.Start(context.Background(), "l6")
	id := q.Questions[0].ID

	engine.SelectAnswer(id, 1)
	engine.SelectAnswer(id, 0)
	if got := engine.SelectedAnswer(id); got != 0 {
		t.Errorf("SelectedAnswer = %d, want 0 (last write)", got)
	}

	result := engine.Submit()
	if result.Correct != 1 {
		t.Errorf("Correct = %d, want 1", result.Correct)
	}
}

func TestEngine_SelectAfterSubmitIsNoop(t *testing.T) {
	engine, _ := newEngine(makeQuiz("l7", 1))
	q, _ := engine.Start(context.Background(), "l7")
	id := q.Questions[0].ID

	engine.SelectAnswer(id, 0)
	engine.Submit()

	engine.SelectAnswer(id, 1)
	if got := engine.SelectedAnswer(id); got != 0 {
		t.Errorf("SelectedAnswer = %d after submit, want frozen 0", got)
	}
	if !engine.IsCorrect(id) {
		t.Error("IsCorrect = false, want true")
	}
}

func TestEngine_DoubleSubmit(t *testing.T) {
	engine, rec := newEngine(makeQuiz("l8", 2))
	q, _ := engine.Start(context.Background(), "l8")
	for _, question := range q.Questions {
		engine.SelectAnswer(question.ID, 0)
	}

	first := engine.Submit()
	second := engine.Submit()
	if second != first {
		t.Error("second Submit() did not return the cached result")
	}
	if len(rec.marked) != 1 {
		t.Errorf("marked %d times, want 1", len(rec.marked))
	}
}

func TestEngine_StartResetsAttempt(t *testing.T) {
	engine, _ := newEngine(makeQuiz("l9", 1))
	q, _ := engine.Start(context.Background(), "l9")
	engine.SelectAnswer(q.Questions[0].ID, 0)
	engine.Submit()

	if _, err := engine.Start(context.Background(), "l9"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if engine.Submitted() {
		t.Error("new attempt started in submitted state")
	}
	if got := engine.SelectedAnswer(q.Questions[0].ID); got != -1 {
		t.Errorf("SelectedAnswer = %d on a fresh attempt, want -1", got)
	}
}

func TestEngine_IsCorrectBeforeSubmit(t *testing.T) {
	engine, _ := newEngine(makeQuiz("l10", 1))
	q, _ := engine.Start(context.Background(), "l10")
	engine.SelectAnswer(q.Questions[0].ID, 0)

	if engine.IsCorrect(q.Questions[0].ID) {
		t.Error("IsCorrect = true before submit")
	}
}
