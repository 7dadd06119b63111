package view_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/KeitoID/GoLangStudyApp/internal/content"
	"github.com/KeitoID/GoLangStudyApp/internal/quiz"
	"github.com/KeitoID/GoLangStudyApp/internal/view"
)

func sidebar() view.Sidebar {
	return view.Sidebar{
		Chapters: []content.Chapter{
			{ID: 1, Title: "Basics", Lessons: []content.LessonSummary{
				{ID: "l1", Title: "Hello"},
				{ID: "l2", Title: "Variables"},
			}},
		},
		Completed:      map[string]struct{}{"l1": {}},
		ActiveLessonID: "l2",
	}
}

func TestTermRenderer_Welcome(t *testing.T) {
	var buf bytes.Buffer
	view.NewTermRenderer(&buf).Render(view.Model{
		View:    view.Welcome,
		Sidebar: sidebar(),
	})

	out := buf.String()
	for _, want := range []string{
		"1. Basics",
		"[x] l1",   // completed mark
		"> [ ] l2", // active highlight
		"completed: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTermRenderer_Lesson(t *testing.T) {
	var buf bytes.Buffer
	view.NewTermRenderer(&buf).Render(view.Model{
		View: view.Lesson,
		Lesson: &content.Lesson{
			ID:      "l1",
			Title:   "Hello",
			Content: "Your first program.",
			CodeExamples: []content.CodeExample{
				{Title: "hello", Code: "package main"},
			},
			Notes: []string{"Run it with go run."},
		},
		Sidebar: sidebar(),
	})

	out := buf.String()
	for _, want := range []string{
		"## Hello",
		"Your first program.",
		"example 1: hello",
		"package main",
		"Run it with go run.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTermRenderer_QuizInProgress(t *testing.T) {
	var buf bytes.Buffer
	view.NewTermRenderer(&buf).Render(view.Model{
		View: view.Quiz,
		Quiz: &content.Quiz{
			LessonID: "l1",
			Questions: []content.Question{
				{ID: "q1", Text: "First?", Options: []string{"a", "b"}, Answer: 0},
				{ID: "q2", Text: "Second?", Options: []string{"a", "b"}, Answer: 1},
			},
		},
		Attempt: view.Attempt{Answers: map[string]int{"q1": 1}},
	})

	out := buf.String()
	if !strings.Contains(out, "* 2. b") {
		t.Errorf("selected option not marked:\n%s", out)
	}
	if !strings.Contains(out, "answered 1/2") {
		t.Errorf("answer tally missing:\n%s", out)
	}
	if strings.Contains(out, "Score:") {
		t.Errorf("unsubmitted quiz shows a score:\n%s", out)
	}
}

func TestTermRenderer_QuizSubmitted(t *testing.T) {
	var buf bytes.Buffer
	view.NewTermRenderer(&buf).Render(view.Model{
		View: view.Quiz,
		Quiz: &content.Quiz{
			LessonID: "l1",
			Questions: []content.Question{
				{ID: "q1", Text: "First?", Options: []string{"a", "b"}, Answer: 0, Explanation: "it is a"},
			},
		},
		Attempt: view.Attempt{Answers: map[string]int{"q1": 1}, Submitted: true},
		Score:   &quiz.ScoreResult{Correct: 0, Total: 1, Percent: 0, Passed: false},
	})

	out := buf.String()
	if !strings.Contains(out, "+ 1. a") {
		t.Errorf("correct answer not revealed:\n%s", out)
	}
	if !strings.Contains(out, "wrong: it is a") {
		t.Errorf("explanation missing:\n%s", out)
	}
	if !strings.Contains(out, "Score: 0/1 (0%) FAILED") {
		t.Errorf("score line missing:\n%s", out)
	}
}

func TestTermRenderer_Notice(t *testing.T) {
	var buf bytes.Buffer
	view.NewTermRenderer(&buf).Render(view.Model{
		View:   view.Welcome,
		Notice: "could not load lesson l9",
	})

	if !strings.Contains(buf.String(), "!! could not load lesson l9") {
		t.Errorf("notice missing:\n%s", buf.String())
	}
}

func TestMockRenderer(t *testing.T) {
	mock := view.NewMockRenderer()
	mock.Render(view.Model{View: view.Welcome})
	mock.Render(view.Model{View: view.Lesson})

	if got := len(mock.Models()); got != 2 {
		t.Fatalf("len(Models()) = %d, want 2", got)
	}
	if last, ok := mock.Last(); !ok || last.View != view.Lesson {
		t.Errorf("Last() = %+v, %v", last, ok)
	}

	select {
	case m := <-mock.Notify():
		if m.View != view.Welcome {
			t.Errorf("first notification = %v", m.View)
		}
	default:
		t.Error("Notify() empty after renders")
	}
}

func TestView_String(t *testing.T) {
	if view.Welcome.String() == view.Quiz.String() {
		t.Error("views are not distinguishable")
	}
}
