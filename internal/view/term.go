package view

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// TermRenderer draws models as plain text on a terminal.
type TermRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTermRenderer creates a renderer writing to out.
func NewTermRenderer(out io.Writer) *TermRenderer {
	return &TermRenderer{out: out}
}

func (r *TermRenderer) Render(m Model) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder

	if m.Notice != "" {
		fmt.Fprintf(&b, "\n!! %s\n", m.Notice)
	}

	switch m.View {
	case Welcome:
		r.renderWelcome(&b, m)
	case Lesson:
		r.renderLesson(&b, m)
	case Quiz:
		r.renderQuiz(&b, m)
	}

	fmt.Fprint(r.out, b.String())
}

func (r *TermRenderer) renderWelcome(b *strings.Builder, m Model) {
	fmt.Fprint(b, "\n=== Go Learning ===\n")
	fmt.Fprint(b, "Pick a lesson with: open <lesson-id>\n")
	r.renderSidebar(b, m.Sidebar)
}

func (r *TermRenderer) renderSidebar(b *strings.Builder, sb Sidebar) {
	for _, ch := range sb.Chapters {
		fmt.Fprintf(b, "\n%d. %s\n", ch.ID, ch.Title)
		for _, l := range ch.Lessons {
			mark := " "
			if _, done := sb.Completed[l.ID]; done {
				mark = "x"
			}
			active := "  "
			if l.ID == sb.ActiveLessonID {
				active = "> "
			}
			fmt.Fprintf(b, "  %s[%s] %s  %s\n", active, mark, l.ID, l.Title)
		}
	}
	fmt.Fprintf(b, "\ncompleted: %d\n", len(sb.Completed))
}

func (r *TermRenderer) renderLesson(b *strings.Builder, m Model) {
	if m.Lesson == nil {
		return
	}
	l := m.Lesson

	fmt.Fprintf(b, "\n## %s\n\n%s\n", l.Title, l.Content)
	for i, ex := range l.CodeExamples {
		fmt.Fprintf(b, "\n--- example %d: %s ---\n%s\n", i+1, ex.Title, ex.Code)
	}
	if len(l.Notes) > 0 {
		fmt.Fprint(b, "\nNotes:\n")
		for _, n := range l.Notes {
			fmt.Fprintf(b, "  - %s\n", n)
		}
	}
	fmt.Fprint(b, "\ncommands: quiz | run <n> | home\n")
}

func (r *TermRenderer) renderQuiz(b *strings.Builder, m Model) {
	if m.Quiz == nil {
		return
	}

	fmt.Fprintf(b, "\n### Quiz: %s\n", m.Quiz.LessonID)
	for i, q := range m.Quiz.Questions {
		fmt.Fprintf(b, "\n%d) %s\n", i+1, q.Text)
		selected, answered := m.Attempt.Answers[q.ID]
		for j, opt := range q.Options {
			marker := " "
			if answered && selected == j {
				marker = "*"
			}
			if m.Attempt.Submitted && j == q.Answer {
				marker = "+"
			}
			fmt.Fprintf(b, "   %s %d. %s\n", marker, j+1, opt)
		}
		if m.Attempt.Submitted {
			if answered && selected == q.Answer {
				fmt.Fprint(b, "   correct\n")
			} else {
				fmt.Fprintf(b, "   wrong: %s\n", q.Explanation)
			}
		}
	}

	if m.Score != nil {
		status := "FAILED"
		if m.Score.Passed {
			status = "PASSED"
		}
		fmt.Fprintf(b, "\nScore: %d/%d (%d%%) %s\n",
			m.Score.Correct, m.Score.Total, m.Score.Percent, status)
		fmt.Fprint(b, "commands: back | home\n")
	} else {
		answered := answeredCount(m)
		fmt.Fprintf(b, "\nanswered %d/%d, answer <q> <option> then submit\n",
			answered, len(m.Quiz.Questions))
	}
}

func answeredCount(m Model) int {
	n := 0
	for _, q := range m.Quiz.Questions {
		if _, ok := m.Attempt.Answers[q.ID]; ok {
			n++
		}
	}
	return n
}
