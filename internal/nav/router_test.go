package nav_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KeitoID/GoLangStudyApp/internal/api"
	"github.com/KeitoID/GoLangStudyApp/internal/content"
	"github.com/KeitoID/GoLangStudyApp/internal/nav"
	"github.com/KeitoID/GoLangStudyApp/internal/quiz"
	"github.com/KeitoID/GoLangStudyApp/internal/view"
)

// fakeContent serves lessons from a map; individual lesson fetches can
// be held back on a gate channel to order concurrent resolutions.
type fakeContent struct {
	mu       sync.Mutex
	chapters []content.Chapter
	lessons  map[string]content.Lesson
	gates    map[string]chan struct{}
	fail     bool
}

func newFakeContent(lessonIDs ...string) *fakeContent {
	f := &fakeContent{
		lessons: make(map[string]content.Lesson),
		gates:   make(map[string]chan struct{}),
	}
	ch := content.Chapter{ID: 1, Title: "Basics"}
	for _, id := range lessonIDs {
		f.lessons[id] = content.Lesson{ID: id, ChapterID: 1, Title: "Lesson " + id, Content: "body"}
		ch.Lessons = append(ch.Lessons, content.LessonSummary{ID: id, Title: "Lesson " + id})
	}
	f.chapters = []content.Chapter{ch}
	return f
}

func (f *fakeContent) gate(id string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[id] = gate
	return gate
}

func (f *fakeContent) Chapters(_ context.Context) ([]content.Chapter, error) {
	if f.fail {
		return nil, errors.New("network down")
	}
	return f.chapters, nil
}

func (f *fakeContent) Lesson(_ context.Context, id string) (content.Lesson, error) {
	f.mu.Lock()
	gate := f.gates[id]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if f.fail {
		return content.Lesson{}, errors.New("network down")
	}
	l, ok := f.lessons[id]
	if !ok {
		return content.Lesson{}, api.ErrNotFound
	}
	return l, nil
}

type quizByLesson map[string]content.Quiz

func (q quizByLesson) Quiz(_ context.Context, lessonID string) (content.Quiz, error) {
	qz, ok := q[lessonID]
	if !ok {
		return content.Quiz{}, api.ErrNoQuiz
	}
	return qz, nil
}

// gatedQuizFetcher signals on entered when a fetch begins, then holds
// it on the gate until released.
type gatedQuizFetcher struct {
	quizzes quizByLesson
	entered chan string
	gate    chan struct{}
}

func (g *gatedQuizFetcher) Quiz(ctx context.Context, lessonID string) (content.Quiz, error) {
	g.entered <- lessonID
	<-g.gate
	return g.quizzes.Quiz(ctx, lessonID)
}

type stubProgress struct{}

func (stubProgress) CompletedSet() map[string]struct{} { return map[string]struct{}{} }

func newRouter(fetcher *fakeContent, quizzes quizByLesson) (*nav.Router, *view.MockRenderer, *quiz.Engine) {
	renderer := view.NewMockRenderer()
	engine := quiz.NewEngine(quiz.Config{Fetcher: quizzes})
	router := nav.NewRouter(nav.Config{
		Content:  fetcher,
		Quiz:     engine,
		Progress: stubProgress{},
		Renderer: renderer,
	})
	return router, renderer, engine
}

func nextRender(t *testing.T, renderer *view.MockRenderer) view.Model {
	t.Helper()
	select {
	case m := <-renderer.Notify():
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a render")
		panic("unreachable")
	}
}

func TestRouter_RoutingRoundTrip(t *testing.T) {
	router, renderer, _ := newRouter(newFakeContent("ch1-l2"), nil)
	ctx := context.Background()

	router.HandleLocation(ctx, "lesson/ch1-l2")
	model := nextRender(t, renderer)

	state := router.State()
	if state.CurrentLessonID != "ch1-l2" {
		t.Errorf("CurrentLessonID = %q, want ch1-l2", state.CurrentLessonID)
	}
	if state.View != view.Lesson {
		t.Errorf("View = %v, want Lesson", state.View)
	}
	if model.Lesson == nil || model.Lesson.ID != "ch1-l2" {
		t.Errorf("rendered lesson = %+v, want ch1-l2", model.Lesson)
	}
	if model.Sidebar.ActiveLessonID != "ch1-l2" {
		t.Errorf("sidebar active = %q, want ch1-l2", model.Sidebar.ActiveLessonID)
	}

	router.HandleLocation(ctx, "")
	nextRender(t, renderer)

	state = router.State()
	if state.CurrentLessonID != "" {
		t.Errorf("CurrentLessonID = %q after going home, want empty", state.CurrentLessonID)
	}
	if state.View != view.Welcome {
		t.Errorf("View = %v, want Welcome", state.View)
	}
}

func TestRouter_NavigateUpdatesLocation(t *testing.T) {
	router, renderer, _ := newRouter(newFakeContent("l1"), nil)

	router.Navigate(context.Background(), "l1")
	nextRender(t, renderer)

	if got := router.Location(); got != "lesson/l1" {
		t.Errorf("Location() = %q, want lesson/l1", got)
	}
}

func TestRouter_StaleFetchDiscarded(t *testing.T) {
	fetcher := newFakeContent("a", "b")
	router, renderer, _ := newRouter(fetcher, nil)
	ctx := context.Background()

	gateA := fetcher.gate("a")
	gateB := fetcher.gate("b")

	router.HandleLocation(ctx, "lesson/a")
	router.HandleLocation(ctx, "lesson/b")

	// B resolves first and wins.
	close(gateB)
	model := nextRender(t, renderer)
	if model.Lesson == nil || model.Lesson.ID != "b" {
		t.Fatalf("rendered lesson = %+v, want b", model.Lesson)
	}

	// A resolves late and must be dropped on the floor.
	close(gateA)
	time.Sleep(100 * time.Millisecond)

	if lesson := router.CurrentLesson(); lesson == nil || lesson.ID != "b" {
		t.Errorf("current lesson = %+v after stale resolve, want b", lesson)
	}
	if got := len(renderer.Models()); got != 1 {
		t.Errorf("render count = %d, want 1 (stale fetch rendered)", got)
	}
}

func TestRouter_StaleQuizFetchDiscarded(t *testing.T) {
	fetcher := newFakeContent("a", "b")
	gated := &gatedQuizFetcher{
		quizzes: quizByLesson{
			"a": {LessonID: "a", Questions: []content.Question{
				{ID: "q1", Text: "?", Options: []string{"x", "y"}, Answer: 0},
			}},
		},
		entered: make(chan string, 1),
		gate:    make(chan struct{}),
	}
	renderer := view.NewMockRenderer()
	engine := quiz.NewEngine(quiz.Config{Fetcher: gated})
	router := nav.NewRouter(nav.Config{
		Content:  fetcher,
		Quiz:     engine,
		Progress: stubProgress{},
		Renderer: renderer,
	})
	ctx := context.Background()

	router.HandleLocation(ctx, "lesson/a")
	nextRender(t, renderer)

	done := make(chan struct{})
	go func() {
		router.StartQuiz(ctx)
		close(done)
	}()

	// Wait for the quiz fetch for "a" to be in flight, then navigate
	// away while it is held.
	select {
	case id := <-gated.entered:
		if id != "a" {
			t.Fatalf("quiz fetch for %q, want a", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("quiz fetch never started")
	}

	router.HandleLocation(ctx, "lesson/b")
	nextRender(t, renderer)

	close(gated.gate)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("StartQuiz did not return")
	}

	state := router.State()
	if state.View != view.Lesson || state.CurrentLessonID != "b" {
		t.Errorf("state = %+v, want lesson b", state)
	}
	if engine.Current() != nil {
		t.Error("stale quiz fetch left an attempt active")
	}
	if got := len(renderer.Models()); got != 2 {
		t.Errorf("render count = %d, want 2 (stale quiz rendered)", got)
	}
}

func TestRouter_FetchFailureKeepsPriorView(t *testing.T) {
	fetcher := newFakeContent("l1")
	fetcher.fail = true
	router, renderer, _ := newRouter(fetcher, nil)

	router.HandleLocation(context.Background(), "lesson/l1")
	model := nextRender(t, renderer)

	if model.Notice == "" {
		t.Error("fetch failure rendered no notice")
	}
	state := router.State()
	if state.View != view.Welcome {
		t.Errorf("View = %v after failed fetch, want Welcome", state.View)
	}
	if router.CurrentLesson() != nil {
		t.Error("failed fetch installed a lesson")
	}
}

func TestRouter_StartQuizWithoutQuizStaysOnLesson(t *testing.T) {
	router, renderer, _ := newRouter(newFakeContent("l1"), quizByLesson{})
	ctx := context.Background()

	router.HandleLocation(ctx, "lesson/l1")
	nextRender(t, renderer)

	router.StartQuiz(ctx)
	model := nextRender(t, renderer)

	if got := router.State().View; got != view.Lesson {
		t.Errorf("View = %v, want Lesson when no quiz exists", got)
	}
	if model.Notice == "" {
		t.Error("missing quiz rendered no notice")
	}
}

func TestRouter_QuizFlow(t *testing.T) {
	quizzes := quizByLesson{
		"l1": {
			LessonID: "l1",
			Questions: []content.Question{
				{ID: "q1", Text: "?", Options: []string{"x", "y"}, Answer: 0},
				{ID: "q2", Text: "?", Options: []string{"x", "y"}, Answer: 1},
			},
		},
	}
	router, renderer, _ := newRouter(newFakeContent("l1"), quizzes)
	ctx := context.Background()

	router.HandleLocation(ctx, "lesson/l1")
	nextRender(t, renderer)

	router.StartQuiz(ctx)
	model := nextRender(t, renderer)
	if router.State().View != view.Quiz {
		t.Fatalf("View = %v, want Quiz", router.State().View)
	}
	if model.Quiz == nil || len(model.Quiz.Questions) != 2 {
		t.Fatalf("rendered quiz = %+v", model.Quiz)
	}

	// Submitting early stays on the quiz with no score.
	router.SubmitQuiz()
	model = nextRender(t, renderer)
	if model.Score != nil {
		t.Error("incomplete submit produced a score")
	}
	if router.State().View != view.Quiz {
		t.Errorf("View = %v after early submit, want Quiz", router.State().View)
	}

	router.SelectAnswer("q1", 0)
	nextRender(t, renderer)
	router.SelectAnswer("q2", 1)
	nextRender(t, renderer)

	router.SubmitQuiz()
	model = nextRender(t, renderer)
	if model.Score == nil {
		t.Fatal("complete submit produced no score")
	}
	if !model.Score.Passed || model.Score.Percent != 100 {
		t.Errorf("score = %+v, want 100%% pass", model.Score)
	}
	if router.State().View != view.Quiz {
		t.Error("submit transitioned away from the quiz view")
	}
}

func TestRouter_BackToLessonDiscardsAttempt(t *testing.T) {
	quizzes := quizByLesson{
		"l1": {LessonID: "l1", Questions: []content.Question{
			{ID: "q1", Text: "?", Options: []string{"x", "y"}, Answer: 0},
		}},
	}
	router, renderer, engine := newRouter(newFakeContent("l1"), quizzes)
	ctx := context.Background()

	router.HandleLocation(ctx, "lesson/l1")
	nextRender(t, renderer)
	router.StartQuiz(ctx)
	nextRender(t, renderer)

	router.BackToLesson()
	nextRender(t, renderer)

	if got := router.State().View; got != view.Lesson {
		t.Errorf("View = %v, want Lesson", got)
	}
	if engine.Current() != nil {
		t.Error("leaving the quiz kept the attempt alive")
	}
}

func TestRouter_ChaptersFailureShowsNotice(t *testing.T) {
	fetcher := newFakeContent("l1")
	fetcher.fail = true
	router, renderer, _ := newRouter(fetcher, nil)

	router.LoadChapters(context.Background())
	model := nextRender(t, renderer)
	if model.Notice == "" {
		t.Error("chapter fetch failure rendered no notice")
	}
}

func TestRouter_UnknownLocationIgnored(t *testing.T) {
	router, renderer, _ := newRouter(newFakeContent("l1"), nil)

	router.HandleLocation(context.Background(), "bogus/path")

	select {
	case <-renderer.Notify():
		t.Error("unknown location triggered a render")
	case <-time.After(100 * time.Millisecond):
	}
	if got := router.State().View; got != view.Welcome {
		t.Errorf("View = %v, want Welcome", got)
	}
}
