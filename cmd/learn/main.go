// Command learn is the terminal client for the learning service. It
// drives the router, quiz engine, and progress store from a
// line-oriented command loop.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/KeitoID/GoLangStudyApp/internal/api"
	"github.com/KeitoID/GoLangStudyApp/internal/nav"
	"github.com/KeitoID/GoLangStudyApp/internal/platform/config"
	"github.com/KeitoID/GoLangStudyApp/internal/progress"
	"github.com/KeitoID/GoLangStudyApp/internal/quiz"
	"github.com/KeitoID/GoLangStudyApp/internal/session"
	"github.com/KeitoID/GoLangStudyApp/internal/view"
)

func main() {
	// Keep stdout for the renderer; logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sessionPath := cfg.Client.SessionPath
	if sessionPath == "" {
		sessionPath, err = session.DefaultPath()
		if err != nil {
			slog.Error("failed to resolve session path", "error", err)
			os.Exit(1)
		}
	}

	client := api.New(cfg.Client.ServerURL)
	store := progress.NewStore(progress.Config{
		Syncer:   client,
		Sessions: session.NewStore(sessionPath),
	})
	engine := quiz.NewEngine(quiz.Config{
		Fetcher:  client,
		Recorder: store,
	})
	router := nav.NewRouter(nav.Config{
		Content:  client,
		Quiz:     engine,
		Progress: store,
		Renderer: view.NewTermRenderer(os.Stdout),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app := &app{
		router: router,
		engine: engine,
		store:  store,
		client: client,
		out:    os.Stdout,
	}

	if username, ok := store.StoredUsername(); ok {
		app.login(ctx, username)
	} else {
		fmt.Fprintln(app.out, "Welcome! Log in with: login <username>")
	}

	app.run(ctx)
}

type app struct {
	router *nav.Router
	engine *quiz.Engine
	store  *progress.Store
	client *api.Client
	out    *os.File
}

// login exchanges the username for the remote progress set, then
// loads the sidebar and shows the welcome view.
func (a *app) login(ctx context.Context, username string) {
	if err := a.store.Login(ctx, username); err != nil {
		fmt.Fprintf(a.out, "login failed: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "logged in as %s\n", a.store.Username())
	a.router.LoadChapters(ctx)
	a.router.HandleLocation(ctx, "")
}

func (a *app) run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Fprint(a.out, "> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if !a.dispatch(ctx, strings.Fields(scanner.Text())) {
			return
		}
		fmt.Fprint(a.out, "> ")
	}
}

// dispatch executes one command; it returns false to quit.
func (a *app) dispatch(ctx context.Context, args []string) bool {
	if len(args) == 0 {
		return true
	}

	cmd := args[0]
	switch cmd {
	case "quit", "exit":
		return false

	case "help":
		a.printHelp()

	case "login":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "usage: login <username>")
			return true
		}
		a.login(ctx, strings.Join(args[1:], " "))

	case "logout":
		a.store.Logout()
		a.router.Navigate(ctx, "")
		fmt.Fprintln(a.out, "logged out")

	case "home":
		a.router.Navigate(ctx, "")

	case "open":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "usage: open <lesson-id>")
			return true
		}
		a.router.Navigate(ctx, args[1])

	case "quiz":
		a.router.StartQuiz(ctx)

	case "answer":
		a.answer(args[1:])

	case "submit":
		a.router.SubmitQuiz()

	case "back":
		a.router.BackToLesson()

	case "run":
		a.runExample(ctx, args[1:])

	case "reset":
		a.store.Reset()
		fmt.Fprintln(a.out, "progress reset")
		a.router.Navigate(ctx, "")

	default:
		fmt.Fprintf(a.out, "unknown command: %s (try help)\n", cmd)
	}
	return true
}

// answer maps 1-based question and option numbers onto the engine.
func (a *app) answer(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "usage: answer <question#> <option#>")
		return
	}
	qNum, err1 := strconv.Atoi(args[0])
	optNum, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Fprintln(a.out, "usage: answer <question#> <option#>")
		return
	}

	current := a.engine.Current()
	if current == nil {
		fmt.Fprintln(a.out, "no active quiz")
		return
	}
	if qNum < 1 || qNum > len(current.Questions) {
		fmt.Fprintf(a.out, "question must be 1..%d\n", len(current.Questions))
		return
	}

	a.router.SelectAnswer(current.Questions[qNum-1].ID, optNum-1)
}

// runExample sends the numbered code example of the current lesson to
// the sandbox and prints its output.
func (a *app) runExample(ctx context.Context, args []string) {
	lesson := a.router.CurrentLesson()
	if lesson == nil {
		fmt.Fprintln(a.out, "open a lesson first")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(a.out, "usage: run <example#>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(lesson.CodeExamples) {
		fmt.Fprintf(a.out, "example must be 1..%d\n", len(lesson.CodeExamples))
		return
	}

	result, err := a.client.RunCode(ctx, lesson.CodeExamples[n-1].Code)
	if err != nil {
		fmt.Fprintf(a.out, "run failed: %v\n", err)
		return
	}
	if result.Error != "" {
		fmt.Fprintf(a.out, "error: %s\n", result.Error)
	}
	fmt.Fprint(a.out, result.Output)
	if !strings.HasSuffix(result.Output, "\n") {
		fmt.Fprintln(a.out)
	}
}

func (a *app) printHelp() {
	fmt.Fprint(a.out, `commands:
  login <username>        log in and sync progress
  open <lesson-id>        open a lesson
  quiz                    start the lesson's quiz
  answer <q#> <option#>   answer a quiz question
  submit                  score the quiz
  back                    return from quiz to lesson
  run <example#>          run a code example remotely
  home                    back to the welcome view
  reset                   clear all progress
  logout                  log out and forget the cached username
  quit                    exit
`)
}
