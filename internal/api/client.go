// Package api is the HTTP client for the learning service. All calls
// take a context; non-2xx responses map to typed errors where the
// caller needs to distinguish them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KeitoID/GoLangStudyApp/internal/content"
)

var (
	// ErrNotFound reports a lesson or resource missing on the remote.
	ErrNotFound = errors.New("not found")
	// ErrNoQuiz reports that a lesson has no quiz attached.
	ErrNoQuiz = errors.New("no quiz for lesson")
)

// AuthError reports a rejected login. The message comes from the server.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "login rejected: " + e.Message
}

// LoginResult is the server's answer to a successful login.
type LoginResult struct {
	Username string   `json:"username"`
	Progress []string `json:"progress"`
}

// RunResult is the output of the remote code-execution sandbox.
type RunResult struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Client talks to the learning service API.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chapters fetches the full chapter catalogue.
func (c *Client) Chapters(ctx context.Context) ([]content.Chapter, error) {
	var chapters []content.Chapter
	if err := c.getJSON(ctx, "/api/chapters", &chapters); err != nil {
		return nil, fmt.Errorf("fetch chapters: %w", err)
	}
	return chapters, nil
}

// Lesson fetches the full lesson by ID.
func (c *Client) Lesson(ctx context.Context, id string) (content.Lesson, error) {
	var lesson content.Lesson
	if err := c.getJSON(ctx, "/api/lessons/"+url.PathEscape(id), &lesson); err != nil {
		return content.Lesson{}, fmt.Errorf("fetch lesson %s: %w", id, err)
	}
	return lesson, nil
}

// Quiz fetches the quiz for a lesson. Returns ErrNoQuiz when the
// lesson exists but has no quiz.
func (c *Client) Quiz(ctx context.Context, lessonID string) (content.Quiz, error) {
	var quiz content.Quiz
	err := c.getJSON(ctx, "/api/quiz/"+url.PathEscape(lessonID), &quiz)
	if errors.Is(err, ErrNotFound) {
		return content.Quiz{}, ErrNoQuiz
	}
	if err != nil {
		return content.Quiz{}, fmt.Errorf("fetch quiz for %s: %w", lessonID, err)
	}
	return quiz, nil
}

// Login exchanges a username for the remote-held completion set.
func (c *Client) Login(ctx context.Context, username string) (LoginResult, error) {
	body, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		return LoginResult{}, fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return LoginResult{}, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return LoginResult{}, fmt.Errorf("send login request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return LoginResult{}, fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Only a 4xx with a server-supplied message is a rejected
		// login; anything else is a transport or server failure.
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &failure)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && failure.Error != "" {
			return LoginResult{}, &AuthError{Message: failure.Error}
		}
		return LoginResult{}, fmt.Errorf("login failed (status %d)", resp.StatusCode)
	}

	var result LoginResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return LoginResult{}, fmt.Errorf("unmarshal login response: %w", err)
	}
	return result, nil
}

// Progress fetches the completed lesson IDs for a user.
func (c *Client) Progress(ctx context.Context, username string) ([]string, error) {
	var result struct {
		Progress []string `json:"progress"`
	}
	if err := c.getJSON(ctx, "/api/progress/"+url.PathEscape(username), &result); err != nil {
		return nil, fmt.Errorf("fetch progress for %s: %w", username, err)
	}
	return result.Progress, nil
}

// MarkCompleted records a completed lesson on the remote. Idempotent
// server-side.
func (c *Client) MarkCompleted(ctx context.Context, username, lessonID string) error {
	path := "/api/progress/" + url.PathEscape(username) + "/" + url.PathEscape(lessonID)
	if err := c.send(ctx, http.MethodPost, path, nil); err != nil {
		return fmt.Errorf("mark lesson %s completed: %w", lessonID, err)
	}
	return nil
}

// ResetProgress clears all completion records for a user on the remote.
func (c *Client) ResetProgress(ctx context.Context, username string) error {
	if err := c.send(ctx, http.MethodDelete, "/api/progress/"+url.PathEscape(username), nil); err != nil {
		return fmt.Errorf("reset progress for %s: %w", username, err)
	}
	return nil
}

// RunCode submits code to the execution sandbox and returns its output.
func (c *Client) RunCode(ctx context.Context, code string) (RunResult, error) {
	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return RunResult{}, fmt.Errorf("marshal run request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/run", bytes.NewReader(body))
	if err != nil {
		return RunResult{}, fmt.Errorf("create run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return RunResult{}, fmt.Errorf("send run request: %w", err)
	}
	defer resp.Body.Close()

	// The sandbox reports compile/runtime problems inside the body,
	// for 2xx and 4xx alike.
	var result RunResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return RunResult{}, fmt.Errorf("unmarshal run response (status %d): %w", resp.StatusCode, err)
	}
	return result, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api error (status %d)", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api error (status %d)", resp.StatusCode)
	}
	return nil
}
