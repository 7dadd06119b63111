package server

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// RunResult is the outcome of one sandbox execution.
type RunResult struct {
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Runner executes submitted Go code in a throwaway temp directory
// under a hard timeout.
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a runner with the given per-execution timeout.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Run writes code to a temp main.go and executes `go run` on it.
// Compile and runtime failures come back in the result, not as an
// error; errors are reserved for sandbox setup problems.
func (r *Runner) Run(ctx context.Context, code string) (RunResult, error) {
	tmpDir, err := os.MkdirTemp("", "gorun-*")
	if err != nil {
		return RunResult{}, fmt.Errorf("create sandbox dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	codePath := filepath.Join(tmpDir, "main.go")
	if err := os.WriteFile(codePath, []byte(code), 0o644); err != nil {
		return RunResult{}, fmt.Errorf("write sandbox code: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "go", "run", codePath)
	cmd.Dir = tmpDir
	output, runErr := cmd.CombinedOutput()

	result := RunResult{Output: string(output)}
	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.Error = fmt.Sprintf("execution timed out after %s", r.timeout)
	case runErr != nil:
		result.Error = "execution failed"
	}
	return result, nil
}
