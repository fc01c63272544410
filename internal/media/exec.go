package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"
)

// maxStderr bounds how much tool output ends up in error messages
const maxStderr = 512

// ToolError is a failed external process invocation
type ToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Stderr)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// run executes a tool under its own timeout and returns stdout
func run(ctx context.Context, timeout time.Duration, tool, binary string, args ...string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, &ToolError{Tool: tool, Err: fmt.Errorf("%s not found in PATH: %w", binary, err)}
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				log.Printf("%s: timed out after %v", tool, duration)
			}
			return nil, &ToolError{Tool: tool, Err: ctxErr}
		}
		log.Printf("%s: command failed after %v: %v\nstderr: %s", tool, duration, err, stderr.String())
		return nil, &ToolError{Tool: tool, Stderr: tail(stderr.String()), Err: err}
	}

	log.Printf("%s: finished in %v", tool, duration)
	return stdout.Bytes(), nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxStderr {
		s = "..." + s[len(s)-maxStderr:]
	}
	return s
}
