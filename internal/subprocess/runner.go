// Package subprocess runs external scripts with a deadline and captures
// their output.
package subprocess

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/metrics"
	"go.uber.org/zap"
)

// Command describes a single process invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Stdin []byte
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Runner starts processes with a fixed deadline.
type Runner struct {
	target  string
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRunner creates a runner. target labels metrics ("predictor", "ocr").
func NewRunner(target string, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *Runner {
	return &Runner{
		target:  target,
		timeout: timeout,
		metrics: m,
		logger:  logger.Named("subprocess").With(zap.String("target", target)),
	}
}

// Run starts the process, writes Stdin, waits for exit and returns its output.
// The process is killed at the deadline. A non-zero exit yields a
// *domain.ProcessError carrying the exit code and stderr.
func (r *Runner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	// Children of the killed process may hold the pipes open.
	c.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	c.Stdin = bytes.NewReader(cmd.Stdin)

	start := time.Now()
	err := c.Run()
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), Duration: time.Since(start)}

	err = r.classify(ctx, err, res)
	r.metrics.ObserveCall(r.target, cmd.Name, metrics.Outcome(err, domain.IsTimeout(err)), res.Duration)

	if err != nil {
		r.logger.Warn("process failed",
			zap.String("command", cmd.Name),
			zap.Duration("duration", res.Duration),
			zap.ByteString("stderr", head(res.Stderr, 500)),
			zap.Error(err),
		)
		return res, err
	}

	r.logger.Debug("process finished",
		zap.String("command", cmd.Name),
		zap.Int("stdout_bytes", len(res.Stdout)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (r *Runner) classify(ctx context.Context, err error, res *Result) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.WrapError("process_timeout", domain.ErrProcessTimeout, domain.KindTimeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return domain.WrapError("process_exit", &domain.ProcessError{
			ExitCode: exitErr.ExitCode(),
			Stderr:   string(res.Stderr),
		}, domain.KindDependency)
	}

	return domain.WrapError("process_start", err, domain.KindDependency)
}

func head(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
