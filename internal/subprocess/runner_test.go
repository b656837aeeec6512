package subprocess

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smarthealth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunner_Run(t *testing.T) {
	r := NewRunner("test", 5*time.Second, nil, zap.NewNop())

	t.Run("stdin is echoed to stdout", func(t *testing.T) {
		res, err := r.Run(context.Background(), Command{
			Name:  "/bin/sh",
			Args:  []string{"-c", "cat"},
			Stdin: []byte(`["cough"]`),
		})
		require.NoError(t, err)
		assert.Equal(t, `["cough"]`, string(res.Stdout))
	})

	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		res, err := r.Run(context.Background(), Command{
			Name: "/bin/sh",
			Args: []string{"-c", "echo 'model missing' >&2; exit 3"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSubprocessFailed)

		var pe *domain.ProcessError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, 3, pe.ExitCode)
		assert.Equal(t, "model missing\n", pe.Stderr)
		assert.Equal(t, "model missing\n", string(res.Stderr))
	})

	t.Run("missing binary", func(t *testing.T) {
		_, err := r.Run(context.Background(), Command{Name: "/nonexistent/binary"})
		require.Error(t, err)
		assert.Equal(t, domain.KindDependency, domain.KindOf(err))
	})

	t.Run("working directory", func(t *testing.T) {
		dir := t.TempDir()
		res, err := r.Run(context.Background(), Command{Name: "/bin/sh", Args: []string{"-c", "pwd -P"}, Dir: dir})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Stdout)
	})
}

func TestRunner_Timeout(t *testing.T) {
	r := NewRunner("test", 100*time.Millisecond, nil, zap.NewNop())

	start := time.Now()
	_, err := r.Run(context.Background(), Command{Name: "/bin/sh", Args: []string{"-c", "sleep 5"}})

	require.Error(t, err)
	assert.True(t, domain.IsTimeout(err))
	assert.ErrorIs(t, err, domain.ErrProcessTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}
