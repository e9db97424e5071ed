package workload

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinDeterministic(t *testing.T) {
	a, b := NewSpin(1000), NewSpin(1000)
	ctx := context.Background()

	require.NoError(t, a.Prepare(ctx))
	require.NoError(t, a.Run(ctx))
	require.NoError(t, b.Prepare(ctx))
	require.NoError(t, b.Run(ctx))

	assert.Equal(t, a.Result(), b.Result())
	assert.NotZero(t, a.Result())
	assert.Equal(t, 1000, a.Iterations())
	assert.Equal(t, "spin/1000", a.Name())
}

func TestSpinRejectsNegative(t *testing.T) {
	assert.Error(t, NewSpin(-1).Prepare(context.Background()))
}

func TestCommandExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	ctx := context.Background()
	var out bytes.Buffer

	c := NewCommand("sh", "-c", "echo hi; exit 3")
	c.Stdout = &out
	require.NoError(t, c.Prepare(ctx))
	require.NoError(t, c.Run(ctx))

	assert.Equal(t, 3, c.ExitCode())
	assert.Equal(t, "hi\n", out.String())
	assert.Positive(t, c.PID())
}

func TestCommandNotFound(t *testing.T) {
	c := NewCommand("benchtime-no-such-binary")
	assert.Error(t, c.Prepare(context.Background()))
}

func TestCommandRunWithoutPrepare(t *testing.T) {
	assert.Error(t, NewCommand("true").Run(context.Background()))
}

var _ Workload = (*Spin)(nil)
var _ Workload = (*Command)(nil)
var _ Exiter = (*Command)(nil)
var _ Iterator = (*Spin)(nil)
