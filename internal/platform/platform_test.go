package platform

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/benchtime/internal/diag"
)

func TestValidateNative(t *testing.T) {
	log := diag.NewLog(nil, 0)

	res, err := Validate(NativeWidths(), log, PolicyFail)

	require.NoError(t, err)
	assert.Equal(t, 1, res.PortableID)
	assert.True(t, res.Valid())
	assert.Empty(t, res.Warnings)
	assert.Zero(t, log.Count())
}

func TestValidateMismatch(t *testing.T) {
	native := NativeWidths()
	tests := []struct {
		name  string
		w     Widths
		wants []string
	}{
		{
			name:  "pointer int too narrow",
			w:     Widths{Pointer: native.Pointer, PointerInt: native.Pointer / 2, Uint32: 4},
			wants: []string{MsgPointerInt},
		},
		{
			name:  "uint32 is 64 bits",
			w:     Widths{Pointer: native.Pointer, PointerInt: native.Pointer, Uint32: 8},
			wants: []string{MsgUint32},
		},
		{
			name:  "both",
			w:     Widths{Pointer: 8, PointerInt: 4, Uint32: 2},
			wants: []string{MsgPointerInt, MsgUint32},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := diag.NewLog(nil, 0)

			res, err := Validate(tt.w, log, PolicyWarn)

			require.NoError(t, err)
			assert.Equal(t, 0, res.PortableID)
			assert.Equal(t, tt.wants, res.Warnings)
			entries := log.Since(0)
			require.Len(t, entries, len(tt.wants))
			for i, e := range entries {
				assert.Equal(t, diag.SeverityWarning, e.Severity)
				assert.Equal(t, tt.wants[i], e.Message)
			}
		})
	}
}

func TestValidateFailPolicy(t *testing.T) {
	log := diag.NewLog(nil, 0)

	res, err := Validate(Widths{Pointer: 8, PointerInt: 8, Uint32: 8}, log, PolicyFail)

	assert.ErrorIs(t, err, ErrPlatformMismatch)
	assert.Equal(t, 0, res.PortableID)
	assert.Equal(t, 1, log.Warnings())
}

func TestFini(t *testing.T) {
	res, err := Validate(NativeWidths(), nil, PolicyWarn)
	require.NoError(t, err)
	require.True(t, res.Valid())

	Fini(&res)

	assert.Equal(t, 0, res.PortableID)
	assert.False(t, res.Valid())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyWarn, p)

	p, err = ParsePolicy("FAIL")
	require.NoError(t, err)
	assert.Equal(t, PolicyFail, p)
	assert.Equal(t, "fail", p.String())

	_, err = ParsePolicy("abort")
	assert.Error(t, err)
}

func TestDetect(t *testing.T) {
	caps := Detect(context.Background())

	assert.Equal(t, runtime.GOOS, caps.OS)
	assert.Equal(t, runtime.GOARCH, caps.Arch)
	assert.Equal(t, NativeWidths(), caps.Widths)
	assert.Positive(t, caps.LogicalCores)
	assert.Equal(t, DefaultNumContexts, caps.NumContexts)
}
