package scripting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"
)

func TestNewSandboxedState_UnsafeLibsNil(t *testing.T) {
	L := NewSandboxedState()
	defer L.Close()
	for _, name := range []string{"os", "io", "debug"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_DangerousGlobalsNil(t *testing.T) {
	L := NewSandboxedState()
	defer L.Close()
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "expected %s to be nil", name)
	}
}

func TestNewSandboxedState_SafeLibsAvailable(t *testing.T) {
	L := NewSandboxedState()
	defer L.Close()
	err := L.DoString(`
		local x = math.floor(7 / 2)
		assert(x == 3, "math.floor failed")
		local s = string.upper("masques")
		assert(s == "MASQUES", "string.upper failed")
	`)
	assert.NoError(t, err)
}

func TestRunLimited_StateUsableAfterLimit(t *testing.T) {
	L := NewSandboxedState()
	defer L.Close()

	err := runLimited(context.Background(), L, 10, func() error { return L.DoString(`while true do end`) })
	require.Error(t, err)

	err = runLimited(context.Background(), L, 0, func() error { return L.DoString(`x = 1 + 1`) })
	assert.NoError(t, err)
}

func TestRunLimited_ParentCancellation(t *testing.T) {
	L := NewSandboxedState()
	defer L.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runLimited(ctx, L, 0, func() error { return L.DoString(`local n = 0 for i = 1, 10 do n = n + i end`) })
	assert.Error(t, err)
}

func TestProperty_InstructionLimitAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(t, "limit")
		L := NewSandboxedState()
		defer L.Close()
		err := runLimited(context.Background(), L, limit, func() error { return L.DoString(`while true do end`) })
		if err == nil {
			t.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}
