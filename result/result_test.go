package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultRoundTrip(t *testing.T) {
	ok := Ok(42)
	assert.True(t, ok.IsOk())
	assert.False(t, ok.IsErr())
	assert.Equal(t, 42, ok.Value())
	assert.Equal(t, 42, ok.ValueOr(0))

	doubled := Map(ok, func(v int) int { return v * 2 })
	assert.Equal(t, Ok(84), doubled)

	e := New(Resource, 1, "resource exhausted")
	failed := Err[int](e)
	assert.True(t, failed.IsErr())
	assert.Equal(t, 0, failed.ValueOr(0))

	failedDoubled := Map(failed, func(v int) int { return v * 2 })
	assert.True(t, failedDoubled.IsErr())
	assert.Equal(t, e, failedDoubled.ErrorValue())
}

func TestAndThenShortCircuits(t *testing.T) {
	e := New(Validation, 2, "bad state")
	failed := Err[int](e)

	called := false
	out := AndThen(failed, func(v int) Result[string] {
		called = true
		return Ok("unreachable")
	})

	assert.False(t, called)
	assert.True(t, out.IsErr())
	assert.Equal(t, e, out.ErrorValue())
}

func TestAndThenChains(t *testing.T) {
	ok := Ok(10)
	out := AndThen(ok, func(v int) Result[string] {
		return Ok("value-is-large")
	})
	assert.True(t, out.IsOk())
	assert.Equal(t, "value-is-large", out.Value())
}

func TestMapErr(t *testing.T) {
	e := New(Hardware, 3, "device busy")
	failed := Err[int](e)

	remapped := MapErr(failed, func(e Error) Error {
		return e.WithContext("retry exhausted")
	})
	assert.Equal(t, "retry exhausted", remapped.ErrorValue().Context)

	ok := Ok(1)
	unchanged := MapErr(ok, func(e Error) Error {
		t.Fatal("MapErr must not invoke fn on Ok")
		return e
	})
	assert.Equal(t, ok, unchanged)
}

func TestErrorEqualityIgnoresMessageAndContext(t *testing.T) {
	a := New(Driver, 7, "not loaded").WithContext("iface=audio")
	b := New(Driver, 7, "different message")
	assert.True(t, a.Equal(b))

	c := New(Driver, 8, "not loaded")
	assert.False(t, a.Equal(c))
}

func TestErrorID(t *testing.T) {
	e := New(Configuration, 0x10, "bad param")
	id := e.ID()
	assert.Equal(t, (uint32(Configuration)<<24)|0x10, id)
	assert.Len(t, e.IDHex(), 8)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying syscall failure")
	e := Wrap(Internal, 99, "probe failed", cause)
	assert.Error(t, e.Cause())
	assert.Contains(t, e.Cause().Error(), "underlying syscall failure")
	// equality still ignores the cause chain
	assert.True(t, e.Equal(New(Internal, 99, "probe failed")))
}

func TestShortID(t *testing.T) {
	id := ShortID(0x0000000012345678)
	assert.Len(t, id, 8)
	assert.Equal(t, "12345678", id)
}
