// Package require has the checks from github.com/alecthomas/assert that
// tests use most, plus ErrorIs. Every check stops the test on failure.
package require

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert"
)

// Len asserts that the specified object has specific length.
//
//	require.Len(t, mySlice, 3)
func Len(t *testing.T, object interface{}, length int, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Len(t, object, length, msgAndArgs...)
}

// NoError asserts that a function returned no error (i.e. `nil`).
func NoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	assert.NoError(t, err, msgAndArgs...)
}

// ErrorIs asserts that errors.Is(err, target) is true.
//
//	require.ErrorIs(t, err, flatdb.ErrRecordNotFound)
func ErrorIs(t *testing.T, err error, target error, msgAndArgs ...interface{}) {
	t.Helper()
	if errors.Is(err, target) {
		return
	}
	t.Fatalf("expected error matching '%v', got '%v'%s", target, err, formatMsg(msgAndArgs))
}

func formatMsg(msgAndArgs []interface{}) string {
	if len(msgAndArgs) == 0 {
		return ""
	}
	format, ok := msgAndArgs[0].(string)
	if !ok {
		return "\n" + fmt.Sprint(msgAndArgs...)
	}
	return "\n" + fmt.Sprintf(format, msgAndArgs[1:]...)
}

// Equal asserts that two objects are equal.
//
//	require.Equal(t, 123, 123)
func Equal(t *testing.T, expected interface{}, actual interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Equal(t, expected, actual, msgAndArgs...)
}

func True(t *testing.T, value bool, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, value, msgAndArgs...)
}

func False(t *testing.T, value bool, msgAndArgs ...interface{}) {
	t.Helper()
	assert.False(t, value, msgAndArgs...)
}

func Nil(t *testing.T, object interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Nil(t, object, msgAndArgs...)
}

func NotNil(t *testing.T, object interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	assert.NotNil(t, object, msgAndArgs...)
}
