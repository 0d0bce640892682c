package require

import (
	"fmt"
	"os"
	"testing"
)

func TestPassingChecks(t *testing.T) {
	Len(t, []int{1, 2, 3}, 3)
	NoError(t, nil)
	Equal(t, "a", "a")
	True(t, true)
	False(t, false)
	Nil(t, nil)
	NotNil(t, t)
	ErrorIs(t, fmt.Errorf("open: %w", os.ErrNotExist), os.ErrNotExist)
}

func TestFormatMsg(t *testing.T) {
	Equal(t, "", formatMsg(nil))
	Equal(t, "\nid: 3", formatMsg([]interface{}{"id: %d", 3}))
	Equal(t, "\n7", formatMsg([]interface{}{7}))
}
