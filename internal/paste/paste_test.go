package paste

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsSameWindow(t *testing.T) {
	require.True(t, isSameWindow("0x123", "0x123"))
	require.False(t, isSameWindow("0x123", "0x456"))
	require.False(t, isSameWindow("", "0x123"))
	require.False(t, isSameWindow("0x123", ""))
}

func TestIsNonPasteableWindowClass(t *testing.T) {
	require.True(t, isNonPasteableWindowClass("ConsoleWindowClass"))
	require.True(t, isNonPasteableWindowClass(" applicationframewindow "))
	require.False(t, isNonPasteableWindowClass("firefox"))
	require.False(t, isNonPasteableWindowClass(""))
}

func TestPasteShortcutDefaultsWhenUnset(t *testing.T) {
	c := New("")
	require.Equal(t, "CTRL,V,address:0x1", c.pasteShortcut("0x1"))
}

func TestPasteShortcutUsesConfigured(t *testing.T) {
	c := New("SUPER,V")
	require.Equal(t, "SUPER,V,address:0x1", c.pasteShortcut("0x1"))
}

func TestTryAutoPasteWithNoCapturedTargetFallsBack(t *testing.T) {
	c := New("CTRL,V")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	attempt := c.TryAutoPaste(ctx, "self")
	require.False(t, attempt.Pasted)
	require.Equal(t, "no_target_window", attempt.Reason)
}

func TestTryAutoPasteIsSingleShot(t *testing.T) {
	c := New("CTRL,V")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = c.TryAutoPaste(ctx, "self")
	require.Nil(t, c.target)

	second := c.TryAutoPaste(ctx, "self")
	require.False(t, second.Pasted)
	require.Equal(t, "no_target_window", second.Reason)
}

func TestTryAutoPasteRespectsCancelledContext(t *testing.T) {
	c := New("CTRL,V")
	c.target = nil

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempt := c.TryAutoPaste(ctx, "self")
	require.False(t, attempt.Pasted)
	require.Equal(t, "cancelled", attempt.Reason)
}
