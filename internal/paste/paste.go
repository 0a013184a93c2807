// Package paste implements the single-shot auto-paste sequence: capture the
// foreground window before recording starts, then replay it after
// transcription to restore focus and dispatch a paste shortcut.
package paste

import (
	"context"
	"strings"
	"time"

	"github.com/rbright/dictacore/internal/hypr"
)

// waitBeforePaste is the settle delay observed before the first focus check,
// giving the foreground application time to regain input focus after the
// dictation shortcut released.
const waitBeforePaste = 150 * time.Millisecond

// nonPasteableWindowClasses lists window classes that never accept a
// synthesized paste keystroke (terminal/console hosts, shell frame chrome).
var nonPasteableWindowClasses = map[string]struct{}{
	"consolewindowclass":            {},
	"cascadia_hosting_window_class": {},
	"virtualconsoleclass":           {},
	"applicationframewindow":        {},
}

// Attempt is the result reported back to the shell for one paste call.
type Attempt struct {
	Pasted bool
	Reason string
}

func pasted() Attempt { return Attempt{Pasted: true} }

func fallback(reason string) Attempt { return Attempt{Pasted: false, Reason: reason} }

// Context holds the single foreground target captured before a recording
// starts. It is cleared after the first TryAutoPaste call regardless of
// outcome.
type Context struct {
	shortcut string
	target   *hypr.ActiveWindow
}

// New builds a paste context that replays the given shortcut (e.g. "CTRL,V").
func New(shortcut string) *Context {
	return &Context{shortcut: strings.TrimSpace(shortcut)}
}

// CaptureTarget records the current foreground window, unless it is the
// dictation shell's own window, in which case no target is recorded.
func (c *Context) CaptureTarget(ctx context.Context, selfWindowAddress string) {
	window, err := hypr.QueryActiveWindow(ctx)
	if err != nil {
		c.target = nil
		return
	}
	if isSameWindow(window.Address, selfWindowAddress) {
		c.target = nil
		return
	}

	captured := window
	c.target = &captured
}

// TryAutoPaste waits briefly, verifies the captured target still holds (or
// can be restored to) foreground focus, rejects non-pasteable window
// classes, then dispatches a paste shortcut. There is no separate
// focused-control check; the exact address match stands in for it. The target is cleared after this call regardless of outcome.
func (c *Context) TryAutoPaste(ctx context.Context, selfWindowAddress string) Attempt {
	target := c.target
	c.target = nil

	select {
	case <-time.After(waitBeforePaste):
	case <-ctx.Done():
		return fallback("cancelled")
	}

	if target == nil {
		return fallback("no_target_window")
	}

	current, err := hypr.QueryActiveWindow(ctx)
	if err != nil {
		return fallback("no_foreground_window")
	}

	if isSameWindow(current.Address, selfWindowAddress) {
		if err := hypr.SendShortcut(ctx, "focuswindow address:"+target.Address); err != nil {
			return fallback("restore_focus_failed")
		}

		select {
		case <-time.After(60 * time.Millisecond):
		case <-ctx.Done():
			return fallback("cancelled")
		}

		current, err = hypr.QueryActiveWindow(ctx)
		if err != nil {
			return fallback("no_foreground_window")
		}
	}

	if !isSameWindow(current.Address, target.Address) {
		return fallback("focus_changed")
	}

	if isNonPasteableWindowClass(current.Class) || isNonPasteableWindowClass(current.InitialClass) {
		return fallback("unsupported_target_class:" + current.Class)
	}

	// Hyprland exposes no GetGUIThreadInfo equivalent for a focused-control
	// check; an exact address match against the captured target is the
	// strongest available signal that a control there can still receive input.
	if err := hypr.SendShortcut(ctx, c.pasteShortcut(target.Address)); err != nil {
		return fallback("send_input_failed")
	}

	return pasted()
}

func (c *Context) pasteShortcut(address string) string {
	shortcut := c.shortcut
	if shortcut == "" {
		shortcut = "CTRL,V"
	}
	return shortcut + ",address:" + address
}

func isSameWindow(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && b != "" && a == b
}

func isNonPasteableWindowClass(class string) bool {
	_, ok := nonPasteableWindowClasses[strings.ToLower(strings.TrimSpace(class))]
	return ok
}
