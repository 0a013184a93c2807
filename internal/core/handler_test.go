package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/dictacore/internal/ipc"
)

func TestHandlerStatusDefaultsToIdle(t *testing.T) {
	handler := NewHandler(New(testOrchestrator(), "", nil))
	resp := handler.Handle(context.Background(), ipc.Request{Command: "status"})
	require.True(t, resp.OK)
	require.Equal(t, "idle", resp.State)
}

func TestHandlerCancelWithNothingActiveIsANoOp(t *testing.T) {
	handler := NewHandler(New(testOrchestrator(), "", nil))
	resp := handler.Handle(context.Background(), ipc.Request{Command: "cancel"})
	require.True(t, resp.OK)
	require.Equal(t, "nothing to cancel", resp.Message)
}

func TestHandlerFinalizeWithoutSessionFails(t *testing.T) {
	handler := NewHandler(New(testOrchestrator(), "", nil))
	resp := handler.Handle(context.Background(), ipc.Request{Command: "finalize"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "no active session")
}

func TestHandlerPasteWithNoCapturedTargetFallsBack(t *testing.T) {
	handler := NewHandler(New(testOrchestrator(), "CTRL,V", nil))
	resp := handler.Handle(context.Background(), ipc.Request{Command: "paste", SelfWindow: "self"})
	require.False(t, resp.OK)
	require.Equal(t, "no_target_window", resp.Reason)
}

func TestHandlerUnknownCommand(t *testing.T) {
	handler := NewHandler(New(testOrchestrator(), "", nil))
	resp := handler.Handle(context.Background(), ipc.Request{Command: "bogus"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "unknown command")
}

func TestHandlerCancelWithNothingActiveSignalsTerminal(t *testing.T) {
	handler := NewHandler(New(testOrchestrator(), "", nil))
	handler.Handle(context.Background(), ipc.Request{Command: "cancel"})

	select {
	case resp := <-handler.Terminal():
		require.True(t, resp.OK)
		require.Equal(t, "nothing to cancel", resp.Message)
	default:
		t.Fatal("expected cancel with no active session to signal Terminal")
	}
}

func TestHandlerCancelMidSegmentSessionDoesNotSignalTerminal(t *testing.T) {
	handler := NewHandler(New(testOrchestrator(), "", nil))

	// The first "segment" call opens a stitching session before it ever
	// touches real audio capture, so sessionActive flips true even when the
	// capture step itself errors out in a sandbox with no audio device.
	handler.Handle(context.Background(), ipc.Request{Command: "segment"})
	require.True(t, handler.sessionActive)

	resp := handler.Handle(context.Background(), ipc.Request{Command: "cancel"})
	require.True(t, resp.OK)
	require.Equal(t, "nothing to cancel", resp.Message)

	select {
	case <-handler.Terminal():
		t.Fatal("cancel with a session still open must not signal Terminal")
	default:
	}
}
