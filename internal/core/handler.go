package core

import (
	"context"
	"sync"

	"github.com/rbright/dictacore/internal/ipc"
)

// mode distinguishes the owning session's current dictation style: a
// standalone one-shot recording (record) from a segmented session that
// accumulates stitched text across repeated key presses (segment).
type mode int

const (
	modeNone mode = iota
	modeRecord
	modeSegment
)

// Handler adapts Engine to ipc.Handler, translating the shell's small
// command set (record/segment/finalize/paste/cancel/status) into Engine
// calls. It owns the recording/session-mode bookkeeping the wire protocol
// needs; Engine itself knows nothing about commands.
type Handler struct {
	engine *Engine

	mu            sync.Mutex
	active        mode
	sessionActive bool

	terminal chan ipc.Response
}

// NewHandler builds an IPC handler bound to one Engine instance, the same
// instance the owning process also uses for its own in-process calls.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine, terminal: make(chan ipc.Response, 1)}
}

var _ ipc.Handler = (*Handler)(nil)

// Terminal fires exactly once with the response that ends the owning
// process's reason for existing: a completed one-shot record, a finalized
// session, or a cancel that leaves nothing pending. The owning process
// waits on this to know when it may release the socket and exit; commands
// forwarded from other CLI invocations never block on it.
func (h *Handler) Terminal() <-chan ipc.Response {
	return h.terminal
}

func (h *Handler) signalTerminal(resp ipc.Response) {
	select {
	case h.terminal <- resp:
	default:
	}
}

// Handle dispatches one IPC request to the bound engine.
func (h *Handler) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "record":
		return h.toggleRecord(ctx, req.SelfWindow)
	case "segment":
		return h.toggleSegment(ctx, req.SelfWindow)
	case "finalize":
		return h.finalize()
	case "paste":
		return h.paste(ctx, req.SelfWindow)
	case "cancel":
		return h.cancel()
	case "status":
		return h.status()
	default:
		return ipc.Response{OK: false, Error: "unknown command: " + req.Command}
	}
}

func (h *Handler) toggleRecord(ctx context.Context, selfWindow string) ipc.Response {
	h.mu.Lock()
	recording := h.active == modeRecord
	h.mu.Unlock()

	if recording {
		buffer, err := h.engine.StopRecording()
		h.mu.Lock()
		h.active = modeNone
		h.mu.Unlock()
		if err != nil {
			return ipc.Response{OK: false, Error: err.Error()}
		}

		transcript, err := h.engine.TranscribeAudio(ctx, buffer)
		if err != nil {
			resp := ipc.Response{OK: false, State: "idle", Error: err.Error()}
			h.signalTerminal(resp)
			return resp
		}
		resp := ipc.Response{OK: true, State: "idle", Transcript: transcript.Text, Confidence: transcript.Confidence}
		h.signalTerminal(resp)
		return resp
	}

	if err := h.engine.StartRecording(ctx, selfWindow); err != nil {
		return ipc.Response{OK: false, Error: err.Error()}
	}
	h.mu.Lock()
	h.active = modeRecord
	h.mu.Unlock()
	return ipc.Response{OK: true, State: "recording"}
}

func (h *Handler) toggleSegment(ctx context.Context, selfWindow string) ipc.Response {
	h.mu.Lock()
	recording := h.active == modeSegment
	hasSession := h.sessionActive
	h.mu.Unlock()

	if recording {
		buffer, err := h.engine.StopRecording()
		h.mu.Lock()
		h.active = modeNone
		h.mu.Unlock()
		if err != nil {
			return ipc.Response{OK: false, Error: err.Error()}
		}

		segment, err := h.engine.AddAudioSegment(ctx, buffer)
		if err != nil {
			return ipc.Response{OK: false, State: "idle", Error: err.Error()}
		}
		return ipc.Response{
			OK:         true,
			State:      "idle",
			SegmentID:  segment.SegmentID,
			Transcript: segment.Transcript.Text,
			Confidence: segment.Transcript.Confidence,
			IsFinal:    segment.IsFinal,
		}
	}

	if !hasSession {
		sessionID, err := h.engine.StartRecordingSession()
		if err != nil {
			return ipc.Response{OK: false, Error: err.Error()}
		}
		h.mu.Lock()
		h.sessionActive = true
		h.mu.Unlock()
		_ = sessionID
	}

	if err := h.engine.StartRecording(ctx, selfWindow); err != nil {
		return ipc.Response{OK: false, Error: err.Error()}
	}
	h.mu.Lock()
	h.active = modeSegment
	h.mu.Unlock()
	return ipc.Response{OK: true, State: "recording"}
}

func (h *Handler) finalize() ipc.Response {
	h.mu.Lock()
	hasSession := h.sessionActive
	h.sessionActive = false
	h.mu.Unlock()

	if !hasSession {
		return ipc.Response{OK: false, Error: "no active session"}
	}

	result, err := h.engine.FinalizeRecordingSession()
	if err != nil {
		resp := ipc.Response{OK: false, Error: err.Error()}
		h.signalTerminal(resp)
		return resp
	}

	resp := ipc.Response{
		OK:                true,
		State:             "idle",
		Transcript:        result.FullText,
		SegmentCount:      result.SegmentCount,
		TotalDurationSecs: result.TotalDurationSecs,
	}
	h.signalTerminal(resp)
	return resp
}

func (h *Handler) paste(ctx context.Context, selfWindow string) ipc.Response {
	attempt := h.engine.PasteText(ctx, selfWindow)
	return ipc.Response{OK: attempt.Pasted, Pasted: attempt.Pasted, Reason: attempt.Reason}
}

// cancel stops whatever recording is in flight. It signals the terminal
// channel only when no session remains pending afterward: a cancelled
// one-shot record, or a cancel with nothing active. Cancelling a single
// segment mid-session leaves the session open for further segment/finalize
// calls, so the owner keeps serving.
func (h *Handler) cancel() ipc.Response {
	h.mu.Lock()
	active := h.active
	h.active = modeNone
	hasSession := h.sessionActive
	h.mu.Unlock()

	if active == modeNone {
		resp := ipc.Response{OK: true, State: "idle", Message: "nothing to cancel"}
		if !hasSession {
			h.signalTerminal(resp)
		}
		return resp
	}

	if _, err := h.engine.StopRecording(); err != nil {
		resp := ipc.Response{OK: false, Error: err.Error()}
		if !hasSession {
			h.signalTerminal(resp)
		}
		return resp
	}
	resp := ipc.Response{OK: true, State: "idle", Message: "cancelled"}
	if !hasSession {
		h.signalTerminal(resp)
	}
	return resp
}

func (h *Handler) status() ipc.Response {
	h.mu.Lock()
	active := h.active
	hasSession := h.sessionActive
	h.mu.Unlock()

	state := "idle"
	if active != modeNone {
		state = "recording"
	}

	resp := ipc.Response{OK: true, State: state}
	if hasSession {
		progress := h.engine.GetSessionProgress()
		resp.SegmentCount = progress.SegmentCount
		resp.TotalDurationSecs = progress.TotalDurationSecs
		resp.CurrentText = progress.CurrentText
	}
	return resp
}
