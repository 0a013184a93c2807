// Package ipc provides single-instance unix-socket protocol and server/client helpers.
package ipc

// Request is one command sent over the local unix-domain socket.
type Request struct {
	Command string `json:"command"`
	// SelfWindow identifies the shell's own window, so the owner session can
	// tell its foreground window apart from the paste target it captured.
	SelfWindow string `json:"self_window,omitempty"`
}

// Response is the normalized command outcome returned by the owner session.
// Fields beyond State/Message/Error are populated only by the commands that
// produce them (record/segment/finalize/status/paste); everything else is the
// zero value and omitted.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	SessionID         string  `json:"session_id,omitempty"`
	SegmentID         string  `json:"segment_id,omitempty"`
	Transcript        string  `json:"transcript,omitempty"`
	Confidence        float64 `json:"confidence,omitempty"`
	IsFinal           bool    `json:"is_final,omitempty"`
	SegmentCount      uint32  `json:"segment_count,omitempty"`
	TotalDurationSecs float64 `json:"total_duration_secs,omitempty"`
	CurrentText       string  `json:"current_text,omitempty"`

	Pasted bool   `json:"pasted,omitempty"`
	Reason string `json:"reason,omitempty"`
}
