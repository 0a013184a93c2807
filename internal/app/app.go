package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/rbright/dictacore/internal/audio"
	"github.com/rbright/dictacore/internal/cli"
	"github.com/rbright/dictacore/internal/config"
	"github.com/rbright/dictacore/internal/core"
	"github.com/rbright/dictacore/internal/doctor"
	"github.com/rbright/dictacore/internal/ipc"
	"github.com/rbright/dictacore/internal/logging"
	"github.com/rbright/dictacore/internal/orchestrator"
	"github.com/rbright/dictacore/internal/version"
)

// Runner holds process-level dependencies used by command handlers.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Execute is the package entrypoint used by cmd/dictacore/main.go.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

// Execute parses CLI arguments, loads config/logging, and dispatches a command.
func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("dictacore"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("dictacore"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfg := config.Load()

	logger.Info("command start", "command", parsed.Command, "log", logRuntime.Path)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfg)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx, cfg)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandFinalize:
		return r.forwardOrFail(ctx, "finalize")
	case cli.CommandCancel:
		return r.forwardOrFail(ctx, "cancel")
	case cli.CommandPaste:
		return r.forwardOrFail(ctx, "paste")
	case cli.CommandRecord:
		return r.commandOwn(ctx, cfg, logger, "record")
	case cli.CommandSegment:
		return r.commandOwn(ctx, cfg, logger, "segment")
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandDevices prints discovered input devices and the current selection.
func (r Runner) commandDevices(ctx context.Context, cfg config.Config) int {
	devices, err := audio.ListInputDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	selected, err := audio.SelectInputDevice(ctx, cfg.AudioInput)
	selectedID := ""
	if err == nil {
		selectedID = selected.ID
	}

	for _, device := range devices {
		mark := " "
		if device.ID == selectedID {
			mark = "*"
		}
		fmt.Fprintf(r.Stdout, "%s id=%s | description=%q\n", mark, device.ID, device.Description)
	}

	return 0
}

// commandStatus queries the active owner (if any) and prints session state.
func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, "status")
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

// forwardOrFail forwards a command to the active owner and fails when no owner exists.
func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active dictacore session\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	if resp.Transcript != "" {
		fmt.Fprintln(r.Stdout, resp.Transcript)
	}
	return 0
}

// commandOwn starts a new owner session or forwards record/segment to an
// existing owner, the same single-instance pattern the teacher's toggle
// command uses.
func (r Runner) commandOwn(ctx context.Context, cfg config.Config, logger *slog.Logger, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.Transcript != "" {
			fmt.Fprintln(r.Stdout, resp.Transcript)
		}
		return 0
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			resp, _, forwardErr := tryForward(ctx, socketPath, command)
			if forwardErr != nil {
				fmt.Fprintf(r.Stderr, "error: %v\n", forwardErr)
				return 1
			}
			if resp.Transcript != "" {
				fmt.Fprintln(r.Stdout, resp.Transcript)
			}
			return 0
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	orch := buildOrchestrator()
	engine := core.New(orch, cfg.Paste.Shortcut, logger)
	handler := core.NewHandler(engine)

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, handler)
	}()

	started := handler.Handle(ctx, ipc.Request{Command: command})
	if !started.OK {
		serverCancel()
		<-serverErrCh
		fmt.Fprintf(r.Stderr, "error: %v\n", started.Error)
		return 1
	}

	// The owner stays alive, serving forwarded segment/finalize/status/cancel
	// calls from later CLI invocations, until the session this command
	// started reaches a terminal state: a completed one-shot record, a
	// finalized segmented session, or a cancel that leaves nothing pending.
	var final ipc.Response
	select {
	case final = <-handler.Terminal():
	case <-ctx.Done():
		final = ipc.Response{OK: false, Error: ctx.Err().Error()}
	}

	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	logger.Info("command complete", "command", command, "ok", final.OK, "state", final.State)

	if !final.OK {
		fmt.Fprintf(r.Stderr, "error: %v\n", final.Error)
		return 1
	}
	if final.Transcript != "" {
		fmt.Fprintln(r.Stdout, strings.TrimSpace(final.Transcript))
	}
	return 0
}

// buildOrchestrator wires provider adapters from environment-supplied keys
// and local model paths.
func buildOrchestrator() *orchestrator.Orchestrator {
	return orchestrator.FromEnv()
}

// tryForward attempts to send a command to an existing owner and classifies outcome.
//
// handled=false means there was no active owner to handle the request.
func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

// isSocketMissing reports whether forwarding failed because the owner socket is absent.
func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

// isConnectionRefused reports whether forwarding failed because no owner is listening.
func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
