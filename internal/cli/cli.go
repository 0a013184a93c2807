package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandRecord   Command = "record"
	CommandSegment  Command = "segment"
	CommandFinalize Command = "finalize"
	CommandPaste    Command = "paste"
	CommandCancel   Command = "cancel"
	CommandStatus   Command = "status"
	CommandDevices  Command = "devices"
	CommandDoctor   Command = "doctor"
	CommandVersion  Command = "version"
	CommandHelp     Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRecord:   {},
	CommandSegment:  {},
	CommandFinalize: {},
	CommandPaste:    {},
	CommandCancel:   {},
	CommandStatus:   {},
	CommandDevices:  {},
	CommandDoctor:   {},
	CommandVersion:  {},
	CommandHelp:     {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  record    Toggle push-to-talk recording (start, or stop+transcribe)
  segment   Add the current recording as a segment to the active session
  finalize  Finalize the active session and return the stitched transcript
  paste     Replay the last captured window and dispatch the paste shortcut
  cancel    Abandon the active recording or session without committing
  status    Print current state
  devices   List available input devices
  doctor    Run provider/model/environment readiness checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH   Config file path (accepted but not read; env drives config)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
