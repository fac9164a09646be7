// Package command parses the slash-command language typed into the
// dashboard. It is a flat table-driven dispatcher, deliberately not a
// general parser: no nesting, no quoting, no escaping.
package command

import (
	"fmt"
	"strings"

	"grace/internal/logging"
	"grace/internal/types"
)

// Action identifies what the engine or shell should do with a parsed command.
type Action string

const (
	ActionSpawn   Action = "spawn"   // Open a workspace panel
	ActionHelp    Action = "help"    // Show the command table
	ActionVoice   Action = "voice"   // Toggle voice responses on|off
	ActionShare   Action = "share"   // Open the share panel
	ActionRecord  Action = "record"  // Toggle session recording start|stop
	ActionSandbox Action = "sandbox" // Open the sandbox panel
	ActionStatus  Action = "status"  // Show engine status
	ActionClear   Action = "clear"   // Clear the visible transcript
	ActionQuit    Action = "quit"    // Exit the dashboard
	ActionApprove Action = "approve" // Resolve an approval: /approve <traceId>
	ActionDecline Action = "decline" // Resolve an approval: /decline <traceId> [reason]
	ActionError   Action = "error"   // Unknown command or bad argument
)

// Result is one interpreted command. When Action is ActionError, Err holds
// the user-facing message; the engine surfaces it as an inline error event,
// never as a silent no-op.
type Result struct {
	Action Action
	Arg    string // First argument (e.g. spawn target, trace id)
	Rest   string // Remaining free text (e.g. decline reason)
	Err    string
}

// spawnTargets maps /spawn arguments to workspace kinds. Aliases cover the
// names users actually type.
var spawnTargets = map[string]string{
	"mission-control": types.WorkspaceMissionControl,
	"missions":        types.WorkspaceMissionControl,
	"governance":      types.WorkspaceGovernance,
	"approvals":       types.WorkspaceGovernance,
	"health":          types.WorkspaceHealth,
	"share":           types.WorkspaceShare,
	"sandbox":         types.WorkspaceSandbox,
}

// SpawnTargetNames returns the canonical spawn target list for help text.
func SpawnTargetNames() []string {
	return []string{"mission-control", "governance", "health", "share", "sandbox"}
}

// Interpret parses raw input. Returns nil when the input is not a command
// (does not start with "/"); such input flows to chat instead.
func Interpret(raw string) *Result {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "/") {
		return nil
	}

	fields := strings.Fields(trimmed)
	name := strings.TrimPrefix(fields[0], "/")
	args := fields[1:]

	logging.Commands("interpret: /%s (%d args)", name, len(args))

	switch name {
	case "spawn":
		if len(args) == 0 {
			return errResult("Usage: `/spawn <%s>`", strings.Join(SpawnTargetNames(), "|"))
		}
		target, ok := spawnTargets[strings.ToLower(args[0])]
		if !ok {
			return errResult("Unknown spawn target `%s`. Try one of: %s", args[0], strings.Join(SpawnTargetNames(), ", "))
		}
		return &Result{Action: ActionSpawn, Arg: target}

	case "help", "h":
		return &Result{Action: ActionHelp}

	case "voice":
		if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
			return errResult("Usage: `/voice on|off`")
		}
		return &Result{Action: ActionVoice, Arg: args[0]}

	case "share":
		return &Result{Action: ActionShare}

	case "record":
		if len(args) == 0 || (args[0] != "start" && args[0] != "stop") {
			return errResult("Usage: `/record start|stop`")
		}
		return &Result{Action: ActionRecord, Arg: args[0]}

	case "sandbox":
		return &Result{Action: ActionSandbox}

	case "status":
		return &Result{Action: ActionStatus}

	case "clear":
		return &Result{Action: ActionClear}

	case "quit", "exit", "q":
		return &Result{Action: ActionQuit}

	case "approve":
		if len(args) == 0 {
			return errResult("Usage: `/approve <traceId>`")
		}
		return &Result{Action: ActionApprove, Arg: args[0]}

	case "decline":
		if len(args) == 0 {
			return errResult("Usage: `/decline <traceId> [reason]`")
		}
		return &Result{Action: ActionDecline, Arg: args[0], Rest: strings.Join(args[1:], " ")}

	default:
		return errResult("Unknown command `/%s`. Type `/help` for the command list.", name)
	}
}

func errResult(format string, args ...interface{}) *Result {
	return &Result{Action: ActionError, Err: fmt.Sprintf(format, args...)}
}

// HelpText is the markdown command table rendered by /help.
const HelpText = `## Available Commands

| Command | Description |
|---------|-------------|
| /help | Show this help message |
| /spawn <target> | Open a workspace panel (mission-control, governance, health, share, sandbox) |
| /approve <traceId> | Approve a pending governance request |
| /decline <traceId> [reason] | Decline a pending governance request |
| /voice on\|off | Toggle spoken responses |
| /record start\|stop | Toggle session recording |
| /share | Open the share panel |
| /sandbox | Open the sandbox panel |
| /status | Show engine status |
| /clear | Clear the visible transcript |
| /quit, /exit, /q | Exit the dashboard |

## Natural Language
Anything that does not start with a slash is sent to Grace as chat.

## Tips
- **Enter** to send a message
- **Ctrl+C** or **Esc** to exit
- Use **up/down** to scroll history
`
