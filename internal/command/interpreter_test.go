package command

import (
	"testing"

	"grace/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretNonCommandReturnsNil(t *testing.T) {
	assert.Nil(t, Interpret("hello grace"))
	assert.Nil(t, Interpret(""))
	assert.Nil(t, Interpret("   deploy / staging"))
}

func TestInterpretSpawnTargets(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/spawn mission-control", types.WorkspaceMissionControl},
		{"/spawn missions", types.WorkspaceMissionControl},
		{"/spawn governance", types.WorkspaceGovernance},
		{"/spawn approvals", types.WorkspaceGovernance},
		{"/spawn health", types.WorkspaceHealth},
		{"/spawn SANDBOX", types.WorkspaceSandbox},
	}
	for _, tt := range tests {
		res := Interpret(tt.input)
		require.NotNil(t, res, tt.input)
		assert.Equal(t, ActionSpawn, res.Action, tt.input)
		assert.Equal(t, tt.want, res.Arg, tt.input)
	}
}

func TestInterpretSpawnUnknownTarget(t *testing.T) {
	res := Interpret("/spawn unknownthing")
	require.NotNil(t, res)
	assert.Equal(t, ActionError, res.Action)
	assert.Contains(t, res.Err, "unknownthing")
}

func TestInterpretSpawnMissingArg(t *testing.T) {
	res := Interpret("/spawn")
	require.NotNil(t, res)
	assert.Equal(t, ActionError, res.Action)
	assert.Contains(t, res.Err, "Usage")
}

func TestInterpretUnknownCommand(t *testing.T) {
	res := Interpret("/frobnicate now")
	require.NotNil(t, res)
	assert.Equal(t, ActionError, res.Action)
	assert.Contains(t, res.Err, "/frobnicate")
}

func TestInterpretVoice(t *testing.T) {
	on := Interpret("/voice on")
	require.NotNil(t, on)
	assert.Equal(t, ActionVoice, on.Action)
	assert.Equal(t, "on", on.Arg)

	bad := Interpret("/voice loud")
	require.NotNil(t, bad)
	assert.Equal(t, ActionError, bad.Action)

	missing := Interpret("/voice")
	require.NotNil(t, missing)
	assert.Equal(t, ActionError, missing.Action)
}

func TestInterpretRecord(t *testing.T) {
	start := Interpret("/record start")
	require.NotNil(t, start)
	assert.Equal(t, ActionRecord, start.Action)
	assert.Equal(t, "start", start.Arg)

	bad := Interpret("/record maybe")
	require.NotNil(t, bad)
	assert.Equal(t, ActionError, bad.Action)
}

func TestInterpretApprovalCommands(t *testing.T) {
	approve := Interpret("/approve t1")
	require.NotNil(t, approve)
	assert.Equal(t, ActionApprove, approve.Action)
	assert.Equal(t, "t1", approve.Arg)

	decline := Interpret("/decline t2 too risky right now")
	require.NotNil(t, decline)
	assert.Equal(t, ActionDecline, decline.Action)
	assert.Equal(t, "t2", decline.Arg)
	assert.Equal(t, "too risky right now", decline.Rest)

	missing := Interpret("/approve")
	require.NotNil(t, missing)
	assert.Equal(t, ActionError, missing.Action)
}

func TestInterpretSimpleCommands(t *testing.T) {
	tests := map[string]Action{
		"/help":    ActionHelp,
		"/h":       ActionHelp,
		"/share":   ActionShare,
		"/sandbox": ActionSandbox,
		"/status":  ActionStatus,
		"/clear":   ActionClear,
		"/quit":    ActionQuit,
		"/exit":    ActionQuit,
		"/q":       ActionQuit,
	}
	for input, want := range tests {
		res := Interpret(input)
		require.NotNil(t, res, input)
		assert.Equal(t, want, res.Action, input)
	}
}

func TestInterpretTrimsWhitespace(t *testing.T) {
	res := Interpret("   /status   ")
	require.NotNil(t, res)
	assert.Equal(t, ActionStatus, res.Action)
}
