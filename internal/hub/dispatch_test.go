package hub

import (
	"testing"

	"grace/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type openRecorder struct {
	kinds []string
}

func (o *openRecorder) open(kind string, _ map[string]interface{}) {
	o.kinds = append(o.kinds, kind)
}

func TestDispatchRendersEachKind(t *testing.T) {
	rec := &openRecorder{}
	d := NewDispatcher(NewTabSet(), Callbacks{OnCreateWorkspace: rec.open}, true)

	events := d.Dispatch(NewEntities{
		Artifacts: []types.Artifact{{ID: "a1", Content: "learned", Source: "researcher", Confidence: 0.8, Tags: []string{"k8s"}}},
		Missions:  []types.Mission{{ID: "m1", Title: "Ship v2", Status: "running", Description: "roll out"}},
		Approvals: []types.Approval{{TraceID: "t1", Agent: "deployer", ActionType: "deploy", GovernanceTier: "high", Reason: "prod"}},
	})

	// 3 entity events plus 2 auto-open confirmations.
	require.Len(t, events, 5)

	assert.Equal(t, types.KindArtifacts, events[0].Kind)
	assert.Contains(t, events[0].Content, "researcher")

	assert.Equal(t, types.KindMissions, events[1].Kind)
	assert.Contains(t, events[1].Content, "Ship v2")
	assert.Contains(t, events[2].Content, types.WorkspaceMissionControl)

	assert.Equal(t, types.KindApprovals, events[3].Kind)
	assert.Equal(t, "t1", events[3].TraceID)
	require.NotNil(t, events[3].Approval)
	assert.Equal(t, "t1", events[3].Approval.TraceID)
	assert.Contains(t, events[4].Content, types.WorkspaceGovernance)

	assert.Equal(t, []string{types.WorkspaceMissionControl, types.WorkspaceGovernance}, rec.kinds)
}

func TestDispatchAutoOpenFiresAtMostOncePerKind(t *testing.T) {
	// First mission ever seen opens Mission Control; the 2nd through Nth
	// missions surface as cards only.
	rec := &openRecorder{}
	d := NewDispatcher(NewTabSet(), Callbacks{OnCreateWorkspace: rec.open}, true)

	first := d.Dispatch(NewEntities{Missions: []types.Mission{{ID: "m1", Title: "one"}}})
	require.Len(t, first, 2) // card + confirmation

	second := d.Dispatch(NewEntities{Missions: []types.Mission{{ID: "m2", Title: "two"}}})
	require.Len(t, second, 1) // card only

	assert.Equal(t, []string{types.WorkspaceMissionControl}, rec.kinds)
}

func TestDispatchAutoOpenDisabled(t *testing.T) {
	rec := &openRecorder{}
	d := NewDispatcher(NewTabSet(), Callbacks{OnCreateWorkspace: rec.open}, false)

	events := d.Dispatch(NewEntities{Missions: []types.Mission{{ID: "m1", Title: "one"}}})
	require.Len(t, events, 1)
	assert.Empty(t, rec.kinds)
}

func TestDispatchEmptyInput(t *testing.T) {
	d := NewDispatcher(NewTabSet(), Callbacks{}, true)
	assert.Nil(t, d.Dispatch(NewEntities{}))
}

func TestDispatchArtifactsNeverAutoOpen(t *testing.T) {
	rec := &openRecorder{}
	d := NewDispatcher(NewTabSet(), Callbacks{OnCreateWorkspace: rec.open}, true)

	events := d.Dispatch(NewEntities{Artifacts: []types.Artifact{{ID: "a1", Content: "c"}}})
	require.Len(t, events, 1)
	assert.Empty(t, rec.kinds)
}

func TestDispatchNilCallbackIsSafe(t *testing.T) {
	d := NewDispatcher(NewTabSet(), Callbacks{}, true)
	events := d.Dispatch(NewEntities{Approvals: []types.Approval{{TraceID: "t1"}}})
	require.Len(t, events, 2)
}
