package hub

import (
	"fmt"
	"testing"

	"grace/internal/types"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func snapshotWith(artifacts []types.Artifact, missions []types.Mission, approvals []types.Approval) *types.Snapshot {
	return &types.Snapshot{
		RecentArtifacts:  artifacts,
		ActiveMissions:   missions,
		PendingApprovals: approvals,
	}
}

func TestReconcileSurfacesUnseenEntities(t *testing.T) {
	r := NewReconciler(NewRegistry(), 3)

	snap := snapshotWith(
		[]types.Artifact{{ID: "a1", Content: "c1"}},
		[]types.Mission{{ID: "m1", Title: "Ship"}},
		[]types.Approval{{TraceID: "t1"}},
	)

	got := r.Reconcile(snap)
	want := NewEntities{
		Artifacts: []types.Artifact{{ID: "a1", Content: "c1"}},
		Missions:  []types.Mission{{ID: "m1", Title: "Ship"}},
		Approvals: []types.Approval{{TraceID: "t1"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reconcile() mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	// The same snapshot fetched N times in a row surfaces entities only on
	// the first call.
	r := NewReconciler(NewRegistry(), 3)
	snap := snapshotWith(
		[]types.Artifact{{ID: "a1"}},
		[]types.Mission{{ID: "m1", Title: "Ship"}},
		[]types.Approval{{TraceID: "t1"}},
	)

	first := r.Reconcile(snap)
	assert.Equal(t, 3, first.Total())

	for i := 0; i < 5; i++ {
		again := r.Reconcile(snap)
		assert.True(t, again.Empty(), "pass %d should surface nothing", i+2)
	}
}

func TestReconcilePreservesSnapshotOrder(t *testing.T) {
	r := NewReconciler(NewRegistry(), 3)
	snap := snapshotWith(nil, nil, []types.Approval{
		{TraceID: "t3"}, {TraceID: "t2"}, {TraceID: "t1"},
	})

	got := r.Reconcile(snap)
	var order []string
	for _, a := range got.Approvals {
		order = append(order, a.TraceID)
	}
	assert.Equal(t, []string{"t3", "t2", "t1"}, order)
}

func TestReconcileBoundsColdStartFlood(t *testing.T) {
	// Only the first maxPerKind entries are inspected, so a deep backlog
	// cannot flood the conversation on a cold start.
	r := NewReconciler(NewRegistry(), 3)

	var artifacts []types.Artifact
	for i := 0; i < 20; i++ {
		artifacts = append(artifacts, types.Artifact{ID: fmt.Sprintf("a%d", i)})
	}

	got := r.Reconcile(snapshotWith(artifacts, nil, nil))
	assert.Len(t, got.Artifacts, 3)
	assert.Equal(t, "a0", got.Artifacts[0].ID)
}

func TestReconcileNilSnapshot(t *testing.T) {
	reg := NewRegistry()
	r := NewReconciler(reg, 3)

	got := r.Reconcile(nil)
	assert.True(t, got.Empty())
	assert.Equal(t, 0, reg.Count(types.KindArtifacts))
}

func TestReconcileMissingListsTreatedAsEmpty(t *testing.T) {
	r := NewReconciler(NewRegistry(), 3)
	got := r.Reconcile(&types.Snapshot{})
	assert.True(t, got.Empty())
}

func TestReconcileApprovalReentryAfterForget(t *testing.T) {
	// Resolved approvals are the one kind that can re-enter: after Forget,
	// the same traceId is treated as new again.
	reg := NewRegistry()
	r := NewReconciler(reg, 3)
	snap := snapshotWith(nil, nil, []types.Approval{{TraceID: "t1"}})

	assert.Len(t, r.Reconcile(snap).Approvals, 1)
	assert.True(t, r.Reconcile(snap).Empty())

	reg.Forget(types.KindApprovals, "t1")

	resurfaced := r.Reconcile(snap)
	assert.Len(t, resurfaced.Approvals, 1)
	assert.Equal(t, "t1", resurfaced.Approvals[0].TraceID)
}

func TestReconcileArtifactWithoutIDAcrossPolls(t *testing.T) {
	// Same logical artifact, no id field on first sight: the second poll
	// must not re-surface it even if the backend now includes an id-less
	// identical representation.
	r := NewReconciler(NewRegistry(), 3)

	poll1 := snapshotWith([]types.Artifact{{Content: "finding X", Source: "researcher"}}, nil, nil)
	poll2 := snapshotWith([]types.Artifact{{Content: "finding X", Source: "researcher"}}, nil, nil)

	assert.Len(t, r.Reconcile(poll1).Artifacts, 1)
	assert.True(t, r.Reconcile(poll2).Empty())
}
