package hub

import (
	"grace/internal/logging"
	"grace/internal/types"
)

// NewEntities is the result of one reconciliation pass: the entities per
// kind that were not previously seen, in snapshot order (most-recent-first
// from the backend).
type NewEntities struct {
	Artifacts []types.Artifact
	Missions  []types.Mission
	Approvals []types.Approval
}

// Empty reports whether the pass surfaced nothing.
func (n NewEntities) Empty() bool {
	return len(n.Artifacts) == 0 && len(n.Missions) == 0 && len(n.Approvals) == 0
}

// Total returns the number of newly surfaced entities across kinds.
func (n NewEntities) Total() int {
	return len(n.Artifacts) + len(n.Missions) + len(n.Approvals)
}

// Reconciler computes new entities from a snapshot and the identity
// registry. It is the single MarkSeen writer.
type Reconciler struct {
	registry *Registry

	// maxPerKind bounds how many entries per kind one pass inspects, so a
	// cold start against a deep backlog cannot flood the conversation.
	maxPerKind int
}

// NewReconciler creates a reconciler over the given registry.
// maxPerKind <= 0 falls back to 3.
func NewReconciler(registry *Registry, maxPerKind int) *Reconciler {
	if maxPerKind <= 0 {
		maxPerKind = 3
	}
	return &Reconciler{registry: registry, maxPerKind: maxPerKind}
}

// Reconcile scans the snapshot's lists, collects entities whose identity is
// unseen, and marks them seen. Calling it twice with an unchanged snapshot
// yields an empty result the second time. A nil snapshot (failed fetch)
// yields an empty result and leaves the registry untouched.
func (r *Reconciler) Reconcile(snapshot *types.Snapshot) NewEntities {
	var out NewEntities
	if snapshot == nil {
		return out
	}

	for i, artifact := range snapshot.RecentArtifacts {
		if i >= r.maxPerKind {
			break
		}
		id := ArtifactIdentity(artifact)
		if r.registry.HasSeen(types.KindArtifacts, id) {
			continue
		}
		r.registry.MarkSeen(types.KindArtifacts, id)
		out.Artifacts = append(out.Artifacts, artifact)
	}

	for i, mission := range snapshot.ActiveMissions {
		if i >= r.maxPerKind {
			break
		}
		id := MissionIdentity(mission)
		if r.registry.HasSeen(types.KindMissions, id) {
			continue
		}
		r.registry.MarkSeen(types.KindMissions, id)
		out.Missions = append(out.Missions, mission)
	}

	for i, approval := range snapshot.PendingApprovals {
		if i >= r.maxPerKind {
			break
		}
		id := ApprovalIdentity(approval)
		if r.registry.HasSeen(types.KindApprovals, id) {
			continue
		}
		r.registry.MarkSeen(types.KindApprovals, id)
		out.Approvals = append(out.Approvals, approval)
	}

	if !out.Empty() {
		logging.HubDebug("reconcile: %d new (%d artifacts, %d missions, %d approvals)",
			out.Total(), len(out.Artifacts), len(out.Missions), len(out.Approvals))
	}
	return out
}
