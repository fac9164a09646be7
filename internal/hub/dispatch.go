package hub

import (
	"fmt"
	"strings"

	"grace/internal/logging"
	"grace/internal/types"
)

// Callbacks are the hooks the surrounding shell injects into the engine.
// The shell owns panel instantiation and trace display; the engine only
// decides when to invoke them.
type Callbacks struct {
	// OnCreateWorkspace opens (or focuses) a workspace panel of the given
	// kind. Invoked by the auto-open path and by /spawn.
	OnCreateWorkspace func(kind string, context map[string]interface{})

	// OnShowTrace displays the detailed execution trace for a trace id.
	OnShowTrace func(traceID string)
}

// Dispatcher converts newly-discovered entities into conversation events
// and drives the one-shot workspace auto-open side effect.
type Dispatcher struct {
	tabs      *TabSet
	callbacks Callbacks

	// autoOpen disables the panel side effect entirely when false
	// (config hub.auto_open_workspaces).
	autoOpen bool
}

// NewDispatcher creates a dispatcher over the given tab set and callbacks.
func NewDispatcher(tabs *TabSet, callbacks Callbacks, autoOpen bool) *Dispatcher {
	return &Dispatcher{tabs: tabs, callbacks: callbacks, autoOpen: autoOpen}
}

// Dispatch renders the new entities as conversation events, ordered
// artifacts, missions, approvals, with workspace-open confirmations
// interleaved after the entity that triggered them. Health never reaches
// this path: it is read-only via the health tab.
func (d *Dispatcher) Dispatch(entities NewEntities) []types.ConversationEvent {
	if entities.Empty() {
		return nil
	}

	events := make([]types.ConversationEvent, 0, entities.Total()+2)

	for _, artifact := range entities.Artifacts {
		events = append(events, artifactEvent(artifact))
	}

	for i, mission := range entities.Missions {
		events = append(events, missionEvent(mission))
		// Only the first mission of the batch can win the one-shot.
		if i == 0 {
			if ev, ok := d.maybeAutoOpen(types.WorkspaceMissionControl, map[string]interface{}{
				"missionId": MissionIdentity(mission),
			}); ok {
				events = append(events, ev)
			}
		}
	}

	for i, approval := range entities.Approvals {
		events = append(events, approvalEvent(approval))
		if i == 0 {
			if ev, ok := d.maybeAutoOpen(types.WorkspaceGovernance, map[string]interface{}{
				"traceId": approval.TraceID,
			}); ok {
				events = append(events, ev)
			}
		}
	}

	logging.Hub("dispatched %d events", len(events))
	return events
}

// maybeAutoOpen fires the workspace-open callback if this kind has not been
// auto-opened this session. Returns the confirmation event when it fired.
func (d *Dispatcher) maybeAutoOpen(kind string, context map[string]interface{}) (types.ConversationEvent, bool) {
	if !d.autoOpen {
		return types.ConversationEvent{}, false
	}
	if !d.tabs.TryAdd(kind) {
		return types.ConversationEvent{}, false
	}

	if d.callbacks.OnCreateWorkspace != nil {
		d.callbacks.OnCreateWorkspace(kind, context)
	}
	logging.Hub("auto-opened workspace %q", kind)

	return types.ConversationEvent{
		Role:    types.RoleSystem,
		Content: fmt.Sprintf("📂 Opened the **%s** workspace for you.", kind),
	}, true
}

// =============================================================================
// EVENT RENDERING
// =============================================================================

func artifactEvent(a types.Artifact) types.ConversationEvent {
	var sb strings.Builder
	sb.WriteString("🧠 **New insight**")
	if a.Source != "" {
		sb.WriteString(fmt.Sprintf(" from `%s`", a.Source))
	}
	if a.Confidence > 0 {
		sb.WriteString(fmt.Sprintf(" *(confidence %.0f%%)*", a.Confidence*100))
	}
	sb.WriteString("\n\n")
	sb.WriteString(a.Content)
	if len(a.Tags) > 0 {
		sb.WriteString("\n\nTags: `" + strings.Join(a.Tags, "` `") + "`")
	}

	return types.ConversationEvent{
		Role:    types.RoleSystem,
		Kind:    types.KindArtifacts,
		Content: sb.String(),
	}
}

func missionEvent(m types.Mission) types.ConversationEvent {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🚀 **Mission active**: %s", m.Title))
	if m.Status != "" {
		sb.WriteString(fmt.Sprintf(" — status `%s`", m.Status))
	}
	if m.Description != "" {
		sb.WriteString("\n\n" + m.Description)
	}

	return types.ConversationEvent{
		Role:    types.RoleSystem,
		Kind:    types.KindMissions,
		Content: sb.String(),
	}
}

func approvalEvent(a types.Approval) types.ConversationEvent {
	approval := a
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚖️ **Approval required** — `%s` wants to `%s`", a.Agent, a.ActionType))
	if a.GovernanceTier != "" {
		sb.WriteString(fmt.Sprintf(" *(tier: %s)*", a.GovernanceTier))
	}
	if a.Reason != "" {
		sb.WriteString("\n\n> " + a.Reason)
	}
	sb.WriteString(fmt.Sprintf("\n\nUse `/approve %s` or `/decline %s [reason]`.", a.TraceID, a.TraceID))

	return types.ConversationEvent{
		Role:     types.RoleSystem,
		Kind:     types.KindApprovals,
		Content:  sb.String(),
		TraceID:  a.TraceID,
		Approval: &approval,
	}
}
