package main

import (
	"fmt"
	"strings"

	"grace/internal/types"
)

// renderWorkspace builds the pane for a non-chat tab from the latest
// snapshot. Panes are read-only views; all actions stay in the chat tab.
func (m *dashboardModel) renderWorkspace(kind string) string {
	snap := m.engine.Snapshot()

	switch kind {
	case types.WorkspaceMissionControl:
		return m.renderMissionControl(snap)
	case types.WorkspaceGovernance:
		return m.renderGovernance(snap)
	case types.WorkspaceHealth:
		return m.renderHealth(snap)
	case types.WorkspaceShare:
		return m.renderMarkdown("## Share\n\nExport the current session transcript with `/record start` and " +
			"`/record stop`. Recorded sessions land in `.grace/recordings/`.")
	case types.WorkspaceSandbox:
		return m.renderMarkdown("## Sandbox\n\nA scratch workspace. Nothing here is sent to the backend.")
	default:
		return m.styles.Muted.Render(fmt.Sprintf("\n  Unknown workspace %q.\n", kind))
	}
}

func (m *dashboardModel) renderMissionControl(snap *types.Snapshot) string {
	if snap == nil || len(snap.ActiveMissions) == 0 {
		return m.styles.Muted.Render("\n  No active missions.\n")
	}

	var b strings.Builder
	b.WriteString("## Mission Control\n\n")
	for _, mission := range snap.ActiveMissions {
		title := mission.Title
		if title == "" {
			title = "(untitled mission)"
		}
		b.WriteString(fmt.Sprintf("- **%s**", title))
		if mission.Status != "" {
			b.WriteString(fmt.Sprintf(" · %s", mission.Status))
		}
		b.WriteString("\n")
		if mission.Description != "" {
			b.WriteString(fmt.Sprintf("  %s\n", mission.Description))
		}
	}
	return m.renderMarkdown(b.String())
}

func (m *dashboardModel) renderGovernance(snap *types.Snapshot) string {
	if snap == nil || len(snap.PendingApprovals) == 0 {
		return m.styles.Muted.Render("\n  No pending approvals.\n")
	}

	var b strings.Builder
	b.WriteString("## Governance\n\n")
	for _, appr := range snap.PendingApprovals {
		b.WriteString(fmt.Sprintf("- `%s` %s wants **%s**", appr.TraceID, appr.Agent, appr.ActionType))
		if appr.GovernanceTier != "" {
			b.WriteString(fmt.Sprintf(" (tier %s)", appr.GovernanceTier))
		}
		b.WriteString("\n")
		if appr.Reason != "" {
			b.WriteString(fmt.Sprintf("  %s\n", appr.Reason))
		}
	}
	b.WriteString("\nResolve with `/approve <id>` or `/decline <id> [reason]`.\n")
	return m.renderMarkdown(b.String())
}

func (m *dashboardModel) renderHealth(snap *types.Snapshot) string {
	if snap == nil || snap.SystemHealth == nil {
		return m.styles.Muted.Render("\n  No health data yet.\n")
	}

	h := snap.SystemHealth
	var b strings.Builder
	b.WriteString("## System Health\n\n")
	b.WriteString(fmt.Sprintf("- **Status**: %s\n", h.Status))
	if !h.CheckedAt.IsZero() {
		b.WriteString(fmt.Sprintf("- **Checked**: %s\n", h.CheckedAt.Format("15:04:05")))
	}
	if len(h.Components) > 0 {
		b.WriteString("\n### Components\n\n")
		for name, status := range h.Components {
			b.WriteString(fmt.Sprintf("- %s: %s\n", name, status))
		}
	}
	if len(h.Metrics) > 0 {
		b.WriteString("\n### Metrics\n\n")
		for name, value := range h.Metrics {
			b.WriteString(fmt.Sprintf("- %s: %.2f\n", name, value))
		}
	}
	return m.renderMarkdown(b.String())
}
