// Package types provides shared type definitions used across grace packages.
// This package exists to break import cycles between client, hub, and command.
// Types in this package should be foundational data structures with no complex dependencies.
package types

import (
	"time"
)

// =============================================================================
// WORLD CONTEXT SNAPSHOT
// =============================================================================

// Snapshot is one fetched point-in-time view of backend world state.
// It is replaced wholesale on every poll; missing lists unmarshal to nil
// and are treated as empty everywhere.
type Snapshot struct {
	RecentArtifacts  []Artifact      `json:"recentArtifacts"`
	ActiveMissions   []Mission       `json:"activeMissions"`
	PendingApprovals []Approval      `json:"pendingApprovals"`
	SystemHealth     *HealthSnapshot `json:"systemHealth"`
}

// Artifact is a knowledge item produced by the platform.
// ID may be absent on first sight; identity derivation falls back to
// source plus a content prefix (see hub.ArtifactIdentity).
type Artifact struct {
	ID         string    `json:"id,omitempty"`
	Content    string    `json:"content"`
	Source     string    `json:"source"`
	Confidence float64   `json:"confidence"`
	Tags       []string  `json:"tags,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Mission is a long-running goal the platform is executing.
type Mission struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Approval is a governance decision request requiring explicit
// accept/decline from the user. TraceID is unique per issuance.
type Approval struct {
	TraceID        string    `json:"traceId"`
	Agent          string    `json:"agent"`
	ActionType     string    `json:"actionType"`
	GovernanceTier string    `json:"governanceTier"`
	Reason         string    `json:"reason"`
	Timestamp      time.Time `json:"timestamp"`
}

// HealthSnapshot is an opaque aggregate of system health indicators.
// It is consumed read-only (health tab) and never diffed or evented.
type HealthSnapshot struct {
	Status     string             `json:"status"`
	Components map[string]string  `json:"components,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	CheckedAt  time.Time          `json:"checkedAt"`
}

// =============================================================================
// ENTITY KINDS
// =============================================================================

// Kind names one independent entity stream in the snapshot.
// Identity sets are namespaced by Kind so keys never collide across streams.
type Kind string

const (
	KindArtifacts Kind = "artifacts"
	KindMissions  Kind = "missions"
	KindApprovals Kind = "approvals"
)

// WorkspaceKind names a panel the surrounding shell can open.
const (
	WorkspaceMissionControl = "mission-control"
	WorkspaceGovernance     = "governance"
	WorkspaceHealth         = "health"
	WorkspaceShare          = "share"
	WorkspaceSandbox        = "sandbox"
)

// =============================================================================
// CONVERSATION EVENTS
// =============================================================================

// EventRole classifies who (or what) produced a conversation event.
type EventRole string

const (
	RoleUser      EventRole = "user"
	RoleAssistant EventRole = "assistant"
	RoleSystem    EventRole = "system"
	RoleError     EventRole = "error"
)

// ConversationEvent is one entry in the append-only conversation log.
// Timestamps reflect arrival order, not entity creation order.
type ConversationEvent struct {
	ID        string    `json:"id"`
	Role      EventRole `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// TraceID links the event to a detailed execution trace when set.
	TraceID string `json:"traceId,omitempty"`

	// Approval carries the pending approval for actionable events so the
	// shell can render approve/decline controls wired to the gate.
	Approval *Approval `json:"approval,omitempty"`

	// Kind is set for system-surfaced entity events.
	Kind Kind `json:"kind,omitempty"`
}

// =============================================================================
// BACKEND WIRE TYPES
// =============================================================================

// ChatRequest is the POST /chat payload.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// ChatResponse is the POST /chat reply.
type ChatResponse struct {
	Response  string    `json:"response"`
	TraceID   string    `json:"traceId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Decision is an approval resolution choice.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDecline Decision = "decline"
)

// ApprovalActionRequest is the POST /approvals/action payload.
type ApprovalActionRequest struct {
	TraceID string   `json:"traceId"`
	Action  Decision `json:"action"`
	Reason  string   `json:"reason,omitempty"`
	UserID  string   `json:"userId"`
}

// ApprovalActionResponse is the POST /approvals/action reply.
type ApprovalActionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
