package hub

import (
	"context"
	"fmt"

	"grace/internal/logging"
	"grace/internal/types"
)

// ApprovalResolver is the backend call the gate needs; satisfied by
// client.Client.
type ApprovalResolver interface {
	ResolveApproval(ctx context.Context, traceID string, decision types.Decision, reason string) error
}

// Gate sends approve/decline decisions to the backend and retracts resolved
// approvals from the identity registry, so a reissued traceId can
// legitimately re-surface. It is the only Forget writer.
//
// Per-approval lifecycle: Surfaced -> ActionTaken -> Resolved. Resolution is
// the one exception to "never re-surface".
type Gate struct {
	resolver ApprovalResolver
	registry *Registry

	// onResolved triggers an immediate context refetch so the resolved
	// approval leaves the pending view without waiting for the next tick.
	onResolved func()
}

// NewGate creates a gate. onResolved may be nil.
func NewGate(resolver ApprovalResolver, registry *Registry, onResolved func()) *Gate {
	return &Gate{resolver: resolver, registry: registry, onResolved: onResolved}
}

// Resolve sends the decision. On success it forgets the approval identity
// and triggers a refetch. On failure the approval stays visible and
// actionable; the user may simply press the button again.
func (g *Gate) Resolve(ctx context.Context, traceID string, decision types.Decision, reason string) error {
	if traceID == "" {
		return fmt.Errorf("traceId required")
	}
	if decision != types.DecisionApprove && decision != types.DecisionDecline {
		return fmt.Errorf("unknown decision %q", decision)
	}

	if err := g.resolver.ResolveApproval(ctx, traceID, decision, reason); err != nil {
		logging.Get(logging.CategoryApprovals).Warn("resolve %s failed: %v", traceID, err)
		return err
	}

	g.registry.Forget(types.KindApprovals, traceID)
	logging.Approvals("forgot %s after %s; it may legitimately reappear", traceID, decision)

	if g.onResolved != nil {
		g.onResolved()
	}
	return nil
}
