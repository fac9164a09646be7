package hub

import (
	"context"
	"fmt"
	"testing"

	"grace/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	err   error
	calls []string
}

func (f *fakeResolver) ResolveApproval(_ context.Context, traceID string, decision types.Decision, reason string) error {
	f.calls = append(f.calls, fmt.Sprintf("%s:%s:%s", traceID, decision, reason))
	return f.err
}

func TestGateResolveForgetsOnSuccess(t *testing.T) {
	reg := NewRegistry()
	reg.MarkSeen(types.KindApprovals, "t1")

	kicked := 0
	resolver := &fakeResolver{}
	g := NewGate(resolver, reg, func() { kicked++ })

	err := g.Resolve(context.Background(), "t1", types.DecisionDecline, "not needed")
	require.NoError(t, err)

	assert.False(t, reg.HasSeen(types.KindApprovals, "t1"))
	assert.Equal(t, []string{"t1:decline:not needed"}, resolver.calls)
	assert.Equal(t, 1, kicked)
}

func TestGateResolveKeepsSeenOnFailure(t *testing.T) {
	// On failure the approval remains pending and actionable: no Forget,
	// no refetch trigger.
	reg := NewRegistry()
	reg.MarkSeen(types.KindApprovals, "t1")

	kicked := 0
	resolver := &fakeResolver{err: fmt.Errorf("backend unavailable")}
	g := NewGate(resolver, reg, func() { kicked++ })

	err := g.Resolve(context.Background(), "t1", types.DecisionApprove, "")
	require.Error(t, err)

	assert.True(t, reg.HasSeen(types.KindApprovals, "t1"))
	assert.Equal(t, 0, kicked)
}

func TestGateValidatesInput(t *testing.T) {
	g := NewGate(&fakeResolver{}, NewRegistry(), nil)

	assert.Error(t, g.Resolve(context.Background(), "", types.DecisionApprove, ""))
	assert.Error(t, g.Resolve(context.Background(), "t1", types.Decision("maybe"), ""))
}

func TestGateNilOnResolved(t *testing.T) {
	reg := NewRegistry()
	reg.MarkSeen(types.KindApprovals, "t1")
	g := NewGate(&fakeResolver{}, reg, nil)

	require.NoError(t, g.Resolve(context.Background(), "t1", types.DecisionApprove, ""))
	assert.False(t, reg.HasSeen(types.KindApprovals, "t1"))
}
