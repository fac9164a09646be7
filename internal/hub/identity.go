// Package hub implements the world-context synchronization engine: it polls
// the backend snapshot, reconciles it against per-kind identity sets, and
// dispatches exactly the new entities as conversation events with one-shot
// workspace side effects.
package hub

import (
	"strings"
	"sync"

	"grace/internal/types"
)

// =============================================================================
// IDENTITY DERIVATION
// =============================================================================
// An identity is a stable key distinguishing one logical entity across polls.
// Derivation must be content-addressable: the same logical entity must yield
// the same key on every poll, even when the backend omits an id field on
// first sight. The fallback policy below is deliberate, not an incidental
// string hack.

// artifactContentPrefixLen bounds the content prefix used when an artifact
// has no id. Runes, not bytes, so multi-byte content truncates cleanly.
const artifactContentPrefixLen = 40

// ArtifactIdentity derives the identity key for an artifact: the id when
// present, otherwise source plus a content prefix.
func ArtifactIdentity(a types.Artifact) string {
	if a.ID != "" {
		return a.ID
	}
	content := []rune(normalizeKey(a.Content))
	if len(content) > artifactContentPrefixLen {
		content = content[:artifactContentPrefixLen]
	}
	return a.Source + ":" + string(content)
}

// MissionIdentity derives the identity key for a mission: the id when
// present, otherwise the title.
func MissionIdentity(m types.Mission) string {
	if m.ID != "" {
		return m.ID
	}
	return normalizeKey(m.Title)
}

// ApprovalIdentity derives the identity key for an approval. TraceID is
// unique per issuance, so no fallback is needed.
func ApprovalIdentity(a types.Approval) string {
	return a.TraceID
}

// =============================================================================
// IDENTITY SET REGISTRY
// =============================================================================

// Registry holds one append-only set of previously-observed identities per
// entity kind. Kinds are fully namespaced: an artifact and an approval that
// share a key string never collide.
//
// The reconciler is the only MarkSeen writer and the approval gate is the
// only Forget writer, but user actions run off the poll goroutine, so the
// sets are mutex-guarded anyway.
type Registry struct {
	mu   sync.RWMutex
	seen map[types.Kind]map[string]struct{}
}

// NewRegistry creates an empty registry. Registries are session-scoped and
// owned by exactly one Engine; a restart legitimately re-surfaces everything.
func NewRegistry() *Registry {
	return &Registry{
		seen: make(map[types.Kind]map[string]struct{}),
	}
}

// HasSeen reports whether the identity was previously observed for the kind.
func (r *Registry) HasSeen(kind types.Kind, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.seen[kind][id]
	return ok
}

// MarkSeen records the identity for the kind.
func (r *Registry) MarkSeen(kind types.Kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.seen[kind]
	if !ok {
		set = make(map[string]struct{})
		r.seen[kind] = set
	}
	set[id] = struct{}{}
}

// Forget removes the identity so the entity can re-surface as new. Only
// resolved approvals take this path; artifacts and missions are append-only.
func (r *Registry) Forget(kind types.Kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen[kind], id)
}

// Count returns the number of seen identities for a kind (for /status).
func (r *Registry) Count(kind types.Kind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.seen[kind])
}

// =============================================================================
// DISPATCHED TAB SET
// =============================================================================

// TabSet tracks which workspace kinds were already auto-opened this session.
// Append-only: each kind fires its auto-open side effect at most once,
// regardless of how many new entities of that kind arrive afterward.
type TabSet struct {
	mu     sync.Mutex
	opened map[string]struct{}
}

// NewTabSet creates an empty tab set.
func NewTabSet() *TabSet {
	return &TabSet{opened: make(map[string]struct{})}
}

// Has reports whether the workspace kind was already auto-opened.
func (t *TabSet) Has(kind string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.opened[kind]
	return ok
}

// TryAdd marks the kind as opened and reports whether this call won the
// one-shot, so check-and-mark is a single atomic step.
func (t *TabSet) TryAdd(kind string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.opened[kind]; ok {
		return false
	}
	t.opened[kind] = struct{}{}
	return true
}

// normalizeKey trims surrounding whitespace from derived keys; backends have
// been observed to pad content fields.
func normalizeKey(key string) string {
	return strings.TrimSpace(key)
}
