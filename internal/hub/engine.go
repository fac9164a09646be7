package hub

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"grace/internal/command"
	"grace/internal/logging"
	"grace/internal/types"

	"github.com/google/uuid"
)

// BackendClient is the slice of the Grace API the engine consumes;
// satisfied by client.Client.
type BackendClient interface {
	FetchContext(ctx context.Context) (*types.Snapshot, error)
	SendChat(ctx context.Context, message string) (*types.ChatResponse, error)
	ResolveApproval(ctx context.Context, traceID string, decision types.Decision, reason string) error
}

// Options configures an Engine.
type Options struct {
	Client        BackendClient
	PollInterval  time.Duration
	MaxNewPerKind int
	AutoOpen      bool
	Callbacks     Callbacks
}

// Engine owns one dashboard session's synchronization state: the identity
// registry, the dispatched tab set, and the conversation log. State is
// session-scoped and never shared between engines, so two open dashboards
// never suppress each other's events.
type Engine struct {
	client     BackendClient
	callbacks  Callbacks
	registry   *Registry
	tabs       *TabSet
	log        *Log
	reconciler *Reconciler
	dispatcher *Dispatcher
	gate       *Gate

	sessionID string

	// interval is read each time the ticker is (re)armed; SetPollInterval
	// feeds intervalCh for the running loop.
	interval   time.Duration
	intervalMu sync.Mutex
	intervalCh chan time.Duration

	// kick requests an immediate poll (approval resolution path).
	kick chan struct{}

	// notify coalesces "log grew" wake-ups for the shell; the shell
	// re-reads the log from its own offset, so nothing is ever lost to a
	// slow consumer.
	notify chan struct{}

	pollCount atomic.Int64

	// Session toggles driven by /voice and /record.
	flagsMu   sync.Mutex
	voiceOn   bool
	recording bool

	// Latest successful snapshot, for the health tab and /status.
	snapMu   sync.RWMutex
	snapshot *types.Snapshot

	lifecycleMu sync.Mutex
	running     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewEngine wires up a complete engine. All collaborating sets are
// constructed here so nothing lives at package level.
func NewEngine(opts Options) *Engine {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	e := &Engine{
		client:     opts.Client,
		callbacks:  opts.Callbacks,
		registry:   NewRegistry(),
		tabs:       NewTabSet(),
		log:        NewLog(),
		sessionID:  fmt.Sprintf("sess_%s", uuid.NewString()[:8]),
		interval:   interval,
		intervalCh: make(chan time.Duration, 1),
		kick:       make(chan struct{}, 1),
		notify:     make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	e.reconciler = NewReconciler(e.registry, opts.MaxNewPerKind)
	e.dispatcher = NewDispatcher(e.tabs, opts.Callbacks, opts.AutoOpen)
	e.gate = NewGate(opts.Client, e.registry, e.requestPoll)
	return e
}

// SessionID returns the engine's session identifier.
func (e *Engine) SessionID() string { return e.sessionID }

// Log returns the conversation log.
func (e *Engine) Log() *Log { return e.log }

// Registry returns the identity set registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Notify returns the wake-up channel; one receive may cover many appends.
func (e *Engine) Notify() <-chan struct{} { return e.notify }

// Snapshot returns the latest successfully fetched snapshot, or nil before
// the first successful poll.
func (e *Engine) Snapshot() *types.Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snapshot
}

// =============================================================================
// POLL LOOP
// =============================================================================

// Start launches the poll loop. Non-blocking; use Stop to tear down.
func (e *Engine) Start(ctx context.Context) {
	e.lifecycleMu.Lock()
	if e.running {
		e.lifecycleMu.Unlock()
		return
	}
	e.running = true
	e.lifecycleMu.Unlock()

	logging.Session("engine %s starting, poll interval %v", e.sessionID, e.interval)
	go e.run(ctx)
}

// Stop tears down the poll loop and waits for it to finish.
func (e *Engine) Stop() {
	e.lifecycleMu.Lock()
	if !e.running {
		e.lifecycleMu.Unlock()
		return
	}
	e.running = false
	e.lifecycleMu.Unlock()

	close(e.stopCh)
	<-e.doneCh
	logging.Session("engine %s stopped after %d polls", e.sessionID, e.pollCount.Load())
}

// SetPollInterval changes the tick period of a running loop (config
// hot-reload path). No-op for non-positive values.
func (e *Engine) SetPollInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	e.intervalMu.Lock()
	e.interval = d
	e.intervalMu.Unlock()

	select {
	case e.intervalCh <- d:
	default:
	}
}

// run is the single timeline driving fetch -> reconcile -> dispatch. Each
// tick runs synchronously in this goroutine, so "already seen" state only
// ever moves forward; a tick that fires while a fetch is still in flight is
// simply absorbed by the ticker.
func (e *Engine) run(ctx context.Context) {
	defer close(e.doneCh)

	// First poll immediately; the user should not stare at an empty
	// dashboard for a full interval.
	e.pollOnce(ctx)

	e.intervalMu.Lock()
	ticker := time.NewTicker(e.interval)
	e.intervalMu.Unlock()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case d := <-e.intervalCh:
			ticker.Reset(d)
			logging.Hub("poll interval changed to %v", d)
		case <-e.kick:
			e.pollOnce(ctx)
		case <-ticker.C:
			e.pollOnce(ctx)
		}
	}
}

// pollOnce performs one fetch/reconcile/dispatch cycle. Fetch failures are
// non-fatal: the tick is skipped, the registry keeps its previous state,
// and the next tick retries.
func (e *Engine) pollOnce(ctx context.Context) {
	n := e.pollCount.Add(1)

	snap, err := e.client.FetchContext(ctx)
	if err != nil {
		logging.HubWarn("poll %d: fetch failed, skipping tick: %v", n, err)
		return
	}

	e.snapMu.Lock()
	e.snapshot = snap
	e.snapMu.Unlock()

	entities := e.reconciler.Reconcile(snap)
	for _, ev := range e.dispatcher.Dispatch(entities) {
		e.append(ev)
	}
}

// requestPoll schedules an immediate poll; coalesces if one is pending.
func (e *Engine) requestPoll() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// append stores an event and wakes the shell.
func (e *Engine) append(ev types.ConversationEvent) types.ConversationEvent {
	stored := e.log.Append(ev)
	select {
	case e.notify <- struct{}{}:
	default:
	}
	return stored
}

// =============================================================================
// USER-TRIGGERED OPERATIONS
// =============================================================================
// These run off the poll goroutine and may overlap with it; all shared
// state is guarded inside Registry, TabSet, and Log.

// SendChat posts a user message and appends both sides of the exchange.
// Returns the assistant event.
func (e *Engine) SendChat(ctx context.Context, message string) types.ConversationEvent {
	e.append(types.ConversationEvent{Role: types.RoleUser, Content: message})

	reply, err := e.client.SendChat(ctx, message)
	if err != nil {
		return e.append(types.ConversationEvent{
			Role:    types.RoleError,
			Content: fmt.Sprintf("Chat failed: %v", err),
		})
	}

	return e.append(types.ConversationEvent{
		Role:    types.RoleAssistant,
		Content: reply.Response,
		TraceID: reply.TraceID,
	})
}

// Resolve drives the approval gate and surfaces the outcome inline. On
// failure the approval stays pending and actionable.
func (e *Engine) Resolve(ctx context.Context, traceID string, decision types.Decision, reason string) types.ConversationEvent {
	if err := e.gate.Resolve(ctx, traceID, decision, reason); err != nil {
		return e.append(types.ConversationEvent{
			Role:    types.RoleError,
			Content: fmt.Sprintf("Could not %s `%s`: %v", decision, traceID, err),
		})
	}

	verb := "approved"
	if decision == types.DecisionDecline {
		verb = "declined"
	}
	return e.append(types.ConversationEvent{
		Role:    types.RoleSystem,
		Content: fmt.Sprintf("✅ You %s `%s`.", verb, traceID),
	})
}

// ShowTrace asks the shell to display the execution trace for an event.
func (e *Engine) ShowTrace(traceID string) {
	if traceID == "" || e.callbacks.OnShowTrace == nil {
		return
	}
	e.callbacks.OnShowTrace(traceID)
}

// LatestTraceID returns the trace id of the most recent trace-linked event.
func (e *Engine) LatestTraceID() string {
	events := e.log.Events(0)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].TraceID != "" {
			return events[i].TraceID
		}
	}
	return ""
}

// VoiceEnabled reports the /voice toggle.
func (e *Engine) VoiceEnabled() bool {
	e.flagsMu.Lock()
	defer e.flagsMu.Unlock()
	return e.voiceOn
}

// Recording reports the /record toggle.
func (e *Engine) Recording() bool {
	e.flagsMu.Lock()
	defer e.flagsMu.Unlock()
	return e.recording
}

// ExecuteCommand applies an interpreted command's engine-side effects and
// appends the resulting events. Returns false for shell-owned actions
// (clear, quit) so the caller handles them; everything else is consumed.
func (e *Engine) ExecuteCommand(ctx context.Context, res *command.Result) bool {
	if res == nil {
		return false
	}

	switch res.Action {
	case command.ActionError:
		e.append(types.ConversationEvent{Role: types.RoleError, Content: res.Err})

	case command.ActionHelp:
		e.append(types.ConversationEvent{Role: types.RoleSystem, Content: command.HelpText})

	case command.ActionSpawn:
		e.openWorkspace(res.Arg, nil)

	case command.ActionShare:
		e.openWorkspace(types.WorkspaceShare, nil)

	case command.ActionSandbox:
		e.openWorkspace(types.WorkspaceSandbox, nil)

	case command.ActionVoice:
		on := res.Arg == "on"
		e.flagsMu.Lock()
		e.voiceOn = on
		e.flagsMu.Unlock()
		state := "disabled"
		if on {
			state = "enabled"
		}
		e.append(types.ConversationEvent{Role: types.RoleSystem, Content: fmt.Sprintf("🔊 Voice responses %s.", state)})

	case command.ActionRecord:
		start := res.Arg == "start"
		e.flagsMu.Lock()
		e.recording = start
		e.flagsMu.Unlock()
		msg := "⏹️ Recording stopped."
		if start {
			msg = "⏺️ Recording started."
		}
		e.append(types.ConversationEvent{Role: types.RoleSystem, Content: msg})

	case command.ActionStatus:
		e.append(types.ConversationEvent{Role: types.RoleSystem, Content: e.statusText()})

	case command.ActionApprove:
		e.Resolve(ctx, res.Arg, types.DecisionApprove, res.Rest)

	case command.ActionDecline:
		e.Resolve(ctx, res.Arg, types.DecisionDecline, res.Rest)

	default:
		// clear, quit: shell-owned
		return false
	}
	return true
}

// openWorkspace invokes the shell callback directly (user-requested opens
// are not one-shot; only the auto-open path is).
func (e *Engine) openWorkspace(kind string, context map[string]interface{}) {
	if e.callbacks.OnCreateWorkspace != nil {
		e.callbacks.OnCreateWorkspace(kind, context)
	}
	e.append(types.ConversationEvent{
		Role:    types.RoleSystem,
		Content: fmt.Sprintf("📂 Opened the **%s** workspace.", kind),
	})
}

// statusText renders the /status summary.
func (e *Engine) statusText() string {
	health := "unknown"
	if snap := e.Snapshot(); snap != nil && snap.SystemHealth != nil {
		health = snap.SystemHealth.Status
	}
	return fmt.Sprintf(`## Engine Status

- **Session**: %s
- **Polls**: %d
- **Seen**: %d artifacts, %d missions, %d approvals
- **Health**: %s
- **Voice**: %v · **Recording**: %v
`,
		e.sessionID,
		e.pollCount.Load(),
		e.registry.Count(types.KindArtifacts),
		e.registry.Count(types.KindMissions),
		e.registry.Count(types.KindApprovals),
		health,
		e.VoiceEnabled(),
		e.Recording(),
	)
}
