// Package gate defers navigation until the process-wide authentication bootstrap
// has reported a definitive session state, then authorizes each navigation
// against its route's requiresAuth flag.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/clustermaster/clustermaster-ui/internal/observability/statsd"
)

// DefaultSignInPath is where unauthenticated navigations are redirected.
const DefaultSignInPath = "/sign-in"

// ErrNoBootstrapper is reported when a gate is built without a Bootstrapper.
var ErrNoBootstrapper = errors.New("gate: no bootstrapper configured")

// Request is a single navigation awaiting a decision.
type Request struct {
	Target Route
	// Resolve receives the decision exactly once. It must not block.
	Resolve func(Decision)
}

// Options configures a Gate.
type Options struct {
	Bootstrapper Bootstrapper
	SignInPath   string
	// BootstrapTimeout bounds the bootstrap call; zero means no timeout.
	BootstrapTimeout time.Duration
	// Context is the parent of the bootstrap call. Defaults to context.Background().
	Context context.Context
	Logger  *slog.Logger
	Metrics statsd.Sink
	Now     func() time.Time
}

type queued struct {
	req Request
	// failed marks requests that were waiting when the bootstrap failed.
	failed bool
}

// Gate owns the Session State and the Pending Queue for one process.
type Gate struct {
	bootstrapper Bootstrapper
	signInPath   string
	timeout      time.Duration
	parent       context.Context
	logger       *slog.Logger
	metrics      statsd.Sink
	now          func() time.Time

	mu        sync.Mutex
	identity  *Principal
	ready     bool
	initiated bool
	closed    bool
	// overridden is set when SignIn/SignOut runs while the bootstrap is in flight.
	overridden bool
	queue      []queued

	settled     chan struct{}
	settledOnce sync.Once
}

// New constructs a Gate. The bootstrap is not started until the first Evaluate.
func New(opts Options) *Gate {
	signIn := opts.SignInPath
	if signIn == "" {
		signIn = DefaultSignInPath
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Gate{
		bootstrapper: opts.Bootstrapper,
		signInPath:   signIn,
		timeout:      opts.BootstrapTimeout,
		parent:       parent,
		logger:       logger,
		metrics:      opts.Metrics,
		now:          now,
		settled:      make(chan struct{}),
	}
}

// SignInPath returns the redirect target for unauthenticated navigations.
func (g *Gate) SignInPath() string { return g.signInPath }

// Evaluate decides req, or queues it until the bootstrap completes.
// It never blocks: the bootstrap runs on its own goroutine.
func (g *Gate) Evaluate(req Request) {
	req.Resolve = onceResolve(req.Resolve)

	g.mu.Lock()
	switch {
	case g.closed:
		g.mu.Unlock()
		g.resolve(req, Cancel())

	case g.ready:
		// Decided on the spot, even while the drain is still replaying the
		// queue; continuations may call Evaluate re-entrantly.
		d := g.decideLocked(req.Target)
		g.mu.Unlock()
		g.resolve(req, d)

	case !g.initiated:
		g.initiated = true
		g.queue = append(g.queue, queued{req: req})
		g.mu.Unlock()
		g.logger.Info("auth bootstrap started", "path", req.Target.Path)
		go g.runBootstrap()

	default:
		g.queue = append(g.queue, queued{req: req})
		g.mu.Unlock()
	}
}

// SignIn records p as the current identity.
func (g *Gate) SignIn(p Principal) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.identity = &p
	if g.initiated && !g.ready {
		g.overridden = true
	}
}

// SignOut clears the current identity. Readiness is never reset.
func (g *Gate) SignOut() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.identity = nil
	if g.initiated && !g.ready {
		g.overridden = true
	}
}

// State returns a snapshot of the session.
func (g *Gate) State() SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := SessionState{Ready: g.ready}
	if g.identity != nil {
		p := *g.identity
		st.Identity = &p
	}
	return st
}

// Settled is closed once the bootstrap has completed and every request queued
// behind it has been resolved.
func (g *Gate) Settled() <-chan struct{} { return g.settled }

// Close cancels every request still waiting on the bootstrap. Requests
// evaluated after Close resolve with Cancel.
func (g *Gate) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	batch := g.queue
	g.queue = nil
	g.mu.Unlock()

	for _, q := range batch {
		g.resolve(q.req, Cancel())
	}
}

func (g *Gate) runBootstrap() {
	start := g.now()
	outcome, err := g.callBootstrap()
	elapsed := g.now().Sub(start)

	g.mu.Lock()
	g.ready = true
	switch {
	case err != nil:
		for i := range g.queue {
			g.queue[i].failed = true
		}
		if !g.overridden {
			g.identity = nil
		}
	case !g.overridden:
		if p, ok := outcome.Principal(); ok {
			g.identity = &p
		} else {
			g.identity = nil
		}
	}
	depth := len(g.queue)
	authenticated := g.identity != nil
	g.mu.Unlock()

	result := "authenticated"
	switch {
	case err != nil:
		result = "failed"
		g.logger.Warn("auth bootstrap failed; routing pending navigations to sign-in",
			"error", err, "pending", depth, "duration", elapsed)
	case !authenticated:
		result = "anonymous"
		g.logger.Info("auth bootstrap completed", "authenticated", false, "pending", depth, "duration", elapsed)
	default:
		g.logger.Info("auth bootstrap completed", "authenticated", true, "pending", depth, "duration", elapsed)
	}
	if g.metrics != nil {
		g.metrics.Timing("gate.bootstrap.duration", elapsed, nil)
		g.metrics.Count("gate.bootstrap.result", 1, map[string]string{"outcome": result})
		g.metrics.Gauge("gate.queue.depth", float64(depth), nil)
	}

	g.drain()
}

func (g *Gate) callBootstrap() (outcome Outcome, err error) {
	if g.bootstrapper == nil {
		return Unauthenticated(), ErrNoBootstrapper
	}

	ctx := g.parent
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = Unauthenticated()
			err = fmt.Errorf("bootstrap panic: %v", r)
		}
	}()
	return g.bootstrapper.Bootstrap(ctx)
}

// drain replays the pending queue in FIFO order. Once ready is set nothing
// joins the queue, so a single pass empties it.
func (g *Gate) drain() {
	g.mu.Lock()
	batch := g.queue
	g.queue = nil
	decisions := make([]Decision, len(batch))
	for i, q := range batch {
		if q.failed {
			decisions[i] = Redirect(g.signInPath)
			continue
		}
		decisions[i] = g.decideLocked(q.req.Target)
	}
	g.mu.Unlock()

	for i, q := range batch {
		g.resolve(q.req, decisions[i])
	}
	g.settledOnce.Do(func() { close(g.settled) })
}

func (g *Gate) decideLocked(target Route) Decision {
	if g.identity != nil && g.identity.expired(g.now()) {
		g.logger.Info("session identity expired", "subject", g.identity.SubjectID)
		g.identity = nil
	}
	if target.RequiresAuth && g.identity == nil {
		return Redirect(g.signInPath)
	}
	return Proceed()
}

func (g *Gate) resolve(req Request, d Decision) {
	if g.metrics != nil {
		g.metrics.Count("gate.decision", 1, map[string]string{"kind": d.Kind.String()})
	}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("navigation continuation panicked", "path", req.Target.Path, "panic", r)
		}
	}()
	req.Resolve(d)
}

func onceResolve(fn func(Decision)) func(Decision) {
	if fn == nil {
		return func(Decision) {}
	}
	var once sync.Once
	return func(d Decision) {
		once.Do(func() { fn(d) })
	}
}
