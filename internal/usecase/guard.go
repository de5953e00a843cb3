package usecase

import (
	"context"

	"github.com/arklim/riskdash-client/internal/core/domain"
	"github.com/arklim/riskdash-client/internal/state"
)

// Default navigation targets used by the guards.
const (
	LoginPath          = "/login"
	DefaultLandingPath = "/dashboard"
)

// Outcome is a guard's verdict on whether a view may render.
type Outcome int

const (
	// OutcomeShowLoading asks the caller to show a loading placeholder
	// while the session check settles.
	OutcomeShowLoading Outcome = iota
	// OutcomeRedirect sends the user to Decision.Target.
	OutcomeRedirect
	// OutcomeRender lets the guarded view render.
	OutcomeRender
)

func (o Outcome) String() string {
	switch o {
	case OutcomeShowLoading:
		return "show_loading"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeRender:
		return "render"
	default:
		return "unknown"
	}
}

// Decision is the full guard verdict. From carries the attempted path on a
// redirect to login so the post-login flow can return the user there.
type Decision struct {
	Outcome Outcome
	Target  string
	From    string
}

// GuardEvaluator derives routing decisions from session state. It never
// performs I/O itself: when an auth or guest guard finds the store
// uninitialized it fires the supplied trigger, and the coordinator's
// in-flight latch collapses concurrent triggers into one backend call.
// Guards never return errors; a redirect decision is the only failure shape
// the routing layer observes.
type GuardEvaluator struct {
	sessions *state.SessionStore
	trigger  func(context.Context)
}

// NewGuardEvaluator constructs a GuardEvaluator. trigger is invoked to start
// a session check and may be nil for purely static evaluation in tests.
func NewGuardEvaluator(sessions *state.SessionStore, trigger func(context.Context)) *GuardEvaluator {
	return &GuardEvaluator{sessions: sessions, trigger: trigger}
}

// Auth gates a protected view against anonymous access.
func (g *GuardEvaluator) Auth(ctx context.Context, attemptedPath string) Decision {
	snap := g.sessions.Snapshot()

	if !snap.Initialized {
		if g.trigger != nil {
			g.trigger(ctx)
		}
		return Decision{Outcome: OutcomeShowLoading}
	}
	if snap.Loading {
		return Decision{Outcome: OutcomeShowLoading}
	}
	if !snap.Authenticated {
		return Decision{Outcome: OutcomeRedirect, Target: LoginPath, From: attemptedPath}
	}
	return Decision{Outcome: OutcomeRender}
}

// Guest gates login and register views against already-authenticated access.
// fromPath is the remembered origin to return to; empty falls back to the
// dashboard.
func (g *GuardEvaluator) Guest(ctx context.Context, fromPath string) Decision {
	snap := g.sessions.Snapshot()

	if !snap.Initialized {
		if g.trigger != nil {
			g.trigger(ctx)
		}
		return Decision{Outcome: OutcomeShowLoading}
	}
	if snap.Loading {
		return Decision{Outcome: OutcomeShowLoading}
	}
	if snap.Authenticated {
		target := fromPath
		if target == "" {
			target = DefaultLandingPath
		}
		return Decision{Outcome: OutcomeRedirect, Target: target}
	}
	return Decision{Outcome: OutcomeRender}
}

// Role applies fine-grained authorization on top of an upstream Auth guard.
// It assumes the session check already ran and therefore never triggers one.
func (g *GuardEvaluator) Role(allowedRoles []domain.Role, fallbackPath string) Decision {
	if fallbackPath == "" {
		fallbackPath = DefaultLandingPath
	}

	snap := g.sessions.Snapshot()
	if snap.Identity == nil {
		return Decision{Outcome: OutcomeRedirect, Target: fallbackPath}
	}
	for _, role := range allowedRoles {
		if snap.Identity.Role == role {
			return Decision{Outcome: OutcomeRender}
		}
	}
	return Decision{Outcome: OutcomeRedirect, Target: fallbackPath}
}
