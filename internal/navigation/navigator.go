package navigation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tastetrail/tastetrail/internal/core/domain"
)

// SessionSource is the read side of the session store plus the one write the
// navigator is allowed to trigger: a forced logout on credential expiry.
type SessionSource interface {
	Snapshot() domain.Session
	Ready(ctx context.Context) error
	Logout() domain.Decision
}

// DecisionObserver is notified of every routing decision (metrics).
type DecisionObserver interface {
	ObserveDecision(d domain.Decision, view domain.View)
}

// Visit is one navigation. Its context is cancelled as soon as a later
// navigation supersedes it, so fetches started for it stop and their results
// are dropped.
type Visit struct {
	Path     string
	Decision domain.Decision
	View     domain.View

	ctx    context.Context
	cancel context.CancelFunc
	nav    *Navigator
	seq    uint64
}

// Context is cancelled when the visit is superseded.
func (v *Visit) Context() context.Context {
	return v.ctx
}

// Current reports whether no later navigation has happened.
func (v *Visit) Current() bool {
	return v.nav.isCurrent(v.seq)
}

// Apply runs fn only if the visit is still current, holding the navigator
// lock so no navigation can interleave. It reports whether fn ran.
func (v *Visit) Apply(fn func()) bool {
	v.nav.mu.Lock()
	defer v.nav.mu.Unlock()
	if v.nav.seq != v.seq {
		return false
	}
	fn()
	return true
}

// Navigator evaluates guards for each navigation and tracks which visit is
// current.
type Navigator struct {
	sessions SessionSource
	observer DecisionObserver
	log      zerolog.Logger

	mu      sync.Mutex
	seq     uint64
	current *Visit
}

func NewNavigator(sessions SessionSource, observer DecisionObserver, log zerolog.Logger) *Navigator {
	return &Navigator{
		sessions: sessions,
		observer: observer,
		log:      log.With().Str("component", "navigator").Logger(),
	}
}

// Navigate waits for the session restore to finish, then decides whether
// requested may be shown. The previous visit is cancelled. Redirect
// decisions resolve to the view of their target.
func (n *Navigator) Navigate(ctx context.Context, requested string) (*Visit, error) {
	if err := n.sessions.Ready(ctx); err != nil {
		return nil, err
	}

	sess := n.sessions.Snapshot()
	route := Match(requested)
	reqPath := requestedPath(requested)
	d := Evaluate(sess, route, reqPath)
	view := n.viewFor(d, route, sess)

	visitCtx, cancel := context.WithCancel(ctx)

	n.mu.Lock()
	n.seq++
	if n.current != nil {
		n.current.cancel()
	}
	v := &Visit{
		Path:     reqPath,
		Decision: d,
		View:     view,
		ctx:      visitCtx,
		cancel:   cancel,
		nav:      n,
		seq:      n.seq,
	}
	n.current = v
	n.mu.Unlock()

	if n.observer != nil {
		n.observer.ObserveDecision(d, view)
	}
	n.log.Debug().
		Str("path", v.Path).
		Str("decision", d.Kind.String()).
		Str("view", string(view)).
		Msg("navigate")
	return v, nil
}

// Fail handles an error returned by a request made for visit. Only a
// credential-expired rejection changes global state: the session is cleared
// and the user is sent to login with the visit's path preserved. Any other
// error, including a backend role rejection, stays local to the view.
func (n *Navigator) Fail(v *Visit, err error) domain.Decision {
	if err == nil || v == nil {
		return domain.AllowDecision(pathOf(v))
	}
	if !errors.Is(err, domain.ErrCredentialExpired) {
		return domain.AllowDecision(v.Path)
	}

	n.sessions.Logout()
	d := domain.LoginRedirect(SanitizeReturnTo(v.Path))
	n.log.Info().Str("path", v.Path).Msg("credential expired, session cleared")
	if n.observer != nil {
		n.observer.ObserveDecision(d, domain.ViewLogin)
	}
	return d
}

// Close cancels the current visit.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil {
		n.current.cancel()
		n.current = nil
	}
	n.seq++
}

func (n *Navigator) isCurrent(seq uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seq == seq
}

func (n *Navigator) viewFor(d domain.Decision, route Route, sess domain.Session) domain.View {
	switch d.Kind {
	case domain.RedirectToLogin:
		return domain.ViewLogin
	case domain.RedirectToForbidden:
		return domain.ViewForbidden
	case domain.Allow:
		if route.Path == domain.PathDashboard {
			return ResolveDashboard(sess)
		}
		return route.View
	default:
		return ""
	}
}

// requestedPath keeps the query of the original request but normalises the
// path part.
func requestedPath(requested string) string {
	clean := CleanPath(requested)
	i := strings.IndexAny(requested, "?#")
	if i < 0 || requested[i] != '?' {
		return clean
	}
	query := requested[i:]
	if j := strings.IndexByte(query, '#'); j >= 0 {
		query = query[:j]
	}
	return clean + query
}

func pathOf(v *Visit) string {
	if v == nil {
		return ""
	}
	return v.Path
}
