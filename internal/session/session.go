// Package session keeps the server-side state of each browser session: its cart,
// the identity it is signed in as and its checkout attempts.
package session

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
	"podcast-storefront/internal/identity"
	"podcast-storefront/internal/kv"
	"podcast-storefront/internal/payment"
	"podcast-storefront/internal/service/cart"
	"podcast-storefront/internal/service/checkout"
)

const (
	DefaultCookieName = "storefront-session"
	sessionIDKey      = "sid"
)

// Session is the per-browser state. Cart and Identity are never shared between sessions.
type Session struct {
	ID       string
	Cart     *cart.Store
	Identity *identity.Publisher
	Checkout *checkout.Orchestrator
	Attempts *checkout.Tracker

	bridge   *cart.Bridge
	cancel   context.CancelFunc
	lastSeen atomic.Int64
}

// SignIn makes c the identity of the session. The bridge loads c's cart snapshot.
func (s *Session) SignIn(c domain.Customer) {
	if cur := s.Identity.Current(); cur != nil && cur.UID == c.ID {
		s.Identity.SetProfile(c.Profile())
		return
	}
	s.Identity.Set(&identity.Identity{UID: c.ID, Profile: c.Profile()})
}

// SignOut drops the identity. The cart empties; the snapshot is kept.
func (s *Session) SignOut() {
	s.Identity.Set(nil)
}

// UID returns the signed-in customer id or "".
func (s *Session) UID() string {
	if cur := s.Identity.Current(); cur != nil {
		return cur.UID
	}
	return ""
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) stop() {
	s.bridge.Stop()
	s.cancel()
}

// Config tunes the session cookie.
type Config struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
	IdleTTL    time.Duration
	Secure     bool
}

// Deps are the shared collaborators injected into every session.
type Deps struct {
	Snapshots kv.Store
	Orders    checkout.OrderWriter
	Payments  payment.Processor
	Logger    *zap.Logger
}

// Registry maps session cookies to live sessions.
type Registry struct {
	cookies    sessions.Store
	cookieName string
	idleTTL    time.Duration
	deps       Deps
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(cfg Config, deps Deps) *Registry {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 2 * time.Hour
	}
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		cookies:    store,
		cookieName: cfg.CookieName,
		idleTTL:    cfg.IdleTTL,
		deps:       deps,
		logger:     logger,
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
}

// Attach returns the session bound to the request cookie, creating one (and
// writing the cookie) when the request carries none or an unknown one.
func (r *Registry) Attach(w http.ResponseWriter, req *http.Request) (*Session, error) {
	// A cookie signed with an old secret decodes with an error and a fresh session.
	cookie, err := r.cookies.Get(req, r.cookieName)
	if cookie == nil {
		return nil, err
	}
	if id, ok := cookie.Values[sessionIDKey].(string); ok && id != "" {
		if s := r.lookup(id); s != nil {
			return s, nil
		}
	}

	s := r.create(uuid.NewString())
	cookie.Values[sessionIDKey] = s.ID
	if err := cookie.Save(req, w); err != nil {
		r.drop(s.ID)
		return nil, err
	}
	return s, nil
}

// Get returns a live session by id.
func (r *Registry) Get(id string) (*Session, bool) {
	s := r.lookup(id)
	return s, s != nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) lookup(id string) *Session {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	s.touch(r.now())
	return s
}

func (r *Registry) create(id string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	store := cart.NewStore()
	who := identity.NewPublisher(nil)
	logger := r.logger.With(zap.String("session_id", id))

	s := &Session{
		ID:       id,
		Cart:     store,
		Identity: who,
		Checkout: checkout.New(checkout.Deps{
			Cart:     store,
			Identity: who,
			Orders:   r.deps.Orders,
			Payments: r.deps.Payments,
			Logger:   logger,
		}),
		Attempts: checkout.NewTracker(ctx, logger),
		bridge:   cart.NewBridge(store, r.deps.Snapshots, who, logger),
		cancel:   cancel,
	}
	s.bridge.Start(ctx)
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	r.logger.Debug("session created", zap.String("session_id", id))
	return s
}

func (r *Registry) drop(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.stop()
	}
}

// Sweep stops sessions idle for longer than the idle TTL. Sessions with a
// checkout still waiting for its outcome are kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL).UnixNano()
	var idle []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Load() < cutoff && !s.Attempts.Busy() {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range idle {
		s.stop()
	}
	if len(idle) > 0 {
		r.logger.Info("idle sessions swept", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Run sweeps every interval until ctx ends.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Close stops every session. Waiting checkouts observe a cancelled context.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range all {
		s.stop()
	}
}
