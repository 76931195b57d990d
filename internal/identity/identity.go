// Package identity models the signed-in shopper as an observable value.
package identity

import (
	"slices"
	"sync"

	"podcast-storefront/internal/domain"
)

// Identity is the authenticated shopper. Profile is nil until it has been loaded.
type Identity struct {
	UID     string
	Profile *domain.Profile
}

// Provider exposes the current identity and pushes every change to subscribers.
type Provider interface {
	Current() *Identity
	Subscribe(onChange func(*Identity)) (unsubscribe func())
}

// Publisher is an in-memory Provider. The zero value is ready to use.
type Publisher struct {
	mu      sync.Mutex
	current *Identity
	nextID  int
	subs    map[int]func(*Identity)
}

// NewPublisher returns a Publisher holding initial.
func NewPublisher(initial *Identity) *Publisher {
	return &Publisher{current: clone(initial)}
}

// Current returns a copy of the current identity or nil.
func (p *Publisher) Current() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.current)
}

// Subscribe registers onChange. It is not invoked for the current value.
func (p *Publisher) Subscribe(onChange func(*Identity)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.subs == nil {
		p.subs = make(map[int]func(*Identity))
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = onChange
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Set replaces the identity and notifies subscribers in registration order.
func (p *Publisher) Set(next *Identity) {
	p.mu.Lock()
	p.current = clone(next)
	ids := make([]int, 0, len(p.subs))
	for id := range p.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]func(*Identity), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, p.subs[id])
	}
	value := p.current
	p.mu.Unlock()

	for _, h := range handlers {
		h(clone(value))
	}
}

// SetProfile updates the profile of the current identity, if any.
func (p *Publisher) SetProfile(profile *domain.Profile) {
	cur := p.Current()
	if cur == nil {
		return
	}
	cur.Profile = profile
	p.Set(cur)
}

func clone(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	out := *id
	if id.Profile != nil {
		prof := *id.Profile
		if id.Profile.Address != nil {
			addr := *id.Profile.Address
			prof.Address = &addr
		}
		out.Profile = &prof
	}
	return &out
}
